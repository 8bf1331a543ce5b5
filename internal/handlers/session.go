package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/psychmag/psychmag/internal/adminsession"
	"github.com/psychmag/psychmag/internal/locale"
	"github.com/psychmag/psychmag/internal/middleware"
	"github.com/psychmag/psychmag/internal/models"
	"github.com/psychmag/psychmag/internal/services"

	"github.com/gin-gonic/gin"
)

const streamHeartbeat = 30 * time.Second

// SessionHandler exposes the calling tab's admin session state.
type SessionHandler struct {
	auditor services.Auditor
}

func NewSessionHandler(auditor services.Auditor) *SessionHandler {
	return &SessionHandler{auditor: auditor}
}

func sessionBody(c *gin.Context, snap adminsession.Snapshot) gin.H {
	body := gin.H{
		"phase":          snap.Phase,
		"email":          snap.Email,
		"is_admin":       snap.IsAdmin(),
		"is_super_admin": snap.IsSuperAdmin(),
		"edit_mode":      snap.EditMode,
	}
	if snap.Notice != "" {
		body["notice"] = snap.Notice
		body["notice_message"] = locale.T(c, snap.Notice)
	}
	if token := middleware.GetCSRFToken(c); token != "" {
		body["csrf_token"] = token
	}
	return body
}

// Current returns the tab's snapshot. A tab that has not been resolved yet
// starts a background resolution and reports loading. A tab whose session
// changed in another tab is resolved in place, unless the session token is
// the one this tab already let go of.
func (h *SessionHandler) Current(c *gin.Context) {
	st := middleware.GetTabState(c)
	token := middleware.GetAccessToken(c)
	snap := st.Snapshot()

	switch {
	case snap.Phase == adminsession.PhaseLoading && token != "":
		st.ResolveInBackground(token)
	case snap.Phase == adminsession.PhaseLoading,
		token != st.Token() && token != st.Released():
		snap = st.Resolve(c.Request.Context(), token)
	}
	middleware.ReleaseAccessToken(c, st)

	c.JSON(http.StatusOK, sessionBody(c, snap))
}

type editModeRequest struct {
	Enabled bool `json:"enabled"`
}

// SetEditMode toggles edit mode. Requests from non-admins leave it off and
// still succeed.
func (h *SessionHandler) SetEditMode(c *gin.Context) {
	var req editModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_input", "invalid_input")
		return
	}

	st := middleware.GetTabState(c)
	before := st.Snapshot()
	snap := st.SetEditMode(req.Enabled)

	if snap.EditMode != before.EditMode {
		event, action := models.EventEditModeOff, "Edit mode disabled"
		if snap.EditMode {
			event, action = models.EventEditModeOn, "Edit mode enabled"
		}
		h.auditor.Log(c.Request.Context(), services.AuditLogEntry{
			EventType:     event,
			Severity:      models.SeverityInfo,
			ActorEmail:    snap.Email,
			ResourceType:  models.ResourceSession,
			ResourceID:    st.ID(),
			Action:        action,
			Details:       models.AuditDetails{"tab_id": st.ID()},
			Success:       true,
			RequestPath:   c.Request.URL.Path,
			RequestMethod: c.Request.Method,
		})
	}

	c.JSON(http.StatusOK, sessionBody(c, snap))
}

// Stream pushes every committed snapshot of the tab as a server-sent event
// until the client disconnects.
func (h *SessionHandler) Stream(c *gin.Context) {
	st := middleware.GetTabState(c)
	updates, cancel := st.Watch()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	c.SSEvent("snapshot", sessionBody(c, st.Snapshot()))
	c.Writer.Flush()

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			c.SSEvent("snapshot", sessionBody(c, snap))
			c.Writer.Flush()
		case <-heartbeat.C:
			_, _ = fmt.Fprint(c.Writer, ": ping\n\n")
			c.Writer.Flush()
		}
	}
}
