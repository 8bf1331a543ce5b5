package middleware

import (
	"net/http"

	"github.com/psychmag/psychmag/internal/adminsession"
	"github.com/psychmag/psychmag/internal/logger"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionTabID       = "tab_id"
	SessionAccessToken = "access_token"

	// TabHeader lets a page keep its own tab state while the cookie session
	// is shared across the browser.
	TabHeader = "X-Tab-ID"

	ginTabStateKey = "tab_state"
)

// TabSession attaches the admin session state of the calling tab to the
// request. A tab ID is issued on first contact and kept in the cookie session.
func TabSession(manager *adminsession.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		tabID := c.GetHeader(TabHeader)
		if _, err := uuid.Parse(tabID); err != nil {
			tabID, _ = session.Get(SessionTabID).(string)
		}
		if tabID == "" {
			tabID = uuid.New().String()
			session.Set(SessionTabID, tabID)
			if err := session.Save(); err != nil {
				logger.Errorf("failed to save tab session: %v", err)
				abortWithError(c, http.StatusInternalServerError, "server_error", "server_error")
				return
			}
		}

		c.Set(ginTabStateKey, manager.Tab(tabID))
		c.Next()
	}
}

// GetTabState returns the state attached by TabSession, or nil.
func GetTabState(c *gin.Context) *adminsession.State {
	if val, ok := c.Get(ginTabStateKey); ok {
		if st, ok := val.(*adminsession.State); ok {
			return st
		}
	}
	return nil
}

// GetAccessToken returns the identity provider token stored in the session.
func GetAccessToken(c *gin.Context) string {
	token, _ := sessions.Default(c).Get(SessionAccessToken).(string)
	return token
}

func SetAccessToken(c *gin.Context, token string) error {
	session := sessions.Default(c)
	session.Set(SessionAccessToken, token)
	return session.Save()
}

func ClearAccessToken(c *gin.Context) error {
	session := sessions.Default(c)
	if session.Get(SessionAccessToken) == nil {
		return nil
	}
	session.Delete(SessionAccessToken)
	return session.Save()
}

// ReleaseAccessToken drops the session token when it is the one the tab
// state let go of. A token signed in from another tab is left alone.
func ReleaseAccessToken(c *gin.Context, st *adminsession.State) {
	token := GetAccessToken(c)
	if token == "" || token != st.Released() {
		return
	}
	if err := ClearAccessToken(c); err != nil {
		logger.Warningf("failed to clear access token from session: %v", err)
	}
}
