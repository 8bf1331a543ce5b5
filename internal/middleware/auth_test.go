package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/psychmag/psychmag/internal/adminsession"
	"github.com/psychmag/psychmag/internal/auth"
	"github.com/psychmag/psychmag/internal/config"
	"github.com/psychmag/psychmag/internal/metrics"
	"github.com/psychmag/psychmag/internal/models"
	"github.com/psychmag/psychmag/internal/services"
	"github.com/psychmag/psychmag/internal/store"
	"github.com/psychmag/psychmag/internal/token"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTokenHeader = "X-Test-Access-Token"

type captureAuditor struct {
	mu      sync.Mutex
	entries []services.AuditLogEntry
}

func (a *captureAuditor) Log(ctx context.Context, entry services.AuditLogEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *captureAuditor) has(event models.EventType) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, e := range a.entries {
		if e.EventType == event {
			return true
		}
	}
	return false
}

type authStack struct {
	store    *store.Store
	provider *auth.LocalIdentityProvider
	tokens   *token.LocalTokenProvider
	manager  *adminsession.Manager
	auditor  *captureAuditor
	router   *gin.Engine
}

func newAuthStack(t *testing.T) *authStack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		BaseURL:               "http://localhost:8080",
		JWTSecret:             "test-secret",
		SignInLinkExpiration:  15 * time.Minute,
		AuthSessionExpiration: time.Hour,
		BootstrapSuperAdmin:   "owner@x.com",
	}
	s, err := store.New("sqlite", ":memory:", cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	recorder := metrics.NewNoopMetrics()
	auditor := &captureAuditor{}
	provider := auth.NewLocalIdentityProvider(cfg, s, auth.LogLinkSender{}, auth.NewNotifier())
	gate := adminsession.NewGate(s, time.Second, recorder)
	resolver := adminsession.NewResolver(provider, gate, auditor, recorder, time.Second)
	manager := adminsession.NewManager(resolver, recorder)

	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(func(c *gin.Context) {
		if tok := c.GetHeader(testTokenHeader); tok != "" {
			sessions.Default(c).Set(SessionAccessToken, tok)
		}
		c.Next()
	})
	r.Use(TabSession(manager))

	admin := r.Group("/admin", RequireAdmin(auditor))
	admin.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": models.GetActorEmailFromContext(c.Request.Context())})
	})
	admin.GET("/admins", RequireSuperAdmin(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return &authStack{
		store:    s,
		provider: provider,
		tokens:   token.NewLocalTokenProvider(cfg),
		manager:  manager,
		auditor:  auditor,
		router:   r,
	}
}

func (a *authStack) mint(t *testing.T, email string) string {
	t.Helper()
	res, err := a.tokens.Generate("sub-"+email, email, token.PurposeAccess, "", time.Hour)
	require.NoError(t, err)
	return res.TokenString
}

func (a *authStack) get(path, accessToken string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if accessToken != "" {
		req.Header.Set(testTokenHeader, accessToken)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestRequireAdmin_NoSession(t *testing.T) {
	a := newAuthStack(t)

	w := a.get("/admin/ping", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "sign_in_required")
}

func TestRequireAdmin_SuperAdmin(t *testing.T) {
	a := newAuthStack(t)
	tok := a.mint(t, "Owner@X.com")

	w := a.get("/admin/ping", tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"owner@x.com"`)

	w = a.get("/admin/admins", tok)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin_RegularAdminCannotManageAdmins(t *testing.T) {
	a := newAuthStack(t)
	require.NoError(t, a.store.CreateAdmin(context.Background(), &models.Admin{Email: "editor@x.com"}))
	tok := a.mint(t, "editor@x.com")

	assert.Equal(t, http.StatusOK, a.get("/admin/ping", tok).Code)

	w := a.get("/admin/admins", tok)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "super_admin_required")
}

func TestRequireAdmin_NotOnAllowlistIsSignedOut(t *testing.T) {
	a := newAuthStack(t)
	tok := a.mint(t, "ghost@x.com")

	w := a.get("/admin/ping", tok)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), adminsession.NoticeNotAuthorized)
	assert.NotEmpty(t, w.Header().Get("Set-Cookie"), "session token should be cleared")

	identity, err := a.provider.CurrentIdentity(context.Background(), tok)
	require.NoError(t, err)
	assert.Nil(t, identity, "provider session should be revoked")
	assert.True(t, a.auditor.has(models.EventForcedSignOut))
	assert.True(t, a.auditor.has(models.EventAccessDenied))
}

func TestRequireAdmin_RemovedAdminLosesAccess(t *testing.T) {
	a := newAuthStack(t)
	ctx := context.Background()
	require.NoError(t, a.store.CreateAdmin(ctx, &models.Admin{Email: "editor@x.com"}))
	tok := a.mint(t, "editor@x.com")

	assert.Equal(t, http.StatusOK, a.get("/admin/ping", tok).Code)

	require.NoError(t, a.store.DeleteAdmin(ctx, "editor@x.com"))

	w := a.get("/admin/ping", tok)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), adminsession.NoticeNotAuthorized)
}

func TestRequireAdmin_ConcurrentRequestsOnNewTab(t *testing.T) {
	a := newAuthStack(t)
	tok := a.mint(t, "owner@x.com")
	tabID := uuid.New().String()

	codes := make([]int, 8)
	var wg sync.WaitGroup
	for i := range codes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
			req.Header.Set(testTokenHeader, tok)
			req.Header.Set(TabHeader, tabID)
			w := httptest.NewRecorder()
			a.router.ServeHTTP(w, req)
			codes[i] = w.Code
		}()
	}
	wg.Wait()

	for i, code := range codes {
		assert.Equal(t, http.StatusOK, code, "request %d", i)
	}
	st, ok := a.manager.Lookup(tabID)
	require.True(t, ok)
	assert.Equal(t, adminsession.PhaseSuperAdmin, st.Snapshot().Phase)
}

func TestRequireAdmin_KeepsTokenSignedInElsewhere(t *testing.T) {
	a := newAuthStack(t)
	ghost := a.mint(t, "ghost@x.com")
	owner := a.mint(t, "owner@x.com")
	tabID := uuid.New().String()

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set(testTokenHeader, ghost)
	req.Header.Set(TabHeader, tabID)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)

	st, ok := a.manager.Lookup(tabID)
	require.True(t, ok)
	assert.Equal(t, ghost, st.Released())

	req = httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set(testTokenHeader, owner)
	req.Header.Set(TabHeader, tabID)
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, owner, st.Token())
}

func TestRequireAdmin_InvalidToken(t *testing.T) {
	a := newAuthStack(t)

	w := a.get("/admin/ping", "not-a-jwt")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, a.auditor.has(models.EventAccessDenied))
}

func TestRequireSuperAdmin_WithoutAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequireSuperAdmin(), func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTabSession_IssuesAndReusesTabID(t *testing.T) {
	a := newAuthStack(t)
	a.router.GET("/tab", func(c *gin.Context) {
		c.String(http.StatusOK, GetTabState(c).ID())
	})

	w := a.get("/tab", "")
	require.Equal(t, http.StatusOK, w.Code)
	first := w.Body.String()
	_, err := uuid.Parse(first)
	require.NoError(t, err)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/tab", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, first, w.Body.String())

	tabID := uuid.New().String()
	req = httptest.NewRequest(http.MethodGet, "/tab", nil)
	req.Header.Set(TabHeader, tabID)
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, tabID, w.Body.String())

	assert.Equal(t, 2, a.manager.Len())
}
