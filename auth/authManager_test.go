package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"watchlikemeBackend/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthManager(t *testing.T) AuthManager {
	t.Setenv("WLM_SESSION_SECRET", "test-secret-test-secret-test-secret")

	cfg := &config.WatchLikeMeConfig{}
	cfg.Auth.SessionHours = 1

	return CreateAuthManager(cfg)
}

func TestSessionTokenRoundtrip(t *testing.T) {
	manager := testAuthManager(t)

	token, err := manager.CreateSessionToken("user-uuid-1", "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	authUser, err := manager.AuthenticateUser(token)
	require.NoError(t, err)
	assert.Equal(t, "user-uuid-1", authUser.UserId)
	assert.Equal(t, "alice@example.com", authUser.Email)
}

func TestAuthenticateUser_InvalidToken(t *testing.T) {
	manager := testAuthManager(t)

	_, err := manager.AuthenticateUser("not.a.jwt")
	assert.Error(t, err)
}

func TestAuthenticateUser_WrongSecret(t *testing.T) {
	manager := testAuthManager(t)
	token, err := manager.CreateSessionToken("user-uuid-1", "alice@example.com")
	require.NoError(t, err)

	t.Setenv("WLM_SESSION_SECRET", "a-completely-different-secret-value")
	cfg := &config.WatchLikeMeConfig{}
	cfg.Auth.SessionHours = 1
	other := CreateAuthManager(cfg)

	_, err = other.AuthenticateUser(token)
	assert.Error(t, err)
}

func setupMiddlewareRouter(manager AuthManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", manager.AuthenticatorMiddleware(), func(ctx *gin.Context) {
		authUser := ctx.MustGet("authUser").(AuthenticatedUser)
		ctx.String(http.StatusOK, authUser.UserId)
	})

	return router
}

func TestAuthenticatorMiddleware_Cookie(t *testing.T) {
	manager := testAuthManager(t)
	router := setupMiddlewareRouter(manager)

	token, err := manager.CreateSessionToken("user-uuid-1", "alice@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "user-uuid-1", resp.Body.String())
}

func TestAuthenticatorMiddleware_BearerHeader(t *testing.T) {
	manager := testAuthManager(t)
	router := setupMiddlewareRouter(manager)

	token, err := manager.CreateSessionToken("user-uuid-2", "bob@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "user-uuid-2", resp.Body.String())
}

func TestAuthenticatorMiddleware_NoToken(t *testing.T) {
	manager := testAuthManager(t)
	router := setupMiddlewareRouter(manager)

	req := httptest.NewRequest("GET", "/protected", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAuthenticatorMiddleware_InvalidTokenClearsCookie(t *testing.T) {
	manager := testAuthManager(t)
	router := setupMiddlewareRouter(manager)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "garbage"})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	cleared := false
	for _, cookie := range resp.Result().Cookies() {
		if cookie.Name == SessionCookie && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "invalid session should clear the session cookie")
}

func TestOptionalMiddleware_Anonymous(t *testing.T) {
	manager := testAuthManager(t)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/open", manager.OptionalMiddleware(), func(ctx *gin.Context) {
		_, exists := ctx.Get("authUser")
		if exists {
			ctx.String(http.StatusOK, "user")
		} else {
			ctx.String(http.StatusOK, "anonymous")
		}
	})

	req := httptest.NewRequest("GET", "/open", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "anonymous", resp.Body.String())

	token, err := manager.CreateSessionToken("user-uuid-1", "alice@example.com")
	require.NoError(t, err)

	req = httptest.NewRequest("GET", "/open", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, "user", resp.Body.String())
}

func TestSessionTokenExpiry(t *testing.T) {
	t.Setenv("WLM_SESSION_SECRET", "test-secret-test-secret-test-secret")

	cfg := &config.WatchLikeMeConfig{}
	cfg.Auth.SessionHours = 0
	manager := CreateAuthManager(cfg).(*authManager)
	manager.sessionTTL = -time.Minute

	token, err := manager.CreateSessionToken("user-uuid-1", "alice@example.com")
	require.NoError(t, err)

	_, err = manager.AuthenticateUser(token)
	assert.Error(t, err)
}
