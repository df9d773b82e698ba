package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"watchlikemeBackend/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedRouter(requestsPerMinute uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/login", LoginRateLimiter(requestsPerMinute), func(ctx *gin.Context) {
		ctx.JSON(utils.CreateOkResponse[any](nil))
	})
	return router
}

func TestLoginRateLimiter_BlocksAfterBurst(t *testing.T) {
	router := limitedRouter(3)

	for i := 0; i < 3; i++ {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest("POST", "/login", nil))
		assert.Equal(t, http.StatusOK, resp.Code, "request %d should pass", i+1)
	}

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest("POST", "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)

	var response utils.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &response))
	assert.Equal(t, 429, response.Code)
}

func TestLoginRateLimiter_SeparatesClients(t *testing.T) {
	limiter := createLimiter(1)

	assert.True(t, limiter.allow("10.0.0.1"))
	assert.False(t, limiter.allow("10.0.0.1"))
	assert.True(t, limiter.allow("10.0.0.2"))
}

func TestLoginRateLimiter_ExpiresVisitors(t *testing.T) {
	current := time.Now()
	limiter := createLimiter(1)
	limiter.now = func() time.Time { return current }

	assert.True(t, limiter.allow("10.0.0.1"))
	assert.False(t, limiter.allow("10.0.0.1"))

	// After the TTL the visitor entry is dropped and the budget resets
	current = current.Add(11 * time.Minute)
	assert.True(t, limiter.allow("10.0.0.1"))
	assert.Len(t, limiter.visitors, 1)
}
