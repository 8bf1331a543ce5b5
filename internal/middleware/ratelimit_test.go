package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/psychmag/psychmag/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedRouter(t *testing.T, limiter gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(limiter)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	return router
}

func hit(router *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Forwarded-For", ip)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_Memory(t *testing.T) {
	limiter, err := NewRateLimiter(RateLimitConfig{Name: "sign_in", RequestsPerMinute: 5})
	require.NoError(t, err)
	router := newLimitedRouter(t, limiter)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(router, "192.168.1.100").Code, "Request %d should succeed", i+1)
	}

	w := hit(router, "192.168.1.100")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	retry, err := strconv.Atoi(w.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, retry, 1)
	assert.LessOrEqual(t, retry, 60)
}

func TestRateLimiter_DifferentIPs(t *testing.T) {
	limiter, err := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 2,
		StoreType:         RateLimitStoreMemory,
	})
	require.NoError(t, err)
	router := newLimitedRouter(t, limiter)

	for _, ip := range []string{"192.168.1.1", "192.168.1.2", "192.168.1.3"} {
		for i := 0; i < 2; i++ {
			assert.Equal(t, http.StatusOK, hit(router, ip).Code)
		}
		assert.Equal(t, http.StatusTooManyRequests, hit(router, ip).Code, "third request from %s", ip)
	}
}

func TestRateLimiter_AuditsRejections(t *testing.T) {
	auditor := &captureAuditor{}
	limiter, err := NewRateLimiter(RateLimitConfig{
		Name:              "contact",
		RequestsPerMinute: 1,
		CleanupInterval:   time.Minute,
		StoreType:         RateLimitStoreMemory,
		Auditor:           auditor,
	})
	require.NoError(t, err)
	router := newLimitedRouter(t, limiter)

	assert.Equal(t, http.StatusOK, hit(router, "10.0.0.1").Code)
	assert.False(t, auditor.has(models.EventRateLimitExceeded))

	assert.Equal(t, http.StatusTooManyRequests, hit(router, "10.0.0.1").Code)
	require.True(t, auditor.has(models.EventRateLimitExceeded))

	auditor.mu.Lock()
	entry := auditor.entries[0]
	auditor.mu.Unlock()
	assert.Equal(t, "contact", entry.Details["limiter"])
	assert.Equal(t, "/test", entry.RequestPath)
}

func TestNewRateLimiter_InvalidConfig(t *testing.T) {
	_, err := NewRateLimiter(RateLimitConfig{RequestsPerMinute: 0})
	assert.Error(t, err)

	_, err = NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 5,
		StoreType:         RateLimitStoreRedis,
	})
	assert.Error(t, err)

	_, err = NewRateLimiter(RateLimitConfig{
		Name:              "contact",
		RequestsPerMinute: 5,
		StoreType:         "memcached",
	})
	assert.ErrorContains(t, err, `unknown store "memcached"`)
}

func TestCreateRedisClient_InvalidAddress(t *testing.T) {
	client, err := CreateRedisClient("127.0.0.1:1", "", 0)

	assert.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}

// Requires a Redis server on localhost:6379.
func TestRedisRateLimiter_SharedAcrossInstances(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	client, err := CreateRedisClient("localhost:6379", "", 0)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	defer client.Close()

	newLimiter := func() gin.HandlerFunc {
		l, err := NewRateLimiter(RateLimitConfig{
			Name:              "shared_test",
			RequestsPerMinute: 3,
			StoreType:         RateLimitStoreRedis,
			RedisClient:       client,
		})
		require.NoError(t, err)
		return l
	}
	router1 := newLimitedRouter(t, newLimiter())
	router2 := newLimitedRouter(t, newLimiter())

	ip := fmt.Sprintf("192.168.88.%d", time.Now().Second()+1)
	assert.Equal(t, http.StatusOK, hit(router1, ip).Code)
	assert.Equal(t, http.StatusOK, hit(router2, ip).Code)
	assert.Equal(t, http.StatusOK, hit(router1, ip).Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(router2, ip).Code)

	_ = client.Del(t.Context(), "ratelimit:shared_test:"+ip).Err()
}
