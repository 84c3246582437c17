package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	ok, remaining := rl.Allow("tenant:a")
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
	ok, _ = rl.Allow("tenant:a")
	assert.True(t, ok)
	ok, _ = rl.Allow("tenant:a")
	assert.False(t, ok, "burst exhausted")

	ok, _ = rl.Allow("tenant:b")
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Second)
	ok, _ = rl.Allow("tenant:a")
	assert.True(t, ok, "one token refilled")
}

func TestRateLimiter_Prune(t *testing.T) {
	rl := NewRateLimiter(10, 10)
	now := time.Now()
	rl.now = func() time.Time { return now }
	rl.Allow("old")

	now = now.Add(rl.idleTTL + time.Second)
	rl.Allow("fresh")

	assert.Equal(t, 1, rl.Prune())
	assert.Len(t, rl.clients, 1)
}

func TestRateLimit_Middleware(t *testing.T) {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(TenantIDKey, c.GetHeader("X-Test-Tenant"))
		c.Next()
	})
	router.Use(RateLimit(NewRateLimiter(0.001, 1)))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(tenant string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Test-Tenant", tenant)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	first := call("t1")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := call("t1")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "ERR_RATE_LIMITED")

	assert.Equal(t, http.StatusOK, call("t2").Code)
}
