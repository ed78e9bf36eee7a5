package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRemainingQuotaNeverNegative(t *testing.T) {
	cases := []struct {
		max, count, want int
	}{
		{10, 1, 9},
		{10, 10, 0},
		{10, 11, 0},
		{10, 250, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, remainingQuota(tc.max, tc.count))
	}
}

func TestKeyFuncsPreferRealIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/admin/users", nil)
	c.Set("real_ip", "203.0.113.9")

	assert.Equal(t, "rl:ip:203.0.113.9", KeyByIP()(c))
	assert.Equal(t, "rl:path:/admin/users:ip:203.0.113.9", KeyByIPAndPath()(c))
}

func TestRateLimitDisabledWithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", RateLimit(nil, 1, 0, KeyByIP(), nil), func(c *gin.Context) {
		c.String(200, "pong")
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))
		assert.Equal(t, 200, w.Code)
	}
}
