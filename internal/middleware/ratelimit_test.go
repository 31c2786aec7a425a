package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func limitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/refresh", rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	})
	return r
}

func hit(r *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	req.RemoteAddr = ip + ":3000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterBlocksAfterBudget(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()
	r := limitedRouter(rl)

	if code := hit(r, "10.0.0.1"); code != http.StatusAccepted {
		t.Fatalf("first request = %d, want 202", code)
	}
	if code := hit(r, "10.0.0.1"); code != http.StatusAccepted {
		t.Fatalf("second request = %d, want 202", code)
	}
	if code := hit(r, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("over-budget request = %d, want 429", code)
	}

	// Buckets are per IP.
	if code := hit(r, "10.0.0.2"); code != http.StatusAccepted {
		t.Errorf("other IP = %d, want 202", code)
	}
}

func TestRateLimiterStopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Stop()
	rl.Stop() // second call must not panic
}
