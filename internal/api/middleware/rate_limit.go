package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"recipe-finder/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter 依用戶端 IP 分別限流的令牌桶
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	lastGC   time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter 創建新的限流器：每個 window 最多 requests 次
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
		idleTTL:  2 * window,
		lastGC:   time.Now(),
	}
}

// Allow 檢查是否允許請求
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastGC) > rl.idleTTL {
		for k, cl := range rl.limiters {
			if now.Sub(cl.lastSeen) > rl.idleTTL {
				delete(rl.limiters, k)
			}
		}
		rl.lastGC = now
	}

	cl, ok := rl.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter.Allow()
}

// RateLimit 限流中間件
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	limiter := NewRateLimiter(requests, window)
	retryAfter := strconv.Itoa(int((window / time.Duration(max(requests, 1))).Seconds()) + 1)

	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Code:    common.ErrCodeTooManyRequests,
				Message: "too many requests",
			})
			return
		}

		c.Next()
	}
}
