package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-finder/internal/pkg/common"
)

// requestCache 記錄近期請求指紋
type requestCache struct {
	mu       sync.Mutex
	requests map[string]time.Time
	window   time.Duration
	lastGC   time.Time
}

// seen 在視窗內重複出現時回傳 true，否則記錄本次請求
func (rc *requestCache) seen(fingerprint string, now time.Time) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if now.Sub(rc.lastGC) > 10*rc.window {
		for k, t := range rc.requests {
			if now.Sub(t) > rc.window {
				delete(rc.requests, k)
			}
		}
		rc.lastGC = now
	}

	if last, ok := rc.requests[fingerprint]; ok && now.Sub(last) <= rc.window {
		return true
	}
	rc.requests[fingerprint] = now
	return false
}

// Deduplication 拒絕視窗內內容完全相同的 POST 請求
func Deduplication(window time.Duration) gin.HandlerFunc {
	if window <= 0 {
		window = time.Second
	}
	cache := &requestCache{
		requests: make(map[string]time.Time),
		window:   window,
		lastGC:   time.Now(),
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		// 計算請求體哈希
		bodyHash := ""
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogWarn("Failed to read request body", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, common.ErrorResponse{
					Code:    common.ErrCodeInvalidRequest,
					Message: "request body could not be read",
				})
				return
			}
			hash := sha256.Sum256(body)
			bodyHash = hex.EncodeToString(hash[:])
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		fingerprint := c.ClientIP() + ":" + c.Request.URL.Path + ":" + bodyHash
		if cache.seen(fingerprint, time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Code:    common.ErrCodeTooManyRequests,
				Message: "duplicate request",
			})
			return
		}

		c.Next()
	}
}
