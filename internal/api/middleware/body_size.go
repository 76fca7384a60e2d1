package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-finder/internal/pkg/common"
)

// BodySizeLimit 限制請求體大小的中間件
func BodySizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			common.LogWarn("Request body too large",
				zap.Int64("content_length", c.Request.ContentLength),
				zap.Int64("max_size", maxSize),
				zap.String("client_ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, common.ErrorResponse{
				Code:    common.ErrCodeInvalidRequest,
				Message: "request body too large",
				Details: gin.H{"max_size": maxSize},
			})
			return
		}

		// 未宣告長度的請求在讀取時才會被截斷
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)

		c.Next()
	}
}
