package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"recipe-finder/internal/core/diet"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Queue     *diet.QueueStatus      `json:"queue,omitempty"`
}

// Pinger 可檢查連線狀態的資料來源
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler 健康檢查處理程序
type Handler struct {
	cfg    *config.Config
	source Pinger
	jobs   *diet.JobManager
}

// NewHandler 創建健康檢查處理程序，source 或 jobs 可為 nil
func NewHandler(cfg *config.Config, source Pinger, jobs *diet.JobManager) *Handler {
	return &Handler{
		cfg:    cfg,
		source: source,
		jobs:   jobs,
	}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.cfg.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.jobs != nil {
		status := h.jobs.Status()
		response.Queue = &status
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器，確認資料來源可用
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.source != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.source.Ping(ctx); err != nil {
			common.LogWarn("資料來源未就緒", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"store":  h.cfg.Store.Driver,
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
