package diet

import (
	"errors"
	"net/http"
	"strings"

	"recipe-finder/internal/api/handlers"
	dietService "recipe-finder/internal/core/diet"
	"recipe-finder/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ClassifyRequest 單一名稱分類請求
type ClassifyRequest struct {
	Name string `json:"name"`
}

// ClassifyResponse 分類結果
type ClassifyResponse struct {
	Name string            `json:"name"`
	Diet dietService.Label `json:"diet"`
}

// Handler 飲食分類處理程序
type Handler struct {
	pipeline *dietService.Pipeline
	jobs     *dietService.JobManager
}

// NewHandler 創建新的飲食分類處理程序
func NewHandler(pipeline *dietService.Pipeline, jobs *dietService.JobManager) *Handler {
	return &Handler{
		pipeline: pipeline,
		jobs:     jobs,
	}
}

// HandleClassify 分類單一名稱，查詢失敗時回傳 unknown
func (h *Handler) HandleClassify(c *gin.Context) {
	var req ClassifyRequest
	if err := common.DecodeJSON(c.Request.Body, &req); err != nil {
		handlers.RespondError(c, common.ErrInvalidRequest.WithDetails(err, err.Error()))
		return
	}

	label := h.pipeline.ClassifyOne(c.Request.Context(), req.Name)

	common.LogInfo("單一名稱分類完成",
		zap.String("request_id", requestid.Get(c)),
		zap.String("name", req.Name),
		zap.String("label", string(label)),
	)
	c.JSON(http.StatusOK, ClassifyResponse{Name: req.Name, Diet: label})
}

// HandleCreateExport 建立分類匯出工作
func (h *Handler) HandleCreateExport(c *gin.Context) {
	job, err := h.jobs.Enqueue()
	if err != nil {
		if errors.Is(err, dietService.ErrClosed) {
			handlers.RespondError(c, common.ErrSourceUnavailable.WithDetails(err, nil))
			return
		}
		handlers.RespondError(c, err)
		return
	}

	c.Header("Location", "/api/v1/diet/exports/"+job.ID)
	c.JSON(http.StatusAccepted, gin.H{
		"job":   job,
		"queue": h.jobs.Status(),
	})
}

// HandleGetExport 查詢匯出工作
func (h *Handler) HandleGetExport(c *gin.Context) {
	job, err := h.jobs.Get(c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job})
}

// HandleDownloadExport 下載匯出檔
func (h *Handler) HandleDownloadExport(c *gin.Context) {
	job, err := h.jobs.Get(c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	switch job.Status {
	case dietService.JobSucceeded:
	case dietService.JobFailed:
		handlers.RespondError(c, common.ErrExportFailed.WithDetails(errors.New(job.Error), gin.H{"error": job.Error}))
		return
	default:
		handlers.RespondError(c, common.ErrJobNotFinished.WithDetails(nil, gin.H{"status": job.Status}))
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.FileAttachment(job.Path, strings.TrimSuffix(dietService.DefaultFilename, ".csv")+"-"+job.ID+".csv")
}
