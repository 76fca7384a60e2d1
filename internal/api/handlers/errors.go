package handlers

import (
	"context"
	"errors"

	"recipe-finder/internal/core/diet"
	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ToCustomError 將領域錯誤轉為 API 錯誤
func ToCustomError(err error) *common.CustomError {
	var (
		ce *common.CustomError
		qe *recipe.QueryError
		se *recipe.SchemaError
		ee *diet.ExportError
	)

	switch {
	case errors.As(err, &ce):
		return ce
	case errors.As(err, &qe):
		return common.ErrInvalidQuery.WithDetails(err, gin.H{"field": qe.Field, "reason": qe.Reason})
	case errors.As(err, &se):
		return common.ErrSchema.WithDetails(err, gin.H{"missing": se.Missing})
	case errors.As(err, &ee):
		return common.ErrExportFailed.WithDetails(err, nil)
	case errors.Is(err, diet.ErrQueueFull):
		return common.ErrQueueFull.WithDetails(err, nil)
	case errors.Is(err, diet.ErrJobNotFound):
		return common.ErrNotFound.WithDetails(err, nil)
	case errors.Is(err, context.DeadlineExceeded):
		return common.ErrGatewayTimeout.WithDetails(err, nil)
	case common.IsValidationError(err):
		return common.ErrInvalidRequest.WithDetails(err, err.Error())
	default:
		return common.ErrInternalError.WithDetails(err, nil)
	}
}

// RespondError 寫出錯誤響應並記錄日誌
func RespondError(c *gin.Context, err error) {
	ce := ToCustomError(err)
	fields := []zap.Field{
		zap.String("code", ce.Code),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", requestid.Get(c)),
		zap.Error(err),
	}
	if ce.Status >= 500 {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogWarn("請求無效", fields...)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(ce.Status, ce.Response())
}
