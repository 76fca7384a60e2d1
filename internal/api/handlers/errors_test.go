package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"recipe-finder/internal/core/diet"
	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/pkg/common"

	"github.com/stretchr/testify/assert"
)

func TestToCustomError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"query", &recipe.QueryError{Field: "ingredients", Reason: "empty"}, http.StatusBadRequest, common.ErrCodeInvalidQuery},
		{"schema", &recipe.SchemaError{Missing: []string{"diet"}}, http.StatusUnprocessableEntity, common.ErrCodeSchemaError},
		{"wrapped schema", fmt.Errorf("load: %w", &recipe.SchemaError{Missing: []string{"_id"}}), http.StatusUnprocessableEntity, common.ErrCodeSchemaError},
		{"export", &diet.ExportError{Path: "x.csv", Err: errors.New("disk full")}, http.StatusInternalServerError, common.ErrCodeExportFailed},
		{"queue full", diet.ErrQueueFull, http.StatusTooManyRequests, common.ErrCodeTooManyRequests},
		{"job not found", diet.ErrJobNotFound, http.StatusNotFound, common.ErrCodeNotFound},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, common.ErrCodeGatewayTimeout},
		{"validation", common.NewValidationError("bad"), http.StatusBadRequest, common.ErrCodeInvalidRequest},
		{"custom", common.ErrJobNotFinished, http.StatusConflict, common.ErrCodeConflict},
		{"other", errors.New("boom"), http.StatusInternalServerError, common.ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := ToCustomError(tt.err)
			assert.Equal(t, tt.status, ce.Status)
			assert.Equal(t, tt.code, ce.Code)
		})
	}
}
