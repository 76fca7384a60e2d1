package recipe

import (
	"fmt"
	"strings"
)

// SchemaError 資料集缺少必要欄位
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// QueryError 查詢條件無效
type QueryError struct {
	Field  string
	Reason string
}

func (e *QueryError) Error() string {
	if e.Field == "" {
		return "invalid query: " + e.Reason
	}
	return fmt.Sprintf("invalid query: %s: %s", e.Field, e.Reason)
}

func invalidQuery(field, format string, args ...any) error {
	return &QueryError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
