package wikidata

import (
	"errors"
	"fmt"
)

// 查詢種類
const (
	OpSearch = "search"
	OpAsk    = "ask"
)

// ErrInvalidEntityID 實體 ID 格式錯誤
var ErrInvalidEntityID = errors.New("invalid entity id")

// LookupError 知識庫查詢失敗（重試用盡、不可重試的狀態碼或回應無法解析）
type LookupError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *LookupError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("wikidata %s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("wikidata %s failed: %v", e.Op, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// IsLookupError 判斷是否為查詢失敗
func IsLookupError(err error) bool {
	var le *LookupError
	return errors.As(err, &le)
}
