package diet

import (
	"context"
	"strings"
)

// Label 飲食分類結果
type Label string

const (
	LabelVegetarian    Label = "vegetarian"
	LabelNonVegetarian Label = "non-vegetarian"
	LabelUnknown       Label = "unknown"
)

// KnowledgeBase 外部知識庫
type KnowledgeBase interface {
	// ResolveEntity 回傳名稱對應的實體 ID，查無結果時回傳空字串
	ResolveEntity(ctx context.Context, name string) (string, error)
	// IsNonVegetarian 實體或其成分是否屬於非素食分類
	IsNonVegetarian(ctx context.Context, id string) (bool, error)
}

// NormalizeKey 快取鍵：去除前後空白並轉小寫
func NormalizeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
