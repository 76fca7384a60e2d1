package recipe

import "context"

// 欄位名稱
const (
	ColumnID          = "_id"
	ColumnName        = "name"
	ColumnIngredients = "ingredients"
	ColumnDiet        = "diet"
	ColumnPrepTime    = "prep_time"
	ColumnCookTime    = "cook_time"
	ColumnCourse      = "course"
	ColumnState       = "state"
)

// RequiredColumns 篩選所需的七個欄位
var RequiredColumns = []string{
	ColumnName,
	ColumnIngredients,
	ColumnDiet,
	ColumnPrepTime,
	ColumnCookTime,
	ColumnCourse,
	ColumnState,
}

// Row 資料來源提供的一列原始資料
type Row map[string]any

// Dataset 原始食譜集合，保留欄位清單以便檢查 schema
type Dataset struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// HasColumn 檢查欄位是否存在
func (d Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// MissingColumns 回傳缺少的欄位（依 want 順序）
func (d Dataset) MissingColumns(want ...string) []string {
	var missing []string
	for _, c := range want {
		if !d.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Source 食譜資料來源
type Source interface {
	Load(ctx context.Context) (Dataset, error)
}

// Record 型別化後的食譜
type Record struct {
	ID          string   `json:"_id,omitempty"`
	Name        string   `json:"name"`
	Ingredients string   `json:"ingredients"`
	Diet        string   `json:"diet"`
	PrepTime    *float64 `json:"prep_time"`
	CookTime    *float64 `json:"cook_time"`
	Course      string   `json:"course"`
	State       string   `json:"state"`
}

// Query 篩選條件
type Query struct {
	Ingredients []string
	Name        string
	Diet        string
	// PrepTimeMax / CookTimeMax 保留原始文字，空字串代表未提供
	PrepTimeMax string
	CookTimeMax string
	Course      string
	State       string
}

// MatchResult 附帶缺少食材與影片連結的食譜
type MatchResult struct {
	Record
	MissingIngredients []string `json:"missing_ingredients"`
	YoutubeLink        string   `json:"youtube_link"`
	MissingCount       int      `json:"-"`
}
