package recipe

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DecodeRecords 檢查 schema 並將原始列轉為 Record，呼叫者的資料不會被修改
func DecodeRecords(ds Dataset) ([]Record, error) {
	if missing := ds.MissingColumns(RequiredColumns...); len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	records := make([]Record, len(ds.Rows))
	for i, row := range ds.Rows {
		records[i] = decodeRow(row)
	}
	return records, nil
}

func decodeRow(row Row) Record {
	return Record{
		ID:          Text(row[ColumnID]),
		Name:        Text(row[ColumnName]),
		Ingredients: Text(row[ColumnIngredients]),
		Diet:        Text(row[ColumnDiet]),
		PrepTime:    Minutes(row[ColumnPrepTime]),
		CookTime:    Minutes(row[ColumnCookTime]),
		Course:      Text(row[ColumnCourse]),
		State:       Text(row[ColumnState]),
	}
}

// Text 將任意欄位值轉成文字，nil 轉為空字串
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case json.Number:
		return t.String()
	case float64:
		if math.IsNaN(t) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case *string:
		if t == nil {
			return ""
		}
		return *t
	default:
		return fmt.Sprint(t)
	}
}

// Minutes 將欄位值解析為分鐘數，無法解析時回傳 nil
func Minutes(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = parsed
	case []byte:
		return Minutes(string(t))
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// SplitPhrases 以逗號切分食材文字，去空白、轉小寫、去重並保留首次出現順序
func SplitPhrases(ingredients string) []string {
	parts := strings.Split(ingredients, ",")
	seen := make(map[string]struct{}, len(parts))
	phrases := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		phrases = append(phrases, p)
	}
	return phrases
}
