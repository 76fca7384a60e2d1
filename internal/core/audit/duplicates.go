package audit

import (
	"sort"

	"recipe-finder/internal/core/recipe"
)

// Duplicate 重複列
type Duplicate struct {
	Index int        `json:"index"`
	Value string     `json:"value"`
	Row   recipe.Row `json:"row"`
}

// ExactDuplicates 找出指定欄位值完全相同的所有列（每組成員全部保留），依值排序
func ExactDuplicates(ds recipe.Dataset, column string) ([]Duplicate, error) {
	if missing := ds.MissingColumns(column); len(missing) > 0 {
		return nil, &recipe.SchemaError{Missing: missing}
	}

	counts := make(map[string]int, len(ds.Rows))
	values := make([]string, len(ds.Rows))
	for i, row := range ds.Rows {
		values[i] = recipe.Text(row[column])
		counts[values[i]]++
	}

	dups := make([]Duplicate, 0)
	for i, row := range ds.Rows {
		if counts[values[i]] > 1 {
			dups = append(dups, Duplicate{Index: i, Value: values[i], Row: row})
		}
	}

	sort.SliceStable(dups, func(i, j int) bool {
		return dups[i].Value < dups[j].Value
	})
	return dups, nil
}
