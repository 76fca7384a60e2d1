package audit

import (
	"unicode"

	"recipe-finder/internal/core/recipe"
)

// ForeignRow 名稱或食材含非英文字母的列
type ForeignRow struct {
	Index         int        `json:"index"`
	InName        bool       `json:"foreign_in_name"`
	InIngredients bool       `json:"foreign_in_ingredients"`
	Row           recipe.Row `json:"row"`
}

// ContainsForeign 是否含 A-Z/a-z 以外的字母；符號、空白、阿拉伯數字不算
func ContainsForeign(text string) bool {
	for _, r := range text {
		if r <= unicode.MaxASCII {
			continue
		}
		if unicode.IsLetter(r) {
			return true
		}
		// 羅馬數字、分數等非十進位數字也視為外文字元
		if unicode.IsNumber(r) && !unicode.Is(unicode.Nd, r) {
			return true
		}
	}
	return false
}

// DetectForeign 回傳名稱或食材含外文字元的列
func DetectForeign(ds recipe.Dataset) ([]ForeignRow, error) {
	if missing := ds.MissingColumns(recipe.ColumnName, recipe.ColumnIngredients); len(missing) > 0 {
		return nil, &recipe.SchemaError{Missing: missing}
	}

	flagged := make([]ForeignRow, 0)
	for i, row := range ds.Rows {
		inName := ContainsForeign(recipe.Text(row[recipe.ColumnName]))
		inIngredients := ContainsForeign(recipe.Text(row[recipe.ColumnIngredients]))
		if inName || inIngredients {
			flagged = append(flagged, ForeignRow{
				Index:         i,
				InName:        inName,
				InIngredients: inIngredients,
				Row:           row,
			})
		}
	}
	return flagged, nil
}
