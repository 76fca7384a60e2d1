package recipe

import (
	"sort"
	"unicode/utf8"
)

// Suggest 列出整個資料集中與現有食材無關的詞組，依長度由短到長排序。
// limit <= 0 表示不限制數量。
func Suggest(ds Dataset, ingredients []string, limit int) ([]string, error) {
	if missing := ds.MissingColumns(ColumnIngredients); len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	pantry := NormalizePantry(ingredients)
	seen := make(map[string]struct{})
	suggestions := make([]string, 0)
	for _, row := range ds.Rows {
		for _, phrase := range SplitPhrases(Text(row[ColumnIngredients])) {
			if _, ok := seen[phrase]; ok {
				continue
			}
			seen[phrase] = struct{}{}
			if !coveredBy(phrase, pantry) {
				suggestions = append(suggestions, phrase)
			}
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return utf8.RuneCountInString(suggestions[i]) < utf8.RuneCountInString(suggestions[j])
	})

	if limit > 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}
