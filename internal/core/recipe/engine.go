package recipe

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// YoutubeSearchURL 影片搜尋連結前綴
const YoutubeSearchURL = "https://www.youtube.com/results?search_query="

// normalizedQuery 正規化後的查詢條件
type normalizedQuery struct {
	pantry  []string
	name    string
	diet    string
	course  string
	state   string
	prepMax *int
	cookMax *int
}

// predicate 單一篩選條件
type predicate func(r *Record) bool

// Evaluate 依食材篩選並依缺少食材數量排序
func Evaluate(ds Dataset, q Query) ([]MatchResult, error) {
	nq, err := normalizeQuery(q)
	if err != nil {
		return nil, err
	}

	records, err := DecodeRecords(ds)
	if err != nil {
		return nil, err
	}

	// 食材為必要條件，其餘選填條件在其後套用
	filters := append([]predicate{nq.containsPantry}, nq.optionalFilters()...)

	results := make([]MatchResult, 0)
	for i := range records {
		r := &records[i]
		if !matchAll(r, filters) {
			continue
		}
		missing := nq.missingIngredients(r.Ingredients)
		results = append(results, MatchResult{
			Record:             *r,
			MissingIngredients: missing,
			MissingCount:       len(missing),
			YoutubeLink:        YoutubeLink(r.Name),
		})
	}

	// 缺少數量相同時保留原始順序
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MissingCount < results[j].MissingCount
	})

	return results, nil
}

// YoutubeLink 以食譜名稱的單字組成搜尋連結
func YoutubeLink(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = url.QueryEscape(w)
	}
	return YoutubeSearchURL + strings.Join(words, "+")
}

// NormalizePantry 去空白、轉小寫並移除空項目
func NormalizePantry(ingredients []string) []string {
	pantry := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		ing = strings.ToLower(strings.TrimSpace(ing))
		if ing != "" {
			pantry = append(pantry, ing)
		}
	}
	return pantry
}

func normalizeQuery(q Query) (*normalizedQuery, error) {
	pantry := NormalizePantry(q.Ingredients)
	if len(pantry) == 0 {
		return nil, invalidQuery("ingredients", "at least one non-empty ingredient is required")
	}

	prepMax, err := parseCeiling("prep_time_max", q.PrepTimeMax)
	if err != nil {
		return nil, err
	}
	cookMax, err := parseCeiling("cook_time_max", q.CookTimeMax)
	if err != nil {
		return nil, err
	}

	return &normalizedQuery{
		pantry:  pantry,
		name:    strings.ToLower(strings.TrimSpace(q.Name)),
		diet:    strings.ToLower(strings.TrimSpace(q.Diet)),
		course:  strings.ToLower(strings.TrimSpace(q.Course)),
		state:   strings.ToLower(strings.TrimSpace(q.State)),
		prepMax: prepMax,
		cookMax: cookMax,
	}, nil
}

// parseCeiling 解析時間上限，接受整數或小數部分為零的數字
func parseCeiling(field, raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return &n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, invalidQuery(field, "%q is not an integer", raw)
	}
	n := int(f)
	return &n, nil
}

func (nq *normalizedQuery) optionalFilters() []predicate {
	var filters []predicate
	if nq.name != "" {
		filters = append(filters, func(r *Record) bool {
			return strings.Contains(strings.ToLower(r.Name), nq.name)
		})
	}
	if nq.diet != "" {
		filters = append(filters, equalFold(nq.diet, func(r *Record) string { return r.Diet }))
	}
	if nq.prepMax != nil {
		filters = append(filters, atMost(*nq.prepMax, func(r *Record) *float64 { return r.PrepTime }))
	}
	if nq.cookMax != nil {
		filters = append(filters, atMost(*nq.cookMax, func(r *Record) *float64 { return r.CookTime }))
	}
	if nq.course != "" {
		filters = append(filters, equalFold(nq.course, func(r *Record) string { return r.Course }))
	}
	if nq.state != "" {
		filters = append(filters, equalFold(nq.state, func(r *Record) string { return r.State }))
	}
	return filters
}

// containsPantry 每個食材都必須是原始食材文字的子字串（不分大小寫）
func (nq *normalizedQuery) containsPantry(r *Record) bool {
	text := strings.ToLower(r.Ingredients)
	for _, token := range nq.pantry {
		if !strings.Contains(text, token) {
			return false
		}
	}
	return true
}

// missingIngredients 不包含任何食材關鍵字的詞組即為缺少
func (nq *normalizedQuery) missingIngredients(ingredients string) []string {
	missing := make([]string, 0)
	for _, phrase := range SplitPhrases(ingredients) {
		if !coveredBy(phrase, nq.pantry) {
			missing = append(missing, phrase)
		}
	}
	return missing
}

func coveredBy(phrase string, pantry []string) bool {
	for _, token := range pantry {
		if strings.Contains(phrase, token) {
			return true
		}
	}
	return false
}

func equalFold(want string, field func(r *Record) string) predicate {
	return func(r *Record) bool {
		return strings.ToLower(strings.TrimSpace(field(r))) == want
	}
}

func atMost(ceiling int, field func(r *Record) *float64) predicate {
	return func(r *Record) bool {
		v := field(r)
		return v != nil && *v <= float64(ceiling)
	}
}

func matchAll(r *Record, filters []predicate) bool {
	for _, f := range filters {
		if !f(r) {
			return false
		}
	}
	return true
}
