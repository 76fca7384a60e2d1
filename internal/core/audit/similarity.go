package audit

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// 近似比對預設值
const (
	DefaultThreshold = 85
	DefaultLimit     = 1000
	candidatesPerKey = 5
)

// CloseMatch 一組近似名稱
type CloseMatch struct {
	Name       string `json:"name"`
	CloseMatch string `json:"close_match"`
	Score      int    `json:"score"`
}

// CloseMatches 對前 limit 筆值兩兩計分，每個值保留分數最高的五個候選，
// 再排除完全相同的字串與低於門檻的結果
func CloseMatches(values []string, threshold, limit int) []CloseMatch {
	if limit > 0 && len(values) > limit {
		values = values[:limit]
	}

	processed := make([]string, len(values))
	for i, v := range values {
		processed[i] = fullProcess(v)
	}

	type candidate struct {
		index int
		score int
	}

	matches := make([]CloseMatch, 0)
	scored := make([]candidate, len(values))
	for i, name := range values {
		for j := range values {
			scored[j] = candidate{index: j, score: tokenSetRatio(processed[i], processed[j])}
		}
		sort.SliceStable(scored, func(a, b int) bool {
			return scored[a].score > scored[b].score
		})

		top := scored
		if len(top) > candidatesPerKey {
			top = top[:candidatesPerKey]
		}
		for _, c := range top {
			other := values[c.index]
			if other == name || c.score < threshold {
				continue
			}
			matches = append(matches, CloseMatch{Name: name, CloseMatch: other, Score: c.score})
		}
	}
	return matches
}

// TokenSetRatio 0-100 的相似分數，忽略大小寫、標點與字詞順序
func TokenSetRatio(a, b string) int {
	return tokenSetRatio(fullProcess(a), fullProcess(b))
}

func tokenSetRatio(p1, p2 string) int {
	if p1 == "" || p2 == "" {
		return 0
	}

	t1 := tokenSet(p1)
	t2 := tokenSet(p2)

	var inter, diff1, diff2 []string
	for tok := range t1 {
		if _, ok := t2[tok]; ok {
			inter = append(inter, tok)
		} else {
			diff1 = append(diff1, tok)
		}
	}
	for tok := range t2 {
		if _, ok := t1[tok]; !ok {
			diff2 = append(diff2, tok)
		}
	}
	sort.Strings(inter)
	sort.Strings(diff1)
	sort.Strings(diff2)

	sect := strings.Join(inter, " ")
	combined1 := strings.TrimSpace(sect + " " + strings.Join(diff1, " "))
	combined2 := strings.TrimSpace(sect + " " + strings.Join(diff2, " "))

	best := ratio(sect, combined1)
	if r := ratio(sect, combined2); r > best {
		best = r
	}
	if r := ratio(combined1, combined2); r > best {
		best = r
	}
	return best
}

// ratio 以編輯距離換算的相似度
func ratio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	d := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * (1 - float64(d)/float64(longest))))
}

// fullProcess 移除非 ASCII 字元後轉小寫，非字母數字轉為空白
func fullProcess(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r > unicode.MaxASCII:
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteByte(' ')
		}
	}
	return strings.TrimSpace(b.String())
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
