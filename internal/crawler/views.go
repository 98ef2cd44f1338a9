package crawler

import (
	"math/big"
	"regexp"
	"strings"
)

// Rendered counts often separate the number with a no-break space.
var viewsPattern = regexp.MustCompile(`(?i)^([\d,.]+)([KMB])?[\s\p{Z}]*views?$`)

var magnitudes = map[string]int64{
	"":  1,
	"K": 1_000,
	"M": 1_000_000,
	"B": 1_000_000_000,
}

// NormalizeViews turns view-count text such as "1.2M views" or "2,300 view"
// into an integer. Anything it cannot read counts as zero views.
func NormalizeViews(text string) int64 {
	m := viewsPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0
	}

	number := strings.ReplaceAll(m[1], ",", "")
	value, ok := new(big.Rat).SetString(number)
	if !ok || value.Sign() < 0 {
		return 0
	}
	value.Mul(value, new(big.Rat).SetInt64(magnitudes[strings.ToUpper(m[2])]))

	// Quo truncates toward zero.
	count := new(big.Int).Quo(value.Num(), value.Denom())
	if !count.IsInt64() {
		return 0
	}
	return count.Int64()
}
