// Package number parses numeric values out of loosely typed catalog and analyzer data.
package number

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseFloat extracts a float from numbers, numeric strings and decorated strings
// such as "1.500,00 TL" or "4,5 / 5". Anything unparsable yields 0.
func ParseFloat(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case json.Number:
		return ParseString(x.String())
	case string:
		return ParseString(x)
	case bool:
		return 0
	default:
		return ParseString(fmt.Sprint(x))
	}
}

// ParseInt extracts a non-negative integer. Strings keep only their digits,
// so "1.234 reviews" yields 1234.
func ParseInt(v any) int {
	switch x := v.(type) {
	case nil:
		return 0
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	case float64:
		return int(finite(x))
	case float32:
		return int(finite(float64(x)))
	case json.Number:
		return digitsOnly(x.String())
	case string:
		return digitsOnly(x)
	default:
		return digitsOnly(fmt.Sprint(x))
	}
}

// ParseString parses the first numeric run of s.
//
// Separator rules: with both '.' and ',' present the last one is the decimal
// mark; a lone separator followed by exactly three digits is a thousands
// separator; repeated separators of one kind are thousands separators.
func ParseString(s string) float64 {
	start := strings.IndexFunc(s, isDigit)
	if start < 0 {
		return 0
	}
	end := start
	for end < len(s) && (isDigit(rune(s[end])) || s[end] == '.' || s[end] == ',') {
		end++
	}
	run := strings.TrimRight(s[start:end], ".,")
	negative := start > 0 && s[start-1] == '-'

	f, err := strconv.ParseFloat(canonical(run), 64)
	if err != nil {
		return 0
	}
	if negative {
		f = -f
	}
	return finite(f)
}

func canonical(run string) string {
	dots := strings.Count(run, ".")
	commas := strings.Count(run, ",")

	switch {
	case dots > 0 && commas > 0:
		lastDot := strings.LastIndex(run, ".")
		lastComma := strings.LastIndex(run, ",")
		if lastComma > lastDot {
			run = strings.ReplaceAll(run, ".", "")
			return strings.Replace(run, ",", ".", 1)
		}
		return strings.ReplaceAll(run, ",", "")
	case commas > 1:
		return strings.ReplaceAll(run, ",", "")
	case dots > 1:
		return strings.ReplaceAll(run, ".", "")
	case commas == 1:
		if groupedThousands(run, ",") {
			return strings.ReplaceAll(run, ",", "")
		}
		return strings.Replace(run, ",", ".", 1)
	case dots == 1:
		if groupedThousands(run, ".") {
			return strings.ReplaceAll(run, ".", "")
		}
		return run
	default:
		return run
	}
}

func groupedThousands(run, sep string) bool {
	_, frac, _ := strings.Cut(run, sep)
	return len(frac) == 3
}

func digitsOnly(s string) int {
	var b strings.Builder
	for _, r := range s {
		if isDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return n
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
