package settings

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// declarationPattern matches `NAME: TYPE({ ..., default: VALUE, ... })`.
// It has no nesting awareness: a `}` inside the options object ends the match.
var declarationPattern = regexp.MustCompile(`(\w+):\s*\w+\(\s*{[^}]*default:\s*([^,}]+)[^}]*}\s*\)`)

var (
	decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
	radixLiteral   = regexp.MustCompile(`^0([xX][0-9a-fA-F]+|[oO][0-7]+|[bB][01]+)$`)
)

// ExtractDefaults scans a settings declaration file and returns the declared
// variable names mapped to their default values.
func ExtractDefaults(content string) map[string]string {
	result := make(map[string]string)
	for _, match := range declarationPattern.FindAllStringSubmatch(content, -1) {
		result[match[1]] = normalizeValue(strings.TrimSpace(match[2]))
	}
	return result
}

func normalizeValue(value string) string {
	// An empty literal coerces to zero, as Number("") does.
	if value == "" {
		return "0"
	}

	if isQuoted(value) {
		if len(value) < 2 {
			return ""
		}
		return value[1 : len(value)-1]
	}

	if value == "true" || value == "false" {
		return value
	}

	if n, ok := parseNumber(value); ok {
		return formatNumber(n)
	}

	return value
}

func isQuoted(value string) bool {
	for _, quote := range []string{"'", `"`} {
		if strings.HasPrefix(value, quote) && strings.HasSuffix(value, quote) {
			return true
		}
	}
	return false
}

// parseNumber accepts the numeric literal forms a JavaScript Number() coercion
// accepts for a trimmed non-empty string.
func parseNumber(raw string) (float64, bool) {
	switch raw {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}

	if m := radixLiteral.FindStringSubmatch(raw); m != nil {
		digits := m[1]
		base := 16
		switch digits[0] {
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		n, err := strconv.ParseUint(digits[1:], base, 64)
		if err != nil {
			// Out of uint64 range; fall back to float accumulation.
			return accumulate(digits[1:], base), true
		}
		return float64(n), true
	}

	if !decimalLiteral.MatchString(raw) {
		return 0, false
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// On range errors ParseFloat returns ±Inf or 0, as Number() does.
		if errors.Is(err, strconv.ErrRange) {
			return n, true
		}
		return 0, false
	}
	return n, true
}

func accumulate(digits string, base int) float64 {
	var n float64
	for _, r := range digits {
		d, _ := strconv.ParseUint(string(r), base, 8)
		n = n*float64(base) + float64(d)
	}
	return n
}

// formatNumber renders n the way JavaScript's String(number) does.
func formatNumber(n float64) string {
	switch {
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == 0:
		return "0"
	}

	abs := math.Abs(n)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}

	// Exponent form: strip exponent zero padding ("1e-07" -> "1e-7").
	s := strconv.FormatFloat(n, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	exp = strings.TrimLeft(exp[1:], "0")
	if exp == "" {
		exp = "0"
	}
	return mantissa + "e" + sign + exp
}
