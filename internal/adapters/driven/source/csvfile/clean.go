package csvfile

import (
	"math"
	"strconv"
	"strings"

	"github.com/PieMyth/CloudCluster/internal/core/domain"
)

type columnRule int

const (
	ruleInfer columnRule = iota
	ruleCurrency
	rulePercent
	ruleZipcode
)

var (
	currencyReplacer = strings.NewReplacer("$", "", ",", "")
	percentReplacer  = strings.NewReplacer("%", "", ",", "")
)

// Cleaner converts raw CSV cells into typed values.
type Cleaner struct {
	rules     map[string]columnRule
	dropEmpty bool
}

// NewCleaner builds a cleaner from the configured column lists.
func NewCleaner(s domain.CleanSettings) *Cleaner {
	c := &Cleaner{rules: make(map[string]columnRule), dropEmpty: s.DropEmpty}
	for _, f := range s.CurrencyFields {
		c.rules[f] = ruleCurrency
	}
	for _, f := range s.PercentFields {
		c.rules[f] = rulePercent
	}
	for _, f := range s.ZipcodeFields {
		c.rules[f] = ruleZipcode
	}
	return c
}

// Value converts one cell. keep is false when the cell should be omitted.
//
// Currency and percent columns become float64, or nil when the stripped text
// is not a number. Zipcode columns keep their first run of digits as a
// string. Any other cell becomes int64, then float64 (after dropping one
// leading "$"), falling back to the original text.
func (c *Cleaner) Value(column, cell string) (any, bool) {
	if cell == "" {
		if c.dropEmpty {
			return nil, false
		}
		if rule := c.rules[column]; rule == ruleCurrency || rule == rulePercent {
			return nil, true
		}
		return "", true
	}

	switch c.rules[column] {
	case ruleCurrency:
		return parseNumber(currencyReplacer.Replace(cell)), true
	case rulePercent:
		return parseNumber(percentReplacer.Replace(cell)), true
	case ruleZipcode:
		return firstDigits(cell), true
	default:
		return infer(cell), true
	}
}

func parseNumber(s string) any {
	f, ok := parseFinite(strings.TrimSpace(s))
	if !ok {
		return nil
	}
	return f
}

func infer(cell string) any {
	s := strings.TrimPrefix(cell, "$")
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, ok := parseFinite(s); ok {
		return f
	}
	return cell
}

// parseFinite rejects NaN and infinities, which JSON cannot carry.
func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// firstDigits returns the first run of ASCII digits in s, or s itself when
// it has none.
func firstDigits(s string) string {
	start := strings.IndexFunc(s, isDigit)
	if start < 0 {
		return s
	}
	end := start
	for end < len(s) && isDigit(rune(s[end])) {
		end++
	}
	return s[start:end]
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
