package core

// convert.go provides the scalar conversions behind Mapper coercion rules.
//
// These functions handle the messy reality of spreadsheet exports:
//   - Multiple date formats (US, EU, ISO, Excel serial numbers)
//   - Currency symbols and thousand separators in numbers
//   - Integers that arrive as floats ("3.0") after a round trip through Excel
//   - Excel formula prefixes (="value")
//
// Each To* function returns an error for input it cannot interpret; the
// Mapper decides what a failure turns into.

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

var errNull = errors.New("null value")

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

// Timestamp layouts split by year format for proper 2-digit year handling
var (
	twoDigitYearLayouts = []string{
		"1/2/06 15:04:05", "1/2/06 15:04", "1/2/06",
		"01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
		"2006/01/02 15:04:05",
		"1/2/2006 15:04:05",
		"1/2/2006 15:04",
		"1/2/2006 3:04:05 PM",
		"1/2/2006 3:04 PM",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"Jan 2, 2006", "2 Jan 2006",
		"20060102",
	}
)

// Excel serial dates: 1 is 1900-01-01, 2958465 is 9999-12-31.
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// CleanNumber strips currency symbols, thousands separators and the
// accounting negative form "(123.45)". It returns "" when the result is
// not numeric.
func CleanNumber(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "\u20ac", "") // Euro
	s = strings.ReplaceAll(s, "\u00a3", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return ""
	}
	return s
}

// ToInt converts a value to int64. Floats are truncated toward zero.
func ToInt(v any) (int64, error) {
	if IsNull(v) {
		return 0, errNull
	}
	s, ok := v.(string)
	if !ok {
		if f, isFloat := v.(float64); isFloat {
			return floatToInt(f)
		}
		return cast.ToInt64E(v)
	}

	clean := CleanNumber(CleanCell(s))
	if clean == "" {
		return 0, errors.New("invalid number: " + s)
	}
	if i, err := strconv.ParseInt(clean, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, errors.New("invalid number: " + s)
	}
	return floatToInt(f)
}

// int64 bounds as floats; both are exact powers of two.
const (
	minIntFloat = -(1 << 63)
	maxIntFloat = 1 << 63
)

// floatToInt truncates f toward zero, rejecting values int64 cannot hold.
func floatToInt(f float64) (int64, error) {
	if math.IsNaN(f) || f < minIntFloat || f >= maxIntFloat {
		return 0, fmt.Errorf("number %g out of int64 range", f)
	}
	return int64(f), nil
}

// ToFloat converts a value to float64.
func ToFloat(v any) (float64, error) {
	if IsNull(v) {
		return 0, errNull
	}
	s, ok := v.(string)
	if !ok {
		return cast.ToFloat64E(v)
	}

	clean := CleanNumber(CleanCell(s))
	if clean == "" {
		return 0, errors.New("invalid number: " + s)
	}
	return strconv.ParseFloat(clean, 64)
}

// ToTimestamp converts a value to time.Time.
// Strings are tried against the known layouts (with 2-digit year pivot),
// then as an Excel serial number, then through cast's parser.
func ToTimestamp(v any) (time.Time, error) {
	if IsNull(v) {
		return time.Time{}, errNull
	}
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case float64:
		return fromExcelSerial(x)
	case string:
		return parseTimestamp(x)
	}
	return cast.ToTimeE(v)
}

func parseTimestamp(s string) (time.Time, error) {
	s = CleanCell(s)

	// Try 4-digit year layouts first (unambiguous)
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	// Try 2-digit year layouts with pivot year adjustment
	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, nil
		}
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromExcelSerial(f)
	}

	return cast.ToTimeE(s)
}

func fromExcelSerial(f float64) (time.Time, error) {
	if f < minExcelSerial || f > maxExcelSerial {
		return time.Time{}, errors.New("value out of Excel date range")
	}
	return excelize.ExcelDateToTime(f, false)
}

// ToText renders a value as a string. Integral floats render without a
// decimal part, so an id read as 1.0 becomes "1".
func ToText(v any) (string, error) {
	if IsNull(v) {
		return "", errNull
	}
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x), nil
	case float64:
		return KeyString(x), nil
	case time.Time:
		return x.Format("2006-01-02 15:04:05"), nil
	}
	return cast.ToStringE(v)
}

// Truncate shortens s to at most n characters (runes). n <= 0 disables it.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace (including non-breaking spaces)
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}
