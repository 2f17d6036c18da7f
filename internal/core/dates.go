package core

// dates.go turns user-typed match dates into canonical YYYY-MM-DD strings.
//
// Spreadsheet exports mix ISO, day-first and US dates with any of the -, /
// and . separators. Strict layouts are tried in a fixed order, so an
// ambiguous value such as 05/10/2024 is read day-first. Values no strict
// layout accepts go through a permissive numeric fallback. Nothing here
// interprets time zones: dates are calendar dates only.

import (
	"strconv"
	"strings"
	"time"
)

// isoDate is the canonical output layout.
const isoDate = "2006-01-02"

// TwoDigitYearPivot splits two-digit years: values at or above it are 19xx,
// values below are 20xx.
const TwoDigitYearPivot = 70

// Strict layouts in priority order. Month and day accept one or two digits;
// 2006 takes exactly four digits and 06 exactly two.
var (
	fourDigitYearLayouts = []string{
		"2006-1-2", "2006/1/2", "2006.1.2",
		"2/1/2006", "2-1-2006", "2.1.2006",
		"1/2/2006", "1-2-2006", "1.2.2006",
	}
	twoDigitYearLayouts = []string{
		"2/1/06", "2-1-06", "2.1.06",
	}
)

// NormalizeDate parses a candidate date in any supported format and returns
// it as YYYY-MM-DD. Invalid calendar dates (month 13, 31/02) never roll over;
// they fail with an InvalidDate error.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalidDate(s)
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoDate), nil
		}
	}

	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			// time.Parse pivots at 69; move 1969 to the 2000s.
			if y := t.Year() % 100; y < TwoDigitYearPivot && t.Year() < 2000 {
				t = t.AddDate(100, 0, 0)
			}
			return t.Format(isoDate), nil
		}
	}

	if d, ok := parseLooseDate(s); ok {
		return d, nil
	}
	return "", invalidDate(s)
}

// parseLooseDate accepts any mix of separators and stray whitespace, as long
// as exactly three numeric parts remain. A four-digit first part means
// Y/M/D; anything else is D/M/Y.
func parseLooseDate(s string) (string, bool) {
	s = strings.NewReplacer(".", "/", "-", "/").Replace(s)
	s = strings.Join(strings.Fields(s), "")

	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return "", false
	}

	nums := make([]int, 3)
	for i, p := range parts {
		if p == "" {
			return "", false
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return "", false
		}
		nums[i] = n
	}

	var year, month, day int
	if len(parts[0]) == 4 {
		year, month, day = nums[0], nums[1], nums[2]
	} else {
		day, month, year = nums[0], nums[1], nums[2]
		if year < 100 {
			if year >= TwoDigitYearPivot {
				year += 1900
			} else {
				year += 2000
			}
		}
	}

	if !validCalendarDate(year, month, day) {
		return "", false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format(isoDate), true
}

func validCalendarDate(year, month, day int) bool {
	if year < 1 || year > 9999 || month < 1 || month > 12 || day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}

// NormalizeMatchDateHint normalizes the caller-supplied default match date.
// A blank hint means "no default" and returns "".
func NormalizeMatchDateHint(hint string) (string, error) {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return "", nil
	}
	d, err := NormalizeDate(hint)
	if err != nil {
		return "", validationError(CodeInvalidDate, "Selecione uma data válida para os jogos.")
	}
	return d, nil
}

func invalidDate(s string) *Error {
	return validationError(CodeInvalidDate, "Data inválida: \""+s+"\".")
}
