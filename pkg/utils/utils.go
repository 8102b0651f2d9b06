package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MonthsPerYear is the number of payment slots in a yearly ledger.
const MonthsPerYear = 12

var abbreviatedMonths = [MonthsPerYear]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// MonthLabel formats the slot label for a month of a year, e.g. "January-2026".
func MonthLabel(month time.Month, year int) string {
	return fmt.Sprintf("%s-%d", month.String(), year)
}

// MonthLabels returns the twelve labels of a year in calendar order.
func MonthLabels(year int) []string {
	labels := make([]string, 0, MonthsPerYear)
	for m := time.January; m <= time.December; m++ {
		labels = append(labels, MonthLabel(m, year))
	}
	return labels
}

// MonthFromName resolves a full English month name. Matching is exact and
// case-sensitive, so "march" or "Mar" do not resolve.
func MonthFromName(name string) (time.Month, bool) {
	for m := time.January; m <= time.December; m++ {
		if m.String() == name {
			return m, true
		}
	}
	return 0, false
}

// ParseMonthLabel splits a label such as "March-2026" into its month and year.
func ParseMonthLabel(label string) (time.Month, int, error) {
	name, rawYear, ok := strings.Cut(label, "-")
	if !ok {
		return 0, 0, fmt.Errorf("month label %q has no year", label)
	}
	month, ok := MonthFromName(name)
	if !ok {
		return 0, 0, fmt.Errorf("month label %q has unknown month %q", label, name)
	}
	year, err := strconv.Atoi(rawYear)
	if err != nil || year <= 0 {
		return 0, 0, fmt.Errorf("month label %q has invalid year %q", label, rawYear)
	}
	return month, year, nil
}

// AbbreviatedMonths returns Jan..Dec.
func AbbreviatedMonths() []string {
	out := make([]string, MonthsPerYear)
	copy(out, abbreviatedMonths[:])
	return out
}

// ParseYear parses a query-string year. Empty input yields (0, false, nil).
func ParseYear(s string) (int, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	year, err := strconv.Atoi(s)
	if err != nil || year < 1900 || year > 9999 {
		return 0, false, fmt.Errorf("invalid year %q", s)
	}
	return year, true, nil
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
