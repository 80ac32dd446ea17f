package core

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// FormatDate returns the UTC calendar date of t (YYYY-MM-DD).
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Ratio returns num/den, or nil when den is 0.
func Ratio(num, den int) *float64 {
	if den == 0 {
		return nil
	}
	r := float64(num) / float64(den)
	return &r
}

// Percentage returns num/den*100 rounded to 2 decimals, or nil when den is 0.
func Percentage(num, den int) *float64 {
	r := Ratio(num, den)
	if r == nil {
		return nil
	}
	p := Round(*r*100, 2)
	return &p
}

func Round(f float64, decimals int) float64 {
	pow := 1.0
	for i := 0; i < decimals; i++ {
		pow *= 10
	}
	if f < 0 {
		return float64(int64(f*pow-.5)) / pow
	}
	return float64(int64(f*pow+.5)) / pow
}
