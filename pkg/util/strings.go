package util

import "strings"

// NormalizeHeader lowercases a column header and folds separators to "_".
func NormalizeHeader(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.', '/':
			return '_'
		}
		return r
	}, s)
}

// CleanNumber strips thousands separators, currency signs and spaces.
func CleanNumber(s string) string {
	s = strings.TrimSpace(s)
	return strings.NewReplacer(",", "", "$", "", " ", "", "\u00a0", "").Replace(s)
}
