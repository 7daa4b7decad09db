package utils

import (
	"strings"
)

// diningHallAliases maps names users pick to names the dining API serves
var diningHallAliases = map[string]string{
	"becker house dining": "Becker House Dining Room",
	"cook house dining":   "Cook House Dining Room",
	"rose house dining":   "Rose House Dining Room",
	"keeton house dining": "Keeton House Dining Room",
	"flora rose house":    "Flora Rose House Dining Room",
	"carl becker house":   "Carl Becker House Dining Room",
	"hans bethe house":    "Jansen's Dining Room at Bethe House",
	"morison dining":      "Morrison Dining",
}

// NormalizeDiningHall returns the stored name for a hall name a user picked.
// Unknown names are returned trimmed but otherwise unchanged.
func NormalizeDiningHall(name string) string {
	trimmed := strings.TrimSpace(name)
	if canonical, ok := diningHallAliases[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return trimmed
}

// NormalizeDiningHalls normalizes every name, dropping blanks and duplicates
func NormalizeDiningHalls(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		canonical := NormalizeDiningHall(name)
		if canonical == "" || seen[canonical] {
			continue
		}
		seen[canonical] = true
		out = append(out, canonical)
	}
	return out
}

// FuzzyMatchDish reports whether a dish name from free text refers to a menu
// item: case-insensitive containment in either direction
func FuzzyMatchDish(candidate, itemName string) bool {
	c := strings.ToLower(strings.TrimSpace(candidate))
	n := strings.ToLower(strings.TrimSpace(itemName))
	if c == "" || n == "" {
		return false
	}
	return strings.Contains(n, c) || strings.Contains(c, n)
}
