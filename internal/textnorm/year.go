package textnorm

import "regexp"

// Dates arrive as free text in both the source database ("20 MAR 1918") and
// external result cells ("1918", "1918/1919"); the first plausible four-digit
// year wins.
var yearPattern = regexp.MustCompile(`\b(1\d{3}|20\d{2})\b`)

// ExtractYear returns the first four-digit year found in s.
func ExtractYear(s string) (int, bool) {
	match := yearPattern.FindString(s)
	if match == "" {
		return 0, false
	}
	year := 0
	for _, digit := range match {
		year = year*10 + int(digit-'0')
	}
	return year, true
}
