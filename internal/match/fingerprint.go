package match

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"genecrawler/internal/sources"
	"genecrawler/internal/textnorm"
)

// Fingerprint derives a stable identity for a candidate from its canonical
// fields. Two rows describing the same underlying record produce the same
// fingerprint even when the source varies casing or diacritics, so re-crawls
// converge on one stored match per record.
func Fingerprint(c sources.Candidate) string {
	year := ""
	if c.Year != nil {
		year = strconv.Itoa(*c.Year)
	}
	parts := []string{
		string(c.Kind),
		year,
		textnorm.Fold(c.GivenName),
		textnorm.Fold(c.Surname),
		textnorm.Fold(c.Parish),
		textnorm.Fold(c.Locality),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
