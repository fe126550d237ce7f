package sources

import "strings"

// SplitFullName breaks a source-reported "Given [Middle] Surname" string into
// its given and surname parts. Middle tokens are dropped since matching only
// considers the primary given name. A single-token name is treated as a bare
// given name.
func SplitFullName(full string) (given, surname string) {
	tokens := strings.Fields(full)
	switch len(tokens) {
	case 0:
		return "", ""
	case 1:
		return tokens[0], ""
	default:
		return tokens[0], tokens[len(tokens)-1]
	}
}
