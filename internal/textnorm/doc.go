// Package textnorm provides the text canonicalization used for name and
// place comparison.
//
// Genealogical sources disagree on casing and diacritics ("Czajowska" vs
// "CZAJOWSKA", "małopolskie" vs "MALOPOLSKA"), so every comparison in the
// matching pipeline goes through Fold: lowercase, diacritics stripped,
// surrounding whitespace removed. Folding is for comparison and fingerprint
// keys only; stored records keep their original spelling.
package textnorm
