// Package normalize produces the canonical join keys used to reconcile
// shipment rows against invoice rows. Both sides of every join go through
// the same functions, which makes the matching case-, accent- and
// format-insensitive.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnumRe   = regexp.MustCompile(`[^A-Z0-9]`)
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
	trailingF0Re = regexp.MustCompile(`\.0$`)

	// stripAccents decomposes to NFD and drops combining marks, so
	// "Trânsito" and "Transito" compare equal.
	stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Text standardizes free text (product names, counterparties) by:
//  1. Trimming whitespace
//  2. Stripping accents
//  3. Converting to uppercase
//  4. Collapsing multiple spaces into single spaces
//
// Interior spaces are preserved; use Key when composing join keys.
func Text(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if out, _, err := transform.String(stripAccents, s); err == nil {
		s = out
	}
	s = strings.ToUpper(s)
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Key reduces a raw string to a canonical key: accent-stripped, uppercased,
// with every non-alphanumeric character removed. Total: nil input is not
// possible and empty input yields "". Idempotent.
func Key(s string) string {
	return nonAlnumRe.ReplaceAllString(Text(s), "")
}

// Plate cleans a vehicle plate, keeping only A-Z and 0-9. "ABC-1234",
// "abc 1234" and "ABC1234" all normalize to "ABC1234".
func Plate(s string) string {
	return nonAlnumRe.ReplaceAllString(strings.ToUpper(s), "")
}

// DocNumber cleans an invoice/document number cell. Spreadsheet exports
// frequently render numeric cells as floats ("12345.0") or as the textual
// null markers of the tooling that produced them; those all collapse to the
// bare number or the empty string.
func DocNumber(s string) string {
	s = strings.TrimSpace(s)
	switch s {
	case "nan", "NaN", "NAN", "None", "NaT", "null":
		return ""
	}
	return trailingF0Re.ReplaceAllString(s, "")
}

// CompositeKey joins already-normalized parts into a MatchKey. A key with an
// empty first part (missing document number or plate) is unusable and
// returns "" so callers skip indexing it.
func CompositeKey(parts ...string) string {
	if len(parts) == 0 || parts[0] == "" {
		return ""
	}
	return strings.Join(parts, "_")
}
