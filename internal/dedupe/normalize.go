// Package dedupe implements the duplicate-detection and merge engine:
// field normalization, union-find grouping of records that represent
// the same person, and deterministic collapse of each group into one
// merged record.
package dedupe

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/hollis-labs/contacts-cli/internal/model"
)

// Key is the comparable form of one record. Derived on demand, never
// persisted or written back to the record.
type Key struct {
	Phones []string
	Emails []string
	Name   string
}

// stripMarks removes combining marks after NFD decomposition, so
// "José" and "Jose" normalize identically.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize derives the comparison key for a record. Pure and
// deterministic; identical input always yields an identical key.
func Normalize(rec model.ContactRecord) Key {
	k := Key{Name: NormalizeName(rec.DisplayName)}
	for _, p := range rec.PhoneNumbers {
		if n := NormalizePhone(p); n != "" {
			k.Phones = append(k.Phones, n)
		}
	}
	for _, e := range rec.Emails {
		if n := NormalizeEmail(e); n != "" {
			k.Emails = append(k.Emails, n)
		}
	}
	return k
}

// NormalizePhone strips everything but digits. An 11-digit number with
// a leading trunk 1 is reduced to its trailing 10 digits so national
// and local formats of the same number compare equal; any other length
// keeps the full digit string. Returns "" for numbers with no digits.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && digits[0] == '1' {
		return digits[1:]
	}
	return digits
}

// NormalizeEmail lowercases the whole address. No alias or plus-tag
// stripping: "a+b@x.com" and "a@x.com" stay distinct.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeName lowercases, folds diacritics, drops everything that is
// not a letter, digit or space, and collapses runs of whitespace.
func NormalizeName(name string) string {
	folded, _, err := transform.String(stripMarks, name)
	if err != nil {
		folded = name
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
