package jobs

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lower-cases and strips diacritics so "Målning" and "malning" compare equal.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

// Lower lower-cases s in composed form and keeps diacritics, so "städ" and
// "stad" stay distinct.
func Lower(s string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(s)))
}

// ContainsWord reports whether text contains term at a word start.
func ContainsWord(text, term string) bool {
	return containsTerm(text, term, true)
}

// MatchTerm reports whether text contains term as a whole word or phrase.
// A trailing "*" makes term a stem that matches any word starting with it.
func MatchTerm(text, term string) bool {
	stem := strings.HasSuffix(term, "*")
	return containsTerm(text, strings.TrimSuffix(term, "*"), stem)
}

func containsTerm(text, term string, stem bool) bool {
	if term == "" {
		return false
	}
	for idx := 0; idx < len(text); {
		pos := strings.Index(text[idx:], term)
		if pos < 0 {
			return false
		}
		at := idx + pos
		end := at + len(term)
		if !letterBefore(text, at) && (stem || !letterAt(text, end)) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[at:])
		idx = at + size
	}
	return false
}

func letterBefore(text string, at int) bool {
	if at == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:at])
	return unicode.IsLetter(r)
}

func letterAt(text string, at int) bool {
	if at >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[at:])
	return unicode.IsLetter(r)
}
