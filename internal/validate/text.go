// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// corporateSuffixes are dropped from the end of a name before phrase
// matching ("Acme Tecnologia Ltda" matches "Acme Tecnologia").
var corporateSuffixes = map[string]bool{
	"ltda": true, "sa": true, "s": true, "a": true, "me": true, "epp": true,
	"eireli": true, "cia": true, "inc": true, "llc": true, "ltd": true, "co": true,
}

// stopwords never count as name tokens.
var stopwords = map[string]bool{
	"de": true, "da": true, "do": true, "dos": true, "das": true, "e": true,
	"the": true, "of": true, "and": true,
}

// Fold lowercases s, strips diacritics, and replaces every run of
// non-alphanumeric characters with a single space.
func Fold(s string) string {
	// Chains carry state, so each call builds its own.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	space := true
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// Digits returns only the decimal digits of s.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatRegistryID renders a 14-digit identifier in its canonical
// punctuation (XX.XXX.XXX/XXXX-XX). Other lengths are returned unchanged.
func FormatRegistryID(digits string) string {
	if len(digits) != 14 {
		return digits
	}
	return digits[0:2] + "." + digits[2:5] + "." + digits[5:8] + "/" + digits[8:12] + "-" + digits[12:14]
}

// Name is an entity or person name prepared for matching.
type Name struct {
	// Phrase is the folded name without trailing corporate suffixes.
	Phrase string
	// Tokens are the significant words of the name.
	Tokens []string
}

// NewName folds s into a Name.
func NewName(s string) Name {
	words := strings.Fields(Fold(s))
	end := len(words)
	for end > 0 && corporateSuffixes[words[end-1]] {
		end--
	}
	words = words[:end]

	var tokens []string
	seen := make(map[string]bool)
	for _, w := range words {
		if len(w) < 2 || stopwords[w] || corporateSuffixes[w] || seen[w] {
			continue
		}
		seen[w] = true
		tokens = append(tokens, w)
	}
	return Name{Phrase: strings.Join(words, " "), Tokens: tokens}
}

// Empty reports whether the name has nothing to match on.
func (n Name) Empty() bool { return len(n.Tokens) == 0 }

// Text is candidate text prepared for token and phrase lookups.
type Text struct {
	padded string
	tokens map[string]bool
}

// NewText folds s for matching.
func NewText(s string) Text {
	folded := Fold(s)
	t := Text{padded: " " + folded + " ", tokens: make(map[string]bool)}
	for _, w := range strings.Fields(folded) {
		t.tokens[w] = true
	}
	return t
}

// Folded returns the folded text without padding.
func (t Text) Folded() string { return strings.TrimSpace(t.padded) }

// HasToken reports whether the folded word w occurs in the text.
func (t Text) HasToken(w string) bool { return t.tokens[w] }

// HasPhrase reports whether the already-folded phrase occurs on word
// boundaries.
func (t Text) HasPhrase(phrase string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(t.padded, " "+phrase+" ")
}

// Matches counts the name tokens present in the text.
func (t Text) Matches(n Name) int {
	count := 0
	for _, tok := range n.Tokens {
		if t.tokens[tok] {
			count++
		}
	}
	return count
}

// Overlaps reports whether at least minRatio of the name tokens (and at
// least one) occur in the text.
func (t Text) Overlaps(n Name, minRatio float64) bool {
	if n.Empty() {
		return false
	}
	m := t.Matches(n)
	return m > 0 && float64(m)/float64(len(n.Tokens)) >= minRatio
}
