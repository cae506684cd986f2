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
	separatorReplacer = strings.NewReplacer("_", " ", "-", " ")
	whitespacePattern = regexp.MustCompile(`\s+`)

	// diacriticFolder decomposes accented letters and drops the combining marks,
	// folding them to their base letters.
	diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Normalizer canonicalizes text using a fixed filler-word deny-list.
//
// All methods are pure and total: empty or absent input yields "".
type Normalizer struct {
	words      []string
	irrelevant *regexp.Regexp
}

// New builds a Normalizer for the given filler-word list. Words are matched
// at word boundaries, case-insensitively; everything not listed survives
// verbatim. A nil or empty list disables filler removal.
func New(words []string) *Normalizer {
	n := &Normalizer{}
	cleaned := make([]string, 0, len(words))
	for _, word := range words {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		cleaned = append(cleaned, regexp.QuoteMeta(word))
	}
	if len(cleaned) > 0 {
		n.words = cleaned
		n.irrelevant = regexp.MustCompile(`(?i)\b(?:` + strings.Join(cleaned, "|") + `)\b`)
	}
	return n
}

// RemoveIrrelevant removes the configured filler tokens at word boundaries
// and collapses the double spaces left behind.
func (n *Normalizer) RemoveIrrelevant(text string) string {
	if text == "" {
		return ""
	}
	if n == nil || n.irrelevant == nil {
		return text
	}
	out := n.irrelevant.ReplaceAllString(text, "")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(out, " "))
}

// Normalize lowers, folds diacritics, converts separators to spaces, strips
// filler tokens, and collapses whitespace. Idempotent by construction.
func (n *Normalizer) Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	out := separatorReplacer.Replace(text)
	out = strings.ToLower(out)
	out = foldDiacritics(out)
	out = n.RemoveIrrelevant(out)
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(out, " "))
}

// Canonical normalizes and then strips every remaining non-alphanumeric
// rune, producing a compact identifier-safe form for equality comparisons.
func (n *Normalizer) Canonical(text string) string {
	normalized := n.Normalize(text)
	if normalized == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(normalized))
	for _, r := range normalized {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Tokens splits the normalized text on non-alphanumeric boundaries,
// discarding punctuation residue such as emptied parentheses.
func (n *Normalizer) Tokens(text string) []string {
	normalized := n.Normalize(text)
	if normalized == "" {
		return nil
	}
	return strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func foldDiacritics(text string) string {
	folded, _, err := transform.String(diacriticFolder, text)
	if err != nil {
		return text
	}
	return folded
}
