// Package slugs derives and registers the canonical public identifiers for
// tools and tool comparisons. Derivation is deterministic text
// normalization; the registry guarantees global uniqueness across every
// slug ever published, tracking history so retired slugs stay reserved for
// redirects.
package slugs

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxLength is the default slug length cap.
const DefaultMaxLength = 60

// stopwords are dropped from derived tool slugs; filtering never removes
// every token.
var stopwords = map[string]struct{}{
	"ai":    {},
	"app":   {},
	"apps":  {},
	"and":   {},
	"for":   {},
	"the":   {},
	"tool":  {},
	"tools": {},
	"with":  {},
}

var (
	separatorPattern = regexp.MustCompile(`[\s_]+`)
	invalidPattern   = regexp.MustCompile(`[^a-z0-9\-]`)
	hyphenRunPattern = regexp.MustCompile(`-+`)
)

// asciiFold strips diacritics and non-ASCII characters via NFKD
// decomposition, so "Café" folds to "Cafe".
var asciiFold = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
)

// Derive normalizes text into a URL-safe slug: lowercase ASCII, hyphens
// for whitespace and underscores, punctuation stripped, hyphen runs
// collapsed, trimmed, and truncated to maxLength preferring a hyphen
// boundary over a mid-word cut.
func Derive(text string, maxLength int) string {
	if text == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	folded, _, err := transform.String(asciiFold, text)
	if err != nil {
		folded = text
	}

	slug := strings.ToLower(folded)
	slug = separatorPattern.ReplaceAllString(slug, "-")
	slug = invalidPattern.ReplaceAllString(slug, "")
	slug = hyphenRunPattern.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > maxLength {
		slug = slug[:maxLength]
		// Prefer a hyphen boundary when one is reasonably close to the end.
		if cut := strings.LastIndex(slug, "-"); cut > maxLength*7/10 {
			slug = slug[:cut]
		}
		slug = strings.Trim(slug, "-")
	}

	return slug
}

// ForTool derives a tool slug with vendor and disambiguator handling.
//
// An empty name falls back to the disambiguator, then the vendor. A vendor
// prefix is prepended when the slug does not already start with it, and a
// disambiguator suffix is appended when it was not already used as the
// base. Stopwords are dropped from the base slug, but never all of them.
func ForTool(name, vendor, disambiguator string) string {
	base := Derive(name, DefaultMaxLength)
	usedDisambiguatorAsBase := false

	if base == "" && disambiguator != "" {
		base = Derive(disambiguator, DefaultMaxLength)
		usedDisambiguatorAsBase = base != ""
	}
	if base == "" && vendor != "" {
		base = Derive(vendor, DefaultMaxLength)
	}
	if base == "" {
		return ""
	}

	parts := dropStopwords(strings.Split(base, "-"))
	slug := joinBounded(parts, DefaultMaxLength)

	if vendor != "" {
		vendorSlug := Derive(vendor, 20)
		if vendorSlug != "" && !strings.HasPrefix(slug, vendorSlug+"-") && slug != vendorSlug {
			slug = joinBounded(append([]string{vendorSlug}, strings.Split(slug, "-")...), DefaultMaxLength)
		}
	}

	if disambiguator != "" && !usedDisambiguatorAsBase {
		disambiguatorSlug := Derive(disambiguator, 15)
		if disambiguatorSlug != "" {
			slug = joinBounded(append(strings.Split(slug, "-"), disambiguatorSlug), DefaultMaxLength)
		}
	}

	return slug
}

// ForPair derives a comparison slug from two participant slugs.
func ForPair(slugA, slugB string) string {
	return fmt.Sprintf("%s-vs-%s", slugA, slugB)
}

// dropStopwords filters stopword tokens, leaving at least one token.
func dropStopwords(parts []string) []string {
	if len(parts) == 0 {
		return parts
	}
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if _, ok := stopwords[part]; !ok {
			filtered = append(filtered, part)
		}
	}
	if len(filtered) == 0 {
		return parts
	}
	return filtered
}

// joinBounded joins tokens with hyphens without exceeding maxLength,
// preserving whole tokens where possible.
func joinBounded(parts []string, maxLength int) string {
	if len(parts) == 0 {
		return ""
	}

	kept := make([]string, 0, len(parts))
	total := 0
	for _, part := range parts {
		separator := 0
		if len(kept) > 0 {
			separator = 1
		}
		if total+separator+len(part) > maxLength {
			break
		}
		kept = append(kept, part)
		total += separator + len(part)
	}

	if len(kept) > 0 {
		return strings.Join(kept, "-")
	}

	// Nothing fits whole: hard trim.
	raw := strings.Join(parts, "-")
	if len(raw) > maxLength {
		raw = raw[:maxLength]
	}
	return strings.Trim(raw, "-")
}
