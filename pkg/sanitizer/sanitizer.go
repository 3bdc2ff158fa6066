package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reControlChars    = regexp.MustCompile(`[\x00-\x1f\x7f]+`)
	reKeepLettersOnly = regexp.MustCompile(`[^0-9\p{L}]+`)
	reTrimUnderscores = regexp.MustCompile(`_+`)
)

func stripControl(s string) string {
	return reControlChars.ReplaceAllString(s, " ")
}

func collapseUnderscores(s string) string {
	s = reTrimUnderscores.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// SanitizeTitle normalizes booking titles and purposes: control characters
// stripped, whitespace collapsed, original casing kept.
func SanitizeTitle(input string) string {
	p := Pipeline{
		stripControl,
		TrimAndNormalize,
	}
	return p.Apply(input)
}

// SanitizeNotes is SanitizeTitle for longer free text (condition reports,
// damage descriptions, cancellation reasons).
func SanitizeNotes(input string) string {
	return SanitizeTitle(input)
}

// SanitizeLabel normalizes filter labels (categories, locations) to a
// lowercase underscore-separated token.
func SanitizeLabel(input string) string {
	p := Pipeline{
		func(s string) string { return strings.ToLower(strings.TrimSpace(s)) },
		func(s string) string { return reKeepLettersOnly.ReplaceAllString(s, "_") },
		collapseUnderscores,
	}
	return p.Apply(input)
}
