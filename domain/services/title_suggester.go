package services

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitleSuggester derives a human-readable title from an image file name
type TitleSuggester interface {
	// SuggestTitle returns the suggested title for filename
	SuggestTitle(filename string) string
}

// Whitespace as understood by browsers: ASCII controls, Unicode space
// separators, line/paragraph separators and the BOM.
const whitespaceClass = `\t\n\v\f\r\p{Zs}\x{2028}\x{2029}\x{FEFF}`

// noiseWords are camera and meme-site tokens that carry no meaning in a title
const noiseWords = `img|image|pic|picture|photo|screenshot|snapshot|meme|funny|humor|joke|comic|cartoon`

var (
	extensionPattern = regexp.MustCompile(`\.[^/.]+$`)
	separatorPattern = regexp.MustCompile(`[-_]+`)
	spacePattern     = regexp.MustCompile(`[` + whitespaceClass + `]+`)

	// Applied in order; each match is replaced by a single space.
	cleanupPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(` + noiseWords + `)_`),
		regexp.MustCompile(`(?i)_(` + noiseWords + `)$`),
		regexp.MustCompile(`_\d{4}-\d{2}-\d{2}$`),
		regexp.MustCompile(`_\d{8}$`),
		regexp.MustCompile(`_\d{1,4}$`),
		separatorPattern,
		spacePattern,
		regexp.MustCompile(`[^a-zA-Z0-9` + whitespaceClass + `]`),
	}
)

// minTitleLength is the shortest cleaned title accepted before falling back
// to the lightly cleaned file name.
const minTitleLength = 3

// DefaultTitleSuggester implements the file-name heuristic used by bulk import
type DefaultTitleSuggester struct{}

// NewDefaultTitleSuggester creates a title suggester
func NewDefaultTitleSuggester() *DefaultTitleSuggester {
	return &DefaultTitleSuggester{}
}

// SuggestTitle strips the extension, removes noise prefixes/suffixes and
// trailing dates or counters, turns separators into spaces and drops
// punctuation. If fewer than three characters survive, the file name minus
// extension with separators turned into spaces is used instead. Every
// space-separated word is then capitalized.
func (s *DefaultTitleSuggester) SuggestTitle(filename string) string {
	base := extensionPattern.ReplaceAllString(filename, "")

	name := base
	for _, p := range cleanupPatterns {
		name = p.ReplaceAllString(name, " ")
	}
	name = spacePattern.ReplaceAllString(trimSpace(name), " ")

	if len(name) < minTitleLength {
		name = trimSpace(separatorPattern.ReplaceAllString(base, " "))
	}

	words := strings.Split(name, " ")
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// capitalize upper-cases the first rune and lower-cases the rest using full
// Unicode case mappings, so a rune may expand (ß becomes SS). Casers hold
// state and are not shared.
func capitalize(word string) string {
	for i := range word {
		if i == 0 {
			continue
		}
		return cases.Upper(language.Und).String(word[:i]) + cases.Lower(language.Und).String(word[i:])
	}
	return cases.Upper(language.Und).String(word)
}

func trimSpace(s string) string {
	return strings.TrimFunc(s, isSpace)
}

func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', 0x00A0, 0x1680, 0x2028, 0x2029, 0x202F, 0x205F, 0x3000, 0xFEFF:
		return true
	}
	return r >= 0x2000 && r <= 0x200A
}
