package chunker

import (
	"regexp"
	"strings"
)

var (
	// a word, trailing blanks, a line break, leading blanks, a word
	wrappedWordRe = regexp.MustCompile(`([\p{L}\p{N}_])[^\S\n]*\n\s*([\p{L}\p{N}_])`)
	lineBreaksRe  = regexp.MustCompile(`\n+`)
	spaceRunRe    = regexp.MustCompile(`\s{2,}`)
)

// Normalize cleans text produced by page-based extractors: words split across
// a line break are joined with one space, remaining line breaks become spaces
// and whitespace runs collapse. Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	text := wrappedWordRe.ReplaceAllString(raw, "$1 $2")
	text = lineBreaksRe.ReplaceAllString(text, " ")
	text = spaceRunRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
