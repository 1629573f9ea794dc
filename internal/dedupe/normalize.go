package dedupe

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	trackNumberPattern = regexp.MustCompile(`^\d+\s*-\s*`)
	copySuffixPattern  = regexp.MustCompile(`\s*\(\d+\)$`)
	punctuationPattern = regexp.MustCompile(`[_\-.,:;!?'"` + "`" + `]+`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

// NormalizeTitle reduces a filename to a comparison key for title-based
// grouping: the extension, leading track numbers ("01 - ", "166 - ") and
// trailing copy markers ("song (1).flac") are stripped, the result is
// case-folded, and punctuation and whitespace runs collapse to single
// spaces. "01 - My Song.flac" and "My_Song (1).FLAC" share a key.
func NormalizeTitle(filename string) string {
	title := strings.TrimSuffix(filename, filepath.Ext(filename))
	title = trackNumberPattern.ReplaceAllString(title, "")
	title = copySuffixPattern.ReplaceAllString(title, "")
	title = strings.ToLower(title)
	title = punctuationPattern.ReplaceAllString(title, " ")
	title = whitespacePattern.ReplaceAllString(title, " ")
	return strings.TrimSpace(title)
}
