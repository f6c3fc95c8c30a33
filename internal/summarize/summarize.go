// Package summarize produces short plain-text previews of feed items.
package summarize

import (
	"regexp"
	"strings"
	"unicode"

	"clusternews/internal/core"
)

// DefaultMaxLength is the preview length, in characters, used when none is given.
const DefaultMaxLength = 200

// Ellipsis is appended to truncated previews.
const Ellipsis = "..."

var (
	emphasis     = regexp.MustCompile(`\*+`)
	markdownLink = regexp.MustCompile(`\[(.*?)\]\(.*?\)`)
)

// Summarize returns a preview of the item's body, or of its title when the
// body is blank. Markdown emphasis is dropped and links are reduced to their
// text. Previews longer than maxLength characters are cut at the last
// whitespace at or before maxLength and end with Ellipsis; a word is only split
// when the first word alone is longer than maxLength.
func Summarize(item core.Item, maxLength int) string {
	if maxLength < 1 {
		maxLength = DefaultMaxLength
	}

	text := item.Body
	if strings.TrimSpace(text) == "" {
		text = item.Title
	}
	text = Clean(text)

	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}

	cut := -1
	for i := maxLength; i > 0; i-- {
		if unicode.IsSpace(runes[i]) {
			cut = i
			break
		}
	}

	var head string
	if cut > 0 {
		head = strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace)
	}
	if head == "" {
		head = string(runes[:maxLength])
	}
	return head + Ellipsis
}

// Clean strips markdown emphasis markers, rewrites [text](url) links to text
// and trims surrounding whitespace.
func Clean(text string) string {
	text = emphasis.ReplaceAllString(text, "")
	text = markdownLink.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}
