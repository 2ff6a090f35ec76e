package textutil

import (
	"html"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	markdownLinkPattern = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	bareURLPattern      = regexp.MustCompile(`https?://\S+`)
	markdownEmphasis    = regexp.MustCompile(`(\*{1,3}|_{2,3}|~~)([^*_~]+)(\*{1,3}|_{2,3}|~~)`)
	markdownHeading     = regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s*`)
	markdownQuote       = regexp.MustCompile(`(?m)^\s*>+\s?`)
	markdownListBullet  = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	horizontalRule      = regexp.MustCompile(`(?m)^\s*([-*_]\s*){3,}$`)
	whitespacePattern   = regexp.MustCompile(`\s+`)
)

// CleanText converts a post body into plain text suitable for narration.
// Markdown links keep their label, bare URLs are dropped, emphasis and block
// markers are stripped, HTML entities are decoded, and the result is NFKC
// normalized with all whitespace, newlines included, collapsed to single
// spaces.
func CleanText(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = html.UnescapeString(text)
	text = norm.NFKC.String(text)
	text = markdownLinkPattern.ReplaceAllString(text, "$1")
	text = bareURLPattern.ReplaceAllString(text, "")
	text = horizontalRule.ReplaceAllString(text, "")
	text = markdownHeading.ReplaceAllString(text, "")
	text = markdownQuote.ReplaceAllString(text, "")
	text = markdownListBullet.ReplaceAllString(text, "")
	text = markdownEmphasis.ReplaceAllString(text, "$2")
	text = strings.ReplaceAll(text, "\u200b", "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// JoinTitle builds narration text from a title and body, adding a period
// after the title unless it already ends a sentence.
func JoinTitle(title, body string) string {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	switch {
	case title == "":
		return body
	case body == "":
		return title
	}
	if !strings.ContainsAny(title[len(title)-1:], ".!?") {
		title += "."
	}
	return title + " " + body
}

// Truncate shortens text to at most limit runes, appending an ellipsis when cut.
func Truncate(text string, limit int) string {
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return strings.TrimSpace(string(runes[:limit-3])) + "..."
}
