package wikitext

import (
	"strings"
	"time"
)

// ExternalLink renders an external hyperlink: [link text].
func ExternalLink(link, text string) string {
	return "[" + link + " " + text + "]"
}

// WikiLink renders an internal page link: [[page | text]].
func WikiLink(page, text string) string {
	return "[[" + page + " | " + text + "]]"
}

// FormatDate renders a timestamp the way the activity pages expect it,
// e.g. "02 January 2006".
func FormatDate(t time.Time) string {
	return t.Format("02 January 2006")
}

// EscapeHashtag neutralizes '#' so changeset hashtags are not parsed as
// wikitext list markup.
func EscapeHashtag(s string) string {
	return strings.ReplaceAll(s, "#", "<nowiki>#</nowiki>")
}
