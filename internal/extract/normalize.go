package extract

import (
	"net/url"
	"path"
	"strings"
)

const summaryRunes = 200

// CollapseWhitespace reduces every run of whitespace to a single space and
// trims the ends.
func CollapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimRight(b.String(), " ")
}

// Summarize normalizes text and caps it at 200 runes, appending an ellipsis
// marker when the source exceeded the cap.
func Summarize(text string) string {
	t := CollapseWhitespace(text)
	r := []rune(t)
	if len(r) <= summaryRunes {
		return t
	}
	return string(r[:summaryRunes]) + "..."
}

// Domain returns the host of rawURL with any leading "www." removed.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// TitleFromPath derives a human-readable title from the final path segment of
// a URL: extension stripped, underscores and hyphens turned into spaces.
func TitleFromPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		return ""
	}
	if unescaped, err := url.PathUnescape(base); err == nil {
		base = unescaped
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	return CollapseWhitespace(base)
}
