package extract

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	readability "github.com/go-shiori/go-readability"
)

// HTMLData is the raw outcome of heuristic HTML extraction.
type HTMLData struct {
	Title         string
	MainText      string
	DatePublished string
}

// ExtractHTML pulls main-content text and structured metadata out of an HTML
// document. It never fails: unparsable input degrades to empty text and the
// title falls back to the page <title>, then to "Article from {domain}".
func ExtractHTML(html []byte, sourceURL string) HTMLData {
	var d HTMLData

	// Boilerplate removal. Readability favors precision: navigation,
	// comments and tables do not survive into TextContent.
	if u, err := url.Parse(sourceURL); err == nil {
		if article, rerr := readability.FromReader(bytes.NewReader(html), u); rerr == nil {
			d.MainText = CollapseWhitespace(article.TextContent)
			if article.PublishedTime != nil {
				d.DatePublished = article.PublishedTime.Format("2006-01-02")
			}
		}
	}

	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html)); err == nil {
		d.Title = CollapseWhitespace(metaTitle(doc))
		if d.Title == "" {
			d.Title = CollapseWhitespace(doc.Find("title").First().Text())
		}
		if d.DatePublished == "" {
			d.DatePublished = metaDate(doc)
		}
	}
	if d.Title == "" {
		d.Title = "Article from " + Domain(sourceURL)
	}
	return d
}

func metaTitle(doc *goquery.Document) string {
	for _, sel := range []string{
		`meta[property="og:title"]`,
		`meta[name="twitter:title"]`,
	} {
		if v, ok := doc.Find(sel).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// metaDate returns the first publication date found in structured metadata,
// reduced to an ISO date when parsable and kept verbatim otherwise.
func metaDate(doc *goquery.Document) string {
	for _, sel := range []string{
		`meta[property="article:published_time"]`,
		`meta[name="date"]`,
		`meta[name="publish-date"]`,
		`meta[itemprop="datePublished"]`,
	} {
		v, ok := doc.Find(sel).First().Attr("content")
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		v = strings.TrimSpace(v)
		if t, err := dateparse.ParseAny(v); err == nil {
			return t.Format("2006-01-02")
		}
		return v
	}
	return ""
}
