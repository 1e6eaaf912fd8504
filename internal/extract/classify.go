package extract

import (
	"net/url"
	"strings"
)

// Kind is the document classification driving extractor selection.
type Kind int

const (
	KindHTML Kind = iota
	KindPDF
)

func (k Kind) String() string {
	if k == KindPDF {
		return "pdf"
	}
	return "html"
}

// Classify decides whether a fetched resource is a PDF or an HTML document.
// The URL suffix wins over the content-type header; anything unrecognized is
// treated as HTML.
func Classify(rawURL, contentType string) Kind {
	if u, err := url.Parse(rawURL); err == nil {
		if strings.HasSuffix(strings.ToLower(u.Path), ".pdf") {
			return KindPDF
		}
	}
	if strings.Contains(strings.ToLower(contentType), "application/pdf") {
		return KindPDF
	}
	return KindHTML
}
