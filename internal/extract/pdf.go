package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ErrCorruptDocument marks PDF bytes that could not be parsed. It is the only
// hard failure the extraction pipeline surfaces.
var ErrCorruptDocument = errors.New("corrupt document")

const (
	// pdfTextPages bounds how many pages feed the extracted text.
	pdfTextPages = 5
	// headingCandidates bounds the first-page lines considered for the
	// title heuristic.
	headingCandidates = 3
)

// PDFData is the raw outcome of heuristic PDF extraction.
type PDFData struct {
	Title        string
	FullText     string
	CreationDate string
	Author       string
}

// ExtractPDF reads document-level metadata and the text of the first few
// pages from a PDF byte stream. Title resolution order: embedded metadata,
// first-page heading, URL filename, "PDF from {domain}".
//
// The underlying parser panics on some malformed inputs, so the whole call is
// guarded and every parse failure comes back as ErrCorruptDocument.
func ExtractPDF(data []byte, sourceURL string) (out PDFData, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCorruptDocument, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return PDFData{}, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}

	var title, author, creation string
	if info := r.Trailer().Key("Info"); !info.IsNull() {
		// Text decodes PDFDocEncoding and BOM-prefixed UTF-16 strings.
		title = CollapseWhitespace(info.Key("Title").Text())
		author = CollapseWhitespace(info.Key("Author").Text())
		creation = strings.TrimSpace(info.Key("CreationDate").Text())
	}

	var text strings.Builder
	pages := r.NumPage()
	if pages > pdfTextPages {
		pages = pdfTextPages
	}
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		s, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		text.WriteString(s)
		text.WriteString("\n")
	}

	if title == "" {
		title = firstPageHeading(r)
	}
	if title == "" {
		title = TitleFromPath(sourceURL)
	}
	if title == "" {
		title = "PDF from " + Domain(sourceURL)
	}

	return PDFData{
		Title:        title,
		FullText:     CollapseWhitespace(text.String()),
		CreationDate: creation,
		Author:       author,
	}, nil
}

// firstPageHeading splits the text of page one into lines and returns the
// first one that looks like a heading rather than a stray mark or a
// paragraph. Lines are rebuilt from the glyph Y coordinates; a Y change marks
// a line break.
func firstPageHeading(r *pdf.Reader) string {
	if r.NumPage() < 1 {
		return ""
	}
	p := r.Page(1)
	if p.V.IsNull() {
		return ""
	}
	var (
		lines []string
		line  strings.Builder
		lastY float64
	)
	for i, t := range p.Content().Text {
		if i > 0 && t.Y != lastY {
			lines = append(lines, line.String())
			line.Reset()
			if len(lines) >= headingCandidates {
				break
			}
		}
		line.WriteString(t.S)
		lastY = t.Y
	}
	if line.Len() > 0 && len(lines) < headingCandidates {
		lines = append(lines, line.String())
	}
	return pickHeading(lines)
}

// pickHeading returns the first candidate whose normalized length sits in the
// heading range, counted in characters.
func pickHeading(lines []string) string {
	for _, line := range lines {
		s := CollapseWhitespace(line)
		if n := utf8.RuneCountInString(s); n > 5 && n < 200 {
			return s
		}
	}
	return ""
}

// ParsePDFDate converts a PDF-convention creation date ("D:YYYYMMDDHHmmSS",
// the "D:" prefix optional) into an ISO date. Malformed input yields "".
func ParsePDFDate(s string) string {
	s = strings.TrimPrefix(strings.TrimSpace(s), "D:")
	if len(s) < 8 {
		return ""
	}
	for i := 0; i < 8; i++ {
		if s[i] < '0' || s[i] > '9' {
			return ""
		}
	}
	return s[:4] + "-" + s[4:6] + "-" + s[6:8]
}
