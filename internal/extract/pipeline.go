package extract

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
)

// maxSuggestedTags caps how many model-suggested tags survive into Metadata.
const maxSuggestedTags = 4

// Document is a fetched resource handed to the pipeline. The fetch
// collaborator owns transport concerns; the pipeline only reads bytes.
type Document struct {
	// URL is the final URL after redirects (or a file:// URL).
	URL string
	// ContentType is the response Content-Type header, possibly empty.
	ContentType string
	Body        []byte
}

// Metadata is the normalized output of one extraction call.
type Metadata struct {
	Title         string
	Summary       string
	DatePublished string
	Author        string
	// SuggestedTags are the model-suggested tags, lowercase, at most four.
	SuggestedTags []string
	// Tags is the merged tag set: caller tags first, then suggestions.
	Tags []string
	// UsedLLM reports whether enrichment supplied title and summary.
	UsedLLM bool
}

// Enrichment is the optional result of an LLM pass over extracted text.
type Enrichment struct {
	Title         string
	Summary       string
	SuggestedTags []string
}

// Enricher supplies an optional Enrichment for a document's plain text.
// A nil result means enrichment is unavailable; it is never an error.
type Enricher interface {
	Enrich(ctx context.Context, text string) *Enrichment
}

// Pipeline turns a fetched document into Metadata: classify, extract
// heuristically, optionally enrich, merge tags.
type Pipeline struct {
	// Enricher, when nil, disables the LLM pass entirely.
	Enricher Enricher
	// MaxTags caps the merged tag list; zero means DefaultMaxTags.
	MaxTags int
}

// Extract runs the pipeline for a single document. PDF corruption is the only
// error; HTML extraction always degrades instead of failing, and enrichment
// absence silently falls back to heuristic data.
func (p *Pipeline) Extract(ctx context.Context, doc Document, userTags []string) (Metadata, error) {
	var (
		title, text, date, author string
	)
	switch Classify(doc.URL, doc.ContentType) {
	case KindPDF:
		pd, err := ExtractPDF(doc.Body, doc.URL)
		if err != nil {
			return Metadata{}, err
		}
		title, text, author = pd.Title, pd.FullText, pd.Author
		date = ParsePDFDate(pd.CreationDate)
	default:
		hd := ExtractHTML(doc.Body, doc.URL)
		title, text, date = hd.Title, hd.MainText, hd.DatePublished
	}

	meta := Metadata{
		Title:         title,
		Summary:       Summarize(text),
		DatePublished: date,
		Author:        author,
	}

	if p.Enricher != nil {
		if enr := p.Enricher.Enrich(ctx, text); enr != nil {
			if t := CollapseWhitespace(enr.Title); t != "" {
				meta.Title = t
			}
			meta.Summary = Summarize(enr.Summary)
			meta.SuggestedTags = normalizeSuggested(enr.SuggestedTags)
			meta.UsedLLM = true
		} else {
			log.Debug().Str("url", doc.URL).Msg("enrichment unavailable, using heuristic metadata")
		}
	}

	meta.Tags = MergeTags(userTags, meta.SuggestedTags, p.MaxTags)
	return meta, nil
}

func normalizeSuggested(tags []string) []string {
	out := make([]string, 0, maxSuggestedTags)
	for _, t := range tags {
		t = strings.ToLower(CollapseWhitespace(t))
		if t == "" {
			continue
		}
		out = append(out, t)
		if len(out) == maxSuggestedTags {
			break
		}
	}
	return out
}
