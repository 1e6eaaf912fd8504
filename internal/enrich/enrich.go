package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/oscarandresgarntor/reading-backlog/internal/extract"
	"github.com/oscarandresgarntor/reading-backlog/internal/llm"
)

const (
	// DefaultModel matches the default tag of a stock local Ollama install.
	DefaultModel = "llama3.2"

	defaultMaxTextLen = 6000
	defaultMinTextLen = 50
	defaultTimeout    = 30 * time.Second
	probeTimeout      = 2 * time.Second

	// maxOutputTokens bounds the completion; the expected JSON is tiny.
	maxOutputTokens = 500

	truncationMarker = "\n\n[Text truncated...]"
)

const promptTemplate = `Analyze this document and extract the following information. Respond ONLY with a JSON object, no other text.

Document text:
%s

---

Extract and return a JSON object with these fields:
- "title": The main title of the document (be accurate, use the actual title)
- "summary": A concise 2-3 sentence summary of the main content
- "suggested_tags": An array of 2-4 relevant topic tags (lowercase, single words)

JSON response:`

// Enricher asks a local chat model for title, summary and tags. Every failure
// mode degrades to a nil result; nothing here ever reaches the caller as an
// error.
type Enricher struct {
	Client llm.Client
	Model  string

	// MaxTextLen truncates document text before prompting; zero means 6000.
	MaxTextLen int
	// MinTextLen skips enrichment for stubs; zero means 50.
	MinTextLen int
	// Timeout bounds the completion call; zero means 30s.
	Timeout time.Duration
}

var _ extract.Enricher = (*Enricher)(nil)

// Enrich sends the document text to the model and parses the structured
// response. It returns nil when the service is unreachable, the text is too
// short, the call fails or times out, or the response cannot be parsed.
func (e *Enricher) Enrich(ctx context.Context, text string) *extract.Enrichment {
	if e == nil || e.Client == nil || strings.TrimSpace(e.Model) == "" {
		return nil
	}
	if !e.alive(ctx) {
		log.Debug().Msg("model service not reachable, skipping enrichment")
		return nil
	}

	maxLen := e.MaxTextLen
	if maxLen <= 0 {
		maxLen = defaultMaxTextLen
	}
	minLen := e.MinTextLen
	if minLen <= 0 {
		minLen = defaultMinTextLen
	}
	if len(text) > maxLen {
		cut := maxLen
		// Back up to a rune boundary so the prompt stays valid UTF-8.
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + truncationMarker
	}
	if len(strings.TrimSpace(text)) < minLen {
		return nil
	}

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := e.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(promptTemplate, text)},
		},
		Temperature: 0.1,
		MaxTokens:   maxOutputTokens,
		N:           1,
	})
	if err != nil {
		log.Debug().Err(err).Msg("enrichment call failed")
		return nil
	}
	if len(resp.Choices) == 0 {
		return nil
	}

	payload := parseResponse(strings.TrimSpace(resp.Choices[0].Message.Content))
	if payload == nil || payload.Title == nil || payload.Summary == nil {
		return nil
	}
	return &extract.Enrichment{
		Title:         strings.TrimSpace(*payload.Title),
		Summary:       strings.TrimSpace(*payload.Summary),
		SuggestedTags: payload.SuggestedTags,
	}
}

// alive probes the backing service cheaply before shipping document text.
// Clients without the ModelLister capability are assumed reachable.
func (e *Enricher) alive(ctx context.Context) bool {
	lister, ok := e.Client.(llm.ModelLister)
	if !ok {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	_, err := lister.ListModels(ctx)
	return err == nil
}

type payload struct {
	Title         *string  `json:"title"`
	Summary       *string  `json:"summary"`
	SuggestedTags []string `json:"suggested_tags"`
}

var (
	// First {...} span with no nested braces.
	reFlatObject = regexp.MustCompile(`\{[^{}]*\}`)
	// First {...} span, greedy, nesting allowed.
	reAnyObject = regexp.MustCompile(`(?s)\{.*\}`)
)

// parseResponse recovers a JSON object from model output that may carry
// prose or code fences around it. First successful parse wins.
func parseResponse(s string) *payload {
	if p := decode(s); p != nil {
		return p
	}
	if m := reFlatObject.FindString(s); m != "" {
		if p := decode(m); p != nil {
			return p
		}
	}
	if m := reAnyObject.FindString(s); m != "" {
		if p := decode(m); p != nil {
			return p
		}
	}
	return nil
}

func decode(s string) *payload {
	var p payload
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil
	}
	return &p
}
