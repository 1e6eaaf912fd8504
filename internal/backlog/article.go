package backlog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oscarandresgarntor/reading-backlog/internal/extract"
)

// Priority is the reading priority of an article.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority validates a user-supplied priority string.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(s), nil
	}
	return "", fmt.Errorf("invalid priority %q (use: low, medium, high)", s)
}

// Status is the reading status of an article.
type Status string

const (
	StatusUnread Status = "unread"
	StatusRead   Status = "read"
)

// ParseStatus validates a user-supplied status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusUnread, StatusRead:
		return Status(s), nil
	}
	return "", fmt.Errorf("invalid status %q (use: unread, read)", s)
}

// Article is one saved record in the backlog.
type Article struct {
	ID            string    `json:"id"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	Summary       string    `json:"summary"`
	Source        string    `json:"source"`
	DatePublished string    `json:"date_published,omitempty"`
	Author        string    `json:"author,omitempty"`
	DateAdded     time.Time `json:"date_added"`
	Tags          []string  `json:"tags"`
	Priority      Priority  `json:"priority"`
	Status        Status    `json:"status"`
	UsedLLM       bool      `json:"used_llm,omitempty"`
}

// Update is a partial patch; nil fields leave the record untouched.
type Update struct {
	Title    *string   `json:"title,omitempty"`
	Summary  *string   `json:"summary,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	Priority *Priority `json:"priority,omitempty"`
	Status   *Status   `json:"status,omitempty"`
}

// Apply overlays the set fields of u onto a.
func (u Update) Apply(a *Article) {
	if u.Title != nil {
		a.Title = *u.Title
	}
	if u.Summary != nil {
		a.Summary = *u.Summary
	}
	if u.Tags != nil {
		a.Tags = append([]string(nil), (*u.Tags)...)
	}
	if u.Priority != nil {
		a.Priority = *u.Priority
	}
	if u.Status != nil {
		a.Status = *u.Status
	}
}

// New assembles a stored record from pipeline output. Identity, add-timestamp
// and default status are assigned here; the extraction core never sees them.
func New(url, source string, meta extract.Metadata, priority Priority) Article {
	if priority == "" {
		priority = PriorityMedium
	}
	tags := meta.Tags
	if tags == nil {
		tags = []string{}
	}
	return Article{
		ID:            uuid.NewString(),
		URL:           url,
		Title:         meta.Title,
		Summary:       meta.Summary,
		Source:        source,
		DatePublished: meta.DatePublished,
		Author:        meta.Author,
		DateAdded:     time.Now(),
		Tags:          tags,
		Priority:      priority,
		Status:        StatusUnread,
		UsedLLM:       meta.UsedLLM,
	}
}

// SplitTags turns a raw comma-separated tag string into a trimmed list.
func SplitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
