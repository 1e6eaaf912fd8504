package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oscarandresgarntor/reading-backlog/internal/backlog"
)

var (
	// ErrNotFound means no record matched the id or prefix.
	ErrNotFound = errors.New("article not found")
	// ErrAmbiguousID means a partial id matched more than one record.
	ErrAmbiguousID = errors.New("ambiguous article id")
)

// Store persists the backlog as a single JSON array on disk. Writes rewrite
// the whole file under a mutex so one store can back the CLI and the HTTP API
// at the same time.
type Store struct {
	path string
	mu   sync.Mutex
}

// Open prepares a store at path, creating the parent directory and an empty
// file when missing.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			return nil, fmt.Errorf("init store file: %w", err)
		}
	}
	return &Store{path: path}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Filter narrows All; zero values mean no constraint.
type Filter struct {
	Status   backlog.Status
	Priority backlog.Priority
	// Tag matches case-insensitively against each article tag.
	Tag string
	// Source matches as a case-insensitive substring of the article source.
	Source string
}

func (f Filter) matches(a backlog.Article) bool {
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.Priority != "" && a.Priority != f.Priority {
		return false
	}
	if f.Tag != "" {
		found := false
		for _, t := range a.Tags {
			if strings.EqualFold(t, f.Tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Source != "" && !strings.Contains(strings.ToLower(a.Source), strings.ToLower(f.Source)) {
		return false
	}
	return true
}

// All returns the filtered backlog, newest first.
func (s *Store) All(f Filter) ([]backlog.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	articles, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]backlog.Article, 0, len(articles))
	for _, a := range articles {
		if f.matches(a) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DateAdded.After(out[j].DateAdded)
	})
	return out, nil
}

// Get returns the article with the exact id.
func (s *Store) Get(id string) (backlog.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	articles, err := s.load()
	if err != nil {
		return backlog.Article{}, err
	}
	for _, a := range articles {
		if a.ID == id {
			return a, nil
		}
	}
	return backlog.Article{}, ErrNotFound
}

// Resolve finds the single article whose id starts with prefix. More than one
// match yields ErrAmbiguousID.
func (s *Store) Resolve(prefix string) (backlog.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	articles, err := s.load()
	if err != nil {
		return backlog.Article{}, err
	}
	var matches []backlog.Article
	for _, a := range articles {
		if strings.HasPrefix(a.ID, prefix) {
			matches = append(matches, a)
		}
	}
	switch len(matches) {
	case 0:
		return backlog.Article{}, ErrNotFound
	case 1:
		return matches[0], nil
	}
	ids := make([]string, len(matches))
	for i, a := range matches {
		ids[i] = shortID(a.ID)
	}
	return backlog.Article{}, fmt.Errorf("%w: %q matches %s", ErrAmbiguousID, prefix, strings.Join(ids, ", "))
}

// Add appends a record.
func (s *Store) Add(a backlog.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	articles, err := s.load()
	if err != nil {
		return err
	}
	return s.save(append(articles, a))
}

// Update patches the record with the exact id and returns the new state.
func (s *Store) Update(id string, u backlog.Update) (backlog.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	articles, err := s.load()
	if err != nil {
		return backlog.Article{}, err
	}
	for i := range articles {
		if articles[i].ID == id {
			u.Apply(&articles[i])
			if err := s.save(articles); err != nil {
				return backlog.Article{}, err
			}
			return articles[i], nil
		}
	}
	return backlog.Article{}, ErrNotFound
}

// Delete removes the record with the exact id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	articles, err := s.load()
	if err != nil {
		return err
	}
	kept := articles[:0]
	for _, a := range articles {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(articles) {
		return ErrNotFound
	}
	return s.save(kept)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// load reads the backing file. A missing or corrupt file reads as empty so a
// damaged store never blocks new saves.
func (s *Store) load() ([]backlog.Article, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read store: %w", err)
	}
	var articles []backlog.Article
	if err := json.Unmarshal(b, &articles); err != nil {
		return nil, nil
	}
	return articles, nil
}

func (s *Store) save(articles []backlog.Article) error {
	b, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

// ExportMarkdown writes the backlog as a Markdown reading list grouped by
// status and returns the output path. An empty outPath defaults to
// reading_backlog.md next to the store file.
func (s *Store) ExportMarkdown(outPath string) (string, error) {
	articles, err := s.All(Filter{})
	if err != nil {
		return "", err
	}
	if outPath == "" {
		outPath = filepath.Join(filepath.Dir(s.path), "reading_backlog.md")
	}

	marker := map[backlog.Priority]string{
		backlog.PriorityHigh:   "(!)",
		backlog.PriorityMedium: "(~)",
		backlog.PriorityLow:    "(.)",
	}

	var b strings.Builder
	b.WriteString("# Reading Backlog\n\n")
	b.WriteString(fmt.Sprintf("*Exported: %s*\n\n", time.Now().Format("2006-01-02 15:04")))

	var unread, read []backlog.Article
	for _, a := range articles {
		if a.Status == backlog.StatusRead {
			read = append(read, a)
		} else {
			unread = append(unread, a)
		}
	}

	if len(unread) > 0 {
		b.WriteString("## Unread\n\n")
		for _, a := range unread {
			b.WriteString(fmt.Sprintf("- [%s](%s) %s", a.Title, a.URL, marker[a.Priority]))
			for _, t := range a.Tags {
				b.WriteString(" `" + t + "`")
			}
			b.WriteString("\n")
			if a.Summary != "" {
				summary := a.Summary
				if len(summary) > 100 {
					summary = summary[:100] + "..."
				}
				b.WriteString("  > " + summary + "\n")
			}
		}
		b.WriteString("\n")
	}
	if len(read) > 0 {
		b.WriteString("## Read\n\n")
		for _, a := range read {
			b.WriteString(fmt.Sprintf("- [%s](%s)\n", a.Title, a.URL))
		}
		b.WriteString("\n")
	}

	if err := os.WriteFile(outPath, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return outPath, nil
}
