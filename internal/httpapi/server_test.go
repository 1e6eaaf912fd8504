package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oscarandresgarntor/reading-backlog/internal/backlog"
	"github.com/oscarandresgarntor/reading-backlog/internal/extract"
	"github.com/oscarandresgarntor/reading-backlog/internal/fetch"
	"github.com/oscarandresgarntor/reading-backlog/internal/store"
)

const pageHTML = `<!DOCTYPE html>
<html><head>
<title>Testing the Standard Library</title>
<meta property="article:published_time" content="2024-03-10T08:00:00Z">
</head><body><article>
<p>The quick brown fox jumps over the lazy dog. The quick brown fox jumps over the lazy dog. The quick brown fox jumps over the lazy dog.</p>
<p>The quick brown fox jumps over the lazy dog. The quick brown fox jumps over the lazy dog. The quick brown fox jumps over the lazy dog.</p>
<p>The quick brown fox jumps over the lazy dog. The quick brown fox jumps over the lazy dog. The quick brown fox jumps over the lazy dog.</p>
</article></body></html>`

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	content := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, pageHTML)
	}))
	t.Cleanup(content.Close)

	st, err := store.Open(filepath.Join(t.TempDir(), "articles.json"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	srv := &Server{
		Store:    st,
		Fetcher:  &fetch.Client{},
		Pipeline: &extract.Pipeline{},
	}
	return srv, content
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	} else {
		r = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeArticle(t *testing.T, rec *httptest.ResponseRecorder) backlog.Article {
	t.Helper()
	var a backlog.Article
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode article: %v\n%s", err, rec.Body.String())
	}
	return a
}

func TestCreateArticle(t *testing.T) {
	srv, content := newTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/articles", map[string]any{
		"url":      content.URL + "/post",
		"tags":     []string{"go"},
		"priority": "high",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	a := decodeArticle(t, rec)
	if a.ID == "" {
		t.Fatalf("missing id: %+v", a)
	}
	if a.Title != "Testing the Standard Library" {
		t.Fatalf("title = %q", a.Title)
	}
	if a.Priority != backlog.PriorityHigh || a.Status != backlog.StatusUnread {
		t.Fatalf("got %+v", a)
	}
	if len(a.Tags) == 0 || a.Tags[0] != "go" {
		t.Fatalf("tags = %v", a.Tags)
	}
	if a.DatePublished != "2024-03-10" {
		t.Fatalf("date published = %q", a.DatePublished)
	}
	if a.UsedLLM {
		t.Fatalf("no enricher configured, UsedLLM must be false")
	}
}

func TestCreateArticleValidation(t *testing.T) {
	srv, content := newTestServer(t)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/articles", map[string]any{"url": ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty url: status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "detail") {
		t.Fatalf("error body = %s", rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/articles", map[string]any{
		"url": content.URL, "priority": "urgent",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad priority: status = %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/articles", map[string]any{
		"url": "http://127.0.0.1:1/unreachable",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unreachable url: status = %d", rec.Code)
	}
}

func TestListArticlesWithFilters(t *testing.T) {
	srv, content := newTestServer(t)
	router := srv.Router()

	for _, p := range []string{"low", "high"} {
		rec := doJSON(t, router, http.MethodPost, "/api/articles", map[string]any{
			"url": content.URL + "/" + p, "priority": p,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
		}
	}

	rec := doJSON(t, router, http.MethodGet, "/api/articles", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d", rec.Code)
	}
	var all []backlog.Article
	if err := json.Unmarshal(rec.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len = %d", len(all))
	}

	rec = doJSON(t, router, http.MethodGet, "/api/articles?priority=high", nil)
	var high []backlog.Article
	if err := json.Unmarshal(rec.Body.Bytes(), &high); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(high) != 1 || high[0].Priority != backlog.PriorityHigh {
		t.Fatalf("filtered = %+v", high)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/articles?status=bogus", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad status filter: %d", rec.Code)
	}
}

func TestGetUpdateDeleteLifecycle(t *testing.T) {
	srv, content := newTestServer(t)
	router := srv.Router()

	created := decodeArticle(t, doJSON(t, router, http.MethodPost, "/api/articles", map[string]any{
		"url": content.URL,
	}))

	rec := doJSON(t, router, http.MethodGet, "/api/articles/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPatch, "/api/articles/"+created.ID, map[string]any{
		"title": "Renamed", "priority": "low",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", rec.Code, rec.Body.String())
	}
	patched := decodeArticle(t, rec)
	if patched.Title != "Renamed" || patched.Priority != backlog.PriorityLow {
		t.Fatalf("patched = %+v", patched)
	}
	if patched.Summary != created.Summary {
		t.Fatalf("summary changed by partial patch")
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/articles/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/articles/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", rec.Code)
	}
}

func TestReadUnreadToggle(t *testing.T) {
	srv, content := newTestServer(t)
	router := srv.Router()

	created := decodeArticle(t, doJSON(t, router, http.MethodPost, "/api/articles", map[string]any{
		"url": content.URL,
	}))

	rec := doJSON(t, router, http.MethodPost, "/api/articles/"+created.ID+"/read", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("read: %d", rec.Code)
	}
	if a := decodeArticle(t, rec); a.Status != backlog.StatusRead {
		t.Fatalf("status = %q", a.Status)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/articles/"+created.ID+"/unread", nil)
	if a := decodeArticle(t, rec); a.Status != backlog.StatusUnread {
		t.Fatalf("status = %q", a.Status)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/articles/does-not-exist/read", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing id: %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "healthy") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestCORSHeaders(t *testing.T) {
	srv, _ := newTestServer(t)
	router := srv.Router()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}
}
