package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/oscarandresgarntor/reading-backlog/internal/backlog"
	"github.com/oscarandresgarntor/reading-backlog/internal/extract"
	"github.com/oscarandresgarntor/reading-backlog/internal/fetch"
	"github.com/oscarandresgarntor/reading-backlog/internal/store"
)

// Server exposes the backlog over REST for the dashboard and the browser
// extension.
type Server struct {
	Store    *store.Store
	Fetcher  *fetch.Client
	Pipeline *extract.Pipeline
}

// Router builds the API routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware, logMiddleware)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/articles", s.createArticle).Methods(http.MethodPost)
	api.HandleFunc("/articles", s.listArticles).Methods(http.MethodGet)
	api.HandleFunc("/articles/{id}", s.getArticle).Methods(http.MethodGet)
	api.HandleFunc("/articles/{id}", s.updateArticle).Methods(http.MethodPatch)
	api.HandleFunc("/articles/{id}", s.deleteArticle).Methods(http.MethodDelete)
	api.HandleFunc("/articles/{id}/read", s.setStatus(backlog.StatusRead)).Methods(http.MethodPost)
	api.HandleFunc("/articles/{id}/unread", s.setStatus(backlog.StatusUnread)).Methods(http.MethodPost)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}).Methods(http.MethodGet)

	return r
}

type createRequest struct {
	URL      string   `json:"url"`
	Tags     []string `json:"tags"`
	Priority string   `json:"priority"`
}

func (s *Server) createArticle(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, errors.New("url is required"))
		return
	}
	priority := backlog.PriorityMedium
	if req.Priority != "" {
		var err error
		if priority, err = backlog.ParsePriority(req.Priority); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	doc, err := s.Fetcher.Get(r.Context(), req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("failed to scrape article: %w", err))
		return
	}
	meta, err := s.Pipeline.Extract(r.Context(), doc, req.Tags)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("failed to scrape article: %w", err))
		return
	}

	article := backlog.New(doc.URL, extract.Domain(doc.URL), meta, priority)
	if err := s.Store.Add(article); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (s *Server) listArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f store.Filter
	if v := q.Get("status"); v != "" {
		status, err := backlog.ParseStatus(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		f.Status = status
	}
	if v := q.Get("priority"); v != "" {
		priority, err := backlog.ParsePriority(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		f.Priority = priority
	}
	f.Tag = q.Get("tag")
	f.Source = q.Get("source")

	articles, err := s.Store.All(f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) getArticle(w http.ResponseWriter, r *http.Request) {
	article, err := s.Store.Get(mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (s *Server) updateArticle(w http.ResponseWriter, r *http.Request) {
	var u backlog.Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	article, err := s.Store.Update(mux.Vars(r)["id"], u)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (s *Server) deleteArticle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.Store.Delete(id); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

func (s *Server) setStatus(status backlog.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		article, err := s.Store.Update(mux.Vars(r)["id"], backlog.Update{Status: &status})
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, article)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"detail": err.Error()})
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, errors.New("article not found"))
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}

// corsMiddleware answers permissively; browser extensions call the API from
// opaque origins.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
		next.ServeHTTP(w, r)
	})
}
