// Package server exposes the readers over a local HTTP API for browsing
// sessions from a browser or another process.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Jiaweimsg/session-viewer/compact"
	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/Jiaweimsg/session-viewer/reader"
	"github.com/Jiaweimsg/session-viewer/redact"
	htmlrender "github.com/Jiaweimsg/session-viewer/render/html"
	jsonrender "github.com/Jiaweimsg/session-viewer/render/json"
	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
)

const shutdownTimeout = 5 * time.Second

// Server serves session data over HTTP for local browsing.
type Server struct {
	// Readers provides access to session data, one per tool.
	Readers []reader.Reader
	// Redactor scrubs message pages and search results. Nil disables it.
	Redactor *redact.Redactor
	// PageSize is used when a request does not set page_size.
	PageSize int
	// MaxResults caps search results when a request does not set max.
	MaxResults int

	router chi.Router
}

// New creates a Server for readers and registers its routes.
func New(readers []reader.Reader, redactor *redact.Redactor, pageSize, maxResults int) *Server {
	s := &Server{
		Readers:    readers,
		Redactor:   redactor,
		PageSize:   pageSize,
		MaxResults: maxResults,
		router:     chi.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestLogger)

	s.router.Get("/api/tools", s.handleTools)
	s.router.Get("/api/search", s.handleSearch)
	s.router.Route("/api/{tool}", func(r chi.Router) {
		r.Get("/projects", s.handleProjects)
		r.Get("/sessions", s.handleSessions)
		r.Get("/sessions/{session}/messages", s.handleMessages)
		r.Get("/stats", s.handleStats)
	})
	s.router.Get("/{tool}/sessions/{session}", s.handleSessionPage)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Info("serving", "addr", "http://"+addr, "tools", len(s.Readers))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	tools := make([]core.Tool, len(s.Readers))
	for i, rd := range s.Readers {
		tools[i] = rd.Tool()
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": tools})
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	rd, err := s.reader(chi.URLParam(r, "tool"))
	if err != nil {
		writeError(w, err)
		return
	}
	projects, err := rd.Projects()
	if err != nil {
		writeError(w, err)
		return
	}
	setJSON(w)
	if err := jsonrender.New(false).Projects(w, projects); err != nil {
		log.Error("encode projects", "err", err)
	}
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	rd, err := s.reader(chi.URLParam(r, "tool"))
	if err != nil {
		writeError(w, err)
		return
	}
	project := r.URL.Query().Get("project")

	if queryBool(r, "grouped") {
		groups, err := reader.SessionsGrouped(rd, project)
		if err != nil {
			writeError(w, err)
			return
		}
		setJSON(w)
		if err := jsonrender.New(false).SessionGroups(w, groups); err != nil {
			log.Error("encode session groups", "err", err)
		}
		return
	}

	sessions, err := rd.Sessions(project)
	if err != nil {
		writeError(w, err)
		return
	}
	setJSON(w)
	if err := jsonrender.New(false).Sessions(w, sessions); err != nil {
		log.Error("encode sessions", "err", err)
	}
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	page, _, err := s.page(r)
	if err != nil {
		writeError(w, err)
		return
	}
	setJSON(w)
	if err := jsonrender.New(false).Messages(w, page); err != nil {
		log.Error("encode messages", "err", err)
	}
}

func (s *Server) handleSessionPage(w http.ResponseWriter, r *http.Request) {
	page, title, err := s.page(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rnd := htmlrender.New()
	rnd.Title = title
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := rnd.Messages(w, page); err != nil {
		log.Error("render session", "session", chi.URLParam(r, "session"), "err", err)
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		writeError(w, fmt.Errorf("%w: q is required", errBadRequest))
		return
	}

	readers := s.Readers
	if tag := q.Get("tool"); tag != "" && tag != "all" {
		rd, err := s.reader(tag)
		if err != nil {
			writeError(w, err)
			return
		}
		readers = []reader.Reader{rd}
	}

	limit, err := queryInt(r, "max", s.MaxResults)
	if err != nil {
		writeError(w, err)
		return
	}
	results, err := reader.SearchAll(readers, query, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if s.Redactor != nil {
		s.Redactor.Results(results, query)
	}
	setJSON(w)
	if err := jsonrender.New(false).SearchResults(w, results); err != nil {
		log.Error("encode search results", "err", err)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	rd, err := s.reader(chi.URLParam(r, "tool"))
	if err != nil {
		writeError(w, err)
		return
	}
	var stats *core.Stats
	if queryBool(r, "tokens") {
		stats, err = reader.TokenSummary(rd)
	} else {
		stats, err = rd.Stats()
	}
	if err != nil {
		writeError(w, err)
		return
	}
	setJSON(w)
	if err := jsonrender.New(false).Stats(w, stats); err != nil {
		log.Error("encode stats", "err", err)
	}
}

// page loads the requested message page and applies redaction and, when
// asked, compaction. Pages in the query string start at 1.
func (s *Server) page(r *http.Request) (*core.Page, string, error) {
	rd, err := s.reader(chi.URLParam(r, "tool"))
	if err != nil {
		return nil, "", err
	}
	session := chi.URLParam(r, "session")
	q := r.URL.Query()

	num, err := queryInt(r, "page", 1)
	if err != nil {
		return nil, "", err
	}
	size, err := queryInt(r, "page_size", s.PageSize)
	if err != nil {
		return nil, "", err
	}

	page, err := rd.Messages(session, q.Get("project"), num-1, size)
	if err != nil {
		return nil, "", err
	}

	var transformers []core.Transformer
	if s.Redactor != nil {
		transformers = append(transformers, s.Redactor)
	}
	if v := q.Get("compact"); v != "" {
		transformers = append(transformers, compact.New(compact.Config{StripThinking: v == "no-thinking"}))
	}
	if err := core.Chain(page, transformers...); err != nil {
		return nil, "", fmt.Errorf("transform: %w", err)
	}
	return page, fmt.Sprintf("%s session %s", rd.Tool(), session), nil
}

func (s *Server) reader(tag string) (reader.Reader, error) {
	tool, err := core.ParseTool(tag)
	if err != nil {
		return nil, err
	}
	for _, rd := range s.Readers {
		if rd.Tool() == tool {
			return rd, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedTool, tag)
}

var errBadRequest = errors.New("bad request")

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequest, key)
	}
	return n, nil
}

func queryBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}

func setJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	setJSON(w)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("encode response", "err", err)
	}
}

// writeError maps reader errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound), errors.Is(err, core.ErrUnsupportedTool):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrParse):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		log.Error("request failed", "err", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "dur", time.Since(start))
	})
}
