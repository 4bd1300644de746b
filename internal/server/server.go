// Package server exposes the snapshot pipeline over HTTP for an external
// scheduler: a trigger endpoint and a status/listing endpoint, both behind
// a bearer-token shared secret.
package server

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/classvault/classvault/internal/archive"
	"github.com/classvault/classvault/internal/blob"
	"github.com/classvault/classvault/internal/pipeline"
)

// Runner executes one snapshot run. *pipeline.Pipeline is the production
// implementation.
type Runner interface {
	Run() (*pipeline.Result, error)
}

// Server routes and authorizes the HTTP surface.
type Server struct {
	mux     *http.ServeMux
	log     *slog.Logger
	runner  Runner
	store   blob.Store
	secret  string
	devMode bool
}

// New builds a Server. With an empty secret every request is rejected
// unless devMode explicitly opts into unauthenticated access.
func New(runner Runner, store blob.Store, secret string, devMode bool, log *slog.Logger) *Server {
	s := &Server{
		mux:     http.NewServeMux(),
		log:     log,
		runner:  runner,
		store:   store,
		secret:  secret,
		devMode: devMode,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/v1/snapshots", s.handleTrigger)
	s.mux.HandleFunc("GET /api/v1/status", s.handleStatus)
}

// ServeHTTP authorizes the request before any routing or work happens.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := s.authorize(r); err != nil {
		s.log.Warn("rejected unauthorized request", "path", r.URL.Path, "remote", r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}
	s.mux.ServeHTTP(w, r)
}

type authError struct{}

func (authError) Error() string { return "missing or invalid bearer token" }

// authorize compares the Authorization bearer token against the configured
// shared secret in constant time.
func (s *Server) authorize(r *http.Request) error {
	if s.secret == "" {
		if s.devMode {
			return nil
		}
		return authError{}
	}

	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return authError{}
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.secret)) != 1 {
		return authError{}
	}
	return nil
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	result, err := s.runner.Run()
	if err != nil {
		s.log.Error("snapshot run failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}

	s.log.Info("snapshot run complete",
		"key", result.Key,
		"records", result.TotalRecords,
		"duration", time.Since(started),
	)
	writeJSON(w, http.StatusOK, result)
}

// statusBody summarizes the archive set for monitoring.
type statusBody struct {
	ArchiveCount   int           `json:"archive_count"`
	TotalSizeBytes int64         `json:"total_size_bytes"`
	Oldest         *time.Time    `json:"oldest,omitempty"`
	Newest         *time.Time    `json:"newest,omitempty"`
	Archives       []blob.Handle `json:"archives"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	handles, err := s.store.List(archive.Prefix)
	if err != nil {
		s.log.Error("listing archives failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}

	// The store returns handles unordered; newest first for display.
	sort.Slice(handles, func(i, j int) bool {
		return handles[i].LastModified.After(handles[j].LastModified)
	})

	body := statusBody{
		ArchiveCount: len(handles),
		Archives:     handles,
	}
	for _, h := range handles {
		body.TotalSizeBytes += h.SizeBytes
	}
	if len(handles) > 0 {
		newest := handles[0].LastModified
		oldest := handles[len(handles)-1].LastModified
		body.Newest = &newest
		body.Oldest = &oldest
	}

	writeJSON(w, http.StatusOK, body)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
