// Package httpapi exposes the core search, index, and symbol-attribute
// operations over HTTP+JSON: a thin transport that decodes a request body,
// delegates to the engine, and encodes the result (or a JSON error) back.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/termfx/symgrep/internal/core"
	"github.com/termfx/symgrep/internal/index"
	"github.com/termfx/symgrep/internal/search"
)

// Server wraps the chi router backing the symgrep HTTP API.
type Server struct {
	router chi.Router
	log    *logrus.Logger
}

// NewServer builds the router: request ID/real IP/recover/timeout middleware, CORS
// for local tooling, and the /v1 routes delegating to the core engine.
func NewServer(log *logrus.Logger) *Server {
	s := &Server{log: core.EffectiveLogger(log)}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/v1/health", s.handleHealth)
	r.Post("/v1/search", s.handleSearch)
	r.Post("/v1/index", s.handleIndex)
	r.Post("/v1/index/info", s.handleIndexInfo)
	r.Post("/v1/symbol/attributes", s.handleSymbolAttributes)

	s.router = r
	return s
}

// Handler returns the http.Handler serving the API.
func (s *Server) Handler() http.Handler { return s.router }

type healthResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var cfg core.SearchConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	cfg.Logger = s.log

	result, err := search.Run(r.Context(), cfg)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var cfg core.IndexConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	cfg.Logger = s.log

	summary, err := index.Run(r.Context(), cfg)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleIndexInfo(w http.ResponseWriter, r *http.Request) {
	var cfg core.IndexConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	summary, err := index.Info(cfg)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSymbolAttributes(w http.ResponseWriter, r *http.Request) {
	var req core.SymbolAttributesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.Index.Logger = s.log

	symbol, err := index.ApplyAttributes(req.Index, req.Selector, req.Update)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, core.SymbolAttributesResponse{Symbol: symbol})
}

func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	writeError(w, core.HTTPStatus(err), err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
