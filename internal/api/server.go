// Package api exposes the engine over HTTP for incremental runs: scrapers
// POST their batches as they finish, and readers query the current match set
// and opportunities at any time.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/akratos/surebet/internal/engine"
	"github.com/akratos/surebet/internal/ingest"
)

// Server serves the engine state. All mutation goes through the matcher's
// own lock, so concurrent scraper posts are safe.
type Server struct {
	engine *engine.Engine
}

func NewServer(eng *engine.Engine) *Server {
	return &Server{engine: eng}
}

// RegisterHTTP registers all endpoints onto mux.
func (s *Server) RegisterHTTP(mux *http.ServeMux) {
	mux.HandleFunc("/records", s.handleRecords)
	mux.HandleFunc("/matches", s.handleMatches)
	mux.HandleFunc("/tables", s.handleTables)
	mux.HandleFunc("/opportunities", s.handleOpportunities)
	mux.HandleFunc("/flags", s.handleFlags)
}

// handleRecords ingests an NDJSON body of raw odds records. The bookmaker
// query parameter fills records that omit the field, mirroring the
// per-bookmaker file layout of batch mode.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	bookmaker := r.URL.Query().Get("bookmaker")
	records, report := ingest.ReadRecords(r.Body, bookmaker)
	rejected := s.engine.Add(records)

	slog.Info("api: ingested batch",
		"bookmaker", bookmaker,
		"parsed", report.Parsed,
		"malformed", report.Malformed,
		"rejected", len(rejected))

	reasons := make([]string, 0, len(rejected))
	for _, err := range rejected {
		reasons = append(reasons, err.Error())
	}
	writeJSON(w, map[string]any{
		"lines":     report.Lines,
		"parsed":    report.Parsed,
		"malformed": report.Malformed,
		"rejected":  reasons,
	})
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.engine.Matches())
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.engine.Tables())
}

func (s *Server) handleOpportunities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	opps, _ := s.engine.Opportunities()
	writeJSON(w, opps)
}

func (s *Server) handleFlags(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	_, evalFlags := s.engine.Opportunities()
	writeJSON(w, append(s.engine.Flags(), evalFlags...))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("api: failed to encode response", "error", err)
	}
}
