package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"citematch/internal/analysis"
	"citematch/internal/report"
	"citematch/internal/store"
)

// handleRunReport renders a single run as markdown or HTML.
func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	run, err := s.orchestrator.Store().GetRun(r.Context(), runID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to load run: "+err.Error(), http.StatusInternalServerError)
		return
	}

	markdown := report.Run(&run.Stats)
	s.writeReport(w, r.URL.Query().Get("format"), markdown)
}

// handleCompare renders the before/after comparison of two runs, typically a
// raw run against its preprocessed counterpart.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	baseID := r.URL.Query().Get("base")
	otherID := r.URL.Query().Get("other")
	if baseID == "" || otherID == "" {
		jsonError(w, "base and other query parameters are required", http.StatusBadRequest)
		return
	}

	st := s.orchestrator.Store()
	base, err := st.GetRun(r.Context(), baseID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "base run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to load base run: "+err.Error(), http.StatusInternalServerError)
		return
	}
	other, err := st.GetRun(r.Context(), otherID)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "other run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to load other run: "+err.Error(), http.StatusInternalServerError)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "json" || format == "" {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"base":   base,
			"other":  other,
			"impact": analysis.PreprocessingImpact(&base.Stats, &other.Stats),
		})
		return
	}
	s.writeReport(w, format, report.Comparison(&base.Stats, &other.Stats))
}

func (s *Server) writeReport(w http.ResponseWriter, format, markdown string) {
	switch format {
	case "html":
		page, err := report.HTML(markdown)
		if err != nil {
			jsonError(w, "failed to render report: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
	default:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(markdown))
	}
}
