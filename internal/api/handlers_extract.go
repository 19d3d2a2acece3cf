package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"citematch/internal/citation"
	"citematch/internal/parser"
)

// extractedCitation is one citation found in an uploaded document.
type extractedCitation struct {
	Citation string `json:"citation"`
	Law      string `json:"law,omitempty"`
	Articles []int  `json:"articles,omitempty"`
}

// handleExtract parses an uploaded document and scans its text for law
// citations, resolving each against the registry where possible.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	p, err := parser.ForFile(filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := p.Extract(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "parse document: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	registry := s.orchestrator.Registry()
	found := citation.Scan(doc.Text())
	citations := make([]extractedCitation, 0, len(found))
	resolved := 0
	for _, cit := range found {
		ec := extractedCitation{Citation: cit}
		if abbrev, ok := citation.ExtractAbbreviation(cit); ok {
			if law, ok := registry.ResolveAbbrev(abbrev); ok {
				ec.Law = law
				resolved++
			}
		}
		ec.Articles = citation.ExtractArticles(cit).Sorted()
		citations = append(citations, ec)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"filename":  filename,
		"title":     doc.Title,
		"citations": citations,
		"total":     len(citations),
		"resolved":  resolved,
	})
}
