package api

import (
	"encoding/json"
	"net/http"

	"segmark/internal/cleaner"
	"segmark/internal/splitter"
)

// splitRequest is the body for POST /api/split.
type splitRequest struct {
	Text  string `json:"text"`
	Clean bool   `json:"clean"`
}

// handleSplitPreview splits a markdown text synchronously without touching
// the knowledge base. Useful for tuning split parameters.
func (s *Server) handleSplitPreview(w http.ResponseWriter, r *http.Request) {
	var req splitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}

	sp := s.orchestrator.Splitter()
	text := req.Text
	if req.Clean {
		text = cleaner.Clean(text, sp.Config().SplitMarker)
	}

	out, stats := sp.Split(text)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(splitResponse{
		Output:   out,
		Segments: splitter.Segments(out, sp.Config().SplitMarker),
		Stats:    stats,
	})
}

type splitResponse struct {
	Output   string         `json:"output"`
	Segments []string       `json:"segments"`
	Stats    splitter.Stats `json:"stats"`
}
