package linguistic

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server serves the heuristic analyzer over the same /analyze contract
// the Client speaks.
type Server struct {
	router *chi.Mux
	port   int
}

func NewServer(port int) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		port:   port,
	}

	router.Get("/", s.root)
	router.Get("/health", s.health)
	router.Post("/analyze", s.analyze)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("linguistic service starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "linguistic",
		"status":  "running",
		"features": []string{
			"orality_score",
			"parts_of_speech",
			"discourse_markers",
			"readability_metrics",
			"lingfeat_summary",
		},
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, AnalysisResponse{
			Success: false,
			Error:   fmt.Sprintf("invalid JSON: %v", err),
			Results: []SegmentResult{},
		})
		return
	}

	results := make([]SegmentResult, 0, len(req.Segments))
	for _, seg := range req.Segments {
		results = append(results, SegmentResult{
			SegmentIndex:       seg.SegmentIndex,
			Text:               strings.TrimSpace(seg.Text),
			LinguisticFeatures: AnalyzeText(seg.Text),
		})
	}
	slog.Debug("analyzed segments", "count", len(results))
	writeJSON(w, http.StatusOK, AnalysisResponse{Success: true, Results: results})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
