package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/invopop/jsonschema"

	"github.com/MikeSquared-Agency/metronome/internal/store"
	"github.com/MikeSquared-Agency/metronome/internal/timeline"
)

// Builder assembles a timeline on demand.
type Builder interface {
	Build(ctx context.Context, conversationID string) (*timeline.Result, error)
}

type Server struct {
	router  *chi.Mux
	port    int
	builder Builder
	schema  *jsonschema.Schema
}

func NewServer(port int, apiToken string, builder Builder) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:  router,
		port:    port,
		builder: builder,
		schema:  ResultSchema(),
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/metronome/status", s.status)
	router.Get("/api/v1/timeline/schema", s.timelineSchema)

	router.Group(func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Post("/api/v1/conversations/{conversationID}/timeline", s.buildTimeline)
	})

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"agent":  "metronome",
		"status": "active",
	})
}

func (s *Server) timelineSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.schema)
}

// buildTimeline handles POST /api/v1/conversations/{conversationID}/timeline
func (s *Server) buildTimeline(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "conversationID"))
	if id == "" {
		writeError(w, http.StatusBadRequest, "conversation id required")
		return
	}

	result, err := s.builder.Build(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrConversationNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		slog.Error("timeline build failed", "conversation_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "build failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// BearerAuthMiddleware rejects requests without the configured bearer
// token. An empty token disables the check.
func BearerAuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ResultSchema describes the timeline payload delivered to webhook
// consumers and returned by the build endpoint.
func ResultSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(uuid.UUID{}) {
				return &jsonschema.Schema{Type: "string", Format: "uuid"}
			}
			return nil
		},
	}
	schema := r.Reflect(&timeline.Result{})
	schema.Title = "TimelineResult"
	return schema
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
