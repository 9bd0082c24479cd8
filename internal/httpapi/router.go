package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/macrointel/macrointel/internal/metrics"
	"github.com/macrointel/macrointel/internal/pipeline"
)

// NewRouter wires all routes, middleware included.
func NewRouter(p *pipeline.Pipeline, m *metrics.Registry, logger zerolog.Logger) http.Handler {
	h := NewHandler(p, logger)

	r := mux.NewRouter()
	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.Handle("/metrics", m.Handler()).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/snapshot/latest", h.Latest).Methods("GET")
	api.HandleFunc("/snapshot/history", h.History).Methods("GET")
	api.HandleFunc("/score", h.Score).Methods("POST")
	api.HandleFunc("/playbook/report", h.Report).Methods("GET")
	api.HandleFunc("/query", h.Query).Methods("GET")
	api.HandleFunc("/strategies", h.Strategies).Methods("GET")

	r.Use(loggingMiddleware(logger))
	r.Use(recoveryMiddleware(logger))

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "macrointel-api",
	})
}

func loggingMiddleware(logger zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}

func recoveryMiddleware(logger zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error().
						Interface("panic", err).
						Str("path", r.URL.Path).
						Msg("panic recovered in handler")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "internal server error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
