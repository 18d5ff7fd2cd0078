// Package server 提供 POST /generate 参考实现，供本地联调客户端使用。
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tidwall/sjson"

	"content_generation_suite/form"
	"content_generation_suite/generator"
	"content_generation_suite/logger"
)

const generateTimeout = 60 * time.Second

// Generator 由 generator.Agent 实现。
type Generator interface {
	Generate(ctx context.Context, in form.Input) (generator.Output, error)
}

type Server struct {
	gen      Generator
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics
}

// New 创建 Server；reg 为 nil 时使用独立的 registry。
func New(gen Generator, l *slog.Logger, reg *prometheus.Registry) (*Server, error) {
	if gen == nil {
		return nil, errors.New("generator agent required")
	}
	if l == nil {
		l = logger.Default()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m, err := newMetrics(reg)
	if err != nil {
		return nil, err
	}
	return &Server{gen: gen, logger: l, registry: reg, metrics: m}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logMiddleware)
	r.Use(middleware.Recoverer)

	r.Post("/generate", s.handleGenerate)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return r
}

// --- Handlers ---

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := s.logger.With(string(logger.RequestIDKey), middleware.GetReqID(r.Context()))

	var in form.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.metrics.observe(outcomeBadRequest, start)
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := validate(in); err != nil {
		s.metrics.observe(outcomeBadRequest, start)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), generateTimeout)
	defer cancel()
	out, err := s.gen.Generate(ctx, in)
	if err != nil {
		log.Error("[server] generation failed", "error", err)
		s.metrics.observe(outcomeError, start)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	body, err := encodeOutput(out)
	if err != nil {
		s.metrics.observe(outcomeError, start)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.metrics.observe(outcomeOK, start)
	s.metrics.words.Observe(float64(out.Analysis.WordCount))
	log.Info("[server] generated", "content_type", in.ContentType, "words", out.Analysis.WordCount)
	writeJSON(w, http.StatusOK, body)
}

// --- Helpers ---

func validate(in form.Input) error {
	if !in.ContentType.Valid() {
		return &form.ValidationError{Field: "contentType", Value: string(in.ContentType)}
	}
	if !in.Tone.Valid() {
		return &form.ValidationError{Field: "tone", Value: string(in.Tone)}
	}
	if !in.HasTopic() {
		return &form.ValidationError{Field: "topic"}
	}
	return nil
}

// encodeOutput 组装 {"content": ..., "analysis": {...}}。
func encodeOutput(out generator.Output) ([]byte, error) {
	suggestions := out.Analysis.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	fields := []struct {
		path  string
		value any
	}{
		{"content", out.Content},
		{"analysis.wordCount", out.Analysis.WordCount},
		{"analysis.readability", out.Analysis.Readability},
		{"analysis.keywordDensity", out.Analysis.KeywordDensity},
		{"analysis.suggestions", suggestions},
	}
	body := []byte(`{}`)
	var err error
	for _, f := range fields {
		if body, err = sjson.SetBytes(body, f.path, f.value); err != nil {
			return nil, err
		}
	}
	return body, nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	body, err := sjson.SetBytes([]byte(`{}`), "error", msg)
	if err != nil {
		http.Error(w, msg, status)
		return
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("[http] request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			string(logger.RequestIDKey), middleware.GetReqID(r.Context()),
		)
	})
}
