// Package server exposes a reward pipeline over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	m "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rizome-dev/go-rewards/pkg/rewards"
	"github.com/rizome-dev/go-rewards/pkg/rubrics"
	"github.com/rizome-dev/go-rewards/pkg/types"
)

// DefaultMaxBodyBytes bounds a request body when Options leaves it unset
const DefaultMaxBodyBytes int64 = 32 << 20

// Options configures the HTTP handler
type Options struct {
	Addr         string
	MaxBodyBytes int64
	Logger       *slog.Logger
	// Gatherer backs GET /metrics; nil disables the endpoint
	Gatherer prometheus.Gatherer
}

// Server handles reward requests
type Server struct {
	pipeline     *rewards.Pipeline
	maxBodyBytes int64
	logger       *slog.Logger
}

// RewardRequest is the body of POST /v1/rewards. Golds may be any JSON
// scalar and are coerced to text.
type RewardRequest struct {
	Completions []string          `json:"completions"`
	Golds       []json.RawMessage `json:"golds"`
	Languages   []string          `json:"languages"`
	Scorers     []string          `json:"scorers,omitempty"`
}

// RewardResponse carries one reward array per scorer, aligned with the request
type RewardResponse struct {
	Rewards   map[string][]float64 `json:"rewards"`
	Total     []float64            `json:"total"`
	Defaulted map[string][]int     `json:"defaulted,omitempty"`
}

type errResp struct {
	Error string `json:"error"`
}

// New creates the handler. The pipeline's scorer set is the superset a
// request may select from.
func New(pipeline *rewards.Pipeline, opts Options) *Server {
	s := &Server{
		pipeline:     pipeline,
		maxBodyBytes: opts.MaxBodyBytes,
		logger:       opts.Logger,
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = DefaultMaxBodyBytes
	}
	if s.logger == nil {
		s.logger = slog.Default().With("component", "server")
	}
	return s
}

// Router returns the chi router serving the reward API
func (s *Server) Router(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(m.RequestID, m.RealIP, m.Recoverer)

	r.Post("/v1/rewards", s.score)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// NewHTTPServer wraps the router in an http.Server listening on opts.Addr
func NewHTTPServer(pipeline *rewards.Pipeline, opts Options) *http.Server {
	s := New(pipeline, opts)
	addr := opts.Addr
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:              addr,
		Handler:           s.Router(opts.Gatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) score(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	var req RewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errResp{fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit)})
			return
		}
		writeJSON(w, http.StatusBadRequest, errResp{err.Error()})
		return
	}

	batch, err := req.batch()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{err.Error()})
		return
	}

	pipeline, err := s.pipeline.Select(req.Scorers)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errResp{err.Error()})
		return
	}

	result, err := pipeline.Run(r.Context(), batch)
	if err != nil {
		if errors.Is(err, types.ErrMisalignedBatch) {
			writeJSON(w, http.StatusBadRequest, errResp{err.Error()})
			return
		}
		s.logger.Error("scoring failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errResp{err.Error()})
		return
	}

	s.logger.Info("scored batch",
		"request_id", m.GetReqID(r.Context()),
		"size", batch.Len(),
		"scorers", len(result.Names))

	writeJSON(w, http.StatusOK, newResponse(result))
}

func (req RewardRequest) batch() (types.Batch, error) {
	golds := make([]string, len(req.Golds))
	for i, raw := range req.Golds {
		gold, err := types.CoerceRaw(raw)
		if err != nil {
			return types.Batch{}, fmt.Errorf("gold %d: %w", i, err)
		}
		golds[i] = gold
	}
	return types.Batch{
		Completions: req.Completions,
		Golds:       golds,
		Languages:   req.Languages,
	}, nil
}

func newResponse(result *rubrics.Result) RewardResponse {
	return RewardResponse{
		Rewards:   result.Rewards,
		Total:     result.Total,
		Defaulted: result.Defaulted(),
	}
}
