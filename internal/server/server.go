package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tournevent/transsmart/pkg/transsmart"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const maxBodyBytes = 10 << 20

// Provider is the part of the Transsmart client the gateway exposes.
type Provider interface {
	Catalog() *transsmart.Catalog
	Invoke(ctx context.Context, op transsmart.Operation, call transsmart.Call) (interface{}, error)
	FetchReferenceData(ctx context.Context, kinds ...transsmart.ReferenceKind) (map[transsmart.ReferenceKind]interface{}, []error)
}

// Server is the HTTP gateway in front of the Transsmart client.
type Server struct {
	port     int
	provider Provider
	gatherer prometheus.Gatherer
	logger   *otelzap.Logger
}

// Config holds server configuration.
type Config struct {
	Port int
	// Gatherer backs /metrics. Defaults to the global registry.
	Gatherer prometheus.Gatherer
}

// New creates a new server instance.
func New(cfg Config, provider Provider, logger *otelzap.Logger) *Server {
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return &Server{
		port:     cfg.Port,
		provider: provider,
		gatherer: gatherer,
		logger:   logger,
	}
}

// Handler returns the gateway routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", s.handleHealth)

	// Prometheus metrics
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /operations", s.handleOperations)
	mux.HandleFunc("POST /operations/{name}", s.handleInvoke)
	mux.HandleFunc("GET /reference-data", s.handleReferenceData)

	return mux
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleOperations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.provider.Catalog().All())
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	op := transsmart.Operation(r.PathValue("name"))

	var call transsmart.Call
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&call); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON: "+err.Error(), 0)
		return
	}

	result, err := s.provider.Invoke(r.Context(), op, call)
	if err != nil {
		s.writeProviderError(r.Context(), w, op, err)
		return
	}

	if result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type referenceDataResponse struct {
	Data   map[transsmart.ReferenceKind]interface{} `json:"data"`
	Errors []string                                 `json:"errors,omitempty"`
}

func (s *Server) handleReferenceData(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query()["kind"]
	kinds := make([]transsmart.ReferenceKind, 0, len(raw))
	for _, k := range raw {
		kinds = append(kinds, transsmart.ReferenceKind(k))
	}

	results, errs := s.provider.FetchReferenceData(r.Context(), kinds...)

	resp := referenceDataResponse{Data: results}
	for _, err := range errs {
		resp.Errors = append(resp.Errors, err.Error())
	}
	if len(errs) > 0 {
		s.logger.Ctx(r.Context()).Warn("Reference data partially failed", zap.Errors("errors", errs))
	}

	status := http.StatusOK
	if len(results) == 0 && len(errs) > 0 {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, resp)
}

func (s *Server) writeProviderError(ctx context.Context, w http.ResponseWriter, op transsmart.Operation, err error) {
	var apiErr *transsmart.Error

	switch {
	case errors.Is(err, transsmart.ErrUnknownOperation):
		writeError(w, http.StatusNotFound, "unknown_operation", err.Error(), 0)
	case errors.Is(err, transsmart.ErrInvalidCall):
		writeError(w, http.StatusBadRequest, "invalid_call", err.Error(), 0)
	case errors.As(err, &apiErr):
		s.logger.Ctx(ctx).Warn("Provider call failed",
			zap.String("operation", string(op)),
			zap.String("kind", string(apiErr.Kind)),
			zap.Int("status", apiErr.StatusCode),
		)
		writeError(w, http.StatusBadGateway, string(apiErr.Kind), apiErr.Message, apiErr.StatusCode)
	default:
		s.logger.Ctx(ctx).Error("Provider call failed", zap.String("operation", string(op)), zap.Error(err))
		writeError(w, http.StatusBadGateway, "invalid_response", err.Error(), 0)
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

func writeError(w http.ResponseWriter, status int, kind, message string, upstream int) {
	writeJSON(w, status, errorResponse{Error: kind, Message: message, Status: upstream})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
