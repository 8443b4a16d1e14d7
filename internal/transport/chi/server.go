// Package chi exposes the fraud-scanning engine over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Bhupatishyam55/Finance-AI-Project/internal/domain"
	logpkg "github.com/Bhupatishyam55/Finance-AI-Project/internal/logger"
	healthuc "github.com/Bhupatishyam55/Finance-AI-Project/internal/usecase/health"
	statsuc "github.com/Bhupatishyam55/Finance-AI-Project/internal/usecase/stats"
	"github.com/Bhupatishyam55/Finance-AI-Project/internal/version"
)

// Scanner runs the full analysis pipeline for one upload.
type Scanner interface {
	Scan(ctx context.Context, filename string, content []byte) (string, error)
}

// Results is the read side of the result store.
type Results interface {
	Get(taskID string) (domain.ScanResult, error)
}

// Resetter wipes all accumulated scan state.
type Resetter interface {
	Reset()
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Stats computes the dashboard payload.
type Stats interface {
	Dashboard() statsuc.Dashboard
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers for the scan API.
type Server struct {
	scanner        Scanner
	results        Results
	admin          Resetter
	health         HealthChecker
	stats          Stats
	adminResetKey  string
	maxUploadBytes int64
	allowedExts    map[string]struct{}
	logger         *zap.Logger
	errorHandlers  []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	scanner Scanner,
	results Results,
	admin Resetter,
	health HealthChecker,
	stats Stats,
	adminResetKey string,
	maxUploadBytes int64,
	allowedExtensions []string,
	logger *zap.Logger,
) *Server {
	exts := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}
	s := &Server{
		scanner:        scanner,
		results:        results,
		admin:          admin,
		health:         health,
		stats:          stats,
		adminResetKey:  adminResetKey,
		maxUploadBytes: maxUploadBytes,
		allowedExts:    exts,
		logger:         logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrResultNotFound, http.StatusNotFound, "result_not_found"),
		sentinelHandler(domain.ErrUnauthorized, http.StatusForbidden, "unauthorized"),
		sentinelHandler(domain.ErrUnsupportedFileType, http.StatusBadRequest, "unsupported_file_type"),
		sentinelHandler(domain.ErrEmptyFile, http.StatusBadRequest, "empty_file"),
		sentinelHandler(domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "file_too_large"),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusInternalServerError, "vector_dim_mismatch"),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, "embedding_provider_error"),
	}
	return s
}

// RegisterRoutes mounts all API routes on the router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.HealthCheck)
		r.Post("/scan/upload", s.UploadScan)
		r.Get("/scan/result/{task_id}", s.GetResult)
		r.Get("/dashboard/stats", s.DashboardStats)
		r.Get("/admin/reset", s.AdminReset)
		r.Post("/admin/trigger-alert", s.TriggerAlert)
	})
}

// UploadScan handles POST /api/v1/scan/upload.
func (s *Server) UploadScan(w http.ResponseWriter, r *http.Request) {
	// Slack on top of the file limit covers multipart framing; the exact
	// per-file limit is enforced after reading.
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+64<<10)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			s.handleDomainError(w, r, domain.ErrFileTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", "Multipart field 'file' is required")
		return
	}
	defer file.Close()

	filename := header.Filename
	if filename == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "Filename is required")
		return
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := s.allowedExts[ext]; !ok {
		writeError(w, http.StatusBadRequest, "unsupported_file_type",
			fmt.Sprintf("File type %q not supported", ext))
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, s.maxUploadBytes+1))
	if err != nil {
		s.handleDomainError(w, r, fmt.Errorf("read upload: %w", err))
		return
	}
	if len(content) == 0 {
		s.handleDomainError(w, r, domain.ErrEmptyFile)
		return
	}
	if int64(len(content)) > s.maxUploadBytes {
		s.handleDomainError(w, r, domain.ErrFileTooLarge)
		return
	}

	taskID, err := s.scanner.Scan(r.Context(), filename, content)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"task_id": taskID,
		"message": "Unified fraud analysis concluded.",
	})
}

// GetResult handles GET /api/v1/scan/result/{task_id}.
func (s *Server) GetResult(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")

	result, err := s.results.Get(taskID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// AdminReset handles GET /api/v1/admin/reset.
func (s *Server) AdminReset(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("key") != s.adminResetKey {
		s.handleDomainError(w, r, domain.ErrUnauthorized)
		return
	}

	s.admin.Reset()

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Backend data wiped.",
	})
}

// DashboardStats handles GET /api/v1/dashboard/stats.
func (s *Server) DashboardStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.Dashboard())
}

type alertRequest struct {
	Message string `json:"message"`
}

// TriggerAlert handles POST /api/v1/admin/trigger-alert. Alert delivery has
// no downstream channel wired; the endpoint acknowledges and logs.
func (s *Server) TriggerAlert(w http.ResponseWriter, r *http.Request) {
	var req alertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	s.logger.Info("Alert triggered", zap.String("message", req.Message))
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

type healthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles GET /health and GET /api/v1/health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	var checks map[string]string
	if len(report.Checks) > 0 {
		checks = make(map[string]string, len(report.Checks))
		for k, v := range report.Checks {
			checks[k] = string(v)
		}
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:  string(report.Status),
		Version: version.Version,
		Checks:  checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrResultNotFound,
		domain.ErrUnauthorized,
		domain.ErrUnsupportedFileType,
		domain.ErrEmptyFile,
		domain.ErrFileTooLarge,
		domain.ErrVectorDimMismatch,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	reqLogger := logpkg.FromContext(r.Context())
	reqLogger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	reqLogger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
