package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-portal/internal/analysis"
	"github.com/jonathan/job-portal/internal/config"
	"github.com/jonathan/job-portal/internal/db"
	"github.com/jonathan/job-portal/internal/observability"
	"github.com/jonathan/job-portal/internal/server/middleware"
	"github.com/jonathan/job-portal/internal/server/ratelimit"
	"github.com/jonathan/job-portal/internal/types"
)

// Store is the persistence used by the job posting and application routes.
// *db.DB implements it.
type Store interface {
	Ping(ctx context.Context) error
	CreateJobPosting(ctx context.Context, input *db.JobPostingInput) (*db.JobPosting, error)
	GetJobPosting(ctx context.Context, id uuid.UUID) (*db.JobPosting, error)
	ListJobPostings(ctx context.Context, filter db.JobPostingFilter) ([]db.JobPosting, error)
	UpdateJobPosting(ctx context.Context, id uuid.UUID, input *db.JobPostingInput) (*db.JobPosting, error)
	DeleteJobPosting(ctx context.Context, id uuid.UUID) error
	CreateApplication(ctx context.Context, input *db.ApplicationInput) (*db.Application, error)
	GetApplication(ctx context.Context, id uuid.UUID) (*db.Application, error)
	ListApplications(ctx context.Context, jobPostingID uuid.UUID) ([]db.Application, error)
	UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status types.ApplicationStatus) (*db.Application, error)
}

// Deps are the collaborators of a Server.
type Deps struct {
	Analysis *analysis.Service
	// Store enables the job posting and application routes; JWT is then required.
	Store   Store
	JWT     *JWTService
	Limiter *ratelimit.Limiter // rate limiting from RATE_LIMIT_* when nil
	Metrics *Metrics           // fresh registry when nil
	Logger  *slog.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	cfg         *config.Config
	analysis    *analysis.Service
	store       Store
	jwtService  *JWTService
	rateLimiter *ratelimit.Limiter
	metrics     *Metrics
	logger      *slog.Logger
}

// New creates a new server instance
func New(cfg *config.Config, deps Deps) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if deps.Analysis == nil {
		return nil, errors.New("analysis service is required")
	}
	if deps.Store != nil && deps.JWT == nil {
		return nil, errors.New("JWT service is required when a store is configured")
	}

	s := &Server{
		cfg:         cfg,
		analysis:    deps.Analysis,
		store:       deps.Store,
		jwtService:  deps.JWT,
		rateLimiter: deps.Limiter,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
	}
	if s.rateLimiter == nil {
		s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	// Resume analysis
	mux.HandleFunc("POST /skill-analysis", s.handleSkillAnalysis)
	mux.HandleFunc("POST /match/resume-jobs", s.handleMatchResumeJobs)

	if s.store != nil {
		recruiter := s.recruiterOnly

		// Job postings
		mux.HandleFunc("GET /job-postings", s.handleListJobPostings)
		mux.HandleFunc("GET /job-postings/{id}", s.handleGetJobPosting)
		mux.Handle("POST /job-postings", recruiter(s.handleCreateJobPosting))
		mux.Handle("PUT /job-postings/{id}", recruiter(s.handleUpdateJobPosting))
		mux.Handle("DELETE /job-postings/{id}", recruiter(s.handleDeleteJobPosting))
		mux.HandleFunc("POST /job-postings/{id}/skill-analysis", s.handlePostingSkillAnalysis)

		// Applications
		mux.HandleFunc("POST /job-postings/{id}/applications", s.handleCreateApplication)
		mux.Handle("GET /job-postings/{id}/applications", recruiter(s.handleListApplications))
		mux.Handle("GET /applications/{id}", recruiter(s.handleGetApplication))
		mux.Handle("PATCH /applications/{id}/status", recruiter(s.handleUpdateApplicationStatus))
	}

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(s.metrics.middleware(mux))))

	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second, // Covers PDF parsing and recommendation lookups
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr, "job_routes", s.store != nil)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	// Stop rate limiter cleanup goroutine
	s.rateLimiter.Stop()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// recruiterOnly requires a valid token with the recruiter role.
func (s *Server) recruiterOnly(h http.HandlerFunc) http.Handler {
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	return auth(middleware.RequireRole(middleware.RoleRecruiter)(h))
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging tags the request with an ID and logs its outcome.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		r = r.WithContext(observability.WithRequestID(r.Context(), requestID))
		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)

		s.requestLogger(r).Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			s.requestLogger(r).Warn("health check failed", "error", err)
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

// requestLogger returns the server logger tagged with the request ID.
func (s *Server) requestLogger(r *http.Request) *slog.Logger {
	if id := observability.RequestID(r.Context()); id != "" {
		return s.logger.With("request_id", id)
	}
	return s.logger
}

// extractClientID extracts the client identifier from the request.
// It uses the IP address from RemoteAddr; forwarded headers are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"success":   false,
		"error":     CodeRateLimited,
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds() + 0.999)
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded",
		"client", s.extractClientID(r),
		"path", r.URL.Path,
		"limit", info.Limit,
		"reset", info.ResetTime.Format(time.RFC3339),
	)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
