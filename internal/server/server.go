package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nexwork/nexwork/internal/config"
	"github.com/nexwork/nexwork/internal/events"
	"github.com/nexwork/nexwork/internal/screening"
	"github.com/nexwork/nexwork/internal/server/middleware"
	"github.com/nexwork/nexwork/internal/server/ratelimit"
	"github.com/nexwork/nexwork/internal/types"
)

// Store is everything the API needs from the record store. Both the
// PostgreSQL store and the in-memory store satisfy it.
type Store interface {
	UserStore
	screening.ApplicationStore
	screening.JobReader

	Ping(ctx context.Context) error
	ListApplicationsByCandidate(ctx context.Context, candidateID string) ([]types.Application, error)
	ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]types.Application, error)
	ApplicationHistory(ctx context.Context, id uuid.UUID) ([]types.HistoryEntry, error)

	CreateJob(ctx context.Context, recruiterID uuid.UUID, req *types.CreateJobRequest) (*types.Job, error)
	ListPaidJobs(ctx context.Context) ([]types.Job, error)
	ListJobsByRecruiter(ctx context.Context, recruiterID uuid.UUID) ([]types.Job, error)
	DeleteJob(ctx context.Context, id uuid.UUID) error
}

// Deps are the collaborators a Server is built from.
type Deps struct {
	Store     Store
	Screening *screening.Orchestrator
	Bus       events.Bus
	JWT       *config.JWTConfig
	Passwords *config.PasswordConfig
	RateLimit *ratelimit.Config
}

// Config holds server configuration
type Config struct {
	Port        int
	CORSOrigins []string
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	store       Store
	screening   *screening.Orchestrator
	bus         events.Bus
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
	corsOrigins map[string]bool
	heartbeat   time.Duration
	// streamsDone is closed on shutdown so event streams end
	streamsDone chan struct{}
}

// New creates a new server instance.
func New(cfg Config, deps Deps) *Server {
	s := &Server{
		store:       deps.Store,
		screening:   deps.Screening,
		bus:         deps.Bus,
		rateLimiter: ratelimit.NewLimiter(deps.RateLimit),
		jwtService:  NewJWTService(deps.JWT),
		userService: NewUserService(deps.Store, deps.Passwords),
		corsOrigins: make(map[string]bool),
		heartbeat:   25 * time.Second,
		streamsDone: make(chan struct{}),
	}
	s.authHandler = NewAuthHandler(s.userService, s.jwtService)
	for _, o := range cfg.CORSOrigins {
		s.corsOrigins[o] = true
	}

	authed := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	seeker := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.RequireRole(string(types.RoleSeeker))(h))
	}
	recruiter := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.RequireRole(string(types.RoleRecruiter))(h))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Accounts
	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.Handle("GET /auth/me", authed(http.HandlerFunc(s.authHandler.Me)))

	// Jobs
	mux.HandleFunc("GET /jobs", s.handleListJobs)
	mux.HandleFunc("GET /jobs/{id}", s.handleGetJob)
	mux.Handle("GET /jobs/mine", recruiter(s.handleListMyJobs))
	mux.Handle("POST /jobs", recruiter(s.handleCreateJob))
	mux.Handle("DELETE /jobs/{id}", recruiter(s.handleDeleteJob))
	mux.Handle("GET /jobs/{id}/candidates", recruiter(s.handleListCandidates))

	// Screening
	mux.Handle("POST /screenings", seeker(s.handleStartScreening))
	mux.Handle("GET /screenings/{id}", seeker(s.handleGetScreening))
	mux.Handle("POST /screenings/{id}/voice", seeker(s.handleVoiceAnswer))
	mux.Handle("POST /screenings/{id}/code", seeker(s.handleCodeSubmission))

	// Applications
	mux.Handle("GET /applications/mine", seeker(s.handleListMyApplications))
	mux.Handle("PUT /applications/{id}/status", recruiter(s.handleUpdateStatus))
	mux.Handle("DELETE /applications/{id}", recruiter(s.handleDeleteApplication))
	mux.Handle("GET /applications/{id}/history", authed(http.HandlerFunc(s.handleApplicationHistory)))
	mux.Handle("GET /applications/events", authed(http.HandlerFunc(s.handleStatusEvents)))

	s.handler = s.withCORS(s.withLogging(s.withRateLimit(mux)))
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// No WriteTimeout: the status event stream stays open
		IdleTimeout: 60 * time.Second,
	}
	var once sync.Once
	s.httpServer.RegisterOnShutdown(func() {
		once.Do(func() { close(s.streamsDone) })
	})
	return s
}

// Handler returns the fully wrapped router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.rateLimiter.Stop()
	log.Println("Server stopped")
	return nil
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// withCORS echoes allowed origins and answers preflight requests.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (s.corsOrigins[origin] || s.corsOrigins["*"]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients over their endpoint's limit with 429.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth reports whether the record store is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// errorFrom writes err with the status HTTPStatus maps it to. Internal
// errors are logged and hidden from the client.
func errorFrom(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[error] %v", err)
		errorResponse(w, status, "internal error")
		return
	}
	errorResponse(w, status, err.Error())
}

// extractClientID uses the IP from RemoteAddr. X-Forwarded-For is ignored
// since it can be forged by clients not behind a trusted proxy.
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
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":   "rate_limit_exceeded",
		"message": "Rate limit exceeded. Please try again later.",
		"limit":   info.Limit,
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d RetryAfter=%s", info.Limit, info.RetryAfter)
	jsonResponse(w, http.StatusTooManyRequests, response)
}

// pathID parses the {name} path value as a UUID.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: name, Message: "must be a UUID"}
	}
	return id, nil
}
