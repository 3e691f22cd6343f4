package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"smartfinance/internal/core"
	"smartfinance/internal/insights"
	"smartfinance/internal/log"
	"smartfinance/internal/records"
	"smartfinance/internal/session"
	"smartfinance/internal/sheets"
)

// Deps are the collaborators of the API server.
type Deps struct {
	Sessions *session.Manager
	// Exporter is optional; without it POST /api/export/sheets answers 503.
	Exporter *sheets.Exporter
	// StoreOptions are applied every time the record store is reopened.
	StoreOptions []records.Option
	Logger       *log.Logger
	// RateLimit caps mutating requests per client and minute. Zero means 60.
	RateLimit int
}

// Server serves the JSON API over the record store of the signed-in user.
type Server struct {
	http.Server
	sessions    *session.Manager
	exporter    *sheets.Exporter
	storeOpts   []records.Option
	logger      *log.Logger
	rateLimiter *rateLimiter
	metrics     *securityMetrics

	// The store is swapped on login, registration and logout.
	mu    sync.RWMutex
	store *records.Store
	user  core.User

	shutdownOnce sync.Once
}

// NewServer opens the record store of the current session and configures the
// routes, returning a ready-to-run server.
func NewServer(ctx context.Context, addr string, d Deps) (*Server, error) {
	if d.Sessions == nil {
		return nil, errors.New("http: session manager is required")
	}
	logger := d.Logger
	if logger == nil {
		logger = log.Discard()
	}
	limit := d.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}

	s := &Server{
		sessions:    d.Sessions,
		exporter:    d.Exporter,
		storeOpts:   d.StoreOptions,
		logger:      logger.WithComponent(log.ComponentHTTP),
		rateLimiter: newRateLimiter(limit),
		metrics:     &securityMetrics{},
	}
	if err := s.reopen(ctx); err != nil {
		s.rateLimiter.stop()
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/transactions", s.requireUser(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.requireUser(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.requireUser(s.handleGetTransaction))
	mux.HandleFunc("PATCH /api/transactions/{id}", s.requireUser(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.requireUser(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/categories", s.requireUser(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.requireUser(s.handleCreateCategory))
	mux.HandleFunc("PATCH /api/categories/{id}", s.requireUser(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.requireUser(s.handleDeleteCategory))
	mux.HandleFunc("GET /api/budgets", s.requireUser(s.handleListBudgets))
	mux.HandleFunc("PUT /api/budgets/{category}", s.requireUser(s.handleSetBudget))
	mux.HandleFunc("GET /api/settings", s.requireUser(s.handleGetSettings))
	mux.HandleFunc("PATCH /api/settings", s.requireUser(s.handleUpdateSettings))

	mux.HandleFunc("GET /api/stats", s.requireUser(s.handleStats))
	mux.HandleFunc("GET /api/trend", s.requireUser(s.handleTrend))
	mux.HandleFunc("GET /api/insights", s.requireUser(s.handleInsights))
	mux.HandleFunc("GET /api/progress", s.requireUser(s.handleProgress))
	mux.HandleFunc("GET /api/dashboard", s.requireUser(s.handleDashboard))

	mux.HandleFunc("GET /api/export", s.requireUser(s.handleExport))
	mux.HandleFunc("POST /api/export/sheets", s.requireUser(s.handleExportSheets))
	mux.HandleFunc("POST /api/import", s.requireUser(s.handleImport))
	mux.HandleFunc("GET /api/backups", s.requireUser(s.handleListBackups))

	mux.HandleFunc("POST /api/validate", handleValidate)
	mux.HandleFunc("POST /api/validate/form", handleValidateForm)
	mux.HandleFunc("POST /api/password-strength", handlePasswordStrength)

	mux.HandleFunc("GET /api/session", s.handleSession)
	mux.HandleFunc("POST /api/session/login", s.handleLogin)
	mux.HandleFunc("POST /api/session/register", s.handleRegister)
	mux.HandleFunc("POST /api/session/logout", s.handleLogout)
	mux.HandleFunc("POST /api/session/theme", s.handleToggleTheme)
	mux.HandleFunc("PUT /api/session/goal", s.requireUser(s.handleSetGoal))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.withSecurity(log.Middleware(s.logger, requestIDFromHeader)(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// current returns the open record store and its user.
func (s *Server) current() (*records.Store, core.User) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store, s.user
}

// reopen flushes the open store and loads the store of the current session.
func (s *Server) reopen(ctx context.Context) error {
	s.mu.RLock()
	prev := s.store
	s.mu.RUnlock()
	if prev != nil {
		if err := prev.Flush(ctx); err != nil {
			s.logger.WarnContext(ctx, "Flush of previous store failed",
				log.FieldUserID, prev.UserID(),
				log.FieldError, err)
		}
	}

	next, user, err := s.sessions.OpenStore(ctx, s.storeOpts...)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}

	s.mu.Lock()
	s.store, s.user = next, user
	s.mu.Unlock()
	return nil
}

// refreshUser reloads the session profile after it changed.
func (s *Server) refreshUser(user core.User) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

// Flush writes the open store to the key-value backend.
func (s *Server) Flush(ctx context.Context) error {
	store, _ := s.current()
	return store.Flush(ctx)
}

// SecurityStats reports the counters kept by the security middleware.
func (s *Server) SecurityStats() (rateLimited, suspicious int64) {
	return s.metrics.snapshot()
}

// Shutdown stops the listener and the rate limiter, then flushes the open
// store.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = errors.Join(s.Server.Shutdown(ctx), s.Flush(ctx))
	})
	return err
}

// withSecurity assigns a request id, rate limits mutating requests per client
// and sets the security headers.
func (s *Server) withSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := generateRequestID(r.Header.Get(headerRequestID))
		r.Header.Set(headerRequestID, requestID)
		w.Header().Set(headerRequestID, requestID)

		clientIP := extractClientIP(r)
		if reason := suspicionReason(r); reason != "" {
			atomic.AddInt64(&s.metrics.suspiciousRequests, 1)
			s.logger.WarnContext(r.Context(), "Suspicious request",
				append(log.NewFields().
					WithComponent(log.ComponentSecurity).
					WithRequestID(requestID).
					WithClientIP(clientIP).
					WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).
					ToSlice(), "reason", reason)...)
		}

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP, s.metrics) {
			s.logger.WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldComponent, log.ComponentRateLimit,
				log.FieldRequestID, requestID,
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(int(rateWindow.Seconds())))
			ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
			return
		}

		setSecurityHeaders(w.Header())
		next.ServeHTTP(w, r)
	})
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	JSON(http.StatusOK, map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, _, err := s.sessions.Current(r.Context()); err != nil {
		ErrorResponse(http.StatusServiceUnavailable, "storage unavailable").Write(w)
		return
	}
	JSON(http.StatusOK, map[string]string{"status": "ready"}).Write(w)
}

// requireUser answers 401 unless a user is signed in.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store, _ := s.current(); !store.Active() {
			ErrorResponse(http.StatusUnauthorized, session.ErrNotLoggedIn.Error()).Write(w)
			return
		}
		next(w, r)
	}
}

// engine builds an insights engine over the open store.
func (s *Server) engine() (*insights.Engine, core.User) {
	store, user := s.current()
	return insights.New(store), user
}
