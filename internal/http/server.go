package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"expenseledger/internal/log"
	"expenseledger/internal/middleware/ratelimit"
	"expenseledger/internal/middleware/security"
	"expenseledger/internal/tools"
)

const maxBodyBytes = 1 << 16 // 64KB

// Backend is what the server needs from the ledger service.
type Backend interface {
	tools.Ledger
	DeleteSession(ctx context.Context, sessionID string) error
	Ready(ctx context.Context) error
}

// Options tunes the server. Zero values fall back to defaults.
type Options struct {
	RateLimitPerMinute int
	Logger             *log.Logger

	// TrustedProxies lists the IPs or CIDRs whose X-Forwarded-For and
	// X-Real-IP headers are honoured. Empty means RemoteAddr only.
	TrustedProxies []string
}

type Server struct {
	http.Server
	backend     Backend
	dispatcher  *tools.Dispatcher
	rateLimiter *ratelimit.Limiter
	clientIP    func(*http.Request) string
	logger      *log.Logger
	access      *log.StructuredLogger
	startedAt   time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, backend Backend, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}

	rlConfig := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		rlConfig.RequestsPerMinute = opts.RateLimitPerMinute
	}

	dispatcher, err := tools.NewDispatcher(backend)
	if err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}
	proxies, err := parseTrustedProxies(opts.TrustedProxies)
	if err != nil {
		return nil, err
	}

	s := &Server{
		Server: http.Server{
			Addr:           addr,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 16,
		},
		backend:     backend,
		dispatcher:  dispatcher,
		rateLimiter: ratelimit.NewLimiter(rlConfig),
		clientIP:    proxies.clientIP,
		logger:      logger,
		access:      log.NewStructuredLogger(logger),
		startedAt:   time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /v1/tools", s.handleTools)
	mux.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	mux.HandleFunc("DELETE /v1/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /v1/sessions/{id}/tools/{name}", s.handleToolCall)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.rateLimiter.Middleware(s.clientIP, func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
	})

	var h http.Handler = mux
	h = s.accessLog(h)
	h = limited(h)
	h = headers.Middleware(h)
	h = log.RequestIDMiddleware(func(r *http.Request) string { return r.Header.Get("X-Request-ID") })(h)
	h = log.Middleware(logger)(h)
	h = withRequestID(h)
	s.Handler = h

	return s, nil
}

// withRequestID sets X-Request-ID on both request and response before the
// logging middleware reads it.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := requestID(r)
		r.Header.Set("X-Request-ID", id)
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		s.access.LogHTTPEnd(r.Context(), r, rec.status, time.Since(start).Milliseconds(), s.clientIP(r))
	})
}

// Shutdown gracefully shuts down the server and its background routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
