// ABOUTME: Gateway orchestrator that wires the Rently tools to the MCP transports
// ABOUTME: Owns the HTTP server, ledger, session cache and upstream token pool lifecycle

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/2389/rently-gateway/internal/auth"
	"github.com/2389/rently-gateway/internal/booking"
	"github.com/2389/rently-gateway/internal/config"
	"github.com/2389/rently-gateway/internal/mcp"
	"github.com/2389/rently-gateway/internal/rently"
	"github.com/2389/rently-gateway/internal/sessioncache"
	"github.com/2389/rently-gateway/internal/store"
	"github.com/2389/rently-gateway/internal/tools"
)

// Gateway orchestrates the rently-gateway server components.
type Gateway struct {
	config     *config.Config
	ledger     store.Ledger
	sessions   *sessioncache.Cache[*mcp.Session]
	tokenPool  *rently.TokenPool
	registry   *tools.Registry
	mcpServer  *mcp.Server
	handler    http.Handler
	httpServer *http.Server
	logger     *slog.Logger
}

// initLedger opens the SQLite ledger, or returns a discarding ledger when no
// path is configured. RENTLY_DB_PATH overrides the configured path.
func initLedger(cfg *config.Config, logger *slog.Logger) (store.Ledger, error) {
	dbPath := cfg.Store.Path
	if envPath := os.Getenv("RENTLY_DB_PATH"); envPath != "" {
		dbPath = envPath
	}
	if dbPath == "" {
		logger.Warn("ledger disabled - no store.path configured")
		return store.Discard, nil
	}

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	logger.Info("ledger enabled", "path", dbPath)
	return s, nil
}

// newLimiter returns the outbound limiter, or nil when unlimited.
func newLimiter(cfg config.UpstreamConfig) *rate.Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
}

// newAuthGate returns middleware enforcing JWT bearer auth, or a passthrough
// when no secret is configured.
func newAuthGate(cfg *config.Config, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	if cfg.Auth.JWTSecret == "" {
		logger.Warn("HTTP auth disabled - no jwt_secret configured")
		return func(next http.Handler) http.Handler { return next }, nil
	}

	verifier, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("creating JWT verifier: %w", err)
	}
	authMiddleware := auth.HTTPAuthMiddleware(verifier, logger.With("component", "auth"))
	logger.Info("HTTP auth middleware enabled")

	return func(next http.Handler) http.Handler {
		guarded := authMiddleware(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Browsers send preflight requests without credentials.
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			guarded.ServeHTTP(w, r)
		})
	}, nil
}

// New creates a new Gateway instance with the given configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ledger, err := initLedger(cfg, logger)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.Upstream.Timeout}
	tokenPool := rently.NewTokenPool(httpClient, logger.With("component", "token_pool"))
	clients := rently.NewFactory(tokenPool, rently.Options{
		HTTPClient: httpClient,
		Limiter:    newLimiter(cfg.Upstream),
		Logger:     logger,
	})

	registry, err := tools.New(tools.Deps{
		Clients:         func(res config.Resolved) tools.Upstream { return clients.Client(res) },
		Composer:        booking.NewComposer(logger.With("component", "booking")),
		Ledger:          ledger,
		Logger:          logger,
		RejectPastDates: cfg.Tools.RejectPastDates,
	})
	if err != nil {
		_ = ledger.Close()
		return nil, fmt.Errorf("registering tools: %w", err)
	}

	resolver := config.NewResolver(config.EnvFromOS(), cfg.Upstream.Defaults, logger.With("component", "config_resolver"))
	sessions := sessioncache.New[*mcp.Session](cfg.Sessions.TTL, cfg.Sessions.MaxSessions)

	mcpServer, err := mcp.NewServer(mcp.Config{
		Registry: registry,
		Resolver: resolver,
		Sessions: sessions,
		Logger:   logger,
	})
	if err != nil {
		sessions.Close()
		_ = ledger.Close()
		return nil, fmt.Errorf("creating MCP server: %w", err)
	}

	gate, err := newAuthGate(cfg, logger)
	if err != nil {
		sessions.Close()
		_ = ledger.Close()
		return nil, err
	}

	sse := mcp.NewSSEHandler(mcp.SSEConfig{
		Registry: registry,
		Resolver: resolver,
		Logger:   logger,
	})

	gw := &Gateway{
		config:    cfg,
		ledger:    ledger,
		sessions:  sessions,
		tokenPool: tokenPool,
		registry:  registry,
		mcpServer: mcpServer,
		logger:    logger.With("component", "gateway"),
	}

	mux := http.NewServeMux()

	// Health endpoint - no auth required
	mux.HandleFunc("/health", gw.handleHealth)

	mux.Handle("/mcp", gate(mcpServer))
	mux.Handle("/sse", gate(sse))
	mux.Handle("/sse/message", gate(sse))

	gw.handler = mux
	gw.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// Handler returns the gateway's HTTP routes.
func (g *Gateway) Handler() http.Handler {
	return g.handler
}

// Registry returns the tool registry.
func (g *Gateway) Registry() *tools.Registry {
	return g.registry
}

// Run starts the HTTP server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on HTTP address: %w", err)
	}
	return g.Serve(ctx, ln)
}

// Serve runs the HTTP server on ln until the context is canceled.
func (g *Gateway) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		g.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := g.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown uses a fresh context since the run context is already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), g.config.Server.ShutdownTimeout)
	defer cancel()
	return g.Shutdown(ctx)
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown gracefully stops the HTTP server and releases resources.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway",
		"sessions", g.sessions.Len(),
		"token_managers", g.tokenPool.Len(),
	)

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", g.httpServer.Shutdown(ctx))
	errs = appendCloseError(errs, "store close", g.ledger.Close())
	g.sessions.Close()

	return errors.Join(errs...)
}

// handleHealth returns 200 OK if the server is alive.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
