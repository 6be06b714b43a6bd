// Package server mounts the task board REST API, the MCP endpoint and the
// health checks on one HTTP listener.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/evanschultz/taskboard/internal/adapters/server/common"
	"github.com/evanschultz/taskboard/internal/adapters/server/httpapi"
	"github.com/evanschultz/taskboard/internal/adapters/server/mcpapi"
)

const (
	defaultBind            = "127.0.0.1:8080"
	defaultAPIPrefix       = "/api/v1"
	defaultMCPPath         = "/mcp"
	defaultShutdownTimeout = 5 * time.Second
	readHeaderTimeout      = 10 * time.Second
	readinessTimeout       = 2 * time.Second
)

// Config describes where the board is served and how it identifies itself.
type Config struct {
	Bind      string
	APIPrefix string
	MCPPath   string
	Name      string
	Version   string
	// ShutdownTimeout bounds draining in-flight requests after cancellation.
	ShutdownTimeout time.Duration
}

// Pinger reports whether backing storage is reachable.
type Pinger interface {
	Ping(context.Context) error
}

// Logger receives one line per request and serve lifecycle events.
type Logger interface {
	Info(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// Dependencies are the app-facing collaborators of the transports.
type Dependencies struct {
	Service   common.Service
	Readiness Pinger
	Logger    Logger
}

// withDefaults fills blank settings and rejects overlapping mounts.
func (c Config) withDefaults() (Config, error) {
	c.Bind = strings.TrimSpace(c.Bind)
	if c.Bind == "" {
		c.Bind = defaultBind
	}
	c.APIPrefix = mountPath(c.APIPrefix, defaultAPIPrefix)
	c.MCPPath = mountPath(c.MCPPath, defaultMCPPath)
	if c.APIPrefix == c.MCPPath || strings.HasPrefix(c.MCPPath, c.APIPrefix+"/") {
		return Config{}, fmt.Errorf("mcp path %q overlaps api prefix %q", c.MCPPath, c.APIPrefix)
	}
	if c.Name = strings.TrimSpace(c.Name); c.Name == "" {
		c.Name = "taskboard"
	}
	if c.Version = strings.TrimSpace(c.Version); c.Version == "" {
		c.Version = "dev"
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
	return c, nil
}

// mountPath cleans a configured mount point; blank or root falls back.
func mountPath(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	cleaned := path.Clean("/" + raw)
	if cleaned == "/" {
		return fallback
	}
	return cleaned
}

// NewHandler builds the routed handler and returns the effective config.
func NewHandler(cfg Config, deps Dependencies) (http.Handler, Config, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, Config{}, err
	}
	if deps.Service == nil {
		return nil, Config{}, errors.New("task service dependency is required")
	}

	mcpHandler, err := mcpapi.NewHandler(mcpapi.Config{
		ServerName:    cfg.Name,
		ServerVersion: cfg.Version,
		EndpointPath:  cfg.MCPPath,
	}, deps.Service)
	if err != nil {
		return nil, Config{}, fmt.Errorf("configure mcp handler: %w", err)
	}
	api := http.StripPrefix(cfg.APIPrefix, httpapi.NewHandler(deps.Service))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthHandler(cfg))
	mux.HandleFunc("GET /readyz", readyHandler(cfg, deps.Readiness))
	mux.Handle(cfg.MCPPath, mcpHandler)
	mux.Handle(cfg.APIPrefix, api)
	mux.Handle(cfg.APIPrefix+"/", api)

	var handler http.Handler = mux
	handler = recoverPanics(handler, deps.Logger)
	if deps.Logger != nil {
		handler = logRequests(handler, deps.Logger)
	}
	return handler, cfg, nil
}

// Run listens on cfg.Bind and serves until ctx is cancelled.
func Run(ctx context.Context, cfg Config, deps Dependencies) error {
	bind := strings.TrimSpace(cfg.Bind)
	if bind == "" {
		bind = defaultBind
	}
	ln, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", bind, err)
	}
	return Serve(ctx, ln, cfg, deps)
}

// Serve serves on ln until ctx is cancelled, then drains in-flight requests.
// ln is closed on return.
func Serve(ctx context.Context, ln net.Listener, cfg Config, deps Dependencies) error {
	if ctx == nil {
		ctx = context.Background()
	}
	handler, cfg, err := NewHandler(cfg, deps)
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("build server handler: %w", err)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	if deps.Logger != nil {
		deps.Logger.Info("serving task board", "addr", ln.Addr().String(), "api", cfg.APIPrefix, "mcp", cfg.MCPPath)
	}

	served := make(chan error, 1)
	go func() {
		served <- srv.Serve(ln)
	}()

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	shutdownErr := srv.Shutdown(drainCtx)
	if err := <-served; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve after shutdown: %w", err)
	}
	if shutdownErr != nil {
		return fmt.Errorf("shutdown server: %w", shutdownErr)
	}
	return nil
}

// healthBody is the JSON payload of /healthz and /readyz.
type healthBody struct {
	Status  string `json:"status"`
	Name    string `json:"name"`
	Version string `json:"version"`
	Storage string `json:"storage,omitempty"`
}

// healthHandler answers liveness without touching storage.
func healthHandler(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, healthBody{Status: "ok", Name: cfg.Name, Version: cfg.Version})
	}
}

// readyHandler reports 503 while storage cannot be pinged.
func readyHandler(cfg Config, storage Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := healthBody{Status: "ok", Name: cfg.Name, Version: cfg.Version, Storage: "unchecked"}
		if storage == nil {
			writeHealth(w, http.StatusOK, body)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := storage.Ping(ctx); err != nil {
			body.Status, body.Storage = "unavailable", err.Error()
			writeHealth(w, http.StatusServiceUnavailable, body)
			return
		}
		body.Storage = "ok"
		writeHealth(w, http.StatusOK, body)
	}
}

func writeHealth(w http.ResponseWriter, code int, body healthBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// statusRecorder captures the response code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming MCP responses working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the wrapped writer to http.ResponseController.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// logRequests logs method, path, status and latency of every request.
func logRequests(next http.Handler, logger Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		keyvals := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.code,
			"duration", time.Since(started).Round(time.Microsecond),
		}
		if actor := strings.TrimSpace(r.Header.Get("X-Actor")); actor != "" {
			keyvals = append(keyvals, "actor", actor)
		}
		if rec.code >= http.StatusInternalServerError {
			logger.Error("request failed", keyvals...)
			return
		}
		logger.Info("request", keyvals...)
	})
}

// recoverPanics turns a handler panic into a 500 error envelope.
func recoverPanics(next http.Handler, logger Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			if logger != nil {
				logger.Error("handler panic", "path", r.URL.Path, "panic", fmt.Sprint(v))
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(httpapi.ErrorEnvelope{Error: httpapi.APIError{
				Code:    "internal_error",
				Message: "internal server error",
			}})
		}()
		next.ServeHTTP(w, r)
	})
}
