// Package restapi implements the gateway's JSON REST surface under
// /api/v1: tag CRUD/import/export, HMI snapshot/health/config/readiness,
// and cooperative shutdown.
package restapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"plcgateway/internal/apperror"
	"plcgateway/internal/logger"
	"plcgateway/internal/opcuabridge"
	"plcgateway/internal/ratelimit"
	"plcgateway/internal/reconnect"
	"plcgateway/internal/swagger"
	"plcgateway/internal/tagstore"
	"plcgateway/internal/telemetry"
)

// Config describes the REST server's network and CORS settings.
type Config struct {
	Host string
	Port int
	CORS CORSConfig

	// MockMode mirrors GATEWAY_MOCK_PLC: when set, /hmi/stop waits briefly
	// for the scheduled shutdown to run before responding, matching the
	// deterministic test-mode behavior test harnesses rely on.
	MockMode bool
}

// CORSConfig mirrors the ambient-stack CORS options.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	AllowCredentials bool
	MaxAge         int
}

// StopNotifier is invoked by /hmi/stop so the caller can drive cooperative
// shutdown. In mock mode the handler waits up to 500ms for it before
// responding; otherwise it runs in its own goroutine and the response is
// written without waiting for it.
type StopNotifier func()

// Server is the gateway's REST API server.
type Server struct {
	cfg    Config
	store  *tagstore.Store
	bridge *opcuabridge.Bridge

	controllers map[string]*reconnect.StateMachine

	schedulerInitialized func() bool
	onStop               StopNotifier
	plcLastUpdate        func() int64
	limiter              ratelimit.Limiter

	mu      sync.RWMutex
	running bool
	server  *http.Server
}

// New constructs a Server. controllers maps plc_id to its reconnect state
// machine, used to build the aggregated /hmi/health response.
func New(cfg Config, store *tagstore.Store, bridge *opcuabridge.Bridge, controllers map[string]*reconnect.StateMachine, plcLastUpdate func() int64, schedulerInitialized func() bool, onStop StopNotifier) *Server {
	return &Server{
		cfg:                  cfg,
		store:                store,
		bridge:               bridge,
		controllers:          controllers,
		plcLastUpdate:        plcLastUpdate,
		schedulerInitialized: schedulerInitialized,
		onStop:               onStop,
	}
}

// WithRateLimiter attaches lim, throttling every request by caller IP.
// Returns s for chaining.
func (s *Server) WithRateLimiter(lim ratelimit.Limiter) *Server {
	s.limiter = lim
	return s
}

func (s *Server) mux() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/tags", s.handleTagsCollection)
	mux.HandleFunc("/api/v1/tags/import", s.handleTagsImport)
	mux.HandleFunc("/api/v1/tags/export", s.handleTagsExport)
	mux.HandleFunc("/api/v1/tags/", s.handleTagItem)
	mux.HandleFunc("/api/v1/hmi/data", s.handleHMIData)
	mux.HandleFunc("/api/v1/hmi/health", s.handleHMIHealth)
	mux.HandleFunc("/api/v1/hmi/config", s.handleHMIConfig)
	mux.HandleFunc("/api/v1/hmi/ready", s.handleHMIReady)
	mux.HandleFunc("/api/v1/hmi/stop", s.handleHMIStop)
	swagger.RegisterRoutes(mux, nil, swagger.Spec)

	var handler http.Handler = mux
	if s.limiter != nil {
		handler = ratelimit.Middleware(s.limiter, ratelimit.IPKeyExtractor)(handler)
	}
	return LoggingMiddleware(CORS(s.cfg.CORS)(telemetry.Middleware(handler)))
}

// Start begins serving HTTP in a background goroutine. It waits up to 150ms
// and returns a listen error (e.g. a port bind collision) raised within that
// window; a failure after that is only logged.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.server = &http.Server{
		Addr: addr,
		// h2c lets HMI clients and internal callers speak cleartext HTTP/2
		// without a TLS terminator in front, while still serving HTTP/1.1.
		Handler:      h2c.NewHandler(s.mux(), &http2.Server{}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			logger.Error("restapi: server stopped unexpectedly", "error", err)
		}
	}()

	select {
	case err := <-errCh:
		s.running = false
		return err
	case <-time.After(150 * time.Millisecond):
	}

	s.running = true
	return nil
}

// Stop gracefully shuts the server down within ctx's deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.server == nil {
		return nil
	}
	err := s.server.Shutdown(ctx)
	s.running = false
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAppError(w http.ResponseWriter, err error) {
	apperror.WriteError(w, err)
}
