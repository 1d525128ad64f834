package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	nanoid "github.com/jaevor/go-nanoid"

	"github.com/nerrad567/gateway-fleet-core/internal/audit"
	"github.com/nerrad567/gateway-fleet-core/internal/device"
	"github.com/nerrad567/gateway-fleet-core/internal/gateway"
	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/config"
	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/logging"
	"github.com/nerrad567/gateway-fleet-core/internal/infrastructure/metrics"
	"github.com/nerrad567/gateway-fleet-core/internal/pagination"
)

// defaultShutdownTimeout applies when the config leaves the drain time unset.
const defaultShutdownTimeout = 10 * time.Second

// requestIDLength is the nanoid length used for generated request IDs.
const requestIDLength = 15

// GatewayService is the gateway domain service consumed by the handlers.
type GatewayService interface {
	List(ctx context.Context, p *pagination.Params) (*gateway.ListResult, error)
	Get(ctx context.Context, id string) (*gateway.Gateway, error)
	Create(ctx context.Context, req gateway.CreateRequest) (*gateway.Gateway, error)
	Update(ctx context.Context, id string, req gateway.UpdateRequest) (*gateway.Gateway, error)
	Delete(ctx context.Context, id string) error
	AttachDevice(ctx context.Context, gatewayID string, req device.CreateRequest) (*device.Device, error)
	DetachDevice(ctx context.Context, gatewayID, deviceID string) error
}

// DeviceService is the device domain service consumed by the handlers.
type DeviceService interface {
	List(ctx context.Context, p *pagination.Params) (*device.ListResult, error)
	Get(ctx context.Context, id string) (*device.Device, error)
	Create(ctx context.Context, req device.CreateRequest) (*device.Device, error)
	Update(ctx context.Context, id string, req device.UpdateRequest) (*device.Device, error)
	Delete(ctx context.Context, id string) error
	ListTypes(ctx context.Context) ([]device.DeviceType, error)
}

// AuditLog reads a gateway's audit trail.
type AuditLog interface {
	ListByGateway(ctx context.Context, gatewayID string, q pagination.Query) (*audit.ListResult, error)
}

// HealthChecker is implemented by every infrastructure client.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Security config.SecurityConfig
	Logger   *logging.Logger
	Gateways GatewayService
	Devices  DeviceService
	AuditLog AuditLog

	// Metrics is optional; without it /metrics is not served.
	Metrics *metrics.Metrics

	// Hub is optional. Pass the hub that was registered as an audit sink;
	// otherwise the server creates its own.
	Hub *Hub

	// HealthChecks are reported by /health under their map key.
	HealthChecks map[string]HealthChecker

	Version string
}

// Server is the HTTP API server.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg          config.APIConfig
	wsCfg        config.WebSocketConfig
	secCfg       config.SecurityConfig
	logger       *logging.Logger
	gateways     GatewayService
	devices      DeviceService
	auditLog     AuditLog
	metrics      *metrics.Metrics
	healthChecks map[string]HealthChecker
	version      string
	newRequestID func() string

	hub     *Hub
	server  *http.Server
	cancel  context.CancelFunc
	handler http.Handler
	once    sync.Once
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Gateways == nil {
		return nil, fmt.Errorf("gateway service is required")
	}
	if deps.Devices == nil {
		return nil, fmt.Errorf("device service is required")
	}
	if deps.AuditLog == nil {
		return nil, fmt.Errorf("audit log is required")
	}

	newRequestID, err := nanoid.Standard(requestIDLength)
	if err != nil {
		return nil, fmt.Errorf("creating request id generator: %w", err)
	}

	hub := deps.Hub
	if hub == nil {
		hub = NewHub(deps.WS, deps.Logger)
	}

	return &Server{
		cfg:          deps.Config,
		wsCfg:        deps.WS,
		secCfg:       deps.Security,
		logger:       deps.Logger,
		gateways:     deps.Gateways,
		devices:      deps.Devices,
		auditLog:     deps.AuditLog,
		metrics:      deps.Metrics,
		healthChecks: deps.HealthChecks,
		version:      deps.Version,
		newRequestID: newRequestID,
		hub:          hub,
	}, nil
}

// Hub returns the WebSocket hub that streams audit entries.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the router with all routes and middleware.
// It is built once and shared by the listener and tests.
func (s *Server) Handler() http.Handler {
	s.once.Do(func() {
		s.handler = s.buildRouter()
	})
	return s.handler
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub and launches the HTTP listener in a background
// goroutine. The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)
	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.Handler(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to the configured shutdown timeout for in-flight requests to
// complete, then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	timeout := time.Duration(s.cfg.Timeouts.Shutdown) * time.Second
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
