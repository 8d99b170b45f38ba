// Package server implements the TCP accept loop and per-connection
// request handling for the static file server.
//
// Each accepted connection is served by its own goroutine. The server
// supports connection limiting, rate limiting, configurable timeouts
// and graceful shutdown with forced closure after a timeout.
package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/slabounty/rusty-server/internal/logger"
	"github.com/slabounty/rusty-server/internal/ratelimiter"
	"github.com/slabounty/rusty-server/internal/static"
	"github.com/slabounty/rusty-server/pkg/metrics"
)

// HTTPServer serves static content over HTTP/1.1 on a raw TCP listener.
//
// Shutdown flow:
//  1. Context cancelled or Stop() called
//  2. Listener closed (no new connections)
//  3. Wait for active connections to complete (up to ShutdownTimeout)
//  4. After timeout, cancel shutdownCtx and force-close the remaining
//     connections
//
// All methods are safe for concurrent use. The shutdown mechanism uses
// sync.Once so Stop() may be called multiple times.
type HTTPServer struct {
	// config holds the server configuration (address, timeouts, limits)
	config HTTPConfig

	// listener accepts incoming TCP connections.
	// Closed during shutdown to stop accepting new connections.
	listener net.Listener

	// resolver maps request paths to content store keys
	resolver *static.Resolver

	// limiter throttles request handling when rate limiting is enabled.
	// nil when RateLimit is 0.
	limiter *ratelimiter.RateLimiter

	// metrics collects request and connection metrics.
	// Always non-nil; a no-op implementation is used when disabled.
	metrics metrics.HTTPMetrics

	// activeConns tracks in-flight connections for graceful shutdown.
	// Each connection calls Add(1) when accepted and Done() when finished.
	activeConns sync.WaitGroup

	// shutdownOnce ensures shutdown is only initiated once
	shutdownOnce sync.Once

	// shutdown signals that graceful shutdown has been initiated.
	// Closed by initiateShutdown(), monitored by Serve().
	shutdown chan struct{}

	// connCount tracks the current number of active connections
	connCount atomic.Int32

	// connSemaphore limits concurrent connections when MaxConnections > 0.
	// nil when MaxConnections is 0 (unlimited).
	connSemaphore chan struct{}

	// shutdownCtx is cancelled once the shutdown timeout expires to
	// abort requests still in flight. It stays live during the graceful
	// window so handlers can finish and respond.
	shutdownCtx context.Context

	// cancelRequests cancels shutdownCtx
	cancelRequests context.CancelFunc

	// activeConnections maps remote address to net.Conn for forced closure
	activeConnections sync.Map
}

// HTTPConfig holds configuration parameters for the HTTP server.
//
// All timeout values are optional. Zero values are replaced with
// defaults by New.
type HTTPConfig struct {
	// Host is the interface to bind. Empty means all interfaces.
	Host string `mapstructure:"host"`

	// Port is the TCP port to listen on. 0 binds an OS-assigned
	// ephemeral port; the configuration loader defaults it to 8080.
	Port int `mapstructure:"port" validate:"min=0,max=65535"`

	// MaxConnections limits the number of concurrent client connections.
	// When reached, new connections wait until existing ones close.
	// 0 means unlimited.
	MaxConnections int `mapstructure:"max_connections" validate:"min=0"`

	// ReadTimeout is the maximum duration for reading a complete request.
	// 0 means no timeout.
	ReadTimeout time.Duration `mapstructure:"read_timeout" validate:"min=0"`

	// WriteTimeout is the maximum duration for writing a response.
	// 0 means no timeout.
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"min=0"`

	// ShutdownTimeout is the maximum duration to wait for active
	// connections to finish during graceful shutdown. After this
	// timeout, remaining connections are forcibly closed.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`

	// MaxHeaderBytes caps the size of the request head (request line
	// plus headers). Requests exceeding it receive 400 Bad Request.
	// If 0, defaults to 8 KiB.
	MaxHeaderBytes int `mapstructure:"max_header_bytes" validate:"min=0"`

	// RateLimit is the sustained request rate in requests per second.
	// 0 disables rate limiting.
	RateLimit uint `mapstructure:"rate_limit"`

	// RateBurst is the maximum burst size for rate limiting.
	// Only meaningful when RateLimit > 0.
	RateBurst uint `mapstructure:"rate_burst"`

	// MetricsLogInterval is the interval at which to log server metrics.
	// 0 disables periodic metrics logging.
	MetricsLogInterval time.Duration `mapstructure:"metrics_log_interval" validate:"min=0"`
}

// applyDefaults fills in zero values with sensible defaults.
func (c *HTTPConfig) applyDefaults() {
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 30 * time.Second
	}
	if c.MaxHeaderBytes == 0 {
		c.MaxHeaderBytes = 8 << 10
	}
	if c.MetricsLogInterval == 0 {
		c.MetricsLogInterval = 5 * time.Minute
	}
}

// validate checks that the configuration is usable.
func (c *HTTPConfig) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be 0-65535", c.Port)
	}
	if c.MaxConnections < 0 {
		return fmt.Errorf("invalid MaxConnections %d: must be >= 0", c.MaxConnections)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("invalid ReadTimeout %v: must be >= 0", c.ReadTimeout)
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("invalid WriteTimeout %v: must be >= 0", c.WriteTimeout)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid ShutdownTimeout %v: must be > 0", c.ShutdownTimeout)
	}
	if c.MaxHeaderBytes < 0 {
		return fmt.Errorf("invalid MaxHeaderBytes %d: must be >= 0", c.MaxHeaderBytes)
	}
	return nil
}

// New creates a new HTTPServer with the specified configuration.
//
// Zero values in config are replaced with defaults. The server is
// created in a stopped state; call Serve() to start accepting
// connections.
//
// If httpMetrics is nil, a no-op collector is used.
func New(config HTTPConfig, resolver *static.Resolver, httpMetrics metrics.HTTPMetrics) (*HTTPServer, error) {
	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid HTTP config: %w", err)
	}

	var connSemaphore chan struct{}
	if config.MaxConnections > 0 {
		connSemaphore = make(chan struct{}, config.MaxConnections)
		logger.Debug("HTTP connection limit: %d", config.MaxConnections)
	} else {
		logger.Debug("HTTP connection limit: unlimited")
	}

	var limiter *ratelimiter.RateLimiter
	if config.RateLimit > 0 {
		limiter = ratelimiter.New(config.RateLimit, config.RateBurst)
		logger.Debug("HTTP rate limit: %d req/s (burst %d)", config.RateLimit, config.RateBurst)
	}

	if httpMetrics == nil {
		httpMetrics = metrics.NewNoopHTTPMetrics()
	}

	shutdownCtx, cancelRequests := context.WithCancel(context.Background())

	return &HTTPServer{
		config:         config,
		resolver:       resolver,
		limiter:        limiter,
		metrics:        httpMetrics,
		shutdown:       make(chan struct{}),
		connSemaphore:  connSemaphore,
		shutdownCtx:    shutdownCtx,
		cancelRequests: cancelRequests,
	}, nil
}

// Listen binds the TCP listener without starting the accept loop.
//
// Calling Listen before Serve allows the caller to learn the bound
// address via Addr(), which matters when Port is 0 (ephemeral port).
// Serve calls Listen automatically if it has not been called.
func (s *HTTPServer) Listen() error {
	if s.listener != nil {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create listener on %s: %w", addr, err)
	}

	s.listener = listener
	return nil
}

// Addr returns the listener address, or nil if Listen has not been
// called yet.
func (s *HTTPServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve starts the server and blocks until the context is cancelled or
// an unrecoverable error occurs.
//
// Each accepted connection is handled in its own goroutine. When the
// context is cancelled, Serve stops accepting connections, waits up to
// ShutdownTimeout for in-flight connections to finish, then cancels
// and force-closes the rest.
//
// Serve should only be called once per HTTPServer instance.
func (s *HTTPServer) Serve(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	logger.Info("HTTP server listening on %s", s.listener.Addr())
	logger.Debug("HTTP config: max_connections=%d read_timeout=%v write_timeout=%v",
		s.config.MaxConnections, s.config.ReadTimeout, s.config.WriteTimeout)

	// Monitor context cancellation in a separate goroutine so the main
	// loop can focus on accepting connections.
	go func() {
		<-ctx.Done()
		logger.Info("HTTP shutdown signal received: %v", ctx.Err())
		s.initiateShutdown()
	}()

	if s.config.MetricsLogInterval > 0 {
		go s.logMetrics(ctx)
	}

	for {
		// Acquire a semaphore slot if connection limiting is enabled.
		// This blocks at MaxConnections until a connection closes.
		if s.connSemaphore != nil {
			select {
			case s.connSemaphore <- struct{}{}:
			case <-s.shutdown:
				return s.gracefulShutdown()
			}
		}

		tcpConn, err := s.listener.Accept()
		if err != nil {
			if s.connSemaphore != nil {
				<-s.connSemaphore
			}

			select {
			case <-s.shutdown:
				// Expected error during shutdown (listener was closed)
				return s.gracefulShutdown()
			default:
				logger.Debug("Error accepting connection: %v", err)
				continue
			}
		}

		s.activeConns.Add(1)
		s.connCount.Add(1)

		// Register the connection for forced closure during shutdown
		connAddr := tcpConn.RemoteAddr().String()
		s.activeConnections.Store(connAddr, tcpConn)

		s.metrics.RecordConnectionAccepted()
		currentConns := s.connCount.Load()
		s.metrics.SetActiveConnections(currentConns)

		logger.Debug("Connection accepted from %s (active: %d)", connAddr, currentConns)

		conn := s.newConn(tcpConn)
		go func(addr string, tcp net.Conn) {
			defer func() {
				s.activeConnections.Delete(addr)

				s.activeConns.Done()
				s.connCount.Add(-1)
				if s.connSemaphore != nil {
					<-s.connSemaphore
				}

				s.metrics.RecordConnectionClosed()
				currentConns := s.connCount.Load()
				s.metrics.SetActiveConnections(currentConns)

				logger.Debug("Connection closed from %s (active: %d)",
					tcp.RemoteAddr(), currentConns)
			}()

			conn.Serve(s.shutdownCtx)
		}(connAddr, tcpConn)
	}
}

// initiateShutdown signals the server to begin graceful shutdown.
//
// Safe to call multiple times and from multiple goroutines.
func (s *HTTPServer) initiateShutdown() {
	s.shutdownOnce.Do(func() {
		logger.Debug("HTTP shutdown initiated")

		close(s.shutdown)

		if s.listener != nil {
			if err := s.listener.Close(); err != nil {
				logger.Debug("Error closing listener: %v", err)
			}
		}
	})
}

// gracefulShutdown waits for active connections to complete or for
// ShutdownTimeout to expire, after which remaining connections are
// force-closed.
func (s *HTTPServer) gracefulShutdown() error {
	activeCount := s.connCount.Load()
	logger.Info("HTTP graceful shutdown: waiting for %d active connection(s) (timeout: %v)",
		activeCount, s.config.ShutdownTimeout)

	done := make(chan struct{})
	go func() {
		s.activeConns.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("HTTP graceful shutdown complete: all connections closed")
		s.cancelRequests()
		return nil

	case <-time.After(s.config.ShutdownTimeout):
		remaining := s.connCount.Load()
		logger.Warn("HTTP shutdown timeout exceeded: %d connection(s) still active after %v",
			remaining, s.config.ShutdownTimeout)

		// The graceful window is over: abort whatever is still running,
		// then close the sockets out from under it.
		s.cancelRequests()
		s.forceCloseConnections()

		return fmt.Errorf("HTTP shutdown timeout: %d connections force-closed", remaining)
	}
}

// forceCloseConnections closes all tracked TCP connections.
//
// Called after the graceful shutdown timeout expires. Closing the
// sockets forces immediate failure of any ongoing reads or writes so
// connection goroutines exit quickly.
func (s *HTTPServer) forceCloseConnections() {
	closedCount := 0
	s.activeConnections.Range(func(key, value any) bool {
		addr := key.(string)
		conn := value.(net.Conn)

		if err := conn.Close(); err != nil {
			logger.Debug("Error force-closing connection to %s: %v", addr, err)
		} else {
			closedCount++
			logger.Debug("Force-closed connection to %s", addr)
		}

		return true
	})

	if closedCount > 0 {
		logger.Info("Force-closed %d connection(s)", closedCount)
	}
}

// Stop initiates graceful shutdown of the server.
//
// Stop is safe to call multiple times and concurrently with Serve().
// The context allows the caller to bound the wait; if it is cancelled
// before connections complete, Stop returns the context error. A nil
// context falls back to the configured ShutdownTimeout.
func (s *HTTPServer) Stop(ctx context.Context) error {
	s.initiateShutdown()

	if ctx == nil {
		return s.gracefulShutdown()
	}

	activeCount := s.connCount.Load()
	logger.Info("HTTP graceful shutdown: waiting for %d active connection(s)", activeCount)

	done := make(chan struct{})
	go func() {
		s.activeConns.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("HTTP graceful shutdown complete: all connections closed")
		s.cancelRequests()
		return nil

	case <-ctx.Done():
		remaining := s.connCount.Load()
		logger.Warn("HTTP shutdown context cancelled: %d connection(s) still active: %v",
			remaining, ctx.Err())
		return ctx.Err()
	}
}

// logMetrics periodically logs the active connection count.
// The goroutine exits when the context is cancelled.
func (s *HTTPServer) logMetrics(ctx context.Context) {
	ticker := time.NewTicker(s.config.MetricsLogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logger.Info("HTTP metrics: active_connections=%d", s.connCount.Load())
		}
	}
}

// GetActiveConnections returns the current number of active
// connections. Primarily used for testing and monitoring.
func (s *HTTPServer) GetActiveConnections() int32 {
	return s.connCount.Load()
}

func (s *HTTPServer) newConn(tcpConn net.Conn) *HTTPConnection {
	return NewHTTPConnection(s, tcpConn)
}

// Port returns the configured TCP port.
func (s *HTTPServer) Port() int {
	return s.config.Port
}
