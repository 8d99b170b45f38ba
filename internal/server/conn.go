package server

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/slabounty/rusty-server/internal/logger"
	"github.com/slabounty/rusty-server/internal/protocol/http1"
	"github.com/slabounty/rusty-server/pkg/content"
)

// notFoundFallbackBody is served when the configured 404 document is
// itself missing from the store.
const notFoundFallbackBody = "<h1>404 Not Found</h1>"

const internalErrorBody = "internal server error"

const notImplementedBody = "method not implemented"

const serviceUnavailableBody = "service unavailable"

// HTTPConnection handles a single client connection: one request, one
// response, then close.
type HTTPConnection struct {
	server *HTTPServer
	conn   net.Conn
}

func NewHTTPConnection(server *HTTPServer, conn net.Conn) *HTTPConnection {
	return &HTTPConnection{
		server,
		conn,
	}
}

// Serve reads a single request from the connection, writes the
// response, and closes the connection.
//
// It implements panic recovery to prevent a single misbehaving
// connection from crashing the server. The connection is closed when:
//   - The response has been written
//   - The context is cancelled (the graceful shutdown window expired)
//   - A read or write timeout occurs
//   - The client closes the connection before sending a full request
//
// During graceful shutdown the context stays live until the shutdown
// timeout, so a request already in flight is still answered.
func (c *HTTPConnection) Serve(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic in connection handler from %s: %v",
				c.conn.RemoteAddr().String(), r)
		}
		_ = c.conn.Close()
	}()

	clientAddr := c.conn.RemoteAddr().String()

	select {
	case <-ctx.Done():
		logger.Debug("Connection from %s closed due to shutdown", clientAddr)
		return
	default:
	}

	startTime := time.Now()
	method, status, err := c.handleRequest(ctx)
	duration := time.Since(startTime)

	if err != nil {
		if errors.Is(err, http1.ErrConnectionClosed) {
			logger.Debug("Connection from %s closed by client", clientAddr)
		} else if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			logger.Debug("Connection from %s timed out: %v", clientAddr, err)
		} else if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logger.Debug("Connection from %s cancelled: %v", clientAddr, err)
		} else {
			logger.Debug("Error handling request from %s: %v", clientAddr, err)
		}
		return
	}

	if method != "" {
		c.server.metrics.RecordRequest(method, status, duration)
	}
}

// handleRequest processes a single HTTP request cycle.
//
// It returns the request method and response status for metrics, or an
// error when no response could be written (client disconnect, timeout,
// write failure).
func (c *HTTPConnection) handleRequest(ctx context.Context) (string, int, error) {
	clientAddr := c.conn.RemoteAddr().String()

	if c.server.config.ReadTimeout > 0 {
		deadline := time.Now().Add(c.server.config.ReadTimeout)
		if err := c.conn.SetReadDeadline(deadline); err != nil {
			return "", 0, err
		}
	}

	req, err := http1.ReadRequest(c.conn, c.server.config.MaxHeaderBytes)
	if err != nil {
		// A client that connects and disconnects without sending a full
		// request head gets no response.
		if errors.Is(err, http1.ErrConnectionClosed) {
			return "", 0, err
		}
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return "", 0, err
		}

		logger.Debug("Malformed request from %s: %v", clientAddr, err)
		resp := http1.NewResponse(http1.StatusBadRequest, "text/plain", []byte("bad request"))
		return "", http1.StatusCode(http1.StatusBadRequest), c.sendResponse(resp, "", "", clientAddr)
	}

	if req.Method != "GET" {
		logger.Debug("Unsupported method %q from %s", req.Method, clientAddr)
		resp := http1.NewResponse(http1.StatusNotImplemented, "text/plain", []byte(notImplementedBody))
		return req.Method, http1.StatusCode(http1.StatusNotImplemented),
			c.sendResponse(resp, req.Method, req.Path, clientAddr)
	}

	if c.server.limiter != nil && !c.server.limiter.Allow() {
		logger.Warn("Rate limit exceeded for %s", clientAddr)
		resp := http1.NewResponse(http1.StatusServiceUnavailable, "text/plain", []byte(serviceUnavailableBody))
		return req.Method, http1.StatusCode(http1.StatusServiceUnavailable),
			c.sendResponse(resp, req.Method, req.Path, clientAddr)
	}

	select {
	case <-ctx.Done():
		return req.Method, 0, ctx.Err()
	default:
	}

	resp := c.buildResponse(ctx, req)
	return req.Method, http1.StatusCode(resp.StatusLine),
		c.sendResponse(resp, req.Method, req.Path, clientAddr)
}

// buildResponse resolves the request path against the content store and
// produces the response to send.
func (c *HTTPConnection) buildResponse(ctx context.Context, req *http1.Request) *http1.Response {
	target, err := c.server.resolver.Resolve(ctx, req.Path)
	if err != nil {
		if errors.Is(err, content.ErrContentNotFound) {
			return c.notFoundResponse(ctx)
		}
		logger.Error("Resolve %s failed: %v", req.Path, err)
		return http1.NewResponse(http1.StatusInternalServerError, "text/plain", []byte(internalErrorBody))
	}

	body, err := c.server.resolver.Read(ctx, target.Key)
	if err != nil {
		// The content disappeared between the existence check and the
		// read, or the backing store failed.
		if errors.Is(err, content.ErrContentNotFound) {
			return c.notFoundResponse(ctx)
		}
		logger.Error("Read %s failed: %v", target.Key, err)
		return http1.NewResponse(http1.StatusInternalServerError, "text/plain", []byte(internalErrorBody))
	}

	return http1.NewResponse(http1.StatusOK, target.ContentType, body)
}

// notFoundResponse serves the crafted 404 document from the store,
// falling back to a built-in body when the document is missing.
func (c *HTTPConnection) notFoundResponse(ctx context.Context) *http1.Response {
	body, err := c.server.resolver.Read(ctx, c.server.resolver.NotFoundDocument())
	if err != nil {
		if !errors.Is(err, content.ErrContentNotFound) {
			logger.Warn("Failed to read 404 document: %v", err)
		}
		body = []byte(notFoundFallbackBody)
	}
	return http1.NewResponse(http1.StatusNotFound, "text/html", body)
}

// sendResponse writes the response under the configured write timeout
// and emits the access log line and byte metrics.
func (c *HTTPConnection) sendResponse(resp *http1.Response, method, path, clientAddr string) error {
	resp.AddHeader("Connection", "close")

	if c.server.config.WriteTimeout > 0 {
		deadline := time.Now().Add(c.server.config.WriteTimeout)
		if err := c.conn.SetWriteDeadline(deadline); err != nil {
			return err
		}
	}

	n, err := resp.WriteTo(c.conn)
	if err != nil {
		return err
	}

	c.server.metrics.RecordBytesWritten(n)

	status := http1.StatusCode(resp.StatusLine)
	if method == "" {
		method = "-"
	}
	if path == "" {
		path = "-"
	}
	logger.Info("%s %s %s %d %d", clientAddr, method, path, status, n)

	return nil
}
