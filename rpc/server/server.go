// Package server implements the RPC provider: an accept loop that reads
// framed requests off each connection, dispatches them through a
// descriptor.ServiceMap, and writes back the raw reply payload. This
// mirrors the original application's Zrpcprovider, generalized from one
// hardcoded service_map entry to a registry that can host any number of
// registered services.
package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/kora-zrpc/zrpc/internal/logger"
	"github.com/kora-zrpc/zrpc/pkg/metrics"
	"github.com/kora-zrpc/zrpc/rpc/descriptor"
	"github.com/kora-zrpc/zrpc/rpc/frame"
)

// Provider accepts connections and dispatches each to a registered
// service.method handler.
type Provider struct {
	services *descriptor.ServiceMap
	metrics  *metrics.Collectors

	heartbeatResponseEnabled atomic.Bool
}

// New returns a Provider dispatching through services.
func New(services *descriptor.ServiceMap) *Provider {
	return &Provider{services: services}
}

// WithMetrics attaches Prometheus collectors the provider updates on every
// dispatched call. Passing nil disables metrics observation.
func (p *Provider) WithMetrics(m *metrics.Collectors) *Provider {
	p.metrics = m
	return p
}

// EnableHeartbeatResponse toggles whether the provider recognizes and logs
// bare probe connections distinctly from a malformed or prematurely closed
// RPC request (spec.md §4.5, the original application's
// Zrpcprovider::EnableHeartbeatResponse). A probe opens a connection and
// closes it immediately without sending a frame; the accept handler already
// tolerates this, but when enabled it is recorded as a heartbeat probe
// rather than a generic truncated-connection event.
func (p *Provider) EnableHeartbeatResponse(enable bool) {
	p.heartbeatResponseEnabled.Store(enable)
}

// IsHeartbeatResponseEnabled reports whether EnableHeartbeatResponse(true)
// was most recently called.
func (p *Provider) IsHeartbeatResponseEnabled() bool {
	return p.heartbeatResponseEnabled.Load()
}

// IsHeartbeatRequest reports whether data is a heartbeat probe payload
// rather than a real frame. The original application's probes never send
// any bytes at all; this helper exists for the rarer case where a probe
// does send something: a zero-length payload is treated as a heartbeat
// marker (spec.md §4.5).
func IsHeartbeatRequest(data []byte) bool {
	return len(data) == 0
}

// Serve accepts connections on l until ctx is done or l.Accept fails. It
// blocks until the listener closes.
func (p *Provider) Serve(ctx context.Context, l net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = l.Close()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go p.handleConnection(ctx, conn)
	}
}

// handleConnection buffers partial frames across reads via bufio.Reader
// rather than assuming one read yields one frame, then dispatches the
// decoded request and writes the reply, half-closing the write side so the
// client can read the reply to EOF.
func (p *Provider) handleConnection(ctx context.Context, conn net.Conn) {
	connID := uuid.NewString()
	defer conn.Close()

	r := bufio.NewReader(conn)
	f, err := frame.DecodeFrame(r)
	if err != nil {
		if errors.Is(err, io.EOF) && p.IsHeartbeatResponseEnabled() {
			p.handleHeartbeat(connID, conn)
			return
		}
		if !errors.Is(err, io.EOF) {
			logger.Debug("connection closed before a frame was read",
				logger.ConnectionID(connID), logger.ClientIP(conn.RemoteAddr().String()), logger.Err(err))
		}
		return
	}

	if p.IsHeartbeatResponseEnabled() && IsHeartbeatRequest(f.Payload) && f.Header.ServiceName == "" && f.Header.MethodName == "" {
		p.handleHeartbeat(connID, conn)
		return
	}

	logger.Debug("dispatching rpc call",
		logger.ConnectionID(connID), logger.ClientIP(conn.RemoteAddr().String()),
		logger.Service(f.Header.ServiceName), logger.Method(f.Header.MethodName),
		logger.ArgsSize(f.Header.ArgsSize))

	start := time.Now()
	handler, ok := p.services.Lookup(f.Header.ServiceName, f.Header.MethodName)
	if !ok {
		logger.Warn("no handler registered for rpc call",
			logger.ConnectionID(connID), logger.Service(f.Header.ServiceName), logger.Method(f.Header.MethodName))
		p.metrics.ObserveCall(f.Header.ServiceName, f.Header.MethodName, "not_found", logger.Duration(start))
		p.closeWrite(conn)
		return
	}

	reply, err := handler(ctx, f.Payload)
	if err != nil {
		logger.Error("rpc handler returned an error",
			logger.ConnectionID(connID), logger.Service(f.Header.ServiceName), logger.Method(f.Header.MethodName),
			logger.Err(err))
		p.metrics.ObserveCall(f.Header.ServiceName, f.Header.MethodName, "error", logger.Duration(start))
		p.closeWrite(conn)
		return
	}
	p.metrics.ObserveCall(f.Header.ServiceName, f.Header.MethodName, "ok", logger.Duration(start))

	if _, err := conn.Write(reply); err != nil {
		logger.Error("failed to write rpc reply", logger.ConnectionID(connID), logger.Err(err))
		return
	}

	p.closeWrite(conn)
}

// handleHeartbeat records a bare probe connection and drops it: no frame is
// sent back, matching the original application's HandleHeartbeat (open,
// recognize, close — no reply).
func (p *Provider) handleHeartbeat(connID string, conn net.Conn) {
	logger.Debug("received heartbeat probe",
		logger.ConnectionID(connID), logger.ClientIP(conn.RemoteAddr().String()))
}

// closeWrite half-closes the connection's write side so the client's
// io.ReadAll sees EOF once the reply (if any) has been delivered.
func (p *Provider) closeWrite(conn net.Conn) {
	if halfCloser, ok := conn.(interface{ CloseWrite() error }); ok {
		_ = halfCloser.CloseWrite()
	}
}
