// Package client implements the RPC client channel: one fresh TCP socket
// per call, resolved through a Resolver and tracked by the heartbeat
// supervisor, mirroring the original application's Zrpcchannel::CallMethod
// sequence (resolve, heartbeat-register, connect-with-timeout, send,
// receive, close).
package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"

	"github.com/kora-zrpc/zrpc/internal/logger"
	"github.com/kora-zrpc/zrpc/rpc/controller"
	"github.com/kora-zrpc/zrpc/rpc/frame"
	"github.com/kora-zrpc/zrpc/rpc/heartbeat"
	"github.com/kora-zrpc/zrpc/rpc/resolver"
)

// Channel issues RPC calls against services discovered through a Resolver.
// Each call opens a fresh socket; connection pooling is an explicit
// Non-goal.
type Channel struct {
	resolver  resolver.Resolver
	heartbeat *heartbeat.Supervisor
}

// NewChannel returns a Channel backed by res for service discovery and hb
// for endpoint liveness tracking.
func NewChannel(res resolver.Resolver, hb *heartbeat.Supervisor) *Channel {
	return &Channel{resolver: res, heartbeat: hb}
}

// eagerConnectRetries bounds the best-effort pre-connect NewChannelWithEagerConnect
// performs, matching spec.md §4.4's "connect_now=true" construction mode.
const eagerConnectRetries = 3

// NewChannelWithEagerConnect returns a Channel like NewChannel, but also
// resolves and dials service.method at construction time, making up to
// eagerConnectRetries attempts in all (the first try included) before
// giving up; this is the connect_now=true construction mode. The probe connection is
// closed immediately; it exists only to validate reachability early. A
// failed eager connect is logged, not returned: CallMethod still resolves
// and connects fresh on the caller's first real call.
func NewChannelWithEagerConnect(ctx context.Context, res resolver.Resolver, hb *heartbeat.Supervisor, service, method string) *Channel {
	ch := NewChannel(res, hb)
	ch.eagerConnect(ctx, service, method)
	return ch
}

func (c *Channel) eagerConnect(ctx context.Context, service, method string) {
	var lastErr error
	for attempt := 1; attempt <= eagerConnectRetries; attempt++ {
		endpoint, err := c.resolver.GetData(ctx, resolver.ServicePath(service, method))
		if err != nil {
			lastErr = err
			continue
		}

		conn, err := net.DialTimeout("tcp", endpoint, controller.DefaultTimeout)
		if err != nil {
			lastErr = err
			continue
		}
		_ = conn.Close()

		logger.Debug("eager connect succeeded",
			logger.Service(service), logger.Method(method), logger.Endpoint(endpoint))
		return
	}

	logger.Warn("eager connect failed after retries",
		logger.Service(service), logger.Method(method), logger.Err(lastErr))
}

// CallMethod resolves service.method to an endpoint, connects within the
// controller's timeout, sends payload, and returns the reply payload. It
// reads the server's reply to EOF rather than a fixed-size buffer, so
// replies of any size are supported.
func (c *Channel) CallMethod(ctx context.Context, ctrl *controller.Controller, service, method string, payload []byte) ([]byte, error) {
	ctrl.SetStartTime()

	endpoint, err := c.resolver.GetData(ctx, resolver.ServicePath(service, method))
	if err != nil {
		ctrl.SetFailed(err.Error())
		return nil, fmt.Errorf("client: resolve %s.%s: %w", service, method, err)
	}

	key := heartbeat.Key(service, method, endpoint)
	if c.heartbeat != nil {
		c.heartbeat.RegisterService(key, endpoint)
		if !c.heartbeat.IsServiceAvailable(key) {
			ctrl.SetFailed(fmt.Sprintf("service not available: %s", key))
			return nil, fmt.Errorf("client: %s.%s: %s", service, method, ctrl.ErrorText())
		}
	}

	conn, err := net.DialTimeout("tcp", endpoint, ctrl.GetTimeout())
	if err != nil {
		ctrl.SetFailed(err.Error())
		return nil, fmt.Errorf("client: dial %s: %w", endpoint, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	logger.Debug("calling rpc method",
		logger.Service(service), logger.Method(method), logger.Endpoint(endpoint),
		logger.ArgsSize(uint32(len(payload))))

	header := frame.Header{ServiceName: service, MethodName: method, ArgsSize: uint32(len(payload))}
	if _, err := conn.Write(frame.EncodeFrame(header, payload)); err != nil {
		ctrl.SetFailed(err.Error())
		return nil, fmt.Errorf("client: send request: %w", err)
	}

	if halfCloser, ok := conn.(interface{ CloseWrite() error }); ok {
		_ = halfCloser.CloseWrite()
	}

	reply, err := io.ReadAll(bufio.NewReader(conn))
	if err != nil {
		ctrl.SetFailed(err.Error())
		return nil, fmt.Errorf("client: read reply: %w", err)
	}

	return reply, nil
}
