package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds call-scoped logging context: which RPC is in flight and
// when it started.
type LogContext struct {
	TraceID   string    // correlation id stamped per call
	Service   string    // RPC service name
	Method    string    // RPC method name
	Endpoint  string    // resolved ip:port for the call
	ClientIP  string    // remote address, server side
	ArgsSize  uint32    // payload size in bytes
	StartTime time.Time // for duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext with the given correlation id
func NewLogContext(traceID string) *LogContext {
	return &LogContext{
		TraceID:   traceID,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithCall returns a copy with service/method set
func (lc *LogContext) WithCall(service, method string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Service = service
		clone.Method = method
	}
	return clone
}

// WithEndpoint returns a copy with the resolved endpoint and client IP set
func (lc *LogContext) WithEndpoint(endpoint, clientIP string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Endpoint = endpoint
		clone.ClientIP = clientIP
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
