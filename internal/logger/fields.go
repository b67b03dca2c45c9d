package logger

import (
	"log/slog"
)

// Standard field keys for structured logging across the RPC framework.
// Use these consistently so log aggregation/querying stays uniform between
// the client channel, the server provider, the heartbeat supervisor and the
// cache engine.
const (
	// Correlation
	KeyTraceID = "trace_id" // correlation id stamped per call

	// RPC call shape
	KeyService  = "service"   // RPC service name
	KeyMethod   = "method"    // RPC method name
	KeyEndpoint = "endpoint"  // resolved ip:port
	KeyArgsSize = "args_size" // serialized payload size in bytes

	// Client/connection identification
	KeyClientIP     = "client_ip"     // remote address, server side
	KeyConnectionID = "connection_id" // per-accepted-connection id

	// Heartbeat / service discovery
	KeyServiceKey = "service_key" // Service.Method@ip:port
	KeyTimeoutMs  = "timeout_ms"

	// Cache layer
	KeyCacheKey  = "cache_key"
	KeyCacheHit  = "cache_hit"
	KeyHitRate   = "hit_rate"
	KeyTotalKeys = "total_keys"

	// Operation metadata
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyErrCode    = "errcode"
)

// TraceID returns a slog.Attr for the call correlation id.
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// Service returns a slog.Attr for the RPC service name.
func Service(name string) slog.Attr {
	return slog.String(KeyService, name)
}

// Method returns a slog.Attr for the RPC method name.
func Method(name string) slog.Attr {
	return slog.String(KeyMethod, name)
}

// Endpoint returns a slog.Attr for a resolved ip:port.
func Endpoint(addr string) slog.Attr {
	return slog.String(KeyEndpoint, addr)
}

// ArgsSize returns a slog.Attr for the serialized payload size.
func ArgsSize(n uint32) slog.Attr {
	return slog.Uint64(KeyArgsSize, uint64(n))
}

// ClientIP returns a slog.Attr for a remote address.
func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// ConnectionID returns a slog.Attr for a per-connection id.
func ConnectionID(id string) slog.Attr {
	return slog.String(KeyConnectionID, id)
}

// ServiceKey returns a slog.Attr for the heartbeat supervisor's service key.
func ServiceKey(key string) slog.Attr {
	return slog.String(KeyServiceKey, key)
}

// TimeoutMs returns a slog.Attr for a timeout in milliseconds.
func TimeoutMs(ms int) slog.Attr {
	return slog.Int(KeyTimeoutMs, ms)
}

// CacheKey returns a slog.Attr for a cache key.
func CacheKey(key string) slog.Attr {
	return slog.String(KeyCacheKey, key)
}

// CacheHit returns a slog.Attr for a cache hit indicator.
func CacheHit(hit bool) slog.Attr {
	return slog.Bool(KeyCacheHit, hit)
}

// HitRate returns a slog.Attr for a computed cache hit rate.
func HitRate(rate float64) slog.Attr {
	return slog.Float64(KeyHitRate, rate)
}

// TotalKeys returns a slog.Attr for the number of live cache keys.
func TotalKeys(n int) slog.Attr {
	return slog.Int(KeyTotalKeys, n)
}

// DurationMs returns a slog.Attr for an operation duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error value.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// ErrCode returns a slog.Attr for an application-level result code.
func ErrCode(code int32) slog.Attr {
	return slog.Int(KeyErrCode, int(code))
}
