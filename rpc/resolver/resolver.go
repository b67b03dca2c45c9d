// Package resolver implements service discovery against a coordination
// store. spec.md treats the coordination store client as an external
// collaborator behind a small Resolver interface (Start, GetData); this
// package also ships a concrete adapter backed by etcd, the nearest
// coordination-store analogue available in this repo's retrieval pack to
// the original application's ZooKeeper client.
package resolver

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Resolver looks up the ip:port a service.method is currently bound to.
// Implementations own their own connection lifecycle via Start/Close.
type Resolver interface {
	// Start establishes the connection to the coordination store.
	Start(ctx context.Context) error

	// GetData returns the value stored at path, e.g. the ip:port
	// registered under "/CacheService/Get".
	GetData(ctx context.Context, path string) (string, error)

	// Close releases any held resources (connections, leases).
	Close() error
}

// ServicePath builds the coordination-store path a service.method is
// registered under, mirroring the original application's
// QueryServiceHost path construction.
func ServicePath(service, method string) string {
	return fmt.Sprintf("/%s/%s", service, method)
}

// validateAddress checks that value looks like a usable "ip:port" endpoint,
// mirroring the original application's QueryServiceHost checks in
// Zrpcchannel.cc: an empty result fails with "is not exist!" and a result
// with no ':' fails with "address is invalid!", kept as two distinct errors
// so callers can tell a missing registration from a corrupt one.
func validateAddress(path, value string) error {
	if value == "" {
		return fmt.Errorf("resolver: %s is not exist!", path)
	}
	if !strings.Contains(value, ":") {
		return fmt.Errorf("resolver: %s address is invalid!", path)
	}
	return nil
}

// MapResolver is an in-memory Resolver backed by a plain map, for unit
// tests and for the example client's standalone mode where no etcd cluster
// is available.
type MapResolver struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMapResolver returns an empty MapResolver.
func NewMapResolver() *MapResolver {
	return &MapResolver{data: make(map[string]string)}
}

// Start is a no-op; MapResolver holds no external connection.
func (m *MapResolver) Start(ctx context.Context) error {
	return nil
}

// GetData returns the value stored at path.
func (m *MapResolver) GetData(ctx context.Context, path string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v := m.data[path]
	if err := validateAddress(path, v); err != nil {
		return "", err
	}
	return v, nil
}

// Set registers path -> value directly, bypassing any lease machinery.
func (m *MapResolver) Set(path, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[path] = value
}

// Close is a no-op.
func (m *MapResolver) Close() error {
	return nil
}

var _ Resolver = (*MapResolver)(nil)
