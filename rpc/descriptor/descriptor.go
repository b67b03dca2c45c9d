// Package descriptor implements the server's dispatch table: a registry
// mapping "service.method" pairs to handler functions, used by rpc/server to
// route an incoming frame to application code. This replaces the original
// application's single fixed service_map with a general, descriptor-driven
// registry so the provider can host any number of registered services.
package descriptor

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MethodHandler invokes one RPC method against a raw, already-deserialized
// argument payload and returns the raw reply payload. Serialization is the
// concern of the Codec the caller supplies (or the framework's own args_size
// framing), not of this package.
type MethodHandler func(ctx context.Context, payload []byte) ([]byte, error)

// MethodDesc describes one registered method of a service.
type MethodDesc struct {
	Name    string
	Handler MethodHandler
}

// ServiceDesc describes a service and its methods, analogous to the
// original application's per-service subclass of google::protobuf::Service.
type ServiceDesc struct {
	Name    string
	Methods map[string]MethodDesc
}

// ServiceMap is the server-wide registry of services. It is safe for
// concurrent use: registration happens at startup, lookups happen on every
// accepted connection.
type ServiceMap struct {
	mu       sync.RWMutex
	services map[string]*ServiceDesc
}

// NewServiceMap returns an empty registry.
func NewServiceMap() *ServiceMap {
	return &ServiceMap{services: make(map[string]*ServiceDesc)}
}

// Register adds a service to the map. It returns an error if the service
// name is empty, has no methods, or is already registered.
func (m *ServiceMap) Register(desc *ServiceDesc) error {
	if desc == nil || desc.Name == "" {
		return fmt.Errorf("descriptor: service must have a non-empty name")
	}
	if len(desc.Methods) == 0 {
		return fmt.Errorf("descriptor: service %q has no methods", desc.Name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.services[desc.Name]; exists {
		return fmt.Errorf("descriptor: service %q already registered", desc.Name)
	}
	m.services[desc.Name] = desc
	return nil
}

// Lookup returns the handler for service.method, or false if either is
// unknown.
func (m *ServiceMap) Lookup(service, method string) (MethodHandler, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	svc, ok := m.services[service]
	if !ok {
		return nil, false
	}
	md, ok := svc.Methods[method]
	if !ok {
		return nil, false
	}
	return md.Handler, true
}

// ServiceNames returns a sorted snapshot of registered service names, used
// by the debug HTTP surface.
func (m *ServiceMap) ServiceNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.services))
	for name := range m.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MethodNames returns the sorted method names of a registered service, or
// nil if the service is unknown.
func (m *ServiceMap) MethodNames(service string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	svc, ok := m.services[service]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(svc.Methods))
	for name := range svc.Methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
