// Package heartbeat implements the endpoint-availability supervisor: a
// background probe loop that periodically dials every registered endpoint
// and marks entries unavailable once they have been unreachable past the
// configured timeout. Marked entries stay in the registry: only
// UnregisterService removes an entry, and a later successful probe clears
// the mark. It is the Go counterpart of the original application's
// ZrpcHeartbeat singleton, which ran a probe loop over a registry of
// "Service.Method@ip:port" keys.
package heartbeat

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/kora-zrpc/zrpc/internal/logger"
)

// Defaults mirror the original application's hardcoded constants.
const (
	DefaultInterval        = 5 * time.Second
	DefaultConnectDeadline = 3 * time.Second
	DefaultTimeout         = 15 * time.Second
)

// UnavailableFunc is invoked when an entry is marked unavailable for having
// failed probes past its timeout.
type UnavailableFunc func(key string)

// HeartbeatFunc overrides the default TCP-connect probe (spec.md §4.3:
// "fn(key, ip, port) -> bool"). It reports whether the endpoint should be
// considered reachable.
type HeartbeatFunc func(key, ip string, port int) bool

// Entry tracks one registered endpoint's last successful probe time.
// Timeout, when non-zero, overrides the supervisor-wide eviction timeout
// for this entry alone (spec.md §4.3's per-entry timeout_ms). Unavailable
// is set once the entry has failed probes past its timeout; a later
// successful probe clears it. The entry is kept rather than deleted so a
// caller re-registering the same key (as Channel.CallMethod does on every
// call, since it opens a fresh socket per call rather than once per channel
// lifetime) does not silently resurrect an endpoint the supervisor has
// already declared down — see DESIGN.md.
type Entry struct {
	Key         string
	Endpoint    string
	Timeout     time.Duration
	LastSeen    time.Time
	Unavailable bool
}

// Supervisor probes registered endpoints on a fixed interval and marks
// entries that stop responding as unavailable.
type Supervisor struct {
	interval        time.Duration
	connectDeadline time.Duration
	timeout         time.Duration

	mu      sync.RWMutex
	entries map[string]*Entry
	onGone  UnavailableFunc
	probeFn HeartbeatFunc

	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// Key builds the registry key used throughout this package:
// "Service.Method@ip:port".
func Key(service, method, endpoint string) string {
	return fmt.Sprintf("%s.%s@%s", service, method, endpoint)
}

// New returns a Supervisor with the given tunables. Zero values fall back
// to the original application's defaults.
func New(interval, connectDeadline, timeout time.Duration) *Supervisor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if connectDeadline <= 0 {
		connectDeadline = DefaultConnectDeadline
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Supervisor{
		interval:        interval,
		connectDeadline: connectDeadline,
		timeout:         timeout,
		entries:         make(map[string]*Entry),
		stopCh:          make(chan struct{}),
	}
}

// SetOnUnavailable registers the callback invoked when an entry is marked
// unavailable.
func (s *Supervisor) SetOnUnavailable(fn UnavailableFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onGone = fn
}

// RegisterService adds or refreshes an entry for key at endpoint, using the
// supervisor-wide default eviction timeout.
func (s *Supervisor) RegisterService(key, endpoint string) {
	s.RegisterServiceWithTimeout(key, endpoint, 0)
}

// RegisterServiceWithTimeout inserts an entry for key at endpoint if one is
// not already tracked, overriding the supervisor-wide eviction timeout for
// this entry alone when timeout > 0 (spec.md §4.3: "Register(key, ip, port,
// timeout_ms)"). If key is already tracked, only its endpoint (and, when
// given, its timeout) are refreshed — an existing Unavailable mark is left
// alone, since only a successful probe should clear it.
func (s *Supervisor) RegisterServiceWithTimeout(key, endpoint string, timeout time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.entries[key]; ok {
		existing.Endpoint = endpoint
		if timeout > 0 {
			existing.Timeout = timeout
		}
		return
	}
	s.entries[key] = &Entry{Key: key, Endpoint: endpoint, Timeout: timeout, LastSeen: time.Now()}
}

// SetHeartbeatCallback overrides the default TCP-connect probe with fn.
// Passing nil restores the default dial-and-close probe.
func (s *Supervisor) SetHeartbeatCallback(fn HeartbeatFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.probeFn = fn
}

// UnregisterService removes an entry immediately, without waiting for a
// failed probe.
func (s *Supervisor) UnregisterService(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// IsServiceAvailable reports whether key is currently registered and has
// not been marked unavailable for failing probes past its timeout.
func (s *Supervisor) IsServiceAvailable(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return ok && !e.Unavailable
}

// Start launches the background probe loop. It returns immediately; call
// Stop to shut it down.
func (s *Supervisor) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.loop(ctx)
}

// Stop halts the background probe loop and waits for it to exit.
func (s *Supervisor) Stop() {
	s.once.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *Supervisor) loop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.TriggerHeartbeat()
		}
	}
}

// TriggerHeartbeat probes every registered endpoint once, synchronously.
// It is exported so callers (and tests) can force an out-of-cadence probe
// pass instead of waiting on the ticker.
func (s *Supervisor) TriggerHeartbeat() {
	s.mu.RLock()
	snapshot := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		snapshot = append(snapshot, e)
	}
	s.mu.RUnlock()

	for _, e := range snapshot {
		s.probeAndUpdate(e)
	}
}

// probeAndUpdate runs one probe for e. Success refreshes LastSeen and
// clears any Unavailable mark; failure marks the entry unavailable once it
// has been unreachable past its timeout (the onGone callback fires only on
// the transition into unavailability, not on every subsequent failed probe).
func (s *Supervisor) probeAndUpdate(e *Entry) {
	err := s.probe(e)
	if err == nil {
		s.mu.Lock()
		if cur, ok := s.entries[e.Key]; ok {
			cur.LastSeen = time.Now()
			cur.Unavailable = false
		}
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	cur, ok := s.entries[e.Key]
	timeout := s.timeout
	if ok && cur.Timeout > 0 {
		timeout = cur.Timeout
	}
	wasAvailable := ok && !cur.Unavailable
	timedOut := ok && time.Since(cur.LastSeen) > timeout
	if timedOut {
		cur.Unavailable = true
	}
	cb := s.onGone
	s.mu.Unlock()

	if timedOut && wasAvailable {
		logger.Warn("heartbeat marked endpoint unavailable", logger.ServiceKey(e.Key), logger.Endpoint(e.Endpoint), logger.Err(err))
		if cb != nil {
			cb(e.Key)
		}
	}
}

// probe runs one reachability check for e: the registered HeartbeatFunc
// override if set, otherwise a raw TCP connect-and-close.
func (s *Supervisor) probe(e *Entry) error {
	s.mu.RLock()
	fn := s.probeFn
	s.mu.RUnlock()

	if fn != nil {
		host, portStr, splitErr := net.SplitHostPort(e.Endpoint)
		if splitErr == nil {
			if port, convErr := strconv.Atoi(portStr); convErr == nil {
				if fn(e.Key, host, port) {
					return nil
				}
				return fmt.Errorf("heartbeat: callback probe reported %s unreachable", e.Endpoint)
			}
		}
	}

	conn, err := net.DialTimeout("tcp", e.Endpoint, s.connectDeadline)
	if err != nil {
		return err
	}
	_ = conn.Close()
	return nil
}
