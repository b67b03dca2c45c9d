// Package cacheservice implements the in-memory TTL cache engine described
// in spec.md §4.6, grounded directly on the original application's
// CacheService: a key-value store with per-key expiry, hit/miss/operation
// counters, and a background sweep of expired entries.
package cacheservice

import (
	"sync"
	"sync/atomic"
	"time"
)

// entry is one stored value: either never-expiring or carrying an absolute
// expiry time.
type entry struct {
	value        string
	expireAt     time.Time
	neverExpires bool
}

func newEntry(value string, expireSeconds int) entry {
	e := entry{value: value, neverExpires: expireSeconds == 0}
	if !e.neverExpires {
		e.expireAt = time.Now().Add(time.Duration(expireSeconds) * time.Second)
	}
	return e
}

func (e entry) isExpired() bool {
	if e.neverExpires {
		return false
	}
	return time.Now().After(e.expireAt)
}

// ResultCode mirrors the original application's ResultCode{errcode, errmsg}
// reply envelope: errcode==0 is success, errcode==1 is a soft miss/
// not-found/expired condition, errcode==-1 is an exception.
type ResultCode struct {
	Errcode int
	Errmsg  string
}

func successResult() ResultCode {
	return ResultCode{Errcode: 0, Errmsg: "Success"}
}

func notFoundResult() ResultCode {
	return ResultCode{Errcode: 1, Errmsg: "Key not found"}
}

func expiredResult() ResultCode {
	return ResultCode{Errcode: 1, Errmsg: "Key expired"}
}

// Stats is the snapshot returned by GetStats.
type Stats struct {
	TotalKeys   int
	MemoryUsage int64
	HitCount    int64
	MissCount   int64
	HitRate     float64
}

// Engine is the TTL cache: Set/Get/Delete/Exists/BatchGet plus running
// hit/miss/operation counters and a background sweeper that evicts expired
// entries on a fixed interval.
type Engine struct {
	mu    sync.RWMutex
	store map[string]entry

	hitCount        atomic.Int64
	missCount       atomic.Int64
	totalOperations atomic.Int64

	sweepInterval time.Duration
	stopCh        chan struct{}
	wg            sync.WaitGroup
	stopOnce      sync.Once
}

// New returns an Engine. sweepInterval defaults to 60 seconds (the original
// application's CLEANUP_INTERVAL_MS) when <= 0.
func New(sweepInterval time.Duration) *Engine {
	if sweepInterval <= 0 {
		sweepInterval = 60 * time.Second
	}
	return &Engine{
		store:         make(map[string]entry),
		sweepInterval: sweepInterval,
		stopCh:        make(chan struct{}),
	}
}

// StartSweeper launches the background goroutine that periodically removes
// expired keys. Call StopSweeper to shut it down.
func (e *Engine) StartSweeper() {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ticker := time.NewTicker(e.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-e.stopCh:
				return
			case <-ticker.C:
				e.removeExpiredKeys()
			}
		}
	}()
}

// StopSweeper stops the background sweeper and waits for it to exit.
func (e *Engine) StopSweeper() {
	e.stopOnce.Do(func() { close(e.stopCh) })
	e.wg.Wait()
}

func (e *Engine) removeExpiredKeys() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for k, v := range e.store {
		if v.isExpired() {
			delete(e.store, k)
		}
	}
}

// Set stores value under key. expireSeconds == 0 means the key never
// expires.
func (e *Engine) Set(key, value string, expireSeconds int) {
	e.mu.Lock()
	e.store[key] = newEntry(value, expireSeconds)
	e.mu.Unlock()
	e.totalOperations.Add(1)
}

// GetResult is the outcome of a Get call: the ResultCode distinguishes a
// hit (errcode=0) from a miss, and a miss further distinguishes "never set"
// (errmsg="Key not found") from "set but past its expiry"
// (errmsg="Key expired"), matching CacheService::Get in the original
// application.
type GetResult struct {
	ResultCode
	Value  string
	Exists bool
}

// Get returns the value for key. A present-but-expired key counts as a
// miss and is visible to the next sweep for removal.
func (e *Engine) Get(key string) GetResult {
	e.mu.RLock()
	v, ok := e.store[key]
	e.mu.RUnlock()

	e.totalOperations.Add(1)

	if !ok {
		e.missCount.Add(1)
		return GetResult{ResultCode: notFoundResult()}
	}
	if v.isExpired() {
		e.missCount.Add(1)
		return GetResult{ResultCode: expiredResult()}
	}

	e.hitCount.Add(1)
	return GetResult{ResultCode: successResult(), Value: v.value, Exists: true}
}

// Delete removes key, reporting success or "Key not found" if it was
// already absent.
func (e *Engine) Delete(key string) ResultCode {
	e.mu.Lock()
	_, existed := e.store[key]
	delete(e.store, key)
	e.mu.Unlock()

	e.totalOperations.Add(1)
	if !existed {
		return notFoundResult()
	}
	return successResult()
}

// Exists reports whether key is present and unexpired, without affecting
// hit/miss counters (mirroring the original CacheService.Exists, which does
// not count toward hit rate).
func (e *Engine) Exists(key string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.store[key]
	return ok && !v.isExpired()
}

// BatchGetResult is one key's outcome within a BatchGet call.
type BatchGetResult struct {
	Key    string
	Value  string
	Exists bool
}

// BatchGet looks up every key in keys, preserving order, and counts the
// whole batch as a single operation (matching the original application,
// which increments total_operations_ once per BatchGet call rather than
// once per key).
func (e *Engine) BatchGet(keys []string) []BatchGetResult {
	results := make([]BatchGetResult, len(keys))

	e.mu.RLock()
	for i, key := range keys {
		v, ok := e.store[key]
		if ok && !v.isExpired() {
			results[i] = BatchGetResult{Key: key, Value: v.value, Exists: true}
			e.hitCount.Add(1)
		} else {
			results[i] = BatchGetResult{Key: key, Exists: false}
			e.missCount.Add(1)
		}
	}
	e.mu.RUnlock()

	e.totalOperations.Add(1)
	return results
}

// GetStats returns a snapshot of cache size, memory estimate, and hit rate.
func (e *Engine) GetStats() Stats {
	e.mu.RLock()
	totalKeys := len(e.store)
	memoryUsage := e.calculateMemoryUsage()
	e.mu.RUnlock()

	hits := e.hitCount.Load()
	misses := e.missCount.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		TotalKeys:   totalKeys,
		MemoryUsage: memoryUsage,
		HitCount:    hits,
		MissCount:   misses,
		HitRate:     hitRate,
	}
}

// entryOverhead approximates the fixed per-entry bookkeeping cost, standing
// in for the original application's sizeof(CacheEntry).
const entryOverhead = 32

// calculateMemoryUsage must be called with e.mu held.
func (e *Engine) calculateMemoryUsage() int64 {
	var total int64
	for k, v := range e.store {
		total += int64(len(k)) + int64(len(v.value)) + entryOverhead
	}
	return total
}
