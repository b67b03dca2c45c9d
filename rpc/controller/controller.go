// Package controller implements the per-call RPC controller: failure state,
// error text, deadline tracking and best-effort cancellation notification.
package controller

import (
	"sync"
	"time"
)

// DefaultTimeout is the controller's default call deadline when none is set,
// matching the original application's 15 second default.
const DefaultTimeout = 15 * time.Second

// CancelFunc is invoked when a caller requests cancellation via StartCancel.
type CancelFunc func()

// Controller carries per-call state across a single RPC invocation: whether
// it failed and why, its start time and timeout, and whether it was
// canceled. It is not safe to reuse across calls without Reset.
type Controller struct {
	mu sync.Mutex

	failed    bool
	errText   string
	startTime time.Time
	timeout   time.Duration
	canceled  bool
	onCancel  CancelFunc
}

// New returns a Controller with the default timeout and start time set to
// now, mirroring a freshly constructed Zrpccontroller.
func New() *Controller {
	return &Controller{
		startTime: time.Now(),
		timeout:   DefaultTimeout,
	}
}

// Reset clears all state, as if the controller were newly constructed.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed = false
	c.errText = ""
	c.startTime = time.Now()
	c.timeout = DefaultTimeout
	c.canceled = false
	c.onCancel = nil
}

// SetFailed marks the call as failed with the given error text.
func (c *Controller) SetFailed(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed = true
	c.errText = text
}

// Failed reports whether the call has been marked as failed.
func (c *Controller) Failed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failed
}

// ErrorText returns the text set by SetFailed, or "" if the call has not
// failed.
func (c *Controller) ErrorText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errText
}

// SetStartTime resets the clock used by IsTimeout/CheckTimeout to now.
func (c *Controller) SetStartTime() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()
}

// SetTimeout sets the call's deadline duration.
func (c *Controller) SetTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = d
}

// GetTimeout returns the call's configured deadline duration.
func (c *Controller) GetTimeout() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeout
}

// IsTimeout reports whether the elapsed time since SetStartTime exceeds the
// configured timeout.
func (c *Controller) IsTimeout() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.startTime) > c.timeout
}

// CheckTimeout marks the controller as failed with a timeout error if it has
// timed out, and returns whether it did.
func (c *Controller) CheckTimeout() bool {
	if !c.IsTimeout() {
		return false
	}
	c.SetFailed("rpc call timed out")
	return true
}

// NotifyOnCancel registers a callback invoked by StartCancel. Only one
// callback may be registered at a time; a later call replaces an earlier
// one.
func (c *Controller) NotifyOnCancel(fn CancelFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onCancel = fn
}

// StartCancel marks the call as canceled, fails it with "canceled" (set
// directly rather than via SetFailed, which would re-lock c.mu), and
// invokes the registered callback, if any.
func (c *Controller) StartCancel() {
	c.mu.Lock()
	c.canceled = true
	c.failed = true
	c.errText = "canceled"
	cb := c.onCancel
	c.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// IsCanceled reports whether StartCancel has been called.
func (c *Controller) IsCanceled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canceled
}

// Elapsed returns the time since SetStartTime.
func (c *Controller) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.startTime)
}
