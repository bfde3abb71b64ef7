// Package notify is an in-process notification channel: short-lived user-facing
// messages that expire on their own. UI layers subscribe to render the active
// set; domain stores publish outcomes into it.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity levels for notifications.
const (
	SeveritySuccess = "success"
	SeverityError   = "error"
	SeverityInfo    = "info"
	SeverityWarning = "warning"
)

// DefaultDuration is how long a notification stays active when the caller
// does not specify a duration.
const DefaultDuration = 3000 * time.Millisecond

// Notification is a single transient message.
type Notification struct {
	ID       string
	Message  string
	Severity string
	Duration time.Duration
	ShownAt  time.Time
}

// Listener observes changes to the active notification set. It is invoked
// after every show, dismissal, and expiry with the current active list, in
// insertion order.
type Listener func(active []Notification)

// Channel manages the active notification set. Safe for concurrent use.
type Channel struct {
	mu        sync.Mutex
	active    []Notification
	timers    map[string]*time.Timer
	listeners map[int]Listener
	nextSub   int
	logger    *slog.Logger
}

// NewChannel creates an empty notification channel.
func NewChannel(log *slog.Logger) *Channel {
	return &Channel{
		timers:    map[string]*time.Timer{},
		listeners: map[int]Listener{},
		logger:    log,
	}
}

// Subscribe registers a listener and returns a function that removes it.
// The listener is immediately called with the current active set.
func (c *Channel) Subscribe(fn Listener) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.listeners[id] = fn
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	fn(snapshot)

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Show publishes a notification and schedules its expiry. A non-positive
// duration gets DefaultDuration. Returns the notification's ID.
func (c *Channel) Show(message, severity string, duration time.Duration) string {
	if duration <= 0 {
		duration = DefaultDuration
	}

	n := Notification{
		ID:       uuid.NewString(),
		Message:  message,
		Severity: severity,
		Duration: duration,
		ShownAt:  time.Now(),
	}

	c.mu.Lock()
	c.active = append(c.active, n)
	c.timers[n.ID] = time.AfterFunc(duration, func() { c.Dismiss(n.ID) })
	c.mu.Unlock()

	c.logger.Debug("notification shown",
		slog.String("id", n.ID),
		slog.String("severity", severity),
	)

	c.notify()
	return n.ID
}

// Success publishes a success notification with the default duration.
func (c *Channel) Success(message string) string {
	return c.Show(message, SeveritySuccess, 0)
}

// Error publishes an error notification with the default duration.
func (c *Channel) Error(message string) string {
	return c.Show(message, SeverityError, 0)
}

// Info publishes an info notification with the default duration.
func (c *Channel) Info(message string) string {
	return c.Show(message, SeverityInfo, 0)
}

// Dismiss removes a notification before its expiry. Dismissing an unknown or
// already-expired ID is a no-op.
func (c *Channel) Dismiss(id string) {
	c.mu.Lock()
	found := false
	for i, n := range c.active {
		if n.ID == id {
			c.active = append(c.active[:i], c.active[i+1:]...)
			found = true
			break
		}
	}
	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}
	c.mu.Unlock()

	if found {
		c.notify()
	}
}

// Active returns the currently visible notifications in insertion order.
func (c *Channel) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close stops all pending expiry timers and clears the active set.
func (c *Channel) Close() {
	c.mu.Lock()
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
	c.active = nil
	c.mu.Unlock()
	c.notify()
}

func (c *Channel) snapshotLocked() []Notification {
	out := make([]Notification, len(c.active))
	copy(out, c.active)
	return out
}

func (c *Channel) notify() {
	c.mu.Lock()
	fns := make([]Listener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}
