// Package notify holds the transient, self-expiring notification queue
// shown to operators and claimants.
package notify

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/ppiankov/reliefdesk/internal/model"
)

const (
	DefaultTTL      = 5 * time.Second
	DefaultCapacity = 5
)

// Notifier emits notifications
type Notifier interface {
	Emit(msg string) model.Notification
}

type entry struct {
	seq uint64
	n   model.Notification
}

// Center keeps at most capacity notifications, each expiring ttl after creation
type Center struct {
	mu       sync.Mutex
	items    *gocache.Cache
	ttl      time.Duration
	capacity int
	seq      uint64
	logger   *zap.Logger
}

// NewCenter creates a notification center
func NewCenter(ttl time.Duration, capacity int, logger *zap.Logger) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cleanup := ttl / 2
	if cleanup < 10*time.Millisecond {
		cleanup = 10 * time.Millisecond
	}

	return &Center{
		items:    gocache.New(ttl, cleanup),
		ttl:      ttl,
		capacity: capacity,
		logger:   logger,
	}
}

// Emit records a new notification and evicts the oldest beyond capacity
func (c *Center) Emit(msg string) model.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	c.seq++
	n := model.Notification{
		ID:        id.String(),
		Message:   msg,
		CreatedAt: time.Now().UTC(),
	}
	c.items.Set(n.ID, entry{seq: c.seq, n: n}, c.ttl)

	live := c.live()
	for len(live) > c.capacity {
		oldest := live[len(live)-1]
		c.items.Delete(oldest.n.ID)
		live = live[:len(live)-1]
	}

	c.logger.Debug("notification emitted", zap.String("id", n.ID), zap.String("message", msg))
	return n
}

// Visible returns the live notifications, newest first
func (c *Center) Visible() []model.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	live := c.live()
	out := make([]model.Notification, len(live))
	for i, e := range live {
		out[i] = e.n
	}
	return out
}

// Dismiss removes a notification before it expires
func (c *Center) Dismiss(id string) {
	c.items.Delete(id)
}

// live returns unexpired entries sorted newest first; caller holds mu
func (c *Center) live() []entry {
	items := c.items.Items()
	out := make([]entry, 0, len(items))
	for _, it := range items {
		if e, ok := it.Object.(entry); ok {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq > out[j].seq })
	return out
}
