// Package events fans domain events out to hooks: the order state machine,
// the staff live feed, notifications and the Kafka publisher.
package events

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

const (
	OrderPlaced          = "order.placed"
	OrderStatusChanged   = "order.status_changed"
	PaymentStatusChanged = "payment.status_changed"
)

// Event describes something that happened to one object. IDs are strings so
// sinks do not depend on model types.
type Event struct {
	Name       string         `json:"name"`
	ObjectType string         `json:"object_type"`
	ObjectID   string         `json:"object_id"`
	ActorID    string         `json:"actor_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Meta returns a metadata value as a string, or "" when absent.
func (e Event) Meta(key string) string {
	if v, ok := e.Metadata[key].(string); ok {
		return v
	}
	return ""
}

type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy Hook.
type HookFunc func(ctx context.Context, event Event) error

func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks notifies every hook in order and joins their errors.
type Hooks []Hook

func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}
	event = normalize(event)
	if event.Name == "" || event.ObjectID == "" {
		return nil
	}

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func normalize(event Event) Event {
	event.Name = strings.TrimSpace(event.Name)
	event.ObjectType = strings.TrimSpace(event.ObjectType)
	event.ObjectID = strings.TrimSpace(event.ObjectID)
	if len(event.Metadata) > 0 {
		meta := make(map[string]any, len(event.Metadata))
		for k, v := range event.Metadata {
			meta[k] = v
		}
		event.Metadata = meta
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	return event
}

// Emitter is the process-wide bus. Hooks subscribe per event name; an empty
// name subscribes to everything. Delivery is synchronous.
type Emitter struct {
	mu    sync.RWMutex
	hooks map[string]Hooks
}

func NewEmitter() *Emitter {
	return &Emitter{hooks: make(map[string]Hooks)}
}

func (e *Emitter) Subscribe(name string, hook Hook) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks[name] = append(e.hooks[name], hook)
}

// Emit is a no-op on a nil emitter.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if e == nil {
		return nil
	}
	e.mu.RLock()
	targets := make(Hooks, 0, len(e.hooks[event.Name])+len(e.hooks[""]))
	targets = append(targets, e.hooks[event.Name]...)
	targets = append(targets, e.hooks[""]...)
	e.mu.RUnlock()

	return targets.Notify(ctx, event)
}

// CaptureHook records events for assertions in tests.
type CaptureHook struct {
	Err error

	mu     sync.Mutex
	events []Event
}

func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.Err
}

func (h *CaptureHook) Events() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Event(nil), h.events...)
}

// Named returns the captured events with the given name.
func (h *CaptureHook) Named(name string) []Event {
	var out []Event
	for _, e := range h.Events() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}
