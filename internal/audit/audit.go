package audit

import (
	"context"
	"time"
)

// Event is one security-relevant occurrence: a login, a rotation, a detected
// replay. Replay and owner-mismatch events are the operational signal the
// rotation protocol exists to produce.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Device    string            `json:"device,omitempty"`
	IP        string            `json:"ip,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Sink receives events from the dispatcher. Implementations must be safe for
// concurrent use and must not block indefinitely.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink discards everything.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}
