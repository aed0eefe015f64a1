package tokenward

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	internalaudit "github.com/tokenward/tokenward/internal/audit"
)

// AuditEvent is one security-relevant occurrence emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events. Implementations must be safe for
// concurrent use.
type AuditSink = internalaudit.Sink

// NoOpSink discards all audit events.
type NoOpSink = internalaudit.NoOpSink

const (
	auditEventLoginSuccess     = "login_success"
	auditEventLoginFailure     = "login_failure"
	auditEventTokensIssued     = "tokens_issued"
	auditEventRefreshSuccess   = "refresh_success"
	auditEventRefreshFailure   = "refresh_failure"
	auditEventReplayDetected   = "replay_detected"
	auditEventUserMismatch     = "user_mismatch"
	auditEventLogout           = "logout"
	auditEventLogoutAll        = "logout_all"
	auditEventStoreUnavailable = "store_unavailable"
)

// ChannelSink buffers events on a channel for the host to consume.
type ChannelSink struct {
	events chan AuditEvent
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan AuditEvent, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events exposes the receive side of the sink.
func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.events
}

// WriterSink writes events as JSON lines to an io.Writer.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Emit(_ context.Context, event AuditEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	data = append(data, '\n')

	s.mu.Lock()
	_, _ = s.w.Write(data)
	s.mu.Unlock()
}

func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, userID string, cause error, metadata map[string]string) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		UserID:    userID,
		Device:    deviceInfoFromContext(ctx),
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if cause != nil {
		event.Error = cause.Error()
	}

	e.audit.Emit(ctx, event)
}
