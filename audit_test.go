package tokenward

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestChannelSinkDeliversAndRespectsContext(t *testing.T) {
	sink := NewChannelSink(1)

	sink.Emit(context.Background(), AuditEvent{EventType: "login_success"})

	select {
	case event := <-sink.Events():
		if event.EventType != "login_success" {
			t.Fatalf("unexpected event: %+v", event)
		}
	default:
		t.Fatal("expected buffered event")
	}

	// With a full buffer and a cancelled context, Emit returns instead of
	// blocking forever.
	sink.Emit(context.Background(), AuditEvent{EventType: "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		sink.Emit(ctx, AuditEvent{EventType: "b"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on full buffer despite cancelled context")
	}
}

func TestWriterSinkEmitsJSONLines(t *testing.T) {
	var buf bytes.Buffer
	sink := NewWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{
		EventType: "logout",
		UserID:    "user-42",
		Success:   true,
		Timestamp: time.Now(),
	})
	sink.Emit(context.Background(), AuditEvent{
		EventType: "replay_detected",
		UserID:    "user-42",
	})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSON lines, got %d", len(lines))
	}

	var event AuditEvent
	if err := json.Unmarshal(lines[0], &event); err != nil {
		t.Fatalf("first line is not valid JSON: %v", err)
	}
	if event.EventType != "logout" || event.UserID != "user-42" || !event.Success {
		t.Fatalf("unexpected decoded event: %+v", event)
	}
}
