package audit

import (
	"context"
	"sync"
	"testing"
	"time"
)

type collectSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *collectSink) Emit(_ context.Context, event Event) {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
}

func (s *collectSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

type blockingSink struct {
	release chan struct{}
}

func (s *blockingSink) Emit(_ context.Context, _ Event) {
	<-s.release
}

func TestDisabledDispatcherIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, &collectSink{})
	if d != nil {
		t.Fatal("expected nil dispatcher when disabled")
	}

	// Nil dispatcher is safe to use.
	d.Emit(context.Background(), Event{EventType: "x"})
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher must report zero drops")
	}
	d.Close()
}

func TestEventsReachSink(t *testing.T) {
	sink := &collectSink{}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 16, DropIfFull: true}, sink)

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), Event{EventType: "login_success", Timestamp: time.Now()})
	}
	d.Close()

	if got := sink.len(); got != 5 {
		t.Fatalf("expected 5 events delivered, got %d", got)
	}
	if d.Dropped() != 0 {
		t.Fatalf("expected no drops, got %d", d.Dropped())
	}
}

func TestDropIfFullCountsDrops(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// First event may be picked up by the worker; flood until drops occur.
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Event{EventType: "x"})
	}
	if d.Dropped() == 0 {
		t.Fatal("expected backpressure drops with a full buffer")
	}

	close(sink.release)
	d.Close()
}

func TestCloseIsIdempotentAndDrains(t *testing.T) {
	sink := &collectSink{}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 16, DropIfFull: true}, sink)

	d.Emit(context.Background(), Event{EventType: "a"})
	d.Emit(context.Background(), Event{EventType: "b"})

	d.Close()
	d.Close()

	if got := sink.len(); got != 2 {
		t.Fatalf("expected buffered events drained on close, got %d", got)
	}

	// Emission after close is a silent no-op.
	d.Emit(context.Background(), Event{EventType: "c"})
	if got := sink.len(); got != 2 {
		t.Fatalf("expected no delivery after close, got %d", got)
	}
}
