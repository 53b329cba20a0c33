package event

import (
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestPublishSubscribe(t *testing.T) {
	bus := NewBus(testLogger(), 16)
	go bus.Start()
	defer bus.Stop()

	var mu sync.Mutex
	var received []Event

	bus.Subscribe(TrackLinked, func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, e)
	})

	bus.Publish(Event{
		Type:        TrackLinked,
		Correlation: "b1c2",
		Data:        map[string]any{"url": "https://open.spotify.com/track/abc"},
	})

	// Give the goroutine time to process
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 {
		t.Fatalf("got %d events, want 1", len(received))
	}
	if received[0].Data["url"] != "https://open.spotify.com/track/abc" {
		t.Errorf("data[url] = %v", received[0].Data["url"])
	}
	if received[0].Correlation != "b1c2" {
		t.Errorf("correlation = %q, want %q", received[0].Correlation, "b1c2")
	}
	if received[0].Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestSubscribersOnlySeeTheirType(t *testing.T) {
	bus := NewBus(testLogger(), 16)
	go bus.Start()
	defer bus.Stop()

	var mu sync.Mutex
	var linked, unmatched int

	bus.Subscribe(TrackLinked, func(_ Event) {
		mu.Lock()
		defer mu.Unlock()
		linked++
	})
	bus.Subscribe(TrackUnmatched, func(_ Event) {
		mu.Lock()
		defer mu.Unlock()
		unmatched++
	})

	bus.Publish(Event{Type: TrackLinked})
	bus.Publish(Event{Type: TrackLinked})
	bus.Publish(Event{Type: TrackUnmatched})
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if linked != 2 {
		t.Errorf("linked handler calls = %d, want 2", linked)
	}
	if unmatched != 1 {
		t.Errorf("unmatched handler calls = %d, want 1", unmatched)
	}
}

func TestMultipleSubscribers(t *testing.T) {
	bus := NewBus(testLogger(), 16)
	go bus.Start()
	defer bus.Stop()

	var mu sync.Mutex
	count := 0

	for range 3 {
		bus.Subscribe(LookupFailed, func(_ Event) {
			mu.Lock()
			defer mu.Unlock()
			count++
		})
	}

	bus.Publish(Event{Type: LookupFailed})
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 3 {
		t.Errorf("got %d handler calls, want 3", count)
	}
}

func TestNoSubscribers(t *testing.T) {
	bus := NewBus(testLogger(), 16)
	go bus.Start()
	defer bus.Stop()

	// Should not panic
	bus.Publish(Event{Type: ReplyFailed})
	time.Sleep(50 * time.Millisecond)
}

func TestBufferFull(t *testing.T) {
	bus := NewBus(testLogger(), 2)
	// Do NOT start the bus -- events will accumulate in the channel

	bus.Publish(Event{Type: TrackLinked})
	bus.Publish(Event{Type: TrackLinked})
	// Third event should be dropped (buffer full)
	bus.Publish(Event{Type: TrackLinked})
	// No panic or deadlock expected
}

func TestHandlerPanicRecovery(t *testing.T) {
	bus := NewBus(testLogger(), 16)
	go bus.Start()
	defer bus.Stop()

	var mu sync.Mutex
	secondCalled := false

	bus.Subscribe(TrackUnmatched, func(_ Event) {
		panic("test panic")
	})
	bus.Subscribe(TrackUnmatched, func(_ Event) {
		mu.Lock()
		defer mu.Unlock()
		secondCalled = true
	})

	bus.Publish(Event{Type: TrackUnmatched})
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if !secondCalled {
		t.Error("second handler should still be called after first panics")
	}
}

func TestStopDrainsBuffer(t *testing.T) {
	bus := NewBus(testLogger(), 16)

	var mu sync.Mutex
	count := 0

	bus.Subscribe(TrackLinked, func(_ Event) {
		mu.Lock()
		defer mu.Unlock()
		count++
	})

	// Publish before starting
	bus.Publish(Event{Type: TrackLinked})
	bus.Publish(Event{Type: TrackLinked})

	go bus.Start()
	time.Sleep(50 * time.Millisecond)
	bus.Stop()
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 2 {
		t.Errorf("got %d events, want 2 (all drained)", count)
	}
}
