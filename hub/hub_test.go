package hub

import (
	"sync"
	"testing"

	"sortie/entities"
)

type recordingSession struct {
	mu     sync.Mutex
	events []entities.Event
}

func (r *recordingSession) Deliver(event entities.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingSession) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestPublishIsScopedToRoom(t *testing.T) {
	h := New()

	a := &recordingSession{}
	b := &recordingSession{}
	c := &recordingSession{}

	h.Join("user-a", a)
	h.Join("user-b", b)
	h.Join("user-c", c)

	event, err := entities.NewEvent(entities.EventNewMessage, map[string]string{"content": "Salut"})
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}

	h.Publish("user-a", event)
	h.Publish("user-b", event)

	if a.count() != 1 {
		t.Errorf("session a received %d events, want 1", a.count())
	}
	if b.count() != 1 {
		t.Errorf("session b received %d events, want 1", b.count())
	}
	if c.count() != 0 {
		t.Errorf("session c received %d events, want 0", c.count())
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	h := New()

	s := &recordingSession{}
	h.Join("user-a", s)
	h.Join("user-a", s)

	if got := h.RoomSize("user-a"); got != 1 {
		t.Fatalf("RoomSize = %d after double join, want 1", got)
	}

	event, err := entities.NewEvent(entities.EventNewMessage, nil)
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}

	h.Publish("user-a", event)

	if s.count() != 1 {
		t.Errorf("session received %d events after double join, want 1", s.count())
	}
}

func TestLeaveStopsDelivery(t *testing.T) {
	h := New()

	s := &recordingSession{}
	h.Join("user-a", s)
	h.Leave("user-a", s)

	event, err := entities.NewEvent(entities.EventNewMessage, nil)
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}

	h.Publish("user-a", event)

	if s.count() != 0 {
		t.Errorf("session received %d events after leave, want 0", s.count())
	}

	if got := h.RoomSize("user-a"); got != 0 {
		t.Errorf("RoomSize = %d after leave, want 0", got)
	}

	// Leaving an unknown room is a no-op.
	h.Leave("user-b", s)
}

func TestPublishToEmptyRoom(t *testing.T) {
	h := New()

	event, err := entities.NewEvent(entities.EventNewMessage, nil)
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}

	// Must not panic or block when nobody is listening.
	h.Publish("nobody", event)
}
