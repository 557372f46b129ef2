package store

import (
	"time"

	"github.com/gradtrack/gradtrack/internal/types"
)

// EventKind identifies what happened in the store.
type EventKind string

const (
	EventLoaded     EventKind = "loaded"
	EventAdded      EventKind = "added"
	EventUpdated    EventKind = "updated"
	EventDeleted    EventKind = "deleted"
	EventImported   EventKind = "imported"
	EventSaved      EventKind = "saved"
	EventSaveFailed EventKind = "save_failed"
)

// Event is delivered to subscribers after every change and every save attempt.
type Event struct {
	Kind EventKind
	// ID is the affected application, empty for whole-list events.
	ID string
	// Applications is the list after the change. Treat it as read-only.
	Applications []types.Application
	// Err is set for EventSaveFailed.
	Err  error
	Time time.Time
}

// Listener receives store events. It runs on the goroutine that caused the
// event (the caller of a mutator, or the save timer) and must not block.
type Listener func(Event)

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextListener
	s.nextListener++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) notify(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = s.config.Now()
	}

	s.mu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(ev)
	}
}
