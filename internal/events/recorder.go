package events

import (
	"context"
	"sync"
)

// Event is a captured emission.
type Event struct {
	Subject string
	Data    map[string]interface{}
}

// Recorder captures events in memory so tests can assert on diagnostics.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Sink returns a Sink that appends to the recorder.
func (r *Recorder) Sink() Sink {
	return func(_ context.Context, subject string, data map[string]interface{}) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, Event{Subject: subject, Data: data})
	}
}

// Events returns a copy of all captured events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Subjects returns the subjects of all captured events in order.
func (r *Recorder) Subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Subject
	}
	return out
}

// Count returns how many captured events have the given subject.
func (r *Recorder) Count(subject string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Subject == subject {
			n++
		}
	}
	return n
}
