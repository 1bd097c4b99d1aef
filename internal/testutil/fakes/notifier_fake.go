package fakes

import (
	"context"
	"errors"
	"sync"
)

// EmittedEvent is one call captured by FakeNotifier.
type EmittedEvent struct {
	Event   string
	Payload any
}

// FakeNotifier captures emitted events and can simulate failures.
type FakeNotifier struct {
	mu        sync.Mutex
	Events    []EmittedEvent
	FailNext  bool
	FailError error
}

func (n *FakeNotifier) Emit(_ context.Context, event string, payload any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.FailNext {
		n.FailNext = false
		if n.FailError == nil {
			n.FailError = errors.New("emit failed")
		}
		return n.FailError
	}
	n.Events = append(n.Events, EmittedEvent{Event: event, Payload: payload})
	return nil
}

// Fail makes the next Emit return an error.
func (n *FakeNotifier) Fail() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.FailNext = true
}

// Snapshot returns a copy of the captured events.
func (n *FakeNotifier) Snapshot() []EmittedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]EmittedEvent(nil), n.Events...)
}

// Last returns the most recent event, if any.
func (n *FakeNotifier) Last() (EmittedEvent, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Events) == 0 {
		return EmittedEvent{}, false
	}
	return n.Events[len(n.Events)-1], true
}
