// Package notify carries live result sets from the cache layer to whoever is
// listening: in-process subscribers such as the event stream, and Kafka.
package notify

import (
	"context"
	"errors"
	"fmt"
)

// Notifier emits a named event with a JSON-serialisable payload.
type Notifier interface {
	Emit(ctx context.Context, event string, payload any) error
}

// Error reports a failed delivery.
type Error struct {
	Event string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("notify %s: %v", e.Event, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Func adapts a function to Notifier.
type Func func(ctx context.Context, event string, payload any) error

// Emit calls f.
func (f Func) Emit(ctx context.Context, event string, payload any) error {
	return f(ctx, event, payload)
}

// Multi delivers to every notifier and joins the failures.
type Multi []Notifier

// Emit delivers to every notifier even if an earlier one fails.
func (m Multi) Emit(ctx context.Context, event string, payload any) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Emit(ctx, event, payload); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &Error{Event: event, Err: errors.Join(errs...)}
}
