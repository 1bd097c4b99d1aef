package cache

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoEffect is the kind of an Error whose store call succeeded but
	// mutated no documents.
	ErrNoEffect = errors.New("no documents were affected")
	// ErrStore is the kind of an Error whose store call failed.
	ErrStore = errors.New("store operation failed")
	// ErrInvalid is the kind of an Error rejected before reaching the store:
	// a record that cannot be encoded or a statement for another collection.
	ErrInvalid = errors.New("invalid request")
)

// Error is returned by every Repository operation that fails. Kind is
// ErrNoEffect, ErrStore or ErrInvalid; Err holds the underlying store error, if any.
// errors.Is matches both.
type Error struct {
	Op         string
	Collection string
	ID         string
	Kind       error
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(" ")
	b.WriteString(e.Collection)
	if e.ID != "" {
		b.WriteString("/")
		b.WriteString(e.ID)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsNoEffect reports whether err means nothing was changed.
func IsNoEffect(err error) bool { return errors.Is(err, ErrNoEffect) }

// IsStore reports whether err is an infrastructure failure.
func IsStore(err error) bool { return errors.Is(err, ErrStore) }

// IsInvalid reports whether err was rejected before reaching the store.
func IsInvalid(err error) bool { return errors.Is(err, ErrInvalid) }

// DecodeError describes a stored row that does not match the record shape.
type DecodeError struct {
	Index   int
	ID      string
	Reasons []string
	Err     error
}

func (e *DecodeError) Error() string {
	id := e.ID
	if id == "" {
		id = "<unknown>"
	}
	if len(e.Reasons) > 0 {
		return fmt.Sprintf("decode row %d (%s): %s", e.Index, id, strings.Join(e.Reasons, "; "))
	}
	return fmt.Sprintf("decode row %d (%s): %v", e.Index, id, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
