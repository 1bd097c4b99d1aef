// Package docstore defines the DocumentStore capability consumed by the cache
// layer, the statement dialect it speaks, and an in-memory implementation.
//
// Statements are strings with named parameters:
//
//	SELECT * FROM <collection> [WHERE <field> = :<param>] [ORDER BY <field> [ASC|DESC]]
//	INSERT INTO <collection> VALUES (:<param>) [ON ID CONFLICT (DO UPDATE | DO NOTHING)]
//	DELETE FROM <collection> WHERE <field> = :<param>
//
// Every document is a JSON object keyed by a string "_id". Results carry the
// raw JSON of each matching document and the ids a mutation touched.
//
// Live queries are push based. A registered SELECT is evaluated once right
// away and again after every mutation of its collection, on a goroutine owned
// by the store. Wake-ups that arrive while a query is being evaluated are
// coalesced into a single re-evaluation.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrInvalidStatement is returned for statements outside the dialect.
	ErrInvalidStatement = errors.New("invalid statement")
	// ErrInvalidParam is returned when a named parameter is missing or has the wrong shape.
	ErrInvalidParam = errors.New("invalid parameter")
	// ErrConflict is returned by INSERT without an ON ID CONFLICT clause when the id exists.
	ErrConflict = errors.New("document id already exists")
	// ErrClosed is returned by a store that has been closed.
	ErrClosed = errors.New("store is closed")
)

// IDField is the primary key of every document.
const IDField = "_id"

// Params holds named statement parameters, keyed without the leading colon.
type Params map[string]any

// Result is the outcome of a single statement.
type Result struct {
	// Items holds the raw JSON documents returned by a SELECT, in order.
	Items []json.RawMessage
	// MutatedIDs lists the ids of documents an INSERT or DELETE changed.
	MutatedIDs []string
}

// ChangeHandler receives the current result set of a live query.
type ChangeHandler func(*Result)

// LiveQuery is the registration handle of a live query.
type LiveQuery interface {
	// Cancel unregisters the query. After it returns the ChangeHandler is not
	// invoked again. It must not be called from inside the ChangeHandler.
	Cancel()
}

// DocumentStore is the capability the cache layer is built on.
// Implementations are safe for concurrent use.
type DocumentStore interface {
	Execute(ctx context.Context, statement string, params Params) (*Result, error)
	RegisterLiveQuery(ctx context.Context, statement string, params Params, onChange ChangeHandler) (LiveQuery, error)
}
