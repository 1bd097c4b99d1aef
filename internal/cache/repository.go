// Package cache is the typed reactive cache over a docstore.DocumentStore.
//
// A Repository performs upsert, delete and list operations against one
// collection. Every mutation is logged before it returns, and a mutation that
// touches no document is reported as ErrNoEffect. Rows that fail schema
// validation are skipped and logged so one bad record never blocks the rest.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/dhima/edge-cache/internal/docstore"
	"github.com/dhima/edge-cache/internal/logging"
)

// DefaultSortField orders ListAll results.
const DefaultSortField = "name"

// Document is a record with a string primary key.
type Document interface {
	DocumentID() string
}

// Repository is a typed view of one collection.
type Repository[T Document] struct {
	store      docstore.DocumentStore
	collection string
	sortField  string
	codec      *Codec[T]
	logger     logging.Logger
}

// Option configures a Repository.
type Option func(*options)

type options struct {
	sortField string
}

// WithSortField orders ListAll and Observe results by field instead of "name".
func WithSortField(field string) Option {
	return func(o *options) { o.sortField = field }
}

// NewRepository returns a repository over collection in store.
func NewRepository[T Document](store docstore.DocumentStore, collection string, codec *Codec[T], logger logging.Logger, opts ...Option) *Repository[T] {
	o := options{sortField: DefaultSortField}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &Repository[T]{
		store:      store,
		collection: collection,
		sortField:  o.sortField,
		codec:      codec,
		logger:     logger.Named("cache"),
	}
}

// Collection returns the collection name.
func (r *Repository[T]) Collection() string { return r.collection }

func (r *Repository[T]) upsertStatement() string {
	return fmt.Sprintf("INSERT INTO %s VALUES (:doc) ON ID CONFLICT DO UPDATE", r.collection)
}

func (r *Repository[T]) deleteStatement() string {
	return fmt.Sprintf("DELETE FROM %s WHERE _id = :id", r.collection)
}

func (r *Repository[T]) listStatement() string {
	return fmt.Sprintf("SELECT * FROM %s ORDER BY %s", r.collection, r.sortField)
}

// Upsert inserts or replaces record by its id and returns the id the store
// reports as mutated.
func (r *Repository[T]) Upsert(ctx context.Context, record T) (string, error) {
	id := record.DocumentID()
	r.logger.Info("Upserting document",
		zap.String("collection", r.collection),
		zap.String("id", id),
	)

	doc, err := r.codec.Encode(record)
	if err != nil {
		return "", r.fail("upsert", id, ErrInvalid, err)
	}

	res, err := r.store.Execute(ctx, r.upsertStatement(), docstore.Params{"doc": doc})
	if err != nil {
		return "", r.fail("upsert", id, ErrStore, err)
	}
	if len(res.MutatedIDs) == 0 {
		return "", r.fail("upsert", id, ErrNoEffect, nil)
	}

	mutated := res.MutatedIDs[0]
	r.logger.Info("Document upserted",
		zap.String("collection", r.collection),
		zap.String("id", mutated),
	)
	return mutated, nil
}

// Delete removes the document with id. Deleting a missing id is ErrNoEffect.
func (r *Repository[T]) Delete(ctx context.Context, id string) (string, error) {
	r.logger.Info("Deleting document",
		zap.String("collection", r.collection),
		zap.String("id", id),
	)

	res, err := r.store.Execute(ctx, r.deleteStatement(), docstore.Params{"id": id})
	if err != nil {
		return "", r.fail("delete", id, ErrStore, err)
	}
	if len(res.MutatedIDs) == 0 {
		return "", r.fail("delete", id, ErrNoEffect, nil)
	}

	deleted := res.MutatedIDs[0]
	r.logger.Info("Document deleted",
		zap.String("collection", r.collection),
		zap.String("id", deleted),
	)
	return deleted, nil
}

// ListAll returns every valid record ordered by the sort field. Rows that
// fail to decode are logged and skipped.
func (r *Repository[T]) ListAll(ctx context.Context) ([]T, error) {
	res, err := r.store.Execute(ctx, r.listStatement(), nil)
	if err != nil {
		return nil, r.fail("list", "", ErrStore, err)
	}

	records := r.decode(res.Items)
	r.logger.Debug("Listed documents",
		zap.String("collection", r.collection),
		zap.Int("rows", len(res.Items)),
		zap.Int("valid", len(records)),
	)
	return records, nil
}

// decode keeps the rows that decode and logs the rest.
func (r *Repository[T]) decode(rows []json.RawMessage) []T {
	records := make([]T, 0, len(rows))
	for _, d := range r.codec.DecodeAll(rows) {
		if !d.OK() {
			r.logger.Error("Skipping malformed document",
				zap.String("collection", r.collection),
				zap.String("id", d.Err.ID),
				zap.Error(d.Err),
			)
			continue
		}
		records = append(records, d.Value)
	}
	return records
}

func (r *Repository[T]) fail(op, id string, kind, cause error) error {
	err := &Error{Op: op, Collection: r.collection, ID: id, Kind: kind, Err: cause}
	if kind == ErrNoEffect {
		r.logger.Warn("Operation had no effect",
			zap.String("op", op),
			zap.String("collection", r.collection),
			zap.String("id", id),
		)
	} else {
		r.logger.Error("Operation failed",
			zap.String("op", op),
			zap.String("collection", r.collection),
			zap.String("id", id),
			zap.Error(cause),
		)
	}
	return err
}
