// Package storage implements docstore.DocumentStore on top of database/sql.
//
// Documents live in a single table keyed by (collection, id) with the JSON
// body stored as text. Filtering on fields other than "_id" and ordering
// happen in Go with the same rules as docstore.MemoryStore, so every backend
// returns identical results for the same statement.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/dhima/edge-cache/internal/docstore"
	"github.com/dhima/edge-cache/internal/logging"
	"github.com/dhima/edge-cache/pkg/clock"
)

// SQLStore is a DocumentStore backed by a SQL database.
type SQLStore struct {
	db       *sql.DB
	dialect  Dialect
	location string
	clock    clock.Clock
	logger   logging.Logger
	hub      *docstore.LiveHub
}

// Option configures a SQLStore.
type Option func(*SQLStore)

// WithClock overrides the clock used for updated_at.
func WithClock(c clock.Clock) Option {
	return func(s *SQLStore) { s.clock = c }
}

// WithLocation sets the human readable location reported by Location.
func WithLocation(location string) Option {
	return func(s *SQLStore) { s.location = location }
}

// NewSQLStore wires an open sql.DB and applies the dialect schema.
func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect, logger logging.Logger, opts ...Option) (*SQLStore, error) {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	s := &SQLStore{
		db:      db,
		dialect: dialect,
		clock:   clock.RealClock{},
		logger:  logger,
		hub:     docstore.NewLiveHub(logger),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, stmt := range dialect.Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("apply %s schema: %w", dialect.Name, err)
		}
	}
	return s, nil
}

// Driver returns the dialect name.
func (s *SQLStore) Driver() string { return s.dialect.Name }

// Location returns where the data lives, without credentials.
func (s *SQLStore) Location() string { return s.location }

// Close cancels every live query and closes the database.
func (s *SQLStore) Close() error {
	s.hub.Close()
	return s.db.Close()
}

// Execute runs a single statement.
func (s *SQLStore) Execute(ctx context.Context, statement string, params docstore.Params) (*docstore.Result, error) {
	stmt, err := docstore.ParseStatement(statement)
	if err != nil {
		return nil, err
	}

	switch stmt.Kind {
	case docstore.KindSelect:
		return s.query(ctx, stmt, params)
	case docstore.KindInsert:
		return s.insert(ctx, stmt, params)
	case docstore.KindDelete:
		return s.delete(ctx, stmt, params)
	default:
		return nil, fmt.Errorf("%w: %s", docstore.ErrInvalidStatement, stmt.Kind)
	}
}

// RegisterLiveQuery registers a SELECT statement for change notifications.
func (s *SQLStore) RegisterLiveQuery(ctx context.Context, statement string, params docstore.Params, onChange docstore.ChangeHandler) (docstore.LiveQuery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stmt, err := docstore.ParseStatement(statement)
	if err != nil {
		return nil, err
	}
	if stmt.Kind != docstore.KindSelect {
		return nil, fmt.Errorf("%w: live queries must be SELECT statements", docstore.ErrInvalidStatement)
	}
	if stmt.HasWhere() {
		if _, err := stmt.Param(params, stmt.WhereParam); err != nil {
			return nil, err
		}
	}

	return s.hub.Register(stmt.Collection, func(ctx context.Context) (*docstore.Result, error) {
		return s.query(ctx, stmt, params)
	}, onChange)
}

func (s *SQLStore) query(ctx context.Context, stmt *docstore.Statement, params docstore.Params) (*docstore.Result, error) {
	bodies, err := s.load(ctx, s.db, stmt, params)
	if err != nil {
		return nil, err
	}
	items, err := docstore.SelectRows(stmt, params, bodies)
	if err != nil {
		return nil, err
	}
	return &docstore.Result{Items: items}, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// load fetches the candidate rows of a statement. Only "_id" filters are
// pushed down to SQL.
func (s *SQLStore) load(ctx context.Context, q querier, stmt *docstore.Statement, params docstore.Params) (map[string]json.RawMessage, error) {
	query := `SELECT id, body FROM documents WHERE collection = ?`
	args := []any{stmt.Collection}
	if stmt.WhereField == docstore.IDField {
		p, err := stmt.Param(params, stmt.WhereParam)
		if err != nil {
			return nil, err
		}
		id, ok := p.(string)
		if !ok {
			return map[string]json.RawMessage{}, nil
		}
		query += ` AND id = ?`
		args = append(args, id)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	bodies := make(map[string]json.RawMessage)
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		bodies[id] = json.RawMessage(body)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return bodies, nil
}

func (s *SQLStore) insert(ctx context.Context, stmt *docstore.Statement, params docstore.Params) (*docstore.Result, error) {
	v, err := stmt.Param(params, stmt.ValueParam)
	if err != nil {
		return nil, err
	}
	doc, err := docstore.NormalizeDocument(v)
	if err != nil {
		return nil, err
	}

	query := s.dialect.Insert
	switch stmt.OnConflict {
	case docstore.ConflictUpdate:
		query = s.dialect.Upsert
	case docstore.ConflictIgnore:
		query = s.dialect.InsertIgnore
	}

	res, err := s.db.ExecContext(ctx, query, stmt.Collection, doc.ID, string(doc.Body), s.clock.Now().UTC())
	if err != nil {
		if s.dialect.IsConflict(err) {
			return nil, fmt.Errorf("%w: %s/%s", docstore.ErrConflict, stmt.Collection, doc.ID)
		}
		return nil, fmt.Errorf("insert document: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return &docstore.Result{}, nil
	}

	s.logger.Debug("Document written",
		zap.String("driver", s.dialect.Name),
		zap.String("collection", stmt.Collection),
		zap.String("id", doc.ID),
	)
	s.hub.Notify(stmt.Collection)
	return &docstore.Result{MutatedIDs: []string{doc.ID}}, nil
}

func (s *SQLStore) delete(ctx context.Context, stmt *docstore.Statement, params docstore.Params) (result *docstore.Result, err error) {
	p, err := stmt.Param(params, stmt.WhereParam)
	if err != nil {
		return nil, err
	}
	want, err := docstore.NormalizeValue(p)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	bodies, err := s.load(ctx, tx, stmt, params)
	if err != nil {
		return nil, err
	}

	var ids []string
	for id, body := range bodies {
		fields, _ := docstore.DecodeFields(body)
		if !docstore.Matches(fields, stmt.WhereField, want) {
			continue
		}
		res, execErr := tx.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, stmt.Collection, id)
		if execErr != nil {
			err = fmt.Errorf("delete document: %w", execErr)
			return nil, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			ids = append(ids, id)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	if len(ids) == 0 {
		return &docstore.Result{}, nil
	}

	sort.Strings(ids)
	s.logger.Debug("Documents deleted",
		zap.String("driver", s.dialect.Name),
		zap.String("collection", stmt.Collection),
		zap.Strings("ids", ids),
	)
	s.hub.Notify(stmt.Collection)
	return &docstore.Result{MutatedIDs: ids}, nil
}

// LiveQueries returns the number of registered live queries.
func (s *SQLStore) LiveQueries() int { return s.hub.Len() }
