package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/dhima/edge-cache/internal/logging"
)

// MemoryStore is an in-process DocumentStore. Contents are lost on Close.
type MemoryStore struct {
	logger logging.Logger
	hub    *LiveHub

	mu          sync.RWMutex
	collections map[string]map[string]json.RawMessage
	closed      bool
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(logger logging.Logger) *MemoryStore {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &MemoryStore{
		logger:      logger,
		hub:         NewLiveHub(logger),
		collections: make(map[string]map[string]json.RawMessage),
	}
}

// Execute runs a single statement.
func (s *MemoryStore) Execute(ctx context.Context, statement string, params Params) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stmt, err := ParseStatement(statement)
	if err != nil {
		return nil, err
	}

	switch stmt.Kind {
	case KindSelect:
		return s.query(stmt, params)
	case KindInsert:
		return s.insert(stmt, params)
	case KindDelete:
		return s.delete(stmt, params)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatement, stmt.Kind)
	}
}

// RegisterLiveQuery registers a SELECT statement for change notifications.
func (s *MemoryStore) RegisterLiveQuery(ctx context.Context, statement string, params Params, onChange ChangeHandler) (LiveQuery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stmt, err := ParseStatement(statement)
	if err != nil {
		return nil, err
	}
	if stmt.Kind != KindSelect {
		return nil, fmt.Errorf("%w: live queries must be SELECT statements", ErrInvalidStatement)
	}
	if stmt.HasWhere() {
		if _, err := stmt.Param(params, stmt.WhereParam); err != nil {
			return nil, err
		}
	}

	return s.hub.Register(stmt.Collection, func(context.Context) (*Result, error) {
		return s.query(stmt, params)
	}, onChange)
}

// Close cancels every live query and drops the contents.
func (s *MemoryStore) Close() error {
	s.hub.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.collections = nil
	return nil
}

func (s *MemoryStore) query(stmt *Statement, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	items, err := SelectRows(stmt, params, s.collections[stmt.Collection])
	if err != nil {
		return nil, err
	}
	return &Result{Items: items}, nil
}

func (s *MemoryStore) insert(stmt *Statement, params Params) (*Result, error) {
	v, err := stmt.Param(params, stmt.ValueParam)
	if err != nil {
		return nil, err
	}
	doc, err := NormalizeDocument(v)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	coll, ok := s.collections[stmt.Collection]
	if !ok {
		coll = make(map[string]json.RawMessage)
		s.collections[stmt.Collection] = coll
	}
	_, exists := coll[doc.ID]
	if exists {
		switch stmt.OnConflict {
		case ConflictFail:
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: %s/%s", ErrConflict, stmt.Collection, doc.ID)
		case ConflictIgnore:
			s.mu.Unlock()
			return &Result{}, nil
		}
	}
	coll[doc.ID] = doc.Body
	s.mu.Unlock()

	s.logger.Debug("Document written",
		zap.String("collection", stmt.Collection),
		zap.String("id", doc.ID),
		zap.Bool("replaced", exists),
	)
	s.hub.Notify(stmt.Collection)
	return &Result{MutatedIDs: []string{doc.ID}}, nil
}

func (s *MemoryStore) delete(stmt *Statement, params Params) (*Result, error) {
	p, err := stmt.Param(params, stmt.WhereParam)
	if err != nil {
		return nil, err
	}
	want, err := NormalizeValue(p)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	var ids []string
	coll := s.collections[stmt.Collection]
	for id, body := range coll {
		fields, _ := DecodeFields(body)
		if Matches(fields, stmt.WhereField, want) {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		delete(coll, id)
	}
	s.mu.Unlock()

	if len(ids) == 0 {
		return &Result{}, nil
	}
	sort.Strings(ids)
	s.logger.Debug("Documents deleted",
		zap.String("collection", stmt.Collection),
		zap.Strings("ids", ids),
	)
	s.hub.Notify(stmt.Collection)
	return &Result{MutatedIDs: ids}, nil
}

// LiveQueries returns the number of registered live queries.
func (s *MemoryStore) LiveQueries() int { return s.hub.Len() }

// Driver returns "memory".
func (s *MemoryStore) Driver() string { return "memory" }

// Location is empty; the store is not persisted.
func (s *MemoryStore) Location() string { return "" }
