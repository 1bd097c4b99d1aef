package fakes

import (
	"context"
	"fmt"
	"sync"

	"github.com/dhima/edge-cache/internal/docstore"
)

// FakeDocumentStore is a MemoryStore that records statements and can
// simulate failures.
type FakeDocumentStore struct {
	*docstore.MemoryStore

	mu            sync.Mutex
	Statements    []string
	ExecuteErr    error
	RegisterErr   error
	DropMutations bool
}

func NewFakeDocumentStore() *FakeDocumentStore {
	return &FakeDocumentStore{MemoryStore: docstore.NewMemoryStore(nil)}
}

func (f *FakeDocumentStore) Execute(ctx context.Context, statement string, params docstore.Params) (*docstore.Result, error) {
	f.mu.Lock()
	f.Statements = append(f.Statements, statement)
	execErr, drop := f.ExecuteErr, f.DropMutations
	f.mu.Unlock()

	if execErr != nil {
		return nil, execErr
	}
	res, err := f.MemoryStore.Execute(ctx, statement, params)
	if err == nil && drop {
		res.MutatedIDs = nil
	}
	return res, err
}

func (f *FakeDocumentStore) RegisterLiveQuery(ctx context.Context, statement string, params docstore.Params, onChange docstore.ChangeHandler) (docstore.LiveQuery, error) {
	f.mu.Lock()
	registerErr := f.RegisterErr
	f.mu.Unlock()

	if registerErr != nil {
		return nil, registerErr
	}
	return f.MemoryStore.RegisterLiveQuery(ctx, statement, params, onChange)
}

// Seed writes doc directly, bypassing failure simulation. Any JSON object is
// accepted, so malformed records can be planted.
func (f *FakeDocumentStore) Seed(collection string, doc any) error {
	_, err := f.MemoryStore.Execute(context.Background(),
		fmt.Sprintf("INSERT INTO %s VALUES (:doc) ON ID CONFLICT DO UPDATE", collection),
		docstore.Params{"doc": doc})
	return err
}

// FailWith makes every Execute return err until reset with nil.
func (f *FakeDocumentStore) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ExecuteErr = err
}
