package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	upsertStmt = "INSERT INTO c VALUES (:doc) ON ID CONFLICT DO UPDATE"
	listStmt   = "SELECT * FROM c ORDER BY name"
)

// changeRecorder collects live query deliveries.
type changeRecorder struct {
	mu      sync.Mutex
	results []*Result
	ch      chan struct{}
}

func newChangeRecorder() *changeRecorder {
	return &changeRecorder{ch: make(chan struct{}, 64)}
}

func (r *changeRecorder) handle(res *Result) {
	r.mu.Lock()
	r.results = append(r.results, res)
	r.mu.Unlock()
	r.ch <- struct{}{}
}

func (r *changeRecorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for live query delivery")
	}
}

func (r *changeRecorder) last() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.results[len(r.results)-1]
}

func (r *changeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

func names(t *testing.T, res *Result) []string {
	t.Helper()
	out := make([]string, 0, len(res.Items))
	for _, it := range res.Items {
		var f map[string]any
		require.NoError(t, json.Unmarshal(it, &f))
		out = append(out, f["name"].(string))
	}
	return out
}

func TestMemoryStore_WhenUpsertNew_ThenReportsMutatedID(t *testing.T) {
	// Arrange
	store := NewMemoryStore(nil)
	ctx := context.Background()

	// Act
	res, err := store.Execute(ctx, upsertStmt, Params{"doc": map[string]any{"_id": "1", "name": "a"}})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, res.MutatedIDs)

	list, err := store.Execute(ctx, listStmt, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names(t, list))
}

func TestMemoryStore_WhenUpsertUnchanged_ThenStillReportsMutatedID(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()
	doc := Params{"doc": map[string]any{"_id": "1", "name": "a"}}
	_, err := store.Execute(ctx, upsertStmt, doc)
	require.NoError(t, err)

	res, err := store.Execute(ctx, upsertStmt, doc)

	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, res.MutatedIDs)
}

func TestMemoryStore_WhenInsertConflicts_ThenHonoursPolicy(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()
	doc := Params{"doc": map[string]any{"_id": "1", "name": "a"}}
	_, err := store.Execute(ctx, "INSERT INTO c VALUES (:doc)", doc)
	require.NoError(t, err)

	_, err = store.Execute(ctx, "INSERT INTO c VALUES (:doc)", doc)
	assert.True(t, errors.Is(err, ErrConflict))

	res, err := store.Execute(ctx, "INSERT INTO c VALUES (:doc) ON ID CONFLICT DO NOTHING",
		Params{"doc": map[string]any{"_id": "1", "name": "changed"}})
	require.NoError(t, err)
	assert.Empty(t, res.MutatedIDs)

	list, err := store.Execute(ctx, listStmt, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names(t, list))
}

func TestMemoryStore_WhenDelete_ThenReportsOnlyExistingIDs(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()
	_, err := store.Execute(ctx, upsertStmt, Params{"doc": map[string]any{"_id": "1", "name": "a"}})
	require.NoError(t, err)

	res, err := store.Execute(ctx, "DELETE FROM c WHERE _id = :id", Params{"id": "1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, res.MutatedIDs)

	res, err = store.Execute(ctx, "DELETE FROM c WHERE _id = :id", Params{"id": "1"})
	require.NoError(t, err)
	assert.Empty(t, res.MutatedIDs)
}

func TestMemoryStore_WhenCollectionsDiffer_ThenTheyAreIsolated(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()
	_, err := store.Execute(ctx, "INSERT INTO a VALUES (:doc)", Params{"doc": map[string]any{"_id": "1", "name": "x"}})
	require.NoError(t, err)

	res, err := store.Execute(ctx, "SELECT * FROM b", nil)

	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestMemoryStore_WhenContextCancelled_ThenExecuteFails(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Execute(ctx, listStmt, nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore_WhenClosed_ThenExecuteFails(t *testing.T) {
	store := NewMemoryStore(nil)
	require.NoError(t, store.Close())

	_, err := store.Execute(context.Background(), listStmt, nil)
	assert.ErrorIs(t, err, ErrClosed)

	_, err = store.RegisterLiveQuery(context.Background(), listStmt, nil, func(*Result) {})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRegisterLiveQuery_WhenRegistered_ThenDeliversInitialResult(t *testing.T) {
	// Arrange
	store := NewMemoryStore(nil)
	ctx := context.Background()
	_, err := store.Execute(ctx, upsertStmt, Params{"doc": map[string]any{"_id": "1", "name": "a"}})
	require.NoError(t, err)
	rec := newChangeRecorder()

	// Act
	lq, err := store.RegisterLiveQuery(ctx, listStmt, nil, rec.handle)
	require.NoError(t, err)
	defer lq.Cancel()

	// Assert
	rec.wait(t)
	assert.Equal(t, []string{"a"}, names(t, rec.last()))
}

func TestRegisterLiveQuery_WhenCollectionMutates_ThenRedelivers(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()
	rec := newChangeRecorder()
	lq, err := store.RegisterLiveQuery(ctx, listStmt, nil, rec.handle)
	require.NoError(t, err)
	defer lq.Cancel()
	rec.wait(t)

	_, err = store.Execute(ctx, upsertStmt, Params{"doc": map[string]any{"_id": "2", "name": "b"}})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return rec.count() >= 2 && len(rec.last().Items) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRegisterLiveQuery_WhenOtherCollectionMutates_ThenNotRedelivered(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()
	rec := newChangeRecorder()
	lq, err := store.RegisterLiveQuery(ctx, listStmt, nil, rec.handle)
	require.NoError(t, err)
	defer lq.Cancel()
	rec.wait(t)

	_, err = store.Execute(ctx, "INSERT INTO other VALUES (:doc)", Params{"doc": map[string]any{"name": "z"}})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
}

func TestRegisterLiveQuery_WhenCancelled_ThenNoFurtherDeliveries(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()
	rec := newChangeRecorder()
	lq, err := store.RegisterLiveQuery(ctx, listStmt, nil, rec.handle)
	require.NoError(t, err)
	rec.wait(t)

	lq.Cancel()
	lq.Cancel()
	_, err = store.Execute(ctx, upsertStmt, Params{"doc": map[string]any{"name": "b"}})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
	assert.Equal(t, 0, store.LiveQueries())
}

func TestRegisterLiveQuery_WhenNotSelect_ThenRejected(t *testing.T) {
	store := NewMemoryStore(nil)

	_, err := store.RegisterLiveQuery(context.Background(), "DELETE FROM c WHERE _id = :id", Params{"id": "1"}, func(*Result) {})

	assert.ErrorIs(t, err, ErrInvalidStatement)
}

func TestRegisterLiveQuery_WhenManyMutationsDuringSlowHandler_ThenCoalesces(t *testing.T) {
	store := NewMemoryStore(nil)
	ctx := context.Background()
	release := make(chan struct{})
	var (
		mu    sync.Mutex
		calls int
		last  int
	)
	lq, err := store.RegisterLiveQuery(ctx, listStmt, nil, func(res *Result) {
		mu.Lock()
		calls++
		first := calls == 1
		last = len(res.Items)
		mu.Unlock()
		if first {
			<-release
		}
	})
	require.NoError(t, err)
	defer lq.Cancel()

	for i := 0; i < 20; i++ {
		_, err := store.Execute(ctx, "INSERT INTO c VALUES (:doc)", Params{"doc": map[string]any{"name": "n"}})
		require.NoError(t, err)
	}
	close(release)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return last == 20
	}, 2*time.Second, 10*time.Millisecond)
	mu.Lock()
	assert.LessOrEqual(t, calls, 3)
	mu.Unlock()
}

func TestMemoryStore_WhenClosed_ThenCancelsLiveQueries(t *testing.T) {
	store := NewMemoryStore(nil)
	rec := newChangeRecorder()
	_, err := store.RegisterLiveQuery(context.Background(), listStmt, nil, rec.handle)
	require.NoError(t, err)
	rec.wait(t)

	require.NoError(t, store.Close())

	assert.Equal(t, 0, store.LiveQueries())
}

func TestMemoryStore_WhenUpsertLargeInteger_ThenSelectReturnsItUnchanged(t *testing.T) {
	// Arrange
	store := NewMemoryStore(nil)
	ctx := context.Background()
	doc := json.RawMessage(`{"_id":"a","name":"x","seq":9007199254740993}`)

	// Act
	_, err := store.Execute(ctx, upsertStmt, Params{"doc": doc})
	require.NoError(t, err)
	res, err := store.Execute(ctx, listStmt, nil)

	// Assert
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.JSONEq(t, string(doc), string(res.Items[0]))
	assert.Contains(t, string(res.Items[0]), "9007199254740993")
}
