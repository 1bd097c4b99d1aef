package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhima/edge-cache/internal/docstore"
	"github.com/dhima/edge-cache/internal/logbuffer"
	"github.com/dhima/edge-cache/internal/models"
	"github.com/dhima/edge-cache/internal/testutil/fakes"
)

// deliveries records handler invocations.
type deliveries struct {
	mu      sync.Mutex
	batches [][]models.AppConfig
}

func (d *deliveries) handle(_ context.Context, records []models.AppConfig) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.batches = append(d.batches, records)
	return nil
}

func (d *deliveries) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.batches)
}

func (d *deliveries) lastNames() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.batches) == 0 {
		return nil
	}
	last := d.batches[len(d.batches)-1]
	names := make([]string, len(last))
	for i, c := range last {
		names[i] = c.Name
	}
	return names
}

func TestObserve_WhenRegistered_ThenDeliversCurrentResultSet(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.repo.Upsert(ctx, appConfig("1", "Alpha"))
	require.NoError(t, err)
	d := &deliveries{}

	// Act
	sub, err := f.repo.Observe(ctx, d.handle)
	require.NoError(t, err)
	defer sub.Cancel()

	// Assert
	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"Alpha"}, d.lastNames())
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, testCollection, sub.Collection())
}

func TestObserve_WhenUpsertAffectsResultSet_ThenHandlerSeesFinalState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := &deliveries{}
	sub, err := f.repo.Observe(ctx, d.handle)
	require.NoError(t, err)
	defer sub.Cancel()
	require.Eventually(t, func() bool { return d.count() >= 1 }, 2*time.Second, 10*time.Millisecond)

	_, err = f.repo.Upsert(ctx, appConfig("2", "Bravo"))
	require.NoError(t, err)
	_, err = f.repo.Upsert(ctx, appConfig("1", "Alpha"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"Alpha", "Bravo"}, d.lastNames())
	}, 2*time.Second, 10*time.Millisecond)
}

func TestObserve_WhenRowMalformed_ThenDeliversValidRecordsOnly(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Seed(testCollection, map[string]any{"_id": "bad"}))
	require.NoError(t, f.store.Seed(testCollection, appConfig("good", "Good")))
	d := &deliveries{}

	sub, err := f.repo.Observe(context.Background(), d.handle)
	require.NoError(t, err)
	defer sub.Cancel()

	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"Good"}, d.lastNames())
	}, 2*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, f.countLevel(logbuffer.LevelError), 1)
}

func TestObserve_WhenHandlerFails_ThenSubscriptionContinues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	notifier := &fakes.FakeNotifier{}
	notifier.Fail()

	sub, err := f.repo.Observe(ctx, NotifyHandler[models.AppConfig](notifier, "app-configs-updated"))
	require.NoError(t, err)
	defer sub.Cancel()
	require.Eventually(t, func() bool { return f.countLevel(logbuffer.LevelWarn) >= 1 }, 2*time.Second, 10*time.Millisecond)

	_, err = f.repo.Upsert(ctx, appConfig("1", "Alpha"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		ev, ok := notifier.Last()
		if !ok {
			return false
		}
		records, _ := ev.Payload.([]models.AppConfig)
		return ev.Event == "app-configs-updated" && len(records) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestObserve_WhenCancelled_ThenNoFurtherInvocations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d := &deliveries{}
	sub, err := f.repo.Observe(ctx, d.handle)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return d.count() >= 1 }, 2*time.Second, 10*time.Millisecond)

	sub.Cancel()
	sub.Cancel()
	before := d.count()
	_, err = f.repo.Upsert(ctx, appConfig("1", "Alpha"))
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, before, d.count())
	assert.Equal(t, 0, f.store.MemoryStore.LiveQueries())
}

func TestObserve_WhenChangesOutpaceHandler_ThenInvocationsAreSerialAndCoalesced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var (
		active  int32
		overlap int32
		calls   int32
		mu      sync.Mutex
		last    int
	)
	handler := func(_ context.Context, records []models.AppConfig) error {
		if atomic.AddInt32(&active, 1) > 1 {
			atomic.StoreInt32(&overlap, 1)
		}
		atomic.AddInt32(&calls, 1)
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		last = len(records)
		mu.Unlock()
		atomic.AddInt32(&active, -1)
		return nil
	}
	sub, err := f.repo.Observe(ctx, handler)
	require.NoError(t, err)
	defer sub.Cancel()

	const n = 50
	for i := 0; i < n; i++ {
		_, err := f.repo.Upsert(ctx, appConfig(string(rune('a'+i%26))+string(rune('a'+i/26)), "N"))
		require.NoError(t, err)
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return last == n
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&overlap))
	assert.Less(t, atomic.LoadInt32(&calls), int32(n+1))
}

func TestObserve_WhenStoreRejectsRegistration_ThenStoreError(t *testing.T) {
	f := newFixture(t)
	f.store.RegisterErr = errors.New("live queries unavailable")

	sub, err := f.repo.Observe(context.Background(), func(context.Context, []models.AppConfig) error { return nil })

	assert.Nil(t, sub)
	assert.True(t, IsStore(err))
	var cErr *Error
	require.True(t, errors.As(err, &cErr))
	assert.Equal(t, "subscribe", cErr.Op)
}

func TestSubscribe_WhenStatementReadsOtherCollection_ThenInvalid(t *testing.T) {
	f := newFixture(t)
	handler := func(context.Context, []models.AppConfig) error { return nil }

	sub, err := f.repo.Subscribe(context.Background(), "SELECT * FROM users ORDER BY name", nil, handler)

	assert.Nil(t, sub)
	assert.True(t, IsInvalid(err))
	assert.ErrorIs(t, err, docstore.ErrInvalidStatement)
	assert.Equal(t, 0, f.store.MemoryStore.LiveQueries())
}

func TestSubscribe_WhenStatementIsNotSelect_ThenInvalid(t *testing.T) {
	f := newFixture(t)
	handler := func(context.Context, []models.AppConfig) error { return nil }

	_, err := f.repo.Subscribe(context.Background(), "DELETE FROM "+testCollection+" WHERE _id = :id", docstore.Params{"id": "x"}, handler)

	assert.True(t, IsInvalid(err))
	assert.ErrorIs(t, err, docstore.ErrInvalidStatement)
}

func TestSubscribe_WhenStatementFiltersOwnCollection_ThenDeliversMatches(t *testing.T) {
	f := newFixture(t)
	_, err := f.repo.Upsert(context.Background(), appConfig("cfg-1", "Alpha"))
	require.NoError(t, err)
	_, err = f.repo.Upsert(context.Background(), appConfig("cfg-2", "Beta"))
	require.NoError(t, err)
	got := make(chan []models.AppConfig, 4)

	sub, err := f.repo.Subscribe(context.Background(), "SELECT * FROM "+testCollection+" WHERE name = :name", docstore.Params{"name": "Beta"},
		func(_ context.Context, records []models.AppConfig) error {
			got <- records
			return nil
		})
	require.NoError(t, err)
	defer sub.Cancel()

	select {
	case records := <-got:
		require.Len(t, records, 1)
		assert.Equal(t, "cfg-2", records[0].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for initial delivery")
	}
}
