package logbuffer

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dhima/edge-cache/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messages(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}

func TestPush_WhenUnderCapacity_ThenKeepsInsertionOrder(t *testing.T) {
	// Arrange
	buf := New(3)

	// Act
	buf.Push(LevelInfo, "test", "First message")
	buf.Push(LevelWarn, "test", "Second message")
	buf.Push(LevelError, "test", "Third message")

	// Assert
	assert.Equal(t, 3, buf.Len())
	entries := buf.Snapshot()
	assert.Equal(t, []string{"First message", "Second message", "Third message"}, messages(entries))
	assert.Equal(t, LevelWarn, entries[1].Level)
	assert.Equal(t, "test", entries[1].Target)
}

func TestPush_WhenOverCapacity_ThenEvictsOldest(t *testing.T) {
	// Arrange
	buf := New(2)

	// Act
	buf.Push(LevelInfo, "test", "a")
	buf.Push(LevelInfo, "test", "b")
	buf.Push(LevelInfo, "test", "c")

	// Assert
	assert.Equal(t, 2, buf.Len())
	assert.Equal(t, []string{"b", "c"}, messages(buf.Snapshot()))
}

func TestPush_WhenManyPushes_ThenSnapshotIsLastNInOrder(t *testing.T) {
	for _, capacity := range []int{1, 2, 5, 16} {
		for _, pushes := range []int{0, 1, capacity - 1, capacity, capacity + 1, 3*capacity + 2} {
			t.Run(fmt.Sprintf("cap=%d/pushes=%d", capacity, pushes), func(t *testing.T) {
				buf := New(capacity)
				var all []string
				for i := 0; i < pushes; i++ {
					msg := fmt.Sprintf("m%d", i)
					all = append(all, msg)
					buf.Push(LevelDebug, "prop", msg)
					require.LessOrEqual(t, buf.Len(), capacity)
				}

				want := all
				if len(want) > capacity {
					want = want[len(want)-capacity:]
				}
				if want == nil {
					want = []string{}
				}
				assert.Equal(t, want, messages(buf.Snapshot()))
			})
		}
	}
}

func TestPush_WhenCapacityZero_ThenNothingIsRetained(t *testing.T) {
	// Arrange
	buf := New(0)

	// Act
	buf.Push(LevelError, "test", "dropped")

	// Assert
	assert.Equal(t, 0, buf.Len())
	assert.True(t, buf.IsEmpty())
	assert.Empty(t, buf.Snapshot())
	assert.Empty(t, buf.RenderText())
}

func TestNew_WhenCapacityNegative_ThenBehavesAsZero(t *testing.T) {
	buf := New(-4)
	buf.Push(LevelInfo, "test", "dropped")
	assert.Equal(t, 0, buf.Cap())
	assert.True(t, buf.IsEmpty())
}

func TestPush_WhenClockInjected_ThenEntryIsStampedInUTC(t *testing.T) {
	// Arrange
	local := time.FixedZone("UTC+2", 2*60*60)
	at := time.Date(2025, 1, 2, 5, 4, 5, 0, local)
	buf := New(4, WithClock(clock.NewFixed(at)))

	// Act
	buf.Push(LevelInfo, "test", "stamped")

	// Assert
	entry := buf.Snapshot()[0]
	assert.True(t, entry.Timestamp.Equal(at))
	assert.Equal(t, time.UTC, entry.Timestamp.Location())
}

func TestSnapshot_WhenMutated_ThenBufferIsUnaffected(t *testing.T) {
	// Arrange
	buf := New(2)
	buf.Push(LevelInfo, "test", "original")

	// Act
	snap := buf.Snapshot()
	snap[0].Message = "changed"

	// Assert
	assert.Equal(t, "original", buf.Snapshot()[0].Message)
}

func TestClear_WhenCalled_ThenSnapshotIsEmpty(t *testing.T) {
	for _, pushes := range []int{0, 1, 5, 12} {
		t.Run(fmt.Sprintf("pushes=%d", pushes), func(t *testing.T) {
			buf := New(5)
			for i := 0; i < pushes; i++ {
				buf.Push(LevelInfo, "test", "msg")
			}

			buf.Clear()

			assert.Empty(t, buf.Snapshot())
			assert.True(t, buf.IsEmpty())

			buf.Push(LevelInfo, "test", "after clear")
			assert.Equal(t, []string{"after clear"}, messages(buf.Snapshot()))
		})
	}
}

func TestBuffer_WhenUsedConcurrently_ThenNeverExceedsCapacity(t *testing.T) {
	// Arrange
	const capacity = 32
	buf := New(capacity)
	var wg sync.WaitGroup

	// Act
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				buf.Push(LevelInfo, "worker", fmt.Sprintf("%d-%d", worker, i))
				if i%50 == 0 {
					buf.Clear()
				}
				snap := buf.Snapshot()
				if len(snap) > capacity {
					t.Errorf("snapshot has %d entries, capacity %d", len(snap), capacity)
				}
				for _, e := range snap {
					if e.Target != "worker" || e.Message == "" {
						t.Errorf("observed partially constructed entry %+v", e)
					}
				}
			}
		}(w)
	}
	wg.Wait()

	// Assert
	assert.LessOrEqual(t, buf.Len(), capacity)
}
