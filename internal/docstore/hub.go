package docstore

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/dhima/edge-cache/internal/logging"
)

// QueryFunc evaluates a live query against the current store state.
type QueryFunc func(ctx context.Context) (*Result, error)

// LiveHub tracks the live queries of one store and re-evaluates them after
// mutations. Store implementations embed it and call Notify after every
// successful mutation.
type LiveHub struct {
	logger logging.Logger

	mu      sync.Mutex
	nextID  uint64
	queries map[uint64]*liveQuery
	closed  bool
}

// NewLiveHub creates an empty hub.
func NewLiveHub(logger logging.Logger) *LiveHub {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &LiveHub{logger: logger, queries: make(map[uint64]*liveQuery)}
}

// Register starts a live query on collection. The first evaluation is
// scheduled immediately.
func (h *LiveHub) Register(collection string, run QueryFunc, onChange ChangeHandler) (LiveQuery, error) {
	ctx, cancel := context.WithCancel(context.Background())
	q := &liveQuery{
		hub:        h,
		collection: collection,
		run:        run,
		onChange:   onChange,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		cancel()
		return nil, ErrClosed
	}
	h.nextID++
	q.id = h.nextID
	h.queries[q.id] = q
	h.mu.Unlock()

	q.wake <- struct{}{}
	go q.loop()

	h.logger.Debug("Live query registered",
		zap.Uint64("query_id", q.id),
		zap.String("collection", collection),
	)
	return q, nil
}

// Notify schedules a re-evaluation of every live query on collection.
func (h *LiveHub) Notify(collection string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, q := range h.queries {
		if q.collection == collection {
			q.signal()
		}
	}
}

// Len returns the number of registered live queries.
func (h *LiveHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.queries)
}

// Close cancels every live query and rejects new registrations.
func (h *LiveHub) Close() {
	h.mu.Lock()
	h.closed = true
	queries := make([]*liveQuery, 0, len(h.queries))
	for _, q := range h.queries {
		queries = append(queries, q)
	}
	h.mu.Unlock()

	for _, q := range queries {
		q.Cancel()
	}
}

func (h *LiveHub) remove(id uint64) {
	h.mu.Lock()
	delete(h.queries, id)
	h.mu.Unlock()
}

type liveQuery struct {
	hub        *LiveHub
	id         uint64
	collection string
	run        QueryFunc
	onChange   ChangeHandler

	wake   chan struct{}
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// signal never blocks; a pending wake-up already covers this one.
func (q *liveQuery) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *liveQuery) loop() {
	defer close(q.done)
	for {
		select {
		case <-q.ctx.Done():
			return
		case <-q.wake:
		}

		res, err := q.run(q.ctx)
		if q.ctx.Err() != nil {
			return
		}
		if err != nil {
			q.hub.logger.Warn("Live query evaluation failed",
				zap.Uint64("query_id", q.id),
				zap.String("collection", q.collection),
				zap.Error(err),
			)
			continue
		}
		q.onChange(res)
	}
}

func (q *liveQuery) Cancel() {
	q.once.Do(func() {
		q.hub.remove(q.id)
		q.cancel()
		<-q.done
		q.hub.logger.Debug("Live query cancelled",
			zap.Uint64("query_id", q.id),
			zap.String("collection", q.collection),
		)
	})
}
