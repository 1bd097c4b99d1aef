package cache

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/dhima/edge-cache/internal/docstore"
	"github.com/dhima/edge-cache/internal/logging"
	"github.com/dhima/edge-cache/internal/notify"
)

// Handler receives the decoded result set of a live query. A returned error
// is logged; the subscription stays active.
type Handler[T any] func(ctx context.Context, records []T) error

// NotifyHandler forwards every result set to n as event.
func NotifyHandler[T any](n notify.Notifier, event string) Handler[T] {
	return func(ctx context.Context, records []T) error {
		return n.Emit(ctx, event, records)
	}
}

// Subscription is a live query whose result sets are decoded and handed to a
// Handler. Deliveries are serial. When the store reports changes faster than
// the handler runs, only the newest result set is delivered.
type Subscription struct {
	collection string
	logger     logging.Logger
	deliver    func(ctx context.Context, res *docstore.Result)
	live       docstore.LiveQuery

	ctx    context.Context
	cancel context.CancelFunc
	wake   chan struct{}
	done   chan struct{}
	once   sync.Once

	mu     sync.Mutex
	latest *docstore.Result
}

// Observe subscribes handler to every record in the collection, ordered as
// ListAll orders them.
func (r *Repository[T]) Observe(ctx context.Context, handler Handler[T]) (*Subscription, error) {
	return r.Subscribe(ctx, r.listStatement(), nil, handler)
}

// Subscribe registers a SELECT statement against the repository collection.
// The handler receives the current result set shortly after registration and
// again after every change. Statements that are not a SELECT on the
// repository collection fail with ErrInvalid.
func (r *Repository[T]) Subscribe(ctx context.Context, statement string, params docstore.Params, handler Handler[T]) (*Subscription, error) {
	if err := r.checkQuery(statement); err != nil {
		return nil, r.fail("subscribe", "", ErrInvalid, err)
	}

	subCtx, cancel := context.WithCancel(context.Background())
	s := &Subscription{
		collection: r.collection,
		logger:     r.logger,
		ctx:        subCtx,
		cancel:     cancel,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	s.deliver = func(ctx context.Context, res *docstore.Result) {
		records := r.decode(res.Items)
		r.logger.Info("Live query update",
			zap.String("collection", r.collection),
			zap.Int("records", len(records)),
		)
		if err := handler(ctx, records); err != nil {
			r.logger.Warn("Live query handler failed",
				zap.String("collection", r.collection),
				zap.Error(err),
			)
		}
	}

	go s.run()

	live, err := r.store.RegisterLiveQuery(ctx, statement, params, s.offer)
	if err != nil {
		s.stop()
		return nil, r.fail("subscribe", "", ErrStore, err)
	}
	s.live = live

	r.logger.Info("Live query registered",
		zap.String("collection", r.collection),
		zap.String("statement", statement),
	)
	return s, nil
}

func (r *Repository[T]) checkQuery(statement string) error {
	stmt, err := docstore.ParseStatement(statement)
	if err != nil {
		return err
	}
	if stmt.Kind != docstore.KindSelect {
		return fmt.Errorf("%w: live queries need SELECT, got %s", docstore.ErrInvalidStatement, stmt.Kind)
	}
	if stmt.Collection != r.collection {
		return fmt.Errorf("%w: statement reads %q, repository holds %q", docstore.ErrInvalidStatement, stmt.Collection, r.collection)
	}
	return nil
}

// Collection returns the observed collection.
func (s *Subscription) Collection() string { return s.collection }

// offer replaces the pending result set and wakes the worker.
func (s *Subscription) offer(res *docstore.Result) {
	s.mu.Lock()
	s.latest = res
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription) run() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.wake:
		}

		s.mu.Lock()
		res := s.latest
		s.latest = nil
		s.mu.Unlock()

		if res == nil || s.ctx.Err() != nil {
			continue
		}
		s.deliver(s.ctx, res)
	}
}

// Cancel unregisters the live query. Once it returns the handler is not
// invoked again. Calling Cancel from inside the handler deadlocks.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		if s.live != nil {
			s.live.Cancel()
		}
		s.cancel()
		<-s.done
		s.logger.Info("Live query cancelled", zap.String("collection", s.collection))
	})
}

func (s *Subscription) stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}
