package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/notebox/pkg/core"
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store is the only component that talks to the document store on behalf
// of the presentation layer.
type Store struct {
	docs   core.DocumentStore
	logger *slog.Logger
	active atomic.Int64
}

// NewStore creates a note store over docs.
func NewStore(docs core.DocumentStore, opts ...Option) *Store {
	s := &Store{docs: docs, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create persists a new note and returns it with its assigned ID.
func (s *Store) Create(ctx context.Context, scope Scope, d Draft) (Note, error) {
	if err := scope.validate(); err != nil {
		return Note{}, err
	}
	doc, err := s.docs.Add(ctx, CollectionPath(scope), d.document())
	if err != nil {
		return Note{}, fmt.Errorf("failed to create note: %w", err)
	}
	s.logger.Debug("note created", "scope", scope, "id", doc.ID)
	return fromDocument(doc), nil
}

// Update replaces title and body of an existing note. The id is never rewritten.
func (s *Store) Update(ctx context.Context, scope Scope, id string, d Draft) error {
	if err := scope.validate(); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.docs.Update(ctx, DocumentPath(scope, id), d.patch()); err != nil {
		return fmt.Errorf("failed to update note %s: %w", id, err)
	}
	s.logger.Debug("note updated", "scope", scope, "id", id)
	return nil
}

// Delete removes a note. Deleting an absent note fails with core.ErrNotFound.
func (s *Store) Delete(ctx context.Context, scope Scope, id string) error {
	if err := scope.validate(); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, DocumentPath(scope, id)); err != nil {
		return fmt.Errorf("failed to delete note %s: %w", id, err)
	}
	s.logger.Debug("note deleted", "scope", scope, "id", id)
	return nil
}

// List returns a one-shot snapshot of scope's notes in insertion order.
func (s *Store) List(ctx context.Context, scope Scope) ([]Note, error) {
	if err := scope.validate(); err != nil {
		return nil, err
	}
	return s.list(ctx, scope)
}

func (s *Store) list(ctx context.Context, scope Scope) ([]Note, error) {
	docs, err := s.docs.List(ctx, CollectionPath(scope))
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	out := make([]Note, 0, len(docs))
	for _, doc := range docs {
		out = append(out, fromDocument(doc))
	}
	return out, nil
}

// Get returns a one-shot read of a single note.
func (s *Store) Get(ctx context.Context, scope Scope, id string) (Note, error) {
	if err := scope.validate(); err != nil {
		return Note{}, err
	}
	if err := validateID(id); err != nil {
		return Note{}, err
	}
	doc, err := s.docs.Get(ctx, DocumentPath(scope, id))
	if err != nil {
		return Note{}, fmt.Errorf("failed to get note %s: %w", id, err)
	}
	return fromDocument(doc), nil
}

func (s *Store) snapshotOne(ctx context.Context, scope Scope, id string) (NoteSnapshot, error) {
	n, err := s.Get(ctx, scope, id)
	if errors.Is(err, core.ErrNotFound) {
		return NoteSnapshot{}, nil
	}
	if err != nil {
		return NoteSnapshot{}, err
	}
	return NoteSnapshot{Note: n, Exists: true}, nil
}

// LiveQuery streams the full ordered list of scope's notes. The first
// emission is the current snapshot; every change in the collection
// produces a fresh one.
func (s *Store) LiveQuery(ctx context.Context, scope Scope) (*Subscription[[]Note], error) {
	if err := scope.validate(); err != nil {
		return nil, err
	}
	return subscribe(ctx, s, CollectionPath(scope)+"/*", func(ctx context.Context) ([]Note, error) {
		return s.list(ctx, scope)
	})
}

// LiveQueryOne streams a single note, emitting Exists=false while it is absent.
func (s *Store) LiveQueryOne(ctx context.Context, scope Scope, id string) (*Subscription[NoteSnapshot], error) {
	if err := scope.validate(); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, err
	}
	return subscribe(ctx, s, DocumentPath(scope, id), func(ctx context.Context) (NoteSnapshot, error) {
		return s.snapshotOne(ctx, scope, id)
	})
}

// subscribe attaches to the store's change stream before taking the
// initial snapshot so no change between the two is lost.
func subscribe[T any](ctx context.Context, s *Store, pattern string, load func(context.Context) (T, error)) (*Subscription[T], error) {
	w, ok := s.docs.(core.Watchable)
	if !ok {
		return nil, core.ErrWatchUnsupported
	}

	subCtx, cancel := context.WithCancel(ctx)
	events, err := w.Watch(subCtx, pattern)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to watch %s: %w", pattern, err)
	}

	initial, err := load(subCtx)
	if err != nil {
		cancel()
		return nil, err
	}

	sub := newSubscription[T](cancel)
	s.active.Add(1)
	s.logger.Debug("live query started", "pattern", pattern)

	lifecycle.Go(subCtx, func(ctx context.Context) error {
		defer close(sub.done)
		defer s.active.Add(-1)
		defer close(sub.out)
		return deliver(ctx, s.logger, sub, events, initial, load)
	}, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("live query failed", "pattern", pattern, "error", err)
	}))
	return sub, nil
}

// deliver is the per-subscription loop. Values are delivered latest-wins:
// a consumer that falls behind skips intermediate snapshots but never
// sees them out of order.
func deliver[T any](ctx context.Context, logger *slog.Logger, sub *Subscription[T], events <-chan core.Event, initial T, load func(context.Context) (T, error)) error {
	pending, hasPending := initial, true

	for {
		var out chan<- T
		if hasPending {
			out = sub.out
		}

		select {
		case <-ctx.Done():
			return nil

		case out <- pending:
			var zero T
			pending, hasPending = zero, false

		case _, ok := <-events:
			if !ok {
				if ctx.Err() == nil {
					sub.setErr(ErrStreamClosed)
				}
				return nil
			}
			closed := drain(events)

			v, err := load(ctx)
			switch {
			case err == nil:
				pending, hasPending = v, true
			case ctx.Err() != nil:
				return nil
			default:
				logger.Warn("live query refresh failed", "error", err)
			}

			if closed {
				sub.setErr(ErrStreamClosed)
				if hasPending {
					select {
					case sub.out <- pending:
					case <-ctx.Done():
					}
				}
				return nil
			}
		}
	}
}

// drain consumes queued events without blocking; they are covered by the
// refresh that follows. Reports whether the channel was closed.
func drain(events <-chan core.Event) bool {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return true
			}
		default:
			return false
		}
	}
}
