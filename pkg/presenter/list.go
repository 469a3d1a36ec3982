package presenter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/notebox/pkg/notes"
)

// Option configures a presenter.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the presenter logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ListPresenter drives the home screen: the live list, the add form and
// opening a note.
type ListPresenter struct {
	store    NoteStore
	scope    notes.Scope
	view     ListView
	forms    Forms
	modals   Modals
	notifier Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	started bool
	stop    func()
}

// NewListPresenter creates a list presenter for scope.
func NewListPresenter(store NoteStore, scope notes.Scope, view ListView, forms Forms, modals Modals, notifier Notifier, opts ...Option) *ListPresenter {
	o := applyOptions(opts)
	return &ListPresenter{
		store:    store,
		scope:    scope,
		view:     view,
		forms:    forms,
		modals:   modals,
		notifier: notifier,
		logger:   o.logger,
	}
}

// Start subscribes to the scope's notes and renders every snapshot.
func (p *ListPresenter) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return ErrAlreadyStarted
	}

	sub, err := p.store.LiveQuery(ctx, p.scope)
	if err != nil {
		return fmt.Errorf("failed to subscribe to notes: %w", err)
	}
	p.started = true
	p.stop = pump(ctx, p.logger, p.notifier, sub, p.view.RenderList)
	return nil
}

// Stop unsubscribes. No render happens after it returns.
func (p *ListPresenter) Stop() {
	p.mu.Lock()
	stop := p.stop
	p.stop = nil
	p.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// AddNote presents the new-note form and creates the note on submit.
// The list is refreshed by the live query, not by this call.
func (p *ListPresenter) AddNote(ctx context.Context) error {
	values, submitted, err := p.forms.Present(ctx, newNoteForm())
	if err != nil {
		return fmt.Errorf("failed to present form: %w", err)
	}
	if !submitted {
		return nil
	}

	d := notes.Draft{Title: values[FieldTitle], Body: values[FieldBody]}
	if _, err := p.store.Create(ctx, p.scope, d); err != nil {
		p.logger.Warn("create note failed", "error", err)
		p.notifier.Toast(failureMessage(err))
		return err
	}
	return nil
}

// Open presents the detail editor for id.
func (p *ListPresenter) Open(id string) error {
	return p.modals.Present(id)
}

// pump renders every value of sub until it ends and returns a stop func
// that unsubscribes and waits for the last render to finish.
func pump[T any](ctx context.Context, logger *slog.Logger, notifier Notifier, sub *notes.Subscription[T], render func(T)) func() {
	done := make(chan struct{})
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(done)
		for v := range sub.Updates() {
			render(v)
		}
		if err := sub.Err(); err != nil {
			logger.Warn("live query ended", "error", err)
			notifier.Toast(failureMessage(err))
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		logger.Error("render loop failed", "error", err)
	}))

	return func() {
		sub.Unsubscribe()
		<-done
	}
}
