package presenter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/notebox/pkg/notes"
)

// DetailPresenter drives the detail modal of one note.
type DetailPresenter struct {
	store    NoteStore
	scope    notes.Scope
	id       string
	view     DetailView
	modals   Modals
	notifier Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	started bool
	stop    func()
	current notes.NoteSnapshot
}

// NewDetailPresenter creates a detail presenter for the note id in scope.
func NewDetailPresenter(store NoteStore, scope notes.Scope, id string, view DetailView, modals Modals, notifier Notifier, opts ...Option) *DetailPresenter {
	o := applyOptions(opts)
	return &DetailPresenter{
		store:    store,
		scope:    scope,
		id:       id,
		view:     view,
		modals:   modals,
		notifier: notifier,
		logger:   o.logger,
	}
}

// Start subscribes to the note and renders it, or its absence.
func (p *DetailPresenter) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return ErrAlreadyStarted
	}

	sub, err := p.store.LiveQueryOne(ctx, p.scope, p.id)
	if err != nil {
		return fmt.Errorf("failed to subscribe to note %s: %w", p.id, err)
	}
	p.started = true
	p.stop = pump(ctx, p.logger, p.notifier, sub, p.render)
	return nil
}

func (p *DetailPresenter) render(s notes.NoteSnapshot) {
	p.mu.Lock()
	p.current = s
	p.mu.Unlock()

	if !s.Exists {
		p.view.RenderAbsent()
		return
	}
	p.view.RenderNote(s.Note)
}

// Current returns the last rendered snapshot.
func (p *DetailPresenter) Current() notes.NoteSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Stop unsubscribes.
func (p *DetailPresenter) Stop() {
	p.mu.Lock()
	stop := p.stop
	p.stop = nil
	p.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// Save writes d over the note and confirms with a toast.
func (p *DetailPresenter) Save(ctx context.Context, d notes.Draft) error {
	if err := p.store.Update(ctx, p.scope, p.id, d); err != nil {
		p.logger.Warn("update note failed", "id", p.id, "error", err)
		p.notifier.Toast(failureMessage(err))
		return err
	}
	p.notifier.Toast(MsgNoteUpdated)
	return nil
}

// Delete removes the note and dismisses the modal.
func (p *DetailPresenter) Delete(ctx context.Context) error {
	if err := p.store.Delete(ctx, p.scope, p.id); err != nil {
		p.logger.Warn("delete note failed", "id", p.id, "error", err)
		p.notifier.Toast(failureMessage(err))
		return err
	}
	p.modals.Dismiss()
	return nil
}
