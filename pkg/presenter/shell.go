// Package presenter binds the note store and session to a presentation
// shell. Presenters own subscriptions for their screen lifetime and treat
// every emission as a full replacement of the rendered state.
package presenter

import (
	"context"

	"github.com/aretw0/notebox/pkg/notes"
)

// ListView renders the note list.
type ListView interface {
	RenderList(list []notes.Note)
}

// DetailView renders a single note, or its absence.
type DetailView interface {
	RenderNote(n notes.Note)
	RenderAbsent()
}

// Field is one input of a blocking form.
type Field struct {
	Name        string
	Placeholder string
	Multiline   bool
}

// Form describes a blocking form alert.
type Form struct {
	Header string
	Fields []Field
}

// Forms presents blocking forms. A cancelled form returns submitted=false
// and a nil error.
type Forms interface {
	Present(ctx context.Context, form Form) (values map[string]string, submitted bool, err error)
}

// Modals presents the detail editor keyed by note id.
type Modals interface {
	Present(id string) error
	Dismiss()
}

// Notifier shows short confirmations and blocking alerts.
type Notifier interface {
	Toast(message string)
	Alert(header, message string)
}

// Navigator switches between screens.
type Navigator interface {
	Navigate(path string, replace bool)
}

// NoteStore is the slice of the note store the presenters use.
type NoteStore interface {
	LiveQuery(ctx context.Context, scope notes.Scope) (*notes.Subscription[[]notes.Note], error)
	LiveQueryOne(ctx context.Context, scope notes.Scope, id string) (*notes.Subscription[notes.NoteSnapshot], error)
	Create(ctx context.Context, scope notes.Scope, d notes.Draft) (notes.Note, error)
	Update(ctx context.Context, scope notes.Scope, id string, d notes.Draft) error
	Delete(ctx context.Context, scope notes.Scope, id string) error
}

var _ NoteStore = (*notes.Store)(nil)
