// Package notes is the note store: CRUD and live queries over a per-user
// collection in a core.DocumentStore.
//
// Every operation takes the owning Scope explicitly. The store keeps no
// copy of the data; a live query re-reads the full snapshot from the
// document store on every change event.
package notes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/notebox/pkg/core"
)

// Scope is the namespace a collection of notes belongs to, normally a user id.
type Scope string

// Note is a persisted note. ID is assigned by the store on Create.
type Note struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Draft is the mutable part of a note.
type Draft struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// NoteSnapshot is a single emission of LiveQueryOne. Exists is false when
// the note is absent or was deleted.
type NoteSnapshot struct {
	Note   Note `json:"note"`
	Exists bool `json:"exists"`
}

var (
	ErrNoScope      = errors.New("notes: missing scope")
	ErrInvalidID    = errors.New("notes: invalid note id")
	ErrStreamClosed = errors.New("notes: change stream closed by store")
)

const titleKey = "title"

func (s Scope) validate() error {
	if s == "" {
		return ErrNoScope
	}
	if strings.ContainsAny(string(s), `/\`) || s == "." || s == ".." {
		return fmt.Errorf("%w: %q", ErrNoScope, string(s))
	}
	return nil
}

func validateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\*?[]{}`) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// CollectionPath returns the document store path holding scope's notes.
func CollectionPath(scope Scope) string {
	return core.Join("users", string(scope), "notes")
}

// DocumentPath returns the document store path of a single note.
func DocumentPath(scope Scope, id string) string {
	return core.Join(CollectionPath(scope), id)
}

func fromDocument(doc core.Document) Note {
	n := Note{ID: doc.ID, Body: doc.Content}
	switch t := doc.Metadata[titleKey].(type) {
	case string:
		n.Title = t
	case nil:
	default:
		n.Title = fmt.Sprint(t)
	}
	return n
}

func (d Draft) document() core.Document {
	return core.Document{
		Content:  d.Body,
		Metadata: core.Metadata{titleKey: d.Title},
	}
}

func (d Draft) patch() core.Patch {
	body := d.Body
	return core.Patch{
		Content:  &body,
		Metadata: core.Metadata{titleKey: d.Title},
	}
}
