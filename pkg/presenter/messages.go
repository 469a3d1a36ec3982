package presenter

import (
	"errors"

	"github.com/aretw0/notebox/pkg/core"
	"github.com/aretw0/notebox/pkg/notes"
)

// ErrAlreadyStarted is returned by a second Start on the same presenter.
var ErrAlreadyStarted = errors.New("presenter already started")

const (
	NewNoteHeader = "New note"
	FieldTitle    = "title"
	FieldBody     = "body"

	MsgNoteUpdated = "Note updated!"
	MsgNoteGone    = "This note no longer exists."
	MsgUnreachable = "Could not reach the notes store. Try again."
	MsgFailed      = "Something went wrong. Try again."

	LoginFailed   = "Login failed"
	LoginTryAgain = "Try again!"
	RouteHome     = "/home"
	RouteLogin    = "/login"
)

func newNoteForm() Form {
	return Form{
		Header: NewNoteHeader,
		Fields: []Field{
			{Name: FieldTitle, Placeholder: "My note"},
			{Name: FieldBody, Placeholder: "Type your note here", Multiline: true},
		},
	}
}

// failureMessage maps a store error onto the toast shown to the user.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrNotFound), errors.Is(err, notes.ErrInvalidID):
		return MsgNoteGone
	case errors.Is(err, core.ErrTransport), errors.Is(err, notes.ErrStreamClosed):
		return MsgUnreachable
	default:
		return MsgFailed
	}
}
