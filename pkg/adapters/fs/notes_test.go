package fs_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notebox/pkg/notes"
)

// Live queries over the filesystem adapter: create, update and delete all
// reach active subscriptions through the watcher.

func waitNotes[T any](t *testing.T, sub *notes.Subscription[T], match func(T) bool) T {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case v, ok := <-sub.Updates():
			require.True(t, ok, "subscription closed unexpectedly")
			if match(v) {
				return v
			}
		case <-deadline:
			t.Fatal("timed out waiting for emission")
		}
	}
}

func TestNotesOverFS(t *testing.T) {
	docs, _ := newStore(t)
	store := notes.NewStore(docs)
	ctx := context.Background()
	scope := notes.Scope("u1")

	list, err := store.LiveQuery(ctx, scope)
	require.NoError(t, err)
	defer list.Unsubscribe()
	waitNotes(t, list, func(ns []notes.Note) bool { return len(ns) == 0 })

	n, err := store.Create(ctx, scope, notes.Draft{Title: "Groceries", Body: "milk, eggs"})
	require.NoError(t, err)
	got := waitNotes(t, list, func(ns []notes.Note) bool { return len(ns) == 1 })
	assert.Equal(t, n, got[0])

	one, err := store.LiveQueryOne(ctx, scope, n.ID)
	require.NoError(t, err)
	defer one.Unsubscribe()
	waitNotes(t, one, func(s notes.NoteSnapshot) bool { return s.Exists })

	require.NoError(t, store.Update(ctx, scope, n.ID, notes.Draft{Title: "Groceries", Body: "milk, eggs, bread"}))
	snap := waitNotes(t, one, func(s notes.NoteSnapshot) bool { return s.Note.Body == "milk, eggs, bread" })
	assert.Equal(t, n.ID, snap.Note.ID)

	require.NoError(t, store.Delete(ctx, scope, n.ID))
	waitNotes(t, one, func(s notes.NoteSnapshot) bool { return !s.Exists })
	waitNotes(t, list, func(ns []notes.Note) bool { return len(ns) == 0 })
}
