package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notebox/pkg/adapters/fs"
	"github.com/aretw0/notebox/pkg/core"
)

const collection = "users/u1/notes"

func newStore(t *testing.T) (*fs.Store, string) {
	t.Helper()
	dir := t.TempDir()
	s := fs.NewStore(fs.Config{Path: dir})
	require.NoError(t, s.Initialize(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s, dir
}

func TestStore_CRUD(t *testing.T) {
	s, dir := newStore(t)
	ctx := context.Background()

	added, err := s.Add(ctx, collection, core.Document{Content: "milk, eggs", Metadata: core.Metadata{"title": "Groceries"}})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "users", "u1", "notes", added.ID+".md"))

	got, err := s.Get(ctx, added.Path)
	require.NoError(t, err)
	assert.Equal(t, added.ID, got.ID)
	assert.Equal(t, "milk, eggs", got.Content)
	assert.Equal(t, "Groceries", got.Metadata["title"])

	body := "milk, eggs, bread"
	require.NoError(t, s.Update(ctx, added.Path, core.Patch{Content: &body}))
	got, err = s.Get(ctx, added.Path)
	require.NoError(t, err)
	assert.Equal(t, body, got.Content)
	assert.Equal(t, "Groceries", got.Metadata["title"])

	require.NoError(t, s.Delete(ctx, added.Path))
	_, err = s.Get(ctx, added.Path)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, added.Path), core.ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, added.Path, core.Patch{Content: &body}), core.ErrNotFound)
}

func TestStore_ListOrderAndForeignFiles(t *testing.T) {
	s, dir := newStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		d, err := s.Add(ctx, collection, core.Document{Metadata: core.Metadata{"title": "n"}})
		require.NoError(t, err)
		ids = append(ids, d.ID)
	}
	notesDir := filepath.Join(dir, "users", "u1", "notes")
	require.NoError(t, os.WriteFile(filepath.Join(notesDir, "readme.txt"), []byte("ignored"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(notesDir, "broken.md"), []byte("---\ntitle: x\n"), 0644))

	docs, err := s.List(ctx, collection)
	require.NoError(t, err)
	require.Len(t, docs, 3, "foreign and unparseable files are skipped")
	for i, d := range docs {
		assert.Equal(t, ids[i], d.ID)
	}

	missing, err := s.List(ctx, "users/nobody/notes")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestStore_RejectsBadPathsAndClosed(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "../etc/passwd")
	assert.ErrorIs(t, err, core.ErrInvalidPath)

	require.NoError(t, s.Close())
	_, err = s.List(ctx, collection)
	assert.ErrorIs(t, err, core.ErrClosed)
	require.NoError(t, s.Close())
}

func TestStore_MustExist(t *testing.T) {
	s := fs.NewStore(fs.Config{Path: filepath.Join(t.TempDir(), "missing"), MustExist: true})
	assert.Error(t, s.Initialize(context.Background()))
}

func collect(t *testing.T, events <-chan core.Event, match func(core.Event) bool) core.Event {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case e, ok := <-events:
			require.True(t, ok, "watch channel closed")
			if match(e) {
				return e
			}
		case <-deadline:
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestStore_WatchSeesExternalChanges(t *testing.T) {
	s, dir := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := s.Watch(ctx, collection+"/*")
	require.NoError(t, err)

	state := s.State().(fs.StoreState)
	assert.True(t, state.WatcherActive)
	assert.Equal(t, 1, state.Subscribers)

	// Another process creates the directory tree and a note in one go.
	notesDir := filepath.Join(dir, "users", "u1", "notes")
	require.NoError(t, os.MkdirAll(notesDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(notesDir, "EXTERNAL.md"), []byte("---\ntitle: synced\n---\nfrom elsewhere"), 0644))

	e := collect(t, events, func(e core.Event) bool { return e.Path == collection+"/EXTERNAL" })
	assert.Equal(t, core.EventCreate, e.Type)

	doc, err := s.Get(ctx, collection+"/EXTERNAL")
	require.NoError(t, err)
	assert.Equal(t, "from elsewhere", doc.Content)

	require.NoError(t, os.WriteFile(filepath.Join(notesDir, "EXTERNAL.md"), []byte("---\ntitle: synced\n---\nedited"), 0644))
	collect(t, events, func(e core.Event) bool { return e.Type == core.EventModify })
	doc, err = s.Get(ctx, collection+"/EXTERNAL")
	require.NoError(t, err)
	assert.Equal(t, "edited", doc.Content)

	require.NoError(t, os.Remove(filepath.Join(notesDir, "EXTERNAL.md")))
	collect(t, events, func(e core.Event) bool { return e.Type == core.EventDelete })
}

func TestStore_WatchIgnoresSystemDir(t *testing.T) {
	s, dir := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := s.Watch(ctx, "**")
	require.NoError(t, err)

	sys := filepath.Join(dir, fs.DefaultSystemDir)
	require.NoError(t, os.MkdirAll(sys, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sys, "note.md"), []byte("hidden"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "visible.md"), []byte("shown"), 0644))

	e := collect(t, events, func(core.Event) bool { return true })
	assert.Equal(t, "visible", e.Path)
}

func TestStore_CloseEndsWatch(t *testing.T) {
	s, _ := newStore(t)
	events, err := s.Watch(context.Background(), "**")
	require.NoError(t, err)

	require.NoError(t, s.Close())
	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(6 * time.Second):
		t.Fatal("watch channel not closed")
	}
	assert.False(t, s.State().(fs.StoreState).WatcherActive)
}
