package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notebox/pkg/adapters/memory"
	"github.com/aretw0/notebox/pkg/core"
)

const collection = "users/u1/notes"

func TestStore_CRUD(t *testing.T) {
	s := memory.New(memory.Config{})
	defer s.Close()
	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx))

	added, err := s.Add(ctx, collection, core.Document{Content: "milk", Metadata: core.Metadata{"title": "Groceries"}})
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, collection+"/"+added.ID, added.Path)

	got, err := s.Get(ctx, added.Path)
	require.NoError(t, err)
	assert.Equal(t, "milk", got.Content)

	// Returned documents do not alias store state.
	got.Metadata["title"] = "mutated"
	again, err := s.Get(ctx, added.Path)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", again.Metadata["title"])

	body := "milk, eggs"
	require.NoError(t, s.Update(ctx, added.Path, core.Patch{Content: &body}))
	got, err = s.Get(ctx, added.Path)
	require.NoError(t, err)
	assert.Equal(t, body, got.Content)
	assert.Equal(t, "Groceries", got.Metadata["title"], "patch merges metadata")

	require.NoError(t, s.Delete(ctx, added.Path))
	_, err = s.Get(ctx, added.Path)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, added.Path), core.ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, added.Path, core.Patch{}), core.ErrNotFound)
}

func TestStore_ListDirectChildrenInOrder(t *testing.T) {
	s := memory.New(memory.Config{})
	defer s.Close()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		d, err := s.Add(ctx, collection, core.Document{})
		require.NoError(t, err)
		ids = append(ids, d.ID)
	}
	_, err := s.Add(ctx, "users/u2/notes", core.Document{})
	require.NoError(t, err)
	_, err = s.Add(ctx, collection+"/"+ids[0]+"/attachments", core.Document{})
	require.NoError(t, err)

	docs, err := s.List(ctx, collection)
	require.NoError(t, err)
	require.Len(t, docs, len(ids))
	for i, d := range docs {
		assert.Equal(t, ids[i], d.ID)
	}

	empty, err := s.List(ctx, "users/nobody/notes")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStore_WatchPublishesChanges(t *testing.T) {
	s := memory.New(memory.Config{})
	defer s.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := s.Watch(ctx, collection+"/*")
	require.NoError(t, err)

	d, err := s.Add(ctx, collection, core.Document{})
	require.NoError(t, err)
	require.NoError(t, s.Update(ctx, d.Path, core.Patch{Metadata: core.Metadata{"title": "x"}}))
	require.NoError(t, s.Delete(ctx, d.Path))

	var types []core.EventType
	for len(types) < 3 {
		select {
		case e := <-events:
			assert.Equal(t, d.Path, e.Path)
			types = append(types, e.Type)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for events")
		}
	}
	assert.Equal(t, []core.EventType{core.EventCreate, core.EventModify, core.EventDelete}, types)

	state := s.State().(memory.StoreState)
	assert.Equal(t, 1, state.Subscribers)
	assert.Equal(t, "memory-store", s.ComponentType())
}

func TestStore_OfflineAndClosed(t *testing.T) {
	s := memory.New(memory.Config{})
	ctx := context.Background()

	s.SetOffline(true)
	_, err := s.List(ctx, collection)
	assert.ErrorIs(t, err, core.ErrTransport)
	_, err = s.Add(ctx, collection, core.Document{})
	assert.ErrorIs(t, err, core.ErrTransport)
	s.SetOffline(false)

	events, err := s.Watch(ctx, "**")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, ok := <-events
	assert.False(t, ok, "close ends watch channels")
	_, err = s.Get(ctx, collection+"/x")
	assert.ErrorIs(t, err, core.ErrClosed)

	_, err = s.Add(ctx, "../escape", core.Document{})
	assert.ErrorIs(t, err, core.ErrInvalidPath)
}
