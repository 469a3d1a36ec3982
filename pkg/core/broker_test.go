package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notebox/pkg/core"
)

func recv(t *testing.T, ch <-chan core.Event) core.Event {
	t.Helper()
	select {
	case e, ok := <-ch:
		require.True(t, ok, "channel closed")
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return core.Event{}
}

func TestBroker_FiltersByPattern(t *testing.T) {
	b := core.NewBroker(0, nil)
	defer b.Close()
	ctx := context.Background()

	notes, err := b.Subscribe(ctx, "users/alice/notes/*")
	require.NoError(t, err)
	one, err := b.Subscribe(ctx, "users/alice/notes/n1")
	require.NoError(t, err)
	all, err := b.Subscribe(ctx, "**")
	require.NoError(t, err)
	assert.Equal(t, 3, b.Len())

	b.Publish(core.Event{Type: core.EventCreate, Path: "users/bob/notes/n9"})
	b.Publish(core.Event{Type: core.EventModify, Path: "users/alice/notes/n1"})

	assert.Equal(t, "users/bob/notes/n9", recv(t, all).Path)
	assert.Equal(t, "users/alice/notes/n1", recv(t, all).Path)
	assert.Equal(t, core.EventModify, recv(t, notes).Type)
	assert.Equal(t, "users/alice/notes/n1", recv(t, one).Path)

	select {
	case e := <-notes:
		t.Fatalf("unexpected event %v", e)
	default:
	}
}

func TestBroker_InvalidPattern(t *testing.T) {
	b := core.NewBroker(0, nil)
	_, err := b.Subscribe(context.Background(), "users/[")
	assert.Error(t, err)
}

func TestBroker_CancelRemovesSubscriber(t *testing.T) {
	b := core.NewBroker(1, nil)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := b.Subscribe(ctx, "**")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
	assert.Equal(t, 0, b.Len())

	// A full buffer does not block publishing to a cancelled subscriber.
	ctx2, cancel2 := context.WithCancel(context.Background())
	_, err = b.Subscribe(ctx2, "**")
	require.NoError(t, err)
	b.Publish(core.Event{Path: "a"})
	done := make(chan struct{})
	go func() {
		b.Publish(core.Event{Path: "b"})
		close(done)
	}()
	cancel2()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a cancelled subscriber")
	}
}

func TestBroker_Close(t *testing.T) {
	b := core.NewBroker(0, nil)
	ch, err := b.Subscribe(context.Background(), "**")
	require.NoError(t, err)

	b.Close()
	_, ok := <-ch
	assert.False(t, ok)

	_, err = b.Subscribe(context.Background(), "**")
	assert.ErrorIs(t, err, core.ErrClosed)
	b.Publish(core.Event{Path: "ignored"})
	b.Close()

	state := b.State().(core.BrokerState)
	assert.True(t, state.Closed)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "users/u1/notes/n1", core.Join("users", "u1", "notes", "n1"))

	collection, id := core.Split("users/u1/notes/n1")
	assert.Equal(t, "users/u1/notes", collection)
	assert.Equal(t, "n1", id)

	for _, p := range []string{"", "users//notes", "users/../x", "./a", `a\b`} {
		assert.ErrorIs(t, core.ValidatePath(p), core.ErrInvalidPath, p)
	}
	assert.NoError(t, core.ValidatePath("users/u1/notes"))
}

func TestDocument_Apply(t *testing.T) {
	doc := core.Document{ID: "n1", Content: "old", Metadata: core.Metadata{"title": "a", "keep": 1}}
	content := "new"
	doc.Apply(core.Patch{Content: &content, Metadata: core.Metadata{"title": "b"}})

	assert.Equal(t, "n1", doc.ID)
	assert.Equal(t, "new", doc.Content)
	assert.Equal(t, "b", doc.Metadata["title"])
	assert.Equal(t, 1, doc.Metadata["keep"])

	clone := doc.Clone()
	clone.Metadata["title"] = "changed"
	assert.Equal(t, "b", doc.Metadata["title"], "clone does not share metadata")
}
