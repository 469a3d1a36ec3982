package platform_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aretw0/notebox/internal/platform"
	"github.com/aretw0/notebox/pkg/notes"
	"github.com/aretw0/notebox/pkg/session"
)

func newApp(t *testing.T, uri string, opts ...platform.Option) *platform.App {
	t.Helper()
	opts = append([]platform.Option{platform.WithPasswordCost(bcrypt.MinCost)}, opts...)
	app, err := platform.New(uri, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

func waitFor[T any](t *testing.T, sub *notes.Subscription[T], match func(T) bool) T {
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
			t.Fatal("timed out waiting for matching emission")
		}
	}
}

// scenario registers, then creates, updates and deletes one note while a
// live query watches the collection.
func scenario(t *testing.T, app *platform.App) {
	ctx := context.Background()

	_, err := app.Scope()
	assert.ErrorIs(t, err, platform.ErrNotAuthenticated)

	uid, err := app.Session.Register(ctx, session.Credentials{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	scope, err := app.Scope()
	require.NoError(t, err)
	assert.Equal(t, notes.Scope(uid), scope)

	sub, err := app.Notes.LiveQuery(ctx, scope)
	require.NoError(t, err)
	defer sub.Unsubscribe()
	waitFor(t, sub, func(ns []notes.Note) bool { return len(ns) == 0 })

	n, err := app.Notes.Create(ctx, scope, notes.Draft{Title: "Groceries", Body: "milk, eggs"})
	require.NoError(t, err)
	got := waitFor(t, sub, func(ns []notes.Note) bool { return len(ns) == 1 })
	if diff := cmp.Diff([]notes.Note{{ID: n.ID, Title: "Groceries", Body: "milk, eggs"}}, got); diff != "" {
		t.Errorf("snapshot after create (-want +got):\n%s", diff)
	}

	require.NoError(t, app.Notes.Update(ctx, scope, n.ID, notes.Draft{Title: "Groceries", Body: "milk, eggs, bread"}))
	got = waitFor(t, sub, func(ns []notes.Note) bool { return len(ns) == 1 && ns[0].Body == "milk, eggs, bread" })
	assert.Equal(t, n.ID, got[0].ID)

	require.NoError(t, app.Notes.Delete(ctx, scope, n.ID))
	waitFor(t, sub, func(ns []notes.Note) bool { return len(ns) == 0 })
}

func TestApp_ScenarioMemory(t *testing.T) {
	scenario(t, newApp(t, "", platform.WithAdapter("memory")))
}

func TestApp_ScenarioFS(t *testing.T) {
	scenario(t, newApp(t, t.TempDir()))
}

func TestApp_SessionSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	creds := session.Credentials{Email: "bob@example.com", Password: "hunter22"}

	first, err := platform.New(dir, platform.WithPasswordCost(bcrypt.MinCost))
	require.NoError(t, err)
	uid, err := first.Session.Register(ctx, creds)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := newApp(t, dir)
	restored, ok := second.Start(ctx)
	require.True(t, ok)
	assert.Equal(t, uid, restored)

	require.NoError(t, second.Session.Logout(ctx))
	third := newApp(t, dir)
	_, ok = third.Start(ctx)
	assert.False(t, ok, "logout removes the persisted session")

	// Accounts persist independently of the session.
	again, err := third.Session.Login(ctx, creds)
	require.NoError(t, err)
	assert.Equal(t, uid, again)
}

func TestApp_UnknownAdapter(t *testing.T) {
	_, err := platform.New(t.TempDir(), platform.WithAdapter("s3"))
	assert.Error(t, err)
}

func TestApp_MustExist(t *testing.T) {
	_, err := platform.New(t.TempDir()+"/missing", platform.WithMustExist(true))
	assert.Error(t, err)
}
