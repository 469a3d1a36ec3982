// Package notebox is the composition root of the notebox notes client.
//
// It wires a per-user note store with live queries, a session context and
// an optional push registrar over a pluggable document store, following
// the hexagonal layout: the domain in pkg/core and pkg/notes, adapters in
// pkg/adapters.
//
// Features:
//
//   - **Live Queries**: every change to a user's notes pushes a full fresh
//     snapshot to subscribers. Slow consumers skip stale snapshots.
//   - **Explicit Scope**: every note operation names the user it acts for.
//   - **Local First**: the default fs adapter keeps each note as a Markdown
//     file with YAML frontmatter and watches the directory for changes from
//     other processes or devices.
//   - **Typed Auth Failures**: login errors are `*session.AuthError` values
//     that carry a kind for logs while callers only branch on failure.
//
// Usage:
//
//	app, err := notebox.New("./vault", notebox.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer app.Close()
//
//	uid, err := app.Session.Login(ctx, notebox.Credentials{Email: email, Password: pw})
//	sub, err := app.Notes.LiveQuery(ctx, notebox.Scope(uid))
//	for list := range sub.Updates() {
//		render(list)
//	}
package notebox
