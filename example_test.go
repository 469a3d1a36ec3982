package notebox_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/notebox"
)

// Example_basic registers a user, subscribes to their notes and creates one.
func Example_basic() {
	app, err := notebox.New("", notebox.WithAdapter("memory"))
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	ctx := context.Background()

	uid, err := app.Session.Register(ctx, notebox.Credentials{Email: "gopher@example.com", Password: "secret1"})
	if err != nil {
		log.Fatal(err)
	}
	scope := notebox.Scope(uid)

	sub, err := app.Notes.LiveQuery(ctx, scope)
	if err != nil {
		log.Fatal(err)
	}
	defer sub.Unsubscribe()

	fmt.Printf("notes: %d\n", len(<-sub.Updates()))

	if _, err := app.Notes.Create(ctx, scope, notebox.Draft{Title: "Groceries", Body: "milk, eggs"}); err != nil {
		log.Fatal(err)
	}
	for list := range sub.Updates() {
		if len(list) == 1 {
			fmt.Printf("notes: %d, first: %s\n", len(list), list[0].Title)
			break
		}
	}
	// Output:
	// notes: 0
	// notes: 1, first: Groceries
}
