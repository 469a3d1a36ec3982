package core

import "context"

// DocumentStore defines the contract for path-addressed collections of
// documents. Collection paths look like "users/{uid}/notes" and document
// paths append the document id.
type DocumentStore interface {
	// Add creates a document under collection with a store-assigned ID.
	Add(ctx context.Context, collection string, doc Document) (Document, error)

	// Get retrieves a document by its full path. Returns ErrNotFound if absent.
	Get(ctx context.Context, docPath string) (Document, error)

	// List returns every document directly under collection in insertion order.
	List(ctx context.Context, collection string) ([]Document, error)

	// Update merges patch into an existing document. Returns ErrNotFound if absent.
	Update(ctx context.Context, docPath string, patch Patch) error

	// Delete removes a document. Returns ErrNotFound if absent.
	Delete(ctx context.Context, docPath string) error

	// Initialize ensures the underlying storage is ready.
	Initialize(ctx context.Context) error
}

// Watchable defines stores that push change events.
type Watchable interface {
	// Watch streams events for document paths matching pattern (doublestar
	// syntax). The channel is closed when ctx is done or the store closes.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}
