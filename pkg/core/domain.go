// Package core holds the document model and the storage ports shared by
// every notebox adapter.
package core

import (
	"fmt"
	"strings"
)

// Metadata represents the flexible key-value pairs associated with a document.
type Metadata map[string]any

// Document is a single record inside a path-addressed collection.
// ID is the last segment of Path and is assigned by the store on Add.
type Document struct {
	ID       string
	Path     string
	Content  string
	Metadata Metadata
}

// Patch describes a partial update. Metadata keys are merged into the
// existing document; Content is replaced only when non-nil.
type Patch struct {
	Content  *string
	Metadata Metadata
}

// EventType represents the type of change in the store.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to a single document.
type Event struct {
	Type      EventType
	Path      string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.Path)
}

// Join builds a slash separated document path.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// ValidatePath rejects empty segments and traversal attempts.
func ValidatePath(p string) error {
	if p == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." || seg == ".." || strings.ContainsAny(seg, `\`) {
			return fmt.Errorf("%w: %q", ErrInvalidPath, p)
		}
	}
	return nil
}

// Split returns the collection part and the id of a document path.
func Split(docPath string) (collection, id string) {
	i := strings.LastIndex(docPath, "/")
	if i < 0 {
		return "", docPath
	}
	return docPath[:i], docPath[i+1:]
}

// Clone returns a deep enough copy of the document so callers cannot
// mutate store state through shared maps.
func (d Document) Clone() Document {
	out := d
	if d.Metadata != nil {
		out.Metadata = make(Metadata, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// Apply merges the patch into the document.
func (d *Document) Apply(p Patch) {
	if p.Content != nil {
		d.Content = *p.Content
	}
	if len(p.Metadata) > 0 && d.Metadata == nil {
		d.Metadata = make(Metadata, len(p.Metadata))
	}
	for k, v := range p.Metadata {
		d.Metadata[k] = v
	}
}
