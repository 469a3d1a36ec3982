package notes

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	ActiveSubscriptions int64  `json:"active_subscriptions"`
	DocumentStore       string `json:"document_store"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	docType := "unknown"
	if comp, ok := s.docs.(introspection.Component); ok {
		docType = comp.ComponentType()
	}
	return StoreState{
		ActiveSubscriptions: s.active.Load(),
		DocumentStore:       docType,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "note-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
