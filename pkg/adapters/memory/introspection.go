package memory

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Documents   int  `json:"documents"`
	Subscribers int  `json:"subscribers"`
	Offline     bool `json:"offline"`
	Closed      bool `json:"closed"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StoreState{
		Documents:   len(s.docs),
		Subscribers: s.broker.Len(),
		Offline:     s.offline,
		Closed:      s.closed,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "memory-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
