package core

import (
	"github.com/aretw0/introspection"
)

// BrokerState exposes internal state for observability.
type BrokerState struct {
	Subscribers int  `json:"subscribers"`
	Buffer      int  `json:"buffer"`
	Closed      bool `json:"closed"`
}

// State implements introspection.Introspectable.
func (b *Broker) State() any {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return BrokerState{
		Subscribers: len(b.subs),
		Buffer:      b.buffer,
		Closed:      b.closed,
	}
}

// ComponentType implements introspection.Component.
func (b *Broker) ComponentType() string {
	return "broker"
}

var _ introspection.Introspectable = (*Broker)(nil)
var _ introspection.Component = (*Broker)(nil)
