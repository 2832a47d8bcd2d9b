package player

import (
	"sync"
)

// Selector holds the identity of the player the bar reports on. Selection
// rules, in order: a still-registered active player stays active (sticky, so
// captions do not flap between idle players); otherwise the earliest
// registered player is promoted; otherwise there is no active player.
//
// Promotion on play bypasses stickiness: a player that starts playing takes
// over the display immediately, whatever was active before.
type Selector struct {
	registry *Registry

	mu     sync.Mutex
	active string
}

// NewSelector creates a selector over the given registry
func NewSelector(registry *Registry) *Selector {
	return &Selector{registry: registry}
}

// Current applies the selection rules and returns the active proxy, or nil
// when no player is registered. Rule 2 promotion is recorded, so repeated
// calls are stable until the registry or a play notification changes things.
func (s *Selector) Current() *Proxy {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != "" {
		if proxy := s.registry.Get(s.active); proxy != nil {
			return proxy
		}
		s.active = ""
	}

	proxies := s.registry.All()
	if len(proxies) == 0 {
		return nil
	}

	s.active = proxies[0].Identity()
	return proxies[0]
}

// Promote forces the active identity without validating registry membership.
// Validation happens lazily on the next Current call, which tolerates the
// transient race between a removal and a promotion for the same session.
func (s *Selector) Promote(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = identity
}

// Drop clears the active identity if it matches the removed session
func (s *Selector) Drop(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == identity {
		s.active = ""
	}
}
