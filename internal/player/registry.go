package player

import (
	"sync"

	"go.uber.org/zap"
)

// Registry owns the mapping from session identity to Proxy. Identities are
// the well-known MPRIS bus names; a second index maps unique bus names
// (":1.45") back to identities so signal senders can be resolved. Insertion
// order is preserved because it breaks ties when a fallback active player
// has to be chosen.
type Registry struct {
	logger *zap.Logger
	conn   DBusClient

	mu      sync.Mutex
	proxies map[string]*Proxy
	order   []string
	owners  map[string]string // unique bus name -> identity
}

// NewRegistry creates an empty registry bound to a bus client
func NewRegistry(logger *zap.Logger, conn DBusClient) *Registry {
	return &Registry{
		logger:  logger,
		conn:    conn,
		proxies: make(map[string]*Proxy),
		owners:  make(map[string]string),
	}
}

// Add creates, subscribes and stores a proxy for the identity. A duplicate
// identity is a no-op. The owner is the unique bus name when known; an empty
// owner leaves the sender index untouched.
func (r *Registry) Add(identity, owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.proxies[identity]; ok {
		return
	}

	proxy := newProxy(r.logger, r.conn, identity)
	if err := proxy.subscribe(); err != nil {
		r.logger.Warn("Failed to subscribe to player signals",
			zap.String("player", identity),
			zap.Error(err))
		// Keep the proxy: the coordinator's path-wide match rule still
		// delivers its signals on most bus daemons.
	}

	r.proxies[identity] = proxy
	r.order = append(r.order, identity)
	if owner != "" {
		r.owners[owner] = identity
	}

	r.logger.Info("Player registered",
		zap.String("player", identity),
		zap.String("unique", owner),
		zap.Int("count", len(r.order)))
}

// Remove unsubscribes and discards the proxy for the identity. An absent
// identity is a no-op.
func (r *Registry) Remove(identity string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	proxy, ok := r.proxies[identity]
	if !ok {
		return
	}

	if err := proxy.unsubscribe(); err != nil {
		r.logger.Debug("Failed to remove player match rule",
			zap.String("player", identity),
			zap.Error(err))
	}

	delete(r.proxies, identity)
	for i, id := range r.order {
		if id == identity {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	for owner, id := range r.owners {
		if id == identity {
			delete(r.owners, owner)
		}
	}

	r.logger.Info("Player removed",
		zap.String("player", identity),
		zap.Int("count", len(r.order)))
}

// Get returns the proxy for the identity, or nil if absent
func (r *Registry) Get(identity string) *Proxy {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.proxies[identity]
}

// All returns the proxies in insertion order
func (r *Registry) All() []*Proxy {
	r.mu.Lock()
	defer r.mu.Unlock()

	proxies := make([]*Proxy, 0, len(r.order))
	for _, id := range r.order {
		proxies = append(proxies, r.proxies[id])
	}
	return proxies
}

// Len returns the number of registered players
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Resolve maps a signal sender (unique bus name) to the registered identity.
// Falls back to the sender itself so an already well-known sender resolves
// to itself; returns "" when the sender names no registered player.
func (r *Registry) Resolve(sender string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if identity, ok := r.owners[sender]; ok {
		return identity
	}
	if _, ok := r.proxies[sender]; ok {
		return sender
	}
	return ""
}

// Rebind re-points the unique-name index after a name-owner transfer
func (r *Registry) Rebind(identity, oldOwner, newOwner string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.proxies[identity]; !ok {
		return
	}
	delete(r.owners, oldOwner)
	r.owners[newOwner] = identity

	r.logger.Debug("Player ownership changed",
		zap.String("player", identity),
		zap.String("oldUnique", oldOwner),
		zap.String("newUnique", newOwner))
}
