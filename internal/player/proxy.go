package player

import (
	"fmt"
	"sync"

	"github.com/genricoloni/trackline/internal/domain"
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

// Proxy represents one remote MPRIS player session. It keeps a write-through
// cache of the player's properties, fed exclusively by PropertiesChanged
// notifications, and issues playback-control calls against the live bus.
type Proxy struct {
	logger   *zap.Logger
	conn     DBusClient
	identity string

	mu    sync.RWMutex
	cache map[string]dbus.Variant
}

func newProxy(logger *zap.Logger, conn DBusClient, identity string) *Proxy {
	return &Proxy{
		logger:   logger,
		conn:     conn,
		identity: identity,
		cache:    make(map[string]dbus.Variant),
	}
}

// Identity returns the well-known bus name of the player session
func (p *Proxy) Identity() string {
	return p.identity
}

// subscribe adds a match rule scoped to this session's PropertiesChanged
// signals. The proxy owns the rule for its lifetime.
func (p *Proxy) subscribe() error {
	return p.conn.AddMatchSignal(
		dbus.WithMatchSender(p.identity),
		dbus.WithMatchObjectPath(ObjectPath),
		dbus.WithMatchInterface("org.freedesktop.DBus.Properties"),
		dbus.WithMatchMember("PropertiesChanged"),
	)
}

func (p *Proxy) unsubscribe() error {
	return p.conn.RemoveMatchSignal(
		dbus.WithMatchSender(p.identity),
		dbus.WithMatchObjectPath(ObjectPath),
		dbus.WithMatchInterface("org.freedesktop.DBus.Properties"),
		dbus.WithMatchMember("PropertiesChanged"),
	)
}

// ApplyChange folds a PropertiesChanged notification into the cache.
// Invalidated names are evicted so a later read falls back to a live query
// instead of reporting a value the player disowned.
func (p *Proxy) ApplyChange(changed map[string]dbus.Variant, invalidated []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for name, value := range changed {
		p.cache[name] = value
	}
	for _, name := range invalidated {
		delete(p.cache, name)
	}
}

// Status returns the playback status from the cache when present, otherwise
// resolves it with a single live property query. The query result is not
// cached: the cache is fed only by change notifications.
func (p *Proxy) Status() (domain.PlaybackStatus, error) {
	p.mu.RLock()
	variant, ok := p.cache[propPlaybackStatus]
	p.mu.RUnlock()

	if !ok {
		var err error
		variant, err = p.conn.GetProperty(p.identity, ObjectPath, PlayerInterface+"."+propPlaybackStatus)
		if err != nil {
			return domain.StatusStopped, fmt.Errorf("failed to get playback status: %w", err)
		}
	}

	status, ok := variant.Value().(string)
	if !ok {
		return domain.StatusStopped, fmt.Errorf("invalid playback status format")
	}
	return parseStatus(status), nil
}

// Track returns the caption metadata from the cached Metadata property.
// Before the first notification arrives the cache is empty and a zero Track
// is returned.
func (p *Proxy) Track() domain.Track {
	p.mu.RLock()
	variant, ok := p.cache[propMetadata]
	p.mu.RUnlock()

	if !ok {
		return domain.Track{}
	}

	// SAFE CAST: Some players may return nil or unexpected types if not playing anything
	metadata, ok := variant.Value().(map[string]dbus.Variant)
	if !ok {
		p.logger.Debug("Metadata variant is not a map, skipping", zap.String("player", p.identity))
		return domain.Track{}
	}

	return p.parseMetadata(metadata)
}

// Next skips to the next track
func (p *Proxy) Next() error {
	return p.conn.Call(p.identity, ObjectPath, PlayerInterface+".Next")
}

// PlayPause toggles between playing and paused
func (p *Proxy) PlayPause() error {
	return p.conn.Call(p.identity, ObjectPath, PlayerInterface+".PlayPause")
}

// Previous skips to the previous track
func (p *Proxy) Previous() error {
	return p.conn.Call(p.identity, ObjectPath, PlayerInterface+".Previous")
}

// parseMetadata converts MPRIS metadata to the domain model
func (p *Proxy) parseMetadata(metadata map[string]dbus.Variant) domain.Track {
	var track domain.Track

	// Extract title
	if titleVar, ok := metadata["xesam:title"]; ok {
		if title, ok := titleVar.Value().(string); ok {
			track.Title = title
		}
	}

	// Extract artists (MPRIS defines an array, some players send a plain string)
	if artistVar, ok := metadata["xesam:artist"]; ok {
		switch artists := artistVar.Value().(type) {
		case []string:
			track.Artists = artists
		case string:
			track.Artists = []string{artists}
		default:
			// Some non-compliant players may use unexpected types
			p.logger.Debug("Unexpected artist type in metadata",
				zap.String("player", p.identity),
				zap.String("type", fmt.Sprintf("%T", artistVar.Value())))
		}
	}

	return track
}

func parseStatus(status string) domain.PlaybackStatus {
	switch status {
	case "Playing":
		return domain.StatusPlaying
	case "Paused":
		return domain.StatusPaused
	default:
		return domain.StatusStopped
	}
}
