package coordinator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/genricoloni/trackline/internal/command"
	"github.com/genricoloni/trackline/internal/domain"
	"github.com/genricoloni/trackline/internal/emitter"
	"github.com/genricoloni/trackline/internal/player"
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

// Coordinator wires the bus event stream to the registry, selector and
// emitter, and owns the lifetimes of the signal-dispatch goroutine and the
// command-reader goroutine. Bus signals are consumed by a single goroutine
// in arrival order, so per-session notifications are handled in the order
// the underlying properties changed.
type Coordinator struct {
	logger   *zap.Logger
	conn     player.DBusClient
	registry *player.Registry
	selector *player.Selector
	gate     *player.Gate
	emitter  *emitter.Emitter
	reader   *command.Reader

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a coordinator over an already connected bus client
func New(
	logger *zap.Logger,
	conn player.DBusClient,
	registry *player.Registry,
	selector *player.Selector,
	gate *player.Gate,
	em *emitter.Emitter,
	reader *command.Reader,
) *Coordinator {
	return &Coordinator{
		logger:   logger,
		conn:     conn,
		registry: registry,
		selector: selector,
		gate:     gate,
		emitter:  em,
		reader:   reader,
	}
}

// Start scans for existing players, subscribes to lifecycle signals and
// launches the dispatch and command-reader goroutines. Non-blocking.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = true
	dispatchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancel = cancel
	c.mu.Unlock()

	if err := c.scanExistingPlayers(); err != nil {
		c.logger.Warn("Failed to detect existing players", zap.Error(err))
	}

	// Path-wide PropertiesChanged rule: catches players whose per-sender
	// subscription failed, and players we have not registered yet.
	if err := c.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(player.ObjectPath),
		dbus.WithMatchInterface("org.freedesktop.DBus.Properties"),
		dbus.WithMatchMember("PropertiesChanged"),
	); err != nil {
		return fmt.Errorf("failed to add match signal: %w", err)
	}

	if err := c.conn.AddMatchSignal(
		dbus.WithMatchInterface("org.freedesktop.DBus"),
		dbus.WithMatchMember("NameOwnerChanged"),
	); err != nil {
		return fmt.Errorf("failed to add NameOwnerChanged match signal: %w", err)
	}

	signals := make(chan *dbus.Signal, 10)
	c.conn.Signal(signals)

	c.wg.Add(1)
	go c.dispatchSignals(dispatchCtx, signals)

	// Not tracked by the WaitGroup: the line read blocks until the input
	// stream closes, which only happens at process exit.
	go c.reader.Run(dispatchCtx)

	c.emitter.Render()

	c.logger.Info("Coordinator started", zap.Int("players", c.registry.Len()))
	return nil
}

// Stop cancels the dispatch loop, waits for it to drain and closes the bus
// connection.
func (c *Coordinator) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()

	c.wg.Wait()

	if err := c.conn.Close(); err != nil {
		c.logger.Warn("Failed to close D-Bus connection", zap.Error(err))
	}

	c.logger.Info("Coordinator shutdown complete")
	return nil
}

// scanExistingPlayers registers MPRIS players already present on the bus.
// A player found mid-playback is promoted so the bar starts on what is
// audibly playing.
func (c *Coordinator) scanExistingPlayers() error {
	names, err := c.conn.ListNames()
	if err != nil {
		return fmt.Errorf("failed to list bus names: %w", err)
	}

	for _, name := range names {
		if !strings.HasPrefix(name, player.NamePrefix) {
			continue
		}

		owner, err := c.conn.GetNameOwner(name)
		if err != nil {
			c.logger.Debug("Failed to resolve name owner",
				zap.String("player", name),
				zap.Error(err))
			owner = ""
		}
		c.registry.Add(name, owner)

		if proxy := c.registry.Get(name); proxy != nil {
			if status, err := proxy.Status(); err == nil && status == domain.StatusPlaying {
				c.selector.Promote(name)
			}
		}
	}

	c.logger.Info("Player detection complete", zap.Int("count", c.registry.Len()))
	return nil
}

// dispatchSignals consumes bus signals one at a time, in arrival order
func (c *Coordinator) dispatchSignals(ctx context.Context, signals chan *dbus.Signal) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Signal dispatch stopped")
			return
		case sig := <-signals:
			if sig == nil {
				continue
			}
			if sig.Name == "org.freedesktop.DBus.NameOwnerChanged" {
				c.handleNameOwnerChanged(sig)
			} else {
				c.handlePropertiesChanged(sig)
			}
		}
	}
}

// handleNameOwnerChanged tracks player sessions appearing and disappearing
func (c *Coordinator) handleNameOwnerChanged(sig *dbus.Signal) {
	if len(sig.Body) < 3 {
		return
	}

	name, ok := sig.Body[0].(string)
	if !ok || !strings.HasPrefix(name, player.NamePrefix) {
		return
	}

	oldOwner, _ := sig.Body[1].(string)
	newOwner, _ := sig.Body[2].(string)

	switch {
	case oldOwner == "" && newOwner != "":
		c.registry.Add(name, newOwner)
		c.emitter.Render()

	case oldOwner != "" && newOwner == "":
		c.registry.Remove(name)
		c.selector.Drop(name)
		c.emitter.Render()

	default:
		// Ownership transfer (rare), same session under a new unique name
		c.registry.Rebind(name, oldOwner, newOwner)
	}
}

// handlePropertiesChanged folds a property change into the session's cache,
// promotes the session if it entered the Playing state and re-renders when
// a caption-relevant property changed.
func (c *Coordinator) handlePropertiesChanged(sig *dbus.Signal) {
	if sig.Name != "org.freedesktop.DBus.Properties.PropertiesChanged" {
		return
	}
	if len(sig.Body) < 2 {
		return
	}

	interfaceName, ok := sig.Body[0].(string)
	if !ok || interfaceName != player.PlayerInterface {
		return
	}

	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return
	}

	var invalidated []string
	if len(sig.Body) >= 3 {
		invalidated, _ = sig.Body[2].([]string)
	}

	identity := c.registry.Resolve(sig.Sender)
	if identity == "" {
		// Signal from a session we never registered
		return
	}

	proxy := c.registry.Get(identity)
	if proxy == nil {
		return
	}
	proxy.ApplyChange(changed, invalidated)

	if statusVar, ok := changed["PlaybackStatus"]; ok {
		if status, ok := statusVar.Value().(string); ok && status == "Playing" {
			c.selector.Promote(identity)
		}
	}

	changedNames := make([]string, 0, len(changed)+len(invalidated))
	for name := range changed {
		changedNames = append(changedNames, name)
	}
	changedNames = append(changedNames, invalidated...)

	if c.gate.ShouldRefresh(changedNames) {
		c.emitter.Render()
	}
}
