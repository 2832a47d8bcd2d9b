package player

import (
	"testing"
)

func TestSelectorEmptyRegistry(t *testing.T) {
	sel := NewSelector(newTestRegistry())
	if sel.Current() != nil {
		t.Error("Expected no active player for an empty registry")
	}
}

// TestSelectorFallbackOrder verifies the earliest-inserted player is promoted
// when no active player exists.
func TestSelectorFallbackOrder(t *testing.T) {
	reg := newTestRegistry()
	sel := NewSelector(reg)

	reg.Add("org.mpris.MediaPlayer2.vlc", ":1.1")
	reg.Add("org.mpris.MediaPlayer2.spotify", ":1.2")

	proxy := sel.Current()
	if proxy == nil || proxy.Identity() != "org.mpris.MediaPlayer2.vlc" {
		t.Fatalf("Expected earliest-inserted vlc, got %v", proxy)
	}
}

// TestSelectorSticky verifies the active player does not flap when another
// player registers.
func TestSelectorSticky(t *testing.T) {
	reg := newTestRegistry()
	sel := NewSelector(reg)

	reg.Add("org.mpris.MediaPlayer2.vlc", ":1.1")
	if sel.Current().Identity() != "org.mpris.MediaPlayer2.vlc" {
		t.Fatal("Expected vlc to become active")
	}

	reg.Add("org.mpris.MediaPlayer2.spotify", ":1.2")
	if got := sel.Current().Identity(); got != "org.mpris.MediaPlayer2.vlc" {
		t.Errorf("Active player flapped to %s", got)
	}
}

// TestSelectorPromote verifies promotion overrides stickiness, matching the
// play-state takeover behavior.
func TestSelectorPromote(t *testing.T) {
	reg := newTestRegistry()
	sel := NewSelector(reg)

	reg.Add("org.mpris.MediaPlayer2.vlc", ":1.1")
	reg.Add("org.mpris.MediaPlayer2.spotify", ":1.2")

	if sel.Current().Identity() != "org.mpris.MediaPlayer2.vlc" {
		t.Fatal("Expected vlc active before promotion")
	}

	sel.Promote("org.mpris.MediaPlayer2.spotify")
	if got := sel.Current().Identity(); got != "org.mpris.MediaPlayer2.spotify" {
		t.Errorf("Expected spotify after promotion, got %s", got)
	}
}

// TestSelectorPromoteUnregistered verifies membership validation is lazy:
// promoting a removed session falls back on the next query.
func TestSelectorPromoteUnregistered(t *testing.T) {
	reg := newTestRegistry()
	sel := NewSelector(reg)

	reg.Add("org.mpris.MediaPlayer2.vlc", ":1.1")
	sel.Promote("org.mpris.MediaPlayer2.gone")

	if got := sel.Current().Identity(); got != "org.mpris.MediaPlayer2.vlc" {
		t.Errorf("Expected fallback to vlc, got %s", got)
	}
}

// TestSelectorRemoveActive verifies removal of the active session promotes
// the earliest-inserted remaining one, and removal of the sole session
// yields none.
func TestSelectorRemoveActive(t *testing.T) {
	reg := newTestRegistry()
	sel := NewSelector(reg)

	reg.Add("org.mpris.MediaPlayer2.vlc", ":1.1")
	reg.Add("org.mpris.MediaPlayer2.spotify", ":1.2")
	reg.Add("org.mpris.MediaPlayer2.firefox", ":1.3")

	if sel.Current().Identity() != "org.mpris.MediaPlayer2.vlc" {
		t.Fatal("Expected vlc active")
	}

	reg.Remove("org.mpris.MediaPlayer2.vlc")
	sel.Drop("org.mpris.MediaPlayer2.vlc")
	if got := sel.Current().Identity(); got != "org.mpris.MediaPlayer2.spotify" {
		t.Errorf("Expected spotify after removing active, got %s", got)
	}

	reg.Remove("org.mpris.MediaPlayer2.spotify")
	sel.Drop("org.mpris.MediaPlayer2.spotify")
	reg.Remove("org.mpris.MediaPlayer2.firefox")
	sel.Drop("org.mpris.MediaPlayer2.firefox")
	if sel.Current() != nil {
		t.Error("Expected no active player after the last removal")
	}
}

// TestSelectorDropOther verifies dropping a non-active session leaves the
// active identity alone.
func TestSelectorDropOther(t *testing.T) {
	reg := newTestRegistry()
	sel := NewSelector(reg)

	reg.Add("org.mpris.MediaPlayer2.vlc", ":1.1")
	reg.Add("org.mpris.MediaPlayer2.spotify", ":1.2")
	sel.Promote("org.mpris.MediaPlayer2.spotify")

	reg.Remove("org.mpris.MediaPlayer2.vlc")
	sel.Drop("org.mpris.MediaPlayer2.vlc")

	if got := sel.Current().Identity(); got != "org.mpris.MediaPlayer2.spotify" {
		t.Errorf("Expected spotify to stay active, got %s", got)
	}
}
