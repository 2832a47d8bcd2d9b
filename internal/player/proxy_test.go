package player

import (
	"fmt"
	"testing"

	"github.com/genricoloni/trackline/internal/domain"
	"github.com/genricoloni/trackline/internal/player/mocks"
	"github.com/godbus/dbus/v5"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestProxyApplyChange(t *testing.T) {
	proxy := newProxy(zap.NewNop(), &noopDBusClient{}, "org.mpris.MediaPlayer2.spotify")

	proxy.ApplyChange(map[string]dbus.Variant{
		"PlaybackStatus": dbus.MakeVariant("Playing"),
		"Metadata": dbus.MakeVariant(map[string]dbus.Variant{
			"xesam:title":  dbus.MakeVariant("Bohemian Rhapsody"),
			"xesam:artist": dbus.MakeVariant([]string{"Queen"}),
		}),
	}, nil)

	status, err := proxy.Status()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if status != domain.StatusPlaying {
		t.Errorf("Expected Playing, got %v", status)
	}

	track := proxy.Track()
	if track.Title != "Bohemian Rhapsody" {
		t.Errorf("Title: expected 'Bohemian Rhapsody', got %q", track.Title)
	}
	if len(track.Artists) != 1 || track.Artists[0] != "Queen" {
		t.Errorf("Artists: expected [Queen], got %v", track.Artists)
	}

	// An invalidated property is evicted from the cache
	proxy.ApplyChange(nil, []string{"Metadata"})
	if got := proxy.Track(); got.Title != "" {
		t.Errorf("Expected empty track after invalidation, got %q", got.Title)
	}
}

// TestProxyTrackVariations covers metadata shapes seen from non-compliant
// players in the wild.
func TestProxyTrackVariations(t *testing.T) {
	tests := []struct {
		name     string
		metadata dbus.Variant
		check    func(*testing.T, domain.Track)
	}{
		{
			name: "Artist as String (Non-compliant)",
			metadata: dbus.MakeVariant(map[string]dbus.Variant{
				"xesam:artist": dbus.MakeVariant("Single Artist"),
			}),
			check: func(t *testing.T, tr domain.Track) {
				if len(tr.Artists) != 1 || tr.Artists[0] != "Single Artist" {
					t.Errorf("Expected [Single Artist], got %v", tr.Artists)
				}
			},
		},
		{
			name: "Multiple Artists",
			metadata: dbus.MakeVariant(map[string]dbus.Variant{
				"xesam:artist": dbus.MakeVariant([]string{"Daft Punk", "Pharrell Williams"}),
				"xesam:title":  dbus.MakeVariant("Get Lucky"),
			}),
			check: func(t *testing.T, tr domain.Track) {
				if len(tr.Artists) != 2 {
					t.Errorf("Expected 2 artists, got %v", tr.Artists)
				}
			},
		},
		{
			name:     "Metadata is Int not Map",
			metadata: dbus.MakeVariant(12345),
			check: func(t *testing.T, tr domain.Track) {
				if tr.Title != "" || tr.Artists != nil {
					t.Errorf("Expected zero track, got %+v", tr)
				}
			},
		},
		{
			name: "Unexpected Artist Type",
			metadata: dbus.MakeVariant(map[string]dbus.Variant{
				"xesam:artist": dbus.MakeVariant(42),
				"xesam:title":  dbus.MakeVariant("Song"),
			}),
			check: func(t *testing.T, tr domain.Track) {
				if tr.Artists != nil {
					t.Errorf("Expected no artists, got %v", tr.Artists)
				}
				if tr.Title != "Song" {
					t.Errorf("Title should still parse, got %q", tr.Title)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proxy := newProxy(zap.NewNop(), &noopDBusClient{}, "org.mpris.MediaPlayer2.test")
			proxy.ApplyChange(map[string]dbus.Variant{"Metadata": tt.metadata}, nil)
			tt.check(t, proxy.Track())
		})
	}
}

// TestProxyStatusFallbackQuery verifies the ambiguous-cache case: with no
// cached status the proxy issues one live property get, and the result is
// not written into the cache.
func TestProxyStatusFallbackQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mocks.NewMockDBusClient(ctrl)
	proxy := newProxy(zap.NewNop(), mockClient, "org.mpris.MediaPlayer2.spotify")

	mockClient.EXPECT().
		GetProperty("org.mpris.MediaPlayer2.spotify", ObjectPath, PlayerInterface+".PlaybackStatus").
		Return(dbus.MakeVariant("Paused"), nil).
		Times(2)

	status, err := proxy.Status()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if status != domain.StatusPaused {
		t.Errorf("Expected Paused, got %v", status)
	}

	// Second call queries again: the fallback never populates the cache
	if _, err := proxy.Status(); err != nil {
		t.Fatalf("Unexpected error on second query: %v", err)
	}
}

func TestProxyStatusQueryFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mocks.NewMockDBusClient(ctrl)
	proxy := newProxy(zap.NewNop(), mockClient, "org.mpris.MediaPlayer2.spotify")

	mockClient.EXPECT().
		GetProperty(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(dbus.MakeVariant(""), fmt.Errorf("connection timeout"))

	if _, err := proxy.Status(); err == nil {
		t.Error("Expected error from failed status query")
	}
}

// TestProxyControlCalls verifies the three playback-control method calls.
func TestProxyControlCalls(t *testing.T) {
	tests := []struct {
		name   string
		method string
		invoke func(*Proxy) error
	}{
		{"Next", PlayerInterface + ".Next", func(p *Proxy) error { return p.Next() }},
		{"PlayPause", PlayerInterface + ".PlayPause", func(p *Proxy) error { return p.PlayPause() }},
		{"Previous", PlayerInterface + ".Previous", func(p *Proxy) error { return p.Previous() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockClient := mocks.NewMockDBusClient(ctrl)
			proxy := newProxy(zap.NewNop(), mockClient, "org.mpris.MediaPlayer2.spotify")

			mockClient.EXPECT().
				Call("org.mpris.MediaPlayer2.spotify", ObjectPath, tt.method).
				Return(nil)

			if err := tt.invoke(proxy); err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected domain.PlaybackStatus
	}{
		{"Playing", domain.StatusPlaying},
		{"Paused", domain.StatusPaused},
		{"Stopped", domain.StatusStopped},
		{"Garbage", domain.StatusStopped},
	}
	for _, tt := range tests {
		if got := parseStatus(tt.input); got != tt.expected {
			t.Errorf("parseStatus(%s): expected %v, got %v", tt.input, tt.expected, got)
		}
	}
}
