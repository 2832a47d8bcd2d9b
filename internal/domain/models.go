package domain

// PlaybackStatus represents the current state of a media player
type PlaybackStatus string

const (
	// StatusPlaying indicates the media is currently playing
	StatusPlaying PlaybackStatus = "Playing"
	// StatusPaused indicates the media is paused
	StatusPaused PlaybackStatus = "Paused"
	// StatusStopped indicates the media is stopped
	StatusStopped PlaybackStatus = "Stopped"
)

// Track contains the caption-relevant metadata of the current track
type Track struct {
	// Artists performing the track; may be empty for untagged media
	Artists []string
	// Title of the currently playing track
	Title string
}
