package domain

import (
	"strconv"
	"time"
)

// TrackID is the opaque identity of a loaded track handle.
// Two handles for the same song have different IDs.
type TrackID string

// Track represents a playable audio track handle owned by the playback engine.
type Track struct {
	ID         TrackID
	Identifier string // Source identifier (e.g. YouTube video ID)
	Encoded    string // Lavalink encoded track data
	Title      string
	Author     string
	Duration   time.Duration
	URL        string
	ArtworkURL string
	SourceName string // e.g., "youtube", "soundcloud"
	IsStream   bool
}

// IsValid returns true if the track has the minimum required fields.
func (t *Track) IsValid() bool {
	return t.ID != "" && t.Encoded != "" && t.Title != ""
}

// IsSeekable reports whether offset lies within the track.
func (t *Track) IsSeekable(offset time.Duration) bool {
	if t.IsStream || offset < 0 {
		return false
	}
	return offset <= t.Duration
}

// FormattedDuration returns the duration as a human-readable string (mm:ss or hh:mm:ss).
func (t *Track) FormattedDuration() string {
	if t.IsStream {
		return "LIVE"
	}
	return FormatDuration(t.Duration)
}

// FormatDuration formats d as mm:ss, or hh:mm:ss when it spans an hour or more.
func FormatDuration(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return pad(hours) + ":" + pad(minutes) + ":" + pad(seconds)
	}
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
