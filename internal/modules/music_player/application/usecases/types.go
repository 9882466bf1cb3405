package usecases

import (
	"github.com/sglre6355/gabby/internal/modules/music_player/domain"
)

// Re-export domain types for presentation layer use.
// This allows presentation to depend only on usecases without importing domain directly.

type (
	Track           = domain.Track
	TrackID         = domain.TrackID
	QueuedItem      = domain.QueuedItem
	Requester       = domain.Requester
	Member          = domain.Member
	PlaybackState   = domain.PlaybackState
	SearchSource    = domain.SearchSource
	SearchResult    = domain.SearchResult
	VoteOutcome     = domain.VoteOutcome
	TrackEndedEvent = domain.TrackEndedEvent
)

const (
	StateIdle    = domain.StateIdle
	StatePlaying = domain.StatePlaying
	StatePaused  = domain.StatePaused
)

const (
	SourceYouTube      = domain.SourceYouTube
	SourceYouTubeMusic = domain.SourceYouTubeMusic
	SourceSoundCloud   = domain.SourceSoundCloud
	SourceDirect       = domain.SourceDirect
)

// ParseSearchSource is domain.ParseSearchSource.
func ParseSearchSource(name string) (SearchSource, error) {
	return domain.ParseSearchSource(name)
}

// FormatDuration is domain.FormatDuration.
var FormatDuration = domain.FormatDuration
