package ports

import (
	"context"

	"github.com/sglre6355/gabby/internal/modules/music_player/domain"
)

// LyricsProvider defines the interface for fetching song lyrics.
type LyricsProvider interface {
	// FetchLyrics returns the raw lyrics for the track, or "" if none are known.
	FetchLyrics(ctx context.Context, track *domain.Track) (string, error)
}
