package infrastructure

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sglre6355/gabby/internal/modules/music_player/application/ports"
	"github.com/sglre6355/gabby/internal/modules/music_player/domain"
)

// LyricsChain asks each provider in turn and returns the first lyrics found.
type LyricsChain struct {
	providers []ports.LyricsProvider
}

// NewLyricsChain creates a LyricsChain trying providers in the given order.
func NewLyricsChain(providers ...ports.LyricsProvider) *LyricsChain {
	return &LyricsChain{providers: providers}
}

// FetchLyrics returns the first non-empty lyrics. It fails only when every
// provider failed; otherwise a miss everywhere returns "".
func (c *LyricsChain) FetchLyrics(ctx context.Context, track *domain.Track) (string, error) {
	var errs []error
	for _, provider := range c.providers {
		lyrics, err := provider.FetchLyrics(ctx, track)
		if err != nil {
			slog.Warn("lyrics provider failed", "track", track.Title, "error", err)
			errs = append(errs, err)
			continue
		}
		if strings.TrimSpace(lyrics) != "" {
			return lyrics, nil
		}
	}

	if len(errs) > 0 && len(errs) == len(c.providers) {
		return "", errors.Join(errs...)
	}
	return "", nil
}

// Ensure LyricsChain implements ports.LyricsProvider.
var _ ports.LyricsProvider = (*LyricsChain)(nil)
