package usecases

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/gabby/internal/modules/music_player/domain"
)

// LyricsOutput contains the result of the Lyrics use case.
type LyricsOutput struct {
	Track *domain.Track
	Pages iter.Seq[string]
}

// Lyrics fetches the lyrics of the current track split into message-sized pages.
func (o *Orchestrator) Lyrics(ctx context.Context, guildID snowflake.ID) (*LyricsOutput, error) {
	unlock := o.locks.lock(guildID)
	if err := o.requireConnected(guildID); err != nil {
		unlock()
		return nil, err
	}
	if _, err := o.requireState(guildID, domain.StatePlaying, domain.StatePaused); err != nil {
		unlock()
		return nil, err
	}
	track := o.engine.CurrentTrack(guildID)
	unlock()

	if track == nil || o.lyrics == nil {
		return nil, ErrNoLyrics
	}

	// The provider is remote; the guild lock is not held while waiting on it.
	text, err := o.lyrics.FetchLyrics(ctx, track)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lyrics: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoLyrics
	}

	return &LyricsOutput{
		Track: track,
		Pages: domain.Paginate(text, o.lyricsMinChunk, o.lyricsMaxChunk),
	}, nil
}
