package ports

import (
	"context"

	"github.com/sglre6355/gabby/internal/modules/music_player/domain"
)

// TrackResolver defines the interface for loading/searching tracks.
type TrackResolver interface {
	// LoadTracks resolves the query into track handles.
	LoadTracks(ctx context.Context, query *domain.SearchQuery) (*domain.SearchResult, error)
}
