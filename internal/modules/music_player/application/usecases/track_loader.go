package usecases

import (
	"context"
	"errors"
	"strings"

	"github.com/sglre6355/gabby/internal/modules/music_player/application/ports"
	"github.com/sglre6355/gabby/internal/modules/music_player/domain"
)

// SearchInput contains the input for the Search use case.
type SearchInput struct {
	Query  string
	Source domain.SearchSource
}

// SearchTracksInput contains the input for the SearchTracks use case.
type SearchTracksInput struct {
	Query  string
	Source domain.SearchSource
	Limit  int
}

// SearchTracksOutput contains the result of the SearchTracks use case.
type SearchTracksOutput struct {
	IsPlaylist   bool
	PlaylistName string
	TrackCount   int             // Total tracks in the result
	Tracks       []*domain.Track // Individual tracks (limited)
}

// TrackLoaderService handles track loading operations.
type TrackLoaderService struct {
	trackResolver ports.TrackResolver
}

// NewTrackLoaderService creates a new TrackLoaderService.
func NewTrackLoaderService(trackResolver ports.TrackResolver) *TrackLoaderService {
	return &TrackLoaderService{
		trackResolver: trackResolver,
	}
}

// Search resolves the query into a SearchResult ready for Enqueue.
func (s *TrackLoaderService) Search(
	ctx context.Context,
	input SearchInput,
) (*domain.SearchResult, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, ErrEmptyQuery
	}

	query := domain.NewSearchQuery(input.Query, input.Source)
	result, err := s.trackResolver.LoadTracks(ctx, query)
	if err != nil {
		return nil, err
	}

	if result == nil || result.Type == domain.SearchResultEmpty ||
		result.Type == domain.SearchResultError || result.IsEmpty() {
		return nil, ErrNoResults
	}

	return result, nil
}

// SearchTracks searches for tracks matching the query for autocomplete.
// A blank query or an empty result yields no tracks rather than an error.
func (s *TrackLoaderService) SearchTracks(
	ctx context.Context,
	input SearchTracksInput,
) (*SearchTracksOutput, error) {
	result, err := s.Search(ctx, SearchInput{Query: input.Query, Source: input.Source})
	if errors.Is(err, ErrEmptyQuery) || errors.Is(err, ErrNoResults) {
		return &SearchTracksOutput{}, nil
	}
	if err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 || limit > len(result.Tracks) {
		limit = len(result.Tracks)
	}

	return &SearchTracksOutput{
		IsPlaylist:   result.Type == domain.SearchResultPlaylist,
		PlaylistName: result.PlaylistName,
		TrackCount:   len(result.Tracks),
		Tracks:       result.Tracks[:limit],
	}, nil
}
