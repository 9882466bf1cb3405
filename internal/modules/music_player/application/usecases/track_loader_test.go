package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/sglre6355/gabby/internal/modules/music_player/domain"
)

type mockTrackResolver struct {
	loadErr    error
	loadResult *domain.SearchResult
	lastQuery  *domain.SearchQuery
}

func (m *mockTrackResolver) LoadTracks(
	_ context.Context,
	query *domain.SearchQuery,
) (*domain.SearchResult, error) {
	m.lastQuery = query
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.loadResult, nil
}

func TestTrackLoaderService_Search(t *testing.T) {
	tests := []struct {
		name           string
		input          SearchInput
		result         *domain.SearchResult
		loadErr        error
		wantErr        error
		wantIdentifier string
	}{
		{
			name:           "youtube search",
			input:          SearchInput{Query: "lofi", Source: domain.SourceYouTube},
			result:         &domain.SearchResult{Type: domain.SearchResultSearch, Tracks: []*domain.Track{mockTrack("a")}},
			wantIdentifier: "ytsearch:lofi",
		},
		{
			name:           "soundcloud search",
			input:          SearchInput{Query: "ambient", Source: domain.SourceSoundCloud},
			result:         &domain.SearchResult{Type: domain.SearchResultSearch, Tracks: []*domain.Track{mockTrack("a")}},
			wantIdentifier: "scsearch:ambient",
		},
		{
			name:           "url",
			input:          SearchInput{Query: "https://example.com/a.mp3"},
			result:         &domain.SearchResult{Type: domain.SearchResultTrack, Tracks: []*domain.Track{mockTrack("a")}},
			wantIdentifier: "https://example.com/a.mp3",
		},
		{
			name:    "blank query",
			input:   SearchInput{Query: "   "},
			wantErr: ErrEmptyQuery,
		},
		{
			name:    "empty result",
			input:   SearchInput{Query: "nothing"},
			result:  &domain.SearchResult{Type: domain.SearchResultEmpty},
			wantErr: ErrNoResults,
		},
		{
			name:    "load error result",
			input:   SearchInput{Query: "broken"},
			result:  &domain.SearchResult{Type: domain.SearchResultError},
			wantErr: ErrNoResults,
		},
		{
			name:    "resolver failure",
			input:   SearchInput{Query: "song"},
			loadErr: errEngine,
			wantErr: errEngine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &mockTrackResolver{loadResult: tt.result, loadErr: tt.loadErr}
			service := NewTrackLoaderService(resolver)

			result, err := service.Search(context.Background(), tt.input)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr != nil {
				return
			}
			if result != tt.result {
				t.Error("expected resolver result to be returned")
			}
			if got := resolver.lastQuery.Identifier(); got != tt.wantIdentifier {
				t.Errorf("identifier = %q, expected %q", got, tt.wantIdentifier)
			}
		})
	}
}

func TestTrackLoaderService_SearchTracks(t *testing.T) {
	tracks := []*domain.Track{mockTrack("a"), mockTrack("b"), mockTrack("c")}

	t.Run("limits tracks", func(t *testing.T) {
		resolver := &mockTrackResolver{loadResult: &domain.SearchResult{
			Type:         domain.SearchResultPlaylist,
			PlaylistName: "mix",
			Tracks:       tracks,
		}}
		service := NewTrackLoaderService(resolver)

		output, err := service.SearchTracks(context.Background(), SearchTracksInput{Query: "mix", Limit: 2})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(output.Tracks) != 2 || output.TrackCount != 3 {
			t.Errorf("got %d tracks of %d, expected 2 of 3", len(output.Tracks), output.TrackCount)
		}
		if !output.IsPlaylist || output.PlaylistName != "mix" {
			t.Errorf("expected playlist metadata, got %+v", output)
		}
	})

	t.Run("blank query yields nothing", func(t *testing.T) {
		service := NewTrackLoaderService(&mockTrackResolver{})

		output, err := service.SearchTracks(context.Background(), SearchTracksInput{Query: ""})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(output.Tracks) != 0 {
			t.Errorf("expected no tracks, got %d", len(output.Tracks))
		}
	})

	t.Run("resolver failure propagates", func(t *testing.T) {
		service := NewTrackLoaderService(&mockTrackResolver{loadErr: errEngine})

		if _, err := service.SearchTracks(context.Background(), SearchTracksInput{Query: "x"}); !errors.Is(err, errEngine) {
			t.Errorf("expected resolver error, got %v", err)
		}
	})
}
