package usecases

import (
	"slices"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/gabby/internal/modules/music_player/application/ports"
	"github.com/sglre6355/gabby/internal/modules/music_player/domain"
)

// QueueSuggestion is an upcoming track offered when completing a queue position.
type QueueSuggestion struct {
	Position int // 1-indexed upcoming position
	Track    *domain.Track
}

// AutocompleteService handles autocomplete-related operations.
type AutocompleteService struct {
	store  domain.GuildQueueStore
	player ports.AudioPlayer
}

// NewAutocompleteService creates a new AutocompleteService.
func NewAutocompleteService(
	store domain.GuildQueueStore,
	player ports.AudioPlayer,
) *AutocompleteService {
	return &AutocompleteService{
		store:  store,
		player: player,
	}
}

// QueueSuggestions returns up to limit upcoming tracks for the guild.
// Upcoming tracks are the ones queued after the engine's current track.
func (s *AutocompleteService) QueueSuggestions(guildID snowflake.ID, limit int) []QueueSuggestion {
	items := s.store.Snapshot(guildID)
	if current := s.player.CurrentTrack(guildID); current != nil {
		i := slices.IndexFunc(items, func(item domain.QueuedItem) bool { return item.TrackID() == current.ID })
		items = items[i+1:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	suggestions := make([]QueueSuggestion, len(items))
	for i, item := range items {
		suggestions[i] = QueueSuggestion{Position: i + 1, Track: item.Track}
	}
	return suggestions
}
