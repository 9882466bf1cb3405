package discord

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/gabby/internal/modules/music_player/application/usecases"
)

const (
	// maxChoices is the Discord limit on autocomplete choices.
	maxChoices = 25
	// maxChoiceNameLength is the Discord limit on a choice name.
	maxChoiceNameLength = 100
	// minQueryLength is the shortest query worth searching for.
	minQueryLength = 2

	autocompleteTimeout = 3 * time.Second
)

// AutocompleteHandler handles autocomplete requests.
type AutocompleteHandler struct {
	autocomplete *usecases.AutocompleteService
	trackLoader  *usecases.TrackLoaderService
}

// NewAutocompleteHandler creates a new AutocompleteHandler.
func NewAutocompleteHandler(
	autocomplete *usecases.AutocompleteService,
	trackLoader *usecases.TrackLoaderService,
) *AutocompleteHandler {
	return &AutocompleteHandler{
		autocomplete: autocomplete,
		trackLoader:  trackLoader,
	}
}

// HandlePlay handles autocomplete for play command.
func (h *AutocompleteHandler) HandlePlay(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), autocompleteTimeout)
	defer cancel()

	options := optionMap(i.ApplicationCommandData().Options)

	var query string
	if opt, ok := options["query"]; ok && opt.Focused {
		query = opt.StringValue()
	}
	if len([]rune(query)) < minQueryLength {
		respondChoices(s, i, nil)
		return
	}

	source := usecases.SourceYouTube
	if opt, ok := options["source"]; ok {
		if parsed, err := usecases.ParseSearchSource(opt.StringValue()); err == nil {
			source = parsed
		}
	}

	output, err := h.trackLoader.SearchTracks(ctx, usecases.SearchTracksInput{
		Query:  query,
		Source: source,
		Limit:  maxChoices - 1,
	})
	if err != nil {
		slog.Debug("autocomplete search failed", "guild", i.GuildID, "query", query, "error", err)
		respondChoices(s, i, nil)
		return
	}

	respondChoices(s, i, playChoices(query, output))
}

func playChoices(query string, output *usecases.SearchTracksOutput) []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(output.Tracks)+1)

	if output.IsPlaylist {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name: truncate(
				fmt.Sprintf("📋 %s (%d tracks)", output.PlaylistName, output.TrackCount),
				maxChoiceNameLength,
			),
			Value: query,
		})
	}
	for idx, track := range output.Tracks {
		// Tracks without a URL cannot be replayed from the choice value.
		if track.URL == "" {
			continue
		}
		name := fmt.Sprintf("🎵 %s - %s", track.Title, track.Author)
		if output.IsPlaylist {
			name = fmt.Sprintf("🎵 %d. %s - %s", idx+1, track.Title, track.Author)
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  truncate(name, maxChoiceNameLength),
			Value: track.URL,
		})
	}

	return choices
}

// HandleQueuePosition handles autocomplete for queue position options.
func (h *AutocompleteHandler) HandleQueuePosition(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		slog.Warn("failed to parse guild ID in autocomplete", "error", err, "guild", i.GuildID)
		return
	}

	suggestions := h.autocomplete.QueueSuggestions(guildID, maxChoices)
	respondChoices(s, i, positionChoices(suggestions))
}

func positionChoices(suggestions []usecases.QueueSuggestion) []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(suggestions))
	for _, suggestion := range suggestions {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name: truncate(
				fmt.Sprintf("%d. %s", suggestion.Position, suggestion.Track.Title),
				maxChoiceNameLength,
			),
			Value: suggestion.Position,
		})
	}
	return choices
}

func respondChoices(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	choices []*discordgo.ApplicationCommandOptionChoice,
) {
	if choices == nil {
		choices = []*discordgo.ApplicationCommandOptionChoice{}
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: choices,
		},
	})
	if err != nil {
		slog.Debug("failed to respond to autocomplete", "guild", i.GuildID, "error", err)
	}
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
