package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/gabby/internal/bot"
	"github.com/sglre6355/gabby/internal/modules/music_player/application/usecases"
	"golang.org/x/time/rate"
)

// commandTimeout bounds the engine and API calls made for one command.
const commandTimeout = 30 * time.Second

// HandlerConfig holds presentation settings.
type HandlerConfig struct {
	// DefaultVolume is applied when joining without an explicit volume.
	DefaultVolume int
	// MessagesPerSecond paces multi-message replies such as lyrics.
	MessagesPerSecond float64
}

// CommandHandlers holds all the command handlers.
type CommandHandlers struct {
	orchestrator *usecases.Orchestrator
	trackLoader  *usecases.TrackLoaderService
	votes        *usecases.VoteSkipCoordinator

	defaultVolume int
	pageLimiter   *rate.Limiter
	now           func() time.Time
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(
	orchestrator *usecases.Orchestrator,
	trackLoader *usecases.TrackLoaderService,
	votes *usecases.VoteSkipCoordinator,
	config HandlerConfig,
) *CommandHandlers {
	if config.DefaultVolume < usecases.MinVolume || config.DefaultVolume > usecases.MaxVolume {
		config.DefaultVolume = usecases.MaxVolume
	}
	if config.MessagesPerSecond <= 0 {
		config.MessagesPerSecond = 1
	}

	return &CommandHandlers{
		orchestrator:  orchestrator,
		trackLoader:   trackLoader,
		votes:         votes,
		defaultVolume: config.DefaultVolume,
		pageLimiter:   rate.NewLimiter(rate.Limit(config.MessagesPerSecond), 1),
		now:           time.Now,
	}
}

// HandleJoin handles the /join command.
func (h *CommandHandlers) HandleJoin(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	guildID, requester, err := parseInvoker(i)
	if err != nil {
		return respondError(r, capitalize(err.Error()))
	}

	options := optionMap(i.ApplicationCommandData().Options)

	var voiceChannelID snowflake.ID
	if opt, ok := options["channel"]; ok {
		voiceChannelID, err = snowflake.Parse(opt.ChannelValue(s).ID)
		if err != nil {
			return respondError(r, "Invalid voice channel")
		}
	}

	volume := h.defaultVolume
	if opt, ok := options["volume"]; ok {
		volume = int(opt.IntValue())
	}

	output, err := h.orchestrator.Join(ctx, usecases.JoinInput{
		GuildID:        guildID,
		UserID:         requester.ID,
		VoiceChannelID: voiceChannelID,
		Volume:         volume,
	})
	if err != nil {
		if output != nil && errors.Is(err, usecases.ErrPartialFailure) {
			return respondEmbed(r, &discordgo.MessageEmbed{
				Description: fmt.Sprintf("Connected to <#%d>, but the volume could not be set.",
					output.VoiceChannelID),
				Color: colorWarning,
			})
		}
		return respondError(r, errorMessage(err))
	}

	return respondSuccess(r, fmt.Sprintf("Connected to <#%d>.", output.VoiceChannelID))
}

// HandleLeave handles the /leave command.
func (h *CommandHandlers) HandleLeave(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	output, err := h.orchestrator.Leave(ctx, guildID)
	if err != nil {
		if output != nil && errors.Is(err, usecases.ErrPartialFailure) {
			return respondEmbed(r, &discordgo.MessageEmbed{
				Description: "Stopped playback, but I could not leave the voice channel.",
				Color:       colorWarning,
			})
		}
		return respondError(r, errorMessage(err))
	}

	description := "Disconnected."
	if output.ClearedCount > 0 {
		description = fmt.Sprintf("Disconnected and cleared %d queued tracks.", output.ClearedCount)
	}
	return respondSuccess(r, description)
}

// HandlePlay handles the /play command.
// It joins the invoker's voice channel first when the bot is not connected.
func (h *CommandHandlers) HandlePlay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	guildID, requester, err := parseInvoker(i)
	if err != nil {
		return respondError(r, capitalize(err.Error()))
	}

	options := optionMap(i.ApplicationCommandData().Options)
	var query string
	if opt, ok := options["query"]; ok {
		query = opt.StringValue()
	}
	source := usecases.SourceYouTube
	if opt, ok := options["source"]; ok {
		if source, err = usecases.ParseSearchSource(opt.StringValue()); err != nil {
			return respondError(r, "Unknown search source")
		}
	}

	// Loading tracks can exceed the interaction response deadline.
	if err := respondDeferred(r); err != nil {
		return err
	}

	_, err = h.orchestrator.Join(ctx, usecases.JoinInput{
		GuildID: guildID,
		UserID:  requester.ID,
		Volume:  h.defaultVolume,
	})
	if err != nil && !errors.Is(err, usecases.ErrAlreadyConnected) && !errors.Is(err, usecases.ErrPartialFailure) {
		return editError(r, errorMessage(err))
	}

	result, err := h.trackLoader.Search(ctx, usecases.SearchInput{
		Query:  query,
		Source: source,
	})
	if err != nil {
		if !errors.Is(err, usecases.ErrNoResults) && !errors.Is(err, usecases.ErrEmptyQuery) {
			slog.Error("failed to search tracks", "guild", guildID, "query", query, "error", err)
			return editError(r, "Failed to load tracks. Please try again.")
		}
		return editError(r, errorMessage(err))
	}

	output, err := h.orchestrator.Enqueue(ctx, usecases.EnqueueInput{
		GuildID:   guildID,
		Result:    result,
		Requester: requester,
	})
	if err != nil {
		if output != nil && errors.Is(err, usecases.ErrPartialFailure) {
			return editEmbed(r, &discordgo.MessageEmbed{
				Description: fmt.Sprintf("Added **%d of %d tracks** before the player failed.",
					len(output.Items), len(result.Selection())),
				Color: colorWarning,
			})
		}
		return editError(r, errorMessage(err))
	}

	return editEmbed(r, &discordgo.MessageEmbed{
		Description: enqueueDescription(output),
		Color:       colorSuccess,
	})
}

func enqueueDescription(output *usecases.EnqueueOutput) string {
	first := output.Items[0].Track

	switch {
	case output.PlaylistName != "" && output.StartedPlaying:
		return fmt.Sprintf("Playing %s and added **%d more tracks** from playlist **%s**.",
			trackLink(first), len(output.Items)-1, output.PlaylistName)
	case output.PlaylistName != "":
		return fmt.Sprintf("Added **%d tracks** from playlist **%s** to the queue.",
			len(output.Items), output.PlaylistName)
	case output.StartedPlaying:
		return fmt.Sprintf("Now playing %s `%s`.", trackLink(first), first.FormattedDuration())
	default:
		return fmt.Sprintf("Added %s to the queue at position **%d**.", trackLink(first), output.Position)
	}
}

// HandleStop handles the /stop command.
func (h *CommandHandlers) HandleStop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	output, err := h.orchestrator.Stop(ctx, guildID)
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	return respondSuccess(r, fmt.Sprintf("Stopped playback and cleared %d tracks.", output.ClearedCount))
}

// HandlePause handles the /pause command.
func (h *CommandHandlers) HandlePause(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.handleGuildAction(i, r, h.orchestrator.Pause, "Paused.")
}

// HandleResume handles the /resume command.
func (h *CommandHandlers) HandleResume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.handleGuildAction(i, r, h.orchestrator.Resume, "Resumed.")
}

func (h *CommandHandlers) handleGuildAction(
	i *discordgo.InteractionCreate,
	r bot.Responder,
	action func(ctx context.Context, guildID snowflake.ID) error,
	success string,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	if err := action(ctx, guildID); err != nil {
		return respondError(r, errorMessage(err))
	}
	return respondSuccess(r, success)
}

// HandleSkip handles the /skip command.
// Only listeners in the bot's voice channel may vote.
func (h *CommandHandlers) HandleSkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	guildID, requester, err := parseInvoker(i)
	if err != nil {
		return respondError(r, capitalize(err.Error()))
	}

	output, err := h.orchestrator.Skip(ctx, usecases.SkipInput{
		GuildID:   guildID,
		Requester: requester.ID,
	})
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	if !output.Skipped() {
		return respondEmbed(r, &discordgo.MessageEmbed{
			Description: voteDescription(output.Vote, h.votes.Threshold()),
			Color:       colorInfo,
		})
	}

	description := fmt.Sprintf("Skipped %s.", trackLink(output.SkippedTrack))
	if output.NextTrack != nil {
		description += fmt.Sprintf("\nNow playing %s.", trackLink(output.NextTrack))
	} else {
		description += "\nThe queue is empty."
	}
	return respondSuccess(r, description)
}

// HandleSeek handles the /seek command.
func (h *CommandHandlers) HandleSeek(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	var raw string
	if opt, ok := optionMap(i.ApplicationCommandData().Options)["position"]; ok {
		raw = opt.StringValue()
	}
	position, err := parsePosition(raw)
	if err != nil {
		return respondError(r, "Invalid position. Use a format such as 1:30, 01:02:03 or 90s.")
	}

	if err := h.orchestrator.Seek(ctx, guildID, position); err != nil {
		return respondError(r, errorMessage(err))
	}

	return respondSuccess(r, fmt.Sprintf("Jumped to `%s`.", usecases.FormatDuration(position)))
}

// HandleVolume handles the /volume command.
func (h *CommandHandlers) HandleVolume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	var volume int
	if opt, ok := optionMap(i.ApplicationCommandData().Options)["level"]; ok {
		volume = int(opt.IntValue())
	}

	if err := h.orchestrator.SetVolume(ctx, guildID, volume); err != nil {
		return respondError(r, errorMessage(err))
	}

	return respondSuccess(r, fmt.Sprintf("Volume set to **%d**.", volume))
}

// HandleNowPlaying handles the /nowplaying command.
func (h *CommandHandlers) HandleNowPlaying(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	snapshot, err := h.orchestrator.QuerySnapshot(guildID)
	if err != nil {
		return respondError(r, errorMessage(err))
	}
	if snapshot.CurrentTrack == nil {
		return respondError(r, "Nothing is playing.")
	}

	return respondEmbed(r, nowPlayingEmbed(snapshot))
}

// HandleQueue handles the /queue command.
func (h *CommandHandlers) HandleQueue(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return respondError(r, "Invalid subcommand")
	}

	subCmd := options[0]
	switch subCmd.Name {
	case "list":
		return h.handleQueueList(s, i, r, subCmd.Options)
	case "remove":
		return h.handleQueueRemove(s, i, r, subCmd.Options)
	default:
		return respondError(r, "Unknown subcommand")
	}
}

func (h *CommandHandlers) handleQueueList(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
	options []*discordgo.ApplicationCommandInteractionDataOption,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	page := 1
	if opt, ok := optionMap(options)["page"]; ok {
		page = int(opt.IntValue())
	}

	snapshot, err := h.orchestrator.QuerySnapshot(guildID)
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	return respondEmbed(r, queueEmbed(snapshot, page, h.now()))
}

func (h *CommandHandlers) handleQueueRemove(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
	options []*discordgo.ApplicationCommandInteractionDataOption,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	input := usecases.RemoveInput{GuildID: guildID}
	opts := optionMap(options)
	if opt, ok := opts["position"]; ok {
		input.Position = int(opt.IntValue())
	}
	if opt, ok := opts["end_position"]; ok {
		input.EndPosition = int(opt.IntValue())
	}

	output, err := h.orchestrator.RemoveFromQueue(ctx, input)
	if err != nil {
		if output != nil && errors.Is(err, usecases.ErrPartialFailure) {
			return respondEmbed(r, &discordgo.MessageEmbed{
				Description: removeDescription(output.Removed) +
					"\nThe player removed more than that, so the queue listing may be out of date.",
				Color: colorWarning,
			})
		}
		return respondError(r, errorMessage(err))
	}

	return respondSuccess(r, removeDescription(output.Removed))
}

// removeDescription summarises the tracks taken off the queue.
func removeDescription(removed []usecases.QueuedItem) string {
	switch len(removed) {
	case 0:
		return "Removed nothing from the queue listing."
	case 1:
		return fmt.Sprintf("Removed %s.", trackLink(removed[0].Track))
	default:
		return fmt.Sprintf("Removed **%d tracks**.", len(removed))
	}
}

// HandleLyrics handles the /lyrics command.
// The first page replaces the deferred response and the rest follow as
// separate messages, paced by the page limiter.
func (h *CommandHandlers) HandleLyrics(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondError(r, "Invalid guild")
	}

	if err := respondDeferred(r); err != nil {
		return err
	}

	output, err := h.orchestrator.Lyrics(ctx, guildID)
	if err != nil {
		if !errors.Is(err, usecases.ErrNoLyrics) && !errors.Is(err, usecases.ErrNotConnected) &&
			!errors.Is(err, usecases.ErrInvalidStateTransition) {
			slog.Error("failed to fetch lyrics", "guild", guildID, "error", err)
			return editError(r, "Failed to fetch lyrics. Please try again.")
		}
		return editError(r, errorMessage(err))
	}

	first := true
	for page := range output.Pages {
		embed := &discordgo.MessageEmbed{
			Description: page,
			Color:       colorInfo,
		}

		if first {
			first = false
			embed.Title = fmt.Sprintf("%s - %s", output.Track.Title, output.Track.Author)
			if err := editEmbed(r, embed); err != nil {
				return err
			}
			continue
		}

		if err := h.pageLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("failed to wait for message rate limit: %w", err)
		}
		if err := r.Followup(&discordgo.WebhookParams{Embeds: []*discordgo.MessageEmbed{embed}}); err != nil {
			return err
		}
	}

	return nil
}

// Interaction helpers.

type optionsByName = map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) optionsByName {
	m := make(optionsByName, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

// parseInvoker returns the guild and the member who invoked the interaction.
func parseInvoker(i *discordgo.InteractionCreate) (snowflake.ID, usecases.Requester, error) {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return 0, usecases.Requester{}, errors.New("invalid guild")
	}
	if i.Member == nil || i.Member.User == nil {
		return 0, usecases.Requester{}, errors.New("this command can only be used in a server")
	}

	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return 0, usecases.Requester{}, errors.New("invalid user")
	}

	return guildID, usecases.Requester{ID: userID, DisplayName: getDisplayName(i.Member)}, nil
}

// getDisplayName returns the best display name for a member.
// Priority: Nick > GlobalName > Username
func getDisplayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}

// parsePosition parses a seek position given as [[hh:]mm:]ss, a Go duration
// such as 1m30s, or a plain number of seconds.
func parsePosition(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty position")
	}

	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) > 3 {
			return 0, fmt.Errorf("invalid position %q", s)
		}
		var total time.Duration
		for idx, part := range parts {
			n, err := strconv.Atoi(part)
			if err != nil || n < 0 || (idx > 0 && n >= 60) {
				return 0, fmt.Errorf("invalid position %q", s)
			}
			total = total*60 + time.Duration(n)
		}
		return total * time.Second, nil
	}

	if seconds, err := strconv.Atoi(s); err == nil {
		if seconds < 0 {
			return 0, fmt.Errorf("invalid position %q", s)
		}
		return time.Duration(seconds) * time.Second, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid position %q", s)
	}
	return d, nil
}
