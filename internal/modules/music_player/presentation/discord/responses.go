package discord

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"
	"github.com/sglre6355/gabby/internal/bot"
	"github.com/sglre6355/gabby/internal/modules/music_player/application/usecases"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorInfo    = 0x3498DB
	colorWarning = 0xF1C40F
	colorError   = 0xE74C3C
)

// progressBarWidth is the number of segments in the now playing progress bar.
const progressBarWidth = 20

// errorMessage turns a use case error into text for the user.
func errorMessage(err error) string {
	var stateErr *usecases.InvalidStateTransitionError
	var partialErr *usecases.PartialFailureError
	var engineErr *usecases.EngineFailureError

	switch {
	case errors.As(err, &stateErr):
		switch {
		case stateErr.Actual == usecases.StateIdle:
			return "Nothing is playing."
		case stateErr.Required == usecases.StatePaused:
			return "Playback is not paused."
		case stateErr.Actual == usecases.StatePaused:
			return "Playback is paused. Use /resume first."
		default:
			return fmt.Sprintf("Playback must be %s.", stateErr.Required)
		}
	case errors.As(err, &partialErr):
		return fmt.Sprintf("Only partially done (%s): %v", partialErr.Detail, partialErr.Err)
	case errors.As(err, &engineErr):
		return fmt.Sprintf("The player failed to %s. Please try again.", engineErr.Op)
	case errors.Is(err, usecases.ErrNotConnected):
		return "I'm not connected to a voice channel. Use /join first."
	case errors.Is(err, usecases.ErrAlreadyConnected):
		return "I'm already connected to a voice channel."
	case errors.Is(err, usecases.ErrAlreadyVoted):
		return "You have already voted to skip this track."
	case errors.Is(err, usecases.ErrOutOfRange):
		return "That position is not in the queue."
	case errors.Is(err, usecases.ErrInvalidDuration):
		return "That position is outside the current track."
	case errors.Is(err, usecases.ErrUserNotInVoice),
		errors.Is(err, usecases.ErrNotListening),
		errors.Is(err, usecases.ErrInvalidVolume),
		errors.Is(err, usecases.ErrNoResults),
		errors.Is(err, usecases.ErrEmptyQuery),
		errors.Is(err, usecases.ErrNoLyrics):
		return capitalize(err.Error()) + "."
	default:
		slog.Error("unexpected music player error", "error", err)
		return "Something went wrong. Please try again."
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Response helpers.

func respondEmbed(r bot.Responder, embed *discordgo.MessageEmbed) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

func respondSuccess(r bot.Responder, description string) error {
	return respondEmbed(r, &discordgo.MessageEmbed{
		Description: description,
		Color:       colorSuccess,
	})
}

func respondError(r bot.Responder, message string) error {
	return respondEmbed(r, errorEmbed(message))
}

func respondDeferred(r bot.Responder) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

// editEmbed replaces a deferred response with the embed.
func editEmbed(r bot.Responder, embed *discordgo.MessageEmbed) error {
	embeds := []*discordgo.MessageEmbed{embed}
	return r.Edit(&discordgo.WebhookEdit{Embeds: &embeds})
}

func editError(r bot.Responder, message string) error {
	return editEmbed(r, errorEmbed(message))
}

func errorEmbed(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Error",
		Description: message,
		Color:       colorError,
	}
}

// trackLink renders the track title, linked when it has a URL.
func trackLink(track *usecases.Track) string {
	if track.URL != "" {
		return fmt.Sprintf("[%s](%s)", track.Title, track.URL)
	}
	return fmt.Sprintf("**%s**", track.Title)
}

// writeQueueLine writes a single queue line to the string builder.
// Escapes period to prevent Discord markdown list formatting.
func writeQueueLine(sb *strings.Builder, position int, item usecases.QueuedItem, now time.Time) {
	fmt.Fprintf(sb, "%d\\. %s - %s `%s`\n", position, trackLink(item.Track),
		item.Track.Author, item.Track.FormattedDuration())
	fmt.Fprintf(sb, "-# requested by %s %s\n",
		item.Requester.DisplayName, humanize.RelTime(item.EnqueuedAt, now, "ago", "from now"))
}

// queueEmbed renders one page of the queue snapshot.
func queueEmbed(snapshot *usecases.Snapshot, page int, now time.Time) *discordgo.MessageEmbed {
	items, page, totalPages := snapshot.Page(page, usecases.DefaultPageSize)

	var sb strings.Builder
	if snapshot.CurrentTrack != nil {
		sb.WriteString("### Now Playing\n")
		fmt.Fprintf(&sb, "%s - %s `%s`\n", trackLink(snapshot.CurrentTrack),
			snapshot.CurrentTrack.Author, snapshot.CurrentTrack.FormattedDuration())
	}

	if len(items) == 0 {
		if snapshot.CurrentTrack == nil {
			sb.WriteString("Queue is empty.")
		}
	} else {
		sb.WriteString("### Up Next\n")
		start := (page - 1) * usecases.DefaultPageSize
		for idx, item := range items {
			writeQueueLine(&sb, start+idx+1, item, now)
		}
	}

	return &discordgo.MessageEmbed{
		Title:       "Queue",
		Description: sb.String(),
		Color:       colorInfo,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Page %d/%d • %s upcoming • %s",
				page, totalPages, humanize.Comma(int64(len(snapshot.Upcoming))),
				totalDuration(snapshot.Upcoming)),
		},
	}
}

// totalDuration sums the queued tracks, ignoring streams.
func totalDuration(items []usecases.QueuedItem) string {
	var total time.Duration
	streams := 0
	for _, item := range items {
		if item.Track.IsStream {
			streams++
			continue
		}
		total += item.Track.Duration
	}
	if streams > 0 {
		return fmt.Sprintf("%s + %d live", usecases.FormatDuration(total), streams)
	}
	return usecases.FormatDuration(total)
}

// nowPlayingEmbed renders the current track with a progress bar.
func nowPlayingEmbed(snapshot *usecases.Snapshot) *discordgo.MessageEmbed {
	track := snapshot.CurrentTrack

	title := "Now Playing"
	if snapshot.State == usecases.StatePaused {
		title = "Paused"
	}

	var progress string
	if track.IsStream {
		progress = "`LIVE`"
	} else {
		progress = fmt.Sprintf("%s `%s / %s`", progressBar(snapshot.Position, track.Duration),
			usecases.FormatDuration(snapshot.Position), track.FormattedDuration())
	}

	description := fmt.Sprintf("%s\n%s\n\n%s", trackLink(track), track.Author, progress)
	if snapshot.SkipVotes > 0 {
		description += fmt.Sprintf("\nSkip votes: **%d**", snapshot.SkipVotes)
	}

	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       colorInfo,
	}
	if track.ArtworkURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: track.ArtworkURL}
	}
	if snapshot.CurrentRequester != nil {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: "Requested by " + snapshot.CurrentRequester.DisplayName,
		}
	}
	return embed
}

func progressBar(position, duration time.Duration) string {
	filled := 0
	if duration > 0 {
		filled = int(int64(progressBarWidth) * int64(min(max(position, 0), duration)) / int64(duration))
	}
	return strings.Repeat("▬", filled) + "🔘" + strings.Repeat("▬", progressBarWidth-filled)
}

// voteDescription summarises a skip vote that did not reach the threshold.
func voteDescription(vote usecases.VoteOutcome, threshold float64) string {
	required := vote.Votes
	for vote.Eligible > 0 && float64(required)/float64(vote.Eligible) < threshold {
		required++
	}
	return fmt.Sprintf("Skip vote registered: **%d/%d** listeners (%.0f%%). %d more needed.",
		vote.Votes, vote.Eligible, vote.Percent(), required-vote.Votes)
}
