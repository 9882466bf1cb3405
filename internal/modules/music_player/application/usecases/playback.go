package usecases

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/gabby/internal/modules/music_player/domain"
)

// StopOutput contains the result of the Stop use case.
type StopOutput struct {
	ClearedCount int
}

// SkipInput contains the input for the Skip use case.
type SkipInput struct {
	GuildID   snowflake.ID
	Requester snowflake.ID
}

// SkipOutput contains the result of the Skip use case.
// SkippedTrack is nil when the vote did not reach the threshold.
type SkipOutput struct {
	Vote         domain.VoteOutcome
	SkippedTrack *domain.Track
	NextTrack    *domain.Track // nil if queue is empty
}

// Skipped reports whether the vote ended the track.
func (s *SkipOutput) Skipped() bool {
	return s.SkippedTrack != nil
}

// Pause pauses the current track.
func (o *Orchestrator) Pause(ctx context.Context, guildID snowflake.ID) error {
	unlock := o.locks.lock(guildID)
	defer unlock()

	if err := o.requireConnected(guildID); err != nil {
		return err
	}
	if _, err := o.requireState(guildID, domain.StatePlaying); err != nil {
		return err
	}

	if err := o.engine.Pause(ctx, guildID); err != nil {
		return &EngineFailureError{Op: "pause", Err: err}
	}

	slog.Debug("paused playback", "guild", guildID)
	return nil
}

// Resume resumes the paused track.
func (o *Orchestrator) Resume(ctx context.Context, guildID snowflake.ID) error {
	unlock := o.locks.lock(guildID)
	defer unlock()

	if err := o.requireConnected(guildID); err != nil {
		return err
	}
	if _, err := o.requireState(guildID, domain.StatePaused); err != nil {
		return err
	}

	if err := o.engine.Resume(ctx, guildID); err != nil {
		return &EngineFailureError{Op: "resume", Err: err}
	}

	slog.Debug("resumed playback", "guild", guildID)
	return nil
}

// Stop ends playback and clears the queue and votes.
func (o *Orchestrator) Stop(ctx context.Context, guildID snowflake.ID) (*StopOutput, error) {
	unlock := o.locks.lock(guildID)
	defer unlock()

	if err := o.requireConnected(guildID); err != nil {
		return nil, err
	}
	if _, err := o.requireState(guildID, domain.StatePlaying, domain.StatePaused); err != nil {
		return nil, err
	}

	if err := o.engine.Stop(ctx, guildID); err != nil {
		return nil, &EngineFailureError{Op: "stop", Err: err}
	}

	cleared := o.store.Clear(guildID)
	o.votes.ClearVotes(guildID)

	slog.Debug("stopped playback", "guild", guildID, "cleared", cleared)

	return &StopOutput{ClearedCount: cleared}, nil
}

// Skip registers the requester's vote to skip the current track and skips it
// once enough of the listeners in the bot's voice channel agree. Bots are not
// eligible to vote.
func (o *Orchestrator) Skip(ctx context.Context, input SkipInput) (*SkipOutput, error) {
	unlock := o.locks.lock(input.GuildID)
	defer unlock()

	if err := o.requireConnected(input.GuildID); err != nil {
		return nil, err
	}
	if _, err := o.requireState(input.GuildID, domain.StatePlaying); err != nil {
		return nil, err
	}

	current := o.engine.CurrentTrack(input.GuildID)
	if current == nil {
		return nil, &InvalidStateTransitionError{Required: domain.StatePlaying, Actual: domain.StateIdle}
	}
	o.syncWithEngine(input.GuildID)

	members, err := o.listeners(input.GuildID, input.Requester)
	if err != nil {
		return nil, err
	}

	eligible := domain.CountEligibleVoters(members)
	outcome, err := o.votes.RegisterVote(input.GuildID, current.ID, input.Requester, eligible)
	if err != nil {
		return nil, err
	}

	output := &SkipOutput{Vote: outcome}
	if !outcome.ThresholdMet {
		slog.Debug("registered skip vote",
			"guild", input.GuildID, "votes", outcome.Votes, "eligible", outcome.Eligible)
		return output, nil
	}

	next, err := o.engine.Skip(ctx, input.GuildID)
	if err != nil {
		return nil, &EngineFailureError{Op: "skip", Err: err}
	}

	o.store.RemoveByTrackID(input.GuildID, current.ID)
	o.votes.ClearVotes(input.GuildID)

	output.SkippedTrack = current
	output.NextTrack = next

	slog.Debug("skipped track", "guild", input.GuildID, "track", current.Title)

	return output, nil
}

// Seek moves playback of the current track to position.
func (o *Orchestrator) Seek(ctx context.Context, guildID snowflake.ID, position time.Duration) error {
	unlock := o.locks.lock(guildID)
	defer unlock()

	if err := o.requireConnected(guildID); err != nil {
		return err
	}
	if _, err := o.requireState(guildID, domain.StatePlaying); err != nil {
		return err
	}

	current := o.engine.CurrentTrack(guildID)
	if current == nil || !current.IsSeekable(position) {
		return ErrInvalidDuration
	}

	if err := o.engine.Seek(ctx, guildID, position); err != nil {
		return &EngineFailureError{Op: "seek", Err: err}
	}

	slog.Debug("seeked track", "guild", guildID, "position", position)
	return nil
}

// SetVolume changes the player volume.
func (o *Orchestrator) SetVolume(ctx context.Context, guildID snowflake.ID, volume int) error {
	if volume < MinVolume || volume > MaxVolume {
		return ErrInvalidVolume
	}

	unlock := o.locks.lock(guildID)
	defer unlock()

	if err := o.requireConnected(guildID); err != nil {
		return err
	}

	if err := o.engine.SetVolume(ctx, guildID, volume); err != nil {
		return &EngineFailureError{Op: "set volume", Err: err}
	}

	slog.Debug("set volume", "guild", guildID, "volume", volume)
	return nil
}

// HandleTrackEnded keeps the queue in step with the engine after a track
// ends on its own. Ends caused by Skip, Stop or Leave were already accounted
// for by those commands.
func (o *Orchestrator) HandleTrackEnded(_ context.Context, event domain.TrackEndedEvent) {
	if !event.Reason.ShouldAdvanceQueue() || event.Track == nil {
		return
	}

	unlock := o.locks.lock(event.GuildID)
	defer unlock()

	removed := o.store.RemoveByTrackID(event.GuildID, event.Track.ID)
	o.votes.ClearVotesFor(event.GuildID, event.Track.ID)

	slog.Debug("advanced queue after track end",
		"guild", event.GuildID,
		"reason", event.Reason,
		"removed", removed,
		"hasNext", event.Next != nil,
	)
}
