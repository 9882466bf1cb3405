package usecases

import (
	"context"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
)

// JoinInput contains the input for the Join use case.
type JoinInput struct {
	GuildID        snowflake.ID
	UserID         snowflake.ID
	VoiceChannelID snowflake.ID // Optional: specific channel to join (0 means use user's channel)
	Volume         int
}

// JoinOutput contains the result of the Join use case.
type JoinOutput struct {
	VoiceChannelID snowflake.ID
}

// LeaveOutput contains the result of the Leave use case.
type LeaveOutput struct {
	ClearedCount int
}

// Join connects the bot to a voice channel and applies the initial volume.
func (o *Orchestrator) Join(ctx context.Context, input JoinInput) (*JoinOutput, error) {
	if input.Volume < MinVolume || input.Volume > MaxVolume {
		return nil, ErrInvalidVolume
	}

	voiceChannelID := input.VoiceChannelID
	if voiceChannelID == 0 {
		userChannel, err := o.voiceState.GetUserVoiceChannel(input.GuildID, input.UserID)
		if err != nil {
			return nil, err
		}
		if userChannel == 0 {
			return nil, ErrUserNotInVoice
		}
		voiceChannelID = userChannel
	}

	unlock := o.locks.lock(input.GuildID)
	defer unlock()

	if o.engine.IsConnected(input.GuildID) {
		return nil, ErrAlreadyConnected
	}

	if err := o.engine.Connect(ctx, input.GuildID, voiceChannelID); err != nil {
		return nil, &EngineFailureError{Op: "connect", Err: err}
	}

	session := o.store.EnsureSession(input.GuildID)
	session.SetVoiceChannelID(voiceChannelID)

	output := &JoinOutput{VoiceChannelID: voiceChannelID}

	if err := o.engine.SetVolume(ctx, input.GuildID, input.Volume); err != nil {
		slog.Error("joined voice channel but failed to set volume",
			"guild", input.GuildID, "channel", voiceChannelID, "error", err)
		return output, &PartialFailureError{
			Op:     "join",
			Detail: "connected without applying the volume",
			Err:    err,
		}
	}

	slog.Debug("joined voice channel", "guild", input.GuildID, "channel", voiceChannelID)

	return output, nil
}

// Leave disconnects the bot and forgets the guild's queue and votes.
func (o *Orchestrator) Leave(ctx context.Context, guildID snowflake.ID) (*LeaveOutput, error) {
	unlock := o.locks.lock(guildID)
	defer unlock()

	if err := o.requireConnected(guildID); err != nil {
		return nil, err
	}

	if err := o.engine.Disconnect(ctx, guildID); err != nil {
		if o.engine.IsConnected(guildID) {
			return nil, &EngineFailureError{Op: "disconnect", Err: err}
		}

		// The player is gone even though the voice channel was not left.
		cleared := o.store.Clear(guildID)
		o.votes.ClearVotes(guildID)
		slog.Error("destroyed player but failed to leave voice channel",
			"guild", guildID, "cleared", cleared, "error", err)
		return &LeaveOutput{ClearedCount: cleared}, &PartialFailureError{
			Op:     "leave",
			Detail: "playback ended but the voice channel was not left",
			Err:    err,
		}
	}

	cleared := o.store.Clear(guildID)
	o.votes.ClearVotes(guildID)

	slog.Debug("left voice channel", "guild", guildID, "cleared", cleared)

	return &LeaveOutput{ClearedCount: cleared}, nil
}

// HandleBotDisconnected clears the guild's bookkeeping after the bot was
// removed from voice by something other than Leave.
func (o *Orchestrator) HandleBotDisconnected(_ context.Context, guildID snowflake.ID) {
	unlock := o.locks.lock(guildID)
	defer unlock()

	if o.store.Session(guildID) == nil {
		return
	}

	cleared := o.store.Clear(guildID)
	o.votes.ClearVotes(guildID)

	slog.Info("bot disconnected from voice", "guild", guildID, "cleared", cleared)
}

// HandleBotMoved records the channel the bot was dragged into. Votes cast by
// the previous channel's listeners are dropped.
func (o *Orchestrator) HandleBotMoved(_ context.Context, guildID, channelID snowflake.ID) {
	unlock := o.locks.lock(guildID)
	defer unlock()

	session := o.store.Session(guildID)
	if session == nil {
		return
	}

	session.SetVoiceChannelID(channelID)
	o.votes.ClearVotes(guildID)

	slog.Info("bot moved to another voice channel", "guild", guildID, "channel", channelID)
}
