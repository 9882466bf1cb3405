package ports

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/gabby/internal/modules/music_player/domain"
)

// VoiceConnection defines the interface for voice channel connection operations.
type VoiceConnection interface {
	// IsConnected reports whether the bot is connected to a voice channel in the guild.
	IsConnected(guildID snowflake.ID) bool

	// Connect joins the specified voice channel.
	Connect(ctx context.Context, guildID, channelID snowflake.ID) error

	// Disconnect leaves the guild's voice channel and destroys its player.
	Disconnect(ctx context.Context, guildID snowflake.ID) error
}

// AudioPlayer defines the interface for audio playback operations.
// State and CurrentTrack are read live from the engine.
type AudioPlayer interface {
	// State returns the engine's current playback state for the guild.
	State(guildID snowflake.ID) domain.PlaybackState

	// CurrentTrack returns the track the engine is playing, or nil.
	CurrentTrack(guildID snowflake.ID) *domain.Track

	// Position returns the playback position of the current track.
	Position(guildID snowflake.ID) time.Duration

	// PlayNow starts the track immediately, replacing any current track.
	PlayNow(ctx context.Context, guildID snowflake.ID, track *domain.Track) error

	Pause(ctx context.Context, guildID snowflake.ID) error
	Resume(ctx context.Context, guildID snowflake.ID) error

	// Stop ends playback and drops the engine's queue.
	Stop(ctx context.Context, guildID snowflake.ID) error

	// Skip ends the current track and starts the next queued one.
	// Returns the new current track, or nil if the engine's queue was empty.
	Skip(ctx context.Context, guildID snowflake.ID) (*domain.Track, error)

	Seek(ctx context.Context, guildID snowflake.ID, position time.Duration) error

	// SetVolume sets the player volume (1-100).
	SetVolume(ctx context.Context, guildID snowflake.ID, volume int) error
}

// RemoteQueue defines the engine's own queue of tracks waiting behind the current one.
type RemoteQueue interface {
	// EnqueueRemote adds the track to the end of the engine's queue.
	EnqueueRemote(ctx context.Context, guildID snowflake.ID, track *domain.Track) error

	// RemoveFromRemoteQueue removes count tracks starting at the 0-based index start
	// and returns the tracks it removed, in order.
	RemoveFromRemoteQueue(ctx context.Context, guildID snowflake.ID, start, count int) ([]*domain.Track, error)

	// RemoteQueueLen returns the number of tracks in the engine's queue.
	RemoteQueueLen(guildID snowflake.ID) int
}

// PlaybackEngine is the external audio engine as seen by the orchestrator.
type PlaybackEngine interface {
	VoiceConnection
	AudioPlayer
	RemoteQueue
}
