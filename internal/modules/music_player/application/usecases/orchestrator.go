package usecases

import (
	"log/slog"
	"slices"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/gabby/internal/modules/music_player/application/ports"
	"github.com/sglre6355/gabby/internal/modules/music_player/domain"
)

const (
	MinVolume = 1
	MaxVolume = 100
)

// OrchestratorConfig holds the tunables of an Orchestrator.
type OrchestratorConfig struct {
	LyricsMinChunk int
	LyricsMaxChunk int
}

// Orchestrator coordinates each guild's queue mirror and skip votes with the
// playback engine. Every command for a guild runs under that guild's lock and
// reads the engine's live state before acting.
type Orchestrator struct {
	store      domain.GuildQueueStore
	engine     ports.PlaybackEngine
	votes      *VoteSkipCoordinator
	voiceState ports.VoiceStateProvider
	lyrics     ports.LyricsProvider
	locks      *guildLocks

	lyricsMinChunk int
	lyricsMaxChunk int
}

// NewOrchestrator creates a new Orchestrator. lyrics may be nil, in which case
// Lyrics always returns ErrNoLyrics.
func NewOrchestrator(
	store domain.GuildQueueStore,
	engine ports.PlaybackEngine,
	votes *VoteSkipCoordinator,
	voiceState ports.VoiceStateProvider,
	lyrics ports.LyricsProvider,
	config OrchestratorConfig,
) *Orchestrator {
	if config.LyricsMinChunk <= 0 {
		config.LyricsMinChunk = domain.DefaultLyricsMinChunk
	}
	if config.LyricsMaxChunk <= config.LyricsMinChunk {
		config.LyricsMaxChunk = max(domain.DefaultLyricsMaxChunk, config.LyricsMinChunk+1)
	}

	return &Orchestrator{
		store:          store,
		engine:         engine,
		votes:          votes,
		voiceState:     voiceState,
		lyrics:         lyrics,
		locks:          newGuildLocks(),
		lyricsMinChunk: config.LyricsMinChunk,
		lyricsMaxChunk: config.LyricsMaxChunk,
	}
}

// requireConnected returns ErrNotConnected unless the engine holds a voice connection.
func (o *Orchestrator) requireConnected(guildID snowflake.ID) error {
	if !o.engine.IsConnected(guildID) {
		return ErrNotConnected
	}
	return nil
}

// requireState returns an InvalidStateTransitionError unless the engine is in
// one of allowed. The first allowed state is reported as the requirement.
func (o *Orchestrator) requireState(
	guildID snowflake.ID,
	allowed ...domain.PlaybackState,
) (domain.PlaybackState, error) {
	actual := o.engine.State(guildID)
	for _, s := range allowed {
		if actual == s {
			return actual, nil
		}
	}
	return actual, &InvalidStateTransitionError{Required: allowed[0], Actual: actual}
}

// syncWithEngine realigns the guild's queue mirror with the engine before a
// command reads it. It catches up on track ends whose event was dropped or
// has not been handled yet.
func (o *Orchestrator) syncWithEngine(guildID snowflake.ID) {
	session := o.store.Session(guildID)
	if session == nil {
		return
	}

	current := o.engine.CurrentTrack(guildID)
	if current == nil {
		if o.engine.RemoteQueueLen(guildID) > 0 {
			return
		}
		if stale := session.ClearQueue(); stale > 0 {
			slog.Warn("dropped stale queue entries while idle", "guild", guildID, "count", stale)
		}
		return
	}

	dropped, found := session.AlignHead(current.ID)
	switch {
	case !found && session.Len() > 0:
		slog.Error("current track is missing from the local queue",
			"guild", guildID, "track", current.Title)
	case dropped > 0:
		slog.Warn("dropped finished tracks from the local queue",
			"guild", guildID, "count", dropped)
	}
}

// listeners returns the members of the voice channel the bot joined.
// requester must be one of them.
func (o *Orchestrator) listeners(guildID, requester snowflake.ID) ([]domain.Member, error) {
	session := o.store.Session(guildID)
	if session == nil || session.VoiceChannelID() == 0 {
		return nil, ErrNotConnected
	}

	members, err := o.voiceState.GetVoiceChannelMembers(guildID, session.VoiceChannelID())
	if err != nil {
		return nil, err
	}
	if !slices.ContainsFunc(members, func(m domain.Member) bool { return m.ID == requester }) {
		return nil, ErrNotListening
	}
	return members, nil
}
