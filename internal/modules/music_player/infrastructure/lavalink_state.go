package infrastructure

import (
	"slices"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/gabby/internal/modules/music_player/domain"
)

// guildPlayback is the adapter's view of one guild's Lavalink player: the
// voice connection, the track the node is playing and the tracks waiting
// behind it. Lavalink itself has no queue, so the adapter keeps one.
type guildPlayback struct {
	mu        sync.Mutex
	connected bool
	channelID snowflake.ID
	paused    bool
	current   *domain.Track
	queue     []*domain.Track
}

func (g *guildPlayback) state() domain.PlaybackState {
	switch {
	case g.current == nil:
		return domain.StateIdle
	case g.paused:
		return domain.StatePaused
	default:
		return domain.StatePlaying
	}
}

// play makes track the current one.
func (g *guildPlayback) play(track *domain.Track) {
	g.current = track
	g.paused = false
}

// popNext removes and returns the head of the queue, or nil.
func (g *guildPlayback) popNext() *domain.Track {
	if len(g.queue) == 0 {
		return nil
	}
	next := g.queue[0]
	g.queue[0] = nil
	g.queue = g.queue[1:]
	return next
}

// pushFront puts track back at the head of the queue.
func (g *guildPlayback) pushFront(track *domain.Track) {
	g.queue = slices.Insert(g.queue, 0, track)
}

func (g *guildPlayback) enqueue(track *domain.Track) {
	g.queue = append(g.queue, track)
}

// removeRange deletes count queued tracks from start and returns them.
func (g *guildPlayback) removeRange(start, count int) ([]*domain.Track, error) {
	if start < 0 || count <= 0 || start+count > len(g.queue) {
		return nil, domain.ErrOutOfRange
	}
	removed := slices.Clone(g.queue[start : start+count])
	g.queue = slices.Delete(g.queue, start, start+count)
	return removed, nil
}

// moveTo records channelID as the bot's channel and reports whether it changed.
func (g *guildPlayback) moveTo(channelID snowflake.ID) bool {
	if g.channelID == channelID {
		return false
	}
	g.channelID = channelID
	return true
}

// isCurrent reports whether encoded identifies the track being played.
func (g *guildPlayback) isCurrent(encoded string) bool {
	return g.current != nil && g.current.Encoded == encoded
}

// reset drops the current track and the queue.
func (g *guildPlayback) reset() {
	g.current = nil
	g.paused = false
	g.queue = nil
}

// playbackStates holds a guildPlayback per guild.
type playbackStates struct {
	mu     sync.Mutex
	guilds map[snowflake.ID]*guildPlayback
}

func newPlaybackStates() *playbackStates {
	return &playbackStates{
		guilds: make(map[snowflake.ID]*guildPlayback),
	}
}

// get returns the guild's playback state, creating it if needed.
func (s *playbackStates) get(guildID snowflake.ID) *guildPlayback {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.guilds[guildID]
	if !ok {
		g = &guildPlayback{}
		s.guilds[guildID] = g
	}
	return g
}

// lookup returns the guild's playback state, or nil.
func (s *playbackStates) lookup(guildID snowflake.ID) *guildPlayback {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guilds[guildID]
}

func (s *playbackStates) delete(guildID snowflake.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.guilds, guildID)
}
