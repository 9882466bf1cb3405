package domain

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// GuildSession is the in-memory playback bookkeeping for one guild: the queue
// mirror, the skip votes for the current track and the voice channel the bot
// joined. All methods are safe for concurrent use.
type GuildSession struct {
	guildID snowflake.ID

	mu             sync.Mutex
	voiceChannelID snowflake.ID
	queue          Queue
	votes          VoteSet
}

// NewGuildSession creates an empty GuildSession for the given guild.
func NewGuildSession(guildID snowflake.ID) *GuildSession {
	return &GuildSession{
		guildID: guildID,
		queue:   NewQueue(),
		votes:   NewVoteSet(),
	}
}

// GuildID returns the guild ID.
func (s *GuildSession) GuildID() snowflake.ID {
	// No lock: guildID must not be modified after initialization
	return s.guildID
}

// VoiceChannelID returns the voice channel the bot was last asked to join.
func (s *GuildSession) VoiceChannelID() snowflake.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voiceChannelID
}

// SetVoiceChannelID updates the voice channel ID.
func (s *GuildSession) SetVoiceChannelID(channelID snowflake.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voiceChannelID = channelID
}

// Append adds items to the end of the queue.
func (s *GuildSession) Append(items ...QueuedItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Append(items...)
}

// RemoveByTrackID removes all items for the given track and returns how many were removed.
func (s *GuildSession) RemoveByTrackID(id TrackID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.RemoveByTrackID(id)
}

// RemoveRange removes count items starting at the 0-based index start.
func (s *GuildSession) RemoveRange(start, count int) ([]QueuedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.RemoveRange(start, count)
}

// Snapshot returns a copy of the queued items.
func (s *GuildSession) Snapshot() []QueuedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.List()
}

// Len returns the number of queued items.
func (s *GuildSession) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// ClearQueue removes all queued items and returns how many there were.
func (s *GuildSession) ClearQueue() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Clear()
}

// AlignHead drops the items queued before the first item for id, so the
// mirror's head matches the track the engine is actually playing.
func (s *GuildSession) AlignHead(id TrackID) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.AlignHead(id)
}

// RegisterVote records a vote from userID to skip trackID and returns the
// resulting outcome. Votes left over from another track do not count.
// A repeat vote fails with ErrAlreadyVoted and leaves the votes unchanged.
func (s *GuildSession) RegisterVote(trackID TrackID, userID snowflake.ID, eligible int, threshold float64) (VoteOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.votes.Add(trackID, userID); err != nil {
		return NewVoteOutcome(s.votes.Len(), eligible, threshold), err
	}
	return NewVoteOutcome(s.votes.Len(), eligible, threshold), nil
}

// VoteCount returns the number of skip votes cast for trackID.
func (s *GuildSession) VoteCount(trackID TrackID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.votes.TrackID() != trackID {
		return 0
	}
	return s.votes.Len()
}

// ClearVotes removes all skip votes.
func (s *GuildSession) ClearVotes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes.Clear()
}

// ClearVotesFor removes the skip votes if they were cast for trackID.
// It reports whether anything was cleared.
func (s *GuildSession) ClearVotesFor(trackID TrackID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.votes.TrackID() != trackID || s.votes.Len() == 0 {
		return false
	}
	s.votes.Clear()
	return true
}
