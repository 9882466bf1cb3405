package usecases

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/gabby/internal/modules/music_player/domain"
)

// VoteSkipCoordinator tallies skip votes for each guild's current track.
type VoteSkipCoordinator struct {
	store     domain.GuildQueueStore
	threshold float64
}

// NewVoteSkipCoordinator creates a VoteSkipCoordinator. A threshold outside
// (0, 1] falls back to domain.DefaultVoteSkipThreshold.
func NewVoteSkipCoordinator(store domain.GuildQueueStore, threshold float64) *VoteSkipCoordinator {
	if threshold <= 0 || threshold > 1 {
		threshold = domain.DefaultVoteSkipThreshold
	}
	return &VoteSkipCoordinator{
		store:     store,
		threshold: threshold,
	}
}

// Threshold returns the share of eligible listeners needed to skip.
func (c *VoteSkipCoordinator) Threshold() float64 {
	return c.threshold
}

// RegisterVote records userID's vote to skip trackID, the guild's current
// track. Votes left over from an earlier track are discarded first.
// A repeat vote returns ErrAlreadyVoted and leaves the tally unchanged.
func (c *VoteSkipCoordinator) RegisterVote(
	guildID snowflake.ID,
	trackID domain.TrackID,
	userID snowflake.ID,
	eligible int,
) (domain.VoteOutcome, error) {
	session := c.store.EnsureSession(guildID)
	return session.RegisterVote(trackID, userID, eligible, c.threshold)
}

// ClearVotes removes all votes for the guild.
func (c *VoteSkipCoordinator) ClearVotes(guildID snowflake.ID) {
	if session := c.store.Session(guildID); session != nil {
		session.ClearVotes()
	}
}

// ClearVotesFor removes the guild's votes if they were cast for trackID.
func (c *VoteSkipCoordinator) ClearVotesFor(guildID snowflake.ID, trackID domain.TrackID) bool {
	if session := c.store.Session(guildID); session != nil {
		return session.ClearVotesFor(trackID)
	}
	return false
}

// VoteCount returns the number of votes recorded to skip trackID.
func (c *VoteSkipCoordinator) VoteCount(guildID snowflake.ID, trackID domain.TrackID) int {
	if session := c.store.Session(guildID); session != nil {
		return session.VoteCount(trackID)
	}
	return 0
}
