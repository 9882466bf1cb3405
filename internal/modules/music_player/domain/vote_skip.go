package domain

import "github.com/disgoorg/snowflake/v2"

// DefaultVoteSkipThreshold is the share of eligible listeners needed to skip a track.
const DefaultVoteSkipThreshold = 0.85

// VoteOutcome describes the state of a skip vote after a ballot was cast.
type VoteOutcome struct {
	Votes        int
	Eligible     int
	Ratio        float64
	ThresholdMet bool
}

// Percent returns the ratio as a percentage.
func (o VoteOutcome) Percent() float64 {
	return o.Ratio * 100
}

// NewVoteOutcome computes the outcome for votes out of eligible listeners.
// The ratio uses floating-point division, so 1 of 1 is 1.0 rather than 0.
// With no eligible listeners the threshold is never met.
func NewVoteOutcome(votes, eligible int, threshold float64) VoteOutcome {
	outcome := VoteOutcome{
		Votes:    votes,
		Eligible: eligible,
	}
	if eligible <= 0 {
		return outcome
	}

	outcome.Ratio = float64(votes) / float64(eligible)
	outcome.ThresholdMet = outcome.Ratio >= threshold
	return outcome
}

// VoteSet holds the users petitioning to skip one track. Votes are keyed to
// that track; a ballot for another track starts a fresh set.
// It is not safe for concurrent use; GuildSession guards it.
type VoteSet struct {
	trackID TrackID
	voters  map[snowflake.ID]struct{}
}

// NewVoteSet creates an empty VoteSet.
func NewVoteSet() VoteSet {
	return VoteSet{
		voters: make(map[snowflake.ID]struct{}),
	}
}

// Add records a vote from userID to skip trackID. Votes cast for a different
// track are discarded first. Returns ErrAlreadyVoted if the user already voted
// for trackID.
func (v *VoteSet) Add(trackID TrackID, userID snowflake.ID) error {
	if v.voters == nil {
		v.voters = make(map[snowflake.ID]struct{})
	}
	if v.trackID != trackID {
		clear(v.voters)
		v.trackID = trackID
	}
	if _, ok := v.voters[userID]; ok {
		return ErrAlreadyVoted
	}
	v.voters[userID] = struct{}{}
	return nil
}

// TrackID returns the track the votes were cast for, or "" if there are none.
func (v *VoteSet) TrackID() TrackID {
	return v.trackID
}

// Len returns the number of votes.
func (v *VoteSet) Len() int {
	return len(v.voters)
}

// Clear removes all votes.
func (v *VoteSet) Clear() {
	clear(v.voters)
	v.trackID = ""
}
