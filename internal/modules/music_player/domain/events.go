package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// TrackEndReason represents why the engine stopped playing a track.
type TrackEndReason string

const (
	// TrackEndFinished means the track played to its end.
	TrackEndFinished TrackEndReason = "finished"
	// TrackEndLoadFailed means the engine could not load the track.
	TrackEndLoadFailed TrackEndReason = "load_failed"
	// TrackEndStopped means playback was stopped explicitly.
	TrackEndStopped TrackEndReason = "stopped"
	// TrackEndReplaced means another track was started in its place.
	TrackEndReplaced TrackEndReason = "replaced"
	// TrackEndCleanup means the engine destroyed the player.
	TrackEndCleanup TrackEndReason = "cleanup"
)

// ShouldAdvanceQueue returns true if the engine moves on to its next queued
// track after ending for this reason.
func (r TrackEndReason) ShouldAdvanceQueue() bool {
	return r == TrackEndFinished || r == TrackEndLoadFailed
}

// TrackEndedEvent is published by the engine adapter when a track ends.
// Next is the track the engine started afterwards, or nil if its queue was empty.
type TrackEndedEvent struct {
	GuildID snowflake.ID
	Track   *Track
	Next    *Track
	Reason  TrackEndReason
}
