package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// GuildQueueStore keeps one GuildSession per guild and exposes the queue
// operations the orchestrator needs. Implementations must be safe for
// concurrent use across guilds.
type GuildQueueStore interface {
	// EnsureSession returns the session for the guild, creating it if needed.
	EnsureSession(guildID snowflake.ID) *GuildSession

	// Session returns the session for the guild, or nil if none exists.
	Session(guildID snowflake.ID) *GuildSession

	// Append adds items to the end of the guild's queue.
	Append(guildID snowflake.ID, items ...QueuedItem)

	// RemoveByTrackID removes every item for the track and returns how many were removed.
	RemoveByTrackID(guildID snowflake.ID, trackID TrackID) int

	// RemoveRange removes count items starting at the 0-based index start.
	RemoveRange(guildID snowflake.ID, start, count int) ([]QueuedItem, error)

	// Snapshot returns a copy of the guild's queue.
	Snapshot(guildID snowflake.ID) []QueuedItem

	// Clear empties the guild's queue and returns how many items were removed.
	Clear(guildID snowflake.ID) int
}
