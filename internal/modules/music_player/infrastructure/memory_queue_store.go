package infrastructure

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/gabby/internal/modules/music_player/domain"
)

// MemoryQueueStore is an in-memory implementation of domain.GuildQueueStore.
type MemoryQueueStore struct {
	mu       sync.RWMutex
	sessions map[snowflake.ID]*domain.GuildSession
}

// NewMemoryQueueStore creates a new MemoryQueueStore.
func NewMemoryQueueStore() *MemoryQueueStore {
	return &MemoryQueueStore{
		sessions: make(map[snowflake.ID]*domain.GuildSession),
	}
}

// EnsureSession returns the session for the guild, creating it if needed.
func (r *MemoryQueueStore) EnsureSession(guildID snowflake.ID) *domain.GuildSession {
	r.mu.RLock()
	session, ok := r.sessions[guildID]
	r.mu.RUnlock()
	if ok {
		return session
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Re-check: another goroutine may have created it in between.
	if session, ok := r.sessions[guildID]; ok {
		return session
	}
	session = domain.NewGuildSession(guildID)
	r.sessions[guildID] = session
	return session
}

// Session returns the session for the guild, or nil if none exists.
func (r *MemoryQueueStore) Session(guildID snowflake.ID) *domain.GuildSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[guildID]
}

// Append adds items to the end of the guild's queue.
func (r *MemoryQueueStore) Append(guildID snowflake.ID, items ...domain.QueuedItem) {
	r.EnsureSession(guildID).Append(items...)
}

// RemoveByTrackID removes every item for the track and returns how many were removed.
func (r *MemoryQueueStore) RemoveByTrackID(guildID snowflake.ID, trackID domain.TrackID) int {
	session := r.Session(guildID)
	if session == nil {
		return 0
	}
	return session.RemoveByTrackID(trackID)
}

// RemoveRange removes count items starting at the 0-based index start.
func (r *MemoryQueueStore) RemoveRange(
	guildID snowflake.ID,
	start, count int,
) ([]domain.QueuedItem, error) {
	session := r.Session(guildID)
	if session == nil {
		return nil, domain.ErrOutOfRange
	}
	return session.RemoveRange(start, count)
}

// Snapshot returns a copy of the guild's queue.
func (r *MemoryQueueStore) Snapshot(guildID snowflake.ID) []domain.QueuedItem {
	session := r.Session(guildID)
	if session == nil {
		return nil
	}
	return session.Snapshot()
}

// Clear empties the guild's queue and returns how many items were removed.
func (r *MemoryQueueStore) Clear(guildID snowflake.ID) int {
	session := r.Session(guildID)
	if session == nil {
		return 0
	}
	return session.ClearQueue()
}

// Ensure MemoryQueueStore implements domain.GuildQueueStore.
var _ domain.GuildQueueStore = (*MemoryQueueStore)(nil)
