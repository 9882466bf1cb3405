package usecases

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// guildLocks hands out one command lock per guild. Locks are created on
// first use and kept for the life of the process.
type guildLocks struct {
	mu    sync.Mutex
	locks map[snowflake.ID]*sync.Mutex
}

func newGuildLocks() *guildLocks {
	return &guildLocks{
		locks: make(map[snowflake.ID]*sync.Mutex),
	}
}

// lock acquires the guild's lock and returns the function that releases it.
func (g *guildLocks) lock(guildID snowflake.ID) func() {
	g.mu.Lock()
	l, ok := g.locks[guildID]
	if !ok {
		l = &sync.Mutex{}
		g.locks[guildID] = l
	}
	g.mu.Unlock()

	l.Lock()
	return l.Unlock
}
