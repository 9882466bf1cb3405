package domain

// PlaybackState is the engine's live playback state for a guild.
type PlaybackState int

const (
	StateIdle PlaybackState = iota
	StatePlaying
	StatePaused
)

// String returns the state name.
func (s PlaybackState) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

// HasTrack returns true if the engine holds a current track in this state.
func (s PlaybackState) HasTrack() bool {
	return s == StatePlaying || s == StatePaused
}
