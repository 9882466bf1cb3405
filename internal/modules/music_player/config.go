package music_player

import (
	"errors"
	"fmt"
)

// Config holds the music player module configuration.
type Config struct {
	LavalinkAddress  string `env:"LAVALINK_ADDRESS,notEmpty"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD,notEmpty"`
	LavalinkSecure   bool   `env:"LAVALINK_SECURE"             envDefault:"false"`
	LavalinkNodeName string `env:"LAVALINK_NODE_NAME"          envDefault:"main"`

	VoteSkipThreshold float64 `env:"VOTE_SKIP_THRESHOLD" envDefault:"0.85"`
	DefaultVolume     int     `env:"DEFAULT_VOLUME"      envDefault:"50"`

	LyricsAPIURL   string `env:"LYRICS_API_URL"   envDefault:"https://api.lyrics.ovh/v1"`
	LyricsMinChunk int    `env:"LYRICS_MIN_CHUNK" envDefault:"1900"`
	LyricsMaxChunk int    `env:"LYRICS_MAX_CHUNK" envDefault:"3900"`

	// GeniusToken enables Genius as the first lyrics source when set.
	GeniusToken  string `env:"GENIUS_TOKEN"`
	GeniusAPIURL string `env:"GENIUS_API_URL" envDefault:"https://api.genius.com"`

	// MessageRatePerSecond paces the lyrics pages sent after the first.
	MessageRatePerSecond float64 `env:"MESSAGE_RATE_PER_SECOND" envDefault:"2"`
}

// Validate reports the first setting outside its allowed range.
func (c *Config) Validate() error {
	if c.VoteSkipThreshold <= 0 || c.VoteSkipThreshold > 1 {
		return fmt.Errorf("VOTE_SKIP_THRESHOLD must be in (0, 1], got %v", c.VoteSkipThreshold)
	}
	if c.DefaultVolume < 1 || c.DefaultVolume > 100 {
		return fmt.Errorf("DEFAULT_VOLUME must be between 1 and 100, got %d", c.DefaultVolume)
	}
	if c.LyricsMinChunk <= 0 || c.LyricsMinChunk >= c.LyricsMaxChunk {
		return fmt.Errorf("LYRICS_MIN_CHUNK must be positive and below LYRICS_MAX_CHUNK, got %d and %d",
			c.LyricsMinChunk, c.LyricsMaxChunk)
	}
	if c.MessageRatePerSecond <= 0 {
		return errors.New("MESSAGE_RATE_PER_SECOND must be positive")
	}
	return nil
}
