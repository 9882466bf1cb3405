package ports

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/gabby/internal/modules/music_player/domain"
)

// VoiceStateProvider defines the interface for getting Discord voice state information.
type VoiceStateProvider interface {
	// GetUserVoiceChannel returns the voice channel ID the user is currently in.
	// Returns 0 if the user is not in a voice channel.
	GetUserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, error)

	// GetVoiceChannelMembers returns the members currently in the voice channel.
	GetVoiceChannelMembers(guildID, channelID snowflake.ID) ([]domain.Member, error)
}
