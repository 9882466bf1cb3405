package infrastructure

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/gabby/internal/modules/music_player/application/ports"
	"github.com/sglre6355/gabby/internal/modules/music_player/domain"
)

// VoiceStateProvider provides Discord voice state information.
type VoiceStateProvider struct {
	session *discordgo.Session
}

// NewVoiceStateProvider creates a new VoiceStateProvider.
func NewVoiceStateProvider(session *discordgo.Session) *VoiceStateProvider {
	return &VoiceStateProvider{
		session: session,
	}
}

// GetUserVoiceChannel returns the voice channel ID that the user is currently in.
// Returns 0 if the user is not in a voice channel.
func (v *VoiceStateProvider) GetUserVoiceChannel(
	guildID, userID snowflake.ID,
) (snowflake.ID, error) {
	guild, err := v.session.State.Guild(guildID.String())
	if err != nil {
		return 0, err
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID.String() && vs.ChannelID != "" {
			channelID, err := snowflake.Parse(vs.ChannelID)
			if err != nil {
				return 0, err
			}
			return channelID, nil
		}
	}

	return 0, nil
}

// GetVoiceChannelMembers returns the members currently in the voice channel,
// including bots.
func (v *VoiceStateProvider) GetVoiceChannelMembers(
	guildID, channelID snowflake.ID,
) ([]domain.Member, error) {
	guild, err := v.session.State.Guild(guildID.String())
	if err != nil {
		return nil, err
	}

	var members []domain.Member
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != channelID.String() {
			continue
		}

		userID, err := snowflake.Parse(vs.UserID)
		if err != nil {
			return nil, err
		}

		member := vs.Member
		if member == nil || member.User == nil {
			member, err = v.lookupMember(guildID.String(), vs.UserID)
			if err != nil {
				return nil, fmt.Errorf("failed to look up voice channel member: %w", err)
			}
		}

		members = append(members, domain.Member{
			ID:          userID,
			DisplayName: getDisplayName(member),
			IsBot:       member.User.Bot,
		})
	}

	return members, nil
}

// lookupMember returns the guild member from the state cache, falling back to the API.
func (v *VoiceStateProvider) lookupMember(guildID, userID string) (*discordgo.Member, error) {
	if member, err := v.session.State.Member(guildID, userID); err == nil && member.User != nil {
		return member, nil
	}
	return v.session.GuildMember(guildID, userID)
}

// getDisplayName returns the best display name for a member.
// Priority: Nick > GlobalName > Username
func getDisplayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}

// Ensure VoiceStateProvider implements ports.VoiceStateProvider.
var _ ports.VoiceStateProvider = (*VoiceStateProvider)(nil)
