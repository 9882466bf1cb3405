package discord

import "github.com/bwmarrin/discordgo"

// Search source choices for the play command.
var sourceChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "YouTube", Value: "youtube"},
	{Name: "YouTube Music", Value: "youtube_music"},
	{Name: "SoundCloud", Value: "soundcloud"},
}

// Commands returns all slash commands for the music player module.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "join",
			Description: "Join a voice channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Voice channel to join (defaults to your current channel)",
					Required:    false,
					ChannelTypes: []discordgo.ChannelType{
						discordgo.ChannelTypeGuildVoice,
						discordgo.ChannelTypeGuildStageVoice,
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "volume",
					Description: "Initial volume (1-100)",
					Required:    false,
					MinValue:    floatPtr(1),
					MaxValue:    100,
				},
			},
		},
		{
			Name:        "leave",
			Description: "Leave the voice channel and clear the queue",
		},
		{
			Name:        "play",
			Description: "Play a track from URL or search",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "query",
					Description:  "URL or search term",
					Required:     true,
					Autocomplete: true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "source",
					Description: "Where to search (defaults to YouTube)",
					Required:    false,
					Choices:     sourceChoices,
				},
			},
		},
		{
			Name:        "stop",
			Description: "Stop playback and clear the queue",
		},
		{
			Name:        "pause",
			Description: "Pause playback",
		},
		{
			Name:        "resume",
			Description: "Resume playback",
		},
		{
			Name:        "skip",
			Description: "Vote to skip the current track",
		},
		{
			Name:        "seek",
			Description: "Jump to a position in the current track",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "position",
					Description: "Position such as 1:30, 01:02:03 or 90s",
					Required:    true,
				},
			},
		},
		{
			Name:        "volume",
			Description: "Set the playback volume",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "level",
					Description: "Volume (1-100)",
					Required:    true,
					MinValue:    floatPtr(1),
					MaxValue:    100,
				},
			},
		},
		{
			Name:        "nowplaying",
			Description: "Show the current track",
		},
		{
			Name:        "lyrics",
			Description: "Show the lyrics of the current track",
		},
		{
			Name:        "queue",
			Description: "Manage the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "Show the current queue",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "page",
							Description: "Page number",
							Required:    false,
							MinValue:    floatPtr(1),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove tracks from the queue",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionInteger,
							Name:         "position",
							Description:  "Position of the track to remove (1-indexed, as shown in queue list)",
							Required:     true,
							MinValue:     floatPtr(1),
							Autocomplete: true,
						},
						{
							Type:         discordgo.ApplicationCommandOptionInteger,
							Name:         "end_position",
							Description:  "Remove every track up to and including this position",
							Required:     false,
							MinValue:     floatPtr(1),
							Autocomplete: true,
						},
					},
				},
			},
		},
	}
}

func floatPtr(f float64) *float64 {
	return &f
}
