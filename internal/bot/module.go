package bot

import "github.com/bwmarrin/discordgo"

// InteractionHandler answers one slash command through r. On a returned error
// the bot logs it and replies with a generic error embed.
type InteractionHandler func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error

// EventHandler is passed to discordgo's AddHandler as is, so it must be a
// func with one of discordgo's handler signatures, such as
// func(*discordgo.Session, *discordgo.VoiceStateUpdate).
type EventHandler any

// ModuleDependencies is what the bot hands to every module in Init.
type ModuleDependencies struct {
	// Session is open and its State carries the bot user.
	Session *discordgo.Session
}

// Module is a feature of gabby that contributes slash commands and gateway
// event handlers, such as the music player.
type Module interface {
	// Name identifies the module in logs and errors.
	Name() string

	// Commands lists the slash commands registered for the module.
	Commands() []*discordgo.ApplicationCommand

	// CommandHandlers maps each command name from Commands to its handler.
	CommandHandlers() map[string]InteractionHandler

	// EventHandlers lists the gateway handlers added to the session.
	EventHandlers() []EventHandler

	// Init connects the module's backends. It runs once the session is open.
	Init(deps ModuleDependencies) error

	// Shutdown releases what Init acquired.
	Shutdown() error
}

// ConfigurableModule is a Module that reads its own settings from the
// environment. LoadConfig runs before the Discord session opens, so a bad
// setting stops the bot before it connects.
type ConfigurableModule interface {
	LoadConfig() error
}
