package music_player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"
	"github.com/sglre6355/gabby/internal/bot"
	"github.com/sglre6355/gabby/internal/modules/music_player/application/ports"
	"github.com/sglre6355/gabby/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/gabby/internal/modules/music_player/infrastructure"
	"github.com/sglre6355/gabby/internal/modules/music_player/presentation/discord"
)

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*MusicPlayerModule)(nil)

// MusicPlayerModule provides music playback commands.
type MusicPlayerModule struct {
	config          *Config
	commandHandlers *discord.CommandHandlers
	autocomplete    *discord.AutocompleteHandler
	lavalinkAdapter *infrastructure.LavalinkAdapter
	eventBus        *infrastructure.ChannelEventBus
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *MusicPlayerModule) Commands() []*discordgo.ApplicationCommand {
	return discord.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *MusicPlayerModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"join":       m.commandHandlers.HandleJoin,
		"leave":      m.commandHandlers.HandleLeave,
		"play":       m.commandHandlers.HandlePlay,
		"stop":       m.commandHandlers.HandleStop,
		"pause":      m.commandHandlers.HandlePause,
		"resume":     m.commandHandlers.HandleResume,
		"skip":       m.commandHandlers.HandleSkip,
		"seek":       m.commandHandlers.HandleSeek,
		"volume":     m.commandHandlers.HandleVolume,
		"nowplaying": m.commandHandlers.HandleNowPlaying,
		"queue":      m.commandHandlers.HandleQueue,
		"lyrics":     m.commandHandlers.HandleLyrics,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceServerUpdate) {
			m.handleVoiceServerUpdate(s, event)
		},
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			m.handleVoiceStateUpdate(s, event)
		},
		func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			m.handleInteractionCreate(s, i)
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid music_player config: %w", err)
	}
	m.config = cfg
	return nil
}

// Init initializes the module.
func (m *MusicPlayerModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil || deps.Session.State == nil || deps.Session.State.User == nil {
		return errors.New("music_player requires an open Discord session")
	}
	if m.config == nil {
		return errors.New("music_player config not loaded")
	}

	lavalinkAdapter, err := infrastructure.NewLavalinkAdapter(
		context.Background(),
		deps.Session,
		infrastructure.LavalinkConfig{
			NodeName: m.config.LavalinkNodeName,
			Address:  m.config.LavalinkAddress,
			Password: m.config.LavalinkPassword,
			Secure:   m.config.LavalinkSecure,
		},
	)
	if err != nil {
		return err
	}
	m.lavalinkAdapter = lavalinkAdapter

	// Engine events reach the orchestrator through the bus.
	m.eventBus = infrastructure.NewChannelEventBus(infrastructure.DefaultEventBufferSize)
	lavalinkAdapter.SetEventPublisher(m.eventBus)

	store := infrastructure.NewMemoryQueueStore()
	voiceState := infrastructure.NewVoiceStateProvider(deps.Session)
	lyrics := infrastructure.NewLyricsChain(m.lyricsProviders()...)

	votes := usecases.NewVoteSkipCoordinator(store, m.config.VoteSkipThreshold)
	orchestrator := usecases.NewOrchestrator(
		store,
		lavalinkAdapter,
		votes,
		voiceState,
		lyrics,
		usecases.OrchestratorConfig{
			LyricsMinChunk: m.config.LyricsMinChunk,
			LyricsMaxChunk: m.config.LyricsMaxChunk,
		},
	)
	trackLoader := usecases.NewTrackLoaderService(lavalinkAdapter)
	autocomplete := usecases.NewAutocompleteService(store, lavalinkAdapter)

	lavalinkAdapter.SetDisconnectHandler(orchestrator.HandleBotDisconnected)
	lavalinkAdapter.SetMoveHandler(orchestrator.HandleBotMoved)
	infrastructure.NewPlaybackEventHandler(orchestrator, m.eventBus).Start()

	m.commandHandlers = discord.NewCommandHandlers(
		orchestrator,
		trackLoader,
		votes,
		discord.HandlerConfig{
			DefaultVolume:     m.config.DefaultVolume,
			MessagesPerSecond: m.config.MessageRatePerSecond,
		},
	)
	m.autocomplete = discord.NewAutocompleteHandler(autocomplete, trackLoader)

	slog.Info("music_player module initialized with Lavalink",
		"node", m.config.LavalinkNodeName,
		"vote_skip_threshold", m.config.VoteSkipThreshold,
		"genius_lyrics", m.config.GeniusToken != "",
	)

	return nil
}

// lyricsProviders lists the lyrics sources in the order they are tried.
// Genius needs an API token and is skipped without one.
func (m *MusicPlayerModule) lyricsProviders() []ports.LyricsProvider {
	var providers []ports.LyricsProvider
	if m.config.GeniusToken != "" {
		providers = append(providers, infrastructure.NewGeniusLyricsClient(m.config.GeniusToken, m.config.GeniusAPIURL))
	}
	return append(providers, infrastructure.NewOVHLyricsClient(m.config.LyricsAPIURL))
}

// Shutdown cleans up module resources.
func (m *MusicPlayerModule) Shutdown() error {
	// Stop event delivery before the engine goes away.
	if m.eventBus != nil {
		m.eventBus.Close()
	}

	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.Close()
	}

	return nil
}

// Event handlers.

func (m *MusicPlayerModule) handleVoiceServerUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceServerUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceServerUpdate(event)
	}
}

func (m *MusicPlayerModule) handleVoiceStateUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceStateUpdate(event)
	}
}

func (m *MusicPlayerModule) handleInteractionCreate(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	if i.Type != discordgo.InteractionApplicationCommandAutocomplete || m.autocomplete == nil {
		return
	}

	data := i.ApplicationCommandData()

	switch data.Name {
	case "play":
		m.autocomplete.HandlePlay(s, i)
	case "queue":
		if len(data.Options) > 0 && data.Options[0].Name == "remove" {
			m.autocomplete.HandleQueuePosition(s, i)
		}
	}
}
