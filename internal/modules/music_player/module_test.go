package music_player

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/gabby/internal/bot"
	"github.com/sglre6355/gabby/internal/modules/music_player/infrastructure"
)

func TestMusicPlayerModule_CommandHandlersCoverCommands(t *testing.T) {
	m := &MusicPlayerModule{}
	handlers := m.CommandHandlers()

	for _, cmd := range m.Commands() {
		if _, ok := handlers[cmd.Name]; !ok {
			t.Errorf("command %q has no handler", cmd.Name)
		}
	}
	if len(handlers) != len(m.Commands()) {
		t.Errorf("got %d handlers for %d commands", len(handlers), len(m.Commands()))
	}
}

func TestMusicPlayerModule_InitRequiresSession(t *testing.T) {
	m := &MusicPlayerModule{config: &Config{}}

	if err := m.Init(bot.ModuleDependencies{}); err == nil {
		t.Error("expected error without a session, got nil")
	}
}

func TestMusicPlayerModule_InitRequiresConfig(t *testing.T) {
	session := &discordgo.Session{State: discordgo.NewState()}
	session.State.User = &discordgo.User{ID: "1"}

	m := &MusicPlayerModule{}
	if err := m.Init(bot.ModuleDependencies{Session: session}); err == nil {
		t.Error("expected error without config, got nil")
	}
}

func TestMusicPlayerModule_LyricsProviders(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		wantN      int
		wantGenius bool
	}{
		{"without genius token", "", 1, false},
		{"with genius token", "secret", 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &MusicPlayerModule{config: &Config{GeniusToken: tt.token}}

			providers := m.lyricsProviders()

			if len(providers) != tt.wantN {
				t.Fatalf("got %d providers, expected %d", len(providers), tt.wantN)
			}
			_, isGenius := providers[0].(*infrastructure.GeniusLyricsClient)
			if isGenius != tt.wantGenius {
				t.Errorf("first provider is Genius = %v, expected %v", isGenius, tt.wantGenius)
			}
			if _, ok := providers[len(providers)-1].(*infrastructure.OVHLyricsClient); !ok {
				t.Error("expected lyrics.ovh to be the last resort")
			}
		})
	}
}

func TestMusicPlayerModule_ShutdownBeforeInit(t *testing.T) {
	m := &MusicPlayerModule{}

	if err := m.Shutdown(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMusicPlayerModule_IgnoresNonAutocompleteInteractions(t *testing.T) {
	m := &MusicPlayerModule{}

	m.handleInteractionCreate(nil, &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{Type: discordgo.InteractionApplicationCommand},
	})
}
