package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/chancedrigor/ParakeetBot/internal/config"
	"github.com/chancedrigor/ParakeetBot/internal/logging"
	"github.com/chancedrigor/ParakeetBot/internal/storage"
	"github.com/chancedrigor/ParakeetBot/internal/voice"
)

var log = logging.Component("discord")

// Bot is the Discord bot: the gateway session plus the voice-call registry
// and the per-guild data it exposes to command handlers.
type Bot struct {
	dg        *discordgo.Session
	cfg       *config.Config
	store     *storage.Storage
	transport *Transport
	registry  *voice.Registry
	data      *voice.DataStore
	cooldowns *cooldowns
}

// StartBot runs the bot until the context is cancelled.
func StartBot(ctx context.Context, cfg *config.Config, store *storage.Storage) error {
	b := &Bot{
		cfg:       cfg,
		store:     store,
		data:      voice.NewDataStore(),
		cooldowns: newCooldowns(guildCooldown),
	}
	if err := b.run(ctx, cfg.DiscordToken); err != nil {
		return fmt.Errorf("bot run error: %w", err)
	}
	return nil
}

func (b *Bot) run(ctx context.Context, token string) error {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.dg = dg

	b.transport = NewTransport(dg)
	b.registry = voice.NewRegistry(
		b.transport,
		NewStateMembership(dg),
		b.data,
		b.cfg.IdleCheckInterval,
	)
	defer b.registry.Close()

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.transport.HandleVoiceStateUpdate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")
	return nil
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildVoiceStates
}

func (b *Bot) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	log.Info("bot is ready", "user", s.State.User.Username, "id", s.State.User.ID)
}

// Registry exposes the call registry to command handlers that need direct
// lookup semantics.
func (b *Bot) Registry() *voice.Registry {
	return b.registry
}
