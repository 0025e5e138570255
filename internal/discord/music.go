package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chancedrigor/ParakeetBot/internal/storage"
	"github.com/chancedrigor/ParakeetBot/internal/voice"
)

// guildCooldown spaces out skip and queue-display invocations per guild.
const guildCooldown = 2 * time.Second

// ErrOnCooldown is surfaced when a guild command is invoked too quickly.
var ErrOnCooldown = errors.New("command is on cooldown")

// SourceWithMetadata pairs a resolved playable source with its display
// metadata. Producing one is the external resolver's job.
type SourceWithMetadata struct {
	Source voice.AudioSource
	Meta   voice.TrackMetadata
}

// Join joins the voice channel the user currently sits in, creating and
// wiring the guild's call on first use.
func (b *Bot) Join(ctx context.Context, guildID, userID string) (*voice.Call, error) {
	channelID, err := b.FindUserVoiceChannel(guildID, userID)
	if err != nil {
		return nil, err
	}
	return b.registry.GetOrJoin(ctx, guildID, channelID)
}

// Enqueue appends a resolved track to the call's playback queue and pushes
// its metadata, in that order, before returning. The caller performs no
// second session-scoped mutation in between, which is what keeps the two
// queues in lockstep.
func (b *Bot) Enqueue(guildID string, call *voice.Call, item SourceWithMetadata) (voice.TrackHandle, error) {
	handle, err := call.Enqueue(item.Source)
	if err != nil {
		return nil, err
	}
	b.data.Get(guildID).Queue.PushBack(item.Meta)

	if b.store != nil {
		record := storage.TrackHistoryRecord{
			Title:    item.Meta.Title,
			Channel:  item.Meta.Channel,
			URL:      item.Meta.SourceURL,
			Duration: item.Meta.Duration,
			PlayedAt: time.Now(),
		}
		if err := b.store.AppendTrackToHistory(guildID, record); err != nil {
			log.Warn("failed to record track history", "guild", guildID, "err", err)
		}
	}
	return handle, nil
}

// Skip forcibly ends the current track and returns its title.
func (b *Bot) Skip(guildID string) (string, error) {
	if !b.cooldowns.Allow(guildID) {
		return "", ErrOnCooldown
	}

	call, err := b.registry.Lookup(guildID)
	if err != nil {
		return "", err
	}

	meta, ok := b.data.Get(guildID).Queue.Front()
	if !ok {
		return "", voice.ErrEmptyQueue
	}
	title := meta.Title
	if title == "" {
		title = voice.MissingTitle
	}

	if err := call.Skip(); err != nil {
		return "", err
	}
	log.Info("skipping track", "guild", guildID, "title", title)
	return title, nil
}

// Stop halts playback, deletes both queues, and leaves the channel.
func (b *Bot) Stop(guildID string) error {
	call, err := b.registry.Lookup(guildID)
	if err != nil {
		return err
	}

	log.Info("stopping the queue", "guild", guildID)
	call.Stop()
	b.data.Get(guildID).Queue.Clear()
	if err := call.Leave(); err != nil {
		return fmt.Errorf("leave call: %w", err)
	}
	return nil
}

// QueueDisplay renders the guild's pending tracks as a numbered listing.
func (b *Bot) QueueDisplay(guildID string) (string, error) {
	if !b.cooldowns.Allow(guildID) {
		return "", ErrOnCooldown
	}
	if _, err := b.registry.Lookup(guildID); err != nil {
		return "", err
	}
	return b.data.Get(guildID).Queue.DisplayString(), nil
}

// FindUserVoiceChannel finds the voice channel a user is connected to.
func (b *Bot) FindUserVoiceChannel(guildID, userID string) (string, error) {
	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		return "", voice.ErrNotInGuild
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID && vs.ChannelID != "" {
			return vs.ChannelID, nil
		}
	}
	return "", voice.ErrNotInVoice
}
