package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/chancedrigor/ParakeetBot/internal/voice"
)

// Transport implements voice.Transport over a discordgo session. It tracks
// live connections per guild so gateway voice-state updates can be routed to
// the right one.
type Transport struct {
	dg *discordgo.Session

	mu    sync.Mutex
	conns map[string]*voiceConn
}

// NewTransport returns a transport bound to the session.
func NewTransport(dg *discordgo.Session) *Transport {
	return &Transport{
		dg:    dg,
		conns: make(map[string]*voiceConn),
	}
}

// Join implements voice.Transport.
func (t *Transport) Join(_ context.Context, guildID, channelID string) (voice.Conn, error) {
	vc, err := t.dg.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}

	conn := newVoiceConn(guildID, &discordSender{vc: vc})
	t.mu.Lock()
	t.conns[guildID] = conn
	t.mu.Unlock()
	return conn, nil
}

// HandleVoiceStateUpdate routes the bot's own voice-state changes. Leaving a
// channel, for whatever reason, tears the tracked connection down and lets
// its disconnect notification propagate.
func (t *Transport) HandleVoiceStateUpdate(s *discordgo.Session, vsu *discordgo.VoiceStateUpdate) {
	if s.State.User == nil || vsu.UserID != s.State.User.ID {
		return
	}
	if vsu.ChannelID != "" {
		return
	}

	t.mu.Lock()
	conn := t.conns[vsu.GuildID]
	delete(t.conns, vsu.GuildID)
	t.mu.Unlock()

	if conn != nil {
		log.Info("voice transport dropped", "guild", vsu.GuildID)
		conn.transportDropped()
	}
}
