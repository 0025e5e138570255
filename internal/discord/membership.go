package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/chancedrigor/ParakeetBot/internal/voice"
)

// StateMembership resolves voice channel occupants from the session's guild
// state cache.
type StateMembership struct {
	dg *discordgo.Session
}

// NewStateMembership returns a resolver backed by the session state.
func NewStateMembership(dg *discordgo.Session) *StateMembership {
	return &StateMembership{dg: dg}
}

// Resolve implements voice.MembershipResolver. A member whose bot flag
// cannot be determined counts as human, so a partial state cache never
// triggers an idle disconnect.
func (m *StateMembership) Resolve(_ context.Context, channelID string) ([]voice.Member, error) {
	channel, err := m.dg.State.Channel(channelID)
	if err != nil {
		channel, err = m.dg.Channel(channelID)
		if err != nil {
			return nil, fmt.Errorf("channel lookup: %w", err)
		}
	}

	guild, err := m.dg.State.Guild(channel.GuildID)
	if err != nil {
		return nil, fmt.Errorf("guild lookup: %w", err)
	}

	var members []voice.Member
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != channelID {
			continue
		}

		bot := false
		if member, err := m.dg.State.Member(guild.ID, vs.UserID); err == nil && member.User != nil {
			bot = member.User.Bot
		} else if m.dg.State.User != nil && vs.UserID == m.dg.State.User.ID {
			bot = true
		}
		members = append(members, voice.Member{UserID: vs.UserID, Bot: bot})
	}
	return members, nil
}
