package voice

import (
	"context"

	"github.com/chancedrigor/ParakeetBot/internal/logging"
	"github.com/chancedrigor/ParakeetBot/internal/metrics"
)

var log = logging.Component("voice")

// EventKind tags a transport notification.
type EventKind int

const (
	// EventTick fires on the registry's fixed idle-check interval.
	EventTick EventKind = iota
	// EventDisconnect fires on a low-level transport teardown.
	EventDisconnect
	// EventTrackEnd fires when the currently playing track finishes.
	EventTrackEnd
)

// Event is a single transport notification.
type Event struct {
	Kind EventKind
}

// Action is a handler's verdict after a trigger.
type Action int

const (
	// ActionContinue keeps the handler registered.
	ActionContinue Action = iota
	// ActionCancel permanently removes the handler.
	ActionCancel
)

// Handler reacts to one kind of event on one call. Handlers are registered
// exactly once per call and keep running across reconnects; a transient
// failure is logged and converted to ActionContinue so a single bad trigger
// never drops a handler.
type Handler interface {
	Kind() EventKind
	HandleEvent(ctx context.Context, evt Event) Action
}

// IdleMonitor leaves the call when nobody but bots is listening. It runs on
// every tick; a call with no current channel is already torn down and the
// tick is a no-op.
type IdleMonitor struct {
	call    *Call
	members MembershipResolver
}

// NewIdleMonitor returns an idle monitor for the given call.
func NewIdleMonitor(call *Call, members MembershipResolver) *IdleMonitor {
	return &IdleMonitor{call: call, members: members}
}

// Kind implements Handler.
func (m *IdleMonitor) Kind() EventKind { return EventTick }

// HandleEvent implements Handler. A membership lookup failure never causes a
// leave; the check simply retries on the next tick.
func (m *IdleMonitor) HandleEvent(ctx context.Context, _ Event) Action {
	channelID, ok := m.call.ChannelID()
	if !ok {
		return ActionContinue
	}

	members, err := m.members.Resolve(ctx, channelID)
	if err != nil {
		log.Warn("idle check: membership lookup failed",
			"guild", m.call.GuildID(), "channel", channelID, "err", err)
		return ActionContinue
	}

	for _, member := range members {
		if !member.Bot {
			return ActionContinue
		}
	}

	log.Info("idle, disconnecting from voice channel",
		"guild", m.call.GuildID(), "channel", channelID)
	metrics.IdleLeaves.Inc()
	if err := m.call.Leave(); err != nil {
		log.Warn("idle leave failed", "guild", m.call.GuildID(), "err", err)
	}
	return ActionContinue
}

// DisconnectStop reacts to a transport teardown: it halts playback, releases
// the dead connection, and clears the metadata queue so no stale
// "now playing" state survives the drop.
type DisconnectStop struct {
	call *Call
	meta *QueueMetadata
}

// NewDisconnectStop returns a disconnect handler for the given call.
func NewDisconnectStop(call *Call, meta *QueueMetadata) *DisconnectStop {
	return &DisconnectStop{call: call, meta: meta}
}

// Kind implements Handler.
func (d *DisconnectStop) Kind() EventKind { return EventDisconnect }

// HandleEvent implements Handler.
func (d *DisconnectStop) HandleEvent(_ context.Context, _ Event) Action {
	log.Info("transport disconnected, stopping", "guild", d.call.GuildID())
	metrics.Disconnects.Inc()
	d.call.drop()
	d.meta.Clear()
	return ActionContinue
}

// TrackEndMeta pops the finished track's metadata so the metadata queue
// stays in lockstep with the playback queue.
type TrackEndMeta struct {
	call *Call
	meta *QueueMetadata
}

// NewTrackEndMeta returns a track-end handler for the given call.
func NewTrackEndMeta(call *Call, meta *QueueMetadata) *TrackEndMeta {
	return &TrackEndMeta{call: call, meta: meta}
}

// Kind implements Handler.
func (t *TrackEndMeta) Kind() EventKind { return EventTrackEnd }

// HandleEvent implements Handler. Popping an empty queue is a
// desynchronization anomaly: it is logged and skipped, never surfaced or
// repaired, since correct use cannot produce it and subsequent operations
// re-establish the length invariant on their own.
func (t *TrackEndMeta) HandleEvent(_ context.Context, _ Event) Action {
	metrics.TracksEnded.Inc()
	meta, ok := t.meta.PopFront()
	if !ok {
		log.Error("tried to remove track metadata from empty queue",
			"guild", t.call.GuildID())
		metrics.DesyncAnomalies.Inc()
		return ActionContinue
	}

	title := meta.Title
	if title == "" {
		title = MissingTitle
	}
	log.Debug("removing metadata for finished track",
		"guild", t.call.GuildID(), "title", title)
	return ActionContinue
}
