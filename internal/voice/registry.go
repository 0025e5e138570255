package voice

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultIdleInterval is how often the idle monitor checks for an empty
// channel when the configuration collaborator supplies no value.
const DefaultIdleInterval = 300 * time.Second

// Registry is the per-guild call store. It lazily creates a Call on first
// join and wires its event handlers exactly once, regardless of concurrent
// join attempts.
type Registry struct {
	transport    Transport
	members      MembershipResolver
	data         *DataStore
	idleInterval time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	calls map[string]*Call
}

// NewRegistry creates a registry. idleInterval <= 0 falls back to
// DefaultIdleInterval.
func NewRegistry(transport Transport, members MembershipResolver, data *DataStore, idleInterval time.Duration) *Registry {
	if idleInterval <= 0 {
		idleInterval = DefaultIdleInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		transport:    transport,
		members:      members,
		data:         data,
		idleInterval: idleInterval,
		ctx:          ctx,
		cancel:       cancel,
		calls:        make(map[string]*Call),
	}
}

// GetOrJoin returns the guild's call, creating and wiring it on first use.
// A live existing call is returned unchanged: no reconnection, no handler
// re-registration. A previously torn-down call is reconnected in place,
// reusing its original handler wiring.
//
// The registry lock guards only map lookup and insert; it is never held
// across the join. Two concurrent calls for the same guild race to insert,
// the loser discards its half-built connection and reuses the winner's.
func (r *Registry) GetOrJoin(ctx context.Context, guildID, channelID string) (*Call, error) {
	r.mu.Lock()
	call, ok := r.calls[guildID]
	r.mu.Unlock()

	if ok {
		if call.Connected() {
			return call, nil
		}
		conn, err := r.transport.Join(ctx, guildID, channelID)
		if err != nil {
			return nil, fmt.Errorf("join voice channel: %w", err)
		}
		if !call.attach(conn, channelID) {
			// Lost a reconnect race; the other connection won.
			conn.Stop()
			_ = conn.Leave()
		}
		return call, nil
	}

	conn, err := r.transport.Join(ctx, guildID, channelID)
	if err != nil {
		return nil, fmt.Errorf("join voice channel: %w", err)
	}

	call = newCall(guildID)
	call.attach(conn, channelID)

	r.mu.Lock()
	if winner, ok := r.calls[guildID]; ok {
		r.mu.Unlock()
		call.drop()
		_ = conn.Leave()
		return winner, nil
	}
	r.calls[guildID] = call
	r.mu.Unlock()

	log.Info("initializing call event handlers", "guild", guildID)
	r.wire(call)
	return call, nil
}

// Lookup returns the guild's live call. Operations that require a
// pre-existing call (skip, stop, queue display) go through here.
func (r *Registry) Lookup(guildID string) (*Call, error) {
	r.mu.Lock()
	call, ok := r.calls[guildID]
	r.mu.Unlock()

	if !ok || !call.Connected() {
		return nil, ErrNoActiveCall
	}
	return call, nil
}

// Close stops every dispatcher. Live connections are left to the transport's
// own shutdown.
func (r *Registry) Close() {
	r.cancel()
}

// wire registers the three event handlers against a freshly inserted call
// and starts its dispatcher. Called exactly once per registry entry.
func (r *Registry) wire(call *Call) {
	meta := r.data.Get(call.GuildID()).Queue
	handlers := []Handler{
		NewIdleMonitor(call, r.members),
		NewDisconnectStop(call, meta),
		NewTrackEndMeta(call, meta),
	}
	go r.dispatch(call, handlers)
}

// dispatch fans events out to the call's handlers for the lifetime of the
// registry entry. Ticks are synthesized here so each call carries exactly
// one recurring timer. A handler answering ActionCancel is removed for good;
// the stock handlers always continue.
func (r *Registry) dispatch(call *Call, handlers []Handler) {
	ticker := time.NewTicker(r.idleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			handlers = r.deliver(call, handlers, Event{Kind: EventTick})
		case evt := <-call.events:
			handlers = r.deliver(call, handlers, evt)
		}
	}
}

func (r *Registry) deliver(call *Call, handlers []Handler, evt Event) []Handler {
	kept := handlers[:0]
	for _, h := range handlers {
		if h.Kind() != evt.Kind {
			kept = append(kept, h)
			continue
		}
		if h.HandleEvent(r.ctx, evt) == ActionContinue {
			kept = append(kept, h)
		} else {
			log.Info("event handler cancelled",
				"guild", call.GuildID(), "kind", evt.Kind)
		}
	}
	return kept
}
