package voice

import (
	"fmt"
	"sync"

	"github.com/chancedrigor/ParakeetBot/internal/metrics"
)

// Call wraps one live voice connection and its playback queue for a guild.
// At most one Call is live per guild; the Registry owns that invariant. The
// Call is shared by reference with its event handlers, so every mutation
// goes through the interior lock.
type Call struct {
	guildID string

	mu        sync.Mutex
	channelID string
	conn      Conn

	// events is the stable notification stream read by the registry's
	// dispatcher. It survives reconnects; each attached connection
	// forwards into it.
	events chan Event
}

func newCall(guildID string) *Call {
	return &Call{
		guildID: guildID,
		events:  make(chan Event, 16),
	}
}

// GuildID returns the guild this call belongs to.
func (c *Call) GuildID() string {
	return c.guildID
}

// ChannelID returns the current voice channel, absent once disconnected.
func (c *Call) ChannelID() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channelID, c.conn != nil
}

// Connected reports whether the call has a live connection.
func (c *Call) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// attach binds a fresh connection to the call. It reports false, without
// touching the existing connection, if another goroutine attached first.
func (c *Call) attach(conn Conn, channelID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return false
	}
	c.conn = conn
	c.channelID = channelID
	metrics.CallsActive.Inc()
	metrics.CallsJoined.Inc()

	go func() {
		for evt := range conn.Events() {
			c.events <- evt
		}
	}()
	return true
}

// Enqueue appends a source to the tail of the playback queue.
func (c *Call) Enqueue(src AudioSource) (TrackHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil, ErrNoActiveCall
	}
	handle, err := c.conn.Enqueue(src)
	if err != nil {
		return nil, fmt.Errorf("enqueue track: %w", err)
	}
	return handle, nil
}

// Current returns the currently playing track, if any.
func (c *Call) Current() (TrackHandle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil, false
	}
	return c.conn.Current()
}

// QueueLen reports the length of the playback queue.
func (c *Call) QueueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return 0
	}
	return c.conn.QueueLen()
}

// Skip forcibly ends the current track; the transport's track-end
// notification advances the queue.
func (c *Call) Skip() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ErrNoActiveCall
	}
	handle, ok := c.conn.Current()
	if !ok {
		return ErrEmptyQueue
	}
	if err := handle.Stop(); err != nil {
		return fmt.Errorf("stop current track: %w", err)
	}
	return nil
}

// Stop clears the playback queue and halts playback without disconnecting.
func (c *Call) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Stop()
	}
}

// Leave halts playback and terminates the connection. Runs entirely under
// the call lock so no concurrent enqueue interleaves with teardown.
func (c *Call) Leave() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	conn := c.conn
	c.conn = nil
	c.channelID = ""
	metrics.CallsActive.Dec()

	conn.Stop()
	if err := conn.Leave(); err != nil {
		return fmt.Errorf("leave voice channel: %w", err)
	}
	return nil
}

// drop releases a connection the transport has already torn down. Unlike
// Leave it never talks back to the remote side.
func (c *Call) drop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return
	}
	c.conn.Stop()
	c.conn = nil
	c.channelID = ""
	metrics.CallsActive.Dec()
}
