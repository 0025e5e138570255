package discord

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"

	"github.com/chancedrigor/ParakeetBot/internal/voice"
)

// OpusSource supplies pre-encoded opus frames for one track. Resolvers hand
// these to the bot; no encoding happens here.
type OpusSource interface {
	// OpusFrame returns the next frame, or io.EOF when the track is done.
	OpusFrame() ([]byte, error)
}

// frameSender is the raw outbound side of one voice connection. It exists so
// the queue driver is testable without a gateway.
type frameSender interface {
	Speaking(bool) error
	SendFrame(frame []byte) error
	Close() error
}

// discordSender sends frames through a discordgo voice connection.
type discordSender struct {
	vc *discordgo.VoiceConnection
}

func (s *discordSender) Speaking(b bool) error { return s.vc.Speaking(b) }

func (s *discordSender) SendFrame(frame []byte) error {
	s.vc.OpusSend <- frame
	return nil
}

func (s *discordSender) Close() error { return s.vc.Disconnect() }

// queuedTrack is one entry in the playback queue.
type queuedTrack struct {
	src      OpusSource
	stop     chan struct{}
	stopOnce sync.Once
	// silent suppresses the track-end notification when the whole queue
	// is being cleared; bulk clears must not advance the queue.
	silent atomic.Bool
}

// Stop implements voice.TrackHandle.
func (t *queuedTrack) Stop() error {
	t.stopOnce.Do(func() { close(t.stop) })
	return nil
}

// voiceConn implements voice.Conn: one live connection plus a sequential
// playback queue feeding pre-encoded frames to the sender.
type voiceConn struct {
	guildID string
	sender  frameSender

	mu     sync.Mutex
	tracks []*queuedTrack
	closed bool

	events chan voice.Event
	wake   chan struct{}
	done   chan struct{}
}

func newVoiceConn(guildID string, sender frameSender) *voiceConn {
	c := &voiceConn{
		guildID: guildID,
		sender:  sender,
		events:  make(chan voice.Event, 16),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go c.playLoop()
	return c
}

// Enqueue implements voice.Conn.
func (c *voiceConn) Enqueue(src voice.AudioSource) (voice.TrackHandle, error) {
	opus, ok := src.(OpusSource)
	if !ok {
		return nil, fmt.Errorf("unsupported audio source %T", src)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errors.New("connection is closed")
	}
	track := &queuedTrack{src: opus, stop: make(chan struct{})}
	c.tracks = append(c.tracks, track)

	select {
	case c.wake <- struct{}{}:
	default:
	}
	return track, nil
}

// Current implements voice.Conn.
func (c *voiceConn) Current() (voice.TrackHandle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.tracks) == 0 {
		return nil, false
	}
	return c.tracks[0], true
}

// QueueLen implements voice.Conn.
func (c *voiceConn) QueueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tracks)
}

// Stop implements voice.Conn: clears the queue and halts the current track
// without emitting a track-end notification and without disconnecting.
func (c *voiceConn) Stop() {
	c.mu.Lock()
	var current *queuedTrack
	if len(c.tracks) > 0 {
		current = c.tracks[0]
	}
	c.tracks = nil
	c.mu.Unlock()

	if current != nil {
		current.silent.Store(true)
		_ = current.Stop()
	}
}

// Leave implements voice.Conn. The disconnect notification fires before the
// event stream closes, so the registered handlers observe the teardown.
func (c *voiceConn) Leave() error {
	c.emit(voice.Event{Kind: voice.EventDisconnect})
	c.closeLocal()
	if err := c.sender.Close(); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	return nil
}

// Events implements voice.Conn.
func (c *voiceConn) Events() <-chan voice.Event {
	return c.events
}

// transportDropped handles a teardown initiated by the remote side.
func (c *voiceConn) transportDropped() {
	c.emit(voice.Event{Kind: voice.EventDisconnect})
	c.closeLocal()
}

func (c *voiceConn) closeLocal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.tracks = nil
	close(c.done)
	close(c.events)
}

// emit delivers a notification unless the connection is already closed. A
// full channel drops the event rather than blocking playback.
func (c *voiceConn) emit(evt voice.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.events <- evt:
	default:
		log.Warn("event dropped, channel full", "guild", c.guildID, "kind", evt.Kind)
	}
}

// playLoop plays queued tracks in order, one at a time.
func (c *voiceConn) playLoop() {
	for {
		track := c.nextTrack()
		if track == nil {
			return
		}
		c.playTrack(track)
		c.finishTrack(track)
	}
}

// nextTrack blocks until a track is at the head of the queue or the
// connection closes.
func (c *voiceConn) nextTrack() *queuedTrack {
	for {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return nil
		}
		if len(c.tracks) > 0 {
			track := c.tracks[0]
			c.mu.Unlock()
			return track
		}
		c.mu.Unlock()

		select {
		case <-c.done:
			return nil
		case <-c.wake:
		}
	}
}

func (c *voiceConn) playTrack(track *queuedTrack) {
	if err := c.sender.Speaking(true); err != nil {
		log.Warn("failed to set speaking", "guild", c.guildID, "err", err)
	}
	defer func() {
		if err := c.sender.Speaking(false); err != nil {
			log.Warn("failed to clear speaking", "guild", c.guildID, "err", err)
		}
	}()

	for {
		select {
		case <-track.stop:
			return
		case <-c.done:
			return
		default:
		}

		frame, err := track.src.OpusFrame()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Warn("read frame failed", "guild", c.guildID, "err", err)
			}
			return
		}
		if err := c.sender.SendFrame(frame); err != nil {
			log.Warn("send frame failed", "guild", c.guildID, "err", err)
			return
		}
	}
}

// finishTrack advances the queue and reports the track end. Tracks ended by
// a bulk Stop stay silent; the queue was already cleared wholesale.
func (c *voiceConn) finishTrack(track *queuedTrack) {
	c.mu.Lock()
	if len(c.tracks) > 0 && c.tracks[0] == track {
		c.tracks = c.tracks[1:]
	}
	c.mu.Unlock()

	if !track.silent.Load() {
		c.emit(voice.Event{Kind: voice.EventTrackEnd})
	}
}
