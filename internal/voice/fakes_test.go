package voice

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeTrack implements TrackHandle. Stopping it advances the owning conn's
// queue and emits a track-end event, mirroring the real transport.
type fakeTrack struct {
	conn *fakeConn
}

func (t *fakeTrack) Stop() error {
	t.conn.endTrack(t)
	return nil
}

// fakeConn implements Conn with an in-memory queue.
type fakeConn struct {
	mu        sync.Mutex
	queue     []*fakeTrack
	stopped   bool
	left      bool
	events    chan Event
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{events: make(chan Event, 16)}
}

func (c *fakeConn) Enqueue(_ AudioSource) (TrackHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	track := &fakeTrack{conn: c}
	c.queue = append(c.queue, track)
	return track, nil
}

func (c *fakeConn) Current() (TrackHandle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return nil, false
	}
	return c.queue[0], true
}

func (c *fakeConn) QueueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

func (c *fakeConn) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	c.queue = nil
}

func (c *fakeConn) Leave() error {
	c.mu.Lock()
	c.left = true
	c.queue = nil
	c.mu.Unlock()
	c.closeOnce.Do(func() { close(c.events) })
	return nil
}

func (c *fakeConn) Events() <-chan Event {
	return c.events
}

func (c *fakeConn) endTrack(track *fakeTrack) {
	c.mu.Lock()
	if len(c.queue) > 0 && c.queue[0] == track {
		c.queue = c.queue[1:]
	}
	c.mu.Unlock()
	c.events <- Event{Kind: EventTrackEnd}
}

// finishCurrent simulates the current track finishing naturally.
func (c *fakeConn) finishCurrent() {
	c.mu.Lock()
	if len(c.queue) > 0 {
		c.queue = c.queue[1:]
	}
	c.mu.Unlock()
	c.events <- Event{Kind: EventTrackEnd}
}

func (c *fakeConn) wasLeft() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.left
}

// fakeTransport implements Transport. An optional gate lets tests hold
// concurrent joins inside the call.
type fakeTransport struct {
	mu      sync.Mutex
	joins   int
	err     error
	conns   []*fakeConn
	entered chan struct{}
	gate    chan struct{}
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{}
}

func (t *fakeTransport) Join(_ context.Context, _, _ string) (Conn, error) {
	if t.entered != nil {
		t.entered <- struct{}{}
		<-t.gate
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.joins++
	if t.err != nil {
		return nil, t.err
	}
	conn := newFakeConn()
	t.conns = append(t.conns, conn)
	return conn, nil
}

func (t *fakeTransport) joinCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.joins
}

func (t *fakeTransport) liveConns() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	live := 0
	for _, c := range t.conns {
		if !c.wasLeft() {
			live++
		}
	}
	return live
}

// resolveResult is one scripted answer from the fake membership resolver.
type resolveResult struct {
	members []Member
	err     error
}

// fakeResolver returns scripted results in order; the last one repeats.
type fakeResolver struct {
	mu      sync.Mutex
	results []resolveResult
	calls   int
}

func (r *fakeResolver) Resolve(context.Context, string) ([]Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.calls
	if idx >= len(r.results) {
		idx = len(r.results) - 1
	}
	r.calls++
	res := r.results[idx]
	return res.members, res.err
}

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

// joinedCall builds a connected call outside the registry for direct
// handler tests.
func joinedCall(guildID, channelID string) (*Call, *fakeConn) {
	conn := newFakeConn()
	call := newCall(guildID)
	call.attach(conn, channelID)
	return call, conn
}
