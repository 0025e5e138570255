package discord

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/chancedrigor/ParakeetBot/internal/voice"
)

type fakeSender struct {
	mu       sync.Mutex
	frames   int
	speaking []bool
	closed   bool
}

func (s *fakeSender) Speaking(b bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speaking = append(s.speaking, b)
	return nil
}

func (s *fakeSender) SendFrame([]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames++
	return nil
}

func (s *fakeSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSender) frameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func (s *fakeSender) wasClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// fakeSource yields a fixed number of frames, or endless frames when
// infinite is set.
type fakeSource struct {
	mu       sync.Mutex
	frames   int
	infinite bool
}

func (s *fakeSource) OpusFrame() ([]byte, error) {
	if s.infinite {
		time.Sleep(time.Millisecond)
		return []byte{0xf8}, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frames == 0 {
		return nil, io.EOF
	}
	s.frames--
	return []byte{0xf8}, nil
}

func readEvent(t *testing.T, conn *voiceConn, timeout time.Duration) voice.Event {
	t.Helper()
	select {
	case evt, ok := <-conn.Events():
		if !ok {
			t.Fatal("event channel closed unexpectedly")
		}
		return evt
	case <-time.After(timeout):
		t.Fatal("timed out waiting for event")
	}
	return voice.Event{}
}

func TestPlaybackAdvancesThroughQueue(t *testing.T) {
	sender := &fakeSender{}
	conn := newVoiceConn("g1", sender)
	defer conn.closeLocal()

	for i := 0; i < 2; i++ {
		if _, err := conn.Enqueue(&fakeSource{frames: 3}); err != nil {
			t.Fatal(err)
		}
	}

	for i := 0; i < 2; i++ {
		evt := readEvent(t, conn, time.Second)
		if evt.Kind != voice.EventTrackEnd {
			t.Fatalf("event %d: kind = %v, want EventTrackEnd", i, evt.Kind)
		}
	}

	if got := conn.QueueLen(); got != 0 {
		t.Fatalf("QueueLen = %d, want 0", got)
	}
	if got := sender.frameCount(); got != 6 {
		t.Fatalf("frames sent = %d, want 6", got)
	}
}

func TestStopClearsQueueWithoutTrackEnd(t *testing.T) {
	sender := &fakeSender{}
	conn := newVoiceConn("g1", sender)
	defer conn.closeLocal()

	if _, err := conn.Enqueue(&fakeSource{infinite: true}); err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Enqueue(&fakeSource{frames: 1}); err != nil {
		t.Fatal(err)
	}

	// Let playback start, then clear everything.
	time.Sleep(10 * time.Millisecond)
	conn.Stop()

	if got := conn.QueueLen(); got != 0 {
		t.Fatalf("QueueLen after Stop = %d, want 0", got)
	}
	select {
	case evt := <-conn.Events():
		t.Fatalf("unexpected event after bulk stop: %v", evt.Kind)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTrackStopAdvancesQueue(t *testing.T) {
	sender := &fakeSender{}
	conn := newVoiceConn("g1", sender)
	defer conn.closeLocal()

	handle, err := conn.Enqueue(&fakeSource{infinite: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Enqueue(&fakeSource{frames: 1}); err != nil {
		t.Fatal(err)
	}

	if err := handle.Stop(); err != nil {
		t.Fatal(err)
	}

	// Skip of the first track, then natural end of the second.
	for i := 0; i < 2; i++ {
		evt := readEvent(t, conn, time.Second)
		if evt.Kind != voice.EventTrackEnd {
			t.Fatalf("event %d: kind = %v, want EventTrackEnd", i, evt.Kind)
		}
	}
	if got := conn.QueueLen(); got != 0 {
		t.Fatalf("QueueLen = %d, want 0", got)
	}
}

func TestLeaveEmitsDisconnectAndCloses(t *testing.T) {
	sender := &fakeSender{}
	conn := newVoiceConn("g1", sender)

	if err := conn.Leave(); err != nil {
		t.Fatal(err)
	}

	evt, ok := <-conn.Events()
	if !ok || evt.Kind != voice.EventDisconnect {
		t.Fatalf("first event = %v, %v; want EventDisconnect, true", evt.Kind, ok)
	}
	if _, ok := <-conn.Events(); ok {
		t.Fatal("event channel should be closed after Leave")
	}
	if !sender.wasClosed() {
		t.Fatal("sender was not closed")
	}
}

func TestTransportDroppedEmitsDisconnect(t *testing.T) {
	sender := &fakeSender{}
	conn := newVoiceConn("g1", sender)

	conn.transportDropped()

	evt, ok := <-conn.Events()
	if !ok || evt.Kind != voice.EventDisconnect {
		t.Fatalf("first event = %v, %v; want EventDisconnect, true", evt.Kind, ok)
	}
	if _, ok := <-conn.Events(); ok {
		t.Fatal("event channel should be closed after a transport drop")
	}
	if sender.wasClosed() {
		t.Fatal("a remote drop must not call back into the sender")
	}
}

func TestEnqueueRejectsUnknownSource(t *testing.T) {
	conn := newVoiceConn("g1", &fakeSender{})
	defer conn.closeLocal()

	if _, err := conn.Enqueue(struct{}{}); err == nil {
		t.Fatal("expected an error for a non-opus source")
	}
}

func TestEnqueueAfterCloseFails(t *testing.T) {
	conn := newVoiceConn("g1", &fakeSender{})
	conn.closeLocal()

	if _, err := conn.Enqueue(&fakeSource{frames: 1}); err == nil {
		t.Fatal("expected an error after close")
	}
}
