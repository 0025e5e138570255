package voice

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chancedrigor/ParakeetBot/internal/metrics"
)

// displayBudget caps the rendered queue listing. A Discord embed description
// holds at most 4096 characters.
const displayBudget = 4096

// MissingTitle stands in for tracks whose resolver gave no title.
const MissingTitle = "<MISSING TITLE>"

// TrackMetadata is the display metadata for one queued track. All fields are
// optional; the zero value means the resolver had nothing. Values are
// immutable once created.
type TrackMetadata struct {
	Title        string
	Duration     time.Duration
	Channel      string
	ThumbnailURL string
	SourceURL    string
}

// String renders the track as a single queue line, as a markdown link when a
// source URL is known.
func (t TrackMetadata) String() string {
	title := t.Title
	if title == "" {
		title = MissingTitle
	}

	parts := []string{title}
	if t.Duration > 0 {
		parts = append(parts, FormatDuration(t.Duration))
	}
	if t.Channel != "" {
		parts = append(parts, t.Channel)
	}
	text := strings.Join(parts, " ")

	if t.SourceURL != "" {
		return fmt.Sprintf("[%s](%s)", text, t.SourceURL)
	}
	return text
}

// FormatDuration renders a duration as m:ss, or h:mm:ss for long tracks.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// QueueMetadata is the ordered display-metadata list for one guild, kept in
// lockstep with the transport's playback queue. All operations serialize
// behind one lock.
type QueueMetadata struct {
	mu     sync.Mutex
	tracks []TrackMetadata
}

// NewQueueMetadata returns an empty queue.
func NewQueueMetadata() *QueueMetadata {
	return &QueueMetadata{}
}

// PushBack appends metadata to the tail of the queue.
func (q *QueueMetadata) PushBack(meta TrackMetadata) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tracks = append(q.tracks, meta)
	metrics.TracksQueued.Inc()
}

// PopFront removes and returns the metadata at the head of the queue.
func (q *QueueMetadata) PopFront() (TrackMetadata, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tracks) == 0 {
		return TrackMetadata{}, false
	}
	meta := q.tracks[0]
	q.tracks = q.tracks[1:]
	metrics.TracksQueued.Dec()
	return meta, true
}

// Front returns the metadata at the head of the queue without removing it.
func (q *QueueMetadata) Front() (TrackMetadata, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tracks) == 0 {
		return TrackMetadata{}, false
	}
	return q.tracks[0], true
}

// Clear empties the queue.
func (q *QueueMetadata) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	metrics.TracksQueued.Sub(float64(len(q.tracks)))
	q.tracks = nil
}

// Len reports the number of queued entries.
func (q *QueueMetadata) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tracks)
}

// DisplayString renders a numbered listing of the queue. Entries past the
// render budget are silently truncated.
func (q *QueueMetadata) DisplayString() string {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tracks) == 0 {
		return "Empty queue!"
	}

	var b strings.Builder
	for i, track := range q.tracks {
		line := fmt.Sprintf("%d. %s\n", i+1, track)
		if b.Len()+len(line) > displayBudget {
			break
		}
		b.WriteString(line)
	}
	return b.String()
}
