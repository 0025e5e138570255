package voice

import "context"

// AudioSource is an opaque handle to a playable source. It is produced by an
// external resolver and passed straight through to the transport; this
// package never inspects it.
type AudioSource interface{}

// TrackHandle controls a single queued track on the transport side.
type TrackHandle interface {
	// Stop forcibly ends the track. The transport reports the end through
	// its event stream, which advances the playback queue.
	Stop() error
}

// Conn is one live voice connection together with its playback queue.
// Implementations must be safe for concurrent use.
type Conn interface {
	// Enqueue appends a source to the tail of the playback queue.
	Enqueue(src AudioSource) (TrackHandle, error)

	// Current returns the track at the head of the queue, if any.
	Current() (TrackHandle, bool)

	// QueueLen reports the number of tracks in the playback queue,
	// including the one currently playing.
	QueueLen() int

	// Stop clears the playback queue and halts playback without
	// disconnecting.
	Stop()

	// Leave terminates the connection.
	Leave() error

	// Events delivers transport notifications for this connection. The
	// channel is closed once the connection is gone for good.
	Events() <-chan Event
}

// Transport establishes voice connections.
type Transport interface {
	Join(ctx context.Context, guildID, channelID string) (Conn, error)
}

// Member is a single occupant of a voice channel.
type Member struct {
	UserID string
	Bot    bool
}

// MembershipResolver lists the occupants of a voice channel.
type MembershipResolver interface {
	Resolve(ctx context.Context, channelID string) ([]Member, error)
}
