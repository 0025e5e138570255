package voice

import "errors"

// User-facing errors. These are surfaced verbatim to the invoking user and
// never logged as failures.
var (
	ErrNotInVoice   = errors.New("couldn't find you in a voice channel")
	ErrNotInGuild   = errors.New("couldn't find your server")
	ErrNoActiveCall = errors.New("no active call")
	ErrEmptyQueue   = errors.New("nothing in the queue")
)
