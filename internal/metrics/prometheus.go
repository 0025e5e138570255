// Package metrics exposes Prometheus instrumentation for the voice
// subsystem. Collectors register once at init through promauto and are safe
// to use from any package.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CallsActive is the number of live voice calls across all guilds.
	CallsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "parakeet_calls_active",
		Help: "Current number of live voice calls",
	})

	// CallsJoined counts successful voice channel joins.
	CallsJoined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parakeet_calls_joined_total",
		Help: "Total number of successful voice channel joins",
	})

	// TracksQueued is the number of tracks sitting in metadata queues.
	TracksQueued = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "parakeet_tracks_queued",
		Help: "Current number of tracks across all metadata queues",
	})

	// TracksEnded counts track-end notifications handled.
	TracksEnded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parakeet_tracks_ended_total",
		Help: "Total number of track-end notifications handled",
	})

	// Disconnects counts transport disconnect notifications handled.
	Disconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parakeet_disconnects_total",
		Help: "Total number of transport disconnects handled",
	})

	// IdleLeaves counts calls torn down by the idle monitor.
	IdleLeaves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parakeet_idle_leaves_total",
		Help: "Total number of calls left because the channel was idle",
	})

	// DesyncAnomalies counts metadata/playback queue desynchronizations.
	DesyncAnomalies = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parakeet_metadata_desync_total",
		Help: "Total number of metadata queue desynchronization anomalies",
	})
)
