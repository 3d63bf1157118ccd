package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pass kinds used as label values.
const (
	KindPlayer = "player"
	KindNpc    = "npc"
	// KindWorld labels checks done outside a pass (removal flush).
	KindWorld = "world"
)

// Reasons for dropped updates and invariant violations (bounded label values).
const (
	ReasonOverflow     = "overflow"
	ReasonTransport    = "transport"
	ReasonStaleEntry   = "stale_entry"
	ReasonDirtyRemoved = "dirty_unregistered"
	ReasonLeftover     = "leftover_reference"
)

// Login rejection reasons.
const (
	LoginFull     = "world_full"
	LoginOnline   = "already_online"
	LoginBadBlock = "bad_block"
	LoginRevision = "revision"
)

// Metrics with bounded cardinality (no per-player labels).
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rs2go_tick_duration_seconds",
		Help:    "Time spent in one game tick",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.6},
	})

	tickOverruns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rs2go_tick_overruns_total",
		Help: "Ticks that did not finish within the tick interval",
	})

	passDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rs2go_sync_pass_duration_seconds",
		Help:    "Time spent building one client's view update",
		Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005},
	}, []string{"kind"})

	updateBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rs2go_sync_update_bytes_total",
		Help: "Bytes of view updates handed to the transport",
	}, []string{"kind"})

	trackedActors = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rs2go_sync_tracked_actors",
		Help:    "Actors tracked by a viewer after its pass",
		Buckets: []float64{0, 1, 5, 15, 50, 100, 220, 255},
	}, []string{"kind"})

	droppedUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rs2go_sync_dropped_updates_total",
		Help: "Client updates dropped for a tick",
	}, []string{"kind", "reason"})

	invariantViolations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rs2go_sync_invariant_violations_total",
		Help: "Internal state inconsistencies found and repaired by a pass",
	}, []string{"kind", "reason"})

	playersOnline = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rs2go_players_online",
		Help: "Registered players",
	})

	npcsRegistered = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rs2go_npcs_registered",
		Help: "Registered NPCs",
	})

	loginRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rs2go_login_rejected_total",
		Help: "Login attempts answered with an error code",
	}, []string{"reason"})

	floodDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rs2go_flood_dropped_packets_total",
		Help: "Inbound packets dropped by flood protection",
	})
)

// RecordTick records tick timing; overrun marks a tick longer than its interval.
func RecordTick(duration time.Duration, overrun bool) {
	tickDuration.Observe(duration.Seconds())
	if overrun {
		tickOverruns.Inc()
	}
}

// RecordPass records one client's pass of the given kind.
func RecordPass(kind string, duration time.Duration, bytes, tracked int) {
	passDuration.WithLabelValues(kind).Observe(duration.Seconds())
	updateBytes.WithLabelValues(kind).Add(float64(bytes))
	trackedActors.WithLabelValues(kind).Observe(float64(tracked))
}

// RecordDropped counts an update that was not delivered.
func RecordDropped(kind, reason string) {
	droppedUpdates.WithLabelValues(kind, reason).Inc()
}

// RecordInvariantViolation counts a repaired inconsistency.
func RecordInvariantViolation(kind, reason string, n int) {
	invariantViolations.WithLabelValues(kind, reason).Add(float64(n))
}

// UpdateOnline updates the registry gauges.
func UpdateOnline(players, npcs int) {
	playersOnline.Set(float64(players))
	npcsRegistered.Set(float64(npcs))
}

// RecordLoginRejected counts a rejected login.
func RecordLoginRejected(reason string) {
	loginRejected.WithLabelValues(reason).Inc()
}

// RecordFloodDrop counts an inbound packet dropped by flood protection.
func RecordFloodDrop() {
	floodDropped.Inc()
}
