package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for CommandsProcessed.
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeDropped  = "dropped"
)

// ShotsFired counts trigger pulls that discharged, by weapon kind.
var ShotsFired = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "voxelfront_shots_fired_total",
		Help: "Total number of weapon discharges and melee swings",
	},
	[]string{"kind"},
)

// HitsResolved counts resolved hits by outcome (miss, terrain, actor).
var HitsResolved = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "voxelfront_hits_resolved_total",
		Help: "Total number of resolved rays by outcome",
	},
	[]string{"outcome"},
)

// DamageDealt sums health and armor damage applied to actors.
var DamageDealt = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "voxelfront_damage_dealt_total",
		Help: "Total damage applied to actors",
	},
)

// Defeats counts actors whose health reached zero.
var Defeats = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "voxelfront_defeats_total",
		Help: "Total number of defeated actors",
	},
)

// BlocksBroken counts terrain cells removed by damage or explosions.
var BlocksBroken = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "voxelfront_blocks_broken_total",
		Help: "Total number of terrain cells destroyed",
	},
	[]string{"cause"},
)

// Explosions counts projectile detonations.
var Explosions = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "voxelfront_explosions_total",
		Help: "Total number of explosions",
	},
)

// Reloads counts reload starts and completions.
var Reloads = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "voxelfront_reloads_total",
		Help: "Total number of weapon reloads by phase",
	},
	[]string{"phase"},
)

// CommandsProcessed counts simulation commands by type and outcome.
var CommandsProcessed = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "voxelfront_commands_total",
		Help: "Total number of simulation commands by type and outcome",
	},
	[]string{"type", "outcome"},
)

// TickDuration observes how long each simulation step took.
var TickDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "voxelfront_tick_duration_seconds",
		Help:    "Simulation tick duration in seconds",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	},
)

// LiveObjects tracks transient world objects by kind.
var LiveObjects = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "voxelfront_live_objects",
		Help: "Number of live transient world objects by kind",
	},
	[]string{"kind"},
)

// Sessions tracks connected websocket clients.
var Sessions = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "voxelfront_sessions",
		Help: "Number of connected websocket sessions",
	},
)

var internalCounters = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "voxelfront_internal_events_total",
		Help: "Counters reported through the generic Metrics interface",
	},
	[]string{"key"},
)

var internalGauges = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "voxelfront_internal_value",
		Help: "Gauges reported through the generic Metrics interface",
	},
	[]string{"key"},
)

// RegisterMetrics registers every collector in this package with reg.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(
		ShotsFired,
		HitsResolved,
		DamageDealt,
		Defeats,
		BlocksBroken,
		Explosions,
		Reloads,
		CommandsProcessed,
		TickDuration,
		LiveObjects,
		Sessions,
		internalCounters,
		internalGauges,
	)
}

// RecordTick observes a simulation step duration.
func RecordTick(duration time.Duration) {
	TickDuration.Observe(duration.Seconds())
}

// RecordCommand counts a processed command.
func RecordCommand(commandType, outcome string) {
	CommandsProcessed.WithLabelValues(commandType, outcome).Inc()
}

// Metrics exposes the generic counter and gauge methods required by
// infrastructure components such as the command buffer.
type Metrics interface {
	Add(key string, delta uint64)
	Store(key string, value uint64)
}

// PrometheusMetrics routes generic keys into labelled prometheus vectors.
func PrometheusMetrics() Metrics {
	return prometheusMetrics{}
}

type prometheusMetrics struct{}

func (prometheusMetrics) Add(key string, delta uint64) {
	internalCounters.WithLabelValues(key).Add(float64(delta))
}

func (prometheusMetrics) Store(key string, value uint64) {
	internalGauges.WithLabelValues(key).Set(float64(value))
}
