package combat

import (
	"context"

	"voxelfront/server/internal/telemetry"
	"voxelfront/server/internal/terrain"
	"voxelfront/server/logging"
	loggingcombat "voxelfront/server/logging/combat"
)

// TelemetryConfig captures the dependencies required to publish combat
// telemetry events from within the combat package.
type TelemetryConfig struct {
	Publisher   logging.Publisher
	CurrentTick func() uint64
}

func (cfg TelemetryConfig) tick() uint64 {
	if cfg.CurrentTick == nil {
		return 0
	}
	return cfg.CurrentTick()
}

// NewTelemetryObserver returns an Observer that records resolution results
// as prometheus counters and, when a publisher is configured, structured
// events.
func NewTelemetryObserver(cfg TelemetryConfig) Observer {
	return telemetryObserver{cfg: cfg}
}

type telemetryObserver struct {
	cfg TelemetryConfig
}

func (o telemetryObserver) ShotResolved(_ Shot, outcome HitOutcome) {
	telemetry.HitsResolved.WithLabelValues(outcome.Kind.String()).Inc()
}

func (o telemetryObserver) BlockBroken(actorID string, cell terrain.Cell, material terrain.MaterialID, yield int) {
	telemetry.BlocksBroken.WithLabelValues("damage").Inc()
	loggingcombat.BlockBroken(
		context.Background(),
		o.cfg.Publisher,
		o.cfg.tick(),
		logging.ActorRef(actorID),
		loggingcombat.BlockBrokenPayload{X: cell.X, Y: cell.Y, Z: cell.Z, Material: uint16(material), Yield: yield},
		nil,
	)
}

func (o telemetryObserver) ExplosionResolved(ex Explosion, result ExplosionResult) {
	telemetry.Explosions.Inc()
	telemetry.BlocksBroken.WithLabelValues("explosion").Add(float64(len(result.Cells)))
	targets := make([]logging.EntityRef, 0, len(result.Actors))
	for _, id := range result.Actors {
		targets = append(targets, logging.ActorRef(id))
	}
	loggingcombat.Explosion(
		context.Background(),
		o.cfg.Publisher,
		o.cfg.tick(),
		logging.ActorRef(ex.Source),
		targets,
		loggingcombat.ExplosionPayload{
			X:            ex.Point.X,
			Y:            ex.Point.Y,
			Z:            ex.Point.Z,
			Radius:       ex.Radius,
			CellsCleared: len(result.Cells),
			ActorsHit:    len(result.Actors),
		},
		nil,
	)
}

// DamageReport is what an actor damage application produced.
type DamageReport struct {
	Damage       Damage
	Absorbed     float64
	TargetHealth float64
	TargetArmor  float64
	Defeated     bool
}

// NewDamageTelemetryRecorder constructs a hook that emits damage and defeat
// telemetry for applied damage.
func NewDamageTelemetryRecorder(cfg TelemetryConfig) func(DamageReport) {
	return func(report DamageReport) {
		telemetry.DamageDealt.Add(report.Damage.Amount)
		source := logging.ActorRef(report.Damage.Source)
		target := logging.ActorRef(report.Damage.Target)
		tick := cfg.tick()
		loggingcombat.Damage(
			context.Background(),
			cfg.Publisher,
			tick,
			source,
			target,
			loggingcombat.DamagePayload{
				Ability:      report.Damage.Ability,
				Amount:       report.Damage.Amount,
				Absorbed:     report.Absorbed,
				TargetHealth: report.TargetHealth,
				TargetArmor:  report.TargetArmor,
			},
			nil,
		)
		if !report.Defeated {
			return
		}
		telemetry.Defeats.Inc()
		loggingcombat.Defeat(
			context.Background(),
			cfg.Publisher,
			tick,
			source,
			target,
			loggingcombat.DefeatPayload{Ability: report.Damage.Ability},
			nil,
		)
	}
}

// NewShotTelemetryRecorder constructs a hook that records a trigger pull.
func NewShotTelemetryRecorder(cfg TelemetryConfig) func(actorID, item string, kind WeaponKind, result FireResult) {
	return func(actorID, item string, kind WeaponKind, result FireResult) {
		telemetry.ShotsFired.WithLabelValues(string(kind)).Inc()
		hits := 0
		for _, outcome := range result.Outcomes {
			if outcome.Hit() {
				hits++
			}
		}
		payload := loggingcombat.ShotPayload{Item: item, Kind: string(kind), Hits: hits}
		if kind == KindSpread {
			payload.Pellets = len(result.Outcomes)
		}
		loggingcombat.Shot(context.Background(), cfg.Publisher, cfg.tick(), logging.ActorRef(actorID), payload, nil)
	}
}
