package combat

import (
	"voxelfront/server/internal/terrain"
	"voxelfront/server/internal/vmath"
)

// Shot is one ray's worth of intent.
type Shot struct {
	Shooter      string
	Ability      string
	Origin       vmath.Vec3
	Direction    vmath.Vec3
	Range        float64
	Damage       float64
	Knockback    float64
	MinesTerrain bool
}

// OutcomeKind tags a HitOutcome.
type OutcomeKind int

const (
	OutcomeMiss OutcomeKind = iota
	OutcomeTerrain
	OutcomeActor
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeTerrain:
		return "terrain"
	case OutcomeActor:
		return "actor"
	default:
		return "miss"
	}
}

// HitOutcome is what a single ray struck. Cell and Material are set for
// terrain hits, ActorID and Normal for actor hits.
type HitOutcome struct {
	Kind     OutcomeKind
	Cell     terrain.Cell
	Material terrain.MaterialID
	ActorID  string
	Point    vmath.Vec3
	Normal   vmath.Vec3
	// Direction is the normalized ray direction that produced the outcome.
	Direction vmath.Vec3
	// Broken is set when a terrain hit destroyed its cell.
	Broken bool
}

// Hit reports whether the ray struck anything.
func (o HitOutcome) Hit() bool {
	return o.Kind != OutcomeMiss
}

// Damage describes health loss requested by a resolver.
type Damage struct {
	Source  string
	Target  string
	Ability string
	Amount  float64
}

// ActorDamager applies damage to live actors.
type ActorDamager interface {
	// ApplyDamage reports false when the target cannot take damage, for
	// example because it is unknown or already defeated.
	ApplyDamage(d Damage) bool
}

// YieldAwarder credits material drops to an actor.
type YieldAwarder interface {
	AwardYield(actorID string, material terrain.MaterialID, units int)
}

// Observer receives resolution results for telemetry and client cues.
type Observer interface {
	ShotResolved(shot Shot, outcome HitOutcome)
	BlockBroken(actorID string, cell terrain.Cell, material terrain.MaterialID, yield int)
	ExplosionResolved(explosion Explosion, result ExplosionResult)
}

// ObserverFuncs adapts optional callbacks into an Observer.
type ObserverFuncs struct {
	OnShot      func(Shot, HitOutcome)
	OnBreak     func(actorID string, cell terrain.Cell, material terrain.MaterialID, yield int)
	OnExplosion func(Explosion, ExplosionResult)
}

func (o ObserverFuncs) ShotResolved(shot Shot, outcome HitOutcome) {
	if o.OnShot != nil {
		o.OnShot(shot, outcome)
	}
}

func (o ObserverFuncs) BlockBroken(actorID string, cell terrain.Cell, material terrain.MaterialID, yield int) {
	if o.OnBreak != nil {
		o.OnBreak(actorID, cell, material, yield)
	}
}

func (o ObserverFuncs) ExplosionResolved(explosion Explosion, result ExplosionResult) {
	if o.OnExplosion != nil {
		o.OnExplosion(explosion, result)
	}
}

// Observers fans out to several observers in order.
type Observers []Observer

func (o Observers) ShotResolved(shot Shot, outcome HitOutcome) {
	for _, obs := range o {
		if obs != nil {
			obs.ShotResolved(shot, outcome)
		}
	}
}

func (o Observers) BlockBroken(actorID string, cell terrain.Cell, material terrain.MaterialID, yield int) {
	for _, obs := range o {
		if obs != nil {
			obs.BlockBroken(actorID, cell, material, yield)
		}
	}
}

func (o Observers) ExplosionResolved(explosion Explosion, result ExplosionResult) {
	for _, obs := range o {
		if obs != nil {
			obs.ExplosionResolved(explosion, result)
		}
	}
}
