package combat

import (
	"voxelfront/server/internal/physics"
	"voxelfront/server/internal/terrain"
)

// HitResolverConfig wires the resolver to its collaborators. Terrain, Actors,
// Yield and Observer are optional.
type HitResolverConfig struct {
	Physics  physics.Physics
	Terrain  *terrain.Accumulator
	Actors   ActorDamager
	Yield    YieldAwarder
	Observer Observer
}

// HitResolver turns rays into terrain damage, actor damage and knockback.
type HitResolver struct {
	cfg HitResolverConfig
}

// NewHitResolver returns nil when no physics collaborator is supplied.
func NewHitResolver(cfg HitResolverConfig) *HitResolver {
	if cfg.Physics == nil {
		return nil
	}
	return &HitResolver{cfg: cfg}
}

// ResolveSingleShot casts one ray, excluding the shooter's body, and applies
// its consequences.
func (r *HitResolver) ResolveSingleShot(shot Shot) HitOutcome {
	direction := shot.Direction.Normalize()
	outcome := HitOutcome{Kind: OutcomeMiss, Direction: direction}
	if r == nil || direction.IsZero() || shot.Range <= 0 {
		return outcome
	}

	hit, ok := r.cfg.Physics.Raycast(shot.Origin, direction, shot.Range, shot.Shooter)
	if ok {
		outcome.Point = hit.Point
		outcome.Normal = hit.Normal
		if hit.Terrain() {
			outcome.Kind = OutcomeTerrain
			outcome.Cell = hit.Cell
			outcome.Material = hit.Material
			outcome.Broken = r.damageTerrain(shot, hit.Cell, hit.Material)
		} else {
			outcome.Kind = OutcomeActor
			outcome.ActorID = hit.Body
			r.damageActor(shot, hit)
		}
	}

	if r.cfg.Observer != nil {
		r.cfg.Observer.ShotResolved(shot, outcome)
	}
	return outcome
}

// ResolveSpreadShot fires one independent ray per pellet offset.
func (r *HitResolver) ResolveSpreadShot(shot Shot, pellets []PelletOffset) []HitOutcome {
	outcomes := make([]HitOutcome, 0, len(pellets))
	for _, pellet := range pellets {
		pelletShot := shot
		pelletShot.Direction = PelletDirection(shot.Direction, pellet)
		outcomes = append(outcomes, r.ResolveSingleShot(pelletShot))
	}
	return outcomes
}

func (r *HitResolver) damageTerrain(shot Shot, cell terrain.Cell, material terrain.MaterialID) bool {
	if r.cfg.Terrain == nil {
		return false
	}
	if !r.cfg.Terrain.Damage(cell, shot.Damage) {
		return false
	}
	yield := 0
	if shot.MinesTerrain {
		yield = r.cfg.Terrain.MaterialYield(material)
		if yield > 0 && r.cfg.Yield != nil && shot.Shooter != "" {
			r.cfg.Yield.AwardYield(shot.Shooter, material, yield)
		}
	}
	if r.cfg.Observer != nil {
		r.cfg.Observer.BlockBroken(shot.Shooter, cell, material, yield)
	}
	return true
}

func (r *HitResolver) damageActor(shot Shot, hit physics.RayHit) {
	if r.cfg.Actors != nil {
		if !r.cfg.Actors.ApplyDamage(Damage{Source: shot.Shooter, Target: hit.Body, Ability: shot.Ability, Amount: shot.Damage}) {
			return
		}
	}
	if shot.Knockback == 0 {
		return
	}
	mass := r.cfg.Physics.Mass(hit.Body)
	if mass <= 0 {
		return
	}
	impulse := hit.Normal.Neg().Scale(mass * shot.Knockback)
	r.cfg.Physics.ApplyImpulse(hit.Body, impulse)
}
