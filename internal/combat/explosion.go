package combat

import (
	"math"

	"voxelfront/server/internal/physics"
	"voxelfront/server/internal/terrain"
	"voxelfront/server/internal/vmath"
)

// Explosion is a projectile contact event.
type Explosion struct {
	Source    string
	Ability   string
	Point     vmath.Vec3
	Direction vmath.Vec3
	Damage    float64
	Radius    float64
	Knockback float64
}

// ExplosionResult lists what an explosion destroyed and reached.
type ExplosionResult struct {
	Cells  []terrain.Cell
	Actors []string
}

// Population enumerates the actors an explosion may reach.
type Population interface {
	// LiveActors returns the ids of every actor that can take damage.
	LiveActors() []string
}

// EffectSpawner creates cosmetic transient objects.
type EffectSpawner interface {
	SpawnExplosionEffect(point vmath.Vec3, radius float64)
}

// ExplosionResolverConfig wires the resolver. Effects and Observer are
// optional.
type ExplosionResolverConfig struct {
	Terrain    *terrain.Accumulator
	Bodies     physics.Bodies
	Population Population
	Actors     ActorDamager
	Effects    EffectSpawner
	Observer   Observer
}

// ExplosionResolver carves terrain and damages every actor within a flat
// radius of the contact point.
type ExplosionResolver struct {
	cfg ExplosionResolverConfig
}

func NewExplosionResolver(cfg ExplosionResolverConfig) *ExplosionResolver {
	return &ExplosionResolver{cfg: cfg}
}

// Resolve applies an explosion. Cells within Radius of the contact cell are
// cleared outright, except indestructible ones. Every live actor within
// Radius of the contact point takes the full damage with no falloff.
func (r *ExplosionResolver) Resolve(ex Explosion) ExplosionResult {
	var result ExplosionResult
	if r == nil || ex.Radius < 0 || !ex.Point.Finite() {
		return result
	}

	result.Cells = r.carve(ex)
	result.Actors = r.damageActors(ex)

	if r.cfg.Effects != nil {
		r.cfg.Effects.SpawnExplosionEffect(ex.Point, ex.Radius)
	}
	if r.cfg.Observer != nil {
		r.cfg.Observer.ExplosionResolved(ex, result)
	}
	return result
}

func (r *ExplosionResolver) carve(ex Explosion) []terrain.Cell {
	if r.cfg.Terrain == nil {
		return nil
	}
	center := terrain.CellAt(ex.Point)
	reach := int(math.Floor(ex.Radius))
	radiusSq := ex.Radius * ex.Radius
	var cleared []terrain.Cell
	for dx := -reach; dx <= reach; dx++ {
		for dy := -reach; dy <= reach; dy++ {
			for dz := -reach; dz <= reach; dz++ {
				if float64(dx*dx+dy*dy+dz*dz) > radiusSq {
					continue
				}
				cell := center.Offset(dx, dy, dz)
				if r.cfg.Terrain.Clear(cell) {
					cleared = append(cleared, cell)
				}
			}
		}
	}
	return cleared
}

func (r *ExplosionResolver) damageActors(ex Explosion) []string {
	if r.cfg.Population == nil || r.cfg.Bodies == nil {
		return nil
	}
	push := ex.Direction.Normalize()
	var reached []string
	for _, id := range r.cfg.Population.LiveActors() {
		transform, ok := r.cfg.Bodies.Transform(id)
		if !ok || transform.Position.Dist(ex.Point) > ex.Radius {
			continue
		}
		if r.cfg.Actors != nil && !r.cfg.Actors.ApplyDamage(Damage{Source: ex.Source, Target: id, Ability: ex.Ability, Amount: ex.Damage}) {
			continue
		}
		reached = append(reached, id)
		if ex.Knockback == 0 || push.IsZero() {
			continue
		}
		if mass := r.cfg.Bodies.Mass(id); mass > 0 {
			r.cfg.Bodies.ApplyImpulse(id, push.Scale(mass*ex.Knockback))
		}
	}
	return reached
}
