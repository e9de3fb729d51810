package world

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/yohamta/donburi"

	"voxelfront/server/internal/combat"
	"voxelfront/server/internal/notify"
	"voxelfront/server/internal/schedule"
)

// Launch spawns a projectile that travels until it strikes something or its
// lifetime elapses.
func (w *World) Launch(p combat.ProjectileLaunch) string {
	id := ulid.Make().String()
	p.Direction = p.Direction.Normalize()
	life := &schedule.Generation{}
	entry := w.create(id, KindProjectile, Projectile)
	Projectile.SetValue(entry, ProjectileData{Launch: p, Position: p.Origin, Life: life})

	w.scheduler.After(p.Lifetime, schedule.Guard(life.Lease(), func(time.Time) {
		w.removeProjectile(id)
	}))
	w.broadcastEffect(notify.EffectPayload{ID: id, Kind: EffectProjectile, Position: p.Origin, Opacity: 1})
	return id
}

type projectileContact struct {
	id        string
	explosion combat.Explosion
}

// advanceProjectiles sweeps every projectile along its path for dt seconds.
// A projectile that meets terrain or an actor other than its owner detonates
// at the contact point.
func (w *World) advanceProjectiles(dt float64) {
	if dt <= 0 {
		return
	}
	var contacts []projectileContact
	var moved []notify.EffectPayload
	projectileQuery.Each(w.ecs, func(entry *donburi.Entry) {
		id := Identity.Get(entry).ID
		data := Projectile.Get(entry)
		launch := data.Launch
		step := launch.Speed * dt
		if hit, ok := w.space.Raycast(data.Position, launch.Direction, step, launch.Owner); ok {
			contacts = append(contacts, projectileContact{id: id, explosion: combat.Explosion{
				Source:    launch.Owner,
				Ability:   launch.Ability,
				Point:     hit.Point,
				Direction: launch.Direction,
				Damage:    launch.Damage,
				Radius:    launch.Radius,
				Knockback: launch.Knockback,
			}})
			return
		}
		data.Position = data.Position.Add(launch.Direction.Scale(step))
		moved = append(moved, notify.EffectPayload{ID: id, Kind: EffectProjectile, Position: data.Position, Opacity: 1})
	})

	for _, contact := range contacts {
		w.removeProjectile(contact.id)
		w.explosions.Resolve(contact.explosion)
	}
	for _, payload := range moved {
		w.broadcastEffect(payload)
	}
}

func (w *World) removeProjectile(id string) {
	entry, ok := w.entry(id, KindProjectile)
	if !ok {
		return
	}
	data := Projectile.Get(entry)
	data.Life.Bump()
	position := data.Position
	w.destroy(id)
	w.broadcastEffect(notify.EffectPayload{ID: id, Kind: EffectProjectile, Position: position, Removed: true})
}
