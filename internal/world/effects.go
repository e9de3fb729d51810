package world

import (
	"time"

	"github.com/oklog/ulid/v2"

	"voxelfront/server/internal/combat"
	"voxelfront/server/internal/notify"
	"voxelfront/server/internal/schedule"
	"voxelfront/server/internal/terrain"
	"voxelfront/server/internal/vmath"
)

// Effect kinds shown to clients.
const (
	EffectExplosion   = "explosion"
	EffectMuzzleFlash = "muzzle_flash"
	EffectProjectile  = "projectile"
)

// SpawnExplosionEffect places an expanding sphere that fades out over a few
// ticks.
func (w *World) SpawnExplosionEffect(point vmath.Vec3, radius float64) {
	id := ulid.Make().String()
	life := &schedule.Generation{}
	entry := w.create(id, KindEffect, Effect)
	data := EffectData{Kind: EffectExplosion, Position: point, Radius: radius, Opacity: 1, Life: life}
	Effect.SetValue(entry, data)
	w.broadcastEffect(effectPayload(id, data))
	w.scheduleFade(id, life.Lease())
}

func (w *World) scheduleFade(id string, lease schedule.Lease) {
	w.scheduler.After(w.config.EffectFadeInterval, schedule.Guard(lease, func(time.Time) {
		w.fadeEffect(id)
	}))
}

// fadeEffect lowers an effect's opacity one step, removing it once it is
// fully transparent.
func (w *World) fadeEffect(id string) {
	entry, ok := w.entry(id, KindEffect)
	if !ok {
		return
	}
	data := Effect.Get(entry)
	data.Opacity -= w.config.EffectFadeStep
	if data.Opacity <= healthEpsilon {
		data.Opacity = 0
		data.Life.Bump()
		payload := effectPayload(id, *data)
		payload.Removed = true
		w.destroy(id)
		w.broadcastEffect(payload)
		return
	}
	w.broadcastEffect(effectPayload(id, *data))
	w.scheduleFade(id, data.Life.Lease())
}

func effectPayload(id string, data EffectData) notify.EffectPayload {
	return notify.EffectPayload{
		ID:       id,
		Kind:     data.Kind,
		Position: data.Position,
		Radius:   data.Radius,
		Opacity:  data.Opacity,
	}
}

// cueObserver turns resolved combat into positional audio cues.
func (w *World) cueObserver() combat.Observer {
	return combat.ObserverFuncs{
		OnBreak: func(_ string, cell terrain.Cell, _ terrain.MaterialID, _ int) {
			w.broadcastCue(notify.CueBlockBreak, "", cell.Center())
		},
		OnExplosion: func(ex combat.Explosion, _ combat.ExplosionResult) {
			w.broadcastCue(notify.CueExplosion, "", ex.Point)
		},
	}
}
