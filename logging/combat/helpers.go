// Package combat publishes weapon, damage and terrain destruction events.
package combat

import (
	"context"

	"voxelfront/server/logging"
)

const (
	// EventShot is emitted when a weapon fires or a melee swing lands.
	EventShot logging.EventType = "combat.shot"
	// EventDamage is emitted when an actor takes damage.
	EventDamage logging.EventType = "combat.damage"
	// EventDefeat is emitted when an actor's health reaches zero.
	EventDefeat logging.EventType = "combat.defeat"
	// EventBlockBroken is emitted when accumulated damage breaks a terrain cell.
	EventBlockBroken logging.EventType = "combat.block_broken"
	// EventExplosion is emitted when a projectile detonates.
	EventExplosion logging.EventType = "combat.explosion"
	// EventReload is emitted on reload start, completion and cancellation.
	EventReload logging.EventType = "combat.reload"
)

// ShotPayload describes a single trigger pull.
type ShotPayload struct {
	Item    string `json:"item"`
	Kind    string `json:"kind"`
	Pellets int    `json:"pellets,omitempty"`
	Hits    int    `json:"hits"`
}

// DamagePayload captures the amount dealt to a single target.
type DamagePayload struct {
	Ability      string  `json:"ability,omitempty"`
	Amount       float64 `json:"amount"`
	Absorbed     float64 `json:"absorbed,omitempty"`
	TargetHealth float64 `json:"targetHealth"`
	TargetArmor  float64 `json:"targetArmor,omitempty"`
}

// DefeatPayload describes the context for a fatal blow.
type DefeatPayload struct {
	Ability string `json:"ability,omitempty"`
}

// BlockBrokenPayload locates a destroyed terrain cell.
type BlockBrokenPayload struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Z        int    `json:"z"`
	Material uint16 `json:"material"`
	Yield    int    `json:"yield,omitempty"`
}

// ExplosionPayload summarises an area detonation.
type ExplosionPayload struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Z            float64 `json:"z"`
	Radius       float64 `json:"radius"`
	CellsCleared int     `json:"cellsCleared"`
	ActorsHit    int     `json:"actorsHit"`
}

// ReloadPayload captures magazine state at a reload transition.
type ReloadPayload struct {
	Item     string `json:"item"`
	Phase    string `json:"phase"`
	Magazine int    `json:"magazine"`
	Reserve  int    `json:"reserve"`
}

func publish(ctx context.Context, pub logging.Publisher, event logging.Event) {
	if pub == nil {
		return
	}
	event.Category = logging.CategoryCombat
	if event.Severity == 0 {
		event.Severity = logging.SeverityInfo
	}
	pub.Publish(ctx, event)
}

// Shot publishes a weapon discharge.
func Shot(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ShotPayload, extra map[string]any) {
	publish(ctx, pub, logging.Event{Type: EventShot, Tick: tick, Actor: actor, Severity: logging.SeverityDebug, Payload: payload, Extra: extra})
}

// Damage publishes a combat damage event for a single target.
func Damage(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload DamagePayload, extra map[string]any) {
	publish(ctx, pub, logging.Event{Type: EventDamage, Tick: tick, Actor: actor, Targets: []logging.EntityRef{target}, Payload: payload, Extra: extra})
}

// Defeat publishes a combat defeat event for the eliminated actor.
func Defeat(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload DefeatPayload, extra map[string]any) {
	publish(ctx, pub, logging.Event{Type: EventDefeat, Tick: tick, Actor: actor, Targets: []logging.EntityRef{target}, Payload: payload, Extra: extra})
}

// BlockBroken publishes a terrain cell destruction.
func BlockBroken(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload BlockBrokenPayload, extra map[string]any) {
	publish(ctx, pub, logging.Event{Type: EventBlockBroken, Tick: tick, Actor: actor, Payload: payload, Extra: extra})
}

// Explosion publishes an area detonation and the actors it reached.
func Explosion(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, targets []logging.EntityRef, payload ExplosionPayload, extra map[string]any) {
	publish(ctx, pub, logging.Event{Type: EventExplosion, Tick: tick, Actor: actor, Targets: targets, Payload: payload, Extra: extra})
}

// Reload publishes a reload transition.
func Reload(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ReloadPayload, extra map[string]any) {
	publish(ctx, pub, logging.Event{Type: EventReload, Tick: tick, Actor: actor, Severity: logging.SeverityDebug, Payload: payload, Extra: extra})
}
