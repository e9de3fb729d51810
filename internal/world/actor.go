package world

import (
	"context"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/yohamta/donburi"

	"voxelfront/server/internal/combat"
	"voxelfront/server/internal/inventory"
	"voxelfront/server/internal/items"
	"voxelfront/server/internal/notify"
	"voxelfront/server/internal/physics"
	"voxelfront/server/internal/schedule"
	"voxelfront/server/internal/telemetry"
	"voxelfront/server/internal/vmath"
	"voxelfront/server/logging"
	loggingcombat "voxelfront/server/logging/combat"
	logginginventory "voxelfront/server/logging/inventory"
	logginglifecycle "voxelfront/server/logging/lifecycle"
)

// Error codes attached to rejected actor operations.
const (
	CodeUnknownActor   = "UNKNOWN_ACTOR"
	CodeInvalidActor   = "INVALID_ACTOR"
	CodeMissingPayload = "MISSING_PAYLOAD"
	CodeUnknownCommand = "UNKNOWN_COMMAND"
)

const defaultLeaveReason = "disconnected"

// Actor is a handle on a joined actor. It stays usable across ticks but
// every method re-reads the entity, so a handle to an actor that left
// reports zero values and rejects actions.
type Actor struct {
	w      *World
	id     string
	entity donburi.Entity
}

func (a *Actor) ID() string { return a.id }

func (a *Actor) lookup() (*donburi.Entry, bool) {
	if !a.w.ecs.Valid(a.entity) {
		return nil, false
	}
	entry := a.w.ecs.Entry(a.entity)
	if Identity.Get(entry).ID != a.id {
		return nil, false
	}
	return entry, true
}

// live returns the entry only while the actor can act.
func (a *Actor) live() (*donburi.Entry, bool) {
	entry, ok := a.lookup()
	if !ok || Vitals.Get(entry).Defeated {
		return nil, false
	}
	return entry, true
}

// Vitals returns a copy of the actor's health state.
func (a *Actor) Vitals() VitalsData {
	entry, ok := a.lookup()
	if !ok {
		return VitalsData{}
	}
	return *Vitals.Get(entry)
}

func (a *Actor) Health() float64 { return a.Vitals().Health }
func (a *Actor) Armor() float64  { return a.Vitals().Armor }
func (a *Actor) Defeated() bool  { return a.Vitals().Defeated }

// Inventory returns the actor's inventory, or nil once the actor left.
func (a *Actor) Inventory() *inventory.Manager {
	entry, ok := a.lookup()
	if !ok {
		return nil
	}
	return Loadout.Get(entry).Inventory
}

// Transform returns the actor's current pose. Defeated actors have none.
func (a *Actor) Transform() (physics.Transform, bool) {
	return a.w.space.Transform(a.id)
}

// Fire uses the held item once. It reports whether anything happened.
func (a *Actor) Fire() bool {
	w := a.w
	entry, ok := a.live()
	if !ok {
		return false
	}
	loadout := Loadout.Get(entry)
	item := loadout.Inventory.ActiveItem()
	if item == nil {
		return false
	}
	transform, ok := w.space.Transform(a.id)
	if !ok {
		return false
	}
	req := combat.FireRequest{
		Now:       w.now,
		Shooter:   a.id,
		Ability:   item.Type,
		Origin:    transform.Position.Add(vmath.Up.Scale(w.config.EyeOffset)),
		Direction: transform.Facing,
	}

	switch {
	case item.Weapon != nil:
		reloading := item.Weapon.Reloading()
		result, fired := item.Weapon.Shoot(w.pipeline(), req)
		if !fired {
			if !reloading && item.Weapon.Reserve() <= 0 {
				w.cue(a.id, notify.CueDryFire, "")
			}
			return false
		}
		item.PlayAttack()
		w.broadcastCue(notify.CueFire, item.AttackAnimation, result.Muzzle)
		w.muzzleFlash(a.id, loadout, result.Muzzle)
		w.recordShot(a.id, item.Type, item.Kind, result)
		return true
	case item.Melee != nil:
		outcome, swung := item.Melee.Attack(w.hits, req)
		if !swung {
			return false
		}
		item.PlayAttack()
		w.broadcastCue(notify.CueSwing, item.AttackAnimation, req.Origin)
		if outcome.Hit() {
			w.broadcastCue(notify.CueHit, "", outcome.Point)
		}
		w.recordShot(a.id, item.Type, item.Kind, combat.FireResult{Muzzle: req.Origin, Outcomes: []combat.HitOutcome{outcome}})
		return true
	}
	return false
}

// Reload starts reloading the held weapon.
func (a *Actor) Reload() bool {
	if _, ok := a.live(); !ok {
		return false
	}
	item := a.Inventory().ActiveItem()
	if item == nil || item.Weapon == nil {
		return false
	}
	return item.Weapon.Reload(a.w.scheduler)
}

// SelectSlot makes slot the held one.
func (a *Actor) SelectSlot(slot int) bool {
	if _, ok := a.live(); !ok {
		return false
	}
	return a.Inventory().SetActiveSlot(slot)
}

// Drop throws the held item onto the ground in front of the actor.
func (a *Actor) Drop() bool {
	if _, ok := a.live(); !ok {
		return false
	}
	inv := a.Inventory()
	slot := inv.Active()
	item, ok := inv.DropActive()
	if !ok {
		return false
	}
	a.w.dropItem(a.id, item)
	logginginventory.ItemDropped(context.Background(), a.w.publisher, a.w.tick, logging.ActorRef(a.id), logginginventory.ItemPayload{
		ItemID:   item.ID,
		ItemType: item.Type,
		Slot:     slot,
		Quantity: item.Quantity,
	}, nil)
	return true
}

// Pickup collects the named ground item if it is within reach.
func (a *Actor) Pickup(itemID string) bool {
	if _, ok := a.live(); !ok {
		return false
	}
	return a.w.pickup(a.id, itemID)
}

// Aim adopts the client's reported pose and zoom state.
func (a *Actor) Aim(position, facing vmath.Vec3, zoom bool) bool {
	if _, ok := a.live(); !ok {
		return false
	}
	if !position.Finite() || !facing.Finite() || !a.w.inArena(position) {
		return false
	}
	if !a.w.space.SetPose(a.id, position, facing) {
		return false
	}
	if item := a.Inventory().ActiveItem(); item != nil {
		item.SetZoom(zoom)
	}
	return true
}

func (w *World) pipeline() combat.Pipeline {
	return combat.Pipeline{Hits: w.hits, Projectiles: w, Timer: w.scheduler}
}

// muzzleFlash lights a short-lived flash at the muzzle. A later shot or a
// weapon switch supersedes the pending extinguish.
func (w *World) muzzleFlash(actorID string, loadout *LoadoutData, position vmath.Vec3) {
	loadout.Muzzle.Bump()
	loadout.Flashing = true
	lease := loadout.Muzzle.Lease()
	w.broadcastEffect(notify.EffectPayload{ID: muzzleEffectID(actorID), Kind: EffectMuzzleFlash, Position: position, Opacity: 1})
	w.scheduler.After(w.config.MuzzleFlash, schedule.Guard(lease, func(time.Time) {
		if entry, ok := w.entry(actorID, KindActor); ok {
			w.extinguishMuzzle(actorID, Loadout.Get(entry))
		}
	}))
}

// extinguishMuzzle cancels any pending flash and removes a lit one.
func (w *World) extinguishMuzzle(actorID string, loadout *LoadoutData) {
	loadout.Muzzle.Bump()
	if !loadout.Flashing {
		return
	}
	loadout.Flashing = false
	w.broadcastEffect(notify.EffectPayload{ID: muzzleEffectID(actorID), Kind: EffectMuzzleFlash, Removed: true})
}

func muzzleEffectID(actorID string) string {
	return "muzzle:" + actorID
}

// Join spawns an actor with the default tool and configured loadout. Joining
// again while defeated respawns the actor; joining again while alive only
// resends its state.
func (w *World) Join(id string) (*Actor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, oops.Code(CodeInvalidActor).Errorf("actor id is empty")
	}
	if actor, ok := w.Actor(id); ok {
		if actor.Defeated() {
			w.respawn(id)
		} else {
			w.sendActorState(id)
		}
		return actor, nil
	}
	if _, taken := w.index[id]; taken {
		return nil, oops.Code(CodeInvalidActor).With("actor", id).Errorf("id %q belongs to another object", id)
	}

	tool, err := w.factory.DefaultTool()
	if err != nil {
		return nil, oops.Code(CodeInvalidActor).With("actor", id).Wrapf(err, "create default tool")
	}

	entry := w.create(id, KindActor, Vitals, Loadout)
	Vitals.SetValue(entry, VitalsData{
		Health:    w.config.MaxHealth,
		MaxHealth: w.config.MaxHealth,
		Armor:     w.config.StartArmor,
	})
	inv := inventory.NewManager(w.config.InventorySize, w.inventoryHooks(id))
	Loadout.SetValue(entry, LoadoutData{Inventory: inv, Muzzle: &schedule.Generation{}})

	spawn := w.spawnActorBody(id)
	inv.AddItem(tool)
	for _, itemType := range w.config.Loadout {
		item, err := w.factory.New(itemType)
		if err != nil {
			w.logger.Printf("[world] skipping loadout item %q for %s: %v", itemType, id, err)
			continue
		}
		inv.AddItem(item)
	}
	inv.SetActiveSlot(inventory.ToolSlot)

	logginglifecycle.ActorJoined(context.Background(), w.publisher, w.tick, logging.ActorRef(id), logginglifecycle.ActorJoinedPayload{
		SpawnX: spawn.X,
		SpawnY: spawn.Y,
		SpawnZ: spawn.Z,
	}, nil)
	w.sendActorState(id)
	return &Actor{w: w, id: id, entity: entry.Entity()}, nil
}

func (w *World) spawnActorBody(id string) vmath.Vec3 {
	position := spawnPosition(w.grid, w.config.Extent, w.config.ActorRadius, w.rng)
	w.space.AddBody(physics.Body{
		ID:       id,
		Kind:     physics.BodyActor,
		Position: position,
		Facing:   vmath.New(0, 0, -1),
		Radius:   w.config.ActorRadius,
		Mass:     w.config.ActorMass,
	})
	return position
}

func (w *World) respawn(id string) {
	entry, ok := w.entry(id, KindActor)
	if !ok {
		return
	}
	vitals := Vitals.Get(entry)
	vitals.Health = vitals.MaxHealth
	vitals.Armor = w.config.StartArmor
	vitals.Defeated = false

	spawn := w.spawnActorBody(id)
	inv := Loadout.Get(entry).Inventory
	inv.SetActiveSlot(inv.Active())

	logginglifecycle.ActorJoined(context.Background(), w.publisher, w.tick, logging.ActorRef(id), logginglifecycle.ActorJoinedPayload{
		SpawnX: spawn.X,
		SpawnY: spawn.Y,
		SpawnZ: spawn.Z,
	}, map[string]any{"respawn": true})
	w.sendActorState(id)
}

// Leave removes an actor and everything it carries.
func (w *World) Leave(id, reason string) error {
	entry, ok := w.entry(id, KindActor)
	if !ok {
		return oops.Code(CodeUnknownActor).With("actor", id).Errorf("actor %q has not joined", id)
	}
	if reason == "" {
		reason = defaultLeaveReason
	}
	loadout := Loadout.Get(entry)
	loadout.Inventory.UnequipAll()
	w.extinguishMuzzle(id, loadout)
	w.destroy(id)
	logginglifecycle.ActorLeft(context.Background(), w.publisher, w.tick, logging.ActorRef(id), logginglifecycle.ActorLeftPayload{Reason: reason}, nil)
	return nil
}

func (w *World) inventoryHooks(actorID string) inventory.Hooks {
	inv := func() *inventory.Manager {
		entry, ok := w.entry(actorID, KindActor)
		if !ok {
			return nil
		}
		return Loadout.Get(entry).Inventory
	}
	return inventory.Hooks{
		Changed: func() {
			if m := inv(); m != nil {
				w.sendInventory(actorID, m)
			}
		},
		ActiveChanged: func(from, to int) {
			if entry, ok := w.entry(actorID, KindActor); ok {
				w.extinguishMuzzle(actorID, Loadout.Get(entry))
			}
			w.sendActiveSlot(actorID, to)
			w.cue(actorID, notify.CueEquip, "")
			logginginventory.ActiveSlotChanged(context.Background(), w.publisher, w.tick, logging.ActorRef(actorID), logginginventory.SlotPayload{From: from, To: to}, nil)
		},
		Rejected: func(reason string) {
			w.notice(actorID, reason)
			logginginventory.ItemRejected(context.Background(), w.publisher, w.tick, logging.ActorRef(actorID), logginginventory.ItemPayload{Reason: reason}, nil)
		},
		WeaponHooks: func(item *items.Item) combat.WeaponHooks {
			return w.weaponHooks(actorID, item)
		},
	}
}

func (w *World) weaponHooks(actorID string, item *items.Item) combat.WeaponHooks {
	reload := func(phase string, state combat.AmmoState) {
		telemetry.Reloads.WithLabelValues(phase).Inc()
		loggingcombat.Reload(context.Background(), w.publisher, w.tick, logging.ActorRef(actorID), loggingcombat.ReloadPayload{
			Item:     item.Type,
			Phase:    phase,
			Magazine: state.Magazine,
			Reserve:  state.Reserve,
		}, nil)
	}
	return combat.WeaponHooks{
		AmmoChanged: func(state combat.AmmoState) {
			w.sendAmmo(actorID, item.ID, state)
		},
		ReloadStarted: func(state combat.AmmoState) {
			w.cue(actorID, notify.CueReloadStart, "")
			reload("start", state)
		},
		ReloadFinished: func(state combat.AmmoState) {
			w.cue(actorID, notify.CueReloadEnd, "")
			reload("finish", state)
		},
	}
}
