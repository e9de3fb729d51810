package world

import (
	"context"
	"math"
	"sort"

	"github.com/yohamta/donburi"

	"voxelfront/server/internal/combat"
	"voxelfront/server/internal/notify"
	"voxelfront/server/internal/terrain"
	"voxelfront/server/logging"
	logginginventory "voxelfront/server/logging/inventory"
)

// healthEpsilon treats rounding residue as zero health.
const healthEpsilon = 1e-9

// ApplyDamage subtracts d from the target's armor first and then its health.
// It reports whether the target took the damage.
func (w *World) ApplyDamage(d combat.Damage) bool {
	if !(d.Amount > 0) || math.IsInf(d.Amount, 0) {
		return false
	}
	entry, ok := w.entry(d.Target, KindActor)
	if !ok {
		return false
	}
	vitals := Vitals.Get(entry)
	if vitals.Defeated {
		return false
	}

	absorbed := math.Min(vitals.Armor, d.Amount)
	vitals.Armor -= absorbed
	vitals.Health -= d.Amount - absorbed
	if vitals.Health <= healthEpsilon {
		vitals.Health = 0
		vitals.Defeated = true
	}
	w.sendHealth(d.Target, *vitals)
	w.recordDamage(combat.DamageReport{
		Damage:       d,
		Absorbed:     absorbed,
		TargetHealth: vitals.Health,
		TargetArmor:  vitals.Armor,
		Defeated:     vitals.Defeated,
	})
	if vitals.Defeated {
		w.defeat(entry, d)
	}
	return true
}

// defeat disarms the actor and pulls its body out of the space. The entity
// stays so the actor can respawn by joining again.
func (w *World) defeat(entry *donburi.Entry, d combat.Damage) {
	loadout := Loadout.Get(entry)
	loadout.Inventory.UnequipAll()
	w.extinguishMuzzle(d.Target, loadout)
	w.space.RemoveBody(d.Target)

	msg := w.message(notify.MessageDefeat)
	msg.Defeat = &notify.DefeatPayload{ActorID: d.Target, SourceID: d.Source}
	w.notifier.Broadcast(msg)
}

// AwardYield gives broken terrain to the actor as placeable blocks, stacking
// onto a matching block first. Blocks that do not fit in an empty slot fall
// at the actor's feet.
func (w *World) AwardYield(actorID string, material terrain.MaterialID, units int) {
	if units <= 0 {
		return
	}
	entry, ok := w.entry(actorID, KindActor)
	if !ok || Vitals.Get(entry).Defeated {
		return
	}
	inv := Loadout.Get(entry).Inventory
	block, err := w.factory.NewBlock(material, units)
	if err != nil {
		w.logger.Printf("[world] no block for material %d: %v", material, err)
		return
	}

	payload := logginginventory.ItemPayload{ItemType: block.Type, Quantity: units}
	if slot, stack := inv.FindStack(block); stack != nil {
		stack.AddQuantity(units)
		inv.Changed()
		payload.ItemID, payload.Slot = stack.ID, slot
		logginginventory.ItemAdded(context.Background(), w.publisher, w.tick, logging.ActorRef(actorID), payload, map[string]any{"stacked": true})
		return
	}

	// Yield never displaces the held item.
	if slot, ok := inv.FindSlotForPickup(); !ok || inv.Slot(slot) != nil {
		w.dropItem(actorID, block)
		return
	}
	slot, _, ok := inv.AddItem(block)
	if !ok {
		w.dropItem(actorID, block)
		return
	}
	payload.ItemID, payload.Slot = block.ID, slot
	logginginventory.ItemAdded(context.Background(), w.publisher, w.tick, logging.ActorRef(actorID), payload, nil)
}

// LiveActors returns the ids of every actor that can take damage, sorted.
func (w *World) LiveActors() []string {
	var ids []string
	actorQuery.Each(w.ecs, func(entry *donburi.Entry) {
		if !Vitals.Get(entry).Defeated {
			ids = append(ids, Identity.Get(entry).ID)
		}
	})
	sort.Strings(ids)
	return ids
}
