package world

import (
	"voxelfront/server/internal/combat"
	"voxelfront/server/internal/inventory"
	"voxelfront/server/internal/items"
	"voxelfront/server/internal/notify"
	"voxelfront/server/internal/vmath"
)

func (w *World) message(msgType notify.MessageType) notify.Message {
	return notify.Message{Type: msgType, Tick: w.tick}
}

func (w *World) sendInventory(actorID string, inv *inventory.Manager) {
	snapshot := inv.Snapshot()
	slots := make([]notify.SlotView, len(snapshot.Slots))
	for i, slot := range snapshot.Slots {
		slots[i] = notify.SlotView{
			ItemID:   slot.ItemID,
			Type:     slot.Type,
			Name:     slot.Name,
			Icon:     slot.Icon,
			Quantity: slot.Quantity,
		}
	}
	msg := w.message(notify.MessageInventory)
	msg.Inventory = &notify.InventoryPayload{Slots: slots, Active: snapshot.Active}
	w.notifier.Notify(actorID, msg)
}

func (w *World) sendActiveSlot(actorID string, slot int) {
	msg := w.message(notify.MessageActiveSlot)
	msg.ActiveSlot = &slot
	w.notifier.Notify(actorID, msg)
}

func (w *World) sendAmmo(actorID, itemID string, state combat.AmmoState) {
	msg := w.message(notify.MessageAmmo)
	msg.Ammo = &notify.AmmoPayload{
		ItemID:    itemID,
		Magazine:  state.Magazine,
		Capacity:  state.Capacity,
		Reserve:   state.Reserve,
		Reloading: state.Reloading,
	}
	w.notifier.Notify(actorID, msg)
}

func (w *World) sendHealth(actorID string, vitals VitalsData) {
	msg := w.message(notify.MessageHealth)
	msg.Health = &notify.HealthPayload{Health: vitals.Health, MaxHealth: vitals.MaxHealth, Armor: vitals.Armor}
	w.notifier.Notify(actorID, msg)
}

func (w *World) notice(actorID, text string) {
	msg := w.message(notify.MessageNotice)
	msg.Notice = text
	w.notifier.Notify(actorID, msg)
}

// cue plays a sound or animation for one actor only.
func (w *World) cue(actorID, name, animation string) {
	msg := w.message(notify.MessageCue)
	msg.Cue = &notify.CuePayload{Name: name, Animation: animation}
	w.notifier.Notify(actorID, msg)
}

// broadcastCue plays a positional sound everyone can hear.
func (w *World) broadcastCue(name, animation string, position vmath.Vec3) {
	msg := w.message(notify.MessageCue)
	msg.Cue = &notify.CuePayload{Name: name, Animation: animation, Position: &position}
	w.notifier.Broadcast(msg)
}

func (w *World) broadcastEffect(payload notify.EffectPayload) {
	msg := w.message(notify.MessageEffect)
	msg.Effect = &payload
	w.notifier.Broadcast(msg)
}

func (w *World) broadcastGroundItem(item *items.Item, position vmath.Vec3, removed bool) {
	msg := w.message(notify.MessageGroundItem)
	msg.GroundItem = &notify.GroundItemPayload{
		ItemID:   item.ID,
		Type:     item.Type,
		Model:    item.Model,
		Position: position,
		Quantity: item.Quantity,
		Removed:  removed,
	}
	w.notifier.Broadcast(msg)
}

// sendActorState pushes everything a freshly connected client needs to draw
// its own HUD.
func (w *World) sendActorState(actorID string) {
	entry, ok := w.entry(actorID, KindActor)
	if !ok {
		return
	}
	inv := Loadout.Get(entry).Inventory
	w.sendInventory(actorID, inv)
	w.sendActiveSlot(actorID, inv.Active())
	w.sendHealth(actorID, *Vitals.Get(entry))
	if item := inv.ActiveItem(); item != nil && item.Weapon != nil {
		w.sendAmmo(actorID, item.ID, item.Weapon.Ammo())
	}
}
