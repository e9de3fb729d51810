package world

import (
	"context"

	"github.com/yohamta/donburi"

	"voxelfront/server/internal/inventory"
	"voxelfront/server/internal/items"
	"voxelfront/server/internal/physics"
	"voxelfront/server/internal/vmath"
	"voxelfront/server/logging"
	logginginventory "voxelfront/server/logging/inventory"
)

const (
	groundItemRadius = 0.25
	// groundItemDrift is how far a prop must move before clients hear of it.
	groundItemDrift = 0.01
)

// dropItem throws item out of the actor's hands along its facing. An actor
// without a body drops items where it last stood, which for a defeated actor
// is the world origin.
func (w *World) dropItem(actorID string, item *items.Item) {
	transform, _ := w.space.Transform(actorID)
	facing := transform.Facing.Normalize()
	if facing.IsZero() {
		facing = vmath.New(0, 0, -1)
	}
	w.placeGroundItem(item, transform.Position.Add(facing.Scale(w.config.DropOffset)), facing)
}

// placeGroundItem adds item to the world as a loose prop and pushes it along
// direction with an impulse proportional to its mass.
func (w *World) placeGroundItem(item *items.Item, position, direction vmath.Vec3) {
	item.Unequip()
	entry := w.create(item.ID, KindGroundItem, GroundItem)
	GroundItem.SetValue(entry, GroundItemData{Item: item, Reported: position})
	w.space.AddBody(physics.Body{
		ID:       item.ID,
		Kind:     physics.BodyProp,
		Position: position,
		Facing:   direction,
		Radius:   groundItemRadius,
		Mass:     item.Mass,
	})
	if w.config.DropImpulse > 0 && item.Mass > 0 && !direction.IsZero() {
		w.space.ApplyImpulse(item.ID, direction.Scale(item.Mass*w.config.DropImpulse))
	}
	w.broadcastGroundItem(item, position, false)
}

// GroundItems returns the ids of every item lying in the world.
func (w *World) GroundItems() []string {
	var ids []string
	groundItemQuery.Each(w.ecs, func(entry *donburi.Entry) {
		ids = append(ids, Identity.Get(entry).ID)
	})
	return ids
}

// GroundItem returns a lying item and its position.
func (w *World) GroundItem(id string) (*items.Item, vmath.Vec3, bool) {
	entry, ok := w.entry(id, KindGroundItem)
	if !ok {
		return nil, vmath.Zero, false
	}
	body, _ := w.space.Body(id)
	return GroundItem.Get(entry).Item, body.Position, true
}

// pickup moves a ground item into the actor's inventory. Blocks merge into a
// matching stack; anything else takes a free slot or replaces the held item,
// which is dropped in its place.
func (w *World) pickup(actorID, itemID string) bool {
	actorEntry, ok := w.entry(actorID, KindActor)
	if !ok {
		return false
	}
	itemEntry, ok := w.entry(itemID, KindGroundItem)
	if !ok {
		w.notice(actorID, "that item is gone")
		return false
	}
	actorBody, ok := w.space.Body(actorID)
	if !ok {
		return false
	}
	itemBody, _ := w.space.Body(itemID)
	if actorBody.Position.Dist(itemBody.Position) > w.config.PickupRange {
		w.notice(actorID, "too far away")
		return false
	}

	inv := Loadout.Get(actorEntry).Inventory
	item := GroundItem.Get(itemEntry).Item
	payload := logginginventory.ItemPayload{ItemID: item.ID, ItemType: item.Type, Quantity: item.Quantity}
	if slot, stack := inv.FindStack(item); stack != nil {
		w.removeGroundItem(itemID)
		stack.AddQuantity(item.Quantity)
		inv.Changed()
		payload.Slot = slot
		logginginventory.ItemPickedUp(context.Background(), w.publisher, w.tick, logging.ActorRef(actorID), payload, map[string]any{"stackedInto": stack.ID})
		return true
	}
	if _, ok := inv.FindSlotForPickup(); !ok {
		w.notice(actorID, inventory.ReasonFull)
		payload.Reason = inventory.ReasonFull
		logginginventory.ItemRejected(context.Background(), w.publisher, w.tick, logging.ActorRef(actorID), payload, nil)
		return false
	}

	w.removeGroundItem(itemID)
	slot, evicted, ok := inv.AddItem(item)
	if !ok {
		w.placeGroundItem(item, itemBody.Position, vmath.Zero)
		return false
	}
	if evicted != nil {
		w.dropItem(actorID, evicted)
	}
	payload.Slot = slot
	logginginventory.ItemPickedUp(context.Background(), w.publisher, w.tick, logging.ActorRef(actorID), payload, nil)
	return true
}

func (w *World) removeGroundItem(id string) {
	entry, ok := w.entry(id, KindGroundItem)
	if !ok {
		return
	}
	item := GroundItem.Get(entry).Item
	body, _ := w.space.Body(id)
	w.destroy(id)
	w.broadcastGroundItem(item, body.Position, true)
}

// syncGroundItems reports props that drifted since they were last announced.
func (w *World) syncGroundItems() {
	type drift struct {
		item     *items.Item
		position vmath.Vec3
	}
	var drifted []drift
	groundItemQuery.Each(w.ecs, func(entry *donburi.Entry) {
		data := GroundItem.Get(entry)
		body, ok := w.space.Body(data.Item.ID)
		if !ok || body.Position.Dist(data.Reported) <= groundItemDrift {
			return
		}
		data.Reported = body.Position
		drifted = append(drifted, drift{item: data.Item, position: body.Position})
	})
	for _, d := range drifted {
		w.broadcastGroundItem(d.item, d.position, false)
	}
}
