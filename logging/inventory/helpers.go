// Package inventory publishes inventory and ground item events.
package inventory

import (
	"context"

	"voxelfront/server/logging"
)

const (
	// EventItemAdded is emitted when an item lands in an inventory slot.
	EventItemAdded logging.EventType = "inventory.item_added"
	// EventItemRejected is emitted when an inventory refuses an item.
	EventItemRejected logging.EventType = "inventory.item_rejected"
	// EventActiveSlotChanged is emitted when an actor selects another slot.
	EventActiveSlotChanged logging.EventType = "inventory.active_slot_changed"
	// EventItemDropped is emitted when an item leaves an inventory for the world.
	EventItemDropped logging.EventType = "inventory.item_dropped"
	// EventItemPickedUp is emitted when a ground item is collected.
	EventItemPickedUp logging.EventType = "inventory.item_picked_up"
)

// ItemPayload identifies an item and the slot involved.
type ItemPayload struct {
	ItemID   string `json:"itemId"`
	ItemType string `json:"itemType"`
	Slot     int    `json:"slot"`
	Quantity int    `json:"quantity,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// SlotPayload captures an active slot transition.
type SlotPayload struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func publish(ctx context.Context, pub logging.Publisher, event logging.Event) {
	if pub == nil {
		return
	}
	event.Category = logging.CategoryInventory
	pub.Publish(ctx, event)
}

func itemRef(payload ItemPayload) []logging.EntityRef {
	if payload.ItemID == "" {
		return nil
	}
	return []logging.EntityRef{{ID: payload.ItemID, Kind: logging.EntityKindItem}}
}

// ItemAdded publishes an inventory insertion.
func ItemAdded(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ItemPayload, extra map[string]any) {
	publish(ctx, pub, logging.Event{Type: EventItemAdded, Tick: tick, Actor: actor, Targets: itemRef(payload), Severity: logging.SeverityInfo, Payload: payload, Extra: extra})
}

// ItemRejected publishes a refused insertion or drop.
func ItemRejected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ItemPayload, extra map[string]any) {
	publish(ctx, pub, logging.Event{Type: EventItemRejected, Tick: tick, Actor: actor, Targets: itemRef(payload), Severity: logging.SeverityWarn, Payload: payload, Extra: extra})
}

// ActiveSlotChanged publishes a slot selection.
func ActiveSlotChanged(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SlotPayload, extra map[string]any) {
	publish(ctx, pub, logging.Event{Type: EventActiveSlotChanged, Tick: tick, Actor: actor, Severity: logging.SeverityDebug, Payload: payload, Extra: extra})
}

// ItemDropped publishes an item leaving an inventory.
func ItemDropped(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ItemPayload, extra map[string]any) {
	publish(ctx, pub, logging.Event{Type: EventItemDropped, Tick: tick, Actor: actor, Targets: itemRef(payload), Severity: logging.SeverityInfo, Payload: payload, Extra: extra})
}

// ItemPickedUp publishes a ground item collection.
func ItemPickedUp(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ItemPayload, extra map[string]any) {
	publish(ctx, pub, logging.Event{Type: EventItemPickedUp, Tick: tick, Actor: actor, Targets: itemRef(payload), Severity: logging.SeverityInfo, Payload: payload, Extra: extra})
}
