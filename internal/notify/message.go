// Package notify delivers per-actor UI, animation and audio notifications
// produced by the simulation.
package notify

import (
	"voxelfront/server/internal/terrain"
	"voxelfront/server/internal/vmath"
)

// MessageType tags the payload carried by a Message.
type MessageType string

const (
	MessageAmmo       MessageType = "ammo"
	MessageInventory  MessageType = "inventory"
	MessageActiveSlot MessageType = "active_slot"
	MessageHealth     MessageType = "health"
	MessageNotice     MessageType = "notice"
	MessageCue        MessageType = "cue"
	MessageEffect     MessageType = "effect"
	MessageTerrain    MessageType = "terrain"
	MessageGroundItem MessageType = "ground_item"
	MessageDefeat     MessageType = "defeat"

	MessageCommandAck    MessageType = "command_ack"
	MessageCommandReject MessageType = "command_reject"
	MessageHeartbeat     MessageType = "heartbeat"
)

// Cue names for MessageCue.
const (
	CueFire        = "fire"
	CueDryFire     = "dry_fire"
	CueReloadStart = "reload_start"
	CueReloadEnd   = "reload_end"
	CueSwing       = "swing"
	CueHit         = "hit"
	CueBlockBreak  = "block_break"
	CueEquip       = "equip"
	CueExplosion   = "explosion"
)

// Message is a single outbound notification. Exactly one payload field is
// populated, matching Type.
type Message struct {
	Type       MessageType        `msgpack:"type"`
	Tick       uint64             `msgpack:"tick,omitempty"`
	Ammo       *AmmoPayload       `msgpack:"ammo,omitempty"`
	Inventory  *InventoryPayload  `msgpack:"inventory,omitempty"`
	ActiveSlot *int               `msgpack:"activeSlot,omitempty"`
	Health     *HealthPayload     `msgpack:"health,omitempty"`
	Notice     string             `msgpack:"notice,omitempty"`
	Cue        *CuePayload        `msgpack:"cue,omitempty"`
	Effect     *EffectPayload     `msgpack:"effect,omitempty"`
	Terrain    *terrain.Change    `msgpack:"terrain,omitempty"`
	GroundItem *GroundItemPayload `msgpack:"groundItem,omitempty"`
	Defeat     *DefeatPayload     `msgpack:"defeat,omitempty"`

	Ack       *CommandAckPayload    `msgpack:"ack,omitempty"`
	Reject    *CommandRejectPayload `msgpack:"reject,omitempty"`
	Heartbeat *HeartbeatPayload     `msgpack:"heartbeat,omitempty"`
}

// AmmoPayload mirrors a weapon's magazine state.
type AmmoPayload struct {
	ItemID    string `msgpack:"itemId"`
	Magazine  int    `msgpack:"magazine"`
	Capacity  int    `msgpack:"capacity"`
	Reserve   int    `msgpack:"reserve"`
	Reloading bool   `msgpack:"reloading"`
}

// SlotView is the client-facing summary of one inventory slot.
type SlotView struct {
	ItemID   string `msgpack:"itemId,omitempty"`
	Type     string `msgpack:"type,omitempty"`
	Name     string `msgpack:"name,omitempty"`
	Icon     string `msgpack:"icon,omitempty"`
	Quantity int    `msgpack:"quantity,omitempty"`
}

// InventoryPayload is a full inventory snapshot.
type InventoryPayload struct {
	Slots  []SlotView `msgpack:"slots"`
	Active int        `msgpack:"active"`
}

// HealthPayload mirrors an actor's vitals.
type HealthPayload struct {
	Health    float64 `msgpack:"health"`
	MaxHealth float64 `msgpack:"maxHealth"`
	Armor     float64 `msgpack:"armor"`
}

// CuePayload asks the client to play a sound or animation.
type CuePayload struct {
	Name      string      `msgpack:"name"`
	Animation string      `msgpack:"animation,omitempty"`
	Position  *vmath.Vec3 `msgpack:"position,omitempty"`
}

// EffectPayload describes a transient visual object.
type EffectPayload struct {
	ID       string     `msgpack:"id"`
	Kind     string     `msgpack:"kind"`
	Position vmath.Vec3 `msgpack:"position"`
	Radius   float64    `msgpack:"radius,omitempty"`
	Opacity  float64    `msgpack:"opacity"`
	Removed  bool       `msgpack:"removed,omitempty"`
}

// GroundItemPayload describes an item lying in the world.
type GroundItemPayload struct {
	ItemID   string     `msgpack:"itemId"`
	Type     string     `msgpack:"type"`
	Model    string     `msgpack:"model,omitempty"`
	Position vmath.Vec3 `msgpack:"position"`
	Quantity int        `msgpack:"quantity,omitempty"`
	Removed  bool       `msgpack:"removed,omitempty"`
}

// DefeatPayload announces an actor's defeat.
type DefeatPayload struct {
	ActorID  string `msgpack:"actorId"`
	SourceID string `msgpack:"sourceId,omitempty"`
}

// CommandAckPayload confirms a client command was queued.
type CommandAckPayload struct {
	Seq  uint64 `msgpack:"seq"`
	Tick uint64 `msgpack:"tick,omitempty"`
}

// CommandRejectPayload reports a client command that was not queued. Retry
// is set when the rejection was caused by load and resending may succeed.
type CommandRejectPayload struct {
	Seq    uint64 `msgpack:"seq"`
	Reason string `msgpack:"reason"`
	Retry  bool   `msgpack:"retry,omitempty"`
}

// HeartbeatPayload echoes a client heartbeat with the server clock.
type HeartbeatPayload struct {
	ServerTime int64 `msgpack:"serverTime"`
	ClientTime int64 `msgpack:"clientTime"`
	RTTMillis  int64 `msgpack:"rtt,omitempty"`
}
