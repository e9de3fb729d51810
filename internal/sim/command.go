package sim

import (
	"time"

	"voxelfront/server/internal/vmath"
)

// CommandType enumerates the supported simulation commands.
type CommandType string

const (
	CommandJoin   CommandType = "join"
	CommandLeave  CommandType = "leave"
	CommandFire   CommandType = "fire"
	CommandReload CommandType = "reload"
	CommandSelect CommandType = "select"
	CommandDrop   CommandType = "drop"
	CommandPickup CommandType = "pickup"
	CommandAim    CommandType = "aim"
)

// Valid reports whether t is a known command type.
func (t CommandType) Valid() bool {
	switch t {
	case CommandJoin, CommandLeave, CommandFire, CommandReload, CommandSelect, CommandDrop, CommandPickup, CommandAim:
		return true
	default:
		return false
	}
}

// lifecycle commands bypass per-actor throttling.
func (t CommandType) lifecycle() bool {
	return t == CommandJoin || t == CommandLeave
}

// SelectCommand picks the active inventory slot.
type SelectCommand struct {
	Slot int `json:"slot" msgpack:"slot"`
}

// PickupCommand names a ground item to collect.
type PickupCommand struct {
	ItemID string `json:"itemId" msgpack:"itemId"`
}

// AimCommand reports the actor's pose as simulated by the client.
type AimCommand struct {
	Position vmath.Vec3 `json:"position" msgpack:"position"`
	Facing   vmath.Vec3 `json:"facing" msgpack:"facing"`
	Zoom     bool       `json:"zoom,omitempty" msgpack:"zoom,omitempty"`
}

// LeaveCommand carries why an actor left.
type LeaveCommand struct {
	Reason string `json:"reason,omitempty" msgpack:"reason,omitempty"`
}

// Command represents an intent captured for processing on the next tick.
type Command struct {
	OriginTick uint64         `json:"originTick"`
	ActorID    string         `json:"actorId"`
	Type       CommandType    `json:"type"`
	IssuedAt   time.Time      `json:"issuedAt"`
	Select     *SelectCommand `json:"select,omitempty"`
	Pickup     *PickupCommand `json:"pickup,omitempty"`
	Aim        *AimCommand    `json:"aim,omitempty"`
	Leave      *LeaveCommand  `json:"leave,omitempty"`
}
