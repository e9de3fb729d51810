// Package proto defines the msgpack frames clients send over the websocket.
package proto

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"voxelfront/server/internal/sim"
	"voxelfront/server/internal/vmath"
)

// Version tracks the wire-protocol revision expected by clients.
const Version = 1

// Client message type identifiers.
const (
	TypeFire      = "fire"
	TypeReload    = "reload"
	TypeSelect    = "select"
	TypeDrop      = "drop"
	TypePickup    = "pickup"
	TypeAim       = "aim"
	TypeHeartbeat = "heartbeat"
)

// ClientMessage captures an inbound websocket frame from the client.
type ClientMessage struct {
	Ver      int        `msgpack:"ver,omitempty"`
	Type     string     `msgpack:"type"`
	Seq      uint64     `msgpack:"seq,omitempty"`
	Slot     *int       `msgpack:"slot,omitempty"`
	ItemID   string     `msgpack:"itemId,omitempty"`
	Position vmath.Vec3 `msgpack:"position,omitempty"`
	Facing   vmath.Vec3 `msgpack:"facing,omitempty"`
	Zoom     bool       `msgpack:"zoom,omitempty"`
	SentAt   int64      `msgpack:"sentAt,omitempty"`
}

// DecodeClientMessage converts a raw binary frame into a structured message.
func DecodeClientMessage(payload []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := msgpack.Unmarshal(payload, &msg); err != nil {
		return msg, err
	}
	if msg.Ver == 0 {
		msg.Ver = Version
	}
	if msg.Ver != Version {
		return msg, fmt.Errorf("unsupported client protocol version %d", msg.Ver)
	}
	return msg, nil
}

// EncodeClientMessage renders msg the way a client would send it.
func EncodeClientMessage(msg ClientMessage) ([]byte, error) {
	if msg.Ver == 0 {
		msg.Ver = Version
	}
	return msgpack.Marshal(&msg)
}

// ClientCommand captures the simulation command carried by a websocket
// message. Origin metadata is populated when the command is staged.
func ClientCommand(msg ClientMessage) (sim.Command, bool) {
	switch msg.Type {
	case TypeFire:
		return sim.Command{Type: sim.CommandFire}, true
	case TypeReload:
		return sim.Command{Type: sim.CommandReload}, true
	case TypeDrop:
		return sim.Command{Type: sim.CommandDrop}, true
	case TypeSelect:
		if msg.Slot == nil {
			return sim.Command{}, false
		}
		return sim.Command{Type: sim.CommandSelect, Select: &sim.SelectCommand{Slot: *msg.Slot}}, true
	case TypePickup:
		if msg.ItemID == "" {
			return sim.Command{}, false
		}
		return sim.Command{Type: sim.CommandPickup, Pickup: &sim.PickupCommand{ItemID: msg.ItemID}}, true
	case TypeAim:
		if !msg.Position.Finite() || !msg.Facing.Finite() || msg.Facing.IsZero() {
			return sim.Command{}, false
		}
		return sim.Command{
			Type: sim.CommandAim,
			Aim: &sim.AimCommand{
				Position: msg.Position,
				Facing:   msg.Facing,
				Zoom:     msg.Zoom,
			},
		}, true
	default:
		return sim.Command{}, false
	}
}
