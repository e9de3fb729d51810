// Package intake validates decoded client frames and stages them on the
// simulation loop.
package intake

import (
	"time"

	"voxelfront/server/internal/net/proto"
	"voxelfront/server/internal/sim"
)

const (
	// CommandRejectInvalidMessage indicates the frame did not describe a
	// well-formed command.
	CommandRejectInvalidMessage = "invalid_message"
	// CommandRejectUnknownActor indicates the sender has no live session.
	CommandRejectUnknownActor = "unknown_actor"
)

// Enqueuer stages commands for the next tick. *sim.Loop implements it.
type Enqueuer interface {
	Enqueue(cmd sim.Command) (bool, string)
}

// CommandContext supplies the collaborators StageClientCommand needs.
type CommandContext struct {
	Engine    Enqueuer
	HasPlayer func(string) bool
	Tick      func() uint64
	Now       func() time.Time
}

// StageClientCommand converts msg into a command for actorID and enqueues
// it. The returned reason is empty on success.
func StageClientCommand(ctx CommandContext, actorID string, msg proto.ClientMessage) (sim.Command, bool, string) {
	var zero sim.Command

	command, ok := proto.ClientCommand(msg)
	if !ok {
		return zero, false, CommandRejectInvalidMessage
	}

	if ctx.HasPlayer != nil && !ctx.HasPlayer(actorID) {
		return zero, false, CommandRejectUnknownActor
	}

	command.ActorID = actorID
	if ctx.Tick != nil {
		command.OriginTick = ctx.Tick()
	}
	if ctx.Now != nil {
		command.IssuedAt = ctx.Now()
	} else {
		command.IssuedAt = time.Now()
	}

	if ctx.Engine == nil {
		return zero, false, sim.CommandRejectQueueFull
	}
	if ok, reason := ctx.Engine.Enqueue(command); !ok {
		return zero, false, reason
	}

	return command, true, ""
}

// Retryable reports whether a rejection was caused by load rather than by
// the command itself.
func Retryable(reason string) bool {
	return reason == sim.CommandRejectQueueLimit || reason == sim.CommandRejectQueueFull
}
