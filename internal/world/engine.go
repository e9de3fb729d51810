package world

import (
	"errors"

	"github.com/samber/oops"

	"voxelfront/server/internal/sim"
	"voxelfront/server/internal/telemetry"
)

// Command outcomes recorded in the commands metric.
const (
	outcomeApplied  = "applied"
	outcomeIgnored  = "ignored"
	outcomeRejected = "rejected"
)

var _ sim.Engine = (*World)(nil)

// begin moves the world clock to the tick and runs deferred work that has
// come due. Work scheduled while the tick is being applied waits for a later
// tick.
func (w *World) begin(ctx sim.LoopTickContext) {
	if w.started && ctx.Tick == w.tick {
		return
	}
	w.started = true
	w.tick = ctx.Tick
	if ctx.Now.After(w.now) {
		w.now = ctx.Now
	}
	w.scheduler.Advance(w.now)
}

// Apply implements sim.Engine. Commands run in arrival order; a command for
// an unknown actor or with a missing payload is rejected without affecting
// the rest of the batch. Actions a weapon or inventory refuses are ignored
// rather than reported as errors; the actor hears about them through
// notifications.
func (w *World) Apply(ctx sim.LoopTickContext, cmds []sim.Command) error {
	w.begin(ctx)
	var errs []error
	for _, cmd := range cmds {
		applied, err := w.applyCommand(cmd)
		outcome := outcomeApplied
		switch {
		case err != nil:
			outcome = outcomeRejected
			errs = append(errs, err)
		case !applied:
			outcome = outcomeIgnored
		}
		telemetry.RecordCommand(string(cmd.Type), outcome)
	}
	return errors.Join(errs...)
}

func (w *World) applyCommand(cmd sim.Command) (bool, error) {
	switch cmd.Type {
	case sim.CommandJoin:
		_, err := w.Join(cmd.ActorID)
		return err == nil, err
	case sim.CommandLeave:
		reason := ""
		if cmd.Leave != nil {
			reason = cmd.Leave.Reason
		}
		err := w.Leave(cmd.ActorID, reason)
		return err == nil, err
	}

	actor, ok := w.Actor(cmd.ActorID)
	if !ok {
		return false, oops.Code(CodeUnknownActor).With("actor", cmd.ActorID).With("command", string(cmd.Type)).Errorf("actor %q has not joined", cmd.ActorID)
	}
	switch cmd.Type {
	case sim.CommandFire:
		return actor.Fire(), nil
	case sim.CommandReload:
		return actor.Reload(), nil
	case sim.CommandDrop:
		return actor.Drop(), nil
	case sim.CommandSelect:
		if cmd.Select == nil {
			return false, missingPayload(cmd)
		}
		return actor.SelectSlot(cmd.Select.Slot), nil
	case sim.CommandPickup:
		if cmd.Pickup == nil {
			return false, missingPayload(cmd)
		}
		return actor.Pickup(cmd.Pickup.ItemID), nil
	case sim.CommandAim:
		if cmd.Aim == nil {
			return false, missingPayload(cmd)
		}
		return actor.Aim(cmd.Aim.Position, cmd.Aim.Facing, cmd.Aim.Zoom), nil
	default:
		return false, oops.Code(CodeUnknownCommand).With("actor", cmd.ActorID).Errorf("unknown command type %q", cmd.Type)
	}
}

func missingPayload(cmd sim.Command) error {
	return oops.Code(CodeMissingPayload).With("actor", cmd.ActorID).Errorf("%s command without payload", cmd.Type)
}

// Step implements sim.Engine.
func (w *World) Step(ctx sim.LoopTickContext) {
	w.begin(ctx)
	w.advanceProjectiles(ctx.Delta)
	w.space.Step(ctx.Delta)
	w.syncGroundItems()
}
