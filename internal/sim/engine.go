package sim

import "time"

// LoopTickContext identifies the tick being simulated.
type LoopTickContext struct {
	Tick  uint64
	Now   time.Time
	Delta float64
}

// Engine is the mutable simulation state driven by the loop. Both methods
// run on the loop goroutine only.
type Engine interface {
	// Apply executes the tick's commands in arrival order. Rejected
	// commands are reported through the returned error and do not stop
	// later commands from applying.
	Apply(ctx LoopTickContext, cmds []Command) error
	// Step advances deferred work and moving objects by one tick.
	Step(ctx LoopTickContext)
}
