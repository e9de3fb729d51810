package combat

import "time"

// IntervalForRate converts a per-second rate into the minimum spacing
// between actions. Non-positive rates are ungated.
func IntervalForRate(rate float64) time.Duration {
	if rate <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / rate)
}

// RateGate enforces a minimum interval between successful actions. Only
// actions that pass the gate and are marked reset the window.
type RateGate struct {
	interval time.Duration
	last     time.Time
	primed   bool
}

// NewRateGate builds a gate allowing rate actions per second.
func NewRateGate(rate float64) RateGate {
	return RateGate{interval: IntervalForRate(rate)}
}

// Ready reports whether an action at now would pass the gate.
func (g *RateGate) Ready(now time.Time) bool {
	if g == nil {
		return false
	}
	if !g.primed || g.interval <= 0 {
		return true
	}
	return now.Sub(g.last) >= g.interval
}

// Mark records a successful action at now.
func (g *RateGate) Mark(now time.Time) {
	if g == nil {
		return
	}
	g.last = now
	g.primed = true
}

// TryAcquire checks and marks in one step.
func (g *RateGate) TryAcquire(now time.Time) bool {
	if !g.Ready(now) {
		return false
	}
	g.Mark(now)
	return true
}

// Interval reports the configured spacing.
func (g *RateGate) Interval() time.Duration {
	if g == nil {
		return 0
	}
	return g.interval
}
