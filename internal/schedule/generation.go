package schedule

import "time"

// Generation is a monotonically increasing counter owned by something that
// can be invalidated, such as an equipped weapon or a live projectile.
// Deferred callbacks capture a Lease and check it before acting.
type Generation struct {
	value uint64
}

// Bump invalidates every outstanding lease and returns the new value.
func (g *Generation) Bump() uint64 {
	g.value++
	return g.value
}

// Current returns the live generation.
func (g *Generation) Current() uint64 {
	return g.value
}

// Lease captures the current generation.
func (g *Generation) Lease() Lease {
	return Lease{owner: g, issued: g.value}
}

// Lease is a snapshot of a Generation. The zero Lease is never valid.
type Lease struct {
	owner  *Generation
	issued uint64
}

// Valid reports whether the generation has not moved since the lease was
// taken.
func (l Lease) Valid() bool {
	return l.owner != nil && l.owner.value == l.issued
}

// Guard wraps task so it only runs while lease is still valid.
func Guard(lease Lease, task Task) Task {
	if task == nil {
		return nil
	}
	return func(now time.Time) {
		if !lease.Valid() {
			return
		}
		task(now)
	}
}
