package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceRunsDueTasksInOrder(t *testing.T) {
	start := time.Unix(100, 0)
	s := New(start)

	var order []string
	s.After(200*time.Millisecond, func(time.Time) { order = append(order, "late") })
	s.After(100*time.Millisecond, func(time.Time) { order = append(order, "early") })
	s.After(100*time.Millisecond, func(time.Time) { order = append(order, "early-second") })

	assert.Equal(t, 0, s.Advance(start.Add(50*time.Millisecond)))
	assert.Empty(t, order)

	assert.Equal(t, 2, s.Advance(start.Add(150*time.Millisecond)))
	assert.Equal(t, []string{"early", "early-second"}, order)

	assert.Equal(t, 1, s.Advance(start.Add(time.Second)))
	assert.Equal(t, []string{"early", "early-second", "late"}, order)
	assert.Zero(t, s.Len())
}

func TestTasksScheduledWhileDrainingWaitForNextAdvance(t *testing.T) {
	start := time.Unix(0, 0)
	s := New(start)

	runs := 0
	var reschedule Task
	reschedule = func(time.Time) {
		runs++
		s.After(0, reschedule)
	}
	s.After(0, reschedule)

	s.Advance(start.Add(time.Millisecond))
	require.Equal(t, 1, runs, "expected rescheduled task to be deferred")
	require.Equal(t, 1, s.Len())

	s.Advance(start.Add(2 * time.Millisecond))
	assert.Equal(t, 2, runs)
}

func TestAfterUsesClockOfLastAdvance(t *testing.T) {
	start := time.Unix(0, 0)
	s := New(start)
	s.Advance(start.Add(time.Second))

	var ranAt time.Time
	s.After(500*time.Millisecond, func(now time.Time) { ranAt = now })

	s.Advance(start.Add(1400 * time.Millisecond))
	assert.True(t, ranAt.IsZero())

	s.Advance(start.Add(1500 * time.Millisecond))
	assert.Equal(t, start.Add(1500*time.Millisecond), ranAt)
}

func TestClockNeverMovesBackwards(t *testing.T) {
	start := time.Unix(10, 0)
	s := New(start)
	s.Advance(start.Add(time.Second))
	s.Advance(start)
	assert.Equal(t, start.Add(time.Second), s.Now())
}

func TestLeaseInvalidatedByBump(t *testing.T) {
	var gen Generation
	lease := gen.Lease()
	require.True(t, lease.Valid())

	gen.Bump()
	assert.False(t, lease.Valid())
	assert.True(t, gen.Lease().Valid())
	assert.False(t, Lease{}.Valid())
}

func TestGuardDropsStaleTasks(t *testing.T) {
	start := time.Unix(0, 0)
	s := New(start)
	var gen Generation

	ran := false
	s.After(10*time.Millisecond, Guard(gen.Lease(), func(time.Time) { ran = true }))
	gen.Bump()

	s.Advance(start.Add(time.Second))
	assert.False(t, ran)
}
