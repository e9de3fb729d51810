// Package schedule runs deferred callbacks on the simulation goroutine.
//
// Callbacks never run inline: a task scheduled while the scheduler is
// draining due work waits for the next Advance, even when its delay is zero.
package schedule

import (
	"container/heap"
	"time"
)

// Task is invoked with the simulation time of the tick that ran it.
type Task func(now time.Time)

// Timer is the narrow contract consumers use to defer work.
type Timer interface {
	After(delay time.Duration, task Task)
}

type entry struct {
	due  time.Time
	seq  uint64
	task Task
}

type queue []entry

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}

func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *queue) Push(x any) { *q = append(*q, x.(entry)) }

func (q *queue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = entry{}
	*q = old[:n-1]
	return item
}

// Scheduler is a single-goroutine deferred task queue keyed by simulation
// time. It is not safe for concurrent use.
type Scheduler struct {
	tasks queue
	seq   uint64
	now   time.Time
}

// New constructs a scheduler whose clock starts at start.
func New(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

// Now reports the simulation time of the most recent Advance.
func (s *Scheduler) Now() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.now
}

// After queues task to run once the simulation clock reaches now+delay.
// Negative delays are treated as zero.
func (s *Scheduler) After(delay time.Duration, task Task) {
	if s == nil || task == nil {
		return
	}
	if delay < 0 {
		delay = 0
	}
	s.seq++
	heap.Push(&s.tasks, entry{due: s.now.Add(delay), seq: s.seq, task: task})
}

// Advance moves the clock to now and runs every task that was queued before
// the call and is due. It returns the number of tasks run.
func (s *Scheduler) Advance(now time.Time) int {
	if s == nil {
		return 0
	}
	if now.After(s.now) {
		s.now = now
	}
	cutoff := s.seq
	var deferred []entry
	ran := 0
	for s.tasks.Len() > 0 {
		next := s.tasks[0]
		if next.due.After(s.now) {
			break
		}
		heap.Pop(&s.tasks)
		if next.seq > cutoff {
			deferred = append(deferred, next)
			continue
		}
		next.task(s.now)
		ran++
	}
	for _, e := range deferred {
		heap.Push(&s.tasks, e)
	}
	return ran
}

// Len reports the number of pending tasks.
func (s *Scheduler) Len() int {
	if s == nil {
		return 0
	}
	return s.tasks.Len()
}
