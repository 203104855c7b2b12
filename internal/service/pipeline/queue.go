package pipeline

import (
	"container/heap"
	"time"

	"github.com/google/uuid"
)

// Job is the scheduler's in-memory unit of work. It is dropped once the
// recording reaches a terminal outcome; the outcome itself lives on the
// recording or its review item.
type Job struct {
	RecordingID uuid.UUID
	EnqueuedAt  time.Time
	// Priority is the base priority. The effective priority grows with age.
	Priority  int
	Attempt   int
	LastError error

	seq uint64
}

// effectivePriority is base + floor(age / aging), capped at maxPriority.
func (j *Job) effectivePriority(now time.Time, aging time.Duration, maxPriority int) int {
	p := j.Priority
	if aging > 0 {
		if age := now.Sub(j.EnqueuedAt); age > 0 {
			p += int(age / aging)
		}
	}
	if maxPriority > 0 && p > maxPriority {
		p = maxPriority
	}
	return p
}

// jobQueue is a max-heap on effective priority, FIFO within a tier. now is
// fixed for the duration of one heap operation.
type jobQueue struct {
	items       []*Job
	now         time.Time
	aging       time.Duration
	maxPriority int
}

func (q *jobQueue) Len() int { return len(q.items) }

func (q *jobQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	pa := a.effectivePriority(q.now, q.aging, q.maxPriority)
	pb := b.effectivePriority(q.now, q.aging, q.maxPriority)
	if pa != pb {
		return pa > pb
	}
	if !a.EnqueuedAt.Equal(b.EnqueuedAt) {
		return a.EnqueuedAt.Before(b.EnqueuedAt)
	}
	return a.seq < b.seq
}

func (q *jobQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *jobQueue) Push(x any) { q.items = append(q.items, x.(*Job)) }

func (q *jobQueue) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	q.items = old[:n-1]
	return item
}

// push adds j as of now.
func (q *jobQueue) push(j *Job, now time.Time) {
	q.now = now
	heap.Push(q, j)
}

// pop removes the highest effective priority job as of now. Ages advance
// between calls, so the heap is rebuilt first.
func (q *jobQueue) pop(now time.Time) *Job {
	if len(q.items) == 0 {
		return nil
	}
	q.now = now
	heap.Init(q)
	return heap.Pop(q).(*Job)
}
