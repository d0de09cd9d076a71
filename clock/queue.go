// Package clock schedules deferred callbacks in due-time order.
// Queue is shared by the real-time timer loop and the manual clock used by tests.
package clock

import (
	"chat-sim/contract"
	"container/heap"
	"sync"
	"time"
)

type task struct {
	due   time.Time
	seq   uint64
	fn    func()
	index int // -1 once popped or stopped
	queue *Queue
}

// Stop removes the task from its queue.
// It returns false if the task already ran or was already stopped.
func (t *task) Stop() bool {
	return t.queue.remove(t)
}

// Queue is a min-heap of tasks ordered by due time.
// Tasks with the same due time keep their scheduling order.
type Queue struct {
	mu    sync.Mutex
	items taskHeap
	seq   uint64
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Push(due time.Time, fn func()) contract.Timer {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.seq++
	t := &task{due: due, seq: q.seq, fn: fn, queue: q}
	heap.Push(&q.items, t)
	return t
}

// PopDue removes and returns the earliest callback due at or before now.
func (q *Queue) PopDue(now time.Time) (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 || q.items[0].due.After(now) {
		return nil, false
	}
	t := heap.Pop(&q.items).(*task)
	return t.fn, true
}

// Next returns the due time of the earliest task.
func (q *Queue) Next() (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return time.Time{}, false
	}
	return q.items[0].due, true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear drops every pending task and returns how many were dropped.
func (q *Queue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.items)
	for _, t := range q.items {
		t.index = -1
	}
	q.items = nil
	return n
}

func (q *Queue) remove(t *task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if t.index < 0 || t.index >= len(q.items) || q.items[t.index] != t {
		return false
	}
	heap.Remove(&q.items, t.index)
	return true
}

type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
