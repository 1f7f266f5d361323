// Package queue provides the single-producer, multi-consumer FIFO that
// hands PathEntry values from the filesystem walker to worker goroutines.
package queue

import (
	"sync"
	"time"

	"github.com/ttkb-oss/dedup/internal/model"
)

// backoff is the polling interval a worker waits between empty-queue checks
// before re-testing for new entries or walker completion.
const backoff = 100 * time.Microsecond

// Queue is a mutex-guarded FIFO of PathEntry values. There is exactly one
// producer (the walker, via Push) and any number of consumers (workers, via
// Pop). The queue has no awareness of file content.
type Queue struct {
	mu       sync.Mutex
	entries  []model.PathEntry
	finished bool
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{}
}

// Push appends an entry to the tail of the queue. It is called only by the
// walker.
func (q *Queue) Push(entry model.PathEntry) {
	q.mu.Lock()
	q.entries = append(q.entries, entry)
	q.mu.Unlock()
}

// Finish marks the queue as having no further entries to come. Workers
// observing an empty queue after Finish has been called will terminate
// rather than continue polling.
func (q *Queue) Finish() {
	q.mu.Lock()
	q.finished = true
	q.mu.Unlock()
}

// Pop removes and returns the entry at the head of the queue. The second
// return value is false if the queue was empty and the walker has finished
// (i.e. there will never be another entry); in that case the worker should
// terminate. If the queue is empty but the walker has not finished, Pop
// blocks, polling at a short backoff interval, until an entry arrives or
// Finish is called.
func (q *Queue) Pop() (model.PathEntry, bool) {
	for {
		q.mu.Lock()
		if len(q.entries) > 0 {
			entry := q.entries[0]
			q.entries = q.entries[1:]
			q.mu.Unlock()
			return entry, true
		}
		finished := q.finished
		q.mu.Unlock()

		if finished {
			return model.PathEntry{}, false
		}

		time.Sleep(backoff)
	}
}

// Len returns the current number of queued entries. It is intended for
// metrics/progress reporting, not for control flow (the queue's length can
// change immediately after this call returns).
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
