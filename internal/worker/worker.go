// Package worker implements the worker pool: parallel consumers of the
// path-entry queue that drive the fingerprint stage and feed the visited
// tree and duplicate map.
package worker

import (
	"sync"

	"github.com/ttkb-oss/dedup/internal/dederrors"
	"github.com/ttkb-oss/dedup/internal/dupmap"
	"github.com/ttkb-oss/dedup/internal/fingerprint"
	"github.com/ttkb-oss/dedup/internal/logging"
	"github.com/ttkb-oss/dedup/internal/model"
	"github.com/ttkb-oss/dedup/internal/queue"
	"github.com/ttkb-oss/dedup/internal/visited"
)

// Reporter receives one Increment call per file the pool finishes
// processing, successfully or not. It abstracts internal/progress so this
// package doesn't need to import it for the (common) synchronous-test case.
type Reporter interface {
	Increment()
}

type noopReporter struct{}

func (noopReporter) Increment() {}

// Pool is a fixed-size pool of workers draining a queue.Queue into a
// visited.Tree and dupmap.Map.
type Pool struct {
	threads  int
	queue    *queue.Queue
	tree     *visited.Tree
	dups     *dupmap.Map
	progress Reporter
	logger   *logging.Logger
	wg       sync.WaitGroup
}

// New creates a worker pool. threads == 0 collapses to a single worker
// goroutine rather than none — Start must return immediately so the
// orchestrator can drive its producer concurrently, so even the
// single-worker case can't run on the caller's own goroutine. threads < 0
// is a configuration error the caller should have already rejected.
func New(threads int, q *queue.Queue, tree *visited.Tree, dups *dupmap.Map, progress Reporter, logger *logging.Logger) *Pool {
	if progress == nil {
		progress = noopReporter{}
	}
	return &Pool{
		threads:  threads,
		queue:    q,
		tree:     tree,
		dups:     dups,
		progress: progress,
		logger:   logger.Sublogger("worker"),
	}
}

// Run drains the queue until it reports empty-and-finished, distributing
// work across the configured number of worker goroutines (a single one
// when threads == 0). It returns once every worker has exited. Use this
// only when the queue is already fully populated; a concurrent producer
// needs the Start/Wait split below.
func (p *Pool) Run() {
	p.Start()
	p.Wait()
}

// Start spawns the pool's worker goroutines and returns immediately,
// without waiting for the queue to drain. Callers that need to drive a
// producer (e.g. the orchestrator's walk) concurrently with the workers
// should call Start, then produce, then Wait.
func (p *Pool) Start() {
	n := p.threads
	if n <= 0 {
		n = 1
	}

	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer p.wg.Done()
			p.loop()
		}()
	}
}

// Wait blocks until every worker goroutine spawned by Start has exited.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// loop repeatedly pops an entry and processes it until the queue is
// drained and finished.
func (p *Pool) loop() {
	for {
		entry, ok := p.queue.Pop()
		if !ok {
			return
		}
		p.process(entry)
	}
}

// process fingerprints a single entry, inserts it into the visited tree,
// and records a duplicate-map entry if a collision was found. Per-file
// errors are logged and the entry is dropped; they never propagate.
func (p *Pool) process(entry model.PathEntry) {
	defer p.progress.Increment()

	meta, err := fingerprint.Compute(entry)
	if err != nil {
		p.logger.Warnf("%v", err)
		return
	}

	dup, err := p.tree.Insert(meta)
	if err != nil {
		if derr, ok := err.(*dederrors.Error); ok {
			p.logger.Warnf("%v", derr)
		} else {
			p.logger.Warnf("%v", err)
		}
		return
	}

	if dup != nil {
		p.dups.Record(dup, meta)
	}
}
