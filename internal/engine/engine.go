// Package engine implements the orchestrator: it owns
// the queue, visited tree, duplicate map, and metric counters, drives the
// walker on the calling goroutine while workers run concurrently, and
// after the walk and worker drain complete, resolves each duplicate set
// via the origin selector and replacer.
package engine

import (
	"github.com/ttkb-oss/dedup/internal/dederrors"
	"github.com/ttkb-oss/dedup/internal/dupmap"
	"github.com/ttkb-oss/dedup/internal/logging"
	"github.com/ttkb-oss/dedup/internal/model"
	"github.com/ttkb-oss/dedup/internal/origin"
	"github.com/ttkb-oss/dedup/internal/progress"
	"github.com/ttkb-oss/dedup/internal/queue"
	"github.com/ttkb-oss/dedup/internal/replace"
	"github.com/ttkb-oss/dedup/internal/visited"
	"github.com/ttkb-oss/dedup/internal/walk"
	"github.com/ttkb-oss/dedup/internal/worker"
)

// Config configures a single run of the engine.
type Config struct {
	Roots         []string
	Threads       int
	Mode          replace.Mode
	DryRun        bool
	Force         bool
	OneFileSystem bool
	MaxDepth      int
	Exclude       []string
	Logger        *logging.Logger
	Progress      *progress.Tracker
}

// Result aggregates the run's metric counters.
type Result struct {
	Found        int
	Saved        uint64
	AlreadySaved uint64
}

// Run executes one full dedup pass: walk, fingerprint/insert (concurrent),
// then origin-select and replace (single-threaded) per duplicate set.
func Run(cfg Config) (Result, error) {
	logger := cfg.Logger.Sublogger("engine")

	q := queue.New()
	tree := visited.New(logger)
	dups := dupmap.New()

	var reporter worker.Reporter
	if cfg.Progress != nil {
		reporter = cfg.Progress
	}
	pool := worker.New(cfg.Threads, q, tree, dups, reporter, logger)
	pool.Start()

	walkOpts := walk.Options{
		OneFileSystem:       cfg.OneFileSystem,
		MaxDepth:            cfg.MaxDepth,
		Exclude:             cfg.Exclude,
		RequireCloneSupport: cfg.Mode == replace.ModeClone,
		Logger:              logger,
	}

	walkErr := walk.Walk(cfg.Roots, walkOpts, func(entry model.PathEntry) error {
		q.Push(entry)
		return nil
	}, func(derr *dederrors.Error) {
		logger.Warnf("%v", derr)
	})

	q.Finish()
	pool.Wait()

	if cfg.Progress != nil {
		cfg.Progress.Finish()
	}

	if walkErr != nil {
		return Result{}, dederrors.New(dederrors.KindFatal, "", walkErr)
	}

	replacer := replace.New(cfg.Mode, cfg.DryRun, cfg.Force, logger)

	var result Result
	dups.Each(func(hash [model.HashSize]byte, members []*model.FileMetadata) {
		if len(members) < 2 {
			return
		}
		result.Found += len(members) - 1

		sel := origin.Select(members)
		if sel.Skip {
			result.AlreadySaved += sel.AlreadySavedBytes
			if sel.Origin == nil {
				logger.Warnf("skipping %d-member duplicate set: every member is transparently compressed", len(members))
			}
			return
		}

		for _, member := range members {
			if member == sel.Origin {
				continue
			}
			outcome, err := replacer.Replace(sel.Origin, member)
			if err != nil {
				logger.Warnf("%v", err)
				continue
			}
			result.Saved += outcome.SavedBytes
			result.AlreadySaved += outcome.AlreadySavedBytes
		}
	})

	return result, nil
}
