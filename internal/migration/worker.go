package migration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jpcardozx/nova-ipe-sub022/internal/catalog"
	"github.com/jpcardozx/nova-ipe-sub022/internal/destination"
)

// Worker drains the task queue and performs migrations. Multiple workers
// may run concurrently; the queue's claim semantics keep each task on a
// single worker, and enqueue-time dedup keeps each property on a single
// task.
type Worker struct {
	queue        Queue
	reviews      *catalog.Service
	dest         destination.Catalog
	log          *logrus.Logger
	pollInterval time.Duration
}

// NewWorker returns a worker over the given queue, review service and
// destination catalog.
func NewWorker(queue Queue, reviews *catalog.Service, dest destination.Catalog, log *logrus.Logger, pollInterval time.Duration) *Worker {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Worker{
		queue:        queue,
		reviews:      reviews,
		dest:         dest,
		log:          log,
		pollInterval: pollInterval,
	}
}

// Run starts n claim loops and blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context, n int) {
	if n < 1 {
		n = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			w.loop(ctx, worker)
		}(i + 1)
	}
	wg.Wait()
}

func (w *Worker) loop(ctx context.Context, worker int) {
	log := w.log.WithField("worker", worker)
	for {
		processed, err := w.ProcessNext(ctx)
		if err != nil {
			log.Errorf("Task processing failed: %v", err)
		}
		if processed {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.pollInterval):
		}
	}
}

// ProcessNext claims and processes at most one task. It reports whether
// a task was claimed; queue-empty is not an error.
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	task, err := w.queue.Claim(ctx)
	if err != nil {
		return false, err
	}
	if task == nil {
		return false, nil
	}
	w.process(ctx, task)
	return true, nil
}

// process runs one migration attempt. A destination failure marks the
// task failed and leaves the property approved, eligible for an explicit
// requeue; it is never retried silently.
func (w *Worker) process(ctx context.Context, task *Task) {
	log := w.log.WithFields(logrus.Fields{"task": task.ID, "property": task.PropertyID})

	p, err := w.reviews.Store().Get(ctx, task.PropertyID)
	if err != nil {
		w.fail(ctx, task, fmt.Sprintf("load property: %v", err), log)
		return
	}
	if p.Status != catalog.StatusApproved {
		w.fail(ctx, task, fmt.Sprintf("property is %s, expected approved", p.Status), log)
		return
	}

	if err := w.queue.SetProgress(ctx, task.ID, 10); err != nil {
		log.Warnf("Failed to record task progress: %v", err)
	}

	destID, err := w.dest.UpsertEntry(ctx, p)
	if err != nil {
		w.fail(ctx, task, fmt.Sprintf("destination write: %v", err), log)
		return
	}

	if err := w.queue.SetProgress(ctx, task.ID, 70); err != nil {
		log.Warnf("Failed to record task progress: %v", err)
	}

	if _, err := w.reviews.MarkMigrated(ctx, p.ID, destID); err != nil {
		w.fail(ctx, task, fmt.Sprintf("mark migrated: %v", err), log)
		return
	}

	if err := w.queue.Complete(ctx, task.ID); err != nil {
		log.Errorf("Failed to complete task: %v", err)
		return
	}
	log.WithField("destination", destID).Info("Property migrated")
}

func (w *Worker) fail(ctx context.Context, task *Task, reason string, log *logrus.Entry) {
	log.Errorf("Migration failed: %s", reason)
	if err := w.queue.Fail(ctx, task.ID, reason); err != nil {
		log.Errorf("Failed to record task failure: %v", err)
	}
}
