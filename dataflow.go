// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// dataflow evaluates tasks as soon as their prerequisites are computed. The
// queue initially holds the tasks without prerequisites (the tasks of the last
// tier). When a task finishes, the counter of each dependent task is
// decremented and the tasks that reach zero are queued. The evaluation stops
// when the tier 0 task of every job is done.
//
// Every task is queued exactly once, hence a queue with a capacity equal to
// the number of tasks never blocks.
type dataflow struct{}

func (dataflow) run(ctx context.Context, a *Architecture, jobs []*job, workers int) error {
	total := 0
	for _, j := range jobs {
		total += j.cache.TaskCount()
	}
	queue := make(chan jobtask, total)
	for _, j := range jobs {
		for k := 0; k < j.cache.TaskCount(); k++ {
			if j.cache.TaskCounter(k) == 0 {
				queue <- jobtask{j, k}
			}
		}
	}
	var outstanding atomic.Int32
	outstanding.Store(int32(len(jobs)))
	done := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case <-done:
					return nil
				case it := <-queue:
					if err := a.runTask(it.j, it.k, it.j.cache.buffer(w)); err != nil {
						return err
					}
					t := it.j.cache.Task(it.k)
					if t.Tier == 0 {
						if outstanding.Add(-1) == 0 {
							close(done)
						}
						continue
					}
					for _, p := range t.Dependents {
						if it.j.cache.release(p) {
							queue <- jobtask{it.j, p}
						}
					}
				}
			}
		})
	}
	return g.Wait()
}
