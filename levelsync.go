// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// levelSync evaluates tiers one at a time, from the last to the first. All the
// tasks of a tier (for every job) are spread over the workers, and we wait for
// all of them before starting the previous tier. Worker w executes the tasks
// at positions w, w+n, w+2n, ... of the tier.
type levelSync struct{}

func (levelSync) run(ctx context.Context, a *Architecture, jobs []*job, workers int) error {
	var items []jobtask
	for tier := a.Size() - 1; tier >= 0; tier-- {
		items = items[:0]
		for _, j := range jobs {
			for _, k := range j.cache.TierTasks(tier) {
				items = append(items, jobtask{j, k})
			}
		}
		n := min(workers, len(items))
		g, gctx := errgroup.WithContext(ctx)
		for w := 0; w < n; w++ {
			w := w
			g.Go(func() error {
				for i := w; i < len(items); i += n {
					if err := gctx.Err(); err != nil {
						return err
					}
					it := items[i]
					if err := a.runTask(it.j, it.k, it.j.cache.buffer(w)); err != nil {
						return err
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}
