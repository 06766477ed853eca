// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

import (
	"context"
	"sync/atomic"
)

// job is one evaluation pass of a query. A conditional query needs two passes:
// the joint probability of the query and the evidence, and the probability of
// the evidence alone (with the query variable left unconditioned). Each pass
// has its own cache and condition tiers.
type job struct {
	name   string
	cache  *Cache
	ct     ConditionTierList
	ev     EvidenceList
	result float64
}

// scheduler executes the task graphs of a list of jobs with a pool of workers.
// When run returns without error, the entry of tier 0 of each job is
// computed.
type scheduler interface {
	run(ctx context.Context, a *Architecture, jobs []*job, workers int) error
}

// jobtask identifies a task of a job.
type jobtask struct {
	j *job
	k int
}

// runTask computes the entry of task k of job j using scratch buffer sc. The
// results of the tasks of the next tier that it depends on must already be in
// the cache.
func (a *Architecture) runTask(j *job, k int, sc *scratch) error {
	t := j.cache.Task(k)
	copy(sc.ev, t.Evidence)
	var next func(EvidenceList) (float64, error)
	var persistent []bool
	if t.Tier+1 < a.Size() {
		persistent = a.persistent
		tier := t.Tier + 1
		span := a.spanning.Set(tier)
		next = func(ev EvidenceList) (float64, error) {
			id, err := contextkey(a.net, span, ev, tier)
			if err != nil {
				return 0, err
			}
			p := j.cache.Entry(tier, id)
			if p < 0 {
				return 0, archerror("child component (%d,%d) was not computed", tier, id)
			}
			return p, nil
		}
	}
	p, err := a.Partition(t.Tier).Circuit.traverse(sc, sc.ev, j.ct, t.Tier, persistent, next)
	if err != nil {
		return err
	}
	j.cache.store(t.Tier, t.ID, p)
	atomic.AddInt64(&j.cache.stat.tasks, 1)
	return nil
}
