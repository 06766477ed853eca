// Copyright 2021. Silvano DAL ZILIO.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package bnmc

import (
	"fmt"
	"math"
	"sync/atomic"
)

// ************************************************************

// Cache memoizes the results of an evaluation pass, for each tier and each
// context id of the tier. It also holds the task dependency graph used by the
// parallel schedulers, and the scratch buffers used by evaluators. A cache is
// used by a single query at a time; an entry is written at most once per
// query.
type Cache struct {
	widths  []int
	entries [][]float64
	tasks   []Task
	slots   [][]int32 // task index of each (tier, context id), or -1
	tiers   [][]int   // task indices of each tier
	buffers []*scratch
	stat    cacheStat
}

// cacheStat stores information about cache usage during a query.
type cacheStat struct {
	hits   int64 // entries found in the cache
	misses int64 // entries computed
	tasks  int64 // tasks executed by a scheduler
}

func (s cacheStat) String() string {
	return fmt.Sprintf("hits: %d, misses: %d, tasks: %d", s.hits, s.misses, s.tasks)
}

// Task is a unit of work for the parallel schedulers: the computation of the
// entry of context ID in tier Tier. Evidence is the evidence list under which
// the entry must be computed (the query evidence plus the values of the
// spanning variables encoded in ID). Dependents is the reverse list of the
// tasks of tier Tier-1 that need this result.
type Task struct {
	Tier       int
	ID         int
	Evidence   EvidenceList
	Dependents []int
	counter    int32 // number of prerequisite tasks not yet computed
}

// scratch is a set of buffers owned by a single evaluator (one worker or one
// tier) and reused across evaluations.
type scratch struct {
	probs   []float64
	stamps  []uint32
	done    []bool
	stack   []frame
	mgstack []mgframe
	ev      EvidenceList
	epoch   uint32 // last stamp issued
	visits  int    // number of node expansions during the last evaluation
}

func newScratch(size int) *scratch {
	sc := &scratch{}
	sc.reset(size, 0)
	return sc
}

// reset prepares the buffers for a circuit with size nodes. The stack grows on
// demand; stackhint is only used to avoid reallocation.
func (sc *scratch) reset(size, stackhint int) {
	if cap(sc.probs) < size {
		sc.probs = make([]float64, size)
		sc.stamps = make([]uint32, size)
		sc.done = make([]bool, size)
	}
	sc.probs = sc.probs[:size]
	sc.stamps = sc.stamps[:size]
	sc.done = sc.done[:size]
	for k := range sc.stamps {
		sc.stamps[k] = 0
		sc.done[k] = false
		sc.probs[k] = notTraversed
	}
	if cap(sc.stack) < stackhint {
		sc.stack = make([]frame, 0, stackhint)
	}
	sc.stack = sc.stack[:0]
	sc.mgstack = sc.mgstack[:0]
	sc.epoch = 0
	sc.visits = 0
}

// fresh returns a stamp never used since the last reset of the stamps.
func (sc *scratch) fresh() uint32 {
	if sc.epoch == math.MaxUint32 {
		for k := range sc.stamps {
			sc.stamps[k] = 0
		}
		sc.epoch = 0
	}
	sc.epoch++
	return sc.epoch
}

// ************************************************************

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// SetSizes allocates one entry per context id of each tier. Every entry is
// reset to the "not cached" sentinel.
func (c *Cache) SetSizes(widths []int) {
	c.widths = append(c.widths[:0], widths...)
	if len(c.entries) != len(widths) {
		c.entries = make([][]float64, len(widths))
		c.slots = make([][]int32, len(widths))
		c.tiers = make([][]int, len(widths))
	}
	for t, w := range widths {
		if cap(c.entries[t]) < w {
			c.entries[t] = make([]float64, w)
			c.slots[t] = make([]int32, w)
		}
		c.entries[t] = c.entries[t][:w]
		c.slots[t] = c.slots[t][:w]
	}
	c.Reset()
}

// Prepare allocates n scratch buffers, each one large enough for a circuit of
// size nodes and a stack of stackhint frames, and an evidence list of varnum
// variables. Buffers are indexed by worker (parallel strategies) or by tier.
func (c *Cache) Prepare(n, size, stackhint, varnum int) {
	for len(c.buffers) < n {
		c.buffers = append(c.buffers, &scratch{})
	}
	c.buffers = c.buffers[:n]
	for _, sc := range c.buffers {
		sc.reset(size, stackhint)
		if cap(sc.ev) < varnum {
			sc.ev = make(EvidenceList, varnum)
		}
		sc.ev = sc.ev[:varnum]
	}
}

// Reset clears all entries and the task graph.
func (c *Cache) Reset() {
	for t := range c.entries {
		for k := range c.entries[t] {
			c.entries[t][k] = notCached
			c.slots[t][k] = -1
		}
		c.tiers[t] = c.tiers[t][:0]
	}
	c.tasks = c.tasks[:0]
	c.stat = cacheStat{}
}

// Tiers returns the number of tiers in the cache.
func (c *Cache) Tiers() int {
	return len(c.entries)
}

// Entry returns the result cached for context id in tier, or a negative value
// if the result has not been computed.
func (c *Cache) Entry(tier, id int) float64 {
	return c.entries[tier][id]
}

// store publishes the result of context id in tier.
func (c *Cache) store(tier, id int, p float64) {
	if _DEBUG && c.entries[tier][id] != notCached {
		panic(fmt.Sprintf("cache entry (%d,%d) written twice", tier, id))
	}
	c.entries[tier][id] = p
}

// buffer returns the k'th scratch buffer.
func (c *Cache) buffer(k int) *scratch {
	return c.buffers[k]
}

// ************************************************************

// SetTasks enumerates every (tier, context) pair needed to answer a query and
// builds the dependency graph between them. Only contexts consistent with the
// evidence (variables with condition tier 0) are enumerated. A task of tier t
// depends on the tasks of tier t+1 whose context agrees with its own context
// and with the evidence.
func (c *Cache) SetTasks(a *Architecture, ct ConditionTierList, ev EvidenceList) {
	c.tasks = c.tasks[:0]
	for t := 0; t < a.Size(); t++ {
		c.tiers[t] = c.tiers[t][:0]
		span := a.spanning.Set(t)
		base := ev.Clone()
		newxary(a.net, span, ev, func(v int) bool { return ct[v] == 0 }).enumerate(func(id int) {
			tev := base.Clone()
			setcontext(a.net, span, id, tev)
			c.slots[t][id] = int32(len(c.tasks))
			c.tiers[t] = append(c.tiers[t], len(c.tasks))
			c.tasks = append(c.tasks, Task{Tier: t, ID: id, Evidence: tev})
		})
	}
	for t := 0; t+1 < a.Size(); t++ {
		span, next := a.spanning.Set(t), a.spanning.Set(t+1)
		for _, k := range c.tiers[t] {
			tev := c.tasks[k].Evidence
			x := newxary(a.net, next, tev, func(v int) bool {
				return ct[v] == 0 || setcontains(span, v)
			})
			x.enumerate(func(id int) {
				child := c.slots[t+1][id]
				c.tasks[k].counter++
				c.tasks[child].Dependents = append(c.tasks[child].Dependents, k)
			})
		}
	}
}

// TaskCount returns the number of tasks in the dependency graph.
func (c *Cache) TaskCount() int {
	return len(c.tasks)
}

// Task returns the k'th task.
func (c *Cache) Task(k int) *Task {
	return &c.tasks[k]
}

// TierTasks returns the indices of the tasks of a tier.
func (c *Cache) TierTasks(tier int) []int {
	return c.tiers[tier]
}

// TaskGroup returns the indices of the tasks that depend on task k.
func (c *Cache) TaskGroup(k int) []int {
	return c.tasks[k].Dependents
}

// TaskCounter returns the number of prerequisites of task k that are not yet
// computed.
func (c *Cache) TaskCounter(k int) int {
	return int(atomic.LoadInt32(&c.tasks[k].counter))
}

// release decrements the counter of task k and reports whether it reached
// zero, meaning the task is ready.
func (c *Cache) release(k int) bool {
	return atomic.AddInt32(&c.tasks[k].counter, -1) == 0
}
