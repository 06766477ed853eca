// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Engine answers probabilistic queries on a compiled network. It is either
// built from partitions compiled into WPBDDs (see New), or from a single
// multigraph (see NewMultigraphEngine). An engine is immutable once created
// and can answer several queries concurrently; each query uses its own caches.
type Engine struct {
	net     *Network
	arch    *Architecture
	mg      *Multigraph
	configs *configs
	workers int
	pool    sync.Pool
}

// Result holds the answer to a query together with statistics about its
// evaluation.
type Result struct {
	ID          uuid.UUID
	Evidence    string
	Strategy    Strategy
	Probability float64 // posterior probability of the query, or Undefined
	Joint       float64 // probability of the query and the evidence
	Marginal    float64 // probability of the evidence alone
	Tasks       int64   // tasks executed by a parallel scheduler
	Hits        int64   // cache hits of a recursive strategy
	Misses      int64   // cache misses of a recursive strategy
	Duration    time.Duration
}

// New returns an engine for a network split into partitions. Every partition
// must have a circuit. The partitions must cover the network (see
// VerifyPartitions). Options are given as configuration functions, such as
// WithStrategy or Workers.
func New(net *Network, parts []Partition, options ...Option) (*Engine, error) {
	c := makeconfigs()
	for _, f := range options {
		f(c)
	}
	if c.strategy < Sequential || c.strategy > Dataflow {
		return nil, fmt.Errorf("unknown strategy %d", int(c.strategy))
	}
	arch, err := NewArchitecture(net, parts, c.ordering, c.chain)
	if err != nil {
		return nil, err
	}
	e := &Engine{net: net, arch: arch, configs: c, workers: 1}
	if c.strategy.Parallel() {
		e.workers = workerCount(c.workers)
	}
	c.logger.Debug("engine ready",
		zap.String("network", net.Name()),
		zap.Int("tiers", arch.Size()),
		zap.Ints("ordering", arch.Ordering()),
		zap.Stringer("strategy", c.strategy),
		zap.Int("workers", e.workers))
	return e, nil
}

// NewMultigraphEngine returns an engine for a network compiled into a single
// multigraph. The strategy option is ignored.
func NewMultigraphEngine(net *Network, mg *Multigraph, options ...Option) (*Engine, error) {
	c := makeconfigs()
	for _, f := range options {
		f(c)
	}
	if err := mg.Verify(net); err != nil {
		return nil, err
	}
	c.logger.Debug("engine ready",
		zap.String("network", net.Name()),
		zap.Int("nodes", mg.Size()),
		zap.Int("edges", mg.EdgeCount()),
		zap.Bool("tree", mg.IsTree()))
	return &Engine{net: net, mg: mg, configs: c, workers: 1}, nil
}

// Network returns the network of the engine.
func (e *Engine) Network() *Network {
	return e.net
}

// Architecture returns the architecture of the engine, or nil for a multigraph
// engine.
func (e *Engine) Architecture() *Architecture {
	return e.arch
}

// Strategy returns the evaluation strategy of the engine.
func (e *Engine) Strategy() Strategy {
	return e.configs.strategy
}

// Workers returns the number of workers used for each query.
func (e *Engine) Workers() int {
	return e.workers
}

// ************************************************************

// Posterior returns the probability of the query variable given the evidence
// in ev, or the probability of the evidence when ev has no query variable. The
// result is Undefined (with a nil error) when the probability of the evidence
// is zero.
func (e *Engine) Posterior(ctx context.Context, ev *Evidence) (float64, error) {
	res, err := e.Query(ctx, ev)
	if err != nil {
		return 0, err
	}
	return res.Probability, nil
}

// Query is like Posterior but returns the details of the evaluation.
func (e *Engine) Query(ctx context.Context, ev *Evidence) (*Result, error) {
	if ev.net != e.net {
		return nil, fmt.Errorf("%w: evidence is not defined on network %q", ErrUnknownVariable, e.net.Name())
	}
	res := &Result{ID: uuid.New(), Evidence: ev.String(), Strategy: e.configs.strategy}
	ctx, span := e.configs.tracer.Start(ctx, "bnmc.Query",
		trace.WithAttributes(
			attribute.String("query.id", res.ID.String()),
			attribute.String("query.evidence", res.Evidence),
			attribute.String("query.strategy", res.Strategy.String()),
		))
	defer span.End()

	start := time.Now()
	stat, err := e.posterior(ctx, ev, res)
	res.Duration = time.Since(start)
	res.Tasks, res.Hits, res.Misses = stat.tasks, stat.hits, stat.misses
	queryDuration.WithLabelValues(res.Strategy.String()).Observe(res.Duration.Seconds())
	record(res.Strategy, stat, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.configs.logger.Error("query failed",
			zap.String("query", res.ID.String()),
			zap.String("evidence", res.Evidence),
			zap.Error(err))
		return nil, err
	}
	span.SetAttributes(attribute.Float64("query.probability", res.Probability))
	e.configs.logger.Debug("query answered",
		zap.String("query", res.ID.String()),
		zap.String("evidence", res.Evidence),
		zap.Float64("probability", res.Probability),
		zap.Int64("tasks", res.Tasks),
		zap.Int64("hits", res.Hits),
		zap.Int64("misses", res.Misses),
		zap.Duration("duration", res.Duration))
	return res, nil
}

// posterior computes the numerator and, for a conditional query, the
// denominator of the result.
func (e *Engine) posterior(ctx context.Context, ev *Evidence, res *Result) (cacheStat, error) {
	var stat cacheStat
	jobs := []*job{e.newJob("joint", ev, false)}
	if ev.HasQuery() {
		jobs = append(jobs, e.newJob("marginal", ev, true))
	}
	defer func() {
		for _, j := range jobs {
			e.pool.Put(j.cache)
		}
	}()
	err := e.evaluate(ctx, jobs)
	for _, j := range jobs {
		if _LOGLEVEL > 0 {
			j.cache.logTable()
		}
		stat.hits += j.cache.stat.hits
		stat.misses += j.cache.stat.misses
		stat.tasks += j.cache.stat.tasks
	}
	if err != nil {
		return stat, err
	}
	for _, j := range jobs {
		if err := checkProbability(j.result); err != nil {
			return stat, fmt.Errorf("%s probability: %w", j.name, err)
		}
	}
	res.Joint = jobs[0].result
	res.Marginal = jobs[len(jobs)-1].result
	switch {
	case !ev.HasQuery():
		res.Probability = res.Joint
	case res.Marginal == 0:
		res.Probability = Undefined
	default:
		res.Probability = res.Joint / res.Marginal
	}
	return stat, checkProbability(res.Probability)
}

// newJob prepares an evaluation pass of query ev. When noQuery is true, the
// query variable is left unconditioned.
func (e *Engine) newJob(name string, ev *Evidence, noQuery bool) *job {
	j := &job{name: name, ev: ev.List()}
	j.cache, _ = e.pool.Get().(*Cache)
	if j.cache == nil {
		j.cache = NewCache()
	}
	varnum := e.net.Varnum()
	buffers := min(e.configs.buffer, _MAXBUFFER)
	switch {
	case e.mg != nil:
		j.ct = make(ConditionTierList, varnum)
		for v := range j.ct {
			j.ct[v] = TierInit
		}
		fillEvidenceTiers(j.ct, ev, noQuery)
		j.cache.SetSizes(nil)
		j.cache.Prepare(1, e.mg.Size(), 0, varnum)
	case e.configs.strategy == Composed:
		j.ct = e.arch.CompositionConditionTiers(ev, noQuery)
		comp := e.arch.Composition()
		j.cache.SetSizes(comp.Widths())
		j.cache.Prepare(max(buffers, len(comp.Nodes())), e.arch.maxsize, e.arch.stackhint, varnum)
	case e.configs.strategy == Sequential:
		j.ct = e.arch.ConditionTiers(ev, noQuery)
		j.cache.SetSizes(e.arch.Widths())
		j.cache.Prepare(max(buffers, e.arch.Size()), e.arch.maxsize, e.arch.stackhint, varnum)
	default:
		j.ct = e.arch.ConditionTiers(ev, noQuery)
		j.cache.SetSizes(e.arch.Widths())
		j.cache.Prepare(max(buffers, e.workers), e.arch.maxsize, e.arch.stackhint, varnum)
		j.cache.SetTasks(e.arch, j.ct, j.ev)
	}
	return j
}

// evaluate computes the result of every job with the strategy of the engine.
func (e *Engine) evaluate(ctx context.Context, jobs []*job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var err error
	switch {
	case e.mg != nil:
		for _, j := range jobs {
			sc := j.cache.buffer(0)
			if e.mg.IsTree() {
				j.result = e.mg.traverseTree(sc, j.ev, j.ct, 0)
			} else {
				j.result = e.mg.traverse(sc, j.ev, j.ct, 0)
			}
		}
	case e.configs.strategy == Sequential:
		for _, j := range jobs {
			if j.result, err = e.arch.traverseArchitecture(j, 0, j.ev); err != nil {
				return err
			}
		}
	case e.configs.strategy == Composed:
		for _, j := range jobs {
			if j.result, err = e.arch.traverseComposition(j, e.arch.Composition().Root(), j.ev); err != nil {
				return err
			}
		}
	default:
		var s scheduler = levelSync{}
		if e.configs.strategy == Dataflow {
			s = dataflow{}
		}
		if err = s.run(ctx, e.arch, jobs, e.workers); err != nil {
			return err
		}
		for _, j := range jobs {
			if j.result = j.cache.Entry(0, 0); j.result < 0 {
				return archerror("tier 0 of pass %s was not computed", j.name)
			}
		}
	}
	return nil
}
