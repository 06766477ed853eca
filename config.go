// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

import (
	"runtime"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// configs is used to store the values of the different parameters of an
// engine.
type configs struct {
	workers  int      // number of workers of the parallel strategies (0 means automatic)
	buffer   int      // minimal number of scratch buffers per cache
	strategy Strategy // evaluation strategy
	ordering []int    // partition of each tier (nil means automatic)
	chain    bool     // build the composition tree as a single branch
	logger   *zap.Logger
	tracer   trace.Tracer
}

// Option is a configuration option of an engine, used as a parameter in New.
type Option func(*configs)

func makeconfigs() *configs {
	return &configs{
		strategy: Sequential,
		logger:   zap.NewNop(),
		tracer:   tracer,
	}
}

// Workers is a configuration option (function). Used as a parameter in New it
// sets the number of workers used by the parallel strategies. The default
// value (0) uses one worker less than the number of logical CPUs. Values
// larger than this bound are also capped, and we always use at least one
// worker.
func Workers(n int) Option {
	return func(c *configs) {
		c.workers = n
	}
}

// Buffer is a configuration option (function). Used as a parameter in New it
// sets the minimal number of scratch buffers allocated for each query. The
// number of buffers is never larger than 128 (unless the architecture has
// more tiers).
func Buffer(n int) Option {
	return func(c *configs) {
		if n > 0 {
			c.buffer = n
		}
	}
}

// WithStrategy is a configuration option (function). Used as a parameter in
// New it selects the evaluation strategy. The default is Sequential.
func WithStrategy(s Strategy) Option {
	return func(c *configs) {
		c.strategy = s
	}
}

// Ordering is a configuration option (function). Used as a parameter in New it
// gives the partition evaluated in each tier. By default we use the ordering
// that gives the smallest composition tree.
func Ordering(ordering []int) Option {
	return func(c *configs) {
		c.ordering = ordering
	}
}

// Chain is a configuration option (function). Used as a parameter in New it
// forces the composition tree to be a single branch.
func Chain() Option {
	return func(c *configs) {
		c.chain = true
	}
}

// Logger is a configuration option (function). Used as a parameter in New it
// sets the logger of the engine. By default nothing is logged.
func Logger(l *zap.Logger) Option {
	return func(c *configs) {
		if l != nil {
			c.logger = l
		}
	}
}

// Tracer is a configuration option (function). Used as a parameter in New it
// sets the tracer used to create a span for each query. By default we use the
// global OpenTelemetry tracer provider.
func Tracer(t trace.Tracer) Option {
	return func(c *configs) {
		if t != nil {
			c.tracer = t
		}
	}
}

// workerCount returns the number of workers to use when n are requested.
func workerCount(n int) int {
	max := runtime.NumCPU() - 1
	if n <= 0 || n > max {
		n = max
	}
	if n > _MAXBUFFER {
		n = _MAXBUFFER
	}
	if n < 1 {
		n = 1
	}
	return n
}
