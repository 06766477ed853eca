// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

import (
	"fmt"
	"strings"
)

// Strategy describes how an engine evaluates the tiers of an architecture.
type Strategy int

const (
	Sequential  Strategy = iota // recursive evaluation from tier 0, one thread
	Composed                    // recursive evaluation of the composition tree, one thread
	LevelSync                   // parallel, one barrier per tier, from the last tier to the first
	Dataflow                    // parallel, a task is ready when all its prerequisites are done
)

var strategynames = [4]string{
	Sequential:  "sequential",
	Composed:    "composition",
	LevelSync:   "levelsync",
	Dataflow:    "dataflow",
}

func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategynames) {
		return fmt.Sprintf("strategy(%d)", int(s))
	}
	return strategynames[s]
}

// Parallel reports whether the strategy uses several workers.
func (s Strategy) Parallel() bool {
	return s == LevelSync || s == Dataflow
}

// ParseStrategy returns the strategy with the given name (case insensitive).
func ParseStrategy(name string) (Strategy, error) {
	for k, s := range strategynames {
		if strings.EqualFold(s, name) {
			return Strategy(k), nil
		}
	}
	return Sequential, fmt.Errorf("unknown strategy %q (expected one of %s)", name, strings.Join(strategynames[:], ", "))
}
