// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

/*
Package bnmc computes exact probabilities in a Bayesian network compiled into
circuits: weighted pseudo-Boolean decision diagrams (WPBDD) or AND/OR
multigraphs.

# Basics

A Network declares a fixed number of variables, Varnum, each one with a finite
number of values (its dimension). Variables are represented by an integer index
in the interval [0..Varnum). A query is an Evidence: a partial assignment of
the variables plus an optional query variable. The probability of the query
variable given the other assignments is the ratio between two evaluations of
the circuits, one where every assignment is conditioned and one where the query
variable is left free.

# Partitions and tiers

Large networks are split into partitions, each one compiled into its own
WPBDD. An Architecture orders partitions into tiers: the true terminal of the
circuit of a tier stands for the circuit of the next tier. Variables mentioned
by several tiers (the persistence variables) are decided in the first tier that
mentions them; the values still needed by a tier (its spanning set) form a
context, and the result of a tier is cached for each context. The same
partitions can also be organized as a composition tree, where the true terminal
of a partition stands for the product of its children.

# Strategies

An Engine evaluates a query with one of four strategies. Sequential and
Composed recurse from the first tier (or the root of the composition tree)
and compute the contexts they need on demand. LevelSync and Dataflow first
enumerate every (tier, context) task consistent with the evidence, then
execute them with a pool of workers, from the last tier to the first; LevelSync
waits for the completion of a whole tier before starting the previous one
whereas Dataflow starts a task as soon as all its prerequisites are done. All
strategies compute the same result.

# Use of build tags

You can compile your executable with the build tag `debug` to enable
expensive internal checks (such as cache entries written twice) and to log the
content of the caches after each query.
*/
package bnmc
