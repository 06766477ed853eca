// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

import (
	"errors"
	"fmt"
)

// Reserved indices in a WPBDD node table. The two constants are always
// stored first and the root of the diagram is the first non terminal node.
const (
	FalseIndex = 0
	TrueIndex  = 1
	RootIndex  = 2
)

// Reserved indices in a multigraph. We only synthesize a single terminal (with
// value 1) and the root follows it.
const (
	mgTerminals = 1
	mgRootIndex = mgTerminals
)

// Undefined is the value returned by a conditional query when the probability
// of the evidence is exactly zero.
const Undefined float64 = -1

// Unassigned is the value of a variable without evidence in an EvidenceList.
const Unassigned = -1

// TierInit is the condition tier of a variable that is never fixed by the
// architecture or by evidence. It is larger than any legal tier.
const TierInit = 255

// _MAXTIERS is the maximal number of tiers in an architecture, so that every
// legal tier stays below TierInit.
const _MAXTIERS = TierInit - 1

// Sentinel values stored in cache entries and scratch probability arrays. A
// probability is always positive, so every negative value is a marker.
const (
	notCached    float64 = -1
	notTraversed float64 = -4
)

// _MAXBUFFER is the hard upper bound on the number of scratch buffers (and
// hence worker threads) allocated by a cache.
const _MAXBUFFER int = 128

// _MAXEXHAUSTIVE is the maximal number of partitions for which we search the
// best composition ordering by enumerating all permutations.
const _MAXEXHAUSTIVE int = 8

var (
	// ErrFormat is returned (wrapped) for every malformed input file.
	ErrFormat = errors.New("format error")

	// ErrMissingVariable is returned when partitions do not cover all the
	// variables of the network.
	ErrMissingVariable = fmt.Errorf("missing variable: %w", ErrFormat)

	// ErrDuplicateVariable is returned when a variable is owned by more than
	// one partition.
	ErrDuplicateVariable = fmt.Errorf("duplicate variable: %w", ErrFormat)

	// ErrUnknownVariable is returned when a query refers to a variable name or
	// id that is not in the network.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrEvidenceConflict is returned when a variable receives evidence twice.
	ErrEvidenceConflict = errors.New("conflicting evidence")

	// ErrEvidenceValue is returned when evidence is outside the dimension of
	// its variable.
	ErrEvidenceValue = errors.New("evidence out of range")

	// ErrArchitecture signals a broken internal invariant, such as a cache
	// entry that should have been computed by a previous task. It is never a
	// user error.
	ErrArchitecture = errors.New("architecture consistency error")

	// ErrNumeric is returned when a computation produces NaN or an infinite
	// value.
	ErrNumeric = errors.New("invalid probability")
)
