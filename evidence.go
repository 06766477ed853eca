// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

import (
	"fmt"
	"strings"
)

// EvidenceList is a dense array indexed by variable that holds either
// Unassigned or the value committed for the variable.
type EvidenceList []int

// ConditionTierList is a dense array indexed by variable that gives the tier
// at which the value of a variable becomes fixed. A variable is conditioned in
// tier t when its condition tier is less or equal than t.
type ConditionTierList []uint8

// Conditioned reports whether variable v is conditioned in the given tier.
func (ct ConditionTierList) Conditioned(v, tier int) bool {
	return int(ct[v]) <= tier
}

// Evidence is a query: a partial assignment of the network variables, plus an
// optional query variable. The value of the query variable is part of the
// assignment; it is left unconditioned when computing the normalization
// constant of a conditional query.
type Evidence struct {
	net    *Network
	values EvidenceList
	query  int
}

// NewEvidence returns an empty assignment over the variables of net.
func NewEvidence(net *Network) *Evidence {
	ev := &Evidence{
		net:    net,
		values: make(EvidenceList, net.Varnum()),
		query:  -1,
	}
	for k := range ev.values {
		ev.values[k] = Unassigned
	}
	return ev
}

// Set commits value i for variable v. Assigning a variable twice is an error,
// even with the same value.
func (ev *Evidence) Set(v, i int) error {
	if v < 0 || v >= len(ev.values) {
		return fmt.Errorf("%w: %d", ErrUnknownVariable, v)
	}
	if i < 0 || i >= ev.net.Dimension(v) {
		return fmt.Errorf("%w: %s=%d", ErrEvidenceValue, ev.net.VariableName(v), i)
	}
	if ev.values[v] != Unassigned {
		return fmt.Errorf("%w: %s assigned twice", ErrEvidenceConflict, ev.net.VariableName(v))
	}
	ev.values[v] = i
	return nil
}

// SetByName is like Set but uses the name of the variable and of its state.
func (ev *Evidence) SetByName(variable, state string) error {
	v, err := ev.net.Lookup(variable)
	if err != nil {
		return err
	}
	i, err := ev.net.LookupState(v, state)
	if err != nil {
		return err
	}
	return ev.Set(v, i)
}

// SetQuery commits value i for variable v and marks v as the query variable.
// There can only be one query variable.
func (ev *Evidence) SetQuery(v, i int) error {
	if ev.query >= 0 {
		return fmt.Errorf("%w: query variable already set to %s", ErrEvidenceConflict, ev.net.VariableName(ev.query))
	}
	if err := ev.Set(v, i); err != nil {
		return err
	}
	ev.query = v
	return nil
}

// SetQueryByName is like SetQuery but uses names.
func (ev *Evidence) SetQueryByName(variable, state string) error {
	v, err := ev.net.Lookup(variable)
	if err != nil {
		return err
	}
	i, err := ev.net.LookupState(v, state)
	if err != nil {
		return err
	}
	return ev.SetQuery(v, i)
}

// HasQuery reports whether a query variable has been set.
func (ev *Evidence) HasQuery() bool {
	return ev.query >= 0
}

// Query returns the query variable, or -1.
func (ev *Evidence) Query() int {
	return ev.query
}

// Value returns the value committed for v, or Unassigned.
func (ev *Evidence) Value(v int) int {
	return ev.values[v]
}

// IsEvidence reports whether v has a committed value.
func (ev *Evidence) IsEvidence(v int) bool {
	return ev.values[v] != Unassigned
}

// List returns a fresh copy of the evidence list.
func (ev *Evidence) List() EvidenceList {
	return ev.values.Clone()
}

// String returns a canonical representation of the evidence, with variables in
// index order and the query variable (if any) last, such as "A=yes,C=no|B=yes".
func (ev *Evidence) String() string {
	var sb strings.Builder
	for v, i := range ev.values {
		if i == Unassigned || v == ev.query {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%s=%s", ev.net.VariableName(v), ev.net.StateName(v, i))
	}
	if ev.query >= 0 {
		fmt.Fprintf(&sb, "|%s=%s", ev.net.VariableName(ev.query), ev.net.StateName(ev.query, ev.values[ev.query]))
	}
	return sb.String()
}

// Clone returns a copy of the evidence list.
func (el EvidenceList) Clone() EvidenceList {
	res := make(EvidenceList, len(el))
	copy(res, el)
	return res
}
