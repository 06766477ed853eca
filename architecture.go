// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

import (
	"fmt"
)

// Architecture describes how the partitions of a network are organized for
// evaluation. In the linear organization, partitions are sorted into tiers
// following an ordering; the true terminal of the circuit of tier t stands for
// the value of the circuit of tier t+1. We also build a composition tree of the
// same partitions, used by the Composed strategy.
type Architecture struct {
	net         *Network
	parts       []Partition
	ordering    []int // partition id of each tier
	persistence *Persistence
	spanning    *Spanning
	persistent  []bool
	composition *Composition
	shared      []bool // variables shared by several composition nodes
	widths      []int
	maxsize     int // size of the largest circuit
	stackhint   int
}

// NewArchitecture returns the architecture of a partitioned network. Parameter
// ordering gives the partition of each tier; when nil we use the ordering that
// minimizes the size of the composition tree. When chain is true, the
// composition tree is built as a single branch. Every partition must have a
// circuit that only tests variables of its set or cutset.
func NewArchitecture(net *Network, parts []Partition, ordering []int, chain bool) (*Architecture, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("architecture without partitions: %w", ErrFormat)
	}
	if len(parts) > _MAXTIERS {
		return nil, fmt.Errorf("too many partitions (%d), the limit is %d: %w", len(parts), _MAXTIERS, ErrFormat)
	}
	if err := VerifyPartitions(net, parts); err != nil {
		return nil, err
	}
	if err := VerifyOrdering(net, parts); err != nil {
		return nil, err
	}
	if err := checkcircuits(net, parts); err != nil {
		return nil, err
	}
	a := &Architecture{
		net:         net,
		parts:       parts,
		composition: NewComposition(net, parts),
	}
	if ordering == nil {
		ordering = a.composition.FindOrdering()
	}
	if err := a.composition.Build(ordering, chain); err != nil {
		return nil, err
	}
	a.ordering = a.composition.Ordering()
	a.persistence = NewPersistence(net, parts, a.ordering)
	a.spanning = NewSpanning(a.persistence)
	a.persistent = a.persistence.List()
	a.shared = make([]bool, net.Varnum())
	for k := range parts {
		for _, v := range a.composition.Shared(k) {
			a.shared[v] = true
		}
	}
	a.widths = make([]int, len(a.ordering))
	for t := range a.ordering {
		a.widths[t] = contextwidth(net, a.spanning.Set(t))
	}
	for _, p := range parts {
		if p.Circuit.Size() > a.maxsize {
			a.maxsize = p.Circuit.Size()
		}
		hint := 0
		for _, v := range p.Variables() {
			hint += net.Dimension(v)
		}
		if 4*hint > a.stackhint {
			a.stackhint = 4 * hint
		}
	}
	return a, nil
}

// Network returns the network of the architecture.
func (a *Architecture) Network() *Network {
	return a.net
}

// Size returns the number of tiers.
func (a *Architecture) Size() int {
	return len(a.ordering)
}

// Ordering returns the partition id of each tier.
func (a *Architecture) Ordering() []int {
	return a.ordering
}

// Partition returns the partition evaluated in a tier.
func (a *Architecture) Partition(tier int) *Partition {
	return &a.parts[a.ordering[tier]]
}

// Partitions returns the partitions of the network, in their original order.
func (a *Architecture) Partitions() []Partition {
	return a.parts
}

// Persistence returns the persistence sets of the tiers.
func (a *Architecture) Persistence() *Persistence {
	return a.persistence
}

// Spanning returns the spanning sets of the tiers.
func (a *Architecture) Spanning() *Spanning {
	return a.spanning
}

// Composition returns the composition tree of the partitions.
func (a *Architecture) Composition() *Composition {
	return a.composition
}

// Widths returns the number of context ids of each tier.
func (a *Architecture) Widths() []int {
	return a.widths
}

// ConditionTiers returns the condition tiers used to answer a query in the
// linear organization. Evidence variables are conditioned in every tier and
// persistence variables from the tier following their first occurrence. When
// noQuery is true, the query variable is treated as if it had no evidence.
func (a *Architecture) ConditionTiers(ev *Evidence, noQuery bool) ConditionTierList {
	ct := make(ConditionTierList, a.net.Varnum())
	a.persistence.fillConditionTiers(ct)
	fillEvidenceTiers(ct, ev, noQuery)
	return ct
}

// CompositionConditionTiers is like ConditionTiers but for the nodes of the
// composition tree, where the tier of a node is its id.
func (a *Architecture) CompositionConditionTiers(ev *Evidence, noQuery bool) ConditionTierList {
	ct := make(ConditionTierList, a.net.Varnum())
	a.composition.fillConditionTiers(ct)
	fillEvidenceTiers(ct, ev, noQuery)
	return ct
}

func fillEvidenceTiers(ct ConditionTierList, ev *Evidence, noQuery bool) {
	for v := range ct {
		if ev.IsEvidence(v) && !(noQuery && v == ev.Query()) {
			ct[v] = 0
		}
	}
}

// Stats returns a summary of the architecture.
func (a *Architecture) Stats() string {
	res := fmt.Sprintf("Tiers:         %d\n", a.Size())
	res += fmt.Sprintf("Ordering:      %v\n", a.ordering)
	res += fmt.Sprintf("Persistence:   %d variables\n", len(a.persistence.Variables()))
	for t := range a.ordering {
		p := a.Partition(t)
		res += fmt.Sprintf("Tier %-3d       partition %-3d  nodes: %-8d spanning: %-4d contexts: %d\n",
			t, a.ordering[t], p.Circuit.Size(), len(a.spanning.Set(t)), a.widths[t])
	}
	return res
}
