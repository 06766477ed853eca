// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

import (
	"fmt"
	"math"
)

// Circuit is the interface shared by the compiled representations of a
// partition.
type Circuit interface {
	// Size returns the number of nodes in the circuit, terminals included.
	Size() int

	// Variables returns the sorted list of variables tested in the circuit.
	Variables() []int

	// Evaluate computes the probability of the circuit given an evidence list
	// and a condition tier list. A variable is conditioned when its condition
	// tier is less or equal than tier. The evidence list is not modified.
	Evaluate(ev EvidenceList, ct ConditionTierList, tier int) float64
}

// ************************************************************

// WPBDD is an immutable weighted pseudo-Boolean decision diagram. Nodes are
// stored in a table; entries FalseIndex and TrueIndex are the terminals and
// RootIndex is the root.
type WPBDD struct {
	nodes []Node
}

// NewWPBDD returns a diagram from a node table. We check that the table has a
// root, that every reference is valid, that weights are finite and
// non-negative, and that the diagram is acyclic. The weight of the false
// terminal is reset to 0.
func NewWPBDD(nodes []Node) (*WPBDD, error) {
	if len(nodes) <= RootIndex {
		return nil, fmt.Errorf("diagram with %d nodes has no root: %w", len(nodes), ErrFormat)
	}
	c := &WPBDD{nodes: nodes}
	c.nodes[FalseIndex].Weight = 0
	for k := RootIndex; k < len(nodes); k++ {
		n := nodes[k]
		if n.Then < 0 || n.Then >= len(nodes) || n.Else < 0 || n.Else >= len(nodes) {
			return nil, fmt.Errorf("node %d has a child out of range: %w", k, ErrFormat)
		}
		if n.Then == k || n.Else == k {
			return nil, fmt.Errorf("node %d is its own child: %w", k, ErrFormat)
		}
		if n.Variable < 0 || n.Value < 0 {
			return nil, fmt.Errorf("node %d tests a negative literal: %w", k, ErrFormat)
		}
		if math.IsNaN(n.Weight) || math.IsInf(n.Weight, 0) || n.Weight < 0 {
			return nil, fmt.Errorf("node %d has invalid weight %v: %w", k, n.Weight, ErrFormat)
		}
	}
	if err := c.checkacyclic(); err != nil {
		return nil, err
	}
	return c, nil
}

// checkacyclic performs an iterative depth-first search from the root and
// reports a back edge if one exists.
func (c *WPBDD) checkacyclic() error {
	const (
		white = iota
		grey
		black
	)
	color := make([]uint8, len(c.nodes))
	color[FalseIndex] = black
	color[TrueIndex] = black
	stack := []int{RootIndex}
	for len(stack) > 0 {
		k := stack[len(stack)-1]
		switch color[k] {
		case white:
			color[k] = grey
			for _, child := range [2]int{c.nodes[k].Then, c.nodes[k].Else} {
				switch color[child] {
				case white:
					stack = append(stack, child)
				case grey:
					return fmt.Errorf("cycle through node %d: %w", child, ErrFormat)
				}
			}
		case grey:
			color[k] = black
			stack = stack[:len(stack)-1]
		default:
			stack = stack[:len(stack)-1]
		}
	}
	return nil
}

// Size returns the number of nodes in the diagram, terminals included.
func (c *WPBDD) Size() int {
	return len(c.nodes)
}

// Node returns the i'th node of the diagram.
func (c *WPBDD) Node(i int) Node {
	return c.nodes[i]
}

// Variables returns the sorted list of variables tested in the diagram.
func (c *WPBDD) Variables() []int {
	var res []int
	for k := RootIndex; k < len(c.nodes); k++ {
		res = setinsert(res, c.nodes[k].Variable)
	}
	return res
}

// Evaluate computes the probability of the diagram, where the true terminal
// counts for 1.
func (c *WPBDD) Evaluate(ev EvidenceList, ct ConditionTierList, tier int) float64 {
	sc := newScratch(len(c.nodes))
	// traverse only fails through its continuation and there is none here.
	p, _ := c.traverse(sc, ev.Clone(), ct, tier, nil, nil)
	return p
}
