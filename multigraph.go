// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

import (
	"fmt"
	"math"
)

// MultiNode is a node of an AND/OR multigraph. The value of an AND node is the
// product of the values of its children. The value of an OR node is the
// weighted sum of the values of its children, where the k'th edge stands for
// value k of Variable. The Variable field of an AND node is not used.
type MultiNode struct {
	Variable int
	And      bool
	first    int32 // index of the first edge in the edge arena
	count    int32
}

// Edge is an edge of a multigraph. The weight of the edges of an AND node is
// not used.
type Edge struct {
	To     int
	Weight float64
}

// Multigraph is an AND/OR multigraph stored in two arenas, one for nodes and
// one for edges. The node at index 0 is the unique terminal (with value 1) and
// the root comes next. A multigraph is tree-shaped when every node has at most
// one parent.
type Multigraph struct {
	nodes []MultiNode
	edges []Edge
	tree  bool
}

// NewMultigraph returns a multigraph that only contains the terminal. Use
// AddNode to add nodes; the first node added is the root.
func NewMultigraph(tree bool) *Multigraph {
	return &Multigraph{
		nodes: []MultiNode{{Variable: -1, And: true}},
		tree:  tree,
	}
}

// AddNode appends a node with the given edges and returns its index.
func (m *Multigraph) AddNode(variable int, and bool, edges []Edge) int {
	m.nodes = append(m.nodes, MultiNode{
		Variable: variable,
		And:      and,
		first:    int32(len(m.edges)),
		count:    int32(len(edges)),
	})
	m.edges = append(m.edges, edges...)
	return len(m.nodes) - 1
}

// Size returns the number of nodes, terminal included.
func (m *Multigraph) Size() int {
	return len(m.nodes)
}

// EdgeCount returns the number of edges.
func (m *Multigraph) EdgeCount() int {
	return len(m.edges)
}

// IsTree reports whether the multigraph is tree-shaped.
func (m *Multigraph) IsTree() bool {
	return m.tree
}

// Node returns the i'th node.
func (m *Multigraph) Node(i int) MultiNode {
	return m.nodes[i]
}

// Edges returns the outgoing edges of node i. The result must not be modified.
func (m *Multigraph) Edges(i int) []Edge {
	n := m.nodes[i]
	return m.edges[n.first : n.first+n.count]
}

// Variables returns the sorted list of variables of the OR nodes.
func (m *Multigraph) Variables() []int {
	var res []int
	for k := mgRootIndex; k < len(m.nodes); k++ {
		if !m.nodes[k].And {
			res = setinsert(res, m.nodes[k].Variable)
		}
	}
	return res
}

// Verify checks the multigraph against a network: edges must point to nodes
// in range, OR nodes must test a variable of the network and have exactly one
// edge per value, weights must be finite and non-negative, and the multigraph
// must be acyclic. For a tree-shaped multigraph we also check that no node has
// two parents.
func (m *Multigraph) Verify(net *Network) error {
	if len(m.nodes) <= mgRootIndex {
		return fmt.Errorf("multigraph has no root: %w", ErrFormat)
	}
	parents := make([]int, len(m.nodes))
	for k := mgRootIndex; k < len(m.nodes); k++ {
		n := m.nodes[k]
		if !n.And {
			if n.Variable < 0 || n.Variable >= net.Varnum() {
				return fmt.Errorf("node %d tests unknown variable %d: %w", k, n.Variable, ErrFormat)
			}
			if int(n.count) != net.Dimension(n.Variable) {
				return fmt.Errorf("node %d has %d edges for variable %s of dimension %d: %w",
					k, n.count, net.VariableName(n.Variable), net.Dimension(n.Variable), ErrFormat)
			}
		}
		for _, e := range m.Edges(k) {
			if e.To < 0 || e.To >= len(m.nodes) || e.To == k || e.To == mgRootIndex {
				return fmt.Errorf("node %d has an edge out of range (%d): %w", k, e.To, ErrFormat)
			}
			if !n.And && (math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) || e.Weight < 0) {
				return fmt.Errorf("node %d has invalid weight %v: %w", k, e.Weight, ErrFormat)
			}
			parents[e.To]++
		}
	}
	if m.tree {
		for k := mgRootIndex; k < len(m.nodes); k++ {
			if parents[k] > 1 {
				return fmt.Errorf("node %d of tree-shaped multigraph has %d parents: %w", k, parents[k], ErrFormat)
			}
		}
	}
	return m.checkacyclic()
}

func (m *Multigraph) checkacyclic() error {
	const (
		white = iota
		grey
		black
	)
	color := make([]uint8, len(m.nodes))
	color[0] = black
	stack := []int{mgRootIndex}
	for len(stack) > 0 {
		k := stack[len(stack)-1]
		switch color[k] {
		case white:
			color[k] = grey
			for _, e := range m.Edges(k) {
				switch color[e.To] {
				case white:
					stack = append(stack, e.To)
				case grey:
					return fmt.Errorf("cycle through node %d: %w", e.To, ErrFormat)
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

// Evaluate computes the probability of the multigraph. Conditioned OR nodes
// only follow the edge selected by the evidence.
func (m *Multigraph) Evaluate(ev EvidenceList, ct ConditionTierList, tier int) float64 {
	sc := newScratch(len(m.nodes))
	if m.tree {
		return m.traverseTree(sc, ev, ct, tier)
	}
	return m.traverse(sc, ev, ct, tier)
}
