// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

import (
	"fmt"
	"sort"
)

// CompositionNode is a node of a composition tree. Every node except the root
// stands for a partition. The value of a node is computed from its partition
// circuit, where the true terminal stands for the product of the values of its
// children. Context is the sorted set of variables decided by ancestors that
// the subtree rooted at the node depends on; it is the key of the results
// cached for the node.
type CompositionNode struct {
	Parent    *CompositionNode
	ID        int // pre-order index, the root has id 0
	Partition int // partition id, -1 for the root
	Context   []int
	Children  []*CompositionNode
}

// IsRoot reports whether n is the (virtual) root of a composition tree.
func (n *CompositionNode) IsRoot() bool {
	return n.Parent == nil
}

// IsLeaf reports whether n has no children.
func (n *CompositionNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// Composition organizes partitions in a tree, such that partitions sharing a
// variable are always on the same branch.
type Composition struct {
	net         *Network
	occurrences []int   // number of partitions mentioning each variable
	shared      [][]int // sorted shared variables of each partition
	ordering    []int
	root        *CompositionNode
	nodes       []*CompositionNode // nodes in pre-order
	partnodes   []*CompositionNode // node of each partition
}

// NewComposition computes the shared variables of each partition: the
// variables of its set and cutset that are mentioned by another partition.
func NewComposition(net *Network, parts []Partition) *Composition {
	c := &Composition{
		net:         net,
		occurrences: make([]int, net.Varnum()),
		shared:      make([][]int, len(parts)),
	}
	for _, p := range parts {
		for _, v := range p.Variables() {
			c.occurrences[v]++
		}
	}
	for k, p := range parts {
		for _, v := range p.Variables() {
			if c.occurrences[v] > 1 {
				c.shared[k] = append(c.shared[k], v)
			}
		}
	}
	return c
}

// Size returns the number of partitions.
func (c *Composition) Size() int {
	return len(c.shared)
}

// Shared returns the sorted list of shared variables of partition k.
func (c *Composition) Shared(k int) []int {
	return c.shared[k]
}

// Ordering returns the ordering used to build the tree, or nil.
func (c *Composition) Ordering() []int {
	return c.ordering
}

// Root returns the root of the tree, or nil if Build was never called.
func (c *Composition) Root() *CompositionNode {
	return c.root
}

// Nodes returns the nodes of the tree indexed by their id.
func (c *Composition) Nodes() []*CompositionNode {
	return c.nodes
}

// PartitionNode returns the node of partition k.
func (c *Composition) PartitionNode(k int) *CompositionNode {
	return c.partnodes[k]
}

// ************************************************************

// create builds a tree from an ordering of the partitions. Partitions are
// inserted from last to first; a new node becomes the parent of every current
// root whose context overlaps its shared variables (or of the single current
// root when chain is true). The remaining roots are attached to a virtual
// root.
func (c *Composition) create(ordering []int, chain bool) *CompositionNode {
	occurrences := make([]int, len(c.occurrences))
	copy(occurrences, c.occurrences)
	var roots []*CompositionNode
	for k := len(ordering) - 1; k >= 0; k-- {
		pid := ordering[k]
		node := &CompositionNode{Partition: pid}
		var context []int
		var rest []*CompositionNode
		for _, r := range roots {
			if (chain && len(node.Children) == 0) || (!chain && setoverlap(c.shared[pid], r.Context)) {
				r.Parent = node
				node.Children = append(node.Children, r)
				context = setunion(context, r.Context)
			} else {
				rest = append(rest, r)
			}
		}
		for _, v := range c.shared[pid] {
			occurrences[v]--
			if occurrences[v] != 0 {
				context = setinsert(context, v)
			} else {
				context = seterase(context, v)
			}
		}
		node.Context = context
		roots = append([]*CompositionNode{node}, rest...)
	}
	root := &CompositionNode{Partition: -1}
	for _, r := range roots {
		r.Parent = root
		root.Children = append(root.Children, r)
	}
	return root
}

// Score returns the cost of the tree built from ordering: the sum over all
// nodes of the number of distinct contexts of the node.
func (c *Composition) Score(ordering []int, chain bool) float64 {
	score := 0.0
	var visit func(n *CompositionNode)
	visit = func(n *CompositionNode) {
		if !n.IsRoot() {
			score += float64(contextwidth(c.net, n.Context))
		}
		for _, child := range n.Children {
			visit(child)
		}
	}
	visit(c.create(ordering, chain))
	return score
}

// FindOrdering returns an ordering with the best score. We enumerate all the
// permutations when there are few partitions; otherwise we return the identity
// ordering.
func (c *Composition) FindOrdering() []int {
	ordering := make([]int, c.Size())
	for k := range ordering {
		ordering[k] = k
	}
	best := append([]int(nil), ordering...)
	if c.Size() > _MAXEXHAUSTIVE {
		return best
	}
	bestscore := c.Score(ordering, false)
	for nextPermutation(ordering) {
		if s := c.Score(ordering, false); s < bestscore {
			bestscore = s
			copy(best, ordering)
		}
	}
	return best
}

// nextPermutation rearranges p into the next permutation in lexicographic
// order. It returns false, after resetting p to the first permutation, when p
// is the last one.
func nextPermutation(p []int) bool {
	k := len(p) - 2
	for k >= 0 && p[k] >= p[k+1] {
		k--
	}
	if k < 0 {
		sort.Ints(p)
		return false
	}
	l := len(p) - 1
	for p[l] <= p[k] {
		l--
	}
	p[k], p[l] = p[l], p[k]
	for i, j := k+1, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
	return true
}

// Build creates the composition tree for an ordering, assigns pre-order ids
// to the nodes and indexes them.
func (c *Composition) Build(ordering []int, chain bool) error {
	if len(ordering) != c.Size() {
		return fmt.Errorf("composition ordering has %d elements but there are %d partitions: %w", len(ordering), c.Size(), ErrFormat)
	}
	seen := make([]bool, c.Size())
	for _, k := range ordering {
		if k < 0 || k >= c.Size() || seen[k] {
			return fmt.Errorf("composition ordering is not a permutation of the partitions: %w", ErrFormat)
		}
		seen[k] = true
	}
	c.ordering = append([]int(nil), ordering...)
	c.root = c.create(ordering, chain)
	c.nodes = c.nodes[:0]
	c.partnodes = make([]*CompositionNode, c.Size())
	var visit func(n *CompositionNode)
	visit = func(n *CompositionNode) {
		n.ID = len(c.nodes)
		c.nodes = append(c.nodes, n)
		if !n.IsRoot() {
			c.partnodes[n.Partition] = n
		}
		for _, child := range n.Children {
			visit(child)
		}
	}
	visit(c.root)
	return nil
}

// Widths returns the number of distinct contexts of each node, indexed by id.
func (c *Composition) Widths() []int {
	res := make([]int, len(c.nodes))
	for k, n := range c.nodes {
		res[k] = contextwidth(c.net, n.Context)
	}
	return res
}

// fillConditionTiers sets the condition tier of every shared variable to one
// more than the smallest id of a node that mentions it, so that the variable is
// decided in this node and conditioned in all its descendants.
func (c *Composition) fillConditionTiers(ct ConditionTierList) {
	for v := range ct {
		ct[v] = TierInit
	}
	for k, n := range c.partnodes {
		for _, v := range c.shared[k] {
			if int(ct[v]) > n.ID+1 {
				ct[v] = uint8(n.ID + 1)
			}
		}
	}
}
