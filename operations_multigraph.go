// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

// traverse evaluates a multigraph bottom-up using a two-phase stack. A node is
// expanded the first time it is found on top of the stack and its value is
// computed when it is found a second time, once all its children are done.
// Every node is evaluated at most once.
func (m *Multigraph) traverse(sc *scratch, ev EvidenceList, ct ConditionTierList, tier int) float64 {
	probs, done := sc.probs, sc.done
	for k := range done {
		done[k] = false
	}
	probs[0], done[0] = 1, true
	stack := append(sc.mgstack[:0], mgframe{node: mgRootIndex})
	for len(stack) > 0 {
		top := len(stack) - 1
		n := int(stack[top].node)
		if done[n] {
			stack = stack[:top]
			continue
		}
		if !stack[top].expanded {
			stack[top].expanded = true
			sc.visits++
			for _, e := range m.selected(n, ev, ct, tier) {
				if !done[e.To] {
					stack = append(stack, mgframe{node: int32(e.To)})
				}
			}
			continue
		}
		stack = stack[:top]
		probs[n] = m.value(n, probs, ev, ct, tier)
		done[n] = true
	}
	sc.mgstack = stack[:0]
	return probs[mgRootIndex]
}

// traverseTree evaluates a tree-shaped multigraph. Since every node has a
// single parent, we do not need to track visited nodes: the expanded flag of
// the frame is enough.
func (m *Multigraph) traverseTree(sc *scratch, ev EvidenceList, ct ConditionTierList, tier int) float64 {
	probs := sc.probs
	probs[0] = 1
	stack := append(sc.mgstack[:0], mgframe{node: mgRootIndex})
	for len(stack) > 0 {
		top := len(stack) - 1
		n := int(stack[top].node)
		if !stack[top].expanded {
			stack[top].expanded = true
			sc.visits++
			for _, e := range m.selected(n, ev, ct, tier) {
				if e.To != 0 {
					stack = append(stack, mgframe{node: int32(e.To)})
				}
			}
			continue
		}
		stack = stack[:top]
		probs[n] = m.value(n, probs, ev, ct, tier)
	}
	sc.mgstack = stack[:0]
	return probs[mgRootIndex]
}

// selected returns the edges of node n that contribute to its value: all the
// edges, except for an OR node on a conditioned variable where we only keep
// the edge of the committed value.
func (m *Multigraph) selected(n int, ev EvidenceList, ct ConditionTierList, tier int) []Edge {
	edges := m.Edges(n)
	node := m.nodes[n]
	if !node.And && ct.Conditioned(node.Variable, tier) {
		i := ev[node.Variable]
		return edges[i : i+1]
	}
	return edges
}

// value computes the value of node n from the values of its children.
func (m *Multigraph) value(n int, probs []float64, ev EvidenceList, ct ConditionTierList, tier int) float64 {
	edges := m.selected(n, ev, ct, tier)
	if m.nodes[n].And {
		res := 1.0
		for _, e := range edges {
			res *= probs[e.To]
		}
		return res
	}
	res := 0.0
	for _, e := range edges {
		res += e.Weight * probs[e.To]
	}
	return res
}
