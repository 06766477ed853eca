// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

// traverse computes the probability of the diagram with an explicit stack.
//
// Variables conditioned in tier are not branched upon: we follow the cofactor
// selected by the evidence list ev. For other variables we follow both
// cofactors and record the decision in ev, so that the continuation next sees
// the values decided on the current path when it is called on the true
// terminal. When next is nil, the true terminal counts for 1.
//
// Results are shared between paths using stamps: a node reached twice with the
// same stamp is evaluated once. A decision on a variable in persistent issues a
// fresh stamp for each cofactor, since the continuation depends on its value.
// With a nil persistent list, each node is expanded at most once.
func (c *WPBDD) traverse(sc *scratch, ev EvidenceList, ct ConditionTierList, tier int, persistent []bool, next func(EvidenceList) (float64, error)) (float64, error) {
	probs, stamps := sc.probs, sc.stamps
	stack := append(sc.stack[:0], frame{parent: -1, node: RootIndex, stamp: sc.fresh()})
	result := 0.0
	for len(stack) > 0 {
		top := len(stack) - 1
		f := stack[top]
		n := int(f.node)
		var p float64
		switch {
		case n == TrueIndex:
			p = 1
			if next != nil {
				var err error
				if p, err = next(ev); err != nil {
					sc.stack = stack[:0]
					return 0, err
				}
			}
		case n == FalseIndex:
			p = 0
		case f.expanded || stamps[n] == f.stamp:
			p = probs[n]
		default:
			// first visit of n in the context of the stamp
			stamps[n] = f.stamp
			probs[n] = 0
			stack[top].expanded = true
			sc.visits++
			node := &c.nodes[n]
			v := node.Variable
			if ct.Conditioned(v, tier) {
				if ev[v] == node.Value {
					stack = append(stack, frame{parent: int32(n), node: int32(node.Then), stamp: f.stamp, then: true})
				} else {
					stack = append(stack, frame{parent: int32(n), node: int32(node.Else), stamp: f.stamp})
				}
				continue
			}
			ev[v] = node.Value
			thenstamp, elsestamp := f.stamp, f.stamp
			if persistent != nil && persistent[v] {
				thenstamp, elsestamp = sc.fresh(), sc.fresh()
			}
			stack = append(stack,
				frame{parent: int32(n), node: int32(node.Else), stamp: elsestamp},
				frame{parent: int32(n), node: int32(node.Then), stamp: thenstamp, then: true})
			continue
		}
		stack = stack[:top]
		switch {
		case f.parent < 0:
			result = p
		case f.then:
			probs[f.parent] += c.nodes[f.parent].Weight * p
		default:
			probs[f.parent] += p
		}
	}
	sc.stack = stack[:0]
	return result, nil
}

// ************************************************************

// contextkey returns the context id of vars in ev, checking that every
// variable has been decided.
func contextkey(net *Network, vars []int, ev EvidenceList, tier int) (int, error) {
	for _, v := range vars {
		if ev[v] < 0 || ev[v] >= net.Dimension(v) {
			return 0, archerror("variable %s undecided when entering tier %d", net.VariableName(v), tier)
		}
	}
	return contextid(net, vars, ev), nil
}

// traverseArchitecture returns the value of a tier in the context given by ev,
// computing it (and the value of the following tiers) if it is not cached.
// The evaluation of each tier uses its own scratch buffer.
func (a *Architecture) traverseArchitecture(j *job, tier int, ev EvidenceList) (float64, error) {
	id, err := contextkey(a.net, a.spanning.Set(tier), ev, tier)
	if err != nil {
		return 0, err
	}
	if p := j.cache.Entry(tier, id); p >= 0 {
		j.cache.stat.hits++
		return p, nil
	}
	j.cache.stat.misses++
	var next func(EvidenceList) (float64, error)
	var persistent []bool
	if tier+1 < a.Size() {
		persistent = a.persistent
		next = func(ev EvidenceList) (float64, error) {
			return a.traverseArchitecture(j, tier+1, ev)
		}
	}
	p, err := a.Partition(tier).Circuit.traverse(j.cache.buffer(tier), ev, j.ct, tier, persistent, next)
	if err != nil {
		return 0, err
	}
	j.cache.store(tier, id, p)
	return p, nil
}

// traverseComposition returns the product of the values of the children of
// node n in the context given by ev. The value of a child is the value of its
// partition circuit, where the true terminal stands for the product of the
// values of its own children.
func (a *Architecture) traverseComposition(j *job, n *CompositionNode, ev EvidenceList) (float64, error) {
	res := 1.0
	for _, child := range n.Children {
		id, err := contextkey(a.net, child.Context, ev, child.ID)
		if err != nil {
			return 0, err
		}
		p := j.cache.Entry(child.ID, id)
		if p < 0 {
			j.cache.stat.misses++
			circuit := a.parts[child.Partition].Circuit
			sc := j.cache.buffer(child.ID)
			if child.IsLeaf() {
				p, err = circuit.traverse(sc, ev, j.ct, child.ID, nil, nil)
			} else {
				child := child
				p, err = circuit.traverse(sc, ev, j.ct, child.ID, a.shared, func(ev EvidenceList) (float64, error) {
					return a.traverseComposition(j, child, ev)
				})
			}
			if err != nil {
				return 0, err
			}
			j.cache.store(child.ID, id, p)
		} else {
			j.cache.stat.hits++
		}
		res *= p
		if res == 0 {
			break
		}
	}
	return res, nil
}
