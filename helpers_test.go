// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// binaryStates returns the states of a binary variable.
func binaryStates() []string {
	return []string{"0", "1"}
}

// abNetwork returns the network A -> B with P(A=1) = 0.3, P(B=1|A=1) = 0.8 and
// P(B=1|A=0) = 0.1, split in two partitions {A} and {B}, with their circuits.
func abNetwork(t *testing.T) (*Network, []Partition) {
	net, err := NewNetwork("ab", []string{"A", "B"}, [][]string{binaryStates(), binaryStates()}, [][]int{nil, {0}})
	require.NoError(t, err)
	parts := NewPartitions(net, []int{0}, []int{1})
	parts[0].Circuit = mustWPBDD(t, []Node{
		{}, {},
		{Variable: 0, Value: 1, Then: TrueIndex, Else: 3, Weight: 0.3},
		{Variable: 0, Value: 0, Then: TrueIndex, Else: FalseIndex, Weight: 0.7},
	})
	parts[1].Circuit = mustWPBDD(t, []Node{
		{}, {},
		{Variable: 0, Value: 1, Then: 3, Else: 4, Weight: 1},
		{Variable: 1, Value: 1, Then: TrueIndex, Else: 5, Weight: 0.8},
		{Variable: 0, Value: 0, Then: 6, Else: FalseIndex, Weight: 1},
		{Variable: 1, Value: 0, Then: TrueIndex, Else: FalseIndex, Weight: 0.2},
		{Variable: 1, Value: 1, Then: TrueIndex, Else: 7, Weight: 0.1},
		{Variable: 1, Value: 0, Then: TrueIndex, Else: FalseIndex, Weight: 0.9},
	})
	return net, parts
}

func mustWPBDD(t *testing.T, nodes []Node) *WPBDD {
	c, err := NewWPBDD(nodes)
	require.NoError(t, err)
	return c
}

// ************************************************************

// bayesnet is a network with random conditional probability tables, used to
// compare the results of the engine with a brute force enumeration.
type bayesnet struct {
	net *Network
	cpt [][]float64 // cpt[v][config*dim + value]
}

func newBayesnet(t *testing.T, seed int64, dims []int, parents [][]int) *bayesnet {
	names := make([]string, len(dims))
	states := make([][]string, len(dims))
	for v, d := range dims {
		names[v] = "X" + strconv.Itoa(v)
		for i := 0; i < d; i++ {
			states[v] = append(states[v], strconv.Itoa(i))
		}
	}
	net, err := NewNetwork("random", names, states, parents)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(seed))
	bn := &bayesnet{net: net, cpt: make([][]float64, len(dims))}
	for v, d := range dims {
		configs := 1
		for _, p := range parents[v] {
			configs *= dims[p]
		}
		bn.cpt[v] = make([]float64, configs*d)
		for c := 0; c < configs; c++ {
			sum := 0.0
			for i := 0; i < d; i++ {
				bn.cpt[v][c*d+i] = 0.05 + rng.Float64()
				sum += bn.cpt[v][c*d+i]
			}
			for i := 0; i < d; i++ {
				bn.cpt[v][c*d+i] /= sum
			}
		}
	}
	return bn
}

// prob returns P(v = ev[v] | parents of v), the parents being assigned in ev.
func (bn *bayesnet) prob(v int, ev EvidenceList) float64 {
	c := 0
	for _, p := range bn.net.Parents(v) {
		c = c*bn.net.Dimension(p) + ev[p]
	}
	return bn.cpt[v][c*bn.net.Dimension(v)+ev[v]]
}

// enumerate returns the probability of the partial assignment ev by summing
// over all the completions of ev.
func (bn *bayesnet) enumerate(ev EvidenceList) float64 {
	cur := ev.Clone()
	var sum func(v int) float64
	sum = func(v int) float64 {
		if v == len(cur) {
			p := 1.0
			for u := range cur {
				p *= bn.prob(u, cur)
			}
			return p
		}
		if ev[v] != Unassigned {
			return sum(v + 1)
		}
		res := 0.0
		for i := 0; i < bn.net.Dimension(v); i++ {
			cur[v] = i
			res += sum(v + 1)
		}
		cur[v] = Unassigned
		return res
	}
	return sum(0)
}

// posterior returns the expected answer to a query by enumeration.
func (bn *bayesnet) posterior(ev *Evidence) float64 {
	joint := bn.enumerate(ev.List())
	if !ev.HasQuery() {
		return joint
	}
	marginal := ev.List()
	marginal[ev.Query()] = Unassigned
	m := bn.enumerate(marginal)
	if m == 0 {
		return Undefined
	}
	return joint / m
}

// compile builds the circuit of a partition. Variables are tested in index
// order (the network is topologically sorted) and every variable is tested on
// every path. Two sub-diagrams are merged when the values of the variables
// they depend on are equal.
func (bn *bayesnet) compile(t *testing.T, p Partition) *WPBDD {
	net := bn.net
	ordering := p.Variables()
	nodes := []Node{{}, {}}
	memo := make(map[string]int)
	ev := make(EvidenceList, net.Varnum())
	for v := range ev {
		ev[v] = Unassigned
	}
	needed := func(d int) string {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%d:", d)
		for _, u := range ordering[:d] {
			for _, w := range ordering[d:] {
				if setcontains(p.Set, w) && setcontains(net.Parents(w), u) {
					fmt.Fprintf(&sb, "%d=%d,", u, ev[u])
					break
				}
			}
		}
		return sb.String()
	}
	var build func(d int) int
	build = func(d int) int {
		if d == len(ordering) {
			return TrueIndex
		}
		key := needed(d)
		if k, ok := memo[key]; ok {
			return k
		}
		v := ordering[d]
		dim := net.Dimension(v)
		first := len(nodes)
		for i := 0; i < dim; i++ {
			n := Node{Variable: v, Value: i, Else: FalseIndex}
			if i+1 < dim {
				n.Else = first + i + 1
			}
			nodes = append(nodes, n)
		}
		memo[key] = first
		for i := 0; i < dim; i++ {
			ev[v] = i
			w := 1.0
			if setcontains(p.Set, v) {
				w = bn.prob(v, ev)
			}
			then := build(d + 1)
			nodes[first+i].Then = then
			nodes[first+i].Weight = w
		}
		ev[v] = Unassigned
		return first
	}
	build(0)
	return mustWPBDD(t, nodes)
}

// partitions returns the partitions of the network with their circuits.
func (bn *bayesnet) partitions(t *testing.T, sets ...[]int) []Partition {
	parts := NewPartitions(bn.net, sets...)
	for k := range parts {
		parts[k].Circuit = bn.compile(t, parts[k])
	}
	return parts
}

// diamond returns a network with 8 variables where some variables have several
// parents and one variable has 3 values.
func diamond(t *testing.T) *bayesnet {
	return newBayesnet(t, 42,
		[]int{2, 3, 2, 2, 2, 2, 2, 2},
		[][]int{
			nil,    // X0
			{0},    // X1
			{1},    // X2
			{0, 2}, // X3
			{3},    // X4
			{1, 3}, // X5
			{5},    // X6
			{4, 6}, // X7
		})
}

// forest returns a network with two independent components, X0 -> X1 and
// X2 -> X3.
func forest(t *testing.T) *bayesnet {
	return newBayesnet(t, 7, []int{2, 2, 3, 2}, [][]int{nil, {0}, nil, {2}})
}

// query builds evidence from a string such as "X0=1,X2=0|X7=1".
func query(t *testing.T, net *Network, s string) *Evidence {
	ev := NewEvidence(net)
	require.NoError(t, parseQuery(ev, s))
	return ev
}

// parseQuery is like query but can be called outside of the test goroutine.
func parseQuery(ev *Evidence, s string) error {
	evidence, q, _ := strings.Cut(s, "|")
	for _, a := range strings.Split(evidence, ",") {
		if a == "" {
			continue
		}
		name, state, _ := strings.Cut(a, "=")
		if err := ev.SetByName(name, state); err != nil {
			return err
		}
	}
	if q == "" {
		return nil
	}
	name, state, _ := strings.Cut(q, "=")
	return ev.SetQueryByName(name, state)
}
