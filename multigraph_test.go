// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// abMultigraph returns a multigraph for the network of abNetwork. The root is
// an AND node with a single child.
func abMultigraph(tree bool) *Multigraph {
	m := NewMultigraph(tree)
	m.AddNode(0, true, []Edge{{To: 2, Weight: 1}})
	m.AddNode(0, false, []Edge{{To: 3, Weight: 0.7}, {To: 4, Weight: 0.3}})
	m.AddNode(1, false, []Edge{{To: 0, Weight: 0.9}, {To: 0, Weight: 0.1}})
	m.AddNode(1, false, []Edge{{To: 0, Weight: 0.2}, {To: 0, Weight: 0.8}})
	return m
}

// sharedMultigraph returns a multigraph for two independent variables, where
// both edges of the OR node of A lead to the same node.
func sharedMultigraph() *Multigraph {
	m := NewMultigraph(false)
	m.AddNode(0, false, []Edge{{To: 2, Weight: 0.3}, {To: 2, Weight: 0.7}})
	m.AddNode(1, false, []Edge{{To: 0, Weight: 0.4}, {To: 0, Weight: 0.6}})
	return m
}

func TestMultigraphEvaluate(t *testing.T) {
	net, _ := abNetwork(t)
	tests := []struct {
		evidence map[int]int
		expected float64
	}{
		{nil, 1.0},
		{map[int]int{1: 1}, 0.31},
		{map[int]int{0: 1}, 0.3},
		{map[int]int{0: 1, 1: 1}, 0.24},
		{map[int]int{0: 0, 1: 0}, 0.63},
	}
	dag, tree := abMultigraph(false), abMultigraph(true)
	require.NoError(t, dag.Verify(net))
	require.NoError(t, tree.Verify(net))
	for _, tt := range tests {
		ev, ct := emptyEvidence(2), freeTiers(2)
		for v, i := range tt.evidence {
			ev[v], ct[v] = i, 0
		}
		assert.InDelta(t, tt.expected, dag.Evaluate(ev, ct, 0), 1e-12)
		assert.InDelta(t, tt.expected, tree.Evaluate(ev, ct, 0), 1e-12)
	}
	assert.Equal(t, []int{0, 1}, dag.Variables())
	assert.Equal(t, 5, dag.Size())
	assert.Equal(t, 7, dag.EdgeCount())
}

func TestMultigraphSharing(t *testing.T) {
	net, err := NewNetwork("indep", []string{"A", "B"}, [][]string{binaryStates(), binaryStates()}, nil)
	require.NoError(t, err)
	m := sharedMultigraph()
	require.NoError(t, m.Verify(net))

	sc := newScratch(m.Size())
	assert.InDelta(t, 1.0, m.traverse(sc, emptyEvidence(2), freeTiers(2), 0), 1e-12)
	assert.Equal(t, 2, sc.visits, "a shared node is evaluated once")

	ev, ct := emptyEvidence(2), freeTiers(2)
	ev[1], ct[1] = 1, 0
	assert.InDelta(t, 0.6, m.Evaluate(ev, ct, 0), 1e-12)

	probs := m.Probabilities(ev, ct, 0)
	assert.InDelta(t, 0.6, probs[2], 1e-12)

	// the same structure cannot be declared as a tree
	m.tree = true
	assert.ErrorIs(t, m.Verify(net), ErrFormat)
}

func TestMultigraphVerify(t *testing.T) {
	net, _ := abNetwork(t)
	tests := []struct {
		name  string
		build func(m *Multigraph)
	}{
		{"no root", func(m *Multigraph) {}},
		{"unknown variable", func(m *Multigraph) {
			m.AddNode(5, false, []Edge{{To: 0, Weight: 1}})
		}},
		{"dimension", func(m *Multigraph) {
			m.AddNode(0, false, []Edge{{To: 0, Weight: 1}})
		}},
		{"out of range", func(m *Multigraph) {
			m.AddNode(0, false, []Edge{{To: 0, Weight: 1}, {To: 4, Weight: 1}})
		}},
		{"edge to root", func(m *Multigraph) {
			m.AddNode(0, true, []Edge{{To: 2, Weight: 1}})
			m.AddNode(0, true, []Edge{{To: 1, Weight: 1}})
		}},
		{"negative weight", func(m *Multigraph) {
			m.AddNode(0, false, []Edge{{To: 0, Weight: 1}, {To: 0, Weight: -1}})
		}},
		{"cycle", func(m *Multigraph) {
			m.AddNode(0, true, []Edge{{To: 2, Weight: 1}})
			m.AddNode(0, true, []Edge{{To: 3, Weight: 1}})
			m.AddNode(0, true, []Edge{{To: 2, Weight: 1}})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMultigraph(false)
			tt.build(m)
			assert.ErrorIs(t, m.Verify(net), ErrFormat)
		})
	}
}

func TestMultigraphEngine(t *testing.T) {
	net, _ := abNetwork(t)
	for _, tree := range []bool{false, true} {
		e, err := NewMultigraphEngine(net, abMultigraph(tree))
		require.NoError(t, err)
		assert.Nil(t, e.Architecture())
		p, err := e.Posterior(context.Background(), query(t, net, "B=1"))
		require.NoError(t, err)
		assert.InDelta(t, 0.31, p, 1e-12)
		p, err = e.Posterior(context.Background(), query(t, net, "A=1|B=1"))
		require.NoError(t, err)
		assert.InDelta(t, 0.8, p, 1e-12)
		p, err = e.Posterior(context.Background(), query(t, net, "B=1|A=1"))
		require.NoError(t, err)
		assert.InDelta(t, 0.24/0.31, p, 1e-12)
	}

	m := NewMultigraph(false)
	m.AddNode(0, false, []Edge{{To: 0, Weight: 1}})
	_, err := NewMultigraphEngine(net, m)
	assert.ErrorIs(t, err, ErrFormat)
}
