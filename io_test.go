// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPartitions(t *testing.T) {
	net, _ := abNetwork(t)
	parts, err := ReadPartitions(strings.NewReader("partition 2\n\nA\n1\n"), "ab.part", net)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, []int{0}, parts[0].Set)
	assert.Empty(t, parts[0].Cutset)
	assert.Equal(t, []int{1}, parts[1].Set)
	assert.Equal(t, []int{0}, parts[1].Cutset)

	var buf bytes.Buffer
	require.NoError(t, WritePartitions(&buf, net, parts))
	assert.Equal(t, "partition 2\nA\nB\n", buf.String())
}

func TestReadPartitionsErrors(t *testing.T) {
	net, _ := abNetwork(t)
	tests := []struct {
		name    string
		input   string
		target  error
		message string
	}{
		{"empty", "", ErrFormat, "ab.part: missing header"},
		{"header", "partitions 2\nA\nB\n", ErrFormat, "ab.part:1: error while parsing header"},
		{"too many", "partition 3\nA\nB\n", ErrFormat, "between 1 and the number of variables (2)"},
		{"truncated", "partition 2\nA\n", ErrFormat, "expected 2 partitions, found 1"},
		{"unknown", "partition 2\nA\nC\n", ErrFormat, "ab.part:3: variable \"C\" unknown"},
		{"empty name", "partition 2\nA\nB,\n", ErrFormat, "partition variable name expected"},
		{"duplicate", "partition 2\nA,B\nB\n", ErrDuplicateVariable, "variable 'B' occurs in partition 2 for the second time"},
		{"missing", "partition 1\nA\n", ErrMissingVariable, "missing variable(s): {B}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadPartitions(strings.NewReader(tt.input), "ab.part", net)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.ErrorIs(t, err, ErrFormat)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestVerifyOrdering(t *testing.T) {
	net, parts := abNetwork(t)
	require.NoError(t, VerifyOrdering(net, parts))
	parts[1].Ordering = []int{1, 0}
	assert.NoError(t, VerifyOrdering(net, parts))
	parts[1].Ordering = []int{1}
	err := VerifyOrdering(net, parts)
	assert.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), "partition 2 does not consist of partition and cutset {A,B}")
	parts[1].Ordering = []int{1, 1}
	assert.Error(t, VerifyOrdering(net, parts))
}

func TestMonolithicPartition(t *testing.T) {
	bn := diamond(t)
	parts := MonolithicPartition(bn.net)
	require.Len(t, parts, 1)
	assert.Len(t, parts[0].Set, 8)
	assert.Empty(t, parts[0].Cutset)
	assert.NoError(t, VerifyPartitions(bn.net, parts))
}

// ************************************************************

const abCircuit = `wpbdd 4
0 0 0 0
0 0 0 0
1 1 3 2 0.5 0.6
0 1 0 1 0.7
`

func TestReadWPBDD(t *testing.T) {
	net, _ := abNetwork(t)
	c, err := ReadWPBDD(strings.NewReader(abCircuit), "a.wpbdd", net)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Size())
	assert.Equal(t, Node{Variable: 0, Value: 1, Then: TrueIndex, Else: 3, Weight: 0.5 * 0.6}, c.Node(2))
	assert.InDelta(t, 1.0, c.Evaluate(emptyEvidence(2), freeTiers(2), 0), 1e-12)

	ev, ct := emptyEvidence(2), freeTiers(2)
	ev[0], ct[0] = 0, 0
	assert.InDelta(t, 0.7, c.Evaluate(ev, ct, 0), 1e-12)
}

func TestWPBDDRoundTrip(t *testing.T) {
	net, parts := abNetwork(t)
	for _, p := range parts {
		var buf bytes.Buffer
		require.NoError(t, WriteWPBDD(&buf, net, p.Circuit))
		c, err := ReadWPBDD(&buf, "roundtrip", net)
		require.NoError(t, err)
		assert.Equal(t, p.Circuit.nodes, c.nodes)
	}
}

func TestReadWPBDDErrors(t *testing.T) {
	net, _ := abNetwork(t)
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"header", "bdd 4\n", "x.wpbdd:1: expected header"},
		{"size", "wpbdd 2\n", "invalid number of nodes"},
		{"truncated", "wpbdd 4\n0 0 0 0\n0 0 0 0\n", "expected 4 nodes, found 2"},
		{"short record", "wpbdd 3\n0 0 0 0\n0 0 0\n", "x.wpbdd:3: node record must have at least 4 fields"},
		{"integer", "wpbdd 3\n0 0 0 0\n0 0 x 0\n", "x.wpbdd:3: integer expected"},
		{"weights", "wpbdd 3\n0 0 0 0\n0 0 0 0\n1 1 0 2 0.5\n", "announces 2 weights but has 1"},
		{"float", "wpbdd 3\n0 0 0 0\n0 0 0 0\n1 1 0 1 abc\n", "weight expected"},
		{"literal", "wpbdd 3\n0 0 0 0\n0 0 0 0\n9 1 0 0\n", "literal 9 out of range"},
		{"cycle", "wpbdd 4\n0 0 0 0\n0 0 0 0\n1 3 0 0\n0 2 0 0\n", "cycle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadWPBDD(strings.NewReader(tt.input), "x.wpbdd", net)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFormat)
			assert.Contains(t, err.Error(), tt.message)
			var ferr *FormatError
			assert.ErrorAs(t, err, &ferr)
			assert.Equal(t, "x.wpbdd", ferr.File)
		})
	}
}

// ************************************************************

func TestMultigraphRoundTrip(t *testing.T) {
	for _, tree := range []bool{false, true} {
		m := abMultigraph(tree)
		var buf bytes.Buffer
		require.NoError(t, WriteMultigraph(&buf, m))
		got, err := ReadMultigraph(bytes.NewReader(buf.Bytes()), "ab.mg", tree)
		require.NoError(t, err)
		assert.Equal(t, m, got)

		_, err = ReadMultigraph(bytes.NewReader(buf.Bytes()), "ab.mg", !tree)
		assert.ErrorIs(t, err, ErrFormat)

		_, err = ReadMultigraph(bytes.NewReader(buf.Bytes()[:buf.Len()-3]), "ab.mg", tree)
		assert.ErrorIs(t, err, ErrFormat)
	}
}

func TestReadMultigraphErrors(t *testing.T) {
	_, err := ReadMultigraph(bytes.NewReader(nil), "empty.mg", false)
	assert.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), "empty.mg: cannot read multigraph header")

	m := NewMultigraph(false)
	var buf bytes.Buffer
	require.NoError(t, WriteMultigraph(&buf, m))
	_, err = ReadMultigraph(&buf, "root.mg", false)
	assert.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), "no root")

	// an edge pointing after the last node
	m = NewMultigraph(false)
	m.AddNode(0, false, []Edge{{To: 0, Weight: 0.5}, {To: 7, Weight: 0.5}})
	buf.Reset()
	require.NoError(t, WriteMultigraph(&buf, m))
	_, err = ReadMultigraph(&buf, "edge.mg", false)
	assert.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), "points to 7")
}
