// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ReadWPBDD parses a diagram in text format. The file starts with a header
// "wpbdd N" followed by N records, one per node, of the form
//
//	literal then else k w1 ... wk
//
// where literal is the literal tested by the node (see Network.Literal), then
// and else are node indices, and the weight of the node is the product of the
// k numbers w1..wk (1 when k is 0). The first two records are the terminals;
// their literal is ignored.
func ReadWPBDD(r io.Reader, filename string, net *Network) (*WPBDD, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	next := func() ([]string, bool) {
		for scanner.Scan() {
			line++
			if fields := strings.Fields(scanner.Text()); len(fields) > 0 {
				return fields, true
			}
		}
		return nil, false
	}
	header, ok := next()
	if !ok || len(header) != 2 || header[0] != "wpbdd" {
		return nil, formatf(filename, line, "expected header 'wpbdd <size>'")
	}
	size, err := strconv.Atoi(header[1])
	if err != nil || size <= RootIndex {
		return nil, formatf(filename, line, "invalid number of nodes %q", header[1])
	}
	nodes := make([]Node, size)
	for k := 0; k < size; k++ {
		fields, ok := next()
		if !ok {
			return nil, formatf(filename, line, "expected %d nodes, found %d", size, k)
		}
		if len(fields) < 4 {
			return nil, formatf(filename, line, "node record must have at least 4 fields")
		}
		ints := make([]int, 4)
		for i := range ints {
			if ints[i], err = strconv.Atoi(fields[i]); err != nil {
				return nil, formatf(filename, line, "integer expected, found %q", fields[i])
			}
		}
		if ints[3] < 0 || len(fields) != 4+ints[3] {
			return nil, formatf(filename, line, "node record announces %d weights but has %d", ints[3], len(fields)-4)
		}
		w := 1.0
		for _, s := range fields[4:] {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, formatf(filename, line, "weight expected, found %q", s)
			}
			w *= f
		}
		nodes[k] = Node{Then: ints[1], Else: ints[2], Weight: w}
		if k >= RootIndex {
			v, i, err := net.LiteralAssignment(ints[0])
			if err != nil {
				return nil, formatf(filename, line, "%s", err)
			}
			nodes[k].Variable, nodes[k].Value = v, i
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, formatf(filename, line, "%s", err)
	}
	c, err := NewWPBDD(nodes)
	if err != nil {
		return nil, &FormatError{File: filename, Err: err}
	}
	return c, nil
}

// WriteWPBDD outputs a diagram in the format accepted by ReadWPBDD.
func WriteWPBDD(w io.Writer, net *Network, c *WPBDD) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "wpbdd %d\n", len(c.nodes))
	for k, n := range c.nodes {
		literal := 0
		if k >= RootIndex {
			literal = net.Literal(n.Variable, n.Value)
		}
		fmt.Fprintf(bw, "%d %d %d 1 %s\n", literal, n.Then, n.Else, strconv.FormatFloat(n.Weight, 'g', -1, 64))
	}
	return bw.Flush()
}

// ************************************************************

const (
	_MGANDFLAG  uint16 = 1 << 15
	_MGMAXVAR   int    = int(_MGANDFLAG) - 1
	_MGMAXEDGES int    = math.MaxUint16
)

// mgheader is the preamble of a multigraph file. The node count does not
// include the terminal.
type mgheader struct {
	Tree  bool
	Nodes uint32
	Edges uint32
}

// mgrecord is the fixed part of a node record.
type mgrecord struct {
	Variable uint16 // variable, with _MGANDFLAG set for AND nodes
	Count    uint16
}

// ReadMultigraph parses a multigraph in binary format (little endian). The
// file starts with a header (a tree flag, the number of nodes and the number
// of edges) followed by one record per node, the root first. A record holds
// the variable of the node (with the high bit set for AND nodes), the number
// of edges, then for each edge the index of its destination (0 is the
// terminal, node k of the file has index k+1) and, for OR nodes, its
// probability. Parameter tree gives the expected shape; reading a file with
// another shape is an error.
func ReadMultigraph(r io.Reader, filename string, tree bool) (*Multigraph, error) {
	br := bufio.NewReader(r)
	var h mgheader
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return nil, formatf(filename, 0, "cannot read multigraph header: %s", err)
	}
	if h.Tree != tree {
		if h.Tree {
			return nil, formatf(filename, 0, "tree-shaped multigraph given to a non-tree model")
		}
		return nil, formatf(filename, 0, "multigraph is not tree-shaped")
	}
	if h.Nodes == 0 {
		return nil, formatf(filename, 0, "multigraph has no root")
	}
	m := NewMultigraph(h.Tree)
	m.nodes = make([]MultiNode, 1, h.Nodes+1)
	m.nodes[0] = MultiNode{Variable: -1, And: true}
	var edges uint64
	buf := make([]Edge, 0, 16)
	for k := uint32(0); k < h.Nodes; k++ {
		var rec mgrecord
		if err := binary.Read(br, binary.LittleEndian, &rec); err != nil {
			return nil, formatf(filename, 0, "cannot read node %d: %s", k+1, err)
		}
		and := rec.Variable&_MGANDFLAG != 0
		buf = buf[:0]
		for i := uint16(0); i < rec.Count; i++ {
			var to uint64
			if err := binary.Read(br, binary.LittleEndian, &to); err != nil {
				return nil, formatf(filename, 0, "cannot read edge %d of node %d: %s", i, k+1, err)
			}
			if to > uint64(h.Nodes) {
				return nil, formatf(filename, 0, "edge %d of node %d points to %d", i, k+1, to)
			}
			e := Edge{To: int(to), Weight: 1}
			if !and {
				if err := binary.Read(br, binary.LittleEndian, &e.Weight); err != nil {
					return nil, formatf(filename, 0, "cannot read weight of edge %d of node %d: %s", i, k+1, err)
				}
			}
			buf = append(buf, e)
		}
		edges += uint64(rec.Count)
		m.AddNode(int(rec.Variable&^_MGANDFLAG), and, buf)
	}
	if edges != uint64(h.Edges) {
		return nil, formatf(filename, 0, "header announces %d edges, found %d", h.Edges, edges)
	}
	return m, nil
}

// WriteMultigraph outputs a multigraph in the format accepted by
// ReadMultigraph.
func WriteMultigraph(w io.Writer, m *Multigraph) error {
	bw := bufio.NewWriter(w)
	h := mgheader{Tree: m.tree, Nodes: uint32(len(m.nodes) - 1), Edges: uint32(len(m.edges))}
	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		return err
	}
	for k := mgRootIndex; k < len(m.nodes); k++ {
		n := m.nodes[k]
		if n.Variable > _MGMAXVAR || int(n.count) > _MGMAXEDGES {
			return fmt.Errorf("node %d cannot be encoded: %w", k, ErrFormat)
		}
		rec := mgrecord{Count: uint16(n.count)}
		if n.Variable > 0 {
			rec.Variable = uint16(n.Variable)
		}
		if n.And {
			rec.Variable |= _MGANDFLAG
		}
		if err := binary.Write(bw, binary.LittleEndian, rec); err != nil {
			return err
		}
		for _, e := range m.Edges(k) {
			if err := binary.Write(bw, binary.LittleEndian, uint64(e.To)); err != nil {
				return err
			}
			if !n.And {
				if err := binary.Write(bw, binary.LittleEndian, e.Weight); err != nil {
					return err
				}
			}
		}
	}
	return bw.Flush()
}
