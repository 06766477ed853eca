// Copyright 2021. Silvano DAL ZILIO.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package bnmc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Probabilities evaluates the diagram like Evaluate and returns the
// probability computed for each node. The entry of a node that was not
// reached is negative.
func (c *WPBDD) Probabilities(ev EvidenceList, ct ConditionTierList, tier int) []float64 {
	sc := newScratch(len(c.nodes))
	c.traverse(sc, ev.Clone(), ct, tier, nil, nil)
	sc.probs[FalseIndex], sc.probs[TrueIndex] = 0, 1
	return sc.probs
}

// Probabilities is like Evaluate but returns the probability computed for each
// node of the multigraph.
func (m *Multigraph) Probabilities(ev EvidenceList, ct ConditionTierList, tier int) []float64 {
	sc := newScratch(len(m.nodes))
	if m.tree {
		m.traverseTree(sc, ev, ct, tier)
	} else {
		m.traverse(sc, ev, ct, tier)
	}
	return sc.probs
}

// ************************************************************

// FPrintDot writes the diagram in DOT format to a file, or to the standard
// output if filename is "-". See PrintDot for the meaning of probs.
func (c *WPBDD) FPrintDot(filename string, net *Network, probs []float64) error {
	return fprint(filename, func(w io.Writer) error { return c.PrintDot(w, net, probs) })
}

// PrintDot writes the diagram in DOT format. When probs is not nil, the label
// of each node is annotated with its probability (see Probabilities). We do
// not draw arcs that go to the false terminal.
func (c *WPBDD) PrintDot(w io.Writer, net *Network, probs []float64) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph G {")
	fmt.Fprintln(bw, "1 [shape=box, label=\"1\", style=filled, shape=box, height=0.3, width=0.3];")
	for k := RootIndex; k < len(c.nodes); k++ {
		n := c.nodes[k]
		label := fmt.Sprintf("%s=%s", net.VariableName(n.Variable), net.StateName(n.Variable, n.Value))
		fmt.Fprintf(bw, "%d %s\n", k, dotlabel(k, label, probs))
		if n.Else != FalseIndex {
			fmt.Fprintf(bw, "%d -> %d [style=dotted];\n", k, n.Else)
		}
		if n.Then != FalseIndex {
			fmt.Fprintf(bw, "%d -> %d [style=filled, label=\"%g\"];\n", k, n.Then, n.Weight)
		}
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

// FPrintDot writes the multigraph in DOT format to a file, or to the standard
// output if filename is "-".
func (m *Multigraph) FPrintDot(filename string, net *Network, probs []float64) error {
	return fprint(filename, func(w io.Writer) error { return m.PrintDot(w, net, probs) })
}

// PrintDot writes the multigraph in DOT format. AND nodes are drawn as boxes
// and the edges of OR nodes are labelled with the value and the weight.
func (m *Multigraph) PrintDot(w io.Writer, net *Network, probs []float64) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph G {")
	fmt.Fprintln(bw, "0 [shape=box, label=\"1\", style=filled, shape=box, height=0.3, width=0.3];")
	for k := mgRootIndex; k < len(m.nodes); k++ {
		n := m.nodes[k]
		if n.And {
			fmt.Fprintf(bw, "%d [shape=box, label=\"*\"];\n", k)
			for _, e := range m.Edges(k) {
				fmt.Fprintf(bw, "%d -> %d;\n", k, e.To)
			}
			continue
		}
		fmt.Fprintf(bw, "%d %s\n", k, dotlabel(k, net.VariableName(n.Variable), probs))
		for i, e := range m.Edges(k) {
			if e.Weight == 0 {
				continue
			}
			fmt.Fprintf(bw, "%d -> %d [label=\"%s: %g\"];\n", k, e.To, net.StateName(n.Variable, i), e.Weight)
		}
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

func dotlabel(k int, label string, probs []float64) string {
	if probs != nil && probs[k] >= 0 {
		return fmt.Sprintf(`[label=<
	<FONT POINT-SIZE="20">%s</FONT>
	<FONT POINT-SIZE="10">[%d] %.4g</FONT>
>];`, label, k, probs[k])
	}
	return fmt.Sprintf(`[label=<
	<FONT POINT-SIZE="20">%s</FONT>
	<FONT POINT-SIZE="10">[%d]</FONT>
>];`, label, k)
}

func fprint(filename string, print func(io.Writer) error) error {
	if filename == "-" {
		return print(os.Stdout)
	}
	out, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := print(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ************************************************************

// Print writes the composition tree, one node per line, with the partition of
// the node, its context and the number of distinct contexts.
func (c *Composition) Print(w io.Writer) error {
	if c.root == nil {
		return fmt.Errorf("composition tree was not built")
	}
	bw := bufio.NewWriter(w)
	var visit func(n *CompositionNode, prefix string, last bool)
	visit = func(n *CompositionNode, prefix string, last bool) {
		if n.IsRoot() {
			fmt.Fprintln(bw, "*")
		} else {
			branch := "├── "
			if last {
				branch = "└── "
			}
			names := make([]string, len(n.Context))
			for k, v := range n.Context {
				names[k] = c.net.VariableName(v)
			}
			fmt.Fprintf(bw, "%s%s[%d] partition %d {%s} (%d)\n", prefix, branch, n.ID, n.Partition,
				strings.Join(names, ","), contextwidth(c.net, n.Context))
			if last {
				prefix += "    "
			} else {
				prefix += "│   "
			}
		}
		for k, child := range n.Children {
			visit(child, prefix, k == len(n.Children)-1)
		}
	}
	visit(c.root, "", true)
	return bw.Flush()
}
