// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Network holds the logical content of a Bayesian network that is needed to
// evaluate its compiled circuits: the name and dimension of each variable and
// the parents of each variable (used to compute partition cutsets). Variables
// are identified by their index in the interval [0..Varnum).
type Network struct {
	name    string
	names   []string
	states  [][]string
	parents [][]int
	offsets []int // offsets[v] is the first literal of variable v
	index   map[string]int
}

// networkFile is the YAML description of a network.
type networkFile struct {
	Name      string         `yaml:"name"`
	Variables []variableFile `yaml:"variables" validate:"required,min=1,dive"`
}

type variableFile struct {
	Name    string   `yaml:"name" validate:"required"`
	States  []string `yaml:"states" validate:"required,min=1,max=65535"`
	Parents []string `yaml:"parents"`
}

var netvalidate = validator.New()

// NewNetwork returns a network from a list of variable names, the states of
// each variable, and the parents of each variable (given by index). Parameter
// parents may be nil for a network without edges.
func NewNetwork(name string, names []string, states [][]string, parents [][]int) (*Network, error) {
	if len(names) == 0 {
		return nil, formatf(name, 0, "empty network")
	}
	if len(states) != len(names) || (parents != nil && len(parents) != len(names)) {
		return nil, formatf(name, 0, "inconsistent number of variables")
	}
	n := &Network{
		name:    name,
		names:   names,
		states:  states,
		parents: parents,
		offsets: make([]int, len(names)+1),
		index:   make(map[string]int, len(names)),
	}
	if n.parents == nil {
		n.parents = make([][]int, len(names))
	}
	for v, s := range names {
		if _, ok := n.index[s]; ok {
			return nil, formatf(name, 0, "variable %q declared twice", s)
		}
		if len(states[v]) == 0 {
			return nil, formatf(name, 0, "variable %q has no state", s)
		}
		for _, p := range n.parents[v] {
			if p < 0 || p >= len(names) || p == v {
				return nil, formatf(name, 0, "bad parent %d for variable %q", p, s)
			}
		}
		n.index[s] = v
		n.offsets[v+1] = n.offsets[v] + len(states[v])
	}
	return n, nil
}

// ReadNetwork parses the YAML description of a network, such as:
//
//	name: sprinkler
//	variables:
//	  - name: Rain
//	    states: [no, yes]
//	  - name: Wet
//	    states: [no, yes]
//	    parents: [Rain]
func ReadNetwork(r io.Reader, filename string) (*Network, error) {
	var nf networkFile
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&nf); err != nil {
		return nil, formatf(filename, 0, "cannot decode network (%s)", err)
	}
	if err := netvalidate.Struct(nf); err != nil {
		return nil, formatf(filename, 0, "invalid network (%s)", err)
	}
	names := make([]string, len(nf.Variables))
	states := make([][]string, len(nf.Variables))
	index := make(map[string]int, len(nf.Variables))
	for v, vf := range nf.Variables {
		names[v] = vf.Name
		states[v] = vf.States
		index[vf.Name] = v
	}
	parents := make([][]int, len(nf.Variables))
	for v, vf := range nf.Variables {
		for _, p := range vf.Parents {
			k, ok := index[p]
			if !ok {
				return nil, formatf(filename, 0, "unknown parent %q of variable %q", p, vf.Name)
			}
			parents[v] = append(parents[v], k)
		}
	}
	if nf.Name == "" {
		nf.Name = filename
	}
	return NewNetwork(nf.Name, names, states, parents)
}

// Name returns the name of the network.
func (n *Network) Name() string {
	return n.name
}

// Varnum returns the number of variables in the network.
func (n *Network) Varnum() int {
	return len(n.names)
}

// Dimension returns the number of values of variable v.
func (n *Network) Dimension(v int) int {
	return len(n.states[v])
}

// VariableName returns the name of variable v.
func (n *Network) VariableName(v int) string {
	return n.names[v]
}

// StateName returns the name of the i'th value of variable v.
func (n *Network) StateName(v, i int) string {
	return n.states[v][i]
}

// Parents returns the parents of variable v.
func (n *Network) Parents(v int) []int {
	return n.parents[v]
}

// Lookup returns the index of a variable given its name or, as a fallback, its
// numeric id.
func (n *Network) Lookup(name string) (int, error) {
	if v, ok := n.index[name]; ok {
		return v, nil
	}
	if v, err := strconv.Atoi(name); err == nil && v >= 0 && v < len(n.names) {
		return v, nil
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
}

// LookupState returns the index of a value of variable v given its state name
// or, as a fallback, its numeric index.
func (n *Network) LookupState(v int, state string) (int, error) {
	for i, s := range n.states[v] {
		if s == state {
			return i, nil
		}
	}
	if i, err := strconv.Atoi(state); err == nil && i >= 0 && i < len(n.states[v]) {
		return i, nil
	}
	return -1, fmt.Errorf("%w: %s=%s", ErrEvidenceValue, n.names[v], state)
}

// Literals returns the total number of literals, that is the sum of the
// dimensions of all the variables.
func (n *Network) Literals() int {
	return n.offsets[len(n.names)]
}

// Literal returns the literal for the assignment v=i.
func (n *Network) Literal(v, i int) int {
	return n.offsets[v] + i
}

// LiteralAssignment returns the assignment (v, i) corresponding to a literal,
// or an error if the literal is out of range.
func (n *Network) LiteralAssignment(l int) (int, int, error) {
	if l < 0 || l >= n.Literals() {
		return -1, -1, fmt.Errorf("literal %d out of range", l)
	}
	lo, hi := 0, len(n.names)
	for hi-lo > 1 {
		m := (lo + hi) / 2
		if n.offsets[m] <= l {
			lo = m
		} else {
			hi = m
		}
	}
	return lo, l - n.offsets[lo], nil
}
