// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Partition is a part of the network compiled into its own circuit. Set is the
// sorted list of variables owned by the partition and Cutset the sorted list
// of variables it references but that are owned by other partitions (parents
// of owned variables). Ordering is an optional variable ordering used by the
// compiler; when present it must be a permutation of Set ∪ Cutset.
type Partition struct {
	Set      []int
	Cutset   []int
	Ordering []int
	Circuit  *WPBDD
}

// Variables returns the sorted union of the set and cutset of p.
func (p *Partition) Variables() []int {
	return setunion(p.Set, p.Cutset)
}

// NewPartitions builds partitions from lists of owned variables and computes
// their cutsets.
func NewPartitions(net *Network, sets ...[]int) []Partition {
	parts := make([]Partition, len(sets))
	for k, s := range sets {
		parts[k].Set = setof(s...)
		parts[k].Cutset = cutset(net, parts[k].Set)
	}
	return parts
}

// MonolithicPartition returns a single partition owning every variable.
func MonolithicPartition(net *Network) []Partition {
	all := make([]int, net.Varnum())
	for v := range all {
		all[v] = v
	}
	return NewPartitions(net, all)
}

// cutset returns the parents of the variables in set that are not in set.
func cutset(net *Network, set []int) []int {
	var res []int
	for _, v := range set {
		for _, p := range net.Parents(v) {
			if !setcontains(set, p) {
				res = setinsert(res, p)
			}
		}
	}
	return res
}

// ************************************************************

// ReadPartitions parses a partition file. The file starts with a header
// "partition N" followed by N lines, each one a comma-separated list of
// variable names (or numeric ids) owned by the partition. The result is
// checked with VerifyPartitions.
func ReadPartitions(r io.Reader, filename string, net *Network) ([]Partition, error) {
	scanner := bufio.NewScanner(r)
	line := 0
	next := func() (string, bool) {
		for scanner.Scan() {
			line++
			s := strings.TrimSpace(scanner.Text())
			if s != "" {
				return s, true
			}
		}
		return "", false
	}
	header, ok := next()
	if !ok {
		return nil, formatf(filename, line, "missing header")
	}
	fields := strings.Fields(header)
	if len(fields) != 2 || fields[0] != "partition" {
		return nil, formatf(filename, line, "error while parsing header of partition file")
	}
	size, err := strconv.Atoi(fields[1])
	if err != nil || size < 1 || size > net.Varnum() {
		return nil, formatf(filename, line, "number of partitions must be between 1 and the number of variables (%d)", net.Varnum())
	}
	sets := make([][]int, size)
	for k := 0; k < size; k++ {
		s, ok := next()
		if !ok {
			return nil, formatf(filename, line, "expected %d partitions, found %d", size, k)
		}
		for _, name := range strings.Split(s, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				return nil, formatf(filename, line, "partition variable name expected")
			}
			v, err := net.Lookup(name)
			if err != nil {
				return nil, formatf(filename, line, "variable %q unknown", name)
			}
			sets[k] = append(sets[k], v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, formatf(filename, line, "%s", err)
	}
	parts := NewPartitions(net, sets...)
	if err := VerifyPartitions(net, parts); err != nil {
		return nil, &FormatError{File: filename, Err: err}
	}
	return parts, nil
}

// WritePartitions outputs partitions in the format accepted by ReadPartitions,
// using variable names.
func WritePartitions(w io.Writer, net *Network, parts []Partition) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "partition %d\n", len(parts))
	for _, p := range parts {
		for k, v := range p.Set {
			if k > 0 {
				bw.WriteByte(',')
			}
			bw.WriteString(net.VariableName(v))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// ************************************************************

// VerifyPartitions checks that every variable of the network is owned by
// exactly one partition. It returns an error wrapping ErrDuplicateVariable or
// ErrMissingVariable otherwise.
func VerifyPartitions(net *Network, parts []Partition) error {
	owner := make([]int, net.Varnum())
	for v := range owner {
		owner[v] = -1
	}
	for k, p := range parts {
		for _, v := range p.Set {
			if v < 0 || v >= net.Varnum() {
				return fmt.Errorf("%w: variable %d in partition %d", ErrUnknownVariable, v, k+1)
			}
			if owner[v] >= 0 {
				return fmt.Errorf("%w: variable '%s' occurs in partition %d for the second time", ErrDuplicateVariable, net.VariableName(v), k+1)
			}
			owner[v] = k
		}
	}
	var missing []string
	for v, k := range owner {
		if k < 0 {
			missing = append(missing, net.VariableName(v))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: partitions do not cover all variables, missing variable(s): {%s}", ErrMissingVariable, strings.Join(missing, ","))
	}
	return nil
}

// VerifyOrdering checks that the variable ordering of each partition, when
// present, consists exactly of its set and cutset.
func VerifyOrdering(net *Network, parts []Partition) error {
	for k, p := range parts {
		if len(p.Ordering) == 0 {
			continue
		}
		want := p.Variables()
		got := setof(p.Ordering...)
		if len(got) != len(p.Ordering) || len(got) != len(want) || !setequal(got, want) {
			names := make([]string, len(want))
			for i, v := range want {
				names[i] = net.VariableName(v)
			}
			return fmt.Errorf("ordering in partition %d does not consist of partition and cutset {%s}: %w", k+1, strings.Join(names, ","), ErrFormat)
		}
	}
	return nil
}

func setequal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if a[k] != b[k] {
			return false
		}
	}
	return true
}

// checkcircuits verifies that every partition has a circuit and that the
// circuit of a partition only tests variables in its set or cutset.
func checkcircuits(net *Network, parts []Partition) error {
	for k, p := range parts {
		if p.Circuit == nil {
			return fmt.Errorf("partition %d has no circuit: %w", k, ErrFormat)
		}
		scope := p.Variables()
		for _, v := range p.Circuit.Variables() {
			if v >= net.Varnum() || !setcontains(scope, v) {
				return fmt.Errorf("circuit of partition %d tests variable %d outside of its scope: %w", k, v, ErrFormat)
			}
		}
	}
	return nil
}
