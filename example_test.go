// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package bnmc_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/dalzilio/bnmc"
)

const network = `name: ab
variables:
  - name: A
    states: [no, yes]
  - name: B
    states: [no, yes]
    parents: [A]
`

// circuits of the partitions {A} and {B}; literal 2k+i stands for the i'th
// value of the k'th variable.
var circuits = []string{`wpbdd 4
0 0 0 0
0 0 0 0
1 1 3 1 0.3
0 1 0 1 0.7
`, `wpbdd 8
0 0 0 0
0 0 0 0
1 3 4 0
3 1 5 1 0.8
0 6 0 0
2 1 0 1 0.2
3 1 7 1 0.1
2 1 0 1 0.9
`}

// This example shows the basic usage of the package: read a network, its
// partitions and their circuits, then compute a posterior probability.
func Example_basic() {
	net, err := bnmc.ReadNetwork(strings.NewReader(network), "ab.yaml")
	if err != nil {
		fmt.Println(err)
		return
	}
	parts, err := bnmc.ReadPartitions(strings.NewReader("partition 2\nA\nB\n"), "ab.part", net)
	if err != nil {
		fmt.Println(err)
		return
	}
	for k := range parts {
		if parts[k].Circuit, err = bnmc.ReadWPBDD(strings.NewReader(circuits[k]), "ab.wpbdd", net); err != nil {
			fmt.Println(err)
			return
		}
	}
	// The Dataflow strategy evaluates the tiers of the network in parallel.
	engine, err := bnmc.New(net, parts, bnmc.WithStrategy(bnmc.Dataflow), bnmc.Workers(2))
	if err != nil {
		fmt.Println(err)
		return
	}
	ev := bnmc.NewEvidence(net)
	ev.SetByName("B", "yes")
	p, _ := engine.Posterior(context.Background(), ev)
	fmt.Printf("P(B=yes) = %.3f\n", p)
	// The query variable is the last one in the string representation.
	ev.SetQueryByName("A", "yes")
	p, _ = engine.Posterior(context.Background(), ev)
	fmt.Printf("%s: P(A=yes | B=yes) = %.3f\n", ev, p)
	// Output:
	// P(B=yes) = 0.310
	// B=yes|A=yes: P(A=yes | B=yes) = 0.774
}
