// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package main

import (
	"fmt"
	"os"

	"github.com/dalzilio/bnmc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runVerify(cmd *cobra.Command, args []string) error {
	m, err := loadModel(true)
	if err != nil {
		return err
	}
	if m.mg != nil {
		if err := m.mg.Verify(m.net); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Multigraph:    %d nodes, %d edges, tree: %v\n", m.mg.Size(), m.mg.EdgeCount(), m.mg.IsTree())
		return nil
	}
	var options []bnmc.Option
	if chainArg {
		options = append(options, bnmc.Chain())
	}
	engine, err := bnmc.New(m.net, m.parts, append(options, bnmc.Logger(logger))...)
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, engine.Architecture().Stats())
	return nil
}

func runCompose(cmd *cobra.Command, args []string) error {
	m, err := loadModel(false)
	if err != nil {
		return err
	}
	if m.mg != nil {
		return fmt.Errorf("composition needs partitions, not a multigraph")
	}
	if err := bnmc.VerifyPartitions(m.net, m.parts); err != nil {
		return err
	}
	c := bnmc.NewComposition(m.net, m.parts)
	ordering := c.FindOrdering()
	if err := c.Build(ordering, chainArg); err != nil {
		return err
	}
	logger.Debug("composition built", zap.Ints("ordering", ordering), zap.Float64("score", c.Score(ordering, chainArg)))
	fmt.Fprintf(os.Stdout, "Ordering:      %v\n", ordering)
	fmt.Fprintf(os.Stdout, "Score:         %g\n", c.Score(ordering, chainArg))
	return c.Print(os.Stdout)
}

func runDot(cmd *cobra.Command, args []string) error {
	net, err := loadNetwork()
	if err != nil {
		return err
	}
	ev, err := parseEvidence(net, evidenceArg, "")
	if err != nil {
		return err
	}
	ct := make(bnmc.ConditionTierList, net.Varnum())
	for v := range ct {
		ct[v] = bnmc.TierInit
		if ev.IsEvidence(v) {
			ct[v] = 0
		}
	}
	var probs []float64
	if multigraphArg != "" {
		mg, err := loadMultigraph()
		if err != nil {
			return err
		}
		if err := mg.Verify(net); err != nil {
			return err
		}
		if evidenceArg != "" {
			probs = mg.Probabilities(ev.List(), ct, 0)
		}
		return mg.FPrintDot(outputArg, net, probs)
	}
	if circuitFormat == "" {
		return fmt.Errorf("no circuit files given (use --circuits or --multigraph)")
	}
	c, err := loadCircuit(net, partitionArg)
	if err != nil {
		return err
	}
	if evidenceArg != "" {
		probs = c.Probabilities(ev.List(), ct, 0)
	}
	return c.FPrintDot(outputArg, net, probs)
}
