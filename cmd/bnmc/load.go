// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dalzilio/bnmc"
	"go.uber.org/zap"
)

// model is the content of the input files.
type model struct {
	net   *bnmc.Network
	parts []bnmc.Partition
	mg    *bnmc.Multigraph
	files []string
}

// digest returns a hash of the content of the files the model was read from.
func (m *model) digest() (string, error) {
	h := sha256.New()
	for _, name := range m.files {
		f, err := os.Open(name)
		if err != nil {
			return "", err
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("digest %s: %w", name, err)
		}
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func loadNetwork() (*bnmc.Network, error) {
	f, err := os.Open(networkPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return bnmc.ReadNetwork(f, networkPath)
}

// loadPartitions reads the partition file, or returns a single partition when
// no file is given.
func loadPartitions(net *bnmc.Network) ([]bnmc.Partition, error) {
	if partitionPath == "" {
		return bnmc.MonolithicPartition(net), nil
	}
	f, err := os.Open(partitionPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return bnmc.ReadPartitions(f, partitionPath, net)
}

// circuitPath returns the name of the circuit file of partition k.
func circuitPath(k int) string {
	if strings.Contains(circuitFormat, "%") {
		return fmt.Sprintf(circuitFormat, k)
	}
	return circuitFormat
}

func loadCircuit(net *bnmc.Network, k int) (*bnmc.WPBDD, error) {
	name := circuitPath(k)
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return bnmc.ReadWPBDD(f, name, net)
}

func loadMultigraph() (*bnmc.Multigraph, error) {
	f, err := os.Open(multigraphArg)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return bnmc.ReadMultigraph(f, multigraphArg, treeShaped)
}

// loadModel reads the network and either its multigraph or its partitions and
// their circuits.
func loadModel(withCircuits bool) (*model, error) {
	net, err := loadNetwork()
	if err != nil {
		return nil, err
	}
	m := &model{net: net, files: []string{networkPath}}
	if multigraphArg != "" {
		if m.mg, err = loadMultigraph(); err != nil {
			return nil, err
		}
		m.files = append(m.files, multigraphArg)
		logger.Debug("multigraph loaded", zap.String("file", multigraphArg), zap.Int("nodes", m.mg.Size()))
		return m, nil
	}
	if m.parts, err = loadPartitions(net); err != nil {
		return nil, err
	}
	if partitionPath != "" {
		m.files = append(m.files, partitionPath)
	}
	if !withCircuits {
		return m, nil
	}
	if circuitFormat == "" {
		return nil, fmt.Errorf("no circuit files given (use --circuits or --multigraph)")
	}
	for k := range m.parts {
		if m.parts[k].Circuit, err = loadCircuit(net, k); err != nil {
			return nil, err
		}
		m.files = append(m.files, circuitPath(k))
		logger.Debug("circuit loaded",
			zap.Int("partition", k),
			zap.String("file", circuitPath(k)),
			zap.Int("nodes", m.parts[k].Circuit.Size()))
	}
	return m, nil
}

// parseEvidence builds the evidence of a query from strings such as
// "A=yes,B=no" for the evidence and "C=yes" for the query variable.
func parseEvidence(net *bnmc.Network, evidence, query string) (*bnmc.Evidence, error) {
	ev := bnmc.NewEvidence(net)
	for _, a := range strings.Split(evidence, ",") {
		if a = strings.TrimSpace(a); a == "" {
			continue
		}
		name, state, ok := strings.Cut(a, "=")
		if !ok {
			return nil, fmt.Errorf("expected variable=value, found %q", a)
		}
		if err := ev.SetByName(strings.TrimSpace(name), strings.TrimSpace(state)); err != nil {
			return nil, err
		}
	}
	if query = strings.TrimSpace(query); query != "" {
		name, state, ok := strings.Cut(query, "=")
		if !ok {
			return nil, fmt.Errorf("expected variable=value, found %q", query)
		}
		if err := ev.SetQueryByName(strings.TrimSpace(name), strings.TrimSpace(state)); err != nil {
			return nil, err
		}
	}
	return ev, nil
}
