// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/dalzilio/bnmc"
	"github.com/dalzilio/bnmc/internal/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if metricsArg == "" {
		metricsArg = cfg.MetricsAddr
	}
	if metricsArg != "" {
		srv := &http.Server{Addr: metricsArg, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
		defer srv.Close()
	}

	m, err := loadModel(true)
	if err != nil {
		return err
	}
	ev, err := parseEvidence(m.net, evidenceArg, queryArg)
	if err != nil {
		return err
	}
	engine, err := newEngine(m)
	if err != nil {
		return err
	}

	storePath := storeArg
	if storePath == "" {
		storePath = cfg.StorePath
	}
	var db *store.Store
	var digest string
	if storePath != "" {
		if digest, err = m.digest(); err != nil {
			return err
		}
		if db, err = store.Open(storePath, logger); err != nil {
			return err
		}
		defer db.Close()
		if r, err := db.Get(m.net.Name(), digest, ev.String()); err == nil {
			printResult(ev, r.Probability)
			logger.Info("answer found in store", zap.String("id", r.ID.String()), zap.String("strategy", r.Strategy))
			return nil
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}

	var res *bnmc.Result
	var total time.Duration
	for k := 0; k < max(repeatArg, 1); k++ {
		if res, err = engine.Query(ctx, ev); err != nil {
			return err
		}
		total += res.Duration
	}
	printResult(ev, res.Probability)
	logger.Info("query answered",
		zap.String("query", res.ID.String()),
		zap.Stringer("strategy", res.Strategy),
		zap.Int("workers", engine.Workers()),
		zap.Int("repeat", max(repeatArg, 1)),
		zap.Duration("average", total/time.Duration(max(repeatArg, 1))))
	if db != nil {
		return db.Put(store.Record{
			ID:          res.ID,
			Network:     m.net.Name(),
			Model:       digest,
			Evidence:    ev.String(),
			Strategy:    res.Strategy.String(),
			Probability: res.Probability,
			Joint:       res.Joint,
			Marginal:    res.Marginal,
		})
	}
	return nil
}

func newEngine(m *model) (*bnmc.Engine, error) {
	name := strategyArg
	if name == "" {
		name = cfg.Strategy
	}
	strategy, err := bnmc.ParseStrategy(name)
	if err != nil {
		return nil, err
	}
	workers := workersArg
	if workers < 0 {
		workers = cfg.Workers
	}
	options := []bnmc.Option{
		bnmc.WithStrategy(strategy),
		bnmc.Workers(workers),
		bnmc.Buffer(cfg.Buffer),
		bnmc.Logger(logger),
	}
	if chainArg {
		options = append(options, bnmc.Chain())
	}
	if m.mg != nil {
		return bnmc.NewMultigraphEngine(m.net, m.mg, options...)
	}
	return bnmc.New(m.net, m.parts, options...)
}

func printResult(ev *bnmc.Evidence, p float64) {
	switch {
	case p == bnmc.Undefined:
		fmt.Fprintf(os.Stdout, "P(%s) = undefined (evidence has probability 0)\n", ev)
	default:
		fmt.Fprintf(os.Stdout, "P(%s) = %.10g\n", ev, p)
	}
}
