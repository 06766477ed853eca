// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package main

import (
	"fmt"

	"github.com/dalzilio/bnmc/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// --- Global Command Variables ---
var (
	configPath    string
	networkPath   string
	partitionPath string
	circuitFormat string
	multigraphArg string
	treeShaped    bool
	evidenceArg   string
	queryArg      string
	strategyArg   string
	workersArg    int
	storeArg      string
	repeatArg     int
	metricsArg    string
	outputArg     string
	partitionArg  int
	chainArg      bool

	cfg    *config.Config
	logger *zap.Logger

	rootCmd = &cobra.Command{
		Use:   "bnmc",
		Short: "Exact inference on Bayesian networks compiled into decision diagrams",
		Long: `bnmc evaluates Bayesian networks compiled into weighted pseudo-Boolean
decision diagrams (one per partition of the network) or AND/OR multigraphs.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(configPath); err != nil {
				return err
			}
			logger, err = newLogger(cfg.LogLevel)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	queryCmd = &cobra.Command{
		Use:   "query",
		Short: "Compute the probability of a query variable given evidence",
		Example: `  bnmc query -n sprinkler.yaml -p sprinkler.part -c 'sprinkler.%d.wpbdd' -e Rain=yes -q Wet=yes
  bnmc query -n sprinkler.yaml -m sprinkler.mg -e Rain=yes`,
		RunE: runQuery,
	}

	verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Check a network, its partitions and their circuits, and print the architecture",
		RunE:  runVerify,
	}

	composeCmd = &cobra.Command{
		Use:   "compose",
		Short: "Find a good ordering of the partitions and print the composition tree",
		RunE:  runCompose,
	}

	dotCmd = &cobra.Command{
		Use:   "dot",
		Short: "Export a circuit in DOT format, optionally annotated with probabilities",
		RunE:  runDot,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&networkPath, "network", "n", "", "network description (YAML)")
	_ = rootCmd.MarkPersistentFlagRequired("network")
	rootCmd.PersistentFlags().StringVarP(&partitionPath, "partitions", "p", "", "partition file (default: a single partition)")
	rootCmd.PersistentFlags().StringVarP(&circuitFormat, "circuits", "c", "", "circuit file of each partition, as a format with a %d verb for the partition number")
	rootCmd.PersistentFlags().StringVarP(&multigraphArg, "multigraph", "m", "", "multigraph file (instead of partition circuits)")
	rootCmd.PersistentFlags().BoolVar(&treeShaped, "tree", false, "the multigraph is tree-shaped")

	queryCmd.Flags().StringVarP(&evidenceArg, "evidence", "e", "", "evidence, such as 'A=yes,B=no'")
	queryCmd.Flags().StringVarP(&queryArg, "query", "q", "", "query variable and value, such as 'C=yes'")
	queryCmd.Flags().StringVarP(&strategyArg, "strategy", "s", "", "evaluation strategy (sequential, composition, levelsync, dataflow)")
	queryCmd.Flags().IntVarP(&workersArg, "workers", "w", -1, "number of workers of parallel strategies (0 for automatic)")
	queryCmd.Flags().StringVar(&storeArg, "store", "", "directory of the store of answered queries")
	queryCmd.Flags().IntVar(&repeatArg, "repeat", 1, "number of evaluations of the query (for benchmarking)")
	queryCmd.Flags().StringVar(&metricsArg, "metrics-addr", "", "address where Prometheus metrics are exposed while the command runs")
	queryCmd.Flags().BoolVar(&chainArg, "chain", false, "build the composition tree as a single branch")

	composeCmd.Flags().BoolVar(&chainArg, "chain", false, "build the composition tree as a single branch")

	dotCmd.Flags().StringVarP(&outputArg, "output", "o", "-", "output file")
	dotCmd.Flags().IntVar(&partitionArg, "partition", 0, "partition of the circuit to export")
	dotCmd.Flags().StringVarP(&evidenceArg, "evidence", "e", "", "evidence used to annotate nodes with probabilities")

	rootCmd.AddCommand(queryCmd, verifyCmd, composeCmd, dotCmd)
}

// newLogger returns a production logger, or a development logger at debug
// level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zapcore.DebugLevel {
		return zap.NewDevelopment()
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
