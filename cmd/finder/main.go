package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	appName = "finder"
	version = "v1.4.0"
)

var configPath string

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Strategy parameter-space search engine",
		Version: version,
		Long: `finder searches a trading strategy's parameter space: it samples
candidate parameter sets, backtests them in adaptive batches, and keeps a
bounded ranking of the best performers. Large datasets can be offloaded to
a remote acceleration engine with transparent local fallback.`,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to finder YAML config")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if v, _ := cmd.Flags().GetBool("verbose"); v {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	}

	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Preview the parameter plan for configured strategies",
		Long:  "Generates the sampled parameter sets without running any backtests",
		RunE:  runPlan,
	}
	planCmd.Flags().String("strategy", "", "Only plan this strategy key")
	planCmd.Flags().Int("limit", 10, "Parameter sets to print per strategy")

	offloadCmd := &cobra.Command{
		Use:   "offload",
		Short: "Remote acceleration engine utilities",
	}
	offloadCmd.AddCommand(&cobra.Command{
		Use:   "health",
		Short: "Check the remote engine health endpoint",
		RunE:  runOffloadHealth,
	})

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate the configuration file",
		RunE:  runConfigCheck,
	})

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local debug HTTP server",
		Long:  "Serves /health, /status, and /metrics on localhost until interrupted",
		RunE:  runServe,
	}

	rootCmd.AddCommand(planCmd, offloadCmd, configCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
