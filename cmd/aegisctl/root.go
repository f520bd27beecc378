package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Aegis/internal/store"
)

var version = "dev"

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	results string
	json    bool
	debug   bool
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:   "aegisctl",
		Short: "Inspect safeguard evaluations and get recommendations offline",
		Long: `aegisctl reads a safeguard evaluation results file and prints the
leaderboard, headline stats, or a ranked recommendation for a deployment
profile, using the same scoring as the Aegis service.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.results, "results", "r", "safeguard_evaluation_results.csv", "Path to the evaluation results CSV")
	cmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Print JSON instead of a table")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if opts.debug {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newLeaderboardCommand(opts))
	cmd.AddCommand(newStatsCommand(opts))
	cmd.AddCommand(newRecommendCommand(opts))

	return cmd
}

func execute() error {
	return newRootCommand().Execute()
}

func loadCatalog(cmd *cobra.Command, opts *globalOptions) ([]store.Safeguard, error) {
	src := store.NewCSVSource(opts.results)
	defer src.Close()
	safeguards, err := src.LoadSafeguards(cmd.Context())
	if err != nil {
		return nil, err
	}
	slog.Debug("loaded results", "path", opts.results, "safeguards", len(safeguards))
	return safeguards, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
