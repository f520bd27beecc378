package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Aegis/internal/leaderboard"
)

func newLeaderboardCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Rank safeguards by BELLS score",
		Long: `Rank safeguards by BELLS score. The best value in each column is
marked with *. False positive rate is better when lower.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := loadCatalog(cmd, opts)
			if err != nil {
				return err
			}
			entries := leaderboard.Rank(catalog)
			if opts.json {
				return printJSON(cmd.OutOrStdout(), entries)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RANK\tSAFEGUARD\tADVERSARIAL\tNON-ADVERSARIAL\tFPR\tBELLS")
			for _, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
					e.Rank, e.Safeguard,
					formatCell(e.DetectionAdversarial),
					formatCell(e.DetectionNonAdversarial),
					formatCell(e.FalsePositiveRate),
					formatCell(e.BELLSScore),
				)
			}
			return tw.Flush()
		},
	}
}

func formatCell(c leaderboard.Cell) string {
	s := fmt.Sprintf("%.3f", c.Value)
	if c.Best {
		s += "*"
	}
	return s
}
