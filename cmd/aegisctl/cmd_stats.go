package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Aegis/internal/leaderboard"
)

func newStatsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print headline numbers for the results file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := loadCatalog(cmd, opts)
			if err != nil {
				return err
			}
			st := leaderboard.Summarize(catalog)
			if opts.json {
				return printJSON(cmd.OutOrStdout(), st)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Safeguards evaluated: %d\n", st.Total)
			fmt.Fprintf(w, "Average BELLS score:  %.2f\n", st.AverageBELLS)
			fmt.Fprintf(w, "Highest score:        %.2f", st.MaxBELLS)
			if st.Top != "" {
				fmt.Fprintf(w, " (%s)", st.Top)
			}
			fmt.Fprintln(w)
			return nil
		},
	}
}
