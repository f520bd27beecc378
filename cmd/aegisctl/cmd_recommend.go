package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Aegis/internal/scoring"
)

type recommendOptions struct {
	raw   scoring.RawPreferences
	topN  int
	curve string
}

func newRecommendCommand(opts *globalOptions) *cobra.Command {
	ro := &recommendOptions{}
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend safeguards for a deployment profile",
		Long: `Score every safeguard in the results file against a deployment profile
and print the best matches with the reasoning for the winner.

Values accept either the canonical token or the dashboard label, e.g.
--system-type black_box_api or --system-type "Black Box API".`,
		Example: `  aegisctl recommend --system-type api --rag yes --volume high --risk medium \
    --interaction "Code generation" --interaction "Customer service"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRecommend(cmd, opts, ro)
		},
	}

	f := cmd.Flags()
	f.StringVar(&ro.raw.SystemType, "system-type", "", "Black Box API, Direct Access or Other")
	f.StringVar(&ro.raw.RAGEnabled, "rag", "", "Whether the system uses RAG: yes, no or unknown")
	f.StringVar(&ro.raw.RequestVolume, "volume", "", "Request volume: low, medium or high")
	f.StringVar(&ro.raw.RiskLevel, "risk", "", "Risk level: very_low, low, medium or high")
	f.StringArrayVar(&ro.raw.InteractionTypes, "interaction", nil, "Interaction type (repeatable)")
	f.IntVarP(&ro.topN, "top", "n", scoring.DefaultTopN, "Number of recommendations to show")
	f.StringVar(&ro.curve, "curve", string(scoring.CurveLinear), "Performance curve for high volume: linear or quadratic")
	_ = cmd.MarkFlagRequired("system-type")
	_ = cmd.MarkFlagRequired("rag")
	_ = cmd.MarkFlagRequired("volume")
	_ = cmd.MarkFlagRequired("risk")

	return cmd
}

func runRecommend(cmd *cobra.Command, opts *globalOptions, ro *recommendOptions) error {
	if ro.topN < 0 {
		return fmt.Errorf("--top must not be negative")
	}
	prefs, err := ro.raw.Parse()
	if err != nil {
		return err
	}
	curve, err := scoring.ParsePerformanceCurve(ro.curve)
	if err != nil {
		return err
	}
	scorer, err := scoring.NewScorer(scoring.DefaultWeights(), curve, nil)
	if err != nil {
		return err
	}

	catalog, err := loadCatalog(cmd, opts)
	if err != nil {
		return err
	}
	rec, err := scorer.Recommend(catalog, prefs, ro.topN)
	if err != nil {
		return err
	}
	if opts.json {
		return printJSON(cmd.OutOrStdout(), rec)
	}

	w := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSAFEGUARD\tSCORE\tBELLS")
	for i, c := range rec.TopRecommendations {
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%.3f\n", i+1, c.Safeguard.Name, c.NormalizedScore, c.Safeguard.BELLSScore)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, rec.Explanation)
	return nil
}
