package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bft-labs/pkfit/internal/domain"
	"github.com/bft-labs/pkfit/internal/pk"
)

func newPredictCmd() *cobra.Command {
	var (
		dose, tinf, cl, v float64
		times             []float64
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Print model concentrations for a given dose and (CL, V)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dose <= 0 {
				return &domain.ConfigurationError{Field: "dose", Reason: "must be positive"}
			}
			if tinf < 0 {
				return &domain.ConfigurationError{Field: "tinf", Reason: "must not be negative"}
			}
			if !(domain.Candidate{CL: cl, V: v}).Valid() {
				return &domain.ConfigurationError{Field: "cl", Reason: "cl and v must be positive"}
			}
			if len(times) == 0 {
				return &domain.ConfigurationError{Field: "time", Reason: "at least one time is required"}
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "time\tconc")
			for _, t := range times {
				c := pk.Predict(t, dose, tinf, cl, v)
				fmt.Fprintf(tw, "%s\t%s\n", strconv.FormatFloat(t, 'g', -1, 64), strconv.FormatFloat(c, 'g', 6, 64))
			}
			return tw.Flush()
		},
	}

	f := cmd.Flags()
	f.Float64Var(&dose, "dose", 0, "administered dose")
	f.Float64Var(&tinf, "tinf", 0, "infusion duration (0: bolus)")
	f.Float64Var(&cl, "cl", 0, "clearance")
	f.Float64Var(&v, "v", 0, "volume of distribution")
	f.Float64SliceVar(&times, "time", nil, "sample times, comma separated")

	return cmd
}
