package main

import (
	"fmt"
	"text/tabwriter"

	"peptide-labels/internal/domain/dosing"

	"github.com/spf13/cobra"
)

func newProfilesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List peptide profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svcs, closeFn, err := c.services()
			if err != nil {
				return err
			}
			defer closeFn()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tDEFAULTS\tTHRESHOLD")
			for _, p := range svcs.Catalog.List() {
				threshold := "off"
				if p.ThresholdMgPerMl > 0 {
					threshold = dosing.FormatNumber(p.ThresholdMgPerMl) + " mg/ml"
				}
				fmt.Fprintf(tw, "%s\t%s\t%smg / %smg / %su\t%s\n",
					p.ID, p.Name,
					dosing.FormatNumber(p.DefaultVialMass),
					dosing.FormatNumber(p.DefaultDose),
					dosing.FormatNumber(p.DefaultUnits),
					threshold,
				)
			}
			return tw.Flush()
		},
	}
}
