package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"peptide-labels/internal/domain/dosing"
	"peptide-labels/internal/domain/profiles"

	"github.com/spf13/cobra"
)

// doseFlags son los flags de cálculo que comparten calc y label.
type doseFlags struct {
	profile       string
	vialMass      float64
	dose          float64
	units         float64
	concentration float64
	vials         float64
	driving       string
}

func (f *doseFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.profile, "profile", "", "peptide profile id (threshold)")
	fs.Float64Var(&f.vialMass, "vial", 0, "peptide per vial (mg)")
	fs.Float64Var(&f.dose, "dose", 0, "dose (mg)")
	fs.Float64Var(&f.units, "units", 0, "units per dose (U-100)")
	fs.Float64Var(&f.concentration, "concentration", 0, "concentration (mg/ml)")
	fs.Float64Var(&f.vials, "vials", 1, "vials mixed together")
	fs.StringVar(&f.driving, "driving", "", "units or concentration (default: whichever was given)")
}

func (f *doseFlags) inputs(catalog *profiles.Catalog) (dosing.Inputs, error) {
	driving := dosing.DrivingField(strings.ToLower(strings.TrimSpace(f.driving)))
	switch driving {
	case "", dosing.DrivingUnits, dosing.DrivingConcentration:
	default:
		return dosing.Inputs{}, fmt.Errorf("--driving must be units or concentration, got %q", f.driving)
	}

	in := dosing.Inputs{
		VialMassMg:           f.vialMass,
		DoseMg:               f.dose,
		UnitsPerDose:         f.units,
		ConcentrationMgPerMl: f.concentration,
		NumVials:             f.vials,
		Driving:              driving,
	}
	if strings.TrimSpace(f.profile) != "" {
		p, err := catalog.Get(f.profile)
		if err != nil {
			return dosing.Inputs{}, fmt.Errorf("profile %q: %w", f.profile, err)
		}
		in.ThresholdMgPerMl = p.Threshold()
	}
	return in, nil
}

// compute devuelve NoResult (sin error) si la entrada no es válida.
func compute(cfg dosing.Config, in dosing.Inputs) (dosing.Result, error) {
	res, err := dosing.Compute(cfg, in)
	if err != nil && !errors.Is(err, dosing.ErrInvalidInput) {
		return dosing.Result{}, err
	}
	return res, nil
}

func newCalcCmd(c *cli) *cobra.Command {
	var (
		flags  doseFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute reconstitution volume and doses per vial",
		Example: `  peplabel calc --vial 30 --dose 5 --units 25
  peplabel calc --vial 5 --dose 0.25 --concentration 2.5 --profile semaglutide`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svcs, closeFn, err := c.services()
			if err != nil {
				return err
			}
			defer closeFn()

			in, err := flags.inputs(svcs.Catalog)
			if err != nil {
				return err
			}
			res, err := compute(svcs.Dosing, in)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(dosing.ToResponse(res))
			}
			printDisplay(cmd.OutOrStdout(), res.Display())
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}

func printDisplay(w io.Writer, d dosing.Display) {
	fmt.Fprintf(w, "Reconstitution volume: %s\n", d.ReconstitutionVolume)
	fmt.Fprintf(w, "Total volume:          %s\n", d.TotalVolume)
	fmt.Fprintf(w, "Doses per vial:        %s\n", d.DosesPerVial)
	fmt.Fprintf(w, "Concentration:         %s\n", d.Concentration)
	fmt.Fprintf(w, "Units per dose:        %s\n", d.UnitsPerDose)
	for _, msg := range d.Warnings {
		fmt.Fprintf(w, "warning: %s\n", msg)
	}
	for _, msg := range d.Notes {
		fmt.Fprintf(w, "note: %s\n", msg)
	}
}
