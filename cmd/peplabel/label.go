package main

import (
	"fmt"
	"io"
	"os"

	"peptide-labels/internal/domain/labels"

	"github.com/spf13/cobra"
)

func newLabelCmd(c *cli) *cobra.Command {
	var (
		flags     doseFlags
		text      string
		date      string
		url       string
		variant   string
		symbology string
		format    string
		scale     int
		out       string
		saved     bool
	)

	cmd := &cobra.Command{
		Use:   "label",
		Short: "Export a vial label (PNG or SVG)",
		Example: `  peplabel label --text Tirzepatide --vial 30 --dose 5 --units 25 --out tirz.png
  peplabel label --saved --variant unreconstituted --format svg --out -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, ok := labels.ParseVariant(variant)
			if !ok {
				return fmt.Errorf("--variant must be reconstituted or unreconstituted, got %q", variant)
			}
			f, ok := labels.ParseFormat(format)
			if !ok {
				return fmt.Errorf("--format must be png or svg, got %q", format)
			}

			var in labels.BuildInput
			if saved {
				svcs, _, closeFn, err := c.persistentServices(cmd.Context())
				if err != nil {
					return err
				}
				defer closeFn()

				st := c.loadState(cmd.Context(), svcs)
				p := svcs.Catalog.Resolve(st.PeptideType)
				dose := st.DosingInputs(p)
				res, err := compute(svcs.Dosing, dose)
				if err != nil {
					return err
				}
				sym, ok := labels.ParseSymbology(st.Symbology)
				if !ok {
					sym = labels.SymbologyQR
				}
				if cmd.Flags().Changed("symbology") {
					if sym, ok = labels.ParseSymbology(symbology); !ok {
						return fmt.Errorf("--symbology must be qr or datamatrix, got %q", symbology)
					}
				}
				in = labels.BuildInput{
					Content:   labels.Content{FreeText: st.LabelText, Date: st.LabelDate, TargetURL: st.LabelURL()},
					Variant:   v,
					Symbology: sym,
					Scale:     scale,
					Dose:      dose,
					Result:    res,
				}
				return export(cmd, svcs.Labels, in, f, out)
			}

			svcs, closeFn, err := c.services()
			if err != nil {
				return err
			}
			defer closeFn()

			sym, ok := labels.ParseSymbology(symbology)
			if !ok {
				return fmt.Errorf("--symbology must be qr or datamatrix, got %q", symbology)
			}
			dose, err := flags.inputs(svcs.Catalog)
			if err != nil {
				return err
			}
			res, err := compute(svcs.Dosing, dose)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("date") {
				date = c.today()
			}
			in = labels.BuildInput{
				Content:   labels.Content{FreeText: text, Date: date, TargetURL: url},
				Variant:   v,
				Symbology: sym,
				Scale:     scale,
				Dose:      dose,
				Result:    res,
			}
			return export(cmd, svcs.Labels, in, f, out)
		},
	}

	flags.register(cmd)
	fs := cmd.Flags()
	fs.StringVar(&text, "text", "", "first line (default \"Peptide\")")
	fs.StringVar(&date, "date", "", "date YYYY-MM-DD, empty for none (default today)")
	fs.StringVar(&url, "url", "", "URL encoded in the barcode (default from config)")
	fs.StringVar(&variant, "variant", "reconstituted", "reconstituted or unreconstituted")
	fs.StringVar(&symbology, "symbology", "qr", "qr or datamatrix")
	fs.StringVar(&format, "format", "png", "png or svg")
	fs.IntVar(&scale, "scale", 0, "pixel scale (default: print scale from config)")
	fs.StringVarP(&out, "out", "o", "", "output file, - for stdout (default label.<format>)")
	fs.BoolVar(&saved, "saved", false, "use the saved settings of --client instead of flags")
	return cmd
}

func export(cmd *cobra.Command, svc *labels.Service, in labels.BuildInput, f labels.Format, out string) error {
	if out == "" {
		out = "label." + string(f)
	}

	var w io.Writer = cmd.OutOrStdout()
	if out != "-" {
		file, err := os.Create(out)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}

	l, err := svc.Export(cmd.Context(), in, f, w)
	if err != nil {
		return err
	}
	if out != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%dx%d px)\n", out, l.TotalWidthPx, l.TotalHeightPx)
	}
	return nil
}
