package main

import (
	"fmt"
	"io"
	"strings"

	"peptide-labels/internal/domain/settings"

	"github.com/spf13/cobra"
)

func newSettingsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the saved form of a client",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the saved settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				svcs, _, closeFn, err := c.persistentServices(cmd.Context())
				if err != nil {
					return err
				}
				defer closeFn()

				printState(cmd.OutOrStdout(), c.loadState(cmd.Context(), svcs))
				return nil
			},
		},
		&cobra.Command{
			Use:     "set key=value...",
			Short:   "Change settings and recalculate",
			Example: `  peplabel settings set peptideType=tirzepatide vialQuantity=10 labelText=Tirz`,
			Args:    cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				svcs, _, closeFn, err := c.persistentServices(cmd.Context())
				if err != nil {
					return err
				}
				defer closeFn()

				st := c.loadState(cmd.Context(), svcs)
				// editar units o concentration lo vuelve el campo que manda,
				// salvo que venga drivingField explícito
				driving := ""
				for _, arg := range args {
					key, value, ok := strings.Cut(arg, "=")
					if !ok {
						return fmt.Errorf("expected key=value, got %q", arg)
					}
					key = strings.TrimSpace(key)
					if err := st.Edit(key, value); err != nil {
						return err
					}
					if key == settings.KeyDrivingField {
						driving = value
					}
				}
				if driving != "" {
					if err := st.Set(settings.KeyDrivingField, driving); err != nil {
						return err
					}
				}

				sess, err := svcs.Sessions.Session(c.client)
				if err != nil {
					return err
				}
				out, _, err := sess.Apply(cmd.Context(), st)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "Profile: %s\n", out.Profile.Name)
				fmt.Fprintf(w, "URL:     %s\n", out.URL)
				if out.ShortURLError != "" {
					fmt.Fprintf(w, "warning: %s\n", out.ShortURLError)
				}
				printDisplay(w, out.Result.Display())
				return nil
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Delete the saved settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				svcs, _, closeFn, err := c.persistentServices(cmd.Context())
				if err != nil {
					return err
				}
				defer closeFn()

				svcs.Settings.Reset(cmd.Context(), c.client)
				fmt.Fprintf(cmd.OutOrStdout(), "settings of %q reset\n", c.client)
				return nil
			},
		},
		&cobra.Command{
			Use:   "clients",
			Short: "List clients with saved settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				_, repo, closeFn, err := c.persistentServices(cmd.Context())
				if err != nil {
					return err
				}
				defer closeFn()

				names, err := repo.Namespaces(cmd.Context())
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Fprintln(cmd.OutOrStdout(), n)
				}
				return nil
			},
		},
	)
	return cmd
}

func printState(w io.Writer, st settings.State) {
	values := st.Values()
	for _, key := range settings.AllKeys {
		fmt.Fprintf(w, "%s=%s\n", key, values[key])
	}
}
