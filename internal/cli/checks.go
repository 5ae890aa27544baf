package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/check"
	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/registry"
	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/severity"
)

func newChecksCommand() *cobra.Command {
	var (
		profile      string
		profilesPath string
		minSeverity  string
	)

	cmd := &cobra.Command{
		Use:   "checks",
		Short: "List available checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := registry.New(check.Builtin("/"))
			if err := reg.LoadProfiles(profilesPath); err != nil {
				return asConfigExit(err)
			}

			defs := reg.All()
			if profile != "" {
				var err error
				defs, err = reg.Checks(profile)
				if err != nil {
					return asConfigExit(err)
				}
			}

			threshold := ""
			if minSeverity != "" {
				v, err := severity.Normalize(minSeverity)
				if err != nil {
					return asConfigExit(err)
				}
				threshold = v
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSEVERITY\tCATEGORY\tNAME")
			for _, d := range defs {
				if threshold != "" && !severity.MeetsOrAbove(d.Severity, threshold) {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.ID, d.Severity, d.Category, d.Name)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "Limit to a profile's checks")
	cmd.Flags().StringVar(&profilesPath, "profiles", "", "Custom profile definitions (YAML file or directory)")
	cmd.Flags().StringVar(&minSeverity, "min-severity", "", "Only list checks at or above this severity")

	return cmd
}
