package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/check"
	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/registry"
)

func newProfilesCommand() *cobra.Command {
	var profilesPath string

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List known compliance profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := registry.New(check.Builtin("/"))
			if err := reg.LoadProfiles(profilesPath); err != nil {
				return asConfigExit(err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tCHECKS\tDESCRIPTION")
			for _, p := range reg.Profiles() {
				defs, err := reg.Checks(p.Name)
				if err != nil {
					return asConfigExit(err)
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\n", p.Name, len(defs), p.Description)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&profilesPath, "profiles", "", "Custom profile definitions (YAML file or directory)")

	return cmd
}
