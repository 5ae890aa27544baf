package cli

import "github.com/spf13/cobra"

// BuildVersion is overridden by release tooling (e.g. goreleaser).
var BuildVersion = "0.1.0-dev"

func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hardscan",
		Short:         "Linux hardening and compliance scanner",
		Long:          "hardscan runs a battery of hardening checks against a Linux host or image root and scores the result against a compliance profile.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.AddCommand(
		newScanCommand(),
		newChecksCommand(),
		newProfilesCommand(),
		newReportCommand(),
		newWaiverCommand(),
		newVersionCommand(),
	)

	return cmd
}
