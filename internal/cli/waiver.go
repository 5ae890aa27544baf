package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/check"
	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/registry"
	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/waiver"
)

func newWaiverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "waiver",
		Short: "Manage accepted-risk waivers",
	}
	cmd.AddCommand(newWaiverAddCommand(), newWaiverListCommand())
	return cmd
}

func newWaiverAddCommand() *cobra.Command {
	var (
		path    string
		checkID string
		reason  string
		expires string
		addedBy string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Waive a check",
		RunE: func(cmd *cobra.Command, args []string) error {
			if checkID == "" || reason == "" {
				return &ExitError{Code: ExitConfig, Message: "--check and --reason are required"}
			}
			reg := registry.New(check.Builtin("/"))
			if _, err := reg.ByID(checkID); err != nil {
				return &ExitError{Code: ExitConfig, Message: err.Error()}
			}

			current, err := waiver.Load(path)
			if err != nil {
				return &ExitError{Code: ExitConfig, Message: err.Error()}
			}
			updated := waiver.Upsert(current, waiver.Entry{
				CheckID:   checkID,
				Reason:    reason,
				ExpiresAt: expires,
				AddedBy:   addedBy,
			})
			if err := waiver.Save(path, updated); err != nil {
				return &ExitError{Code: ExitInternal, Message: err.Error()}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "waived %s\n", checkID)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "waivers", ".hardscan/waivers.json", "Waiver file path")
	cmd.Flags().StringVar(&checkID, "check", "", "Check ID to waive")
	cmd.Flags().StringVar(&reason, "reason", "", "Why the risk is accepted")
	cmd.Flags().StringVar(&expires, "expires", "", "Expiry date (YYYY-MM-DD, empty = never)")
	cmd.Flags().StringVar(&addedBy, "added-by", "", "Who accepted the risk")

	return cmd
}

func newWaiverListCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List waivers",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := waiver.Load(path)
			if err != nil {
				return &ExitError{Code: ExitConfig, Message: err.Error()}
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CHECK\tEXPIRES\tADDED BY\tREASON")
			for _, e := range f.Entries {
				expires := e.ExpiresAt
				if expires == "" {
					expires = "never"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.CheckID, expires, e.AddedBy, e.Reason)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&path, "waivers", ".hardscan/waivers.json", "Waiver file path")

	return cmd
}
