package cli

import (
	"github.com/spf13/cobra"

	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/config"
)

func newReportCommand() *cobra.Command {
	var (
		input  string
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Convert a JSON scan report to another format",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return &ExitError{Code: ExitConfig, Message: "--input is required"}
			}
			if !config.SupportedFormat(format) {
				return &ExitError{Code: ExitConfig, Message: "unsupported output format: " + format}
			}
			report, err := loadReport(input)
			if err != nil {
				return &ExitError{Code: ExitConfig, Message: err.Error()}
			}
			if _, err := writeReport(report, format, out, cmd.OutOrStdout()); err != nil {
				return &ExitError{Code: ExitInternal, Message: err.Error()}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "JSON report produced by scan")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Target format: text|json|csv|html|xml")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file path (default stdout)")

	return cmd
}
