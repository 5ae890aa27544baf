package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/check"
	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/config"
	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/model"
	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/output"
	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/publish"
	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/registry"
	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/scan"
	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/sysinfo"
	"github.com/add54/Linux-Hardening-Compliance-Scanner/internal/waiver"
)

type scanOptions struct {
	ConfigPath   string
	Root         string
	Format       string
	Output       string
	Exclude      []string
	IncludeOnly  []string
	Fix          bool
	Timeout      int
	Workers      int
	ProfilesPath string
	WaiversPath  string
	Upload       bool
	Quiet        bool
}

func newScanCommand() *cobra.Command {
	opts := &scanOptions{}

	cmd := &cobra.Command{
		Use:   "scan [profile]",
		Short: "Run a compliance scan",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return asConfigExit(err)
			}
			mergeFlags(cmd, opts, &cfg)
			if len(args) == 1 {
				cfg.Profile = args[0]
			}
			if err := config.Validate(cfg); err != nil {
				return asConfigExit(err)
			}

			if _, err := os.Stat(cfg.Root); err != nil {
				return &ExitError{Code: ExitInit, Message: fmt.Sprintf("scan root %s: %v", cfg.Root, err)}
			}

			reg := registry.New(check.Builtin(cfg.Root))
			if err := reg.LoadProfiles(cfg.ProfilesPath); err != nil {
				return asConfigExit(err)
			}
			checks, err := reg.Checks(cfg.Profile)
			if err != nil {
				return asConfigExit(err)
			}
			waivers, err := waiver.Load(cfg.WaiversPath)
			if err != nil {
				return asConfigExit(err)
			}

			var progress func(model.Outcome)
			if !opts.Quiet {
				progress = func(o model.Outcome) {
					fmt.Fprintf(cmd.ErrOrStderr(), "%-7s %s %s\n", "["+string(o.Status)+"]", o.CheckID, o.Name)
				}
			}

			res, err := scan.Run(cmd.Context(), scan.Options{
				Profile:     cfg.Profile,
				Checks:      checks,
				Exclude:     cfg.Exclude,
				IncludeOnly: cfg.IncludeOnly,
				Waivers:     waivers,
				Fix:         cfg.Fix,
				Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
				Workers:     cfg.Workers,
				Host:        sysinfo.Collect(),
				Now:         time.Now().UTC(),
				Progress:    progress,
			})
			if err != nil {
				return &ExitError{Code: ExitInternal, Message: err.Error()}
			}

			path, err := writeReport(res.Report, cfg.Format, cfg.Output, cmd.OutOrStdout())
			if err != nil {
				return &ExitError{Code: ExitInternal, Message: err.Error()}
			}
			if cfg.Output != "" && !opts.Quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "report written: %s\n", cfg.Output)
			}

			if opts.Upload {
				if err := uploadReport(cmd.Context(), cfg, res.Report, path); err != nil {
					return &ExitError{Code: ExitInternal, Message: "upload report: " + err.Error()}
				}
				if !opts.Quiet {
					fmt.Fprintf(cmd.ErrOrStderr(), "report uploaded to bucket %s\n", cfg.Publish.Bucket)
				}
			}

			if res.ShouldFail {
				return &ExitError{Code: ExitFindings}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", ".hardscan/config.yaml", "Config file path")
	cmd.Flags().StringVar(&opts.Root, "root", "/", "Filesystem root to scan (a mount point for offline images)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "text", "Output format: text|json|csv|html|xml")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output file path (default stdout)")
	cmd.Flags().StringSliceVar(&opts.Exclude, "exclude", nil, "Check IDs or patterns to skip (e.g. SSH-004,FS-*)")
	cmd.Flags().StringSliceVar(&opts.IncludeOnly, "include-only", nil, "Run only the listed check IDs or patterns")
	cmd.Flags().BoolVar(&opts.Fix, "fix", false, "Attempt remediation for failing checks")
	cmd.Flags().IntVar(&opts.Timeout, "timeout", 30, "Per-check timeout in seconds")
	cmd.Flags().IntVar(&opts.Workers, "workers", 1, "Concurrent check workers (1 = sequential)")
	cmd.Flags().StringVar(&opts.ProfilesPath, "profiles", "", "Custom profile definitions (YAML file or directory)")
	cmd.Flags().StringVar(&opts.WaiversPath, "waivers", "", "Waiver file path")
	cmd.Flags().BoolVar(&opts.Upload, "upload", false, "Upload the report to the configured S3 bucket")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Suppress progress output")

	return cmd
}

// mergeFlags lets explicit flags win over config-file and env values.
func mergeFlags(cmd *cobra.Command, opts *scanOptions, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("root") {
		cfg.Root = opts.Root
	}
	if f.Changed("format") {
		cfg.Format = opts.Format
	}
	if f.Changed("output") {
		cfg.Output = opts.Output
	}
	if f.Changed("exclude") {
		cfg.Exclude = opts.Exclude
	}
	if f.Changed("include-only") {
		cfg.IncludeOnly = opts.IncludeOnly
	}
	if f.Changed("fix") {
		cfg.Fix = opts.Fix
	}
	if f.Changed("timeout") {
		cfg.TimeoutSeconds = opts.Timeout
	}
	if f.Changed("workers") {
		cfg.Workers = opts.Workers
	}
	if f.Changed("profiles") {
		cfg.ProfilesPath = opts.ProfilesPath
	}
	if f.Changed("waivers") {
		cfg.WaiversPath = opts.WaiversPath
	}
}

// uploadReport needs a file on disk; when the report went to stdout it is
// rendered again into a temp file first.
func uploadReport(ctx context.Context, cfg config.Config, report model.Report, renderedPath string) error {
	path := renderedPath
	if path == "" {
		tmp, err := os.CreateTemp("", "hardscan-*."+fileExtension(cfg.Format))
		if err != nil {
			return err
		}
		defer os.Remove(tmp.Name())
		if err := output.Write(report, cfg.Format, tmp); err != nil {
			tmp.Close()
			return err
		}
		if err := tmp.Close(); err != nil {
			return err
		}
		path = tmp.Name()
	}

	key := report.ScanID + "." + fileExtension(cfg.Format)
	return publish.Upload(ctx, publish.Options{
		Endpoint:  cfg.Publish.Endpoint,
		AccessKey: cfg.Publish.AccessKey,
		SecretKey: cfg.Publish.SecretKey,
		Bucket:    cfg.Publish.Bucket,
		UseSSL:    cfg.Publish.UseSSL,
	}, key, path, output.ContentType(cfg.Format))
}

func fileExtension(format string) string {
	if format == "text" {
		return "txt"
	}
	return format
}
