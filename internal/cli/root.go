package cli

import (
	"github.com/spf13/cobra"

	"github.com/cruffinoni/etch/internal/config"
	"github.com/cruffinoni/etch/internal/logging"
)

// NewRootCmd wires CLI flags to configuration and executes the render run.
func NewRootCmd() *cobra.Command {
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:           "etch",
		Short:         "Render etch templates against sidecar data files",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logging.Configure(cfg.Verbose)
			return runRender(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.In, "in", "", "Input root directory containing templates")
	cmd.Flags().StringVar(&cfg.Out, "out", "", "Output root directory for rendered files")
	cmd.Flags().StringVar(&cfg.Glob, "glob", cfg.Glob, "Glob pattern relative to --in (supports **)")
	cmd.Flags().StringVar(&cfg.Ext, "ext", cfg.Ext, "Rendered file extension (example: .html)")
	cmd.Flags().StringVar(&cfg.DataRoot, "data-root", cfg.DataRoot, "Root of sidecar JSON/YAML data files")
	cmd.Flags().BoolVar(&cfg.Check, "check", cfg.Check, "Compile templates without rendering or writing output")
	cmd.Flags().BoolVar(&cfg.Strict, "strict", cfg.Strict, "Stop at the first failing template")
	cmd.Flags().BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Enable debug logging")
	cmd.Flags().StringVar(&cfg.ReportJSON, "report-json", "", "Optional JSON report output path")
	cmd.Flags().StringVar(&cfg.ReportCSV, "report-csv", "", "Optional CSV report output path")

	_ = cmd.MarkFlagRequired("in")

	return cmd
}
