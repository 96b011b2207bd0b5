package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bmohaisen/report-portfolio/internal/chart"
	"github.com/bmohaisen/report-portfolio/internal/report"
)

// Execute runs the CLI
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Serve the engineering report portfolio page",
		Long: `portfolio renders a skim-first page of an engineering report:
collapsible sections with tables, a pie chart and figures.

Examples:
  portfolio serve --port 8080
  portfolio validate --strict
  portfolio export -o dist/index.html
  portfolio chart phase1-data -o composition.png`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	serve := newServeCmd()
	rootCmd.AddCommand(serve, newValidateCmd(), newExportCmd(), newChartCmd())
	// Running without a subcommand serves the site.
	rootCmd.RunE = serve.RunE
	rootCmd.Flags().AddFlagSet(serve.Flags())
	return rootCmd
}

func loadForCommand(cmd *cobra.Command) (*Config, *zap.Logger, error) {
	cfg, err := LoadConfig(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	log, err := newLogger(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadForCommand(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()
			return runServer(cfg, log)
		},
	}
	cmd.Flags().String("port", "", "listen port (env PORT)")
	cmd.Flags().String("mode", "", "gin mode: debug, release or test")
	cmd.Flags().String("templates", "", "templates directory")
	cmd.Flags().String("images", "", "figure images directory")
	cmd.Flags().String("db", "", "SQLite database path for visitor tracking")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the report content for structural problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			violations := report.Validate(report.Default())
			out := cmd.OutOrStdout()
			for _, v := range violations {
				fmt.Fprintf(out, "warning: %s\n", v)
			}
			if len(violations) == 0 {
				fmt.Fprintln(out, "content OK")
				return nil
			}
			if strict {
				return fmt.Errorf("%d content problem(s)", len(violations))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when problems are found")
	return cmd
}

func newExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the page to a static HTML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadForCommand(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			page := report.Default()
			logViolations(log, page)

			tmpl, err := loadTemplates(cfg.Server.TemplatesDir)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			defer f.Close()

			if err := exportPage(f, tmpl, page, cfg.Server.ChartSize, time.Now()); err != nil {
				return err
			}
			log.Info("Page exported", zap.String("file", output))
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "dist/index.html", "output file")
	cmd.Flags().String("templates", "", "templates directory")
	return cmd
}

func newChartCmd() *cobra.Command {
	var (
		output string
		size   int
	)
	cmd := &cobra.Command{
		Use:   "chart <section-id>",
		Short: "Write a section's pie chart as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page := report.Default()
			s, ok := page.Section(args[0])
			if !ok || s.Chart == nil {
				return fmt.Errorf("section %q has no chart (sections with charts: %s)",
					args[0], strings.Join(page.Charts(), ", "))
			}
			if output == "" {
				output = s.ID + ".png"
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			defer f.Close()
			if err := chart.WritePiePNG(f, s.Chart.Data, size); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <section-id>.png)")
	cmd.Flags().IntVar(&size, "size", 400, "image edge in pixels")
	return cmd
}
