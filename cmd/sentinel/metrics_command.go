package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sentinel/internal/metrics"
	"sentinel/internal/registry"
)

func newMetricsCommand(ctx *commandContext) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Write store gauges in the Prometheus textfile format",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(path)
			if target == "" {
				target = ctx.config.Metrics.TextfilePath
			}
			if target == "" {
				return fmt.Errorf("%w: no textfile path; pass --path or set metrics.textfile_path", registry.ErrInvalidRequest)
			}
			return ctx.withService(func(svc *registry.Service) error {
				stats, err := svc.Stats(cmd.Context())
				if err != nil {
					return err
				}
				exporter := metrics.NewExporter()
				exporter.Observe(stats, time.Now())
				if err := exporter.WriteTextfile(target); err != nil {
					return fmt.Errorf("write metrics: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote metrics to %s\n", target)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "Destination file (defaults to metrics.textfile_path)")
	return cmd
}
