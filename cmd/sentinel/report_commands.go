package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sentinel/internal/registry"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Duplicate, agent and transfer reports",
	}
	reportCmd.AddCommand(newReportDuplicatesCommand(ctx))
	reportCmd.AddCommand(newReportAgentsCommand(ctx))
	reportCmd.AddCommand(newReportTransfersCommand(ctx))
	return reportCmd
}

func newReportDuplicatesCommand(ctx *commandContext) *cobra.Command {
	var (
		flags  windowFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "duplicates",
		Short: "List every row whose license id appears more than once",
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := flags.window(time.Now())
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *registry.Service) error {
				rows, err := svc.DuplicatesReport(cmd.Context(), window)
				if err != nil {
					return err
				}
				if done, err := writeStructured(cmd, output, rows); done {
					return err
				}
				out := cmd.OutOrStdout()
				if len(rows) == 0 {
					fmt.Fprintln(out, "No duplicated license ids")
					return nil
				}
				fmt.Fprintln(out, renderTable("Duplicates", recordColumns, recordRows(rows)))
				return nil
			})
		},
	}
	addWindowFlags(cmd, &flags)
	addOutputFlag(cmd, &output)
	return cmd
}

func newReportAgentsCommand(ctx *commandContext) *cobra.Command {
	var (
		flags  windowFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Score agents by inscriptions minus transfers against their drivers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.adminAgent(); err != nil {
				return err
			}
			window, err := flags.window(time.Now())
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *registry.Service) error {
				scores, err := svc.AgentPerformance(cmd.Context(), window)
				if err != nil {
					return err
				}
				if done, err := writeStructured(cmd, output, scores); done {
					return err
				}
				rows := make([][]string, 0, len(scores))
				for _, score := range scores {
					rows = append(rows, []string{
						score.Agent,
						fmt.Sprintf("%d", score.Inscriptions),
						fmt.Sprintf("%d", score.TransfersAgainst),
						fmt.Sprintf("%d", score.Score),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable("Agent performance",
					rightAligned(columns("Agent", "Inscriptions", "Transfers against", "Score"), 1, 2, 3),
					rows,
				))
				return nil
			})
		},
	}
	addWindowFlags(cmd, &flags)
	addOutputFlag(cmd, &output)
	return cmd
}

func newReportTransfersCommand(ctx *commandContext) *cobra.Command {
	var (
		flags  windowFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "transfers",
		Short: "List recorded transfer requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := flags.window(time.Now())
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *registry.Service) error {
				events, err := svc.Transfers(cmd.Context(), window)
				if err != nil {
					return err
				}
				if done, err := writeStructured(cmd, output, events); done {
					return err
				}
				out := cmd.OutOrStdout()
				if len(events) == 0 {
					fmt.Fprintln(out, "No transfer requests")
					return nil
				}
				fmt.Fprintln(out, renderTable("Transfers",
					columns("Date", "License", "Driver", "From", "To", "Responsible", "Requested by", "Reason"),
					eventRows(events),
				))
				return nil
			})
		},
	}
	addWindowFlags(cmd, &flags)
	addOutputFlag(cmd, &output)
	return cmd
}
