package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sentinel/internal/registry"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit   int
		cycleID string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show archived import cycles",
		Long: "List archived import cycles, newest first. With --cycle, show the provisional\n" +
			"entries that import cleared.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *registry.Service) error {
				if id := strings.TrimSpace(cycleID); id != "" {
					entries, err := svc.ClearedEntries(cmd.Context(), id)
					if err != nil {
						return err
					}
					if done, err := writeStructured(cmd, output, entries); done {
						return err
					}
					out := cmd.OutOrStdout()
					if len(entries) == 0 {
						fmt.Fprintf(out, "Cycle %s cleared no provisional entries\n", id)
						return nil
					}
					fmt.Fprintln(out, renderTable("Cleared by "+id, recordColumns, recordRows(entries)))
					return nil
				}

				cycles, err := svc.ImportHistory(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if done, err := writeStructured(cmd, output, cycles); done {
					return err
				}
				out := cmd.OutOrStdout()
				if len(cycles) == 0 {
					fmt.Fprintln(out, "No imports archived")
					return nil
				}
				branches := svc.Branches()
				rows := make([][]string, 0, len(cycles))
				for _, cycle := range cycles {
					rows = append(rows, []string{
						cycle.ID,
						formatTime(cycle.ImportedAt),
						cycle.ImportedBy,
						snapshotCell(cycle.ReplacedA, cycle.RowsA),
						snapshotCell(cycle.ReplacedB, cycle.RowsB),
						clearedCell(cycle.ClearedEntries, cycle.ClearedUnreadable),
					})
				}
				fmt.Fprintln(out, renderTable("Import history",
					rightAligned(columns("Cycle", "Imported", "By", string(branches.A), string(branches.B), "Cleared"), 3, 4, 5),
					rows,
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of cycles to list")
	cmd.Flags().StringVar(&cycleID, "cycle", "", "Show the entries cleared by one cycle")
	addOutputFlag(cmd, &output)
	return cmd
}

func snapshotCell(replaced bool, rows int) string {
	if !replaced {
		return "kept"
	}
	return fmt.Sprintf("%d", rows)
}

func clearedCell(count int, unreadable bool) string {
	if unreadable {
		return "unreadable"
	}
	return fmt.Sprintf("%d", count)
}
