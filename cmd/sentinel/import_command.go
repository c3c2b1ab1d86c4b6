package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"sentinel/internal/registry"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var (
		pathA     string
		pathB     string
		delimiter string
		encoding  string
		output    string
		resetOnly bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace branch snapshots from upstream exports and start a new cycle",
		Long: "Install fresh exports for one or both branches. The provisional ledger is cleared\n" +
			"in the same step; the event log is kept. Only administrators may import.\n" +
			"With --reset-only both snapshots are kept and only the cycle is reset.",
		RunE: func(cmd *cobra.Command, args []string) error {
			hasPaths := strings.TrimSpace(pathA) != "" || strings.TrimSpace(pathB) != ""
			switch {
			case resetOnly && hasPaths:
				return fmt.Errorf("%w: --reset-only cannot be combined with --a or --b", registry.ErrInvalidRequest)
			case !resetOnly && !hasPaths:
				return fmt.Errorf("%w: pass --a, --b or both, or --reset-only to start a new cycle", registry.ErrInvalidRequest)
			}
			agent, err := ctx.adminAgent()
			if err != nil {
				return err
			}
			cfg := ctx.config

			req := registry.ImportRequest{Agent: agent, Encoding: cfg.Import.Encoding, Delimiter: cfg.ImportDelimiter()}
			if value := strings.TrimSpace(encoding); value != "" {
				req.Encoding = value
			}
			if delimiter != "" {
				r, size := utf8.DecodeRuneInString(delimiter)
				if size != len(delimiter) || r == utf8.RuneError {
					return fmt.Errorf("%w: --delimiter must be a single character", registry.ErrInvalidRequest)
				}
				req.Delimiter = r
			}

			var closers []io.Closer
			defer func() {
				for _, c := range closers {
					_ = c.Close()
				}
			}()
			open := func(path string) (io.Reader, error) {
				path = strings.TrimSpace(path)
				if path == "" {
					return nil, nil
				}
				file, err := os.Open(path)
				if err != nil {
					return nil, fmt.Errorf("open export: %w", err)
				}
				closers = append(closers, file)
				return file, nil
			}
			if req.A, err = open(pathA); err != nil {
				return err
			}
			if req.B, err = open(pathB); err != nil {
				return err
			}

			return ctx.withService(func(svc *registry.Service) error {
				outcome, err := svc.ImportSnapshots(cmd.Context(), req)
				if err != nil && outcome.CycleID == "" {
					return err
				}
				if done, werr := writeStructured(cmd, output, outcome); done {
					if werr != nil {
						return werr
					}
					return err
				}
				printImport(cmd, svc, outcome)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&pathA, "a", "", "Export file for the first branch")
	cmd.Flags().StringVar(&pathB, "b", "", "Export file for the second branch")
	cmd.Flags().StringVar(&delimiter, "delimiter", "", "Field delimiter of the exports (defaults to import.delimiter)")
	cmd.Flags().BoolVar(&resetOnly, "reset-only", false, "Keep both snapshots and only clear the provisional ledger")
	cmd.Flags().StringVar(&encoding, "encoding", "", "Character encoding of the exports: utf-8, iso-8859-1 or windows-1252")
	addOutputFlag(cmd, &output)
	return cmd
}

func printImport(cmd *cobra.Command, svc *registry.Service, outcome registry.ImportOutcome) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	branches := svc.Branches()

	snapshot := func(replaced bool, rows int) (statusKind, string) {
		if !replaced {
			return statusInfo, "kept"
		}
		return statusOK, fmt.Sprintf("replaced (%d rows)", rows)
	}
	kind, message := snapshot(outcome.ReplacedA, outcome.RowsA)
	fmt.Fprintln(out, renderStatusLine(string(branches.A), kind, message, colorize))
	kind, message = snapshot(outcome.ReplacedB, outcome.RowsB)
	fmt.Fprintln(out, renderStatusLine(string(branches.B), kind, message, colorize))

	if outcome.ClearedUnreadable {
		fmt.Fprintln(out, renderStatusLine("Provisional", statusWarn, "unreadable ledger cleared", colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("Provisional", statusOK, fmt.Sprintf("%d entries cleared", len(outcome.Cleared)), colorize))
	}
	archived := statusOK
	if !outcome.Archived {
		archived = statusInfo
	}
	fmt.Fprintln(out, renderStatusLine("Archived", archived, yesNo(outcome.Archived), colorize))
	fmt.Fprintf(out, "%sCycle: %s\n", statusIndent, outcome.CycleID)
}
