package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sentinel/internal/ledger"
	"sentinel/internal/registry"
	"sentinel/internal/roster"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "check <license-id>",
		Short: "Look a license id up across both branches and the provisional ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *registry.Service) error {
				outcome, err := svc.CheckIdentity(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if done, err := writeStructured(cmd, output, outcome); done {
					return err
				}
				printOutcome(cmd, outcome)
				return nil
			})
		},
	}
	addOutputFlag(cmd, &output)
	return cmd
}

func printOutcome(cmd *cobra.Command, outcome registry.Outcome) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	if outcome.Free() {
		fmt.Fprintln(out, renderStatusLine(outcome.LicenseID, statusOK, "free: no branch knows this license", colorize))
		return
	}
	owner := outcome.Owner
	message := fmt.Sprintf("duplicate: owned by %s (%s, %d trips, agent %s)",
		owner.Branch, owner.FullName, owner.CompletedTrips, owner.ResponsibleAgent)
	fmt.Fprintln(out, renderStatusLine(outcome.LicenseID, statusWarn, message, colorize))
	if len(outcome.Matches) > 1 {
		fmt.Fprintf(out, "%s%d matches\n", statusIndent, len(outcome.Matches))
	}
	fmt.Fprintln(out, renderTable("", recordColumns, recordRows(outcome.Matches)))
}

func newRegisterCommand(ctx *commandContext) *cobra.Command {
	var (
		branch string
		name   string
		phone  string
		trips  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "register <license-id>",
		Short: "Register a new driver when the license id is free",
		Long: "Register a new driver in the given branch. The license id is looked up first;\n" +
			"when any branch or provisional entry already carries it, nothing is recorded.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, err := ctx.agent()
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *registry.Service) error {
				event, outcome, err := svc.RegisterIfFree(cmd.Context(), registry.Registration{
					Agent:          agent,
					LicenseID:      args[0],
					Branch:         roster.Branch(branch),
					FullName:       name,
					Phone:          phone,
					CompletedTrips: trips,
				})
				if err != nil {
					if !outcome.Free() && outcome.Owner != nil && output == outputTable {
						printOutcome(cmd, outcome)
					}
					return err
				}
				if done, err := writeStructured(cmd, output, event); done {
					return err
				}
				out := cmd.OutOrStdout()
				message := fmt.Sprintf("registered in %s by %s", event.TargetBranch, event.ActingAgent)
				fmt.Fprintln(out, renderStatusLine(event.LicenseID, statusOK, message, shouldColorize(out)))
				fmt.Fprintf(out, "%sEvent: %s\n", statusIndent, event.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "Branch recruiting the driver")
	cmd.Flags().StringVar(&name, "name", "", "Driver full name")
	cmd.Flags().StringVar(&phone, "phone", "", "Driver phone number")
	cmd.Flags().IntVar(&trips, "trips", 0, "Completed trip count, when known")
	_ = cmd.MarkFlagRequired("branch")
	addOutputFlag(cmd, &output)
	return cmd
}

func newTransferCommand(ctx *commandContext) *cobra.Command {
	var (
		reasonCode string
		detail     string
		output     string
	)

	reasonCodes := make([]string, 0, len(registry.TransferReasons()))
	for _, reason := range registry.TransferReasons() {
		reasonCodes = append(reasonCodes, fmt.Sprintf("%s (%s)", reason, reason.Label()))
	}

	cmd := &cobra.Command{
		Use:   "transfer <license-id>",
		Short: "Request the transfer of a known driver to the other branch",
		Long: "Record a transfer request for the driver owning the license id. The owner is the\n" +
			"matching row with the most completed trips; the request moves it to the other branch.\n\n" +
			"Reasons: " + strings.Join(reasonCodes, ", "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, err := ctx.agent()
			if err != nil {
				return err
			}
			reason, err := registry.FormatReason(reasonCode, detail)
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *registry.Service) error {
				receipt, err := svc.RequestTransfer(cmd.Context(), agent, args[0], reason)
				if err != nil {
					return err
				}
				if done, err := writeStructured(cmd, output, receipt); done {
					return err
				}
				printReceipt(cmd, receipt)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&reasonCode, "reason", "r", "", "Reason code")
	cmd.Flags().StringVar(&detail, "detail", "", "Free-text detail appended to the reason")
	_ = cmd.MarkFlagRequired("reason")
	addOutputFlag(cmd, &output)
	return cmd
}

func printReceipt(cmd *cobra.Command, receipt registry.TransferReceipt) {
	out := cmd.OutOrStdout()
	for _, line := range renderSectionHeader("Transfer request receipt", shouldColorize(out)) {
		fmt.Fprintln(out, line)
	}
	event := receipt.Event
	rows := [][]string{
		{"Date", formatTime(event.Timestamp)},
		{"Driver", event.DriverName},
		{"License", event.LicenseID},
		{"Former branch", string(receipt.FormerBranch)},
		{"New branch", string(receipt.NewBranch)},
		{"Responsible agent", event.ResponsibleAgent},
		{"Requested by", event.ActingAgent},
		{"Reason", event.Reason},
		{"Reference", event.ID},
	}
	for _, row := range rows {
		fmt.Fprintf(out, "%s%-*s %s\n", statusIndent, statusLabelWidth+2, row[0]+":", row[1])
	}
}

func eventRows(events []ledger.EventRecord) [][]string {
	rows := make([][]string, 0, len(events))
	for _, event := range events {
		rows = append(rows, []string{
			formatTime(event.Timestamp),
			event.LicenseID,
			event.DriverName,
			string(event.SourceBranch),
			string(event.TargetBranch),
			event.ResponsibleAgent,
			event.ActingAgent,
			event.Reason,
		})
	}
	return rows
}
