package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"sentinel/internal/roster"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
)

const (
	statusLabelWidth = 16
	statusIndent     = "  "
	ansiReset        = "\x1b[0m"
)

var statusStyles = map[statusKind]struct {
	label string
	color string
}{
	statusInfo: {"INFO", "\x1b[34m"},
	statusOK:   {"OK", "\x1b[32m"},
	statusWarn: {"WARN", "\x1b[33m"},
}

// renderStatusLine prints "  <label>: [KIND] message" with the label padded.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style := statusStyles[kind]
	status := "[" + style.label + "]"
	if message != "" {
		status += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", status)
	if colorize {
		return style.color + line + ansiReset
	}
	return line
}

func renderSectionHeader(title string, colorize bool) []string {
	heading := "== " + strings.TrimSpace(title) + " =="
	lines := []string{heading, strings.Repeat("-", len(heading))}
	if colorize {
		for i := range lines {
			lines[i] = statusStyles[statusInfo].color + lines[i] + ansiReset
		}
	}
	return lines
}

// shouldColorize reports whether w is an interactive terminal.
func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

var recordColumns = rightAligned(columns("Branch", "License", "Name", "Agent", "Trips", "Phone", "Activity"), 4)

func recordRows(records []roster.DriverRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		activity := "-"
		if at := r.ActivityAt(); at != nil {
			activity = formatTime(*at)
		}
		rows = append(rows, []string{
			string(r.Branch), r.LicenseID, r.FullName, r.ResponsibleAgent,
			strconv.Itoa(r.CompletedTrips), r.Phone, activity,
		})
	}
	return rows
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}
