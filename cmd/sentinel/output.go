package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// addOutputFlag registers -o and checks it before the command runs, so a bad
// format never reaches the ledger.
func addOutputFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "output", "o", outputTable, "Output format: table, json or yaml")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		format, err := normalizeOutput(*target)
		if err != nil {
			return err
		}
		*target = format
		return nil
	}
}

func normalizeOutput(format string) (string, error) {
	switch value := strings.ToLower(strings.TrimSpace(format)); value {
	case "", outputTable:
		return outputTable, nil
	case outputJSON, outputYAML:
		return value, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (expected table, json or yaml)", format)
	}
}

// writeStructured encodes v for the json and yaml formats. It reports false
// for the table format so the caller renders its own view.
func writeStructured(cmd *cobra.Command, format string, v any) (bool, error) {
	switch format {
	case outputJSON:
		return true, writeJSON(cmd, v)
	case outputYAML:
		return true, writeYAML(cmd, v)
	default:
		return false, nil
	}
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(cmd *cobra.Command, v any) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
