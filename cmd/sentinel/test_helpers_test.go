package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sentinel/internal/config"
	"sentinel/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t,
		testsupport.WithAgents([]string{"ADMIN", "Mor", "Coumba"}, "ADMIN"),
		testsupport.WithArchive(true),
	)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv(agentEnvVar, "")
	t.Setenv("SENTINEL_DATA_DIR", "")

	configPath := filepath.Join(homeDir, ".config", "sentinel", "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "[paths]\ndata_dir = %q\nlog_dir = %q\n\n", cfg.Paths.DataDir, cfg.Paths.LogDir)
	fmt.Fprintf(&b, "[branches]\na = %q\nb = %q\n\n", cfg.Branches.A, cfg.Branches.B)
	fmt.Fprintf(&b, "[store]\nlock_timeout_seconds = %d\n\n", cfg.Store.LockTimeoutSeconds)
	fmt.Fprintf(&b, "[archive]\nenabled = %t\n\n", cfg.Archive.Enabled)
	fmt.Fprintf(&b, "[metrics]\ntextfile_path = %q\n\n", cfg.Metrics.TextfilePath)
	b.WriteString("[logging]\nformat = \"json\"\nlevel = \"error\"\n")
	for _, agent := range cfg.Agents {
		fmt.Fprintf(&b, "\n[[agents]]\nname = %q\nadmin = %t\n", agent.Name, agent.Admin)
	}
	testsupport.WriteFile(t, path, b.String())
}

func (env *cliTestEnv) writeExport(t *testing.T, name string, rows ...[]string) string {
	t.Helper()
	return testsupport.WriteExport(t, filepath.Join(env.baseDir, "exports"), name, testsupport.ExportHeader, rows...)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
