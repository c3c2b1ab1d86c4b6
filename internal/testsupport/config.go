package testsupport

import (
	"path/filepath"
	"testing"

	"sentinel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Metrics.TextfilePath = filepath.Join(base, "data", "sentinel.prom")
	cfgVal.Store.LockTimeoutSeconds = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithAgents installs a roster. Names listed in admins are flagged admin.
func WithAgents(names []string, admins ...string) ConfigOption {
	return func(b *configBuilder) {
		isAdmin := make(map[string]bool, len(admins))
		for _, name := range admins {
			isAdmin[name] = true
		}
		b.cfg.Agents = b.cfg.Agents[:0]
		for _, name := range names {
			b.cfg.Agents = append(b.cfg.Agents, config.Agent{Name: name, Admin: isAdmin[name]})
		}
	}
}

// WithBranches overrides the two branch labels.
func WithBranches(a, b string) ConfigOption {
	return func(builder *configBuilder) {
		builder.cfg.Branches.A = a
		builder.cfg.Branches.B = b
	}
}

// WithArchive toggles the SQLite import archive.
func WithArchive(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Archive.Enabled = enabled
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
