package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Branches names the two competing branches. Labels are stored verbatim in
// the provisional ledger and the event log.
type Branches struct {
	A string `toml:"a"`
	B string `toml:"b"`
}

// Store contains settings for the shared ledger files.
type Store struct {
	Delimiter          string `toml:"delimiter"`
	LockTimeoutSeconds int    `toml:"lock_timeout_seconds"`
}

// Import describes how upstream snapshot exports are decoded.
type Import struct {
	Delimiter string `toml:"delimiter"`
	Encoding  string `toml:"encoding"`
}

// Columns overrides the header synonyms used to map snapshot exports. An
// empty list keeps the built-in synonyms for that field.
type Columns struct {
	Name         []string `toml:"name"`
	License      []string `toml:"license"`
	Agent        []string `toml:"agent"`
	Trips        []string `toml:"trips"`
	Phone        []string `toml:"phone"`
	LastActivity []string `toml:"last_activity"`
}

// Agent is a roster entry. Authentication happens outside Sentinel; the
// roster only decides who may run administrative commands.
type Agent struct {
	Name  string `toml:"name"`
	Admin bool   `toml:"admin"`
}

// Archive controls the SQLite import archive.
type Archive struct {
	Enabled bool `toml:"enabled"`
}

// Metrics controls the Prometheus textfile export.
type Metrics struct {
	TextfilePath string `toml:"textfile_path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Sentinel.
//
// Configuration sections by subsystem:
//   - Paths: shared data directory and log directory
//   - Branches: labels of the two competing branches
//   - Store: ledger file delimiter and lock timeout
//   - Import: delimiter and character encoding of upstream exports
//   - Columns: header synonym overrides for the snapshot normalizer
//   - Agents: roster and admin allowlist
//   - Archive: SQLite import-cycle archive
//   - Metrics: Prometheus textfile destination
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Branches Branches `toml:"branches"`
	Store    Store    `toml:"store"`
	Import   Import   `toml:"import"`
	Columns  Columns  `toml:"columns"`
	Agents   []Agent  `toml:"agents"`
	Archive  Archive  `toml:"archive"`
	Metrics  Metrics  `toml:"metrics"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/sentinel/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("sentinel.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockTimeout returns how long ledger operations wait for the shared lock.
func (c *Config) LockTimeout() time.Duration {
	return time.Duration(c.Store.LockTimeoutSeconds) * time.Second
}

// IsAdmin reports whether the named agent may run administrative commands.
// An empty roster disables the check.
func (c *Config) IsAdmin(name string) bool {
	if len(c.Agents) == 0 {
		return true
	}
	name = strings.TrimSpace(name)
	for _, agent := range c.Agents {
		if strings.EqualFold(agent.Name, name) {
			return agent.Admin
		}
	}
	return false
}

// KnownAgent reports whether name is on the roster. An empty roster accepts
// every name.
func (c *Config) KnownAgent(name string) bool {
	if len(c.Agents) == 0 {
		return true
	}
	name = strings.TrimSpace(name)
	for _, agent := range c.Agents {
		if strings.EqualFold(agent.Name, name) {
			return true
		}
	}
	return false
}

// AgentNames returns the roster names in configuration order.
func (c *Config) AgentNames() []string {
	names := make([]string, 0, len(c.Agents))
	for _, agent := range c.Agents {
		names = append(names, agent.Name)
	}
	return names
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
