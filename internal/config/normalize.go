package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeBranches()
	c.normalizeStore()
	c.normalizeImport()
	c.normalizeColumns()
	c.normalizeAgents()
	if err := c.normalizeMetrics(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("SENTINEL_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DataDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	var err error
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeBranches() {
	c.Branches.A = strings.ToUpper(strings.TrimSpace(c.Branches.A))
	c.Branches.B = strings.ToUpper(strings.TrimSpace(c.Branches.B))
}

func (c *Config) normalizeStore() {
	if c.Store.Delimiter == "" {
		c.Store.Delimiter = defaultStoreDelimiter
	}
	if c.Store.LockTimeoutSeconds <= 0 {
		c.Store.LockTimeoutSeconds = defaultLockTimeoutSeconds
	}
}

func (c *Config) normalizeImport() {
	if c.Import.Delimiter == "" {
		c.Import.Delimiter = c.Store.Delimiter
	}
	c.Import.Encoding = strings.ToLower(strings.TrimSpace(c.Import.Encoding))
	switch c.Import.Encoding {
	case "", "utf8", "utf-8":
		c.Import.Encoding = defaultImportEncoding
	case "latin1", "latin-1", "iso-8859-1":
		c.Import.Encoding = "iso-8859-1"
	case "cp1252", "windows-1252":
		c.Import.Encoding = "windows-1252"
	}
}

func (c *Config) normalizeColumns() {
	c.Columns.Name = cleanList(c.Columns.Name)
	c.Columns.License = cleanList(c.Columns.License)
	c.Columns.Agent = cleanList(c.Columns.Agent)
	c.Columns.Trips = cleanList(c.Columns.Trips)
	c.Columns.Phone = cleanList(c.Columns.Phone)
	c.Columns.LastActivity = cleanList(c.Columns.LastActivity)
}

func (c *Config) normalizeAgents() {
	agents := make([]Agent, 0, len(c.Agents))
	for _, agent := range c.Agents {
		agent.Name = strings.TrimSpace(agent.Name)
		if agent.Name == "" {
			continue
		}
		agents = append(agents, agent)
	}
	c.Agents = agents
}

func (c *Config) normalizeMetrics() error {
	c.Metrics.TextfilePath = strings.TrimSpace(c.Metrics.TextfilePath)
	if c.Metrics.TextfilePath == "" {
		c.Metrics.TextfilePath = filepath.Join(c.Paths.DataDir, defaultMetricsFileName)
		return nil
	}
	var err error
	if c.Metrics.TextfilePath, err = expandPath(c.Metrics.TextfilePath); err != nil {
		return fmt.Errorf("metrics.textfile_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func cleanList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
