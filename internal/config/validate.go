package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateBranches(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateImport(); err != nil {
		return err
	}
	if err := c.validateAgents(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateBranches() error {
	if c.Branches.A == "" || c.Branches.B == "" {
		return errors.New("branches.a and branches.b must both be set")
	}
	if c.Branches.A == c.Branches.B {
		return fmt.Errorf("branches.a and branches.b must differ (both %q)", c.Branches.A)
	}
	return nil
}

func (c *Config) validateStore() error {
	if err := validateDelimiter("store.delimiter", c.Store.Delimiter); err != nil {
		return err
	}
	if c.Store.LockTimeoutSeconds <= 0 {
		return errors.New("store.lock_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateImport() error {
	if err := validateDelimiter("import.delimiter", c.Import.Delimiter); err != nil {
		return err
	}
	switch c.Import.Encoding {
	case "utf-8", "iso-8859-1", "windows-1252":
		return nil
	default:
		return fmt.Errorf("import.encoding: unsupported value %q (use utf-8, iso-8859-1 or windows-1252)", c.Import.Encoding)
	}
}

func (c *Config) validateAgents() error {
	seen := make(map[string]struct{}, len(c.Agents))
	for _, agent := range c.Agents {
		key := strings.ToLower(agent.Name)
		if _, exists := seen[key]; exists {
			return fmt.Errorf("agents: duplicate agent %q", agent.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func validateDelimiter(key, value string) error {
	if utf8.RuneCountInString(value) != 1 {
		return fmt.Errorf("%s must be a single character, got %q", key, value)
	}
	r, _ := utf8.DecodeRuneInString(value)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return fmt.Errorf("%s: %q cannot be used as a delimiter", key, value)
	}
	return nil
}

// Delimiter returns the single-rune ledger delimiter.
func (c *Config) Delimiter() rune {
	r, _ := utf8.DecodeRuneInString(c.Store.Delimiter)
	return r
}

// ImportDelimiter returns the single-rune delimiter of upstream exports.
func (c *Config) ImportDelimiter() rune {
	r, _ := utf8.DecodeRuneInString(c.Import.Delimiter)
	return r
}
