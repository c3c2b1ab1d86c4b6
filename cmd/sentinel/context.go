package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"sentinel/internal/archive"
	"sentinel/internal/config"
	"sentinel/internal/ledger"
	"sentinel/internal/logging"
	"sentinel/internal/registry"
	"sentinel/internal/roster"
)

const agentEnvVar = "SENTINEL_AGENT"

type commandContext struct {
	configFlag *string
	agentFlag  *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	logFiles   io.Closer
	loggerErr  error
}

func newCommandContext(configFlag, agentFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		agentFlag:  agentFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.logFiles, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// closeLogger releases the log file. Each command builds the service once,
// so this runs when that command is done with it.
func (c *commandContext) closeLogger() {
	if c.logFiles != nil {
		_ = c.logFiles.Close()
		c.logFiles = nil
	}
	c.logger = logging.NewNop()
}

// agent resolves the acting agent and checks it against the roster.
func (c *commandContext) agent() (string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	var name string
	if c.agentFlag != nil {
		name = strings.TrimSpace(*c.agentFlag)
	}
	if name == "" {
		name = strings.TrimSpace(os.Getenv(agentEnvVar))
	}
	if name == "" {
		return "", fmt.Errorf("%w: agent not set; pass --agent or export %s", registry.ErrInvalidRequest, agentEnvVar)
	}
	if !cfg.KnownAgent(name) {
		return "", fmt.Errorf("%w: agent %q is not on the roster", registry.ErrInvalidRequest, name)
	}
	return name, nil
}

// adminAgent resolves the acting agent and requires admin rights.
func (c *commandContext) adminAgent() (string, error) {
	name, err := c.agent()
	if err != nil {
		return "", err
	}
	if !c.config.IsAdmin(name) {
		return "", fmt.Errorf("%w: agent %q may not run administrative commands", registry.ErrInvalidRequest, name)
	}
	return name, nil
}

// withService opens the stores, builds a registry service and closes the
// archive once fn returns.
func (c *commandContext) withService(fn func(*registry.Service) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	defer c.closeLogger()

	store, err := ledger.Open(ledger.OptionsFromConfig(cfg))
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}

	var arch *archive.Store
	if cfg.Archive.Enabled {
		arch, err = archive.OpenFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer arch.Close()
	}

	columnMap := roster.ColumnMapFromConfig(cfg.Columns)
	svc, err := registry.NewService(registry.Options{
		Store:    store,
		Archive:  arch,
		Branches: roster.NewBranches(cfg.Branches.A, cfg.Branches.B),
		Columns:  &columnMap,
		Agents:   cfg.AgentNames(),
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	return fn(svc)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
