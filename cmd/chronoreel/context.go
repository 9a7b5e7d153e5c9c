package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"chronoreel/internal/config"
	"chronoreel/internal/logging"
	"chronoreel/internal/services"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "load config", "", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "ensure directories", "", err)
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// pathOverrides holds the --input/--output flags shared by several commands.
type pathOverrides struct {
	input  string
	output string
}

func (p *pathOverrides) register(cmd *cobra.Command, input, output bool) {
	if input {
		cmd.Flags().StringVarP(&p.input, "input", "i", "", "Input directory (overrides paths.input_dir)")
	}
	if output {
		cmd.Flags().StringVarP(&p.output, "output", "o", "", "Output directory (overrides paths.output_dir)")
	}
}

// apply copies the overrides onto cfg and re-validates it.
func (p *pathOverrides) apply(cfg *config.Config) error {
	changed := false
	for _, o := range []struct {
		value  string
		target *string
	}{
		{p.input, &cfg.Paths.InputDir},
		{p.output, &cfg.Paths.OutputDir},
	} {
		if strings.TrimSpace(o.value) == "" {
			continue
		}
		expanded, err := config.ExpandPath(strings.TrimSpace(o.value))
		if err != nil {
			return fmt.Errorf("resolve path: %w", err)
		}
		*o.target = expanded
		changed = true
	}
	if !changed {
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return services.Wrap(services.ErrConfiguration, "cli", "validate overrides", "", err)
	}
	return nil
}

// configWith returns a copy of the loaded config with overrides applied.
func (c *commandContext) configWith(p *pathOverrides) (*config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	copied := *cfg
	if p != nil {
		if err := p.apply(&copied); err != nil {
			return nil, err
		}
	}
	return &copied, nil
}

func (c *commandContext) logger(cfg *config.Config) *slog.Logger {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return logging.NewNop()
	}
	return logger
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
