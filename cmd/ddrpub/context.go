package main

import (
	"log/slog"
	"strings"
	"sync"

	"ddrpub/internal/config"
	"ddrpub/internal/ddr"
	"ddrpub/internal/logging"
	"ddrpub/internal/pipeline"
	"ddrpub/internal/project"
	"ddrpub/internal/registry"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	log        *slog.Logger
	loggerErr  error
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

func (c *commandContext) logger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = err
			return
		}
		c.log = logger
	})
	return c.log, c.loggerErr
}

// session builds the token-store-backed session so a login from a previous
// invocation carries over.
func (c *commandContext) session() (*ddr.Session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return ddr.NewSession(ddr.NewFileTokenStore(cfg.DDR.TokenPath)), nil
}

func (c *commandContext) client() (*ddr.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.logger()
	if err != nil {
		return nil, err
	}
	session, err := c.session()
	if err != nil {
		return nil, err
	}
	return ddr.NewClient(cfg, session, logger), nil
}

func (c *commandContext) runner(projects *project.Context, reg *registry.Registry) (*pipeline.Runner, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.logger()
	if err != nil {
		return nil, err
	}
	client, err := c.client()
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cfg, logger, client, reg, projects), nil
}
