package main

import (
	"fmt"

	"github.com/kbukum/factorygirl/config"
	"github.com/kbukum/factorygirl/database"
	"github.com/kbukum/factorygirl/factory"
)

const serviceName = "factorygirl"

// CLIConfig is the configuration file layout of the command.
type CLIConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Databases []database.Config `yaml:"databases" mapstructure:"databases"`
	Factory   factory.Config    `yaml:"factory" mapstructure:"factory"`
}

// ApplyDefaults fills in zero values of every section.
func (c *CLIConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Logging.Level == "" && !c.Debug {
		c.Logging.Level = "warn"
	}
	c.ServiceConfig.ApplyDefaults()
	for i := range c.Databases {
		c.Databases[i].ApplyDefaults()
	}
	c.Factory.ApplyDefaults()
}

// Validate checks every section. Database checks are left to commands
// that connect.
func (c *CLIConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Factory.Validate(); err != nil {
		return fmt.Errorf("factory: %w", err)
	}
	return nil
}

// validateDatabases checks the database sections.
func (c *CLIConfig) validateDatabases() error {
	if len(c.Databases) == 0 {
		return fmt.Errorf("no databases configured")
	}
	for i := range c.Databases {
		if err := c.Databases[i].Validate(); err != nil {
			return fmt.Errorf("databases[%d]: %w", i, err)
		}
	}
	return nil
}
