package factory

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kbukum/factorygirl/database"
	apperrors "github.com/kbukum/factorygirl/errors"
	"github.com/kbukum/factorygirl/util"
	"github.com/kbukum/factorygirl/validation"
)

// Defaults applied by Config.ApplyDefaults.
const (
	DefaultBasePath          = "testdata/factories"
	DefaultInitScript        = "init.sql"
	DefaultInitScriptSuffix  = ".init.sql"
	DefaultFactoryFileSuffix = "Factory"
)

// DefaultExtensions lists the factory source formats recognized by default.
var DefaultExtensions = []string{"yaml", "yml", "json", "toml"}

// Config holds factory discovery and lifecycle settings.
type Config struct {
	// BasePath is the directory scanned for factory files and init scripts.
	BasePath string `mapstructure:"base_path" validate:"required"`

	// InitScript names the master hook. When it exists it replaces the
	// per-table reset loop in Prepare.
	InitScript string `mapstructure:"init_script" validate:"required"`

	// InitScriptSuffix is appended to a table name to name its reset hook.
	InitScriptSuffix string `mapstructure:"init_script_suffix" validate:"required"`

	// ConnectionID names the database component factories run against.
	ConnectionID string `mapstructure:"connection_id" validate:"required"`

	// Schemas lists the schemas whose integrity checking is toggled.
	// The empty string is the connection's default schema.
	Schemas []string `mapstructure:"schemas" validate:"min=1"`

	// FactoryFileSuffix follows the class name in factory file names.
	FactoryFileSuffix string `mapstructure:"factory_file_suffix"`

	// Extensions lists factory file extensions without the leading dot.
	Extensions []string `mapstructure:"extensions" validate:"min=1,dive,oneof=yaml yml json toml"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	c.BasePath = util.Coalesce(c.BasePath, DefaultBasePath)
	c.InitScript = util.Coalesce(c.InitScript, DefaultInitScript)
	c.InitScriptSuffix = util.Coalesce(c.InitScriptSuffix, DefaultInitScriptSuffix)
	c.ConnectionID = util.Coalesce(c.ConnectionID, database.DefaultName)
	c.FactoryFileSuffix = util.Coalesce(c.FactoryFileSuffix, DefaultFactoryFileSuffix)
	if len(c.Schemas) == 0 {
		c.Schemas = []string{""}
	}
	if len(c.Extensions) == 0 {
		c.Extensions = DefaultExtensions
	}
	c.Extensions = slices.Clone(c.Extensions)
	for i, ext := range c.Extensions {
		c.Extensions[i] = strings.ToLower(strings.TrimPrefix(ext, "."))
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if strings.ContainsAny(c.InitScript, `/\`) {
		return apperrors.Configuration(fmt.Sprintf("init_script %q must be a file name, not a path", c.InitScript))
	}
	return nil
}
