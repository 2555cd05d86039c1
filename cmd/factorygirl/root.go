package main

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kbukum/factorygirl/config"
	"github.com/kbukum/factorygirl/logger"
)

// skipConfig marks commands that run without loading configuration.
const skipConfig = "skip-config"

var outputFormats = []string{"yaml", "json"}

// cli holds the flags and configuration shared by every command.
type cli struct {
	configFile string
	basePath   string
	output     string
	verbosity  int

	cfg *CLIConfig
}

// NewRootCmd builds the factorygirl command tree.
func NewRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "factorygirl",
		Short: "Seed test databases from declarative factories",
		Long: `factorygirl reads factory files (<Class>Factory.yaml, .json or .toml) from a
directory, resets the tables they map to and inserts rows built from their
attributes, aliases and sequence tokens.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipConfig] == "true" {
				return nil
			}
			return c.load()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configFile, "config", "c", "", "config file (default: search ./factorygirl.yml, ./config/config.yml, ...)")
	flags.StringVar(&c.basePath, "base-path", "", "factory directory, overrides factory.base_path")
	flags.StringVarP(&c.output, "output", "o", "yaml", "output format: yaml or json")
	flags.CountVarP(&c.verbosity, "verbose", "v", "increase verbosity (-v info, -vv debug)")

	root.AddCommand(
		c.prepareCmd(),
		c.listCmd(),
		c.attributesCmd(),
		c.createCmd(),
		c.truncateCmd(),
		versionCmd(),
	)
	return root
}

// load reads configuration, applies flag overrides and sets up logging.
func (c *cli) load() error {
	if !slices.Contains(outputFormats, c.output) {
		return fmt.Errorf("--output must be one of %v (got: %s)", outputFormats, c.output)
	}

	cfg := &CLIConfig{}
	var opts []config.LoaderOption
	if c.configFile != "" {
		opts = append(opts, config.WithConfigFile(c.configFile))
	}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return err
	}

	if c.basePath != "" {
		cfg.Factory.BasePath = c.basePath
	}
	switch {
	case c.verbosity >= 2:
		cfg.Logging.Level = "debug"
	case c.verbosity == 1:
		cfg.Logging.Level = "info"
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Init(cfg.Logging)
	c.cfg = cfg
	return nil
}

// print writes v to the command's output in the selected format.
func (c *cli) print(cmd *cobra.Command, v any) error {
	w := cmd.OutOrStdout()
	if c.output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
