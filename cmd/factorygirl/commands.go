package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kbukum/factorygirl/bootstrap"
	"github.com/kbukum/factorygirl/database"
	apperrors "github.com/kbukum/factorygirl/errors"
	"github.com/kbukum/factorygirl/factory"
	"github.com/kbukum/factorygirl/logger"
	"github.com/kbukum/factorygirl/version"
)

// stopTimeout bounds closing the database connections after a command.
const stopTimeout = 5 * time.Second

// definitionInfo is one line of the list output.
type definitionInfo struct {
	Class   string   `json:"class" yaml:"class"`
	Table   string   `json:"table" yaml:"table"`
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Source  string   `json:"source,omitempty" yaml:"source,omitempty"`
}

// buildFlags are the flags shared by attributes and create.
type buildFlags struct {
	alias string
	set   []string
}

func (b *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&b.alias, "alias", "a", "", "alias overlay to apply")
	cmd.Flags().StringArrayVarP(&b.set, "set", "s", nil, "override an attribute, key=value (repeatable; values are YAML)")
}

func (b *buildFlags) overrides() (factory.Attributes, error) {
	return parseOverrides(b.set)
}

func (c *cli) prepareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prepare",
		Short: "Reset every table that has a factory",
		Long: `Reset every table that has a factory, with integrity checking disabled.
A master init script in the factory directory replaces the per-table resets;
a <table>.init.sql script replaces truncation of its table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runFactory(cmd, func(_ context.Context, f *factory.Factory) error {
				defs, err := f.Definitions()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Prepared %d factories from %s\n", len(defs), f.Config().BasePath)
				return nil
			})
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the factories found in the factory directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := c.offlineFactory()
			if err != nil {
				return err
			}
			defs, err := f.Definitions()
			if err != nil {
				return err
			}

			infos := make([]definitionInfo, 0, len(defs))
			for _, d := range defs {
				infos = append(infos, definitionInfo{Class: d.ClassName, Table: d.TableName, Aliases: d.AliasNames(), Source: d.Source})
			}
			return c.print(cmd, infos)
		},
	}
}

func (c *cli) attributesCmd() *cobra.Command {
	var flags buildFlags
	cmd := &cobra.Command{
		Use:   "attributes <Class>",
		Short: "Print the attributes a factory resolves to",
		Long: `Print the attributes a factory resolves to without touching the database.
Sequence tokens start from their initial values on every invocation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, err := flags.overrides()
			if err != nil {
				return err
			}
			f, err := c.offlineFactory()
			if err != nil {
				return err
			}
			attrs, err := f.Attributes(args[0], overrides, flags.alias)
			if err != nil {
				return err
			}
			return c.print(cmd, attrs)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *cli) createCmd() *cobra.Command {
	var (
		flags buildFlags
		count int
	)
	cmd := &cobra.Command{
		Use:   "create <Class>",
		Short: "Prepare the tables and insert rows built from a factory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return apperrors.InvalidInput("count", "must be at least 1")
			}
			overrides, err := flags.overrides()
			if err != nil {
				return err
			}

			return c.runFactory(cmd, func(ctx context.Context, f *factory.Factory) error {
				rows := make([]any, 0, count)
				for range count {
					m, err := f.Create(ctx, args[0], overrides, flags.alias)
					if err != nil {
						return err
					}
					rows = append(rows, modelValue(m))
				}
				return c.print(cmd, rows)
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of rows to create")
	return cmd
}

func (c *cli) truncateCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "truncate [table...]",
		Short: "Delete every row of tables and restart their key sequences",
		Args: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return fmt.Errorf("name one or more tables or pass --all")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGateway(cmd, func(ctx context.Context, f *factory.Factory) error {
				err := f.WithIntegrityDisabled(ctx, func(ctx context.Context) error {
					if all {
						for _, schema := range f.Config().Schemas {
							if err := f.TruncateTables(ctx, schema); err != nil {
								return err
							}
						}
						return nil
					}
					for _, table := range args {
						if err := f.TruncateTable(ctx, table); err != nil {
							return err
						}
					}
					return nil
				})
				if err != nil {
					return err
				}
				if all {
					fmt.Fprintln(cmd.OutOrStdout(), "Truncated all tables")
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Truncated %s\n", strings.Join(args, ", "))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "truncate every table of the configured schemas")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "factorygirl %s\n", version.Get())
		},
	}
}

// offlineFactory returns a factory for commands that only read
// definitions. It has no gateway.
func (c *cli) offlineFactory() (*factory.Factory, error) {
	return factory.New(c.cfg.Factory, nil, nil,
		factory.WithModels(recordModels()),
		factory.WithLogger(logger.GetGlobalLogger()),
	)
}

// runFactory starts the configured databases and a prepared factory, then
// runs task.
func (c *cli) runFactory(cmd *cobra.Command, task func(ctx context.Context, f *factory.Factory) error) error {
	app, err := c.newApp()
	if err != nil {
		return err
	}
	fc := factory.NewComponent(c.cfg.Factory, app.Components,
		factory.WithModels(recordModels()),
		factory.WithLogger(app.Logger),
	)
	if err := app.RegisterComponent(fc); err != nil {
		return err
	}
	return app.RunTask(cmd.Context(), func(ctx context.Context) error {
		return task(ctx, fc.Factory())
	})
}

// runGateway starts the configured databases and runs task with an
// unprepared factory over the factory connection.
func (c *cli) runGateway(cmd *cobra.Command, task func(ctx context.Context, f *factory.Factory) error) error {
	app, err := c.newApp()
	if err != nil {
		return err
	}
	return app.RunTask(cmd.Context(), func(ctx context.Context) error {
		id := c.cfg.Factory.ConnectionID
		conn, ok := app.Components.Get(id).(database.Connection)
		if !ok {
			return apperrors.Configuration(fmt.Sprintf("invalid connection_id %q: no such database", id))
		}
		db := conn.GormDB()
		f, err := factory.New(c.cfg.Factory, database.NewGateway(db, app.Logger), database.NewMapper(db.NamingStrategy),
			factory.WithModels(recordModels()),
			factory.WithLogger(app.Logger),
		)
		if err != nil {
			return err
		}
		return task(ctx, f)
	})
}

func (c *cli) newApp() (*bootstrap.App[*CLIConfig], error) {
	if err := c.cfg.validateDatabases(); err != nil {
		return nil, err
	}
	app, err := bootstrap.NewApp(c.cfg,
		bootstrap.WithLogger(logger.GetGlobalLogger()),
		bootstrap.WithStopTimeout(stopTimeout))
	if err != nil {
		return nil, err
	}
	for _, dbCfg := range c.cfg.Databases {
		if err := app.RegisterComponent(database.NewComponent(dbCfg, app.Logger)); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// recordModels builds map-backed models for every class, so factories
// need no Go types on the command line.
func recordModels() *factory.ModelRegistry {
	models := factory.NewModelRegistry()
	models.SetFallback(func(className string) factory.Model { return factory.NewRecord(className) })
	return models
}

func modelValue(m factory.Model) any {
	if r, ok := m.(*factory.Record); ok {
		return r.Values
	}
	return m
}

// parseOverrides turns key=value pairs into attributes. Values are parsed
// as YAML scalars, so "3" is a number and "true" a boolean; an empty value
// is the empty string.
func parseOverrides(pairs []string) (factory.Attributes, error) {
	attrs := make(factory.Attributes, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, apperrors.InvalidInput("set", fmt.Sprintf("%q is not key=value", pair))
		}
		if raw == "" {
			attrs[key] = ""
			continue
		}
		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		attrs[key] = value
	}
	return attrs, nil
}
