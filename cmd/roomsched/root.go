package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/omegabonobo/greedy-room-scheduler/internal/config"
	"github.com/omegabonobo/greedy-room-scheduler/internal/engines/common"
	"github.com/omegabonobo/greedy-room-scheduler/internal/inventory"
	"github.com/omegabonobo/greedy-room-scheduler/internal/logging"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/core"
)

// app carries the state shared by every subcommand once the root command has initialized it.
type app struct {
	configFile string
	viper      *viper.Viper
	config     *config.Config
	zap        *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{viper: config.NewViper()}

	cmd := &cobra.Command{
		Use:           "roomsched",
		Short:         "Assign booking requests to rooms and time slots",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a.zap != nil {
				_ = a.zap.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "path to a YAML/JSON/TOML config file")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console or json)")
	_ = a.viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.viper.BindPFlag("log.format", flags.Lookup("log-format"))

	cmd.AddCommand(newSolveCommand(a), newServeCommand(a), newRoomsCommand(a))
	return cmd
}

// addInventoryFlags registers the flags that locate the room inventory.
func addInventoryFlags(flags *pflag.FlagSet) {
	flags.String("inventory", "", "CSV or XLSX room inventory")
	flags.String("sheet", "", "worksheet of an XLSX inventory (defaults to the first)")
}

// commandFlags maps the config keys that subcommands may override to their flag names.
var commandFlags = map[string]string{
	"inventory.path":  "inventory",
	"inventory.sheet": "sheet",
}

func (a *app) init(cmd *cobra.Command) error {
	// Subcommands define the same flags, so they are bound for the running command only.
	for key, name := range commandFlags {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := a.viper.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	if err := config.ReadConfigFile(a.viper, a.configFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.viper)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.config = cfg

	logger, zapLogger, err := logging.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	logging.SetLogger(logger)
	a.zap = zapLogger
	return nil
}

// global builds the live configuration holder from the loaded config.
func (a *app) global(inv core.Inventory) (*common.GlobalConfig, error) {
	profiles, err := a.config.WeightProfiles()
	if err != nil {
		return nil, err
	}
	return common.NewGlobalConfig(a.config, profiles, inv), nil
}

// loadInventory reads the configured inventory file. A missing path yields an empty
// inventory unless required is set.
func (a *app) loadInventory(required bool) (core.Inventory, error) {
	path := a.config.Inventory.Path
	if path == "" {
		if required {
			return core.Inventory{}, fmt.Errorf("no inventory given: set --inventory or inventory.path")
		}
		return core.NewInventory(), nil
	}
	inv, err := inventory.Load(path, a.config.Inventory.Sheet)
	if err != nil {
		return inv, err
	}
	logging.Log().V(logging.DEBUG).Info("Loaded inventory", "path", path, "rooms", inv.Len())
	return inv, nil
}
