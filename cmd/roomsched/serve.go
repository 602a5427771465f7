package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/omegabonobo/greedy-room-scheduler/internal/config"
	"github.com/omegabonobo/greedy-room-scheduler/internal/engines/common"
	"github.com/omegabonobo/greedy-room-scheduler/internal/inventory"
	"github.com/omegabonobo/greedy-room-scheduler/internal/logging"
	"github.com/omegabonobo/greedy-room-scheduler/internal/metrics"
	"github.com/omegabonobo/greedy-room-scheduler/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scheduling over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.String("address", ":8080", "listen address")
	addInventoryFlags(flags)
	_ = a.viper.BindPFlag("server.address", flags.Lookup("address"))
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger := logging.Log()

	inv, err := a.loadInventory(false)
	if err != nil {
		return err
	}
	global, err := a.global(inv)
	if err != nil {
		return err
	}
	srv, err := server.New(global, metrics.NewMetrics(), common.NewResultCache(common.DefaultResultCacheSize))
	if err != nil {
		return err
	}

	if a.configFile != "" {
		a.viper.OnConfigChange(func(e fsnotify.Event) {
			logger.Info("Config file changed", "file", e.Name, "op", e.Op.String())
			a.reload(global)
		})
		a.viper.WatchConfig()
	}

	return srv.Run(logging.IntoContext(ctx, logger), a.config.Server.Address)
}

// reload applies a changed config file to the running server. An invalid file keeps
// the previous configuration.
func (a *app) reload(global *common.GlobalConfig) {
	logger := logging.Log()
	cfg, err := config.Load(a.viper)
	if err != nil {
		logger.Error(err, "Ignoring invalid config")
		return
	}
	profiles, err := cfg.WeightProfiles()
	if err != nil {
		logger.Error(err, "Ignoring invalid weight profiles")
		return
	}

	previous := global.GetConfig()
	global.UpdateConfig(cfg, profiles)

	if cfg.Inventory == previous.Inventory || cfg.Inventory.Path == "" {
		return
	}
	inv, err := inventory.Load(cfg.Inventory.Path, cfg.Inventory.Sheet)
	if err != nil {
		logger.Error(err, "Keeping the previous inventory", "path", cfg.Inventory.Path)
		return
	}
	global.UpdateInventory(inv)
	logger.Info("Reloaded inventory", "path", cfg.Inventory.Path, "rooms", inv.Len())
}
