package common

import (
	"fmt"
	"sync"

	"github.com/omegabonobo/greedy-room-scheduler/internal/config"
	pkgconfig "github.com/omegabonobo/greedy-room-scheduler/pkg/config"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/core"
)

// GlobalConfig holds the live configuration of a running server.
// It is replaced wholesale on reload and read by every request.
type GlobalConfig struct {
	mu        sync.RWMutex
	config    *config.Config
	profiles  config.WeightProfiles
	inventory core.Inventory
}

// NewGlobalConfig creates a holder with an initial configuration.
func NewGlobalConfig(cfg *config.Config, profiles config.WeightProfiles, inv core.Inventory) *GlobalConfig {
	g := &GlobalConfig{}
	g.UpdateConfig(cfg, profiles)
	g.UpdateInventory(inv)
	return g
}

// UpdateConfig replaces the application config and weight profiles.
func (g *GlobalConfig) UpdateConfig(cfg *config.Config, profiles config.WeightProfiles) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.config = cfg
	if profiles == nil {
		profiles = config.BuiltinProfiles()
	}
	g.profiles = profiles
}

// GetConfig returns the current application config.
func (g *GlobalConfig) GetConfig() *config.Config {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.config
}

// GetProfiles returns the current weight profiles.
func (g *GlobalConfig) GetProfiles() config.WeightProfiles {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.profiles
}

// UpdateInventory replaces the default room inventory.
func (g *GlobalConfig) UpdateInventory(inv core.Inventory) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.inventory = inv
}

// GetInventory returns the default room inventory.
func (g *GlobalConfig) GetInventory() core.Inventory {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.inventory
}

// OptimizerSpec resolves the spec of one run: the configured base with the named profile applied.
// An empty name falls back to the configured profile.
func (g *GlobalConfig) OptimizerSpec(profile string) (pkgconfig.OptimizerSpec, error) {
	g.mu.RLock()
	cfg, profiles := g.config, g.profiles
	g.mu.RUnlock()

	if cfg == nil {
		return pkgconfig.OptimizerSpec{}, fmt.Errorf("no configuration loaded")
	}
	base, err := cfg.BaseSpec()
	if err != nil {
		return base, err
	}
	if profile == "" {
		profile = cfg.Profile
	}
	return profiles.Resolve(profile, base)
}
