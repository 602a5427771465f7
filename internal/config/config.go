package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	pkgconfig "github.com/omegabonobo/greedy-room-scheduler/pkg/config"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/solver"
)

// EnvPrefix prefixes every environment variable read by the scheduler.
const EnvPrefix = "ROOMSCHED"

// Config is the application configuration of the CLI and the HTTP server.
type Config struct {
	Log       LogConfig
	Weights   WeightsConfig
	Solver    SolverConfig
	Strategy  string
	Profile   string
	Profiles  ProfilesConfig
	Server    ServerConfig
	Inventory InventoryConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// WeightsConfig holds the base objective weights.
type WeightsConfig struct {
	Floor float64
	Space float64
	Reuse float64
}

// SolverConfig holds the engine selection and budget.
type SolverConfig struct {
	Backend   string
	TimeLimit time.Duration
	MaxNodes  int
	Workers   int
}

// ProfilesConfig points to an optional weight profiles file.
type ProfilesConfig struct {
	File string
}

type ServerConfig struct {
	Address string
}

// InventoryConfig locates the room inventory to load.
type InventoryConfig struct {
	Path  string
	Sheet string
}

// NewViper returns a viper instance with defaults and environment binding.
// A key such as "solver.timeLimit" is read from ROOMSCHED_SOLVER_TIMELIMIT.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("weights.floor", pkgconfig.DefaultFloorWeight)
	v.SetDefault("weights.space", pkgconfig.DefaultSpaceWeight)
	v.SetDefault("weights.reuse", pkgconfig.DefaultReuseWeight)

	v.SetDefault("solver.backend", "branch-and-bound")
	v.SetDefault("solver.timeLimit", pkgconfig.DefaultTimeLimit.String())
	v.SetDefault("solver.maxNodes", pkgconfig.DefaultMaxNodes)
	v.SetDefault("solver.workers", 0)

	v.SetDefault("strategy", "optimal")
	v.SetDefault("profile", "")
	v.SetDefault("profiles.file", "")

	v.SetDefault("server.address", ":8080")

	v.SetDefault("inventory.path", "")
	v.SetDefault("inventory.sheet", "")
}

// ReadConfigFile merges a YAML/JSON/TOML config file into v. An empty path is a no-op.
func ReadConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}
	return nil
}

// Load builds the Config from v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	cfg.Weights = WeightsConfig{
		Floor: v.GetFloat64("weights.floor"),
		Space: v.GetFloat64("weights.space"),
		Reuse: v.GetFloat64("weights.reuse"),
	}

	cfg.Solver = SolverConfig{
		Backend:   v.GetString("solver.backend"),
		TimeLimit: parseDuration(v.GetString("solver.timeLimit"), pkgconfig.DefaultTimeLimit),
		MaxNodes:  v.GetInt("solver.maxNodes"),
		Workers:   v.GetInt("solver.workers"),
	}

	cfg.Strategy = v.GetString("strategy")
	cfg.Profile = v.GetString("profile")
	cfg.Profiles = ProfilesConfig{File: v.GetString("profiles.file")}

	cfg.Server = ServerConfig{Address: v.GetString("server.address")}

	cfg.Inventory = InventoryConfig{
		Path:  v.GetString("inventory.path"),
		Sheet: v.GetString("inventory.sheet"),
	}

	if _, err := solver.ParseBackend(cfg.Solver.Backend); err != nil {
		return nil, err
	}
	if _, err := cfg.BaseSpec(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BaseSpec returns the optimizer spec of the configured weights and budget, before any profile.
func (c *Config) BaseSpec() (pkgconfig.OptimizerSpec, error) {
	spec := pkgconfig.OptimizerSpec{
		FloorWeight: c.Weights.Floor,
		SpaceWeight: c.Weights.Space,
		ReuseWeight: c.Weights.Reuse,
		TimeLimit:   c.Solver.TimeLimit,
		MaxNodes:    c.Solver.MaxNodes,
		Workers:     c.Solver.Workers,
	}
	if err := spec.Validate(); err != nil {
		return spec, fmt.Errorf("invalid solver configuration: %w", err)
	}
	return spec, nil
}

// WeightProfiles returns the built-in profiles merged with the configured profiles file.
func (c *Config) WeightProfiles() (WeightProfiles, error) {
	if c.Profiles.File == "" {
		return BuiltinProfiles(), nil
	}
	return LoadWeightProfiles(c.Profiles.File)
}

// OptimizerSpec resolves the effective spec: the base spec with the named profile applied.
// An empty name uses the configured profile.
func (c *Config) OptimizerSpec(profile string) (pkgconfig.OptimizerSpec, error) {
	base, err := c.BaseSpec()
	if err != nil {
		return base, err
	}
	if profile == "" {
		profile = c.Profile
	}
	if profile == "" {
		return base, nil
	}
	profiles, err := c.WeightProfiles()
	if err != nil {
		return base, err
	}
	return profiles.Resolve(profile, base)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
