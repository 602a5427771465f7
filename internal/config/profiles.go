package config

import (
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
	"k8s.io/utils/ptr"

	"github.com/omegabonobo/greedy-room-scheduler/internal/logging"
	pkgconfig "github.com/omegabonobo/greedy-room-scheduler/pkg/config"
)

const (
	// DefaultProfileKey names the profile whose values every other profile inherits.
	DefaultProfileKey = "default"
	// InteractiveProfileName names the built-in profile tuned for interactive use,
	// favoring fewer floors over tight seating.
	InteractiveProfileName = "interactive"
)

// WeightProfile is a named set of objective weights and solver budget.
// Nil or empty fields inherit from the default profile, then from the base spec.
type WeightProfile struct {
	// Description is a human readable note shown by listings
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	FloorWeight *float64 `yaml:"floorWeight,omitempty" json:"floorWeight,omitempty"`
	SpaceWeight *float64 `yaml:"spaceWeight,omitempty" json:"spaceWeight,omitempty"`
	ReuseWeight *float64 `yaml:"reuseWeight,omitempty" json:"reuseWeight,omitempty"`

	// TimeLimit is a duration string such as "10s"
	TimeLimit string `yaml:"timeLimit,omitempty" json:"timeLimit,omitempty"`
	MaxNodes  *int   `yaml:"maxNodes,omitempty" json:"maxNodes,omitempty"`
}

// WeightProfiles maps a profile name to its settings.
type WeightProfiles map[string]WeightProfile

// Validate checks for invalid configuration values.
func (p *WeightProfile) Validate() error {
	for name, w := range map[string]*float64{
		"floorWeight": p.FloorWeight,
		"spaceWeight": p.SpaceWeight,
		"reuseWeight": p.ReuseWeight,
	} {
		if w == nil {
			continue
		}
		if math.IsNaN(*w) || math.IsInf(*w, 0) || *w < 0 {
			return fmt.Errorf("%s must be a finite value >= 0, got %v", name, *w)
		}
	}
	if p.TimeLimit != "" {
		d, err := time.ParseDuration(p.TimeLimit)
		if err != nil {
			return fmt.Errorf("invalid timeLimit: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("timeLimit must be positive, got %s", p.TimeLimit)
		}
	}
	if p.MaxNodes != nil && *p.MaxNodes < 0 {
		return fmt.Errorf("maxNodes must be >= 0, got %d", *p.MaxNodes)
	}
	return nil
}

// BuiltinProfiles returns the profiles available without any configuration.
func BuiltinProfiles() WeightProfiles {
	return WeightProfiles{
		InteractiveProfileName: {
			Description: "keeps bookings on few floors, tolerates spare seats",
			FloorWeight: ptr.To(1.0),
			SpaceWeight: ptr.To(0.5),
		},
	}
}

// ParseWeightProfiles parses a YAML document mapping profile names to profiles.
// Entries that fail to decode or validate are skipped and logged; only a malformed
// document is an error. Built-in profiles are kept unless the document redefines them.
func ParseWeightProfiles(data []byte) (WeightProfiles, error) {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse weight profiles: %w", err)
	}

	out := BuiltinProfiles()
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	logger := logging.Log()
	for _, key := range keys {
		node := raw[key]
		var profile WeightProfile
		if err := node.Decode(&profile); err != nil {
			logger.Info("Failed to parse weight profile entry, skipping",
				"key", key,
				"error", err)
			continue
		}
		if err := profile.Validate(); err != nil {
			logger.Info("Invalid weight profile entry, skipping",
				"key", key,
				"error", err)
			continue
		}
		out[key] = profile
	}

	logger.V(logging.DEBUG).Info("Parsed weight profiles",
		"profileCount", len(out))

	return out, nil
}

// LoadWeightProfiles reads and parses a profiles file.
func LoadWeightProfiles(path string) (WeightProfiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read weight profiles %q: %w", path, err)
	}
	return ParseWeightProfiles(data)
}

// Names returns the profile names in sorted order.
func (data WeightProfiles) Names() []string {
	names := make([]string, 0, len(data))
	for k := range data {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// GetProfile returns the effective profile for a name.
// It merges the named profile with the default profile.
func (data WeightProfiles) GetProfile(name string) (WeightProfile, bool) {
	defaults := data[DefaultProfileKey]
	profile, ok := data[name]
	if !ok {
		return defaults, name == "" || name == DefaultProfileKey
	}

	// Merge: profile values override defaults
	result := defaults
	if profile.Description != "" {
		result.Description = profile.Description
	}
	if profile.FloorWeight != nil {
		result.FloorWeight = profile.FloorWeight
	}
	if profile.SpaceWeight != nil {
		result.SpaceWeight = profile.SpaceWeight
	}
	if profile.ReuseWeight != nil {
		result.ReuseWeight = profile.ReuseWeight
	}
	if profile.TimeLimit != "" {
		result.TimeLimit = profile.TimeLimit
	}
	if profile.MaxNodes != nil {
		result.MaxNodes = profile.MaxNodes
	}
	return result, true
}

// Apply overlays the profile's set fields on a base spec.
func (p WeightProfile) Apply(base pkgconfig.OptimizerSpec) (pkgconfig.OptimizerSpec, error) {
	if err := p.Validate(); err != nil {
		return base, err
	}
	spec := base
	if p.FloorWeight != nil {
		spec.FloorWeight = *p.FloorWeight
	}
	if p.SpaceWeight != nil {
		spec.SpaceWeight = *p.SpaceWeight
	}
	if p.ReuseWeight != nil {
		spec.ReuseWeight = *p.ReuseWeight
	}
	if p.TimeLimit != "" {
		d, _ := time.ParseDuration(p.TimeLimit)
		spec.TimeLimit = d
	}
	if p.MaxNodes != nil {
		spec.MaxNodes = *p.MaxNodes
	}
	return spec, nil
}

// Resolve returns the spec of a named profile applied on base.
func (data WeightProfiles) Resolve(name string, base pkgconfig.OptimizerSpec) (pkgconfig.OptimizerSpec, error) {
	profile, ok := data.GetProfile(name)
	if !ok {
		return base, fmt.Errorf("unknown weight profile %q", name)
	}
	return profile.Apply(base)
}
