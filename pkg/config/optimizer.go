/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"fmt"
	"math"
	"runtime"
	"time"
)

const (
	// DefaultFloorWeight is the default weight of the floor-dispersion term.
	DefaultFloorWeight = 1.0
	// DefaultSpaceWeight is the default weight of the unused-capacity term.
	DefaultSpaceWeight = 1.0
	// DefaultReuseWeight is the default weight of the reuse bonus.
	DefaultReuseWeight = 1.0

	// DefaultTimeLimit bounds a single solve.
	DefaultTimeLimit = 30 * time.Second
	// DefaultMaxNodes bounds the number of branch-and-bound nodes of a single solve.
	DefaultMaxNodes = 100000
)

// OptimizerSpec holds the objective weights and solver budget for a scheduling run.
type OptimizerSpec struct {
	FloorWeight float64 `yaml:"floorWeight" json:"floorWeight" mapstructure:"floor"`
	SpaceWeight float64 `yaml:"spaceWeight" json:"spaceWeight" mapstructure:"space"`
	ReuseWeight float64 `yaml:"reuseWeight" json:"reuseWeight" mapstructure:"reuse"`

	// TimeLimit is the wall-clock budget of the solve. Zero means DefaultTimeLimit.
	TimeLimit time.Duration `yaml:"timeLimit,omitempty" json:"timeLimit,omitempty" mapstructure:"timeLimit"`
	// MaxNodes is the node budget of the solve. Zero means DefaultMaxNodes.
	MaxNodes int `yaml:"maxNodes,omitempty" json:"maxNodes,omitempty" mapstructure:"maxNodes"`
	// Workers bounds model-building goroutines. Zero means GOMAXPROCS.
	Workers int `yaml:"workers,omitempty" json:"workers,omitempty" mapstructure:"workers"`
}

// DefaultOptimizerSpec returns the spec with default weights and budget.
func DefaultOptimizerSpec() OptimizerSpec {
	return OptimizerSpec{
		FloorWeight: DefaultFloorWeight,
		SpaceWeight: DefaultSpaceWeight,
		ReuseWeight: DefaultReuseWeight,
		TimeLimit:   DefaultTimeLimit,
		MaxNodes:    DefaultMaxNodes,
		Workers:     runtime.GOMAXPROCS(0),
	}
}

// WithDefaults returns a copy with zero budget fields replaced by defaults.
func (s OptimizerSpec) WithDefaults() OptimizerSpec {
	if s.TimeLimit <= 0 {
		s.TimeLimit = DefaultTimeLimit
	}
	if s.MaxNodes <= 0 {
		s.MaxNodes = DefaultMaxNodes
	}
	if s.Workers <= 0 {
		s.Workers = runtime.GOMAXPROCS(0)
	}
	return s
}

// Validate checks for invalid configuration values.
func (s OptimizerSpec) Validate() error {
	weights := []struct {
		name  string
		value float64
	}{
		{"floorWeight", s.FloorWeight},
		{"spaceWeight", s.SpaceWeight},
		{"reuseWeight", s.ReuseWeight},
	}
	for _, w := range weights {
		if math.IsNaN(w.value) || math.IsInf(w.value, 0) {
			return fmt.Errorf("%s must be a finite number, got %v", w.name, w.value)
		}
		if w.value < 0 {
			return fmt.Errorf("%s must be >= 0, got %.2f", w.name, w.value)
		}
	}
	if s.TimeLimit < 0 {
		return fmt.Errorf("timeLimit must be >= 0, got %s", s.TimeLimit)
	}
	if s.MaxNodes < 0 {
		return fmt.Errorf("maxNodes must be >= 0, got %d", s.MaxNodes)
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", s.Workers)
	}
	return nil
}
