package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"k8s.io/utils/ptr"

	"github.com/omegabonobo/greedy-room-scheduler/api/v1alpha1"
	"github.com/omegabonobo/greedy-room-scheduler/internal/engines/assigner"
	"github.com/omegabonobo/greedy-room-scheduler/internal/logging"
	"github.com/omegabonobo/greedy-room-scheduler/internal/optimizer"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/core"
)

type solveOptions struct {
	requests string
	profile  string
	strategy string
	output   string

	floorWeight float64
	spaceWeight float64
	reuseWeight float64
}

func newSolveCommand(a *app) *cobra.Command {
	o := &solveOptions{}
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Schedule the requests of a file against the room inventory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.run(cmd, a)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&o.requests, "requests", "r", "", "YAML or JSON file with the schedule request")
	addInventoryFlags(flags)
	flags.StringVar(&o.profile, "profile", "", "named weight profile")
	flags.StringVar(&o.strategy, "strategy", "", "assignment strategy (optimal or greedy)")
	flags.StringVarP(&o.output, "output", "o", "table", "output format (table, json, or yaml)")
	flags.Float64Var(&o.floorWeight, "floor-weight", 0, "override the floor distance weight")
	flags.Float64Var(&o.spaceWeight, "space-weight", 0, "override the unused capacity weight")
	flags.Float64Var(&o.reuseWeight, "reuse-weight", 0, "override the room reuse weight")
	_ = cmd.MarkFlagRequired("requests")
	return cmd
}

func (o *solveOptions) run(cmd *cobra.Command, a *app) error {
	ctx := cmd.Context()
	format, err := parseOutputFormat(o.output)
	if err != nil {
		return err
	}

	req, err := readScheduleRequest(o.requests)
	if err != nil {
		return err
	}
	o.overrideWeights(cmd, req)
	if err := req.Validate(); err != nil {
		return err
	}
	requests, err := req.ToCore()
	if err != nil {
		return err
	}

	inv, err := o.inventory(a, req)
	if err != nil {
		return err
	}
	global, err := a.global(inv)
	if err != nil {
		return err
	}

	profile := firstNonEmpty(o.profile, req.Profile)
	spec, err := global.OptimizerSpec(profile)
	if err != nil {
		return err
	}
	spec = req.Weights.Apply(spec)

	strategy, err := assigner.ParseStrategy(firstNonEmpty(o.strategy, req.Strategy, a.config.Strategy))
	if err != nil {
		return err
	}
	asg, err := assigner.NewAssigner(strategy, &spec)
	if err != nil {
		return err
	}

	logger := logging.Log().WithValues("strategy", strategy.String())
	ctx = logging.IntoContext(ctx, logger)
	logger.Info("Scheduling", "rooms", global.GetInventory().Len(), "requests", len(requests))

	result, err := asg.Assign(ctx, global.GetInventory(), requests)
	if err != nil {
		var infeasible *optimizer.InfeasibleError
		if errors.As(err, &infeasible) && len(infeasible.Unsatisfied) > 0 {
			_ = writeUnsatisfied(cmd.ErrOrStderr(), infeasible.Unsatisfied)
		}
		return err
	}
	return writeResult(cmd.OutOrStdout(), format, v1alpha1.NewScheduleResult(result))
}

// inventory returns the rooms inlined in the request, or the configured inventory file.
func (o *solveOptions) inventory(a *app, req *v1alpha1.ScheduleRequest) (core.Inventory, error) {
	if len(req.Rooms) > 0 {
		return req.Inventory()
	}
	return a.loadInventory(true)
}

// overrideWeights folds the weight flags that were set into the request's inline weights.
func (o *solveOptions) overrideWeights(cmd *cobra.Command, req *v1alpha1.ScheduleRequest) {
	flags := cmd.Flags()
	overrides := []struct {
		flag  string
		value float64
		field func(w *v1alpha1.WeightsSpec) **float64
	}{
		{"floor-weight", o.floorWeight, func(w *v1alpha1.WeightsSpec) **float64 { return &w.Floor }},
		{"space-weight", o.spaceWeight, func(w *v1alpha1.WeightsSpec) **float64 { return &w.Space }},
		{"reuse-weight", o.reuseWeight, func(w *v1alpha1.WeightsSpec) **float64 { return &w.Reuse }},
	}
	for _, ov := range overrides {
		if !flags.Changed(ov.flag) {
			continue
		}
		if req.Weights == nil {
			req.Weights = &v1alpha1.WeightsSpec{}
		}
		*ov.field(req.Weights) = ptr.To(ov.value)
	}
}

// readScheduleRequest decodes a request file. YAML is a superset of JSON, so both
// are read with the YAML decoder; the extension only guards against other files.
func readScheduleRequest(path string) (*v1alpha1.ScheduleRequest, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("%w: unsupported request file %q", optimizer.ErrMalformedInput, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read requests: %w", err)
	}
	req := &v1alpha1.ScheduleRequest{}
	if err := yaml.Unmarshal(data, req); err != nil {
		return nil, fmt.Errorf("%w: %v", optimizer.ErrMalformedInput, err)
	}
	return req, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
