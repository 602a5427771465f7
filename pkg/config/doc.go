// Package config provides the tuning parameters of a scheduling run.
//
// OptimizerSpec carries the three objective weights and the solver budget:
//
//   - FloorWeight: penalty per floor of distance between linked candidate rooms
//   - SpaceWeight: penalty per unused seat in the chosen room
//   - ReuseWeight: bonus per assignment variable set to one
//   - TimeLimit, MaxNodes: wall-clock and node budget of the branch-and-bound search
//   - Workers: bound on goroutines used while building the model
//
// Example usage:
//
//	spec := config.DefaultOptimizerSpec()
//	spec.SpaceWeight = 0.5
//	if err := spec.Validate(); err != nil {
//	    return err
//	}
//
// Zero budget values are replaced by defaults in WithDefaults; weights are taken as given,
// so a zero weight switches its objective term off.
package config
