package optimizer

import (
	"context"

	"github.com/omegabonobo/greedy-room-scheduler/pkg/config"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/core"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/solver"
)

const day = "2025-03-01 "

// slot parses a slot on a fixed day from "15:04" clock times.
func slot(start, end string) core.TimeSlot {
	s, err := core.ParseTimeSlot(day+start, day+end)
	if err != nil {
		panic(err)
	}
	return s
}

func banquetRoom(name string, floor, capacity int) core.Room {
	return core.NewRoom(name, floor, map[string]int{"BANQUET": capacity})
}

// requests numbers the given requests by their position.
func requests(reqs ...core.Request) []core.Request {
	for i := range reqs {
		reqs[i].ID = i
	}
	return reqs
}

func banquet(headcount int, slots ...core.TimeSlot) core.Request {
	return core.Request{Type: "BANQUET", Headcount: headcount, Slots: slots}
}

func defaultSpec() *config.OptimizerSpec {
	spec := config.DefaultOptimizerSpec()
	return &spec
}

// stubSolver reports a fixed status without searching.
type stubSolver struct {
	*solver.BranchAndBound
	status solver.Status
	err    error
}

func (s *stubSolver) Minimize(context.Context) solver.Status { return s.status }
func (s *stubSolver) Status() solver.Status                  { return s.status }
func (s *stubSolver) Err() error                             { return s.err }

func stubFactory(status solver.Status, err error) SolverFactory {
	return func(spec *config.OptimizerSpec) (solver.Solver, error) {
		return &stubSolver{BranchAndBound: solver.NewBranchAndBound(spec.TimeLimit, spec.MaxNodes), status: status, err: err}, nil
	}
}
