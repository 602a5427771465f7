package optimizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/omegabonobo/greedy-room-scheduler/pkg/config"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/core"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/solver"
)

// assertSchedule checks cardinality and that no room hosts two overlapping assignments.
func assertSchedule(result *Result, reqs []core.Request) {
	ExpectWithOffset(1, result.Assignments).To(HaveLen(len(reqs)))
	seen := make(map[int]bool)
	for _, a := range result.Assignments {
		ExpectWithOffset(1, seen[a.RequestID]).To(BeFalse(), "request %d assigned twice", a.RequestID)
		seen[a.RequestID] = true
		ExpectWithOffset(1, reqs[a.RequestID].Slots).To(ContainElement(a.Slot))
	}
	for i, a := range result.Assignments {
		for _, b := range result.Assignments[i+1:] {
			if a.RoomName == b.RoomName {
				ExpectWithOffset(1, a.Slot.Overlaps(b.Slot)).To(BeFalse(),
					"requests %d and %d overlap in %s", a.RequestID, b.RequestID, a.RoomName)
			}
		}
	}
}

var _ = Describe("Optimizer", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("NewOptimizer", func() {
		It("should reject a nil spec", func() {
			_, err := NewOptimizer(nil)
			Expect(err).To(HaveOccurred())
		})

		It("should reject negative weights", func() {
			spec := defaultSpec()
			spec.SpaceWeight = -1
			_, err := NewOptimizer(spec)
			Expect(err).To(MatchError(ContainSubstring("invalid optimizer spec")))
		})

		It("should apply budget defaults", func() {
			opt, err := NewOptimizer(&config.OptimizerSpec{FloorWeight: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(opt.Spec().TimeLimit).To(Equal(config.DefaultTimeLimit))
			Expect(opt.Spec().MaxNodes).To(Equal(config.DefaultMaxNodes))
			Expect(opt.Spec().SpaceWeight).To(BeZero())
		})
	})

	Context("with a single room", func() {
		It("should assign a request that fits", func() {
			inv := core.NewInventory(banquetRoom("R1", 1, 50))
			reqs := requests(banquet(40, slot("09:00", "10:00")))

			opt, err := NewOptimizer(defaultSpec())
			Expect(err).NotTo(HaveOccurred())
			result, err := opt.Optimize(ctx, inv, reqs)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.Assignments).To(Equal([]core.Assignment{
				{RequestID: 0, RoomName: "R1", Slot: slot("09:00", "10:00")},
			}))
			Expect(result.Breakdown).To(Equal(Breakdown{Floor: 0, Space: 10, Reuse: 1, Objective: 9}))
			Expect(result.Stats.Variables).To(Equal(1))
			Expect(result.Stats.Links).To(BeZero())
			Expect(result.Stats.Constraints.ExactlyOne).To(Equal(1))
			Expect(result.Stats.Status).To(Equal("Optimal"))
			Expect(result.Stats.RunID).NotTo(BeEmpty())
		})

		It("should fail when the room is too small", func() {
			inv := core.NewInventory(banquetRoom("R1", 1, 30))
			reqs := requests(banquet(40, slot("09:00", "10:00")))

			opt, err := NewOptimizer(defaultSpec())
			Expect(err).NotTo(HaveOccurred())
			result, err := opt.Optimize(ctx, inv, reqs)
			Expect(result).To(BeNil())
			Expect(errors.Is(err, ErrInfeasibleModel)).To(BeTrue())

			var infeasible *InfeasibleError
			Expect(errors.As(err, &infeasible)).To(BeTrue())
			Expect(infeasible.Unsatisfied).To(Equal([]Unsatisfied{{RequestID: 0, Reason: ReasonInsufficientCapacity}}))
		})

		It("should fail for an unknown space type", func() {
			inv := core.NewInventory(banquetRoom("R1", 1, 30))
			reqs := requests(core.Request{Type: "THEATRE", Headcount: 10, Slots: []core.TimeSlot{slot("09:00", "10:00")}})

			opt, _ := NewOptimizer(defaultSpec())
			_, err := opt.Optimize(ctx, inv, reqs)
			var infeasible *InfeasibleError
			Expect(errors.As(err, &infeasible)).To(BeTrue())
			Expect(infeasible.Unsatisfied[0].Reason).To(Equal(ReasonUnknownType))
		})

		It("should place back-to-back requests in the same room", func() {
			inv := core.NewInventory(banquetRoom("R1", 1, 50))
			reqs := requests(
				banquet(20, slot("09:00", "10:00")),
				banquet(20, slot("10:00", "11:00")),
			)

			opt, _ := NewOptimizer(defaultSpec())
			result, err := opt.Optimize(ctx, inv, reqs)
			Expect(err).NotTo(HaveOccurred())
			assertSchedule(result, reqs)
			Expect(result.Stats.Constraints.NoOverlap).To(BeZero())
		})

		It("should report overlapping requests that cannot be separated", func() {
			inv := core.NewInventory(banquetRoom("R1", 1, 50))
			reqs := requests(
				banquet(20, slot("09:00", "10:00")),
				banquet(20, slot("09:30", "10:30")),
			)

			opt, _ := NewOptimizer(defaultSpec())
			result, err := opt.Optimize(ctx, inv, reqs)
			Expect(result).To(BeNil())
			Expect(errors.Is(err, ErrInfeasibleModel)).To(BeTrue())
			var infeasible *InfeasibleError
			Expect(errors.As(err, &infeasible)).To(BeTrue())
			Expect(infeasible.Unsatisfied).To(BeEmpty())
		})

		It("should move a request to its alternative slot", func() {
			inv := core.NewInventory(banquetRoom("R1", 1, 50))
			reqs := requests(
				banquet(20, slot("09:00", "10:00")),
				banquet(20, slot("09:30", "10:30"), slot("13:00", "14:00")),
			)

			opt, _ := NewOptimizer(defaultSpec())
			result, err := opt.Optimize(ctx, inv, reqs)
			Expect(err).NotTo(HaveOccurred())
			assertSchedule(result, reqs)
			Expect(result.Assignments[1].Slot).To(Equal(slot("13:00", "14:00")))
		})
	})

	Context("with several rooms", func() {
		It("should separate two overlapping requests", func() {
			inv := core.NewInventory(banquetRoom("A", 1, 50), banquetRoom("B", 2, 50))
			reqs := requests(
				banquet(40, slot("09:00", "10:00")),
				banquet(40, slot("09:30", "10:30")),
			)

			opt, _ := NewOptimizer(defaultSpec())
			result, err := opt.Optimize(ctx, inv, reqs)
			Expect(err).NotTo(HaveOccurred())
			assertSchedule(result, reqs)
			Expect(result.Assignments[0].RoomName).NotTo(Equal(result.Assignments[1].RoomName))
		})

		It("should prefer the room with the least waste", func() {
			inv := core.NewInventory(banquetRoom("Hall", 1, 100), banquetRoom("Salon", 3, 45))
			reqs := requests(banquet(40, slot("09:00", "10:00")))

			opt, _ := NewOptimizer(defaultSpec())
			result, err := opt.Optimize(ctx, inv, reqs)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Assignments[0].RoomName).To(Equal("Salon"))
			Expect(result.Breakdown.Space).To(Equal(5.0))
		})

		It("should honor allowed rooms", func() {
			inv := core.NewInventory(banquetRoom("Hall", 1, 100), banquetRoom("Salon", 3, 45))
			req := banquet(40, slot("09:00", "10:00"))
			req.AllowedRooms = core.RoomSet("Hall")
			reqs := requests(req)

			opt, _ := NewOptimizer(defaultSpec())
			result, err := opt.Optimize(ctx, inv, reqs)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Assignments[0].RoomName).To(Equal("Hall"))
		})

		It("should report a room restriction", func() {
			inv := core.NewInventory(banquetRoom("Hall", 1, 100), banquetRoom("Closet", 3, 10))
			req := banquet(40, slot("09:00", "10:00"))
			req.AllowedRooms = core.RoomSet("Closet")
			reqs := requests(req)

			opt, _ := NewOptimizer(defaultSpec())
			_, err := opt.Optimize(ctx, inv, reqs)
			var infeasible *InfeasibleError
			Expect(errors.As(err, &infeasible)).To(BeTrue())
			Expect(infeasible.Unsatisfied[0].Reason).To(Equal(ReasonRoomRestriction))
		})

		It("should produce a valid schedule for a busy morning", func() {
			inv := core.NewInventory(
				banquetRoom("A", 1, 50),
				banquetRoom("B", 2, 30),
				banquetRoom("C", 2, 100),
			)
			reqs := requests(
				banquet(25, slot("09:00", "10:00")),
				banquet(45, slot("09:30", "10:30")),
				banquet(25, slot("10:00", "11:00")),
				banquet(80, slot("09:00", "11:00"), slot("11:00", "12:00")),
				banquet(10, slot("11:00", "12:00")),
				banquet(30, slot("09:00", "10:00"), slot("13:00", "14:00")),
			)

			opt, _ := NewOptimizer(defaultSpec())
			result, err := opt.Optimize(ctx, inv, reqs)
			Expect(err).NotTo(HaveOccurred())
			assertSchedule(result, reqs)
			Expect(result.Breakdown.Floor).To(BeZero())
		})
	})

	Context("objective properties", func() {
		var (
			inv  core.Inventory
			reqs []core.Request
		)

		BeforeEach(func() {
			inv = core.NewInventory(banquetRoom("A", 1, 50), banquetRoom("B", 4, 60), banquetRoom("C", 7, 45))
			restricted := banquet(40, slot("09:30", "10:30"))
			restricted.AllowedRooms = core.RoomSet("A", "B")
			reqs = requests(
				banquet(40, slot("09:00", "10:00")),
				restricted,
				banquet(20, slot("10:30", "11:30")),
			)
		})

		run := func(spec *config.OptimizerSpec) *Result {
			opt, err := NewOptimizer(spec)
			ExpectWithOffset(1, err).NotTo(HaveOccurred())
			result, err := opt.Optimize(ctx, inv, reqs)
			ExpectWithOffset(1, err).NotTo(HaveOccurred())
			return result
		}

		It("should find the unique optimum", func() {
			result := run(defaultSpec())
			Expect(result.Assignments).To(Equal([]core.Assignment{
				{RequestID: 0, RoomName: "C", Slot: slot("09:00", "10:00")},
				{RequestID: 1, RoomName: "A", Slot: slot("09:30", "10:30")},
				{RequestID: 2, RoomName: "C", Slot: slot("10:30", "11:30")},
			}))
			Expect(result.Breakdown).To(Equal(Breakdown{Floor: 0, Space: 40, Reuse: 3, Objective: 37}))
		})

		It("should be idempotent", func() {
			first := run(defaultSpec())
			second := run(defaultSpec())
			Expect(second.Assignments).To(Equal(first.Assignments))
			Expect(second.Breakdown).To(Equal(first.Breakdown))
		})

		It("should shift the objective by a constant when the reuse weight changes", func() {
			low := defaultSpec()
			low.ReuseWeight = 0
			high := defaultSpec()
			high.ReuseWeight = 5

			a := run(low)
			b := run(high)
			Expect(b.Assignments).To(Equal(a.Assignments))
			Expect(a.Breakdown.Objective - b.Breakdown.Objective).To(BeNumerically("~", 5*float64(len(reqs)), 1e-9))
		})

		It("should keep the realized floor term at zero for any floor weight", func() {
			for _, w := range []float64{0, 1, 10, 100} {
				spec := defaultSpec()
				spec.FloorWeight = w
				result := run(spec)
				Expect(result.Breakdown.Floor).To(BeZero())
				assertSchedule(result, reqs)
			}
		})

		It("should create link variables and leave them at zero", func() {
			spec := defaultSpec()
			sets, err := FilterCandidates(ctx, inv, reqs, 2)
			Expect(err).NotTo(HaveOccurred())
			vs, err := BuildVariableSpace(ctx, sets, 2)
			Expect(err).NotTo(HaveOccurred())
			s, err := solver.NewSolver(solver.BranchAndBoundBackend, spec)
			Expect(err).NotTo(HaveOccurred())
			Expect(vs.Materialize(s)).To(Succeed())
			constraints, _, err := GenerateConstraints(ctx, inv, reqs, sets, vs, 2)
			Expect(err).NotTo(HaveOccurred())
			for _, c := range constraints {
				s.AddConstraint(c.Terms, c.Sense, c.RHS)
			}
			s.SetObjective(BuildObjective(inv, reqs, vs, *spec))

			Expect(s.Minimize(ctx)).To(Equal(solver.Optimal))
			Expect(vs.LinkKeys()).To(HaveLen(7))
			for _, k := range vs.LinkKeys() {
				l, ok := vs.Link(k)
				Expect(ok).To(BeTrue())
				Expect(s.Value(l)).To(BeZero(), "link %s", k)
			}
		})
	})

	Context("when the solver does not reach optimality", func() {
		inv := core.NewInventory(banquetRoom("R1", 1, 50))
		reqs := requests(banquet(20, slot("09:00", "10:00")))

		DescribeTable("should return a solver error",
			func(status solver.Status) {
				opt, err := NewOptimizer(defaultSpec(), WithSolverFactory(stubFactory(status, nil)))
				Expect(err).NotTo(HaveOccurred())
				result, err := opt.Optimize(ctx, inv, reqs)
				Expect(result).To(BeNil())
				Expect(errors.Is(err, ErrSolver)).To(BeTrue())

				var solverErr *SolverError
				Expect(errors.As(err, &solverErr)).To(BeTrue())
				Expect(solverErr.Status).To(Equal(status))
			},
			Entry("budget exhausted with an incumbent", solver.Feasible),
			Entry("budget exhausted without an incumbent", solver.LimitReached),
			Entry("engine failure", solver.Error),
		)

		It("should expose the engine cause", func() {
			cause := errors.New("lp blew up")
			opt, _ := NewOptimizer(defaultSpec(), WithSolverFactory(stubFactory(solver.Error, cause)))
			_, err := opt.Optimize(ctx, inv, reqs)
			Expect(errors.Is(err, cause)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("lp blew up"))
		})

		It("should reject an optimal status with no assignment", func() {
			opt, _ := NewOptimizer(defaultSpec(), WithSolverFactory(stubFactory(solver.Optimal, nil)))
			_, err := opt.Optimize(ctx, inv, reqs)
			Expect(errors.Is(err, ErrSolver)).To(BeTrue())
		})
	})

	Context("with a crowded day", func() {
		// Ten rooms on five floors and ten single-slot requests spread over three
		// overlapping starts. Every pair of candidate rooms of a request carries a link.
		var (
			inv  core.Inventory
			reqs []core.Request
		)

		BeforeEach(func() {
			rooms := make([]core.Room, 10)
			for i := range rooms {
				rooms[i] = banquetRoom(fmt.Sprintf("R%d", i), 1+i%5, 40+10*i)
			}
			inv = core.NewInventory(rooms...)
			starts := [][2]string{{"09:00", "11:00"}, {"10:00", "12:00"}, {"11:00", "13:00"}}
			reqs = make([]core.Request, 10)
			for i := range reqs {
				s := starts[i%len(starts)]
				reqs[i] = banquet(20+10*i, slot(s[0], s[1]))
			}
			reqs = requests(reqs...)
		})

		It("should prove optimality well within the budget", func() {
			spec := defaultSpec()
			spec.TimeLimit = 10 * time.Second
			opt, err := NewOptimizer(spec)
			Expect(err).NotTo(HaveOccurred())

			result, err := opt.Optimize(ctx, inv, reqs)
			Expect(err).NotTo(HaveOccurred())
			assertSchedule(result, reqs)
			Expect(result.Stats.Status).To(Equal("Optimal"))
			Expect(result.Stats.Links).To(BeNumerically(">", 100))
			Expect(result.Stats.SolveDuration).To(BeNumerically("<", spec.TimeLimit))
			Expect(result.Stats.Nodes).To(BeNumerically("<", spec.MaxNodes))
			Expect(result.Breakdown.Floor).To(BeZero())
		})

		It("should do no worse than the greedy placement", func() {
			opt, err := NewOptimizer(defaultSpec())
			Expect(err).NotTo(HaveOccurred())
			result, err := opt.Optimize(ctx, inv, reqs)
			Expect(err).NotTo(HaveOccurred())

			sets, err := FilterCandidates(ctx, inv, reqs, 2)
			Expect(err).NotTo(HaveOccurred())
			chosen, err := GreedyPlacement(ctx, inv, reqs, sets)
			Expect(err).NotTo(HaveOccurred())
			Expect(chosen).NotTo(ContainElement(Unplaced))
			greedy := make([]core.Assignment, len(reqs))
			for r, i := range chosen {
				c := sets[r].Candidates[i]
				greedy[r] = core.Assignment{RequestID: r, RoomName: inv.Room(c.Room).Name, Slot: reqs[r].Slots[c.Slot]}
			}
			Expect(result.Breakdown.Objective).To(BeNumerically("<=", Evaluate(inv, reqs, greedy, opt.Spec()).Objective))
		})
	})

	Context("solver lifecycle", func() {
		var calls int

		counting := func(spec *config.OptimizerSpec) (solver.Solver, error) {
			calls++
			return solver.NewSolver(solver.BranchAndBoundBackend, spec)
		}

		BeforeEach(func() {
			calls = 0
		})

		It("should create one solver per run", func() {
			opt, err := NewOptimizer(defaultSpec(), WithSolverFactory(counting))
			Expect(err).NotTo(HaveOccurred())
			_, err = opt.Optimize(ctx, core.NewInventory(banquetRoom("R1", 1, 50)), requests(banquet(20, slot("09:00", "10:00"))))
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal(1))
		})

		It("should not create a solver when the model is never built", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			opt, err := NewOptimizer(defaultSpec(), WithSolverFactory(counting))
			Expect(err).NotTo(HaveOccurred())
			_, err = opt.Optimize(cancelled, core.NewInventory(banquetRoom("R1", 1, 50)), requests(banquet(20, slot("09:00", "10:00"))))
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			Expect(calls).To(BeZero())
		})

		It("should report a factory failure", func() {
			failing := func(*config.OptimizerSpec) (solver.Solver, error) {
				return nil, errors.New("no engine")
			}
			opt, err := NewOptimizer(defaultSpec(), WithSolverFactory(failing))
			Expect(err).NotTo(HaveOccurred())
			_, err = opt.Optimize(ctx, core.NewInventory(banquetRoom("R1", 1, 50)), requests(banquet(20, slot("09:00", "10:00"))))
			Expect(err).To(MatchError(ContainSubstring("failed to create solver")))
		})
	})

	It("should succeed with no requests", func() {
		opt, _ := NewOptimizer(defaultSpec())
		result, err := opt.Optimize(ctx, core.NewInventory(banquetRoom("R1", 1, 50)), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Assignments).To(BeEmpty())
		Expect(result.Breakdown.Objective).To(BeZero())
	})
})
