package solver_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/omegabonobo/greedy-room-scheduler/pkg/config"
	"github.com/omegabonobo/greedy-room-scheduler/pkg/solver"
)

func terms(vars []solver.Var, coefs ...float64) []solver.Term {
	out := make([]solver.Term, len(vars))
	for i, v := range vars {
		out[i] = solver.Term{Var: v, Coef: coefs[i]}
	}
	return out
}

// knapsack builds max 10a + 13b + 7c s.t. 5a + 6b + 4c <= 10 as a minimization.
// Its root relaxation is fractional (b = 1, a = 0.8).
func knapsack(s solver.Solver) []solver.Var {
	vars := []solver.Var{s.NewBoolVar("a"), s.NewBoolVar("b"), s.NewBoolVar("c")}
	s.AddConstraint(terms(vars, 5, 6, 4), solver.LessOrEqual, 10)
	s.SetObjective(terms(vars, -10, -13, -7))
	return vars
}

var _ = Describe("BranchAndBound", func() {
	var (
		ctx context.Context
		s   *solver.BranchAndBound
	)

	BeforeEach(func() {
		ctx = context.Background()
		s = solver.NewBranchAndBound(10*time.Second, 10000)
	})

	Context("with a set-partitioning model", func() {
		It("should pick the cheapest member", func() {
			x := s.NewBoolVar("x")
			y := s.NewBoolVar("y")
			z := s.NewBoolVar("z")
			s.AddConstraint(terms([]solver.Var{x, y, z}, 1, 1, 1), solver.Equal, 1)
			s.SetObjective(terms([]solver.Var{x, y, z}, 3, 1, 2))

			Expect(s.Minimize(ctx)).To(Equal(solver.Optimal))
			Expect(s.Status()).To(Equal(solver.Optimal))
			Expect(s.Value(x)).To(Equal(0.0))
			Expect(s.Value(y)).To(Equal(1.0))
			Expect(s.Value(z)).To(Equal(0.0))
			Expect(s.ObjectiveValue()).To(BeNumerically("~", 1, 1e-9))
		})

		It("should merge duplicate terms", func() {
			x := s.NewBoolVar("x")
			y := s.NewBoolVar("y")
			// 0.5x + 0.5x + y == 1
			s.AddConstraint([]solver.Term{{Var: x, Coef: 0.5}, {Var: x, Coef: 0.5}, {Var: y, Coef: 1}}, solver.Equal, 1)
			s.SetObjective(terms([]solver.Var{x, y}, 1, 4))

			Expect(s.Minimize(ctx)).To(Equal(solver.Optimal))
			Expect(s.Value(x)).To(Equal(1.0))
			Expect(s.NumConstraints()).To(Equal(1))
		})
	})

	Context("with a model that needs branching", func() {
		It("should find the integral optimum", func() {
			vars := knapsack(s)

			Expect(s.Minimize(ctx)).To(Equal(solver.Optimal))
			Expect(s.Value(vars[0])).To(Equal(0.0))
			Expect(s.Value(vars[1])).To(Equal(1.0))
			Expect(s.Value(vars[2])).To(Equal(1.0))
			Expect(s.ObjectiveValue()).To(BeNumerically("~", -20, 1e-9))
			Expect(s.Nodes()).To(BeNumerically(">", 1))
		})

		It("should return the same solution on every run", func() {
			vars := knapsack(s)
			Expect(s.Minimize(ctx)).To(Equal(solver.Optimal))
			first := []float64{s.Value(vars[0]), s.Value(vars[1]), s.Value(vars[2])}

			Expect(s.Minimize(ctx)).To(Equal(solver.Optimal))
			Expect([]float64{s.Value(vars[0]), s.Value(vars[1]), s.Value(vars[2])}).To(Equal(first))
		})
	})

	Context("with greater-or-equal rows and negative right-hand sides", func() {
		It("should honor both", func() {
			x := s.NewBoolVar("x")
			y := s.NewBoolVar("y")
			s.AddConstraint(terms([]solver.Var{x, y}, 1, 1), solver.GreaterOrEqual, 1)
			// -x <= -1 forces x = 1
			s.AddConstraint(terms([]solver.Var{x}, -1), solver.LessOrEqual, -1)
			s.SetObjective(terms([]solver.Var{x, y}, 5, 1))

			Expect(s.Minimize(ctx)).To(Equal(solver.Optimal))
			Expect(s.Value(x)).To(Equal(1.0))
			Expect(s.Value(y)).To(Equal(0.0))
		})
	})

	Context("with an infeasible model", func() {
		It("should report Infeasible and no values", func() {
			x := s.NewBoolVar("x")
			y := s.NewBoolVar("y")
			s.AddConstraint(terms([]solver.Var{x, y}, 1, 1), solver.Equal, 1)
			s.AddConstraint(terms([]solver.Var{x, y}, 1, 1), solver.GreaterOrEqual, 2)

			Expect(s.Minimize(ctx)).To(Equal(solver.Infeasible))
			Expect(s.Value(x)).To(Equal(0.0))
			Expect(s.Err()).NotTo(HaveOccurred())
		})

		It("should report an empty equality as Infeasible", func() {
			s.NewBoolVar("x")
			s.AddConstraint(nil, solver.Equal, 1)

			Expect(s.Minimize(ctx)).To(Equal(solver.Infeasible))
		})
	})

	Context("with an empty model", func() {
		It("should be trivially optimal", func() {
			Expect(s.Minimize(ctx)).To(Equal(solver.Optimal))
			Expect(s.ObjectiveValue()).To(Equal(0.0))
		})
	})

	Context("with a conjunction variable", func() {
		It("should presolve the auxiliary to zero", func() {
			a := s.NewBoolVar("a")
			b := s.NewBoolVar("b")
			l := s.NewBoolVar("l")
			s.AddConstraint(terms([]solver.Var{a, b}, 1, 1), solver.Equal, 1)
			s.AddConstraint(terms([]solver.Var{l, a}, 1, -1), solver.LessOrEqual, 0)
			s.AddConstraint(terms([]solver.Var{l, b}, 1, -1), solver.LessOrEqual, 0)
			s.AddConstraint(terms([]solver.Var{l, a, b}, 1, -1, -1), solver.GreaterOrEqual, -1)
			s.SetObjective(terms([]solver.Var{a, b, l}, 2, 1, 7))

			Expect(s.Minimize(ctx)).To(Equal(solver.Optimal))
			Expect(s.Value(l)).To(Equal(0.0))
			Expect(s.Value(b)).To(Equal(1.0))
			Expect(s.ObjectiveValue()).To(BeNumerically("~", 1, 1e-9))
		})

		It("should keep the auxiliary at zero even when it is rewarded", func() {
			a := s.NewBoolVar("a")
			b := s.NewBoolVar("b")
			l := s.NewBoolVar("l")
			s.AddConstraint(terms([]solver.Var{a, b}, 1, 1), solver.Equal, 1)
			s.AddConstraint(terms([]solver.Var{l, a}, 1, -1), solver.LessOrEqual, 0)
			s.AddConstraint(terms([]solver.Var{l, b}, 1, -1), solver.LessOrEqual, 0)
			s.AddConstraint(terms([]solver.Var{l, a, b}, 1, -1, -1), solver.GreaterOrEqual, -1)
			s.SetObjective(terms([]solver.Var{a, b, l}, 2, 1, -7))

			Expect(s.Minimize(ctx)).To(Equal(solver.Optimal))
			Expect(s.Value(l)).To(Equal(0.0))
			Expect(s.Value(b)).To(Equal(1.0))
		})
	})

	Context("with overlapping pairwise conflicts", func() {
		// Five requests, each choosing one of two rooms, where every pair of requests
		// conflicts in both rooms. At most two of them can be placed, so the model is
		// infeasible; the pairwise rows alone leave the relaxation at one half everywhere.
		It("should prove infeasibility", func() {
			var rows [2][]solver.Var
			for r := 0; r < 5; r++ {
				x := s.NewBoolVar("x")
				y := s.NewBoolVar("y")
				s.AddConstraint(terms([]solver.Var{x, y}, 1, 1), solver.Equal, 1)
				rows[0] = append(rows[0], x)
				rows[1] = append(rows[1], y)
			}
			for _, room := range rows {
				for i := range room {
					for j := i + 1; j < len(room); j++ {
						s.AddConstraint(terms([]solver.Var{room[i], room[j]}, 1, 1), solver.LessOrEqual, 1)
					}
				}
			}

			Expect(s.Minimize(ctx)).To(Equal(solver.Infeasible))
			Expect(s.Nodes()).To(Equal(1))
		})
	})

	Context("with a hint", func() {
		It("should keep a feasible hint when the budget ends the search", func() {
			s = solver.NewBranchAndBound(0, 1)
			vars := knapsack(s)
			s.AddHint(vars[1], 1)
			s.AddHint(vars[2], 1)

			Expect(s.Minimize(ctx)).To(Equal(solver.Feasible))
			Expect(s.Value(vars[0])).To(Equal(0.0))
			Expect(s.Value(vars[1])).To(Equal(1.0))
			Expect(s.Value(vars[2])).To(Equal(1.0))
			Expect(s.ObjectiveValue()).To(BeNumerically("~", -20, 1e-9))
		})

		It("should ignore a hint that violates a constraint", func() {
			s = solver.NewBranchAndBound(0, 1)
			vars := knapsack(s)
			for _, v := range vars {
				s.AddHint(v, 1)
			}

			Expect(s.Minimize(ctx)).To(Equal(solver.LimitReached))
		})

		It("should still prove optimality from a suboptimal hint", func() {
			vars := knapsack(s)
			s.AddHint(vars[0], 1)

			Expect(s.Minimize(ctx)).To(Equal(solver.Optimal))
			Expect(s.ObjectiveValue()).To(BeNumerically("~", -20, 1e-9))
		})

		It("should report Error for an unknown variable", func() {
			s.NewBoolVar("x")
			s.AddHint(solver.Var(3), 1)

			Expect(s.Minimize(ctx)).To(Equal(solver.Error))
			Expect(s.Err()).To(MatchError(ContainSubstring("hint")))
		})
	})

	Context("with an exhausted budget", func() {
		It("should stop without an incumbent when the node budget is one", func() {
			s = solver.NewBranchAndBound(0, 1)
			knapsack(s)

			Expect(s.Minimize(ctx)).To(Equal(solver.LimitReached))
			Expect(s.Nodes()).To(Equal(1))
		})

		It("should stop when the context is already done", func() {
			knapsack(s)
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			Expect(s.Minimize(cancelled)).To(Equal(solver.LimitReached))
		})

		It("should stop at the time limit", func() {
			s = solver.NewBranchAndBound(time.Nanosecond, 0)
			knapsack(s)

			start := time.Now()
			Expect(s.Minimize(ctx)).To(Equal(solver.LimitReached))
			Expect(time.Since(start)).To(BeNumerically("<", time.Second))
		})
	})

	Context("with an invalid model", func() {
		It("should report Error for unknown variables", func() {
			s.NewBoolVar("x")
			s.AddConstraint([]solver.Term{{Var: 5, Coef: 1}}, solver.LessOrEqual, 1)

			Expect(s.Minimize(ctx)).To(Equal(solver.Error))
			Expect(s.Err()).To(MatchError(ContainSubstring("unknown variable")))
		})
	})
})

var _ = Describe("NewSolver", func() {
	It("should reject a nil spec", func() {
		_, err := solver.NewSolver(solver.BranchAndBoundBackend, nil)
		Expect(err).To(HaveOccurred())
	})

	It("should reject an unknown backend", func() {
		spec := config.DefaultOptimizerSpec()
		_, err := solver.NewSolver(solver.Backend(42), &spec)
		Expect(err).To(HaveOccurred())
	})

	It("should bound a search configured without limits", func() {
		s, err := solver.NewSolver(solver.BranchAndBoundBackend, &config.OptimizerSpec{})
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(BeAssignableToTypeOf(&solver.BranchAndBound{}))
	})

	DescribeTable("ParseBackend",
		func(name string, want solver.Backend, wantErr bool) {
			got, err := solver.ParseBackend(name)
			if wantErr {
				Expect(err).To(HaveOccurred())
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("empty", "", solver.BranchAndBoundBackend, false),
		Entry("long name", "branch-and-bound", solver.BranchAndBoundBackend, false),
		Entry("short name", "bnb", solver.BranchAndBoundBackend, false),
		Entry("unknown", "scip", solver.Backend(0), true),
	)
})
