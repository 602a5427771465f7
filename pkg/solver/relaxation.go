package solver

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// lpTol is the pivoting tolerance handed to the simplex method.
const lpTol = 1e-10

// relaxation is the LP solution of one search node.
type relaxation struct {
	infeasible bool
	// bound is the relaxation objective, fixed variables included.
	bound float64
	// x holds a value for every variable of the model.
	x []float64
}

// relax solves the LP relaxation of m restricted to the rows presolve kept, its merged
// cliques included, with the variables of fixed substituted out. The free variables live in
// [0, 1]. It returns ctx.Err() if ctx is done before the LP is solved.
//
// The LP is brought to gonum's standard form  min cᵀx  s.t.  Ax = b, x >= 0  by adding one
// slack column per inequality and one bound row x + s = 1 per free variable whose upper bound
// is not already implied by a row with non-negative coefficients.
func relax(ctx context.Context, m *model, pre *presolveResult, fixed []int8) (relaxation, error) {
	n := len(m.obj)
	x := make([]float64, n)
	var constant float64
	cols := make(map[Var]int)
	var free []Var
	for j := 0; j < n; j++ {
		if fixed[j] >= 0 {
			x[j] = float64(fixed[j])
			constant += m.obj[j] * x[j]
			continue
		}
		cols[Var(j)] = len(free)
		free = append(free, Var(j))
	}

	type lpRow struct {
		terms []Term
		sense Sense
		rhs   float64
	}
	var rows []lpRow
	bounded := make([]bool, len(free))
	inequalities := 0
	kept := make([]row, 0, len(m.rows)+len(pre.cliques))
	for i, r := range m.rows {
		if pre.active[i] {
			kept = append(kept, r)
		}
	}
	kept = append(kept, pre.cliques...)
	for _, r := range kept {
		terms, rhs := reduce(r, fixed)
		if len(terms) == 0 {
			if !satisfied(r.sense, 0, rhs) {
				return relaxation{infeasible: true}, nil
			}
			continue
		}
		if r.sense != GreaterOrEqual && allPositive(terms) {
			for _, t := range terms {
				if rhs/t.Coef <= 1+feasibilityTol {
					bounded[cols[t.Var]] = true
				}
			}
		}
		if r.sense != Equal {
			inequalities++
		}
		rows = append(rows, lpRow{terms: terms, sense: r.sense, rhs: rhs})
	}
	if len(free) == 0 {
		return relaxation{bound: constant, x: x}, nil
	}

	var boundRows []int
	for k, ok := range bounded {
		if !ok {
			boundRows = append(boundRows, k)
		}
	}

	nRows := len(rows) + len(boundRows)
	nCols := len(free) + inequalities + len(boundRows)
	a := mat.NewDense(nRows, nCols, nil)
	b := make([]float64, nRows)
	c := make([]float64, nCols)
	for k, v := range free {
		c[k] = m.obj[v]
	}

	slack := len(free)
	for i, r := range rows {
		for _, t := range r.terms {
			a.Set(i, cols[t.Var], t.Coef)
		}
		switch r.sense {
		case LessOrEqual:
			a.Set(i, slack, 1)
			slack++
		case GreaterOrEqual:
			a.Set(i, slack, -1)
			slack++
		}
		b[i] = r.rhs
	}
	for k, col := range boundRows {
		i := len(rows) + k
		a.Set(i, col, 1)
		a.Set(i, slack, 1)
		slack++
		b[i] = 1
	}
	for i := range b {
		if b[i] < 0 {
			for j := 0; j < nCols; j++ {
				if v := a.At(i, j); v != 0 {
					a.Set(i, j, -v)
				}
			}
			b[i] = -b[i]
		}
	}

	opt, sol, err := simplex(ctx, c, a, b)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return relaxation{infeasible: true}, nil
		}
		return relaxation{}, err
	}
	for k, v := range free {
		x[v] = sol[k]
	}
	return relaxation{bound: opt + constant, x: x}, nil
}

// simplex runs lp.Simplex until it returns or ctx is done, turning its input-shape panics
// into errors. lp.Simplex cannot be interrupted, so on cancellation it is left to finish in
// the background and its result is discarded.
func simplex(ctx context.Context, c []float64, a mat.Matrix, b []float64) (float64, []float64, error) {
	type outcome struct {
		opt float64
		x   []float64
		err error
	}
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	done := make(chan outcome, 1)
	go func() {
		var out outcome
		defer func() {
			if r := recover(); r != nil {
				out.err = fmt.Errorf("lp: %v", r)
			}
			done <- out
		}()
		out.opt, out.x, out.err = lp.Simplex(c, a, b, lpTol, nil)
	}()
	select {
	case out := <-done:
		return out.opt, out.x, out.err
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	}
}

func allPositive(terms []Term) bool {
	for _, t := range terms {
		if t.Coef <= 0 {
			return false
		}
	}
	return true
}
