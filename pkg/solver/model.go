package solver

import (
	"fmt"
	"math"
	"sort"
)

// feasibilityTol is the absolute slack allowed when checking a constraint.
const feasibilityTol = 1e-6

// row is a normalized linear constraint: merged terms with non-zero coefficients,
// ordered by variable.
type row struct {
	terms []Term
	sense Sense
	rhs   float64
}

// model stores the variables, constraints and objective shared by every backend.
type model struct {
	names []string
	obj   []float64
	rows  []row
	hints map[Var]float64
	err   error
}

// NewBoolVar declares a 0/1 variable.
func (m *model) NewBoolVar(name string) Var {
	m.names = append(m.names, name)
	m.obj = append(m.obj, 0)
	return Var(len(m.names) - 1)
}

// AddConstraint adds Σ terms (sense) rhs. Duplicate variables are merged.
func (m *model) AddConstraint(terms []Term, sense Sense, rhs float64) {
	merged, err := m.merge(terms)
	if err != nil {
		m.recordErr(fmt.Errorf("constraint %d: %w", len(m.rows), err))
		return
	}
	if sense < LessOrEqual || sense > GreaterOrEqual {
		m.recordErr(fmt.Errorf("constraint %d: unknown sense %v", len(m.rows), sense))
		return
	}
	m.rows = append(m.rows, row{terms: merged, sense: sense, rhs: rhs})
}

// SetObjective replaces the objective.
func (m *model) SetObjective(terms []Term) {
	for i := range m.obj {
		m.obj[i] = 0
	}
	for _, t := range terms {
		if !m.valid(t.Var) {
			m.recordErr(fmt.Errorf("objective: unknown variable %d", t.Var))
			return
		}
		m.obj[t.Var] += t.Coef
	}
}

// AddHint suggests a value for v. Unhinted variables are read as 0 when the hints are
// assembled into a starting solution.
func (m *model) AddHint(v Var, value float64) {
	if !m.valid(v) {
		m.recordErr(fmt.Errorf("hint: unknown variable %d", v))
		return
	}
	if m.hints == nil {
		m.hints = make(map[Var]float64)
	}
	m.hints[v] = value
}

// hinted returns the hinted point, rounded to 0/1, when it satisfies every constraint.
func (m *model) hinted() ([]float64, bool) {
	if len(m.hints) == 0 {
		return nil, false
	}
	x := make([]float64, len(m.names))
	for v, value := range m.hints {
		if value >= 0.5 {
			x[v] = 1
		}
	}
	return x, m.feasible(x)
}

// Name returns the display label of v.
func (m *model) Name(v Var) string {
	if !m.valid(v) {
		return ""
	}
	return m.names[v]
}

// NumVars returns the number of declared variables.
func (m *model) NumVars() int {
	return len(m.names)
}

// NumConstraints returns the number of constraints added so far.
func (m *model) NumConstraints() int {
	return len(m.rows)
}

func (m *model) valid(v Var) bool {
	return v >= 0 && int(v) < len(m.names)
}

func (m *model) recordErr(err error) {
	if m.err == nil {
		m.err = err
	}
}

func (m *model) merge(terms []Term) ([]Term, error) {
	coefs := make(map[Var]float64, len(terms))
	for _, t := range terms {
		if !m.valid(t.Var) {
			return nil, fmt.Errorf("unknown variable %d", t.Var)
		}
		if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) {
			return nil, fmt.Errorf("non-finite coefficient for variable %d", t.Var)
		}
		coefs[t.Var] += t.Coef
	}
	merged := make([]Term, 0, len(coefs))
	for v, c := range coefs {
		if c != 0 {
			merged = append(merged, Term{Var: v, Coef: c})
		}
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Var < merged[j].Var })
	return merged, nil
}

// varRows indexes, for every variable, the rows it appears in.
func (m *model) varRows() [][]int {
	idx := make([][]int, len(m.names))
	for i, r := range m.rows {
		for _, t := range r.terms {
			idx[t.Var] = append(idx[t.Var], i)
		}
	}
	return idx
}

// objective evaluates the objective at x.
func (m *model) objective(x []float64) float64 {
	var sum float64
	for j, c := range m.obj {
		sum += c * x[j]
	}
	return sum
}

// feasible reports whether x satisfies every constraint.
func (m *model) feasible(x []float64) bool {
	for _, r := range m.rows {
		var act float64
		for _, t := range r.terms {
			act += t.Coef * x[t.Var]
		}
		if !satisfied(r.sense, act, r.rhs) {
			return false
		}
	}
	return true
}

// satisfied reports whether activity (sense) rhs holds within feasibilityTol.
func satisfied(sense Sense, activity, rhs float64) bool {
	switch sense {
	case LessOrEqual:
		return activity <= rhs+feasibilityTol
	case GreaterOrEqual:
		return activity >= rhs-feasibilityTol
	default:
		return math.Abs(activity-rhs) <= feasibilityTol
	}
}

// reduce substitutes fixed variables into r, returning the remaining free terms and the
// adjusted right-hand side. fixed[j] < 0 marks a free variable.
func reduce(r row, fixed []int8) ([]Term, float64) {
	rhs := r.rhs
	free := make([]Term, 0, len(r.terms))
	for _, t := range r.terms {
		if fixed[t.Var] >= 0 {
			rhs -= t.Coef * float64(fixed[t.Var])
			continue
		}
		free = append(free, t)
	}
	return free, rhs
}
