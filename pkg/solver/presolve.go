package solver

import "slices"

// presolveResult is the reduced problem handed to the search.
type presolveResult struct {
	// fixed holds 0 or 1 for variables fixed by presolve and -1 for free ones.
	fixed []int8
	// active marks the rows that still constrain the free variables.
	active []bool
	// cliques are Σ x <= 1 rows merged from pairwise conflicts. Each replaces the inactive
	// pair rows it covers in every relaxation.
	cliques []row

	infeasible  bool
	fixedVars   int
	removedRows int
}

// presolve removes rows that no 0/1 point satisfying the set-partitioning rows can violate
// and applies dual fixing until nothing changes. Conjunctions of two members of one clique
// are fixed to zero first, and the pairwise packing rows left at the end are merged into
// cliques.
//
// A set-partitioning row (Σ x = 1 with unit coefficients) is a clique: at most one of its
// members can be 1. Cliques are taken only from equality rows, which presolve never drops
// while they still have free variables, so every bound derived from them stays in force.
func presolve(m *model) presolveResult {
	n := len(m.obj)
	res := presolveResult{
		fixed:  make([]int8, n),
		active: make([]bool, len(m.rows)),
	}
	for j := range res.fixed {
		res.fixed[j] = -1
	}
	for i := range res.active {
		res.active[i] = true
	}
	varRows := m.varRows()
	cliques := m.cliqueRows()
	fixConjunctions(m, &res, varRows, cliques)

	for changed := true; changed; {
		changed = false
		for i, r := range m.rows {
			if !res.active[i] {
				continue
			}
			free, rhs := reduce(r, res.fixed)
			if len(free) == 0 {
				if !satisfied(r.sense, 0, rhs) {
					res.infeasible = true
					return res
				}
				res.active[i] = false
				res.removedRows++
				changed = true
				continue
			}
			if r.sense != Equal && redundant(r.sense, free, rhs, cliques) {
				res.active[i] = false
				res.removedRows++
				changed = true
			}
		}
		for j := 0; j < n; j++ {
			if res.fixed[j] >= 0 {
				continue
			}
			if v, ok := dualFix(m, j, varRows[j], res.active); ok {
				res.fixed[j] = v
				res.fixedVars++
				changed = true
			}
		}
	}
	mergeConflicts(m, &res)
	return res
}

// fixConjunctions fixes to 0 every variable l bounded by rows l - a <= 0 and l - b <= 0
// where a and b share a clique: a and b are never both 1, so neither is l.
func fixConjunctions(m *model, res *presolveResult, varRows, cliques [][]int) {
	for j := range m.obj {
		var parents []Var
		for _, i := range varRows[j] {
			if p, ok := boundedBy(m.rows[i], Var(j)); ok {
				parents = append(parents, p)
			}
		}
		if conflicting(parents, cliques) {
			res.fixed[j] = 0
			res.fixedVars++
		}
	}
}

// boundedBy matches r against l - p <= 0 and returns p.
func boundedBy(r row, l Var) (Var, bool) {
	if r.sense != LessOrEqual || r.rhs != 0 || len(r.terms) != 2 {
		return 0, false
	}
	parent := Var(-1)
	for _, t := range r.terms {
		switch {
		case t.Var == l && t.Coef == 1:
		case t.Var != l && t.Coef == -1:
			parent = t.Var
		default:
			return 0, false
		}
	}
	return parent, parent >= 0
}

// conflicting reports whether two distinct variables of vars share a clique.
func conflicting(vars []Var, cliques [][]int) bool {
	for i := range vars {
		for k := i + 1; k < len(vars); k++ {
			if vars[i] != vars[k] && len(intersect(cliques[vars[i]], cliques[vars[k]])) > 0 {
				return true
			}
		}
	}
	return false
}

// mergeConflicts replaces the active pair rows x + y <= 1 by cliques of the conflict graph
// they form. Every pair row ends up inside exactly one clique that implies it. Cliques are
// grown greedily in variable order, so the result is deterministic.
func mergeConflicts(m *model, res *presolveResult) {
	type pair struct {
		row  int
		u, v Var
	}
	var pairs []pair
	adj := make(map[Var]map[Var]bool)
	for i, r := range m.rows {
		if !res.active[i] {
			continue
		}
		u, v, ok := conflictPair(r, res.fixed)
		if !ok {
			continue
		}
		pairs = append(pairs, pair{row: i, u: u, v: v})
		for _, e := range [][2]Var{{u, v}, {v, u}} {
			if adj[e[0]] == nil {
				adj[e[0]] = make(map[Var]bool)
			}
			adj[e[0]][e[1]] = true
		}
	}

	member := make(map[Var][]int)
	for _, p := range pairs {
		if len(intersect(member[p.u], member[p.v])) == 0 {
			id := len(res.cliques)
			clique := growClique(adj, p.u, p.v)
			terms := make([]Term, len(clique))
			for k, w := range clique {
				terms[k] = Term{Var: w, Coef: 1}
				member[w] = append(member[w], id)
			}
			res.cliques = append(res.cliques, row{terms: terms, sense: LessOrEqual, rhs: 1})
		}
		res.active[p.row] = false
		res.removedRows++
	}
}

// conflictPair matches r, once fixed variables are substituted, against x + y <= 1.
func conflictPair(r row, fixed []int8) (Var, Var, bool) {
	if r.sense != LessOrEqual {
		return 0, 0, false
	}
	free, rhs := reduce(r, fixed)
	if len(free) != 2 || rhs != 1 || free[0].Coef != 1 || free[1].Coef != 1 {
		return 0, 0, false
	}
	return free[0].Var, free[1].Var, true
}

// growClique extends the edge u-v with every common neighbour, lowest first, that conflicts
// with all members taken so far.
func growClique(adj map[Var]map[Var]bool, u, v Var) []Var {
	var candidates []Var
	for w := range adj[u] {
		if w != v && adj[v][w] {
			candidates = append(candidates, w)
		}
	}
	slices.Sort(candidates)
	clique := []Var{u, v}
	for _, w := range candidates {
		if slices.ContainsFunc(clique, func(c Var) bool { return !adj[w][c] }) {
			continue
		}
		clique = append(clique, w)
	}
	slices.Sort(clique)
	return clique
}

// cliqueRows lists, per variable, the set-partitioning rows it belongs to.
func (m *model) cliqueRows() [][]int {
	idx := make([][]int, len(m.names))
	for i, r := range m.rows {
		if r.sense != Equal || r.rhs != 1 || len(r.terms) < 2 {
			continue
		}
		unit := true
		for _, t := range r.terms {
			if t.Coef != 1 {
				unit = false
				break
			}
		}
		if !unit {
			continue
		}
		for _, t := range r.terms {
			idx[t.Var] = append(idx[t.Var], i)
		}
	}
	return idx
}

// redundant reports whether an inequality over free 0/1 variables holds for every point
// allowed by the cliques.
func redundant(sense Sense, free []Term, rhs float64, cliques [][]int) bool {
	if sense == LessOrEqual {
		return maxActivity(free, cliques) <= rhs+feasibilityTol
	}
	neg := make([]Term, len(free))
	for i, t := range free {
		neg[i] = Term{Var: t.Var, Coef: -t.Coef}
	}
	// min Σ a·x >= rhs  <=>  max Σ -a·x <= -rhs
	return maxActivity(neg, cliques) <= -rhs+feasibilityTol
}

// maxActivity bounds Σ a·x from above for 0/1 x. Negative terms contribute nothing; when all
// positive terms share a clique only the largest of them can be 1.
func maxActivity(terms []Term, cliques [][]int) float64 {
	var pos []Term
	for _, t := range terms {
		if t.Coef > 0 {
			pos = append(pos, t)
		}
	}
	var sum, largest float64
	for _, t := range pos {
		sum += t.Coef
		largest = max(largest, t.Coef)
	}
	if len(pos) > 1 && shareClique(pos, cliques) {
		return largest
	}
	return sum
}

// shareClique reports whether all variables belong to one common clique row.
func shareClique(terms []Term, cliques [][]int) bool {
	common := cliques[terms[0].Var]
	for _, t := range terms[1:] {
		common = intersect(common, cliques[t.Var])
		if len(common) == 0 {
			return false
		}
	}
	return len(common) > 0
}

// intersect returns the common elements of two ascending slices.
func intersect(a, b []int) []int {
	var out []int
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i] == b[j]:
			out = append(out, a[i])
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return out
}

// dualFix fixes variable j when every active row it appears in, and the objective, are
// indifferent or better off with it at one bound.
func dualFix(m *model, j int, rows []int, active []bool) (int8, bool) {
	var upLocks, downLocks int
	for _, i := range rows {
		if !active[i] {
			continue
		}
		r := m.rows[i]
		coef := coefOf(r, Var(j))
		switch {
		case r.sense == Equal:
			upLocks++
			downLocks++
		case (r.sense == LessOrEqual) == (coef > 0):
			upLocks++
		default:
			downLocks++
		}
	}
	c := m.obj[j]
	if c >= 0 && downLocks == 0 {
		return 0, true
	}
	if c <= 0 && upLocks == 0 {
		return 1, true
	}
	return -1, false
}

func coefOf(r row, v Var) float64 {
	for _, t := range r.terms {
		if t.Var == v {
			return t.Coef
		}
	}
	return 0
}
