// Package ginicheck is a test-only verifier that loads a *cnf.Formula into
// github.com/irifrance/gini and solves it, used to check testable
// property 5 (satisfiability preserved over optimize, in optimize_test.go)
// without making a SAT solver part of the core: per spec §1,
// "the core is not a SAT solver", so this package is never imported by
// pkg/optimize or pkg/cnf itself.
package ginicheck

import (
	"fmt"

	"github.com/irifrance/gini"
	"github.com/irifrance/gini/z"

	"github.com/sophisticatedways/cgen-go/pkg/cnf"
	"github.com/sophisticatedways/cgen-go/pkg/lit"
)

// Load builds a gini.Gini instance from every included clause of f
// (aggregated clauses are expanded to their constituent plain clauses,
// as gini only accepts flat CNF).
func Load(f *cnf.Formula) *gini.Gini {
	g := gini.New()
	for _, id := range f.AllIDs() {
		if f.Excluded(id) {
			continue
		}
		for _, clause := range expand(f, id) {
			for _, l := range clause {
				g.Add(toGini(l))
			}
			g.Add(0)
		}
	}
	return g
}

// Assume adds unit assumptions pinning each bit in bits (skipping the
// unassigned sentinel) to its literal's value, for checking a formula
// under a named-variable binding.
func Assume(g *gini.Gini, bits []lit.ID) {
	for _, l := range bits {
		if lit.IsUnassigned(l) || !lit.IsVariable(l) {
			continue
		}
		g.Assume(toGini(l))
	}
}

// Satisfiable solves g and reports whether it is SAT.
func Satisfiable(g *gini.Gini) bool {
	return g.Solve() == 1
}

// ValueOf reads the concrete boolean assigned to l in a SAT model, honoring
// its sign.
func ValueOf(g *gini.Gini, l lit.ID) (bool, error) {
	if lit.IsConstant(l) {
		return lit.ConstValue(l) != 0, nil
	}
	if !lit.IsVariable(l) {
		return false, fmt.Errorf("ginicheck: literal has no concrete value")
	}
	v := g.Value(z.Var(int(lit.VariableID(l)) + 1).Pos())
	if lit.IsNegated(l) {
		return !v, nil
	}
	return v, nil
}

func toGini(l lit.ID) z.Lit {
	v := z.Var(int(lit.VariableID(l)) + 1)
	if lit.IsNegated(l) {
		return v.Neg()
	}
	return v.Pos()
}

func expand(f *cnf.Formula, id cnf.ID) [][]lit.ID {
	lits := f.Literals(id)
	if !f.IsAggregated(id) {
		return [][]lit.ID{lits}
	}
	flags := f.Flags(id)
	n := len(lits)
	var out [][]lit.ID
	for combo := 0; combo < 1<<uint(n); combo++ {
		if flags&(1<<uint(combo)) == 0 {
			continue
		}
		clause := make([]lit.ID, n)
		for i, v := range lits {
			clause[i] = lit.NegatedOnlyIf(v, combo&(1<<uint(i)) != 0)
		}
		out = append(out, clause)
	}
	return out
}
