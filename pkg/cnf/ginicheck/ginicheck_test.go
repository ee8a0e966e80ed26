package ginicheck

import (
	"testing"

	"github.com/sophisticatedways/cgen-go/pkg/cnf"
	"github.com/sophisticatedways/cgen-go/pkg/lit"
)

func TestLoadSatisfiableSimpleFormula(t *testing.T) {
	f := cnf.NewFormula()
	x := f.NewVariable()
	y := f.NewVariable()
	f.AddClause(x, y)
	f.AddClause(lit.Negate(x), y)

	g := Load(f)
	if !Satisfiable(g) {
		t.Fatalf("expected formula to be satisfiable")
	}
	val, err := ValueOf(g, y)
	if err != nil {
		t.Fatalf("ValueOf: %v", err)
	}
	if !val {
		t.Fatalf("y must be true for both clauses to hold, got false")
	}
}

func TestAssumeForcesUnsat(t *testing.T) {
	f := cnf.NewFormula()
	x := f.NewVariable()
	f.AddClause(x)

	g := Load(f)
	Assume(g, []lit.ID{lit.Negate(x)})
	if Satisfiable(g) {
		t.Fatalf("expected UNSAT: unit clause (x) contradicts assumption -x")
	}
}
