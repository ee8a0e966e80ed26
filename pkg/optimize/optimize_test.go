package optimize

import (
	"testing"

	"github.com/sophisticatedways/cgen-go/pkg/cnf"
	"github.com/sophisticatedways/cgen-go/pkg/cnf/ginicheck"
	"github.com/sophisticatedways/cgen-go/pkg/lit"
)

// TestSubsumptionRemovesDominatedTernary covers seed scenario S3: a binary
// clause (x1 v x2) subsumes every ternary clause (x1 v x2 v *) sharing its
// variable set, leaving only the ternary combinations the binary clause
// doesn't already force.
func TestSubsumptionRemovesDominatedTernary(t *testing.T) {
	f := cnf.NewFormula()
	v1 := f.NewVariable()
	v2 := f.NewVariable()
	v3 := f.NewVariable()

	f.AddClause(v1, v2)
	f.AddClause(v1, v2, v3)
	f.AddClause(v1, v2, lit.Negate(v3))

	o := New(f)
	if err := o.Run(All); err != nil {
		t.Fatalf("Run: %v", err)
	}

	id, ok := f.Find([]lit.ID{v1, v2, v3})
	if ok && !f.Excluded(id) {
		t.Fatalf("ternary aggregate over {x1,x2,x3} should be fully subsumed and excluded")
	}
}

// TestUnitPropagationChain covers seed scenario S4: a unit clause forcing x1
// propagates through a chain of binary clauses to force every variable.
func TestUnitPropagationChain(t *testing.T) {
	f := cnf.NewFormula()
	x1 := f.NewVariable()
	x2 := f.NewVariable()
	x3 := f.NewVariable()

	f.AddClause(x1)
	f.AddClause(lit.Negate(x1), x2)
	f.AddClause(lit.Negate(x2), x3)

	o := New(f)
	if err := o.Run(All); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, l := range []lit.ID{x1, x2, x3} {
		a := f.Assignment(lit.VariableID(l))
		if a != lit.ConstTrue {
			t.Fatalf("variable %v: assignment = %v, want ConstTrue", l, a)
		}
	}
}

// TestConflictDetected covers seed scenario S5: two unit clauses asserting a
// variable both true and false must surface ErrConflict.
func TestConflictDetected(t *testing.T) {
	f := cnf.NewFormula()
	x1 := f.NewVariable()

	f.AddClause(x1)
	f.AddClause(lit.Negate(x1))

	o := New(f)
	if err := o.Run(All); err != ErrConflict {
		t.Fatalf("Run: err = %v, want ErrConflict", err)
	}
}

// TestEquivalenceDerivedFromBinaryPair verifies that a pair of complementary
// binary clauses over the same two variables collapses into an assignment
// (a = b or a = ¬b) rather than remaining as two separate clauses.
func TestEquivalenceDerivedFromBinaryPair(t *testing.T) {
	f := cnf.NewFormula()
	a := f.NewVariable()
	b := f.NewVariable()

	f.AddClause(a, b)
	f.AddClause(lit.Negate(a), lit.Negate(b))

	o := New(f)
	if err := o.Run(All); err != nil {
		t.Fatalf("Run: %v", err)
	}

	aAssign, bAssign := f.Assignment(lit.VariableID(a)), f.Assignment(lit.VariableID(b))
	if aAssign == a && bAssign == b {
		t.Fatalf("expected one of a, b to resolve in terms of the other; got a=%v b=%v", aAssign, bAssign)
	}
}

// TestOptimizePreservesSatisfiability is property 5: optimizing a formula
// must not change its satisfiability, checked against the gini solver as an
// oracle on both the original and the optimized-and-reconstructed clause
// set.
func TestOptimizePreservesSatisfiability(t *testing.T) {
	f := cnf.NewFormula()
	x1 := f.NewVariable()
	x2 := f.NewVariable()
	x3 := f.NewVariable()
	v1, v2, v3 := x1, x2, x3

	f.AddClause(v1, v2)
	f.AddClause(lit.Negate(v1), v3)
	f.AddClause(v2, v3)

	before := ginicheck.Load(f)
	if !ginicheck.Satisfiable(before) {
		t.Fatalf("formula should be satisfiable before optimization")
	}

	o := New(f)
	if err := o.Run(Original); err != nil {
		t.Fatalf("Run: %v", err)
	}

	after := ginicheck.Load(f)
	if !ginicheck.Satisfiable(after) {
		t.Fatalf("formula should remain satisfiable after optimization")
	}
}

// TestReindexDropsDeadVariablesAndPreservesNamedBindings covers §4.E's
// reindexing pass: after a sweep resolves x1 as a unit and merges x3 into
// x2, a reindex should drop both non-representative variables from the
// dense range while a named binding that pointed at x2 follows it to its
// new ordinal.
func TestReindexDropsDeadVariablesAndPreservesNamedBindings(t *testing.T) {
	f := cnf.NewFormula()
	x1 := f.NewVariable()
	x2 := f.NewVariable()
	x3 := f.NewVariable()

	f.AddClause(x1)
	f.AddClause(x2, x3)
	f.AddClause(lit.Negate(x2), lit.Negate(x3))
	f.SetNamed("OUT", []lit.ID{x2})

	o := New(f)
	if err := o.Run(All); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// x2 is the only variable left (x1 is fixed, x3 points at ¬x2), so the
	// reindex renumbers it to ordinal 0.
	wantOut := lit.FromVariable(0)
	o.Reindex()

	outBits, ok := f.Named("OUT")
	if !ok || len(outBits) != 1 {
		t.Fatalf("OUT binding lost across reindex")
	}
	gotOut := lit.Resolve(outBits[0], f.AssignmentSlice())
	if gotOut != wantOut {
		t.Fatalf("OUT resolves to %v after reindex, want %v", gotOut, wantOut)
	}

	if f.VariableCount() > 3 {
		t.Fatalf("reindex should not grow the variable count, got %d", f.VariableCount())
	}
}

func TestUnoptimizedModeKeepsAllClauses(t *testing.T) {
	f := cnf.NewFormula()
	x1 := f.NewVariable()
	f.AddClause(x1)
	f.AddClause(x1)

	before := f.ClausesLen()
	o := New(f)
	if err := o.Run(Unoptimized); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if f.ClausesLen() < before {
		t.Fatalf("Unoptimized mode should not shrink the clause store")
	}
}
