package cnf

import (
	"reflect"
	"testing"

	"github.com/sophisticatedways/cgen-go/pkg/lit"
)

// S1: empty formula, append_clause([L(1)]) -> one unit clause, clauses_size()=1.
func TestSeedEmptyFormulaUnitClause(t *testing.T) {
	f := NewFormula()
	v := f.NewVariable()
	id, err := f.AppendClause([]lit.ID{v})
	if err != nil {
		t.Fatalf("AppendClause: %v", err)
	}
	if f.ClausesLen() != 1 {
		t.Fatalf("ClausesLen() = %d, want 1", f.ClausesLen())
	}
	if got := f.Literals(id); !reflect.DeepEqual(got, []lit.ID{v}) {
		t.Fatalf("Literals = %v, want [%v]", got, v)
	}
}

// S2: aggregate merge. append {1,2} then {-1,2}: one aggregated record,
// size 2, flags with exactly two sign combinations set, no duplicate
// storage.
func TestSeedAggregateMerge(t *testing.T) {
	f := NewFormula()
	x := f.NewVariable()
	y := f.NewVariable()

	f.AddClause(x, y)
	f.AddClause(lit.Negate(x), y)

	if f.ClausesLen() != 1 {
		t.Fatalf("ClausesLen() = %d, want 1 (expected single aggregated record)", f.ClausesLen())
	}
	id := ID(0)
	if !f.IsAggregated(id) {
		t.Fatalf("clause 0 not aggregated")
	}
	if got := f.Flags(id); popcountUint16(got) != 2 {
		t.Fatalf("flags = %#x, want exactly 2 bits set", got)
	}
	// vars sorted ascending = [x, y]; bit i of the combination index is set
	// when vars[i] is negated in that clause.
	// (x ∨ y): no negation -> combination 0b00 -> flags bit 0.
	// (¬x ∨ y): x negated -> combination 0b01 -> flags bit 1.
	want := uint16(1<<0 | 1<<1)
	if got := f.Flags(id); got != want {
		t.Fatalf("flags = %#b, want %#b", got, want)
	}
}

func popcountUint16(v uint16) int {
	n := 0
	for v != 0 {
		n += int(v & 1)
		v >>= 1
	}
	return n
}

func TestAppendAggregatedDedupesExactClause(t *testing.T) {
	f := NewFormula()
	x := f.NewVariable()
	y := f.NewVariable()
	f.AddClause(x, y)
	f.AddClause(x, y)
	if f.ClausesLen() != 1 {
		t.Fatalf("ClausesLen() = %d, want 1 after re-adding identical clause", f.ClausesLen())
	}
	if popcountUint16(f.Flags(0)) != 1 {
		t.Fatalf("flags = %#b, want exactly 1 bit set", f.Flags(0))
	}
}

func TestAddClauseDropsTautology(t *testing.T) {
	f := NewFormula()
	x := f.NewVariable()
	y := f.NewVariable()
	f.AddClause(x, lit.Negate(x), y)
	if f.ClausesLen() != 0 {
		t.Fatalf("ClausesLen() = %d, want 0 (tautology must be dropped)", f.ClausesLen())
	}
}

func TestAppendClauseRejectsUnsortedOrTautological(t *testing.T) {
	f := NewFormula()
	vs := make([]lit.ID, 6)
	for i := range vs {
		vs[i] = f.NewVariable()
	}
	if _, err := f.AppendClause([]lit.ID{vs[2], vs[0], vs[1], vs[3], vs[4], vs[5]}); err == nil {
		t.Fatalf("expected error for unsorted literals")
	}
	sorted := append([]lit.ID(nil), vs...)
	sorted = append(sorted, lit.Negate(vs[0]))
	if _, err := f.AppendClause(sorted); err == nil {
		t.Fatalf("expected contract-violation error for tautological clause")
	}
}

func TestFindLocatesExistingClause(t *testing.T) {
	f := NewFormula()
	x := f.NewVariable()
	y := f.NewVariable()
	f.AddClause(x, y)
	literals, _, _ := clauseFromLiterals([]lit.ID{x, y})
	id, ok := f.Find(literals)
	if !ok {
		t.Fatalf("Find did not locate stored clause")
	}
	if !reflect.DeepEqual(f.Literals(id), literals) {
		t.Fatalf("Literals(found) = %v, want %v", f.Literals(id), literals)
	}
	if _, ok := f.Find([]lit.ID{y, x}); ok {
		t.Fatalf("Find should not match a differently-ordered probe against stored convention")
	}
}

// Testable property 6: transaction rollback restores bytewise equality.
func TestTransactionRollbackRestoresCommittedState(t *testing.T) {
	f := NewFormula()
	a := f.NewVariable()
	b := f.NewVariable()
	c := f.NewVariable()
	f.AddClause(a, b)
	f.AddClause(lit.Negate(b), c)
	f.SetAssignment(lit.VariableID(a), lit.ConstTrue)

	before := f.SortedCommittedLiterals()
	beforeVarCount := f.VariableCount()
	beforeAssignment := append([]lit.ID(nil), f.AssignmentSlice()...)

	f.BeginTransaction()
	f.AddClause(a, c)
	d := f.NewVariable()
	f.AddClause(b, d)
	f.Exclude(0)
	f.SetAssignment(lit.VariableID(c), lit.ConstFalse)
	f.RollbackTransaction()

	after := f.SortedCommittedLiterals()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("rollback did not restore clause set:\nbefore=%v\nafter=%v", before, after)
	}
	if f.VariableCount() != beforeVarCount {
		t.Fatalf("rollback did not restore variable count: got %d want %d", f.VariableCount(), beforeVarCount)
	}
	if !reflect.DeepEqual(f.AssignmentSlice(), beforeAssignment) {
		t.Fatalf("rollback did not restore assignment array:\nbefore=%v\nafter=%v", beforeAssignment, f.AssignmentSlice())
	}
	if f.Excluded(0) {
		t.Fatalf("rollback did not restore excluded bit on clause 0")
	}
}

func TestTransactionCommitKeepsChanges(t *testing.T) {
	f := NewFormula()
	a := f.NewVariable()
	b := f.NewVariable()
	f.AddClause(a, b)

	f.BeginTransaction()
	f.AddClause(lit.Negate(a), b)
	f.CommitTransaction()

	if f.InTransaction() {
		t.Fatalf("InTransaction() = true after commit")
	}
	if f.ClausesLen() != 2 {
		t.Fatalf("ClausesLen() = %d, want 2 (pre-transaction record excluded, merged copy appended and committed)", f.ClausesLen())
	}
}

func TestUpdateRepositionsClauseAcrossPartitions(t *testing.T) {
	f := NewFormula()
	x := f.NewVariable()
	y := f.NewVariable()
	z := f.NewVariable()
	id, _ := f.AppendClause([]lit.ID{x, y, z, f.NewVariable(), f.NewVariable()})
	newLits := []lit.ID{y, z}
	f.Update(id, newLits, uint16(1))
	if got := f.Literals(id); !reflect.DeepEqual(got, newLits) {
		t.Fatalf("Literals after Update = %v, want %v", got, newLits)
	}
	found, ok := f.Find(newLits)
	if !ok || found != id {
		t.Fatalf("Find after Update = (%v,%v), want (%v,true)", found, ok, id)
	}
}
