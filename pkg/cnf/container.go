package cnf

import (
	"fmt"

	"github.com/sophisticatedways/cgen-go/pkg/lit"
)

// Formula is the clause container plus its per-variable AVL index, the
// named-variable dictionary, the variable generator, and the dense
// variable-assignment array (§3's "variable assignment array" — owned here
// because, per §5, the clause store and assignment array are owned
// together by whichever single optimize/encode call is in progress).
type Formula struct {
	clauses []clause
	avl     *avlIndex
	roots   map[lit.Variable]ID
	mentions map[lit.Variable][]ID

	named map[string][]lit.ID

	gen        *lit.Generator
	assignment []lit.ID

	txStack []txSnapshot
}

type txSnapshot struct {
	clausesLen int
	excluded   []bool
	assignment []lit.ID
	varCount   lit.Variable
}

// NewFormula creates an empty formula.
func NewFormula() *Formula {
	return &Formula{
		avl:      newAVLIndex(),
		roots:    make(map[lit.Variable]ID),
		mentions: make(map[lit.Variable][]ID),
		named:    make(map[string][]lit.ID),
		gen:      lit.NewGenerator(),
	}
}

// NewVariable allocates a fresh variable, growing the assignment array with
// the variable's self-reference (its own direct literal), per §3's
// "initially each slot equals its own variable literal".
func (f *Formula) NewVariable() lit.ID {
	l := f.gen.Next()
	f.assignment = append(f.assignment, l)
	return l
}

// VariableCount returns the number of variables allocated so far.
func (f *Formula) VariableCount() lit.Variable { return f.gen.Count() }

// Assignment returns the current value assigned to variable v (its own
// literal if unassigned).
func (f *Formula) Assignment(v lit.Variable) lit.ID { return f.assignment[v] }

// SetAssignment directly overwrites assignment[v]. Used by the optimizer;
// callers are responsible for the merge-with-existing-value semantics of
// §4.E — this is the raw write, not the semantic "assign" operation.
func (f *Formula) SetAssignment(v lit.Variable, l lit.ID) { f.assignment[v] = l }

// AssignmentSlice exposes the raw backing array for resolve chains. Callers
// must not retain it across a mutation.
func (f *Formula) AssignmentSlice() []lit.ID { return f.assignment }

// SetNamed records a named variable-array binding (e.g. "M" -> message bits).
func (f *Formula) SetNamed(name string, bits []lit.ID) { f.named[name] = bits }

// Named returns a previously recorded named-variable binding.
func (f *Formula) Named(name string) ([]lit.ID, bool) { v, ok := f.named[name]; return v, ok }

// NamedNames returns all recorded binding names.
func (f *Formula) NamedNames() []string {
	names := make([]string, 0, len(f.named))
	for n := range f.named {
		names = append(names, n)
	}
	return names
}

// ClausesLen returns the number of stored clause records (including
// excluded ones).
func (f *Formula) ClausesLen() int { return len(f.clauses) }

// Excluded reports whether the clause at id is excluded (logically
// dropped).
func (f *Formula) Excluded(id ID) bool { return f.clauses[id].excluded }

// Size returns a clause's literal count.
func (f *Formula) Size(id ID) int { return f.clauses[id].size() }

// IsAggregated reports whether a clause is in aggregated (<=4 literal) form.
func (f *Formula) IsAggregated(id ID) bool { return f.clauses[id].isAggregated() }

// Flags returns a clause's aggregate flags (meaningful only if aggregated).
func (f *Formula) Flags(id ID) uint16 { return uint16(f.clauses[id].flags) }

// Literals returns a clause's literal slots. For aggregated clauses these
// are unnegated direct literals; for unaggregated clauses these are signed.
func (f *Formula) Literals(id ID) []lit.ID {
	lits := f.clauses[id].literals
	out := make([]lit.ID, len(lits))
	copy(out, lits)
	return out
}

// Mentions returns every stored (including excluded) clause offset whose
// literal set includes variable v.
func (f *Formula) Mentions(v lit.Variable) []ID {
	return f.mentions[v]
}

func (f *Formula) compareAt(a, b ID) int {
	return compareLiterals(f.clauses[a].literals, f.clauses[b].literals)
}

func (f *Formula) addMention(v lit.Variable, id ID) {
	f.mentions[v] = append(f.mentions[v], id)
}

// Find locates the exact stored record for a literal sequence, descending
// the AVL tree of the partition variable (the variable of the first
// literal) per §4.D.
func (f *Formula) Find(literals []lit.ID) (id ID, found bool) {
	if len(literals) == 0 {
		return None, false
	}
	pv := partitionVariable(literals)
	root, ok := f.roots[pv]
	if !ok {
		return None, false
	}
	cmp := func(node ID) int { return compareLiterals(literals, f.clauses[node].literals) }
	fid, _, _ := f.avl.find(f, root, cmp)
	if fid == None {
		return None, false
	}
	return fid, true
}

// alloc appends a raw clause record (unlinked) and returns its id,
// recording per-variable mentions.
func (f *Formula) alloc(literals []lit.ID, flags aggregateFlags) ID {
	id := ID(len(f.clauses))
	f.clauses = append(f.clauses, clause{
		literals: literals,
		flags:    flags,
		parent:   None, left: None, right: None,
	})
	seen := make(map[lit.Variable]bool, len(literals))
	for _, l := range literals {
		v := lit.VariableID(l)
		if !seen[v] {
			seen[v] = true
			f.addMention(v, id)
		}
	}
	return id
}

// AppendAggregated inserts (or merges into an existing record) an
// aggregated clause over the given sorted unnegated variable literals with
// the given flags. If an aggregated record with the same literal sequence
// already exists, its flags are OR-merged in place (§4.D step 2) when the
// offset is mutable (outside any immutable region), otherwise the old
// record is excluded and a fresh merged one appended.
func (f *Formula) AppendAggregated(literals []lit.ID, flags aggregateFlags) ID {
	if existing, ok := f.Find(literals); ok {
		ec := &f.clauses[existing]
		if !ec.excluded && f.isMutable(existing) {
			ec.flags |= flags
			return existing
		}
		merged := flags
		if !ec.excluded {
			merged |= ec.flags
			ec.excluded = true
		}
		return f.insertFreshAggregated(literals, merged)
	}
	return f.insertFreshAggregated(literals, flags)
}

func (f *Formula) insertFreshAggregated(literals []lit.ID, flags aggregateFlags) ID {
	id := f.alloc(literals, flags)
	pv := partitionVariable(literals)
	root, ok := f.roots[pv]
	if !ok {
		root = None
	}
	f.roots[pv] = f.avl.insert(f, root, id, f.compareAt)
	return id
}

// AppendClause inserts a clause given fully signed, sorted, deduped
// literals: a clause of at most aggregateMax literals is stored in
// aggregated form, the same way AddClause stores it, and a longer one as a
// non-aggregated record. Tautologies (a variable and its negation both
// present) must be filtered by the caller per §3 — AppendClause asserts
// this invariant rather than silently accepting a tautology.
func (f *Formula) AppendClause(literals []lit.ID) (ID, error) {
	if len(literals) > SizeMax {
		return None, fmt.Errorf("cnf: clause length %d exceeds capacity %d", len(literals), SizeMax)
	}
	for i := 1; i < len(literals); i++ {
		if literals[i-1] >= literals[i] {
			return None, fmt.Errorf("cnf: clause literals not strictly sorted")
		}
	}
	for i := 1; i < len(literals); i++ {
		if lit.VariableID(literals[i-1]) == lit.VariableID(literals[i]) {
			return None, fmt.Errorf("cnf: contract violation: tautological clause reached AppendClause")
		}
	}
	if len(literals) <= aggregateMax {
		lits, flags, _ := clauseFromLiterals(literals)
		return f.AppendAggregated(lits, flags), nil
	}
	if existing, ok := f.Find(literals); ok && !f.clauses[existing].excluded {
		return existing, nil
	}
	return f.insertFreshAggregated(literals, 0), nil
}

// Exclude marks a clause as logically dropped.
func (f *Formula) Exclude(id ID) { f.clauses[id].excluded = true }

// Include clears a clause's excluded flag.
func (f *Formula) Include(id ID) { f.clauses[id].excluded = false }

// SetFlags overwrites a clause's aggregate flags.
func (f *Formula) SetFlags(id ID, flags uint16) { f.clauses[id].flags = aggregateFlags(flags) }

// Update repositions a clause in the index after its literal set has
// shrunk (e.g. a resolved-to-constant literal was dropped), per §4.D's
// Update operation: detach from the current position and reinsert at the
// new one if it has moved. A record below the open transaction's snapshot
// is not modified: it is excluded and a fresh record with the new literals
// and flags is appended instead, so RollbackTransaction can restore it.
func (f *Formula) Update(id ID, newLiterals []lit.ID, newFlags uint16) {
	if !f.isMutable(id) {
		f.clauses[id].excluded = true
		f.insertFreshAggregated(newLiterals, aggregateFlags(newFlags))
		return
	}
	old := &f.clauses[id]
	oldPV := partitionVariable(old.literals)
	f.detach(id, oldPV)

	old.literals = newLiterals
	old.flags = aggregateFlags(newFlags)
	newPV := partitionVariable(newLiterals)
	root, ok := f.roots[newPV]
	if !ok {
		root = None
	}
	old.parent, old.left, old.right = None, None, None
	f.roots[newPV] = f.avl.insert(f, root, id, f.compareAt)
}

// detach removes id from the AVL tree of partition pv by rebuilding that
// tree without it (simplest correct approach given the in-place, index-based
// representation: collect the surviving ids in sorted order and rebuild).
func (f *Formula) detach(id ID, pv lit.Variable) {
	var ids []ID
	f.walk(f.roots[pv], func(n ID) {
		if n != id {
			ids = append(ids, n)
		}
	})
	f.roots[pv] = f.avl.rebuildBalanced(f, ids, f.compareAt)
}

func (f *Formula) walk(root ID, visit func(ID)) {
	if root == None {
		return
	}
	f.walk(f.clauses[root].left, visit)
	visit(root)
	f.walk(f.clauses[root].right, visit)
}

// isMutable reports whether offset id is above every open transaction's
// snapshot boundary (i.e. was allocated within the innermost open
// transaction and may be edited in place).
func (f *Formula) isMutable(id ID) bool {
	if len(f.txStack) == 0 {
		return true
	}
	return int(id) >= f.txStack[len(f.txStack)-1].clausesLen
}

// BeginTransaction opens a new speculative region: everything appended
// after this call can be discarded by RollbackTransaction.
func (f *Formula) BeginTransaction() {
	excl := make([]bool, len(f.clauses))
	for i := range f.clauses {
		excl[i] = f.clauses[i].excluded
	}
	assign := make([]lit.ID, len(f.assignment))
	copy(assign, f.assignment)
	f.txStack = append(f.txStack, txSnapshot{
		clausesLen: len(f.clauses),
		excluded:   excl,
		assignment: assign,
		varCount:   f.gen.Count(),
	})
}

// CommitTransaction discards the snapshot, keeping every change made since
// BeginTransaction.
func (f *Formula) CommitTransaction() {
	if len(f.txStack) == 0 {
		return
	}
	f.txStack = f.txStack[:len(f.txStack)-1]
}

// RollbackTransaction truncates the store, assignment array, and variable
// generator back to the snapshot, restores the excluded-bit state of every
// surviving clause, and rebuilds the AVL index and mention lists from
// scratch (§3/§4.D: "cheap — it's just a sort of committed offsets").
func (f *Formula) RollbackTransaction() {
	if len(f.txStack) == 0 {
		return
	}
	snap := f.txStack[len(f.txStack)-1]
	f.txStack = f.txStack[:len(f.txStack)-1]

	f.clauses = f.clauses[:snap.clausesLen]
	for i := range f.clauses {
		f.clauses[i].excluded = snap.excluded[i]
		f.clauses[i].parent, f.clauses[i].left, f.clauses[i].right = None, None, None
	}
	f.assignment = snap.assignment
	f.gen.Reset(snap.varCount)

	f.roots = make(map[lit.Variable]ID)
	f.mentions = make(map[lit.Variable][]ID)
	byVar := make(map[lit.Variable][]ID)
	for i := range f.clauses {
		id := ID(i)
		pv := partitionVariable(f.clauses[id].literals)
		byVar[pv] = append(byVar[pv], id)
		seen := make(map[lit.Variable]bool, len(f.clauses[id].literals))
		for _, l := range f.clauses[id].literals {
			v := lit.VariableID(l)
			if !seen[v] {
				seen[v] = true
				f.addMention(v, id)
			}
		}
	}
	for v, ids := range byVar {
		f.roots[v] = f.avl.rebuildBalanced(f, ids, f.compareAt)
	}
}

// InTransaction reports whether a transaction is currently open.
func (f *Formula) InTransaction() bool { return len(f.txStack) > 0 }

// AllIDs returns every stored clause offset in ascending order, for
// sequential sweeps (the optimizer's evaluation loop).
func (f *Formula) AllIDs() []ID {
	ids := make([]ID, len(f.clauses))
	for i := range ids {
		ids[i] = ID(i)
	}
	return ids
}

// SortedCommittedLiterals returns the literal sequences of every included
// clause, in ascending sorted order — used by property tests to check
// rollback restores the committed set.
func (f *Formula) SortedCommittedLiterals() [][]lit.ID {
	var ids []ID
	for i := range f.clauses {
		if !f.clauses[i].excluded {
			ids = append(ids, ID(i))
		}
	}
	sortIDsByLiterals(f, ids)
	out := make([][]lit.ID, len(ids))
	for i, id := range ids {
		out[i] = f.Literals(id)
	}
	return out
}

func sortIDsByLiterals(f *Formula, ids []ID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && compareLiterals(f.clauses[ids[j-1]].literals, f.clauses[ids[j]].literals) > 0; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}
