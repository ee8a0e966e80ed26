// Package optimize implements the evaluation/propagation/subsumption
// optimizer of §4.E: a per-clause evaluation sweep driven by a
// processed-offset cursor, unit propagation, binary resolution, and
// ternary/quaternary subsumption against shorter clauses sharing a
// variable subset, all against a *cnf.Formula under the transactional
// discipline of §3/§4.D.
package optimize

import (
	"errors"
	"sort"

	"github.com/sophisticatedways/cgen-go/pkg/cnf"
	"github.com/sophisticatedways/cgen-go/pkg/lit"
)

// Mode selects what the optimizer keeps once a run completes, per §4.E.
type Mode int

const (
	// Unoptimized emits literal unit/equivalence clauses for each assigned
	// variable without running propagation.
	Unoptimized Mode = iota
	// Original runs the optimizer, rolls back (restoring every original
	// clause and the assignment), and then re-adds every clause still
	// included when the sweep finished, derived clauses among them.
	// Original clauses the sweep excluded are not removed again.
	Original
	// All commits the sweep: derived clauses and the assignment are kept,
	// and original clauses the sweep excluded (satisfied or rewritten)
	// stay excluded.
	All
)

// ErrConflict reports that propagation derived contradictory assignments
// for some variable, a clause reduced to empty, or an aggregate holds every
// sign combination of its variables — a terminal condition
// per §7: the optimizer aborts the current transaction and rolls back.
var ErrConflict = errors.New("optimize: conflict")

// Optimizer drives a *cnf.Formula through the evaluation sweep of §4.E.
type Optimizer struct {
	F *cnf.Formula
}

// New creates an optimizer over f.
func New(f *cnf.Formula) *Optimizer {
	return &Optimizer{F: f}
}

// Reindex runs §4.E's reindexing pass over the formula: it drops every
// variable no longer mentioned by a live clause or a named-variable
// binding and renumbers the survivors to a dense range. Call it after Run
// has returned successfully — reindexing a formula with a conflicting or
// mid-sweep assignment is undefined, since it assumes every live clause is
// already fully resolved.
func (o *Optimizer) Reindex() {
	o.F.Reindex()
}

// Run executes the evaluation sweep to completion under the given mode
// (Unoptimized runs no sweep and only emits its assignment clauses). On
// conflict it rolls back the transaction opened by Run and returns
// ErrConflict; the formula is left exactly as it was before the call.
func (o *Optimizer) Run(mode Mode) error {
	if mode == Unoptimized {
		for v := lit.Variable(0); v < o.F.VariableCount(); v++ {
			x, a := lit.FromVariable(v), o.F.Assignment(v)
			if lit.IsConstant(a) {
				o.F.AddClause(lit.NegatedOnlyIf(x, a == lit.ConstFalse))
			} else if lit.IsVariable(a) && a != x {
				o.F.AddClause(lit.Negate(x), a)
				o.F.AddClause(x, lit.Negate(a))
			}
		}
		return nil
	}

	o.F.BeginTransaction()

	err := o.sweep()
	if err != nil {
		o.F.RollbackTransaction()
		return err
	}

	switch mode {
	case Original:
		var surviving [][]lit.ID
		for _, id := range o.F.AllIDs() {
			if !o.F.Excluded(id) {
				surviving = append(surviving, expandToPlain(o.F, id)...)
			}
		}
		o.F.RollbackTransaction()
		for _, lits := range surviving {
			o.F.AddClause(lits...)
		}
	case All:
		o.F.CommitTransaction()
	}
	return nil
}

// sweep runs the per-clause evaluation loop until the cursor reaches the
// tail of the store, per §4.E's processed_offset discipline: clauses
// created while processing offset i are swept too, since the loop
// condition re-reads ClausesLen() each iteration.
func (o *Optimizer) sweep() error {
	for processed := 0; processed < o.F.ClausesLen(); processed++ {
		id := cnf.ID(processed)
		if err := o.evaluate(id); err != nil {
			return err
		}
	}
	return nil
}

// evaluate normalizes one clause under the current assignment. A clause
// that resolution leaves unchanged stays where it is and goes straight to
// afterAppend; only a changed clause (a literal resolved away, the clause
// became satisfied, or it conflicts) is excluded and re-added — this
// guards termination, since an unchanged re-add would otherwise loop
// forever through exclude-and-reinsert.
func (o *Optimizer) evaluate(id cnf.ID) error {
	if o.F.Excluded(id) {
		return nil
	}
	plains := expandToPlain(o.F, id)
	assignment := o.F.AssignmentSlice()

	changed := false
	var surviving [][]lit.ID
	conflict := false
	for _, lits := range plains {
		resolved, satisfied, didChange := resolveOnce(lits, assignment)
		if !didChange {
			surviving = append(surviving, lits)
			continue
		}
		changed = true
		if satisfied {
			continue
		}
		if len(resolved) == 0 {
			conflict = true
			continue
		}
		surviving = append(surviving, resolved)
	}
	if !changed {
		return o.afterAppend(id)
	}

	o.F.Exclude(id)
	if conflict {
		return ErrConflict
	}

	var touched []cnf.ID
	for _, lits := range surviving {
		nid, ok := o.F.AddClause(lits...)
		if ok {
			touched = append(touched, nid)
		}
	}

	for _, nid := range touched {
		if err := o.afterAppend(nid); err != nil {
			return err
		}
	}
	return nil
}

// resolveOnce resolves every literal of a plain clause through assignment
// once. didChange reports whether anything differs from the input
// (a literal resolved to a constant, to a different literal, or a
// duplicate/tautology was found).
func resolveOnce(lits []lit.ID, assignment []lit.ID) (resolved []lit.ID, satisfied bool, didChange bool) {
	out := make([]lit.ID, 0, len(lits))
	for _, l := range lits {
		r := lit.Resolve(l, assignment)
		if r != l {
			didChange = true
		}
		if r == lit.ConstTrue {
			return nil, true, true
		}
		if r == lit.ConstFalse {
			didChange = true
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	deduped := out[:0:0]
	for i, l := range out {
		if i > 0 && out[i-1] == l {
			didChange = true
			continue
		}
		if i > 0 && lit.VariableID(out[i-1]) == lit.VariableID(l) {
			return nil, true, true // tautology: satisfied
		}
		deduped = append(deduped, l)
	}
	if !didChange {
		return lits, false, false
	}
	return deduped, false, true
}

// afterAppend inspects a freshly (re-)stored clause for the propagation
// and subsumption opportunities of §4.E: unit propagation, binary
// equivalence/resolution, and ternary/quaternary subsumption.
func (o *Optimizer) afterAppend(id cnf.ID) error {
	if o.F.Excluded(id) {
		return nil
	}
	size := o.F.Size(id)
	if !o.F.IsAggregated(id) {
		return nil
	}
	flags := o.F.Flags(id)
	if popcount(flags) == 1<<uint(size) {
		return ErrConflict // every sign combination present: unsatisfiable
	}

	switch size {
	case 1:
		if popcount(flags) == 1 {
			return o.unitPropagate(id)
		}
	case 2:
		switch popcount(flags) {
		case 1:
			return o.binaryResolve(id)
		case 2:
			if flags == 0b0110 || flags == 0b1001 {
				return o.deriveEquivalence(id, flags)
			}
		}
	case 3, 4:
		return o.subsume(id, size)
	}
	return nil
}

func popcount(f uint16) int {
	n := 0
	for f != 0 {
		n += int(f & 1)
		f >>= 1
	}
	return n
}

// unitPropagate assigns the single variable of a size-1 aggregate to the
// constant its lone flag bit demands.
func (o *Optimizer) unitPropagate(id cnf.ID) error {
	lits := o.F.Literals(id)
	flags := o.F.Flags(id)
	v := lit.VariableID(lits[0])
	// flags==1 (bit 0, combo 0: literal direct) means the stored clause is
	// (v), forcing v true; flags==2 (bit 1, combo 1: literal negated) means
	// the stored clause is (¬v), forcing v false.
	var value int
	if flags == 1 {
		value = 1
	} else {
		value = 0
	}
	return o.assign(v, lit.Const(value))
}

// deriveEquivalence reads a size-2 aggregate whose two present clauses
// together force x = y or x = ¬y, and assigns the higher-ordinal variable
// to the lower one (with sign per the pattern).
func (o *Optimizer) deriveEquivalence(id cnf.ID, flags uint16) error {
	lits := o.F.Literals(id)
	a, b := lit.VariableID(lits[0]), lit.VariableID(lits[1])
	negate := flags == 0b1001 // (¬a∨¬b) and (a∨b) present => a = ¬b
	lo, hi := a, b
	if hi < lo {
		lo, hi = hi, lo
	}
	target := lit.FromVariable(lo)
	return o.assign(hi, lit.NegatedOnlyIf(target, negate))
}

// binaryResolve attempts resolution between the single clause represented
// by id and every other single-bit binary aggregate sharing a variable,
// per §4.E's binary-resolution/transitive-closure step.
func (o *Optimizer) binaryResolve(id cnf.ID) error {
	lits := o.F.Literals(id)
	flags := o.F.Flags(id)
	u, v := lit.VariableID(lits[0]), lit.VariableID(lits[1])
	su := flags&0b0010 != 0 || flags&0b1000 != 0 // u negated in the present combo
	sv := flags&0b0100 != 0 || flags&0b1000 != 0 // v negated in the present combo

	for _, partnerVar := range [2]lit.Variable{u, v} {
		for _, pid := range o.F.Mentions(partnerVar) {
			if pid == id || o.F.Excluded(pid) || !o.F.IsAggregated(pid) || o.F.Size(pid) != 2 {
				continue
			}
			pflags := o.F.Flags(pid)
			if popcount(pflags) != 1 {
				continue
			}
			plits := o.F.Literals(pid)
			pa, pb := lit.VariableID(plits[0]), lit.VariableID(plits[1])
			if pa == u || pa == v || pb == u || pb == v {
				// resolve if the shared variable appears with opposite
				// sign in each clause.
				if err := o.tryResolvePair(u, v, su, sv, pa, pb, pflags); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (o *Optimizer) tryResolvePair(u, v lit.Variable, su, sv bool, pa, pb lit.Variable, pflags uint16) error {
	psa := pflags&0b0010 != 0 || pflags&0b1000 != 0
	psb := pflags&0b0100 != 0 || pflags&0b1000 != 0

	type endpoint struct {
		v   lit.Variable
		neg bool
	}
	cLits := []endpoint{{u, su}, {v, sv}}
	pLits := []endpoint{{pa, psa}, {pb, psb}}

	for _, c := range cLits {
		for _, p := range pLits {
			if c.v == p.v && c.neg != p.neg {
				var other1, other2 endpoint
				if cLits[0].v == c.v {
					other1 = cLits[1]
				} else {
					other1 = cLits[0]
				}
				if pLits[0].v == p.v {
					other2 = pLits[1]
				} else {
					other2 = pLits[0]
				}
				if other1.v == other2.v {
					if other1.neg == other2.neg {
						if _, ok := o.F.AddClause(lit.NegatedOnlyIf(lit.FromVariable(other1.v), other1.neg)); !ok {
							continue
						}
					}
					continue
				}
				l1 := lit.NegatedOnlyIf(lit.FromVariable(other1.v), other1.neg)
				l2 := lit.NegatedOnlyIf(lit.FromVariable(other2.v), other2.neg)
				o.F.AddClause(l1, l2)
			}
		}
	}
	return nil
}

// subsume implements ternary/quaternary subsumption against stored
// aggregates one size smaller sharing a variable subset: if a shorter
// clause's disjunction already forces satisfaction independent of the
// remaining axis, those sign-combinations are dominated and removed from
// the wider aggregate's flags (§4.E).
func (o *Optimizer) subsume(id cnf.ID, size int) error {
	lits := o.F.Literals(id)
	flags := o.F.Flags(id)
	vars := make([]lit.Variable, size)
	for i, l := range lits {
		vars[i] = lit.VariableID(l)
	}

	for _, idx := range subsetIndexes(size) {
		sub := make([]lit.ID, len(idx))
		for i, k := range idx {
			sub[i] = lit.FromVariable(vars[k])
		}
		subID, ok := o.F.Find(sub)
		if !ok || o.F.Excluded(subID) || !o.F.IsAggregated(subID) || o.F.Size(subID) != size-1 {
			continue
		}
		subFlags := o.F.Flags(subID)
		dominated := cnf.ExpandFlags(size-1, size, idx, subFlags)
		flags &^= dominated
	}

	if flags == uint16(o.F.Flags(id)) {
		return nil
	}
	if flags == 0 {
		o.F.Exclude(id)
		return nil
	}
	o.F.Update(id, lits, flags)
	return nil
}

// subsetIndexes returns every (size-1)-length index subset of
// {0,...,size-1} in ascending order, used to probe every smaller-variable
// partition during subsumption.
func subsetIndexes(size int) [][]int {
	var out [][]int
	for omit := 0; omit < size; omit++ {
		var idx []int
		for i := 0; i < size; i++ {
			if i != omit {
				idx = append(idx, i)
			}
		}
		out = append(out, idx)
	}
	return out
}

// assign implements the merge semantics of §4.E: writing v := l, preferring
// constants over variables and lower ordinals among variables when v is
// already assigned elsewhere, then re-evaluating every clause mentioning v.
func (o *Optimizer) assign(v lit.Variable, l lit.ID) error {
	current := o.F.Assignment(v)
	self := lit.FromVariable(v)
	if current == l {
		return nil
	}
	if current != self {
		// Already points elsewhere: recurse with the stronger value.
		if lit.IsConstant(current) {
			if lit.IsConstant(l) {
				if current != l {
					return ErrConflict
				}
				return nil
			}
			// v is fixed to a constant but the caller wants v == l for some
			// variable l: that constant must propagate onto l's variable too.
			value := lit.ConstValue(current)
			if lit.IsNegated(l) {
				value ^= 1
			}
			return o.assign(lit.VariableID(l), lit.Const(value))
		}
		if lit.IsConstant(l) {
			cv := lit.VariableID(current)
			return o.assign(cv, l)
		}
		// both variables: prefer the lower ordinal as the representative.
		cv := lit.VariableID(current)
		lv := lit.VariableID(l)
		if lv < cv {
			return o.assign(cv, lit.NegatedOnlyIf(l, lit.IsNegated(current)))
		}
		return nil
	}

	o.F.SetAssignment(v, l)
	for _, id := range o.F.Mentions(v) {
		if err := o.evaluate(id); err != nil {
			return err
		}
	}
	return nil
}

// expandToPlain turns one stored clause (aggregated or not) into its
// constituent plain, fully-signed clauses.
func expandToPlain(f *cnf.Formula, id cnf.ID) [][]lit.ID {
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
