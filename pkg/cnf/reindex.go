package cnf

import "github.com/sophisticatedways/cgen-go/pkg/lit"

// Reindex implements §4.E's reindexing pass: it walks the assignment array
// low to high, drops every variable that is neither mentioned by a live
// clause nor reachable from a named-variable binding, and renumbers the
// survivors to a dense, gap-free range starting at 0. It is meant to run
// once an optimizer sweep has converged — every live clause's literals are
// assumed already fully resolved (no live clause mentions a
// constant-assigned or merged-away variable, per §3's assignment-array
// invariant), so clause rewriting here is a pure renumbering with no sign
// changes; only named-variable bindings can still reference a merged-away
// or constant-assigned variable and need the full resolve-and-substitute
// treatment.
func (f *Formula) Reindex() {
	n := int(f.gen.Count())
	if n == 0 {
		return
	}

	// resolvedOf[v] is v's fully-resolved literal under the pre-reindex
	// assignment array: a constant, lit.Unassigned, or a (possibly signed)
	// literal of a self-referencing representative variable with strictly
	// lower ordinal than v (or v itself, for a representative).
	resolvedOf := make([]lit.ID, n)
	for v := 0; v < n; v++ {
		resolvedOf[v] = lit.Resolve(lit.FromVariable(lit.Variable(v)), f.assignment)
	}

	isRepresentative := func(v int) bool {
		return f.assignment[v] == lit.FromVariable(lit.Variable(v))
	}

	needed := make([]bool, n)
	for v := 0; v < n; v++ {
		if isRepresentative(v) && f.hasLiveMention(lit.Variable(v)) {
			needed[v] = true
		}
	}
	for _, name := range f.NamedNames() {
		bits, _ := f.Named(name)
		for _, b := range bits {
			r := lit.Resolve(b, f.assignment)
			if lit.IsVariable(r) {
				needed[int(lit.VariableID(r))] = true
			}
		}
	}

	mapping := make([]lit.ID, n)
	newCount := 0
	for v := 0; v < n; v++ {
		switch {
		case isRepresentative(v):
			if needed[v] {
				mapping[v] = lit.FromVariable(lit.Variable(newCount))
				newCount++
			} else {
				mapping[v] = lit.Unassigned
			}
		default:
			r := resolvedOf[v]
			if lit.IsVariable(r) {
				u := lit.VariableID(r)
				mapping[v] = lit.NegatedOnlyIf(mapping[u], lit.IsNegated(r))
			} else {
				mapping[v] = r
			}
		}
	}

	f.rewriteClauses(mapping)
	for _, name := range f.NamedNames() {
		bits, _ := f.Named(name)
		out := make([]lit.ID, len(bits))
		for i, b := range bits {
			r := lit.Resolve(b, f.assignment)
			if lit.IsVariable(r) {
				u := lit.VariableID(r)
				out[i] = lit.NegatedOnlyIf(mapping[u], lit.IsNegated(r))
			} else {
				out[i] = r
			}
		}
		f.named[name] = out
	}

	f.assignment = make([]lit.ID, newCount)
	for i := range f.assignment {
		f.assignment[i] = lit.FromVariable(lit.Variable(i))
	}
	f.gen = lit.NewGenerator()
	for i := 0; i < newCount; i++ {
		f.gen.Next()
	}
}

// hasLiveMention reports whether any non-excluded stored clause mentions v.
func (f *Formula) hasLiveMention(v lit.Variable) bool {
	for _, id := range f.mentions[v] {
		if !f.clauses[id].excluded {
			return true
		}
	}
	return false
}

// rewriteClauses drops excluded clauses and remaps every surviving
// clause's literal slots through mapping (a pure renumbering for live
// clauses, per this file's doc comment), then rebuilds the AVL index and
// mention lists from scratch exactly as RollbackTransaction does.
func (f *Formula) rewriteClauses(mapping []lit.ID) {
	var kept []clause
	for i := range f.clauses {
		if f.clauses[i].excluded {
			continue
		}
		c := clause{flags: f.clauses[i].flags, parent: None, left: None, right: None}
		c.literals = make([]lit.ID, len(f.clauses[i].literals))
		for j, l := range f.clauses[i].literals {
			v := lit.VariableID(l)
			nl := mapping[v]
			if !lit.IsVariable(nl) {
				panic("cnf: reindex: live clause references a dropped variable")
			}
			c.literals[j] = lit.NegatedOnlyIf(nl, lit.IsNegated(l))
		}
		kept = append(kept, c)
	}

	f.clauses = kept
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
