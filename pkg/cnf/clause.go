// Package cnf implements the CNF formula backend: the packed-clause
// container with its per-variable AVL index (§3, §4.D) and the CNF
// bit-level encoding primitives (§4.C.1).
package cnf

import (
	"fmt"
	"sort"

	"github.com/sophisticatedways/cgen-go/pkg/lit"
)

// ID identifies a stored clause by its offset in the container. It plays
// the role of the C++ original's byte offset into the shared word buffer —
// here it is simply an index into Formula.clauses.
type ID int32

// None is the sentinel "no clause" / "no child" offset.
const None ID = -1

// SizeMax is the largest clause length the 15-bit size field of §3 can
// hold.
const SizeMax = 0x7FFF

// aggregateMax is the largest clause size still eligible for aggregation.
const aggregateMax = 4

// clause is one stored clause record: literal slots plus header fields and
// the AVL node this record doubles as (co-located with the payload, as
// described in §3 — in Go, "co-located" just means these fields live in the
// same struct rather than in a separately-addressed node object).
type clause struct {
	literals []lit.ID // aggregated: unnegated direct literals, ascending by variable. unaggregated: signed literals, strictly sorted.
	excluded bool
	flags    aggregateFlags // meaningful iff len(literals) <= aggregateMax

	parent, left, right ID
}

func (c *clause) size() int { return len(c.literals) }

func (c *clause) isAggregated() bool { return c.size() <= aggregateMax }

// Header packs the clause's header word exactly per §3's bit layout, for
// diagnostics and DIMACS/debug dumps that want the wire-compatible form.
func (c *clause) Header() uint32 {
	h := uint32(c.size()) & SizeMax
	if c.excluded {
		h |= 1 << 15
	}
	h |= uint32(c.flags) << 16
	return h
}

// compareLiterals implements the clause-sequence lexicographic order of §3:
// compare element-wise over the common length; on a full tie the shorter
// clause is smaller.
func compareLiterals(lhs, rhs []lit.ID) int {
	n := len(lhs)
	if len(rhs) < n {
		n = len(rhs)
	}
	for i := 0; i < n; i++ {
		if lhs[i] != rhs[i] {
			if lhs[i] < rhs[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(lhs) < len(rhs):
		return -1
	case len(lhs) > len(rhs):
		return 1
	default:
		return 0
	}
}

// partitionVariable returns the variable ID that owns a clause's AVL
// partition: the variable of its first (lowest-ordinal, per the sorted
// invariant) literal.
func partitionVariable(literals []lit.ID) lit.Variable {
	first := literals[0]
	if lit.IsVariable(first) {
		return lit.VariableID(first)
	}
	// Aggregated clauses always store unnegated variable literals so this
	// is unreachable for well-formed input; kept defensive for probes.
	return lit.VariableID(lit.Unnegated(first))
}

// normalizeAggregate validates and sorts the literal set of a fresh
// aggregated clause being built from a sign-combination bit, enforcing the
// §3 invariant that aggregated literal slots are ascending, unnegated
// variable literals.
func normalizeAggregate(vars []lit.Variable, signBit uint8) (literals []lit.ID, flags aggregateFlags) {
	type pair struct {
		v lit.Variable
		i int // original index, to track which sign bit maps where after sort
	}
	ps := make([]pair, len(vars))
	for i, v := range vars {
		ps[i] = pair{v, i}
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].v < ps[j].v })

	literals = make([]lit.ID, len(vars))
	var bit uint8
	for newIdx, p := range ps {
		literals[newIdx] = lit.FromVariable(p.v)
		if signBit&(1<<uint(p.i)) != 0 {
			bit |= 1 << uint(newIdx)
		}
	}
	return literals, aggregateFlags(1) << bit
}

func (c *clause) String() string {
	if c.isAggregated() && c.flags != 0 {
		var parts []string
		for b := 0; b < 1<<uint(c.size()); b++ {
			if c.flags&(1<<uint(b)) == 0 {
				continue
			}
			var lits []string
			for i, v := range c.literals {
				l := lit.NegatedOnlyIf(v, b&(1<<uint(i)) != 0)
				lits = append(lits, l.String())
			}
			parts = append(parts, fmt.Sprintf("(%v)", lits))
		}
		return fmt.Sprintf("aggregate%v", parts)
	}
	var lits []string
	for _, l := range c.literals {
		lits = append(lits, l.String())
	}
	return fmt.Sprintf("%v", lits)
}
