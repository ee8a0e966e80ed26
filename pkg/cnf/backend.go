package cnf

import (
	"sort"

	"github.com/sophisticatedways/cgen-go/pkg/lit"
	"github.com/sophisticatedways/cgen-go/pkg/word"
)

// xorMaxArgsDefault is the default n-ary XOR batch size (§4.C), in range
// 2-10 for this backend.
const xorMaxArgsDefault = 3

// Backend is the CNF formula backend: it implements word.Backend by
// emitting clauses into a *Formula, applying the exhaustive algebraic
// short-circuit table of §4.C before ever allocating a fresh variable.
type Backend struct {
	F          *Formula
	XorMaxArgs int
}

// NewBackend creates a CNF backend over a fresh formula with the default
// XOR batch arity.
func NewBackend() *Backend {
	return &Backend{F: NewFormula(), XorMaxArgs: xorMaxArgsDefault}
}

var _ word.Backend = (*Backend)(nil)

func (b *Backend) xorArity() int {
	if b.XorMaxArgs < 2 {
		return xorMaxArgsDefault
	}
	return b.XorMaxArgs
}

// clauseFromLiterals normalizes a disjunction of (possibly repeated,
// possibly complementary) variable literals into stored form: sorted
// ascending by variable, aggregated (<=4 literals) or not, with tautology
// detection and exact-duplicate removal.
func clauseFromLiterals(lits []lit.ID) (literals []lit.ID, flags aggregateFlags, tautology bool) {
	type item struct {
		v   lit.Variable
		neg bool
	}
	items := make([]item, len(lits))
	for i, l := range lits {
		items[i] = item{lit.VariableID(l), lit.IsNegated(l)}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].v < items[j].v })

	var vars []lit.Variable
	var negs []bool
	for i, it := range items {
		if i > 0 && items[i-1].v == it.v {
			if items[i-1].neg != it.neg {
				tautology = true
			}
			continue
		}
		vars = append(vars, it.v)
		negs = append(negs, it.neg)
	}
	if tautology {
		return nil, 0, true
	}

	size := len(vars)
	literals = make([]lit.ID, size)
	if size <= aggregateMax {
		var bit uint8
		for i, v := range vars {
			literals[i] = lit.FromVariable(v)
			if negs[i] {
				bit |= 1 << uint(i)
			}
		}
		flags = aggregateFlags(1) << bit
	} else {
		for i, v := range vars {
			literals[i] = lit.NegatedOnlyIf(lit.FromVariable(v), negs[i])
		}
	}
	return literals, flags, false
}

// AddClause stores one CNF clause given its (possibly signed, possibly
// repeated) literals, merging into an existing aggregate record when one
// exists over the same variable set. It returns None (and ok=false) for a
// tautological clause, which is dropped rather than stored.
func (f *Formula) AddClause(lits ...lit.ID) (id ID, ok bool) {
	literals, flags, taut := clauseFromLiterals(lits)
	if taut {
		return None, false
	}
	if len(literals) <= aggregateMax {
		return f.AppendAggregated(literals, flags), true
	}
	id, err := f.AppendClause(literals)
	if err != nil {
		return None, false
	}
	return id, true
}

// Not implements NOT per §4.C: a variable's negation is sign-flipped with
// no clauses emitted; a constant is complemented.
func (b *Backend) Not(x lit.ID) lit.ID {
	return lit.Negate(x)
}

// AssertBit forces l to the given boolean value: a unit clause when l is a
// variable, a no-op/conflict check when l is already that constant. Used by
// the encoder driver to bind a named output (e.g. H) to caller-supplied
// bits without threading clause-store access through word.Backend.
func (f *Formula) AssertBit(l lit.ID, value int) (ok bool) {
	if lit.IsConstant(l) {
		return lit.ConstValue(l) == value
	}
	f.AddClause(lit.NegatedOnlyIf(l, value == 0))
	return true
}

// And implements AND with its full short-circuit table and, failing that,
// the three-clause Tseitin encoding of §4.C.1.
func (b *Backend) And(x, y lit.ID) lit.ID {
	switch {
	case x == y:
		return x
	case x == lit.Negate(y):
		return lit.ConstFalse
	case x == lit.ConstFalse || y == lit.ConstFalse:
		return lit.ConstFalse
	case x == lit.ConstTrue:
		return y
	case y == lit.ConstTrue:
		return x
	}
	r := b.F.NewVariable()
	b.F.AddClause(lit.Negate(x), lit.Negate(y), r)
	b.F.AddClause(x, lit.Negate(r))
	b.F.AddClause(y, lit.Negate(r))
	return r
}

// Or implements OR with its short-circuit table and three-clause encoding.
func (b *Backend) Or(x, y lit.ID) lit.ID {
	switch {
	case x == y:
		return x
	case x == lit.Negate(y):
		return lit.ConstTrue
	case x == lit.ConstTrue || y == lit.ConstTrue:
		return lit.ConstTrue
	case x == lit.ConstFalse:
		return y
	case y == lit.ConstFalse:
		return x
	}
	r := b.F.NewVariable()
	b.F.AddClause(x, y, lit.Negate(r))
	b.F.AddClause(lit.Negate(x), r)
	b.F.AddClause(lit.Negate(y), r)
	return r
}

// Xor implements n-ary XOR with deduplication, constant folding, and
// batching beyond the configured arity, per §4.C.
func (b *Backend) Xor(args ...lit.ID) lit.ID {
	vars, parity := dedupeXorArgs(args)
	if len(vars) == 0 {
		return lit.Const(parity)
	}
	arity := b.xorArity()
	for len(vars) > arity {
		n := arity
		batch := vars[:n]
		rest := vars[n:]
		r := b.xorBatch(batch, 0)
		vars = append([]lit.ID{r}, rest...)
	}
	r := b.xorBatch(vars, parity)
	return r
}

// dedupeXorArgs applies XOR's short-circuit rules: an even count of a
// literal cancels, odd collapses to one; a literal paired with its
// negation contributes 1 to the parity constant and both are removed;
// constants fold directly into the parity.
func dedupeXorArgs(args []lit.ID) (vars []lit.ID, parity int) {
	counts := make(map[lit.ID]int)
	for _, a := range args {
		if lit.IsConstant(a) {
			parity ^= lit.ConstValue(a)
			continue
		}
		counts[a]++
	}
	seen := make(map[lit.ID]bool)
	for l, n := range counts {
		if seen[l] {
			continue
		}
		neg := lit.Negate(l)
		if nn, ok := counts[neg]; ok {
			pairs := n
			if nn < pairs {
				pairs = nn
			}
			parity ^= pairs & 1
			counts[l] -= pairs
			counts[neg] -= pairs
			seen[l], seen[neg] = true, true
		}
	}
	var keys []lit.ID
	for l := range counts {
		keys = append(keys, l)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, l := range keys {
		if counts[l]%2 == 1 {
			vars = append(vars, l)
		}
	}
	return vars, parity
}

// xorBatch emits the 2^n-clause encoding for r = XOR(vars) ^ parity: for
// each sign combination of the inputs, the even-parity combinations (under
// the final desired parity) pair with ¬r and the odd ones pair with r.
func (b *Backend) xorBatch(vars []lit.ID, parity int) lit.ID {
	if len(vars) == 0 {
		return lit.Const(parity)
	}
	if len(vars) == 1 {
		if parity == 1 {
			return lit.Negate(vars[0])
		}
		return vars[0]
	}
	r := b.F.NewVariable()
	n := len(vars)
	for combo := 0; combo < 1<<uint(n); combo++ {
		p := 0
		for i := 0; i < n; i++ {
			if combo&(1<<uint(i)) != 0 {
				p ^= 1
			}
		}
		lits := make([]lit.ID, 0, n+1)
		for i, v := range vars {
			lits = append(lits, lit.NegatedOnlyIf(v, combo&(1<<uint(i)) != 0))
		}
		if p == parity {
			lits = append(lits, lit.Negate(r))
		} else {
			lits = append(lits, r)
		}
		b.F.AddClause(lits...)
	}
	return r
}

// Ch implements x?y:z per the exhaustive twelve-case table of §4.C,
// falling back to the six-clause Tseitin encoding.
func (b *Backend) Ch(x, y, z lit.ID) lit.ID {
	switch {
	case x == lit.ConstFalse:
		return z
	case x == lit.ConstTrue:
		return y
	case y == z:
		return y
	case lit.IsConstant(y) && lit.IsConstant(z):
		if y == lit.ConstFalse {
			return lit.Negate(x)
		}
		return x
	case y == lit.ConstFalse || y == lit.Negate(x):
		return b.And(lit.Negate(x), z)
	case y == x && z == lit.ConstFalse:
		return x
	case y == x && z == lit.ConstTrue:
		return lit.ConstTrue
	case y == lit.ConstTrue && z == lit.Negate(x):
		return lit.ConstTrue
	case y == lit.ConstTrue || y == x:
		return b.Or(x, z)
	case z == lit.ConstFalse || z == x:
		return b.And(x, y)
	case z == lit.ConstTrue || z == lit.Negate(x):
		return b.Or(lit.Negate(x), y)
	case z == lit.Negate(y):
		return lit.Negate(b.Xor(x, y))
	}
	r := b.F.NewVariable()
	b.F.AddClause(lit.Negate(x), lit.Negate(y), r)
	b.F.AddClause(lit.Negate(x), y, lit.Negate(r))
	b.F.AddClause(x, lit.Negate(z), r)
	b.F.AddClause(x, z, lit.Negate(r))
	b.F.AddClause(lit.Negate(y), lit.Negate(z), r)
	b.F.AddClause(y, z, lit.Negate(r))
	return r
}

// Maj implements majority-of-3 with constant/pair-equality short-circuits
// and the six-clause Tseitin encoding.
func (b *Backend) Maj(x, y, z lit.ID) lit.ID {
	switch {
	case lit.IsConstant(x):
		if x == lit.ConstTrue {
			return b.Or(y, z)
		}
		return b.And(y, z)
	case lit.IsConstant(y):
		if y == lit.ConstTrue {
			return b.Or(x, z)
		}
		return b.And(x, z)
	case lit.IsConstant(z):
		if z == lit.ConstTrue {
			return b.Or(x, y)
		}
		return b.And(x, y)
	case x == y:
		return x
	case y == z:
		return y
	case x == z:
		return x
	case x == lit.Negate(y):
		return z
	case y == lit.Negate(z):
		return x
	case x == lit.Negate(z):
		return y
	}
	r := b.F.NewVariable()
	b.F.AddClause(lit.Negate(x), lit.Negate(y), r)
	b.F.AddClause(lit.Negate(y), lit.Negate(z), r)
	b.F.AddClause(lit.Negate(x), lit.Negate(z), r)
	b.F.AddClause(x, y, lit.Negate(r))
	b.F.AddClause(y, z, lit.Negate(r))
	b.F.AddClause(x, z, lit.Negate(r))
	return r
}

// Add realizes the ADD primitive via word.ComposeAdd, using this backend's
// own And/Xor. §6's original ADD primitive is a lookup into a precomputed
// clause-template table (ADD_MAP); that table's concrete contents were never
// retrieved into this module's reference corpus, so ComposeAdd substitutes a
// small ripple-counter gate network that computes the identical (sum, c1,
// c2) function for every input instead (see DESIGN.md for the full
// justification).
func (b *Backend) Add(args []lit.ID, constantBit int, wantC2 bool) (sum, c1 lit.ID, c2 lit.ID, hasC2 bool) {
	return word.ComposeAdd(b, args, constantBit, wantC2)
}
