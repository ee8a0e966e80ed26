// Package anf implements the algebraic-normal-form formula backend (§4.C.2):
// a flat (symbols, termOffsets, eqOffsets) triple, one equation per defined
// literal, each equation a constant term plus a sum of ascending-variable
// products. It implements word.Backend so the same round-function code that
// drives the CNF backend drives this one unchanged.
package anf

import (
	"sort"

	"github.com/sophisticatedways/cgen-go/pkg/lit"
)

// Formula is the flat ANF store: symbols holds every literal ever appended
// to a term (concatenated across all terms of all equations); termOffsets
// marks where each term starts within symbols, plus one trailing sentinel;
// eqOffsets marks where each equation's terms start within termOffsets,
// plus one trailing sentinel. This mirrors the "flat triple" of §3 instead
// of a slice-of-slices-of-slices representation.
type Formula struct {
	symbols     []lit.Variable
	termOffsets []int
	eqOffsets   []int

	constants []int // per-equation constant term (0 or 1), parallel to equation index

	gen        *lit.Generator
	assignment []lit.ID
	named      map[string][]lit.ID
}

// NewFormula creates an empty ANF store.
func NewFormula() *Formula {
	return &Formula{
		termOffsets: []int{0},
		eqOffsets:   []int{0},
		gen:         lit.NewGenerator(),
		named:       make(map[string][]lit.ID),
	}
}

// NewVariable allocates a fresh variable.
func (f *Formula) NewVariable() lit.ID {
	l := f.gen.Next()
	f.assignment = append(f.assignment, l)
	return l
}

// VariableCount returns the number of variables allocated so far.
func (f *Formula) VariableCount() lit.Variable { return f.gen.Count() }

// AssertBit forces l to the given boolean value: a unit equation when l is
// a variable, a consistency check when l is already that constant. Used by
// the encoder driver to bind a named output (e.g. H) to caller-supplied
// bits without threading equation-store access through word.Backend.
func (f *Formula) AssertBit(l lit.ID, value int) (ok bool) {
	if lit.IsConstant(l) {
		return lit.ConstValue(l) == value
	}
	eb := newEquationBuilder(0)
	eb.appendTerm([]lit.ID{l})
	f.CompleteEquation(eb, lit.Const(value), false)
	return true
}

// SetNamed records a named variable-array binding.
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

// EquationCount returns the number of completed equations.
func (f *Formula) EquationCount() int { return len(f.eqOffsets) - 1 }

// Constant returns the constant term of equation eq.
func (f *Formula) Constant(eq int) int { return f.constants[eq] }

// Terms returns the product terms of equation eq as slices of ascending,
// un-negated variable ordinals.
func (f *Formula) Terms(eq int) [][]lit.Variable {
	var out [][]lit.Variable
	for t := f.eqOffsets[eq]; t < f.eqOffsets[eq+1]; t++ {
		out = append(out, append([]lit.Variable(nil), f.symbols[f.termOffsets[t]:f.termOffsets[t+1]]...))
	}
	return out
}

// equationBuilder accumulates terms for one in-progress equation (the
// result of a chain of And/Xor calls) before CompleteEquation finalizes it.
type equationBuilder struct {
	constant int
	terms    [][]lit.Variable // each term: sorted, deduped, un-negated variable ordinals
}

func newEquationBuilder(constant int) *equationBuilder {
	return &equationBuilder{constant: constant}
}

// appendTerm multiplies term into the equation's running XOR-sum: x*x=x,
// x*¬x=0 collapses the whole product to the zero term, negation is
// eliminated via x·¬y·... = x·... + x·y·... applied recursively over the
// product's negated factors, and x+x=0 cancels duplicate terms.
func (eb *equationBuilder) appendTerm(factors []lit.ID) {
	normalized, isZero := normalizeTerm(factors)
	if isZero {
		return
	}
	for _, t := range normalized {
		eb.xorTerm(t)
	}
}

// normalizeTerm expands a product of (possibly negated) variable literals
// into a XOR-sum of un-negated products, per the identity
// x · ¬y · z = x · z + x · y · z applied one negated factor at a time.
func normalizeTerm(factors []lit.ID) (terms [][]lit.Variable, isZero bool) {
	var consts int = 1
	var vars []lit.Variable
	var negated []bool
	seen := make(map[lit.Variable]bool)
	for _, l := range factors {
		if lit.IsConstant(l) {
			if l == lit.ConstFalse {
				return nil, true
			}
			continue
		}
		v := lit.VariableID(l)
		neg := lit.IsNegated(l)
		if seen[v] {
			// x*x = x: if this occurrence disagrees in sign with one
			// already recorded, that's x*¬x somewhere in the product -> 0.
			for i, existing := range vars {
				if existing == v && negated[i] != neg {
					return nil, true
				}
			}
			continue
		}
		seen[v] = true
		vars = append(vars, v)
		negated = append(negated, neg)
	}
	_ = consts

	termsSet := [][]lit.Variable{{}}
	for i, v := range vars {
		if !negated[i] {
			for j := range termsSet {
				termsSet[j] = append(termsSet[j], v)
			}
			continue
		}
		var next [][]lit.Variable
		for _, t := range termsSet {
			next = append(next, append([]lit.Variable(nil), t...))
			withV := append([]lit.Variable(nil), t...)
			withV = append(withV, v)
			next = append(next, withV)
		}
		termsSet = next
	}
	for _, t := range termsSet {
		sort.Slice(t, func(i, j int) bool { return t[i] < t[j] })
	}
	return termsSet, false
}

// xorTerm folds t into the equation's term list under x+x=0 cancellation.
func (eb *equationBuilder) xorTerm(t []lit.Variable) {
	if len(t) == 0 {
		eb.constant ^= 1
		return
	}
	for i, existing := range eb.terms {
		if sameTerm(existing, t) {
			eb.terms = append(eb.terms[:i], eb.terms[i+1:]...)
			return
		}
	}
	eb.terms = append(eb.terms, t)
}

func sameTerm(a, b []lit.Variable) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// commit flushes an equation builder's terms into the flat store and
// returns the new equation index.
func (f *Formula) commit(eb *equationBuilder) int {
	sort.Slice(eb.terms, func(i, j int) bool {
		a, b := eb.terms[i], eb.terms[j]
		n := len(a)
		if len(b) < n {
			n = len(b)
		}
		for k := 0; k < n; k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})
	for _, t := range eb.terms {
		f.symbols = append(f.symbols, t...)
		f.termOffsets = append(f.termOffsets, len(f.symbols))
	}
	f.eqOffsets = append(f.eqOffsets, len(f.termOffsets)-1)
	f.constants = append(f.constants, eb.constant)
	return len(f.eqOffsets) - 2
}

// dropLastEquation undoes a commit (used by CompleteEquation's
// constant/unit-fact paths, which finalize without keeping a stored
// equation).
func (f *Formula) dropLastEquation(eq int) {
	if eq != f.EquationCount()-1 {
		return
	}
	f.eqOffsets = f.eqOffsets[:len(f.eqOffsets)-1]
	f.termOffsets = f.termOffsets[:f.eqOffsets[len(f.eqOffsets)-1]+1]
	f.symbols = f.symbols[:f.termOffsets[len(f.termOffsets)-1]]
	f.constants = f.constants[:len(f.constants)-1]
}

// CompleteEquation finalizes an equation builder per §4.C.2's four-way
// case split, optionally binding it to a caller-supplied defined literal r
// (lit.Unassigned requests a fresh one).
func (f *Formula) CompleteEquation(eb *equationBuilder, r lit.ID, optimizeNegation bool) lit.ID {
	eq := f.commit(eb)

	switch {
	case len(eb.terms) == 0:
		f.dropLastEquation(eq)
		return lit.Const(eb.constant)
	case len(eb.terms) == 1 && len(eb.terms[0]) == 1 && optimizeNegation:
		f.dropLastEquation(eq)
		v := eb.terms[0][0]
		return lit.NegatedOnlyIf(lit.FromVariable(v), eb.constant == 1)
	}

	// r supplied as a constant rather than a variable to bind: the caller is
	// asserting the equation's value, not requesting a defined literal for
	// it. When the equation reduces to a single variable term this is a
	// unit fact; store it as its own equation (v = constant^r) instead of
	// folding r in as a term, and hand the constant back per the caller's
	// request.
	if lit.IsConstant(r) && len(eb.terms) == 1 && len(eb.terms[0]) == 1 {
		f.dropLastEquation(eq)
		v := eb.terms[0][0]
		target := eb.constant ^ lit.ConstValue(r)
		unit := newEquationBuilder(target)
		unit.terms = [][]lit.Variable{{v}}
		f.commit(unit)
		return r
	}

	if lit.IsUnassigned(r) {
		r = f.NewVariable()
	}
	// Attach r, un-negated, to the term list as its own singleton term;
	// eb.constant stays the equation's constant, so the equation asserts
	// constant XOR terms XOR r = 0, i.e. r = constant XOR terms.
	eb.terms = append(eb.terms, []lit.Variable{lit.VariableID(r)})
	f.dropLastEquation(eq)
	f.commit(eb)
	return r
}
