package anf

import (
	"github.com/sophisticatedways/cgen-go/pkg/lit"
	"github.com/sophisticatedways/cgen-go/pkg/word"
)

// Backend is the ANF formula backend: it implements word.Backend by
// building one equation per bit operation over a *Formula, reusing the
// same term-algebra (normalizeTerm/xorTerm) for every primitive so that
// constant folding, x·x=x, x·¬x=0, and x+x=0 only need implementing once.
type Backend struct {
	F                *Formula
	OptimizeNegation bool
}

// NewBackend creates an ANF backend over a fresh formula with negation
// optimization enabled (single-variable equations collapse to a signed
// literal instead of being stored, per §4.C.2).
func NewBackend() *Backend {
	return &Backend{F: NewFormula(), OptimizeNegation: true}
}

var _ word.Backend = (*Backend)(nil)

// Not returns the sign-flipped literal; no equation is stored.
func (b *Backend) Not(x lit.ID) lit.ID {
	return lit.Negate(x)
}

// And asserts r = x*y as a single product term.
func (b *Backend) And(x, y lit.ID) lit.ID {
	eb := newEquationBuilder(0)
	eb.appendTerm([]lit.ID{x, y})
	return b.F.CompleteEquation(eb, lit.Unassigned, b.OptimizeNegation)
}

// Or asserts r = x + y + x*y (the ANF identity for logical OR).
func (b *Backend) Or(x, y lit.ID) lit.ID {
	eb := newEquationBuilder(0)
	eb.appendTerm([]lit.ID{x})
	eb.appendTerm([]lit.ID{y})
	eb.appendTerm([]lit.ID{x, y})
	return b.F.CompleteEquation(eb, lit.Unassigned, b.OptimizeNegation)
}

// Xor asserts r = XOR(args); every simplification (dedup, sign,
// constant-folding) falls out of appendTerm/xorTerm applied per argument.
func (b *Backend) Xor(args ...lit.ID) lit.ID {
	eb := newEquationBuilder(0)
	for _, a := range args {
		eb.appendTerm([]lit.ID{a})
	}
	return b.F.CompleteEquation(eb, lit.Unassigned, b.OptimizeNegation)
}

// Ch asserts r = x*y + z + x*z (the ANF expansion of x?y:z = x*y + ¬x*z).
func (b *Backend) Ch(x, y, z lit.ID) lit.ID {
	eb := newEquationBuilder(0)
	eb.appendTerm([]lit.ID{x, y})
	eb.appendTerm([]lit.ID{z})
	eb.appendTerm([]lit.ID{x, z})
	return b.F.CompleteEquation(eb, lit.Unassigned, b.OptimizeNegation)
}

// Maj asserts r = x*y + y*z + x*z (the standard ANF majority expansion).
func (b *Backend) Maj(x, y, z lit.ID) lit.ID {
	eb := newEquationBuilder(0)
	eb.appendTerm([]lit.ID{x, y})
	eb.appendTerm([]lit.ID{y, z})
	eb.appendTerm([]lit.ID{x, z})
	return b.F.CompleteEquation(eb, lit.Unassigned, b.OptimizeNegation)
}

// Add realizes the ADD primitive via word.ComposeAdd over this backend's own
// And/Xor, matching the CNF backend's substitution for §6's unavailable
// ADD_MAP table (see DESIGN.md for the justification).
func (b *Backend) Add(args []lit.ID, constantBit int, wantC2 bool) (sum, c1 lit.ID, c2 lit.ID, hasC2 bool) {
	return word.ComposeAdd(b, args, constantBit, wantC2)
}
