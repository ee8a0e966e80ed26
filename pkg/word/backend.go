// Package word implements the symbolic bit-vector word: an N-bit value
// built over a polymorphic bit type. Word never computes a concrete
// integer itself — every operator is expressed through the Backend
// contract, so the same round-function code drives either a concrete
// reference evaluation or a CNF/ANF circuit encoding depending on which
// Backend is plugged in (the "sum type over bit type" design, see
// DESIGN.md).
package word

import "github.com/sophisticatedways/cgen-go/pkg/lit"

// Backend is the bit-level contract every formula sink (CNF store, ANF
// store, or the plain-integer reference evaluator) implements. Each method
// is given literal operands and returns a literal result, optionally
// introducing fresh variables/clauses/terms as a side effect.
type Backend interface {
	Not(x lit.ID) lit.ID
	And(x, y lit.ID) lit.ID
	Or(x, y lit.ID) lit.ID
	Xor(args ...lit.ID) lit.ID
	Ch(x, y, z lit.ID) lit.ID
	Maj(x, y, z lit.ID) lit.ID

	// Add drives one batch of N-ary integer addition per §4.C/§6's
	// ADD(args, input_size, output_size, constant_bit, want_2nd_c1) table
	// contract: args are the one-bit addends landing at a single bit
	// position (operand bits, incoming carries, deduplication leftovers —
	// see AddN); constantBit is the running constant's current low bit,
	// folded in as a genuine addend (it must participate in carry
	// generation, not just the sum); wantC2 requests a second-level carry
	// output. It returns the sum bit kept at this position, the
	// first-level carry bit (feeds the bag at position+1), and, when
	// hasC2 is true, a second-level carry bit (feeds the bag at
	// position+2).
	Add(args []lit.ID, constantBit int, wantC2 bool) (sum, c1 lit.ID, c2 lit.ID, hasC2 bool)
}
