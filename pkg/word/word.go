package word

import (
	"sort"

	"github.com/sophisticatedways/cgen-go/pkg/lit"
)

// Size is the bit width this module encodes hash algorithms over.
const Size = 32

// Word is a Size-bit symbolic word: Bits[0] is the LSB, Bits[Size-1] is the
// MSB (big-endian when viewed as an integer).
type Word struct {
	Bits [Size]lit.ID
}

// FromUint32 builds a concrete word from a non-negative machine integer,
// MSB-zero padded (trivially true for a full 32-bit value).
func FromUint32(v uint32) Word {
	var w Word
	for i := 0; i < Size; i++ {
		w.Bits[i] = boolLit(v&(1<<uint(i)) != 0)
	}
	return w
}

// ToUint32 converts a word of constant literals back to a machine integer.
// Behavior is undefined if any bit is not a constant literal.
func (w Word) ToUint32() uint32 {
	var v uint32
	for i := 0; i < Size; i++ {
		if truth(w.Bits[i]) {
			v |= 1 << uint(i)
		}
	}
	return v
}

// RotateLeft returns w rotated left by n bits (pure index arithmetic — no
// backend calls, since rotation never changes a literal's value).
func (w Word) RotateLeft(n int) Word {
	return w.RotateRight(Size - n%Size)
}

// RotateRight returns w rotated right by n bits.
func (w Word) RotateRight(n int) Word {
	n = ((n % Size) + Size) % Size
	var r Word
	for i := 0; i < Size; i++ {
		r.Bits[i] = w.Bits[(i+n)%Size]
	}
	return r
}

// ShiftRight returns w logically shifted right by n bits, zero-filled at
// the MSB end.
func (w Word) ShiftRight(n int) Word {
	var r Word
	for i := 0; i < Size; i++ {
		if i+n < Size {
			r.Bits[i] = w.Bits[i+n]
		} else {
			r.Bits[i] = lit.ConstFalse
		}
	}
	return r
}

// ShiftLeft returns w logically shifted left by n bits, zero-filled at the
// LSB end.
func (w Word) ShiftLeft(n int) Word {
	var r Word
	for i := 0; i < Size; i++ {
		if i-n >= 0 {
			r.Bits[i] = w.Bits[i-n]
		} else {
			r.Bits[i] = lit.ConstFalse
		}
	}
	return r
}

// Not returns the bitwise complement of w.
func (w Word) Not(b Backend) Word {
	var r Word
	for i := 0; i < Size; i++ {
		r.Bits[i] = b.Not(w.Bits[i])
	}
	return r
}

// And returns the bitwise AND of w and o.
func (w Word) And(b Backend, o Word) Word {
	var r Word
	for i := 0; i < Size; i++ {
		r.Bits[i] = b.And(w.Bits[i], o.Bits[i])
	}
	return r
}

// Or returns the bitwise OR of w and o.
func (w Word) Or(b Backend, o Word) Word {
	var r Word
	for i := 0; i < Size; i++ {
		r.Bits[i] = b.Or(w.Bits[i], o.Bits[i])
	}
	return r
}

// Xor returns the bitwise XOR of w and any number of other words.
func (w Word) Xor(b Backend, others ...Word) Word {
	var r Word
	for i := 0; i < Size; i++ {
		args := make([]lit.ID, 0, len(others)+1)
		args = append(args, w.Bits[i])
		for _, o := range others {
			args = append(args, o.Bits[i])
		}
		r.Bits[i] = b.Xor(args...)
	}
	return r
}

// Ch computes the SHA "choose" function bitwise: x ? y : z.
func Ch(b Backend, x, y, z Word) Word {
	var r Word
	for i := 0; i < Size; i++ {
		r.Bits[i] = b.Ch(x.Bits[i], y.Bits[i], z.Bits[i])
	}
	return r
}

// Maj computes the SHA "majority" function bitwise.
func Maj(b Backend, x, y, z Word) Word {
	var r Word
	for i := 0; i < Size; i++ {
		r.Bits[i] = b.Maj(x.Bits[i], y.Bits[i], z.Bits[i])
	}
	return r
}

// Add computes ripple-carry addition of w and o, discarding the final carry
// out (modular 32-bit addition, as every SHA round uses): r_i = x_i ^ y_i ^
// c_{i-1}; c_i = maj(x_i, y_i, c_{i-1}).
func (w Word) Add(b Backend, o Word) Word {
	sum, _ := AddN(b, 3, w, o)
	return sum
}

// AddN computes N-ary modular addition of words using the bag/dedup/batch
// algorithm of §4.B: bit positions are processed low to high; each
// position's bag (incoming 1st/2nd-level carries plus the words' bits at
// that position) is deduplicated (x+x reshapes into a weight-1 carry fed
// to the next position, x+~x removes both and bumps a running constant)
// and then fed to the backend's Add primitive in batches of at most
// addMaxArgs (clamped to 2..6), each batch after the first taking the
// previous batch's sum bit as one of its inputs, with the running
// constant's low bit threaded in as a real
// addend on the last batch of each position so it participates in carry
// generation, not just the sum — matching original_source's
// literaladd.hpp, whose `constant` accumulator is shifted one bit per
// position exactly the way constAcc is below. The final carry out of the
// top bit is discarded (modular addition); AddN also returns it for
// callers that need it (e.g. a future multi-word carry chain).
func AddN(b Backend, addMaxArgs int, words ...Word) (Word, lit.ID) {
	if addMaxArgs < 2 {
		addMaxArgs = 2
	}
	if addMaxArgs > 6 {
		addMaxArgs = 6
	}
	var result Word
	// carryIn1[i] holds literals destined for position i with weight 1
	// (first-level carries); carryIn2[i] holds literals destined for
	// position i originating as second-level carries from position i-2.
	carryIn1 := make([][]lit.ID, Size+1)
	carryIn2 := make([][]lit.ID, Size+2)
	// constAcc is the running constant of §4.B: it accumulates every
	// constant-1 operand and every x+~x cancellation seen so far, yields
	// its low bit to the current position, then shifts right — exactly
	// like literaladd.hpp's `constant >>= 1` each iteration. Using a
	// plain accumulator (rather than a per-position parity flag) means
	// two or more constant contributions landing on the same position
	// correctly carry into higher positions instead of being lost mod 2.
	constAcc := 0

	for i := 0; i < Size; i++ {
		bag := make([]lit.ID, 0, len(words)+2)
		for _, w := range words {
			bag = append(bag, w.Bits[i])
		}
		bag = append(bag, carryIn1[i]...)
		bag = append(bag, carryIn2[i]...)

		bag, carryOut, addend := dedupeBag(bag)
		// x+x duplicates reshape into weight-1 carries for the next
		// position (§4.B), not cancellation: fold them straight in.
		carryIn1[i+1] = append(carryIn1[i+1], carryOut...)
		constAcc += addend
		constantBit := constAcc & 1
		constAcc >>= 1

		wantC2 := i+2 < Size

		var sumHere lit.ID
		if len(bag) == 0 {
			// no variable addends at this position: the constant's low
			// bit alone is the sum, and it has already been absorbed into
			// constAcc's shift, so there is nothing left to carry from
			// the batch loop.
			sumHere = lit.Const(constantBit)
		} else {
			haveSum := false
			for len(bag) > 0 {
				n := addMaxArgs
				if haveSum {
					n-- // the previous batch's sum takes one input slot
				}
				if n > len(bag) {
					n = len(bag)
				}
				batch := append([]lit.ID(nil), bag[:n]...)
				if haveSum {
					batch = append(batch, sumHere)
				}
				bag = bag[n:]

				cb := 0
				if len(bag) == 0 {
					// last batch for this position: fold the constant in
					// as a genuine addend so it affects the carry too.
					cb = constantBit
					constantBit = 0
				}

				s, c1, c2, hasC2 := b.Add(batch, cb, wantC2 && len(batch)+cb >= 4)
				sumHere = s
				haveSum = true
				if c1 != lit.ConstFalse {
					carryIn1[i+1] = append(carryIn1[i+1], c1)
				}
				if hasC2 && i+2 < len(carryIn2) {
					carryIn2[i+2] = append(carryIn2[i+2], c2)
				}
			}
		}
		result.Bits[i] = sumHere
	}

	finalCarry := lit.ID(lit.ConstFalse)
	for _, c := range carryIn1[Size] {
		finalCarry = b.Xor(finalCarry, c)
	}
	return result, finalCarry
}

// dedupeBag applies the deduplication rules of §4.B to one bit position's
// bag. A literal's occurrences pair off: each pair reshapes into a weight-1
// carry destined for the next bit position (x+x = 2x, per
// original_source's add_append_variable_/add_append_carry_), with at most
// one literal surviving an odd occurrence count. A literal matched against
// its own negation cancels both occurrences and contributes 1 to the
// returned addend (x+~x = 1), the same as a literal constant 1 found
// directly in the bag. addend can exceed 1 when several such contributions
// land on the same position; the caller (AddN) folds it into a persistent
// running constant rather than a one-bit parity flag, so it carries
// correctly into higher positions instead of being lost mod 2.
func dedupeBag(bag []lit.ID) (out []lit.ID, carryOut []lit.ID, addend int) {
	counts := make(map[lit.ID]int, len(bag))
	for _, l := range bag {
		if lit.IsConstant(l) {
			if l == lit.ConstTrue {
				addend++
			}
			continue
		}
		counts[l]++
	}
	// x + ~x = 1: cancel matched pairs of a variable and its negation.
	seen := make(map[lit.ID]bool, len(counts))
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
			addend += pairs
			counts[l] -= pairs
			counts[neg] -= pairs
			seen[l] = true
			seen[neg] = true
		}
	}
	keys := make([]lit.ID, 0, len(counts))
	for l := range counts {
		keys = append(keys, l)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, l := range keys {
		n := counts[l]
		if n%2 == 1 {
			out = append(out, l)
		}
		// every matched pair of this literal with itself (x+x) reshapes
		// into a weight-1 carry for the next position, per §4.B.
		for p := 0; p < n/2; p++ {
			carryOut = append(carryOut, l)
		}
	}
	return out, carryOut, addend
}
