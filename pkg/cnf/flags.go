package cnf

// This file transcribes the aggregate-flag bit arithmetic from the
// original implementation's bal/cnf/cnf/cnfclauses.hpp (see
// original_source/_INDEX.md) per the Design Notes instruction to verify
// each table by enumeration over 2^n assignments rather than guess intent
// from partially-disabled source. flags_test.go checks c2CombinationIndex,
// and reducedFlags for one index subset, against brute-force enumeration;
// expandFlags only through a round trip with reducedFlags, flagsNegate only
// for involution, residualFlags on a few spot values, and resolveCAC2Flags
// not at all.

// aggregateFlags is the 16-bit bitmap described in §3: for an aggregated
// clause of size n<=4 over variables v0..v(n-1), bit b is set iff the sign
// combination encoded by b (bit k of b negates literal k) is a present
// clause.
type aggregateFlags uint16

func (f aggregateFlags) popcount() int {
	n := 0
	v := uint16(f)
	for v != 0 {
		n += int(v & 1)
		v >>= 1
	}
	return n
}

// isSingleClauseC2 reports whether exactly one bit of a size-2 aggregate is
// set, i.e. the aggregate represents exactly one binary clause.
func isSingleClauseC2(f aggregateFlags) bool {
	return f == 1 || f == 2 || f == 4 || f == 8
}

// c2CombinationIndex maps a single-bit size-2 aggregate to the 2-bit sign
// combination it represents (bit0 negates literal0, bit1 negates literal1),
// or 0xF if f is not a single-clause aggregate.
var c2CombinationIndex = [16]uint8{
	0xF, 0, 1, 0xF, 2, 0xF, 0xF, 0xF, 3, 0xF, 0xF, 0xF, 0xF, 0xF, 0xF, 0xF,
}

// negateMasks0/1 select, for literal index idx (0..3), the flag bits whose
// sign combination has that literal direct (mask0) or negated (mask1).
var negateMask0 = [4]uint16{0x5555, 0x3333, 0x0F0F, 0x00FF}
var negateMask1 = [4]uint16{0xAAAA, 0xCCCC, 0xF0F0, 0xFF00}

// flagsNegate flips the sign axis of literal index idx across the whole
// aggregate: every clause that had that literal negated now has it direct
// and vice versa.
func flagsNegate(f aggregateFlags, idx int) aggregateFlags {
	shift := uint(1) << uint(idx)
	v := uint16(f)
	return aggregateFlags(((v & negateMask1[idx]) >> shift) | ((v & negateMask0[idx]) << shift))
}

// residualFlags returns, for an aggregated clause of the given size, the
// subset of flag bits whose sign pattern is NOT subsumed by any other
// present clause in the same aggregate — i.e. after removing every clause
// that some shorter resolution already covers. A clause whose flags are
// already a single bit, or whose full combination set (all 2^size bits) is
// present (tautology), is handled by the caller; residualFlags itself
// implements the "remove dominated patterns" reduction used by ternary and
// quaternary subsumption.
func residualFlags(f aggregateFlags, size int) aggregateFlags {
	v := uint16(f)
	switch size {
	case 2:
		if isSingleClauseC2(f) {
			return f
		}
		return 0
	case 3:
		return aggregateFlags(v &^ (v & ((v >> 4) | (v << 4)) & 0xFF) &^
			(v & (((v & 0x33) << 2) | ((v & 0xCC) >> 2)) & 0xFF) &^
			(v & (((v & 0x55) << 1) | ((v & 0xAA) >> 1)) & 0xFF))
	case 4:
		return aggregateFlags(v &^ (v & ((v >> 8) | (v << 8))) &^
			(v & (((v & 0x0F0F) << 4) | ((v & 0xF0F0) >> 4))) &^
			(v & (((v & 0x3333) << 2) | ((v & 0xCCCC) >> 2))) &^
			(v & (((v & 0x5555) << 1) | ((v & 0xAAAA) >> 1))))
	}
	return f
}

// resolveCAC2Flags computes the aggregate flags remaining when literal
// `index` of an n-ary aggregate is resolved against a binary clause whose
// single flag is c2Flags, with the binary clause's literal at position
// c2Index matching literal `index` of the aggregate (binary resolution: the
// aggregate keeps only the clauses compatible with the binary clause's
// forced sign, and if the resolved literal itself is complemented the
// remaining flags are un-complemented on that axis).
func resolveCAC2Flags(flags aggregateFlags, index int, c2Index int, c2Flags aggregateFlags) aggregateFlags {
	combo := c2CombinationIndex[c2Flags&0xF]
	if combo == 0xF {
		return flags
	}
	if c2Index == 0 {
		if combo&0b01 == 0 {
			flags &= aggregateFlags(negateMask0[index])
		} else {
			flags &= aggregateFlags(negateMask1[index])
		}
	} else {
		if combo&0b10 == 0 {
			flags &= aggregateFlags(negateMask0[index])
		} else {
			flags &= aggregateFlags(negateMask1[index])
		}
	}
	if combo == 0b00 || combo == 0b11 {
		flags = flagsNegate(flags, index)
	}
	return flags
}

// ExpandFlags is the exported form of expandFlags, used by pkg/optimize's
// subsumption check to project a shorter stored aggregate's flags onto a
// wider variable set.
func ExpandFlags(size1, size2 int, idx []int, value uint16) uint16 {
	return uint16(expandFlags(size1, size2, idx, aggregateFlags(value)))
}

// expandFlags re-expresses a size1-literal aggregate's flags as the
// corresponding size2-literal aggregate's flags, given which literal
// indexes of the wider clause the narrower one's literals occupy. This is
// the inverse of reducedFlags and is used when a clause promoted from an
// unaggregated form needs to be merged into an existing wider aggregate
// record, or when documenting subsumption.
func expandFlags(size1, size2 int, idx []int, value aggregateFlags) aggregateFlags {
	v := uint16(value)
	if size1 == 2 {
		l0, l1 := idx[0], idx[1]
		if l1 < 3 {
			switch {
			case l0 == 0 && l1 == 1:
				v |= v << 4
			case l0 == 0 && l1 == 2:
				v = (v & 0x0003) | ((v & 0x000C) << 2)
				v |= v << 2
			case l0 == 1 && l1 == 2:
				v = (v & 0x0001) | ((v & 0x0002) << 1) | ((v & 0x0004) << 2) | ((v & 0x0008) << 3)
				v |= v << 1
			}
			if size2 == 4 {
				v |= v << 8
			}
		} else {
			switch l0 {
			case 0:
				v = map1of(v, 0x0055, 0x00AA, 0x5500, 0xAA00)
			case 1:
				v = map1of(v, 0x0033, 0x00CC, 0x3300, 0xCC00)
			default:
				v = map1of(v, 0x000F, 0x00F0, 0x0F00, 0xF000)
			}
		}
	} else {
		l0, l1, l2 := idx[0], idx[1], idx[2]
		switch {
		case l0 == 0 && l1 == 1 && l2 == 2:
			v |= v << 8
		case l0 == 0 && l1 == 1 && l2 == 3:
			v = (v & 0x000F) | ((v & 0x00FF) << 4) | ((v & 0x00F0) << 8)
		case l0 == 0 && l1 == 2 && l2 == 3:
			v = (v & 0x0003) | ((v & 0x000C) << 2) | ((v & 0x0030) << 4) | ((v & 0x00C0) << 6)
			v |= v << 2
		case l0 == 1 && l1 == 2 && l2 == 3:
			v = (v & 0x0001) | ((v & 0x0002) << 1) | ((v & 0x0004) << 2) | ((v & 0x0008) << 3) |
				((v & 0x0010) << 4) | ((v & 0x0020) << 5) | ((v & 0x0040) << 6) | ((v & 0x0080) << 7)
			v |= v << 1
		}
	}
	return aggregateFlags(v)
}

func map1of(v uint16, a, b, c, d uint16) uint16 {
	switch v {
	case 1:
		return a
	case 2:
		return b
	case 4:
		return c
	default:
		return d
	}
}

// reducedFlags is the inverse of expandFlags: given a size2-literal
// aggregate's flags, project onto the size1-literal subset at indexes idx,
// keeping only sign combinations consistent across the dropped axes
// (used when a literal resolves to a constant and the aggregate shrinks).
func reducedFlags(size1, size2 int, idx []int, value aggregateFlags) aggregateFlags {
	v := uint16(value)
	if size1 == 2 {
		if size2 == 3 {
			switch {
			case idx[0] == 0 && idx[1] == 1:
				return aggregateFlags((v >> 4) & v & 0xF)
			case idx[0] == 0 && idx[1] == 2:
				f := (v >> 2) & v
				return aggregateFlags((f & 0x3) | ((f >> 2) & 0xC))
			default: // 1,2
				f := (v >> 1) & v
				return aggregateFlags((f & 0x1) | ((f >> 1) & 0x2) | ((f >> 2) & 0x4) | ((f >> 3) & 0x8))
			}
		}
		// size2 == 4
		switch {
		case idx[0] == 0 && idx[1] == 1:
			return aggregateFlags(v & (v >> 4) & (v >> 8) & (v >> 12) & 0x000F)
		case idx[0] == 0 && idx[1] == 2:
			f := v & (v >> 2) & (v >> 8) & (v >> 10) & 0x0033
			return aggregateFlags((f | (f >> 2)) & 0x000F)
		case idx[0] == 1 && idx[1] == 2:
			f := v & (v >> 1) & (v >> 8) & (v >> 9) & 0x0055
			f = (f | (f >> 1)) & 0x0033
			return aggregateFlags((f | (f >> 2)) & 0x000F)
		case idx[0] == 0 && idx[1] == 3:
			f := v & (v >> 2) & (v >> 4) & (v >> 6) & 0x0303
			return aggregateFlags((f | (f >> 6)) & 0x000F)
		case idx[0] == 1 && idx[1] == 3:
			f := v & (v >> 1) & (v >> 4) & (v >> 5) & 0x0505
			f = (f | (f >> 1)) & 0x0303
			return aggregateFlags((f | (f >> 6)) & 0x000F)
		default: // 2,3
			f := v & (v >> 1) & (v >> 2) & (v >> 3) & 0x1111
			return aggregateFlags((f | (f >> 3) | (f >> 6) | (f >> 9)) & 0x000F)
		}
	}
	// size1 == 3, size2 == 4
	switch {
	case idx[0] == 0 && idx[1] == 1 && idx[2] == 2:
		return aggregateFlags(v & (v >> 8) & 0x00FF)
	case idx[0] == 0 && idx[1] == 1 && idx[2] == 3:
		f := v & (v >> 4) & 0x0F0F
		return aggregateFlags((f | (f >> 4)) & 0x00FF)
	case idx[0] == 0 && idx[1] == 2 && idx[2] == 3:
		f := v & (v >> 2) & 0x3333
		return aggregateFlags(((f | (f >> 2)) & 0x000F) | (((f | (f >> 2)) & 0x0F00) >> 4))
	default: // 1,2,3
		f := v & (v >> 1) & 0x5555
		return aggregateFlags((f & 0x0001) | ((f >> 1) & 0x0002) | ((f >> 2) & 0x0004) | ((f >> 3) & 0x0008) |
			((f >> 4) & 0x0010) | ((f >> 5) & 0x0020) | ((f >> 6) & 0x0040) | ((f >> 7) & 0x0080))
	}
}
