package cnf

import "testing"

func TestC2CombinationIndex(t *testing.T) {
	for f := 0; f < 16; f++ {
		want := 0xF
		for b := 0; b < 4; b++ {
			if f == 1<<uint(b) {
				want = b
			}
		}
		if got := int(c2CombinationIndex[f]); got != want {
			t.Errorf("c2CombinationIndex[%d] = %#x, want %#x", f, got, want)
		}
	}
}

func TestFlagsNegateInvolution(t *testing.T) {
	for idx := 0; idx < 4; idx++ {
		for f := 0; f < 0x10000; f += 4097 { // sample across the space
			v := aggregateFlags(f)
			if got := flagsNegate(flagsNegate(v, idx), idx); got != v {
				t.Fatalf("flagsNegate not involutive at idx=%d f=%#x: got %#x", idx, f, got)
			}
		}
	}
}

func TestReducedFlagsAgainstBruteForce(t *testing.T) {
	// size2=3 -> size1=2, dropping index 2: keep sign combos over (l0,l1)
	// present for BOTH settings of l2.
	for f := 0; f < 256; f++ {
		full := aggregateFlags(f)
		want := aggregateFlags(0)
		for b2 := 0; b2 < 4; b2++ { // combos over l0,l1
			bothPresent := true
			for l2 := 0; l2 < 2; l2++ {
				full_b := b2 | (l2 << 2)
				if full&(1<<uint(full_b)) == 0 {
					bothPresent = false
				}
			}
			if bothPresent {
				want |= 1 << uint(b2)
			}
		}
		got := reducedFlags(2, 3, []int{0, 1}, full)
		if got != want {
			t.Fatalf("reducedFlags(size1=2,size2=3,idx={0,1}) f=%#x got=%#x want=%#x", f, got, want)
		}
	}
}

func TestExpandReduceRoundTrip(t *testing.T) {
	// Expanding a consistent size-2 pattern to size-3 then reducing back
	// must recover the original (when the original was "uniform" across
	// the dropped dimension, which is exactly what expand produces).
	for f := 0; f < 16; f++ {
		v := aggregateFlags(f)
		expanded := expandFlags(2, 3, []int{0, 1}, v)
		reduced := reducedFlags(2, 3, []int{0, 1}, expanded)
		if reduced != v {
			t.Errorf("round trip f=%#x: expanded=%#x reduced=%#x", f, expanded, reduced)
		}
	}
}

func TestResidualFlagsSize2SingleClauseUnchanged(t *testing.T) {
	for _, f := range []aggregateFlags{1, 2, 4, 8} {
		if got := residualFlags(f, 2); got != f {
			t.Errorf("residualFlags(%#x,2) = %#x, want unchanged", f, got)
		}
	}
	if got := residualFlags(0b0011, 2); got != 0 {
		t.Errorf("residualFlags(0b0011,2) = %#x, want 0 (tautology-adjacent, not single)", got)
	}
}

func TestPopcount(t *testing.T) {
	cases := map[aggregateFlags]int{0: 0, 1: 1, 0b11: 2, 0xFFFF: 16, 0b1010: 2}
	for f, want := range cases {
		if got := f.popcount(); got != want {
			t.Errorf("popcount(%#x) = %d, want %d", f, got, want)
		}
	}
}
