package word

import (
	"testing"

	"github.com/sophisticatedways/cgen-go/pkg/lit"
)

// TestComposeAddTruthTable enumerates every (args bitmask, constantBit)
// combination for batches up to size 6 and checks that ComposeAdd's
// (sum, c1, c2) reproduces popcount(args)+constantBit exactly, over a
// ConstBackend. This is the enumeration referenced by compose.go's doc
// comment as standing in for transcribing §6's ADD_MAP table.
func TestComposeAddTruthTable(t *testing.T) {
	var b ConstBackend
	for n := 0; n <= 6; n++ {
		for mask := 0; mask < (1 << uint(n)); mask++ {
			lits := make([]lit.ID, n)
			count := 0
			for i := 0; i < n; i++ {
				bit := mask&(1<<uint(i)) != 0
				lits[i] = boolLit(bit)
				if bit {
					count++
				}
			}
			for cb := 0; cb <= 1; cb++ {
				total := count + cb
				wantSum := total & 1
				wantC1 := (total >> 1) & 1
				wantC2 := (total >> 2) & 1

				sum, c1, c2, hasC2 := ComposeAdd(b, lits, cb, true)
				if !hasC2 {
					t.Fatalf("n=%d mask=%d cb=%d: wantC2=true but hasC2=false", n, mask, cb)
				}
				if truth(sum) != (wantSum != 0) {
					t.Errorf("n=%d mask=%d cb=%d: sum = %v, want %d", n, mask, cb, truth(sum), wantSum)
				}
				if truth(c1) != (wantC1 != 0) {
					t.Errorf("n=%d mask=%d cb=%d: c1 = %v, want %d", n, mask, cb, truth(c1), wantC1)
				}
				if truth(c2) != (wantC2 != 0) {
					t.Errorf("n=%d mask=%d cb=%d: c2 = %v, want %d", n, mask, cb, truth(c2), wantC2)
				}
			}
		}
	}
}

// TestComposeAddWithoutC2 checks that wantC2=false suppresses the
// second-level carry output.
func TestComposeAddWithoutC2(t *testing.T) {
	var b ConstBackend
	lits := []lit.ID{boolLit(true), boolLit(true), boolLit(true)}
	_, _, _, hasC2 := ComposeAdd(b, lits, 1, false)
	if hasC2 {
		t.Errorf("wantC2=false should yield hasC2=false")
	}
}
