// Package randassign implements the "random:N" alternative of §6's
// variable-value grammar: filling a run of bits with an independently
// random 0/1 draw per bit, seeded from a caller-supplied *rand.Rand so a CLI
// run is reproducible with a fixed seed. Grounded on the teacher's
// math/rand/v2 usage in its stochastic mutator — this package stays a
// CLI-side collaborator; pkg/optimize and pkg/cnf never import it (the core
// has no randomness, per the spec it reimplements).
package randassign

import (
	"math/rand/v2"

	"github.com/sophisticatedways/cgen-go/pkg/lit"
)

// Fill returns n freshly drawn constant bits, each independently 0 or 1.
func Fill(rng *rand.Rand, n int) []lit.ID {
	out := make([]lit.ID, n)
	for i := range out {
		out[i] = lit.Const(rng.IntN(2))
	}
	return out
}

// FillWord draws a random 32-bit constant word as LSB-first bits, matching
// word.FromUint32's bit order.
func FillWord(rng *rand.Rand) []lit.ID {
	return Fill(rng, 32)
}
