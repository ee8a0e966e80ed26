package word

import "github.com/sophisticatedways/cgen-go/pkg/lit"

// ConstBackend is the concrete half of the polymorphic bit type: every
// operand is a constant literal (lit.ConstFalse/lit.ConstTrue) and every
// operation just computes the boolean result directly, introducing no
// variables. It is used for reference evaluation — running the exact same
// round-function code that drives a symbolic encoding, but over known
// concrete bits, to produce a plain digest (see pkg/encode/sharef).
type ConstBackend struct{}

func boolLit(v bool) lit.ID {
	if v {
		return lit.ConstTrue
	}
	return lit.ConstFalse
}

func truth(l lit.ID) bool {
	return l == lit.ConstTrue
}

func (ConstBackend) Not(x lit.ID) lit.ID { return boolLit(!truth(x)) }

func (ConstBackend) And(x, y lit.ID) lit.ID { return boolLit(truth(x) && truth(y)) }

func (ConstBackend) Or(x, y lit.ID) lit.ID { return boolLit(truth(x) || truth(y)) }

func (ConstBackend) Xor(args ...lit.ID) lit.ID {
	v := false
	for _, a := range args {
		v = v != truth(a)
	}
	return boolLit(v)
}

func (ConstBackend) Ch(x, y, z lit.ID) lit.ID {
	if truth(x) {
		return y
	}
	return z
}

func (ConstBackend) Maj(x, y, z lit.ID) lit.ID {
	n := 0
	for _, b := range []lit.ID{x, y, z} {
		if truth(b) {
			n++
		}
	}
	return boolLit(n >= 2)
}

func (c ConstBackend) Add(args []lit.ID, constantBit int, wantC2 bool) (sum, c1, c2 lit.ID, hasC2 bool) {
	return ComposeAdd(c, args, constantBit, wantC2)
}
