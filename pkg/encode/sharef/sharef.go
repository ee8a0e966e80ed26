// Package sharef implements the SHA-1 and SHA-256 compression functions
// once, over the polymorphic word.Backend contract, so the exact same
// round-function code drives both a plain-integer reference digest (via
// word.ConstBackend, used as the property-7 test oracle and the encoder's
// "compute" mode) and the symbolic CNF/ANF encoding in pkg/encode (passed a
// cnf.Backend or anf.Backend instead). This is the concrete half of the
// "polymorphic bit type" design note (§9 of the originating spec): one
// round-function body, two bit representations, chosen at the call site.
package sharef

import (
	"github.com/sophisticatedways/cgen-go/pkg/word"
)

// Trace receives every named intermediate quantity the compression function
// produces: the message schedule word W[t] and the working-state word A[t]
// for round t. The symbolic encoder in pkg/encode passes a non-nil Trace to
// record named variables; the reference evaluator passes nil.
type Trace func(name string, index int, w word.Word)

func notrace(string, int, word.Word) {}

func traceOrNoop(t Trace) Trace {
	if t == nil {
		return notrace
	}
	return t
}

// sha1K holds the four SHA-1 round constants, one per 20-round quarter.
var sha1K = [4]uint32{0x5A827999, 0x6ED9EBA1, 0x8F1BBCDC, 0xCA62C1D6}

// SHA1InitialState is the standard SHA-1 IV.
var SHA1InitialState = [5]uint32{0x67452301, 0xEFCDAB89, 0x98BADCFE, 0x10325476, 0xC3D2E1F0}

const (
	SHA1Rounds      = 80
	SHA1HashWords   = 5
	SHA1MessageSize = 16
)

func sha1f(b word.Backend, t int, x, y, z word.Word) word.Word {
	switch t / 20 {
	case 0:
		return word.Ch(b, x, y, z)
	case 2:
		return word.Maj(b, x, y, z)
	default:
		return x.Xor(b, y, z) // "parity": x xor y xor z
	}
}

// CompressSHA1 runs `rounds` (<=80) rounds of the SHA-1 compression function
// over backend b, starting from state h0 and message schedule seed m (the
// block's 16 message words). It returns the updated 5-word state.
func CompressSHA1(b word.Backend, addMaxArgs, rounds int, h0 [5]word.Word, m [SHA1MessageSize]word.Word, trace Trace) [5]word.Word {
	trace = traceOrNoop(trace)
	if rounds <= 0 || rounds > SHA1Rounds {
		rounds = SHA1Rounds
	}

	w := make([]word.Word, rounds)
	for t := 0; t < SHA1MessageSize && t < rounds; t++ {
		w[t] = m[t]
		trace("W", t, w[t])
	}
	for t := SHA1MessageSize; t < rounds; t++ {
		w[t] = w[t-3].Xor(b, w[t-8], w[t-14], w[t-16]).RotateLeft(1)
		trace("W", t, w[t])
	}

	a, bb, c, d, e := h0[0], h0[1], h0[2], h0[3], h0[4]
	for t := 0; t < rounds; t++ {
		ft := sha1f(b, t, bb, c, d)
		temp, _ := word.AddN(b, addMaxArgs, a.RotateLeft(5), ft, e, w[t], word.FromUint32(sha1K[t/20]))
		e = d
		d = c
		c = bb.RotateLeft(30)
		bb = a
		a = temp
		trace("A", t, a)
	}

	out := [5]word.Word{
		addWord(b, addMaxArgs, h0[0], a),
		addWord(b, addMaxArgs, h0[1], bb),
		addWord(b, addMaxArgs, h0[2], c),
		addWord(b, addMaxArgs, h0[3], d),
		addWord(b, addMaxArgs, h0[4], e),
	}
	return out
}

// sha256K holds the 64 SHA-256 round constants.
var sha256K = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5,
	0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3,
	0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc,
	0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7,
	0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13,
	0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3,
	0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5,
	0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208,
	0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

// SHA256InitialState is the standard SHA-256 IV.
var SHA256InitialState = [8]uint32{
	0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
	0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
}

const (
	SHA256Rounds      = 64
	SHA256HashWords   = 8
	SHA256MessageSize = 16
)

func sha256sl0(b word.Backend, x word.Word) word.Word {
	r2 := x.RotateRight(2)
	return r2.Xor(b, x.RotateRight(13), x.RotateRight(22))
}

func sha256sl1(b word.Backend, x word.Word) word.Word {
	r6 := x.RotateRight(6)
	return r6.Xor(b, x.RotateRight(11), x.RotateRight(25))
}

func sha256ss0(b word.Backend, x word.Word) word.Word {
	r7 := x.RotateRight(7)
	return r7.Xor(b, x.RotateRight(18), x.ShiftRight(3))
}

func sha256ss1(b word.Backend, x word.Word) word.Word {
	r17 := x.RotateRight(17)
	return r17.Xor(b, x.RotateRight(19), x.ShiftRight(10))
}

// CompressSHA256 runs `rounds` (<=64) rounds of the SHA-256 compression
// function over backend b, mirroring CompressSHA1's shape.
func CompressSHA256(b word.Backend, addMaxArgs, rounds int, h0 [8]word.Word, m [SHA256MessageSize]word.Word, trace Trace) [8]word.Word {
	trace = traceOrNoop(trace)
	if rounds <= 0 || rounds > SHA256Rounds {
		rounds = SHA256Rounds
	}

	w := make([]word.Word, rounds)
	for t := 0; t < SHA256MessageSize && t < rounds; t++ {
		w[t] = m[t]
		trace("W", t, w[t])
	}
	for t := SHA256MessageSize; t < rounds; t++ {
		sum, _ := word.AddN(b, addMaxArgs, sha256ss1(b, w[t-2]), w[t-7], sha256ss0(b, w[t-15]), w[t-16])
		w[t] = sum
		trace("W", t, w[t])
	}

	a, bb, c, d, e, f, g, h := h0[0], h0[1], h0[2], h0[3], h0[4], h0[5], h0[6], h0[7]
	for t := 0; t < rounds; t++ {
		t1, _ := word.AddN(b, addMaxArgs, h, sha256sl1(b, e), word.Ch(b, e, f, g), word.FromUint32(sha256K[t]), w[t])
		t2, _ := word.AddN(b, addMaxArgs, sha256sl0(b, a), word.Maj(b, a, bb, c))

		h = g
		g = f
		f = e
		e = addWord(b, addMaxArgs, d, t1)
		d = c
		c = bb
		bb = a
		a = addWord(b, addMaxArgs, t1, t2)
		trace("A", t, a)
	}

	out := [8]word.Word{
		addWord(b, addMaxArgs, h0[0], a),
		addWord(b, addMaxArgs, h0[1], bb),
		addWord(b, addMaxArgs, h0[2], c),
		addWord(b, addMaxArgs, h0[3], d),
		addWord(b, addMaxArgs, h0[4], e),
		addWord(b, addMaxArgs, h0[5], f),
		addWord(b, addMaxArgs, h0[6], g),
		addWord(b, addMaxArgs, h0[7], h),
	}
	return out
}

func addWord(b word.Backend, addMaxArgs int, x, y word.Word) word.Word {
	sum, _ := word.AddN(b, addMaxArgs, x, y)
	return sum
}

// ReferenceSHA1 computes the concrete SHA-1 state update for one 512-bit
// block over word.ConstBackend, using CompressSHA1 unchanged.
func ReferenceSHA1(h0 [5]uint32, block [16]uint32) [5]uint32 {
	var m [16]word.Word
	for i, v := range block {
		m[i] = word.FromUint32(v)
	}
	var h [5]word.Word
	for i, v := range h0 {
		h[i] = word.FromUint32(v)
	}
	out := CompressSHA1(word.ConstBackend{}, 3, SHA1Rounds, h, m, nil)
	var result [5]uint32
	for i, w := range out {
		result[i] = w.ToUint32()
	}
	return result
}

// ReferenceSHA1RoundCapped computes the concrete SHA-1 state update for one
// 512-bit block over word.ConstBackend, stopping after `rounds` rounds
// instead of the full 80 — used to check the encoder's recorded state
// against a partial-round reference run (seed scenario S6).
func ReferenceSHA1RoundCapped(h0 [5]uint32, block [16]uint32, rounds int) [5]uint32 {
	var m [16]word.Word
	for i, v := range block {
		m[i] = word.FromUint32(v)
	}
	var h [5]word.Word
	for i, v := range h0 {
		h[i] = word.FromUint32(v)
	}
	out := CompressSHA1(word.ConstBackend{}, 3, rounds, h, m, nil)
	var result [5]uint32
	for i, w := range out {
		result[i] = w.ToUint32()
	}
	return result
}

// ReferenceSHA256 computes the concrete SHA-256 state update for one
// 512-bit block over word.ConstBackend, using CompressSHA256 unchanged.
func ReferenceSHA256(h0 [8]uint32, block [16]uint32) [8]uint32 {
	var m [16]word.Word
	for i, v := range block {
		m[i] = word.FromUint32(v)
	}
	var h [8]word.Word
	for i, v := range h0 {
		h[i] = word.FromUint32(v)
	}
	out := CompressSHA256(word.ConstBackend{}, 3, SHA256Rounds, h, m, nil)
	var result [8]uint32
	for i, w := range out {
		result[i] = w.ToUint32()
	}
	return result
}
