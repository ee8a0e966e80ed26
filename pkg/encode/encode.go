// Package encode implements the encoder driver of §4.F: it pads a message
// into the single-block domain, allocates fresh variables for its unbound
// bits, drives the SHA-1/SHA-256 compression function from pkg/encode/sharef
// over a symbolic backend (cnf.Backend or anf.Backend), and records the
// named-variable bindings (M, W, A, H) a caller needs to read the result
// back out of the formula.
package encode

import (
	"encoding/binary"
	"fmt"

	"github.com/sophisticatedways/cgen-go/pkg/encode/sharef"
	"github.com/sophisticatedways/cgen-go/pkg/lit"
	"github.com/sophisticatedways/cgen-go/pkg/word"
)

// Algorithm selects which SHA variant to encode.
type Algorithm int

const (
	SHA1 Algorithm = iota
	SHA256
)

func (a Algorithm) String() string {
	switch a {
	case SHA1:
		return "SHA1"
	case SHA256:
		return "SHA256"
	default:
		return "unknown"
	}
}

// HMode selects how the encoder driver treats the output hash value.
type HMode int

const (
	// HUnbound leaves H as freshly introduced variables with no constraint.
	HUnbound HMode = iota
	// HBind asserts H equals Config.H, binding the named output (step 4).
	HBind
	// HCompute re-evaluates the formula with the full M supplied and
	// returns the concrete digest (step 5); it implies the caller has
	// already bound every M bit to a constant.
	HCompute
)

const (
	messageBlockWords = sharef.SHA1MessageSize // 16, shared by both algorithms
	wordBits          = word.Size              // 32
	blockBits         = messageBlockWords * wordBits
	blockBytes        = blockBits / 8
)

// Sink is the subset of *cnf.Formula / *anf.Formula the encoder driver
// needs: fresh-variable allocation, named-variable recording, and
// constant-binding of a single bit. Both concrete formula stores satisfy it
// without the driver importing either package by name, matching the
// call-site dispatch the polymorphic-bit-type design note asks for (§9).
type Sink interface {
	NewVariable() lit.ID
	SetNamed(name string, bits []lit.ID)
	AssertBit(l lit.ID, value int) bool
}

// Config parameterizes one single-block encode run.
type Config struct {
	Algorithm Algorithm
	// Rounds, if 0, defaults to the algorithm's full round count (80 for
	// SHA-1, 64 for SHA-256).
	Rounds int
	// MessageBits is the padded 512-bit message block, LSB-first within
	// each 32-bit word (matching word.FromUint32's bit order). A nil entry
	// is not valid; use lit.Unassigned for bits that should become fresh
	// variables. Must have length blockBits (512) when non-nil; when nil,
	// every message bit is freshly allocated.
	MessageBits []lit.ID
	// H, when HMode is HBind, supplies the hash-size*wordBits constant
	// bits H is asserted equal to.
	H []lit.ID
	HMode HMode
	// AddMaxArgs bounds the backend's N-ary ripple-add batch size (§4.B);
	// 0 uses a small built-in default.
	AddMaxArgs int
}

// Result captures what a caller needs after Encode returns beyond the
// sink it passed in (which Encode has already populated): the concrete
// digest when HMode is HCompute.
type Result struct {
	Digest []uint32 // populated only when Config.HMode == HCompute
}

// hashWords returns the number of 32-bit words algorithm a's digest has.
func hashWords(a Algorithm) int {
	if a == SHA1 {
		return sharef.SHA1HashWords
	}
	return sharef.SHA256HashWords
}

func defaultRounds(a Algorithm) int {
	if a == SHA1 {
		return sharef.SHA1Rounds
	}
	return sharef.SHA256Rounds
}

// Encode runs the encoder driver over backend b and sink s per cfg,
// recording M, W, A, and H as named variable arrays on s.
func Encode(b word.Backend, s Sink, cfg Config) (*Result, error) {
	rounds := cfg.Rounds
	if rounds <= 0 {
		rounds = defaultRounds(cfg.Algorithm)
	}
	if rounds > defaultRounds(cfg.Algorithm) {
		return nil, fmt.Errorf("encode: rounds %d exceeds %s's maximum of %d", rounds, cfg.Algorithm, defaultRounds(cfg.Algorithm))
	}

	addMaxArgs := cfg.AddMaxArgs
	if addMaxArgs < 2 {
		addMaxArgs = 3
	}

	messageBits := cfg.MessageBits
	if messageBits == nil {
		messageBits = make([]lit.ID, blockBits)
		for i := range messageBits {
			messageBits[i] = lit.Unassigned
		}
	}
	if len(messageBits) != blockBits {
		return nil, fmt.Errorf("encode: message block must be %d bits, got %d", blockBits, len(messageBits))
	}

	// Step 2: allocate fresh variables for any unassigned M bit; constants
	// supplied by the caller (from padding or a partial assignment) are
	// kept as-is.
	mBits := make([]lit.ID, blockBits)
	for i, l := range messageBits {
		if lit.IsUnassigned(l) {
			mBits[i] = s.NewVariable()
		} else {
			mBits[i] = l
		}
	}
	s.SetNamed("M", mBits)

	var m [messageBlockWords]word.Word
	for wi := 0; wi < messageBlockWords; wi++ {
		copy(m[wi].Bits[:], mBits[wi*wordBits:(wi+1)*wordBits])
	}

	wNamed := make([]lit.ID, 0, rounds*wordBits)
	aNamed := make([]lit.ID, 0, rounds*wordBits)
	trace := func(name string, idx int, w word.Word) {
		switch name {
		case "W":
			wNamed = append(wNamed, w.Bits[:]...)
		case "A":
			aNamed = append(aNamed, w.Bits[:]...)
		}
	}

	var hBits []lit.ID
	switch cfg.Algorithm {
	case SHA1:
		var h0 [5]word.Word
		for i, v := range sharef.SHA1InitialState {
			h0[i] = word.FromUint32(v)
		}
		out := sharef.CompressSHA1(b, addMaxArgs, rounds, h0, m, trace)
		hBits = flattenWords(out[:])
	case SHA256:
		var h0 [8]word.Word
		for i, v := range sharef.SHA256InitialState {
			h0[i] = word.FromUint32(v)
		}
		out := sharef.CompressSHA256(b, addMaxArgs, rounds, h0, m, trace)
		hBits = flattenWords(out[:])
	default:
		return nil, fmt.Errorf("encode: unknown algorithm %v", cfg.Algorithm)
	}

	s.SetNamed("W", wNamed)
	s.SetNamed("A", aNamed)
	s.SetNamed("H", hBits)

	switch cfg.HMode {
	case HBind:
		want := hashWords(cfg.Algorithm) * wordBits
		if len(cfg.H) != want {
			return nil, fmt.Errorf("encode: H binding must supply %d bits, got %d", want, len(cfg.H))
		}
		for i, hb := range hBits {
			if !lit.IsConstant(cfg.H[i]) {
				return nil, fmt.Errorf("encode: H bit %d must be a constant 0/1, not a variable reference", i)
			}
			if !s.AssertBit(hb, lit.ConstValue(cfg.H[i])) {
				return nil, fmt.Errorf("encode: H bit %d conflicts with a fixed message bit", i)
			}
		}
	case HCompute:
		digest, err := computeConcrete(cfg)
		if err != nil {
			return nil, err
		}
		return &Result{Digest: digest}, nil
	}

	return &Result{}, nil
}

func flattenWords(words []word.Word) []lit.ID {
	out := make([]lit.ID, 0, len(words)*wordBits)
	for _, w := range words {
		out = append(out, w.Bits[:]...)
	}
	return out
}

// computeConcrete re-evaluates the compression function over
// word.ConstBackend with the fully-supplied message, per step 5. Every
// message bit must already be a constant literal. It always runs the full
// round count, matching "derive H's concrete value" in §4.F step 5.
func computeConcrete(cfg Config) ([]uint32, error) {
	block, err := literalsToWords(cfg.MessageBits)
	if err != nil {
		return nil, fmt.Errorf("encode: compute mode requires a fully-assigned M: %w", err)
	}
	switch cfg.Algorithm {
	case SHA1:
		out := sharef.ReferenceSHA1(sharef.SHA1InitialState, [16]uint32(block))
		return out[:], nil
	case SHA256:
		out := sharef.ReferenceSHA256(sharef.SHA256InitialState, [16]uint32(block))
		return out[:], nil
	default:
		return nil, fmt.Errorf("encode: unknown algorithm %v", cfg.Algorithm)
	}
}

func literalsToWords(bits []lit.ID) ([]uint32, error) {
	if len(bits) != blockBits {
		return nil, fmt.Errorf("expected %d bits, got %d", blockBits, len(bits))
	}
	out := make([]uint32, messageBlockWords)
	for wi := 0; wi < messageBlockWords; wi++ {
		var v uint32
		for j := 0; j < wordBits; j++ {
			l := bits[wi*wordBits+j]
			if !lit.IsConstant(l) {
				return nil, fmt.Errorf("bit %d is unassigned", wi*wordBits+j)
			}
			if lit.ConstValue(l) == 1 {
				v |= 1 << uint(j)
			}
		}
		out[wi] = v
	}
	return out, nil
}

// PadMessage implements step 1: it pads message (length constrained to
// (0,55] bytes) into the 512-bit single-block domain and returns it as
// constant literal bits in word.FromUint32's bit order, ready to pass as
// Config.MessageBits (after substituting any bits the caller wants to leave
// unassigned).
func PadMessage(message []byte) ([]lit.ID, error) {
	n := len(message)
	if n == 0 || n > 55 {
		return nil, fmt.Errorf("encode: message must be between 1 and 55 bytes, got %d", n)
	}
	data := make([]byte, blockBytes)
	copy(data, message)
	data[n] = 0x80
	binary.BigEndian.PutUint16(data[blockBytes-2:], uint16(n*8))

	bits := make([]lit.ID, 0, blockBits)
	for wi := 0; wi < blockBytes/4; wi++ {
		v := binary.BigEndian.Uint32(data[wi*4:])
		w := word.FromUint32(v)
		bits = append(bits, w.Bits[:]...)
	}
	return bits, nil
}
