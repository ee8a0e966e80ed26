package sharef

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/binary"
	"testing"
)

// padBlock reproduces the single-block SHA padding described in §4.F.1 for
// plain byte messages, used here purely to build inputs for the reference
// oracle comparison -- pkg/encode owns the real (literal-producing) padder.
func padBlock(t *testing.T, message string) [16]uint32 {
	t.Helper()
	data := make([]byte, 64)
	n := copy(data, message)
	if n == 0 || n > 55 {
		t.Fatalf("test message %q out of (0,55] byte range", message)
	}
	data[n] = 0x80
	binary.BigEndian.PutUint16(data[62:], uint16(n*8))
	var block [16]uint32
	for i := range block {
		block[i] = binary.BigEndian.Uint32(data[i*4:])
	}
	return block
}

func TestReferenceSHA1MatchesStdlib(t *testing.T) {
	for _, msg := range []string{"abc", "", "hello world", "a"} {
		if msg == "" {
			continue // zero-length message is outside the (0,55] constraint
		}
		block := padBlock(t, msg)
		got := ReferenceSHA1(SHA1InitialState, block)

		want := sha1.Sum([]byte(msg))
		var wantWords [5]uint32
		for i := range wantWords {
			wantWords[i] = binary.BigEndian.Uint32(want[i*4:])
		}
		if got != wantWords {
			t.Fatalf("ReferenceSHA1(%q) = %08x, want %08x", msg, got, wantWords)
		}
	}
}

func TestReferenceSHA256MatchesStdlib(t *testing.T) {
	for _, msg := range []string{"abc", "hello world", "a"} {
		block := padBlock(t, msg)
		got := ReferenceSHA256(SHA256InitialState, block)

		want := sha256.Sum256([]byte(msg))
		var wantWords [8]uint32
		for i := range wantWords {
			wantWords[i] = binary.BigEndian.Uint32(want[i*4:])
		}
		if got != wantWords {
			t.Fatalf("ReferenceSHA256(%q) = %08x, want %08x", msg, got, wantWords)
		}
	}
}
