package encode

import (
	"testing"

	"github.com/sophisticatedways/cgen-go/pkg/cnf"
	"github.com/sophisticatedways/cgen-go/pkg/encode/sharef"
	"github.com/sophisticatedways/cgen-go/pkg/lit"
	"github.com/sophisticatedways/cgen-go/pkg/word"
)

// TestWorkerPoolRunsIndependentJobsConcurrently runs several compute-mode
// encode jobs, each over its own *cnf.Formula, and checks every job reports
// success with its own digest matching the plain reference compression.
func TestWorkerPoolRunsIndependentJobsConcurrently(t *testing.T) {
	messages := [][]byte{[]byte("abc"), []byte("hello world"), []byte("go")}

	jobs := make([]Job, 0, len(messages))
	for _, msg := range messages {
		msg := msg
		padded, err := PadMessage(msg)
		if err != nil {
			t.Fatalf("PadMessage(%q): %v", msg, err)
		}
		jobs = append(jobs, Job{
			Name: string(msg),
			NewSink: func() (word.Backend, Sink) {
				f := cnf.NewFormula()
				return &cnf.Backend{F: f, XorMaxArgs: 3}, f
			},
			Config: Config{Algorithm: SHA1, MessageBits: padded, HMode: HCompute},
		})
	}

	pool := NewWorkerPool(2)
	results := pool.RunJobs(jobs, false)
	if len(results) != len(messages) {
		t.Fatalf("got %d results, want %d", len(results), len(messages))
	}

	want := make(map[string][5]uint32, len(messages))
	for _, msg := range messages {
		padded, _ := PadMessage(msg)
		var block [16]uint32
		for wi := 0; wi < 16; wi++ {
			var v uint32
			for j := 0; j < 32; j++ {
				if lit.ConstValue(padded[wi*32+j]) == 1 {
					v |= 1 << uint(j)
				}
			}
			block[wi] = v
		}
		want[string(msg)] = sharef.ReferenceSHA1(sharef.SHA1InitialState, block)
	}

	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("job %q: %v", r.Name, r.Err)
		}
		if len(r.Result.Digest) != sharef.SHA1HashWords {
			t.Fatalf("job %q: digest has %d words", r.Name, len(r.Result.Digest))
		}
		w := want[r.Name]
		for i, v := range w {
			if r.Result.Digest[i] != v {
				t.Fatalf("job %q: digest[%d] = %08x, want %08x", r.Name, i, r.Result.Digest[i], v)
			}
		}
	}

	completed, failed := pool.Stats()
	if completed != int64(len(messages)) || failed != 0 {
		t.Fatalf("Stats: completed=%d failed=%d, want completed=%d failed=0", completed, failed, len(messages))
	}
}
