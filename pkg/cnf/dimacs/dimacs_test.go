package dimacs

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sophisticatedways/cgen-go/pkg/cnf"
	"github.com/sophisticatedways/cgen-go/pkg/lit"
)

func TestWriteReadRoundTripClauses(t *testing.T) {
	f := cnf.NewFormula()
	x := f.NewVariable()
	y := f.NewVariable()
	z := f.NewVariable()
	f.AddClause(x, y)
	f.AddClause(lit.Negate(y), z)
	f.SetNamed("M", []lit.ID{x, y, z})

	var buf bytes.Buffer
	if err := Write(&buf, f, map[string]string{"info.algo": "sha1"}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	text := buf.String()
	if !strings.HasPrefix(text, "p cnf 3 2\n") {
		t.Fatalf("unexpected header: %q", text)
	}
	if !strings.Contains(text, "c var M = ") {
		t.Fatalf("missing named-variable comment: %q", text)
	}
	if !strings.Contains(text, "c var .info = { algo: sha1 }") {
		t.Fatalf("missing metadata comment: %q", text)
	}

	pf, err := Read(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if pf.VariableCount != 3 || pf.ClauseCount != 2 {
		t.Fatalf("header mismatch: %+v", pf)
	}
	if len(pf.Clauses) != 2 {
		t.Fatalf("got %d clauses, want 2", len(pf.Clauses))
	}
	if got := pf.Named["M"]; len(got) != 3 {
		t.Fatalf("named M = %v, want 3 literals", got)
	}
	if pf.Metadata["info.algo"] != "sha1" {
		t.Fatalf("metadata = %v", pf.Metadata)
	}
}

func TestReadRejectsClauseBeforeHeader(t *testing.T) {
	if _, err := Read(strings.NewReader("1 2 0\n")); err == nil {
		t.Fatalf("expected error for missing header")
	}
}
