// Package polybori writes a *anf.Formula out as PolyBoRi-style text, the ANF
// counterpart of pkg/cnf/dimacs: one equation per line, each a sum of
// `x<n>`-token products separated by `+`, an optional trailing `+ 1` for the
// equation's constant term, with the same "c var name = ..." named-variable
// comment header used by the DIMACS writer, per §6.
package polybori

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sophisticatedways/cgen-go/pkg/anf"
	"github.com/sophisticatedways/cgen-go/pkg/lit"
)

// Write emits f as PolyBoRi text: named-variable comments, then one line per
// equation.
func Write(w io.Writer, f *anf.Formula) error {
	bw := bufio.NewWriter(w)

	names := f.NamedNames()
	sort.Strings(names)
	for _, name := range names {
		bits, _ := f.Named(name)
		vals := make([]string, len(bits))
		for i, b := range bits {
			vals[i] = b.String()
		}
		if _, err := fmt.Fprintf(bw, "c var %s = %s\n", name, strings.Join(vals, " ")); err != nil {
			return err
		}
	}

	for eq := 0; eq < f.EquationCount(); eq++ {
		if _, err := fmt.Fprintln(bw, equationLine(f, eq)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// equationLine renders one equation as a "+"-separated sum of term products,
// each term a "*"-separated product of ascending x<n> tokens, with the
// constant term (if set) appended last as a bare "1".
func equationLine(f *anf.Formula, eq int) string {
	terms := f.Terms(eq)
	parts := make([]string, 0, len(terms)+1)
	for _, t := range terms {
		factors := make([]string, len(t))
		for i, v := range t {
			factors[i] = fmt.Sprintf("x%d", v)
		}
		parts = append(parts, strings.Join(factors, "*"))
	}
	if f.Constant(eq) == 1 {
		parts = append(parts, "1")
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, " + ")
}

// Read parses PolyBoRi text back into raw equations (constant term plus
// ascending-variable products) and named-variable bindings, mirroring
// dimacs.Read's ParsedFile shape. Nothing here rebuilds a *anf.Formula from
// the parsed terms: CompleteEquation takes the anf package's unexported
// equation builder, so it cannot be driven from outside that package.
type ParsedFile struct {
	Equations []ParsedEquation
	Named     map[string][]lit.ID
}

// ParsedEquation is one parsed PolyBoRi line: a constant term (0 or 1) and
// the ascending, deduped variable-ordinal products summed with it.
type ParsedEquation struct {
	Constant int
	Terms    [][]lit.Variable
}

// Read parses PolyBoRi text, including the "c var" named-variable comment
// extension.
func Read(r io.Reader) (*ParsedFile, error) {
	pf := &ParsedFile{Named: make(map[string][]lit.ID)}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "c var ") {
			if err := parseVarComment(pf, line[len("c var "):]); err != nil {
				return nil, fmt.Errorf("polybori: %w", err)
			}
			continue
		}
		if strings.HasPrefix(line, "c") {
			continue
		}
		eq, err := parseEquationLine(line)
		if err != nil {
			return nil, fmt.Errorf("polybori: %w", err)
		}
		pf.Equations = append(pf.Equations, eq)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return pf, nil
}

func parseEquationLine(line string) (ParsedEquation, error) {
	var eq ParsedEquation
	for _, part := range strings.Split(line, "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if part == "1" {
			eq.Constant ^= 1
			continue
		}
		if part == "0" {
			continue
		}
		var term []lit.Variable
		for _, factor := range strings.Split(part, "*") {
			factor = strings.TrimSpace(factor)
			if !strings.HasPrefix(factor, "x") {
				return eq, fmt.Errorf("bad term factor %q", factor)
			}
			var n int
			if _, err := fmt.Sscanf(factor[1:], "%d", &n); err != nil {
				return eq, fmt.Errorf("bad variable token %q: %w", factor, err)
			}
			term = append(term, lit.Variable(n))
		}
		eq.Terms = append(eq.Terms, term)
	}
	return eq, nil
}

func parseVarComment(pf *ParsedFile, rest string) error {
	eqIdx := strings.Index(rest, "=")
	if eqIdx < 0 {
		return fmt.Errorf("malformed var comment %q", rest)
	}
	name := strings.TrimSpace(rest[:eqIdx])
	value := strings.TrimSpace(rest[eqIdx+1:])
	var bits []lit.ID
	for _, tok := range strings.Fields(value) {
		l, err := parseLiteralToken(tok)
		if err != nil {
			return err
		}
		bits = append(bits, l)
	}
	pf.Named[name] = bits
	return nil
}

func parseLiteralToken(tok string) (lit.ID, error) {
	switch {
	case tok == "0":
		return lit.ConstFalse, nil
	case tok == "1":
		return lit.ConstTrue, nil
	case tok == "*":
		return lit.Unassigned, nil
	}
	neg := strings.HasPrefix(tok, "-")
	num := strings.TrimPrefix(tok, "-")
	var n int
	if _, err := fmt.Sscanf(num, "%d", &n); err != nil {
		return 0, fmt.Errorf("bad literal token %q: %w", tok, err)
	}
	l := lit.FromVariable(lit.Variable(n - 1))
	if neg {
		l = lit.Negate(l)
	}
	return l, nil
}
