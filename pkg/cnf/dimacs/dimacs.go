// Package dimacs reads and writes the textual DIMACS CNF format used as
// this module's file I/O wrapper around a *cnf.Formula, per §6: the
// standard "p cnf V C" header, one clause per line terminated by 0, plus
// "c var name = ..." comment records for named-variable bindings and
// "c var .group = { ... }" comment records for the metadata dictionary.
package dimacs

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/sophisticatedways/cgen-go/pkg/cnf"
	"github.com/sophisticatedways/cgen-go/pkg/lit"
)

// Write emits f as DIMACS text: header, named-variable comments, metadata
// comments, then one line per included clause (aggregated clauses are
// expanded to their constituent plain clauses — DIMACS has no aggregate
// form).
func Write(w io.Writer, f *cnf.Formula, metadata map[string]string) error {
	bw := bufio.NewWriter(w)

	var lines [][]lit.ID
	for _, id := range f.AllIDs() {
		if f.Excluded(id) {
			continue
		}
		lines = append(lines, expandClause(f, id)...)
	}

	if _, err := fmt.Fprintf(bw, "p cnf %d %d\n", f.VariableCount(), len(lines)); err != nil {
		return err
	}

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

	groups := make(map[string]map[string]string)
	var groupNames []string
	for k, v := range metadata {
		group, key := ".", k
		if i := strings.IndexByte(k, '.'); i >= 0 {
			group, key = k[:i], k[i+1:]
		}
		if _, ok := groups[group]; !ok {
			groups[group] = make(map[string]string)
			groupNames = append(groupNames, group)
		}
		groups[group][key] = v
	}
	sort.Strings(groupNames)
	for _, group := range groupNames {
		keys := make([]string, 0, len(groups[group]))
		for k := range groups[group] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var parts []string
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, groups[group][k]))
		}
		if _, err := fmt.Fprintf(bw, "c var .%s = { %s }\n", group, strings.Join(parts, ", ")); err != nil {
			return err
		}
	}

	for _, lits := range lines {
		parts := make([]string, 0, len(lits)+1)
		for _, l := range lits {
			parts = append(parts, dimacsLiteral(l))
		}
		parts = append(parts, "0")
		if _, err := fmt.Fprintln(bw, strings.Join(parts, " ")); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func dimacsLiteral(l lit.ID) string {
	v := int(lit.VariableID(l)) + 1
	if lit.IsNegated(l) {
		return "-" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}

// expandClause turns one stored (aggregated or plain) clause into its
// constituent plain clauses.
func expandClause(f *cnf.Formula, id cnf.ID) [][]lit.ID {
	lits := f.Literals(id)
	if !f.IsAggregated(id) {
		return [][]lit.ID{lits}
	}
	flags := f.Flags(id)
	n := len(lits)
	var out [][]lit.ID
	for combo := 0; combo < 1<<uint(n); combo++ {
		if flags&(1<<uint(combo)) == 0 {
			continue
		}
		clause := make([]lit.ID, n)
		for i, v := range lits {
			clause[i] = lit.NegatedOnlyIf(v, combo&(1<<uint(i)) != 0)
		}
		out = append(out, clause)
	}
	return out
}

// ParsedFile holds the result of reading a DIMACS file: the raw clauses
// (not yet merged into a Formula's aggregate form — the caller decides
// whether to re-aggregate via cnf.Formula.AddClause), named-variable
// bindings, and metadata.
type ParsedFile struct {
	VariableCount int
	ClauseCount   int
	Clauses       [][]lit.ID
	Named         map[string][]lit.ID
	Metadata      map[string]string
}

// Read parses DIMACS text, including this module's "c var" comment
// extensions.
func Read(r io.Reader) (*ParsedFile, error) {
	pf := &ParsedFile{Named: make(map[string][]lit.ID), Metadata: make(map[string]string)}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	headerSeen := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "c var ") {
			if err := parseVarComment(pf, line[len("c var "):]); err != nil {
				return nil, fmt.Errorf("dimacs: %w", err)
			}
			continue
		}
		if strings.HasPrefix(line, "c") {
			continue
		}
		if strings.HasPrefix(line, "p ") {
			fields := strings.Fields(line)
			if len(fields) != 4 || fields[1] != "cnf" {
				return nil, fmt.Errorf("dimacs: malformed header %q", line)
			}
			var err error
			pf.VariableCount, err = strconv.Atoi(fields[2])
			if err != nil {
				return nil, fmt.Errorf("dimacs: bad variable count: %w", err)
			}
			pf.ClauseCount, err = strconv.Atoi(fields[3])
			if err != nil {
				return nil, fmt.Errorf("dimacs: bad clause count: %w", err)
			}
			headerSeen = true
			continue
		}
		if !headerSeen {
			return nil, fmt.Errorf("dimacs: clause line before header")
		}
		fields := strings.Fields(line)
		var clause []lit.ID
		for _, tok := range fields {
			n, err := strconv.Atoi(tok)
			if err != nil {
				return nil, fmt.Errorf("dimacs: bad literal %q: %w", tok, err)
			}
			if n == 0 {
				break
			}
			v := lit.Variable(abs(n) - 1)
			l := lit.FromVariable(v)
			if n < 0 {
				l = lit.Negate(l)
			}
			clause = append(clause, l)
		}
		pf.Clauses = append(pf.Clauses, clause)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return pf, nil
}

func parseVarComment(pf *ParsedFile, rest string) error {
	eq := strings.Index(rest, "=")
	if eq < 0 {
		return fmt.Errorf("malformed var comment %q", rest)
	}
	name := strings.TrimSpace(rest[:eq])
	value := strings.TrimSpace(rest[eq+1:])
	if strings.HasPrefix(name, ".") {
		value = strings.TrimPrefix(value, "{")
		value = strings.TrimSuffix(value, "}")
		group := strings.TrimPrefix(name, ".")
		for _, kv := range strings.Split(value, ",") {
			kv = strings.TrimSpace(kv)
			if kv == "" {
				continue
			}
			parts := strings.SplitN(kv, ":", 2)
			if len(parts) != 2 {
				continue
			}
			k := strings.TrimSpace(parts[0])
			v := strings.TrimSpace(parts[1])
			pf.Metadata[group+"."+k] = v
		}
		return nil
	}
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
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0, fmt.Errorf("bad literal token %q: %w", tok, err)
	}
	l := lit.FromVariable(lit.Variable(n - 1))
	if neg {
		l = lit.Negate(l)
	}
	return l, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
