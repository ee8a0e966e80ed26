// Package vig writes a clause store's variable-interaction graph as
// Graphviz DOT text: an edge between two variables for every clause that
// mentions both. Grounded on original_source's bal/cnf/io/cnfvig.hpp
// (GEXF/GraphML siblings of the same export are skipped — DOT is the
// idiomatic plain-text equivalent and nothing in the retrieved examples
// writes Go GEXF/GraphML).
package vig

import (
	"fmt"
	"io"
	"sort"

	"github.com/sophisticatedways/cgen-go/pkg/cnf"
	"github.com/sophisticatedways/cgen-go/pkg/lit"
)

type edge struct{ a, b lit.Variable }

// Write emits the graph for every included clause in f: nodes "v<n>",
// edges weighted by co-occurrence count.
func Write(w io.Writer, f *cnf.Formula) error {
	weights := make(map[edge]int)
	nodes := make(map[lit.Variable]bool)

	for _, id := range f.AllIDs() {
		if f.Excluded(id) {
			continue
		}
		lits := f.Literals(id)
		vars := make([]lit.Variable, len(lits))
		for i, l := range lits {
			vars[i] = lit.VariableID(l)
			nodes[vars[i]] = true
		}
		for i := 0; i < len(vars); i++ {
			for j := i + 1; j < len(vars); j++ {
				a, b := vars[i], vars[j]
				if a > b {
					a, b = b, a
				}
				weights[edge{a, b}]++
			}
		}
	}

	if _, err := fmt.Fprintln(w, "graph vig {"); err != nil {
		return err
	}

	var nodeList []lit.Variable
	for v := range nodes {
		nodeList = append(nodeList, v)
	}
	sort.Slice(nodeList, func(i, j int) bool { return nodeList[i] < nodeList[j] })
	for _, v := range nodeList {
		if _, err := fmt.Fprintf(w, "  v%d;\n", v); err != nil {
			return err
		}
	}

	var edgeList []edge
	for e := range weights {
		edgeList = append(edgeList, e)
	}
	sort.Slice(edgeList, func(i, j int) bool {
		if edgeList[i].a != edgeList[j].a {
			return edgeList[i].a < edgeList[j].a
		}
		return edgeList[i].b < edgeList[j].b
	})
	for _, e := range edgeList {
		if _, err := fmt.Fprintf(w, "  v%d -- v%d [weight=%d];\n", e.a, e.b, weights[e]); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}
