// Command shaencode encodes SHA-1/SHA-256 as a CNF or ANF formula, per §6's
// CLI surface, writes DIMACS or PolyBoRi files, and reads DIMACS files back
// to let a caller re-bind variables across separate invocations
// (assign/define); PolyBoRi output is not read back.
package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sophisticatedways/cgen-go/pkg/anf"
	"github.com/sophisticatedways/cgen-go/pkg/anf/polybori"
	"github.com/sophisticatedways/cgen-go/pkg/cnf"
	"github.com/sophisticatedways/cgen-go/pkg/cnf/dimacs"
	"github.com/sophisticatedways/cgen-go/pkg/cnf/vig"
	"github.com/sophisticatedways/cgen-go/pkg/encode"
	"github.com/sophisticatedways/cgen-go/pkg/ioformat/randassign"
	"github.com/sophisticatedways/cgen-go/pkg/lit"
	"github.com/sophisticatedways/cgen-go/pkg/optimize"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "shaencode",
		Short:   "Encode SHA-1/SHA-256 as a CNF or ANF formula",
		Version: "0.1.0",
	}
	root.AddCommand(newEncodeCmd(), newAssignCmd(), newDefineCmd())
	return root
}

// varBinding is one parsed "-v name=value" occurrence.
type varBinding struct {
	name  string
	value string
}

func parseVarFlags(raw []string) ([]varBinding, error) {
	out := make([]varBinding, 0, len(raw))
	for _, r := range raw {
		i := strings.IndexByte(r, '=')
		if i < 0 {
			return nil, fmt.Errorf("-v %q: expected name=value", r)
		}
		out = append(out, varBinding{name: r[:i], value: r[i+1:]})
	}
	return out, nil
}

func newRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}

func newEncodeCmd() *cobra.Command {
	var (
		vars        []string
		rounds      int
		addMaxArgs  int
		xorMaxArgs  int
		useANF      bool
		optimizeArg string
		seed        int64
		vigOut      string
	)

	cmd := &cobra.Command{
		Use:   "encode (SHA1|SHA256) <output>",
		Short: "Encode one SHA-1/SHA-256 block as a CNF or ANF formula",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			algo, err := parseAlgorithm(args[0])
			if err != nil {
				return err
			}
			bindings, err := parseVarFlags(vars)
			if err != nil {
				return err
			}

			cfg := encode.Config{Algorithm: algo, Rounds: rounds, AddMaxArgs: addMaxArgs}
			rng := newRNG(seed)
			for _, b := range bindings {
				v, err := ParseValue(b.value, nil)
				if err != nil {
					return fmt.Errorf("-v %s: %w", b.name, err)
				}
				switch b.name {
				case "M":
					bits := v.Bits
					if v.Random > 0 {
						bits = randassign.Fill(rng, v.Random)
					}
					cfg.MessageBits = bits
				case "H":
					if v.Compute {
						cfg.HMode = encode.HCompute
					} else {
						cfg.H = v.Bits
						cfg.HMode = encode.HBind
					}
				default:
					return fmt.Errorf("encode: unsupported -v name %q (only M and H bind here)", b.name)
				}
			}

			mode, err := parseOptimizeMode(optimizeArg)
			if err != nil {
				return err
			}

			if useANF {
				f := anf.NewFormula()
				b := &anf.Backend{F: f, OptimizeNegation: true}
				res, err := encode.Encode(b, f, cfg)
				if err != nil {
					return err
				}
				reportDigest(res)
				return writePolyBoRi(f, args[1])
			}

			f := cnf.NewFormula()
			b := &cnf.Backend{F: f, XorMaxArgs: xorMaxArgs}
			res, err := encode.Encode(b, f, cfg)
			if err != nil {
				return err
			}
			reportDigest(res)

			if cfg.HMode != encode.HCompute && mode != nil {
				o := optimize.New(f)
				if err := o.Run(*mode); err != nil {
					return fmt.Errorf("encode: optimize: %w", err)
				}
				o.Reindex()
			}

			if vigOut != "" {
				if err := writeVIG(f, vigOut); err != nil {
					return err
				}
			}

			return writeDIMACS(f, args[1])
		},
	}

	cmd.Flags().StringArrayVarP(&vars, "var", "v", nil, "name=value binding (repeatable); name is M or H")
	cmd.Flags().IntVarP(&rounds, "rounds", "r", 0, "round count (0 = full)")
	cmd.Flags().IntVar(&addMaxArgs, "add-max-args", 3, "N-ary ripple-add batch size")
	cmd.Flags().IntVar(&xorMaxArgs, "xor-max-args", 3, "N-ary XOR batch size")
	cmd.Flags().BoolVar(&useANF, "anf", false, "encode over the ANF backend instead of CNF")
	cmd.Flags().StringVar(&optimizeArg, "optimize", "all", "optimizer mode: none, unoptimized, original, all")
	cmd.Flags().Int64Var(&seed, "seed", 1, "seed for random:N bindings")
	cmd.Flags().StringVar(&vigOut, "vig", "", "also write the variable-interaction graph (Graphviz DOT) to this path")

	return cmd
}

func newAssignCmd() *cobra.Command {
	return newBindCmd("assign", true)
}

func newDefineCmd() *cobra.Command {
	return newBindCmd("define", false)
}

// newBindCmd builds the shared assign/define subcommand: both load a DIMACS
// file and resolve -v bindings against its existing variables. assign
// requires the named array to already exist (from a prior encode/define) and
// constrains each of its bits to equal the corresponding bit of the new
// value — a constant forces an assignment, a variable reference adds an
// equivalence pair of clauses, and an unassigned ("*") bit is left alone.
// define instead (re)declares the named array outright via SetNamed, with
// no constraint added — it just relabels which formula bits a name points
// at, matching the distinction drawn in DESIGN.md.
func newBindCmd(use string, assertValues bool) *cobra.Command {
	var (
		vars        []string
		optimizeArg string
		seed        int64
	)

	cmd := &cobra.Command{
		Use:   use + " <input> <output>",
		Short: fmt.Sprintf("%s named-variable bindings in a DIMACS file", use),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bindings, err := parseVarFlags(vars)
			if err != nil {
				return err
			}
			mode, err := parseOptimizeMode(optimizeArg)
			if err != nil {
				return err
			}

			f, err := loadDIMACS(args[0])
			if err != nil {
				return err
			}

			rng := newRNG(seed)
			resolve := func(n int) (lit.ID, error) {
				if n < 0 || lit.Variable(n) >= f.VariableCount() {
					return 0, fmt.Errorf("variable reference %d out of range (0..%d)", n, f.VariableCount()-1)
				}
				return lit.FromVariable(lit.Variable(n)), nil
			}

			for _, b := range bindings {
				v, err := ParseValue(b.value, resolve)
				if err != nil {
					return fmt.Errorf("-v %s: %w", b.name, err)
				}
				bits := v.Bits
				if v.Random > 0 {
					bits = randassign.Fill(rng, v.Random)
				}

				if !assertValues {
					f.SetNamed(b.name, bits)
					continue
				}

				existing, ok := f.Named(b.name)
				if !ok {
					return fmt.Errorf("assign: %q has no existing binding in %s (use define first)", b.name, args[0])
				}
				if len(existing) != len(bits) {
					return fmt.Errorf("assign: %q has %d bits, value supplies %d", b.name, len(existing), len(bits))
				}
				if err := bindEqual(f, existing, bits); err != nil {
					return fmt.Errorf("assign: %s: %w", b.name, err)
				}
			}

			if mode != nil {
				o := optimize.New(f)
				if err := o.Run(*mode); err != nil {
					return fmt.Errorf("%s: optimize: %w", use, err)
				}
				o.Reindex()
			}

			return writeDIMACS(f, args[1])
		},
	}

	cmd.Flags().StringArrayVarP(&vars, "var", "v", nil, "name=value binding (repeatable)")
	cmd.Flags().StringVar(&optimizeArg, "optimize", "all", "optimizer mode: none, unoptimized, original, all")
	cmd.Flags().Int64Var(&seed, "seed", 1, "seed for random:N bindings")
	return cmd
}

// bindEqual constrains each pair of bits to the same value: existing[i] is
// forced to bits[i]'s constant, or made equivalent to it via two binary
// clauses when bits[i] is itself a variable reference. An unassigned bits[i]
// leaves existing[i] unconstrained.
func bindEqual(f *cnf.Formula, existing, bits []lit.ID) error {
	for i, target := range bits {
		if lit.IsUnassigned(target) {
			continue
		}
		e := existing[i]
		if lit.IsConstant(target) {
			if !f.AssertBit(e, lit.ConstValue(target)) {
				return fmt.Errorf("bit %d: conflicting constant assignment", i)
			}
			continue
		}
		if _, ok := f.AddClause(lit.Negate(e), target); !ok {
			return fmt.Errorf("bit %d: equivalence clause is tautological", i)
		}
		if _, ok := f.AddClause(e, lit.Negate(target)); !ok {
			return fmt.Errorf("bit %d: equivalence clause is tautological", i)
		}
	}
	return nil
}

func parseAlgorithm(s string) (encode.Algorithm, error) {
	switch strings.ToUpper(s) {
	case "SHA1":
		return encode.SHA1, nil
	case "SHA256":
		return encode.SHA256, nil
	default:
		return 0, fmt.Errorf("unknown algorithm %q: want SHA1 or SHA256", s)
	}
}

func parseOptimizeMode(s string) (*optimize.Mode, error) {
	switch s {
	case "none":
		return nil, nil
	case "unoptimized":
		m := optimize.Unoptimized
		return &m, nil
	case "original":
		m := optimize.Original
		return &m, nil
	case "all":
		m := optimize.All
		return &m, nil
	default:
		return nil, fmt.Errorf("unknown --optimize value %q: want none, unoptimized, original, or all", s)
	}
}

func reportDigest(res *encode.Result) {
	if res == nil || len(res.Digest) == 0 {
		return
	}
	parts := make([]string, len(res.Digest))
	for i, w := range res.Digest {
		parts[i] = fmt.Sprintf("%08x", w)
	}
	fmt.Printf("digest: %s\n", strings.Join(parts, ""))
}

func writeDIMACS(f *cnf.Formula, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := dimacs.Write(out, f, nil); err != nil {
		return err
	}
	fmt.Printf("wrote %s: %d variables, %d clauses\n", path, f.VariableCount(), f.ClausesLen())
	return nil
}

func writePolyBoRi(f *anf.Formula, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := polybori.Write(out, f); err != nil {
		return err
	}
	fmt.Printf("wrote %s: %d variables, %d equations\n", path, f.VariableCount(), f.EquationCount())
	return nil
}

func writeVIG(f *cnf.Formula, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return vig.Write(out, f)
}

func loadDIMACS(path string) (*cnf.Formula, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	pf, err := dimacs.Read(in)
	if err != nil {
		return nil, err
	}

	f := cnf.NewFormula()
	for i := 0; i < pf.VariableCount; i++ {
		f.NewVariable()
	}
	for _, clause := range pf.Clauses {
		f.AddClause(clause...)
	}
	for name, bits := range pf.Named {
		f.SetNamed(name, bits)
	}
	return f, nil
}
