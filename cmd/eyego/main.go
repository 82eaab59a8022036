// Command eyego is the CLI frontend: it reads an N3 document,
// reasons it to a fixpoint through the pkg/eyego programmatic API, and
// prints the result in one of the CLI's output modes. Flags are parsed
// with a flat pflag.FlagSet rather than the standard library's flag
// package, which cannot expand GNU-style combined short flags (-pt).
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	"github.com/eyereasoner/eyego/internal/n3"
	"github.com/eyereasoner/eyego/internal/term"
	"github.com/eyereasoner/eyego/pkg/eyego"
)

const version = "eyego 0.1.0"

const (
	exitOK    = 0
	exitUsage = 1
	exitFuse  = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("eyego", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		ast                 = fs.BoolP("ast", "a", false, "print the parse result as JSON and exit")
		deterministicSkolem = fs.BoolP("deterministic-skolem", "d", false, "skip the per-run salt; Skolem IDs depend only on the subject term")
		enforceHTTPS        = fs.BoolP("enforce-https", "e", false, "rewrite http:// to https:// before dereferencing")
		proofComments       = fs.BoolP("proof-comments", "p", false, "emit a human-readable explanation before each derived triple")
		outputStrings       = fs.BoolP("strings", "r", false, "print the concatenation of log:outputString objects instead of N3")
		superRestricted     = fs.BoolP("super-restricted", "s", false, "disable every builtin except log:implies/log:impliedBy")
		stream              = fs.BoolP("stream", "t", false, "stream derived triples as they are produced")
		showVersion         = fs.BoolP("version", "v", false, "print the version and exit")
		showHelp            = fs.BoolP("help", "h", false, "show this help message and exit")
		baseIRI             = fs.String("base", "", "base IRI for relative-IRI resolution")
	)

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *showHelp {
		fs.PrintDefaults()
		return exitOK
	}
	if *showVersion {
		fmt.Fprintln(stdout, version)
		return exitOK
	}

	paths := fs.Args()
	text, err := readInputs(paths)
	if err != nil {
		fmt.Fprintln(stderr, "eyego:", err)
		return exitUsage
	}

	if *ast {
		return runAST(text, stdout, stderr)
	}

	opts := eyego.Options{
		BaseIRI:             *baseIRI,
		Proof:               *proofComments,
		EnforceHTTPS:        *enforceHTTPS,
		SuperRestricted:     *superRestricted,
		DeterministicSkolem: *deterministicSkolem,
		Logger:              newCLILogger(stderr),
	}
	if *stream {
		if preview, err := n3.Parse(text); err == nil {
			printer := n3.NewPrinter(preview.Prefixes)
			fmt.Fprint(stdout, printer.Header())
			opts.OnDerived = func(ev eyego.DerivedEvent) {
				if *proofComments {
					fmt.Fprint(stdout, proofComment(printer, ev.Fact))
				}
				fmt.Fprintln(stdout, ev.Triple)
			}
		}
	}

	result, err := eyego.ReasonStream(text, opts)
	if err != nil {
		if se, ok := err.(*n3.SyntaxError); ok {
			fmt.Fprintf(stderr, "eyego: syntax error at offset %d: %s\n", se.Offset, se.Message)
		} else {
			fmt.Fprintln(stderr, "eyego:", err)
		}
		return exitUsage
	}

	switch {
	case *stream:
		// Triples were already printed incrementally via OnDerived.
	case *outputStrings:
		fmt.Fprint(stdout, result.OutputString)
	case *proofComments:
		printer := n3.NewPrinter(result.Prefixes)
		fmt.Fprint(stdout, printer.Header())
		for _, df := range result.Derived {
			fmt.Fprint(stdout, proofComment(printer, df))
			fmt.Fprint(stdout, printer.Triple(df.Fact))
		}
	default:
		fmt.Fprint(stdout, result.ClosureN3)
	}

	if result.Fused {
		fmt.Fprintln(stderr, "eyego: inference fuse triggered")
		return exitFuse
	}
	return exitOK
}

// proofComment renders the explanation block printed before a derived
// triple: the firing rule and the instantiated premises it fired on,
// each line an N3 comment so the surrounding output stays parseable.
func proofComment(p *n3.Printer, df term.DerivedFact) string {
	var b strings.Builder
	if df.Rule != nil {
		premise := term.NewFormula(df.Rule.Premise...)
		conclusion := term.NewFormula(df.Rule.Conclusion...)
		fmt.Fprintf(&b, "# derived with %s => %s\n", p.Term(premise), p.Term(conclusion))
	}
	for _, tr := range df.InstantiatedBody {
		fmt.Fprintf(&b, "#   from %s\n", strings.TrimSuffix(p.Triple(tr), "\n"))
	}
	return b.String()
}

// newCLILogger builds the operational logger: an hclog.Default()
// -shaped leveled logger whose level is controlled by EYEGO_LOG_LEVEL
// rather than hclog's own LOG_LEVEL convention, writing to stderr so it
// never interleaves with the N3/-strings output on stdout, with
// AutoColor so a TTY stderr gets colorized level output.
func newCLILogger(stderr io.Writer) hclog.Logger {
	level := hclog.LevelFromString(os.Getenv("EYEGO_LOG_LEVEL"))
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "eyego",
		Level:  level,
		Output: stderr,
		Color:  hclog.AutoColor,
	})
}

func readInputs(paths []string) (string, error) {
	if len(paths) == 0 {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), nil
	}
	var combined []byte
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", p, err)
		}
		combined = append(combined, b...)
		combined = append(combined, '\n')
	}
	return string(combined), nil
}

// astNode is the JSON shape -a/--ast prints: a flat listing of facts and
// rules rendered through the debug Term.String() form.
type astNode struct {
	Prefixes map[string]string `json:"prefixes"`
	Base     string            `json:"base,omitempty"`
	Facts    []string          `json:"facts"`
	Forward  []ruleNode        `json:"forwardRules"`
	Backward []ruleNode        `json:"backwardRules"`
}

type ruleNode struct {
	Premise    []string `json:"premise"`
	Conclusion []string `json:"conclusion"`
}

func runAST(text string, stdout, stderr io.Writer) int {
	prog, err := n3.Parse(text)
	if err != nil {
		if se, ok := err.(*n3.SyntaxError); ok {
			fmt.Fprintf(stderr, "eyego: syntax error at offset %d: %s\n", se.Offset, se.Message)
		} else {
			fmt.Fprintln(stderr, "eyego:", err)
		}
		return exitUsage
	}

	out := astNode{Prefixes: map[string]string{}, Base: prog.Prefixes.Base}
	for _, label := range prog.Prefixes.Order() {
		ns, _ := prog.Prefixes.Namespace(label)
		out.Prefixes[label] = ns
	}
	for _, t := range prog.Facts {
		out.Facts = append(out.Facts, t.String())
	}
	for _, r := range prog.Forward {
		out.Forward = append(out.Forward, ruleNode{Premise: triplesToStrings(r.Premise), Conclusion: triplesToStrings(r.Conclusion)})
	}
	for _, r := range prog.Backward {
		out.Backward = append(out.Backward, ruleNode{Premise: triplesToStrings(r.Premise), Conclusion: triplesToStrings(r.Conclusion)})
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(stderr, "eyego:", err)
		return exitUsage
	}
	return exitOK
}

func triplesToStrings(ts []term.Triple) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.String()
	}
	return out
}
