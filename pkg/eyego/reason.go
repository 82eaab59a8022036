// Package eyego is the programmatic API: a synchronous
// ReasonStream(text, opts) that wires the parser, the engine, the
// dereferencer, and the printer together into a single call, so
// callers do not have to assemble the internal pieces themselves.
package eyego

import (
	"net/http"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/eyereasoner/eyego/internal/deref"
	"github.com/eyereasoner/eyego/internal/engine"
	"github.com/eyereasoner/eyego/internal/n3"
	"github.com/eyereasoner/eyego/internal/prefix"
	"github.com/eyereasoner/eyego/internal/term"
)

// Options configures one ReasonStream call.
type Options struct {
	BaseIRI             string
	Proof               bool
	EnforceHTTPS        bool
	SuperRestricted     bool
	DeterministicSkolem bool

	// IncludeInputFactsInClosure includes the program's starting facts in
	// the returned Facts/ClosureN3 alongside the derived ones.
	IncludeInputFactsInClosure bool

	// OnDerived is invoked once per derivation, in production order.
	OnDerived func(DerivedEvent)

	// HTTPClient overrides the default client used by the dereferencing
	// collaborator; nil uses a redirect-transparent default.
	HTTPClient *http.Client

	// Logger receives operational tracing from the engine and the
	// dereferencing collaborator, independent of the semantic output
	// stream. Defaults to a no-op logger.
	Logger hclog.Logger
}

// DerivedEvent is the payload delivered to Options.OnDerived.
type DerivedEvent struct {
	Triple string
	Fact   term.DerivedFact
}

// Result is ReasonStream's return value.
type Result struct {
	Prefixes  *prefix.Env
	Facts     []term.Triple
	Derived   []term.DerivedFact
	ClosureN3 string

	// Fused reports whether an inference fuse aborted the run.
	Fused bool

	// OutputString is the deterministic, subject-ordered concatenation
	// of every log:outputString object recorded during the run.
	OutputString string
}

// ReasonStream parses text and runs it to saturation, synchronously. A
// syntax error from the parser collaborator is returned as-is (it
// already carries a codepoint offset).
func ReasonStream(text string, opts Options) (*Result, error) {
	prog, err := n3.Parse(text)
	if err != nil {
		return nil, err
	}
	if opts.BaseIRI != "" {
		prog.Prefixes.SetBase(opts.BaseIRI)
	}

	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	cfg := &engine.Config{
		ProofComments:              opts.Proof,
		EnforceHTTPS:               opts.EnforceHTTPS,
		SuperRestricted:            opts.SuperRestricted,
		DeterministicSkolem:        opts.DeterministicSkolem,
		IncludeInputFactsInClosure: opts.IncludeInputFactsInClosure,
		Logger:                     logger,
	}
	dc := deref.New(opts.HTTPClient, n3.NewParser())
	dc.SetLogger(logger)
	eng := engine.New(cfg, dc)

	printer := n3.NewPrinter(prog.Prefixes)
	if opts.OnDerived != nil {
		eng.SetOnDerived(func(df term.DerivedFact) {
			opts.OnDerived(DerivedEvent{
				Triple: strings.TrimSuffix(printer.Triple(df.Fact), "\n"),
				Fact:   df,
			})
		})
	}

	startFacts := append([]term.Triple{}, prog.Facts...)
	eng.Load(prog)
	derived := eng.ForwardChain()

	facts := eng.Store().All()
	if !cfg.IncludeInputFactsInClosure {
		facts = onlyDerived(facts, startFacts)
	}

	closure := printer.Header() + printer.Triples(facts)

	return &Result{
		Prefixes:  prog.Prefixes,
		Facts:     facts,
		Derived:   derived,
		ClosureN3: closure,
		Fused:     eng.FuseTriggered(),

		OutputString: eng.OutputString(),
	}, nil
}

func onlyDerived(all, start []term.Triple) []term.Triple {
	seen := make(map[string]bool, len(start))
	for _, t := range start {
		seen[t.Key()] = true
	}
	out := make([]term.Triple, 0, len(all))
	for _, t := range all {
		if !seen[t.Key()] {
			out = append(out, t)
		}
	}
	return out
}

