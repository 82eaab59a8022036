// Package engine is the reasoner's top-level control flow: it owns the
// indexed fact store, the live rule lists, the Skolem caches, the
// scoped-closure ladder, and the "now" / output-string side tables, and
// wires all of it into the builtins.Ctx the builtin dispatch table and
// the backward prover share. Engine is the one object a caller touches:
// Load a parsed program, then ForwardChain it to saturation.
package engine

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/eyereasoner/eyego/internal/builtins"
	"github.com/eyereasoner/eyego/internal/index"
	"github.com/eyereasoner/eyego/internal/prefix"
	"github.com/eyereasoner/eyego/internal/subst"
	"github.com/eyereasoner/eyego/internal/term"
)

// Program is the parser's output contract: a prefix environment
// plus the toplevel triples split by kind.
type Program struct {
	Prefixes *prefix.Env
	Facts    []term.Triple
	Forward  []*term.Rule
	Backward []*term.Rule
}

// Engine runs one reasoning session over a Program.
type Engine struct {
	cfg   *Config
	store *index.Store
	rules *index.RuleSet
	sk    *skolemizer
	deref builtins.Dereferencer

	onDerived func(term.DerivedFact)
	derived   []term.DerivedFact

	freshCounter int
	nowValue     term.Term

	outputKeys   []term.Term
	outputValues map[string]string
	seenOutput   map[string]bool

	scopedLevel    int
	scopedSnapshot *index.Store

	fuse     bool
	fuseRule *term.Rule
}

// New constructs an Engine ready to load a Program.
func New(cfg *Config, deref builtins.Dereferencer) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Engine{
		cfg:          cfg,
		store:        index.New(),
		rules:        index.NewRuleSet(),
		sk:           newSkolemizer(cfg.DeterministicSkolem),
		deref:        deref,
		outputValues: make(map[string]string),
		seenOutput:   make(map[string]bool),
	}
}

// SetOnDerived installs a callback invoked in derivation order for every
// newly produced fact.
func (e *Engine) SetOnDerived(fn func(term.DerivedFact)) { e.onDerived = fn }

// Load seeds the engine with a parsed program's facts and rules.
func (e *Engine) Load(p *Program) {
	for _, f := range p.Facts {
		if f.IsGround() {
			e.store.Add(f)
		}
	}
	for _, r := range p.Forward {
		e.rules.AddForward(r)
	}
	for _, r := range p.Backward {
		e.rules.AddBackward(r)
	}
}

// Store exposes the live fact store (read-only use expected by callers
// collecting the final closure).
func (e *Engine) Store() *index.Store { return e.store }

// FuseTriggered reports whether an inference fuse fired during the
// last Run.
func (e *Engine) FuseTriggered() bool { return e.fuse }

func (e *Engine) freshVar(hint string) string {
	e.freshCounter++
	if hint == "" {
		hint = "v"
	}
	return fmt.Sprintf("%s_%d", hint, e.freshCounter)
}

func (e *Engine) builtinFlags() builtins.Flags {
	return builtins.Flags{
		SuperRestricted:     e.cfg.SuperRestricted,
		EnforceHTTPS:        e.cfg.EnforceHTTPS,
		DeterministicSkolem: e.cfg.DeterministicSkolem,
	}
}

// builtinCtx builds the Ctx the builtin dispatch table and the prover's
// reentrant calls (list:map) see. It is rebuilt
// cheaply per dispatch site since every field is either a pointer into
// Engine state or a small closure.
func (e *Engine) builtinCtx() *builtins.Ctx {
	return &builtins.Ctx{
		Store: e.store,
		Prove: e.proveFunc,
		Flags: e.builtinFlags(),
		Deref: e.deref,

		Now:    e.now,
		Skolem: e.sk.SkolemIRI,

		Trace:              e.trace,
		RecordOutputString: e.recordOutputString,

		ForwardRules:  func() []*term.Rule { return e.rules.Forward },
		BackwardRules: func() []*term.Rule { return e.rules.Backward },

		Scoped: (*scopedView)(e),

		FreshVar: e.freshVar,
	}
}

// proveFunc adapts Engine.Prove to the builtins.ProveFunc signature: a
// reentrant sub-proof defers its own builtins (the same policy
// forward-rule body solving uses) and is not subject to an external
// result bound.
func (e *Engine) proveFunc(goals []term.Triple, s *subst.Subst, emit builtins.Emit) {
	e.Prove(goals, s, ProveOpts{DeferBuiltins: true, AnswerVars: answerVarsOf(goals, s)}, emit)
}

func answerVarsOf(goals []term.Triple, s *subst.Subst) []string {
	seen := map[string]bool{}
	var out []string
	var walk func(t term.Term)
	walk = func(t term.Term) {
		t = s.Resolve(t)
		switch t.Kind() {
		case term.KindVariable:
			if !seen[t.Name()] {
				seen[t.Name()] = true
				out = append(out, t.Name())
			}
		case term.KindList, term.KindOpenList:
			for _, it := range t.Items() {
				walk(it)
			}
		case term.KindFormula:
			for _, tr := range t.Triples() {
				walk(tr.Subject)
				walk(tr.Predicate)
				walk(tr.Object)
			}
		}
	}
	for _, g := range goals {
		walk(g.Subject)
		walk(g.Predicate)
		walk(g.Object)
	}
	return out
}

func (e *Engine) now() term.Term {
	if e.nowValue.IsZero() {
		e.nowValue = builtins.NowLiteral(time.Now().UTC())
	}
	return e.nowValue
}

func (e *Engine) trace(msg string) {
	if e.cfg.ProofComments {
		fmt.Println("# trace:", msg)
	}
}

// log returns the run's operational logger, distinct from the
// semantic proof-comments trace above: this is for developers watching
// the process run, not for the N3 explanation stream.
func (e *Engine) log() hclog.Logger { return e.cfg.logger() }

func (e *Engine) recordOutputString(key term.Term, value string) {
	k := key.DedupKey()
	if !e.seenOutput[k] {
		e.seenOutput[k] = true
		e.outputKeys = append(e.outputKeys, key)
	}
	// Several strings may be recorded under one subject; they concatenate
	// in insertion order.
	e.outputValues[k] += value
}

// OutputString returns the deterministic ordering and
// concatenation of every log:outputString call recorded during the run.
func (e *Engine) OutputString() string {
	entries := append([]term.Term{}, e.outputKeys...)
	sort.SliceStable(entries, func(i, j int) bool {
		return outputKeyLess(entries[i], entries[j])
	})
	var out string
	for _, k := range entries {
		out += e.outputValues[k.DedupKey()]
	}
	return out
}

func outputKeyLess(a, b term.Term) bool {
	rank := func(t term.Term) int {
		switch {
		case t.IsLiteral():
			lex, dt, _ := term.SplitLiteral(t.Lex())
			if term.IsNumericDatatype(dt) {
				_ = lex
				return 0
			}
			return 1
		case t.IsIRI():
			return 2
		case t.IsBlank():
			return 3
		default:
			return 4
		}
	}
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra < rb
	}
	switch ra {
	case 0:
		va, _, _ := numericParts(a)
		vb, _, _ := numericParts(b)
		return va.AsFloat() < vb.AsFloat()
	case 1:
		lexA, _, _ := term.SplitLiteral(a.Lex())
		lexB, _, _ := term.SplitLiteral(b.Lex())
		return lexA < lexB
	case 2:
		return a.Lex() < b.Lex()
	case 3:
		return a.Name() < b.Name()
	default:
		return false
	}
}

func numericParts(t term.Term) (term.NumericValue, string, bool) {
	lex, dt, _ := term.SplitLiteral(t.Lex())
	if dt == "" {
		dt = term.XSDDecimal
	}
	v, ok := term.ParseNumeric(lex, dt)
	return v, dt, ok
}

// OutputStringKeys returns the distinct keys recorded via
// log:outputString, for callers assembling the -r/--strings CLI mode.
func (e *Engine) OutputStringKeys() []term.Term { return e.outputKeys }

// scopedView adapts Engine to builtins.ScopedClosure.
type scopedView Engine

func (sv *scopedView) Level() int { return sv.scopedLevel }

func (sv *scopedView) SnapshotAtLeast(n int) (*index.Store, bool) {
	if sv.scopedLevel >= n && sv.scopedSnapshot != nil {
		return sv.scopedSnapshot, true
	}
	return nil, false
}

// parsePriority parses a positive-integer literal used by the scoped
// meta builtins; ok is false for anything else.
func parsePriority(t term.Term) (int, bool) {
	if !t.IsLiteral() {
		return 0, false
	}
	lex, dt, _ := term.SplitLiteral(t.Lex())
	if dt != "" && dt != term.XSDInteger {
		return 0, false
	}
	n, err := strconv.Atoi(lex)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
