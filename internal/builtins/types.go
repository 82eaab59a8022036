// Package builtins implements the fixed predicate library dispatched by
// IRI from the backward prover and forward chainer: math, string,
// list, time, crypto, and log (meta) builtins. Each builtin is a
// function of (subject, object) -- the two triple positions flanking the
// builtin's predicate IRI -- that may bind zero, one, or many extensions
// of the incoming substitution.
//
// To let list:map call back into the backward prover without an import cycle between this package and
// internal/engine, the prover is injected as a plain function value on
// Ctx rather than this package importing the engine. engine wires a
// closure over its own prover into Ctx.Prove when it constructs a run.
package builtins

import (
	"github.com/eyereasoner/eyego/internal/index"
	"github.com/eyereasoner/eyego/internal/subst"
	"github.com/eyereasoner/eyego/internal/term"
)

// Emit receives one solution substitution; it returns false to request
// the builtin stop producing further solutions (e.g. a maxResults bound
// was reached upstream).
type Emit func(*subst.Subst) bool

// ProveFunc proves a goal conjunction against the engine's current facts
// and rules, threading s, and calls emit for every solution found. It is
// how list:map (one sub-proof per element) reenters the prover; the log:*
// meta builtins match their goals against fact lists directly and do not
// call it.
type ProveFunc func(goals []term.Triple, s *subst.Subst, emit Emit)

// Func is the signature every builtin predicate implements.
type Func func(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit)

// Flags carries the subset of run configuration builtins need to see
// (super-restricted mode, enforce-HTTPS, deterministic Skolem).
type Flags struct {
	SuperRestricted     bool
	EnforceHTTPS        bool
	DeterministicSkolem bool
}

// Dereferencer is the collaborator interface for log:content /
// log:semantics / log:semanticsOrError / log:parsedAsN3. engine
// wires internal/deref.Cache into this.
type Dereferencer interface {
	// Content fetches and returns the raw text at iri (no fragment), or
	// ok=false on failure.
	Content(iri string, enforceHTTPS bool) (text string, ok bool)

	// Semantics fetches and parses iri into prefixes/triples; ok=false
	// on fetch or parse failure.
	Semantics(iri string, enforceHTTPS bool) (triples []term.Triple, ok bool)

	// ParseN3 parses a standalone N3 string (log:parsedAsN3).
	ParseN3(text string) (triples []term.Triple, ok bool)
}

// ScopedClosure is the layered scoped-closure view that
// log:includes, log:notIncludes, log:collectAllIn, and log:forAllIn
// consult when given a priority level instead of an explicit scope
// formula.
type ScopedClosure interface {
	// Level returns the current (fully stabilized) closure level.
	Level() int

	// SnapshotAtLeast returns the frozen fact snapshot for closure level
	// n, and ok=false if the run has not yet reached level n.
	SnapshotAtLeast(n int) (*index.Store, bool)
}

// Ctx bundles everything a builtin needs beyond its own two term
// arguments: the live fact store (for list:member-style existence
// checks against current facts, though most builtins are purely
// functional), the reentrant prover, process-wide flags, the
// dereferencing collaborator, rule listings for log:implies/impliedBy,
// and side-effect sinks for log:trace / log:outputString.
type Ctx struct {
	Store *index.Store
	Prove ProveFunc
	Flags Flags
	Deref Dereferencer

	Now    func() term.Term
	Skolem func(subject term.Term) term.Term

	Trace              func(msg string)
	RecordOutputString func(key term.Term, value string)

	ForwardRules  func() []*term.Rule
	BackwardRules func() []*term.Rule

	Scoped ScopedClosure

	// FreshVar mints a variable name guaranteed unused so far in this
	// run, used by log:semantics (and log:semanticsOrError) to
	// alpha-rename a dereferenced formula's variables and avoid capture.
	FreshVar func(hint string) string
}

// IsBuiltinPredicate reports whether iri is a recognized builtin
// predicate IRI, honoring super-restricted mode and the special
// case that rdf:first/rdf:rest are only list builtins when the subject
// term looks like a list (checked by the caller, not here, since this
// function only sees the IRI).
func IsBuiltinPredicate(flags Flags, iri string) bool {
	if flags.SuperRestricted {
		return iri == NSLog+"implies" || iri == NSLog+"impliedBy"
	}
	_, ok := registry[iri]
	return ok
}

// Dispatch looks up and invokes the builtin for predicate iri. It is a
// no-op (no emit calls) if iri is not a recognized builtin.
func Dispatch(ctx *Ctx, iri string, subject, object term.Term, s *subst.Subst, emit Emit) {
	if ctx.Flags.SuperRestricted {
		if iri != NSLog+"implies" && iri != NSLog+"impliedBy" {
			return
		}
	}
	fn, ok := registry[iri]
	if !ok {
		return
	}
	fn(ctx, subject, object, s, emit)
}

// Namespaces used for dispatch keys, mirrored from internal/engine so
// this package does not need to import it.
const (
	NSLog    = "http://www.w3.org/2000/10/swap/log#"
	NSMath   = "http://www.w3.org/2000/10/swap/math#"
	NSString = "http://www.w3.org/2000/10/swap/string#"
	NSList   = "http://www.w3.org/2000/10/swap/list#"
	NSTime   = "http://www.w3.org/2000/10/swap/time#"
	NSCrypto = "http://www.w3.org/2000/10/swap/crypto#"
	NSRDF    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
)
