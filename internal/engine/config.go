// Package engine wires together the indexed fact store, the unifier,
// the backward prover, the builtin dispatch table, and the forward
// chainer into the reasoner's top-level control flow. It accretes facts
// and rules into append-only lists, and the prover is a plain
// synchronous iterative DFS: the core is single-threaded and
// suspension-free, so nothing here uses goroutines or channels.
package engine

import (
	"github.com/hashicorp/go-hclog"

	"github.com/eyereasoner/eyego/internal/term"
)

// Config holds the process-wide run configuration. A Config is created
// before a run and discarded after; it carries no per-run caches itself
// (those live on Engine, see skolem.go).
type Config struct {
	// DeterministicSkolem skips the per-run salt so Skolem IDs depend
	// only on the subject term.
	DeterministicSkolem bool

	// ProofComments requests a human-readable explanation before each
	// derived triple.
	ProofComments bool

	// SuperRestricted disables every builtin except log:implies and
	// log:impliedBy.
	SuperRestricted bool

	// EnforceHTTPS rewrites http:// to https:// before dereferencing.
	EnforceHTTPS bool

	// IncludeInputFactsInClosure includes the facts the program started
	// with in the returned closure snapshot in addition to the derived
	// ones.
	IncludeInputFactsInClosure bool

	// MaxResults optionally bounds the backward prover. Zero means
	// unbounded.
	MaxResults int

	// Logger receives operational tracing (phase transitions, rule
	// installation, fuse firings, dereference attempts) independent of
	// the semantic output stream. Defaults to a no-op logger.
	Logger hclog.Logger
}

// DefaultConfig returns the zero-value configuration (all flags off,
// unbounded results, logging disabled).
func DefaultConfig() *Config {
	return &Config{Logger: hclog.NewNullLogger()}
}

// logger returns cfg.Logger, falling back to a no-op logger when the
// caller left it unset.
func (cfg *Config) logger() hclog.Logger {
	if cfg == nil || cfg.Logger == nil {
		return hclog.NewNullLogger()
	}
	return cfg.Logger
}

// Namespaces the core must recognize without relying on the caller's
// prefix declarations, since builtins are dispatched by absolute
// predicate IRI.
const (
	NSLog    = "http://www.w3.org/2000/10/swap/log#"
	NSMath   = "http://www.w3.org/2000/10/swap/math#"
	NSString = "http://www.w3.org/2000/10/swap/string#"
	NSList   = "http://www.w3.org/2000/10/swap/list#"
	NSTime   = "http://www.w3.org/2000/10/swap/time#"
	NSCrypto = "http://www.w3.org/2000/10/swap/crypto#"
	NSRDF    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	NSOWL    = "http://www.w3.org/2002/07/owl#"
)

var (
	rdfFirst = term.NewIRI(NSRDF + "first")
	rdfRest  = term.NewIRI(NSRDF + "rest")
	rdfNil   = term.NewIRI(NSRDF + "nil")
	rdfType  = term.NewIRI(NSRDF + "type")
	owlSame  = term.NewIRI(NSOWL + "sameAs")

	logImplies   = term.NewIRI(NSLog + "implies")
	logImpliedBy = term.NewIRI(NSLog + "impliedBy")
)
