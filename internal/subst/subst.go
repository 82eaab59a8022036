// Package subst implements variable substitution and the term unifier:
// numeric- and string-datatype equivalence, quoted-formula
// α-equivalence, open-list matching, and substitution compaction ("GC")
// for deep proof chains.
//
// A Subst is a copy-on-write map plus a Walk that follows binding
// chains. Terms are immutable value types (package term) rather than
// pointer-identity variables, so bindings are keyed by variable name
// instead of a numeric
// var id; standardizing a rule apart (Rename) is what keeps identically
// named variables from different rule firings from colliding.
package subst

import (
	"sync/atomic"

	"github.com/eyereasoner/eyego/internal/term"
)

// Subst maps variable names to the terms they are bound to. The zero
// value is a valid empty substitution.
type Subst struct {
	bindings map[string]term.Term
}

// Empty returns a new empty substitution.
func Empty() *Subst {
	return &Subst{bindings: nil}
}

// Lookup returns the term bound to variable name v, and whether it is
// bound at all.
func (s *Subst) Lookup(v string) (term.Term, bool) {
	if s == nil || s.bindings == nil {
		return term.Term{}, false
	}
	t, ok := s.bindings[v]
	return t, ok
}

// Bind returns a new substitution extending s with v := t. The receiver
// is left unmodified.
func (s *Subst) Bind(v string, t term.Term) *Subst {
	next := make(map[string]term.Term, len(s.bindingsOrEmpty())+1)
	for k, val := range s.bindingsOrEmpty() {
		next[k] = val
	}
	next[v] = t
	return &Subst{bindings: next}
}

func (s *Subst) bindingsOrEmpty() map[string]term.Term {
	if s == nil {
		return nil
	}
	return s.bindings
}

// Len reports the number of bindings.
func (s *Subst) Len() int {
	return len(s.bindingsOrEmpty())
}

// Walk follows variable bindings in s until it reaches an unbound
// variable or a non-variable term. It does not recurse into list
// or formula structure -- callers needing a fully resolved term should
// use Resolve.
func (s *Subst) Walk(t term.Term) term.Term {
	for t.IsVariable() {
		bound, ok := s.Lookup(t.Name())
		if !ok {
			return t
		}
		t = bound
	}
	return t
}

// Resolve walks t and then recursively substitutes inside lists, open
// lists, and formulas, producing a term with every reachable variable
// replaced by its current binding (or left as-is if unbound).
func (s *Subst) Resolve(t term.Term) term.Term {
	t = s.Walk(t)
	switch t.Kind() {
	case term.KindList:
		items := t.Items()
		out := make([]term.Term, len(items))
		for i, it := range items {
			out[i] = s.Resolve(it)
		}
		return term.NewList(out...)
	case term.KindOpenList:
		items := t.Items()
		out := make([]term.Term, len(items))
		for i, it := range items {
			out[i] = s.Resolve(it)
		}
		tail := s.Walk(term.NewVariable(t.TailVar()))
		if tail.IsVariable() {
			return term.NewOpenList(out, tail.Name())
		}
		if tail.IsList() {
			out = append(out, s.resolveAll(tail.Items())...)
			return term.NewList(out...)
		}
		return term.NewOpenList(out, t.TailVar())
	case term.KindFormula:
		trs := t.Triples()
		out := make([]term.Triple, len(trs))
		for i, tr := range trs {
			out[i] = term.Triple{
				Subject:   s.Resolve(tr.Subject),
				Predicate: s.Resolve(tr.Predicate),
				Object:    s.Resolve(tr.Object),
			}
		}
		return term.NewFormula(out...)
	default:
		return t
	}
}

func (s *Subst) resolveAll(ts []term.Term) []term.Term {
	out := make([]term.Term, len(ts))
	for i, t := range ts {
		out[i] = s.Resolve(t)
	}
	return out
}

// ResolveTriple resolves every position of a triple.
func (s *Subst) ResolveTriple(t term.Triple) term.Triple {
	return term.Triple{
		Subject:   s.Resolve(t.Subject),
		Predicate: s.Resolve(t.Predicate),
		Object:    s.Resolve(t.Object),
	}
}

// ResolveTriples resolves a whole triple slice.
func (s *Subst) ResolveTriples(ts []term.Triple) []term.Triple {
	out := make([]term.Triple, len(ts))
	for i, t := range ts {
		out[i] = s.ResolveTriple(t)
	}
	return out
}

// --- Substitution GC ---

// Compact returns a new substitution containing only bindings reachable
// from the given root variable names, following binding chains
// transitively. This keeps deep backward-chaining proofs from carrying an
// ever-growing substitution map: every Bind clones the whole map, so
// pruning at the prover's GC points is what keeps deep chains linear.
func (s *Subst) Compact(roots []string) *Subst {
	keep := make(map[string]bool)
	var visit func(v string)
	visit = func(v string) {
		if keep[v] {
			return
		}
		keep[v] = true
		t, ok := s.Lookup(v)
		if !ok {
			return
		}
		for _, w := range varsIn(t) {
			visit(w)
		}
	}
	for _, r := range roots {
		visit(r)
	}
	next := make(map[string]term.Term, len(keep))
	for k := range keep {
		if t, ok := s.Lookup(k); ok {
			next[k] = t
		}
	}
	return &Subst{bindings: next}
}

func varsIn(t term.Term) []string {
	switch t.Kind() {
	case term.KindVariable:
		return []string{t.Name()}
	case term.KindList:
		var out []string
		for _, it := range t.Items() {
			out = append(out, varsIn(it)...)
		}
		return out
	case term.KindOpenList:
		out := []string{t.TailVar()}
		for _, it := range t.Items() {
			out = append(out, varsIn(it)...)
		}
		return out
	case term.KindFormula:
		var out []string
		for _, tr := range t.Triples() {
			out = append(out, varsIn(tr.Subject)...)
			out = append(out, varsIn(tr.Predicate)...)
			out = append(out, varsIn(tr.Object)...)
		}
		return out
	default:
		return nil
	}
}

// --- Standardizing apart (rule freshening) ---

var freshCounter int64

// NextFreshSuffix returns a process-wide monotonically increasing integer
// used to mint fresh variable/blank names when standardizing a rule apart
// before each use.
func NextFreshSuffix() int64 {
	return atomic.AddInt64(&freshCounter, 1)
}

// Rename returns a copy of t with every Variable renamed according to
// mapping (creating entries for variables not yet seen, via the fresh
// callback), leaving Blank labels and all other term kinds untouched.
// Used to standardize rule variables apart and to freshen formula
// variables for log:semantics.
func Rename(t term.Term, mapping map[string]string, fresh func(string) string) term.Term {
	switch t.Kind() {
	case term.KindVariable:
		if mapped, ok := mapping[t.Name()]; ok {
			return term.NewVariable(mapped)
		}
		mapped := fresh(t.Name())
		mapping[t.Name()] = mapped
		return term.NewVariable(mapped)
	case term.KindList:
		items := t.Items()
		out := make([]term.Term, len(items))
		for i, it := range items {
			out[i] = Rename(it, mapping, fresh)
		}
		return term.NewList(out...)
	case term.KindOpenList:
		items := t.Items()
		out := make([]term.Term, len(items))
		for i, it := range items {
			out[i] = Rename(it, mapping, fresh)
		}
		tailMapped, ok := mapping[t.TailVar()]
		if !ok {
			tailMapped = fresh(t.TailVar())
			mapping[t.TailVar()] = tailMapped
		}
		return term.NewOpenList(out, tailMapped)
	case term.KindFormula:
		trs := t.Triples()
		out := make([]term.Triple, len(trs))
		for i, tr := range trs {
			out[i] = term.Triple{
				Subject:   Rename(tr.Subject, mapping, fresh),
				Predicate: Rename(tr.Predicate, mapping, fresh),
				Object:    Rename(tr.Object, mapping, fresh),
			}
		}
		return term.NewFormula(out...)
	default:
		return t
	}
}

// RenameTriples standardizes a whole triple slice apart using one shared
// mapping, so that the same source variable maps to the same fresh name
// across the rule's premise and conclusion.
func RenameTriples(ts []term.Triple, mapping map[string]string, fresh func(string) string) []term.Triple {
	out := make([]term.Triple, len(ts))
	for i, t := range ts {
		out[i] = term.Triple{
			Subject:   Rename(t.Subject, mapping, fresh),
			Predicate: Rename(t.Predicate, mapping, fresh),
			Object:    Rename(t.Object, mapping, fresh),
		}
	}
	return out
}
