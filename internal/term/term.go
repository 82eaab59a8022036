// Package term defines the sum-type data model for the reasoner: IRIs,
// literals, variables, blanks, lists, open lists, and quoted formulas, plus
// the Triple and Rule shapes built from them.
//
// Terms are immutable once constructed. IRIs and Literals are interned by
// their lexical key so that pointer equality implies structural
// equality.
package term

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies which variant of the Term sum type a value holds.
type Kind int

const (
	KindIRI Kind = iota
	KindLiteral
	KindVariable
	KindBlank
	KindList
	KindOpenList
	KindFormula
)

func (k Kind) String() string {
	switch k {
	case KindIRI:
		return "IRI"
	case KindLiteral:
		return "Literal"
	case KindVariable:
		return "Variable"
	case KindBlank:
		return "Blank"
	case KindList:
		return "List"
	case KindOpenList:
		return "OpenList"
	case KindFormula:
		return "Formula"
	default:
		return "Unknown"
	}
}

// Term is any value in the term universe: IRI, Literal, Variable, Blank,
// List, OpenList, or Formula. The zero value is not valid; use the
// constructors below.
type Term struct {
	kind Kind

	// IRI / Literal: interned lexical value.
	lex string

	// Variable: name without the leading '?'.
	// Blank: label, e.g. "b7" (without the leading "_:").
	name string

	// List / OpenList: element terms.
	items []Term

	// OpenList: name of the tail variable.
	tailVar string

	// Formula: ordered triple set (insertion order preserved; unification
	// treats it as a multiset).
	triples []Triple
}

// Triple is a (subject, predicate, object) fact or rule-body statement.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// String renders a triple in a debug-friendly "s p o" form. Production N3
// serialization is the printer package's job; this is for logs and tests.
func (t Triple) String() string {
	return fmt.Sprintf("%s %s %s", t.Subject, t.Predicate, t.Object)
}

// Key returns the canonical dedup key for a ground triple:
// plain strings and xsd:string literals normalize to the same key, but
// distinct blank labels remain distinct.
func (t Triple) Key() string {
	return t.Subject.DedupKey() + "\x00" + t.Predicate.DedupKey() + "\x00" + t.Object.DedupKey()
}

// IsGround reports whether a triple contains no Variable term, including
// variables nested inside lists and quoted formulas (see Term.IsGround).
func (t Triple) IsGround() bool {
	return t.Subject.IsGround() && t.Predicate.IsGround() && t.Object.IsGround()
}

var internIRI = newInternTable()
var internLit = newInternTable()

// NewIRI constructs an interned IRI term from an absolute IRI string.
func NewIRI(iri string) Term {
	return Term{kind: KindIRI, lex: internIRI.intern(iri)}
}

// NewLiteral constructs an interned Literal term from its raw N3 lexical
// form, including any "@lang" or "^^<dt>" suffix (see SplitLiteral in
// literal.go for parsing helpers).
func NewLiteral(raw string) Term {
	return Term{kind: KindLiteral, lex: internLit.intern(raw)}
}

// NewVariable constructs a rule-local universal variable by name (no
// leading '?').
func NewVariable(name string) Term {
	return Term{kind: KindVariable, name: name}
}

// NewBlank constructs a blank node by label (no leading "_:").
func NewBlank(label string) Term {
	return Term{kind: KindBlank, name: label}
}

// NewList constructs a closed list term.
func NewList(items ...Term) Term {
	cp := make([]Term, len(items))
	copy(cp, items)
	return Term{kind: KindList, items: cp}
}

// NewOpenList constructs a partial list pattern (prefix | tailVar), used
// only inside rule patterns.
func NewOpenList(prefix []Term, tailVar string) Term {
	cp := make([]Term, len(prefix))
	copy(cp, prefix)
	return Term{kind: KindOpenList, items: cp, tailVar: tailVar}
}

// NewFormula constructs a quoted-graph term from an ordered triple
// sequence.
func NewFormula(triples ...Triple) Term {
	cp := make([]Triple, len(triples))
	copy(cp, triples)
	return Term{kind: KindFormula, triples: cp}
}

// Kind returns which variant of the sum type the term holds.
func (t Term) Kind() Kind { return t.kind }

func (t Term) IsIRI() bool      { return t.kind == KindIRI }
func (t Term) IsLiteral() bool  { return t.kind == KindLiteral }
func (t Term) IsVariable() bool { return t.kind == KindVariable }
func (t Term) IsBlank() bool    { return t.kind == KindBlank }
func (t Term) IsList() bool     { return t.kind == KindList }
func (t Term) IsOpenList() bool { return t.kind == KindOpenList }
func (t Term) IsFormula() bool  { return t.kind == KindFormula }

// IsZero reports whether t is the zero Term value (no variant set).
func (t Term) IsZero() bool { return t.kind == KindIRI && t.lex == "" && t.name == "" }

// Lex returns the raw lexical form for an IRI or Literal term.
func (t Term) Lex() string { return t.lex }

// Name returns the variable name or blank label.
func (t Term) Name() string { return t.name }

// Items returns the element terms of a List or OpenList.
func (t Term) Items() []Term { return t.items }

// TailVar returns the tail variable name of an OpenList.
func (t Term) TailVar() string { return t.tailVar }

// Triples returns the triple sequence of a Formula.
func (t Term) Triples() []Triple { return t.triples }

// IsGround reports whether the term contains no Variable (recursively
// through lists and formulas; formula-local variables inside a quoted
// graph do not make the quoting term itself non-ground at the top level
// of fact storage -- but for the purposes of the
// prover and indexing we do treat any variable occurrence as non-ground,
// matching the "no free variables" contract for stored facts).
func (t Term) IsGround() bool {
	switch t.kind {
	case KindVariable:
		return false
	case KindOpenList:
		return false
	case KindList:
		for _, it := range t.items {
			if !it.IsGround() {
				return false
			}
		}
		return true
	case KindFormula:
		for _, tr := range t.triples {
			if !tr.IsGround() {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// DedupKey returns the canonical string used by the fact-set dedup index
// set. Numeric-value dedup is deliberately NOT applied here
// (e.g. "1"^^xsd:integer and "1.0"^^xsd:decimal get distinct keys); only
// the plain-string/xsd:string normalization is
// folded in, since that is a lexical identity, not a value computation.
func (t Term) DedupKey() string {
	switch t.kind {
	case KindIRI:
		return "I:" + t.lex
	case KindLiteral:
		lex, dt, lang := SplitLiteral(t.lex)
		if lang != "" {
			return "L@" + lang + ":" + lex
		}
		if dt == "" || dt == XSDString {
			return "L:" + lex
		}
		return "L^" + dt + ":" + lex
	case KindVariable:
		return "V:" + t.name
	case KindBlank:
		return "B:" + t.name
	case KindList:
		parts := make([]string, len(t.items))
		for i, it := range t.items {
			parts[i] = it.DedupKey()
		}
		return "(" + strings.Join(parts, ",") + ")"
	case KindOpenList:
		parts := make([]string, len(t.items))
		for i, it := range t.items {
			parts[i] = it.DedupKey()
		}
		return "(" + strings.Join(parts, ",") + "|" + t.tailVar + ")"
	case KindFormula:
		parts := make([]string, len(t.triples))
		for i, tr := range t.triples {
			parts[i] = tr.Key()
		}
		sort.Strings(parts)
		return "{" + strings.Join(parts, ";") + "}"
	default:
		return "?"
	}
}

// String renders the term in a debug-friendly (non-normative) N3-ish
// syntax. The printer package owns production serialization.
func (t Term) String() string {
	switch t.kind {
	case KindIRI:
		return "<" + t.lex + ">"
	case KindLiteral:
		return t.lex
	case KindVariable:
		return "?" + t.name
	case KindBlank:
		return "_:" + t.name
	case KindList:
		parts := make([]string, len(t.items))
		for i, it := range t.items {
			parts[i] = it.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	case KindOpenList:
		parts := make([]string, len(t.items))
		for i, it := range t.items {
			parts[i] = it.String()
		}
		return "(" + strings.Join(parts, " ") + " | ?" + t.tailVar + ")"
	case KindFormula:
		parts := make([]string, len(t.triples))
		for i, tr := range t.triples {
			parts[i] = tr.String()
		}
		return "{" + strings.Join(parts, " . ") + "}"
	default:
		return "<invalid-term>"
	}
}

// Equal is strict structural equality -- NOT unification. Two Literals
// compare equal only when their raw lexical forms are interned to the
// same key; use the unifier for value-level equivalences.
func (t Term) Equal(o Term) bool {
	if t.kind != o.kind {
		return false
	}
	switch t.kind {
	case KindIRI, KindLiteral:
		return t.lex == o.lex
	case KindVariable, KindBlank:
		return t.name == o.name
	case KindList:
		if len(t.items) != len(o.items) {
			return false
		}
		for i := range t.items {
			if !t.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindOpenList:
		if t.tailVar != o.tailVar || len(t.items) != len(o.items) {
			return false
		}
		for i := range t.items {
			if !t.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindFormula:
		if len(t.triples) != len(o.triples) {
			return false
		}
		for i := range t.triples {
			a, b := t.triples[i], o.triples[i]
			if !a.Subject.Equal(b.Subject) || !a.Predicate.Equal(b.Predicate) || !a.Object.Equal(b.Object) {
				return false
			}
		}
		return true
	}
	return false
}
