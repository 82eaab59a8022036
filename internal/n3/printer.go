package n3

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eyereasoner/eyego/internal/prefix"
	"github.com/eyereasoner/eyego/internal/term"
)

// Printer serializes terms and triples back to N3 text: the core only
// ever emits through a callback, so
// rendering lives entirely in this external collaborator, same as
// parsing does.
type Printer struct {
	env *prefix.Env
}

// NewPrinter returns a Printer that shrinks IRIs against env's declared
// namespaces where safe (internal/prefix.Env.Shrink), falling back to
// full <IRI> form otherwise.
func NewPrinter(env *prefix.Env) *Printer {
	if env == nil {
		env = prefix.New()
	}
	return &Printer{env: env}
}

// Header renders the @prefix declarations in first-declared order,
// followed by a blank line if any were written.
func (p *Printer) Header() string {
	var b strings.Builder
	for _, label := range p.env.Order() {
		ns, _ := p.env.Namespace(label)
		fmt.Fprintf(&b, "@prefix %s: <%s>.\n", label, ns)
	}
	if p.env.Base != "" {
		fmt.Fprintf(&b, "@base <%s>.\n", p.env.Base)
	}
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	return b.String()
}

// Triple renders one ground or pattern triple as a single N3 statement
// terminated with ".\n".
func (p *Printer) Triple(t term.Triple) string {
	return p.Subject(t.Subject) + " " + p.Verb(t.Predicate) + " " + p.Term(t.Object) + " .\n"
}

// Triples renders a whole fact/derivation list, one statement per line.
func (p *Printer) Triples(ts []term.Triple) string {
	var b strings.Builder
	for _, t := range ts {
		b.WriteString(p.Triple(t))
	}
	return b.String()
}

// Subject renders a term in subject position (identical to Term, kept
// distinct for symmetry with Verb's abbreviation).
func (p *Printer) Subject(t term.Term) string { return p.Term(t) }

// Verb renders a predicate position term, abbreviating rdf:type to "a"
// and owl:sameAs to "=" the way the parser's sugar expands them.
func (p *Printer) Verb(t term.Term) string {
	if t.IsIRI() {
		switch t.Lex() {
		case rdfTypeIRI.Lex():
			return "a"
		case owlSameAsIRI.Lex():
			return "="
		}
	}
	return p.Term(t)
}

// Term renders any term in N3 syntax.
func (p *Printer) Term(t term.Term) string {
	switch t.Kind() {
	case term.KindIRI:
		return p.iri(t.Lex())
	case term.KindLiteral:
		return p.literal(t)
	case term.KindVariable:
		return "?" + t.Name()
	case term.KindBlank:
		return "_:" + t.Name()
	case term.KindList:
		items := t.Items()
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = p.Term(it)
		}
		return "(" + strings.Join(parts, " ") + ")"
	case term.KindOpenList:
		items := t.Items()
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = p.Term(it)
		}
		return "(" + strings.Join(parts, " ") + " ?" + t.TailVar() + ")"
	case term.KindFormula:
		return p.formula(t.Triples())
	default:
		return "<invalid-term>"
	}
}

func (p *Printer) iri(iri string) string {
	if qname, ok := p.env.Shrink(iri); ok {
		return qname
	}
	return "<" + iri + ">"
}

func (p *Printer) literal(t term.Term) string {
	lex, dt, lang := term.SplitLiteral(t.Lex())
	if t.Lex() != "" && t.Lex()[0] != '"' {
		// Bare numeric/boolean token -- print as written.
		return t.Lex()
	}
	quoted := quoteString(lex)
	switch {
	case lang != "":
		return quoted + "@" + lang
	case dt != "" && dt != term.XSDString:
		return quoted + "^^" + p.iri(dt)
	default:
		return quoted
	}
}

// quoteString wraps an already-escaped lexical form in quotes: existing
// backslash escapes are copied unchanged, and only bare quotes and
// newlines (as a triple-quoted string may hold) are escaped.
func quoteString(lex string) string {
	if !strings.ContainsAny(lex, "\"\n") {
		return `"` + lex + `"`
	}
	var b strings.Builder
	for i := 0; i < len(lex); i++ {
		switch c := lex[i]; {
		case c == '\\' && i+1 < len(lex):
			b.WriteByte(c)
			i++
			b.WriteByte(lex[i])
		case c == '"':
			b.WriteString(`\"`)
		case c == '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
	return `"` + b.String() + `"`
}

// formula renders a quoted graph as one line per triple, sorted
// for deterministic output (the Formula term's own triple order is
// insertion order, which is not guaranteed stable across equivalent
// derivations).
func (p *Printer) formula(triples []term.Triple) string {
	if len(triples) == 0 {
		return "{}"
	}
	lines := make([]string, len(triples))
	for i, t := range triples {
		lines[i] = strings.TrimSuffix(p.Triple(t), "\n")
	}
	sort.Strings(lines)
	return "{ " + strings.Join(lines, " ") + " }"
}
