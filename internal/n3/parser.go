// Recursive-descent parser over the lexer's token stream, producing an
// engine.Program: a prefix environment, toplevel facts, and the
// forward/backward rule lists. Grammar shape follows Turtle/N3
// convention (subject predicateObjectList '.', blank-node property
// lists, collections, quoted formulas), built directly on the sum-type
// term model. The N3-specific abbreviation sugar -- "has", "is P of",
// "<-" predicate inversion, "!"/"^" path operators, and "id <iri>"
// blank identity -- all desugars here into the same plain-triple sink
// every other production writes into, rather than being modeled as
// distinct term shapes downstream.
package n3

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/eyereasoner/eyego/internal/engine"
	"github.com/eyereasoner/eyego/internal/prefix"
	"github.com/eyereasoner/eyego/internal/term"
)

var (
	rdfTypeIRI      = term.NewIRI(engine.NSRDF + "type")
	owlSameAsIRI    = term.NewIRI(engine.NSOWL + "sameAs")
	logImpliesIRI   = term.NewIRI(engine.NSLog + "implies")
	logImpliedByIRI = term.NewIRI(engine.NSLog + "impliedBy")
)

type parser struct {
	lex        *lexer
	env        *prefix.Env
	peeked     *token
	anonCount  int
}

// Parser adapts the package-level Parse function to the deref.N3Parser
// collaborator interface (a single Parse method), so a
// *Parser value can be handed directly to deref.New.
type Parser struct{}

// NewParser returns a stateless Parser usable as the dereferencer's
// collaborator (each call to Parse starts a fresh parser state).
func NewParser() *Parser { return &Parser{} }

func (*Parser) Parse(text string) ([]term.Triple, error) {
	prog, err := Parse(text)
	if err != nil {
		return nil, err
	}
	// A dereferenced document's rules surface as log:implies /
	// log:impliedBy triples in the resulting formula, so a consumer of
	// log:semantics sees the whole document, not just its ground facts.
	triples := append([]term.Triple{}, prog.Facts...)
	for _, r := range prog.Forward {
		triples = append(triples, term.Triple{
			Subject:   term.NewFormula(r.Premise...),
			Predicate: logImpliesIRI,
			Object:    term.NewFormula(r.Conclusion...),
		})
	}
	for _, r := range prog.Backward {
		triples = append(triples, term.Triple{
			Subject:   term.NewFormula(r.Conclusion...),
			Predicate: logImpliedByIRI,
			Object:    term.NewFormula(r.Premise...),
		})
	}
	return triples, nil
}

// Parse parses a complete N3 document into a Program ready for
// engine.Engine.Load.
func Parse(src string) (*engine.Program, error) {
	p := &parser{lex: newLexer(src), env: prefix.New()}
	prog := &engine.Program{Prefixes: p.env}

	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokEOF {
			return prog, nil
		}
		if tok.kind == tokAt {
			p.advance()
			if err := p.parseAtDirective(); err != nil {
				return nil, err
			}
			continue
		}
		if tok.kind == tokDirective {
			if err := p.parseSparqlDirective(); err != nil {
				return nil, err
			}
			continue
		}

		var sink []term.Triple
		if err := p.parseStatementBody(&sink, true); err != nil {
			return nil, err
		}
		if err := p.expect(tokDot); err != nil {
			return nil, err
		}

		if rule, ok := asRule(sink); ok {
			if rule.Direction == term.Forward {
				prog.Forward = append(prog.Forward, rule)
			} else {
				prog.Backward = append(prog.Backward, rule)
			}
			continue
		}
		prog.Facts = append(prog.Facts, sink...)
	}
}

// --- directives ---

func (p *parser) parseAtDirective() error {
	tok, err := p.advance()
	if err != nil {
		return err
	}
	if tok.kind != tokIdentifier && tok.kind != tokDirective {
		return p.errorf(tok, "expected 'prefix' or 'base' after '@'")
	}
	switch strings.ToLower(tok.text) {
	case "prefix":
		if err := p.parsePrefixDecl(); err != nil {
			return err
		}
	case "base":
		if err := p.parseBaseDecl(); err != nil {
			return err
		}
	default:
		return p.errorf(tok, "unknown directive @%s", tok.text)
	}
	return p.expect(tokDot)
}

// parseSparqlDirective handles the bare (no '@', no trailing '.') SPARQL
// PREFIX/BASE forms N3 also accepts.
func (p *parser) parseSparqlDirective() error {
	tok, err := p.advance()
	if err != nil {
		return err
	}
	switch strings.ToLower(tok.text) {
	case "prefix":
		return p.parsePrefixDeclNoDot()
	case "base":
		return p.parseBaseDeclNoDot()
	default:
		return p.errorf(tok, "unknown directive %s", tok.text)
	}
}

func (p *parser) parsePrefixDecl() error {
	label, ns, err := p.readPrefixPair()
	if err != nil {
		return err
	}
	p.env.Declare(label, ns)
	return nil
}

func (p *parser) parsePrefixDeclNoDot() error {
	return p.parsePrefixDecl()
}

func (p *parser) parseBaseDecl() error {
	iri, err := p.readIRIRefToken()
	if err != nil {
		return err
	}
	p.env.SetBase(iri)
	return nil
}

func (p *parser) parseBaseDeclNoDot() error {
	return p.parseBaseDecl()
}

func (p *parser) readPrefixPair() (label, ns string, err error) {
	tok, err := p.advance()
	if err != nil {
		return "", "", err
	}
	if tok.kind != tokPName && tok.kind != tokIdentifier {
		return "", "", p.errorf(tok, "expected prefix label")
	}
	label = strings.TrimSuffix(tok.text, ":")
	ns, err = p.readIRIRefToken()
	return label, ns, err
}

func (p *parser) readIRIRefToken() (string, error) {
	tok, err := p.advance()
	if err != nil {
		return "", err
	}
	if tok.kind != tokIRIRef {
		return "", p.errorf(tok, "expected IRI reference")
	}
	return p.env.ResolveRelative(tok.text), nil
}

// --- statements ---

// parseStatementBody parses "subject predicateObjectList?" (the trailing
// '.' is the caller's job) appending every produced triple -- including
// side effects from blank-node property lists and nested formulas -- to
// *sink. topLevel is passed through so nested formula contents never get
// mistaken for rule sugar (only whole toplevel statements do).
func (p *parser) parseStatementBody(sink *[]term.Triple, topLevel bool) error {
	subj, err := p.parseTerm(sink)
	if err != nil {
		return err
	}
	tok, err := p.peek()
	if err != nil {
		return err
	}
	if tok.kind == tokDot || tok.kind == tokRBrace {
		return nil // subject-only statement, e.g. "[ a :Foo ] ."
	}
	return p.parsePredicateObjectList(subj, sink)
}

func (p *parser) parsePredicateObjectList(subj term.Term, sink *[]term.Triple) error {
	for {
		verb, inverted, err := p.parseVerb(sink)
		if err != nil {
			return err
		}
		if err := p.parseObjectList(subj, verb, inverted, sink); err != nil {
			return err
		}
		tok, err := p.peek()
		if err != nil {
			return err
		}
		if tok.kind != tokSemicolon {
			return nil
		}
		p.advance()
		tok2, err := p.peek()
		if err != nil {
			return err
		}
		if tok2.kind == tokDot || tok2.kind == tokRBrace {
			return nil // trailing ';' before the terminator
		}
	}
}

func (p *parser) parseObjectList(subj, verb term.Term, inverted bool, sink *[]term.Triple) error {
	for {
		obj, err := p.parseTerm(sink)
		if err != nil {
			return err
		}
		tr := term.Triple{Subject: subj, Predicate: verb, Object: obj}
		if inverted {
			// "is P of" / "<- P" predicate inversion: the written
			// object is the real subject of the underlying triple.
			tr.Subject, tr.Object = obj, subj
		}
		*sink = append(*sink, tr)
		tok, err := p.peek()
		if err != nil {
			return err
		}
		if tok.kind != tokComma {
			return nil
		}
		p.advance()
	}
}

// parseVerb parses one verb position, returning the predicate term and
// whether it is inverted -- written as "is P of" or "<- P" -- so
// the caller swaps subject/object when recording the triple. "has P" is
// plain forward-direction sugar (inverted is always false for it); it
// exists only so "S has P O" reads the same as "S P O".
func (p *parser) parseVerb(sink *[]term.Triple) (term.Term, bool, error) {
	tok, err := p.peek()
	if err != nil {
		return term.Term{}, false, err
	}
	switch tok.kind {
	case tokKeywordA:
		p.advance()
		return rdfTypeIRI, false, nil
	case tokEquals:
		p.advance()
		return owlSameAsIRI, false, nil
	case tokImplies:
		p.advance()
		return logImpliesIRI, false, nil
	case tokImpliedBy:
		p.advance()
		return logImpliedByIRI, false, nil
	case tokArrowInverse:
		p.advance()
		pred, err := p.parseTerm(sink)
		return pred, true, err
	case tokIdentifier:
		switch tok.text {
		case "has":
			p.advance()
			pred, err := p.parseTerm(sink)
			return pred, false, err
		case "is":
			p.advance()
			pred, err := p.parseTerm(sink)
			if err != nil {
				return term.Term{}, false, err
			}
			ofTok, err := p.advance()
			if err != nil {
				return term.Term{}, false, err
			}
			if ofTok.kind != tokIdentifier || ofTok.text != "of" {
				return term.Term{}, false, p.errorf(ofTok, `expected "of" after "is" predicate`)
			}
			return pred, true, nil
		}
	}
	pred, err := p.parseTerm(sink)
	return pred, false, err
}

// --- terms ---

// parseTerm parses a primary term and then any trailing "!"/"^" path
// operator chain: "e1!e2" desugars to a fresh blank B with the
// helper triple (e1, e2, B), and the expression's value becomes B; "e1^e2"
// desugars to (B, e2, e1) instead, so the fresh blank is the subject of
// its own helper triple. Chains associate left to right, each fresh blank
// feeding into the next step.
func (p *parser) parseTerm(sink *[]term.Triple) (term.Term, error) {
	t, err := p.parsePrimaryTerm(sink)
	if err != nil {
		return term.Term{}, err
	}
	for {
		tok, err := p.peek()
		if err != nil {
			return term.Term{}, err
		}
		switch tok.kind {
		case tokBang:
			p.advance()
			prop, err := p.parsePrimaryTerm(sink)
			if err != nil {
				return term.Term{}, err
			}
			blank := term.NewBlank(p.freshAnon())
			*sink = append(*sink, term.Triple{Subject: t, Predicate: prop, Object: blank})
			t = blank
		case tokCaret:
			p.advance()
			prop, err := p.parsePrimaryTerm(sink)
			if err != nil {
				return term.Term{}, err
			}
			blank := term.NewBlank(p.freshAnon())
			*sink = append(*sink, term.Triple{Subject: blank, Predicate: prop, Object: t})
			t = blank
		default:
			return t, nil
		}
	}
}

// parsePrimaryTerm parses a single term with no path-operator chaining;
// it is parseTerm's building block and also the operand of a "!"/"^"
// path step, which the grammar fixes to a primary term rather than
// another whole path expression.
func (p *parser) parsePrimaryTerm(sink *[]term.Triple) (term.Term, error) {
	tok, err := p.advance()
	if err != nil {
		return term.Term{}, err
	}
	switch tok.kind {
	case tokIRIRef:
		return term.NewIRI(p.env.ResolveRelative(tok.text)), nil
	case tokPName:
		iri, ok := p.env.Expand(tok.text)
		if !ok {
			return term.Term{}, p.errorf(tok, "undeclared prefix in %q", tok.text)
		}
		return term.NewIRI(iri), nil
	case tokVariable:
		return term.NewVariable(tok.text), nil
	case tokBlank:
		label := tok.text
		if label == "" {
			label = p.freshAnon()
		}
		return term.NewBlank(label), nil
	case tokString:
		return p.finishLiteral(tok.text)
	case tokNumber:
		return term.NewLiteral(tok.text), nil
	case tokIdentifier:
		switch tok.text {
		case "true", "false":
			return term.NewLiteral(tok.text), nil
		default:
			return term.Term{}, p.errorf(tok, "unexpected word %q", tok.text)
		}
	case tokLBracket:
		return p.parseBlankPropertyList(sink)
	case tokLParen:
		return p.parseCollection(sink)
	case tokLBrace:
		return p.parseFormula()
	default:
		return term.Term{}, p.errorf(tok, "unexpected token in term position")
	}
}

// finishLiteral consumes an optional @lang or ^^datatype suffix
// following a scanned string token and builds the raw literal form the
// term model expects (quotes plus suffix, escapes left undecoded -- see
// lexer.go's lexString doc comment).
func (p *parser) finishLiteral(content string) (term.Term, error) {
	raw := `"` + content + `"`
	tok, err := p.peek()
	if err != nil {
		return term.Term{}, err
	}
	switch tok.kind {
	case tokAt:
		p.advance()
		langTok, err := p.advance()
		if err != nil {
			return term.Term{}, err
		}
		if langTok.kind != tokIdentifier && langTok.kind != tokPName {
			return term.Term{}, p.errorf(langTok, "expected language tag after '@'")
		}
		return term.NewLiteral(raw + "@" + langTok.text), nil
	case tokDatatype:
		p.advance()
		dtTok, err := p.advance()
		if err != nil {
			return term.Term{}, err
		}
		switch dtTok.kind {
		case tokIRIRef:
			return term.NewLiteral(raw + "^^<" + p.env.ResolveRelative(dtTok.text) + ">"), nil
		case tokPName:
			iri, ok := p.env.Expand(dtTok.text)
			if !ok {
				return term.Term{}, p.errorf(dtTok, "undeclared prefix in datatype %q", dtTok.text)
			}
			return term.NewLiteral(raw + "^^<" + iri + ">"), nil
		default:
			return term.Term{}, p.errorf(dtTok, "expected datatype IRI after '^^'")
		}
	default:
		return term.NewLiteral(raw), nil
	}
}

func (p *parser) parseBlankPropertyList(sink *[]term.Triple) (term.Term, error) {
	subj, err := p.parseBlankIdentity()
	if err != nil {
		return term.Term{}, err
	}
	tok, err := p.peek()
	if err != nil {
		return term.Term{}, err
	}
	if tok.kind == tokRBracket {
		p.advance()
		return subj, nil
	}
	if tok.kind == tokSemicolon {
		// "id <iri>" was followed by its own ';' before any properties.
		p.advance()
		tok, err = p.peek()
		if err != nil {
			return term.Term{}, err
		}
		if tok.kind == tokRBracket {
			p.advance()
			return subj, nil
		}
	}
	if err := p.parsePredicateObjectList(subj, sink); err != nil {
		return term.Term{}, err
	}
	if err := p.expect(tokRBracket); err != nil {
		return term.Term{}, err
	}
	return subj, nil
}

// parseBlankIdentity consumes a leading "id <iri>" clause inside
// "[ ... ]", returning that IRI as the property list's subject instead
// of a fresh anonymous blank. Absent an "id" clause, it returns a fresh
// blank as before.
func (p *parser) parseBlankIdentity() (term.Term, error) {
	tok, err := p.peek()
	if err != nil {
		return term.Term{}, err
	}
	if tok.kind != tokIdentifier || tok.text != "id" {
		return term.NewBlank(p.freshAnon()), nil
	}
	p.advance()
	idTok, err := p.advance()
	if err != nil {
		return term.Term{}, err
	}
	switch idTok.kind {
	case tokIRIRef:
		return term.NewIRI(p.env.ResolveRelative(idTok.text)), nil
	case tokPName:
		iri, ok := p.env.Expand(idTok.text)
		if !ok {
			return term.Term{}, p.errorf(idTok, "undeclared prefix in %q", idTok.text)
		}
		return term.NewIRI(iri), nil
	default:
		return term.Term{}, p.errorf(idTok, "expected IRI after 'id'")
	}
}

func (p *parser) parseCollection(sink *[]term.Triple) (term.Term, error) {
	var items []term.Term
	for {
		tok, err := p.peek()
		if err != nil {
			return term.Term{}, err
		}
		if tok.kind == tokRParen {
			p.advance()
			return term.NewList(items...), nil
		}
		item, err := p.parseTerm(sink)
		if err != nil {
			return term.Term{}, err
		}
		items = append(items, item)
	}
}

func (p *parser) parseFormula() (term.Term, error) {
	var triples []term.Triple
	for {
		tok, err := p.peek()
		if err != nil {
			return term.Term{}, err
		}
		if tok.kind == tokRBrace {
			p.advance()
			return term.NewFormula(triples...), nil
		}
		if tok.kind == tokAt {
			p.advance()
			if err := p.parseAtDirective(); err != nil {
				return term.Term{}, err
			}
			continue
		}
		if err := p.parseStatementBody(&triples, false); err != nil {
			return term.Term{}, err
		}
		next, err := p.peek()
		if err != nil {
			return term.Term{}, err
		}
		if next.kind == tokDot {
			p.advance()
			continue
		}
		if next.kind == tokRBrace {
			p.advance()
			return term.NewFormula(triples...), nil
		}
		return term.Term{}, p.errorf(next, "expected '.' or '}' in formula")
	}
}

func (p *parser) freshAnon() string {
	p.anonCount++
	return "_anon" + itoa(p.anonCount)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b [20]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	return string(b[i:])
}

// --- rule-sugar detection ---

// asRule recognizes a toplevel statement that reduces to exactly one
// {P} => {C} / {C} <= {B} (or true/false marker) triple and converts it
// to a Rule instead of a plain fact
// about log:implies/log:impliedBy. A statement that uses those
// predicates alongside other triples, or whose operands are not
// formulas/markers, is left as ordinary facts -- the engine's dynamic
// rule installation path activates those at run time instead.
func asRule(sink []term.Triple) (*term.Rule, bool) {
	if len(sink) != 1 {
		return nil, false
	}
	tr := sink[0]
	if !tr.Predicate.IsIRI() {
		return nil, false
	}
	var direction term.Direction
	switch tr.Predicate.Lex() {
	case logImpliesIRI.Lex():
		direction = term.Forward
	case logImpliedByIRI.Lex():
		direction = term.Backward
	default:
		return nil, false
	}

	premiseSide, conclSide := tr.Subject, tr.Object
	if direction == term.Backward {
		premiseSide, conclSide = tr.Object, tr.Subject
	}

	premise, premiseOK := formulaOrMarker(premiseSide)
	concl, isFuse, conclOK := formulaOrMarkerConclusion(conclSide)
	if !premiseOK || !conclOK {
		return nil, false
	}

	// Blanks in the rule body lift to variables so unification can bind
	// them; a blank shared with the conclusion lifts there too. Only
	// blanks appearing solely in the conclusion remain existentials to
	// be Skolemized per firing.
	premise, concl = liftRuleBlanks(premise, concl)

	return &term.Rule{
		Premise:         premise,
		Conclusion:      concl,
		Direction:       direction,
		Fuse:            isFuse && direction == term.Forward,
		HeadBlankLabels: collectBlankLabels(concl),
		Source:          tr.Key(),
	}, true
}

// liftRuleBlanks replaces every blank occurring in the premise with a
// variable, applying the same replacement to occurrences of that blank
// in the conclusion. Conclusion-only blanks are left untouched.
func liftRuleBlanks(premise, conclusion []term.Triple) ([]term.Triple, []term.Triple) {
	mapping := map[string]term.Term{}
	var lift func(t term.Term, grow bool) term.Term
	lift = func(t term.Term, grow bool) term.Term {
		switch t.Kind() {
		case term.KindBlank:
			if v, ok := mapping[t.Name()]; ok {
				return v
			}
			if !grow {
				return t
			}
			v := term.NewVariable("_blank_" + t.Name())
			mapping[t.Name()] = v
			return v
		case term.KindList:
			items := t.Items()
			out := make([]term.Term, len(items))
			for i, it := range items {
				out[i] = lift(it, grow)
			}
			return term.NewList(out...)
		case term.KindFormula:
			trs := t.Triples()
			out := make([]term.Triple, len(trs))
			for i, tr := range trs {
				out[i] = term.Triple{Subject: lift(tr.Subject, grow), Predicate: lift(tr.Predicate, grow), Object: lift(tr.Object, grow)}
			}
			return term.NewFormula(out...)
		default:
			return t
		}
	}
	liftTriples := func(ts []term.Triple, grow bool) []term.Triple {
		out := make([]term.Triple, len(ts))
		for i, tr := range ts {
			out[i] = term.Triple{Subject: lift(tr.Subject, grow), Predicate: lift(tr.Predicate, grow), Object: lift(tr.Object, grow)}
		}
		return out
	}
	p := liftTriples(premise, true)
	c := liftTriples(conclusion, false)
	return p, c
}

func formulaOrMarker(t term.Term) ([]term.Triple, bool) {
	if t.IsFormula() {
		return t.Triples(), true
	}
	if isMarker(t, "true") {
		return nil, true
	}
	return nil, false
}

func formulaOrMarkerConclusion(t term.Term) ([]term.Triple, bool, bool) {
	if t.IsFormula() {
		return t.Triples(), false, true
	}
	if isMarker(t, "true") {
		return nil, false, true
	}
	if isMarker(t, "false") {
		return nil, true, true
	}
	return nil, false, false
}

func isMarker(t term.Term, word string) bool {
	return t.IsLiteral() && t.Lex() == word
}

func collectBlankLabels(triples []term.Triple) []string {
	seen := map[string]bool{}
	var out []string
	var walk func(t term.Term)
	walk = func(t term.Term) {
		switch t.Kind() {
		case term.KindBlank:
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
	for _, tr := range triples {
		walk(tr.Subject)
		walk(tr.Predicate)
		walk(tr.Object)
	}
	return out
}

// --- lookahead plumbing ---

func (p *parser) peek() (token, error) {
	if p.peeked != nil {
		return *p.peeked, nil
	}
	tok, err := p.lex.next()
	if err != nil {
		return token{}, err
	}
	p.peeked = &tok
	return tok, nil
}

func (p *parser) advance() (token, error) {
	if p.peeked != nil {
		tok := *p.peeked
		p.peeked = nil
		return tok, nil
	}
	return p.lex.next()
}

func (p *parser) expect(kind tokenKind) error {
	tok, err := p.advance()
	if err != nil {
		return err
	}
	if tok.kind != kind {
		return p.errorf(tok, "unexpected token")
	}
	return nil
}

func (p *parser) errorf(tok token, format string, args ...interface{}) error {
	offset := utf8.RuneCountInString(p.lex.src[:tok.pos])
	return &SyntaxError{Offset: offset, Message: fmt.Sprintf(format, args...)}
}
