package builtins

import (
	"testing"

	"github.com/eyereasoner/eyego/internal/term"
)

func TestLogEqualToUnifies(t *testing.T) {
	_, ok := runOnce(t, logEqualTo, iri("http://example.org/a"), term.NewVariable("x"))
	if !ok {
		t.Fatal("expected log:equalTo to unify a ground IRI against a variable")
	}
}

func TestLogConjunctionDedups(t *testing.T) {
	tr := term.Triple{Subject: iri("http://example.org/a"), Predicate: iri("http://example.org/p"), Object: iri("http://example.org/b")}
	f1 := term.NewFormula(tr)
	f2 := term.NewFormula(tr)
	list := term.NewList(f1, f2)
	obj := term.NewVariable("out")
	s, ok := runOnce(t, logConjunction, list, obj)
	if !ok {
		t.Fatal("expected log:conjunction to succeed")
	}
	merged := s.Resolve(obj)
	if len(merged.Triples()) != 1 {
		t.Fatalf("expected deduped merge of 1 triple, got %d", len(merged.Triples()))
	}
}

func TestLogConclusionLocalFixpoint(t *testing.T) {
	a := iri("http://example.org/a")
	b := iri("http://example.org/b")
	c := iri("http://example.org/c")
	p := iri("http://example.org/p")
	x := term.NewVariable("x")
	y := term.NewVariable("y")
	z := term.NewVariable("z")

	fact1 := term.Triple{Subject: a, Predicate: p, Object: b}
	fact2 := term.Triple{Subject: b, Predicate: p, Object: c}
	rulePremise := []term.Triple{
		{Subject: x, Predicate: p, Object: y},
		{Subject: y, Predicate: p, Object: z},
	}
	ruleConclusion := []term.Triple{{Subject: x, Predicate: p, Object: z}}
	implies := term.Triple{
		Subject:   term.NewFormula(rulePremise...),
		Predicate: term.NewIRI(NSLog + "implies"),
		Object:    term.NewFormula(ruleConclusion...),
	}
	input := term.NewFormula(fact1, fact2, implies)
	obj := term.NewVariable("out")
	s, ok := runOnce(t, logConclusion, input, obj)
	if !ok {
		t.Fatal("expected log:conclusion to succeed")
	}
	closure := s.Resolve(obj)
	want := term.Triple{Subject: a, Predicate: p, Object: c}
	found := false
	for _, tr := range closure.Triples() {
		if tr.Key() == want.Key() {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected derived triple %v in closure %v", want, closure.Triples())
	}
}

func TestLogIncludesAgainstExplicitScope(t *testing.T) {
	tr := term.Triple{Subject: iri("http://example.org/a"), Predicate: iri("http://example.org/p"), Object: iri("http://example.org/b")}
	scope := term.NewFormula(tr)
	pattern := term.NewFormula(term.Triple{Subject: iri("http://example.org/a"), Predicate: iri("http://example.org/p"), Object: term.NewVariable("o")})
	_, ok := runOnce(t, logIncludes, scope, pattern)
	if !ok {
		t.Fatal("expected log:includes to find the matching pattern in scope")
	}

	absent := term.NewFormula(term.Triple{Subject: iri("http://example.org/x"), Predicate: iri("http://example.org/p"), Object: term.NewVariable("o")})
	_, ok = runOnce(t, logIncludes, scope, absent)
	if ok {
		t.Fatal("expected log:includes to fail when the pattern is absent")
	}
}

func TestLogCollectAllInGathersBindings(t *testing.T) {
	p := iri("http://example.org/p")
	x := iri("http://example.org/x")
	scope := term.NewFormula(
		term.Triple{Subject: x, Predicate: p, Object: iri("http://example.org/1")},
		term.Triple{Subject: x, Predicate: p, Object: iri("http://example.org/2")},
	)
	y := term.NewVariable("y")
	clause := term.NewFormula(term.Triple{Subject: x, Predicate: p, Object: y})
	subject := term.NewList(y, clause, scope)
	obj := term.NewVariable("out")
	s, ok := runOnce(t, logCollectAllIn, subject, obj)
	if !ok {
		t.Fatal("expected log:collectAllIn to succeed")
	}
	items := s.Resolve(obj).Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 collected values, got %d", len(items))
	}
}

func TestLogForAllInSucceedsWhenEveryMatchHolds(t *testing.T) {
	p := iri("http://example.org/p")
	q := iri("http://example.org/q")
	x := iri("http://example.org/x")
	y1 := iri("http://example.org/1")
	y2 := iri("http://example.org/2")
	facts := term.NewFormula(
		term.Triple{Subject: x, Predicate: p, Object: y1},
		term.Triple{Subject: x, Predicate: p, Object: y2},
		term.Triple{Subject: y1, Predicate: q, Object: y1},
		term.Triple{Subject: y2, Predicate: q, Object: y2},
	)
	v := term.NewVariable("v")
	where := term.NewFormula(term.Triple{Subject: x, Predicate: p, Object: v})
	then := term.NewFormula(term.Triple{Subject: v, Predicate: q, Object: v})
	subject := term.NewList(term.NewList(where, facts), then)
	_, ok := runOnce(t, logForAllIn, subject, term.NewVariable("_"))
	if !ok {
		t.Fatal("expected log:forAllIn to succeed when every match also satisfies then")
	}
}

func TestLogDtlitBidirectional(t *testing.T) {
	pair := term.NewList(stringLiteral("42"), iri(term.XSDInteger))
	obj := term.NewVariable("out")
	s, ok := runOnce(t, logDtlit, pair, obj)
	if !ok {
		t.Fatal("expected log:dtlit to construct a typed literal")
	}
	lit := s.Resolve(obj)
	lex, dt, _ := term.SplitLiteral(lit.Lex())
	if lex != "42" || dt != term.XSDInteger {
		t.Fatalf("got lex=%q dt=%q", lex, dt)
	}

	subj := term.NewVariable("parts")
	s2, ok := runOnce(t, logDtlit, subj, lit)
	if !ok {
		t.Fatal("expected log:dtlit to destructure a typed literal")
	}
	items := s2.Resolve(subj).Items()
	if len(items) != 2 {
		t.Fatalf("expected a 2-element (lex, datatype) pair, got %v", items)
	}
}

func TestLogURIBidirectional(t *testing.T) {
	out := term.NewVariable("out")
	s, ok := runOnce(t, logURI, iri("http://example.org/a"), out)
	if !ok {
		t.Fatal("expected log:uri to stringify an IRI")
	}
	got, _ := stringOf(s.Resolve(out))
	if got != "http://example.org/a" {
		t.Fatalf("got %q", got)
	}

	subj := term.NewVariable("uri")
	s2, ok := runOnce(t, logURI, subj, stringLiteral("http://example.org/b"))
	if !ok {
		t.Fatal("expected log:uri to build an IRI from a string")
	}
	if !s2.Resolve(subj).Equal(iri("http://example.org/b")) {
		t.Fatalf("got %v", s2.Resolve(subj))
	}
}
