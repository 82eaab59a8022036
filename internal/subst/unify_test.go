package subst

import (
	"testing"

	"github.com/eyereasoner/eyego/internal/term"
)

func mustUnify(t *testing.T, a, b term.Term, mode Mode) *Subst {
	t.Helper()
	s, ok := Unify(a, b, Empty(), mode)
	if !ok {
		t.Fatalf("expected %v to unify with %v", a, b)
	}
	return s
}

func TestUnifyVariableBinding(t *testing.T) {
	v := term.NewVariable("x")
	iri := term.NewIRI("http://example.org/a")
	s := mustUnify(t, v, iri, ModeDefault)
	bound, ok := s.Lookup("x")
	if !ok || !bound.Equal(iri) {
		t.Fatalf("expected x bound to %v, got %v", iri, bound)
	}
}

func TestUnifyOccursCheck(t *testing.T) {
	v := term.NewVariable("x")
	lst := term.NewList(v)
	if _, ok := Unify(v, lst, Empty(), ModeDefault); ok {
		t.Fatal("expected occurs check to reject x = (x)")
	}
}

func TestUnifyStringPlainVsTyped(t *testing.T) {
	a := term.NewLiteral(`"hi"`)
	b := term.NewLiteral(`"hi"^^<http://www.w3.org/2001/XMLSchema#string>`)
	if _, ok := Unify(a, b, Empty(), ModeDefault); !ok {
		t.Fatal("expected plain string to unify with same lex typed xsd:string")
	}
}

func TestUnifyLangTagMismatch(t *testing.T) {
	a := term.NewLiteral(`"hi"@en`)
	b := term.NewLiteral(`"hi"`)
	if _, ok := Unify(a, b, Empty(), ModeDefault); ok {
		t.Fatal("expected language-tagged literal not to unify with untagged one")
	}
}

func TestUnifyOpenListAgainstClosedList(t *testing.T) {
	a := term.NewIRI("http://example.org/a")
	b := term.NewIRI("http://example.org/b")
	c := term.NewIRI("http://example.org/c")
	open := term.NewOpenList([]term.Term{term.NewVariable("p1")}, "tail")
	closed := term.NewList(a, b, c)
	s := mustUnify(t, open, closed, ModeDefault)

	p1, _ := s.Lookup("p1")
	if !p1.Equal(a) {
		t.Fatalf("expected p1 = %v, got %v", a, p1)
	}
	tail, _ := s.Lookup("tail")
	want := term.NewList(b, c)
	if !s.Resolve(tail).Equal(want) {
		t.Fatalf("expected tail = %v, got %v", want, s.Resolve(tail))
	}
}

func TestUnifyOpenListTooLongPrefixFails(t *testing.T) {
	open := term.NewOpenList([]term.Term{term.NewVariable("a"), term.NewVariable("b"), term.NewVariable("c")}, "tail")
	closed := term.NewList(term.NewIRI("http://example.org/a"))
	if _, ok := Unify(open, closed, Empty(), ModeDefault); ok {
		t.Fatal("expected prefix longer than the closed list to fail")
	}
}

func TestUnifyFormulaOrderInsensitive(t *testing.T) {
	p := term.NewIRI("http://example.org/p")
	a := term.NewIRI("http://example.org/a")
	b := term.NewIRI("http://example.org/b")
	f1 := term.NewFormula(term.Triple{Subject: a, Predicate: p, Object: b}, term.Triple{Subject: b, Predicate: p, Object: a})
	f2 := term.NewFormula(term.Triple{Subject: b, Predicate: p, Object: a}, term.Triple{Subject: a, Predicate: p, Object: b})
	if _, ok := Unify(f1, f2, Empty(), ModeDefault); !ok {
		t.Fatal("expected reordered triple sets to unify")
	}
}

func TestUnifyTriplePredicateFirstShortCircuits(t *testing.T) {
	v := term.NewVariable("p")
	s := term.NewIRI("http://example.org/s")
	o1 := term.NewIRI("http://example.org/o1")
	o2 := term.NewIRI("http://example.org/o2")
	goal := term.Triple{Subject: s, Predicate: v, Object: o1}
	fact := term.Triple{Subject: s, Predicate: term.NewIRI("http://example.org/p"), Object: o2}
	if _, ok := unifyTriple(goal, fact, Empty(), ModeDefault); ok {
		t.Fatal("expected unification to fail on mismatched objects even though predicate is a free variable")
	}
}
