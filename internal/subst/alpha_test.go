package subst

import (
	"testing"

	"github.com/eyereasoner/eyego/internal/term"
)

func TestAlphaEquivalenceRenamesVarsAndBlanks(t *testing.T) {
	p := term.NewIRI("http://example.org/p")
	f1 := term.NewFormula(
		term.Triple{Subject: term.NewVariable("x"), Predicate: p, Object: term.NewBlank("b1")},
	)
	f2 := term.NewFormula(
		term.Triple{Subject: term.NewVariable("y"), Predicate: p, Object: term.NewBlank("b2")},
	)
	if !IsAlphaEquivalent(f1, f2) {
		t.Fatal("expected formulas to be alpha-equivalent under variable/blank renaming")
	}
}

func TestAlphaEquivalenceRejectsNonBijective(t *testing.T) {
	p := term.NewIRI("http://example.org/p")
	// Both triples use ?x on the left in f1, but f2 uses two distinct
	// variables -- not a valid bijection.
	f1 := term.NewFormula(
		term.Triple{Subject: term.NewVariable("x"), Predicate: p, Object: term.NewVariable("x")},
	)
	f2 := term.NewFormula(
		term.Triple{Subject: term.NewVariable("y"), Predicate: p, Object: term.NewVariable("z")},
	)
	if IsAlphaEquivalent(f1, f2) {
		t.Fatal("expected non-bijective renaming to fail alpha-equivalence")
	}
}

func TestAlphaEquivalentFormulasUnifyWithoutBinding(t *testing.T) {
	p := term.NewIRI("http://example.org/p")
	f1 := term.NewFormula(term.Triple{Subject: term.NewVariable("x"), Predicate: p, Object: term.NewIRI("http://example.org/a")})
	f2 := term.NewFormula(term.Triple{Subject: term.NewVariable("y"), Predicate: p, Object: term.NewIRI("http://example.org/a")})

	before := Empty().Bind("unrelated", term.NewIRI("http://example.org/z"))
	after, ok := Unify(f1, f2, before, ModeDefault)
	if !ok {
		t.Fatal("expected alpha-equivalent formulas to unify")
	}
	if after.Len() != before.Len() {
		t.Fatal("expected alpha-equivalent unification to preserve the incoming substitution without adding bindings")
	}
}

// TestAlphaEquivalenceNeedsBacktracking uses formulas whose first
// candidate pairing is wrong, so the bijection search must abandon a
// partial mapping and try another ordering.
func TestAlphaEquivalenceNeedsBacktracking(t *testing.T) {
	p := term.NewIRI("p")
	q := term.NewIRI("q")
	x := term.NewVariable("x")
	y := term.NewVariable("y")
	z := term.NewVariable("z")
	a := term.NewVariable("a")
	b := term.NewVariable("b")
	c := term.NewVariable("c")

	f1 := term.NewFormula(
		term.Triple{Subject: x, Predicate: p, Object: a},
		term.Triple{Subject: y, Predicate: p, Object: b},
		term.Triple{Subject: z, Predicate: q, Object: a},
	)
	f2 := term.NewFormula(
		term.Triple{Subject: a, Predicate: p, Object: term.NewVariable("d")},
		term.Triple{Subject: b, Predicate: p, Object: term.NewVariable("e")},
		term.Triple{Subject: c, Predicate: q, Object: term.NewVariable("d")},
	)
	if !IsAlphaEquivalent(f1, f2) {
		t.Fatalf("expected alpha equivalent")
	}
}
