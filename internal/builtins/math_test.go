package builtins

import (
	"testing"

	"github.com/eyereasoner/eyego/internal/subst"
	"github.com/eyereasoner/eyego/internal/term"
)

func intLit(n string) term.Term {
	return term.NewLiteral(`"` + n + `"^^<` + term.XSDInteger + `>`)
}

func runOnce(t *testing.T, fn Func, subject, object term.Term) (*subst.Subst, bool) {
	t.Helper()
	var got *subst.Subst
	var ok bool
	fn(&Ctx{}, subject, object, subst.Empty(), func(s *subst.Subst) bool {
		got, ok = s, true
		return false
	})
	return got, ok
}

func TestMathSum(t *testing.T) {
	list := term.NewList(intLit("1"), intLit("2"), intLit("3"))
	obj := term.NewVariable("out")
	s, ok := runOnce(t, mathSum, list, obj)
	if !ok {
		t.Fatal("expected math:sum to succeed")
	}
	got := s.Resolve(obj)
	want := intLit("6")
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestMathDifferenceOnDates(t *testing.T) {
	a := term.NewLiteral(`"2024-01-05T00:00:00Z"^^<` + term.XSDDateTime + `>`)
	b := term.NewLiteral(`"2024-01-01T00:00:00Z"^^<` + term.XSDDateTime + `>`)
	pair := term.NewList(a, b)
	obj := term.NewVariable("out")
	s, ok := runOnce(t, mathDifference, pair, obj)
	if !ok {
		t.Fatal("expected math:difference to succeed on dateTimes")
	}
	got := s.Resolve(obj)
	lex, dt, _ := term.SplitLiteral(got.Lex())
	if dt != term.XSDDuration || lex != "P4D" {
		t.Fatalf("got lex=%q dt=%q, want P4D / xsd:duration", lex, dt)
	}
}

func TestMathCompareGreaterThan(t *testing.T) {
	_, ok := runOnce(t, mathCompare(cmpGT), intLit("5"), intLit("3"))
	if !ok {
		t.Fatal("expected 5 > 3 to succeed")
	}
	_, ok = runOnce(t, mathCompare(cmpGT), intLit("2"), intLit("3"))
	if ok {
		t.Fatal("expected 2 > 3 to fail")
	}
}

func TestMathExponentiationInverseSolvesExponent(t *testing.T) {
	pair := term.NewList(intLit("2"), term.NewVariable("exp"))
	result := term.NewLiteral(`"8"^^<` + term.XSDDouble + `>`)
	expVar := term.NewVariable("exp")
	s, ok := runOnce(t, mathExponentiation, pair, result)
	if !ok {
		t.Fatal("expected math:exponentiation to solve for the exponent")
	}
	got := s.Resolve(expVar)
	v, _, ok := numericOf(got)
	if !ok || v.AsFloat() < 2.99 || v.AsFloat() > 3.01 {
		t.Fatalf("got %v, want exponent ~3", got)
	}
}

func TestMathRoundedTiesTowardPositiveInfinity(t *testing.T) {
	half := term.NewLiteral(`"2.5"^^<` + term.XSDDecimal + `>`)
	obj := term.NewVariable("out")
	s, ok := runOnce(t, mathRounded, half, obj)
	if !ok {
		t.Fatal("expected math:rounded to succeed")
	}
	if !s.Resolve(obj).Equal(intLit("3")) {
		t.Fatalf("got %v, want 3", s.Resolve(obj))
	}
}
