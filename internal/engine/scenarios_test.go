package engine_test

import (
	"testing"

	"github.com/eyereasoner/eyego/internal/term"
	"github.com/eyereasoner/eyego/pkg/eyego"
)

// reason runs text to saturation and fails the test on any error.
func reason(t *testing.T, text string) *eyego.Result {
	t.Helper()
	result, err := eyego.ReasonStream(text, eyego.Options{})
	if err != nil {
		t.Fatalf("ReasonStream failed: %v", err)
	}
	return result
}

func hasTriple(facts []term.Triple, want term.Triple) bool {
	for _, f := range facts {
		if f.Key() == want.Key() {
			return true
		}
	}
	return false
}

// TestTransitiveSubclass: a single transitive rule firing once over a
// two-hop chain.
func TestTransitiveSubclass(t *testing.T) {
	const prog = `
@prefix : <http://example.org/> .
:A :sub :B . :B :sub :C .
{ ?x :sub ?y . ?y :sub ?z } => { ?x :sub ?z } .
`
	result := reason(t, prog)
	want := term.Triple{
		Subject:   term.NewIRI("http://example.org/A"),
		Predicate: term.NewIRI("http://example.org/sub"),
		Object:    term.NewIRI("http://example.org/C"),
	}
	if !hasTriple(result.Facts, want) {
		t.Fatalf("expected %v among derived facts, got %v", want, result.Facts)
	}
}

// TestAncestorClosureTwoRules: two mutually-feeding forward rules
// closing a three-link parent chain into every ancestor pair.
func TestAncestorClosureTwoRules(t *testing.T) {
	const prog = `
@prefix : <http://example.org/> .
:n0 :parent :n1 . :n1 :parent :n2 . :n2 :parent :n3 .
{ ?x :parent ?y } => { ?x :ancestor ?y } .
{ ?x :parent ?y . ?y :ancestor ?z } => { ?x :ancestor ?z } .
`
	result := reason(t, prog)
	ancestor := term.NewIRI("http://example.org/ancestor")
	want := []term.Triple{
		{Subject: term.NewIRI("http://example.org/n0"), Predicate: ancestor, Object: term.NewIRI("http://example.org/n1")},
		{Subject: term.NewIRI("http://example.org/n1"), Predicate: ancestor, Object: term.NewIRI("http://example.org/n2")},
		{Subject: term.NewIRI("http://example.org/n2"), Predicate: ancestor, Object: term.NewIRI("http://example.org/n3")},
		{Subject: term.NewIRI("http://example.org/n0"), Predicate: ancestor, Object: term.NewIRI("http://example.org/n2")},
		{Subject: term.NewIRI("http://example.org/n1"), Predicate: ancestor, Object: term.NewIRI("http://example.org/n3")},
		{Subject: term.NewIRI("http://example.org/n0"), Predicate: ancestor, Object: term.NewIRI("http://example.org/n3")},
	}
	for _, w := range want {
		if !hasTriple(result.Facts, w) {
			t.Errorf("expected %v among derived facts, got %v", w, result.Facts)
		}
	}
}

// TestMathSumNeedingDeferral: the rule body binds ?u and ?v from two
// separate :x facts before math:sum can run, exercising the builtin
// deferral that rotates ungroundable goals to the back of the queue
// rather than failing the conjunction outright.
func TestMathSumNeedingDeferral(t *testing.T) {
	const prog = `
@prefix : <http://example.org/> .
@prefix math: <http://www.w3.org/2000/10/swap/math#> .
:a :x 2 . :a :x 3 .
{ :a :x ?u . :a :x ?v . ( ?u ?v ) math:sum ?s } => { :a :total ?s } .
`
	result := reason(t, prog)
	total := term.NewIRI("http://example.org/total")
	a := term.NewIRI("http://example.org/a")
	for _, sum := range []string{"4", "5", "6"} {
		want := term.Triple{Subject: a, Predicate: total, Object: term.NewLiteral(`"` + sum + `"^^<http://www.w3.org/2001/XMLSchema#integer>`)}
		if !hasTriple(result.Facts, want) {
			t.Errorf("expected :a :total %s among derived facts, got %v", sum, result.Facts)
		}
	}
}

// TestInferenceFuse: a forward rule concluding the literal false
// aborts the run instead of emitting further derivations.
func TestInferenceFuse(t *testing.T) {
	const prog = `
@prefix : <http://example.org/> .
:a :p :b . { :a :p :b } => false .
`
	result := reason(t, prog)
	if !result.Fused {
		t.Fatal("expected the fuse rule to trigger")
	}
}

// TestDynamicRuleInstallation: a forward rule's conclusion is itself a
// log:implies triple, installing a new rule mid-run that then fires against
// a fact already present in the store.
func TestDynamicRuleInstallation(t *testing.T) {
	const prog = `
@prefix : <http://example.org/> .
@prefix log: <http://www.w3.org/2000/10/swap/log#> .
:a :trigger :go .
{ :a :trigger :go } => { { :a :p :b } log:implies { :a :q2 :b } } .
:a :p :b .
`
	result := reason(t, prog)
	want := term.Triple{
		Subject:   term.NewIRI("http://example.org/a"),
		Predicate: term.NewIRI("http://example.org/q2"),
		Object:    term.NewIRI("http://example.org/b"),
	}
	if !hasTriple(result.Facts, want) {
		t.Fatalf("expected the dynamically installed rule to derive %v, got %v", want, result.Facts)
	}
}

// TestScopedClosureWithPriority: log:collectAllIn, written with an
// explicit priority instead of an explicit scope formula, only succeeds
// once the scoped-closure ladder reaches that level. A bare top-level
// statement with free variables is discarded at load time, so the
// collectAllIn call is driven from a forward rule's premise, with the
// rule's conclusion asserting the collected list as a ground fact.
func TestScopedClosureWithPriority(t *testing.T) {
	const prog = `
@prefix : <http://example.org/> .
@prefix log: <http://www.w3.org/2000/10/swap/log#> .
:x :p :a . :x :p :b .
{ ( ?y { :x :p ?y } 1 ) log:collectAllIn ?out } => { :x :collected ?out } .
`
	result := reason(t, prog)
	a := term.NewIRI("http://example.org/a")
	b := term.NewIRI("http://example.org/b")
	collected := term.NewIRI("http://example.org/collected")
	x := term.NewIRI("http://example.org/x")

	var items []term.Term
	for _, f := range result.Facts {
		if f.Subject.Equal(x) && f.Predicate.Equal(collected) && f.Object.IsList() {
			items = f.Object.Items()
		}
	}
	if items == nil {
		t.Fatalf("expected a derived :x :collected (...) triple, got %v", result.Facts)
	}
	if len(items) != 2 {
		t.Fatalf("expected a 2-element list, got %d items: %v", len(items), items)
	}
	gotA := items[0].Equal(a) || items[1].Equal(a)
	gotB := items[0].Equal(b) || items[1].Equal(b)
	if !gotA || !gotB {
		t.Fatalf("expected list to contain exactly :a and :b, got %v", items)
	}
}
