package builtins

import (
	"fmt"
	"testing"

	"github.com/eyereasoner/eyego/internal/index"
	"github.com/eyereasoner/eyego/internal/subst"
	"github.com/eyereasoner/eyego/internal/term"
)

func iri(s string) term.Term { return term.NewIRI(s) }

func TestListMemberMultiSolution(t *testing.T) {
	ctx := &Ctx{Store: index.New()}
	list := term.NewList(iri("http://example.org/a"), iri("http://example.org/b"))
	obj := term.NewVariable("x")
	var got []term.Term
	listMember(ctx, list, obj, subst.Empty(), func(s *subst.Subst) bool {
		got = append(got, s.Resolve(obj))
		return true
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 solutions, got %d", len(got))
	}
}

func TestListAppendConcatenates(t *testing.T) {
	ctx := &Ctx{Store: index.New()}
	a := term.NewList(iri("http://example.org/a"))
	b := term.NewList(iri("http://example.org/b"))
	subject := term.NewList(a, b)
	obj := term.NewVariable("out")
	var s *subst.Subst
	var ok bool
	listAppend(ctx, subject, obj, subst.Empty(), func(got *subst.Subst) bool {
		s, ok = got, true
		return false
	})
	if !ok {
		t.Fatal("expected list:append to succeed")
	}
	want := term.NewList(iri("http://example.org/a"), iri("http://example.org/b"))
	if !s.Resolve(obj).Equal(want) {
		t.Fatalf("got %v, want %v", s.Resolve(obj), want)
	}
}

func TestElementsOfWalksRDFListChain(t *testing.T) {
	store := index.New()
	head := term.NewBlank("l0")
	mid := term.NewBlank("l1")
	a := iri("http://example.org/a")
	b := iri("http://example.org/b")
	store.Add(term.Triple{Subject: head, Predicate: rdfFirstIRI, Object: a})
	store.Add(term.Triple{Subject: head, Predicate: rdfRestIRI, Object: mid})
	store.Add(term.Triple{Subject: mid, Predicate: rdfFirstIRI, Object: b})
	store.Add(term.Triple{Subject: mid, Predicate: rdfRestIRI, Object: rdfNilIRI})

	items, ok := elementsOf(store, head)
	if !ok {
		t.Fatal("expected RDF list chain to resolve")
	}
	if len(items) != 2 || !items[0].Equal(a) || !items[1].Equal(b) {
		t.Fatalf("got %v", items)
	}
}

func TestElementsOfRejectsCycle(t *testing.T) {
	store := index.New()
	head := term.NewBlank("c0")
	store.Add(term.Triple{Subject: head, Predicate: rdfFirstIRI, Object: iri("http://example.org/a")})
	store.Add(term.Triple{Subject: head, Predicate: rdfRestIRI, Object: head})

	if _, ok := elementsOf(store, head); ok {
		t.Fatal("expected cyclic RDF list to be rejected")
	}
}

func TestListSortNumericFirst(t *testing.T) {
	ctx := &Ctx{Store: index.New()}
	list := term.NewList(intLit("3"), iri("http://example.org/z"), intLit("1"))
	obj := term.NewVariable("out")
	var result term.Term
	listSort(ctx, list, obj, subst.Empty(), func(s *subst.Subst) bool {
		result = s.Resolve(obj)
		return false
	})
	want := term.NewList(intLit("1"), intLit("3"), iri("http://example.org/z"))
	if !result.Equal(want) {
		t.Fatalf("got %v, want %v", result, want)
	}
}

func TestListMapAppliesPredicatePerElement(t *testing.T) {
	a := iri("http://example.org/a")
	b := iri("http://example.org/b")
	succ := iri("http://example.org/succ")
	facts := []term.Triple{
		{Subject: a, Predicate: succ, Object: b},
		{Subject: b, Predicate: succ, Object: iri("http://example.org/c")},
	}
	counter := 0
	ctx := &Ctx{
		Store: index.New(),
		Prove: func(goals []term.Triple, s *subst.Subst, emit Emit) {
			matchGoalsAgainstTriples(facts, goals, s, emit)
		},
		FreshVar: func(hint string) string {
			counter++
			return fmt.Sprintf("%s_%d", hint, counter)
		},
	}
	subject := term.NewList(term.NewList(a, b), succ)
	obj := term.NewVariable("out")
	var result term.Term
	listMap(ctx, subject, obj, subst.Empty(), func(s *subst.Subst) bool {
		result = s.Resolve(obj)
		return false
	})
	want := term.NewList(b, iri("http://example.org/c"))
	if !result.Equal(want) {
		t.Fatalf("got %v, want %v", result, want)
	}
}
