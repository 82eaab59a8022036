package index

import (
	"testing"

	"github.com/eyereasoner/eyego/internal/term"
)

func TestAddDedups(t *testing.T) {
	s := New()
	tr := term.Triple{
		Subject:   term.NewIRI("http://example.org/a"),
		Predicate: term.NewIRI("http://example.org/p"),
		Object:    term.NewIRI("http://example.org/b"),
	}
	if !s.Add(tr) {
		t.Fatal("expected first add to succeed")
	}
	if s.Add(tr) {
		t.Fatal("expected duplicate add to be rejected")
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 fact, got %d", s.Len())
	}
}

func TestCandidatesForGoalUsesSmallestBucket(t *testing.T) {
	s := New()
	p := term.NewIRI("http://example.org/p")
	a := term.NewIRI("http://example.org/a")
	for i := 0; i < 5; i++ {
		s.Add(term.Triple{Subject: a, Predicate: p, Object: term.NewIRI("http://example.org/o")})
	}
	s.Add(term.Triple{Subject: term.NewIRI("http://example.org/other"), Predicate: p, Object: term.NewIRI("http://example.org/single")})

	cands := s.CandidatesForGoal(true, p.DedupKey(), false, "", true, "I:http://example.org/single")
	if len(cands) != 1 {
		t.Fatalf("expected the (p,o) bucket of size 1 to win, got %d candidates", len(cands))
	}
}
