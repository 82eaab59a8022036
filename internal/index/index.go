// Package index provides the fact-set indexes used by the backward
// prover and forward chainer: lookup by
// predicate, by (predicate,subject), by (predicate,object), and a
// canonical dedup key, plus an RDF-list head cache. The store is
// append-only with indexed columns for O(1)-ish candidate lookup.
package index

import (
	"github.com/eyereasoner/eyego/internal/term"
)

// Store holds the working fact set plus its side indexes. New
// facts are only ever appended -- any new fact must be indexed at
// insertion, and nothing is removed during a run.
type Store struct {
	facts []term.Triple

	dedup map[string]bool

	byPredicate map[string][]int
	byPredSubj  map[string][]int
	byPredObj   map[string][]int

	// rdfListCache memoizes the materialized element slice for an
	// rdf:first/rdf:rest chain head, keyed by the head term's dedup key.
	rdfListCache map[string][]term.Term
}

// New returns an empty fact store.
func New() *Store {
	return &Store{
		dedup:        make(map[string]bool),
		byPredicate:  make(map[string][]int),
		byPredSubj:   make(map[string][]int),
		byPredObj:    make(map[string][]int),
		rdfListCache: make(map[string][]term.Term),
	}
}

// Snapshot builds a standalone Store over a fixed triple slice, used to
// freeze the scoped-closure fixpoint's per-level fact set without
// touching the live run's store.
func Snapshot(facts []term.Triple) *Store {
	s := New()
	for _, f := range facts {
		s.Add(f)
	}
	return s
}

// Len returns the number of facts currently stored.
func (s *Store) Len() int { return len(s.facts) }

// All returns the full fact slice. Callers must not mutate it.
func (s *Store) All() []term.Triple { return s.facts }

// Has reports whether a ground triple is already present under the
// dedup key.
func (s *Store) Has(t term.Triple) bool {
	return s.dedup[t.Key()]
}

// Add appends t to the fact set and indexes it, unless an equal triple
// (under the dedup key) is already present. Returns true if the fact was
// newly added.
func (s *Store) Add(t term.Triple) bool {
	key := t.Key()
	if s.dedup[key] {
		return false
	}
	s.dedup[key] = true
	idx := len(s.facts)
	s.facts = append(s.facts, t)

	predKey := t.Predicate.DedupKey()
	s.byPredicate[predKey] = append(s.byPredicate[predKey], idx)

	psKey := predKey + "\x00" + t.Subject.DedupKey()
	s.byPredSubj[psKey] = append(s.byPredSubj[psKey], idx)

	poKey := predKey + "\x00" + t.Object.DedupKey()
	s.byPredObj[poKey] = append(s.byPredObj[poKey], idx)

	return true
}

// CandidatesForGoal returns the smallest applicable index bucket of
// facts that could unify with a goal triple, given which positions are
// already ground. When the predicate itself is unbound, it falls back
// to scanning everything.
func (s *Store) CandidatesForGoal(predGround bool, predKey string, subjGround bool, subjKey string, objGround bool, objKey string) []term.Triple {
	switch {
	case predGround && subjGround && objGround:
		return s.smallestOf(
			s.indexSlice(s.byPredSubj, predKey+"\x00"+subjKey),
			s.indexSlice(s.byPredObj, predKey+"\x00"+objKey),
		)
	case predGround && subjGround:
		return s.indexSlice(s.byPredSubj, predKey+"\x00"+subjKey)
	case predGround && objGround:
		return s.indexSlice(s.byPredObj, predKey+"\x00"+objKey)
	case predGround:
		return s.indexSlice(s.byPredicate, predKey)
	default:
		return s.facts
	}
}

func (s *Store) indexSlice(idx map[string][]int, key string) []term.Triple {
	ids := idx[key]
	out := make([]term.Triple, len(ids))
	for i, id := range ids {
		out[i] = s.facts[id]
	}
	return out
}

func (s *Store) smallestOf(a, b []term.Triple) []term.Triple {
	if len(a) <= len(b) {
		return a
	}
	return b
}

// RDFListCacheGet/Put memoize the materialized elements of an
// rdf:first/rdf:rest chain rooted at a head term.
func (s *Store) RDFListCacheGet(headKey string) ([]term.Term, bool) {
	v, ok := s.rdfListCache[headKey]
	return v, ok
}

func (s *Store) RDFListCachePut(headKey string, items []term.Term) {
	s.rdfListCache[headKey] = items
}
