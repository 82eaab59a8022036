package subst

import "github.com/eyereasoner/eyego/internal/term"

// Mode selects which equality rules the unifier applies to literals.
// ModeListAppend additionally allows integer<->decimal numeric equality.
// This broadening must stay local to list:append and never leak into
// the general unifier.
type Mode int

const (
	ModeDefault Mode = iota
	ModeListAppend
)

// Unify attempts to extend s so that a[s] = b[s] under the literal and
// formula equivalences below, subject to an occurs check on variable bindings. It returns
// (nil, false) on failure, leaving s's caller copy untouched (Subst
// values are never mutated in place).
func Unify(a, b term.Term, s *Subst, mode Mode) (*Subst, bool) {
	a = s.Walk(a)
	b = s.Walk(b)

	if a.IsVariable() && b.IsVariable() && a.Name() == b.Name() {
		return s, true
	}
	if a.IsVariable() {
		return bindVar(a, b, s)
	}
	if b.IsVariable() {
		return bindVar(b, a, s)
	}

	if a.Kind() != b.Kind() {
		// A List may still unify with an OpenList of compatible shape.
		if a.IsList() && b.IsOpenList() {
			return unifyOpenList(b, a, s, mode)
		}
		if b.IsList() && a.IsOpenList() {
			return unifyOpenList(a, b, s, mode)
		}
		return nil, false
	}

	switch a.Kind() {
	case term.KindIRI:
		if a.Lex() == b.Lex() {
			return s, true
		}
		return nil, false
	case term.KindBlank:
		if a.Name() == b.Name() {
			return s, true
		}
		return nil, false
	case term.KindLiteral:
		if literalsEqual(a.Lex(), b.Lex(), mode) {
			return s, true
		}
		return nil, false
	case term.KindList:
		return unifyList(a, b, s, mode)
	case term.KindOpenList:
		return unifyOpenOpen(a, b, s, mode)
	case term.KindFormula:
		return unifyFormula(a, b, s, mode)
	default:
		return nil, false
	}
}

func bindVar(v, t term.Term, s *Subst) (*Subst, bool) {
	if t.IsVariable() && t.Name() == v.Name() {
		return s, true
	}
	if occurs(v.Name(), t, s) {
		return nil, false
	}
	return s.Bind(v.Name(), t), true
}

// occurs implements the unifier's occurs check: v must not appear
// (transitively, through bindings already in s) inside t.
func occurs(v string, t term.Term, s *Subst) bool {
	t = s.Walk(t)
	switch t.Kind() {
	case term.KindVariable:
		return t.Name() == v
	case term.KindList:
		for _, it := range t.Items() {
			if occurs(v, it, s) {
				return true
			}
		}
		return false
	case term.KindOpenList:
		if t.TailVar() == v {
			return true
		}
		for _, it := range t.Items() {
			if occurs(v, it, s) {
				return true
			}
		}
		return false
	case term.KindFormula:
		for _, tr := range t.Triples() {
			if occurs(v, tr.Subject, s) || occurs(v, tr.Predicate, s) || occurs(v, tr.Object, s) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// literalsEqual applies the literal equivalences, plus the
// integer<->decimal broadening in ModeListAppend.
func literalsEqual(rawA, rawB string, mode Mode) bool {
	if rawA == rawB {
		return true
	}
	lexA, dtA, langA := term.SplitLiteral(rawA)
	lexB, dtB, langB := term.SplitLiteral(rawB)

	if dtA == term.XSDBoolean && dtB == term.XSDBoolean {
		return term.BooleanEqual(lexA, lexB)
	}
	if term.IsNumericDatatype(dtA) && term.IsNumericDatatype(dtB) {
		return term.NumericEqual(lexA, dtA, lexB, dtB, mode == ModeListAppend)
	}
	return term.StringEquivalent(lexA, dtA, langA, lexB, dtB, langB)
}

func unifyList(a, b term.Term, s *Subst, mode Mode) (*Subst, bool) {
	ai, bi := a.Items(), b.Items()
	if len(ai) != len(bi) {
		return nil, false
	}
	cur := s
	for i := range ai {
		var ok bool
		cur, ok = Unify(ai[i], bi[i], cur, mode)
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// unifyOpenList unifies an OpenList `open` with a closed List `closed`:
// (p1..pk | T) unifies with (y1..yn) iff k <= n; binds each pi
// to yi and T to the suffix list.
func unifyOpenList(open, closed term.Term, s *Subst, mode Mode) (*Subst, bool) {
	prefix := open.Items()
	items := closed.Items()
	if len(prefix) > len(items) {
		return nil, false
	}
	cur := s
	for i := range prefix {
		var ok bool
		cur, ok = Unify(prefix[i], items[i], cur, mode)
		if !ok {
			return nil, false
		}
	}
	tailVal := term.NewList(items[len(prefix):]...)
	return Unify(term.NewVariable(open.TailVar()), tailVal, cur, mode)
}

// unifyOpenOpen unifies two OpenLists: with the same tail variable and
// same prefix length they unify pointwise. When the
// tail variables differ, we still unify pointwise over the shared prefix
// length and bind the longer one's extra prefix plus its tail variable
// into the shorter one's tail variable, which is the natural
// generalization used by the prover when matching rule patterns against
// each other (e.g. composing two partial-list goals).
func unifyOpenOpen(a, b term.Term, s *Subst, mode Mode) (*Subst, bool) {
	ai, bi := a.Items(), b.Items()
	n := len(ai)
	if len(bi) < n {
		n = len(bi)
	}
	cur := s
	for i := 0; i < n; i++ {
		var ok bool
		cur, ok = Unify(ai[i], bi[i], cur, mode)
		if !ok {
			return nil, false
		}
	}
	switch {
	case len(ai) == len(bi):
		return Unify(term.NewVariable(a.TailVar()), term.NewVariable(b.TailVar()), cur, mode)
	case len(ai) > len(bi):
		rest := term.NewOpenList(ai[n:], a.TailVar())
		return Unify(term.NewVariable(b.TailVar()), rest, cur, mode)
	default:
		rest := term.NewOpenList(bi[n:], b.TailVar())
		return Unify(term.NewVariable(a.TailVar()), rest, cur, mode)
	}
}

// unifyFormula unifies two Formula terms: try triple-sequence identity
// first (cheap when formulas were constructed identically), then fall
// back to an order-insensitive backtracking triple match threading s.
// Alpha-equivalent formulas (IsAlphaEquivalent) short-circuit to
// success without binding.
func unifyFormula(a, b term.Term, s *Subst, mode Mode) (*Subst, bool) {
	if IsAlphaEquivalent(a, b) {
		return s, true
	}
	at, bt := a.Triples(), b.Triples()
	if len(at) == len(bt) {
		cur := s
		ok := true
		for i := range at {
			cur, ok = unifyTriple(at[i], bt[i], cur, mode)
			if !ok {
				break
			}
		}
		if ok {
			return cur, true
		}
	}
	return unifyTripleSetBacktrack(at, bt, s, mode)
}

func unifyTriple(a, b term.Triple, s *Subst, mode Mode) (*Subst, bool) {
	// Predicates first: cheap and the most selective position.
	cur, ok := Unify(a.Predicate, b.Predicate, s, mode)
	if !ok {
		return nil, false
	}
	cur, ok = Unify(a.Subject, b.Subject, cur, mode)
	if !ok {
		return nil, false
	}
	return Unify(a.Object, b.Object, cur, mode)
}

func unifyTripleSetBacktrack(as, bs []term.Triple, s *Subst, mode Mode) (*Subst, bool) {
	if len(as) != len(bs) {
		return nil, false
	}
	if len(as) == 0 {
		return s, true
	}
	used := make([]bool, len(bs))
	var rec func(i int, cur *Subst) (*Subst, bool)
	rec = func(i int, cur *Subst) (*Subst, bool) {
		if i == len(as) {
			return cur, true
		}
		for j, b := range bs {
			if used[j] {
				continue
			}
			next, ok := unifyTriple(as[i], b, cur, mode)
			if !ok {
				continue
			}
			used[j] = true
			if res, ok := rec(i+1, next); ok {
				return res, true
			}
			used[j] = false
		}
		return nil, false
	}
	return rec(0, s)
}
