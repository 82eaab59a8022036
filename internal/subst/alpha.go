package subst

import "github.com/eyereasoner/eyego/internal/term"

// IsAlphaEquivalent reports whether two Formulas are α-equivalent: some
// bijective renaming of variables and blank labels maps one triple
// multiset onto the other, order-insensitively.
func IsAlphaEquivalent(a, b term.Term) bool {
	if !a.IsFormula() || !b.IsFormula() {
		return a.Equal(b)
	}
	at, bt := a.Triples(), b.Triples()
	if len(at) != len(bt) {
		return false
	}
	used := make([]bool, len(bt))
	varMap := make(map[string]string)
	blankMap := make(map[string]string)
	varMapRev := make(map[string]bool)
	blankMapRev := make(map[string]bool)

	var rec func(i int) bool
	rec = func(i int) bool {
		if i == len(at) {
			return true
		}
		for j, bTr := range bt {
			if used[j] {
				continue
			}
			vSnap := snapshotMap(varMap)
			bSnap := snapshotMap(blankMap)
			vRevSnap := snapshotRevMap(varMapRev)
			bRevSnap := snapshotRevMap(blankMapRev)
			if matchTripleAlpha(at[i], bTr, varMap, varMapRev, blankMap, blankMapRev) {
				used[j] = true
				if rec(i + 1) {
					return true
				}
				used[j] = false
			}
			restoreMap(varMap, vSnap)
			restoreMap(blankMap, bSnap)
			restoreRevMap(varMapRev, vRevSnap)
			restoreRevMap(blankMapRev, bRevSnap)
		}
		return false
	}
	return rec(0)
}

func snapshotMap(m map[string]string) map[string]string {
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func restoreMap(m, snap map[string]string) {
	for k := range m {
		if _, ok := snap[k]; !ok {
			delete(m, k)
		}
	}
	for k, v := range snap {
		m[k] = v
	}
}

func snapshotRevMap(m map[string]bool) map[string]bool {
	cp := make(map[string]bool, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func restoreRevMap(m, snap map[string]bool) {
	for k := range m {
		if _, ok := snap[k]; !ok {
			delete(m, k)
		}
	}
	for k, v := range snap {
		m[k] = v
	}
}

func matchTripleAlpha(a, b term.Triple, varMap map[string]string, varMapRev map[string]bool, blankMap map[string]string, blankMapRev map[string]bool) bool {
	return matchTermAlpha(a.Subject, b.Subject, varMap, varMapRev, blankMap, blankMapRev) &&
		matchTermAlpha(a.Predicate, b.Predicate, varMap, varMapRev, blankMap, blankMapRev) &&
		matchTermAlpha(a.Object, b.Object, varMap, varMapRev, blankMap, blankMapRev)
}

func matchTermAlpha(a, b term.Term, varMap map[string]string, varMapRev map[string]bool, blankMap map[string]string, blankMapRev map[string]bool) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case term.KindVariable:
		return matchBijective(a.Name(), b.Name(), varMap, varMapRev)
	case term.KindBlank:
		return matchBijective(a.Name(), b.Name(), blankMap, blankMapRev)
	case term.KindIRI:
		return a.Lex() == b.Lex()
	case term.KindLiteral:
		return literalsEqual(a.Lex(), b.Lex(), ModeDefault)
	case term.KindList, term.KindOpenList:
		ai, bi := a.Items(), b.Items()
		if len(ai) != len(bi) {
			return false
		}
		for i := range ai {
			if !matchTermAlpha(ai[i], bi[i], varMap, varMapRev, blankMap, blankMapRev) {
				return false
			}
		}
		if a.Kind() == term.KindOpenList {
			return matchBijective(a.TailVar(), b.TailVar(), varMap, varMapRev)
		}
		return true
	case term.KindFormula:
		return IsAlphaEquivalent(a, b)
	default:
		return false
	}
}

func matchBijective(an, bn string, fwd map[string]string, revSeen map[string]bool) bool {
	if mapped, ok := fwd[an]; ok {
		return mapped == bn
	}
	if revSeen[bn] {
		return false
	}
	fwd[an] = bn
	revSeen[bn] = true
	return true
}
