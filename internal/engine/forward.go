// Forward chainer: a two-phase layered fixpoint. Phase A
// saturates with the scoped meta builtins (log:includes,
// log:notIncludes, log:collectAllIn, log:forAllIn, when written with an
// explicit priority) disabled by construction -- the scoped-closure view
// has no snapshot at a level they can see yet, so they simply fail.
// Phase B freezes a snapshot, bumps the closure level, and re-saturates
// so those builtins can fire against it. The chainer alternates the two
// phases until the level reaches the highest priority referenced by any
// loaded rule and a round produces no change.
package engine

import (
	"fmt"
	"sort"

	"github.com/eyereasoner/eyego/internal/builtins"
	"github.com/eyereasoner/eyego/internal/index"
	"github.com/eyereasoner/eyego/internal/subst"
	"github.com/eyereasoner/eyego/internal/term"
)

// ForwardChain saturates the engine's fact set and returns the
// derivations produced, in production order. If a `=> false` rule
// fires, it returns immediately with FuseTriggered() true and no
// further derivations beyond the fuse's own record.
func (e *Engine) ForwardChain() []term.DerivedFact {
	e.sk.Reset()
	for {
		changedA := e.saturateRound(false)
		if e.fuse {
			e.log().Warn("inference fuse triggered", "rule", e.fuseRule.Source)
			return e.derived
		}
		e.log().Debug("phase A saturated", "changed", changedA)
		e.freezeSnapshot()
		e.log().Debug("closure level advanced", "level", e.scopedLevel)
		changedB := e.saturateRound(true)
		if e.fuse {
			e.log().Warn("inference fuse triggered", "rule", e.fuseRule.Source)
			return e.derived
		}
		e.log().Debug("phase B saturated", "changed", changedB)
		maxP := e.maxScopedPriority()
		if !changedA && !changedB && e.scopedLevel >= maxP {
			return e.derived
		}
	}
}

// freezeSnapshot copies the current fact slice into a fresh indexed
// store and bumps the closure level; the live store keeps accumulating
// after this point (append-only), so later phases never retroactively
// change an earlier snapshot and anything provable at a lower level
// stays provable at every higher one.
func (e *Engine) freezeSnapshot() {
	e.scopedLevel++
	e.scopedSnapshot = index.Snapshot(e.store.All())
}

// saturateRound runs forward rules to a local fixpoint (no more new
// facts or installed rules), honoring the scoped-builtins-enabled flag
// only insofar as the scoped-closure view (wired into builtinCtx) will
// or won't have a usable snapshot; it returns whether anything changed.
func (e *Engine) saturateRound(scopedEnabled bool) bool {
	_ = scopedEnabled // gating happens via scopedView snapshot availability
	anyChange := false
	for {
		roundChange := false
		forwardSnapshot := append([]*term.Rule{}, e.rules.Forward...)
		for i, r := range forwardSnapshot {
			fired, err := e.fireForwardRule(i, r)
			if err != nil {
				return anyChange
			}
			if fired {
				roundChange = true
			}
		}
		if roundChange {
			anyChange = true
		} else {
			return anyChange
		}
	}
}

// fireForwardRule evaluates one forward rule's premise against the
// current facts and asserts every ground conclusion instance it proves,
// applying the ground-head short-circuit and per-firing Skolemization.
// It returns fired=true if any new fact or rule was installed, and
// a non-nil error only to signal that the inference fuse has triggered
// (halting the whole chain).
func (e *Engine) fireForwardRule(ruleIdx int, r *term.Rule) (fired bool, fuseErr error) {
	concl := r.Conclusion
	groundConcl := allTriplesStructurallyGround(concl) && len(r.HeadBlankLabels) == 0

	if groundConcl && !r.Fuse {
		if e.allKnown(concl) {
			return false, nil
		}
	}

	maxResults := 0
	if groundConcl {
		maxResults = 1
	}
	if r.Fuse {
		maxResults = 1
	}

	stop := false
	answerVars := answerVarsOf(concl, subst.Empty())
	e.Prove(r.Premise, subst.Empty(), ProveOpts{DeferBuiltins: true, MaxResults: maxResults, AnswerVars: answerVars}, func(sol *subst.Subst) bool {
		if r.Fuse {
			e.fuse = true
			e.fuseRule = r
			stop = true
			return false
		}

		firingKey := e.firingKey(ruleIdx, r, sol)
		instantiated := e.instantiateConclusion(r, sol, firingKey)

		for _, tr := range instantiated {
			if !tr.IsGround() {
				continue
			}
			if e.store.Add(tr) {
				fired = true
				df := term.DerivedFact{Fact: tr, Rule: r, InstantiatedBody: sol.ResolveTriples(r.Premise), Substitution: nil}
				e.derived = append(e.derived, df)
				if e.onDerived != nil {
					e.onDerived(df)
				}
				if installed := e.maybeInstallRule(tr); installed {
					fired = true
				}
			}
		}
		return maxResults == 0 // keep searching only when we need every solution
	})
	if stop {
		return fired, errFuse
	}
	return fired, nil
}

var errFuse = fuseSignal{}

type fuseSignal struct{}

func (fuseSignal) Error() string { return "inference fuse" }

func (e *Engine) allKnown(triples []term.Triple) bool {
	for _, t := range triples {
		if !e.store.Has(t) {
			return false
		}
	}
	return true
}

func allTriplesStructurallyGround(ts []term.Triple) bool {
	for _, t := range ts {
		if !t.IsGround() {
			return false
		}
	}
	return true
}

// firingKey identifies a (rule, instantiated body) pair so repeated
// firings of the same rule on the same data reuse the same Skolem head
// blanks. ruleIdx -- the rule's stable position in e.rules.Forward for
// this run -- disambiguates rules that carry the same (typically empty,
// for toplevel-parsed rules) Source and fire on the same instantiated
// body; r.Source still distinguishes rules installed dynamically from
// distinct firings that could otherwise collide on index reuse.
func (e *Engine) firingKey(ruleIdx int, r *term.Rule, sol *subst.Subst) string {
	bodies := sol.ResolveTriples(r.Premise)
	keys := make([]string, len(bodies))
	for i, b := range bodies {
		keys[i] = b.Key()
	}
	sort.Strings(keys)
	key := ""
	for _, k := range keys {
		key += k + "\x00"
	}
	return fmt.Sprintf("%d#%s#%s", ruleIdx, r.Source, key)
}

func (e *Engine) instantiateConclusion(r *term.Rule, sol *subst.Subst, firingKey string) []term.Triple {
	var blankMap map[string]term.Term
	if len(r.HeadBlankLabels) > 0 {
		blankMap = make(map[string]term.Term, len(r.HeadBlankLabels))
		for _, lbl := range r.HeadBlankLabels {
			blankMap[lbl] = e.sk.HeadBlank(firingKey, lbl)
		}
	}
	out := make([]term.Triple, len(r.Conclusion))
	for i, t := range r.Conclusion {
		out[i] = term.Triple{
			Subject:   substituteBlanks(sol.Resolve(t.Subject), blankMap),
			Predicate: substituteBlanks(sol.Resolve(t.Predicate), blankMap),
			Object:    substituteBlanks(sol.Resolve(t.Object), blankMap),
		}
	}
	return out
}

func substituteBlanks(t term.Term, blankMap map[string]term.Term) term.Term {
	if blankMap == nil {
		return t
	}
	switch t.Kind() {
	case term.KindBlank:
		if repl, ok := blankMap[t.Name()]; ok {
			return repl
		}
		return t
	case term.KindList:
		items := t.Items()
		out := make([]term.Term, len(items))
		for i, it := range items {
			out[i] = substituteBlanks(it, blankMap)
		}
		return term.NewList(out...)
	case term.KindFormula:
		trs := t.Triples()
		out := make([]term.Triple, len(trs))
		for i, tr := range trs {
			out[i] = term.Triple{
				Subject:   substituteBlanks(tr.Subject, blankMap),
				Predicate: substituteBlanks(tr.Predicate, blankMap),
				Object:    substituteBlanks(tr.Object, blankMap),
			}
		}
		return term.NewFormula(out...)
	default:
		return t
	}
}

// maybeInstallRule promotes a derived triple whose predicate is
// log:implies/log:impliedBy and whose subject and object are quoted
// formulas (the literal true standing for the empty formula, false for
// a fuse) into the live rule set, with rule-body blanks lifted to fresh
// variables.
func (e *Engine) maybeInstallRule(tr term.Triple) bool {
	if !tr.Predicate.IsIRI() {
		return false
	}
	var direction term.Direction
	switch tr.Predicate.Lex() {
	case logImplies.Lex():
		direction = term.Forward
	case logImpliedBy.Lex():
		direction = term.Backward
	default:
		return false
	}

	premiseSrc, premiseOK := formulaOrSpecial(tr.Subject)
	conclSrc, isFuse, conclOK := formulaOrSpecialConclusion(tr.Object)
	if !premiseOK || !conclOK {
		return false
	}

	premiseLifted, conclLifted := liftBodyBlanks(premiseSrc, conclSrc)
	mapping := map[string]string{}
	fresh := func(orig string) string { return e.freshVar(orig) }
	premise := subst.RenameTriples(premiseLifted, mapping, fresh)
	conclusion := subst.RenameTriples(conclLifted, mapping, fresh)

	r := &term.Rule{
		Premise:         premise,
		Conclusion:      conclusion,
		Direction:       direction,
		Fuse:            isFuse && direction == term.Forward,
		HeadBlankLabels: collectBlankLabels(conclLifted),
		Source:          tr.Key(),
	}
	installed := e.rules.TryInstall(r)
	if installed {
		e.log().Debug("rule installed", "direction", direction, "source", r.Source)
	}
	return installed
}

// formulaOrSpecial extracts a formula's triples, treating the literal
// token "true" as the empty formula.
func formulaOrSpecial(t term.Term) (triples []term.Triple, ok bool) {
	if t.IsFormula() {
		return t.Triples(), true
	}
	if isTrueMarker(t) {
		return nil, true
	}
	return nil, false
}

// formulaOrSpecialConclusion additionally recognizes the literal
// "false" marker as the inference-fuse encoding. The fuse marking is
// only meaningful on a forward-direction installation; a backward rule
// with a false conclusion is installed as a (silently useless) rule
// with an empty conclusion.
func formulaOrSpecialConclusion(t term.Term) (triples []term.Triple, isFuse bool, ok bool) {
	if t.IsFormula() {
		return t.Triples(), false, true
	}
	if isTrueMarker(t) {
		return nil, false, true
	}
	if isFalseMarker(t) {
		return nil, true, true
	}
	return nil, false, false
}

func isTrueMarker(t term.Term) bool {
	if !t.IsLiteral() {
		return false
	}
	lex, dt, _ := term.SplitLiteral(t.Lex())
	return lex == "true" && (dt == "" || dt == term.XSDBoolean)
}

func isFalseMarker(t term.Term) bool {
	if !t.IsLiteral() {
		return false
	}
	lex, dt, _ := term.SplitLiteral(t.Lex())
	return lex == "false" && (dt == "" || dt == term.XSDBoolean)
}

// liftBodyBlanks replaces every blank occurring in the premise with a
// variable, applying the same replacement to occurrences of that blank
// in the conclusion. Conclusion-only blanks remain existentials for
// per-firing Skolemization.
func liftBodyBlanks(premise, conclusion []term.Triple) ([]term.Triple, []term.Triple) {
	mapping := map[string]term.Term{}
	var lift func(t term.Term, grow bool) term.Term
	lift = func(t term.Term, grow bool) term.Term {
		switch t.Kind() {
		case term.KindBlank:
			if v, ok := mapping[t.Name()]; ok {
				return v
			}
			if !grow {
				return t
			}
			v := term.NewVariable("_blank_" + t.Name())
			mapping[t.Name()] = v
			return v
		case term.KindList:
			items := t.Items()
			out := make([]term.Term, len(items))
			for i, it := range items {
				out[i] = lift(it, grow)
			}
			return term.NewList(out...)
		case term.KindFormula:
			trs := t.Triples()
			out := make([]term.Triple, len(trs))
			for i, tr := range trs {
				out[i] = term.Triple{Subject: lift(tr.Subject, grow), Predicate: lift(tr.Predicate, grow), Object: lift(tr.Object, grow)}
			}
			return term.NewFormula(out...)
		default:
			return t
		}
	}
	liftTriples := func(ts []term.Triple, grow bool) []term.Triple {
		out := make([]term.Triple, len(ts))
		for i, tr := range ts {
			out[i] = term.Triple{Subject: lift(tr.Subject, grow), Predicate: lift(tr.Predicate, grow), Object: lift(tr.Object, grow)}
		}
		return out
	}
	return liftTriples(premise, true), liftTriples(conclusion, false)
}

func collectBlankLabels(triples []term.Triple) []string {
	seen := map[string]bool{}
	var out []string
	var walk func(t term.Term)
	walk = func(t term.Term) {
		switch t.Kind() {
		case term.KindBlank:
			if !seen[t.Name()] {
				seen[t.Name()] = true
				out = append(out, t.Name())
			}
		case term.KindList:
			for _, it := range t.Items() {
				walk(it)
			}
		case term.KindFormula:
			for _, tr := range t.Triples() {
				walk(tr.Subject)
				walk(tr.Predicate)
				walk(tr.Object)
			}
		}
	}
	for _, t := range triples {
		walk(t.Subject)
		walk(t.Predicate)
		walk(t.Object)
	}
	return out
}

// maxScopedPriority scans every loaded rule's premise for a scoped meta
// builtin goal written with an explicit integer priority and returns
// the highest one found (0 if none).
func (e *Engine) maxScopedPriority() int {
	max := 0
	scan := func(rules []*term.Rule) {
		for _, r := range rules {
			for _, t := range r.Premise {
				if n, ok := priorityInGoal(t); ok && n > max {
					max = n
				}
			}
		}
	}
	scan(e.rules.Forward)
	scan(e.rules.Backward)
	return max
}

func priorityInGoal(tr term.Triple) (int, bool) {
	if !tr.Predicate.IsIRI() {
		return 0, false
	}
	switch tr.Predicate.Lex() {
	case builtins.NSLog + "includes", builtins.NSLog + "notIncludes":
		return parsePriority(tr.Subject)
	case builtins.NSLog + "collectAllIn":
		if tr.Subject.IsList() {
			items := tr.Subject.Items()
			if len(items) == 3 {
				return parsePriority(items[2])
			}
		}
	case builtins.NSLog + "forAllIn":
		if tr.Subject.IsList() {
			items := tr.Subject.Items()
			if len(items) == 2 && items[0].IsList() {
				witems := items[0].Items()
				if len(witems) == 2 {
					return parsePriority(witems[1])
				}
			}
		}
	}
	return 0, false
}
