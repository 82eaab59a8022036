package builtins

import (
	"strconv"
	"strings"
	"sync"

	"github.com/eyereasoner/eyego/internal/subst"
	"github.com/eyereasoner/eyego/internal/term"
)

func logEqualTo(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	a, b := resolve(s, subject), resolve(s, object)
	if next, ok := subst.Unify(a, b, s, subst.ModeDefault); ok {
		emit(next)
	}
}

func logNotEqualTo(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	a, b := resolve(s, subject), resolve(s, object)
	if _, ok := subst.Unify(a, b, subst.Empty(), subst.ModeDefault); !ok {
		emit(s)
	}
}

// logConjunction implements log:conjunction: subject is a list of quoted
// formulas, object is bound to their merge with triple-level dedup.
func logConjunction(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	parts, ok := listArgs(resolve(s, subject))
	if !ok {
		return
	}
	seen := map[string]bool{}
	var merged []term.Triple
	for _, p := range parts {
		f := resolve(s, p)
		if !f.IsFormula() {
			return
		}
		for _, tr := range f.Triples() {
			key := tr.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, tr)
		}
	}
	unifyEmit(s, object, term.NewFormula(merged...), emit)
}

var conclusionMemo sync.Map // formula DedupKey -> []term.Triple

// logConclusion implements log:conclusion: the deductive closure of a
// quoted formula, treating its own log:implies triples as local forward
// rules (log:impliedBy triples have no effect on a standalone closure
// with no external query to answer). Memoized by the formula's dedup
// key.
func logConclusion(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	f := resolve(s, subject)
	if !f.IsFormula() {
		return
	}
	key := f.DedupKey()
	if cached, ok := conclusionMemo.Load(key); ok {
		unifyEmit(s, object, term.NewFormula(cached.([]term.Triple)...), emit)
		return
	}

	var facts []term.Triple
	var rules [][2][]term.Triple // [premise, conclusion] pairs
	for _, tr := range f.Triples() {
		if tr.Predicate.IsIRI() && tr.Predicate.Lex() == NSLog+"implies" {
			rules = append(rules, [2][]term.Triple{formulaTriples(tr.Subject), formulaTriples(tr.Object)})
			continue
		}
		facts = append(facts, tr)
	}

	known := map[string]bool{}
	for _, tr := range facts {
		known[tr.Key()] = true
	}
	for changed := true; changed; {
		changed = false
		for _, r := range rules {
			premise, conclusion := r[0], r[1]
			matchGoalsAgainstTriples(facts, premise, subst.Empty(), func(sol *subst.Subst) bool {
				for _, c := range conclusion {
					rc := sol.ResolveTriple(c)
					if !rc.IsGround() {
						continue
					}
					if !known[rc.Key()] {
						known[rc.Key()] = true
						facts = append(facts, rc)
						changed = true
					}
				}
				return true
			})
		}
	}

	conclusionMemo.Store(key, facts)
	unifyEmit(s, object, term.NewFormula(facts...), emit)
}

func formulaTriples(t term.Term) []term.Triple {
	if t.IsFormula() {
		return t.Triples()
	}
	return nil
}

func logContent(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	iri := resolve(s, subject)
	if !iri.IsIRI() || ctx.Deref == nil {
		return
	}
	text, ok := ctx.Deref.Content(iri.Lex(), ctx.Flags.EnforceHTTPS)
	if !ok {
		return
	}
	unifyEmit(s, object, stringLiteral(text), emit)
}

func logSemantics(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	iri := resolve(s, subject)
	if !iri.IsIRI() || ctx.Deref == nil {
		return
	}
	triples, ok := ctx.Deref.Semantics(iri.Lex(), ctx.Flags.EnforceHTTPS)
	if !ok {
		return
	}
	unifyEmit(s, object, term.NewFormula(alphaRenameFresh(ctx, triples)...), emit)
}

func logSemanticsOrError(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	iri := resolve(s, subject)
	if !iri.IsIRI() || ctx.Deref == nil {
		return
	}
	triples, ok := ctx.Deref.Semantics(iri.Lex(), ctx.Flags.EnforceHTTPS)
	if !ok {
		unifyEmit(s, object, stringLiteral("dereference failed: "+iri.Lex()), emit)
		return
	}
	unifyEmit(s, object, term.NewFormula(alphaRenameFresh(ctx, triples)...), emit)
}

func logParsedAsN3(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	text, ok := stringOf(resolve(s, subject))
	if !ok || ctx.Deref == nil {
		return
	}
	triples, ok := ctx.Deref.ParseN3(text)
	if !ok {
		return
	}
	unifyEmit(s, object, term.NewFormula(alphaRenameFresh(ctx, triples)...), emit)
}

func alphaRenameFresh(ctx *Ctx, triples []term.Triple) []term.Triple {
	mapping := map[string]string{}
	fresh := func(orig string) string { return ctx.FreshVar(orig) }
	return subst.RenameTriples(triples, mapping, fresh)
}

func logRawType(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	t := resolve(s, subject)
	var dt string
	switch t.Kind() {
	case term.KindFormula:
		dt = NSLog + "Formula"
	case term.KindLiteral:
		dt = NSLog + "Literal"
	case term.KindList:
		dt = NSRDF + "List"
	default:
		dt = NSLog + "Other"
	}
	unifyEmit(s, object, term.NewIRI(dt), emit)
}

func escapeLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

// logDtlit bridges a (lex, datatype) pair and a typed literal. A pair
// whose datatype is rdf:langString, and a language-tagged object
// literal, yield no solutions.
func logDtlit(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	if pair, ok := listArgs(resolve(s, subject)); ok && len(pair) == 2 {
		lex, ok1 := stringOf(resolve(s, pair[0]))
		dtTerm := resolve(s, pair[1])
		if !ok1 {
			return
		}
		if dtTerm.IsIRI() && dtTerm.Lex() == term.RDFLangStr {
			return
		}
		dt, ok2 := stringOf(dtTerm)
		if !ok2 {
			return
		}
		lit := term.NewLiteral(`"` + escapeLiteral(lex) + `"^^<` + dt + `>`)
		unifyEmit(s, object, lit, emit)
		return
	}
	ro := resolve(s, object)
	if !ro.IsLiteral() {
		return
	}
	lex, dt, lang := term.SplitLiteral(ro.Lex())
	if lang != "" {
		return
	}
	if dt == "" {
		dt = term.XSDString
	}
	unifyEmit(s, subject, term.NewList(stringLiteral(lex), term.NewIRI(dt)), emit)
}

func logLanglit(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	if pair, ok := listArgs(resolve(s, subject)); ok && len(pair) == 2 {
		lex, ok1 := stringOf(resolve(s, pair[0]))
		tag, ok2 := stringOf(resolve(s, pair[1]))
		if !ok1 || !ok2 {
			return
		}
		lit := term.NewLiteral(`"` + escapeLiteral(lex) + `"@` + tag)
		unifyEmit(s, object, lit, emit)
		return
	}
	ro := resolve(s, object)
	if !ro.IsLiteral() {
		return
	}
	lex, _, lang := term.SplitLiteral(ro.Lex())
	if lang == "" {
		return
	}
	unifyEmit(s, subject, term.NewList(stringLiteral(lex), stringLiteral(lang)), emit)
}

// logImplies streams every loaded forward rule as a (premise => conclusion)
// triple, α-renamed per query, matching subject/object against the
// renamed premise/conclusion formulas.
func logImplies(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	for _, r := range ctx.ForwardRules() {
		mapping := map[string]string{}
		fresh := func(orig string) string { return ctx.FreshVar(orig) }
		premise := term.NewFormula(subst.RenameTriples(r.Premise, mapping, fresh)...)
		conclusion := term.NewFormula(subst.RenameTriples(r.Conclusion, mapping, fresh)...)
		next, ok := subst.Unify(subject, premise, s, subst.ModeDefault)
		if !ok {
			continue
		}
		next, ok = subst.Unify(object, conclusion, next, subst.ModeDefault)
		if !ok {
			continue
		}
		if !emit(next) {
			return
		}
	}
}

func logImpliedBy(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	for _, r := range ctx.BackwardRules() {
		mapping := map[string]string{}
		fresh := func(orig string) string { return ctx.FreshVar(orig) }
		head := term.NewFormula(subst.RenameTriples(r.Conclusion, mapping, fresh)...)
		body := term.NewFormula(subst.RenameTriples(r.Premise, mapping, fresh)...)
		next, ok := subst.Unify(subject, head, s, subst.ModeDefault)
		if !ok {
			continue
		}
		next, ok = subst.Unify(object, body, next, subst.ModeDefault)
		if !ok {
			continue
		}
		if !emit(next) {
			return
		}
	}
}

// unifyTripleTerms unifies two triples component-wise, threading the
// substitution across subject/predicate/object.
func unifyTripleTerms(a, b term.Triple, s *subst.Subst) (*subst.Subst, bool) {
	s1, ok := subst.Unify(a.Subject, b.Subject, s, subst.ModeDefault)
	if !ok {
		return nil, false
	}
	s2, ok := subst.Unify(a.Predicate, b.Predicate, s1, subst.ModeDefault)
	if !ok {
		return nil, false
	}
	return subst.Unify(a.Object, b.Object, s2, subst.ModeDefault)
}

// matchGoalsAgainstTriples conjunctively matches goals against a flat
// (rule-free) fact list, backtracking over every candidate per goal. Used
// for explicit-scope and snapshot-scope forms of the scoped-closure meta
// builtins and for log:conclusion's local rule premises, where no
// further rule application or builtin dispatch is in play.
func matchGoalsAgainstTriples(facts []term.Triple, goals []term.Triple, s *subst.Subst, emit Emit) bool {
	var rec func(i int, cur *subst.Subst) bool
	rec = func(i int, cur *subst.Subst) bool {
		if i == len(goals) {
			return emit(cur)
		}
		g := cur.ResolveTriple(goals[i])
		for _, f := range facts {
			if next, ok := unifyTripleTerms(g, f, cur); ok {
				if !rec(i+1, next) {
					return false
				}
			}
		}
		return true
	}
	return rec(0, s)
}

// scopeFacts resolves an explicit-scope formula or an integer priority
// into the flat fact list the scoped meta builtins match against.
func scopeFacts(ctx *Ctx, scopeSpec term.Term) ([]term.Triple, bool) {
	if scopeSpec.IsFormula() {
		return scopeSpec.Triples(), true
	}
	if scopeSpec.IsLiteral() {
		lex, dt, _ := term.SplitLiteral(scopeSpec.Lex())
		if dt == "" || dt == term.XSDInteger {
			n, err := strconv.Atoi(lex)
			if err != nil || ctx.Scoped == nil {
				return nil, false
			}
			snap, ok := ctx.Scoped.SnapshotAtLeast(n)
			if !ok {
				return nil, false
			}
			return snap.All(), true
		}
	}
	return nil, false
}

// logIncludes implements "scopeOrPriority log:includes {pattern}": a
// local existence check against the scope's facts with no rules.
func logIncludes(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	facts, ok := scopeFacts(ctx, resolve(s, subject))
	if !ok {
		return
	}
	pattern := resolve(s, object)
	if !pattern.IsFormula() {
		return
	}
	found := false
	matchGoalsAgainstTriples(facts, pattern.Triples(), s, func(*subst.Subst) bool {
		found = true
		return false
	})
	if found {
		emit(s)
	}
}

func logNotIncludes(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	facts, ok := scopeFacts(ctx, resolve(s, subject))
	if !ok {
		return
	}
	pattern := resolve(s, object)
	if !pattern.IsFormula() {
		return
	}
	found := false
	matchGoalsAgainstTriples(facts, pattern.Triples(), s, func(*subst.Subst) bool {
		found = true
		return false
	})
	if !found {
		emit(s)
	}
}

// logCollectAllIn implements "(value, clause, scopeOrPriority)
// log:collectAllIn ?out": binds object to the list of value's bindings
// across every solution of clause against the scope's facts.
func logCollectAllIn(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	args, ok := listArgs(resolve(s, subject))
	if !ok || len(args) != 3 {
		return
	}
	valueVar, clause, scopeSpec := args[0], resolve(s, args[1]), resolve(s, args[2])
	if !clause.IsFormula() {
		return
	}
	facts, ok := scopeFacts(ctx, scopeSpec)
	if !ok {
		return
	}
	var results []term.Term
	matchGoalsAgainstTriples(facts, clause.Triples(), s, func(sol *subst.Subst) bool {
		results = append(results, sol.Resolve(valueVar))
		return true
	})
	unifyEmit(s, object, term.NewList(results...), emit)
}

// logForAllIn implements "(where, then) log:forAllIn object": succeeds
// once iff, for every solution of where's clause against where's scope,
// then also holds against the same facts under that solution. where is
// either a bare formula (scoped against the run's live fact store) or a
// (clauseFormula, scopeOrPriority) pair mirroring collectAllIn's last two
// positions -- the natural generalization of its three-tuple to a
// builtin with no value to collect.
func logForAllIn(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	whereTerm, thenTerm, ok := pairArgs(resolve(s, subject))
	if !ok {
		return
	}
	where := resolve(s, whereTerm)
	thenFormula := resolve(s, thenTerm)
	if !thenFormula.IsFormula() {
		return
	}

	var clause term.Term
	var facts []term.Triple
	if cl, scopeSpec, ok := pairArgs(where); ok {
		clause = resolve(s, cl)
		f, ok2 := scopeFacts(ctx, resolve(s, scopeSpec))
		if !ok2 {
			return
		}
		facts = f
	} else if where.IsFormula() {
		clause = where
		facts = ctx.Store.All()
	} else {
		return
	}
	if !clause.IsFormula() {
		return
	}

	allHold := true
	matchGoalsAgainstTriples(facts, clause.Triples(), s, func(sol *subst.Subst) bool {
		thenHolds := false
		matchGoalsAgainstTriples(facts, thenFormula.Triples(), sol, func(*subst.Subst) bool {
			thenHolds = true
			return false
		})
		if !thenHolds {
			allHold = false
			return false
		}
		return true
	})
	if allHold {
		emit(s)
	}
}

func logTrace(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	if msg, ok := stringOf(resolve(s, object)); ok && ctx.Trace != nil {
		ctx.Trace(msg)
	}
	emit(s)
}

func logOutputString(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	key := resolve(s, subject)
	value, ok := stringOf(resolve(s, object))
	if !ok || key.IsVariable() {
		return
	}
	if ctx.RecordOutputString != nil {
		ctx.RecordOutputString(key, value)
	}
	emit(s)
}

func logSkolem(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	rs := resolve(s, subject)
	if !rs.IsGround() || ctx.Skolem == nil {
		return
	}
	unifyEmit(s, object, ctx.Skolem(rs), emit)
}

func logURI(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	rs := resolve(s, subject)
	if rs.IsIRI() {
		unifyEmit(s, object, stringLiteral(rs.Lex()), emit)
		return
	}
	ro := resolve(s, object)
	if str, ok := stringOf(ro); ok && isValidIRIREF(str) {
		unifyEmit(s, subject, term.NewIRI(str), emit)
	}
}

func isValidIRIREF(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r <= ' ' || strings.ContainsRune("<>\"{}|^`\\", r) {
			return false
		}
	}
	return true
}
