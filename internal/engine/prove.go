// Backward prover: an iterative depth-first search over goal
// conjunctions, deferring builtins whose inputs are not yet bound,
// guarding against rule-expansion cycles, and periodically compacting
// the substitution so deep proofs stay close to linear. Proof states are
// plain structs walked with an explicit Go-level stack, keeping the
// search single-threaded and reentrant for list:map, the builtin that
// calls back into the prover.
package engine

import (
	"github.com/eyereasoner/eyego/internal/builtins"
	"github.com/eyereasoner/eyego/internal/subst"
	"github.com/eyereasoner/eyego/internal/term"
)

// ProveOpts configures a single prove() call.
type ProveOpts struct {
	// DeferBuiltins rotates a builtin goal to the back of the queue
	// instead of failing outright when it has unbound inputs and other
	// goals remain; used when solving forward rule bodies so later
	// goals can bind the builtin's inputs first.
	DeferBuiltins bool

	// InsideBackwardRuleBody disables builtin deferral even if the
	// caller's ambient DeferBuiltins is on, preserving the written
	// evaluation order inside a backward rule's body.
	InsideBackwardRuleBody bool

	// MaxResults bounds the number of solutions emitted; zero means
	// unbounded.
	MaxResults int

	// AnswerVars are the variable names the caller ultimately cares
	// about; used as GC roots alongside the remaining goals when the
	// substitution is compacted.
	AnswerVars []string
}

// proofState is one node of the prover's explicit DFS stack.
type proofState struct {
	goals   []term.Triple
	s       *subst.Subst
	depth   int
	visited map[string]bool // rule-expansion cycle guard

	// deferCount bounds goal rotation to the number of goals so a
	// perpetually-unready builtin cannot loop forever.
	deferCount int
}

func cloneVisited(v map[string]bool) map[string]bool {
	out := make(map[string]bool, len(v))
	for k := range v {
		out[k] = true
	}
	return out
}

// Prove streams every substitution that proves goals true against the
// engine's current facts and rules. emit returning false stops the
// search early.
func (e *Engine) Prove(goals []term.Triple, s *subst.Subst, opts ProveOpts, emit builtins.Emit) {
	if len(goals) == 0 {
		emit(s)
		return
	}
	produced := 0
	wrapped := func(sol *subst.Subst) bool {
		produced++
		keep := emit(sol)
		if opts.MaxResults > 0 && produced >= opts.MaxResults {
			return false
		}
		return keep
	}
	init := &proofState{goals: goals, s: s, visited: map[string]bool{}}
	e.proveState(init, opts, wrapped)
}

// proveState runs one DFS branch of goal-list resolution, returning false
// if the caller's emit asked the search to stop.
func (e *Engine) proveState(st *proofState, opts ProveOpts, emit builtins.Emit) bool {
	if len(st.goals) == 0 {
		roots := append([]string(nil), opts.AnswerVars...)
		compacted := st.s.Compact(roots)
		return emit(compacted)
	}

	g := st.s.ResolveTriple(st.goals[0])
	rest := st.goals[1:]

	// Builtin dispatch comes first.
	if g.Predicate.IsIRI() {
		iri := g.Predicate.Lex()
		isListAlias := builtins.IsListBuiltinAlias(iri) && !looksLikeList(e, g.Subject, st.s)
		if builtins.IsBuiltinPredicate(e.builtinFlags(), iri) && !isListAlias {
			return e.proveBuiltinGoal(st, g, rest, opts, emit)
		}
	}

	return e.proveFactsAndRules(st, g, rest, opts, emit)
}

// looksLikeList reports whether a resolved term is list-shaped for the
// rdf:first/rdf:rest builtin-alias decision: a closed/open List term, or
// an IRI/Blank already appearing as the subject of an rdf:first or
// rdf:rest fact. Anything else falls through to plain fact lookup so
// RDF-list structures can be matched structurally.
func looksLikeList(e *Engine, t term.Term, s *subst.Subst) bool {
	rt := s.Resolve(t)
	if rt.IsList() || rt.IsOpenList() {
		return true
	}
	if rt.IsIRI() || rt.IsBlank() {
		cands := e.store.CandidatesForGoal(true, rdfFirst.DedupKey(), true, rt.DedupKey(), false, "")
		if len(cands) > 0 {
			return true
		}
	}
	return false
}

func (e *Engine) proveBuiltinGoal(st *proofState, g term.Triple, rest []term.Triple, opts ProveOpts, emit builtins.Emit) bool {
	iri := g.Predicate.Lex()
	any := false
	cont := true
	builtins.Dispatch(e.builtinCtx(), iri, g.Subject, g.Object, st.s, func(sol *subst.Subst) bool {
		any = true
		next := &proofState{goals: rest, s: sol, depth: st.depth + 1, visited: st.visited, deferCount: st.deferCount}
		cont = e.proveState(next, opts, emit)
		return cont
	})
	if any || !cont {
		return cont
	}

	// Deferral: rotate this goal to the back of the queue so a later goal
	// gets a chance to bind its inputs first.
	notGround := !st.s.ResolveTriple(g).IsGround()
	canDefer := opts.DeferBuiltins && !opts.InsideBackwardRuleBody
	canRotate := canDefer && len(rest) > 0 && notGround && st.deferCount < len(st.goals)
	if canRotate {
		rotated := append(append([]term.Triple{}, rest...), g)
		next := &proofState{goals: rotated, s: st.s, depth: st.depth, visited: st.visited, deferCount: st.deferCount + 1}
		return e.proveState(next, opts, emit)
	}

	// Satisfiability fallback: purely functional math
	// relations succeed vacuously once both sides are unbound and no
	// further rotation is possible (deferral disabled, goals exhausted,
	// or the deferral budget spent).
	bothUnbound := !st.s.Resolve(g.Subject).IsGround() && !st.s.Resolve(g.Object).IsGround()
	if builtins.IsSatisfiabilityFallbackEligible(iri) && bothUnbound && !canRotate {
		next := &proofState{goals: rest, s: st.s, depth: st.depth + 1, visited: st.visited, deferCount: st.deferCount}
		return e.proveState(next, opts, emit)
	}
	return true
}

func (e *Engine) proveFactsAndRules(st *proofState, g term.Triple, rest []term.Triple, opts ProveOpts, emit builtins.Emit) bool {
	predGround := g.Predicate.IsGround()
	subjGround := g.Subject.IsGround()
	objGround := g.Object.IsGround()

	candidates := e.store.CandidatesForGoal(predGround, g.Predicate.DedupKey(), subjGround, g.Subject.DedupKey(), objGround, g.Object.DedupKey())
	for _, f := range candidates {
		next, ok := unifyTriple(g, f, st.s)
		if !ok {
			continue
		}
		state := &proofState{goals: rest, s: next, depth: st.depth + 1, visited: st.visited, deferCount: st.deferCount}
		if !e.proveState(state, opts, emit) {
			return false
		}
	}

	// Backward rules, guarded against re-expanding a goal shape already
	// under expansion on this branch.
	if !predGround {
		return true
	}
	cycleKey := g.Predicate.DedupKey() + "|" + g.Subject.DedupKey() + "|" + g.Object.DedupKey()
	if st.visited[cycleKey] {
		return true
	}
	rules := e.rules.BackwardRulesFor(g.Predicate.DedupKey())
	for _, r := range rules {
		fresh := e.freshRuleInstance(r)
		// A backward rule's conclusion may be several triples; unifying
		// them all against g's single goal position-by-position is not
		// well-formed for len>1, so only the first head triple is
		// matched against g directly. The rest of the head is not
		// re-proven as additional goals: body => {head[0], head[1], ...}
		// means every head triple already holds once the body does, so
		// they are this firing's conclusions, not facts that must also
		// be independently derivable elsewhere.
		if len(fresh.Conclusion) == 0 {
			continue
		}
		head := fresh.Conclusion[0]
		next, ok := unifyTriple(g, head, st.s)
		if !ok {
			continue
		}
		bodyGoals := fresh.Premise
		visited := cloneVisited(st.visited)
		visited[cycleKey] = true

		// Builtin deferral is disabled only while solving the backward
		// rule's own body (written evaluation order matters for
		// termination there), not for rest -- the caller's own remaining goals that
		// merely happen to follow this goal in an outer conjunction. So
		// the body is proved to completion first, under innerOpts, and
		// only once it succeeds does rest resume under the caller's
		// original opts (deferral restored). The body's own GC roots
		// must include rest's free variables, or compacting at the
		// body's "no goals remain" base case could drop bindings rest
		// still needs.
		innerOpts := opts
		innerOpts.InsideBackwardRuleBody = true
		innerOpts.AnswerVars = append(append([]string(nil), opts.AnswerVars...), answerVarsOf(rest, st.s)...)

		bodyState := &proofState{goals: bodyGoals, s: next, depth: st.depth + 1, visited: visited, deferCount: st.deferCount}
		cont := true
		e.proveState(bodyState, innerOpts, func(sol *subst.Subst) bool {
			restState := &proofState{goals: rest, s: sol, depth: st.depth + 1, visited: visited, deferCount: st.deferCount}
			cont = e.proveState(restState, opts, emit)
			return cont
		})
		if !cont {
			return false
		}
	}
	return true
}

func unifyTriple(a, b term.Triple, s *subst.Subst) (*subst.Subst, bool) {
	next, ok := subst.Unify(a.Predicate, b.Predicate, s, subst.ModeDefault)
	if !ok {
		return nil, false
	}
	next, ok = subst.Unify(a.Subject, b.Subject, next, subst.ModeDefault)
	if !ok {
		return nil, false
	}
	return subst.Unify(a.Object, b.Object, next, subst.ModeDefault)
}

// freshRuleInstance standardizes rule r's variables apart so each use
// of the rule gets independent bindings.
func (e *Engine) freshRuleInstance(r *term.Rule) *term.Rule {
	mapping := map[string]string{}
	fresh := func(orig string) string { return e.freshVar(orig) }
	return &term.Rule{
		Premise:         subst.RenameTriples(r.Premise, mapping, fresh),
		Conclusion:      subst.RenameTriples(r.Conclusion, mapping, fresh),
		Direction:       r.Direction,
		Fuse:            r.Fuse,
		HeadBlankLabels: r.HeadBlankLabels,
		Source:          r.Source,
	}
}

