package builtins

import (
	"math/big"
	"sort"

	"github.com/eyereasoner/eyego/internal/index"
	"github.com/eyereasoner/eyego/internal/subst"
	"github.com/eyereasoner/eyego/internal/term"
)

var rdfNilIRI = term.NewIRI(NSRDF + "nil")
var rdfFirstIRI = term.NewIRI(NSRDF + "first")
var rdfRestIRI = term.NewIRI(NSRDF + "rest")

// elementsOf returns the materialized elements of t, which may already be
// a closed List term or the head of an rdf:first/rdf:rest chain stored as
// facts. The
// RDF-chain walk is cached on store, detects cycles, and rejects a head
// with conflicting rdf:first or rdf:rest statements: ambiguous list
// encodings are a local failure, not a silent pick.
func elementsOf(store *index.Store, t term.Term) ([]term.Term, bool) {
	if t.IsList() {
		return t.Items(), true
	}
	if t.Equal(rdfNilIRI) {
		return nil, true
	}
	if !t.IsIRI() && !t.IsBlank() {
		return nil, false
	}
	headKey := t.DedupKey()
	if cached, ok := store.RDFListCacheGet(headKey); ok {
		return cached, true
	}
	var out []term.Term
	seen := map[string]bool{}
	node := t
	for {
		if node.Equal(rdfNilIRI) {
			store.RDFListCachePut(headKey, out)
			return out, true
		}
		key := node.DedupKey()
		if seen[key] {
			return nil, false
		}
		seen[key] = true

		firsts := store.CandidatesForGoal(true, rdfFirstIRI.DedupKey(), true, key, false, "")
		rests := store.CandidatesForGoal(true, rdfRestIRI.DedupKey(), true, key, false, "")
		if len(firsts) != 1 || len(rests) != 1 {
			return nil, false
		}
		out = append(out, firsts[0].Object)
		node = rests[0].Object
	}
}

// listAppend implements list:append in both directions: with
// every part list ground, it computes the concatenation forward; with
// the result ground and exactly one part unbound, it splits the result
// around the bound parts' known lengths instead. Both directions unify
// under ModeListAppend, so integer and decimal operands compare equal
// here; the other list:* builtins unify under ModeDefault.
func listAppend(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	args, ok := elementsOf(ctx.Store, resolve(s, subject))
	if !ok {
		return
	}
	if all, ok := concatParts(ctx, s, args); ok {
		if next, bound := subst.Unify(object, term.NewList(all...), s, subst.ModeListAppend); bound {
			emit(next)
		}
		return
	}
	listAppendSplit(ctx, args, object, s, emit)
}

// concatParts resolves every element of args to a list and concatenates
// them, or reports ok=false if any element is not (yet) list-shaped.
func concatParts(ctx *Ctx, s *subst.Subst, args []term.Term) ([]term.Term, bool) {
	var all []term.Term
	for _, a := range args {
		items, ok := elementsOf(ctx.Store, resolve(s, a))
		if !ok {
			return nil, false
		}
		all = append(all, items...)
	}
	return all, true
}

// listAppendSplit implements list:append's reverse direction: object is a
// ground list and exactly one element of args is an unbound variable,
// the rest already resolving to ground lists. The unbound element is
// bound to the slice of object's items left over once the other parts'
// known lengths, in position order, are accounted for.
func listAppendSplit(ctx *Ctx, args []term.Term, object term.Term, s *subst.Subst, emit Emit) {
	whole, ok := elementsOf(ctx.Store, resolve(s, object))
	if !ok {
		return
	}
	gapIdx := -1
	var parts [][]term.Term
	for i, a := range args {
		ra := resolve(s, a)
		if items, ok := elementsOf(ctx.Store, ra); ok {
			parts = append(parts, items)
			continue
		}
		if !ra.IsVariable() || gapIdx != -1 {
			// More than one unresolved part, or a non-list/non-variable
			// part: the split is not well-defined, so no solutions.
			return
		}
		gapIdx = i
		parts = append(parts, nil)
	}
	if gapIdx == -1 {
		return
	}
	before, after := 0, 0
	for i, p := range parts {
		if i < gapIdx {
			before += len(p)
		} else if i > gapIdx {
			after += len(p)
		}
	}
	if before+after > len(whole) {
		return
	}
	offset := 0
	for i, p := range parts {
		if i == gapIdx {
			offset += len(whole) - before - after
			continue
		}
		have := whole[offset : offset+len(p)]
		next, bound := subst.Unify(term.NewList(p...), term.NewList(have...), s, subst.ModeListAppend)
		if !bound {
			return
		}
		s = next
		offset += len(p)
	}
	gap := whole[before : len(whole)-after]
	if next, bound := subst.Unify(args[gapIdx], term.NewList(gap...), s, subst.ModeListAppend); bound {
		emit(next)
	}
}

func listFirst(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	items, ok := elementsOf(ctx.Store, resolve(s, subject))
	if !ok || len(items) == 0 {
		return
	}
	unifyEmit(s, object, items[0], emit)
}

func listRest(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	items, ok := elementsOf(ctx.Store, resolve(s, subject))
	if !ok || len(items) == 0 {
		return
	}
	unifyEmit(s, object, term.NewList(items[1:]...), emit)
}

func listLast(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	items, ok := elementsOf(ctx.Store, resolve(s, subject))
	if !ok || len(items) == 0 {
		return
	}
	unifyEmit(s, object, items[len(items)-1], emit)
}

func listLength(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	items, ok := elementsOf(ctx.Store, resolve(s, subject))
	if !ok {
		return
	}
	unifyEmit(s, object, numericLiteral(term.NumericValue{Rat: intRat(len(items))}, term.XSDInteger), emit)
}

func intRat(n int) *big.Rat {
	return big.NewRat(int64(n), 1)
}

// listFirstRest implements list:firstRest: object is a (first, rest)
// pair.
func listFirstRest(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	items, ok := elementsOf(ctx.Store, resolve(s, subject))
	if !ok || len(items) == 0 {
		return
	}
	pair := term.NewList(items[0], term.NewList(items[1:]...))
	unifyEmit(s, object, pair, emit)
}

// listMember binds object to each element of subject in turn, backtracking
// over every match.
func listMember(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	items, ok := elementsOf(ctx.Store, resolve(s, subject))
	if !ok {
		return
	}
	for _, item := range items {
		next, bound := subst.Unify(object, item, s, subst.ModeDefault)
		if bound {
			if !emit(next) {
				return
			}
		}
	}
}

// listIn is list:member with the argument positions reversed.
func listIn(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	listMember(ctx, object, subject, s, emit)
}

func listNotMember(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	items, ok := elementsOf(ctx.Store, resolve(s, subject))
	if !ok {
		return
	}
	target := resolve(s, object)
	for _, item := range items {
		if _, bound := subst.Unify(target, item, s, subst.ModeDefault); bound {
			return
		}
	}
	emit(s)
}

// listMemberAt implements list:memberAt: subject is (list, 1-based
// index), object is bound to the element at that index.
func listMemberAt(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	listTerm, idxTerm, ok := pairArgs(resolve(s, subject))
	if !ok {
		return
	}
	items, ok := elementsOf(ctx.Store, resolve(s, listTerm))
	if !ok {
		return
	}
	idxVal, _, ok := numericOf(resolve(s, idxTerm))
	if !ok || idxVal.Rat == nil || !idxVal.Rat.IsInt() {
		return
	}
	idx := int(idxVal.Rat.Num().Int64())
	if idx < 1 || idx > len(items) {
		return
	}
	unifyEmit(s, object, items[idx-1], emit)
}

// listIterate binds object to each (index, element) pair of subject, in
// order, 1-based.
func listIterate(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	items, ok := elementsOf(ctx.Store, resolve(s, subject))
	if !ok {
		return
	}
	for i, item := range items {
		pair := term.NewList(numericLiteral(term.NumericValue{Rat: intRat(i + 1)}, term.XSDInteger), item)
		next, bound := subst.Unify(object, pair, s, subst.ModeDefault)
		if bound {
			if !emit(next) {
				return
			}
		}
	}
}

// listRemove takes a (list, value) subject pair and binds object to the
// list with every element equal to value elided.
func listRemove(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	listTerm, target, ok := pairArgs(resolve(s, subject))
	if !ok {
		return
	}
	items, ok := elementsOf(ctx.Store, resolve(s, listTerm))
	if !ok {
		return
	}
	rtarget := resolve(s, target)
	var out []term.Term
	for _, item := range items {
		if rtarget.Equal(resolve(s, item)) {
			continue
		}
		out = append(out, item)
	}
	unifyEmit(s, object, term.NewList(out...), emit)
}

// listReverse works in both directions: subject bound reverses forward,
// subject unbound but object bound reverses backward.
func listReverse(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	rsub := resolve(s, subject)
	if items, ok := elementsOf(ctx.Store, rsub); ok {
		rev := make([]term.Term, len(items))
		for i, it := range items {
			rev[len(items)-1-i] = it
		}
		unifyEmit(s, object, term.NewList(rev...), emit)
		return
	}
	if items, ok := elementsOf(ctx.Store, resolve(s, object)); ok {
		rev := make([]term.Term, len(items))
		for i, it := range items {
			rev[len(items)-1-i] = it
		}
		unifyEmit(s, subject, term.NewList(rev...), emit)
	}
}

// listSort orders a list's elements: numeric literals by value, other
// terms lexicographically by their debug string, with numeric literals
// sorting before non-numeric ones, numeric values ordered numerically.
func listSort(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	items, ok := elementsOf(ctx.Store, resolve(s, subject))
	if !ok {
		return
	}
	sorted := make([]term.Term, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return lessForSort(sorted[i], sorted[j])
	})
	unifyEmit(s, object, term.NewList(sorted...), emit)
}

func lessForSort(a, b term.Term) bool {
	av, _, aok := numericOf(a)
	bv, _, bok := numericOf(b)
	if aok && bok {
		if av.Rat != nil && bv.Rat != nil {
			return av.Rat.Cmp(bv.Rat) < 0
		}
		return av.AsFloat() < bv.AsFloat()
	}
	if aok != bok {
		return aok
	}
	return a.String() < b.String()
}

// listMap implements list:map: subject is (list, pred) with pred a
// predicate IRI applied as (element pred ?result) per element, or
// (list, {?item pred ?result}), a single-triple formula template whose
// subject and object positions are the per-element input and output
// variables. For every element it reenters the prover via ctx.Prove to
// solve the goal once with the element bound, and collects the
// resulting bindings into object, in list order.
func listMap(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	listTerm, tmplTerm, ok := pairArgs(resolve(s, subject))
	if !ok {
		return
	}
	items, ok := elementsOf(ctx.Store, resolve(s, listTerm))
	if !ok {
		return
	}
	tmpl := resolve(s, tmplTerm)
	var goal term.Triple
	var itemVar, resultVar term.Term
	switch {
	case tmpl.IsIRI():
		itemVar = term.NewVariable(ctx.FreshVar("mapItem"))
		resultVar = term.NewVariable(ctx.FreshVar("mapResult"))
		goal = term.Triple{Subject: itemVar, Predicate: tmpl, Object: resultVar}
	case tmpl.IsFormula() && len(tmpl.Triples()) == 1:
		goal = tmpl.Triples()[0]
		itemVar, resultVar = goal.Subject, goal.Object
		if !itemVar.IsVariable() || !resultVar.IsVariable() {
			return
		}
	default:
		return
	}

	// Each element gets a freshly renamed copy of the goal, so one
	// element's bindings never constrain the next element's proof.
	var walk func(i int, cur *subst.Subst, acc []term.Term) bool
	walk = func(i int, cur *subst.Subst, acc []term.Term) bool {
		if i == len(items) {
			next, bound := subst.Unify(object, term.NewList(acc...), cur, subst.ModeDefault)
			if bound {
				return emit(next)
			}
			return true
		}
		mapping := map[string]string{}
		renamed := subst.RenameTriples([]term.Triple{goal}, mapping, ctx.FreshVar)[0]
		freshItem := term.NewVariable(mapping[itemVar.Name()])
		freshResult := term.NewVariable(mapping[resultVar.Name()])
		bound1, ok := subst.Unify(freshItem, items[i], cur, subst.ModeDefault)
		if !ok {
			return true
		}
		cont := true
		ctx.Prove([]term.Triple{renamed}, bound1, func(after *subst.Subst) bool {
			result := after.Resolve(freshResult)
			ok := walk(i+1, after, append(append([]term.Term{}, acc...), result))
			if !ok {
				cont = false
			}
			return ok
		})
		return cont
	}
	walk(0, s, nil)
}
