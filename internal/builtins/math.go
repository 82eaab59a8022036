package builtins

import (
	"fmt"
	"math"
	"math/big"

	"github.com/eyereasoner/eyego/internal/subst"
	"github.com/eyereasoner/eyego/internal/term"
)

// mathCompare builds a comparison builtin (math:greaterThan etc).
// Both sides must already be bound; comparisons never bind variables.
func mathCompare(op cmpOp) Func {
	return func(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
		a, b := resolve(s, subject), resolve(s, object)
		c, ok := compareValues(a, b)
		if ok && cmpSatisfies(op, c) {
			emit(s)
		}
	}
}

// compareValues compares two resolved terms as numbers if both are
// numeric literals, else lexicographically by their literal lexical
// form (covers dateTime/date/duration comparisons, which are ISO-8601
// lexically monotonic for same-format values).
func compareValues(a, b term.Term) (int, bool) {
	av, _, aok := numericOf(a)
	bv, _, bok := numericOf(b)
	if aok && bok {
		if av.Rat != nil && bv.Rat != nil {
			return av.Rat.Cmp(bv.Rat), true
		}
		fa, fb := av.AsFloat(), bv.AsFloat()
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		default:
			return 0, true
		}
	}
	if a.IsLiteral() && b.IsLiteral() {
		la, _, _ := term.SplitLiteral(a.Lex())
		lb, _, _ := term.SplitLiteral(b.Lex())
		switch {
		case la < lb:
			return -1, true
		case la > lb:
			return 1, true
		default:
			return 0, true
		}
	}
	return 0, false
}

func mathSum(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	args, ok := listArgs(resolve(s, subject))
	if !ok {
		return
	}
	sum := new(big.Rat)
	best := term.XSDInteger
	whole := true
	for _, a := range args {
		v, dt, ok := numericOf(resolve(s, a))
		if !ok || v.Rat == nil {
			return
		}
		sum.Add(sum, v.Rat)
		if rank(dt) > rank(best) {
			best = dt
		}
	}
	if !sum.IsInt() {
		whole = false
	}
	dt := term.CommonNumericDatatype(whole, best)
	unifyEmit(s, object, numericLiteral(term.NumericValue{Rat: sum}, dt), emit)
}

func mathProduct(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	args, ok := listArgs(resolve(s, subject))
	if !ok {
		return
	}
	prod := big.NewRat(1, 1)
	best := term.XSDInteger
	for _, a := range args {
		v, dt, ok := numericOf(resolve(s, a))
		if !ok || v.Rat == nil {
			return
		}
		prod.Mul(prod, v.Rat)
		if rank(dt) > rank(best) {
			best = dt
		}
	}
	dt := term.CommonNumericDatatype(prod.IsInt(), best)
	unifyEmit(s, object, numericLiteral(term.NumericValue{Rat: prod}, dt), emit)
}

func mathDifference(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	a, b, ok := pairArgs(resolve(s, subject))
	if !ok {
		return
	}
	ra, rb := resolve(s, a), resolve(s, b)
	if dur, ok := dateDifference(ra, rb); ok {
		unifyEmit(s, object, dur, emit)
		return
	}
	av, adt, aok := numericOf(ra)
	bv, bdt, bok := numericOf(rb)
	if !aok || !bok {
		return
	}
	if av.Rat == nil || bv.Rat == nil {
		dt := term.CommonNumericDatatype(false, adt, bdt)
		unifyEmit(s, object, floatLiteral(av.AsFloat()-bv.AsFloat(), dt), emit)
		return
	}
	diff := new(big.Rat).Sub(av.Rat, bv.Rat)
	dt := term.CommonNumericDatatype(diff.IsInt(), adt, bdt)
	unifyEmit(s, object, numericLiteral(term.NumericValue{Rat: diff}, dt), emit)
}

// dateDifference: the difference of two dateTime/date values is an
// xsd:duration string of days.
func dateDifference(a, b term.Term) (term.Term, bool) {
	if !a.IsLiteral() || !b.IsLiteral() {
		return term.Term{}, false
	}
	lexA, dtA, _ := term.SplitLiteral(a.Lex())
	lexB, dtB, _ := term.SplitLiteral(b.Lex())
	if (dtA != term.XSDDateTime && dtA != term.XSDDate) || (dtB != term.XSDDateTime && dtB != term.XSDDate) {
		return term.Term{}, false
	}
	ta, ok1 := parseXSDTemporal(lexA)
	tb, ok2 := parseXSDTemporal(lexB)
	if !ok1 || !ok2 {
		return term.Term{}, false
	}
	days := ta.Sub(tb).Hours() / 24
	sign := ""
	if days < 0 {
		sign = "-"
		days = -days
	}
	lex := fmt.Sprintf(`%sP%dD`, sign, int64(days))
	return term.NewLiteral(fmt.Sprintf(`"%s"^^<%s>`, lex, term.XSDDuration)), true
}

func mathQuotient(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	a, b, ok := pairArgs(resolve(s, subject))
	if !ok {
		return
	}
	av, adt, aok := numericOf(resolve(s, a))
	bv, bdt, bok := numericOf(resolve(s, b))
	if !aok || !bok {
		return
	}
	if av.Rat == nil || bv.Rat == nil {
		bf := bv.AsFloat()
		if bf == 0 {
			return
		}
		dt := term.CommonNumericDatatype(false, adt, bdt)
		unifyEmit(s, object, floatLiteral(av.AsFloat()/bf, dt), emit)
		return
	}
	if bv.Rat.Sign() == 0 {
		return
	}
	q := new(big.Rat).Quo(av.Rat, bv.Rat)
	dt := term.CommonNumericDatatype(q.IsInt(), adt, bdt)
	unifyEmit(s, object, numericLiteral(term.NumericValue{Rat: q}, dt), emit)
}

func mathIntegerQuotient(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	a, b, ok := pairArgs(resolve(s, subject))
	if !ok {
		return
	}
	av, _, aok := numericOf(resolve(s, a))
	bv, _, bok := numericOf(resolve(s, b))
	if !aok || !bok {
		return
	}
	if av.Rat == nil || bv.Rat == nil {
		bf := bv.AsFloat()
		if bf == 0 {
			return
		}
		truncated := truncateToInt(new(big.Rat).SetFloat64(av.AsFloat() / bf))
		if truncated == nil {
			return
		}
		unifyEmit(s, object, numericLiteral(term.NumericValue{Rat: truncated}, term.XSDInteger), emit)
		return
	}
	if bv.Rat.Sign() == 0 {
		return
	}
	q := new(big.Rat).Quo(av.Rat, bv.Rat)
	truncated := truncateToInt(q)
	unifyEmit(s, object, numericLiteral(term.NumericValue{Rat: truncated}, term.XSDInteger), emit)
}

func truncateToInt(r *big.Rat) *big.Rat {
	i := new(big.Int).Quo(r.Num(), r.Denom())
	return new(big.Rat).SetInt(i)
}

func mathRemainder(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	a, b, ok := pairArgs(resolve(s, subject))
	if !ok {
		return
	}
	av, adt, aok := numericOf(resolve(s, a))
	bv, bdt, bok := numericOf(resolve(s, b))
	if !aok || !bok || adt != term.XSDInteger || bdt != term.XSDInteger || bv.Rat.Sign() == 0 {
		return
	}
	rem := new(big.Int).Rem(av.Rat.Num(), bv.Rat.Num())
	unifyEmit(s, object, numericLiteral(term.NumericValue{Rat: new(big.Rat).SetInt(rem)}, term.XSDInteger), emit)
}

// mathExponentiation computes base^exp forward, or solves for the
// exponent when subject's base and the object are bound but the
// exponent element is a free variable.
func mathExponentiation(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	base, exp, ok := pairArgs(resolve(s, subject))
	if !ok {
		return
	}
	bv, _, bok := numericOf(base)
	if !bok {
		return
	}
	if ev, _, eok := numericOf(exp); eok {
		bf := bv.AsFloat()
		ef := ev.AsFloat()
		result := math.Pow(bf, ef)
		dt := term.XSDDouble
		if bv.Rat != nil && ev.Rat != nil && ev.Rat.IsInt() && ev.Rat.Sign() >= 0 {
			dt = term.CommonNumericDatatype(result == math.Trunc(result), term.XSDInteger)
		}
		unifyEmit(s, object, floatLiteral(result, dt), emit)
		return
	}
	// Solve for the exponent: base^x = result => x = log(result)/log(base).
	resultTerm := resolve(s, object)
	rv, _, rok := numericOf(resultTerm)
	if !rok {
		return
	}
	bf, rf := bv.AsFloat(), rv.AsFloat()
	if bf <= 0 || bf == 1 {
		return
	}
	x := math.Log(rf) / math.Log(bf)
	unifyEmit(s, exp, floatLiteral(x, term.XSDDouble), emit)
}

// floatLiteral builds a Literal from a float64 result. For an
// xsd:integer result it goes through big.Float.Int rather than a plain
// int64 conversion, since int64(f) overflows silently for magnitudes
// beyond int64's range (e.g. math:exponentiation of a large base).
func floatLiteral(f float64, dt string) term.Term {
	if dt == term.XSDInteger {
		i, _ := new(big.Float).SetFloat64(f).Int(nil)
		return numericLiteral(term.NumericValue{Rat: new(big.Rat).SetInt(i)}, term.XSDInteger)
	}
	return numericLiteral(term.NumericValue{Float: f}, dt)
}

func mathAbsoluteValue(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	v, dt, ok := numericOf(resolve(s, subject))
	if !ok {
		return
	}
	if v.Rat != nil {
		abs := new(big.Rat).Abs(v.Rat)
		unifyEmit(s, object, numericLiteral(term.NumericValue{Rat: abs}, dt), emit)
		return
	}
	unifyEmit(s, object, floatLiteral(math.Abs(v.Float), dt), emit)
}

// mathRounded rounds with ties toward +Inf.
func mathRounded(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	v, _, ok := numericOf(resolve(s, subject))
	if !ok {
		return
	}
	f := v.AsFloat()
	rounded := math.Floor(f + 0.5)
	unifyEmit(s, object, floatLiteral(rounded, term.XSDInteger), emit)
}

// mathNegation works in both directions: whichever side is a numeric
// literal, the other side is bound to its negation.
func mathNegation(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	in, out := resolve(s, subject), object
	v, dt, ok := numericOf(in)
	if !ok {
		in, out = resolve(s, object), subject
		v, dt, ok = numericOf(in)
		if !ok {
			return
		}
	}
	if v.Rat != nil {
		neg := new(big.Rat).Neg(v.Rat)
		unifyEmit(s, out, numericLiteral(term.NumericValue{Rat: neg}, dt), emit)
		return
	}
	unifyEmit(s, out, floatLiteral(-v.Float, dt), emit)
}

// mathDegrees converts a radian subject to a degree object, or a degree
// object back to radians when only the object is bound.
func mathDegrees(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	if v, _, ok := numericOf(resolve(s, subject)); ok {
		unifyEmit(s, object, floatLiteral(v.AsFloat()*180/math.Pi, term.XSDDouble), emit)
		return
	}
	v, _, ok := numericOf(resolve(s, object))
	if !ok {
		return
	}
	unifyEmit(s, subject, floatLiteral(v.AsFloat()*math.Pi/180, term.XSDDouble), emit)
}

// mathTrig builds a forward-plus-principal-branch-inverse trig builtin:
// with the subject (angle) bound, the object is bound to the function
// value; with only the object bound, the subject is bound to the
// principal-branch inverse. A NaN inverse (value outside the function's
// range) yields no solutions.
func mathTrig(name string) Func {
	fn := trigFuncs[name]
	inv := trigFuncs[trigInverse[name]]
	return func(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
		if v, _, ok := numericOf(resolve(s, subject)); ok {
			unifyEmit(s, object, floatLiteral(fn(v.AsFloat()), term.XSDDouble), emit)
			return
		}
		v, _, ok := numericOf(resolve(s, object))
		if !ok || inv == nil {
			return
		}
		angle := inv(v.AsFloat())
		if math.IsNaN(angle) {
			return
		}
		unifyEmit(s, subject, floatLiteral(angle, term.XSDDouble), emit)
	}
}

var trigFuncs = map[string]func(float64) float64{
	"sin": math.Sin, "cos": math.Cos, "tan": math.Tan,
	"asin": math.Asin, "acos": math.Acos, "atan": math.Atan,
	"sinh": math.Sinh, "cosh": math.Cosh, "tanh": math.Tanh,
	"asinh": math.Asinh, "acosh": math.Acosh, "atanh": math.Atanh,
}

var trigInverse = map[string]string{
	"sin": "asin", "cos": "acos", "tan": "atan",
	"asin": "sin", "acos": "cos", "atan": "tan",
	"sinh": "asinh", "cosh": "acosh", "tanh": "atanh",
	"asinh": "sinh", "acosh": "cosh", "atanh": "tanh",
}

func rank(dt string) int {
	switch dt {
	case term.XSDInteger:
		return 0
	case term.XSDDecimal:
		return 1
	case term.XSDFloat:
		return 2
	case term.XSDDouble:
		return 3
	default:
		return -1
	}
}
