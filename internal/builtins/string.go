package builtins

import (
	"regexp"
	"strings"

	"github.com/eyereasoner/eyego/internal/subst"
	"github.com/eyereasoner/eyego/internal/term"
)

func stringConcatenation(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	args, ok := listArgs(resolve(s, subject))
	if !ok {
		return
	}
	var b strings.Builder
	for _, a := range args {
		v, ok := stringOf(resolve(s, a))
		if !ok {
			return
		}
		b.WriteString(v)
	}
	unifyEmit(s, object, stringLiteral(b.String()), emit)
}

func stringPairArgs(s *subst.Subst, subject term.Term) (a, b string, ok bool) {
	ta, tb, ok := pairArgs(resolve(s, subject))
	if !ok {
		return "", "", false
	}
	a, aok := stringOf(resolve(s, ta))
	b, bok := stringOf(resolve(s, tb))
	return a, b, aok && bok
}

func stringContains(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	whole, ok1 := stringOf(resolve(s, subject))
	part, ok2 := stringOf(resolve(s, object))
	if !ok1 || !ok2 {
		return
	}
	if strings.Contains(whole, part) {
		emit(s)
	}
}

func stringContainsIgnoringCase(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	whole, ok1 := stringOf(resolve(s, subject))
	part, ok2 := stringOf(resolve(s, object))
	if !ok1 || !ok2 {
		return
	}
	if strings.Contains(strings.ToLower(whole), strings.ToLower(part)) {
		emit(s)
	}
}

func stringEndsWith(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	whole, ok1 := stringOf(resolve(s, subject))
	suffix, ok2 := stringOf(resolve(s, object))
	if !ok1 || !ok2 {
		return
	}
	if strings.HasSuffix(whole, suffix) {
		emit(s)
	}
}

func stringStartsWith(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	whole, ok1 := stringOf(resolve(s, subject))
	prefix, ok2 := stringOf(resolve(s, object))
	if !ok1 || !ok2 {
		return
	}
	if strings.HasPrefix(whole, prefix) {
		emit(s)
	}
}

func stringEqualIgnoringCase(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	a, ok1 := stringOf(resolve(s, subject))
	b, ok2 := stringOf(resolve(s, object))
	if !ok1 || !ok2 {
		return
	}
	if strings.EqualFold(a, b) {
		emit(s)
	}
}

func stringNotEqualIgnoringCase(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	a, ok1 := stringOf(resolve(s, subject))
	b, ok2 := stringOf(resolve(s, object))
	if !ok1 || !ok2 {
		return
	}
	if !strings.EqualFold(a, b) {
		emit(s)
	}
}

func stringCompare(op cmpOp) Func {
	return func(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
		a, ok1 := stringOf(resolve(s, subject))
		b, ok2 := stringOf(resolve(s, object))
		if !ok1 || !ok2 {
			return
		}
		c := strings.Compare(a, b)
		if cmpSatisfies(op, c) {
			emit(s)
		}
	}
}

// stripIdentityEscapes removes backslash-escapes that Go's regexp (RE2)
// does not understand at all -- neither as a metacharacter escape nor as
// one of RE2's own named escapes (\d, \w, \s, \b, ...) -- leaving plain
// identity escapes of otherwise-ordinary characters copied in from other
// regex dialects, matching the lenient behavior N3 reasoners apply to
// string:matches patterns.
func stripIdentityEscapes(pattern string) string {
	var b strings.Builder
	special := "\\^$.|?*+()[]{}"
	re2Escapes := "dwsbADWSBzZQEnrtfva0123456789pPCx"
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '\\' && i+1 < len(pattern) {
			next := rune(pattern[i+1])
			if !strings.ContainsRune(special, next) && !strings.ContainsRune(re2Escapes, next) {
				b.WriteByte(pattern[i+1])
				i++
				continue
			}
		}
		b.WriteByte(pattern[i])
	}
	return b.String()
}

func compileN3Pattern(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(stripIdentityEscapes(pattern))
}

func stringMatches(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	str, ok1 := stringOf(resolve(s, subject))
	pat, ok2 := stringOf(resolve(s, object))
	if !ok1 || !ok2 {
		return
	}
	re, err := compileN3Pattern(pat)
	if err != nil {
		return
	}
	if re.MatchString(str) {
		emit(s)
	}
}

func stringNotMatches(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	str, ok1 := stringOf(resolve(s, subject))
	pat, ok2 := stringOf(resolve(s, object))
	if !ok1 || !ok2 {
		return
	}
	re, err := compileN3Pattern(pat)
	if err != nil {
		return
	}
	if !re.MatchString(str) {
		emit(s)
	}
}

// stringReplace implements string:replace: subject is a
// (input, pattern, replacement) list, object is bound to the globally
// replaced result.
func stringReplace(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	args, ok := listArgs(resolve(s, subject))
	if !ok || len(args) != 3 {
		return
	}
	input, ok1 := stringOf(resolve(s, args[0]))
	pattern, ok2 := stringOf(resolve(s, args[1]))
	replacement, ok3 := stringOf(resolve(s, args[2]))
	if !ok1 || !ok2 || !ok3 {
		return
	}
	re, err := compileN3Pattern(pattern)
	if err != nil {
		return
	}
	result := re.ReplaceAllString(input, replacement)
	unifyEmit(s, object, stringLiteral(result), emit)
}

// stringScrape implements string:scrape: subject is (input, pattern),
// object is bound to the first capture group (or the whole match if the
// pattern has none).
func stringScrape(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	input, pattern, ok := stringPairArgs(s, subject)
	if !ok {
		return
	}
	re, err := compileN3Pattern(pattern)
	if err != nil {
		return
	}
	m := re.FindStringSubmatch(input)
	if m == nil {
		return
	}
	var captured string
	if len(m) > 1 {
		captured = m[1]
	} else {
		captured = m[0]
	}
	unifyEmit(s, object, stringLiteral(captured), emit)
}

// stringFormat implements string:format: subject is (template, args-list),
// supporting only %s and %%; any other specifier fails.
func stringFormat(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	tmplTerm, argsTerm, ok := pairArgs(resolve(s, subject))
	if !ok {
		return
	}
	tmpl, ok := stringOf(resolve(s, tmplTerm))
	if !ok {
		return
	}
	args, ok := listArgs(resolve(s, argsTerm))
	if !ok {
		return
	}
	var b strings.Builder
	argIdx := 0
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '%' || i+1 >= len(tmpl) {
			b.WriteByte(tmpl[i])
			continue
		}
		switch tmpl[i+1] {
		case 's':
			if argIdx >= len(args) {
				return
			}
			v, ok := stringOf(resolve(s, args[argIdx]))
			if !ok {
				return
			}
			b.WriteString(v)
			argIdx++
			i++
		case '%':
			b.WriteByte('%')
			i++
		default:
			// Only %s and %% are supported; any other specifier fails.
			return
		}
	}
	if argIdx != len(args) {
		// Extra arguments were supplied beyond what the template consumed;
		// a local failure, not an error.
		return
	}
	unifyEmit(s, object, stringLiteral(b.String()), emit)
}
