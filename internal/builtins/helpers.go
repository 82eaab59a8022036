package builtins

import (
	"fmt"
	"strings"

	"github.com/eyereasoner/eyego/internal/subst"
	"github.com/eyereasoner/eyego/internal/term"
)

// resolve walks+substitutes t fully against s.
func resolve(s *subst.Subst, t term.Term) term.Term {
	return s.Resolve(t)
}

// numericOf extracts a parsed numeric value and its datatype from a
// resolved term, or ok=false if it is not a numeric literal.
func numericOf(t term.Term) (term.NumericValue, string, bool) {
	if !t.IsLiteral() {
		return term.NumericValue{}, "", false
	}
	lex, dt, _ := term.SplitLiteral(t.Lex())
	if dt == "" {
		dt = term.XSDDecimal
	}
	if !term.IsNumericDatatype(dt) {
		return term.NumericValue{}, "", false
	}
	v, ok := term.ParseNumeric(lex, dt)
	return v, dt, ok
}

// numericLiteral builds a Literal term from a NumericValue at the given
// datatype.
func numericLiteral(v term.NumericValue, dt string) term.Term {
	lex := term.FormatNumeric(v, dt)
	return term.NewLiteral(fmt.Sprintf(`"%s"^^<%s>`, lex, dt))
}

// listArgs extracts the element terms of a (resolved) List term; ok is
// false if t is not a closed List.
func listArgs(t term.Term) ([]term.Term, bool) {
	if !t.IsList() {
		return nil, false
	}
	return t.Items(), true
}

// pairArgs extracts exactly two elements from a (resolved) 2-element
// List term.
func pairArgs(t term.Term) (a, b term.Term, ok bool) {
	items, isList := listArgs(t)
	if !isList || len(items) != 2 {
		return term.Term{}, term.Term{}, false
	}
	return items[0], items[1], true
}

// stringOf coerces any IRI or Literal term to a plain string
// value for the string: builtins: quoted literals are unescaped, unquoted
// numeric/boolean tokens are used as-is, IRIs render as their lexical
// form.
func stringOf(t term.Term) (string, bool) {
	switch t.Kind() {
	case term.KindIRI:
		return t.Lex(), true
	case term.KindLiteral:
		lex, _, _ := term.SplitLiteral(t.Lex())
		return unescapeN3String(lex), true
	default:
		return "", false
	}
}

func unescapeN3String(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// stringLiteral builds a plain-quoted string Literal term, escaping
// embedded quotes and backslashes.
func stringLiteral(s string) term.Term {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return term.NewLiteral(`"` + s + `"`)
}

// boolLiteral builds an xsd:boolean Literal term.
func boolLiteral(b bool) term.Term {
	if b {
		return term.NewLiteral(`"true"^^<` + term.XSDBoolean + `>`)
	}
	return term.NewLiteral(`"false"^^<` + term.XSDBoolean + `>`)
}

// unifyEmit unifies want with resolved "have" under s, emitting the
// extended substitution if it succeeds. This is the standard shape for a
// deterministic, single-solution builtin that computes "have" and binds
// it against the goal's object/subject position.
func unifyEmit(s *subst.Subst, want, have term.Term, emit Emit) {
	if next, ok := subst.Unify(want, have, s, subst.ModeDefault); ok {
		emit(next)
	}
}
