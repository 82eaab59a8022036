package term

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Well-known XSD and RDF datatype IRIs used throughout the numeric and
// string-equivalence rules.
const (
	XSDString   = "http://www.w3.org/2001/XMLSchema#string"
	XSDInteger  = "http://www.w3.org/2001/XMLSchema#integer"
	XSDDecimal  = "http://www.w3.org/2001/XMLSchema#decimal"
	XSDFloat    = "http://www.w3.org/2001/XMLSchema#float"
	XSDDouble   = "http://www.w3.org/2001/XMLSchema#double"
	XSDBoolean  = "http://www.w3.org/2001/XMLSchema#boolean"
	XSDDateTime = "http://www.w3.org/2001/XMLSchema#dateTime"
	XSDDate     = "http://www.w3.org/2001/XMLSchema#date"
	XSDDuration = "http://www.w3.org/2001/XMLSchema#duration"
	RDFLangStr  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString"
)

// derivedIntegerTypes normalize to xsd:integer, so all derived
// integer types compare and compute as plain integers.
var derivedIntegerTypes = map[string]bool{
	"http://www.w3.org/2001/XMLSchema#int":                true,
	"http://www.w3.org/2001/XMLSchema#long":                true,
	"http://www.w3.org/2001/XMLSchema#short":               true,
	"http://www.w3.org/2001/XMLSchema#byte":                true,
	"http://www.w3.org/2001/XMLSchema#nonNegativeInteger":  true,
	"http://www.w3.org/2001/XMLSchema#positiveInteger":     true,
	"http://www.w3.org/2001/XMLSchema#nonPositiveInteger":  true,
	"http://www.w3.org/2001/XMLSchema#negativeInteger":     true,
	"http://www.w3.org/2001/XMLSchema#unsignedLong":        true,
	"http://www.w3.org/2001/XMLSchema#unsignedInt":         true,
	"http://www.w3.org/2001/XMLSchema#unsignedShort":       true,
	"http://www.w3.org/2001/XMLSchema#unsignedByte":        true,
}

// SplitLiteral splits a raw N3 literal lexical form into (lex, datatype,
// lang). At most one of datatype/lang is ever non-empty (both are empty
// for a plain quoted string; a language-tagged
// literal has an implicit datatype of rdf:langString, reconstructible from
// lang being set).
func SplitLiteral(raw string) (lex, datatype, lang string) {
	if raw == "" {
		return "", "", ""
	}
	if raw[0] != '"' {
		// Unquoted token (bare number/boolean as produced by the parser
		// for untyped N3 numeric literals); treat the whole thing as lex
		// with an inferred numeric datatype.
		lex = raw
		datatype = inferUntypedNumericDatatype(raw)
		return lex, datatype, ""
	}

	// Find the closing quote, accounting for triple-quoted strings and
	// backslash escapes.
	quote := `"`
	if strings.HasPrefix(raw, `"""`) {
		quote = `"""`
	}
	end := strings.LastIndex(raw, quote)
	if end <= 0 {
		return raw, "", ""
	}
	lex = raw[len(quote):end]
	rest := raw[end+len(quote):]

	if strings.HasPrefix(rest, "@") {
		lang = rest[1:]
		return lex, "", lang
	}
	if strings.HasPrefix(rest, "^^") {
		dt := rest[2:]
		dt = strings.TrimPrefix(dt, "<")
		dt = strings.TrimSuffix(dt, ">")
		datatype = normalizeDatatype(dt)
		return lex, datatype, ""
	}
	// A plain quoted string defaults to no explicit datatype; the unifier
	// treats it as equal to the same lex typed xsd:string.
	return lex, "", ""
}

func normalizeDatatype(dt string) string {
	if derivedIntegerTypes[dt] {
		return XSDInteger
	}
	return dt
}

func inferUntypedNumericDatatype(tok string) string {
	if tok == "true" || tok == "false" {
		return XSDBoolean
	}
	if strings.ContainsAny(tok, "eE") && !strings.HasPrefix(tok, "0x") {
		if _, err := strconv.ParseFloat(tok, 64); err == nil {
			return XSDDouble
		}
	}
	if strings.Contains(tok, ".") {
		return XSDDecimal
	}
	if _, ok := new(big.Int).SetString(tok, 10); ok {
		return XSDInteger
	}
	return XSDDecimal
}

// numericRank orders datatypes: integer < decimal < float < double.
func numericRank(dt string) int {
	switch dt {
	case XSDInteger:
		return 0
	case XSDDecimal:
		return 1
	case XSDFloat:
		return 2
	case XSDDouble:
		return 3
	default:
		return -1
	}
}

// IsNumericDatatype reports whether dt is one of the four recognized
// numeric kinds.
func IsNumericDatatype(dt string) bool {
	return numericRank(dt) >= 0
}

// CommonNumericDatatype returns the highest-ranked datatype among the
// given inputs, promoted to at least xsd:decimal when wholeResult is
// false (the operation's mathematical result is not an integer), so a
// non-integer result is promoted to at least decimal.
func CommonNumericDatatype(wholeResult bool, dts ...string) string {
	best := XSDInteger
	for _, dt := range dts {
		if numericRank(dt) > numericRank(best) {
			best = dt
		}
	}
	if !wholeResult && best == XSDInteger {
		best = XSDDecimal
	}
	return best
}

// NumericValue is a parsed numeric literal: a big.Rat for exact integer
// and decimal values, plus a float64 fast path recorded for float/double
// arithmetic that must follow IEEE semantics (Inf/NaN).
type NumericValue struct {
	Datatype string
	Rat       *big.Rat // valid for integer/decimal
	Float     float64  // valid for float/double
}

// ParseNumeric parses a literal's (lex, datatype) pair into a NumericValue.
// It returns ok=false if lex does not parse as a number of the given
// datatype.
func ParseNumeric(lex, datatype string) (NumericValue, bool) {
	switch datatype {
	case XSDInteger:
		r, ok := new(big.Rat).SetString(lex)
		if !ok {
			return NumericValue{}, false
		}
		return NumericValue{Datatype: XSDInteger, Rat: r}, true
	case XSDDecimal:
		r, ok := new(big.Rat).SetString(lex)
		if !ok {
			return NumericValue{}, false
		}
		return NumericValue{Datatype: XSDDecimal, Rat: r}, true
	case XSDFloat, XSDDouble:
		f, err := strconv.ParseFloat(lex, 64)
		if err != nil {
			return NumericValue{}, false
		}
		return NumericValue{Datatype: datatype, Float: f}, true
	default:
		return NumericValue{}, false
	}
}

// AsFloat returns the value as a float64 regardless of storage kind,
// for datatypes/operations where exactness does not matter (trig, etc).
func (n NumericValue) AsFloat() float64 {
	if n.Rat != nil {
		f, _ := n.Rat.Float64()
		return f
	}
	return n.Float
}

// FormatNumeric renders v back to a lexical form appropriate for its
// datatype, used by the builtins to construct result literals.
func FormatNumeric(v NumericValue, datatype string) string {
	switch datatype {
	case XSDInteger:
		if v.Rat != nil && v.Rat.IsInt() {
			return v.Rat.Num().String()
		}
		f, _ := v.Rat.Float64()
		return strconv.FormatInt(int64(f), 10)
	case XSDDecimal:
		if v.Rat != nil {
			return formatRatAsDecimal(v.Rat)
		}
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case XSDFloat, XSDDouble:
		f := v.AsFloat()
		return strconv.FormatFloat(f, 'E', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatRatAsDecimal(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String() + ".0"
	}
	return r.FloatString(16)
}

// NumericEqual reports whether two literals are equal numeric values in
// the same numeric datatype. allowCrossDatatype
// additionally allows integer<->decimal equality, used only by the
// list:append unifier mode.
func NumericEqual(aLex, aDT, bLex, bDT string, allowCrossDatatype bool) bool {
	av, aok := ParseNumeric(aLex, aDT)
	bv, bok := ParseNumeric(bLex, bDT)
	if !aok || !bok {
		return false
	}
	if aDT != bDT {
		if !allowCrossDatatype {
			return false
		}
		intDec := map[string]bool{XSDInteger: true, XSDDecimal: true}
		if !intDec[aDT] || !intDec[bDT] {
			return false
		}
	}
	if av.Rat != nil && bv.Rat != nil {
		return av.Rat.Cmp(bv.Rat) == 0
	}
	return av.AsFloat() == bv.AsFloat()
}

// StringEquivalent: a plain string and the same
// lex typed xsd:string are equal; language-tagged literals are never
// equal to an untagged one even with the same lex.
func StringEquivalent(aLex, aDT, aLang, bLex, bDT, bLang string) bool {
	if aLang != "" || bLang != "" {
		return aLex == bLex && aLang == bLang
	}
	aPlain := aDT == "" || aDT == XSDString
	bPlain := bDT == "" || bDT == XSDString
	return aPlain && bPlain && aLex == bLex
}

// BooleanEqual compares two xsd:boolean lexical forms by truth value.
func BooleanEqual(aLex, bLex string) bool {
	truth := func(lex string) string {
		switch lex = strings.ToLower(lex); lex {
		case "1":
			return "true"
		case "0":
			return "false"
		}
		return lex
	}
	return truth(aLex) == truth(bLex)
}
