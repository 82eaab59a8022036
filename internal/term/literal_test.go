package term

import "testing"

func TestSplitLiteral(t *testing.T) {
	cases := []struct {
		raw     string
		lex, dt, lang string
	}{
		{`"hello"`, "hello", "", ""},
		{`"hello"@en`, "hello", "", "en"},
		{`"42"^^<http://www.w3.org/2001/XMLSchema#integer>`, "42", XSDInteger, ""},
		{`"5"^^<http://www.w3.org/2001/XMLSchema#int>`, "5", XSDInteger, ""},
	}
	for _, c := range cases {
		lex, dt, lang := SplitLiteral(c.raw)
		if lex != c.lex || dt != c.dt || lang != c.lang {
			t.Errorf("SplitLiteral(%q) = (%q,%q,%q), want (%q,%q,%q)", c.raw, lex, dt, lang, c.lex, c.dt, c.lang)
		}
	}
}

func TestDerivedIntegerNormalizes(t *testing.T) {
	_, dt, _ := SplitLiteral(`"7"^^<http://www.w3.org/2001/XMLSchema#nonNegativeInteger>`)
	if dt != XSDInteger {
		t.Fatalf("expected derived integer type to normalize to xsd:integer, got %q", dt)
	}
}

func TestCommonNumericDatatypePromotesOnFraction(t *testing.T) {
	dt := CommonNumericDatatype(false, XSDInteger, XSDInteger)
	if dt != XSDDecimal {
		t.Fatalf("expected promotion to xsd:decimal for non-integer result, got %q", dt)
	}
}

func TestCommonNumericDatatypeHighestRank(t *testing.T) {
	dt := CommonNumericDatatype(true, XSDInteger, XSDDouble)
	if dt != XSDDouble {
		t.Fatalf("expected xsd:double to win, got %q", dt)
	}
}

func TestNumericEqualCrossDatatypeRejectedByDefault(t *testing.T) {
	if NumericEqual("1", XSDInteger, "1.0", XSDDecimal, false) {
		t.Fatal("integer/decimal should not be equal outside list:append mode")
	}
	if !NumericEqual("1", XSDInteger, "1.0", XSDDecimal, true) {
		t.Fatal("integer/decimal should be equal under list:append's broadened mode")
	}
}

func TestStringEquivalentPlainVsTyped(t *testing.T) {
	if !StringEquivalent("x", "", "", "x", XSDString, "") {
		t.Fatal("plain string must equal the same lex typed xsd:string")
	}
	if StringEquivalent("x", "", "en", "x", "", "") {
		t.Fatal("language-tagged literal must not equal an untagged one")
	}
}
