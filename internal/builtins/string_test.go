package builtins

import (
	"testing"

	"github.com/eyereasoner/eyego/internal/term"
)

func TestStringConcatenation(t *testing.T) {
	list := term.NewList(stringLiteral("foo"), stringLiteral("bar"))
	obj := term.NewVariable("out")
	s, ok := runOnce(t, stringConcatenation, list, obj)
	if !ok {
		t.Fatal("expected string:concatenation to succeed")
	}
	got, _ := stringOf(s.Resolve(obj))
	if got != "foobar" {
		t.Fatalf("got %q, want %q", got, "foobar")
	}
}

func TestStringContains(t *testing.T) {
	_, ok := runOnce(t, stringContains, stringLiteral("hello world"), stringLiteral("wor"))
	if !ok {
		t.Fatal("expected string:contains to succeed")
	}
	_, ok = runOnce(t, stringContains, stringLiteral("hello world"), stringLiteral("xyz"))
	if ok {
		t.Fatal("expected string:contains to fail on absent substring")
	}
}

func TestStringContainsIgnoringCase(t *testing.T) {
	_, ok := runOnce(t, stringContainsIgnoringCase, stringLiteral("Hello World"), stringLiteral("WOR"))
	if !ok {
		t.Fatal("expected case-insensitive containment to succeed")
	}
}

func TestStringMatchesStripsIdentityEscapes(t *testing.T) {
	_, ok := runOnce(t, stringMatches, stringLiteral("a.b"), stringLiteral(`a\.b`))
	if !ok {
		t.Fatal("expected string:matches to succeed with an identity-escaped literal dot")
	}
	_, ok = runOnce(t, stringMatches, stringLiteral("axb"), stringLiteral(`a\.b`))
	if ok {
		t.Fatal("expected the escaped dot to match literally, not any character")
	}
}

func TestStringNotMatches(t *testing.T) {
	_, ok := runOnce(t, stringNotMatches, stringLiteral("hello"), stringLiteral("^world$"))
	if !ok {
		t.Fatal("expected string:notMatches to succeed when the pattern does not match")
	}
	_, ok = runOnce(t, stringNotMatches, stringLiteral("hello"), stringLiteral("^hel"))
	if ok {
		t.Fatal("expected string:notMatches to fail when the pattern matches")
	}
}

func TestStringReplaceGlobal(t *testing.T) {
	list := term.NewList(stringLiteral("aXbXc"), stringLiteral("X"), stringLiteral("-"))
	obj := term.NewVariable("out")
	s, ok := runOnce(t, stringReplace, list, obj)
	if !ok {
		t.Fatal("expected string:replace to succeed")
	}
	got, _ := stringOf(s.Resolve(obj))
	if got != "a-b-c" {
		t.Fatalf("got %q, want %q", got, "a-b-c")
	}
}

func TestStringScrapeFirstCaptureGroup(t *testing.T) {
	pair := term.NewList(stringLiteral("id=42"), stringLiteral(`id=([0-9]+)`))
	obj := term.NewVariable("out")
	s, ok := runOnce(t, stringScrape, pair, obj)
	if !ok {
		t.Fatal("expected string:scrape to succeed")
	}
	got, _ := stringOf(s.Resolve(obj))
	if got != "42" {
		t.Fatalf("got %q, want %q", got, "42")
	}
}

func TestStringFormatOnlyPercentSAndPercentPercent(t *testing.T) {
	pair := term.NewList(stringLiteral("%s is %s%%"), term.NewList(stringLiteral("disk"), stringLiteral("full")))
	obj := term.NewVariable("out")
	s, ok := runOnce(t, stringFormat, pair, obj)
	if !ok {
		t.Fatal("expected string:format to succeed")
	}
	got, _ := stringOf(s.Resolve(obj))
	if got != "disk is full%" {
		t.Fatalf("got %q, want %q", got, "disk is full%")
	}
}

func TestStringFormatFailsWithExtraArgs(t *testing.T) {
	pair := term.NewList(stringLiteral("%s"), term.NewList(stringLiteral("a"), stringLiteral("b")))
	obj := term.NewVariable("out")
	if _, ok := runOnce(t, stringFormat, pair, obj); ok {
		t.Fatal("expected string:format to fail when args outnumber template specifiers")
	}
}
