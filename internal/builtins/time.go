package builtins

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	gotime "time"

	"github.com/eyereasoner/eyego/internal/subst"
	"github.com/eyereasoner/eyego/internal/term"
)

// parseXSDTemporal parses an xsd:dateTime or xsd:date lexical form into a
// time.Time, trying the layouts that actually occur in N3 test data
// (with or without a timezone offset, with or without fractional
// seconds).
func parseXSDTemporal(lex string) (gotime.Time, bool) {
	layouts := []string{
		gotime.RFC3339Nano,
		gotime.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := gotime.Parse(layout, lex); err == nil {
			return t, true
		}
	}
	return gotime.Time{}, false
}

// lexicalParts splits an xsd:dateTime lexical form into its textual
// components without any timezone normalization.
// Expected shape: YYYY-MM-DDTHH:MM:SS[.fff][Z|+HH:MM|-HH:MM]
type lexicalParts struct {
	year, month, day       string
	hour, minute, second   string
	timeZone               string
}

func splitLexicalDateTime(lex string) (lexicalParts, bool) {
	datePart, timePart, hasTime := strings.Cut(lex, "T")
	dateFields := strings.Split(datePart, "-")
	var p lexicalParts
	if len(dateFields) == 3 {
		p.year, p.month, p.day = dateFields[0], dateFields[1], dateFields[2]
	} else if len(dateFields) == 4 {
		// Negative (BCE) year produces a leading empty field from the
		// split on '-'.
		p.year, p.month, p.day = "-"+dateFields[1], dateFields[2], dateFields[3]
	} else {
		return p, false
	}
	if !hasTime {
		return p, true
	}
	tz := ""
	body := timePart
	for _, marker := range []string{"Z"} {
		if idx := strings.Index(body, marker); idx >= 0 {
			tz = body[idx:]
			body = body[:idx]
		}
	}
	if tz == "" {
		if idx := strings.LastIndexAny(body, "+-"); idx > 0 {
			tz = body[idx:]
			body = body[:idx]
		}
	}
	p.timeZone = tz
	hms := strings.Split(body, ":")
	if len(hms) >= 1 {
		p.hour = hms[0]
	}
	if len(hms) >= 2 {
		p.minute = hms[1]
	}
	if len(hms) >= 3 {
		p.second = hms[2]
	}
	return p, true
}

func timeComponent(which string) Func {
	return func(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
		t := resolve(s, subject)
		if !t.IsLiteral() {
			return
		}
		lex, _, _ := term.SplitLiteral(t.Lex())
		parts, ok := splitLexicalDateTime(lex)
		if !ok {
			return
		}
		var raw string
		switch which {
		case "year":
			raw = parts.year
		case "month":
			raw = parts.month
		case "day":
			raw = parts.day
		case "hour":
			raw = parts.hour
		case "minute":
			raw = parts.minute
		case "second":
			raw = parts.second
		case "timeZone":
			if parts.timeZone == "" {
				return
			}
			unifyEmit(s, object, stringLiteral(parts.timeZone), emit)
			return
		}
		if raw == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimPrefix(raw, "+"))
		if err != nil {
			return
		}
		unifyEmit(s, object, numericLiteral(term.NumericValue{Rat: big.NewRat(int64(n), 1)}, term.XSDInteger), emit)
	}
}

// timeLocalTime binds the object to "now" as xsd:dateTime, memoized per
// run via ctx.Now.
func timeLocalTime(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
	unifyEmit(s, object, ctx.Now(), emit)
}

// nowLiteral formats a time.Time as an xsd:dateTime literal, used by
// engine to implement ctx.Now.
func nowLiteral(t gotime.Time) term.Term {
	return term.NewLiteral(fmt.Sprintf(`"%s"^^<%s>`, t.Format(gotime.RFC3339), term.XSDDateTime))
}

// NowLiteral is exported so internal/engine can build the memoized "now"
// value without duplicating the datatype formatting rule.
var NowLiteral = nowLiteral
