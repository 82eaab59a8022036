package builtins

var registry = map[string]Func{
	// math:
	NSMath + "greaterThan":      mathCompare(cmpGT),
	NSMath + "lessThan":         mathCompare(cmpLT),
	NSMath + "notLessThan":      mathCompare(cmpGE),
	NSMath + "notGreaterThan":   mathCompare(cmpLE),
	NSMath + "equalTo":          mathCompare(cmpEQ),
	NSMath + "notEqualTo":       mathCompare(cmpNE),
	NSMath + "sum":              mathSum,
	NSMath + "product":          mathProduct,
	NSMath + "difference":       mathDifference,
	NSMath + "quotient":         mathQuotient,
	NSMath + "integerQuotient":  mathIntegerQuotient,
	NSMath + "remainder":        mathRemainder,
	NSMath + "exponentiation":   mathExponentiation,
	NSMath + "absoluteValue":    mathAbsoluteValue,
	NSMath + "rounded":          mathRounded,
	NSMath + "negation":         mathNegation,
	NSMath + "degrees":          mathDegrees,
	NSMath + "sin":              mathTrig("sin"),
	NSMath + "cos":              mathTrig("cos"),
	NSMath + "tan":              mathTrig("tan"),
	NSMath + "asin":             mathTrig("asin"),
	NSMath + "acos":             mathTrig("acos"),
	NSMath + "atan":             mathTrig("atan"),
	NSMath + "sinh":             mathTrig("sinh"),
	NSMath + "cosh":             mathTrig("cosh"),
	NSMath + "tanh":             mathTrig("tanh"),
	NSMath + "asinh":            mathTrig("asinh"),
	NSMath + "acosh":            mathTrig("acosh"),
	NSMath + "atanh":            mathTrig("atanh"),

	// time:
	NSTime + "day":       timeComponent("day"),
	NSTime + "hour":      timeComponent("hour"),
	NSTime + "minute":    timeComponent("minute"),
	NSTime + "month":     timeComponent("month"),
	NSTime + "second":    timeComponent("second"),
	NSTime + "timeZone":  timeComponent("timeZone"),
	NSTime + "year":      timeComponent("year"),
	NSTime + "localTime": timeLocalTime,

	// list:
	NSList + "append":     listAppend,
	NSList + "first":      listFirst,
	NSList + "rest":       listRest,
	NSList + "last":       listLast,
	NSList + "length":     listLength,
	NSList + "member":     listMember,
	NSList + "in":         listIn,
	NSList + "memberAt":   listMemberAt,
	NSList + "iterate":    listIterate,
	NSList + "remove":     listRemove,
	NSList + "map":        listMap,
	NSList + "reverse":    listReverse,
	NSList + "sort":       listSort,
	NSList + "firstRest":  listFirstRest,
	NSList + "notMember":  listNotMember,
	NSRDF + "first":       listFirst,
	NSRDF + "rest":        listRest,

	// string:
	NSString + "concatenation":         stringConcatenation,
	NSString + "contains":              stringContains,
	NSString + "containsIgnoringCase":   stringContainsIgnoringCase,
	NSString + "endsWith":               stringEndsWith,
	NSString + "equalIgnoringCase":      stringEqualIgnoringCase,
	NSString + "notEqualIgnoringCase":   stringNotEqualIgnoringCase,
	NSString + "greaterThan":            stringCompare(cmpGT),
	NSString + "lessThan":               stringCompare(cmpLT),
	NSString + "notGreaterThan":         stringCompare(cmpLE),
	NSString + "notLessThan":            stringCompare(cmpGE),
	NSString + "matches":                stringMatches,
	NSString + "notMatches":             stringNotMatches,
	NSString + "replace":                stringReplace,
	NSString + "scrape":                 stringScrape,
	NSString + "format":                 stringFormat,
	NSString + "startsWith":              stringStartsWith,

	// crypto:
	NSCrypto + "sha":    cryptoDigest("sha1"),
	NSCrypto + "md5":    cryptoDigest("md5"),
	NSCrypto + "sha256": cryptoDigest("sha256"),
	NSCrypto + "sha512": cryptoDigest("sha512"),

	// log:
	NSLog + "equalTo":          logEqualTo,
	NSLog + "notEqualTo":       logNotEqualTo,
	NSLog + "conjunction":      logConjunction,
	NSLog + "conclusion":       logConclusion,
	NSLog + "content":          logContent,
	NSLog + "semantics":        logSemantics,
	NSLog + "semanticsOrError": logSemanticsOrError,
	NSLog + "parsedAsN3":       logParsedAsN3,
	NSLog + "rawType":          logRawType,
	NSLog + "dtlit":            logDtlit,
	NSLog + "langlit":          logLanglit,
	NSLog + "implies":          logImplies,
	NSLog + "impliedBy":        logImpliedBy,
	NSLog + "includes":         logIncludes,
	NSLog + "notIncludes":      logNotIncludes,
	NSLog + "collectAllIn":     logCollectAllIn,
	NSLog + "forAllIn":         logForAllIn,
	NSLog + "trace":            logTrace,
	NSLog + "outputString":     logOutputString,
	NSLog + "skolem":           logSkolem,
	NSLog + "uri":              logURI,
}

// satisfiabilityFallback lists the purely-functional math relations that
// succeed once with no bindings when both sides are unbound and no
// rotation progress is possible.
var satisfiabilityFallback = map[string]bool{
	NSMath + "sin": true, NSMath + "cos": true, NSMath + "tan": true,
	NSMath + "asin": true, NSMath + "acos": true, NSMath + "atan": true,
	NSMath + "sinh": true, NSMath + "cosh": true, NSMath + "tanh": true,
	NSMath + "asinh": true, NSMath + "acosh": true, NSMath + "atanh": true,
	NSMath + "degrees": true, NSMath + "negation": true,
}

// IsSatisfiabilityFallbackEligible reports whether iri is one of the
// relations the prover may succeed on vacuously.
func IsSatisfiabilityFallbackEligible(iri string) bool {
	return satisfiabilityFallback[iri]
}

// IsListBuiltinAlias reports whether iri is the rdf:first/rdf:rest pair
// that is only treated as a list builtin when its subject is a list
// term: callers must additionally confirm the subject is list-shaped (a
// List term or a resolvable rdf:first/rdf:rest chain) before
// dispatching, since otherwise these fall back to plain fact lookup.
func IsListBuiltinAlias(iri string) bool {
	return iri == NSRDF+"first" || iri == NSRDF+"rest"
}
