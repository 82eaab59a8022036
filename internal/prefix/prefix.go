// Package prefix implements the N3 prefix/base environment: QName
// expansion while parsing, and safe-local shrinking for output.
package prefix

import "strings"

// Env holds the @base IRI and the @prefix → namespace map accumulated
// while parsing a document.
type Env struct {
	Base     string
	prefixes map[string]string
	// order preserves first-seen declaration order, used when printing a
	// prefix header.
	order []string
}

// New returns an empty prefix environment.
func New() *Env {
	return &Env{prefixes: make(map[string]string)}
}

// SetBase sets (or replaces) the @base IRI.
func (e *Env) SetBase(iri string) {
	e.Base = iri
}

// Declare registers a prefix -> namespace binding. Re-declaring a prefix
// overwrites its namespace but keeps its original position in Order().
func (e *Env) Declare(p, ns string) {
	if _, exists := e.prefixes[p]; !exists {
		e.order = append(e.order, p)
	}
	e.prefixes[p] = ns
}

// Namespace returns the namespace bound to prefix p, if any.
func (e *Env) Namespace(p string) (string, bool) {
	ns, ok := e.prefixes[p]
	return ns, ok
}

// Order returns declared prefixes in first-declared order.
func (e *Env) Order() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Expand resolves a QName "prefix:local" to an absolute IRI using the
// declared namespaces. ok is false if the prefix is undeclared.
func (e *Env) Expand(qname string) (string, bool) {
	idx := strings.IndexByte(qname, ':')
	if idx < 0 {
		return "", false
	}
	p, local := qname[:idx], qname[idx+1:]
	ns, ok := e.prefixes[p]
	if !ok {
		return "", false
	}
	return ns + local, true
}

// ResolveRelative resolves a possibly-relative IRI reference against Base,
// using the same simple merge rule RFC 3986 defines for relative
// references with no scheme: if ref already has a scheme (contains "://"
// or matches "scheme:" generally), it's returned unchanged.
func (e *Env) ResolveRelative(ref string) string {
	if hasScheme(ref) || e.Base == "" {
		return ref
	}
	switch {
	case strings.HasPrefix(ref, "#"):
		return strings.TrimRight(baseWithoutFragment(e.Base), "#") + ref
	case strings.HasPrefix(ref, "/"):
		return schemeAndAuthority(e.Base) + ref
	default:
		return dirOf(e.Base) + ref
	}
}

func hasScheme(s string) bool {
	idx := strings.IndexByte(s, ':')
	if idx <= 0 {
		return false
	}
	for _, r := range s[:idx] {
		if !(r == '+' || r == '-' || r == '.' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

func baseWithoutFragment(base string) string {
	if idx := strings.IndexByte(base, '#'); idx >= 0 {
		return base[:idx]
	}
	return base
}

func schemeAndAuthority(base string) string {
	idx := strings.Index(base, "://")
	if idx < 0 {
		return base
	}
	rest := base[idx+3:]
	if slash := strings.IndexByte(rest, '/'); slash >= 0 {
		return base[:idx+3+slash]
	}
	return base
}

func dirOf(base string) string {
	base = baseWithoutFragment(base)
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		return base[:idx+1]
	}
	return base + "/"
}

// Shrink finds a "prefix:local" form for iri if some declared namespace
// is a prefix of it and the remaining local part is a safe PN_LOCAL
// (i.e. contains no characters that would require percent-style
// escaping in N3's unquoted QName grammar). Used by the printer to emit
// compact output; returns ok=false when no safe shrink exists, in which
// case the full <iri> form should be used.
func (e *Env) Shrink(iri string) (qname string, ok bool) {
	bestPrefix, bestNS := "", ""
	for p, ns := range e.prefixes {
		if strings.HasPrefix(iri, ns) && len(ns) > len(bestNS) {
			bestPrefix, bestNS = p, ns
		}
	}
	if bestNS == "" {
		return "", false
	}
	local := iri[len(bestNS):]
	if local == "" || !isSafeLocal(local) {
		return "", false
	}
	return bestPrefix + ":" + local, true
}

func isSafeLocal(local string) bool {
	for i, r := range local {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '-':
		case r == '.' && i != 0 && i != len(local)-1:
		default:
			return false
		}
	}
	return true
}
