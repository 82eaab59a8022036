// Package deref implements the dereferencing collaborator: synchronous
// fetch-and-parse for log:content, log:semantics, log:semanticsOrError,
// and log:parsedAsN3, with a process-wide cache by IRI. Dereferencing
// is the only blocking point in a run, so fetches are plain blocking
// client calls with no goroutine pool behind them.
package deref

import (
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/eyereasoner/eyego/internal/term"
)

// acceptHeader asks for N3-family media types, tolerating plain text
// and anything else at low q.
const acceptHeader = "text/n3, text/turtle, application/n-triples, application/n-quads, text/plain;q=0.1, */*;q=0.01"

const maxRedirects = 10

// N3Parser is the subset of the parser collaborator's contract the
// dereferencer needs: turn raw text into triples.
type N3Parser interface {
	Parse(text string) ([]term.Triple, error)
}

// Cache implements builtins.Dereferencer with a per-IRI memo: a
// failed fetch or parse caches a negative result, exactly like a
// successful one, so repeated queries against the same broken IRI do not
// re-fetch.
type Cache struct {
	client *http.Client
	parser N3Parser
	log    hclog.Logger

	mu      sync.Mutex
	content map[string]contentEntry
	sem     map[string]semanticsEntry
}

type contentEntry struct {
	text string
	ok   bool
}

type semanticsEntry struct {
	triples []term.Triple
	ok      bool
}

// New returns a Cache backed by an HTTP client with the given timeout-free
// default transport (the CLI may wrap client with its own timeout) and
// parser collaborator.
func New(client *http.Client, parser N3Parser) *Cache {
	if client == nil {
		// Redirects are followed manually in fetchHTTP so the 10-hop
		// cap applies; a fetch returns at its first failed hop.
		client = &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	return &Cache{
		client:  client,
		parser:  parser,
		log:     hclog.Default().Named("deref"),
		content: make(map[string]contentEntry),
		sem:     make(map[string]semanticsEntry),
	}
}

// SetLogger overrides the default hclog.Default()-derived logger,
// letting a caller route dereference tracing through the same logger
// the rest of a run uses.
func (c *Cache) SetLogger(log hclog.Logger) {
	if log != nil {
		c.log = log.Named("deref")
	}
}

func cacheKey(iri string) string {
	if idx := strings.IndexByte(iri, '#'); idx >= 0 {
		return iri[:idx]
	}
	return iri
}

// Content implements log:content.
func (c *Cache) Content(iri string, enforceHTTPS bool) (string, bool) {
	key := cacheKey(iri)
	c.mu.Lock()
	if e, ok := c.content[key]; ok {
		c.mu.Unlock()
		return e.text, e.ok
	}
	c.mu.Unlock()

	text, err := c.fetch(key, enforceHTTPS)
	ok := err == nil
	if err != nil {
		c.log.Debug("dereference failed", "iri", key, "error", err)
	}
	c.mu.Lock()
	c.content[key] = contentEntry{text: text, ok: ok}
	c.mu.Unlock()
	return text, ok
}

// Semantics implements log:semantics.
func (c *Cache) Semantics(iri string, enforceHTTPS bool) ([]term.Triple, bool) {
	key := cacheKey(iri)
	c.mu.Lock()
	if e, ok := c.sem[key]; ok {
		c.mu.Unlock()
		return e.triples, e.ok
	}
	c.mu.Unlock()

	triples, ok := c.fetchAndParse(key, enforceHTTPS)
	c.mu.Lock()
	c.sem[key] = semanticsEntry{triples: triples, ok: ok}
	c.mu.Unlock()
	return triples, ok
}

// SemanticsOrError implements log:semanticsOrError: like
// Semantics, but the caller gets an error string literal instead of a
// bare failure signal.
func (c *Cache) SemanticsOrError(iri string, enforceHTTPS bool) ([]term.Triple, string, bool) {
	triples, ok := c.Semantics(iri, enforceHTTPS)
	if ok {
		return triples, "", true
	}
	return nil, "dereference failed: " + iri, false
}

// ParseN3 implements log:parsedAsN3: parse standalone text with no
// fetch.
func (c *Cache) ParseN3(text string) ([]term.Triple, bool) {
	if c.parser == nil {
		return nil, false
	}
	triples, err := c.parser.Parse(text)
	if err != nil {
		return nil, false
	}
	return triples, true
}

func (c *Cache) fetchAndParse(iri string, enforceHTTPS bool) ([]term.Triple, bool) {
	text, err := c.fetch(iri, enforceHTTPS)
	if err != nil {
		c.log.Debug("dereference failed", "iri", iri, "error", err)
		return nil, false
	}
	if c.parser == nil {
		return nil, false
	}
	triples, err := c.parser.Parse(text)
	if err != nil {
		c.log.Debug("parse of dereferenced content failed", "iri", iri, "error", err)
		return nil, false
	}
	return triples, true
}

// fetch performs the synchronous text/file retrieval: an HTTP(S) GET
// following up to 10 redirects and accepting the negotiated content
// types with gzip/deflate/br decompression, a file:// read, or a plain
// local path read for any other scheme.
func (c *Cache) fetch(iri string, enforceHTTPS bool) (string, error) {
	u, err := url.Parse(iri)
	if err != nil {
		return "", fmt.Errorf("deref: invalid IRI %q: %w", iri, err)
	}

	switch u.Scheme {
	case "http", "https":
		if enforceHTTPS && u.Scheme == "http" {
			u.Scheme = "https"
		}
		return c.fetchHTTP(u.String())
	case "file":
		return readLocal(u.Path)
	default:
		return readLocal(iri)
	}
}

func readLocal(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("deref: reading %s: %w", path, err)
	}
	return string(b), nil
}

func (c *Cache) fetchHTTP(target string) (string, error) {
	var merr *multierror.Error
	for redirects := 0; redirects <= maxRedirects; redirects++ {
		req, err := http.NewRequest(http.MethodGet, target, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("Accept", acceptHeader)
		req.Header.Set("Accept-Encoding", "gzip, deflate, br")

		resp, err := c.client.Do(req)
		if err != nil {
			return "", multierror.Append(merr, err).ErrorOrNil()
		}

		if loc := resp.Header.Get("Location"); loc != "" && isRedirectStatus(resp.StatusCode) {
			resp.Body.Close()
			next, err := resp.Request.URL.Parse(loc)
			if err != nil {
				return "", fmt.Errorf("deref: bad redirect Location %q: %w", loc, err)
			}
			target = next.String()
			continue
		}

		body, err := decodeBody(resp)
		resp.Body.Close()
		if err != nil {
			return "", err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return "", fmt.Errorf("deref: %s returned status %d", target, resp.StatusCode)
		}
		return string(body), nil
	}
	return "", fmt.Errorf("deref: too many redirects fetching %s", target)
}

func isRedirectStatus(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}

func decodeBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("deref: gzip decode: %w", err)
		}
		defer gz.Close()
		r = gz
	case "deflate":
		r = flate.NewReader(resp.Body)
	case "br":
		r = brotli.NewReader(resp.Body)
	}
	return io.ReadAll(r)
}
