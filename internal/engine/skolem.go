package engine

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"strconv"

	"github.com/google/uuid"

	"github.com/eyereasoner/eyego/internal/term"
)

// SkolemNamespace is the well-known genid namespace Skolem IRIs are
// minted under.
const SkolemNamespace = "https://eyereasoner.github.io/.well-known/genid/"

// skolemizer mints the two kinds of existentials the engine needs:
//
//   - per-firing head-blank labels ("_:sk_<n>"), memoized so that
//     re-firing the same rule on the same instantiated body reuses the
//     same blank;
//   - Skolem IRIs for the log:skolem builtin, stable within a run and
//     keyed off a canonical encoding of the subject term.
//
// Caches are cleared and a fresh run salt drawn at the top-level
// forward-chaining entry point, matching Reset below.
type skolemizer struct {
	blankMemo map[string]string
	blankSeq  int

	iriMemo map[string]term.Term

	salt           uint64
	deterministic  bool
}

func newSkolemizer(deterministic bool) *skolemizer {
	sk := &skolemizer{
		blankMemo:     make(map[string]string),
		iriMemo:       make(map[string]term.Term),
		deterministic: deterministic,
	}
	if !deterministic {
		sk.salt = randomSalt()
	}
	return sk
}

func randomSalt() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failure on a sane platform is not expected; fall
		// back to a fixed salt rather than panicking mid-run.
		return 0x9e3779b97f4a7c15
	}
	return binary.LittleEndian.Uint64(b[:])
}

// Reset clears per-run Skolem caches and (unless deterministic) draws a
// fresh salt.
func (sk *skolemizer) Reset() {
	sk.blankMemo = make(map[string]string)
	sk.iriMemo = make(map[string]term.Term)
	sk.blankSeq = 0
	if !sk.deterministic {
		sk.salt = randomSalt()
	}
}

// HeadBlank returns the stable blank label to substitute for a rule-head
// existential with source label, for the given firing key (derived from
// the rule identity and the instantiated body). Repeated calls with the
// same (firingKey, label) pair return the same blank; new combinations
// mint a fresh "_:sk_<n>".
func (sk *skolemizer) HeadBlank(firingKey, label string) term.Term {
	memoKey := firingKey + "\x00" + label
	if b, ok := sk.blankMemo[memoKey]; ok {
		return term.NewBlank(b)
	}
	sk.blankSeq++
	name := "sk_" + strconv.Itoa(sk.blankSeq)
	sk.blankMemo[memoKey] = name
	return term.NewBlank(name)
}

// SkolemIRI implements log:skolem: a Skolem IRI stable within a
// run, bound to a canonical key of the subject. The deterministic key
// is an FNV-1a-style 128-bit mix of the subject's canonical encoding;
// under non-deterministic mode the mix additionally folds in the run
// salt so independent runs diverge.
func (sk *skolemizer) SkolemIRI(subject term.Term) term.Term {
	canon := subject.DedupKey()
	if v, ok := sk.iriMemo[canon]; ok {
		return v
	}
	digest := fnv128(canon, sk.salt)
	iri := term.NewIRI(SkolemNamespace + uuidFormat(digest))
	sk.iriMemo[canon] = iri
	return iri
}

// fnv128 mixes s through two independent FNV-1a 64-bit hashes (seeded
// differently, and with salt folded into the second) to produce a
// 128-bit digest, giving an FNV-1a-style 128-bit mix
// without pulling in a dedicated 128-bit hash implementation.
func fnv128(s string, salt uint64) [16]byte {
	h1 := fnv.New64a()
	h1.Write([]byte(s))
	lo := h1.Sum64()

	h2 := fnv.New64a()
	h2.Write([]byte(s))
	var saltBuf [8]byte
	binary.LittleEndian.PutUint64(saltBuf[:], salt)
	h2.Write(saltBuf[:])
	h2.Write([]byte{0x01})
	hi := h2.Sum64()

	var out [16]byte
	binary.BigEndian.PutUint64(out[0:8], hi)
	binary.BigEndian.PutUint64(out[8:16], lo)
	return out
}

// uuidFormat renders a 128-bit digest as a UUID-formatted (8-4-4-4-12
// hex) identifier: google/uuid.FromBytes takes the 16 digest bytes and
// the hyphenated string is formatted here (this is not a random or
// name-based UUID, just
// a stable reinterpretation of our own digest bytes as one).
func uuidFormat(digest [16]byte) string {
	id, err := uuid.FromBytes(digest[:])
	if err != nil {
		// uuid.FromBytes only fails on wrong-length input.
		return hex.EncodeToString(digest[:])
	}
	return fmt.Sprintf("%x-%x-%x-%x-%x", id[0:4], id[4:6], id[6:8], id[8:10], id[10:16])
}
