package builtins

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"

	"github.com/eyereasoner/eyego/internal/subst"
	"github.com/eyereasoner/eyego/internal/term"
)

// cryptoDigest builds a crypto:<algo> builtin that hex-encodes the
// message digest of subject's string value.
func cryptoDigest(algo string) Func {
	return func(ctx *Ctx, subject, object term.Term, s *subst.Subst, emit Emit) {
		msg, ok := stringOf(resolve(s, subject))
		if !ok {
			return
		}
		var sum []byte
		switch algo {
		case "sha1":
			h := sha1.Sum([]byte(msg))
			sum = h[:]
		case "md5":
			h := md5.Sum([]byte(msg))
			sum = h[:]
		case "sha256":
			h := sha256.Sum256([]byte(msg))
			sum = h[:]
		case "sha512":
			h := sha512.Sum512([]byte(msg))
			sum = h[:]
		default:
			return
		}
		unifyEmit(s, object, stringLiteral(hex.EncodeToString(sum)), emit)
	}
}
