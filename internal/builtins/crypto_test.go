package builtins

import (
	"testing"

	"github.com/eyereasoner/eyego/internal/term"
)

func TestCryptoDigests(t *testing.T) {
	cases := []struct {
		algo string
		want string
	}{
		{"sha1", "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"},
		{"md5", "5d41402abc4b2a76b9719d911017c592"},
		{"sha256", "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"},
	}
	for _, c := range cases {
		obj := term.NewVariable("out")
		s, ok := runOnce(t, cryptoDigest(c.algo), stringLiteral("hello"), obj)
		if !ok {
			t.Fatalf("%s: expected digest to succeed", c.algo)
		}
		got, _ := stringOf(s.Resolve(obj))
		if got != c.want {
			t.Fatalf("%s: got %q, want %q", c.algo, got, c.want)
		}
	}
}
