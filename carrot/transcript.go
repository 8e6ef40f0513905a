package carrot

import (
	"io"

	"git.gammaspectra.live/P2Pool/edwards25519"
	"golang.org/x/crypto/blake2b"

	"github.com/quietbit/enotes/crypto"
)

// HashedTranscript H_b[key](FixedTranscript(domainSeparator, args...))
//
// Output length is len(dst). The domain separator is length-prefixed so that
// no two separators can collide by concatenation.
func HashedTranscript(dst []byte, key []byte, domainSeparator string, args ...[]byte) {
	hasher, err := blake2b.New(len(dst), key)
	if err != nil {
		// only reachable with an out-of-range dst or key length, which is a
		// caller bug
		panic(err)
	}

	_, _ = hasher.Write([]byte{uint8(len(domainSeparator))})
	_, _ = io.WriteString(hasher, domainSeparator)
	for _, b := range args {
		_, _ = hasher.Write(b)
	}

	hasher.Sum(dst[:0])
}

// ScalarTranscript H_n[key](FixedTranscript(domainSeparator, args...)):
// 64 transcript bytes wide-reduced mod l
func ScalarTranscript(dst *edwards25519.Scalar, key []byte, domainSeparator string, args ...[]byte) {
	var h [blake2b.Size]byte
	HashedTranscript(h[:], key, domainSeparator, args...)

	crypto.BytesToScalar64(h, dst)
	crypto.Wipe(h[:])
}
