package crypto

import (
	"errors"
	"runtime"

	"git.gammaspectra.live/P2Pool/edwards25519"
)

var ErrEntropy = errors.New("system entropy source failed")

// Wipe zeroes an ephemeral secret. Deferred at acquisition so the buffer is
// cleared on every exit path, including early rejections.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// WipeScalar overwrites scalar state with zero
func WipeScalar(s *edwards25519.Scalar) {
	var zero [64]byte
	_, _ = s.SetUniformBytes(zero[:])
	runtime.KeepAlive(s)
}
