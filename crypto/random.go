package crypto

import (
	"crypto/rand"

	"git.gammaspectra.live/P2Pool/edwards25519"
)

var zeroScalar = new(edwards25519.Scalar)

// RandomScalar uniform non-zero scalar via rejection sampling
func RandomScalar() *edwards25519.Scalar {
	var buf [32]byte
	defer Wipe(buf[:])
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			return nil
		}

		if !IsReduced32(buf) {
			continue
		}

		scalar, _ := new(edwards25519.Scalar).SetCanonicalBytes(buf[:])
		if scalar.Equal(zeroScalar) == 0 {
			return scalar
		}
	}
}

// RandomPublicKey a fresh x*G public key with the private key thrown away
func RandomPublicKey() (PublicKeyBytes, error) {
	scalar := RandomScalar()
	if scalar == nil {
		return ZeroPublicKeyBytes, ErrEntropy
	}
	defer WipeScalar(scalar)
	return PublicKeyBytesFromPoint(new(edwards25519.Point).ScalarBaseMult(scalar)), nil
}
