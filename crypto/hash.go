package crypto

import (
	"encoding/binary"

	"git.gammaspectra.live/P2Pool/edwards25519"
	"git.gammaspectra.live/P2Pool/sha3"

	"github.com/quietbit/enotes/types"
)

func Keccak256Var[T ~string | ~[]byte](data ...T) (result types.Hash) {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		_, _ = h.Write([]byte(b))
	}
	h.Sum(result[:0])

	return
}

func Keccak256[T ~string | ~[]byte](data T) (result types.Hash) {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte(data))
	h.Sum(result[:0])

	return
}

// HopefulHashToPoint interpret keccak(data) directly as a compressed point,
// then clear the cofactor. This can fail (7/8ths of the time for random
// inputs), so it is only usable where the input is known to decode.
func HopefulHashToPoint(data []byte) *edwards25519.Point {
	result := DecodeCompressedPoint(new(edwards25519.Point), PublicKeyBytes(Keccak256(data)))
	if result == nil {
		return nil
	}

	// Ensure this point lies within the prime-order subgroup
	result.MultByCofactor(result)

	return result
}

// ForcedHashToPoint like HopefulHashToPoint, but appends an incrementing
// nonce to the preimage until the digest decodes to a usable point. Not
// constant time; only used to derive fixed public generators.
func ForcedHashToPoint(data []byte) *edwards25519.Point {
	var counter uint32
	var nonce [4]byte

	identity := edwards25519.NewIdentityPoint()

	for {
		h := Keccak256Var(data, nonce[:])
		if p := DecodeCompressedPoint(new(edwards25519.Point), PublicKeyBytes(h)); p != nil {
			p.MultByCofactor(p)
			if p.Equal(identity) == 0 {
				return p
			}
		}
		counter++
		binary.LittleEndian.PutUint32(nonce[:], counter)
	}
}
