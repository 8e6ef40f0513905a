package crypto

import (
	"encoding/binary"

	"git.gammaspectra.live/P2Pool/edwards25519"
)

// AmountToScalar little-endian amount as a canonical scalar, always < l
func AmountToScalar(dst *edwards25519.Scalar, amount uint64) *edwards25519.Scalar {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[:], amount)
	_, _ = dst.SetCanonicalBytes(buf[:])
	return dst
}

// Commit generates C = mask*G + amount*H
//
// Runs in constant time with respect to mask and amount.
func Commit(dst *edwards25519.Point, amount uint64, mask *edwards25519.Scalar) *edwards25519.Point {
	var amountK edwards25519.Scalar
	dst.ScalarMult(AmountToScalar(&amountK, amount), GeneratorH.Point)
	return dst.Add(dst, new(edwards25519.Point).ScalarBaseMult(mask))
}

// CommitVarTime Commit without the constant time guarantee, for scanning
// already-public commitments
func CommitVarTime(dst *edwards25519.Point, amount uint64, mask *edwards25519.Scalar) *edwards25519.Point {
	var amountK edwards25519.Scalar
	return DoubleScalarBaseMultPrecomputed(dst, AmountToScalar(&amountK, amount), GeneratorH, mask)
}

var scalarOne = func() *edwards25519.Scalar {
	var buf [32]byte
	buf[0] = 1
	s, _ := new(edwards25519.Scalar).SetCanonicalBytes(buf[:])
	return s
}()

// ScalarOne the multiplicative identity, used as the fixed blinding factor of
// cleartext (coinbase) commitments
func ScalarOne() *edwards25519.Scalar {
	return new(edwards25519.Scalar).Set(scalarOne)
}

// CommitCoinbase C = G + amount*H, the implied commitment of a cleartext amount
func CommitCoinbase(dst *edwards25519.Point, amount uint64) *edwards25519.Point {
	var amountK edwards25519.Scalar
	dst.UnsafeVarTimeScalarMult(AmountToScalar(&amountK, amount), GeneratorH.Point)
	return dst.Add(dst, edwards25519.NewGeneratorPoint())
}
