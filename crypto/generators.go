package crypto

import (
	"git.gammaspectra.live/P2Pool/edwards25519"
)

type Generator struct {
	// Point The point used as Generator
	Point *edwards25519.Point
	// Table Precomputed table of Point to be used in VarTime Precomputed scalar point multiplication
	Table *edwards25519.PrecomputedTable
}

func newGenerator(point *edwards25519.Point) *Generator {
	return &Generator{
		Point: point,
		Table: edwards25519.PointTablePrecompute(point),
	}
}

// DoubleScalarBaseMultPrecomputed dst = a A + b G, variable time, with A's
// precomputed table
func DoubleScalarBaseMultPrecomputed(dst *edwards25519.Point, a *edwards25519.Scalar, generator *Generator, b *edwards25519.Scalar) *edwards25519.Point {
	dst.UnsafeVarTimeScalarMultPrecomputed(a, generator.Table)
	return dst.Add(dst, new(edwards25519.Point).UnsafeVarTimeScalarBaseMult(b))
}

var (
	// GeneratorG generator of 𝔾E
	// G = {x, 4/5 mod q}
	GeneratorG = newGenerator(edwards25519.NewGeneratorPoint())

	// GeneratorH H_p^1(G)
	// H = 8*to_point(keccak(G))
	// note: to_point(keccak(G)) is known to succeed for the canonical value of G (it will fail
	//       7/8ths of the time normally)
	//
	// Contrary to convention (`G` for values, `H` for randomness), `H` is used for amounts within
	// Pedersen commitments
	GeneratorH = newGenerator(HopefulHashToPoint(edwards25519.NewGeneratorPoint().Bytes()))

	// GeneratorT second independent base of onetime addresses, with unknown
	// discrete log relation to G. Blinds the spend-key component of output
	// keys away from the view-key component.
	GeneratorT = newGenerator(ForcedHashToPoint([]byte("quietbit enotes generator T")))
)
