package crypto

import (
	"crypto/subtle"
	"errors"
	"runtime"
	"unsafe"

	"git.gammaspectra.live/P2Pool/edwards25519"
	fasthex "github.com/tmthrgd/go-hex"
)

const PublicKeySize = 32
const PrivateKeySize = 32

// PublicKeyBytes compressed Ed25519 point encoding. Also used for key images
// and Pedersen commitments, which share the wire representation.
//
//nolint:recvcheck
type PublicKeyBytes [PublicKeySize]byte

// PrivateKeyBytes canonical little-endian scalar encoding.
//
//nolint:recvcheck
type PrivateKeyBytes [PrivateKeySize]byte

var ZeroPublicKeyBytes PublicKeyBytes
var ZeroPrivateKeyBytes PrivateKeyBytes

var ErrInvalidPoint = errors.New("invalid point encoding")
var ErrInvalidScalar = errors.New("invalid scalar encoding")

func (k PublicKeyBytes) AsSlice() []byte {
	return k[:]
}

func (k PublicKeyBytes) String() string {
	return fasthex.EncodeToString(k[:])
}

func (k PublicKeyBytes) MarshalJSON() ([]byte, error) {
	var buf [PublicKeySize*2 + 2]byte
	buf[0] = '"'
	buf[PublicKeySize*2+1] = '"'
	fasthex.Encode(buf[1:], k[:])
	return buf[:], nil
}

func (k *PublicKeyBytes) UnmarshalJSON(b []byte) error {
	if len(b) != PublicKeySize*2+2 || b[0] != '"' || b[len(b)-1] != '"' {
		return errors.New("wrong public key size")
	}
	if _, err := fasthex.Decode(k[:], b[1:len(b)-1]); err != nil {
		return err
	}
	return nil
}

// Point decodes the compressed encoding. Returns nil on a non-canonical or
// invalid encoding.
func (k PublicKeyBytes) Point() *edwards25519.Point {
	return DecodeCompressedPoint(new(edwards25519.Point), k)
}

func (k PrivateKeyBytes) AsSlice() []byte {
	return k[:]
}

func (k PrivateKeyBytes) String() string {
	return fasthex.EncodeToString(k[:])
}

func (k PrivateKeyBytes) MarshalJSON() ([]byte, error) {
	var buf [PrivateKeySize*2 + 2]byte
	buf[0] = '"'
	buf[PrivateKeySize*2+1] = '"'
	fasthex.Encode(buf[1:], k[:])
	return buf[:], nil
}

func (k *PrivateKeyBytes) UnmarshalJSON(b []byte) error {
	if len(b) != PrivateKeySize*2+2 || b[0] != '"' || b[len(b)-1] != '"' {
		return errors.New("wrong private key size")
	}
	if _, err := fasthex.Decode(k[:], b[1:len(b)-1]); err != nil {
		return err
	}
	return nil
}

// Scalar decodes the canonical encoding. Returns nil if the value is not
// reduced mod l.
func (k PrivateKeyBytes) Scalar() *edwards25519.Scalar {
	s, err := new(edwards25519.Scalar).SetCanonicalBytes(k[:])
	if err != nil {
		return nil
	}
	return s
}

func PublicKeyBytesFromPoint(p *edwards25519.Point) (k PublicKeyBytes) {
	copy(k[:], p.Bytes())
	return k
}

func PrivateKeyBytesFromScalar(s *edwards25519.Scalar) (k PrivateKeyBytes) {
	copy(k[:], s.Bytes())
	return k
}

// DecodeCompressedPoint Decompress a canonically-encoded Ed25519 point.
//
// Ed25519 is of order `8 * l`. This function ensures each of those `8 * l` points have a
// singular encoding by checking points aren't encoded with an unreduced field element,
// and aren't negative when the negative is equivalent (0 == -0).
//
// Since this decodes an Ed25519 point, it does not check the point is in the prime-order
// subgroup.
func DecodeCompressedPoint(r *edwards25519.Point, buf PublicKeyBytes) *edwards25519.Point {
	if r == nil {
		return nil
	}
	p, err := r.SetBytes(buf[:])
	if err != nil {
		return nil
	}

	// Ban points which are either unreduced or -0
	if subtle.ConstantTimeCompare(p.Bytes(), buf[:]) == 0 {
		return nil
	}
	return p
}

// BytesToScalar64 wide reduction of 64 uniform bytes mod l
func BytesToScalar64(buf [64]byte, dst *edwards25519.Scalar) {
	_, _ = dst.SetUniformBytes(buf[:])
}

// l = 2^252 + 27742317777372353535851937790883648493.
var l = [32]byte{0xe3, 0x6a, 0x67, 0x72, 0x8b, 0xce, 0x13, 0x29, 0x8f, 0x30, 0x82, 0x8c, 0x0b, 0xa4, 0x10, 0x39, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10}

func IsReduced32(a [32]byte) bool {
	for n := 31; n >= 0; n-- {
		if a[n] < l[n] {
			return true
		} else if a[n] > l[n] {
			return false
		}
	}

	return false
}

// CompareConsensusPublicKeyBytes Compares public keys in a special consensus specific way
func CompareConsensusPublicKeyBytes(a, b *PublicKeyBytes) int {
	aUint64 := (*[PublicKeySize / 8]uint64)(unsafe.Pointer(a))
	bUint64 := (*[PublicKeySize / 8]uint64)(unsafe.Pointer(b))

	for n := 3; n >= 0; n-- {
		if aUint64[n] < bUint64[n] {
			return -1
		}
		if aUint64[n] > bUint64[n] {
			return 1
		}
	}

	//golang might free a/b otherwise
	runtime.KeepAlive(aUint64)
	runtime.KeepAlive(bUint64)
	return 0
}
