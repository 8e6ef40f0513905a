package carrot

import (
	"bytes"
	"errors"

	base58 "git.gammaspectra.live/P2Pool/monero-base58"

	"github.com/quietbit/enotes/crypto"
)

const (
	MainNetworkAddress       = 18
	IntegratedNetworkAddress = 19
	SubaddressNetworkAddress = 42
)

const addressChecksumSize = 4

var (
	ErrInvalidAddress         = errors.New("invalid address")
	ErrInvalidAddressType     = errors.New("invalid address type")
	ErrInvalidAddressChecksum = errors.New("invalid address checksum")
)

// DestinationV1 an outward-facing address record: the pair of public keys a
// sender needs, plus flags distinguishing the three encodings (primary,
// subaddress, integrated).
type DestinationV1 struct {
	// SpendPub K^j_s
	SpendPub crypto.PublicKeyBytes `json:"address_spend_pubkey"`
	// ViewPub K^j_v
	ViewPub crypto.PublicKeyBytes `json:"address_view_pubkey"`

	IsSubaddress bool `json:"is_subaddress,omitempty"`
	// PaymentId non-null only on integrated addresses
	PaymentId PaymentId `json:"payment_id,omitempty"`
}

// IsIntegrated carries an embedded payment id
func (d *DestinationV1) IsIntegrated() bool {
	return d.PaymentId != NullPaymentId
}

func (d *DestinationV1) networkTag() (uint8, error) {
	switch {
	case d.IsSubaddress && d.IsIntegrated():
		return 0, ErrInvalidAddressType
	case d.IsSubaddress:
		return SubaddressNetworkAddress, nil
	case d.IsIntegrated():
		return IntegratedNetworkAddress, nil
	default:
		return MainNetworkAddress, nil
	}
}

// ToBase58 tag || K^j_s || K^j_v [|| pid] || keccak checksum, Monero base58
func (d *DestinationV1) ToBase58() (string, error) {
	tag, err := d.networkTag()
	if err != nil {
		return "", err
	}

	raw := make([]byte, 0, 1+crypto.PublicKeySize*2+PaymentIdSize+addressChecksumSize)
	raw = append(raw, tag)
	raw = append(raw, d.SpendPub[:]...)
	raw = append(raw, d.ViewPub[:]...)
	if d.IsIntegrated() {
		raw = append(raw, d.PaymentId[:]...)
	}

	checksum := crypto.Keccak256Var(raw)
	raw = append(raw, checksum[:addressChecksumSize]...)

	buf := make([]byte, 0, len(raw)*2)
	return string(base58.EncodeMoneroBase58PreAllocated(buf, raw)), nil
}

// DestinationFromBase58 decodes and checksum-verifies an encoded address
func DestinationFromBase58(address string) (DestinationV1, error) {
	preAllocatedBuf := make([]byte, 0, len(address))
	raw := base58.DecodeMoneroBase58PreAllocated(preAllocatedBuf, []byte(address))

	const baseSize = 1 + crypto.PublicKeySize*2 + addressChecksumSize
	if len(raw) != baseSize && len(raw) != baseSize+PaymentIdSize {
		return DestinationV1{}, ErrInvalidAddress
	}

	body, checksum := raw[:len(raw)-addressChecksumSize], raw[len(raw)-addressChecksumSize:]
	expected := crypto.Keccak256Var(body)
	if !bytes.Equal(checksum, expected[:addressChecksumSize]) {
		return DestinationV1{}, ErrInvalidAddressChecksum
	}

	var d DestinationV1
	switch body[0] {
	case MainNetworkAddress:
	case SubaddressNetworkAddress:
		d.IsSubaddress = true
	case IntegratedNetworkAddress:
		if len(raw) != baseSize+PaymentIdSize {
			return DestinationV1{}, ErrInvalidAddress
		}
		copy(d.PaymentId[:], body[1+crypto.PublicKeySize*2:])
		if d.PaymentId == NullPaymentId {
			return DestinationV1{}, ErrInvalidAddress
		}
	default:
		return DestinationV1{}, ErrInvalidAddressType
	}
	if body[0] != IntegratedNetworkAddress && len(raw) != baseSize {
		return DestinationV1{}, ErrInvalidAddress
	}

	copy(d.SpendPub[:], body[1:])
	copy(d.ViewPub[:], body[1+crypto.PublicKeySize:])

	// reject non-canonical or small-order key material up front
	if d.SpendPub.Point() == nil || d.ViewPub.Point() == nil {
		return DestinationV1{}, ErrInvalidAddress
	}

	return d, nil
}
