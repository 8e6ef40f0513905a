package carrot

import (
	"encoding/binary"
	"errors"

	"git.gammaspectra.live/P2Pool/edwards25519"

	"github.com/quietbit/enotes/crypto"
	"github.com/quietbit/enotes/types"
)

// SubaddressIndex (j_major, j_minor). The zero index refers to the primary
// address.
type SubaddressIndex struct {
	Account uint32 `json:"account"`
	Offset  uint32 `json:"offset"`
}

func (i SubaddressIndex) IsZero() bool {
	return i == SubaddressIndex{}
}

func (i SubaddressIndex) bytes() (buf [8]byte) {
	binary.LittleEndian.PutUint32(buf[:], i.Account)
	binary.LittleEndian.PutUint32(buf[4:], i.Offset)
	return buf
}

// MakeProveSpendKey make_carrot_provespend_key
func MakeProveSpendKey(proveSpendOut *edwards25519.Scalar, masterSecret types.Hash) {
	// k_ps = H_n(s_m)
	ScalarTranscript(
		proveSpendOut, masterSecret[:],
		DomainSeparatorProveSpendKey,
	)
}

// MakeViewBalanceSecret make_carrot_viewbalance_secret
func MakeViewBalanceSecret(masterSecret types.Hash) (viewBalanceSecret types.Hash) {
	// s_vb = H_32(s_m)
	HashedTranscript(
		viewBalanceSecret[:], masterSecret[:],
		DomainSeparatorViewBalanceSecret,
	)
	return viewBalanceSecret
}

// MakeGenerateImageKey make_carrot_generateimage_key
func MakeGenerateImageKey(generateImageOut *edwards25519.Scalar, viewBalanceSecret types.Hash) {
	// k_gi = H_n(s_vb)
	ScalarTranscript(
		generateImageOut, viewBalanceSecret[:],
		DomainSeparatorGenerateImageKey,
	)
}

// MakeViewIncomingKey make_carrot_viewincoming_key
func MakeViewIncomingKey(viewIncomingOut *edwards25519.Scalar, viewBalanceSecret types.Hash) {
	// k_v = H_n(s_vb)
	ScalarTranscript(
		viewIncomingOut, viewBalanceSecret[:],
		DomainSeparatorIncomingViewKey,
	)
}

// MakeGenerateAddressSecret make_carrot_generateaddress_secret
func MakeGenerateAddressSecret(viewBalanceSecret types.Hash) (generateAddressSecret types.Hash) {
	// s_ga = H_32(s_vb)
	HashedTranscript(
		generateAddressSecret[:], viewBalanceSecret[:],
		DomainSeparatorGenerateAddressSecret,
	)
	return generateAddressSecret
}

// MakeSpendPub make_carrot_spend_pubkey
func MakeSpendPub(generateImage, proveSpend *edwards25519.Scalar) crypto.PublicKeyBytes {
	// K_s = k_gi G + k_ps T
	p := crypto.DoubleScalarBaseMultPrecomputed(new(edwards25519.Point), proveSpend, crypto.GeneratorT, generateImage)
	return crypto.PublicKeyBytesFromPoint(p)
}

// MakePrimaryAddressViewPub make_carrot_primary_address_view_pubkey
func MakePrimaryAddressViewPub(viewIncoming *edwards25519.Scalar) crypto.PublicKeyBytes {
	// K^0_v = k_v G
	p := new(edwards25519.Point).UnsafeVarTimeScalarBaseMult(viewIncoming)
	return crypto.PublicKeyBytesFromPoint(p)
}

// AccountSecrets the full secret hierarchy of one account, derived from a
// single master secret:
//
//	s_m -> k_ps, s_vb; s_vb -> k_gi, k_v, s_ga; K_s = k_gi G + k_ps T
//
// Holders of only some of these keys get reduced capabilities (view-only,
// address generation) without spend authority.
type AccountSecrets struct {
	// ProveSpend k_ps, spend authority over the T component
	ProveSpend *edwards25519.Scalar
	// ViewBalance s_vb, full balance viewing incl. internal enotes
	ViewBalance types.Hash
	// GenerateImage k_gi, key image generation
	GenerateImage *edwards25519.Scalar
	// ViewIncoming k_v, external incoming viewing
	ViewIncoming *edwards25519.Scalar
	// GenerateAddress s_ga, subaddress enumeration
	GenerateAddress types.Hash

	// SpendPub K_s
	SpendPub crypto.PublicKeyBytes
}

func MakeAccountSecrets(masterSecret types.Hash) *AccountSecrets {
	a := &AccountSecrets{
		ProveSpend:    new(edwards25519.Scalar),
		GenerateImage: new(edwards25519.Scalar),
		ViewIncoming:  new(edwards25519.Scalar),
	}
	MakeProveSpendKey(a.ProveSpend, masterSecret)
	a.ViewBalance = MakeViewBalanceSecret(masterSecret)
	MakeGenerateImageKey(a.GenerateImage, a.ViewBalance)
	MakeViewIncomingKey(a.ViewIncoming, a.ViewBalance)
	a.GenerateAddress = MakeGenerateAddressSecret(a.ViewBalance)
	a.SpendPub = MakeSpendPub(a.GenerateImage, a.ProveSpend)
	return a
}

// makeIndexExtensionGenerator make_carrot_index_extension_generator
func makeIndexExtensionGenerator(generateAddressSecret types.Hash, i SubaddressIndex) (addressIndexGeneratorSecret types.Hash) {
	// s^j_gen = H_32[s_ga](j_major, j_minor)
	buf := i.bytes()
	HashedTranscript(
		addressIndexGeneratorSecret[:], generateAddressSecret[:],
		DomainSeparatorAddressIndexGenerator, buf[:],
	)
	return addressIndexGeneratorSecret
}

// makeSubaddressScalar make_carrot_subaddress_scalar
func makeSubaddressScalar(subaddressScalarOut *edwards25519.Scalar, spendPub crypto.PublicKeyBytes, addressIndexGeneratorSecret types.Hash, i SubaddressIndex) {
	// k^j_subscal = H_n[s^j_gen](K_s, j_major, j_minor)
	buf := i.bytes()
	ScalarTranscript(
		subaddressScalarOut, addressIndexGeneratorSecret[:],
		DomainSeparatorSubaddressScalar, spendPub[:], buf[:],
	)
}

// SubaddressScalar k^j_subscal for a non-zero index
func (a *AccountSecrets) SubaddressScalar(i SubaddressIndex) *edwards25519.Scalar {
	indexGenerator := makeIndexExtensionGenerator(a.GenerateAddress, i)
	defer crypto.Wipe(indexGenerator[:])

	subaddressScalar := new(edwards25519.Scalar)
	makeSubaddressScalar(subaddressScalar, a.SpendPub, indexGenerator, i)
	return subaddressScalar
}

// SubaddressSpendPub K^j_s = K_s + k^j_subscal G; K^0_s = K_s
func (a *AccountSecrets) SubaddressSpendPub(i SubaddressIndex) crypto.PublicKeyBytes {
	if i.IsZero() {
		return a.SpendPub
	}

	subaddressScalar := a.SubaddressScalar(i)
	defer crypto.WipeScalar(subaddressScalar)

	spendPub := a.SpendPub.Point()
	ext := new(edwards25519.Point).UnsafeVarTimeScalarBaseMult(subaddressScalar)
	return crypto.PublicKeyBytesFromPoint(ext.Add(ext, spendPub))
}

// AddressViewPub K^0_v = k_v G for the primary address, K^j_v = k_v K^j_s
// for subaddresses
func (a *AccountSecrets) AddressViewPub(i SubaddressIndex) crypto.PublicKeyBytes {
	if i.IsZero() {
		return MakePrimaryAddressViewPub(a.ViewIncoming)
	}

	spendPub := a.SubaddressSpendPub(i).Point()
	p := new(edwards25519.Point).UnsafeVarTimeScalarMult(a.ViewIncoming, spendPub)
	return crypto.PublicKeyBytesFromPoint(p)
}

var ErrIntegratedSubaddress = errors.New("a subaddress index cannot carry a payment id")

// Destination the outward-facing address record of the given index,
// optionally integrated with a payment id (primary index only)
func (a *AccountSecrets) Destination(i SubaddressIndex, paymentId PaymentId) (DestinationV1, error) {
	if !i.IsZero() && paymentId != NullPaymentId {
		return DestinationV1{}, ErrIntegratedSubaddress
	}

	return DestinationV1{
		SpendPub:     a.SubaddressSpendPub(i),
		ViewPub:      a.AddressViewPub(i),
		IsSubaddress: !i.IsZero(),
		PaymentId:    paymentId,
	}, nil
}
