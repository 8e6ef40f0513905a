package carrot

import (
	"git.gammaspectra.live/P2Pool/edwards25519"

	"github.com/quietbit/enotes/crypto"
	"github.com/quietbit/enotes/types"
)

// ViewIncomingKeyDevice every operation scanning needs from the incoming view
// key k_v, without ever exposing the scalar itself. A hardware wallet can
// implement this boundary directly.
type ViewIncomingKeyDevice interface {
	// ViewKeyScalarMult k_v P
	ViewKeyScalarMult(dst *edwards25519.Point, p *edwards25519.Point) *edwards25519.Point
	// MakeJanusAnchorSpecial anchor_sp = H_16[k_v](D_e, input_context, Ko, K_s)
	MakeJanusAnchorSpecial(enoteEphemeralPubKey crypto.PublicKeyBytes, inputContext InputContext, oneTimeAddress, accountSpendPub crypto.PublicKeyBytes) JanusAnchor
}

// ViewBalanceSecretDevice every operation needed on the internal (self-send)
// path, keyed by the view-balance secret s_vb.
type ViewBalanceSecretDevice interface {
	// MakeInternalViewTag vt = H_3[s_vb](input_context, Ko)
	MakeInternalViewTag(inputContext InputContext, oneTimeAddress crypto.PublicKeyBytes) ViewTag
	// MakeInternalSenderReceiverSecret s^ctx_sr = H_32[s_vb](D_e, input_context)
	MakeInternalSenderReceiverSecret(enoteEphemeralPubKey crypto.PublicKeyBytes, inputContext InputContext) types.Hash
}

// InMemoryViewIncomingKeyDevice plain software implementation holding k_v
type InMemoryViewIncomingKeyDevice struct {
	viewIncomingKey *edwards25519.Scalar
}

func NewInMemoryViewIncomingKeyDevice(viewIncomingKey *edwards25519.Scalar) *InMemoryViewIncomingKeyDevice {
	return &InMemoryViewIncomingKeyDevice{viewIncomingKey: viewIncomingKey}
}

func (d *InMemoryViewIncomingKeyDevice) ViewKeyScalarMult(dst *edwards25519.Point, p *edwards25519.Point) *edwards25519.Point {
	return dst.ScalarMult(d.viewIncomingKey, p)
}

func (d *InMemoryViewIncomingKeyDevice) MakeJanusAnchorSpecial(enoteEphemeralPubKey crypto.PublicKeyBytes, inputContext InputContext, oneTimeAddress, accountSpendPub crypto.PublicKeyBytes) JanusAnchor {
	viewKey := crypto.PrivateKeyBytesFromScalar(d.viewIncomingKey)
	defer crypto.Wipe(viewKey[:])

	return makeJanusAnchorSpecial(viewKey[:], enoteEphemeralPubKey, inputContext, oneTimeAddress, accountSpendPub)
}

// InMemoryViewBalanceSecretDevice plain software implementation holding s_vb
type InMemoryViewBalanceSecretDevice struct {
	viewBalanceSecret types.Hash
}

func NewInMemoryViewBalanceSecretDevice(viewBalanceSecret types.Hash) *InMemoryViewBalanceSecretDevice {
	return &InMemoryViewBalanceSecretDevice{viewBalanceSecret: viewBalanceSecret}
}

func (d *InMemoryViewBalanceSecretDevice) MakeInternalViewTag(inputContext InputContext, oneTimeAddress crypto.PublicKeyBytes) (viewTag ViewTag) {
	HashedTranscript(
		viewTag[:], d.viewBalanceSecret[:],
		DomainSeparatorViewTag, inputContext[:], oneTimeAddress[:],
	)
	return viewTag
}

func (d *InMemoryViewBalanceSecretDevice) MakeInternalSenderReceiverSecret(enoteEphemeralPubKey crypto.PublicKeyBytes, inputContext InputContext) (secret types.Hash) {
	HashedTranscript(
		secret[:], d.viewBalanceSecret[:],
		DomainSeparatorSenderReceiverSecret, enoteEphemeralPubKey[:], inputContext[:],
	)
	return secret
}
