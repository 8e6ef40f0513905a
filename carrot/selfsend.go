package carrot

import (
	"errors"

	"git.gammaspectra.live/P2Pool/edwards25519"

	"github.com/quietbit/enotes/crypto"
	"github.com/quietbit/enotes/types"
)

var ErrMissingEphemeralPubKey = errors.New("self-send proposal has no enote ephemeral pubkey")

// PaymentProposalSelfSendV1 a payment back to one of the wallet's own
// addresses (change, or an explicit self-transfer). Unlike PaymentProposalV1
// the ephemeral pubkey D_e is assigned externally: in 2-output transactions
// it is shared with the outgoing enote, otherwise it is fresh.
type PaymentProposalSelfSendV1 struct {
	// DestinationSpendPub K^j_s of the receiving own address
	DestinationSpendPub crypto.PublicKeyBytes `json:"destination_address_spend_pubkey"`
	Amount              uint64                `json:"amount"`
	EnoteType           EnoteType             `json:"enote_type"`

	// EnoteEphemeralPubKey D_e. Zero until output set finalization assigns one.
	EnoteEphemeralPubKey crypto.PublicKeyBytes `json:"enote_ephemeral_pubkey,omitempty"`

	// InternalMessage optional 16-byte plaintext carried in the anchor slot of
	// internal enotes, readable only by the wallet itself. Zero means a random
	// anchor is used instead.
	InternalMessage JanusAnchor `json:"internal_message,omitempty"`
}

// selfSendOutput shared tail of the special and internal paths: everything
// past the sender-receiver secret is identical.
func (p *PaymentProposalSelfSendV1) selfSendOutput(secret types.Hash, viewTag func(oneTimeAddress crypto.PublicKeyBytes) ViewTag, anchor func(proposal *RCTOutputEnoteProposal) (JanusAnchor, error)) (proposal RCTOutputEnoteProposal, err error) {
	spendPub := p.DestinationSpendPub.Point()
	if spendPub == nil {
		return proposal, crypto.ErrInvalidPoint
	}

	var blindingFactor edwards25519.Scalar
	makeAmountBlindingFactor(&blindingFactor, secret, p.Amount, p.DestinationSpendPub, p.EnoteType)

	var commitment edwards25519.Point
	crypto.Commit(&commitment, p.Amount, &blindingFactor)
	proposal.Enote.AmountCommitment = crypto.PublicKeyBytesFromPoint(&commitment)

	proposal.Enote.OneTimeAddress = makeOneTimeAddress(spendPub, secret, proposal.Enote.AmountCommitment)
	proposal.Enote.ViewTag = viewTag(proposal.Enote.OneTimeAddress)
	proposal.Enote.EncryptedAmount = encryptAmount(p.Amount, secret, proposal.Enote.OneTimeAddress)

	proposal.EnoteEphemeralPubKey = p.EnoteEphemeralPubKey
	proposal.Amount = p.Amount
	proposal.AmountBlindingFactor = crypto.PrivateKeyBytesFromScalar(&blindingFactor)
	crypto.WipeScalar(&blindingFactor)

	janusAnchor, err := anchor(&proposal)
	if err != nil {
		return RCTOutputEnoteProposal{}, err
	}
	proposal.Enote.EncryptedJanusAnchor = encryptJanusAnchor(janusAnchor, secret, proposal.Enote.OneTimeAddress)

	return proposal, nil
}

// SpecialOutput builds a self-send enote on the external path: ECDH against
// the wallet's own view key, with the anchor slot carrying anchor_sp so that
// scanning can authenticate the enote without a cleartext address match.
func (p *PaymentProposalSelfSendV1) SpecialOutput(dev ViewIncomingKeyDevice, inputContext InputContext, accountSpendPub crypto.PublicKeyBytes) (proposal RCTOutputEnoteProposal, err error) {
	if p.EnoteEphemeralPubKey == crypto.ZeroPublicKeyBytes {
		return proposal, ErrMissingEphemeralPubKey
	}

	enoteEphemeralPub := p.EnoteEphemeralPubKey.Point()
	if enoteEphemeralPub == nil {
		return proposal, crypto.ErrInvalidPoint
	}

	// s_sr = 8 k_v D_e
	var sharedPoint edwards25519.Point
	makeUncontextualizedSharedKeyReceiver(&sharedPoint, dev, enoteEphemeralPub)

	var senderReceiverUnctx [crypto.PublicKeySize]byte
	copy(senderReceiverUnctx[:], sharedPoint.Bytes())
	defer crypto.Wipe(senderReceiverUnctx[:])

	secret := makeSenderReceiverSecret(senderReceiverUnctx[:], p.EnoteEphemeralPubKey, inputContext)
	defer crypto.Wipe(secret[:])

	return p.selfSendOutput(secret,
		func(oneTimeAddress crypto.PublicKeyBytes) ViewTag {
			return makeViewTag(senderReceiverUnctx[:], inputContext, oneTimeAddress)
		},
		func(proposal *RCTOutputEnoteProposal) (JanusAnchor, error) {
			return dev.MakeJanusAnchorSpecial(p.EnoteEphemeralPubKey, inputContext, proposal.Enote.OneTimeAddress, accountSpendPub), nil
		},
	)
}

// InternalOutput builds a self-send enote on the internal path: no ECDH at
// all, every secret keyed directly by the view-balance secret. Internal
// enotes are invisible to view-key-only wallets.
func (p *PaymentProposalSelfSendV1) InternalOutput(dev ViewBalanceSecretDevice, inputContext InputContext) (proposal RCTOutputEnoteProposal, err error) {
	if p.EnoteEphemeralPubKey == crypto.ZeroPublicKeyBytes {
		return proposal, ErrMissingEphemeralPubKey
	}

	secret := dev.MakeInternalSenderReceiverSecret(p.EnoteEphemeralPubKey, inputContext)
	defer crypto.Wipe(secret[:])

	return p.selfSendOutput(secret,
		func(oneTimeAddress crypto.PublicKeyBytes) ViewTag {
			return dev.MakeInternalViewTag(inputContext, oneTimeAddress)
		},
		func(*RCTOutputEnoteProposal) (JanusAnchor, error) {
			if p.InternalMessage != NullJanusAnchor {
				return p.InternalMessage, nil
			}
			return RandomJanusAnchor()
		},
	)
}
