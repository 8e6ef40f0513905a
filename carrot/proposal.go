package carrot

import (
	"errors"

	"git.gammaspectra.live/P2Pool/edwards25519"

	"github.com/quietbit/enotes/crypto"
	"github.com/quietbit/enotes/types"
)

var (
	ErrInvalidRandomness             = errors.New("invalid randomness")
	ErrUnsupportedCoinbaseSubaddress = errors.New("coinbase enotes cannot pay subaddresses")
	ErrUnsupportedCoinbasePaymentId  = errors.New("coinbase enotes cannot carry a payment id")
)

// PaymentProposalV1 a normal (outgoing) payment: pay Amount to Destination.
// Randomness is the janus anchor anchor_norm; it seeds every per-enote secret
// and must be fresh and uniform per proposal.
type PaymentProposalV1 struct {
	Destination DestinationV1 `json:"destination"`
	Amount      uint64        `json:"amount"`
	Randomness  JanusAnchor   `json:"randomness"`
}

// RandomPaymentProposal a proposal with fresh randomness
func RandomPaymentProposal(destination DestinationV1, amount uint64) (PaymentProposalV1, error) {
	randomness, err := RandomJanusAnchor()
	if err != nil {
		return PaymentProposalV1{}, err
	}
	return PaymentProposalV1{
		Destination: destination,
		Amount:      amount,
		Randomness:  randomness,
	}, nil
}

func (p *PaymentProposalV1) enoteEphemeralPrivateKey(dst *edwards25519.Scalar, inputContext InputContext) {
	makeEnoteEphemeralPrivateKey(dst, p.Randomness, inputContext, p.Destination.SpendPub, p.Destination.ViewPub, p.Destination.PaymentId)
}

// EnoteEphemeralPubKey D_e of this proposal under the given input context
func (p *PaymentProposalV1) EnoteEphemeralPubKey(inputContext InputContext) (crypto.PublicKeyBytes, error) {
	var ephemeralPrivKey edwards25519.Scalar
	p.enoteEphemeralPrivateKey(&ephemeralPrivKey, inputContext)
	defer crypto.WipeScalar(&ephemeralPrivKey)

	return makeEnoteEphemeralPubKey(&ephemeralPrivKey, &p.Destination)
}

// senderDerivation the shared state of all sender-side derivations:
// D_e, the raw ECDH key s_sr, and the contextualized secret s^ctx_sr
type senderDerivation struct {
	enoteEphemeralPubKey crypto.PublicKeyBytes
	senderReceiverUnctx  [crypto.PublicKeySize]byte
	secret               types.Hash
}

func (d *senderDerivation) wipe() {
	crypto.Wipe(d.senderReceiverUnctx[:])
	crypto.Wipe(d.secret[:])
}

func (p *PaymentProposalV1) deriveSender(inputContext InputContext) (d senderDerivation, err error) {
	if p.Randomness == NullJanusAnchor {
		return d, ErrInvalidRandomness
	}

	viewPub := p.Destination.ViewPub.Point()
	if viewPub == nil {
		return d, crypto.ErrInvalidPoint
	}

	var ephemeralPrivKey edwards25519.Scalar
	p.enoteEphemeralPrivateKey(&ephemeralPrivKey, inputContext)
	defer crypto.WipeScalar(&ephemeralPrivKey)

	if d.enoteEphemeralPubKey, err = makeEnoteEphemeralPubKey(&ephemeralPrivKey, &p.Destination); err != nil {
		return d, err
	}

	var sharedPoint edwards25519.Point
	makeUncontextualizedSharedKeySender(&sharedPoint, &ephemeralPrivKey, viewPub)
	copy(d.senderReceiverUnctx[:], sharedPoint.Bytes())

	d.secret = makeSenderReceiverSecret(d.senderReceiverUnctx[:], d.enoteEphemeralPubKey, inputContext)
	return d, nil
}

// NormalOutput builds the finished enote of this proposal within a
// transaction identified by inputContext. Also returns the encrypted payment
// id, which the transaction carries once for all of its outputs.
func (p *PaymentProposalV1) NormalOutput(inputContext InputContext) (proposal RCTOutputEnoteProposal, encryptedPaymentId PaymentId, err error) {
	d, err := p.deriveSender(inputContext)
	if err != nil {
		return proposal, NullPaymentId, err
	}
	defer d.wipe()

	spendPub := p.Destination.SpendPub.Point()
	if spendPub == nil {
		return proposal, NullPaymentId, crypto.ErrInvalidPoint
	}

	var blindingFactor edwards25519.Scalar
	makeAmountBlindingFactor(&blindingFactor, d.secret, p.Amount, p.Destination.SpendPub, EnoteTypePayment)

	var commitment edwards25519.Point
	crypto.Commit(&commitment, p.Amount, &blindingFactor)
	proposal.Enote.AmountCommitment = crypto.PublicKeyBytesFromPoint(&commitment)

	proposal.Enote.OneTimeAddress = makeOneTimeAddress(spendPub, d.secret, proposal.Enote.AmountCommitment)
	proposal.Enote.ViewTag = makeViewTag(d.senderReceiverUnctx[:], inputContext, proposal.Enote.OneTimeAddress)
	proposal.Enote.EncryptedAmount = encryptAmount(p.Amount, d.secret, proposal.Enote.OneTimeAddress)
	proposal.Enote.EncryptedJanusAnchor = encryptJanusAnchor(p.Randomness, d.secret, proposal.Enote.OneTimeAddress)

	proposal.EnoteEphemeralPubKey = d.enoteEphemeralPubKey
	proposal.Amount = p.Amount
	proposal.AmountBlindingFactor = crypto.PrivateKeyBytesFromScalar(&blindingFactor)
	crypto.WipeScalar(&blindingFactor)

	encryptedPaymentId = encryptPaymentId(p.Destination.PaymentId, d.secret, proposal.Enote.OneTimeAddress)
	return proposal, encryptedPaymentId, nil
}

// CoinbaseOutput builds the miner reward enote of this proposal for the block
// at blockIndex. The amount is cleartext, with the implied commitment
// C_a = 1 G + a H standing in for a real one in all derivations. Coinbase
// enotes can only pay primary addresses.
func (p *PaymentProposalV1) CoinbaseOutput(blockIndex uint64) (proposal CoinbaseOutputEnoteProposal, err error) {
	if p.Destination.IsSubaddress {
		return proposal, ErrUnsupportedCoinbaseSubaddress
	}
	if p.Destination.IsIntegrated() {
		return proposal, ErrUnsupportedCoinbasePaymentId
	}

	inputContext := MakeCoinbaseInputContext(blockIndex)

	d, err := p.deriveSender(inputContext)
	if err != nil {
		return proposal, err
	}
	defer d.wipe()

	spendPub := p.Destination.SpendPub.Point()
	if spendPub == nil {
		return proposal, crypto.ErrInvalidPoint
	}

	var commitment edwards25519.Point
	crypto.CommitCoinbase(&commitment, p.Amount)
	impliedCommitment := crypto.PublicKeyBytesFromPoint(&commitment)

	proposal.Enote.OneTimeAddress = makeOneTimeAddress(spendPub, d.secret, impliedCommitment)
	proposal.Enote.ViewTag = makeViewTag(d.senderReceiverUnctx[:], inputContext, proposal.Enote.OneTimeAddress)
	proposal.Enote.EncryptedJanusAnchor = encryptJanusAnchor(p.Randomness, d.secret, proposal.Enote.OneTimeAddress)
	proposal.Enote.Amount = p.Amount

	proposal.EnoteEphemeralPubKey = d.enoteEphemeralPubKey
	return proposal, nil
}
