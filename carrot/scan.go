package carrot

import (
	"errors"

	"git.gammaspectra.live/P2Pool/edwards25519"

	"github.com/quietbit/enotes/crypto"
	"github.com/quietbit/enotes/types"
)

// Negative scan results. ErrMismatchedViewTag is the common case for enotes
// belonging to someone else and carries no information beyond "not ours".
var (
	ErrMismatchedViewTag          = errors.New("view tag does not match")
	ErrMismatchedAmountCommitment = errors.New("no enote type opens the amount commitment")
	ErrMismatchedJanusAnchor      = errors.New("janus anchor does not match any legitimate construction")
	ErrNotPrimaryAddress          = errors.New("coinbase enote does not pay the primary address")
)

// EnoteScanV1 the recovered plaintext of one owned enote. Fields are only
// meaningful after a Try* method returned nil.
type EnoteScanV1 struct {
	// AddressSpendPub K^j_s the enote was addressed to
	AddressSpendPub crypto.PublicKeyBytes `json:"address_spend_pubkey"`
	// SenderExtensionG k^o_g, needed to spend
	SenderExtensionG crypto.PrivateKeyBytes `json:"sender_extension_g"`
	// SenderExtensionT k^o_t, needed to spend
	SenderExtensionT crypto.PrivateKeyBytes `json:"sender_extension_t"`

	Amount uint64 `json:"amount"`
	// AmountBlindingFactor k_a, opening of the amount commitment
	AmountBlindingFactor crypto.PrivateKeyBytes `json:"amount_blinding_factor"`
	EnoteType            EnoteType              `json:"enote_type"`

	// PaymentId recovered pid, null unless the sender paid an integrated
	// address of ours
	PaymentId PaymentId `json:"payment_id"`

	// JanusAnchor the decrypted anchor slot. On internal scans this is the
	// sender's internal message; on external scans it is consumed by janus
	// verification and carries no meaning for the caller.
	JanusAnchor JanusAnchor `json:"janus_anchor"`
}

// scanNonCoinbase shared steps of the external and internal paths once the
// sender-receiver secret is in hand: recover the address spend pubkey through
// the extension scalars, then open the amount commitment by trying both enote
// types.
func (s *EnoteScanV1) scanNonCoinbase(enote *EnoteV1, secret types.Hash) error {
	oneTimeAddress := enote.OneTimeAddress.Point()
	if oneTimeAddress == nil {
		return crypto.ErrInvalidPoint
	}
	commitment := enote.AmountCommitment.Point()
	if commitment == nil {
		return crypto.ErrInvalidPoint
	}

	var extG, extT edwards25519.Scalar
	makeOneTimeAddressExtensionG(&extG, secret, enote.AmountCommitment)
	makeOneTimeAddressExtensionT(&extT, secret, enote.AmountCommitment)
	defer crypto.WipeScalar(&extG)
	defer crypto.WipeScalar(&extT)

	// K^j_s = Ko - k^o_g G - k^o_t T
	ext := crypto.DoubleScalarBaseMultPrecomputed(new(edwards25519.Point), &extT, crypto.GeneratorT, &extG)
	s.AddressSpendPub = crypto.PublicKeyBytesFromPoint(ext.Subtract(oneTimeAddress, ext))
	s.SenderExtensionG = crypto.PrivateKeyBytesFromScalar(&extG)
	s.SenderExtensionT = crypto.PrivateKeyBytesFromScalar(&extT)

	amount := decryptAmount(enote.EncryptedAmount, secret, enote.OneTimeAddress)

	matched := false
	for _, enoteType := range []EnoteType{EnoteTypePayment, EnoteTypeChange} {
		var blindingFactor edwards25519.Scalar
		makeAmountBlindingFactor(&blindingFactor, secret, amount, s.AddressSpendPub, enoteType)

		var candidate edwards25519.Point
		crypto.CommitVarTime(&candidate, amount, &blindingFactor)
		if candidate.Equal(commitment) == 1 {
			s.Amount = amount
			s.AmountBlindingFactor = crypto.PrivateKeyBytesFromScalar(&blindingFactor)
			s.EnoteType = enoteType
			matched = true
		}
		crypto.WipeScalar(&blindingFactor)
		if matched {
			break
		}
	}
	if !matched {
		return ErrMismatchedAmountCommitment
	}

	s.JanusAnchor = encryptJanusAnchor(enote.EncryptedJanusAnchor, secret, enote.OneTimeAddress)
	return nil
}

// TryScanExternal attempts recovery of a normal enote with the incoming view
// key. A nil result means the enote is owned; janus verification has already
// passed and PaymentId holds the unambiguous recovered pid.
func (s *EnoteScanV1) TryScanExternal(enote *EnoteV1, enoteEphemeralPubKey crypto.PublicKeyBytes, encryptedPaymentId PaymentId, inputContext InputContext, dev ViewIncomingKeyDevice, accountSpendPub crypto.PublicKeyBytes) error {
	enoteEphemeralPub := enoteEphemeralPubKey.Point()
	if enoteEphemeralPub == nil {
		return crypto.ErrInvalidPoint
	}

	// s_sr = 8 k_v D_e
	var sharedPoint edwards25519.Point
	makeUncontextualizedSharedKeyReceiver(&sharedPoint, dev, enoteEphemeralPub)

	var senderReceiverUnctx [crypto.PublicKeySize]byte
	copy(senderReceiverUnctx[:], sharedPoint.Bytes())
	defer crypto.Wipe(senderReceiverUnctx[:])

	if makeViewTag(senderReceiverUnctx[:], inputContext, enote.OneTimeAddress) != enote.ViewTag {
		return ErrMismatchedViewTag
	}

	secret := makeSenderReceiverSecret(senderReceiverUnctx[:], enoteEphemeralPubKey, inputContext)
	defer crypto.Wipe(secret[:])

	if err := s.scanNonCoinbase(enote, secret); err != nil {
		return err
	}

	s.PaymentId = encryptPaymentId(encryptedPaymentId, secret, enote.OneTimeAddress)

	return s.verifyJanusProtection(enoteEphemeralPubKey, inputContext, enote.OneTimeAddress, dev, accountSpendPub)
}

// TryScanInternal attempts recovery of a self-send enote built on the
// internal path. No janus verification runs: the wallet authored the enote
// itself, so there is no external adversary to defend against. On success
// JanusAnchor holds the sender's internal message.
func (s *EnoteScanV1) TryScanInternal(enote *EnoteV1, enoteEphemeralPubKey crypto.PublicKeyBytes, inputContext InputContext, dev ViewBalanceSecretDevice) error {
	if dev.MakeInternalViewTag(inputContext, enote.OneTimeAddress) != enote.ViewTag {
		return ErrMismatchedViewTag
	}

	secret := dev.MakeInternalSenderReceiverSecret(enoteEphemeralPubKey, inputContext)
	defer crypto.Wipe(secret[:])

	if err := s.scanNonCoinbase(enote, secret); err != nil {
		return err
	}

	s.PaymentId = NullPaymentId
	return nil
}

// TryScanCoinbase attempts recovery of a coinbase enote. The amount is
// cleartext with the implied commitment C_a = 1 G + a H; the recovered spend
// pubkey must equal the account's primary spend pubkey exactly, as coinbase
// scanning never consults a subaddress table.
func (s *EnoteScanV1) TryScanCoinbase(enote *CoinbaseEnoteV1, enoteEphemeralPubKey crypto.PublicKeyBytes, blockIndex uint64, dev ViewIncomingKeyDevice, accountSpendPub crypto.PublicKeyBytes) error {
	inputContext := MakeCoinbaseInputContext(blockIndex)

	enoteEphemeralPub := enoteEphemeralPubKey.Point()
	if enoteEphemeralPub == nil {
		return crypto.ErrInvalidPoint
	}
	oneTimeAddress := enote.OneTimeAddress.Point()
	if oneTimeAddress == nil {
		return crypto.ErrInvalidPoint
	}

	var sharedPoint edwards25519.Point
	makeUncontextualizedSharedKeyReceiver(&sharedPoint, dev, enoteEphemeralPub)

	var senderReceiverUnctx [crypto.PublicKeySize]byte
	copy(senderReceiverUnctx[:], sharedPoint.Bytes())
	defer crypto.Wipe(senderReceiverUnctx[:])

	if makeViewTag(senderReceiverUnctx[:], inputContext, enote.OneTimeAddress) != enote.ViewTag {
		return ErrMismatchedViewTag
	}

	secret := makeSenderReceiverSecret(senderReceiverUnctx[:], enoteEphemeralPubKey, inputContext)
	defer crypto.Wipe(secret[:])

	var commitment edwards25519.Point
	crypto.CommitCoinbase(&commitment, enote.Amount)
	impliedCommitment := crypto.PublicKeyBytesFromPoint(&commitment)

	var extG, extT edwards25519.Scalar
	makeOneTimeAddressExtensionG(&extG, secret, impliedCommitment)
	makeOneTimeAddressExtensionT(&extT, secret, impliedCommitment)
	defer crypto.WipeScalar(&extG)
	defer crypto.WipeScalar(&extT)

	ext := crypto.DoubleScalarBaseMultPrecomputed(new(edwards25519.Point), &extT, crypto.GeneratorT, &extG)
	s.AddressSpendPub = crypto.PublicKeyBytesFromPoint(ext.Subtract(oneTimeAddress, ext))
	if s.AddressSpendPub != accountSpendPub {
		return ErrNotPrimaryAddress
	}
	s.SenderExtensionG = crypto.PrivateKeyBytesFromScalar(&extG)
	s.SenderExtensionT = crypto.PrivateKeyBytesFromScalar(&extT)

	s.Amount = enote.Amount
	s.AmountBlindingFactor = crypto.PrivateKeyBytesFromScalar(crypto.ScalarOne())
	s.EnoteType = EnoteTypePayment
	s.PaymentId = NullPaymentId
	s.JanusAnchor = encryptJanusAnchor(enote.EncryptedJanusAnchor, secret, enote.OneTimeAddress)

	return s.verifyJanusProtection(enoteEphemeralPubKey, inputContext, enote.OneTimeAddress, dev, accountSpendPub)
}
