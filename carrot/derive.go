package carrot

import (
	"crypto/rand"
	"encoding/binary"

	"git.gammaspectra.live/P2Pool/edwards25519"

	"github.com/quietbit/enotes/crypto"
	"github.com/quietbit/enotes/types"
)

// makeEnoteEphemeralPrivateKey d_e = H_n(anchor_norm, input_context, K^j_s, K^j_v, pid)
//
// Binding the anchor, context, full address and payment id here is what makes
// the normal janus check work: a receiver re-deriving d_e against its own
// address can tell whether D_e was built for that exact address.
func makeEnoteEphemeralPrivateKey(dst *edwards25519.Scalar, anchor JanusAnchor, inputContext InputContext, spendPub, viewPub crypto.PublicKeyBytes, paymentId PaymentId) {
	ScalarTranscript(
		dst, nil,
		DomainSeparatorEphemeralPrivateKey,
		anchor[:], inputContext[:], spendPub[:], viewPub[:], paymentId[:],
	)
}

// makeEnoteEphemeralPubKey D_e = d_e G for primary addresses,
// D_e = d_e K^j_s for subaddresses
func makeEnoteEphemeralPubKey(ephemeralPrivKey *edwards25519.Scalar, destination *DestinationV1) (crypto.PublicKeyBytes, error) {
	if destination.IsSubaddress {
		spendPub := destination.SpendPub.Point()
		if spendPub == nil {
			return crypto.ZeroPublicKeyBytes, crypto.ErrInvalidPoint
		}
		return crypto.PublicKeyBytesFromPoint(new(edwards25519.Point).ScalarMult(ephemeralPrivKey, spendPub)), nil
	}
	return crypto.PublicKeyBytesFromPoint(new(edwards25519.Point).ScalarBaseMult(ephemeralPrivKey)), nil
}

// makeUncontextualizedSharedKeySender s_sr = 8 d_e K^j_v
func makeUncontextualizedSharedKeySender(dst *edwards25519.Point, ephemeralPrivKey *edwards25519.Scalar, viewPub *edwards25519.Point) *edwards25519.Point {
	dst.ScalarMult(ephemeralPrivKey, viewPub)
	// cofactor clearing keeps both sides on the prime-order subgroup even for
	// adversarial public keys
	return dst.MultByCofactor(dst)
}

// makeUncontextualizedSharedKeyReceiver s_sr = 8 k_v D_e
func makeUncontextualizedSharedKeyReceiver(dst *edwards25519.Point, dev ViewIncomingKeyDevice, enoteEphemeralPub *edwards25519.Point) *edwards25519.Point {
	dev.ViewKeyScalarMult(dst, enoteEphemeralPub)
	return dst.MultByCofactor(dst)
}

// makeSenderReceiverSecret s^ctx_sr = H_32[s_sr](D_e, input_context)
func makeSenderReceiverSecret(senderReceiverUnctx []byte, enoteEphemeralPubKey crypto.PublicKeyBytes, inputContext InputContext) (secret types.Hash) {
	HashedTranscript(
		secret[:], senderReceiverUnctx,
		DomainSeparatorSenderReceiverSecret, enoteEphemeralPubKey[:], inputContext[:],
	)
	return secret
}

// makeViewTag vt = H_3[s_sr](input_context, Ko)
func makeViewTag(senderReceiverUnctx []byte, inputContext InputContext, oneTimeAddress crypto.PublicKeyBytes) (viewTag ViewTag) {
	HashedTranscript(
		viewTag[:], senderReceiverUnctx,
		DomainSeparatorViewTag, inputContext[:], oneTimeAddress[:],
	)
	return viewTag
}

// makeAmountBlindingFactor k_a = H_n[s^ctx_sr](a, K^j_s, enote_type)
func makeAmountBlindingFactor(dst *edwards25519.Scalar, secret types.Hash, amount uint64, addressSpendPub crypto.PublicKeyBytes, enoteType EnoteType) {
	var amountBuf [8]byte
	binary.LittleEndian.PutUint64(amountBuf[:], amount)
	ScalarTranscript(
		dst, secret[:],
		DomainSeparatorAmountBlindingFactor,
		amountBuf[:], addressSpendPub[:], enoteType.bytes(),
	)
}

// makeOneTimeAddressExtensionG k^o_g = H_n[s^ctx_sr](C_a)
func makeOneTimeAddressExtensionG(dst *edwards25519.Scalar, secret types.Hash, amountCommitment crypto.PublicKeyBytes) {
	ScalarTranscript(
		dst, secret[:],
		DomainSeparatorOneTimeExtensionG, amountCommitment[:],
	)
}

// makeOneTimeAddressExtensionT k^o_t = H_n[s^ctx_sr](C_a)
func makeOneTimeAddressExtensionT(dst *edwards25519.Scalar, secret types.Hash, amountCommitment crypto.PublicKeyBytes) {
	ScalarTranscript(
		dst, secret[:],
		DomainSeparatorOneTimeExtensionT, amountCommitment[:],
	)
}

// makeOneTimeAddressExtensionPub K^o_ext = k^o_g G + k^o_t T
func makeOneTimeAddressExtensionPub(dst *edwards25519.Point, secret types.Hash, amountCommitment crypto.PublicKeyBytes) *edwards25519.Point {
	var extG, extT edwards25519.Scalar
	makeOneTimeAddressExtensionG(&extG, secret, amountCommitment)
	makeOneTimeAddressExtensionT(&extT, secret, amountCommitment)
	defer crypto.WipeScalar(&extG)
	defer crypto.WipeScalar(&extT)

	return crypto.DoubleScalarBaseMultPrecomputed(dst, &extT, crypto.GeneratorT, &extG)
}

// makeOneTimeAddress Ko = K^j_s + k^o_g G + k^o_t T
func makeOneTimeAddress(addressSpendPub *edwards25519.Point, secret types.Hash, amountCommitment crypto.PublicKeyBytes) crypto.PublicKeyBytes {
	ext := makeOneTimeAddressExtensionPub(new(edwards25519.Point), secret, amountCommitment)
	return crypto.PublicKeyBytesFromPoint(ext.Add(ext, addressSpendPub))
}

// encryptAmount a_enc = LE64(a) XOR m_a, m_a = H_8[s^ctx_sr](Ko)
func encryptAmount(amount uint64, secret types.Hash, oneTimeAddress crypto.PublicKeyBytes) (enc EncryptedAmount) {
	var mask [EncryptedAmountSize]byte
	HashedTranscript(
		mask[:], secret[:],
		DomainSeparatorEncryptionMaskAmount, oneTimeAddress[:],
	)
	binary.LittleEndian.PutUint64(enc[:], amount)
	for i := range enc {
		enc[i] ^= mask[i]
	}
	crypto.Wipe(mask[:])
	return enc
}

func decryptAmount(enc EncryptedAmount, secret types.Hash, oneTimeAddress crypto.PublicKeyBytes) uint64 {
	var mask [EncryptedAmountSize]byte
	HashedTranscript(
		mask[:], secret[:],
		DomainSeparatorEncryptionMaskAmount, oneTimeAddress[:],
	)
	for i := range enc {
		enc[i] ^= mask[i]
	}
	crypto.Wipe(mask[:])
	return binary.LittleEndian.Uint64(enc[:])
}

// encryptJanusAnchor anchor_enc = anchor XOR m_anchor, m_anchor = H_16[s^ctx_sr](Ko).
// XOR is its own inverse, so this both encrypts and decrypts.
func encryptJanusAnchor(anchor JanusAnchor, secret types.Hash, oneTimeAddress crypto.PublicKeyBytes) (enc JanusAnchor) {
	var mask [JanusAnchorSize]byte
	HashedTranscript(
		mask[:], secret[:],
		DomainSeparatorEncryptionMaskAnchor, oneTimeAddress[:],
	)
	for i := range enc {
		enc[i] = anchor[i] ^ mask[i]
	}
	crypto.Wipe(mask[:])
	return enc
}

// encryptPaymentId pid_enc = pid XOR m_pid, m_pid = H_8[s^ctx_sr](Ko).
// XOR is its own inverse, so this both encrypts and decrypts.
func encryptPaymentId(paymentId PaymentId, secret types.Hash, oneTimeAddress crypto.PublicKeyBytes) (enc PaymentId) {
	var mask [PaymentIdSize]byte
	HashedTranscript(
		mask[:], secret[:],
		DomainSeparatorEncryptionMaskPaymentId, oneTimeAddress[:],
	)
	for i := range enc {
		enc[i] = paymentId[i] ^ mask[i]
	}
	crypto.Wipe(mask[:])
	return enc
}

// makeJanusAnchorSpecial anchor_sp = H_16[k_v](D_e, input_context, Ko, K_s)
func makeJanusAnchorSpecial(viewKey []byte, enoteEphemeralPubKey crypto.PublicKeyBytes, inputContext InputContext, oneTimeAddress, accountSpendPub crypto.PublicKeyBytes) (anchor JanusAnchor) {
	HashedTranscript(
		anchor[:], viewKey,
		DomainSeparatorJanusAnchorSpecial,
		enoteEphemeralPubKey[:], inputContext[:], oneTimeAddress[:], accountSpendPub[:],
	)
	return anchor
}

// RandomJanusAnchor fresh uniform anchor_norm
func RandomJanusAnchor() (anchor JanusAnchor, err error) {
	if _, err = rand.Read(anchor[:]); err != nil {
		return NullJanusAnchor, crypto.ErrEntropy
	}
	if anchor == NullJanusAnchor {
		// zero is the "absent" sentinel
		return RandomJanusAnchor()
	}
	return anchor, nil
}

// RandomPaymentId fresh uniform non-null payment id
func RandomPaymentId() (paymentId PaymentId, err error) {
	if _, err = rand.Read(paymentId[:]); err != nil {
		return NullPaymentId, crypto.ErrEntropy
	}
	if paymentId == NullPaymentId {
		return RandomPaymentId()
	}
	return paymentId, nil
}
