package carrot

import (
	"git.gammaspectra.live/P2Pool/edwards25519"

	"github.com/quietbit/enotes/crypto"
)

// verifyJanusProtection decides whether the decrypted anchor is consistent
// with the enote's actual ephemeral pubkey, i.e. whether a legitimate sender
// could have produced this exact enote for the recovered address. A janus
// attacker pairs the spend pubkey of one address with the view pubkey of
// another; the recomputed D_e then cannot match, because the anchor binds the
// full address pair.
//
// Accepted constructions, tried in order:
//  1. self-send special: anchor == anchor_sp derived from the view key
//  2. normal: anchor re-derives d_e (with the recovered pid) whose pubkey is D_e
//  3. normal with a null pid, for senders that did not target an integrated
//     address of ours; on success the recovered pid is cleared
func (s *EnoteScanV1) verifyJanusProtection(enoteEphemeralPubKey crypto.PublicKeyBytes, inputContext InputContext, oneTimeAddress crypto.PublicKeyBytes, dev ViewIncomingKeyDevice, accountSpendPub crypto.PublicKeyBytes) error {
	if s.JanusAnchor == dev.MakeJanusAnchorSpecial(enoteEphemeralPubKey, inputContext, oneTimeAddress, accountSpendPub) {
		s.PaymentId = NullPaymentId
		return nil
	}

	isSubaddress := s.AddressSpendPub != accountSpendPub

	// nominal K^j_v: k_v K^j_s for subaddresses, k_v G for the primary address
	var viewPubPoint edwards25519.Point
	if isSubaddress {
		spendPub := s.AddressSpendPub.Point()
		if spendPub == nil {
			return crypto.ErrInvalidPoint
		}
		dev.ViewKeyScalarMult(&viewPubPoint, spendPub)
	} else {
		dev.ViewKeyScalarMult(&viewPubPoint, edwards25519.NewGeneratorPoint())
	}

	nominalDestination := DestinationV1{
		SpendPub:     s.AddressSpendPub,
		ViewPub:      crypto.PublicKeyBytesFromPoint(&viewPubPoint),
		IsSubaddress: isSubaddress,
	}

	if s.janusAnchorMatches(&nominalDestination, inputContext, s.PaymentId, enoteEphemeralPubKey) {
		return nil
	}
	if s.PaymentId != NullPaymentId && s.janusAnchorMatches(&nominalDestination, inputContext, NullPaymentId, enoteEphemeralPubKey) {
		// the pid ciphertext decrypted to junk for a non-integrated payment
		s.PaymentId = NullPaymentId
		return nil
	}

	return ErrMismatchedJanusAnchor
}

func (s *EnoteScanV1) janusAnchorMatches(destination *DestinationV1, inputContext InputContext, paymentId PaymentId, enoteEphemeralPubKey crypto.PublicKeyBytes) bool {
	var ephemeralPrivKey edwards25519.Scalar
	makeEnoteEphemeralPrivateKey(&ephemeralPrivKey, s.JanusAnchor, inputContext, destination.SpendPub, destination.ViewPub, paymentId)
	defer crypto.WipeScalar(&ephemeralPrivKey)

	recomputed, err := makeEnoteEphemeralPubKey(&ephemeralPrivKey, destination)
	if err != nil {
		return false
	}
	return recomputed == enoteEphemeralPubKey
}
