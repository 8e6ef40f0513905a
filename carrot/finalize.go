package carrot

import (
	"errors"
	"slices"

	"lukechampine.com/uint128"

	"github.com/quietbit/enotes/crypto"
)

var (
	ErrNoProposals              = errors.New("no payment proposals")
	ErrTooFewOutputs            = errors.New("too few outputs")
	ErrTooManyOutputs           = errors.New("too many outputs")
	ErrMissingSelfSend          = errors.New("at least one self-send output required")
	ErrTooManyPaymentIds        = errors.New("only one integrated address allowed")
	ErrDuplicateRandomness      = errors.New("duplicate randomness across normal payment proposals")
	ErrUnsharedEphemeralPubKey  = errors.New("a 2-output set must share one enote ephemeral pubkey")
	ErrDuplicateEphemeralPubKey = errors.New("duplicate enote ephemeral pubkey in output set")
	ErrAmountOverflow           = errors.New("output amounts overflow")
	ErrMissingDevice            = errors.New("no key material device for the self-send path")
)

// AdditionalOutputType what, if anything, must be appended to a proposal set
// before it forms a valid transaction output shape
type AdditionalOutputType uint8

const (
	// AdditionalOutputChangeShared change self-send sharing the ephemeral
	// pubkey of the sole other output
	AdditionalOutputChangeShared = AdditionalOutputType(iota)
	// AdditionalOutputPaymentShared like change-shared but PAYMENT-typed,
	// keeping two same-address change enotes distinguishable
	AdditionalOutputPaymentShared
	// AdditionalOutputChangeUnique change self-send with its own fresh
	// ephemeral pubkey
	AdditionalOutputChangeUnique
	// AdditionalOutputDummy decoy payment to a random address, hiding the
	// 1-output shape of a change-less self-spend
	AdditionalOutputDummy
)

func (t AdditionalOutputType) String() string {
	switch t {
	case AdditionalOutputChangeShared:
		return "change_shared"
	case AdditionalOutputPaymentShared:
		return "payment_shared"
	case AdditionalOutputChangeUnique:
		return "change_unique"
	case AdditionalOutputDummy:
		return "dummy"
	default:
		return "unknown"
	}
}

// GetAdditionalOutputType decides whether the proposal set needs one more
// output and of which kind. needed == false with a nil error means the set is
// already complete.
func GetAdditionalOutputType(numOutgoing, numSelfSend int, remainingChange uint64, havePaymentTypeSelfSend bool) (t AdditionalOutputType, needed bool, err error) {
	numOutputs := numOutgoing + numSelfSend
	switch {
	case numOutputs == 0:
		return 0, false, ErrNoProposals
	case numOutputs >= MinTxOutputs && numSelfSend >= 1 && remainingChange == 0:
		return 0, false, nil
	case numOutputs >= MaxTxOutputs:
		return 0, false, ErrTooManyOutputs
	case numOutputs == 1 && numSelfSend == 0:
		return AdditionalOutputChangeShared, true, nil
	case numOutputs == 1 && remainingChange == 0:
		return AdditionalOutputDummy, true, nil
	case numOutputs == 1 && havePaymentTypeSelfSend:
		return AdditionalOutputChangeShared, true, nil
	case numOutputs == 1:
		return AdditionalOutputPaymentShared, true, nil
	default:
		return AdditionalOutputChangeUnique, true, nil
	}
}

// GetAdditionalOutputProposal materializes the decision of
// GetAdditionalOutputType into a concrete proposal. Exactly one of the
// returned proposals is non-nil when one is needed; both are nil when the set
// is already complete.
func GetAdditionalOutputProposal(numOutgoing, numSelfSend int, remainingChange uint64, havePaymentTypeSelfSend bool, changeDestination DestinationV1) (normal *PaymentProposalV1, selfSend *PaymentProposalSelfSendV1, err error) {
	t, needed, err := GetAdditionalOutputType(numOutgoing, numSelfSend, remainingChange, havePaymentTypeSelfSend)
	if err != nil || !needed {
		return nil, nil, err
	}

	switch t {
	case AdditionalOutputChangeShared, AdditionalOutputPaymentShared:
		enoteType := EnoteTypeChange
		if t == AdditionalOutputPaymentShared {
			enoteType = EnoteTypePayment
		}
		return nil, &PaymentProposalSelfSendV1{
			DestinationSpendPub: changeDestination.SpendPub,
			Amount:              remainingChange,
			EnoteType:           enoteType,
			// shared ephemeral pubkey assigned at assembly
		}, nil
	case AdditionalOutputChangeUnique:
		enoteEphemeralPubKey, err := crypto.RandomPublicKey()
		if err != nil {
			return nil, nil, err
		}
		return nil, &PaymentProposalSelfSendV1{
			DestinationSpendPub:  changeDestination.SpendPub,
			Amount:               remainingChange,
			EnoteType:            EnoteTypeChange,
			EnoteEphemeralPubKey: enoteEphemeralPubKey,
		}, nil
	default: // AdditionalOutputDummy
		spendPub, err := crypto.RandomPublicKey()
		if err != nil {
			return nil, nil, err
		}
		viewPub, err := crypto.RandomPublicKey()
		if err != nil {
			return nil, nil, err
		}
		dummy, err := RandomPaymentProposal(DestinationV1{
			SpendPub: spendPub,
			ViewPub:  viewPub,
		}, 0)
		if err != nil {
			return nil, nil, err
		}
		return &dummy, nil, nil
	}
}

// GetOutputEnoteProposals assembles one transaction's full output set from an
// already-complete proposal set, enforcing every set-wide invariant:
//
//   - output count within [MinTxOutputs, MaxTxOutputs], at least one self-send
//   - at most one integrated destination
//   - non-zero, pairwise-distinct randomness across normal proposals
//   - 2-output sets share one ephemeral pubkey, larger sets have pairwise
//     distinct ones
//   - final set sorted ascending by onetime address
//
// Self-send proposals without an ephemeral pubkey get one assigned: the other
// output's in a 2-output set, a fresh one otherwise. The internal derivation
// path is used for every self-send when viewBalanceDev is non-nil.
//
// Invariant violations report errors, which always indicate a caller bug:
// this runs inside the trusted sending wallet and never sees adversarial
// input.
func GetOutputEnoteProposals(normalProposals []PaymentProposalV1, selfSendProposals []PaymentProposalSelfSendV1, viewIncomingDev ViewIncomingKeyDevice, viewBalanceDev ViewBalanceSecretDevice, accountSpendPub crypto.PublicKeyBytes, txFirstKeyImage crypto.PublicKeyBytes) (proposals []RCTOutputEnoteProposal, encryptedPaymentId PaymentId, err error) {
	numOutputs := len(normalProposals) + len(selfSendProposals)
	if numOutputs < MinTxOutputs {
		return nil, NullPaymentId, ErrTooFewOutputs
	}
	if numOutputs > MaxTxOutputs {
		return nil, NullPaymentId, ErrTooManyOutputs
	}
	if len(selfSendProposals) == 0 {
		return nil, NullPaymentId, ErrMissingSelfSend
	}

	integratedIndex := -1
	for i := range normalProposals {
		if normalProposals[i].Randomness == NullJanusAnchor {
			return nil, NullPaymentId, ErrInvalidRandomness
		}
		if normalProposals[i].Destination.IsIntegrated() {
			if integratedIndex >= 0 {
				return nil, NullPaymentId, ErrTooManyPaymentIds
			}
			integratedIndex = i
		}
	}

	// duplicate anchors would produce duplicate ephemeral pubkeys
	anchors := make([]JanusAnchor, 0, len(normalProposals))
	for i := range normalProposals {
		anchors = append(anchors, normalProposals[i].Randomness)
	}
	slices.SortFunc(anchors, func(a, b JanusAnchor) int {
		return slices.Compare(a[:], b[:])
	})
	for i := 1; i < len(anchors); i++ {
		if anchors[i] == anchors[i-1] {
			return nil, NullPaymentId, ErrDuplicateRandomness
		}
	}

	var amountSum uint128.Uint128
	for i := range normalProposals {
		amountSum = amountSum.Add64(normalProposals[i].Amount)
	}
	for i := range selfSendProposals {
		amountSum = amountSum.Add64(selfSendProposals[i].Amount)
	}
	if amountSum.Hi != 0 {
		return nil, NullPaymentId, ErrAmountOverflow
	}

	inputContext := MakeInputContext(txFirstKeyImage)
	proposals = make([]RCTOutputEnoteProposal, 0, numOutputs)

	for i := range normalProposals {
		proposal, pidEnc, err := normalProposals[i].NormalOutput(inputContext)
		if err != nil {
			return nil, NullPaymentId, err
		}
		proposals = append(proposals, proposal)

		if i == integratedIndex || (integratedIndex < 0 && i == 0) {
			encryptedPaymentId = pidEnc
		}
	}

	// with no integrated destination and several candidates the published pid
	// slot is ambiguous anyway, so fill it with noise rather than leak "no
	// payment id here"; sets without normal proposals keep the null sentinel
	if integratedIndex < 0 && len(normalProposals) > 1 {
		if encryptedPaymentId, err = RandomPaymentId(); err != nil {
			return nil, NullPaymentId, err
		}
	}

	selfSends := slices.Clone(selfSendProposals)
	for i := range selfSends {
		if selfSends[i].EnoteEphemeralPubKey == crypto.ZeroPublicKeyBytes {
			switch {
			case numOutputs == MinTxOutputs && len(proposals) > 0:
				selfSends[i].EnoteEphemeralPubKey = proposals[0].EnoteEphemeralPubKey
			case numOutputs == MinTxOutputs && i > 0 && selfSends[0].EnoteEphemeralPubKey != crypto.ZeroPublicKeyBytes:
				selfSends[i].EnoteEphemeralPubKey = selfSends[0].EnoteEphemeralPubKey
			default:
				if selfSends[i].EnoteEphemeralPubKey, err = crypto.RandomPublicKey(); err != nil {
					return nil, NullPaymentId, err
				}
			}
		}

		var proposal RCTOutputEnoteProposal
		if viewBalanceDev != nil {
			proposal, err = selfSends[i].InternalOutput(viewBalanceDev, inputContext)
		} else if viewIncomingDev != nil {
			proposal, err = selfSends[i].SpecialOutput(viewIncomingDev, inputContext, accountSpendPub)
		} else {
			err = ErrMissingDevice
		}
		if err != nil {
			return nil, NullPaymentId, err
		}
		proposals = append(proposals, proposal)
	}

	if err = checkEphemeralPubKeyUniqueness(proposals); err != nil {
		return nil, NullPaymentId, err
	}

	// canonical order, independent of construction order
	slices.SortFunc(proposals, func(a, b RCTOutputEnoteProposal) int {
		return crypto.CompareConsensusPublicKeyBytes(&a.Enote.OneTimeAddress, &b.Enote.OneTimeAddress)
	})

	return proposals, encryptedPaymentId, nil
}

func checkEphemeralPubKeyUniqueness(proposals []RCTOutputEnoteProposal) error {
	if len(proposals) == MinTxOutputs {
		if proposals[0].EnoteEphemeralPubKey != proposals[1].EnoteEphemeralPubKey {
			return ErrUnsharedEphemeralPubKey
		}
		return nil
	}

	keys := make([]crypto.PublicKeyBytes, 0, len(proposals))
	for i := range proposals {
		keys = append(keys, proposals[i].EnoteEphemeralPubKey)
	}
	slices.SortFunc(keys, func(a, b crypto.PublicKeyBytes) int {
		return crypto.CompareConsensusPublicKeyBytes(&a, &b)
	})
	for i := 1; i < len(keys); i++ {
		if keys[i] == keys[i-1] {
			return ErrDuplicateEphemeralPubKey
		}
	}
	return nil
}

// FinalizeOutputSet the one-call path: decides whether the caller's proposal
// set needs an additional output, appends it to the caller-owned slices, and
// assembles the finished set. Not safe to call twice over overlapping input.
func FinalizeOutputSet(normalProposals *[]PaymentProposalV1, selfSendProposals *[]PaymentProposalSelfSendV1, remainingChange uint64, changeDestination DestinationV1, viewIncomingDev ViewIncomingKeyDevice, viewBalanceDev ViewBalanceSecretDevice, accountSpendPub crypto.PublicKeyBytes, txFirstKeyImage crypto.PublicKeyBytes) ([]RCTOutputEnoteProposal, PaymentId, error) {
	havePaymentTypeSelfSend := false
	for i := range *selfSendProposals {
		if (*selfSendProposals)[i].EnoteType == EnoteTypePayment {
			havePaymentTypeSelfSend = true
			break
		}
	}

	additionalNormal, additionalSelfSend, err := GetAdditionalOutputProposal(len(*normalProposals), len(*selfSendProposals), remainingChange, havePaymentTypeSelfSend, changeDestination)
	if err != nil {
		return nil, NullPaymentId, err
	}
	if additionalNormal != nil {
		*normalProposals = append(*normalProposals, *additionalNormal)
	}
	if additionalSelfSend != nil {
		*selfSendProposals = append(*selfSendProposals, *additionalSelfSend)
	}

	return GetOutputEnoteProposals(*normalProposals, *selfSendProposals, viewIncomingDev, viewBalanceDev, accountSpendPub, txFirstKeyImage)
}
