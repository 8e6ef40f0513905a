package carrot

import (
	"testing"

	"github.com/sclevine/spec"
	"github.com/sclevine/spec/report"
	"github.com/stretchr/testify/require"

	"github.com/quietbit/enotes/crypto"
)

func TestGetAdditionalOutputType(t *testing.T) {
	spec.Run(t, "GetAdditionalOutputType", func(t *testing.T, when spec.G, it spec.S) {
		it("fails on an empty set", func() {
			_, _, err := GetAdditionalOutputType(0, 0, 0, false)
			require.ErrorIs(t, err, ErrNoProposals)
		})

		it("is complete with two outputs, a self-send and no change", func() {
			_, needed, err := GetAdditionalOutputType(1, 1, 0, false)
			require.NoError(t, err)
			require.False(t, needed)
		})

		it("shares change with a sole normal output", func() {
			outputType, needed, err := GetAdditionalOutputType(1, 0, 500, false)
			require.NoError(t, err)
			require.True(t, needed)
			require.Equal(t, AdditionalOutputChangeShared, outputType)
		})

		it("shares change with a sole normal output even without change left", func() {
			outputType, needed, err := GetAdditionalOutputType(1, 0, 0, false)
			require.NoError(t, err)
			require.True(t, needed)
			require.Equal(t, AdditionalOutputChangeShared, outputType)
		})

		it("pads a sole change-less self-send with a dummy", func() {
			outputType, needed, err := GetAdditionalOutputType(0, 1, 0, false)
			require.NoError(t, err)
			require.True(t, needed)
			require.Equal(t, AdditionalOutputDummy, outputType)
		})

		it("shares change when a payment-type self-send exists", func() {
			outputType, needed, err := GetAdditionalOutputType(0, 1, 500, true)
			require.NoError(t, err)
			require.True(t, needed)
			require.Equal(t, AdditionalOutputChangeShared, outputType)
		})

		it("adds a shared payment self-send otherwise", func() {
			outputType, needed, err := GetAdditionalOutputType(0, 1, 500, false)
			require.NoError(t, err)
			require.True(t, needed)
			require.Equal(t, AdditionalOutputPaymentShared, outputType)
		})

		it("adds unique change to larger sets", func() {
			outputType, needed, err := GetAdditionalOutputType(3, 1, 500, false)
			require.NoError(t, err)
			require.True(t, needed)
			require.Equal(t, AdditionalOutputChangeUnique, outputType)

			outputType, needed, err = GetAdditionalOutputType(2, 0, 0, false)
			require.NoError(t, err)
			require.True(t, needed)
			require.Equal(t, AdditionalOutputChangeUnique, outputType)
		})

		it("fails at the output limit", func() {
			_, _, err := GetAdditionalOutputType(MaxTxOutputs-1, 1, 500, false)
			require.ErrorIs(t, err, ErrTooManyOutputs)
		})
	}, spec.Report(report.Log{}), spec.Parallel(), spec.Random())
}

func requireAscendingByOneTimeAddress(t *testing.T, proposals []RCTOutputEnoteProposal) {
	t.Helper()
	for i := 1; i < len(proposals); i++ {
		require.Negative(t, crypto.CompareConsensusPublicKeyBytes(&proposals[i-1].Enote.OneTimeAddress, &proposals[i].Enote.OneTimeAddress))
	}
}

func TestFinalizeOutputSet_Expansion(t *testing.T) {
	t.Parallel()

	sender := NewWallet(testMasterSecret, 8)
	receiver := NewWallet(testMasterSecret2, 8)

	receiverDestination, err := receiver.Destination(SubaddressIndex{}, NullPaymentId)
	require.NoError(t, err)
	payment, err := RandomPaymentProposal(receiverDestination, testAmount)
	require.NoError(t, err)

	const changeAmount = uint64(500)
	keyImage := testKeyImage(t)

	proposals, pidEnc, err := sender.Transfer([]PaymentProposalV1{payment}, nil, changeAmount, keyImage)
	require.NoError(t, err)
	require.Len(t, proposals, 2)

	// 2-output sets share one ephemeral pubkey
	require.Equal(t, proposals[0].EnoteEphemeralPubKey, proposals[1].EnoteEphemeralPubKey)
	requireAscendingByOneTimeAddress(t, proposals)

	var receivedPayment, receivedChange bool
	for i := range proposals {
		if record, err := receiver.ScanEnote(&proposals[i].Enote, proposals[i].EnoteEphemeralPubKey, pidEnc, keyImage); err == nil {
			require.Equal(t, testAmount, record.Amount)
			require.Equal(t, EnoteTypePayment, record.EnoteType)
			require.Equal(t, NullPaymentId, record.PaymentId)
			receivedPayment = true
		}
		if record, err := sender.ScanEnote(&proposals[i].Enote, proposals[i].EnoteEphemeralPubKey, pidEnc, keyImage); err == nil {
			require.Equal(t, changeAmount, record.Amount)
			require.Equal(t, EnoteTypeChange, record.EnoteType)
			require.True(t, record.Internal)
			receivedChange = true
		}
	}
	require.True(t, receivedPayment, "receiver did not find the payment enote")
	require.True(t, receivedChange, "sender did not find the change enote")
}

func TestFinalizeOutputSet_UniqueEphemeralPubKeys(t *testing.T) {
	t.Parallel()

	sender := NewWallet(testMasterSecret, 8)
	receiver := NewWallet(testMasterSecret2, 8)

	primary, err := receiver.Destination(SubaddressIndex{}, NullPaymentId)
	require.NoError(t, err)
	subaddress, err := receiver.Destination(testSubaddressIndex(), NullPaymentId)
	require.NoError(t, err)

	first, err := RandomPaymentProposal(primary, testAmount)
	require.NoError(t, err)
	second, err := RandomPaymentProposal(subaddress, testAmount/2)
	require.NoError(t, err)

	keyImage := testKeyImage(t)
	proposals, _, err := sender.Transfer([]PaymentProposalV1{first, second}, nil, 500, keyImage)
	require.NoError(t, err)
	require.Len(t, proposals, 3)

	for i := range proposals {
		for j := i + 1; j < len(proposals); j++ {
			require.NotEqual(t, proposals[i].EnoteEphemeralPubKey, proposals[j].EnoteEphemeralPubKey)
		}
	}
	requireAscendingByOneTimeAddress(t, proposals)
}

func TestFinalizeOutputSet_AllSelfSendNullPaymentId(t *testing.T) {
	t.Parallel()

	wallet := NewWallet(testMasterSecret, 8)
	keyImage := testKeyImage(t)

	selfSend := PaymentProposalSelfSendV1{
		DestinationSpendPub: wallet.Account().SpendPub,
		Amount:              testAmount,
		EnoteType:           EnoteTypePayment,
	}

	proposals, pidEnc, err := wallet.Transfer(nil, []PaymentProposalSelfSendV1{selfSend}, 500, keyImage)
	require.NoError(t, err)
	require.Len(t, proposals, 2)

	// no normal proposals, no pid slot to disguise
	require.Equal(t, NullPaymentId, pidEnc)
}

func TestFinalizeOutputSet_Invariants(t *testing.T) {
	t.Parallel()

	wallet := NewWallet(testMasterSecret, 8)
	receiver := NewWallet(testMasterSecret2, 8)

	keyImage := testKeyImage(t)

	selfSend := PaymentProposalSelfSendV1{
		DestinationSpendPub: wallet.Account().SpendPub,
		Amount:              testAmount,
		EnoteType:           EnoteTypeChange,
	}

	integratedProposal := func(t *testing.T) PaymentProposalV1 {
		paymentId, err := RandomPaymentId()
		require.NoError(t, err)
		destination, err := receiver.Destination(SubaddressIndex{}, paymentId)
		require.NoError(t, err)
		proposal, err := RandomPaymentProposal(destination, testAmount)
		require.NoError(t, err)
		return proposal
	}

	t.Run("single_integrated_address", func(t *testing.T) {
		_, _, err := GetOutputEnoteProposals(
			[]PaymentProposalV1{integratedProposal(t), integratedProposal(t)},
			[]PaymentProposalSelfSendV1{selfSend},
			wallet.ViewIncomingDevice(), wallet.ViewBalanceDevice(), wallet.Account().SpendPub, keyImage)
		require.ErrorIs(t, err, ErrTooManyPaymentIds)
	})

	t.Run("duplicate_randomness", func(t *testing.T) {
		destination, err := receiver.Destination(SubaddressIndex{}, NullPaymentId)
		require.NoError(t, err)
		proposal, err := RandomPaymentProposal(destination, testAmount)
		require.NoError(t, err)

		_, _, err = GetOutputEnoteProposals(
			[]PaymentProposalV1{proposal, proposal},
			[]PaymentProposalSelfSendV1{selfSend},
			wallet.ViewIncomingDevice(), wallet.ViewBalanceDevice(), wallet.Account().SpendPub, keyImage)
		require.ErrorIs(t, err, ErrDuplicateRandomness)
	})

	t.Run("missing_self_send", func(t *testing.T) {
		destination, err := receiver.Destination(SubaddressIndex{}, NullPaymentId)
		require.NoError(t, err)
		first, err := RandomPaymentProposal(destination, testAmount)
		require.NoError(t, err)
		second, err := RandomPaymentProposal(destination, testAmount)
		require.NoError(t, err)

		_, _, err = GetOutputEnoteProposals(
			[]PaymentProposalV1{first, second}, nil,
			wallet.ViewIncomingDevice(), wallet.ViewBalanceDevice(), wallet.Account().SpendPub, keyImage)
		require.ErrorIs(t, err, ErrMissingSelfSend)
	})

	t.Run("too_few_outputs", func(t *testing.T) {
		_, _, err := GetOutputEnoteProposals(
			nil, []PaymentProposalSelfSendV1{selfSend},
			wallet.ViewIncomingDevice(), wallet.ViewBalanceDevice(), wallet.Account().SpendPub, keyImage)
		require.ErrorIs(t, err, ErrTooFewOutputs)
	})

	t.Run("amount_overflow", func(t *testing.T) {
		destination, err := receiver.Destination(SubaddressIndex{}, NullPaymentId)
		require.NoError(t, err)
		huge, err := RandomPaymentProposal(destination, ^uint64(0))
		require.NoError(t, err)
		hugeSelfSend := selfSend
		hugeSelfSend.Amount = ^uint64(0)

		_, _, err = GetOutputEnoteProposals(
			[]PaymentProposalV1{huge},
			[]PaymentProposalSelfSendV1{hugeSelfSend},
			wallet.ViewIncomingDevice(), wallet.ViewBalanceDevice(), wallet.Account().SpendPub, keyImage)
		require.ErrorIs(t, err, ErrAmountOverflow)
	})

	t.Run("special_path_without_view_balance", func(t *testing.T) {
		destination, err := receiver.Destination(SubaddressIndex{}, NullPaymentId)
		require.NoError(t, err)
		proposal, err := RandomPaymentProposal(destination, testAmount)
		require.NoError(t, err)

		proposals, _, err := GetOutputEnoteProposals(
			[]PaymentProposalV1{proposal},
			[]PaymentProposalSelfSendV1{selfSend},
			wallet.ViewIncomingDevice(), nil, wallet.Account().SpendPub, keyImage)
		require.NoError(t, err)
		require.Len(t, proposals, 2)

		// the self-send must come back over the external path
		var foundSpecial bool
		for i := range proposals {
			record, err := wallet.ScanEnote(&proposals[i].Enote, proposals[i].EnoteEphemeralPubKey, NullPaymentId, keyImage)
			if err != nil {
				continue
			}
			require.False(t, record.Internal)
			require.Equal(t, EnoteTypeChange, record.EnoteType)
			foundSpecial = true
		}
		require.True(t, foundSpecial, "special self-send not recovered")
	})
}
