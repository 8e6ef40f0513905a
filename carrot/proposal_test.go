package carrot

import (
	"errors"
	"testing"

	"git.gammaspectra.live/P2Pool/edwards25519"

	"github.com/quietbit/enotes/crypto"
)

const testBlockIndex = uint64(3000000)

func TestPaymentProposalV1_CoinbaseOutput(t *testing.T) {
	t.Parallel()

	wallet := NewWallet(testMasterSecret, 8)

	destination, err := wallet.Destination(SubaddressIndex{}, NullPaymentId)
	if err != nil {
		t.Fatal(err)
	}
	proposal, err := RandomPaymentProposal(destination, testAmount)
	if err != nil {
		t.Fatal(err)
	}

	coinbase, err := proposal.CoinbaseOutput(testBlockIndex)
	if err != nil {
		t.Fatalf("failed to generate coinbase enote: %s", err)
	}
	if coinbase.Enote.Amount != testAmount {
		t.Fatalf("cleartext amount mismatch: expected %d, got %d", testAmount, coinbase.Enote.Amount)
	}

	t.Run("deterministic", func(t *testing.T) {
		again, err := proposal.CoinbaseOutput(testBlockIndex)
		if err != nil {
			t.Fatal(err)
		}
		if again != coinbase {
			t.Fatalf("coinbase enote not deterministic: expected %+v, got %+v", coinbase, again)
		}
	})

	t.Run("scan", func(t *testing.T) {
		record, err := wallet.ScanCoinbaseEnote(&coinbase.Enote, coinbase.EnoteEphemeralPubKey, testBlockIndex)
		if err != nil {
			t.Fatalf("failed to scan own coinbase enote: %s", err)
		}
		if record.Amount != testAmount {
			t.Fatalf("amount mismatch: expected %d, got %d", testAmount, record.Amount)
		}
		if record.AmountBlindingFactor != crypto.PrivateKeyBytesFromScalar(crypto.ScalarOne()) {
			t.Fatal("coinbase blinding factor is not the implied one")
		}
		if !record.SubaddressIndex.IsZero() {
			t.Fatalf("coinbase enote located at non-primary index %+v", record.SubaddressIndex)
		}
	})

	t.Run("wrong_block_index", func(t *testing.T) {
		if _, err := wallet.ScanCoinbaseEnote(&coinbase.Enote, coinbase.EnoteEphemeralPubKey, testBlockIndex+1); !errors.Is(err, ErrMismatchedViewTag) {
			t.Fatalf("expected ErrMismatchedViewTag, got %v", err)
		}
	})

	t.Run("subaddress_rejected", func(t *testing.T) {
		subDestination, err := wallet.Destination(testSubaddressIndex(), NullPaymentId)
		if err != nil {
			t.Fatal(err)
		}
		subProposal, err := RandomPaymentProposal(subDestination, testAmount)
		if err != nil {
			t.Fatal(err)
		}
		if _, err = subProposal.CoinbaseOutput(testBlockIndex); !errors.Is(err, ErrUnsupportedCoinbaseSubaddress) {
			t.Fatalf("expected ErrUnsupportedCoinbaseSubaddress, got %v", err)
		}
	})

	t.Run("payment_id_rejected", func(t *testing.T) {
		paymentId, err := RandomPaymentId()
		if err != nil {
			t.Fatal(err)
		}
		integrated, err := wallet.Destination(SubaddressIndex{}, paymentId)
		if err != nil {
			t.Fatal(err)
		}
		integratedProposal, err := RandomPaymentProposal(integrated, testAmount)
		if err != nil {
			t.Fatal(err)
		}
		if _, err = integratedProposal.CoinbaseOutput(testBlockIndex); !errors.Is(err, ErrUnsupportedCoinbasePaymentId) {
			t.Fatalf("expected ErrUnsupportedCoinbasePaymentId, got %v", err)
		}
	})

	t.Run("zero_randomness_rejected", func(t *testing.T) {
		zeroProposal := PaymentProposalV1{Destination: destination, Amount: testAmount}
		if _, err := zeroProposal.CoinbaseOutput(testBlockIndex); !errors.Is(err, ErrInvalidRandomness) {
			t.Fatalf("expected ErrInvalidRandomness, got %v", err)
		}
	})
}

func TestPaymentProposalV1_NormalOutput(t *testing.T) {
	t.Parallel()

	account := MakeAccountSecrets(testMasterSecret)
	destination, err := account.Destination(SubaddressIndex{}, NullPaymentId)
	if err != nil {
		t.Fatal(err)
	}

	proposal, err := RandomPaymentProposal(destination, testAmount)
	if err != nil {
		t.Fatal(err)
	}

	keyImage, err := crypto.RandomPublicKey()
	if err != nil {
		t.Fatal(err)
	}
	inputContext := MakeInputContext(keyImage)

	output, pidEnc, err := proposal.NormalOutput(inputContext)
	if err != nil {
		t.Fatalf("failed to generate enote: %s", err)
	}

	t.Run("deterministic", func(t *testing.T) {
		again, againPidEnc, err := proposal.NormalOutput(inputContext)
		if err != nil {
			t.Fatal(err)
		}
		if again != output || againPidEnc != pidEnc {
			t.Fatal("enote not deterministic")
		}
	})

	t.Run("commitment_opens", func(t *testing.T) {
		blindingFactor := output.AmountBlindingFactor.Scalar()
		if blindingFactor == nil {
			t.Fatal("amount blinding factor is not a canonical scalar")
		}
		if crypto.PublicKeyBytesFromPoint(crypto.Commit(new(edwards25519.Point), output.Amount, blindingFactor)) != output.Enote.AmountCommitment {
			t.Fatal("returned opening does not match the amount commitment")
		}
	})

	t.Run("zero_randomness_rejected", func(t *testing.T) {
		zeroProposal := PaymentProposalV1{Destination: destination, Amount: testAmount}
		if _, _, err := zeroProposal.NormalOutput(inputContext); !errors.Is(err, ErrInvalidRandomness) {
			t.Fatalf("expected ErrInvalidRandomness, got %v", err)
		}
	})
}
