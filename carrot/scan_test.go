package carrot

import (
	"crypto/subtle"
	"errors"
	"testing"

	"git.gammaspectra.live/P2Pool/edwards25519"

	"github.com/quietbit/enotes/crypto"
)

func testKeyImage(t *testing.T) crypto.PublicKeyBytes {
	t.Helper()
	keyImage, err := crypto.RandomPublicKey()
	if err != nil {
		t.Fatal(err)
	}
	return keyImage
}

func TestScanRoundTrip(t *testing.T) {
	t.Parallel()

	wallet := NewWallet(testMasterSecret, 64)
	wallet.Subaddresses().RegisterRange(4, 4)

	paymentId, err := RandomPaymentId()
	if err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		name  string
		index SubaddressIndex
		pid   PaymentId
	}{
		{"primary", SubaddressIndex{}, NullPaymentId},
		{"subaddress", testSubaddressIndex(), NullPaymentId},
		{"integrated", SubaddressIndex{}, paymentId},
	} {
		t.Run(tc.name, func(t *testing.T) {
			destination, err := wallet.Destination(tc.index, tc.pid)
			if err != nil {
				t.Fatal(err)
			}
			proposal, err := RandomPaymentProposal(destination, testAmount)
			if err != nil {
				t.Fatal(err)
			}

			keyImage := testKeyImage(t)
			output, pidEnc, err := proposal.NormalOutput(MakeInputContext(keyImage))
			if err != nil {
				t.Fatal(err)
			}

			record, err := wallet.ScanEnote(&output.Enote, output.EnoteEphemeralPubKey, pidEnc, keyImage)
			if err != nil {
				t.Fatalf("failed to scan own enote: %s", err)
			}

			if record.Amount != testAmount {
				t.Fatalf("amount mismatch: expected %d, got %d", testAmount, record.Amount)
			}
			if record.AmountBlindingFactor != output.AmountBlindingFactor {
				t.Fatal("amount blinding factor mismatch")
			}
			if record.EnoteType != EnoteTypePayment {
				t.Fatalf("enote type mismatch: expected payment, got %s", record.EnoteType)
			}
			if record.PaymentId != tc.pid {
				t.Fatalf("payment id mismatch: expected %x, got %x", tc.pid, record.PaymentId)
			}
			if record.SubaddressIndex != tc.index {
				t.Fatalf("subaddress index mismatch: expected %+v, got %+v", tc.index, record.SubaddressIndex)
			}
			if record.Internal {
				t.Fatal("external enote recovered over the internal path")
			}

			assertSpendable(t, wallet, &record, output.Enote.OneTimeAddress)
		})
	}
}

// assertSpendable the recovered extensions together with the account spend
// scalars must reproduce the onetime address over both generators:
// Ko = (k_gi + k^j_subscal + k^o_g) G + (k_ps + k^o_t) T
func assertSpendable(t *testing.T, wallet *Wallet, record *EnoteRecordV1, oneTimeAddress crypto.PublicKeyBytes) {
	t.Helper()
	account := wallet.Account()

	extG := record.SenderExtensionG.Scalar()
	extT := record.SenderExtensionT.Scalar()
	if extG == nil || extT == nil {
		t.Fatal("recovered extensions are not canonical scalars")
	}

	scalarG := new(edwards25519.Scalar).Add(account.GenerateImage, extG)
	if !record.SubaddressIndex.IsZero() {
		scalarG.Add(scalarG, account.SubaddressScalar(record.SubaddressIndex))
	}
	scalarT := new(edwards25519.Scalar).Add(account.ProveSpend, extT)

	p := new(edwards25519.Point).ScalarBaseMult(scalarG)
	p.Add(p, new(edwards25519.Point).ScalarMult(scalarT, crypto.GeneratorT.Point))
	if crypto.PublicKeyBytesFromPoint(p) != oneTimeAddress {
		t.Fatal("recovered extensions cannot reproduce the onetime address")
	}
}

func TestECDHSymmetry(t *testing.T) {
	t.Parallel()

	wallet := NewWallet(testMasterSecret, 8)
	inputContext := MakeInputContext(testKeyImage(t))

	for _, tc := range []struct {
		name  string
		index SubaddressIndex
	}{
		{"primary", SubaddressIndex{}},
		{"subaddress", testSubaddressIndex()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			destination, err := wallet.Destination(tc.index, NullPaymentId)
			if err != nil {
				t.Fatal(err)
			}
			proposal, err := RandomPaymentProposal(destination, testAmount)
			if err != nil {
				t.Fatal(err)
			}

			var ephemeralPrivKey edwards25519.Scalar
			proposal.enoteEphemeralPrivateKey(&ephemeralPrivKey, inputContext)
			enoteEphemeralPubKey, err := makeEnoteEphemeralPubKey(&ephemeralPrivKey, &destination)
			if err != nil {
				t.Fatal(err)
			}

			var senderSide, receiverSide edwards25519.Point
			makeUncontextualizedSharedKeySender(&senderSide, &ephemeralPrivKey, destination.ViewPub.Point())
			makeUncontextualizedSharedKeyReceiver(&receiverSide, wallet.ViewIncomingDevice(), enoteEphemeralPubKey.Point())

			if subtle.ConstantTimeCompare(senderSide.Bytes(), receiverSide.Bytes()) != 1 {
				t.Fatalf("shared secrets differ: sender %x, receiver %x", senderSide.Bytes(), receiverSide.Bytes())
			}
		})
	}
}

func TestScanRejection(t *testing.T) {
	t.Parallel()

	wallet := NewWallet(testMasterSecret, 8)
	otherWallet := NewWallet(testMasterSecret2, 8)

	destination, err := wallet.Destination(SubaddressIndex{}, NullPaymentId)
	if err != nil {
		t.Fatal(err)
	}
	proposal, err := RandomPaymentProposal(destination, testAmount)
	if err != nil {
		t.Fatal(err)
	}

	keyImage := testKeyImage(t)
	output, pidEnc, err := proposal.NormalOutput(MakeInputContext(keyImage))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("wrong_wallet", func(t *testing.T) {
		if _, err := otherWallet.ScanEnote(&output.Enote, output.EnoteEphemeralPubKey, pidEnc, keyImage); !errors.Is(err, ErrMismatchedViewTag) {
			t.Fatalf("expected ErrMismatchedViewTag, got %v", err)
		}
	})

	t.Run("wrong_input_context", func(t *testing.T) {
		if _, err := wallet.ScanEnote(&output.Enote, output.EnoteEphemeralPubKey, pidEnc, testKeyImage(t)); !errors.Is(err, ErrMismatchedViewTag) {
			t.Fatalf("expected ErrMismatchedViewTag, got %v", err)
		}
	})

	t.Run("tampered_anchor", func(t *testing.T) {
		tampered := output.Enote
		tampered.EncryptedJanusAnchor[0] ^= 0x40
		if _, err := wallet.ScanEnote(&tampered, output.EnoteEphemeralPubKey, pidEnc, keyImage); !errors.Is(err, ErrMismatchedJanusAnchor) {
			t.Fatalf("expected ErrMismatchedJanusAnchor, got %v", err)
		}
	})
}

// TestScanJanusAttack a malicious sender performs ECDH against the primary
// address but builds the onetime address against a subaddress spend pubkey,
// hoping the victim acknowledges the payment and thereby links the two
// addresses. View tag and amount checks pass; janus verification must not.
func TestScanJanusAttack(t *testing.T) {
	t.Parallel()

	wallet := NewWallet(testMasterSecret, 64)
	wallet.Subaddresses().RegisterRange(4, 4)

	primary, err := wallet.Destination(SubaddressIndex{}, NullPaymentId)
	if err != nil {
		t.Fatal(err)
	}

	malicious := DestinationV1{
		SpendPub: wallet.Account().SubaddressSpendPub(testSubaddressIndex()),
		ViewPub:  primary.ViewPub,
	}
	proposal, err := RandomPaymentProposal(malicious, testAmount)
	if err != nil {
		t.Fatal(err)
	}

	keyImage := testKeyImage(t)
	output, pidEnc, err := proposal.NormalOutput(MakeInputContext(keyImage))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := wallet.ScanEnote(&output.Enote, output.EnoteEphemeralPubKey, pidEnc, keyImage); !errors.Is(err, ErrMismatchedJanusAnchor) {
		t.Fatalf("expected ErrMismatchedJanusAnchor, got %v", err)
	}
}
