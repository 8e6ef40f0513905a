package carrot

import (
	"testing"

	"github.com/quietbit/enotes/crypto"
	"github.com/quietbit/enotes/utils"
)

func TestSubaddressStore(t *testing.T) {
	t.Parallel()

	account := MakeAccountSecrets(testMasterSecret)
	store := NewSubaddressStore(account, 64)
	store.RegisterRange(2, 3)

	if store.Count() != 6 {
		t.Fatalf("expected 6 registered addresses, got %d", store.Count())
	}

	i, ok := store.Lookup(account.SpendPub)
	if !ok || !i.IsZero() {
		t.Fatalf("primary spend pubkey not found at the zero index: %+v, %v", i, ok)
	}

	index := SubaddressIndex{Account: 1, Offset: 2}
	found, ok := store.Lookup(account.SubaddressSpendPub(index))
	if !ok || found != index {
		t.Fatalf("expected %+v, got %+v, %v", index, found, ok)
	}

	if _, ok = store.Lookup(account.SubaddressSpendPub(SubaddressIndex{Account: 5})); ok {
		t.Fatal("unregistered subaddress found in store")
	}
}

func TestEnoteProposalJSON(t *testing.T) {
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

	keyImage, err := crypto.RandomPublicKey()
	if err != nil {
		t.Fatal(err)
	}
	output, _, err := proposal.NormalOutput(MakeInputContext(keyImage))
	if err != nil {
		t.Fatal(err)
	}

	buf, err := utils.MarshalJSON(&output)
	if err != nil {
		t.Fatal(err)
	}

	var decoded RCTOutputEnoteProposal
	if err = utils.UnmarshalJSON(buf, &decoded); err != nil {
		t.Fatalf("failed to decode %s: %s", string(buf), err)
	}
	if decoded != output {
		t.Fatalf("round trip mismatch: expected %+v, got %+v", output, decoded)
	}
}
