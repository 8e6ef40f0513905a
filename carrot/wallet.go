package carrot

import (
	"errors"

	"github.com/dolthub/swiss"

	"github.com/quietbit/enotes/crypto"
	"github.com/quietbit/enotes/types"
)

var ErrUnknownAddress = errors.New("recovered address does not belong to this wallet")

// SubaddressStore reverse index from address spend pubkeys to the index that
// generated them. Scanning recovers K^j_s; this answers "which of our
// addresses is that".
type SubaddressStore struct {
	account *AccountSecrets
	index   *swiss.Map[crypto.PublicKeyBytes, SubaddressIndex]
}

func NewSubaddressStore(account *AccountSecrets, capacity uint32) *SubaddressStore {
	s := &SubaddressStore{
		account: account,
		index:   swiss.NewMap[crypto.PublicKeyBytes, SubaddressIndex](capacity),
	}
	// the primary address is always known
	s.Register(SubaddressIndex{})
	return s
}

// Register derives and records the address at index i
func (s *SubaddressStore) Register(i SubaddressIndex) crypto.PublicKeyBytes {
	spendPub := s.account.SubaddressSpendPub(i)
	s.index.Put(spendPub, i)
	return spendPub
}

// RegisterRange derives all addresses with Account < majorCount and
// Offset < minorCount, the usual lookahead window
func (s *SubaddressStore) RegisterRange(majorCount, minorCount uint32) {
	for major := uint32(0); major < majorCount; major++ {
		for minor := uint32(0); minor < minorCount; minor++ {
			s.Register(SubaddressIndex{Account: major, Offset: minor})
		}
	}
}

func (s *SubaddressStore) Lookup(spendPub crypto.PublicKeyBytes) (SubaddressIndex, bool) {
	return s.index.Get(spendPub)
}

func (s *SubaddressStore) Count() int {
	return s.index.Count()
}

// EnoteRecordV1 a fully-located owned enote: the recovered plaintext plus
// which of the wallet's addresses received it and over which path
type EnoteRecordV1 struct {
	EnoteScanV1

	SubaddressIndex SubaddressIndex `json:"subaddress_index"`
	// Internal recovered over the internal self-send path
	Internal bool `json:"internal,omitempty"`
}

// Wallet full-capability in-memory wallet: the account secret hierarchy, its
// known subaddresses, and software devices for both key-material boundaries.
type Wallet struct {
	account      *AccountSecrets
	subaddresses *SubaddressStore

	viewIncomingDev ViewIncomingKeyDevice
	viewBalanceDev  ViewBalanceSecretDevice
}

func NewWallet(masterSecret types.Hash, subaddressCapacity uint32) *Wallet {
	account := MakeAccountSecrets(masterSecret)
	return &Wallet{
		account:         account,
		subaddresses:    NewSubaddressStore(account, subaddressCapacity),
		viewIncomingDev: NewInMemoryViewIncomingKeyDevice(account.ViewIncoming),
		viewBalanceDev:  NewInMemoryViewBalanceSecretDevice(account.ViewBalance),
	}
}

func (w *Wallet) Account() *AccountSecrets {
	return w.account
}

func (w *Wallet) Subaddresses() *SubaddressStore {
	return w.subaddresses
}

func (w *Wallet) ViewIncomingDevice() ViewIncomingKeyDevice {
	return w.viewIncomingDev
}

func (w *Wallet) ViewBalanceDevice() ViewBalanceSecretDevice {
	return w.viewBalanceDev
}

// Destination the receivable address at index i, optionally integrated
func (w *Wallet) Destination(i SubaddressIndex, paymentId PaymentId) (DestinationV1, error) {
	return w.account.Destination(i, paymentId)
}

func (w *Wallet) locate(record *EnoteRecordV1) error {
	i, ok := w.subaddresses.Lookup(record.AddressSpendPub)
	if !ok {
		return ErrUnknownAddress
	}
	record.SubaddressIndex = i
	return nil
}

// ScanEnote attempts recovery of a non-coinbase enote, trying the internal
// path before the external one: internal self-sends are cheaper to check and
// an internal match can never also be a valid external enote.
func (w *Wallet) ScanEnote(enote *EnoteV1, enoteEphemeralPubKey crypto.PublicKeyBytes, encryptedPaymentId PaymentId, txFirstKeyImage crypto.PublicKeyBytes) (record EnoteRecordV1, err error) {
	inputContext := MakeInputContext(txFirstKeyImage)

	if err = record.TryScanInternal(enote, enoteEphemeralPubKey, inputContext, w.viewBalanceDev); err == nil {
		record.Internal = true
		return record, w.locate(&record)
	}

	record = EnoteRecordV1{}
	if err = record.TryScanExternal(enote, enoteEphemeralPubKey, encryptedPaymentId, inputContext, w.viewIncomingDev, w.account.SpendPub); err != nil {
		return EnoteRecordV1{}, err
	}
	return record, w.locate(&record)
}

// ScanCoinbaseEnote attempts recovery of a coinbase enote, which can only pay
// the primary address.
func (w *Wallet) ScanCoinbaseEnote(enote *CoinbaseEnoteV1, enoteEphemeralPubKey crypto.PublicKeyBytes, blockIndex uint64) (record EnoteRecordV1, err error) {
	if err = record.TryScanCoinbase(enote, enoteEphemeralPubKey, blockIndex, w.viewIncomingDev, w.account.SpendPub); err != nil {
		return EnoteRecordV1{}, err
	}
	return record, w.locate(&record)
}

// Transfer builds and finalizes one transaction's output set paying the
// given proposals, with change going back to the primary address.
func (w *Wallet) Transfer(normalProposals []PaymentProposalV1, selfSendProposals []PaymentProposalSelfSendV1, remainingChange uint64, txFirstKeyImage crypto.PublicKeyBytes) ([]RCTOutputEnoteProposal, PaymentId, error) {
	changeDestination, err := w.Destination(SubaddressIndex{}, NullPaymentId)
	if err != nil {
		return nil, NullPaymentId, err
	}

	return FinalizeOutputSet(&normalProposals, &selfSendProposals, remainingChange, changeDestination, w.viewIncomingDev, w.viewBalanceDev, w.account.SpendPub, txFirstKeyImage)
}
