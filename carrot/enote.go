package carrot

import (
	"github.com/quietbit/enotes/crypto"
)

// EnoteType domain-separates the amount blinding factor and encryption masks
// of outgoing payments vs. change back to self. Distinct types let two enotes
// to the same address in one transaction stay distinguishable.
type EnoteType uint8

const (
	EnoteTypePayment = EnoteType(iota)
	EnoteTypeChange
)

func (t EnoteType) String() string {
	switch t {
	case EnoteTypePayment:
		return "payment"
	case EnoteTypeChange:
		return "change"
	default:
		return "unknown"
	}
}

func (t EnoteType) bytes() []byte {
	return []byte{uint8(t)}
}

// EnoteV1 one transaction output as it appears on the wire. The enote
// ephemeral pubkey D_e travels next to it in the transaction, not inside it.
type EnoteV1 struct {
	// OneTimeAddress Ko
	OneTimeAddress crypto.PublicKeyBytes `json:"onetime_address"`
	// AmountCommitment C_a = k_a G + a H
	AmountCommitment crypto.PublicKeyBytes `json:"amount_commitment"`
	// EncryptedAmount a_enc = a XOR m_a
	EncryptedAmount EncryptedAmount `json:"encrypted_amount"`
	// EncryptedJanusAnchor anchor_enc = anchor XOR m_anchor
	EncryptedJanusAnchor JanusAnchor `json:"encrypted_janus_anchor"`
	// ViewTag vt
	ViewTag ViewTag `json:"view_tag"`
}

// CoinbaseEnoteV1 a miner reward output. The amount is public, so there is no
// commitment and no amount encryption; the commitment is implied as
// C_a = 1 G + a H.
type CoinbaseEnoteV1 struct {
	// OneTimeAddress Ko
	OneTimeAddress crypto.PublicKeyBytes `json:"onetime_address"`
	// Amount a, cleartext
	Amount uint64 `json:"amount"`
	// EncryptedJanusAnchor anchor_enc = anchor XOR m_anchor
	EncryptedJanusAnchor JanusAnchor `json:"encrypted_janus_anchor"`
	// ViewTag vt
	ViewTag ViewTag `json:"view_tag"`
}

// RCTOutputEnoteProposal a finished enote plus the openings a transaction
// builder needs for its range proof and balance proof
type RCTOutputEnoteProposal struct {
	Enote EnoteV1 `json:"enote"`

	// EnoteEphemeralPubKey D_e
	EnoteEphemeralPubKey crypto.PublicKeyBytes `json:"enote_ephemeral_pubkey"`

	// Amount a, opening of Enote.EncryptedAmount
	Amount uint64 `json:"amount"`
	// AmountBlindingFactor k_a, opening of Enote.AmountCommitment
	AmountBlindingFactor crypto.PrivateKeyBytes `json:"amount_blinding_factor"`
}

// CoinbaseOutputEnoteProposal a finished coinbase enote plus its ephemeral
// pubkey
type CoinbaseOutputEnoteProposal struct {
	Enote CoinbaseEnoteV1 `json:"enote"`

	// EnoteEphemeralPubKey D_e
	EnoteEphemeralPubKey crypto.PublicKeyBytes `json:"enote_ephemeral_pubkey"`
}
