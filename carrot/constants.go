package carrot

import (
	"github.com/quietbit/enotes/types"
)

// Domain separators of every transcript hash in the protocol. A derived value
// is only ever valid under exactly one of these.
const (
	DomainSeparatorProveSpendKey         = "Carrot prove-spend key"
	DomainSeparatorViewBalanceSecret     = "Carrot view-balance secret"
	DomainSeparatorGenerateImageKey      = "Carrot generate-image key"
	DomainSeparatorIncomingViewKey       = "Carrot incoming view key"
	DomainSeparatorGenerateAddressSecret = "Carrot generate-address secret"
	DomainSeparatorAddressIndexGenerator = "Carrot address index generator"
	DomainSeparatorSubaddressScalar      = "Carrot subaddress scalar"

	DomainSeparatorJanusAnchorSpecial      = "Carrot janus anchor special"
	DomainSeparatorEphemeralPrivateKey     = "Carrot sending key normal"
	DomainSeparatorSenderReceiverSecret    = "Carrot sender-receiver secret"
	DomainSeparatorOneTimeExtensionG       = "Carrot key extension G"
	DomainSeparatorOneTimeExtensionT       = "Carrot key extension T"
	DomainSeparatorAmountBlindingFactor    = "Carrot commitment mask"
	DomainSeparatorEncryptionMaskAmount    = "Carrot encryption mask a"
	DomainSeparatorEncryptionMaskAnchor    = "Carrot encryption mask anchor"
	DomainSeparatorEncryptionMaskPaymentId = "Carrot encryption mask pid"
	DomainSeparatorViewTag                 = "Carrot view tag"

	DomainSeparatorInputContext         = 'R'
	DomainSeparatorInputContextCoinbase = 'C'
)

const (
	// JanusAnchorSize anchor_norm / anchor_sp
	JanusAnchorSize = 16
	// ViewTagSize vt = H_3(...), sized for cheap scan rejection
	ViewTagSize = 3
	PaymentIdSize       = 8
	EncryptedAmountSize = 8
	// InputContextSize 1-byte domain tag plus a key image or padded block index
	InputContextSize = 1 + types.HashSize
)

const (
	MinTxOutputs = 2
	MaxTxOutputs = 16
)

type JanusAnchor [JanusAnchorSize]byte
type ViewTag [ViewTagSize]byte
type PaymentId [PaymentIdSize]byte
type EncryptedAmount [EncryptedAmountSize]byte
type InputContext [InputContextSize]byte

// Null sentinels: the all-zero pattern is the wire representation of "absent".
// A live janus anchor or integrated payment id must never be zero.
var NullPaymentId PaymentId
var NullJanusAnchor JanusAnchor
