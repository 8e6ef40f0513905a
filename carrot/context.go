package carrot

import (
	"encoding/binary"

	"github.com/quietbit/enotes/crypto"
)

// MakeInputContext input_context = "R" || KI_1, binding all per-enote secrets
// to the transaction spending the first key image
func MakeInputContext(txFirstKeyImage crypto.PublicKeyBytes) (inputContext InputContext) {
	inputContext[0] = DomainSeparatorInputContext
	copy(inputContext[1:], txFirstKeyImage[:])
	return inputContext
}

// MakeCoinbaseInputContext input_context = "C" || LE64(block_index), binding
// coinbase enote secrets to one block
func MakeCoinbaseInputContext(blockIndex uint64) (inputContext InputContext) {
	inputContext[0] = DomainSeparatorInputContextCoinbase
	binary.LittleEndian.PutUint64(inputContext[1:], blockIndex)
	// left bytes are 0
	return inputContext
}
