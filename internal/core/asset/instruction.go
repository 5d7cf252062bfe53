package asset

import (
	"encoding/json"

	sdkmath "cosmossdk.io/math"
)

// InstructionKind identifies how the host must execute an Instruction.
type InstructionKind string

const (
	// KindBankSend sends native coins.
	KindBankSend InstructionKind = "bank_send"
	// KindTokenTransfer calls transfer on a fungible token contract.
	KindTokenTransfer InstructionKind = "token_transfer"
	// KindNftTransfer calls transfer on an NFT contract.
	KindNftTransfer InstructionKind = "nft_transfer"
	// KindFeeSink delivers a fee through the chain-specific fee sink. Payload
	// carries the opaque encoded message.
	KindFeeSink InstructionKind = "fee_sink"
)

// Instruction is an externally visible transfer produced by a successful
// operation. Instructions are only handed to the host after the whole
// operation has committed.
type Instruction struct {
	Kind      InstructionKind `json:"kind"`
	Recipient string          `json:"recipient,omitempty"`
	Denom     string          `json:"denom,omitempty"`
	Contract  string          `json:"contract,omitempty"`
	Amount    sdkmath.Uint    `json:"amount"`
	TokenID   string          `json:"token_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// BankSend builds a native coin transfer.
func BankSend(to string, c Coin) Instruction {
	return Instruction{Kind: KindBankSend, Recipient: to, Denom: c.Denom, Amount: c.Amount}
}

// TokenTransfer builds a fungible token transfer.
func TokenTransfer(to string, t TokenAmount) Instruction {
	return Instruction{Kind: KindTokenTransfer, Recipient: to, Contract: t.Contract, Amount: t.Amount}
}

// NftTransfer builds an NFT transfer.
func NftTransfer(to string, n NftRef) Instruction {
	return Instruction{Kind: KindNftTransfer, Recipient: to, Contract: n.Contract, TokenID: n.TokenID, Amount: sdkmath.OneUint()}
}
