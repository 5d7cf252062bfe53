package fee

import (
	"encoding/json"
	"fmt"

	"github.com/LeJamon/goMarketd/internal/core/asset"
)

// Sink delivers collected fees. Implementations encode a chain-specific
// message which the core treats as opaque.
type Sink interface {
	Transfer(fee asset.Coin) (asset.Instruction, error)
}

// CommunityPoolSink funds a community pool on behalf of the marketplace
// account. It is the default binding.
type CommunityPoolSink struct {
	Depositor string
}

type fundCommunityPool struct {
	Type      string       `json:"@type"`
	Amount    []asset.Coin `json:"amount"`
	Depositor string       `json:"depositor"`
}

// Transfer encodes a fund-community-pool message for fee.
func (s CommunityPoolSink) Transfer(fee asset.Coin) (asset.Instruction, error) {
	payload, err := json.Marshal(fundCommunityPool{
		Type:      "/cosmos.distribution.v1beta1.MsgFundCommunityPool",
		Amount:    []asset.Coin{fee},
		Depositor: s.Depositor,
	})
	if err != nil {
		return asset.Instruction{}, fmt.Errorf("failed to encode community pool message: %w", err)
	}
	return asset.Instruction{
		Kind:    asset.KindFeeSink,
		Denom:   fee.Denom,
		Amount:  fee.Amount,
		Payload: payload,
	}, nil
}

// AddressSink pays fees to a plain address with a bank send.
type AddressSink struct {
	Address string
}

// Transfer sends fee to the sink address.
func (s AddressSink) Transfer(fee asset.Coin) (asset.Instruction, error) {
	if s.Address == "" {
		return asset.Instruction{}, fmt.Errorf("fee sink address is empty")
	}
	ins := asset.BankSend(s.Address, fee)
	ins.Kind = asset.KindFeeSink
	return ins, nil
}
