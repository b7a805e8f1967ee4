package bridgemodule

import (
	"context"

	"github.com/nspcc-dev/bridge-relay/pkg/feemath"
	"github.com/nspcc-dev/bridge-relay/pkg/oracle"
	"github.com/nspcc-dev/bridge-relay/pkg/util"
)

// WeightRange bounds the dispatch weight a call is allowed to declare
// (spec §4.E step 4's weight_limits_at_target(call)).
type WeightRange struct {
	Min, Max feemath.Weight
}

// Contains reports whether w falls within [Min, Max] inclusive.
func (r WeightRange) Contains(w feemath.Weight) bool {
	return w >= r.Min && w <= r.Max
}

// BalanceLedger is the account-balance side-table SendMessage and
// ReceiveMessagesProof move funds through. Real deployments back this
// with their chain's native balances pallet; it is injected rather than
// hard-coded per design notes §9.
type BalanceLedger interface {
	Transfer(from, to util.Hash256, amount feemath.Balance) (ok bool, err error)
}

// Dispatcher invokes the target-chain call dispatcher with decoded call
// bytes under the resolved origin account (spec §4.F step 6). The
// dispatcher itself — the smart-contract/call execution engine — is the
// "external collaborator" spec.md explicitly scopes out; Dispatch just
// reports whether the call succeeded.
type Dispatcher interface {
	Dispatch(ctx context.Context, origin util.Hash256, call []byte) (ok bool, err error)
}

// SignatureVerifier checks a TargetAccount origin's signature over the
// call bytes and spec version (spec §4.E step 3, §4.F step 6).
type SignatureVerifier interface {
	Verify(pub, sig, call []byte, specVersion uint32) bool
}

// BridgeConfig is the one aggregate value threading every chain-specific
// policy through E/F/G (design notes §9: "expose one aggregate bridge
// configuration value carrying function pointers/closures ... do not
// reproduce the deep generic hierarchy").
type BridgeConfig struct {
	// SourceChainID identifies this chain for derived-account entropy
	// (spec §6.3).
	SourceChainID util.ChainID
	// BridgedPalletName is the storage pallet name used in this bridge's
	// storage keys (spec §6.1).
	BridgedPalletName string

	// OpenLanes is the admin-configured set of lanes accepting outbound
	// traffic (Open Question 1, resolved — DESIGN.md).
	OpenLanes map[util.LaneID]bool

	MaxPendingMessages          uint64
	MaxUnrewardedRelayerEntries int
	MaxExtrinsicSize            uint64
	WeightLimitsAtTarget        func(call []byte) WeightRange

	BaseExtrinsicWeight feemath.Weight
	PerByteFee          feemath.Balance
	Multiplier          feemath.Balance
	WeightToFee         feemath.WeightToFee
	ConversionRate      feemath.ConversionRate
	DeliveryTxFee       feemath.DeliveryTxFeeFn
	ConfirmationTxFee   feemath.ConfirmationTxFeeFn
	RelayerFeePercent   uint64
	NextFeeMultiplier   feemath.Balance

	RelayerFundAccount util.Hash256
	Balances           BalanceLedger
	Dispatcher         Dispatcher
	Signatures         SignatureVerifier
	Oracle             oracle.Oracle

	// ReplayGuardSize bounds the LRU of recently accepted
	// (lane, nonces_start, nonces_end) tuples (spec §8 property 8).
	ReplayGuardSize int
}

// MaxDispatchWeight is maximal_incoming_message_dispatch_weight(spec §6.4):
// max_ext_weight / 2.
func MaxDispatchWeight(maxExtWeight feemath.Weight) feemath.Weight {
	return maxExtWeight / 2
}

// MaxIncomingMessageSize is maximal_incoming_message_size (spec §6.4):
// max_ext_size * 2 / 3.
func MaxIncomingMessageSize(maxExtSize uint64) uint64 {
	return maxExtSize * 2 / 3
}
