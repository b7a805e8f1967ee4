package bridgemodule

import (
	"context"
	"math/big"

	"github.com/nspcc-dev/bridge-relay/pkg/feemath"
	"github.com/nspcc-dev/bridge-relay/pkg/util"
)

type fakeBalances struct {
	balances map[util.Hash256]feemath.Balance
}

func newFakeBalances() *fakeBalances {
	return &fakeBalances{balances: make(map[util.Hash256]feemath.Balance)}
}

func (b *fakeBalances) fund(account util.Hash256, amount feemath.Balance) {
	b.balances[account] = b.balances[account].SaturatingAdd(amount)
}

func (b *fakeBalances) Transfer(from, to util.Hash256, amount feemath.Balance) (bool, error) {
	if b.balances[from] < amount {
		return false, nil
	}
	b.balances[from] -= amount
	b.balances[to] = b.balances[to].SaturatingAdd(amount)
	return true, nil
}

type fakeDispatcher struct {
	fail bool
}

func (d *fakeDispatcher) Dispatch(_ context.Context, _ util.Hash256, _ []byte) (bool, error) {
	return !d.fail, nil
}

type fakeSignatures struct {
	ok bool
}

func (s *fakeSignatures) Verify(_, _, _ []byte, _ uint32) bool {
	return s.ok
}

type fakeOracle struct {
	roots map[util.Hash256]util.Hash256
}

func (o *fakeOracle) StateRootOf(_ context.Context, header util.Hash256) (util.Hash256, bool, error) {
	root, ok := o.roots[header]
	return root, ok, nil
}

func wideWeightLimits(_ []byte) WeightRange {
	return WeightRange{Min: 0, Max: feemath.MaxWeight}
}

func testConfig() *BridgeConfig {
	return &BridgeConfig{
		SourceChainID:               util.ChainID{'s', 'r', 'c', 0},
		BridgedPalletName:           "BridgeMessages",
		OpenLanes:                   map[util.LaneID]bool{testLane: true},
		MaxPendingMessages:          8,
		MaxUnrewardedRelayerEntries: 4,
		MaxExtrinsicSize:            1 << 20,
		WeightLimitsAtTarget:        wideWeightLimits,
		BaseExtrinsicWeight:         100,
		PerByteFee:                  1,
		Multiplier:                  1,
		WeightToFee:                 func(w feemath.Weight) feemath.Balance { return feemath.Balance(w) },
		ConversionRate:              feemath.NewConversionRate(new(big.Int).Exp(big.NewInt(10), big.NewInt(feemath.ConversionRatePrecision), nil)),
		DeliveryTxFee:               func(payload []byte) feemath.Balance { return feemath.Balance(len(payload)) },
		ConfirmationTxFee:           func() feemath.Balance { return 10 },
		RelayerFeePercent:           10,
		RelayerFundAccount:          util.Hash256{0xff},
		Balances:                    newFakeBalances(),
		Dispatcher:                  &fakeDispatcher{},
		Signatures:                  &fakeSignatures{ok: true},
		Oracle:                      &fakeOracle{roots: map[util.Hash256]util.Hash256{}},
		ReplayGuardSize:             64,
	}
}

var testLane = util.LaneID{0, 0, 0, 9}
