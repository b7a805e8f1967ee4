package feemath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWeightSaturatingAdd(t *testing.T) {
	require.Equal(t, Weight(3), Weight(1).SaturatingAdd(2))
	require.Equal(t, MaxWeight, MaxWeight.SaturatingAdd(1))
}

func TestWeightSaturatingMul(t *testing.T) {
	require.Equal(t, Weight(6), Weight(2).SaturatingMul(3))
	require.Equal(t, MaxWeight, Weight(math.MaxUint64).SaturatingMul(2))
	require.Equal(t, Weight(0), Weight(0).SaturatingMul(5))
}

func TestBalanceSaturatingSub(t *testing.T) {
	require.Equal(t, Balance(0), Balance(1).SaturatingSub(5))
	require.Equal(t, Balance(4), Balance(5).SaturatingSub(1))
}

func TestBalanceSaturatingAdd(t *testing.T) {
	require.Equal(t, MaxBalance, MaxBalance.SaturatingAdd(1))
}

func flatWeightToFee(w Weight) Balance { return Balance(w) }

func TestTransactionPayment(t *testing.T) {
	tx := Transaction{DispatchWeight: 100, Size: 10}
	got := TransactionPayment(5, 2, 3, flatWeightToFee, tx)
	// base=5, byteFee=2*10=20, dispatchFee=3*100=300 -> 325
	require.Equal(t, Balance(325), got)
}

func TestTransactionPaymentSaturates(t *testing.T) {
	tx := Transaction{DispatchWeight: Weight(math.MaxUint64), Size: 1}
	got := TransactionPayment(0, 0, Balance(math.MaxUint64), flatWeightToFee, tx)
	require.Equal(t, MaxBalance, got)
}

func TestRelayerPremium(t *testing.T) {
	require.Equal(t, Balance(10), RelayerPremium(100, 10))
	require.Equal(t, Balance(0), RelayerPremium(5, 10))
}

func TestMinimalMessageFee(t *testing.T) {
	rate, err := ConversionRateFromDecimalString("2")
	require.NoError(t, err)

	deliveryFee := func(payload []byte) Balance { return Balance(len(payload)) }
	confirmationFee := func() Balance { return 50 }

	got := MinimalMessageFee(rate, deliveryFee, confirmationFee, 10, make([]byte, 25))
	// delivery = 2*25=50, base=50+50=100, premium=10, total=110
	require.Equal(t, Balance(110), got)
}
