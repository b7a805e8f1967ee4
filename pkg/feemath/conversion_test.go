package feemath

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConversionRateFromDecimalString(t *testing.T) {
	r, err := ConversionRateFromDecimalString("1.5")
	require.NoError(t, err)
	require.Equal(t, "1.5", r.String())
}

func TestConversionRateBridgedToThis(t *testing.T) {
	r, err := ConversionRateFromDecimalString("2")
	require.NoError(t, err)
	require.Equal(t, Balance(200), r.BridgedToThis(100))
}

func TestConversionRateBridgedToThisSaturates(t *testing.T) {
	r := NewConversionRate(new(big.Int).Exp(big.NewInt(10), big.NewInt(30), nil))
	require.Equal(t, MaxBalance, r.BridgedToThis(MaxBalance))
}

func TestConversionRateFractional(t *testing.T) {
	r, err := ConversionRateFromDecimalString("0.5")
	require.NoError(t, err)
	require.Equal(t, Balance(50), r.BridgedToThis(100))
}
