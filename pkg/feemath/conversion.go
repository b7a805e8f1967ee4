package feemath

import (
	"math/big"

	"github.com/nspcc-dev/bridge-relay/pkg/encoding/fixedn"
)

// ConversionRatePrecision is the number of fractional decimal digits a
// ConversionRate carries (spec §3 "18-decimal fixed-point scalar").
const ConversionRatePrecision = 18

// conversionRateScale is 10^18, the fixed-point denominator.
var conversionRateScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(ConversionRatePrecision), nil)

// ConversionRate is source_balance_per_unit_bridged_balance: an 18-decimal
// fixed-point scalar stored on-chain per bridge (spec §3).
type ConversionRate struct {
	// scaled holds rate * 10^18 as an integer.
	scaled *big.Int
}

// NewConversionRate builds a ConversionRate from its scaled (rate * 10^18)
// integer representation, as stored on chain.
func NewConversionRate(scaled *big.Int) ConversionRate {
	return ConversionRate{scaled: new(big.Int).Set(scaled)}
}

// ConversionRateFromDecimalString parses a decimal string such as
// "1.5" into a ConversionRate, using fixedn's decimal parser.
func ConversionRateFromDecimalString(s string) (ConversionRate, error) {
	bi, err := fixedn.FromString(s, ConversionRatePrecision)
	if err != nil {
		return ConversionRate{}, err
	}
	return NewConversionRate(bi), nil
}

// String renders the rate as a decimal string via fixedn's formatter.
func (r ConversionRate) String() string {
	return fixedn.ToString(r.scaled, ConversionRatePrecision)
}

// Scaled returns the rate's raw rate*10^18 integer representation.
func (r ConversionRate) Scaled() *big.Int {
	return new(big.Int).Set(r.scaled)
}

// BridgedToThis converts an amount denominated in the bridged chain's
// balance into this chain's balance: conversion_rate · bridged_balance,
// clipped to Balance::MAX on overflow (spec §4.C).
func (r ConversionRate) BridgedToThis(bridged Balance) Balance {
	product := new(big.Int).Mul(r.scaled, new(big.Int).SetUint64(uint64(bridged)))
	product.Div(product, conversionRateScale)
	if product.Sign() < 0 {
		return 0
	}
	if !product.IsUint64() {
		return MaxBalance
	}
	return Balance(product.Uint64())
}
