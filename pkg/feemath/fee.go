package feemath

// WeightToFee converts a dispatch Weight into a Balance; the chain
// supplies the actual pricing curve (spec §4.C's "weight_to_fee(·)"
// closure parameter) — this package only ever calls it, never assumes a
// fixed table the way pkg/core/fee's Opcode price table does for NEO
// opcodes.
type WeightToFee func(Weight) Balance

// Transaction is the subset of an extrinsic's shape transaction_payment
// needs: its declared dispatch weight and encoded byte size.
type Transaction struct {
	DispatchWeight Weight
	Size           uint64
}

// TransactionPayment computes an extrinsic's total fee (spec §4.C):
//
//	weight_to_fee(base_extrinsic_weight) + per_byte_fee·size +
//	multiplier·weight_to_fee(dispatch_weight)
//
// Every step saturates; overflow never panics or wraps.
func TransactionPayment(
	baseExtrinsicWeight Weight,
	perByteFee Balance,
	multiplier Balance,
	weightToFee WeightToFee,
	tx Transaction,
) Balance {
	base := weightToFee(baseExtrinsicWeight)
	byteFee := perByteFee.SaturatingMul(Balance(tx.Size))
	dispatchFee := multiplier.SaturatingMul(weightToFee(tx.DispatchWeight))

	return base.SaturatingAdd(byteFee).SaturatingAdd(dispatchFee)
}

// RelayerPremium computes relayer_premium = minimal_fee * percent / 100
// (spec §4.C). Division happens last to keep the saturating-multiply
// headroom; percent is typically RELAYER_FEE_PERCENT (spec §6.4).
func RelayerPremium(minimalFee Balance, percent uint64) Balance {
	product := minimalFee.SaturatingMul(Balance(percent))
	return product / 100
}

// DeliveryTxFeeFn computes a message payload's delivery transaction fee on
// the bridged (source) chain.
type DeliveryTxFeeFn func(payload []byte) Balance

// ConfirmationTxFeeFn computes the fixed confirmation-transaction fee on
// the bridged chain.
type ConfirmationTxFeeFn func() Balance

// MinimalMessageFee computes the minimal fee a sender must reserve to
// queue a message (spec §4.C):
//
//	bridged_to_this(delivery_tx_fee(payload)) + confirmation_tx_fee() + relayer_premium
//
// relayerFeePercent is RELAYER_FEE_PERCENT (spec §6.4). Every step
// saturates.
func MinimalMessageFee(
	rate ConversionRate,
	deliveryTxFee DeliveryTxFeeFn,
	confirmationTxFee ConfirmationTxFeeFn,
	relayerFeePercent uint64,
	payload []byte,
) Balance {
	delivery := rate.BridgedToThis(deliveryTxFee(payload))
	confirmation := confirmationTxFee()
	base := delivery.SaturatingAdd(confirmation)
	premium := RelayerPremium(base, relayerFeePercent)
	return base.SaturatingAdd(premium)
}
