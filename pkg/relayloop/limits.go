package relayloop

import (
	"github.com/nspcc-dev/bridge-relay/pkg/feemath"
	"github.com/nspcc-dev/bridge-relay/pkg/relayclient"
)

// Mode controls whether the loop weighs profitability before submitting a
// delivery batch (spec §4.J step 4).
type Mode int

const (
	// Altruistic always delivers a selected batch regardless of cost.
	Altruistic Mode = iota
	// Rational only submits when the batch's prepaid fees cover the
	// loop's own estimated submission cost.
	Rational
)

// BatchLimits bounds a single ReceiveMessagesProof batch (spec §4.J step 3,
// §6.4's maximal_incoming_message_* derivations feed MaxWeight/MaxSize).
type BatchLimits struct {
	MaxMessages           uint64
	MaxWeight             feemath.Weight
	MaxSize               uint64
	MaxUnrewardedAtTarget uint64
}

// selectDeliveryTransactionLimits picks the longest prefix of details (sorted
// ascending by nonce, as message_details returns them) that fits MaxMessages,
// MaxWeight and MaxSize, implementing spec §4.J step 3's
// select_delivery_transaction_limits. A new submission always adds exactly
// one unrewarded-relayer entry at the target, so the whole batch is withheld
// (nil returned) once the target is already at MaxUnrewardedAtTarget
// capacity; the confirmation loop must catch up first.
func selectDeliveryTransactionLimits(details []relayclient.MessageDetail, limits BatchLimits, unrewardedAtTarget uint64) []relayclient.MessageDetail {
	if unrewardedAtTarget >= limits.MaxUnrewardedAtTarget {
		return nil
	}
	var weight feemath.Weight
	var size uint64
	selected := make([]relayclient.MessageDetail, 0, len(details))
	for _, d := range details {
		if limits.MaxMessages > 0 && uint64(len(selected)) >= limits.MaxMessages {
			break
		}
		nextWeight := weight.SaturatingAdd(d.DispatchWeight)
		nextSize := size + d.Size
		if limits.MaxWeight > 0 && nextWeight > limits.MaxWeight {
			break
		}
		if limits.MaxSize > 0 && nextSize > limits.MaxSize {
			break
		}
		weight, size = nextWeight, nextSize
		selected = append(selected, d)
	}
	return selected
}

func batchWeight(details []relayclient.MessageDetail) feemath.Weight {
	var w feemath.Weight
	for _, d := range details {
		w = w.SaturatingAdd(d.DispatchWeight)
	}
	return w
}

func batchPrepaidFee(details []relayclient.MessageDetail) feemath.Balance {
	var f feemath.Balance
	for _, d := range details {
		f = f.SaturatingAdd(d.PrepaidFee)
	}
	return f
}

// profitable decides whether to submit a batch under mode, given the loop's
// own estimated submission cost (spec §4.J step 4).
func profitable(mode Mode, batch []relayclient.MessageDetail, ownCost feemath.Balance) bool {
	if mode == Altruistic {
		return true
	}
	return batchPrepaidFee(batch) >= ownCost
}
