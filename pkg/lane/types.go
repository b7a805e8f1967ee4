// Package lane implements the bridge's inbound/outbound lane state model
// (spec §3, §4.D): the two per-lane storage tables every message passes
// through, and the transitions (OpenOutbound/Generate/AdvanceReceived/
// Prune/AcceptDelivered/Confirm) that are the only way to mutate them.
// Generate, AdvanceReceived, Prune and AcceptDelivered re-validate spec §8's
// invariants before committing, so an invariant violation there is a bug
// caught at the call site, never silently persisted; OpenOutbound and
// Confirm write without a validation pass.
package lane

import "github.com/nspcc-dev/bridge-relay/pkg/util"

// OutboundLaneData is the source-side per-lane table (spec §3).
type OutboundLaneData struct {
	OldestUnprunedNonce  util.MessageNonce
	LatestReceivedNonce  util.MessageNonce
	LatestGeneratedNonce util.MessageNonce
}

// NewOutboundLaneData returns the zero-value lane state open_outbound
// writes for a freshly opened lane: no message generated yet.
func NewOutboundLaneData() OutboundLaneData {
	return OutboundLaneData{}
}

// DispatchResultsBitmap is the per-unrewarded-relayer-entry record of
// which messages in its nonce range dispatched successfully (spec §3,
// §5 supplement). On the wire it is a compact length followed by one byte
// per entry, not bit-packed.
type DispatchResultsBitmap []bool

// NewDispatchResultsBitmap returns a bitmap of n false entries.
func NewDispatchResultsBitmap(n int) DispatchResultsBitmap {
	return make(DispatchResultsBitmap, n)
}

// Set records the dispatch outcome for the i-th message in the entry's
// nonce range.
func (b DispatchResultsBitmap) Set(i int, ok bool) { b[i] = ok }

// Get reports the dispatch outcome for the i-th message.
func (b DispatchResultsBitmap) Get(i int) bool { return b[i] }

// PopFront drops the leading n entries, as Confirm does when it trims the
// already-confirmed nonces off the front of a straddling entry.
func (b DispatchResultsBitmap) PopFront(n int) DispatchResultsBitmap {
	if n >= len(b) {
		return DispatchResultsBitmap{}
	}
	return b[n:]
}

// UnrewardedRelayerEntry is one entry of InboundLaneData.UnrewardedRelayers
// (spec §3): the relayer that submitted a batch, the nonce range it
// covered, and the per-message dispatch outcomes.
type UnrewardedRelayerEntry struct {
	Relayer         util.Hash256
	Nonces          util.NonceRange
	DispatchResults DispatchResultsBitmap
}

// InboundLaneData is the target-side per-lane table (spec §3).
type InboundLaneData struct {
	LastConfirmedNonce util.MessageNonce
	UnrewardedRelayers []UnrewardedRelayerEntry
}

// NewInboundLaneData returns the zero-value lane state for a freshly
// opened lane.
func NewInboundLaneData() InboundLaneData {
	return InboundLaneData{}
}

// TotalUnrewardedNonces returns how many nonces unrewarded_relayers
// currently covers end to end, the quantity MAX_UNCONFIRMED_MESSAGES
// bounds (spec §6.4).
func (d InboundLaneData) TotalUnrewardedNonces() uint64 {
	var total uint64
	for _, e := range d.UnrewardedRelayers {
		total += e.Nonces.Len()
	}
	return total
}
