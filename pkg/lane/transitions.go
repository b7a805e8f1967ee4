package lane

import (
	"fmt"

	"github.com/nspcc-dev/bridge-relay/pkg/bridgeerr"
	"github.com/nspcc-dev/bridge-relay/pkg/feemath"
	"github.com/nspcc-dev/bridge-relay/pkg/util"
)

// OpenOutbound admin-opens lane's outbound table (spec §4.D). It is an
// error to open an already-open lane.
func OpenOutbound(store ChainStateStore, lane util.LaneID) error {
	_, exists, err := store.Outbound(lane)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("lane: outbound lane %s is already open", lane)
	}
	return store.SetOutbound(lane, NewOutboundLaneData())
}

// Generate admits a new outbound message (called by E after E's own
// open-set/origin/size/fee checks): assigns the next nonce, writes the
// message, and advances latest_generated_nonce. maxPending is
// MAX_PENDING_MESSAGES (spec §4.E step 2).
func Generate(
	store ChainStateStore,
	laneID util.LaneID,
	payload []byte,
	fee feemath.Balance,
	maxPending uint64,
) (util.MessageNonce, error) {
	d, exists, err := store.Outbound(laneID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("lane: outbound lane %s is not open", laneID)
	}

	pending := d.LatestGeneratedNonce - d.LatestReceivedNonce
	if pending >= maxPending {
		return 0, bridgeerr.ErrTooManyPending
	}

	nonce := d.LatestGeneratedNonce + 1
	d.LatestGeneratedNonce = nonce
	if err := validateOutbound(d); err != nil {
		return 0, err
	}

	if err := store.SetMessage(laneID, nonce, MessageData{Payload: payload, PrepaidFee: fee}); err != nil {
		return 0, err
	}
	if err := store.SetOutbound(laneID, d); err != nil {
		return 0, err
	}
	return nonce, nil
}

// AdvanceReceived moves latest_received_nonce forward to newNonce (G's
// first step, spec §4.G.4). It never moves backward and never exceeds
// latest_generated_nonce.
func AdvanceReceived(store ChainStateStore, laneID util.LaneID, newNonce util.MessageNonce) error {
	d, exists, err := store.Outbound(laneID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("lane: outbound lane %s is not open", laneID)
	}
	if newNonce < d.LatestReceivedNonce {
		return fmt.Errorf("%w: new received nonce %d precedes current %d", ErrInvariantViolated, newNonce, d.LatestReceivedNonce)
	}
	if newNonce > d.LatestGeneratedNonce {
		return fmt.Errorf("%w: new received nonce %d exceeds latest generated %d", ErrInvariantViolated, newNonce, d.LatestGeneratedNonce)
	}
	d.LatestReceivedNonce = newNonce
	if err := validateOutbound(d); err != nil {
		return err
	}
	return store.SetOutbound(laneID, d)
}

// Prune deletes stored messages for nonces up to and including upTo and
// advances oldest_unpruned_nonce past them (spec §4.D, internal). upTo is
// clamped to latest_received_nonce so pruning can never outrun what the
// target has actually confirmed.
func Prune(store ChainStateStore, laneID util.LaneID, upTo util.MessageNonce) error {
	d, exists, err := store.Outbound(laneID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("lane: outbound lane %s is not open", laneID)
	}
	if upTo > d.LatestReceivedNonce {
		upTo = d.LatestReceivedNonce
	}
	for n := d.OldestUnprunedNonce; n <= upTo; n++ {
		if err := store.DeleteMessage(laneID, n); err != nil {
			return err
		}
	}
	if upTo+1 > d.OldestUnprunedNonce {
		d.OldestUnprunedNonce = upTo + 1
	}
	if err := validateOutbound(d); err != nil {
		return err
	}
	return store.SetOutbound(laneID, d)
}

// AcceptDelivered appends a new unrewarded-relayer entry to the inbound
// lane (F's step 7, spec §4.F). The whole call fails with
// bridgeerr.ErrTooManyUnrewarded, with no state change, if the resulting
// length would exceed maxEntries.
func AcceptDelivered(
	store ChainStateStore,
	laneID util.LaneID,
	relayer util.Hash256,
	nonces util.NonceRange,
	bitmap DispatchResultsBitmap,
	maxEntries int,
) error {
	d, _, err := store.Inbound(laneID)
	if err != nil {
		return err
	}

	entries := make([]UnrewardedRelayerEntry, 0, len(d.UnrewardedRelayers)+1)
	entries = append(entries, d.UnrewardedRelayers...)
	entries = append(entries, UnrewardedRelayerEntry{Relayer: relayer, Nonces: nonces, DispatchResults: bitmap})

	candidate := d
	candidate.UnrewardedRelayers = entries
	if err := validateInbound(candidate, maxEntries); err != nil {
		if len(entries) > maxEntries {
			return bridgeerr.ErrTooManyUnrewarded
		}
		return err
	}
	return store.SetInbound(laneID, candidate)
}

// Confirm reduces unrewarded_relayers down to what remains unconfirmed
// past upTo (spec §4.D/§4.G.4): entries entirely at or before upTo are
// dropped, a straddling entry is trimmed from the front.
func Confirm(store ChainStateStore, laneID util.LaneID, upTo util.MessageNonce) error {
	d, exists, err := store.Inbound(laneID)
	if err != nil {
		return err
	}
	if !exists || upTo <= d.LastConfirmedNonce {
		return nil
	}

	kept := make([]UnrewardedRelayerEntry, 0, len(d.UnrewardedRelayers))
	for _, e := range d.UnrewardedRelayers {
		switch {
		case e.Nonces.End <= upTo:
			continue
		case e.Nonces.Begin > upTo:
			kept = append(kept, e)
		default:
			trimmed := int(upTo-e.Nonces.Begin) + 1
			e.Nonces.Begin = upTo + 1
			e.DispatchResults = e.DispatchResults.PopFront(trimmed)
			kept = append(kept, e)
		}
	}
	d.UnrewardedRelayers = kept
	d.LastConfirmedNonce = upTo
	return store.SetInbound(laneID, d)
}
