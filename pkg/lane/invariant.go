package lane

import (
	"errors"
	"fmt"
)

// ErrInvariantViolated signals a bug in a caller's inputs, not a user-
// facing contract error: the validating transitions re-check spec §8's
// invariants before committing a write, so this should never surface
// from a correctly written E/F/G caller.
var ErrInvariantViolated = errors.New("lane: invariant violated")

// validateOutbound checks spec §3's outbound invariant:
// oldest_unpruned_nonce ≤ latest_received_nonce+1 ≤ latest_generated_nonce+1.
func validateOutbound(d OutboundLaneData) error {
	if d.OldestUnprunedNonce > d.LatestReceivedNonce+1 {
		return fmt.Errorf("%w: oldest_unpruned_nonce %d exceeds latest_received_nonce+1 %d",
			ErrInvariantViolated, d.OldestUnprunedNonce, d.LatestReceivedNonce+1)
	}
	if d.LatestReceivedNonce > d.LatestGeneratedNonce {
		return fmt.Errorf("%w: latest_received_nonce %d exceeds latest_generated_nonce %d",
			ErrInvariantViolated, d.LatestReceivedNonce, d.LatestGeneratedNonce)
	}
	return nil
}

// validateInbound checks spec §3/§8's inbound invariant: unrewarded
// relayer entries never exceed maxEntries, and their nonce ranges are
// disjoint, contiguous and ascending.
func validateInbound(d InboundLaneData, maxEntries int) error {
	if len(d.UnrewardedRelayers) > maxEntries {
		return fmt.Errorf("%w: %d unrewarded entries exceeds maximum %d",
			ErrInvariantViolated, len(d.UnrewardedRelayers), maxEntries)
	}
	for i := 1; i < len(d.UnrewardedRelayers); i++ {
		prev := d.UnrewardedRelayers[i-1]
		cur := d.UnrewardedRelayers[i]
		if cur.Nonces.Begin != prev.Nonces.End+1 {
			return fmt.Errorf("%w: unrewarded entry nonce ranges are not contiguous and ascending",
				ErrInvariantViolated)
		}
	}
	return nil
}
