package bridgemodule

import (
	"fmt"

	"github.com/hashicorp/golang-lru"
	"github.com/nspcc-dev/bridge-relay/pkg/util"
)

// replayKey identifies one already-processed messages-delivery batch: a
// relayer can resubmit the exact same (lane, nonce range) proof — after a
// dropped acknowledgement, say — and ReceiveMessagesProof must treat the
// resubmission as a no-op rather than re-dispatching (spec §8 property 8,
// idempotence).
type replayKey struct {
	lane  util.LaneID
	begin util.MessageNonce
	end   util.MessageNonce
}

// ReplayGuard is a bounded LRU of recently accepted batches. It never
// claims a batch was *not* processed just because it aged out of the
// cache: callers still fall back to the inbound lane's own
// last_confirmed_nonce/unrewarded_relayers bookkeeping, which is the
// authoritative source of truth. The guard only exists to short-circuit
// the common case cheaply.
type ReplayGuard struct {
	seen *lru.Cache
}

// NewReplayGuard returns a ReplayGuard caching up to size recent batches.
func NewReplayGuard(size int) (*ReplayGuard, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("bridgemodule: building replay guard: %w", err)
	}
	return &ReplayGuard{seen: c}, nil
}

// Seen reports whether this exact batch was already recorded.
func (g *ReplayGuard) Seen(lane util.LaneID, nonces util.NonceRange) bool {
	_, ok := g.seen.Get(replayKey{lane: lane, begin: nonces.Begin, end: nonces.End})
	return ok
}

// Record marks a batch as processed.
func (g *ReplayGuard) Record(lane util.LaneID, nonces util.NonceRange) {
	g.seen.Add(replayKey{lane: lane, begin: nonces.Begin, end: nonces.End}, struct{}{})
}
