package bridgemodule

import (
	"context"
	"fmt"
	"reflect"

	"github.com/nspcc-dev/bridge-relay/pkg/bridgeerr"
	"github.com/nspcc-dev/bridge-relay/pkg/codec"
	"github.com/nspcc-dev/bridge-relay/pkg/feemath"
	"github.com/nspcc-dev/bridge-relay/pkg/lane"
	"github.com/nspcc-dev/bridge-relay/pkg/trie"
	"github.com/nspcc-dev/bridge-relay/pkg/util"
	"github.com/nspcc-dev/bridge-relay/pkg/xhash"
)

// wireUnrewardedEntry/wireInboundLaneData mirror pkg/lane's shapes, same
// reasoning as payload.go's lanedata: the trie value a peer chain actually
// stores is decoded into its own wire type, kept separate from the local
// transition API's types.
type wireUnrewardedEntry struct {
	Relayer         util.Hash256
	NoncesBegin     uint64
	NoncesEnd       uint64
	DispatchResults []bool
}

type wireInboundLaneData struct {
	LastConfirmedNonce uint64
	UnrewardedRelayers []wireUnrewardedEntry
}

func decodeInboundLaneData(b []byte) (wireInboundLaneData, error) {
	r := codec.NewBinReaderFromBuf(b)
	var d wireInboundLaneData
	d.LastConfirmedNonce = r.ReadU64LE()
	d.UnrewardedRelayers = codec.ReadArray(r, func(r *codec.BinReader) wireUnrewardedEntry {
		var e wireUnrewardedEntry
		hbuf := make([]byte, util.Hash256Size)
		r.ReadBytes(hbuf)
		copy(e.Relayer[:], hbuf)
		e.NoncesBegin = r.ReadU64LE()
		e.NoncesEnd = r.ReadU64LE()
		n := r.ReadCompactUint()
		e.DispatchResults = make([]bool, n)
		for i := range e.DispatchResults {
			e.DispatchResults[i] = r.ReadBool()
		}
		return e
	})
	if r.Err != nil {
		return wireInboundLaneData{}, fmt.Errorf("bridgemodule: decoding inbound lane state: %w", r.Err)
	}
	return d, nil
}

// ReceiveMessagesDeliveryProof is the bridge module's delivery-confirmation
// verifier (spec §4.G): it runs on the source chain, verifying what the
// target chain's InboundLaneData says against the relayer-submitted
// relayersState, then advances the outbound lane and settles relayer
// rewards from the relayer-fund account.
func ReceiveMessagesDeliveryProof(
	ctx context.Context,
	cfg *BridgeConfig,
	store lane.ChainStateStore,
	targetHeader util.Hash256,
	laneID util.LaneID,
	proof [][]byte,
	relayersState []lane.UnrewardedRelayerEntry,
) error {
	// 1. the target header must be finalized, per the oracle.
	root, ok, err := cfg.Oracle.StateRootOf(ctx, targetHeader)
	if err != nil {
		return fmt.Errorf("bridgemodule: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", bridgeerr.ErrUnknownHeader, targetHeader.StringBE())
	}

	// 2. read and decode the target's InboundLaneData.
	key := xhash.InboundLaneDataKey(cfg.BridgedPalletName, laneID)
	val, found, err := trie.VerifyProof(root, key, proof)
	if err != nil {
		return fmt.Errorf("bridgemodule: verifying inbound lane state: %w: %v", bridgeerr.ErrMalformedProof, err)
	}
	if !found {
		return fmt.Errorf("%w: inbound lane state missing from proof", bridgeerr.ErrMalformedProof)
	}
	decoded, err := decodeInboundLaneData(val)
	if err != nil {
		return fmt.Errorf("%w: %v", bridgeerr.ErrBadInboundLaneState, err)
	}

	// 3. reconcile against the caller-submitted relayersState: it must be
	// exactly what the proof itself says, so a relayer cannot claim a
	// reward for more than the target chain actually recorded.
	if !relayersMatch(decoded.UnrewardedRelayers, relayersState) {
		return bridgeerr.ErrBadDeliveryProof
	}

	// 4. advance latest_received_nonce/prune up to the highest nonce the
	// target has recorded (confirmed entries plus any still-unrewarded
	// tail), then settle rewards for the entries the target has fully
	// confirmed and drop them locally.
	highestDelivered := decoded.LastConfirmedNonce
	if n := len(decoded.UnrewardedRelayers); n > 0 {
		if last := decoded.UnrewardedRelayers[n-1].NoncesEnd; last > highestDelivered {
			highestDelivered = last
		}
	}
	if err := lane.AdvanceReceived(store, laneID, highestDelivered); err != nil {
		return err
	}
	if err := lane.Prune(store, laneID, highestDelivered); err != nil {
		return err
	}

	for _, e := range relayersState {
		if e.Nonces.End > decoded.LastConfirmedNonce {
			continue
		}
		reward := settlementReward(cfg, e)
		if reward == 0 {
			continue
		}
		if _, err := cfg.Balances.Transfer(cfg.RelayerFundAccount, e.Relayer, reward); err != nil {
			return fmt.Errorf("bridgemodule: settling relayer reward: %w", err)
		}
	}

	return lane.Confirm(store, laneID, decoded.LastConfirmedNonce)
}

// settlementReward is the confirmation-side component of a relayer's
// reward for one unrewarded entry: the confirmation transaction fee,
// scaled by how many of its messages actually dispatched (spec §4.C's
// relayer_premium is already folded into the fee reserved at SendMessage
// time; this is the portion only paid out once delivery is confirmed).
func settlementReward(cfg *BridgeConfig, e lane.UnrewardedRelayerEntry) feemath.Balance {
	var delivered uint64
	for i := 0; i < len(e.DispatchResults); i++ {
		if e.DispatchResults.Get(i) {
			delivered++
		}
	}
	if delivered == 0 {
		return 0
	}
	return cfg.ConfirmationTxFee().SaturatingMul(feemath.Balance(delivered))
}

func relayersMatch(wire []wireUnrewardedEntry, claimed []lane.UnrewardedRelayerEntry) bool {
	if len(wire) != len(claimed) {
		return false
	}
	for i := range wire {
		w, c := wire[i], claimed[i]
		if w.Relayer != c.Relayer || w.NoncesBegin != c.Nonces.Begin || w.NoncesEnd != c.Nonces.End {
			return false
		}
		if !reflect.DeepEqual(w.DispatchResults, []bool(c.DispatchResults)) {
			return false
		}
	}
	return true
}
