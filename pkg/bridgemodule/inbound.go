package bridgemodule

import (
	"context"
	"fmt"

	"github.com/nspcc-dev/bridge-relay/pkg/bridgeerr"
	"github.com/nspcc-dev/bridge-relay/pkg/lane"
	"github.com/nspcc-dev/bridge-relay/pkg/trie"
	"github.com/nspcc-dev/bridge-relay/pkg/util"
	"github.com/nspcc-dev/bridge-relay/pkg/xhash"
)

// DeliveryReport summarizes one ReceiveMessagesProof call: the lane and
// nonce range, how many of the claimed messages dispatched successfully or
// failed, and whether the call was a replay no-op.
type DeliveryReport struct {
	Lane       util.LaneID
	Nonces     util.NonceRange
	Dispatched int
	Failed     int
	Replayed   bool
}

// ReceiveMessagesProof is the bridge module's inbound verifier and
// dispatcher (spec §4.F). It is idempotent: resubmitting a batch the
// ReplayGuard has already recorded returns a DeliveryReport with
// Replayed=true and touches no state.
func ReceiveMessagesProof(
	ctx context.Context,
	cfg *BridgeConfig,
	store lane.ChainStateStore,
	guard *ReplayGuard,
	relayer util.Hash256,
	sourceHeader util.Hash256,
	laneID util.LaneID,
	nonces util.NonceRange,
	messagesCount uint64,
	proof [][]byte,
	includeOutboundLaneState bool,
) (DeliveryReport, error) {
	report := DeliveryReport{Lane: laneID, Nonces: nonces}

	// 1. messages_count must match the claimed nonce range exactly.
	if nonces.Len() != messagesCount {
		return report, fmt.Errorf("%w: claims %d messages for range %s", bridgeerr.ErrCountMismatch, messagesCount, nonces)
	}

	// replay guard: a resubmitted batch is a no-op, not an error.
	if guard != nil && guard.Seen(laneID, nonces) {
		report.Replayed = true
		return report, nil
	}

	// a batch the inbound lane has already received is a no-op as well,
	// even once it has aged out of the replay guard.
	if nonces.Len() > 0 {
		inbound, ok, err := store.Inbound(laneID)
		if err != nil {
			return report, err
		}
		if ok {
			last := inbound.LastConfirmedNonce
			if n := len(inbound.UnrewardedRelayers); n > 0 && inbound.UnrewardedRelayers[n-1].Nonces.End > last {
				last = inbound.UnrewardedRelayers[n-1].Nonces.End
			}
			if nonces.End <= last {
				report.Replayed = true
				return report, nil
			}
		}
	}

	// 2. the source header must be finalized, per the oracle.
	root, ok, err := cfg.Oracle.StateRootOf(ctx, sourceHeader)
	if err != nil {
		return report, fmt.Errorf("bridgemodule: %w", err)
	}
	if !ok {
		return report, fmt.Errorf("%w: %s", bridgeerr.ErrUnknownHeader, sourceHeader.StringBE())
	}

	// Every message key and (optionally) the outbound-lane-state key share
	// one proof bag, since they come from the same state_getReadProof call
	// and their paths overlap; VerifyProofBatch walks them all against it
	// at once so a node used by one key's walk isn't flagged unused just
	// because another key's walk didn't need it.
	keys := make([][]byte, 0, nonces.Len()+1)
	for nonce := nonces.Begin; nonce <= nonces.End; nonce++ {
		keys = append(keys, xhash.MessageKey(cfg.BridgedPalletName, laneID, nonce))
	}
	outboundKey := xhash.OutboundLaneDataKey(cfg.BridgedPalletName, laneID)
	if includeOutboundLaneState {
		keys = append(keys, outboundKey)
	}
	values, err := trie.VerifyProofBatch(root, keys, proof)
	if err != nil {
		return report, fmt.Errorf("bridgemodule: verifying proof: %w: %v", bridgeerr.ErrMalformedProof, err)
	}

	var outboundSeen bool
	if includeOutboundLaneState {
		if val, found := values[string(outboundKey)]; found {
			if _, err := decodeOutboundLaneData(val); err != nil {
				return report, fmt.Errorf("%w: %v", bridgeerr.ErrBadOutboundLaneState, err)
			}
			outboundSeen = true
		}
	}

	bitmap := lane.NewDispatchResultsBitmap(int(nonces.Len()))
	var anyMessage bool

	for nonce := nonces.Begin; nonce <= nonces.End; nonce++ {
		key := xhash.MessageKey(cfg.BridgedPalletName, laneID, nonce)
		val, found := values[string(key)]
		if !found {
			return DeliveryReport{}, fmt.Errorf("%w: nonce %d", bridgeerr.ErrMissingMessage, nonce)
		}
		anyMessage = true

		idx := int(nonce - nonces.Begin)
		ok, err := dispatchOne(ctx, cfg, relayer, val)
		if err != nil {
			return DeliveryReport{}, err
		}
		bitmap.Set(idx, ok)
		if ok {
			report.Dispatched++
		} else {
			report.Failed++
		}
	}

	// 6. a proof carrying nothing usable is rejected outright.
	if !anyMessage && !outboundSeen {
		return DeliveryReport{}, bridgeerr.ErrEmptyProof
	}

	// 7. append the unrewarded-relayer entry; atomic, so a capacity
	// rejection here leaves no dispatched-message side effects committed
	// to the lane tables (the dispatcher's own state changes, if any,
	// are its own concern, per spec §4.F's external-collaborator framing).
	if anyMessage {
		maxEntries := cfg.MaxUnrewardedRelayerEntries
		if err := lane.AcceptDelivered(store, laneID, relayer, nonces, bitmap, maxEntries); err != nil {
			return DeliveryReport{}, err
		}
	}

	if guard != nil {
		guard.Record(laneID, nonces)
	}
	return report, nil
}

func dispatchOne(ctx context.Context, cfg *BridgeConfig, relayer util.Hash256, rawMessage []byte) (bool, error) {
	msg, err := decodeMessageData(rawMessage)
	if err != nil {
		return false, fmt.Errorf("%w: %v", bridgeerr.ErrBadMessageEncoding, err)
	}
	payload, err := DecodeMessagePayload(msg.Payload)
	if err != nil {
		return false, fmt.Errorf("%w: %v", bridgeerr.ErrBadMessageEncoding, err)
	}

	origin, ok := resolveOrigin(cfg, payload)
	if !ok {
		return false, nil
	}

	if payload.DispatchFeePayment == AtTargetChain {
		actualFee := cfg.WeightToFee(payload.DeclaredWeight)
		paid, err := cfg.Balances.Transfer(origin, relayer, actualFee)
		if err != nil {
			return false, fmt.Errorf("bridgemodule: charging target-chain dispatch fee: %w", err)
		}
		if !paid {
			return false, nil
		}
	}

	return cfg.Dispatcher.Dispatch(ctx, origin, payload.Call)
}

// resolveOrigin maps a MessagePayload's origin to the dispatch account it
// executes under on this (target) chain (spec §4.F step 6, §6.3). A
// TargetAccount origin whose signature fails to verify here is not an
// error: the message simply fails to dispatch, same as any other
// dispatch failure.
func resolveOrigin(cfg *BridgeConfig, payload MessagePayload) (util.Hash256, bool) {
	switch payload.Origin.Kind {
	case OriginSourceRoot:
		return xhash.DeriveRootAccount(cfg.SourceChainID), true
	case OriginSourceAccount:
		return xhash.DeriveAccount(cfg.SourceChainID, payload.Origin.Account), true
	case OriginTargetAccount:
		if cfg.Signatures == nil || !cfg.Signatures.Verify(payload.Origin.PublicKey, payload.Origin.Signature, payload.Call, payload.SpecVersion) {
			return util.Hash256{}, false
		}
		return xhash.Blake2b256(payload.Origin.PublicKey), true
	default:
		return util.Hash256{}, false
	}
}
