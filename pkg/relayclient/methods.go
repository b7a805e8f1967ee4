package relayclient

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/nspcc-dev/bridge-relay/pkg/feemath"
	"github.com/nspcc-dev/bridge-relay/pkg/lane"
	"github.com/nspcc-dev/bridge-relay/pkg/util"
)

// SourceClient is the runtime-API surface the relay loop needs from a
// message's source chain (spec §4.H, §6.5).
type SourceClient interface {
	BestFinalized(ctx context.Context) (util.Hash256, util.Hash256, error)
	IsKnownHeader(ctx context.Context, headerHash util.Hash256) (bool, error)
	StateRootAt(ctx context.Context, headerHash util.Hash256) (util.Hash256, error)
	LatestGeneratedNonce(ctx context.Context, laneID util.LaneID) (util.MessageNonce, error)
	LatestReceivedNonce(ctx context.Context, laneID util.LaneID) (util.MessageNonce, error)
	MessageDetails(ctx context.Context, laneID util.LaneID, nonces util.NonceRange) ([]MessageDetail, error)
	EstimateMessageFee(ctx context.Context, laneID util.LaneID, payload []byte) (feemath.Balance, error)
	MessagesProof(ctx context.Context, headerHash util.Hash256, laneID util.LaneID, nonces util.NonceRange, includeOutboundLaneState bool) ([][]byte, error)
	SubmitReceiveMessagesDeliveryProof(ctx context.Context, call ReceiveMessagesDeliveryProofCall) (util.Hash256, error)
}

// TargetClient is the runtime-API surface the relay loop needs from a
// message's target chain (spec §4.I, §6.5).
type TargetClient interface {
	BestFinalized(ctx context.Context) (util.Hash256, util.Hash256, error)
	IsKnownHeader(ctx context.Context, headerHash util.Hash256) (bool, error)
	StateRootAt(ctx context.Context, headerHash util.Hash256) (util.Hash256, error)
	LatestConfirmedNonce(ctx context.Context, laneID util.LaneID) (util.MessageNonce, error)
	UnrewardedRelayersState(ctx context.Context, laneID util.LaneID) ([]lane.UnrewardedRelayerEntry, error)
	DeliveryProof(ctx context.Context, headerHash util.Hash256, laneID util.LaneID) ([][]byte, error)
	SubmitReceiveMessagesProof(ctx context.Context, call ReceiveMessagesProofCall) (util.Hash256, error)
}

// MessageDetail is a queued message's profitability-relevant metadata, as
// returned by message_details (spec §6.5): enough to batch and estimate
// fee without fetching the whole payload.
type MessageDetail struct {
	Nonce          util.MessageNonce
	DispatchWeight feemath.Weight
	Size           uint64
	PrepaidFee     feemath.Balance
}

// ReceiveMessagesProofCall is the extrinsic the relayer submits to a
// target chain to dispatch a batch of messages (spec §4.F).
type ReceiveMessagesProofCall struct {
	LaneID                   util.LaneID
	Nonces                   util.NonceRange
	MessagesCount            uint64
	Proof                    [][]byte
	IncludeOutboundLaneState bool
	DispatchWeight           feemath.Weight
}

// ReceiveMessagesDeliveryProofCall is the extrinsic the relayer submits to
// a source chain to confirm delivery and collect rewards (spec §4.G).
type ReceiveMessagesDeliveryProofCall struct {
	LaneID        util.LaneID
	Proof         [][]byte
	RelayersState []lane.UnrewardedRelayerEntry
}

func hash256Param(h util.Hash256) string { return "0x" + hex.EncodeToString(h.BytesBE()) }

// BestFinalized implements oracle.HeaderSource and SourceClient/TargetClient.
func (c *Client) BestFinalized(ctx context.Context) (util.Hash256, util.Hash256, error) {
	var out struct {
		Header string `json:"header"`
		Root   string `json:"stateRoot"`
	}
	if err := c.call(ctx, "chain_bestFinalized", nil, &out); err != nil {
		return util.Hash256{}, util.Hash256{}, err
	}
	header, err := util.Hash256DecodeStringBE(out.Header)
	if err != nil {
		return util.Hash256{}, util.Hash256{}, fmt.Errorf("relayclient: decoding best finalized header: %w", err)
	}
	root, err := util.Hash256DecodeStringBE(out.Root)
	if err != nil {
		return util.Hash256{}, util.Hash256{}, fmt.Errorf("relayclient: decoding best finalized state root: %w", err)
	}
	return header, root, nil
}

// IsKnownHeader implements oracle.HeaderSource.
func (c *Client) IsKnownHeader(ctx context.Context, headerHash util.Hash256) (bool, error) {
	var known bool
	err := c.call(ctx, "chain_isKnownHeader", []interface{}{hash256Param(headerHash)}, &known)
	return known, err
}

// StateRootAt implements oracle.HeaderSource.
func (c *Client) StateRootAt(ctx context.Context, headerHash util.Hash256) (util.Hash256, error) {
	var out string
	if err := c.call(ctx, "chain_stateRootAt", []interface{}{hash256Param(headerHash)}, &out); err != nil {
		return util.Hash256{}, err
	}
	root, err := util.Hash256DecodeStringBE(out)
	if err != nil {
		return util.Hash256{}, fmt.Errorf("relayclient: decoding state root: %w", err)
	}
	return root, nil
}

// LatestGeneratedNonce implements SourceClient.
func (c *Client) LatestGeneratedNonce(ctx context.Context, laneID util.LaneID) (util.MessageNonce, error) {
	var n uint64
	err := c.call(ctx, "bridge_latestGeneratedNonce", []interface{}{laneID.String()}, &n)
	return n, err
}

// LatestReceivedNonce implements SourceClient.
func (c *Client) LatestReceivedNonce(ctx context.Context, laneID util.LaneID) (util.MessageNonce, error) {
	var n uint64
	err := c.call(ctx, "bridge_latestReceivedNonce", []interface{}{laneID.String()}, &n)
	return n, err
}

// LatestConfirmedNonce implements TargetClient.
func (c *Client) LatestConfirmedNonce(ctx context.Context, laneID util.LaneID) (util.MessageNonce, error) {
	var n uint64
	err := c.call(ctx, "bridge_latestConfirmedNonce", []interface{}{laneID.String()}, &n)
	return n, err
}

// MessageDetails implements SourceClient.
func (c *Client) MessageDetails(ctx context.Context, laneID util.LaneID, nonces util.NonceRange) ([]MessageDetail, error) {
	var out []MessageDetail
	err := c.call(ctx, "bridge_messageDetails", []interface{}{laneID.String(), nonces.Begin, nonces.End}, &out)
	return out, err
}

// EstimateMessageFee implements SourceClient.
func (c *Client) EstimateMessageFee(ctx context.Context, laneID util.LaneID, payload []byte) (feemath.Balance, error) {
	var fee uint64
	err := c.call(ctx, "bridge_estimateMessageDeliveryAndDispatchFee", []interface{}{laneID.String(), hex.EncodeToString(payload)}, &fee)
	return feemath.Balance(fee), err
}

// MessagesProof implements SourceClient.
func (c *Client) MessagesProof(ctx context.Context, headerHash util.Hash256, laneID util.LaneID, nonces util.NonceRange, includeOutboundLaneState bool) ([][]byte, error) {
	var hexBlobs []string
	params := []interface{}{hash256Param(headerHash), laneID.String(), nonces.Begin, nonces.End, includeOutboundLaneState}
	if err := c.call(ctx, "bridge_messagesProof", params, &hexBlobs); err != nil {
		return nil, err
	}
	return decodeHexBlobs(hexBlobs)
}

// UnrewardedRelayersState implements TargetClient.
func (c *Client) UnrewardedRelayersState(ctx context.Context, laneID util.LaneID) ([]lane.UnrewardedRelayerEntry, error) {
	var out []lane.UnrewardedRelayerEntry
	err := c.call(ctx, "bridge_unrewardedRelayersState", []interface{}{laneID.String()}, &out)
	return out, err
}

// DeliveryProof implements TargetClient.
func (c *Client) DeliveryProof(ctx context.Context, headerHash util.Hash256, laneID util.LaneID) ([][]byte, error) {
	var hexBlobs []string
	if err := c.call(ctx, "bridge_deliveryProof", []interface{}{hash256Param(headerHash), laneID.String()}, &hexBlobs); err != nil {
		return nil, err
	}
	return decodeHexBlobs(hexBlobs)
}

// SubmitReceiveMessagesProof implements TargetClient.
func (c *Client) SubmitReceiveMessagesProof(ctx context.Context, call ReceiveMessagesProofCall) (util.Hash256, error) {
	var out string
	err := c.call(ctx, "bridge_submitReceiveMessagesProof", []interface{}{call}, &out)
	if err != nil {
		return util.Hash256{}, err
	}
	return util.Hash256DecodeStringBE(out)
}

// SubmitReceiveMessagesDeliveryProof implements SourceClient: the
// confirmation tx is always submitted back to the source chain (spec §4.G).
func (c *Client) SubmitReceiveMessagesDeliveryProof(ctx context.Context, call ReceiveMessagesDeliveryProofCall) (util.Hash256, error) {
	var out string
	err := c.call(ctx, "bridge_submitReceiveMessagesDeliveryProof", []interface{}{call}, &out)
	if err != nil {
		return util.Hash256{}, err
	}
	return util.Hash256DecodeStringBE(out)
}

func decodeHexBlobs(hexBlobs []string) ([][]byte, error) {
	out := make([][]byte, len(hexBlobs))
	for i, h := range hexBlobs {
		b, err := hex.DecodeString(h)
		if err != nil {
			return nil, fmt.Errorf("relayclient: decoding proof blob %d: %w", i, err)
		}
		out[i] = b
	}
	return out, nil
}
