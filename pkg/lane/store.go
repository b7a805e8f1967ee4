package lane

import (
	"github.com/nspcc-dev/bridge-relay/pkg/feemath"
	"github.com/nspcc-dev/bridge-relay/pkg/util"
)

// MessageData is the opaque payload plus prepaid fee stored per (lane,
// nonce) on the source chain (spec §3).
type MessageData struct {
	Payload    []byte
	PrepaidFee feemath.Balance
}

// ChainStateStore is the explicit, passed-in storage a lane transition
// reads and writes — never a package-level singleton (design notes §9:
// "one aggregate bridge configuration value", generalized here to one
// explicit store per chain side rather than a global).
type ChainStateStore interface {
	Outbound(lane util.LaneID) (OutboundLaneData, bool, error)
	SetOutbound(lane util.LaneID, data OutboundLaneData) error

	Inbound(lane util.LaneID) (InboundLaneData, bool, error)
	SetInbound(lane util.LaneID, data InboundLaneData) error

	Message(lane util.LaneID, nonce util.MessageNonce) (MessageData, bool, error)
	SetMessage(lane util.LaneID, nonce util.MessageNonce, data MessageData) error
	DeleteMessage(lane util.LaneID, nonce util.MessageNonce) error
}
