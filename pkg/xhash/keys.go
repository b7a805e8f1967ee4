package xhash

import (
	"encoding/binary"

	"github.com/nspcc-dev/bridge-relay/pkg/util"
)

// InboundLaneDataKey builds the storage key of a lane's inbound state
// (spec §6.1): twox128(pallet) ++ twox128("InboundLanes") ++
// blake2_128_concat(lane).
func InboundLaneDataKey(pallet string, lane util.LaneID) []byte {
	return concatKey(pallet, "InboundLanes", lane.Bytes())
}

// OutboundLaneDataKey builds the storage key of a lane's outbound state.
func OutboundLaneDataKey(pallet string, lane util.LaneID) []byte {
	return concatKey(pallet, "OutboundLanes", lane.Bytes())
}

// MessageKey builds the storage key of a single queued outbound message.
func MessageKey(pallet string, lane util.LaneID, nonce util.MessageNonce) []byte {
	var nonceLE [8]byte
	binary.LittleEndian.PutUint64(nonceLE[:], nonce)
	mapKey := append(append([]byte{}, lane.Bytes()...), nonceLE[:]...)
	return concatKey(pallet, "Outbound Messages", mapKey)
}

func concatKey(pallet, item string, mapKey []byte) []byte {
	out := make([]byte, 0, 16+16+len(Blake2b128Concat(mapKey)))
	out = append(out, Twox128([]byte(pallet))...)
	out = append(out, Twox128([]byte(item))...)
	out = append(out, Blake2b128Concat(mapKey)...)
	return out
}
