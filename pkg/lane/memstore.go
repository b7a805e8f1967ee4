package lane

import "github.com/nspcc-dev/bridge-relay/pkg/util"

type messageKey struct {
	lane  util.LaneID
	nonce util.MessageNonce
}

// MemStore is an in-memory ChainStateStore, used by this package's tests
// and by pkg/bridgemodule's tests; a production deployment supplies a
// store backed by its own chain state (not part of this module — the
// relayer only persists its own checkpoint, never chain state, per spec
// §5).
type MemStore struct {
	outbound map[util.LaneID]OutboundLaneData
	inbound  map[util.LaneID]InboundLaneData
	messages map[messageKey]MessageData
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		outbound: make(map[util.LaneID]OutboundLaneData),
		inbound:  make(map[util.LaneID]InboundLaneData),
		messages: make(map[messageKey]MessageData),
	}
}

func (s *MemStore) Outbound(lane util.LaneID) (OutboundLaneData, bool, error) {
	d, ok := s.outbound[lane]
	return d, ok, nil
}

func (s *MemStore) SetOutbound(lane util.LaneID, data OutboundLaneData) error {
	s.outbound[lane] = data
	return nil
}

func (s *MemStore) Inbound(lane util.LaneID) (InboundLaneData, bool, error) {
	d, ok := s.inbound[lane]
	return d, ok, nil
}

func (s *MemStore) SetInbound(lane util.LaneID, data InboundLaneData) error {
	s.inbound[lane] = data
	return nil
}

func (s *MemStore) Message(lane util.LaneID, nonce util.MessageNonce) (MessageData, bool, error) {
	d, ok := s.messages[messageKey{lane, nonce}]
	return d, ok, nil
}

func (s *MemStore) SetMessage(lane util.LaneID, nonce util.MessageNonce, data MessageData) error {
	s.messages[messageKey{lane, nonce}] = data
	return nil
}

func (s *MemStore) DeleteMessage(lane util.LaneID, nonce util.MessageNonce) error {
	delete(s.messages, messageKey{lane, nonce})
	return nil
}
