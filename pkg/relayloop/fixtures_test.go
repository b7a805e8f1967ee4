package relayloop

import (
	"context"
	"sync"

	"github.com/nspcc-dev/bridge-relay/pkg/feemath"
	"github.com/nspcc-dev/bridge-relay/pkg/lane"
	"github.com/nspcc-dev/bridge-relay/pkg/relayclient"
	"github.com/nspcc-dev/bridge-relay/pkg/util"
)

var (
	sourceHeader = util.Hash256{1}
	targetHeader = util.Hash256{2}
)

// fakeSource and fakeTarget implement relayclient.SourceClient and
// relayclient.TargetClient in-memory, letting loop tests exercise
// deliveryIteration/confirmationIteration without a network.
type fakeSource struct {
	mu sync.Mutex

	generated util.MessageNonce
	received  util.MessageNonce
	details   map[util.MessageNonce]relayclient.MessageDetail
	knownAtSource map[util.Hash256]bool

	submittedDeliveryProofs []relayclient.ReceiveMessagesDeliveryProofCall
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		details:       make(map[util.MessageNonce]relayclient.MessageDetail),
		knownAtSource: map[util.Hash256]bool{targetHeader: true},
	}
}

func (s *fakeSource) BestFinalized(context.Context) (util.Hash256, util.Hash256, error) {
	return sourceHeader, util.Hash256{}, nil
}

func (s *fakeSource) IsKnownHeader(_ context.Context, h util.Hash256) (bool, error) {
	return s.knownAtSource[h], nil
}

func (s *fakeSource) StateRootAt(context.Context, util.Hash256) (util.Hash256, error) {
	return util.Hash256{}, nil
}

func (s *fakeSource) LatestGeneratedNonce(context.Context, util.LaneID) (util.MessageNonce, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generated, nil
}

func (s *fakeSource) LatestReceivedNonce(context.Context, util.LaneID) (util.MessageNonce, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.received, nil
}

func (s *fakeSource) MessageDetails(_ context.Context, _ util.LaneID, nonces util.NonceRange) ([]relayclient.MessageDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]relayclient.MessageDetail, 0, nonces.Len())
	for n := nonces.Begin; n <= nonces.End; n++ {
		d, ok := s.details[n]
		if !ok {
			d = relayclient.MessageDetail{Nonce: n, DispatchWeight: 10, Size: 10, PrepaidFee: 100}
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *fakeSource) EstimateMessageFee(context.Context, util.LaneID, []byte) (feemath.Balance, error) {
	return 0, nil
}

func (s *fakeSource) MessagesProof(context.Context, util.Hash256, util.LaneID, util.NonceRange, bool) ([][]byte, error) {
	return [][]byte{[]byte("proof")}, nil
}

func (s *fakeSource) SubmitReceiveMessagesDeliveryProof(_ context.Context, call relayclient.ReceiveMessagesDeliveryProofCall) (util.Hash256, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submittedDeliveryProofs = append(s.submittedDeliveryProofs, call)
	s.received = call.RelayersState[len(call.RelayersState)-1].Nonces.End
	return util.Hash256{}, nil
}

type fakeTarget struct {
	mu sync.Mutex

	confirmed     util.MessageNonce
	relayers      []lane.UnrewardedRelayerEntry
	knownAtTarget map[util.Hash256]bool

	submittedProofs []relayclient.ReceiveMessagesProofCall
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{knownAtTarget: map[util.Hash256]bool{sourceHeader: true}}
}

func (tc *fakeTarget) BestFinalized(context.Context) (util.Hash256, util.Hash256, error) {
	return targetHeader, util.Hash256{}, nil
}

func (tc *fakeTarget) IsKnownHeader(_ context.Context, h util.Hash256) (bool, error) {
	return tc.knownAtTarget[h], nil
}

func (tc *fakeTarget) StateRootAt(context.Context, util.Hash256) (util.Hash256, error) {
	return util.Hash256{}, nil
}

func (tc *fakeTarget) LatestConfirmedNonce(context.Context, util.LaneID) (util.MessageNonce, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.confirmed, nil
}

func (tc *fakeTarget) UnrewardedRelayersState(context.Context, util.LaneID) ([]lane.UnrewardedRelayerEntry, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	out := make([]lane.UnrewardedRelayerEntry, len(tc.relayers))
	copy(out, tc.relayers)
	return out, nil
}

func (tc *fakeTarget) DeliveryProof(context.Context, util.Hash256, util.LaneID) ([][]byte, error) {
	return [][]byte{[]byte("delivery-proof")}, nil
}

func (tc *fakeTarget) SubmitReceiveMessagesProof(_ context.Context, call relayclient.ReceiveMessagesProofCall) (util.Hash256, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.submittedProofs = append(tc.submittedProofs, call)
	tc.relayers = append(tc.relayers, lane.UnrewardedRelayerEntry{
		Nonces: call.Nonces,
	})
	return util.Hash256{}, nil
}
