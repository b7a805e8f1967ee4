package lane

import (
	"testing"

	"github.com/nspcc-dev/bridge-relay/pkg/bridgeerr"
	"github.com/nspcc-dev/bridge-relay/pkg/util"
	"github.com/stretchr/testify/require"
)

var testLane = util.LaneID{0, 0, 0, 1}

func TestOpenOutboundTwiceFails(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, OpenOutbound(s, testLane))
	require.Error(t, OpenOutbound(s, testLane))
}

func TestGenerateAssignsMonotoneNonces(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, OpenOutbound(s, testLane))

	n1, err := Generate(s, testLane, []byte("a"), 10, 100)
	require.NoError(t, err)
	require.EqualValues(t, 1, n1)

	n2, err := Generate(s, testLane, []byte("b"), 10, 100)
	require.NoError(t, err)
	require.EqualValues(t, 2, n2)

	d, _, err := s.Outbound(testLane)
	require.NoError(t, err)
	require.EqualValues(t, 2, d.LatestGeneratedNonce)
}

func TestGenerateCapacityCap(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, OpenOutbound(s, testLane))

	for i := 0; i < 3; i++ {
		_, err := Generate(s, testLane, []byte("x"), 1, 3)
		require.NoError(t, err)
	}
	_, err := Generate(s, testLane, []byte("x"), 1, 3)
	require.ErrorIs(t, err, bridgeerr.ErrTooManyPending)
}

func TestAdvanceReceivedAndPrune(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, OpenOutbound(s, testLane))
	for i := 0; i < 5; i++ {
		_, err := Generate(s, testLane, []byte("x"), 1, 100)
		require.NoError(t, err)
	}

	require.NoError(t, AdvanceReceived(s, testLane, 3))
	d, _, _ := s.Outbound(testLane)
	require.EqualValues(t, 3, d.LatestReceivedNonce)

	require.NoError(t, Prune(s, testLane, 3))
	d, _, _ = s.Outbound(testLane)
	require.EqualValues(t, 4, d.OldestUnprunedNonce)

	for n := util.MessageNonce(1); n <= 3; n++ {
		_, ok, _ := s.Message(testLane, n)
		require.False(t, ok, "nonce %d should be pruned", n)
	}
	_, ok, _ := s.Message(testLane, 4)
	require.True(t, ok)
}

func TestAdvanceReceivedRejectsBackward(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, OpenOutbound(s, testLane))
	_, err := Generate(s, testLane, []byte("x"), 1, 100)
	require.NoError(t, err)
	require.NoError(t, AdvanceReceived(s, testLane, 1))
	require.Error(t, AdvanceReceived(s, testLane, 0))
}

func TestAdvanceReceivedRejectsPastGenerated(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, OpenOutbound(s, testLane))
	require.Error(t, AdvanceReceived(s, testLane, 1))
}

func TestAcceptDeliveredAppendsEntry(t *testing.T) {
	s := NewMemStore()
	relayer := util.Hash256{1}
	bitmap := NewDispatchResultsBitmap(3)
	bitmap.Set(0, true)

	require.NoError(t, AcceptDelivered(s, testLane, relayer, util.NonceRange{Begin: 1, End: 3}, bitmap, 10))

	d, ok, err := s.Inbound(testLane)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, d.UnrewardedRelayers, 1)
	require.Equal(t, relayer, d.UnrewardedRelayers[0].Relayer)
}

func TestAcceptDeliveredRejectsOverCapacity(t *testing.T) {
	s := NewMemStore()
	relayer := util.Hash256{1}
	begin := util.MessageNonce(1)
	for i := 0; i < 2; i++ {
		bitmap := NewDispatchResultsBitmap(1)
		require.NoError(t, AcceptDelivered(s, testLane, relayer, util.NonceRange{Begin: begin, End: begin}, bitmap, 2))
		begin++
	}
	bitmap := NewDispatchResultsBitmap(1)
	err := AcceptDelivered(s, testLane, relayer, util.NonceRange{Begin: begin, End: begin}, bitmap, 2)
	require.ErrorIs(t, err, bridgeerr.ErrTooManyUnrewarded)
}

func TestAcceptDeliveredRejectsNonContiguous(t *testing.T) {
	s := NewMemStore()
	relayer := util.Hash256{1}
	bitmap := NewDispatchResultsBitmap(1)
	require.NoError(t, AcceptDelivered(s, testLane, relayer, util.NonceRange{Begin: 1, End: 1}, bitmap, 10))

	bitmap2 := NewDispatchResultsBitmap(1)
	err := AcceptDelivered(s, testLane, relayer, util.NonceRange{Begin: 5, End: 5}, bitmap2, 10)
	require.ErrorIs(t, err, ErrInvariantViolated)
}

func TestConfirmDropsAndTrimsEntries(t *testing.T) {
	s := NewMemStore()
	relayer := util.Hash256{1}

	b1 := NewDispatchResultsBitmap(3)
	require.NoError(t, AcceptDelivered(s, testLane, relayer, util.NonceRange{Begin: 1, End: 3}, b1, 10))
	b2 := NewDispatchResultsBitmap(2)
	require.NoError(t, AcceptDelivered(s, testLane, relayer, util.NonceRange{Begin: 4, End: 5}, b2, 10))

	require.NoError(t, Confirm(s, testLane, 4))

	d, _, _ := s.Inbound(testLane)
	require.EqualValues(t, 4, d.LastConfirmedNonce)
	require.Len(t, d.UnrewardedRelayers, 1)
	require.EqualValues(t, 5, d.UnrewardedRelayers[0].Nonces.Begin)
	require.EqualValues(t, 5, d.UnrewardedRelayers[0].Nonces.End)
	require.Len(t, d.UnrewardedRelayers[0].DispatchResults, 1)
}

func TestConfirmIsNoOpForMissingInboundLane(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, Confirm(s, testLane, 5))
	_, ok, _ := s.Inbound(testLane)
	require.False(t, ok)
}
