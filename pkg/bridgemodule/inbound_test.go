package bridgemodule

import (
	"context"
	"testing"

	"github.com/nspcc-dev/bridge-relay/pkg/bridgeerr"
	"github.com/nspcc-dev/bridge-relay/pkg/feemath"
	"github.com/nspcc-dev/bridge-relay/pkg/lane"
	"github.com/nspcc-dev/bridge-relay/pkg/trie"
	"github.com/nspcc-dev/bridge-relay/pkg/util"
	"github.com/nspcc-dev/bridge-relay/pkg/xhash"
	"github.com/stretchr/testify/require"
)

func buildSourceTrie(t *testing.T, cfg *BridgeConfig, laneID util.LaneID, nonces util.NonceRange, payloads []MessagePayload) (util.Hash256, [][]byte) {
	t.Helper()
	tr := trie.NewTrie(nil, trie.NewMemStore())
	for i, nonce := range rangeSlice(nonces) {
		md := encodeMessageData(MessageData{Payload: EncodeMessagePayload(payloads[i]), PrepaidFee: 1000})
		key := xhash.MessageKey(cfg.BridgedPalletName, laneID, nonce)
		require.NoError(t, tr.Put(key, md))
	}

	var proof [][]byte
	for _, nonce := range rangeSlice(nonces) {
		key := xhash.MessageKey(cfg.BridgedPalletName, laneID, nonce)
		p, err := tr.GetProof(key)
		require.NoError(t, err)
		proof = append(proof, p...)
	}
	return tr.Root().Hash(), dedupBlobs(proof)
}

func rangeSlice(r util.NonceRange) []util.MessageNonce {
	out := make([]util.MessageNonce, 0, r.Len())
	for n := r.Begin; n <= r.End; n++ {
		out = append(out, n)
	}
	return out
}

func dedupBlobs(blobs [][]byte) [][]byte {
	seen := make(map[string]bool, len(blobs))
	out := make([][]byte, 0, len(blobs))
	for _, b := range blobs {
		k := string(b)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, b)
	}
	return out
}

func TestReceiveMessagesProofDispatchesMessages(t *testing.T) {
	cfg := testConfig()
	header := util.Hash256{0xAA}
	nonces := util.NonceRange{Begin: 1, End: 2}
	payloads := []MessagePayload{testPayload(), testPayload()}

	root, proof := buildSourceTrie(t, cfg, testLane, nonces, payloads)
	cfg.Oracle.(*fakeOracle).roots[header] = root

	store := lane.NewMemStore()
	guard, err := NewReplayGuard(8)
	require.NoError(t, err)

	report, err := ReceiveMessagesProof(context.Background(), cfg, store, guard, util.Hash256{7}, header, testLane, nonces, 2, proof, false)
	require.NoError(t, err)
	require.Equal(t, 2, report.Dispatched)
	require.Equal(t, 0, report.Failed)
	require.False(t, report.Replayed)

	inbound, ok, err := store.Inbound(testLane)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, inbound.UnrewardedRelayers, 1)
}

func TestReceiveMessagesProofIsIdempotent(t *testing.T) {
	cfg := testConfig()
	header := util.Hash256{0xAA}
	nonces := util.NonceRange{Begin: 1, End: 1}
	payloads := []MessagePayload{testPayload()}

	root, proof := buildSourceTrie(t, cfg, testLane, nonces, payloads)
	cfg.Oracle.(*fakeOracle).roots[header] = root

	store := lane.NewMemStore()
	guard, err := NewReplayGuard(8)
	require.NoError(t, err)

	_, err = ReceiveMessagesProof(context.Background(), cfg, store, guard, util.Hash256{7}, header, testLane, nonces, 1, proof, false)
	require.NoError(t, err)

	report, err := ReceiveMessagesProof(context.Background(), cfg, store, guard, util.Hash256{7}, header, testLane, nonces, 1, proof, false)
	require.NoError(t, err)
	require.True(t, report.Replayed)
}

func TestReceiveMessagesProofPaysTargetChainFeeToRelayer(t *testing.T) {
	cfg := testConfig()
	header := util.Hash256{0xAA}
	nonces := util.NonceRange{Begin: 1, End: 1}
	payload := testPayload()
	payload.DispatchFeePayment = AtTargetChain
	payload.DeclaredWeight = 1000

	origin := xhash.DeriveRootAccount(cfg.SourceChainID)
	balances := cfg.Balances.(*fakeBalances)
	balances.fund(origin, 5000)

	root, proof := buildSourceTrie(t, cfg, testLane, nonces, []MessagePayload{payload})
	cfg.Oracle.(*fakeOracle).roots[header] = root

	relayer := util.Hash256{7}
	report, err := ReceiveMessagesProof(context.Background(), cfg, lane.NewMemStore(), nil, relayer, header, testLane, nonces, 1, proof, false)
	require.NoError(t, err)
	require.Equal(t, 1, report.Dispatched)

	require.Equal(t, feemath.Balance(1000), balances.balances[relayer])
	require.Equal(t, feemath.Balance(4000), balances.balances[origin])
	require.Zero(t, balances.balances[cfg.RelayerFundAccount])
}

func TestReceiveMessagesProofRejectsCountMismatch(t *testing.T) {
	cfg := testConfig()
	guard, err := NewReplayGuard(8)
	require.NoError(t, err)

	_, err = ReceiveMessagesProof(context.Background(), cfg, lane.NewMemStore(), guard, util.Hash256{7}, util.Hash256{0xAA}, testLane, util.NonceRange{Begin: 1, End: 2}, 1, nil, false)
	require.ErrorIs(t, err, bridgeerr.ErrCountMismatch)
}

func TestReceiveMessagesProofRejectsUnknownHeader(t *testing.T) {
	cfg := testConfig()
	guard, err := NewReplayGuard(8)
	require.NoError(t, err)

	_, err = ReceiveMessagesProof(context.Background(), cfg, lane.NewMemStore(), guard, util.Hash256{7}, util.Hash256{0xAA}, testLane, util.NonceRange{Begin: 1, End: 1}, 1, nil, false)
	require.ErrorIs(t, err, bridgeerr.ErrUnknownHeader)
}
