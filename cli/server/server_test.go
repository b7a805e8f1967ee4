package server

import (
	"testing"

	"github.com/nspcc-dev/bridge-relay/pkg/config"
	"github.com/nspcc-dev/bridge-relay/pkg/relayloop"
	"github.com/stretchr/testify/require"
)

func TestLaneModeDefaultsToAltruistic(t *testing.T) {
	require.Equal(t, relayloop.Altruistic, laneMode(""))
	require.Equal(t, relayloop.Altruistic, laneMode("altruistic"))
	require.Equal(t, relayloop.Rational, laneMode("rational"))
}

func TestLaneLimitsAppliesDefaults(t *testing.T) {
	limits := laneLimits(config.BatchLimitsConfig{})
	require.Equal(t, uint64(64), limits.MaxMessages)
	require.NotZero(t, limits.MaxWeight)
	require.Equal(t, uint64(1<<20), limits.MaxSize)
	require.Equal(t, uint64(128), limits.MaxUnrewardedAtTarget)
}

func TestLaneLimitsRespectsExplicitValues(t *testing.T) {
	limits := laneLimits(config.BatchLimitsConfig{MaxMessages: 10, MaxSize: 100, MaxUnrewardedAtTarget: 5})
	require.Equal(t, uint64(10), limits.MaxMessages)
	require.Equal(t, uint64(100), limits.MaxSize)
	require.Equal(t, uint64(5), limits.MaxUnrewardedAtTarget)
}

func TestHexDecodeLaneIDRejectsWrongLength(t *testing.T) {
	_, err := hexDecodeLaneID("00")
	require.Error(t, err)
}

func TestHexDecodeLaneIDAccepts4Bytes(t *testing.T) {
	id, err := hexDecodeLaneID("00000001")
	require.NoError(t, err)
	require.Equal(t, "00000001", id.String())
}
