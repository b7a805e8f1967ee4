package oracle

import (
	"context"
	"errors"
	"testing"

	"github.com/nspcc-dev/bridge-relay/pkg/util"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	known    map[util.Hash256]util.Hash256
	calls    int
	failKnow bool
}

func (f *fakeSource) BestFinalized(ctx context.Context) (util.Hash256, util.Hash256, error) {
	return util.Hash256{}, util.Hash256{}, nil
}

func (f *fakeSource) IsKnownHeader(ctx context.Context, h util.Hash256) (bool, error) {
	if f.failKnow {
		return false, errors.New("rpc down")
	}
	_, ok := f.known[h]
	return ok, nil
}

func (f *fakeSource) StateRootAt(ctx context.Context, h util.Hash256) (util.Hash256, error) {
	f.calls++
	root, ok := f.known[h]
	if !ok {
		return util.Hash256{}, errors.New("not found")
	}
	return root, nil
}

func TestPollingOracleResolvesKnownHeader(t *testing.T) {
	h := util.Hash256{1}
	root := util.Hash256{2}
	src := &fakeSource{known: map[util.Hash256]util.Hash256{h: root}}

	o, err := NewPollingOracle(src, 8, nil)
	require.NoError(t, err)

	gotRoot, ok, err := o.StateRootOf(context.Background(), h)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, root, gotRoot)
}

func TestPollingOracleUnknownHeader(t *testing.T) {
	src := &fakeSource{known: map[util.Hash256]util.Hash256{}}
	o, err := NewPollingOracle(src, 8, nil)
	require.NoError(t, err)

	_, ok, err := o.StateRootOf(context.Background(), util.Hash256{9})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPollingOracleCachesResolvedRoot(t *testing.T) {
	h := util.Hash256{1}
	root := util.Hash256{2}
	src := &fakeSource{known: map[util.Hash256]util.Hash256{h: root}}

	o, err := NewPollingOracle(src, 8, nil)
	require.NoError(t, err)

	_, _, err = o.StateRootOf(context.Background(), h)
	require.NoError(t, err)
	_, _, err = o.StateRootOf(context.Background(), h)
	require.NoError(t, err)

	require.Equal(t, 1, src.calls)
}

func TestPollingOracleSourceError(t *testing.T) {
	src := &fakeSource{failKnow: true}
	o, err := NewPollingOracle(src, 8, nil)
	require.NoError(t, err)

	_, _, err = o.StateRootOf(context.Background(), util.Hash256{1})
	require.Error(t, err)
}
