package oracle

import (
	"context"
	"fmt"

	"github.com/hashicorp/golang-lru"
	"github.com/nspcc-dev/bridge-relay/pkg/util"
	"go.uber.org/zap"
)

// HeaderSource is the subset of a relayer source client the oracle needs:
// the best finalized header and its state root, and a lookup for whether
// an arbitrary header is known to be finalized (spec §6.5's
// `best_finalized`/`is_known_header` runtime APIs).
type HeaderSource interface {
	BestFinalized(ctx context.Context) (headerHash, stateRoot util.Hash256, err error)
	IsKnownHeader(ctx context.Context, headerHash util.Hash256) (bool, error)
	StateRootAt(ctx context.Context, headerHash util.Hash256) (util.Hash256, error)
}

// PollingOracle is a reference Oracle: it asks a HeaderSource directly and
// caches the last few resolved {hash: root} pairs in a bounded LRU, so a
// relay loop re-verifying the same handful of recent headers across
// several iterations does not round-trip the chain client every time.
// Production deployments with their own finality tracker supply their own
// Oracle and never instantiate this one (spec §4.B "external
// collaborator" framing).
type PollingOracle struct {
	source HeaderSource
	cache  *lru.Cache
	log    *zap.Logger
}

// NewPollingOracle returns a PollingOracle backed by source, caching up to
// cacheSize resolved headers.
func NewPollingOracle(source HeaderSource, cacheSize int, log *zap.Logger) (*PollingOracle, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("oracle: building cache: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PollingOracle{source: source, cache: cache, log: log}, nil
}

// StateRootOf implements Oracle.
func (o *PollingOracle) StateRootOf(ctx context.Context, headerHash util.Hash256) (util.Hash256, bool, error) {
	if v, ok := o.cache.Get(headerHash); ok {
		return v.(util.Hash256), true, nil
	}

	known, err := o.source.IsKnownHeader(ctx, headerHash)
	if err != nil {
		return util.Hash256{}, false, fmt.Errorf("oracle: checking header finality: %w", err)
	}
	if !known {
		o.log.Debug("header not known to be finalized", zap.String("header", headerHash.StringBE()))
		return util.Hash256{}, false, nil
	}

	root, err := o.source.StateRootAt(ctx, headerHash)
	if err != nil {
		return util.Hash256{}, false, fmt.Errorf("oracle: fetching state root: %w", err)
	}
	o.cache.Add(headerHash, root)
	return root, true, nil
}
