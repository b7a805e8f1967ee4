// Package oracle implements the finalized-header oracle the bridge module
// consumes (spec §4.B): the core never trusts a header unless the oracle
// declares it finalized. The oracle's own finality tracking (GRANDPA-style
// voting) is an external collaborator, out of scope; this package only
// defines the interface E/F/G verify against and a reference polling
// implementation (PollingOracle); the CLI's status subcommand does not use it.
package oracle

import (
	"context"

	"github.com/nspcc-dev/bridge-relay/pkg/util"
)

// Oracle exposes the one verified fact the bridge module needs about a
// foreign chain: whether a given header hash is finalized, and if so, its
// state root.
type Oracle interface {
	// StateRootOf returns the state root of headerHash if it is finalized,
	// ok=false if the header is not known to be finalized (never an error
	// for that case — only genuine I/O/decode failures return err).
	StateRootOf(ctx context.Context, headerHash util.Hash256) (root util.Hash256, ok bool, err error)
}
