package xhash

import "github.com/nspcc-dev/bridge-relay/pkg/util"

// Derivation prefixes (spec §6.3). Kept distinct so that root, account and
// relayer-fund derivations can never collide for the same chain id.
const (
	rootPrefix        = "pallet-bridge/account-derivation/root"
	accountPrefix     = "pallet-bridge/account-derivation/account"
	relayerFundPrefix = "relayer-fund-account"
)

// DeriveRootAccount returns the derived account id used as the dispatch
// origin for SourceRoot-originated messages (spec §6.3, §4.F step 6).
func DeriveRootAccount(chain util.ChainID) util.Hash256 {
	return Blake2b256(append([]byte(rootPrefix), chain.Bytes()...))
}

// DeriveAccount returns the derived account id for a SourceAccount(a)
// origin: distinct per chain id so identical source accounts on two chains
// never collide on the target (spec §8 invariant 7).
func DeriveAccount(chain util.ChainID, account []byte) util.Hash256 {
	buf := append([]byte(accountPrefix), chain.Bytes()...)
	buf = append(buf, account...)
	return Blake2b256(buf)
}

// RelayerFundAccount returns the account every reserved message fee is
// transferred to/from, and that relayer rewards are ultimately settled from.
func RelayerFundAccount(chain util.ChainID) util.Hash256 {
	return Blake2b256(append([]byte(relayerFundPrefix), chain.Bytes()...))
}
