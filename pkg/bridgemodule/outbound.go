package bridgemodule

import (
	"bytes"
	"fmt"

	"github.com/nspcc-dev/bridge-relay/pkg/bridgeerr"
	"github.com/nspcc-dev/bridge-relay/pkg/feemath"
	"github.com/nspcc-dev/bridge-relay/pkg/lane"
	"github.com/nspcc-dev/bridge-relay/pkg/util"
)

// Caller identifies whoever submitted the SendMessage call on the source
// chain: either the chain's privileged root origin, or a regular account
// (spec §4.E step 3's origin/caller consistency check).
type Caller struct {
	IsRoot    bool
	AccountID util.Hash256 // the balance account SendMessage reserves the fee from
	Account   []byte       // raw account bytes, compared against Origin.SourceAccount
}

// SendMessage is the bridge module's outbound acceptor (spec §4.E): it
// validates laneID/payload/declaredFee against cfg in the exact order the
// spec lays out, and on success reserves declaredFee and queues the
// message, returning its freshly assigned nonce. No partial state is ever
// committed: every rejection returns before store is touched.
func SendMessage(
	cfg *BridgeConfig,
	store lane.ChainStateStore,
	laneID util.LaneID,
	caller Caller,
	payload MessagePayload,
	declaredFee feemath.Balance,
) (util.MessageNonce, error) {
	// 1. open-lane check.
	if !cfg.OpenLanes[laneID] {
		return 0, bridgeerr.ErrLaneClosed
	}

	// 2. capacity check, mirroring Generate's own gate so the call fails
	// fast before spending effort on origin/size/fee validation.
	d, exists, err := store.Outbound(laneID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("bridgemodule: outbound lane %s is not open", laneID)
	}
	if d.LatestGeneratedNonce-d.LatestReceivedNonce >= cfg.MaxPendingMessages {
		return 0, bridgeerr.ErrTooManyPending
	}

	// 3. origin/caller consistency.
	if err := checkOrigin(cfg, caller, payload); err != nil {
		return 0, err
	}

	// 4. size and weight checks: the call bytes alone, against
	// maximal_incoming_message_size (spec §6.4), not the whole encoded
	// envelope against max_extrinsic_size.
	if uint64(len(payload.Call)) > MaxIncomingMessageSize(cfg.MaxExtrinsicSize) {
		return 0, bridgeerr.ErrBadSize
	}
	limits := cfg.WeightLimitsAtTarget(payload.Call)
	if !limits.Contains(payload.DeclaredWeight) {
		return 0, bridgeerr.ErrBadWeight
	}

	encoded := EncodeMessagePayload(payload)

	// 5. fee check.
	minimal := feemath.MinimalMessageFee(cfg.ConversionRate, cfg.DeliveryTxFee, cfg.ConfirmationTxFee, cfg.RelayerFeePercent, encoded)
	if declaredFee < minimal {
		return 0, bridgeerr.ErrFeeTooLow
	}

	// 6. reserve the fee, then increment nonce and write the message.
	ok, err := cfg.Balances.Transfer(caller.AccountID, cfg.RelayerFundAccount, declaredFee)
	if err != nil {
		return 0, fmt.Errorf("bridgemodule: reserving message fee: %w", err)
	}
	if !ok {
		return 0, fmt.Errorf("bridgemodule: %s holds insufficient balance to reserve fee %d", caller.AccountID, declaredFee)
	}

	return lane.Generate(store, laneID, encoded, declaredFee, cfg.MaxPendingMessages)
}

func checkOrigin(cfg *BridgeConfig, caller Caller, payload MessagePayload) error {
	switch payload.Origin.Kind {
	case OriginSourceRoot:
		if !caller.IsRoot {
			return fmt.Errorf("%w: SourceRoot origin requires a root caller", bridgeerr.ErrBadOrigin)
		}
	case OriginSourceAccount:
		if !bytes.Equal(caller.Account, payload.Origin.Account) {
			return fmt.Errorf("%w: SourceAccount origin does not match caller", bridgeerr.ErrBadOrigin)
		}
	case OriginTargetAccount:
		if cfg.Signatures == nil || !cfg.Signatures.Verify(payload.Origin.PublicKey, payload.Origin.Signature, payload.Call, payload.SpecVersion) {
			return fmt.Errorf("%w: TargetAccount signature does not verify", bridgeerr.ErrBadOrigin)
		}
	default:
		return fmt.Errorf("%w: unknown origin kind %d", bridgeerr.ErrBadOrigin, payload.Origin.Kind)
	}
	return nil
}
