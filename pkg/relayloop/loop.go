// Package relayloop implements the relayer's per-(lane, direction) event
// loop (spec §4.J): batching deliverable messages, deciding profitability,
// submitting proofs to the counterpart chain, and symmetrically relaying
// delivery confirmations back. Grounded on pkg/consensus/watchdog.go's
// event-loop shape — an atomic started flag, quit/finished channels, a
// select-driven loop with a stall timer — generalized from one watchdog per
// consensus instance to two cooperating sub-loops (delivery, confirmation)
// per lane, supervised by an errgroup.Group (spec §5's "one task per (lane,
// direction)").
package relayloop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nspcc-dev/bridge-relay/internal/metrics"
	"github.com/nspcc-dev/bridge-relay/pkg/checkpoint"
	"github.com/nspcc-dev/bridge-relay/pkg/feemath"
	"github.com/nspcc-dev/bridge-relay/pkg/lane"
	"github.com/nspcc-dev/bridge-relay/pkg/relayclient"
	"github.com/nspcc-dev/bridge-relay/pkg/util"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config wires one Loop to its lane, its two chain clients, and its policy
// knobs.
type Config struct {
	Lane util.LaneID

	Source relayclient.SourceClient
	Target relayclient.TargetClient

	Checkpoints *checkpoint.Store
	Logger      *zap.Logger

	Mode    Mode
	Limits  BatchLimits
	OwnCost func(batchSize int) feemath.Balance

	PollInterval time.Duration
	StallTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.PollInterval == 0 {
		c.PollInterval = 6 * time.Second
	}
	if c.StallTimeout == 0 {
		c.StallTimeout = 300 * time.Second
	}
	if c.OwnCost == nil {
		c.OwnCost = func(int) feemath.Balance { return 0 }
	}
	return c
}

// Loop runs the delivery and confirmation sub-loops for a single lane.
type Loop struct {
	Config

	log *zap.Logger

	started  *atomic.Bool
	quit     chan struct{}
	finished chan struct{}

	restarts *atomic.Uint64
}

// New builds a Loop. Source, Target, Checkpoints and Logger are required.
func New(cfg Config) (*Loop, error) {
	cfg = cfg.withDefaults()
	if cfg.Source == nil || cfg.Target == nil {
		return nil, errors.New("relayloop: source and target clients are required")
	}
	if cfg.Checkpoints == nil {
		return nil, errors.New("relayloop: checkpoint store is required")
	}
	if cfg.Logger == nil {
		return nil, errors.New("relayloop: logger is required")
	}
	return &Loop{
		Config:   cfg,
		log:      cfg.Logger.With(zap.Stringer("lane", laneStringer(cfg.Lane))),
		started:  atomic.NewBool(false),
		quit:     make(chan struct{}),
		finished: make(chan struct{}),
		restarts: atomic.NewUint64(0),
	}, nil
}

// Name implements the teacher's named-service convention.
func (l *Loop) Name() string {
	return fmt.Sprintf("relay loop (lane %s)", l.Lane)
}

// Start launches the delivery and confirmation sub-loops in the
// background. Calling Start more than once is a no-op.
func (l *Loop) Start() {
	if l.started.CAS(false, true) {
		l.log.Info("starting relay loop")
		go l.run()
	}
}

// Shutdown requests cooperative stop and waits for both sub-loops to
// return. In-flight submissions are not cancelled (spec §4.J Cancellation).
func (l *Loop) Shutdown() {
	if l.started.Load() {
		close(l.quit)
		<-l.finished
	}
}

// Restarts reports how many times a sub-loop hit stall_timeout and reset
// its own progress timer, for the stall-restart metrics counter.
func (l *Loop) Restarts() uint64 {
	return l.restarts.Load()
}

func (l *Loop) run() {
	defer close(l.finished)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-l.quit
		cancel()
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l.runDirection(ctx, "delivery", l.deliveryIteration)
		return nil
	})
	g.Go(func() error {
		l.runDirection(ctx, "confirmation", l.confirmationIteration)
		return nil
	})
	_ = g.Wait()
}

// runDirection polls tick on PollInterval until ctx is cancelled, logging
// and resetting a stall timer whenever tick reports no progress for longer
// than StallTimeout (spec §4.J step 5). Since the relayer is stateless
// across restarts except metrics (spec §5), "restarting the lane" is simply
// continuing the poll loop — the next tick re-reads chain state fresh.
func (l *Loop) runDirection(ctx context.Context, name string, tick func(ctx context.Context) (bool, error)) {
	ticker := time.NewTicker(l.PollInterval)
	defer ticker.Stop()

	lastProgress := time.Now()
	stallTimer := time.NewTimer(l.StallTimeout)
	defer stallTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stallTimer.C:
			l.restarts.Inc()
			metrics.StallRestarts.WithLabelValues(l.Lane.String(), name).Inc()
			l.log.Warn("no progress within stall timeout, restarting lane task",
				zap.String("direction", name),
				zap.Duration("since_last_progress", time.Since(lastProgress)))
			lastProgress = time.Now()
			stallTimer.Reset(l.StallTimeout)
		case <-ticker.C:
			id := uuid.New()
			progressed, err := tick(ctx)
			if err != nil {
				l.log.Warn("relay iteration failed",
					zap.String("direction", name),
					zap.String("iteration", id.String()),
					zap.Error(err))
				continue
			}
			if progressed {
				lastProgress = time.Now()
				if !stallTimer.Stop() {
					<-stallTimer.C
				}
				stallTimer.Reset(l.StallTimeout)
			}
		}
	}
}

// deliveryIteration implements spec §4.J steps 1-5 for the source->target
// direction.
func (l *Loop) deliveryIteration(ctx context.Context) (bool, error) {
	sourceGenerated, err := l.Source.LatestGeneratedNonce(ctx, l.Lane)
	if err != nil {
		return false, fmt.Errorf("reading source tip: %w", err)
	}

	targetConfirmed, err := l.Target.LatestConfirmedNonce(ctx, l.Lane)
	if err != nil {
		return false, fmt.Errorf("reading target confirmed nonce: %w", err)
	}
	relayers, err := l.Target.UnrewardedRelayersState(ctx, l.Lane)
	if err != nil {
		return false, fmt.Errorf("reading target unrewarded relayers: %w", err)
	}
	delivered := highestDelivered(targetConfirmed, relayers)

	if delivered >= sourceGenerated {
		return false, nil // nothing new to deliver
	}

	sourceHeader, _, err := l.Source.BestFinalized(ctx)
	if err != nil {
		return false, fmt.Errorf("reading source best finalized: %w", err)
	}
	known, err := l.Target.IsKnownHeader(ctx, sourceHeader)
	if err != nil {
		return false, fmt.Errorf("checking source header known at target: %w", err)
	}
	if !known {
		return false, nil // wait for the finality oracle to catch up
	}

	nonces := util.NonceRange{Begin: delivered + 1, End: sourceGenerated}
	details, err := l.Source.MessageDetails(ctx, l.Lane, nonces)
	if err != nil {
		return false, fmt.Errorf("reading message details: %w", err)
	}
	batch := selectDeliveryTransactionLimits(details, l.Limits, uint64(len(relayers)))
	if len(batch) == 0 {
		return false, nil
	}
	if !profitable(l.Mode, batch, l.OwnCost(len(batch))) {
		l.log.Debug("batch not profitable under rational mode, skipping", zap.Int("size", len(batch)))
		return false, nil
	}

	selected := util.NonceRange{Begin: batch[0].Nonce, End: batch[len(batch)-1].Nonce}
	proof, err := l.Source.MessagesProof(ctx, sourceHeader, l.Lane, selected, true)
	if err != nil {
		return false, fmt.Errorf("building messages proof: %w", err)
	}

	_, err = l.Target.SubmitReceiveMessagesProof(ctx, relayclient.ReceiveMessagesProofCall{
		LaneID:                   l.Lane,
		Nonces:                   selected,
		MessagesCount:            selected.Len(),
		Proof:                    proof,
		IncludeOutboundLaneState: true,
		DispatchWeight:           batchWeight(batch),
	})
	if err != nil {
		return false, fmt.Errorf("submitting messages proof: %w", err)
	}

	if err := l.Checkpoints.Set(l.Lane, checkpoint.DirectionDelivery, selected.End); err != nil {
		l.log.Warn("failed to persist delivery checkpoint", zap.Error(err))
	}
	metrics.RelayedNonce.WithLabelValues(l.Lane.String(), "delivery").Set(float64(selected.End))
	metrics.BatchSize.WithLabelValues(l.Lane.String()).Observe(float64(len(batch)))
	return true, nil
}

// confirmationIteration implements spec §4.J step 6 for the
// target->source direction.
func (l *Loop) confirmationIteration(ctx context.Context) (bool, error) {
	targetConfirmed, err := l.Target.LatestConfirmedNonce(ctx, l.Lane)
	if err != nil {
		return false, fmt.Errorf("reading target confirmed nonce: %w", err)
	}
	relayers, err := l.Target.UnrewardedRelayersState(ctx, l.Lane)
	if err != nil {
		return false, fmt.Errorf("reading target unrewarded relayers: %w", err)
	}
	sourceReceived, err := l.Source.LatestReceivedNonce(ctx, l.Lane)
	if err != nil {
		return false, fmt.Errorf("reading source received nonce: %w", err)
	}

	if highestDelivered(targetConfirmed, relayers) <= sourceReceived && len(relayers) == 0 {
		return false, nil // source already knows everything target has settled
	}

	targetHeader, _, err := l.Target.BestFinalized(ctx)
	if err != nil {
		return false, fmt.Errorf("reading target best finalized: %w", err)
	}
	known, err := l.Source.IsKnownHeader(ctx, targetHeader)
	if err != nil {
		return false, fmt.Errorf("checking target header known at source: %w", err)
	}
	if !known {
		return false, nil
	}

	proof, err := l.Target.DeliveryProof(ctx, targetHeader, l.Lane)
	if err != nil {
		return false, fmt.Errorf("building delivery proof: %w", err)
	}

	_, err = l.Source.SubmitReceiveMessagesDeliveryProof(ctx, relayclient.ReceiveMessagesDeliveryProofCall{
		LaneID:        l.Lane,
		Proof:         proof,
		RelayersState: relayers,
	})
	if err != nil {
		return false, fmt.Errorf("submitting delivery proof: %w", err)
	}

	if err := l.Checkpoints.Set(l.Lane, checkpoint.DirectionConfirmation, targetConfirmed); err != nil {
		l.log.Warn("failed to persist confirmation checkpoint", zap.Error(err))
	}
	metrics.RelayedNonce.WithLabelValues(l.Lane.String(), "confirmation").Set(float64(targetConfirmed))
	return true, nil
}

// highestDelivered mirrors pkg/bridgemodule's reconciliation: the target's
// confirmed pointer lags its actually-delivered pointer while unrewarded
// entries are still outstanding.
func highestDelivered(confirmed util.MessageNonce, relayers []lane.UnrewardedRelayerEntry) util.MessageNonce {
	highest := confirmed
	if len(relayers) > 0 {
		if last := relayers[len(relayers)-1].Nonces.End; last > highest {
			highest = last
		}
	}
	return highest
}

type laneStringer util.LaneID

func (l laneStringer) String() string { return util.LaneID(l).String() }
