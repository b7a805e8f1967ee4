// Package server wires the relay daemon's CLI commands: starting the
// per-lane relay loops (spec §4.J) and a pair of read-only diagnostic
// subcommands. Grounded on cli/server/server.go's NewCommands/
// newGraceContext shape, pared down from node/consensus/oracle/RPC-server
// startup to dialing two chain clients and supervising a relayloop.Loop
// per configured lane.
package server

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nspcc-dev/bridge-relay/cli/options"
	"github.com/nspcc-dev/bridge-relay/pkg/checkpoint"
	"github.com/nspcc-dev/bridge-relay/pkg/config"
	"github.com/nspcc-dev/bridge-relay/pkg/feemath"
	"github.com/nspcc-dev/bridge-relay/pkg/relayclient"
	"github.com/nspcc-dev/bridge-relay/pkg/relayloop"
	"github.com/nspcc-dev/bridge-relay/pkg/util"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// NewCommands returns the relay daemon's top-level "relay" command and its
// "estimate-fee"/"status" diagnostic subcommands.
func NewCommands() []*cli.Command {
	cfgFlags := append([]cli.Flag{}, options.Config...)
	cfgFlags = append(cfgFlags, options.Debug, options.ForceTimestampLogs)

	return []*cli.Command{
		{
			Name:   "relay",
			Usage:  "Run the bridge relay daemon",
			Flags:  cfgFlags,
			Action: runRelay,
			Subcommands: []*cli.Command{
				{
					Name:      "estimate-fee",
					Usage:     "Estimate the delivery-and-dispatch fee for a message on a lane",
					ArgsUsage: "<lane-id-hex> <payload-size-bytes>",
					Flags:     cfgFlags,
					Action:    estimateFee,
				},
				{
					Name:      "status",
					Usage:     "Print the current nonce watermarks for a lane",
					ArgsUsage: "<lane-id-hex>",
					Flags:     cfgFlags,
					Action:    laneStatus,
				},
			},
		},
	}
}

func newGraceContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		cancel()
	}()
	return ctx
}

func dialEndpoint(ctx context.Context, ep config.ChainEndpoint) (*relayclient.Client, error) {
	return relayclient.Dial(ctx, ep.WSEndpoint, relayclient.WSOptions{
		DialTimeout:    ep.DialTimeout,
		RequestTimeout: ep.RequestTimeout,
	})
}

func laneMode(s string) relayloop.Mode {
	if s == "rational" {
		return relayloop.Rational
	}
	return relayloop.Altruistic
}

func laneLimits(c config.BatchLimitsConfig) relayloop.BatchLimits {
	limits := relayloop.BatchLimits{
		MaxMessages:           c.MaxMessages,
		MaxWeight:             feemath.Weight(c.MaxWeight),
		MaxSize:               c.MaxSize,
		MaxUnrewardedAtTarget: c.MaxUnrewardedAtTarget,
	}
	if limits.MaxMessages == 0 {
		limits.MaxMessages = 64
	}
	if limits.MaxWeight == 0 {
		limits.MaxWeight = feemath.MaxWeight
	}
	if limits.MaxSize == 0 {
		limits.MaxSize = 1 << 20
	}
	if limits.MaxUnrewardedAtTarget == 0 {
		limits.MaxUnrewardedAtTarget = 128
	}
	return limits
}

func runRelay(ctx *cli.Context) error {
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.Exit(err, 1)
	}
	logger, _, err := options.HandleLoggingParams(ctx, cfg.Logger)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer logger.Sync() //nolint:errcheck

	gctx := newGraceContext()

	clientA, err := dialEndpoint(gctx, cfg.ChainA)
	if err != nil {
		return cli.Exit(fmt.Errorf("dialing chain A: %w", err), 1)
	}
	defer clientA.Close() //nolint:errcheck
	clientB, err := dialEndpoint(gctx, cfg.ChainB)
	if err != nil {
		return cli.Exit(fmt.Errorf("dialing chain B: %w", err), 1)
	}
	defer clientB.Close() //nolint:errcheck

	store, err := checkpoint.Open(checkpoint.Options{FilePath: cfg.Checkpoint.FilePath})
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer store.Close() //nolint:errcheck

	loops := make([]*relayloop.Loop, 0, len(cfg.Lanes))
	for _, lc := range cfg.Lanes {
		laneBytes, err := hexDecodeLaneID(lc.LaneID)
		if err != nil {
			return cli.Exit(fmt.Errorf("lane %q: %w", lc.LaneID, err), 1)
		}
		var source, target *relayclient.Client
		if lc.SourceChain == "B" {
			source, target = clientB, clientA
		} else {
			source, target = clientA, clientB
		}

		loop, err := relayloop.New(relayloop.Config{
			Lane:         laneBytes,
			Source:       source,
			Target:       target,
			Checkpoints:  store,
			Logger:       logger,
			Mode:         laneMode(lc.Mode),
			Limits:       laneLimits(lc.Limits),
			PollInterval: lc.PollInterval,
			StallTimeout: lc.StallTimeout,
		})
		if err != nil {
			return cli.Exit(fmt.Errorf("lane %q: %w", lc.LaneID, err), 1)
		}
		loop.Start()
		loops = append(loops, loop)
	}

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metricsSrv = serveMetrics(cfg.Metrics.Address, logger)
	}

	logger.Info("relay daemon started", zap.Int("lanes", len(loops)))
	<-gctx.Done()
	logger.Info("shutting down")

	for _, loop := range loops {
		loop.Shutdown()
	}
	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return nil
}

func serveMetrics(addr string, log *zap.Logger) *http.Server {
	if addr == "" {
		addr = ":9100"
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	return srv
}

func estimateFee(ctx *cli.Context) error {
	if ctx.Args().Len() < 2 {
		return cli.Exit(errors.New("usage: relay estimate-fee <lane-id-hex> <payload-size-bytes>"), 1)
	}
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.Exit(err, 1)
	}
	laneID, err := hexDecodeLaneID(ctx.Args().Get(0))
	if err != nil {
		return cli.Exit(err, 1)
	}
	var size int
	if _, err := fmt.Sscanf(ctx.Args().Get(1), "%d", &size); err != nil {
		return cli.Exit(fmt.Errorf("invalid payload size: %w", err), 1)
	}

	gctx := newGraceContext()
	client, err := dialEndpoint(gctx, cfg.ChainA)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer client.Close() //nolint:errcheck

	fee, err := client.EstimateMessageFee(gctx, laneID, make([]byte, size))
	if err != nil {
		return cli.Exit(err, 1)
	}
	fmt.Fprintf(ctx.App.Writer, "estimated fee: %d\n", fee)
	return nil
}

func laneStatus(ctx *cli.Context) error {
	if ctx.Args().Len() < 1 {
		return cli.Exit(errors.New("usage: relay status <lane-id-hex>"), 1)
	}
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.Exit(err, 1)
	}
	laneID, err := hexDecodeLaneID(ctx.Args().Get(0))
	if err != nil {
		return cli.Exit(err, 1)
	}

	gctx := newGraceContext()
	clientA, err := dialEndpoint(gctx, cfg.ChainA)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer clientA.Close() //nolint:errcheck
	clientB, err := dialEndpoint(gctx, cfg.ChainB)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer clientB.Close() //nolint:errcheck

	generated, err := clientA.LatestGeneratedNonce(gctx, laneID)
	if err != nil {
		return cli.Exit(err, 1)
	}
	confirmed, err := clientB.LatestConfirmedNonce(gctx, laneID)
	if err != nil {
		return cli.Exit(err, 1)
	}
	received, err := clientA.LatestReceivedNonce(gctx, laneID)
	if err != nil {
		return cli.Exit(err, 1)
	}

	fmt.Fprintf(ctx.App.Writer, "lane %s: generated=%d confirmed=%d received=%d\n",
		laneID, generated, confirmed, received)
	return nil
}

func hexDecodeLaneID(s string) (util.LaneID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return util.LaneID{}, fmt.Errorf("invalid lane id: %w", err)
	}
	return util.LaneIDDecodeBytes(b)
}
