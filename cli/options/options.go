/*
Package options contains a set of common CLI flags and helper functions
shared by the relay daemon's commands.
*/
package options

import (
	"fmt"
	"os"
	"time"

	"github.com/nspcc-dev/bridge-relay/pkg/config"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

const (
	// DefaultTimeout is the default timeout used for chain RPC requests.
	DefaultTimeout = 10 * time.Second
)

// Config is a set of flags for locating and loading the relayer's YAML
// configuration.
var Config = []cli.Flag{
	&cli.StringFlag{
		Name:    "config-path",
		Aliases: []string{"c"},
		Usage:   "Path to the relay config file",
		Value:   config.DefaultConfigPath,
	},
	&cli.StringFlag{
		Name:  "config-file",
		Usage: "Path to config file; overrides --config-path",
	},
	&cli.StringFlag{
		Name:  "relative-path",
		Usage: "Resolve relative config paths (checkpoint, log files) against this directory",
	},
}

// Debug is the verbose-logging flag.
var Debug = &cli.BoolFlag{
	Name:    "debug",
	Aliases: []string{"d"},
	Usage:   "Enable debug logging",
}

// ForceTimestampLogs forces timestamped log entries even when stdout isn't
// a terminal (useful under a log collector that already timestamps lines).
var ForceTimestampLogs = &cli.BoolFlag{
	Name:  "force-timestamp-logs",
	Usage: "Enable timestamps for console log output",
}

// GetConfigFromContext loads the relay config using whichever of
// --config-file/--config-path/--relative-path the command line supplied.
func GetConfigFromContext(ctx *cli.Context) (config.Config, error) {
	relativePath := ctx.String("relative-path")
	if configFile := ctx.String("config-file"); configFile != "" {
		return config.LoadFile(configFile, relativePath)
	}
	return config.Load(ctx.String("config-path"), relativePath)
}

// HandleLoggingParams builds a zap logger from the relayer's Logger
// configuration, honoring --debug and --force-timestamp-logs overrides.
func HandleLoggingParams(ctx *cli.Context, cfg config.Logger) (*zap.Logger, *zap.AtomicLevel, error) {
	var (
		level    = zapcore.InfoLevel
		encoding = "console"
		err      error
	)
	if len(cfg.LogLevel) > 0 {
		level, err = zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, nil, fmt.Errorf("log setting: %w", err)
		}
	}
	if len(cfg.LogEncoding) > 0 {
		encoding = cfg.LogEncoding
	}
	if ctx != nil && ctx.Bool("debug") {
		level = zapcore.DebugLevel
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if term.IsTerminal(int(os.Stdout.Fd())) || (ctx != nil && ctx.Bool("force-timestamp-logs")) {
		cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cc.EncoderConfig.EncodeTime = func(t time.Time, encoder zapcore.PrimitiveArrayEncoder) {}
	}
	cc.Encoding = encoding
	atomicLevel := zap.NewAtomicLevelAt(level)
	cc.Level = atomicLevel
	cc.Sampling = nil

	if logPath := cfg.LogPath; logPath != "" {
		cc.OutputPaths = []string{logPath}
		cc.ErrorOutputPaths = []string{logPath}
	}

	logger, err := cc.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, &atomicLevel, nil
}
