package options_test

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/bridge-relay/cli/options"
	"github.com/nspcc-dev/bridge-relay/pkg/config"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const sampleConfig = `
ChainA:
  Name: ml
  WSEndpoint: ws://localhost:9001
ChainB:
  Name: rl
  WSEndpoint: ws://localhost:9002
Lanes:
  - LaneID: "00000001"
    Mode: altruistic
Checkpoint:
  FilePath: checkpoint.db
`

func newTestContext(t *testing.T, args map[string]string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("flagSet", flag.ContinueOnError)
	for _, f := range options.Config {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, options.Debug.Apply(set))
	require.NoError(t, options.ForceTimestampLogs.Apply(set))
	for k, v := range args {
		require.NoError(t, set.Set(k, v))
	}
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestGetConfigFromContextLoadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relay.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	ctx := newTestContext(t, map[string]string{"config-file": path})
	cfg, err := options.GetConfigFromContext(ctx)
	require.NoError(t, err)
	require.Equal(t, "ml", cfg.ChainA.Name)
}

func TestGetConfigFromContextMissingFile(t *testing.T) {
	ctx := newTestContext(t, map[string]string{"config-path": filepath.Join(t.TempDir(), "missing.yml")})
	_, err := options.GetConfigFromContext(ctx)
	require.Error(t, err)
}

func TestHandleLoggingParamsDebugOverridesLevel(t *testing.T) {
	ctx := newTestContext(t, map[string]string{"debug": "true"})
	logger, level, err := options.HandleLoggingParams(ctx, config.Logger{LogLevel: "warn"})
	require.NoError(t, err)
	require.NotNil(t, logger)
	require.True(t, level.Enabled(-1)) // debug level is enabled
}
