package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const validConfig = `
Logger:
  LogLevel: info
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

func writeConfig(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "relay.yml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadFileValidConfig(t *testing.T) {
	path := writeConfig(t, t.TempDir(), validConfig)
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "ml", cfg.ChainA.Name)
	require.Len(t, cfg.Lanes, 1)
	require.Equal(t, "altruistic", cfg.Lanes[0].Mode)
}

func TestLoadFileRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, t.TempDir(), validConfig+"\nUnknownField: 123\n")
	_, err := LoadFile(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unmarshaling")
}

func TestLoadFileRejectsMissingEndpoints(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
Lanes:
  - LaneID: "00000001"
    Mode: altruistic
Checkpoint:
  FilePath: checkpoint.db
`)
	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestLoadFileRejectsBadLaneMode(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
ChainA:
  WSEndpoint: ws://localhost:9001
ChainB:
  WSEndpoint: ws://localhost:9002
Lanes:
  - LaneID: "00000001"
    Mode: greedy
Checkpoint:
  FilePath: checkpoint.db
`)
	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestLoadFileMissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}

func TestLoadFileResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, validConfig)
	cfg, err := LoadFile(path, dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "checkpoint.db"), cfg.Checkpoint.FilePath)
}
