// Package config loads the relayer's YAML configuration: which lanes to
// relay, how to reach each chain's JSON-RPC endpoint, and ambient
// concerns (logging, metrics, checkpoint storage). Grounded on
// pkg/config/config.go's strict-decode Load/LoadFile shape, pared down from
// network-profile selection (protocol.<net>.yml, embedded mainnet/testnet
// configs) to a single operator-supplied file, since a bridge relayer has no
// equivalent of a well-known public network profile to default to.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the default path to the relayer's config file.
const DefaultConfigPath = "./config/relay.yml"

// Config is the top-level relayer configuration.
type Config struct {
	Logger     Logger           `yaml:"Logger"`
	ChainA     ChainEndpoint    `yaml:"ChainA"`
	ChainB     ChainEndpoint    `yaml:"ChainB"`
	Lanes      []LaneConfig     `yaml:"Lanes"`
	Checkpoint CheckpointConfig `yaml:"Checkpoint"`
	Metrics    MetricsConfig    `yaml:"Metrics"`
}

// ChainEndpoint describes how to reach one side of the bridge.
type ChainEndpoint struct {
	// Name is a short human-readable tag used in logs ("ml", "rl", ...).
	Name string `yaml:"Name"`
	// WSEndpoint is the chain node's JSON-RPC-over-websocket address.
	WSEndpoint     string        `yaml:"WSEndpoint"`
	DialTimeout    time.Duration `yaml:"DialTimeout"`
	RequestTimeout time.Duration `yaml:"RequestTimeout"`
}

// BatchLimitsConfig bounds a single delivery batch (spec §4.J step 3).
type BatchLimitsConfig struct {
	MaxMessages           uint64 `yaml:"MaxMessages"`
	MaxWeight             uint64 `yaml:"MaxWeight"`
	MaxSize               uint64 `yaml:"MaxSize"`
	MaxUnrewardedAtTarget uint64 `yaml:"MaxUnrewardedAtTarget"`
}

// LaneConfig configures one relay loop (spec §4.J).
type LaneConfig struct {
	// LaneID is the lane's 4-byte tag, hex-encoded.
	LaneID string `yaml:"LaneID"`
	// SourceChain is "A" or "B", naming which of ChainA/ChainB messages
	// originate from on this lane; the other chain is the target. Defaults
	// to "A".
	SourceChain  string            `yaml:"SourceChain"`
	Mode         string            `yaml:"Mode"` // "altruistic" or "rational"
	PollInterval time.Duration     `yaml:"PollInterval"`
	StallTimeout time.Duration     `yaml:"StallTimeout"`
	Limits       BatchLimitsConfig `yaml:"Limits"`
}

// CheckpointConfig configures the bbolt-backed progress store
// (pkg/checkpoint).
type CheckpointConfig struct {
	FilePath string `yaml:"FilePath"`
}

// MetricsConfig configures the Prometheus exporter.
type MetricsConfig struct {
	Enabled bool   `yaml:"Enabled"`
	Address string `yaml:"Address"`
}

// Validate checks the configuration for the constraints Load/LoadFile can't
// express structurally.
func (c Config) Validate() error {
	if err := c.Logger.Validate(); err != nil {
		return err
	}
	if c.ChainA.WSEndpoint == "" || c.ChainB.WSEndpoint == "" {
		return fmt.Errorf("config: ChainA and ChainB websocket endpoints are required")
	}
	if len(c.Lanes) == 0 {
		return fmt.Errorf("config: at least one lane must be configured")
	}
	for _, l := range c.Lanes {
		if err := l.Validate(); err != nil {
			return fmt.Errorf("config: lane %q: %w", l.LaneID, err)
		}
	}
	if c.Checkpoint.FilePath == "" {
		return fmt.Errorf("config: Checkpoint.FilePath is required")
	}
	return nil
}

// Validate checks a single lane's configuration.
func (l LaneConfig) Validate() error {
	if len(l.LaneID) != 8 { // 4 bytes, hex-encoded
		return fmt.Errorf("lane id must be 4 bytes hex-encoded, got %q", l.LaneID)
	}
	switch l.Mode {
	case "altruistic", "rational":
	default:
		return fmt.Errorf("mode must be \"altruistic\" or \"rational\", got %q", l.Mode)
	}
	switch l.SourceChain {
	case "", "A", "B":
	default:
		return fmt.Errorf("source chain must be \"A\" or \"B\", got %q", l.SourceChain)
	}
	return nil
}

// LoadFile loads the config from the given path, rejecting unknown YAML
// fields. If relativePath is non-empty, relative paths within the config are
// resolved against it.
func LoadFile(configPath string, relativePath ...string) (Config, error) {
	if _, err := os.Stat(configPath); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", configPath, err)
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshaling %s: %w", configPath, err)
	}

	if len(relativePath) == 1 && relativePath[0] != "" {
		updatePath(relativePath[0], &cfg.Checkpoint.FilePath)
		updatePath(relativePath[0], &cfg.Logger.LogPath)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load is a convenience wrapper over LoadFile using DefaultConfigPath when
// path is empty.
func Load(path string, relativePath ...string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}
	return LoadFile(path, relativePath...)
}

func updatePath(relativePath string, path *string) {
	if *path != "" && !filepath.IsAbs(*path) {
		*path = filepath.Join(relativePath, *path)
	}
}
