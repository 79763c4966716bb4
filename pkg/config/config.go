// Package config decodes the envoi daemon's YAML configuration,
// grounded on the teacher's pkg/config.Config/LoadFile: a top-level
// {ProtocolConfiguration, ApplicationConfiguration} struct, strict-field
// YAML decoding via gopkg.in/yaml.v3, with built-in network profiles
// embedded from the root config package (spec.md §3/§5's protocol
// constants plus the ambient daemon concerns SPEC_FULL.md adds).
package config

import (
	"bytes"
	"fmt"
	"os"

	envoiconfig "github.com/NautilusOSS/envoi/config"
	"gopkg.in/yaml.v3"
)

// Config is the daemon's full decoded configuration.
type Config struct {
	ProtocolConfiguration    ProtocolConfiguration    `yaml:"ProtocolConfiguration"`
	ApplicationConfiguration ApplicationConfiguration `yaml:"ApplicationConfiguration"`
}

// ProtocolConfiguration carries the protocol-level constants from spec
// §3/§4.3: the label roots this daemon serves, the lease grace period,
// base lease period, and the length-price table's unit and multiplier.
type ProtocolConfiguration struct {
	// RootLabels lists top-level labels. cli/server does not read it: it
	// starts one Domain and one Reverse registrar, both rooted at the zero
	// node (addr.Root).
	RootLabels []string `yaml:"RootLabels"`
	// GracePeriod is G from spec §3, in seconds.
	GracePeriod uint64 `yaml:"GracePeriod"`
	// BasePeriod is copied by cli/server into the Domain registrar's
	// BasePeriodSecs field (0 means registrar.BasePeriod, 365 days).
	// Pricing and the duration checks use the registrar.BasePeriod
	// constant, not this value.
	BasePeriod uint64 `yaml:"BasePeriod"`
	// BaseUnitPrice is the unit u that cli/server passes to the Domain
	// registrar for registrar.Price's base_cost(u, len) table (spec §4.3).
	// CostMultiplier and MaxRegisterPrice are decoded but not read by
	// cli/server.
	CostMultiplier   uint64 `yaml:"CostMultiplier"`
	BaseUnitPrice    uint64 `yaml:"BaseUnitPrice"`
	MaxRegisterPrice uint64 `yaml:"MaxRegisterPrice"`
}

// ApplicationConfiguration carries daemon-level concerns: storage
// backend selection, RPC listen address, metrics endpoint, and logging.
type ApplicationConfiguration struct {
	DBConfiguration DBConfiguration `yaml:"DBConfiguration"`
	LogLevel        string          `yaml:"LogLevel"`
	LogEncoding     string          `yaml:"LogEncoding"`
	LogPath         string          `yaml:"LogPath"`
	RPC             RPCConfig       `yaml:"RPC"`
	Metrics         MetricsConfig   `yaml:"Metrics"`
}

// DBConfiguration selects and parameterizes a pkg/store.Store backend,
// mirroring teacher's pkg/core/storage/dbconfig.DBConfiguration.
type DBConfiguration struct {
	Type           string         `yaml:"Type"`
	BoltDBOptions  BoltDBOptions  `yaml:"BoltDBOptions"`
	LevelDBOptions LevelDBOptions `yaml:"LevelDBOptions"`
}

// BoltDBOptions mirrors pkg/store.BoltOptions' YAML shape.
type BoltDBOptions struct {
	FilePath string `yaml:"FilePath"`
}

// LevelDBOptions mirrors pkg/store.LevelDBOptions' YAML shape.
type LevelDBOptions struct {
	DataDirectoryPath string `yaml:"DataDirectoryPath"`
}

// RPCConfig configures pkg/rpcsrv's JSON-RPC/WebSocket listener.
type RPCConfig struct {
	Address string `yaml:"Address"`
	Port    uint16 `yaml:"Port"`
}

// MetricsConfig configures pkg/metrics' Prometheus endpoint.
type MetricsConfig struct {
	Address string `yaml:"Address"`
	Port    uint16 `yaml:"Port"`
	Enabled bool   `yaml:"Enabled"`
}

// Known built-in profile names, selectable via LoadProfile the way
// teacher's netmode selects MainNet/TestNet/PrivNet.
const (
	ProfileMainNet = "mainnet"
	ProfileTestNet = "testnet"
)

// LoadProfile decodes one of the embedded built-in profiles.
func LoadProfile(name string) (Config, error) {
	switch name {
	case ProfileMainNet:
		return decode(envoiconfig.MainNet)
	case ProfileTestNet:
		return decode(envoiconfig.TestNet)
	default:
		return Config{}, fmt.Errorf("config: unknown profile %q", name)
	}
}

// LoadFile decodes a configuration from an on-disk YAML file, the way
// teacher's pkg/config.LoadFile does, rejecting unknown fields so a typo
// in an operator's config surfaces immediately instead of silently
// falling back to a zero value.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return decode(data)
}

func decode(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}
