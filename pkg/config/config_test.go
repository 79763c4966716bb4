package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadProfileMainNet(t *testing.T) {
	cfg, err := LoadProfile(ProfileMainNet)
	require.NoError(t, err)
	require.Equal(t, []string{"algo"}, cfg.ProtocolConfiguration.RootLabels)
	require.Equal(t, uint64(7776000), cfg.ProtocolConfiguration.GracePeriod)
	require.Equal(t, "bolt", cfg.ApplicationConfiguration.DBConfiguration.Type)
	require.True(t, cfg.ApplicationConfiguration.Metrics.Enabled)
}

func TestLoadProfileTestNet(t *testing.T) {
	cfg, err := LoadProfile(ProfileTestNet)
	require.NoError(t, err)
	require.Equal(t, uint64(90), cfg.ProtocolConfiguration.GracePeriod)
	require.Equal(t, "leveldb", cfg.ApplicationConfiguration.DBConfiguration.Type)
}

func TestLoadProfileUnknown(t *testing.T) {
	_, err := LoadProfile("devnet")
	require.Error(t, err)
}
