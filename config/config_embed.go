// Package config contains embedded YAML configuration files for the
// envoi registry daemon's built-in network profiles, grounded on the
// teacher's config/config_embed.go (which embeds Neo N3's
// protocol.mainnet.yml/protocol.testnet.yml the same way).
package config

import (
	_ "embed"
)

// MainNet is the default production profile: root allow-list, grace
// period, base period and length-price table for the live registry.
//
//go:embed envoi.mainnet.yml
var MainNet []byte

// TestNet is the test-network profile: a shorter grace period than
// MainNet, with the same base unit price.
//
//go:embed envoi.testnet.yml
var TestNet []byte
