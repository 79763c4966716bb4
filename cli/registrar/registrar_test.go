package registrar

import (
	"encoding/hex"
	"flag"
	"testing"

	"github.com/NautilusOSS/envoi/pkg/auth"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestParseKeyRoundTrip(t *testing.T) {
	want, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	got, err := parseKey(hex.EncodeToString(want.Serialize()))
	require.NoError(t, err)
	require.Equal(t, want.Serialize(), got.Serialize())
}

func TestParseKeyRejectsInvalidHex(t *testing.T) {
	_, err := parseKey("not-hex")
	require.Error(t, err)
}

func TestOwnerAddressDefaultsToSigningKey(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("owner", "", "")
	c := cli.NewContext(cli.NewApp(), set, nil)

	got, err := ownerAddress(c, priv)
	require.NoError(t, err)
	require.Equal(t, auth.AddressFromPubKey(priv.PubKey()), got)
}

func TestOwnerAddressUsesExplicitFlag(t *testing.T) {
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	other := auth.AddressFromPubKey(priv.PubKey())

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("owner", other.String(), "")
	c := cli.NewContext(cli.NewApp(), set, nil)

	got, err := ownerAddress(c, priv)
	require.NoError(t, err)
	require.Equal(t, other, got)
}
