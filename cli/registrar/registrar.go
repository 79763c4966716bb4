// Package registrar exposes the R-Domain registrar's register/renew
// operations as urfave/cli/v2 commands, grounded on the per-concern
// command-group shape teacher's cli/wallet and cli/query packages use
// (one NewCommands() []*cli.Command per concern, composed by cli/app).
package registrar

import (
	"encoding/hex"
	"fmt"

	"github.com/NautilusOSS/envoi/cli/rpcclient"
	"github.com/NautilusOSS/envoi/pkg/addr"
	"github.com/NautilusOSS/envoi/pkg/auth"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/urfave/cli/v2"
)

var (
	endpointFlag = &cli.StringFlag{Name: "endpoint", Value: "http://127.0.0.1:10470", Usage: "envoi daemon RPC endpoint"}
	keyFlag      = &cli.StringFlag{Name: "key", Required: true, Usage: "hex-encoded secp256k1 private key authorizing this call"}
	labelFlag    = &cli.StringFlag{Name: "label", Required: true, Usage: "name label to register/renew"}
	durationFlag = &cli.Uint64Flag{Name: "duration", Required: true, Usage: "lease duration in seconds, a multiple of the base period"}
	ownerFlag    = &cli.StringFlag{Name: "owner", Usage: "base58 owner address (defaults to the signing key's own address)"}
)

// NewCommands returns the `register` and `renew` commands.
func NewCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "register",
			Usage: "register a name lease against the R-Domain registrar",
			Flags: []cli.Flag{endpointFlag, keyFlag, labelFlag, durationFlag, ownerFlag},
			Action: func(c *cli.Context) error {
				priv, err := parseKey(c.String("key"))
				if err != nil {
					return err
				}
				cl := rpcclient.New(c.String("endpoint"))
				ownerAddr, err := ownerAddress(c, priv)
				if err != nil {
					return err
				}
				resp, err := cl.Call("register", registerParams{
					Owner: ownerAddr, Label: c.String("label"), Duration: c.Uint64("duration"),
				}, priv)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "registered node: %v\n", resp.Result)
				return nil
			},
		},
		{
			Name:  "renew",
			Usage: "renew a name lease's expiry",
			Flags: []cli.Flag{endpointFlag, keyFlag, labelFlag, durationFlag},
			Action: func(c *cli.Context) error {
				priv, err := parseKey(c.String("key"))
				if err != nil {
					return err
				}
				cl := rpcclient.New(c.String("endpoint"))
				_, err = cl.Call("renew", renewParams{
					Label: c.String("label"), Duration: c.Uint64("duration"),
				}, priv)
				if err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer, "renewed")
				return nil
			},
		},
	}
}

type registerParams struct {
	Owner    addr.Address `json:"owner"`
	Label    string       `json:"label"`
	Duration uint64       `json:"duration"`
}

type renewParams struct {
	Label    string `json:"label"`
	Duration uint64 `json:"duration"`
}

func parseKey(hexKey string) (*secp256k1.PrivateKey, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("registrar: invalid --key: %w", err)
	}
	priv := secp256k1.PrivKeyFromBytes(raw)
	return priv, nil
}

func ownerAddress(c *cli.Context, priv *secp256k1.PrivateKey) (addr.Address, error) {
	if c.String("owner") == "" {
		return auth.AddressFromPubKey(priv.PubKey()), nil
	}
	var a addr.Address
	if err := a.UnmarshalJSON([]byte(`"` + c.String("owner") + `"`)); err != nil {
		return addr.Address{}, err
	}
	return a, nil
}
