// Package rsvpcmd exposes the RSVP reservation auction (spec §4.6) as
// urfave/cli/v2 commands, following the same flag/Action shape as
// cli/registrar.
package rsvpcmd

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
	nodeFlag     = &cli.StringFlag{Name: "node", Required: true, Usage: "hex-encoded 32-byte node id being bid on"}
	nameFlag     = &cli.StringFlag{Name: "name", Required: true, Usage: "candidate name, up to 256 bytes"}
	lengthFlag   = &cli.Uint64Flag{Name: "length", Required: true, Usage: "length of the reserved name, at most 256"}
	paymentFlag  = &cli.Uint64Flag{Name: "payment", Required: true, Usage: "bid amount, must exceed the current price"}
	ownerFlag    = &cli.StringFlag{Name: "owner", Usage: "base58 owner address (admin-reserve only; defaults to the signing key's own address)"}
	priceFlag    = &cli.Uint64Flag{Name: "price", Usage: "seeded price (admin-reserve only)"}
)

// NewCommands returns the `reserve`, `release` and `admin-reserve` commands.
func NewCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "reserve",
			Usage: "bid for a reservation slot on a not-yet-registered node",
			Flags: []cli.Flag{endpointFlag, keyFlag, nodeFlag, nameFlag, lengthFlag, paymentFlag},
			Action: func(c *cli.Context) error {
				priv, err := parseKey(c.String("key"))
				if err != nil {
					return err
				}
				node, err := parseNode(c.String("node"))
				if err != nil {
					return err
				}
				cl := rpcclient.New(c.String("endpoint"))
				_, err = cl.Call("reserve", struct {
					Node    addr.Node `json:"node"`
					Name    string    `json:"name"`
					Length  uint64    `json:"length"`
					Payment uint64    `json:"payment"`
				}{Node: node, Name: c.String("name"), Length: c.Uint64("length"), Payment: c.Uint64("payment")}, priv)
				if err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer, "reserved")
				return nil
			},
		},
		{
			Name:  "release",
			Usage: "release the caller's own reservation slot, forfeiting the bid",
			Flags: []cli.Flag{endpointFlag, keyFlag, nodeFlag},
			Action: func(c *cli.Context) error {
				priv, err := parseKey(c.String("key"))
				if err != nil {
					return err
				}
				node, err := parseNode(c.String("node"))
				if err != nil {
					return err
				}
				cl := rpcclient.New(c.String("endpoint"))
				_, err = cl.Call("release", struct {
					Node addr.Node `json:"node"`
				}{Node: node}, priv)
				if err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer, "released")
				return nil
			},
		},
		{
			Name:  "admin-reserve",
			Usage: "owner-only bootstrap: seed a reservation without payment",
			Flags: []cli.Flag{endpointFlag, keyFlag, nodeFlag, nameFlag, lengthFlag, ownerFlag, priceFlag},
			Action: func(c *cli.Context) error {
				priv, err := parseKey(c.String("key"))
				if err != nil {
					return err
				}
				node, err := parseNode(c.String("node"))
				if err != nil {
					return err
				}
				owner, err := ownerAddress(c, priv)
				if err != nil {
					return err
				}
				cl := rpcclient.New(c.String("endpoint"))
				_, err = cl.Call("adminReserve", struct {
					Owner  addr.Address `json:"owner"`
					Node   addr.Node    `json:"node"`
					Name   string       `json:"name"`
					Length uint64       `json:"length"`
					Price  uint64       `json:"price"`
				}{Owner: owner, Node: node, Name: c.String("name"), Length: c.Uint64("length"), Price: c.Uint64("price")}, priv)
				if err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer, "seeded")
				return nil
			},
		},
	}
}

func parseKey(hexKey string) (*secp256k1.PrivateKey, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("rsvpcmd: invalid --key: %w", err)
	}
	return secp256k1.PrivKeyFromBytes(raw), nil
}

func parseNode(hexStr string) (addr.Node, error) {
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return addr.Node{}, fmt.Errorf("rsvpcmd: invalid --node: %w", err)
	}
	if len(raw) != addr.Size {
		return addr.Node{}, fmt.Errorf("rsvpcmd: --node must be %d bytes, got %d", addr.Size, len(raw))
	}
	var n addr.Node
	copy(n[:], raw)
	return n, nil
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
