// Package resolver exposes the per-node attribute store (spec §4.4) as
// urfave/cli/v2 commands: address and name reads, signed
// address/text/name writes, and clear-records. There is no text read.
package resolver

import (
	"encoding/hex"
	"fmt"

	"github.com/NautilusOSS/envoi/cli/rpcclient"
	"github.com/NautilusOSS/envoi/pkg/addr"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/urfave/cli/v2"
)

var (
	endpointFlag = &cli.StringFlag{Name: "endpoint", Value: "http://127.0.0.1:10470", Usage: "envoi daemon RPC endpoint"}
	nodeFlag     = &cli.StringFlag{Name: "node", Required: true, Usage: "hex-encoded 32-byte node id"}
	keyFlag      = &cli.StringFlag{Name: "key", Required: true, Usage: "hex-encoded secp256k1 private key authorizing this write"}
	valueFlag    = &cli.StringFlag{Name: "value", Required: true, Usage: "base58 address value"}
	keyNameFlag  = &cli.StringFlag{Name: "text-key", Required: true, Usage: "text record key, up to 22 bytes"}
	textValFlag  = &cli.StringFlag{Name: "text-value", Required: true, Usage: "text record value, up to 256 bytes"}
	nameValFlag  = &cli.StringFlag{Name: "name", Required: true, Usage: "reverse name value, up to 256 bytes"}
)

// NewCommands returns the resolver read and write commands.
func NewCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "set-addr",
			Usage: "set a node's default-coin address record",
			Flags: []cli.Flag{endpointFlag, keyFlag, nodeFlag, valueFlag},
			Action: func(c *cli.Context) error {
				priv, err := parsePrivKey(c.String("key"))
				if err != nil {
					return err
				}
				node, err := parseNode(c.String("node"))
				if err != nil {
					return err
				}
				value, err := parseAddress(c.String("value"))
				if err != nil {
					return err
				}
				cl := rpcclient.New(c.String("endpoint"))
				_, err = cl.Call("setAddr", struct {
					Node  addr.Node    `json:"node"`
					Value addr.Address `json:"value"`
				}{Node: node, Value: value}, priv)
				if err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer, "ok")
				return nil
			},
		},
		{
			Name:  "set-text",
			Usage: "set a node's text record",
			Flags: []cli.Flag{endpointFlag, keyFlag, nodeFlag, keyNameFlag, textValFlag},
			Action: func(c *cli.Context) error {
				priv, err := parsePrivKey(c.String("key"))
				if err != nil {
					return err
				}
				node, err := parseNode(c.String("node"))
				if err != nil {
					return err
				}
				cl := rpcclient.New(c.String("endpoint"))
				_, err = cl.Call("setText", struct {
					Node  addr.Node `json:"node"`
					Key   string    `json:"key"`
					Value string    `json:"value"`
				}{Node: node, Key: c.String("text-key"), Value: c.String("text-value")}, priv)
				if err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer, "ok")
				return nil
			},
		},
		{
			Name:  "set-name",
			Usage: "set a node's reverse (primary) name record",
			Flags: []cli.Flag{endpointFlag, keyFlag, nodeFlag, nameValFlag},
			Action: func(c *cli.Context) error {
				priv, err := parsePrivKey(c.String("key"))
				if err != nil {
					return err
				}
				node, err := parseNode(c.String("node"))
				if err != nil {
					return err
				}
				cl := rpcclient.New(c.String("endpoint"))
				_, err = cl.Call("setName", struct {
					Node addr.Node `json:"node"`
					Name string    `json:"name"`
				}{Node: node, Name: c.String("name")}, priv)
				if err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer, "ok")
				return nil
			},
		},
		{
			Name:  "clear-records",
			Usage: "bump a node's record version, invalidating prior resolver entries",
			Flags: []cli.Flag{endpointFlag, keyFlag, nodeFlag},
			Action: func(c *cli.Context) error {
				priv, err := parsePrivKey(c.String("key"))
				if err != nil {
					return err
				}
				node, err := parseNode(c.String("node"))
				if err != nil {
					return err
				}
				cl := rpcclient.New(c.String("endpoint"))
				_, err = cl.Call("clearRecords", struct {
					Node addr.Node `json:"node"`
				}{Node: node}, priv)
				if err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer, "ok")
				return nil
			},
		},
		{
			Name:  "resolve-addr",
			Usage: "resolve a node's default-coin address record",
			Flags: []cli.Flag{endpointFlag, nodeFlag},
			Action: func(c *cli.Context) error {
				node, err := parseNode(c.String("node"))
				if err != nil {
					return err
				}
				cl := rpcclient.New(c.String("endpoint"))
				resp, err := cl.Call("resolveAddr", struct {
					Node addr.Node `json:"node"`
				}{Node: node}, nil)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "%v\n", resp.Result)
				return nil
			},
		},
		{
			Name:  "resolve-name",
			Usage: "resolve a node's reverse (primary) name record",
			Flags: []cli.Flag{endpointFlag, nodeFlag},
			Action: func(c *cli.Context) error {
				node, err := parseNode(c.String("node"))
				if err != nil {
					return err
				}
				cl := rpcclient.New(c.String("endpoint"))
				resp, err := cl.Call("resolveName", struct {
					Node addr.Node `json:"node"`
				}{Node: node}, nil)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "%v\n", resp.Result)
				return nil
			},
		},
	}
}

func parseNode(hexStr string) (addr.Node, error) {
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return addr.Node{}, fmt.Errorf("resolver: invalid --node: %w", err)
	}
	if len(raw) != addr.Size {
		return addr.Node{}, fmt.Errorf("resolver: --node must be %d bytes, got %d", addr.Size, len(raw))
	}
	var n addr.Node
	copy(n[:], raw)
	return n, nil
}

func parsePrivKey(hexKey string) (*secp256k1.PrivateKey, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("resolver: invalid --key: %w", err)
	}
	return secp256k1.PrivKeyFromBytes(raw), nil
}

func parseAddress(b58 string) (addr.Address, error) {
	var a addr.Address
	if err := a.UnmarshalJSON([]byte(`"` + b58 + `"`)); err != nil {
		return addr.Address{}, fmt.Errorf("resolver: invalid --value: %w", err)
	}
	return a, nil
}
