// Package rpcclient is a minimal HTTP client for pkg/rpcsrv, used by the
// cli/ command groups and cli/console's interactive shell, grounded on
// the role teacher's pkg/rpcclient plays for cli/wallet and cli/query:
// a thin signing+HTTP wrapper the command layer calls instead of talking
// to the server's wire protocol directly.
package rpcclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/NautilusOSS/envoi/pkg/auth"
	"github.com/NautilusOSS/envoi/pkg/rpcsrv"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Client talks to one pkg/rpcsrv.Server instance over HTTP.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New constructs a Client against baseURL (e.g. "http://127.0.0.1:10470").
func New(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: http.DefaultClient}
}

// Call invokes method with params, signing the request digest with priv
// when priv is non-nil (read-only methods like resolveAddr need no
// signature).
func (c *Client) Call(method string, params any, priv *secp256k1.PrivateKey) (rpcsrv.Response, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return rpcsrv.Response{}, err
	}
	req := rpcsrv.Request{Method: method, Params: raw}
	if priv != nil {
		digest := rpcsrv.Digest(method, raw)
		req.PubKey = priv.PubKey().SerializeCompressed()
		req.Sig = auth.Sign(priv, digest[:])
	}

	body, err := json.Marshal(req)
	if err != nil {
		return rpcsrv.Response{}, err
	}
	resp, err := c.HTTP.Post(c.BaseURL+"/rpc", "application/json", bytes.NewReader(body))
	if err != nil {
		return rpcsrv.Response{}, err
	}
	defer resp.Body.Close()

	var out rpcsrv.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return rpcsrv.Response{}, err
	}
	if out.Error != "" {
		return out, fmt.Errorf("rpcclient: %s", out.Error)
	}
	return out, nil
}
