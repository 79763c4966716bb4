package rpcclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NautilusOSS/envoi/pkg/auth"
	"github.com/NautilusOSS/envoi/pkg/rpcsrv"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"
)

func TestCallSignsWhenPrivKeyProvided(t *testing.T) {
	var captured rpcsrv.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(rpcsrv.Response{Result: "ok"})
	}))
	defer ts.Close()

	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	cl := New(ts.URL)
	resp, err := cl.Call("ping", struct{}{}, priv)
	require.NoError(t, err)
	require.Equal(t, "ok", resp.Result)

	require.NotEmpty(t, captured.Sig)
	require.NotEmpty(t, captured.PubKey)

	digest := rpcsrv.Digest("ping", captured.Params)
	gotAddr, err := auth.Verify(captured.PubKey, digest[:], captured.Sig)
	require.NoError(t, err)
	require.Equal(t, auth.AddressFromPubKey(priv.PubKey()), gotAddr)
}

func TestCallUnsignedWhenNoPrivKey(t *testing.T) {
	var captured rpcsrv.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(rpcsrv.Response{Result: "ok"})
	}))
	defer ts.Close()

	cl := New(ts.URL)
	_, err := cl.Call("resolveAddr", struct{}{}, nil)
	require.NoError(t, err)
	require.Empty(t, captured.Sig)
	require.Empty(t, captured.PubKey)
}

func TestCallPropagatesServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(rpcsrv.Response{Error: "boom"})
	}))
	defer ts.Close()

	cl := New(ts.URL)
	_, err := cl.Call("ping", struct{}{}, nil)
	require.Error(t, err)
}
