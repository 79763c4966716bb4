package rpcsrv

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NautilusOSS/envoi/pkg/addr"
	"github.com/NautilusOSS/envoi/pkg/auth"
	"github.com/NautilusOSS/envoi/pkg/events"
	"github.com/NautilusOSS/envoi/pkg/namehash"
	"github.com/NautilusOSS/envoi/pkg/registrar"
	"github.com/NautilusOSS/envoi/pkg/registry"
	"github.com/NautilusOSS/envoi/pkg/resolver"
	"github.com/NautilusOSS/envoi/pkg/rsvp"
	"github.com/NautilusOSS/envoi/pkg/store"
	"github.com/NautilusOSS/envoi/pkg/token"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func signedRequest(t *testing.T, priv *secp256k1.PrivateKey, method string, params any) Request {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	digest := Digest(method, raw)
	return Request{
		Method: method,
		Params: raw,
		PubKey: priv.PubKey().SerializeCompressed(),
		Sig:    auth.Sign(priv, digest[:]),
	}
}

func doRPC(t *testing.T, url string, req Request) Response {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := http.Post(url+"/rpc", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestServerRegisterAndResolveOverHTTP(t *testing.T) {
	log := zap.NewNop().Sugar()
	bus := events.NewBus()
	s := store.NewMemoryStore()

	self := addr.Address{0xf0}
	treasury := addr.Address{0xf1}

	reg, err := registry.New(s, bus, log, self)
	require.NoError(t, err)
	res := resolver.New(s, bus, log, reg)
	pay := token.NewStubClient(self)
	dom := registrar.NewDomain(s, bus, log, reg, pay, self, treasury, addr.Root, 90, 5_000_000)
	rev := registrar.NewReverse(s, bus, log, reg, self, addr.Root)
	rv := rsvp.New(s, bus, log, self)

	registrar.SetNowForTesting(func() uint64 { return 1_700_000_000 })
	srv := New(reg, res, dom, rev, rv, bus, log, func() uint64 { return 1_700_000_000 })

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ownerPriv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	owner := auth.AddressFromPubKey(ownerPriv.PubKey())
	pay.SetBalance(owner, registrar.Price(5_000_000, len("alice"), registrar.BasePeriod))
	pay.Approve(owner, self, registrar.Price(5_000_000, len("alice"), registrar.BasePeriod))

	registerReq := signedRequest(t, ownerPriv, "register", registerParams{
		Owner: owner, Label: "alice", Duration: registrar.BasePeriod,
	})
	out := doRPC(t, ts.URL, registerReq)
	require.Empty(t, out.Error)

	node := namehash.Namehash(addr.Root, "alice")
	require.NoError(t, res.SetAddr(node, owner, owner))

	raw, err := json.Marshal(resolveAddrParams{Node: node})
	require.NoError(t, err)
	resolveOut := doRPC(t, ts.URL, Request{Method: "resolveAddr", Params: raw})
	require.Empty(t, resolveOut.Error)
}

func TestServerUnsignedWriteRejected(t *testing.T) {
	log := zap.NewNop().Sugar()
	bus := events.NewBus()
	s := store.NewMemoryStore()
	self := addr.Address{0xf0}
	treasury := addr.Address{0xf1}

	reg, err := registry.New(s, bus, log, self)
	require.NoError(t, err)
	res := resolver.New(s, bus, log, reg)
	pay := token.NewStubClient(self)
	dom := registrar.NewDomain(s, bus, log, reg, pay, self, treasury, addr.Root, 90, 5_000_000)
	rev := registrar.NewReverse(s, bus, log, reg, self, addr.Root)
	rv := rsvp.New(s, bus, log, self)

	srv := New(reg, res, dom, rev, rv, bus, log, func() uint64 { return 1_700_000_000 })
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	raw, err := json.Marshal(registerParams{Owner: addr.Address{1}, Label: "bob", Duration: registrar.BasePeriod})
	require.NoError(t, err)
	out := doRPC(t, ts.URL, Request{Method: "register", Params: raw})
	require.NotEmpty(t, out.Error)
}
