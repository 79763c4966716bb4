// Package rpcsrv fronts the registry/registrar/resolver/RSVP core with a
// JSON-RPC-over-HTTP API plus a WebSocket notification feed, grounded on
// the teacher's cli/server daemon shape (an http.Server wrapping a
// request-method-dispatch RPC server, paired with a subscription-based
// notification push for new blocks/transactions/execution events). Here
// the "blocks" are the envoi event stream from pkg/events, and every
// mutating call authenticates its caller the way a transaction's witness
// does on-chain, via pkg/auth over a signed request digest instead of an
// implicit msg.sender.
package rpcsrv

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/NautilusOSS/envoi/pkg/addr"
	"github.com/NautilusOSS/envoi/pkg/auth"
	"github.com/NautilusOSS/envoi/pkg/events"
	"github.com/NautilusOSS/envoi/pkg/metrics"
	"github.com/NautilusOSS/envoi/pkg/registrar"
	"github.com/NautilusOSS/envoi/pkg/registry"
	"github.com/NautilusOSS/envoi/pkg/resolver"
	"github.com/NautilusOSS/envoi/pkg/rsvp"
	"github.com/NautilusOSS/envoi/pkg/state"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	ojson "github.com/nspcc-dev/go-ordered-json"
	"go.uber.org/zap"
)

// Request is a signed JSON-RPC-style request body. Sig/PubKey authorize
// mutating methods via pkg/auth, standing in for a transaction's witness
// since this daemon sits outside an actual chain runtime.
type Request struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	PubKey []byte          `json:"pubkey,omitempty"`
	Sig    []byte          `json:"sig,omitempty"`
}

// Response is the JSON-RPC-style reply, encoded with go-ordered-json so
// field order in the wire body is stable regardless of Go map iteration,
// exactly as teacher's RPC server output is stable.
type Response struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Digest is the canonical bytes a client signs for a given method+params
// pair, kept intentionally simple (SHA-256 over "method\nparams").
func Digest(method string, params json.RawMessage) [32]byte {
	buf := make([]byte, 0, len(method)+1+len(params))
	buf = append(buf, method...)
	buf = append(buf, '\n')
	buf = append(buf, params...)
	return sha256.Sum256(buf)
}

// Server wires the core components behind HTTP method dispatch and a
// WebSocket event feed.
type Server struct {
	Registry *registry.Registry
	Resolver *resolver.Resolver
	Domain   *registrar.Domain
	Reverse  *registrar.Reverse
	RSVP     *rsvp.Engine
	Bus      *events.Bus
	Log      *zap.SugaredLogger

	upgrader websocket.Upgrader
	now      func() uint64
}

// New constructs a Server. now supplies the wall clock register/renew
// read against (tests inject a fixed clock the same way
// registrar.SetNowForTesting does).
func New(reg *registry.Registry, res *resolver.Resolver, dom *registrar.Domain, rev *registrar.Reverse, rv *rsvp.Engine, bus *events.Bus, log *zap.SugaredLogger, now func() uint64) *Server {
	return &Server{
		Registry: reg, Resolver: res, Domain: dom, Reverse: rev, RSVP: rv, Bus: bus, Log: log,
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		now:      now,
	}
}

// Handler returns the composed HTTP handler: POST /rpc for method calls,
// GET /ws for the event feed.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/rpc", s.handleRPC)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResponse(w, Response{Error: err.Error()})
		return
	}

	result, err := s.dispatch(r.Context(), req)
	if err != nil {
		writeResponse(w, Response{Error: err.Error()})
		return
	}
	writeResponse(w, Response{Result: result})
}

func writeResponse(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	data, err := ojson.Marshal(resp)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(data)
}

// caller authenticates req, recovering the Address every guard in §4
// authorizes against.
func (s *Server) caller(req Request) (addr.Address, error) {
	if len(req.PubKey) == 0 || len(req.Sig) == 0 {
		return addr.Address{}, errors.New("rpcsrv: request must be signed")
	}
	digest := Digest(req.Method, req.Params)
	return auth.Verify(req.PubKey, digest[:], req.Sig)
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

type reserveParams struct {
	Node    addr.Node `json:"node"`
	Name    string    `json:"name"`
	Length  uint64    `json:"length"`
	Payment uint64    `json:"payment"`
}

type releaseParams struct {
	Node addr.Node `json:"node"`
}

type resolveAddrParams struct {
	Node addr.Node `json:"node"`
}

type setAddrParams struct {
	Node  addr.Node    `json:"node"`
	Value addr.Address `json:"value"`
}

type setTextParams struct {
	Node  addr.Node `json:"node"`
	Key   string    `json:"key"`
	Value string    `json:"value"`
}

type setNameParams struct {
	Node addr.Node `json:"node"`
	Name string    `json:"name"`
}

type clearRecordsParams struct {
	Node addr.Node `json:"node"`
}

type adminReserveParams struct {
	Owner  addr.Address `json:"owner"`
	Node   addr.Node    `json:"node"`
	Name   string       `json:"name"`
	Length uint64       `json:"length"`
	Price  uint64       `json:"price"`
}

func (s *Server) dispatch(_ context.Context, req Request) (any, error) {
	switch req.Method {
	case "register":
		var p registerParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, err
		}
		caller, err := s.caller(req)
		if err != nil {
			return nil, err
		}
		node, err := s.Domain.Register(caller, p.Owner, p.Label, p.Duration, s.now())
		if err != nil {
			metrics.Registrations.WithLabelValues("domain_error").Inc()
			return nil, err
		}
		metrics.Registrations.WithLabelValues("domain").Inc()
		if supply, err := s.Domain.NFT.TotalSupply(); err == nil {
			metrics.LiveSupply.WithLabelValues("domain").Set(float64(supply))
		}
		return node, nil

	case "renew":
		var p renewParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, err
		}
		caller, err := s.caller(req)
		if err != nil {
			return nil, err
		}
		if err := s.Domain.Renew(caller, p.Label, p.Duration, s.now()); err != nil {
			metrics.Renewals.WithLabelValues("domain_error").Inc()
			return nil, err
		}
		metrics.Renewals.WithLabelValues("domain").Inc()
		return true, nil

	case "reserve":
		var p reserveParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, err
		}
		caller, err := s.caller(req)
		if err != nil {
			return nil, err
		}
		if err := s.RSVP.Reserve(caller, p.Node, p.Name, p.Length, p.Payment); err != nil {
			metrics.RSVPBids.WithLabelValues("rejected").Inc()
			return nil, err
		}
		metrics.RSVPBids.WithLabelValues("accepted").Inc()
		return true, nil

	case "release":
		var p releaseParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, err
		}
		caller, err := s.caller(req)
		if err != nil {
			return nil, err
		}
		return true, s.RSVP.Release(caller, p.Node)

	case "resolveAddr":
		var p resolveAddrParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, err
		}
		a, err := s.Resolver.GetAddr(p.Node)
		if err != nil {
			return nil, err
		}
		return a, nil

	case "resolveName":
		var p resolveAddrParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, err
		}
		name, err := s.Resolver.GetName(p.Node)
		if err != nil {
			return nil, err
		}
		return trimName(name), nil

	case "setAddr":
		var p setAddrParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, err
		}
		caller, err := s.caller(req)
		if err != nil {
			return nil, err
		}
		if err := s.Resolver.SetAddr(p.Node, caller, p.Value); err != nil {
			return nil, err
		}
		metrics.ResolverWrites.WithLabelValues("setAddr").Inc()
		return true, nil

	case "setText":
		var p setTextParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, err
		}
		caller, err := s.caller(req)
		if err != nil {
			return nil, err
		}
		if err := s.Resolver.SetText(p.Node, caller, textKeyBytes(p.Key), state.NameBytes(p.Value)); err != nil {
			return nil, err
		}
		metrics.ResolverWrites.WithLabelValues("setText").Inc()
		return true, nil

	case "setName":
		var p setNameParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, err
		}
		caller, err := s.caller(req)
		if err != nil {
			return nil, err
		}
		if err := s.Resolver.SetName(p.Node, caller, state.NameBytes(p.Name)); err != nil {
			return nil, err
		}
		metrics.ResolverWrites.WithLabelValues("setName").Inc()
		return true, nil

	case "clearRecords":
		var p clearRecordsParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, err
		}
		caller, err := s.caller(req)
		if err != nil {
			return nil, err
		}
		if err := s.Resolver.ClearRecords(p.Node, caller); err != nil {
			return nil, err
		}
		metrics.ResolverWrites.WithLabelValues("clearRecords").Inc()
		return true, nil

	case "adminReserve":
		var p adminReserveParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, err
		}
		caller, err := s.caller(req)
		if err != nil {
			return nil, err
		}
		if err := s.RSVP.AdminReserve(caller, p.Owner, p.Node, p.Name, p.Length, p.Price); err != nil {
			return nil, err
		}
		return true, nil

	default:
		return nil, fmt.Errorf("rpcsrv: unknown method %q", req.Method)
	}
}

func trimName(b [state.NameSize]byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}

func textKeyBytes(s string) [state.TextKeySize]byte {
	var out [state.TextKeySize]byte
	copy(out[:], s)
	return out
}

// handleWS upgrades the connection and streams every subsequent events.Bus
// emission as a JSON line, tagging the subscription with a uuid the same
// way teacher's RPC server hands subscribers a correlation id.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	subID := uuid.New()
	bufSize := 64
	id, ch := s.Bus.Subscribe(bufSize)
	defer s.Bus.Unsubscribe(id)

	if s.Log != nil {
		s.Log.Debugw("rpcsrv: subscription opened", "sub", subID)
	}

	for ev := range ch {
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}
}
