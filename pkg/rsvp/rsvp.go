// Package rsvp implements the RSVP pre-registration engine from spec
// §4.6: a monotonic-price auction over unminted name nodes that never
// touches the Registry. Grounded on the same logger + pkg/store.Store +
// pkg/events.Bus shape registry.Registry uses (teacher's native-contract
// triple), since RSVP is an independent component with the same storage
// discipline.
package rsvp

import (
	"errors"

	"github.com/NautilusOSS/envoi/pkg/addr"
	"github.com/NautilusOSS/envoi/pkg/admin"
	"github.com/NautilusOSS/envoi/pkg/codec"
	"github.com/NautilusOSS/envoi/pkg/events"
	"github.com/NautilusOSS/envoi/pkg/state"
	"github.com/NautilusOSS/envoi/pkg/store"
	"go.uber.org/zap"
)

var (
	ErrAlreadyReserved  = errors.New("rsvp: sender must not be registered")
	ErrNameTooLong      = errors.New("rsvp: name must be less than 256 bytes")
	ErrPaymentTooLow    = errors.New("rsvp: payment must be greater than price")
	ErrNotBound         = errors.New("rsvp: account not bound to node")
	ErrNodeNotAvailable = errors.New("rsvp: node must be available")
)

const (
	prefixReservation byte = 0x40
	prefixAccount     byte = 0x41
)

// MaxNameLength is spec §4.6's "length ≤ 256" guard.
const MaxNameLength = 256

func reservationKey(node addr.Node) []byte {
	k := make([]byte, 0, 1+addr.Size)
	k = append(k, prefixReservation)
	return append(k, node.Bytes()...)
}

func accountKey(account addr.Address) []byte {
	k := make([]byte, 0, 1+addr.Size)
	k = append(k, prefixAccount)
	return append(k, account.Bytes()...)
}

// Engine is the RSVP reservation auction: rsvp_<node> → Reservation and
// addr_<address> → node, spec §6.
type Engine struct {
	admin.Record
	store store.Store
	bus   *events.Bus
	log   *zap.SugaredLogger
}

// New constructs an Engine, owned by creator per the collapsed
// Ownable mixin (spec §9 "Mixin collapse").
func New(s store.Store, bus *events.Bus, log *zap.SugaredLogger, creator addr.Address) *Engine {
	return &Engine{Record: admin.NewRecord(creator), store: s, bus: bus, log: log}
}

// AdminRecord satisfies admin.Administered.
func (e *Engine) AdminRecord() *admin.Record {
	return &e.Record
}

func (e *Engine) getReservation(node addr.Node) (state.Reservation, error) {
	raw, err := e.store.Get(reservationKey(node))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return state.Reservation{}, nil
		}
		return state.Reservation{}, err
	}
	var res state.Reservation
	if err := codec.Decode(raw, &res); err != nil {
		return state.Reservation{}, err
	}
	return res, nil
}

func (e *Engine) putReservation(node addr.Node, res state.Reservation) error {
	raw, err := codec.Encode(&res)
	if err != nil {
		return err
	}
	return e.store.Put(reservationKey(node), raw)
}

func (e *Engine) deleteReservation(node addr.Node) error {
	return e.store.Delete(reservationKey(node))
}

// AccountNode returns the node currently bound to account, or the zero
// node if account holds no reservation slot.
func (e *Engine) AccountNode(account addr.Address) (addr.Node, error) {
	raw, err := e.store.Get(accountKey(account))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return addr.Node{}, nil
		}
		return addr.Node{}, err
	}
	var node addr.Node
	copy(node[:], raw)
	return node, nil
}

func (e *Engine) setAccountNode(account addr.Address, node addr.Node) error {
	return e.store.Put(accountKey(account), node.Bytes())
}

func (e *Engine) clearAccountNode(account addr.Address) error {
	return e.store.Delete(accountKey(account))
}

// Reservation returns node's current bid, the zero Reservation if
// unreserved.
func (e *Engine) Reservation(node addr.Node) (state.Reservation, error) {
	return e.getReservation(node)
}

// Reserve implements spec §4.6's reserve(node, name, length): rejects a
// caller who already holds a slot, enforces the length cap, requires a
// strictly higher payment than the current price (ties lose), then frees
// the previous bidder's slot and overwrites the reservation.
func (e *Engine) Reserve(caller addr.Address, node addr.Node, name string, length uint64, payment uint64) error {
	bound, err := e.AccountNode(caller)
	if err != nil {
		return err
	}
	if bound != addr.Root {
		return ErrAlreadyReserved
	}
	if length > MaxNameLength || len(name) > MaxNameLength {
		return ErrNameTooLong
	}

	current, err := e.getReservation(node)
	if err != nil {
		return err
	}
	if payment <= current.Price {
		return ErrPaymentTooLow
	}

	if !current.Owner.IsZero() {
		if err := e.clearAccountNode(current.Owner); err != nil {
			return err
		}
	}

	next := state.Reservation{
		Owner:  caller,
		Length: length,
		Price:  payment,
		Name:   state.NameBytes(name),
	}
	if err := e.putReservation(node, next); err != nil {
		return err
	}
	if err := e.setAccountNode(caller, node); err != nil {
		return err
	}
	e.emit(node, next)
	return nil
}

// Release implements spec §4.6's release(node): caller must currently
// hold node's slot; deletes both rows and emits ReservationSet with a
// zero owner/price. No refund transaction is executed — per spec §9's
// "RSVP refund semantics" decision, bids are treated as non-refundable
// (see DESIGN.md).
func (e *Engine) Release(caller addr.Address, node addr.Node) error {
	bound, err := e.AccountNode(caller)
	if err != nil {
		return err
	}
	if bound != node {
		return ErrNotBound
	}
	if err := e.deleteReservation(node); err != nil {
		return err
	}
	if err := e.clearAccountNode(caller); err != nil {
		return err
	}
	e.emit(node, state.Reservation{})
	return nil
}

// AdminReserve implements spec §4.6's admin_reserve: an owner-only
// bootstrap that bypasses payment and may seed a reservation onto an
// already-available node.
func (e *Engine) AdminReserve(caller, owner addr.Address, node addr.Node, name string, length, price uint64) error {
	if err := e.RequireOwner(caller); err != nil {
		return err
	}
	current, err := e.getReservation(node)
	if err != nil {
		return err
	}
	if !current.Owner.IsZero() {
		return ErrNodeNotAvailable
	}
	res := state.Reservation{
		Owner:  owner,
		Length: length,
		Price:  price,
		Name:   state.NameBytes(name),
	}
	if err := e.putReservation(node, res); err != nil {
		return err
	}
	if err := e.setAccountNode(owner, node); err != nil {
		return err
	}
	e.emit(node, res)
	return nil
}

func (e *Engine) emit(node addr.Node, res state.Reservation) {
	if e.bus == nil {
		return
	}
	e.bus.Emit(events.Event{Kind: events.KindReservationSet, Payload: events.ReservationSetPayload{
		Node:   node,
		Owner:  res.Owner,
		Name:   res.Name,
		Length: res.Length,
		Price:  res.Price,
	}})
	if e.log != nil {
		e.log.Debugw("rsvp event", "node", node)
	}
}
