// Package events defines the notification stream emitted by the
// Registry, Resolver, NFT core and RSVP engine, and a small in-process
// Bus that fans them out to subscribers. pkg/rpcsrv wraps the Bus with a
// gorilla/websocket transport, the role teacher's
// pkg/services/rpcsrv/subscription plays for block/notification
// subscriptions.
package events

import (
	"sync"

	"github.com/NautilusOSS/envoi/pkg/addr"
)

// Kind names every event shape from spec §6, in the order they appear
// there.
type Kind string

const (
	KindTransfer            Kind = "Transfer"
	KindNewOwner            Kind = "NewOwner"
	KindNewResolver         Kind = "NewResolver"
	KindNewTTL              Kind = "NewTTL"
	KindApprovalForAll      Kind = "ApprovalForAll"
	KindAddrChanged         Kind = "AddrChanged"
	KindAddressChanged      Kind = "AddressChanged"
	KindTextChanged         Kind = "TextChanged"
	KindNameChanged         Kind = "NameChanged"
	KindVersionChanged      Kind = "VersionChanged"
	KindARC72Transfer       Kind = "arc72_Transfer"
	KindARC72Approval       Kind = "arc72_Approval"
	KindARC72ApprovalForAll Kind = "arc72_ApprovalForAll"
	KindReservationSet      Kind = "ReservationSet"
)

// Event is a single notification; Payload holds the kind-specific fields
// listed below, always in the field order spec §6 gives for that event.
type Event struct {
	Kind    Kind
	Payload any
}

type TransferPayload struct {
	Node  addr.Node
	Owner addr.Address
}

type NewOwnerPayload struct {
	Node  addr.Node
	Label [32]byte
	Owner addr.Address
}

type NewResolverPayload struct {
	Node         addr.Node
	ResolverAppID uint64
}

type NewTTLPayload struct {
	Node addr.Node
	TTL  uint64
}

type ApprovalForAllPayload struct {
	Owner    addr.Address
	Operator addr.Address
	Approved bool
}

type AddrChangedPayload struct {
	Node addr.Node
	Addr addr.Address
}

type AddressChangedPayload struct {
	Node     addr.Node
	CoinType uint64
	Addr     addr.Address
}

type TextChangedPayload struct {
	Node  addr.Node
	Key   [22]byte
	Value [256]byte
}

type NameChangedPayload struct {
	Node addr.Node
	Name [256]byte
}

type VersionChangedPayload struct {
	Node       addr.Node
	NewVersion uint64
}

type ARC72TransferPayload struct {
	From    addr.Address
	To      addr.Address
	TokenID addr.Node
}

type ARC72ApprovalPayload struct {
	Owner    addr.Address
	Approved addr.Address
	TokenID  addr.Node
}

type ARC72ApprovalForAllPayload struct {
	Owner    addr.Address
	Operator addr.Address
	Approved bool
}

type ReservationSetPayload struct {
	Node   addr.Node
	Owner  addr.Address
	Name   [256]byte
	Length uint64
	Price  uint64
}

// Bus fans out emitted events to every currently registered subscriber.
// It holds no history; a subscriber only sees events emitted after it
// subscribes, matching teacher's live notification feed semantics (no
// replay).
type Bus struct {
	mu   sync.RWMutex
	subs map[uint64]chan Event
	next uint64
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]chan Event)}
}

// Subscribe registers a new listener with a bounded channel buffer and
// returns its id (for Unsubscribe) and receive channel.
func (b *Bus) Subscribe(buffer int) (uint64, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	id := b.next
	ch := make(chan Event, buffer)
	b.subs[id] = ch
	return id, ch
}

// Unsubscribe removes and closes a listener's channel.
func (b *Bus) Unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		close(ch)
		delete(b.subs, id)
	}
}

// Emit fans e out to every subscriber. A subscriber whose buffer is full
// is skipped for this event rather than blocking the emitting
// transaction — in the single-threaded execution model (spec §5) a
// slow subscriber must never stall the core.
func (b *Bus) Emit(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
