// Package nft implements the ARC-72-like NFT core described in spec
// §4.5: ownership, approvals, enumeration and holder balances for minted
// names. It is embedded by every Registrar variant rather than standing
// alone, since spec §3/§5 bind nft_data/nft_index/holder_data/
// arc72_counter to registrar state; the OwnerOverride hook lets a
// Registrar layer the "expired lease repossession" predicate from spec
// §4.3/§9 over the NFT core's own ownership bookkeeping without the core
// needing to know about leases.
package nft

import (
	"encoding/binary"
	"errors"

	"github.com/NautilusOSS/envoi/pkg/addr"
	"github.com/NautilusOSS/envoi/pkg/codec"
	"github.com/NautilusOSS/envoi/pkg/events"
	"github.com/NautilusOSS/envoi/pkg/state"
	"github.com/NautilusOSS/envoi/pkg/store"
	"go.uber.org/zap"
)

var (
	ErrTokenExists    = errors.New("nft: token must not exist")
	ErrTokenNotExists = errors.New("nft: token id not exists")
	ErrNotAuthorized  = errors.New("nft: not authorized")
)

// Interface IDs from spec §4.5 / ARC-73.
var (
	IfaceSupportsInterface = [4]byte{0x4e, 0x22, 0xa3, 0xba}
	IfaceCore              = [4]byte{0x53, 0xf0, 0x2a, 0x40}
	IfaceMetadata          = [4]byte{0xc3, 0xc1, 0xfc, 0x00}
	IfaceTransferMgmt      = [4]byte{0xb9, 0xc6, 0xf6, 0x96}
	IfaceEnumeration       = [4]byte{0xa5, 0x7d, 0x46, 0x79}
	IfaceMask              = [4]byte{0xff, 0xff, 0xff, 0xff}
)

// SupportsInterface implements ARC73SupportsInterface per spec §4.5.
func SupportsInterface(id [4]byte) bool {
	switch id {
	case IfaceSupportsInterface, IfaceCore, IfaceMetadata, IfaceTransferMgmt, IfaceEnumeration:
		return true
	case IfaceMask:
		return false
	default:
		return false
	}
}

const (
	prefixTokenData byte = 0x20
	prefixIndex     byte = 0x21
	prefixHolder    byte = 0x22
	prefixCounter   byte = 0x23
	prefixSupply    byte = 0x24
)

// OwnerOverride lets an embedding component (a Registrar) substitute a
// different logical owner for a token than the one recorded in
// TokenData, e.g. "the registrar's own address once the lease has
// expired" (spec §4.3). Returning (addr.Address{}, false) means "use the
// recorded owner".
type OwnerOverride func(tokenID addr.Node, recorded addr.Address) (addr.Address, bool)

// Core is the reusable ARC-72 bookkeeping embedded by each Registrar.
type Core struct {
	store    store.Store
	bus      *events.Bus
	log      *zap.SugaredLogger
	self     addr.Address
	override OwnerOverride
}

// New constructs a Core. self is the registrar contract's own address;
// Core stores it but does not read it. An owner substitute comes only
// from an OwnerOverride installed with SetOverride.
func New(s store.Store, bus *events.Bus, log *zap.SugaredLogger, self addr.Address) *Core {
	return &Core{store: s, bus: bus, log: log, self: self}
}

// SetOverride installs the owner-override predicate, spec §9's "single
// predicate parameterized by the registrar variant".
func (c *Core) SetOverride(f OwnerOverride) {
	c.override = f
}

func tokenDataKey(id addr.Node) []byte {
	k := make([]byte, 0, 1+addr.Size)
	k = append(k, prefixTokenData)
	return append(k, id.Bytes()...)
}

func indexKey(i uint64) []byte {
	k := make([]byte, 9)
	k[0] = prefixIndex
	binary.BigEndian.PutUint64(k[1:], i)
	return k
}

func holderKey(a addr.Address) []byte {
	k := make([]byte, 0, 1+addr.Size)
	k = append(k, prefixHolder)
	return append(k, a.Bytes()...)
}

func (c *Core) counter() (uint64, error) {
	raw, err := c.store.Get([]byte{prefixCounter})
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return binary.BigEndian.Uint64(raw), nil
}

func (c *Core) setCounter(v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return c.store.Put([]byte{prefixCounter}, buf[:])
}

// TotalSupply returns the live NFT count.
func (c *Core) TotalSupply() (uint64, error) {
	raw, err := c.store.Get([]byte{prefixSupply})
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return binary.BigEndian.Uint64(raw), nil
}

func (c *Core) setTotalSupply(v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return c.store.Put([]byte{prefixSupply}, buf[:])
}

func (c *Core) getTokenData(id addr.Node) (state.TokenData, bool, error) {
	raw, err := c.store.Get(tokenDataKey(id))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return state.TokenData{}, false, nil
		}
		return state.TokenData{}, false, err
	}
	var td state.TokenData
	if err := codec.Decode(raw, &td); err != nil {
		return state.TokenData{}, false, err
	}
	return td, true, nil
}

func (c *Core) putTokenData(id addr.Node, td state.TokenData) error {
	raw, err := codec.Encode(&td)
	if err != nil {
		return err
	}
	return c.store.Put(tokenDataKey(id), raw)
}

func (c *Core) getHolder(a addr.Address) (state.HolderData, bool, error) {
	raw, err := c.store.Get(holderKey(a))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return state.HolderData{}, false, nil
		}
		return state.HolderData{}, false, err
	}
	var h state.HolderData
	if err := codec.Decode(raw, &h); err != nil {
		return state.HolderData{}, false, err
	}
	return h, true, nil
}

func (c *Core) setHolderBalance(a addr.Address, balance uint64) error {
	if balance == 0 {
		return c.store.Delete(holderKey(a))
	}
	h := state.HolderData{Holder: a, Balance: balance}
	raw, err := codec.Encode(&h)
	if err != nil {
		return err
	}
	return c.store.Put(holderKey(a), raw)
}

func (c *Core) incHolder(a addr.Address, delta int64) error {
	h, _, err := c.getHolder(a)
	if err != nil {
		return err
	}
	bal := int64(h.Balance) + delta
	if bal < 0 {
		bal = 0
	}
	return c.setHolderBalance(a, uint64(bal))
}

// Mint creates a new token for id, owned by owner, refusing collisions
// per spec §3 invariant 2 / §7 "token must not exist". name and metadata
// follow the arc72_nft_data field order preserved in pkg/state.
func (c *Core) Mint(id addr.Node, owner addr.Address, name [state.NameSize]byte, metadata [state.MetadataSize]byte, registrationDate uint64) error {
	existing, ok, err := c.getTokenData(id)
	if err != nil {
		return err
	}
	if ok && existing.Index != 0 {
		return ErrTokenExists
	}

	next, err := c.counter()
	if err != nil {
		return err
	}
	next++

	td := state.TokenData{
		Owner:            owner,
		Index:            next,
		TokenID:          id,
		Metadata:         metadata,
		Node:             id,
		IsValid:          true,
		RegistrationDate: registrationDate,
		Name:             name,
	}
	if err := c.putTokenData(id, td); err != nil {
		return err
	}
	if err := c.store.Put(indexKey(next), id.Bytes()); err != nil {
		return err
	}
	if err := c.setCounter(next); err != nil {
		return err
	}
	if err := c.incHolder(owner, 1); err != nil {
		return err
	}
	supply, err := c.TotalSupply()
	if err != nil {
		return err
	}
	if err := c.setTotalSupply(supply + 1); err != nil {
		return err
	}
	c.emit(events.KindARC72Transfer, events.ARC72TransferPayload{From: addr.Address{}, To: owner, TokenID: id})
	return nil
}

// Burn destroys a token, removing both the tokenData and index entry
// (spec §3 invariant 2: "deletions remove both") and leaving the slot a
// tombstone — indexKey is never reused (spec §4.5).
func (c *Core) Burn(id addr.Node) error {
	td, ok, err := c.getTokenData(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTokenNotExists
	}
	if err := c.store.Delete(tokenDataKey(id)); err != nil {
		return err
	}
	if err := c.store.Delete(indexKey(td.Index)); err != nil {
		return err
	}
	if err := c.incHolder(td.Owner, -1); err != nil {
		return err
	}
	supply, err := c.TotalSupply()
	if err != nil {
		return err
	}
	if supply > 0 {
		if err := c.setTotalSupply(supply - 1); err != nil {
			return err
		}
	}
	c.emit(events.KindARC72Transfer, events.ARC72TransferPayload{From: td.Owner, To: addr.Address{}, TokenID: id})
	return nil
}

// OwnerOf returns the logical owner of id, applying the OwnerOverride
// hook if installed (spec §4.5/§9), or the zero address if the token
// does not exist.
func (c *Core) OwnerOf(id addr.Node) (addr.Address, error) {
	td, ok, err := c.getTokenData(id)
	if err != nil || !ok {
		return addr.Address{}, err
	}
	if c.override != nil {
		if ov, overridden := c.override(id, td.Owner); overridden {
			return ov, nil
		}
	}
	return td.Owner, nil
}

// TokenData exposes the raw stored entity (pre-override), used by
// metadata/enumeration reads that must show the recorded owner rather
// than the lease-expiry substitute.
func (c *Core) TokenData(id addr.Node) (state.TokenData, bool, error) {
	return c.getTokenData(id)
}

// GetApproved returns the per-token approved spender.
func (c *Core) GetApproved(id addr.Node) (addr.Address, error) {
	td, ok, err := c.getTokenData(id)
	if err != nil || !ok {
		return addr.Address{}, err
	}
	return td.Approved, nil
}

// IsApprovedForAll reports whether operator has blanket approval from
// owner over this registrar's holder balances.
func (c *Core) IsApprovedForAll(owner, operator addr.Address) (bool, error) {
	raw, err := c.store.Get(append([]byte{0x25}, append(operator.Bytes(), owner.Bytes()...)...))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return len(raw) == 1 && raw[0] == 1, nil
}

// SetApprovalForAll stores operator ∥ caller → approved.
func (c *Core) SetApprovalForAll(caller, operator addr.Address, approved bool) error {
	var v byte
	if approved {
		v = 1
	}
	key := append([]byte{0x25}, append(operator.Bytes(), caller.Bytes()...)...)
	if err := c.store.Put(key, []byte{v}); err != nil {
		return err
	}
	c.emit(events.KindARC72ApprovalForAll, events.ARC72ApprovalForAllPayload{Owner: caller, Operator: operator, Approved: approved})
	return nil
}

// Approve sets id's single approved spender, requiring the caller be the
// recorded owner.
func (c *Core) Approve(id addr.Node, caller, approved addr.Address) error {
	td, ok, err := c.getTokenData(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTokenNotExists
	}
	if td.Owner != caller {
		return ErrNotAuthorized
	}
	td.Approved = approved
	if err := c.putTokenData(id, td); err != nil {
		return err
	}
	c.emit(events.KindARC72Approval, events.ARC72ApprovalPayload{Owner: caller, Approved: approved, TokenID: id})
	return nil
}

// TransferFrom moves id from its recorded owner to to, requiring caller
// be the recorded owner, the approved spender, or an approved operator.
// It updates both sides of the holder balance and clears the per-token
// approval, spec §4.5.
func (c *Core) TransferFrom(id addr.Node, caller, to addr.Address) error {
	td, ok, err := c.getTokenData(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTokenNotExists
	}
	if td.Owner != caller && td.Approved != caller {
		approvedAll, err := c.IsApprovedForAll(td.Owner, caller)
		if err != nil {
			return err
		}
		if !approvedAll {
			return ErrNotAuthorized
		}
	}

	from := td.Owner
	td.Owner = to
	td.Approved = addr.Address{}
	if err := c.putTokenData(id, td); err != nil {
		return err
	}
	if err := c.incHolder(from, -1); err != nil {
		return err
	}
	if err := c.incHolder(to, 1); err != nil {
		return err
	}
	c.emit(events.KindARC72Transfer, events.ARC72TransferPayload{From: from, To: to, TokenID: id})
	return nil
}

// TokenByIndex implements enumeration: the token minted into slot i, or
// the zero node if i is out of range or was burned (tombstone).
func (c *Core) TokenByIndex(i uint64) (addr.Node, error) {
	if i == 0 {
		return addr.Node{}, nil
	}
	raw, err := c.store.Get(indexKey(i))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return addr.Node{}, nil
		}
		return addr.Node{}, err
	}
	return addr.NodeFromBytes(raw)
}

// BalanceOf returns holder's live NFT count.
func (c *Core) BalanceOf(holder addr.Address) (uint64, error) {
	h, _, err := c.getHolder(holder)
	if err != nil {
		return 0, err
	}
	return h.Balance, nil
}

func (c *Core) emit(kind events.Kind, payload any) {
	if c.bus == nil {
		return
	}
	c.bus.Emit(events.Event{Kind: kind, Payload: payload})
	if c.log != nil {
		c.log.Debugw("nft event", "kind", kind)
	}
}
