// Package state defines the persisted record shapes shared by the
// Registry, NFT core, Registrar family and RSVP engine, each implementing
// codec.Serializable for storage in a pkg/store.Store. Field order follows
// the original contract's struct layout (§3 of the naming specification
// this module implements, and arc72_nft_data/arc72_holder_data in
// original_source/contracts/token/ARC72/src/contract.py) rather than
// Go convention, since that layout is part of the wire contract other
// tooling in this ecosystem depends on.
package state

import (
	"github.com/NautilusOSS/envoi/pkg/addr"
	"github.com/NautilusOSS/envoi/pkg/codec"
)

// MetadataSize and NameSize are the fixed-width byte fields carried by
// every NFT/reservation/resolver text entry.
const (
	MetadataSize = 256
	NameSize     = 256
	TextKeySize  = 22
)

// Record is the Registry's per-node tuple: owner, resolver application
// id, TTL and the single per-node approved spender.
type Record struct {
	Owner    addr.Address
	Resolver uint64
	TTL      uint64
	Approved addr.Address
}

// Exists reports whether this is a live record, defined in spec §3 as
// owner ≠ zero.
func (r Record) Exists() bool {
	return !r.Owner.IsZero()
}

func (r *Record) EncodeBinary(w *codec.BinWriter) {
	w.WriteFixedBytes(r.Owner.Bytes())
	w.WriteU64(r.Resolver)
	w.WriteU64(r.TTL)
	w.WriteFixedBytes(r.Approved.Bytes())
}

func (r *Record) DecodeBinary(br *codec.BinReader) {
	owner := br.ReadFixedBytes(addr.Size)
	r.Resolver = br.ReadU64()
	r.TTL = br.ReadU64()
	approved := br.ReadFixedBytes(addr.Size)
	if br.Err != nil {
		return
	}
	copy(r.Owner[:], owner)
	copy(r.Approved[:], approved)
}

// TokenData is the per-token NFT entity, field order preserved from
// arc72_nft_data: owner, approved, index, tokenId, metadata, node,
// isValid, registrationDate, name.
type TokenData struct {
	Owner            addr.Address
	Approved         addr.Address
	Index            uint64
	TokenID          addr.Node
	Metadata         [MetadataSize]byte
	Node             addr.Node
	IsValid          bool
	RegistrationDate uint64
	Name             [NameSize]byte
}

func (t *TokenData) EncodeBinary(w *codec.BinWriter) {
	w.WriteFixedBytes(t.Owner.Bytes())
	w.WriteFixedBytes(t.Approved.Bytes())
	w.WriteU64(t.Index)
	w.WriteFixedBytes(t.TokenID.Bytes())
	w.WriteFixedBytes(t.Metadata[:])
	w.WriteFixedBytes(t.Node.Bytes())
	w.WriteBool(t.IsValid)
	w.WriteU64(t.RegistrationDate)
	w.WriteFixedBytes(t.Name[:])
}

func (t *TokenData) DecodeBinary(br *codec.BinReader) {
	owner := br.ReadFixedBytes(addr.Size)
	approved := br.ReadFixedBytes(addr.Size)
	t.Index = br.ReadU64()
	tokenID := br.ReadFixedBytes(addr.Size)
	metadata := br.ReadFixedBytes(MetadataSize)
	node := br.ReadFixedBytes(addr.Size)
	t.IsValid = br.ReadBool()
	t.RegistrationDate = br.ReadU64()
	name := br.ReadFixedBytes(NameSize)
	if br.Err != nil {
		return
	}
	copy(t.Owner[:], owner)
	copy(t.Approved[:], approved)
	copy(t.TokenID[:], tokenID)
	copy(t.Metadata[:], metadata)
	copy(t.Node[:], node)
	copy(t.Name[:], name)
}

// HolderData is the per-address NFT balance row. A zero-balance row must
// not exist (spec §3 invariant).
type HolderData struct {
	Holder  addr.Address
	Balance uint64
}

func (h *HolderData) EncodeBinary(w *codec.BinWriter) {
	w.WriteFixedBytes(h.Holder.Bytes())
	w.WriteU64(h.Balance)
}

func (h *HolderData) DecodeBinary(br *codec.BinReader) {
	holder := br.ReadFixedBytes(addr.Size)
	h.Balance = br.ReadU64()
	if br.Err != nil {
		return
	}
	copy(h.Holder[:], holder)
}

// Reservation is the RSVP engine's per-node bid, field order preserved
// from the original's VNSReservation box: owner, length, price, name.
type Reservation struct {
	Owner  addr.Address
	Length uint64
	Price  uint64
	Name   [NameSize]byte
}

// IsEmpty reports whether this is the zero/absent reservation.
func (r Reservation) IsEmpty() bool {
	return r.Owner.IsZero() && r.Price == 0
}

func (r *Reservation) EncodeBinary(w *codec.BinWriter) {
	w.WriteFixedBytes(r.Owner.Bytes())
	w.WriteU64(r.Length)
	w.WriteU64(r.Price)
	w.WriteFixedBytes(r.Name[:])
}

func (r *Reservation) DecodeBinary(br *codec.BinReader) {
	owner := br.ReadFixedBytes(addr.Size)
	r.Length = br.ReadU64()
	r.Price = br.ReadU64()
	name := br.ReadFixedBytes(NameSize)
	if br.Err != nil {
		return
	}
	copy(r.Owner[:], owner)
	copy(r.Name[:], name)
}

// NameBytes copies s into a fixed NameSize array, truncating anything past
// NameSize bytes. rsvp.Engine.Reserve rejects longer names first; the
// rpcsrv setText/setName handlers pass input through unchecked.
func NameBytes(s string) [NameSize]byte {
	var out [NameSize]byte
	copy(out[:], s)
	return out
}

// MetadataBytes copies s into a fixed MetadataSize array.
func MetadataBytes(s string) [MetadataSize]byte {
	var out [MetadataSize]byte
	copy(out[:], s)
	return out
}
