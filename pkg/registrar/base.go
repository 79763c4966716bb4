// Package registrar implements the four concrete registrars of spec
// §4.3 — R-Domain, R-Reverse, R-Collection, R-Staking — which share state
// layout (an embedded admin.Record, nft.Core and an expiry map) and
// differ only in label validation, pricing, expiry semantics and the
// meaning of "name". Base carries everything shared; each variant file
// supplies CheckName, price/expiry behavior and the OwnerOverride
// predicate spec §9 asks to be "a single predicate parameterized by the
// registrar variant".
package registrar

import (
	"encoding/binary"
	"errors"

	"github.com/NautilusOSS/envoi/pkg/addr"
	"github.com/NautilusOSS/envoi/pkg/admin"
	"github.com/NautilusOSS/envoi/pkg/events"
	"github.com/NautilusOSS/envoi/pkg/namehash"
	"github.com/NautilusOSS/envoi/pkg/nft"
	"github.com/NautilusOSS/envoi/pkg/state"
	"github.com/NautilusOSS/envoi/pkg/store"
	"github.com/NautilusOSS/envoi/pkg/token"
	"go.uber.org/zap"
)

var (
	ErrNameInvalid       = errors.New("registrar: name must be valid")
	ErrNameTooLong       = errors.New("registrar: name must be less than 256 bytes")
	ErrDurationTooShort  = errors.New("registrar: duration must be at least 1 year")
	ErrDurationNotMult   = errors.New("registrar: duration must be a multiple of 1 year")
	ErrNodeMismatch      = errors.New("registrar: node mismatch")
	ErrNameNotRegistered = errors.New("registrar: name not registered")
	ErrInsufficientFee   = errors.New("registrar: insufficient payment")
)

// BasePeriod is one year in seconds, spec §4.3.
const BasePeriod = 365 * 24 * 3600

// RegistryClient is the subset of the Registry a Registrar depends on.
type RegistryClient interface {
	OwnerOf(node addr.Node) (addr.Address, error)
	SetSubnodeOwner(node addr.Node, caller addr.Address, label [32]byte, owner addr.Address) (addr.Node, error)
}

const prefixExpires byte = 0x30

func expiresKey(id addr.Node) []byte {
	k := make([]byte, 0, 1+addr.Size)
	k = append(k, prefixExpires)
	return append(k, id.Bytes()...)
}

// Base is the shared registrar state: administration record, NFT core,
// expiry map and the cross-component collaborators every variant calls
// into.
type Base struct {
	admin.Record
	NFT *nft.Core

	store    store.Store
	bus      *events.Bus
	log      *zap.SugaredLogger
	registry RegistryClient
	payment  token.PaymentCollaborator

	Self            addr.Address
	Treasury        addr.Address
	RootNode        addr.Node
	GracePeriod     uint64
	CostMultiplier  uint64
	BasePeriodSecs  uint64
	RenewalBaseFee  uint64
}

// NewBase wires the shared registrar state. self is this registrar
// contract's own address (used as arc72_ownerOf's expired-lease
// substitute per spec §4.3), treasury receives priced fees.
func NewBase(s store.Store, bus *events.Bus, log *zap.SugaredLogger, registry RegistryClient, payment token.PaymentCollaborator, self, treasury addr.Address, rootNode addr.Node, gracePeriod uint64) *Base {
	b := &Base{
		Record:         admin.NewRecord(self),
		NFT:            nft.New(s, bus, log, self),
		store:          s,
		bus:            bus,
		log:            log,
		registry:       registry,
		payment:        payment,
		Self:           self,
		Treasury:       treasury,
		RootNode:       rootNode,
		GracePeriod:    gracePeriod,
		CostMultiplier: 1,
		BasePeriodSecs: BasePeriod,
	}
	return b
}

// AdminRecord satisfies admin.Administered.
func (b *Base) AdminRecord() *admin.Record {
	return &b.Record
}

func (b *Base) expiry(id addr.Node) (uint64, error) {
	raw, err := b.store.Get(expiresKey(id))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return binary.BigEndian.Uint64(raw), nil
}

func (b *Base) setExpiry(id addr.Node, v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return b.store.Put(expiresKey(id), buf[:])
}

// Expiry exposes the raw expires[token_id] value, 0 meaning unregistered.
func (b *Base) Expiry(id addr.Node) (uint64, error) {
	return b.expiry(id)
}

// IsExpired reports whether id's lease has passed its grace period as of
// now, the availability predicate from the state diagram in spec §4.3:
// "a name is available for new registration only once expiry + G ≤ now".
func (b *Base) IsExpired(id addr.Node, now uint64) (bool, error) {
	exp, err := b.expiry(id)
	if err != nil {
		return false, err
	}
	if exp == 0 {
		return false, nil
	}
	return exp+b.GracePeriod <= now, nil
}

// InGrace reports whether id is past expiry but still within its grace
// window (renewable but not newly registrable).
func (b *Base) InGrace(id addr.Node, now uint64) (bool, error) {
	exp, err := b.expiry(id)
	if err != nil {
		return false, err
	}
	if exp == 0 {
		return false, nil
	}
	return exp <= now && now < exp+b.GracePeriod, nil
}

// baseCost implements base_cost(u, len): u·32,16,8,4,2,1 for lengths
// 1..≥6 exactly, spec §4.3.
func baseCost(unit uint64, length int) uint64 {
	switch {
	case length <= 1:
		return unit * 32
	case length == 2:
		return unit * 16
	case length == 3:
		return unit * 8
	case length == 4:
		return unit * 4
	case length == 5:
		return unit * 2
	default:
		return unit * 1
	}
}

// Price implements price(unit, len, duration) = base_cost(unit, len) ·
// (duration / base_period), spec §4.3.
func Price(unit uint64, length int, duration uint64) uint64 {
	years := duration / BasePeriod
	return baseCost(unit, length) * years
}

// validateDuration enforces spec §4.3's register/renew duration guard:
// at least one base period, and an exact multiple of it.
func validateDuration(duration uint64) error {
	if duration < BasePeriod {
		return ErrDurationTooShort
	}
	if duration%BasePeriod != 0 {
		return ErrDurationNotMult
	}
	return nil
}

// mintLeaseNode performs the shared namehash-bridge + mint sequence
// (payment is taken by the caller, not here) common to every leasable or bound registrar: compute the
// local subnode hash, call the Registry's subnode-owner round trip,
// assert the returned node matches (spec §4.2's rationale for the
// registry-computed subnode), then mint the NFT.
func (b *Base) mintLeaseNode(caller, owner addr.Address, label string, name [state.NameSize]byte, metadata [state.MetadataSize]byte, now uint64) (addr.Node, error) {
	labelHash := namehash.LabelHash(label)
	localNode := namehash.Namehash(b.RootNode, label)

	returned, err := b.registry.SetSubnodeOwner(b.RootNode, b.Self, labelHash, owner)
	if err != nil {
		return addr.Node{}, err
	}
	if returned != localNode {
		return addr.Node{}, ErrNodeMismatch
	}

	if err := b.reclaimExpiredSlot(localNode, now); err != nil {
		return addr.Node{}, err
	}

	if err := b.NFT.Mint(localNode, owner, name, metadata, now); err != nil {
		return addr.Node{}, err
	}
	return localNode, nil
}

// reclaimExpiredSlot implements the redesigned register-time auto-burn
// decided in DESIGN.md for the "expired-name reuse" open question (spec
// §9): a previously minted, now-expired token is burned automatically so
// registration of a lapsed name does not have to wait on a manual
// reclaimExpiredName call that the original contract defines but never
// implements.
func (b *Base) reclaimExpiredSlot(id addr.Node, now uint64) error {
	td, ok, err := b.NFT.TokenData(id)
	if err != nil || !ok {
		return err
	}
	expired, err := b.IsExpired(id, now)
	if err != nil {
		return err
	}
	if !expired {
		return nil
	}
	return b.NFT.Burn(id)
}

// Reclaim re-asserts Registry ownership for an NFT owner by replaying
// setSubnodeOwner, spec §4.3's "used to repair Registry state after
// off-tree changes".
func (b *Base) Reclaim(caller addr.Address, label string) (addr.Node, error) {
	localNode := namehash.Namehash(b.RootNode, label)
	owner, err := b.NFT.OwnerOf(localNode)
	if err != nil {
		return addr.Node{}, err
	}
	if owner != caller {
		return addr.Node{}, nft.ErrNotAuthorized
	}
	labelHash := namehash.LabelHash(label)
	returned, err := b.registry.SetSubnodeOwner(b.RootNode, b.Self, labelHash, caller)
	if err != nil {
		return addr.Node{}, err
	}
	if returned != localNode {
		return addr.Node{}, ErrNodeMismatch
	}
	return localNode, nil
}

// pay charges amount from payer to the registrar's treasury via the
// external token's transfer-from, spec §4.7.
func (b *Base) pay(payer addr.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	ok, err := b.payment.TransferFrom(payer, b.Treasury, amount)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInsufficientFee
	}
	return nil
}
