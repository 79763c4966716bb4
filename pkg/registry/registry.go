// Package registry implements the record tree described in spec §4.2: the
// single contract every Registrar and Resolver defers to for node
// ownership and authorization. Grounded on the teacher's native-contract
// shape (pkg/core/native in neo-go gives every native contract a
// logger + dao-backed storage + event emission triple); here that
// triple is logger + pkg/store.Store + pkg/events.Bus.
package registry

import (
	"errors"

	"github.com/NautilusOSS/envoi/pkg/addr"
	"github.com/NautilusOSS/envoi/pkg/codec"
	"github.com/NautilusOSS/envoi/pkg/events"
	"github.com/NautilusOSS/envoi/pkg/namehash"
	"github.com/NautilusOSS/envoi/pkg/state"
	"github.com/NautilusOSS/envoi/pkg/store"
	"go.uber.org/zap"
)

var (
	ErrOnlyOwner       = errors.New("registry: only owner")
	ErrNotAuthorized   = errors.New("registry: not authorized")
	ErrParentMustExist = errors.New("registry: parent node must exist")
)

const (
	prefixRecord   byte = 0x01
	prefixOperator byte = 0x02
)

func recordKey(node addr.Node) []byte {
	k := make([]byte, 0, 1+addr.Size)
	k = append(k, prefixRecord)
	k = append(k, node.Bytes()...)
	return k
}

func operatorKey(operator, owner addr.Address) []byte {
	k := make([]byte, 0, 1+2*addr.Size)
	k = append(k, prefixOperator)
	k = append(k, operator.Bytes()...)
	k = append(k, owner.Bytes()...)
	return k
}

// Registry holds the node → Record tree and the operator-approval set.
type Registry struct {
	store store.Store
	bus   *events.Bus
	log   *zap.SugaredLogger
}

// New constructs a Registry over s, seeding the root node's owner at
// deployment (the one record not created by a setOwner/setSubnodeOwner
// call, per spec §3 invariant 1).
func New(s store.Store, bus *events.Bus, log *zap.SugaredLogger, rootOwner addr.Address) (*Registry, error) {
	r := &Registry{store: s, bus: bus, log: log}
	root := state.Record{Owner: rootOwner}
	if err := r.putRecord(addr.Root, root); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) getRecord(node addr.Node) (state.Record, error) {
	raw, err := r.store.Get(recordKey(node))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return state.Record{}, nil
		}
		return state.Record{}, err
	}
	var rec state.Record
	if err := codec.Decode(raw, &rec); err != nil {
		return state.Record{}, err
	}
	return rec, nil
}

func (r *Registry) putRecord(node addr.Node, rec state.Record) error {
	raw, err := codec.Encode(&rec)
	if err != nil {
		return err
	}
	return r.store.Put(recordKey(node), raw)
}

// RecordExists reports owner(node) ≠ zero, spec §3/§8 invariant 1.
func (r *Registry) RecordExists(node addr.Node) (bool, error) {
	rec, err := r.getRecord(node)
	if err != nil {
		return false, err
	}
	return rec.Exists(), nil
}

// OwnerOf returns the current owner of node, or the zero address if
// absent.
func (r *Registry) OwnerOf(node addr.Node) (addr.Address, error) {
	rec, err := r.getRecord(node)
	if err != nil {
		return addr.Address{}, err
	}
	return rec.Owner, nil
}

// Resolver returns the resolver application id bound to node.
func (r *Registry) Resolver(node addr.Node) (uint64, error) {
	rec, err := r.getRecord(node)
	if err != nil {
		return 0, err
	}
	return rec.Resolver, nil
}

// TTL returns the TTL bound to node.
func (r *Registry) TTL(node addr.Node) (uint64, error) {
	rec, err := r.getRecord(node)
	if err != nil {
		return 0, err
	}
	return rec.TTL, nil
}

// GetApproved returns the per-node approved spender.
func (r *Registry) GetApproved(node addr.Node) (addr.Address, error) {
	rec, err := r.getRecord(node)
	if err != nil {
		return addr.Address{}, err
	}
	return rec.Approved, nil
}

// IsApprovedForAll reports whether operator has blanket approval from
// owner.
func (r *Registry) IsApprovedForAll(owner, operator addr.Address) (bool, error) {
	raw, err := r.store.Get(operatorKey(operator, owner))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return len(raw) == 1 && raw[0] == 1, nil
}

// onlyOwner asserts caller == record.owner, spec §4.2.
func (r *Registry) onlyOwner(node addr.Node, caller addr.Address) error {
	rec, err := r.getRecord(node)
	if err != nil {
		return err
	}
	if rec.Owner != caller {
		return ErrOnlyOwner
	}
	return nil
}

// authorized asserts caller is the owner, an approved operator, or the
// per-node approved address, spec §4.2.
func (r *Registry) authorized(node addr.Node, caller addr.Address) error {
	rec, err := r.getRecord(node)
	if err != nil {
		return err
	}
	if rec.Owner == caller || rec.Approved == caller {
		return nil
	}
	ok, err := r.IsApprovedForAll(rec.Owner, caller)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthorized
	}
	return nil
}

// SetRecord overwrites owner, resolver and TTL in one call, requiring
// only_owner.
func (r *Registry) SetRecord(node addr.Node, caller, owner addr.Address, resolver, ttl uint64) error {
	if err := r.onlyOwner(node, caller); err != nil {
		return err
	}
	rec, err := r.getRecord(node)
	if err != nil {
		return err
	}
	rec.Owner, rec.Resolver, rec.TTL = owner, resolver, ttl
	if err := r.putRecord(node, rec); err != nil {
		return err
	}
	r.emit(events.KindTransfer, events.TransferPayload{Node: node, Owner: owner})
	r.emit(events.KindNewResolver, events.NewResolverPayload{Node: node, ResolverAppID: resolver})
	r.emit(events.KindNewTTL, events.NewTTLPayload{Node: node, TTL: ttl})
	return nil
}

// SetSubnodeOwner computes subnode = H(node ∥ label) server-side and
// assigns owner, requiring authorized(node). This is the registry-computed
// half of the namehash commutativity check described in spec §4.2's
// rationale.
func (r *Registry) SetSubnodeOwner(node addr.Node, caller addr.Address, label [32]byte, owner addr.Address) (addr.Node, error) {
	if err := r.authorized(node, caller); err != nil {
		return addr.Node{}, err
	}
	subnode := namehash.Subnode(node, label)
	rec, err := r.getRecord(subnode)
	if err != nil {
		return addr.Node{}, err
	}
	rec.Owner = owner
	if err := r.putRecord(subnode, rec); err != nil {
		return addr.Node{}, err
	}
	r.emit(events.KindNewOwner, events.NewOwnerPayload{Node: node, Label: label, Owner: owner})
	return subnode, nil
}

// SetSubnodeRecord is setSubnodeOwner followed by resolver+TTL writes on
// the resulting subnode, requiring only_owner(node).
func (r *Registry) SetSubnodeRecord(node addr.Node, caller addr.Address, label [32]byte, owner addr.Address, resolver, ttl uint64) (addr.Node, error) {
	if err := r.onlyOwner(node, caller); err != nil {
		return addr.Node{}, err
	}
	subnode := namehash.Subnode(node, label)
	rec, err := r.getRecord(subnode)
	if err != nil {
		return addr.Node{}, err
	}
	rec.Owner, rec.Resolver, rec.TTL = owner, resolver, ttl
	if err := r.putRecord(subnode, rec); err != nil {
		return addr.Node{}, err
	}
	r.emit(events.KindNewOwner, events.NewOwnerPayload{Node: node, Label: label, Owner: owner})
	r.emit(events.KindNewResolver, events.NewResolverPayload{Node: subnode, ResolverAppID: resolver})
	r.emit(events.KindNewTTL, events.NewTTLPayload{Node: subnode, TTL: ttl})
	return subnode, nil
}

// SetResolver writes the resolver pointer, requiring authorized(node),
// and only writes/emits when the value actually changes.
func (r *Registry) SetResolver(node addr.Node, caller addr.Address, resolver uint64) error {
	if err := r.authorized(node, caller); err != nil {
		return err
	}
	rec, err := r.getRecord(node)
	if err != nil {
		return err
	}
	if rec.Resolver == resolver {
		return nil
	}
	rec.Resolver = resolver
	if err := r.putRecord(node, rec); err != nil {
		return err
	}
	r.emit(events.KindNewResolver, events.NewResolverPayload{Node: node, ResolverAppID: resolver})
	return nil
}

// SetOwner reassigns node's owner, requiring authorized(node).
func (r *Registry) SetOwner(node addr.Node, caller, owner addr.Address) error {
	if err := r.authorized(node, caller); err != nil {
		return err
	}
	rec, err := r.getRecord(node)
	if err != nil {
		return err
	}
	rec.Owner = owner
	if err := r.putRecord(node, rec); err != nil {
		return err
	}
	r.emit(events.KindTransfer, events.TransferPayload{Node: node, Owner: owner})
	return nil
}

// SetTTL writes node's TTL, requiring authorized(node), and only
// writes/emits when the value actually changes.
func (r *Registry) SetTTL(node addr.Node, caller addr.Address, ttl uint64) error {
	if err := r.authorized(node, caller); err != nil {
		return err
	}
	rec, err := r.getRecord(node)
	if err != nil {
		return err
	}
	if rec.TTL == ttl {
		return nil
	}
	rec.TTL = ttl
	if err := r.putRecord(node, rec); err != nil {
		return err
	}
	r.emit(events.KindNewTTL, events.NewTTLPayload{Node: node, TTL: ttl})
	return nil
}

// SetApprovalForAll stores operator ∥ caller → approved, no guard.
func (r *Registry) SetApprovalForAll(caller, operator addr.Address, approved bool) error {
	var v byte
	if approved {
		v = 1
	}
	if err := r.store.Put(operatorKey(operator, caller), []byte{v}); err != nil {
		return err
	}
	r.emit(events.KindApprovalForAll, events.ApprovalForAllPayload{Owner: caller, Operator: operator, Approved: approved})
	return nil
}

// Approve sets node's single approved spender, requiring only_owner(node).
func (r *Registry) Approve(node addr.Node, caller, to addr.Address) error {
	if err := r.onlyOwner(node, caller); err != nil {
		return err
	}
	rec, err := r.getRecord(node)
	if err != nil {
		return err
	}
	rec.Approved = to
	return r.putRecord(node, rec)
}

// RequireParentExists returns ErrParentMustExist ("parent node must
// exist", spec §7) when node has no record. The registrars in this module
// do not call it.
func (r *Registry) RequireParentExists(node addr.Node) error {
	exists, err := r.RecordExists(node)
	if err != nil {
		return err
	}
	if !exists {
		return ErrParentMustExist
	}
	return nil
}

func (r *Registry) emit(kind events.Kind, payload any) {
	if r.bus == nil {
		return
	}
	r.bus.Emit(events.Event{Kind: kind, Payload: payload})
	if r.log != nil {
		r.log.Debugw("registry event", "kind", kind)
	}
}
