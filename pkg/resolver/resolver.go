// Package resolver implements the versioned per-node attribute store
// described in spec §4.4: addresses, multi-coin addresses, text records
// and reverse names, each keyed by version(node) so that clearRecords can
// logically invalidate everything for a node without deleting storage.
package resolver

import (
	"encoding/binary"
	"errors"

	"github.com/NautilusOSS/envoi/pkg/addr"
	"github.com/NautilusOSS/envoi/pkg/events"
	"github.com/NautilusOSS/envoi/pkg/state"
	"github.com/NautilusOSS/envoi/pkg/store"
	"go.uber.org/zap"
)

// ErrNotAuthorized is returned when the caller is not the Registry's
// current owner of the node being written.
var ErrNotAuthorized = errors.New("resolver: caller is not the node owner")

// RegistryReader is the subset of the Registry a Resolver depends on: an
// ownership lookup used as the authorization guard for every write
// (spec §4.4: "Authorization for every write is Registry.ownerOf(node) ==
// caller").
type RegistryReader interface {
	OwnerOf(node addr.Node) (addr.Address, error)
}

const (
	prefixVersion byte = 0x10
	prefixAddr    byte = 0x11
	prefixCoin    byte = 0x12
	prefixText    byte = 0x13
	prefixName    byte = 0x14
)

// Resolver is the attribute store for one Registry's nodes.
type Resolver struct {
	store    store.Store
	bus      *events.Bus
	log      *zap.SugaredLogger
	registry RegistryReader
}

// New constructs a Resolver backed by s, authorizing writes against
// registry.
func New(s store.Store, bus *events.Bus, log *zap.SugaredLogger, registry RegistryReader) *Resolver {
	return &Resolver{store: s, bus: bus, log: log, registry: registry}
}

func (r *Resolver) version(node addr.Node) (uint64, error) {
	raw, err := r.store.Get(versionKey(node))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return binary.BigEndian.Uint64(raw), nil
}

func versionKey(node addr.Node) []byte {
	k := make([]byte, 0, 1+addr.Size)
	k = append(k, prefixVersion)
	k = append(k, node.Bytes()...)
	return k
}

func verNodeKey(prefix byte, ver uint64, node addr.Node) []byte {
	k := make([]byte, 0, 1+8+addr.Size)
	k = append(k, prefix)
	var verBuf [8]byte
	binary.BigEndian.PutUint64(verBuf[:], ver)
	k = append(k, verBuf[:]...)
	k = append(k, node.Bytes()...)
	return k
}

func (r *Resolver) checkAuth(node addr.Node, caller addr.Address) error {
	owner, err := r.registry.OwnerOf(node)
	if err != nil {
		return err
	}
	if owner != caller {
		return ErrNotAuthorized
	}
	return nil
}

// SetAddr writes the default-coin address for node, 40-byte key
// ver(8)∥node(32).
func (r *Resolver) SetAddr(node addr.Node, caller, value addr.Address) error {
	if err := r.checkAuth(node, caller); err != nil {
		return err
	}
	ver, err := r.version(node)
	if err != nil {
		return err
	}
	if err := r.store.Put(verNodeKey(prefixAddr, ver, node), value.Bytes()); err != nil {
		return err
	}
	r.emit(events.KindAddrChanged, events.AddrChangedPayload{Node: node, Addr: value})
	return nil
}

// GetAddr reads the default-coin address for node, or the zero address
// if unset.
func (r *Resolver) GetAddr(node addr.Node) (addr.Address, error) {
	ver, err := r.version(node)
	if err != nil {
		return addr.Address{}, err
	}
	raw, err := r.store.Get(verNodeKey(prefixAddr, ver, node))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return addr.Address{}, nil
		}
		return addr.Address{}, err
	}
	return addr.AddressFromBytes(raw)
}

func coinKey(prefix byte, ver uint64, node addr.Node, coinType uint64) []byte {
	k := verNodeKey(prefix, ver, node)
	var coinBuf [8]byte
	binary.BigEndian.PutUint64(coinBuf[:], coinType)
	return append(k, coinBuf[:]...)
}

// SetAddress writes a multi-coin address for node, 48-byte key
// ver(8)∥node(32)∥coin(8).
func (r *Resolver) SetAddress(node addr.Node, caller addr.Address, coinType uint64, value addr.Address) error {
	if err := r.checkAuth(node, caller); err != nil {
		return err
	}
	ver, err := r.version(node)
	if err != nil {
		return err
	}
	if err := r.store.Put(coinKey(prefixCoin, ver, node, coinType), value.Bytes()); err != nil {
		return err
	}
	r.emit(events.KindAddressChanged, events.AddressChangedPayload{Node: node, CoinType: coinType, Addr: value})
	return nil
}

// GetAddress reads the multi-coin address for node and coinType.
func (r *Resolver) GetAddress(node addr.Node, coinType uint64) (addr.Address, error) {
	ver, err := r.version(node)
	if err != nil {
		return addr.Address{}, err
	}
	raw, err := r.store.Get(coinKey(prefixCoin, ver, node, coinType))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return addr.Address{}, nil
		}
		return addr.Address{}, err
	}
	return addr.AddressFromBytes(raw)
}

func textKey(ver uint64, node addr.Node, key [state.TextKeySize]byte) []byte {
	k := verNodeKey(prefixText, ver, node)
	return append(k, key[:]...)
}

// SetText writes a 256-byte text record under a 22-byte key, 62-byte
// overall key ver(8)∥node(32)∥key(22).
func (r *Resolver) SetText(node addr.Node, caller addr.Address, key [state.TextKeySize]byte, value [state.NameSize]byte) error {
	if err := r.checkAuth(node, caller); err != nil {
		return err
	}
	ver, err := r.version(node)
	if err != nil {
		return err
	}
	if err := r.store.Put(textKey(ver, node, key), value[:]); err != nil {
		return err
	}
	r.emit(events.KindTextChanged, events.TextChangedPayload{Node: node, Key: key, Value: value})
	return nil
}

// GetText reads a text record, returning a zero value if unset.
func (r *Resolver) GetText(node addr.Node, key [state.TextKeySize]byte) ([state.NameSize]byte, error) {
	var out [state.NameSize]byte
	ver, err := r.version(node)
	if err != nil {
		return out, err
	}
	raw, err := r.store.Get(textKey(ver, node, key))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return out, nil
		}
		return out, err
	}
	copy(out[:], raw)
	return out, nil
}

// SetName writes the reverse (primary) name for node, 40-byte key
// ver(8)∥node(32).
func (r *Resolver) SetName(node addr.Node, caller addr.Address, name [state.NameSize]byte) error {
	if err := r.checkAuth(node, caller); err != nil {
		return err
	}
	ver, err := r.version(node)
	if err != nil {
		return err
	}
	if err := r.store.Put(verNodeKey(prefixName, ver, node), name[:]); err != nil {
		return err
	}
	r.emit(events.KindNameChanged, events.NameChangedPayload{Node: node, Name: name})
	return nil
}

// GetName reads the reverse name for node, returning a zero value if
// unset.
func (r *Resolver) GetName(node addr.Node) ([state.NameSize]byte, error) {
	var out [state.NameSize]byte
	ver, err := r.version(node)
	if err != nil {
		return out, err
	}
	raw, err := r.store.Get(verNodeKey(prefixName, ver, node))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return out, nil
		}
		return out, err
	}
	copy(out[:], raw)
	return out, nil
}

// ClearRecords bumps node's version, invalidating reads of every prior
// entry without deleting the underlying rows (spec §9: "cheaper than
// mass deletion ... must not prune the old rows").
func (r *Resolver) ClearRecords(node addr.Node, caller addr.Address) error {
	if err := r.checkAuth(node, caller); err != nil {
		return err
	}
	ver, err := r.version(node)
	if err != nil {
		return err
	}
	newVer := ver + 1
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], newVer)
	if err := r.store.Put(versionKey(node), buf[:]); err != nil {
		return err
	}
	r.emit(events.KindVersionChanged, events.VersionChangedPayload{Node: node, NewVersion: newVer})
	return nil
}

// RecordVersion exposes the current version counter for node.
func (r *Resolver) RecordVersion(node addr.Node) (uint64, error) {
	return r.version(node)
}

func (r *Resolver) emit(kind events.Kind, payload any) {
	if r.bus == nil {
		return
	}
	r.bus.Emit(events.Event{Kind: kind, Payload: payload})
	if r.log != nil {
		r.log.Debugw("resolver event", "kind", kind)
	}
}
