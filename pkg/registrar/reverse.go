package registrar

import (
	"errors"

	"github.com/NautilusOSS/envoi/pkg/addr"
	"github.com/NautilusOSS/envoi/pkg/events"
	"github.com/NautilusOSS/envoi/pkg/state"
	"github.com/NautilusOSS/envoi/pkg/store"
	"github.com/NautilusOSS/envoi/pkg/token"
	"go.uber.org/zap"
)

// ErrNotAddressOwner is spec §4.3's R-Reverse guard: "only the owner of
// an address can register its reverse name".
var ErrNotAddressOwner = errors.New("registrar: check_name bytes must equal caller's address")

// ReverseNameLen is the canonical encoded length of a reverse name (spec
// §4.3: "Length is always 58").
const ReverseNameLen = 58

// Reverse is R-Reverse: the address-bound, non-transferable, fee-free
// primary name registrar.
type Reverse struct {
	*Base
}

// NewReverse constructs a Reverse registrar. Its OwnerOverride is a
// no-op — unlike R-Domain there is no expiry, so ownerOf never
// substitutes the registrar's own address (spec §9's "asymmetry").
func NewReverse(s store.Store, bus *events.Bus, log *zap.SugaredLogger, registry RegistryClient, self addr.Address, rootNode addr.Node) *Reverse {
	b := NewBase(s, bus, log, registry, token.NewStubClient(self), self, self, rootNode, 0)
	return &Reverse{Base: b}
}

// CheckName validates that candidate equals caller's own address, spec
// §4.3: only the owner of an address may register its reverse name.
func (r *Reverse) CheckName(caller addr.Address, candidate addr.Address) error {
	if caller != candidate {
		return ErrNotAddressOwner
	}
	return nil
}

// Register mints the caller's soulbound reverse name, keyed by the
// caller's own address bytes as the label (spec §4.3). There is no
// expiry, no renewal and no fee for this variant.
func (r *Reverse) Register(caller addr.Address, encodedName string, now uint64) (addr.Node, error) {
	if err := r.CheckName(caller, caller); err != nil {
		return addr.Node{}, err
	}
	label := string(caller.Bytes())
	var name [state.NameSize]byte
	copy(name[:], encodedName)

	return r.mintLeaseNode(caller, caller, label, name, state.MetadataBytes(""), now)
}

// TransferFrom is a no-op: R-Reverse NFTs are soulbound (spec §4.3).
func (r *Reverse) TransferFrom(addr.Node, addr.Address, addr.Address) error {
	return nil
}
