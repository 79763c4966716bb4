package registrar

import (
	"time"

	"github.com/NautilusOSS/envoi/pkg/addr"
	"github.com/NautilusOSS/envoi/pkg/events"
	"github.com/NautilusOSS/envoi/pkg/namehash"
	"github.com/NautilusOSS/envoi/pkg/state"
	"github.com/NautilusOSS/envoi/pkg/store"
	"github.com/NautilusOSS/envoi/pkg/token"
	"go.uber.org/zap"
)

// charsetAllowed is the R-Domain label alphabet from spec §4.3:
// "[0-9a-z-]".
func charsetAllowed(label string) bool {
	if len(label) == 0 || len(label) > 32 {
		return false
	}
	for _, r := range label {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'z':
		case r == '-':
		default:
			return false
		}
	}
	return true
}

// Domain is R-Domain: the leasable, length-priced registrar.
type Domain struct {
	*Base
	Unit uint64
}

// NewDomain constructs a Domain registrar with the given per-unit price,
// wiring its OwnerOverride to the expired-lease predicate spec §4.3
// describes: "if expiration(t) < now, return the registrar application's
// own address; otherwise the NFT record owner" — asymmetric versus the
// other variants, spec §9.
func NewDomain(s store.Store, bus *events.Bus, log *zap.SugaredLogger, registry RegistryClient, payment token.PaymentCollaborator, self, treasury addr.Address, rootNode addr.Node, gracePeriod, unit uint64) *Domain {
	b := NewBase(s, bus, log, registry, payment, self, treasury, rootNode, gracePeriod)
	d := &Domain{Base: b, Unit: unit}
	b.NFT.SetOverride(d.ownerOverride)
	return d
}

func (d *Domain) ownerOverride(tokenID addr.Node, recorded addr.Address) (addr.Address, bool) {
	exp, err := d.Expiry(tokenID)
	if err != nil || exp == 0 {
		return addr.Address{}, false
	}
	if exp < nowProvider() {
		return d.Self, true
	}
	return addr.Address{}, false
}

// nowProvider is overridable by tests via SetNowForTesting; production
// code defaults to the real wall clock.
var nowProvider = func() uint64 { return uint64(time.Now().Unix()) }

// CheckName validates a domain label against spec §4.3's charset rule.
func (d *Domain) CheckName(label string) error {
	if !charsetAllowed(label) {
		return ErrNameInvalid
	}
	return nil
}

// Price computes price(len, duration) for this registrar's unit.
func (d *Domain) Price(label string, duration uint64) uint64 {
	return Price(d.Unit, len(label), duration)
}

// Register implements spec §4.3's register(name, owner, duration) for
// R-Domain.
func (d *Domain) Register(caller, owner addr.Address, label string, duration uint64, now uint64) (addr.Node, error) {
	if err := d.CheckName(label); err != nil {
		return addr.Node{}, err
	}
	if err := validateDuration(duration); err != nil {
		return addr.Node{}, err
	}

	price := d.Price(label, duration)
	if err := d.pay(owner, price); err != nil {
		return addr.Node{}, err
	}

	node, err := d.mintLeaseNode(caller, owner, label, state.NameBytes(label), state.MetadataBytes(""), now)
	if err != nil {
		return addr.Node{}, err
	}

	exp, err := d.Expiry(node)
	if err != nil {
		return addr.Node{}, err
	}
	base := exp
	if base < now {
		base = now
	}
	if err := d.setExpiry(node, base+duration); err != nil {
		return addr.Node{}, err
	}
	return node, nil
}

// Renew implements spec §4.3's renew(name, duration): any caller, pays
// the per-year fee, extends expiry by duration while still within the
// grace window (expiry + G > now strictly).
func (d *Domain) Renew(caller addr.Address, label string, duration uint64, now uint64) error {
	if err := validateDuration(duration); err != nil {
		return err
	}
	node := namehash.Namehash(d.RootNode, label)
	exp, err := d.Expiry(node)
	if err != nil {
		return err
	}
	if exp == 0 {
		return ErrNameNotRegistered
	}
	if exp+d.GracePeriod <= now {
		return ErrNameNotRegistered
	}

	price := Price(d.Unit, len(label), duration)
	if err := d.pay(caller, price); err != nil {
		return err
	}

	return d.setExpiry(node, exp+duration)
}

// ArcOwnerOf returns the logical owner for token, applying the
// expired-lease substitute.
func (d *Domain) ArcOwnerOf(id addr.Node) (addr.Address, error) {
	return d.NFT.OwnerOf(id)
}

// SetNowForTesting overrides the wall clock ownerOverride reads, so
// lease-expiry tests don't have to wait on the real clock.
func SetNowForTesting(fn func() uint64) {
	nowProvider = fn
}
