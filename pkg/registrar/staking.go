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

// ErrNotStakingOwner is spec §4.3's R-Staking guard: the foreign
// application's "owner" global state key must equal caller.
var ErrNotStakingOwner = errors.New("registrar: check_name requires caller to be application owner")

// Staking is R-Staking: like R-Collection, but authorization reads the
// foreign application's "owner" global state key instead of its creator
// (spec §4.3).
type Staking struct {
	*Base
	Apps AppOracle
}

// NewStaking constructs a Staking registrar over the same AppOracle
// shape R-Collection uses.
func NewStaking(s store.Store, bus *events.Bus, log *zap.SugaredLogger, registry RegistryClient, self addr.Address, rootNode addr.Node, apps AppOracle) *Staking {
	b := NewBase(s, bus, log, registry, token.NewStubClient(self), self, self, rootNode, 0)
	return &Staking{Base: b, Apps: apps}
}

// CheckName validates that caller equals appID's "owner" global state
// value, spec §4.3.
func (s *Staking) CheckName(caller addr.Address, appID uint64) error {
	owner, err := s.Apps.Owner(appID)
	if err != nil {
		return err
	}
	if owner != caller {
		return ErrNotStakingOwner
	}
	return nil
}

// Register mints the application's account-address name, identically to
// R-Collection's Register but gated on the owner check above.
func (s *Staking) Register(caller addr.Address, candidate addr.Address, now uint64) (addr.Node, error) {
	appID := appIDFromBytes32(candidate)
	if err := s.CheckName(caller, appID); err != nil {
		return addr.Node{}, err
	}
	account, err := s.Apps.Account(appID)
	if err != nil {
		return addr.Node{}, err
	}
	label := string(account.Bytes())
	var name [state.NameSize]byte
	copy(name[:], account.Bytes())

	return s.mintLeaseNode(caller, caller, label, name, state.MetadataBytes(""), now)
}

// TransferFrom is a no-op: R-Staking NFTs are soulbound like R-Collection.
func (s *Staking) TransferFrom(addr.Node, addr.Address, addr.Address) error {
	return nil
}
