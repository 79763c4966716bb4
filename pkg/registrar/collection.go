package registrar

import (
	"encoding/binary"
	"errors"

	"github.com/NautilusOSS/envoi/pkg/addr"
	"github.com/NautilusOSS/envoi/pkg/events"
	"github.com/NautilusOSS/envoi/pkg/state"
	"github.com/NautilusOSS/envoi/pkg/store"
	"github.com/NautilusOSS/envoi/pkg/token"
	"go.uber.org/zap"
)

// ErrNotCreator is spec §4.3's R-Collection guard: "Application(app_id)
// .creator == caller".
var ErrNotCreator = errors.New("registrar: check_name requires caller to be application creator")

// appIDFromBytes32 decodes spec §4.3's "last 8 bytes are big-endian
// uint64 app_id" out of a 32-byte check_name candidate.
func appIDFromBytes32(candidate addr.Address) uint64 {
	return binary.BigEndian.Uint64(candidate[24:])
}

// Collection is R-Collection: ownership of an application id, registered
// under the application's own account address (spec §4.3). Non-transferable,
// no expiry, no fee beyond the storage base.
type Collection struct {
	*Base
	Apps AppOracle
}

// NewCollection constructs a Collection registrar. apps resolves the
// foreign application facts (creator, account) check_name and Register
// need, standing in for the runtime's Application(app_id) global-state
// lookups since this service sits outside the chain runtime itself.
func NewCollection(s store.Store, bus *events.Bus, log *zap.SugaredLogger, registry RegistryClient, self addr.Address, rootNode addr.Node, apps AppOracle) *Collection {
	b := NewBase(s, bus, log, registry, token.NewStubClient(self), self, self, rootNode, 0)
	return &Collection{Base: b, Apps: apps}
}

// CheckName validates that caller is appID's creator, spec §4.3.
func (c *Collection) CheckName(caller addr.Address, appID uint64) error {
	creator, err := c.Apps.Creator(appID)
	if err != nil {
		return err
	}
	if creator != caller {
		return ErrNotCreator
	}
	return nil
}

// Register mints the application's account-address name, spec §4.3:
// "Registers the application's account address (not the app id bytes) as
// the name". The NFT is soulbound — no expiry, no transfer.
func (c *Collection) Register(caller addr.Address, candidate addr.Address, now uint64) (addr.Node, error) {
	appID := appIDFromBytes32(candidate)
	if err := c.CheckName(caller, appID); err != nil {
		return addr.Node{}, err
	}
	account, err := c.Apps.Account(appID)
	if err != nil {
		return addr.Node{}, err
	}
	label := string(account.Bytes())
	var name [state.NameSize]byte
	copy(name[:], account.Bytes())

	return c.mintLeaseNode(caller, caller, label, name, state.MetadataBytes(""), now)
}

// TransferFrom is a no-op: R-Collection NFTs are soulbound (spec §4.3).
func (c *Collection) TransferFrom(addr.Node, addr.Address, addr.Address) error {
	return nil
}
