package registrar

import "github.com/NautilusOSS/envoi/pkg/addr"

// AppOracle resolves facts about a foreign application that R-Collection
// and R-Staking need in order to authorize check_name, standing in for
// the runtime's `Application(app_id)` global-state lookups (spec §4.3)
// since this service sits outside the chain runtime itself.
type AppOracle interface {
	// Creator returns the application's creator account.
	Creator(appID uint64) (addr.Address, error)
	// Owner returns the value of the application's "owner" global state
	// key, used by R-Staking.
	Owner(appID uint64) (addr.Address, error)
	// Account returns the application's own account address, the value
	// R-Collection registers as the name (spec §4.3: "Registers the
	// application's account address (not the app id bytes) as the
	// name").
	Account(appID uint64) (addr.Address, error)
}
