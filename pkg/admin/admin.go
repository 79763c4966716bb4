// Package admin collapses the Ownable, Stakeable, Upgradeable and
// Deployable mixins that the original Algorand-Python contract implements
// as separate multiply-inherited classes into a single Record embedded by
// the registrar Base (and so by each Registrar variant) and by the RSVP
// engine; the Registry does not embed one. There is no interface-method-set benefit to separating them
// in Go the way ARC4Contract subclassing does in the original, so they are
// fields on one struct plus a small Administered interface other packages
// program against.
package admin

import (
	"errors"

	"github.com/NautilusOSS/envoi/pkg/addr"
)

// Sentinel revert reasons shared across every component that embeds a
// Record, mirroring the original's plain assert strings.
var (
	ErrNotOwner        = errors.New("admin: must be owner")
	ErrNotOwnerOrDeleg = errors.New("admin: must be owner or delegate")
	ErrNotUpgrader     = errors.New("admin: must be upgrader")
	ErrNotUpdatable    = errors.New("admin: not approved for update")
	ErrNotCreator      = errors.New("admin: must be creator")
)

// Record is the collapsed Ownable + Stakeable + Upgradeable + Deployable
// state every component carries. Field names follow the original's
// snake_case state exactly, translated to Go's exported-field convention.
type Record struct {
	// Ownable
	Owner addr.Address

	// Stakeable
	Delegate  addr.Address
	Stakeable bool

	// Upgradeable
	Upgrader           addr.Address
	Updatable          bool
	ContractVersion    uint64
	DeploymentVersion  uint64

	// Deployable
	Creator  addr.Address
	ParentID uint64
}

// NewRecord initializes a Record the way the original's __init__ chain
// does for a freshly deployed contract: owner and upgrader default to the
// deploying creator, stakeable and updatable both start true.
func NewRecord(creator addr.Address) Record {
	return Record{
		Owner:     creator,
		Creator:   creator,
		Upgrader:  creator,
		Stakeable: true,
		Updatable: true,
	}
}

// Administered is implemented by every component embedding a Record, so
// shared authorization checks (CLI middleware, RPC write guards) can be
// written once against the interface instead of per component.
type Administered interface {
	AdminRecord() *Record
}

// RequireOwner asserts caller == Owner, the guard the original's
// `transfer`/`approve_update` methods use.
func (r *Record) RequireOwner(caller addr.Address) error {
	if caller != r.Owner {
		return ErrNotOwner
	}
	return nil
}

// RequireOwnerOrCreator asserts caller is the owner or the original
// deploying creator, the guard `set_delegate` uses.
func (r *Record) RequireOwnerOrCreator(caller addr.Address) error {
	if caller != r.Owner && caller != r.Creator {
		return ErrNotOwner
	}
	return nil
}

// RequireOwnerOrDelegate asserts caller is the owner or the stakeable
// delegate, the guard `participate` uses.
func (r *Record) RequireOwnerOrDelegate(caller addr.Address) error {
	if caller != r.Owner && caller != r.Delegate {
		return ErrNotOwnerOrDeleg
	}
	return nil
}

// RequireUpgrader asserts caller == Upgrader, the guard `set_version` and
// `on_update` use.
func (r *Record) RequireUpgrader(caller addr.Address) error {
	if caller != r.Upgrader {
		return ErrNotUpgrader
	}
	return nil
}

// RequireCreator asserts caller is the original deploying creator, the
// guard `grant_upgrader` uses.
func (r *Record) RequireCreator(caller addr.Address) error {
	if caller != r.Creator {
		return ErrNotCreator
	}
	return nil
}

// Transfer reassigns ownership, mirroring Ownable.transfer.
func (r *Record) Transfer(caller, newOwner addr.Address) error {
	if err := r.RequireOwner(caller); err != nil {
		return err
	}
	r.Owner = newOwner
	return nil
}

// SetDelegate reassigns the stakeable delegate, mirroring
// Stakeable.set_delegate.
func (r *Record) SetDelegate(caller, delegate addr.Address) error {
	if err := r.RequireOwnerOrCreator(caller); err != nil {
		return err
	}
	r.Delegate = delegate
	return nil
}

// SetVersion updates the contract/deployment version pair, mirroring
// Upgradeable.set_version.
func (r *Record) SetVersion(caller addr.Address, contractVersion, deploymentVersion uint64) error {
	if err := r.RequireUpgrader(caller); err != nil {
		return err
	}
	r.ContractVersion = contractVersion
	r.DeploymentVersion = deploymentVersion
	return nil
}

// ApproveUpdate flips the Updatable flag, mirroring
// Upgradeable.approve_update.
func (r *Record) ApproveUpdate(caller addr.Address, approved bool) error {
	if err := r.RequireOwner(caller); err != nil {
		return err
	}
	r.Updatable = approved
	return nil
}

// GrantUpgrader reassigns the upgrader, mirroring
// Upgradeable.grant_upgrader.
func (r *Record) GrantUpgrader(caller, upgrader addr.Address) error {
	if err := r.RequireCreator(caller); err != nil {
		return err
	}
	r.Upgrader = upgrader
	return nil
}

// RequireUpdatable asserts the component has been approved for update,
// mirroring the assert in Upgradeable.on_update.
func (r *Record) RequireUpdatable(caller addr.Address) error {
	if err := r.RequireUpgrader(caller); err != nil {
		return err
	}
	if !r.Updatable {
		return ErrNotUpdatable
	}
	return nil
}
