package admin

import (
	"testing"

	"github.com/NautilusOSS/envoi/pkg/addr"
	"github.com/stretchr/testify/require"
)

func addrN(b byte) addr.Address {
	var a addr.Address
	a[0] = b
	return a
}

func TestNewRecordDefaults(t *testing.T) {
	creator := addrN(1)
	r := NewRecord(creator)
	require.Equal(t, creator, r.Owner)
	require.Equal(t, creator, r.Upgrader)
	require.True(t, r.Stakeable)
	require.True(t, r.Updatable)
}

func TestTransferRequiresOwner(t *testing.T) {
	owner, other, newOwner := addrN(1), addrN(2), addrN(3)
	r := NewRecord(owner)

	require.ErrorIs(t, r.Transfer(other, newOwner), ErrNotOwner)
	require.NoError(t, r.Transfer(owner, newOwner))
	require.Equal(t, newOwner, r.Owner)
}

func TestSetDelegateRequiresOwnerOrCreator(t *testing.T) {
	creator, stranger, delegate := addrN(1), addrN(2), addrN(3)
	r := NewRecord(creator)

	require.ErrorIs(t, r.SetDelegate(stranger, delegate), ErrNotOwner)
	require.NoError(t, r.SetDelegate(creator, delegate))
	require.Equal(t, delegate, r.Delegate)
}

func TestRequireOwnerOrDelegate(t *testing.T) {
	owner, delegate, stranger := addrN(1), addrN(2), addrN(3)
	r := NewRecord(owner)
	r.Delegate = delegate

	require.NoError(t, r.RequireOwnerOrDelegate(owner))
	require.NoError(t, r.RequireOwnerOrDelegate(delegate))
	require.ErrorIs(t, r.RequireOwnerOrDelegate(stranger), ErrNotOwnerOrDeleg)
}

func TestGrantUpgraderRequiresCreator(t *testing.T) {
	creator, newOwner, newUpgrader := addrN(1), addrN(2), addrN(3)
	r := NewRecord(creator)
	require.NoError(t, r.Transfer(creator, newOwner))

	// Ownership moved but creator stays fixed, so newOwner cannot grant.
	require.ErrorIs(t, r.GrantUpgrader(newOwner, newUpgrader), ErrNotCreator)
	require.NoError(t, r.GrantUpgrader(creator, newUpgrader))
	require.Equal(t, newUpgrader, r.Upgrader)
}

func TestRequireUpdatable(t *testing.T) {
	creator := addrN(1)
	r := NewRecord(creator)
	require.NoError(t, r.RequireUpdatable(creator))

	require.NoError(t, r.ApproveUpdate(creator, false))
	require.ErrorIs(t, r.RequireUpdatable(creator), ErrNotUpdatable)
}

func TestSetVersionRequiresUpgrader(t *testing.T) {
	creator, stranger := addrN(1), addrN(2)
	r := NewRecord(creator)

	require.ErrorIs(t, r.SetVersion(stranger, 1, 2), ErrNotUpgrader)
	require.NoError(t, r.SetVersion(creator, 1, 2))
	require.Equal(t, uint64(1), r.ContractVersion)
	require.Equal(t, uint64(2), r.DeploymentVersion)
}
