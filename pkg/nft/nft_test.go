package nft

import (
	"testing"

	"github.com/NautilusOSS/envoi/pkg/addr"
	"github.com/NautilusOSS/envoi/pkg/events"
	"github.com/NautilusOSS/envoi/pkg/state"
	"github.com/NautilusOSS/envoi/pkg/store"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCore(self addr.Address) *Core {
	return New(store.NewMemoryStore(), events.NewBus(), zap.NewNop().Sugar(), self)
}

func TestMintAndOwnerOf(t *testing.T) {
	c := newTestCore(addr.Address{})
	owner := addr.Address{1}
	id := addr.Node{2}

	require.NoError(t, c.Mint(id, owner, state.NameBytes("alice"), state.MetadataBytes(""), 100))

	got, err := c.OwnerOf(id)
	require.NoError(t, err)
	require.Equal(t, owner, got)

	supply, err := c.TotalSupply()
	require.NoError(t, err)
	require.Equal(t, uint64(1), supply)

	bal, err := c.BalanceOf(owner)
	require.NoError(t, err)
	require.Equal(t, uint64(1), bal)
}

func TestMintRefusesCollision(t *testing.T) {
	c := newTestCore(addr.Address{})
	owner := addr.Address{1}
	id := addr.Node{2}

	require.NoError(t, c.Mint(id, owner, state.NameBytes("a"), state.MetadataBytes(""), 1))
	err := c.Mint(id, owner, state.NameBytes("a"), state.MetadataBytes(""), 1)
	require.ErrorIs(t, err, ErrTokenExists)
}

func TestBurnThenRemint(t *testing.T) {
	c := newTestCore(addr.Address{})
	owner := addr.Address{1}
	id := addr.Node{2}

	require.NoError(t, c.Mint(id, owner, state.NameBytes("a"), state.MetadataBytes(""), 1))
	require.NoError(t, c.Burn(id))

	_, err := c.OwnerOf(id)
	require.NoError(t, err)

	require.NoError(t, c.Mint(id, owner, state.NameBytes("a"), state.MetadataBytes(""), 2))
	bal, err := c.BalanceOf(owner)
	require.NoError(t, err)
	require.Equal(t, uint64(1), bal)
}

func TestTransferFromClearsApproval(t *testing.T) {
	c := newTestCore(addr.Address{})
	owner, to, approved := addr.Address{1}, addr.Address{2}, addr.Address{3}
	id := addr.Node{9}

	require.NoError(t, c.Mint(id, owner, state.NameBytes("a"), state.MetadataBytes(""), 1))
	require.NoError(t, c.Approve(id, owner, approved))

	require.NoError(t, c.TransferFrom(id, approved, to))

	got, err := c.OwnerOf(id)
	require.NoError(t, err)
	require.Equal(t, to, got)

	gotApproved, err := c.GetApproved(id)
	require.NoError(t, err)
	require.True(t, gotApproved.IsZero())

	fromBal, err := c.BalanceOf(owner)
	require.NoError(t, err)
	require.Zero(t, fromBal)

	toBal, err := c.BalanceOf(to)
	require.NoError(t, err)
	require.Equal(t, uint64(1), toBal)
}

func TestTransferFromRequiresAuthorization(t *testing.T) {
	c := newTestCore(addr.Address{})
	owner, stranger := addr.Address{1}, addr.Address{9}
	id := addr.Node{2}
	require.NoError(t, c.Mint(id, owner, state.NameBytes("a"), state.MetadataBytes(""), 1))

	err := c.TransferFrom(id, stranger, stranger)
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestOwnerOverride(t *testing.T) {
	c := newTestCore(addr.Address{9})
	owner := addr.Address{1}
	id := addr.Node{2}
	require.NoError(t, c.Mint(id, owner, state.NameBytes("a"), state.MetadataBytes(""), 1))

	self := addr.Address{9}
	c.SetOverride(func(tokenID addr.Node, recorded addr.Address) (addr.Address, bool) {
		return self, true
	})

	got, err := c.OwnerOf(id)
	require.NoError(t, err)
	require.Equal(t, self, got)

	td, ok, err := c.TokenData(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, owner, td.Owner)
}

func TestTokenByIndexEnumeration(t *testing.T) {
	c := newTestCore(addr.Address{})
	owner := addr.Address{1}
	id1, id2 := addr.Node{1}, addr.Node{2}
	require.NoError(t, c.Mint(id1, owner, state.NameBytes("a"), state.MetadataBytes(""), 1))
	require.NoError(t, c.Mint(id2, owner, state.NameBytes("b"), state.MetadataBytes(""), 2))

	got1, err := c.TokenByIndex(1)
	require.NoError(t, err)
	require.Equal(t, id1, got1)

	got2, err := c.TokenByIndex(2)
	require.NoError(t, err)
	require.Equal(t, id2, got2)
}

func TestSupportsInterface(t *testing.T) {
	require.True(t, SupportsInterface(IfaceSupportsInterface))
	require.True(t, SupportsInterface(IfaceCore))
	require.True(t, SupportsInterface(IfaceMetadata))
	require.True(t, SupportsInterface(IfaceTransferMgmt))
	require.True(t, SupportsInterface(IfaceEnumeration))
	require.False(t, SupportsInterface(IfaceMask))
}
