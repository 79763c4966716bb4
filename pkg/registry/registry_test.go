package registry

import (
	"crypto/sha256"
	"testing"

	"github.com/NautilusOSS/envoi/pkg/addr"
	"github.com/NautilusOSS/envoi/pkg/events"
	"github.com/NautilusOSS/envoi/pkg/namehash"
	"github.com/NautilusOSS/envoi/pkg/store"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRegistry(t *testing.T, rootOwner addr.Address) *Registry {
	t.Helper()
	r, err := New(store.NewMemoryStore(), events.NewBus(), zap.NewNop().Sugar(), rootOwner)
	require.NoError(t, err)
	return r
}

func TestRootSeededAtDeployment(t *testing.T) {
	rootOwner := addr.Address{1}
	r := newTestRegistry(t, rootOwner)

	owner, err := r.OwnerOf(addr.Root)
	require.NoError(t, err)
	require.Equal(t, rootOwner, owner)

	exists, err := r.RecordExists(addr.Root)
	require.NoError(t, err)
	require.True(t, exists)
}

func TestSetSubnodeOwnerRoundTrip(t *testing.T) {
	rootOwner := addr.Address{1}
	newOwner := addr.Address{2}
	r := newTestRegistry(t, rootOwner)

	label := sha256.Sum256([]byte("alice"))
	subnode, err := r.SetSubnodeOwner(addr.Root, rootOwner, label, newOwner)
	require.NoError(t, err)
	require.Equal(t, namehash.Namehash(addr.Root, "alice"), subnode)

	owner, err := r.OwnerOf(subnode)
	require.NoError(t, err)
	require.Equal(t, newOwner, owner)
}

func TestSetSubnodeOwnerRequiresAuthorization(t *testing.T) {
	rootOwner := addr.Address{1}
	stranger := addr.Address{9}
	r := newTestRegistry(t, rootOwner)

	label := sha256.Sum256([]byte("bob"))
	_, err := r.SetSubnodeOwner(addr.Root, stranger, label, stranger)
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestSetResolverNoOpWhenUnchanged(t *testing.T) {
	rootOwner := addr.Address{1}
	r := newTestRegistry(t, rootOwner)

	require.NoError(t, r.SetResolver(addr.Root, rootOwner, 7))
	res, err := r.Resolver(addr.Root)
	require.NoError(t, err)
	require.Equal(t, uint64(7), res)

	// Second identical write should be a no-op (no error either way).
	require.NoError(t, r.SetResolver(addr.Root, rootOwner, 7))
}

func TestApprovalForAllGrantsAuthorized(t *testing.T) {
	rootOwner := addr.Address{1}
	operator := addr.Address{2}
	r := newTestRegistry(t, rootOwner)

	ok, err := r.IsApprovedForAll(rootOwner, operator)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, r.SetApprovalForAll(rootOwner, operator, true))
	ok, err = r.IsApprovedForAll(rootOwner, operator)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, r.SetOwner(addr.Root, operator, addr.Address{3}))
}

func TestOnlyOwnerRejectsApprovedButNotOwner(t *testing.T) {
	rootOwner := addr.Address{1}
	approved := addr.Address{2}
	r := newTestRegistry(t, rootOwner)

	require.NoError(t, r.Approve(addr.Root, rootOwner, approved))
	err := r.SetRecord(addr.Root, approved, approved, 1, 1)
	require.ErrorIs(t, err, ErrOnlyOwner)
}

func TestRequireParentExists(t *testing.T) {
	rootOwner := addr.Address{1}
	r := newTestRegistry(t, rootOwner)

	require.NoError(t, r.RequireParentExists(addr.Root))

	missing := addr.Node{0xff}
	require.ErrorIs(t, r.RequireParentExists(missing), ErrParentMustExist)
}
