package resolver

import (
	"testing"

	"github.com/NautilusOSS/envoi/pkg/addr"
	"github.com/NautilusOSS/envoi/pkg/events"
	"github.com/NautilusOSS/envoi/pkg/state"
	"github.com/NautilusOSS/envoi/pkg/store"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRegistry struct {
	owner addr.Address
}

func (f *fakeRegistry) OwnerOf(addr.Node) (addr.Address, error) {
	return f.owner, nil
}

func newTestResolver(owner addr.Address) *Resolver {
	return New(store.NewMemoryStore(), events.NewBus(), zap.NewNop().Sugar(), &fakeRegistry{owner: owner})
}

func TestSetGetAddr(t *testing.T) {
	owner := addr.Address{1}
	r := newTestResolver(owner)
	node := addr.Node{2}
	value := addr.Address{3}

	require.NoError(t, r.SetAddr(node, owner, value))
	got, err := r.GetAddr(node)
	require.NoError(t, err)
	require.Equal(t, value, got)
}

func TestSetAddrRequiresRegistryOwner(t *testing.T) {
	owner := addr.Address{1}
	stranger := addr.Address{9}
	r := newTestResolver(owner)

	err := r.SetAddr(addr.Node{2}, stranger, addr.Address{3})
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestSetGetMultiCoinAddress(t *testing.T) {
	owner := addr.Address{1}
	r := newTestResolver(owner)
	node := addr.Node{2}

	require.NoError(t, r.SetAddress(node, owner, 60, addr.Address{7}))
	got, err := r.GetAddress(node, 60)
	require.NoError(t, err)
	require.Equal(t, addr.Address{7}, got)

	other, err := r.GetAddress(node, 0)
	require.NoError(t, err)
	require.True(t, other.IsZero())
}

func TestSetGetText(t *testing.T) {
	owner := addr.Address{1}
	r := newTestResolver(owner)
	node := addr.Node{2}
	var key [state.TextKeySize]byte
	copy(key[:], "url")

	require.NoError(t, r.SetText(node, owner, key, state.MetadataBytes("https://example.com")))
	got, err := r.GetText(node, key)
	require.NoError(t, err)
	require.Equal(t, state.MetadataBytes("https://example.com"), got)
}

func TestClearRecordsInvalidatesReads(t *testing.T) {
	owner := addr.Address{1}
	r := newTestResolver(owner)
	node := addr.Node{2}

	require.NoError(t, r.SetAddr(node, owner, addr.Address{5}))
	require.NoError(t, r.SetName(node, owner, state.NameBytes("alice")))

	require.NoError(t, r.ClearRecords(node, owner))

	got, err := r.GetAddr(node)
	require.NoError(t, err)
	require.True(t, got.IsZero())

	name, err := r.GetName(node)
	require.NoError(t, err)
	require.Equal(t, [state.NameSize]byte{}, name)

	ver, err := r.RecordVersion(node)
	require.NoError(t, err)
	require.Equal(t, uint64(1), ver)
}

func TestSetNameAfterClearUsesNewVersion(t *testing.T) {
	owner := addr.Address{1}
	r := newTestResolver(owner)
	node := addr.Node{2}

	require.NoError(t, r.SetName(node, owner, state.NameBytes("old")))
	require.NoError(t, r.ClearRecords(node, owner))
	require.NoError(t, r.SetName(node, owner, state.NameBytes("new")))

	got, err := r.GetName(node)
	require.NoError(t, err)
	require.Equal(t, state.NameBytes("new"), got)
}
