package rsvp

import (
	"testing"

	"github.com/NautilusOSS/envoi/pkg/addr"
	"github.com/NautilusOSS/envoi/pkg/events"
	"github.com/NautilusOSS/envoi/pkg/store"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return New(store.NewMemoryStore(), events.NewBus(), zap.NewNop().Sugar(), addr.Address{0xee})
}

func TestReserveMonotonicAuction(t *testing.T) {
	e := newTestEngine(t)
	node := addr.Node{1}
	x := addr.Address{1}
	y := addr.Address{2}

	require.NoError(t, e.Reserve(x, node, "alice", 5, 100))
	res, err := e.Reservation(node)
	require.NoError(t, err)
	require.Equal(t, x, res.Owner)
	require.Equal(t, uint64(100), res.Price)

	require.NoError(t, e.Reserve(y, node, "alice", 5, 200))
	res, err = e.Reservation(node)
	require.NoError(t, err)
	require.Equal(t, y, res.Owner)
	require.Equal(t, uint64(200), res.Price)

	xNode, err := e.AccountNode(x)
	require.NoError(t, err)
	require.Equal(t, addr.Root, xNode)

	yNode, err := e.AccountNode(y)
	require.NoError(t, err)
	require.Equal(t, node, yNode)
}

func TestReserveRejectsTieOrLowerPayment(t *testing.T) {
	e := newTestEngine(t)
	node := addr.Node{1}
	x := addr.Address{1}
	y := addr.Address{2}

	require.NoError(t, e.Reserve(x, node, "alice", 5, 100))
	require.ErrorIs(t, e.Reserve(y, node, "alice", 5, 100), ErrPaymentTooLow)
	require.ErrorIs(t, e.Reserve(y, node, "alice", 5, 50), ErrPaymentTooLow)
}

func TestReserveRejectsSecondReservationByBoundAccount(t *testing.T) {
	e := newTestEngine(t)
	node1 := addr.Node{1}
	node2 := addr.Node{2}
	y := addr.Address{2}

	require.NoError(t, e.Reserve(y, node1, "alice", 5, 100))
	err := e.Reserve(y, node2, "bob", 3, 500)
	require.ErrorIs(t, err, ErrAlreadyReserved)
}

func TestReleaseFreesSlotWithoutRefund(t *testing.T) {
	e := newTestEngine(t)
	node := addr.Node{1}
	x := addr.Address{1}

	require.NoError(t, e.Reserve(x, node, "alice", 5, 100))
	require.NoError(t, e.Release(x, node))

	res, err := e.Reservation(node)
	require.NoError(t, err)
	require.True(t, res.IsEmpty())

	xNode, err := e.AccountNode(x)
	require.NoError(t, err)
	require.Equal(t, addr.Root, xNode)

	// Now anyone can claim the freed node again from price zero.
	z := addr.Address{3}
	require.NoError(t, e.Reserve(z, node, "alice", 5, 1))
}

func TestReleaseRequiresBinding(t *testing.T) {
	e := newTestEngine(t)
	node := addr.Node{1}
	x := addr.Address{1}
	stranger := addr.Address{9}

	require.NoError(t, e.Reserve(x, node, "alice", 5, 100))
	require.ErrorIs(t, e.Release(stranger, node), ErrNotBound)
}

func TestAdminReserveBypassesPaymentButNotOwner(t *testing.T) {
	e := newTestEngine(t)
	node := addr.Node{1}
	owner := addr.Address{0xee}
	stranger := addr.Address{9}
	beneficiary := addr.Address{5}

	err := e.AdminReserve(stranger, beneficiary, node, "alice", 5, 1000)
	require.Error(t, err)

	require.NoError(t, e.AdminReserve(owner, beneficiary, node, "alice", 5, 1000))
	res, err := e.Reservation(node)
	require.NoError(t, err)
	require.Equal(t, beneficiary, res.Owner)
	require.Equal(t, uint64(1000), res.Price)
}

func TestNameTooLongRejected(t *testing.T) {
	e := newTestEngine(t)
	node := addr.Node{1}
	x := addr.Address{1}

	long := make([]byte, 257)
	for i := range long {
		long[i] = 'a'
	}
	require.ErrorIs(t, e.Reserve(x, node, string(long), 5, 100), ErrNameTooLong)
}
