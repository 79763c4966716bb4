package token

import (
	"testing"

	"github.com/NautilusOSS/envoi/pkg/addr"
	"github.com/stretchr/testify/require"
)

func TestTransferFromRequiresAllowance(t *testing.T) {
	registrar := addr.Address{1}
	user := addr.Address{2}
	c := NewStubClient(registrar)
	c.SetBalance(user, 1000)

	_, err := c.TransferFrom(user, registrar, 100)
	require.ErrorIs(t, err, ErrInsufficientApproval)

	c.Approve(user, registrar, 100)
	ok, err := c.TransferFrom(user, registrar, 100)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(900), c.BalanceOf(user))
	require.Equal(t, uint64(100), c.BalanceOf(registrar))
	require.Equal(t, uint64(0), c.Allowance(user, registrar))
}

func TestTransferFromRequiresBalance(t *testing.T) {
	registrar := addr.Address{1}
	user := addr.Address{2}
	c := NewStubClient(registrar)
	c.Approve(user, registrar, 1000)

	_, err := c.TransferFrom(user, registrar, 100)
	require.ErrorIs(t, err, ErrInsufficientBalance)
}
