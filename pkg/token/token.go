// Package token models the external fungible-token payment collaborator
// described in spec §4.7. Only arc200_transferFrom is consumed by the
// core; PaymentCollaborator is the interface the Registrar family
// depends on (the RSVP engine takes no payment collaborator), standing in for the Algorand-specific
// close_offline_on_delete/require_payment helpers the original contract
// imports from its utils module (those rely on inner-transaction and
// account-closing mechanics this service does not have — see
// DESIGN.md).
package token

import (
	"errors"

	"github.com/NautilusOSS/envoi/pkg/addr"
)

// ErrInsufficientApproval mirrors spec §7's "insufficient approval".
var ErrInsufficientApproval = errors.New("token: insufficient approval")

// ErrInsufficientBalance mirrors spec §7's "insufficient balance".
var ErrInsufficientBalance = errors.New("token: insufficient balance")

// PaymentCollaborator is the payment side of the registrar: a pre-funded
// allowance from the end user to the registrar contract is spent via
// TransferFrom, exactly the arc200_transferFrom call spec §4.7 describes.
type PaymentCollaborator interface {
	TransferFrom(sender, recipient addr.Address, amount uint64) (bool, error)
}

// StubClient is an in-memory PaymentCollaborator standing in for a real
// ARC-200 token contract client in tests and in cli/server: callers
// seed balances/allowances directly instead of going through approve.
// spender is fixed at construction to the registrar contract's own
// address, since that is the only caller of TransferFrom in this module
// (spec §4.7).
type StubClient struct {
	spender    addr.Address
	balances   map[addr.Address]uint64
	allowances map[[2 * addr.Size]byte]uint64
}

// NewStubClient creates an empty StubClient whose implicit spender is
// the given registrar address.
func NewStubClient(spender addr.Address) *StubClient {
	return &StubClient{
		spender:    spender,
		balances:   make(map[addr.Address]uint64),
		allowances: make(map[[2 * addr.Size]byte]uint64),
	}
}

func allowanceKey(owner, spender addr.Address) [2 * addr.Size]byte {
	var k [2 * addr.Size]byte
	copy(k[:addr.Size], owner.Bytes())
	copy(k[addr.Size:], spender.Bytes())
	return k
}

// SetBalance seeds an account's balance for test setup.
func (c *StubClient) SetBalance(account addr.Address, amount uint64) {
	c.balances[account] = amount
}

// Approve grants spender an allowance over owner's balance, the stand-in
// for the end user's prior `approve` call described in spec §4.7.
func (c *StubClient) Approve(owner, spender addr.Address, amount uint64) {
	c.allowances[allowanceKey(owner, spender)] = amount
}

// BalanceOf returns account's current balance.
func (c *StubClient) BalanceOf(account addr.Address) uint64 {
	return c.balances[account]
}

// Allowance returns the remaining spender allowance over owner's
// balance.
func (c *StubClient) Allowance(owner, spender addr.Address) uint64 {
	return c.allowances[allowanceKey(owner, spender)]
}

// TransferFrom spends amount of sender's balance against the allowance
// sender granted the fixed spender, crediting recipient.
func (c *StubClient) TransferFrom(sender, recipient addr.Address, amount uint64) (bool, error) {
	key := allowanceKey(sender, c.spender)
	if c.allowances[key] < amount {
		return false, ErrInsufficientApproval
	}
	if c.balances[sender] < amount {
		return false, ErrInsufficientBalance
	}
	c.allowances[key] -= amount
	c.balances[sender] -= amount
	c.balances[recipient] += amount
	return true, nil
}
