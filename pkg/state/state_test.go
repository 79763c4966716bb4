package state

import (
	"testing"

	"github.com/NautilusOSS/envoi/pkg/addr"
	"github.com/NautilusOSS/envoi/pkg/codec"
	"github.com/stretchr/testify/require"
)

func TestRecordRoundTrip(t *testing.T) {
	r := &Record{
		Owner:    addr.Address{1, 2, 3},
		Resolver: 42,
		TTL:      3600,
		Approved: addr.Address{9},
	}
	data, err := codec.Encode(r)
	require.NoError(t, err)

	var got Record
	require.NoError(t, codec.Decode(data, &got))
	require.Equal(t, *r, got)
	require.True(t, got.Exists())
}

func TestRecordNotExists(t *testing.T) {
	var r Record
	require.False(t, r.Exists())
}

func TestTokenDataRoundTrip(t *testing.T) {
	tok := &TokenData{
		Owner:            addr.Address{1},
		Approved:         addr.Address{2},
		Index:            7,
		TokenID:          addr.Node{3},
		Metadata:         MetadataBytes("ipfs://whatever"),
		Node:             addr.Node{3},
		IsValid:          true,
		RegistrationDate: 123456,
		Name:             NameBytes("alice"),
	}
	data, err := codec.Encode(tok)
	require.NoError(t, err)

	var got TokenData
	require.NoError(t, codec.Decode(data, &got))
	require.Equal(t, *tok, got)
}

func TestHolderDataRoundTrip(t *testing.T) {
	h := &HolderData{Holder: addr.Address{5}, Balance: 3}
	data, err := codec.Encode(h)
	require.NoError(t, err)

	var got HolderData
	require.NoError(t, codec.Decode(data, &got))
	require.Equal(t, *h, got)
}

func TestReservationRoundTrip(t *testing.T) {
	r := &Reservation{
		Owner:  addr.Address{1},
		Length: 5,
		Price:  100,
		Name:   NameBytes("bob"),
	}
	data, err := codec.Encode(r)
	require.NoError(t, err)

	var got Reservation
	require.NoError(t, codec.Decode(data, &got))
	require.Equal(t, *r, got)
	require.False(t, got.IsEmpty())
}

func TestReservationIsEmpty(t *testing.T) {
	var r Reservation
	require.True(t, r.IsEmpty())
}
