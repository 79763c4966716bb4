package events

import (
	"testing"
	"time"

	"github.com/NautilusOSS/envoi/pkg/addr"
	"github.com/stretchr/testify/require"
)

func TestBusSubscribeEmit(t *testing.T) {
	b := NewBus()
	_, ch := b.Subscribe(4)

	b.Emit(Event{Kind: KindTransfer, Payload: TransferPayload{Node: addr.Node{1}, Owner: addr.Address{2}}})

	select {
	case e := <-ch:
		require.Equal(t, KindTransfer, e.Kind)
		p, ok := e.Payload.(TransferPayload)
		require.True(t, ok)
		require.Equal(t, addr.Node{1}, p.Node)
	case <-time.After(time.Second):
		t.Fatal("expected event was not delivered")
	}
}

func TestBusUnsubscribe(t *testing.T) {
	b := NewBus()
	id, ch := b.Subscribe(1)
	b.Unsubscribe(id)

	_, ok := <-ch
	require.False(t, ok, "channel should be closed after unsubscribe")
}

func TestBusNoSubscribersDoesNotBlock(t *testing.T) {
	b := NewBus()
	require.NotPanics(t, func() {
		b.Emit(Event{Kind: KindNewOwner})
	})
}

func TestBusFullBufferSkipsRatherThanBlocks(t *testing.T) {
	b := NewBus()
	_, ch := b.Subscribe(1)
	b.Emit(Event{Kind: KindNewTTL})
	b.Emit(Event{Kind: KindNewTTL})

	require.Len(t, ch, 1)
}
