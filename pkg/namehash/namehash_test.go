package namehash

import (
	"crypto/sha256"
	"testing"

	"github.com/NautilusOSS/envoi/pkg/addr"
	"github.com/stretchr/testify/require"
)

func TestNamehashRoot(t *testing.T) {
	got := Namehash(addr.Root, "alice")
	labelHash := sha256.Sum256([]byte("alice"))
	want := sha256.Sum256(append(addr.Root.Bytes(), labelHash[:]...))
	require.Equal(t, addr.Node(want), got)
}

func TestNamehashMatchesSubnodeOfLabelHash(t *testing.T) {
	root := addr.Node{1, 2, 3}
	lh := LabelHash("bob")
	require.Equal(t, Namehash(root, "bob"), Subnode(root, lh))
}

func TestNamehashNotRecursive(t *testing.T) {
	root := addr.Root
	oneLevel := Namehash(root, "example")
	chained := Namehash(oneLevel, "sub")
	require.NotEqual(t, oneLevel, chained)
	require.Equal(t, chained, Namehash(oneLevel, "sub"))
}

func TestNamehashOrderMatters(t *testing.T) {
	root := addr.Node{9}
	label := "carol"
	forward := Namehash(root, label)

	lh := LabelHash(label)
	swapped := sha256.Sum256(append(lh[:], root.Bytes()...))
	require.NotEqual(t, addr.Node(swapped), forward)
}
