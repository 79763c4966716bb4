// Package addr defines the two fixed-width identifiers the rest of the
// module passes around: Node (a position in the name tree) and Address (an
// account). Both are 32 bytes, matching the Algorand-style account and
// namehash shapes the spec was distilled from, and both carry the same
// Stringer/JSON/base58 conveniences the teacher's pkg/util gives Uint160 and
// Uint256.
package addr

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
)

// Size is the byte width of both Node and Address.
const Size = 32

// Node identifies a position in the name tree. The zero Node is the root.
type Node [Size]byte

// Address identifies an account: an NFT owner, operator, or resolver writer.
type Address [Size]byte

// Zero is the invalid/absent address, used as the sentinel "no owner" value
// throughout the registry, registrar and RSVP packages.
var Zero Address

// Root is the zero node, the root of the name tree.
var Root Node

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool {
	return a == Zero
}

// Bytes returns a's raw bytes.
func (a Address) Bytes() []byte {
	return a[:]
}

// String renders a in base58, the same text encoding teacher's
// pkg/encoding/address uses for Neo account addresses.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// MarshalJSON renders the address as a base58 JSON string.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON parses a base58 JSON string produced by MarshalJSON.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := AddressFromString(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// AddressFromString parses a base58-encoded address.
func AddressFromString(s string) (Address, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("addr: invalid address %q: %w", s, err)
	}
	return AddressFromBytes(b)
}

// AddressFromBytes wraps a raw 32-byte slice as an Address.
func AddressFromBytes(b []byte) (Address, error) {
	if len(b) != Size {
		return Address{}, fmt.Errorf("addr: expected %d bytes, got %d", Size, len(b))
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// Equals reports whether a and o denote the same address.
func (a Address) Equals(o Address) bool {
	return a == o
}

// Bytes returns n's raw bytes.
func (n Node) Bytes() []byte {
	return n[:]
}

// IsZero reports whether n is the root node.
func (n Node) IsZero() bool {
	return n == Root
}

// String renders n as hex, the form used in NewOwner/Transfer event logs and
// RPC responses.
func (n Node) String() string {
	return hex.EncodeToString(n[:])
}

// MarshalJSON renders the node as a hex JSON string.
func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.String())
}

// UnmarshalJSON parses a hex JSON string produced by MarshalJSON.
func (n *Node) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := NodeFromString(s)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// NodeFromString parses a hex-encoded node identifier.
func NodeFromString(s string) (Node, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Node{}, fmt.Errorf("addr: invalid node %q: %w", s, err)
	}
	return NodeFromBytes(b)
}

// NodeFromBytes wraps a raw 32-byte slice as a Node.
func NodeFromBytes(b []byte) (Node, error) {
	if len(b) != Size {
		return Node{}, fmt.Errorf("addr: expected %d bytes, got %d", Size, len(b))
	}
	var n Node
	copy(n[:], b)
	return n, nil
}

// Compare orders nodes lexicographically by their raw bytes, used for
// deterministic iteration over enumeration indices.
func (n Node) Compare(o Node) int {
	return bytes.Compare(n[:], o[:])
}

// TokenID reinterprets a node as a 256-bit big-endian integer, the
// token_id ≡ node identity required by the NFT core (§3).
func (n Node) TokenID() [Size]byte {
	return [Size]byte(n)
}
