// Package namehash implements the one-level node-identifier protocol shared
// by the Registry and every Registrar variant: namehash(root, label) =
// SHA256(root ∥ SHA256(label)). It is intentionally not recursive — callers
// that need a multi-level hierarchy chain registrars, each hashing once
// relative to its own root node, rather than calling this package
// recursively client-side.
package namehash

import (
	"crypto/sha256"

	"github.com/NautilusOSS/envoi/pkg/addr"
)

// LabelHash hashes a raw label (not dot-separated, no trailing null) on its
// own. The Registry's setSubnodeOwner takes exactly this value as its label
// argument.
func LabelHash(label string) [32]byte {
	return sha256.Sum256([]byte(label))
}

// Namehash computes SHA256(root ∥ SHA256(label)), the subnode identifier a
// Registrar expects back from the Registry after setSubnodeOwner.
func Namehash(root addr.Node, label string) addr.Node {
	lh := LabelHash(label)
	buf := make([]byte, 0, addr.Size+len(lh))
	buf = append(buf, root.Bytes()...)
	buf = append(buf, lh[:]...)
	sum := sha256.Sum256(buf)
	return addr.Node(sum)
}

// Subnode computes SHA256(parent ∥ labelHash) given an already-hashed label,
// mirroring the Registry's internal setSubnodeOwner computation so it can be
// asserted against a Registrar's locally computed Namehash.
func Subnode(parent addr.Node, labelHash [32]byte) addr.Node {
	buf := make([]byte, 0, addr.Size+len(labelHash))
	buf = append(buf, parent.Bytes()...)
	buf = append(buf, labelHash[:]...)
	sum := sha256.Sum256(buf)
	return addr.Node(sum)
}
