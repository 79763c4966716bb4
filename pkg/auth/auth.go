// Package auth recovers a caller's addr.Address from a signed request
// digest, standing in for the chain runtime's implicit `msg.sender` /
// `runtime.CheckWitness` (spec §4.2/§4.3) since pkg/rpcsrv sits outside
// an actual chain runtime. Grounded on
// github.com/decred/dcrd/dcrec/secp256k1/v4's ecdsa signature package,
// the same library the teacher's go.mod already carries for witness
// verification over transaction signatures.
package auth

import (
	"crypto/sha256"
	"errors"

	"github.com/NautilusOSS/envoi/pkg/addr"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// ErrInvalidSignature is returned when a request signature does not
// verify against its claimed public key.
var ErrInvalidSignature = errors.New("auth: invalid signature")

// AddressFromPubKey derives the caller Address a registrar/registry/RSVP
// call is authorized against: the full 32-byte SHA-256 digest of the
// compressed public key (addr.Size bytes, so nothing is cut) — the same "hash of the verification key"
// shape teacher's pkg/encoding/address derives Uint160 account hashes
// from a verification script.
func AddressFromPubKey(pub *secp256k1.PublicKey) addr.Address {
	sum := sha256.Sum256(pub.SerializeCompressed())
	return addr.Address(sum)
}

// Sign produces a DER-encoded signature over digest using priv, for
// clients (the CLI console, tests) constructing authenticated RPC
// requests.
func Sign(priv *secp256k1.PrivateKey, digest []byte) []byte {
	return ecdsa.Sign(priv, digest).Serialize()
}

// Verify recovers the caller address behind a request: it checks sig
// (DER-encoded) against digest under the claimed compressed public key
// pubKeyBytes, returning the caller's derived Address on success.
//
// This is pkg/rpcsrv's replacement for runtime.CheckWitness: every
// mutating RPC method (register, renew, reserve, setAddr, ...) carries a
// {pubkey, signature} pair over a canonical digest of its own request
// body, and the recovered address is what every Registry/Registrar/RSVP
// guard in spec §4 authorizes against.
func Verify(pubKeyBytes, digest, sig []byte) (addr.Address, error) {
	pub, err := secp256k1.ParsePubKey(pubKeyBytes)
	if err != nil {
		return addr.Address{}, err
	}
	signature, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return addr.Address{}, ErrInvalidSignature
	}
	if !signature.Verify(digest, pub) {
		return addr.Address{}, ErrInvalidSignature
	}
	return AddressFromPubKey(pub), nil
}
