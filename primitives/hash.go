// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package primitives

import (
	"encoding/binary"

	"github.com/zeebo/blake3"
)

// Digest is the fixed 32-byte output of this engine's one hash function.
// Every node hash, commitment binding, and secret derivation in the
// engine produces or consumes a Digest.
type Digest [32]byte

// Bytes returns d as a slice, aliasing its backing array.
func (d Digest) Bytes() []byte {
	return d[:]
}

// IsZero reports whether d is the all-zero digest.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Hash computes BLAKE3-256 over domain, length-prefixed, followed by each
// part in parts, also length-prefixed. Length-prefixing keeps the encoding
// injective so "ab"+"c" and "a"+"bc" never collide.
func Hash(domain string, parts ...[]byte) Digest {
	h := blake3.New()
	writeFrame(h, []byte(domain))
	for _, p := range parts {
		writeFrame(h, p)
	}
	var out Digest
	sum := h.Sum(nil)
	copy(out[:], sum)
	return out
}

func writeFrame(w interface{ Write([]byte) (int, error) }, b []byte) {
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(b)))
	_, _ = w.Write(lenBuf[:])
	_, _ = w.Write(b)
}

// HashToScalar derives a scalar deterministically from domain and parts.
// The pre-image is BLAKE3 domain-separated exactly like Hash, and the
// resulting bytes are handed to the group's own hash-to-field so the
// scalar is uniformly distributed over the Ristretto255 scalar field.
func HashToScalar(domain string, parts ...[]byte) Scalar {
	h := blake3.New()
	writeFrame(h, []byte("dapol/h2s/"+domain))
	for _, p := range parts {
		writeFrame(h, p)
	}
	preimage := h.Sum(nil)
	return Group.HashToScalar(preimage, []byte(domainSeparator+"-h2s-"+domain))
}

// HashNode binds a node's commitment to its children's digests, producing
// the node's own digest. This is the single hashing step the Merkle-sum
// authentication path relies on to fold two children into their parent.
func HashNode(commitment Point, left, right Digest) Digest {
	return Hash("dapol/node", MarshalPoint(commitment), left.Bytes(), right.Bytes())
}
