// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package secret derives every per-entity and per-node secret the engine
// needs — blinding factors, placement salts, padding-node blinding — from
// a single master secret, so the tree builder never has to carry more
// entropy than the one value the caller supplies.
package secret

import (
	"encoding/binary"

	"github.com/luxfi/dapol/primitives"
)

// Master is the root entropy for one tree build. It never leaves the
// builder's process; only values derived from it are ever stored or
// transmitted.
type Master [32]byte

// Blinding derives the Pedersen blinding factor for an entity's leaf
// commitment. Two different entity IDs under the same master always
// yield different, unlinkable blinding factors.
func (m Master) Blinding(entityID []byte) primitives.Scalar {
	return primitives.HashToScalar("dapol/blind", m[:], entityID)
}

// Salt derives a leaf's hash salt: the raw 32-byte digest folded into a
// leaf node's hash alongside its commitment, binding the hash to the
// leaf's plaintext value and blinding without revealing either.
func (m Master) Salt(entityID []byte) primitives.Digest {
	return primitives.Hash("dapol/salt", m[:], entityID)
}

// IndexSeed derives the deterministic seed an entity's NDM placement walk
// starts from (spec's "index_bytes"). Rehash attempts (package placement)
// extend this seed with a counter rather than re-deriving from Master, so
// a placement collision never needs to touch the master secret again.
func (m Master) IndexSeed(entityID []byte) primitives.Digest {
	return primitives.Hash("dapol/idx", m[:], entityID)
}

// PaddingBlinding derives the blinding factor for a padding node at a
// given tree coordinate. Padding nodes carry a zero-value commitment, so
// their blinding is the only thing distinguishing one padding node's
// commitment from another's — without it, every padding node at the same
// coordinate across different trees would be trivially linkable.
func (m Master) PaddingBlinding(x uint64, y uint8) primitives.Scalar {
	coord := coordBytes(x, y)
	return primitives.HashToScalar("dapol/pad-blind", m[:], coord)
}

// RangeProofSeed derives the deterministic witness-randomness seed an
// aggregated range proof over one entity's inclusion path draws its
// blinding scalars from, so two honest provers given the same master
// secret and leaf coordinate produce byte-identical proofs.
func (m Master) RangeProofSeed(leafX uint64, leafY uint8) primitives.Digest {
	return primitives.Hash("dapol/rp-seed", m[:], coordBytes(leafX, leafY))
}

// Commitment derives a public binding to the master secret for
// persistence alongside a serialized tree: a zero-value Pedersen
// commitment whose blinding is drawn from the master secret. It never
// reveals m, but lets a caller who later re-supplies m confirm it is
// the same one the tree was built with.
func (m Master) Commitment() primitives.Point {
	blinding := primitives.HashToScalar("dapol/master", m[:])
	return primitives.Commit(0, blinding)
}

// coordBytes is the canonical fixed-width encoding of a tree coordinate
// used as derivation input; it is not the wire encoding (see codec).
func coordBytes(x uint64, y uint8) []byte {
	var buf [9]byte
	binary.BigEndian.PutUint64(buf[:8], x)
	buf[8] = y
	return buf[:]
}
