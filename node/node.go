// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package node implements the tree's node algebra: coordinates, the
// combine operation that folds two children into a parent, and the
// deterministic padding node used wherever a subtree has no entities.
package node

import (
	"encoding/binary"

	"github.com/luxfi/dapol/primitives"
	"github.com/luxfi/dapol/secret"
)

// Coordinate identifies a node uniquely within one tree: Y is the level
// (0 = leaf, H = root), X is the horizontal index at that level.
type Coordinate struct {
	X uint64
	Y uint8
}

// Sibling returns the coordinate of Coord's sibling at the same level.
func (c Coordinate) Sibling() Coordinate {
	return Coordinate{X: c.X ^ 1, Y: c.Y}
}

// Parent returns the coordinate of Coord's parent one level up.
func (c Coordinate) Parent() Coordinate {
	return Coordinate{X: c.X >> 1, Y: c.Y + 1}
}

// IsLeftChild reports whether Coord is the left (even-indexed) child of
// its parent.
func (c Coordinate) IsLeftChild() bool {
	return c.X&1 == 0
}

// Node is one vertex of the Merkle-sum tree: a Pedersen commitment to the
// plaintext sum of its subtree, bound into a hash chain with its
// children. See spec invariants: for an interior node P with children
// L, R, P.Commitment = L.Commitment + R.Commitment, P.Value = L.Value +
// R.Value, P.Hash = HashNode(P.Commitment, L.Hash, R.Hash).
type Node struct {
	Coord      Coordinate
	Commitment primitives.Point
	Value      uint64
	Blinding   primitives.Scalar
	Hash       primitives.Digest
}

// Combine folds two sibling nodes into their parent, per the Merkle-sum
// invariant: the parent's commitment and value are the homomorphic/
// arithmetic sums of its children, and its hash binds that commitment to
// both children's hashes.
func Combine(left, right Node) Node {
	parentCoord := left.Coord.Parent()
	commitment := primitives.AddPoints(left.Commitment, right.Commitment)
	blinding := primitives.AddScalars(left.Blinding, right.Blinding)
	value := left.Value + right.Value
	hash := primitives.HashNode(commitment, left.Hash, right.Hash)
	return Node{
		Coord:      parentCoord,
		Commitment: commitment,
		Value:      value,
		Blinding:   blinding,
		Hash:       hash,
	}
}

// Pad produces the deterministic zero-value node for a coordinate with
// no underlying entity. Its blinding and hash are derived solely from
// the master secret and the coordinate, so two independent builders
// given the same inputs produce bit-identical padding nodes, and the
// tree's shape is never distinguishable from a fully-populated tree:
// the hash folds in a master-derived extra value, so it cannot be
// recomputed from the public commitment and coordinate alone.
func Pad(coord Coordinate, master secret.Master) Node {
	blinding := master.PaddingBlinding(coord.X, coord.Y)
	commitment := primitives.CommitScalar(primitives.NewScalarFromUint64(0), blinding)
	extra := primitives.Hash("dapol/pad", master[:], coordBytes(coord))
	hash := primitives.Hash("dapol/pad-hash", primitives.MarshalPoint(commitment), coordBytes(coord), extra.Bytes())
	return Node{
		Coord:      coord,
		Commitment: commitment,
		Value:      0,
		Blinding:   blinding,
		Hash:       hash,
	}
}

// Leaf constructs the leaf node for an entity at the given x-coordinate.
func Leaf(x uint64, entityID []byte, liability uint64, master secret.Master) Node {
	blinding := master.Blinding(entityID)
	commitment := primitives.Commit(liability, blinding)
	salt := master.Salt(entityID)
	hash := primitives.Hash("dapol/leaf-hash", primitives.MarshalPoint(commitment), salt.Bytes())
	return Node{
		Coord:      Coordinate{X: x, Y: 0},
		Commitment: commitment,
		Value:      liability,
		Blinding:   blinding,
		Hash:       hash,
	}
}

func coordBytes(c Coordinate) []byte {
	buf := make([]byte, 9)
	binary.BigEndian.PutUint64(buf[:8], c.X)
	buf[8] = c.Y
	return buf
}
