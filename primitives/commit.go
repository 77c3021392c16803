// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package primitives

// Commit computes a Pedersen commitment C = value*G + blinding*H over
// Ristretto255. It is grounded on the shape of parsdao-pars's
// PedersenCommitter.Commit, ported from bn254 to Ristretto255 per this
// engine's fixed commitment scheme.
func Commit(value uint64, blinding Scalar) Point {
	vG := Group.NewElement().MulGen(NewScalarFromUint64(value))
	rH := Group.NewElement().Mul(GeneratorH(), blinding)
	return AddPoints(vG, rH)
}

// CommitScalar is Commit generalized to an already-reduced scalar value,
// used when summing or re-deriving commitments algebraically rather than
// from a plaintext uint64 (e.g. the padding-node commitment in node.Pad).
func CommitScalar(value, blinding Scalar) Point {
	vG := Group.NewElement().MulGen(value)
	rH := Group.NewElement().Mul(GeneratorH(), blinding)
	return AddPoints(vG, rH)
}

// SumCommitments folds a slice of commitments into their homomorphic sum,
// C = sum(Ci), the same relation the Merkle-sum invariant places between
// a parent's commitment and its children's.
func SumCommitments(commitments ...Point) Point {
	acc := Group.Identity()
	for _, c := range commitments {
		acc = AddPoints(acc, c)
	}
	return acc
}
