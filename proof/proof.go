// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package proof implements inclusion-proof generation and verification:
// walking the sibling path from a leaf to the root, recomputing any
// subtree that fell below the store's retained frontier, and binding
// an aggregated range proof over every committed value on the path.
package proof

import (
	"encoding/binary"

	"github.com/luxfi/dapol/builder"
	"github.com/luxfi/dapol/node"
	"github.com/luxfi/dapol/primitives"
	"github.com/luxfi/dapol/secret"
	"github.com/luxfi/log"
)

// InclusionProof is everything a verifier needs, together with the
// root hash and the entity's expected commitment supplied out of band,
// to check that one entity's liability was included in a built tree
// without learning any other entity's liability.
type InclusionProof struct {
	LeafCoord      node.Coordinate
	LeafCommitment primitives.Point
	LeafHash       primitives.Digest
	// Path holds the sibling node at every level from the leaf up to
	// (but not including) the root, in leaf-to-root order.
	Path       []node.Node
	RangeProof *RangeProof
}

// Generate builds the inclusion proof for entityID against a completed
// build result. It walks from the entity's placed leaf to the root,
// collecting siblings from the store where retained and recomputing
// them from the leaf table otherwise, then proves every value on the
// path (leaf first, ancestors toward the root, root excluded) lies in
// [0, 2^n), n being RangeBits rounded up to a power of two.
func Generate(result *builder.Result, entityID []byte, master secret.Master) (*InclusionProof, error) {
	x, ok := result.Placement.X(entityID)
	if !ok {
		return nil, ErrUnknownEntity
	}

	var liability uint64
	found := false
	for _, l := range result.Leaves {
		if l.X == x {
			liability = l.Liability
			found = true
			break
		}
	}
	if !found {
		return nil, &InternalStoreMissError{Coord: node.Coordinate{X: x, Y: 0}}
	}

	leaf := node.Leaf(x, entityID, liability, master)

	values := make([]uint64, 0, result.Height)
	blindings := make([]primitives.Scalar, 0, result.Height)
	commitments := make([]primitives.Point, 0, result.Height)
	values = append(values, leaf.Value)
	blindings = append(blindings, leaf.Blinding)
	commitments = append(commitments, leaf.Commitment)

	path := make([]node.Node, 0, result.Height)
	current := leaf
	for y := uint8(0); y < result.Height; y++ {
		siblingCoord := current.Coord.Sibling()
		sibling := fetchOrRecompute(result, siblingCoord, master)
		path = append(path, sibling)

		var left, right node.Node
		if current.Coord.IsLeftChild() {
			left, right = current, sibling
		} else {
			left, right = sibling, current
		}
		parent := node.Combine(left, right)
		current = parent

		if y < result.Height-1 {
			values = append(values, parent.Value)
			blindings = append(blindings, parent.Blinding)
			commitments = append(commitments, parent.Commitment)
		}
	}

	rootHash := current.Hash

	paddedValues, paddedBlindings, paddedCommitments := padToPowerOfTwo(values, blindings, commitments, rootHash)

	seed := master.RangeProofSeed(leaf.Coord.X, leaf.Coord.Y).Bytes()
	rp, err := ProveAggregatedRange(paddedValues, paddedBlindings, paddedCommitments, int(result.RangeBits), rootHash.Bytes(), seed)
	if err != nil {
		return nil, err
	}

	return &InclusionProof{
		LeafCoord:      leaf.Coord,
		LeafCommitment: leaf.Commitment,
		LeafHash:       leaf.Hash,
		Path:           path,
		RangeProof:     rp,
	}, nil
}

// fetchOrRecompute returns the retained node at coord if the store has
// it, otherwise rebuilds its entire subtree from the leaf table. The
// recomputation is local, bounded by the subtree's own leaf count, and
// deterministic given the same master secret, so it reproduces exactly
// what the parallel builder would have retained had store depth been
// deeper.
func fetchOrRecompute(result *builder.Result, coord node.Coordinate, master secret.Master) node.Node {
	if n, ok := result.Store.Get(coord); ok {
		return n
	}
	leaves := builder.LeavesInRange(result.Leaves, coord)
	return builder.RecomputeSubtree(coord, leaves, master)
}

// Verify checks proof against a root hash and the caller's own
// expected leaf commitment, per the four checks: root hash
// reconstruction, commitment-sum consistency (enforced structurally by
// combine as the path is walked), and the aggregated range proof. Every
// cryptographic check failure is reported to the caller as the single
// ErrVerificationFailed, never as which specific check failed, so a
// caller cannot learn anything about a rejected proof's internal
// structure by branching on the error. logger, if non-nil, receives the
// specific cause for operator diagnostics; it never affects the
// returned error.
func Verify(proof *InclusionProof, rootHash primitives.Digest, expectedLeafCommitment primitives.Point, rangeBits uint8, logger log.Logger) error {
	if proof == nil || len(proof.Path) == 0 || proof.RangeProof == nil {
		return ErrMalformedProof
	}
	if !primitives.PointsEqual(proof.LeafCommitment, expectedLeafCommitment) {
		if logger != nil {
			logger.Debug("inclusion proof rejected", "cause", errCommitmentSumMismatch)
		}
		return ErrVerificationFailed
	}

	height := uint8(len(proof.Path))
	coord := proof.LeafCoord
	commitment := proof.LeafCommitment
	hash := proof.LeafHash

	// coord drives IsLeftChild/Parent directly rather than reading it off
	// a sibling node, since a decoded proof's sibling nodes carry only
	// (commitment, hash) on the wire; their coordinates are never
	// serialized because they are fully determined by coord's walk.
	commitments := make([]primitives.Point, 0, height)
	commitments = append(commitments, commitment)

	for i, sibling := range proof.Path {
		var leftCommitment, rightCommitment primitives.Point
		var leftHash, rightHash primitives.Digest
		if coord.IsLeftChild() {
			leftCommitment, rightCommitment = commitment, sibling.Commitment
			leftHash, rightHash = hash, sibling.Hash
		} else {
			leftCommitment, rightCommitment = sibling.Commitment, commitment
			leftHash, rightHash = sibling.Hash, hash
		}

		commitment = primitives.AddPoints(leftCommitment, rightCommitment)
		hash = primitives.HashNode(commitment, leftHash, rightHash)
		coord = coord.Parent()

		if i < len(proof.Path)-1 {
			commitments = append(commitments, commitment)
		}
	}

	if hash != rootHash {
		if logger != nil {
			logger.Debug("inclusion proof rejected", "cause", errHashMismatch)
		}
		return ErrVerificationFailed
	}

	_, _, paddedCommitments := padToPowerOfTwo(nil, nil, commitments, rootHash)

	if err := VerifyAggregatedRange(paddedCommitments, int(rangeBits), rootHash.Bytes(), proof.RangeProof); err != nil {
		if logger != nil {
			logger.Debug("inclusion proof rejected", "cause", err)
		}
		return ErrVerificationFailed
	}
	return nil
}

// padToPowerOfTwo extends the path's value/blinding/commitment triples
// with dummy all-zero-value entries up to the next power of two, per
// the deterministic tie-break: each dummy's blinding is drawn from
// H("dapol/pad-rp" || root_hash || index), so prover and verifier
// independently reconstruct identical padding. values/blindings may be
// nil when the caller (the verifier) does not know them; only
// commitments is ever read back by the caller in that case.
func padToPowerOfTwo(values []uint64, blindings []primitives.Scalar, commitments []primitives.Point, rootHash primitives.Digest) ([]uint64, []primitives.Scalar, []primitives.Point) {
	target := nextPowerOfTwo(len(commitments))
	for i := len(commitments); i < target; i++ {
		var idxBuf [8]byte
		binary.BigEndian.PutUint64(idxBuf[:], uint64(i))
		blinding := primitives.HashToScalar("dapol/pad-rp", rootHash.Bytes(), idxBuf[:])
		commitments = append(commitments, primitives.Commit(0, blinding))
		if values != nil {
			values = append(values, 0)
		}
		if blindings != nil {
			blindings = append(blindings, blinding)
		}
	}
	return values, blindings, commitments
}
