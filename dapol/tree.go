// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package dapol is the engine's external facade: build a tree, serialize
// and reload it, generate and verify inclusion proofs. It wraps the
// builder, proof and codec packages, which remain importable on their
// own; its signatures use their types (builder.Entity, secret.Master,
// proof.InclusionProof) directly.
package dapol

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/luxfi/dapol/builder"
	"github.com/luxfi/dapol/codec"
	"github.com/luxfi/dapol/node"
	"github.com/luxfi/dapol/primitives"
	"github.com/luxfi/dapol/proof"
	"github.com/luxfi/dapol/secret"
	"github.com/luxfi/log"
)

// Tree is a completed DAPOL+ build: the retained-node store, the root,
// and everything proof generation needs, paired with the master secret
// it was built with so it can prove entities on demand.
type Tree struct {
	result *builder.Result
	master secret.Master
}

// Stats summarizes one build: its size and how long it took.
type Stats struct {
	LeafCount         int
	RetainedNodeCount int
	BuildDuration     time.Duration
}

// BuildTree places every entity and constructs the tree. storeDepth < 0
// defaults to height/2 and maxThreads <= 0 defaults to
// runtime.NumCPU(); both may also be supplied explicitly, including
// storeDepth == 0 (retain only the root).
func BuildTree(ctx context.Context, entities []builder.Entity, master secret.Master, height uint8, storeDepth int, maxThreads int, rangeBits uint8, logger log.Logger) (*Tree, error) {
	if maxThreads <= 0 {
		maxThreads = runtime.NumCPU()
	}
	if storeDepth < 0 {
		storeDepth = int(height) / 2
	}
	if storeDepth > int(height) {
		return nil, builder.ErrInvalidStoreDepth
	}

	result, err := builder.Build(ctx, entities, master, builder.Config{
		Height:     height,
		StoreDepth: uint8(storeDepth),
		MaxThreads: maxThreads,
		RangeBits:  rangeBits,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	return &Tree{result: result, master: master}, nil
}

// RootHash returns the tree's root digest.
func (t *Tree) RootHash() primitives.Digest {
	return t.result.Root.Hash
}

// Stats reports the tree's size and build cost.
func (t *Tree) Stats() Stats {
	return Stats{
		LeafCount:         len(t.result.Leaves),
		RetainedNodeCount: t.result.Store.Len(),
		BuildDuration:     t.result.Duration,
	}
}

// Prove generates entityID's inclusion proof. Safe to call concurrently
// with other Prove calls on the same Tree (store reads never lock after
// Seal; RangeProofSeed derivation and subtree recomputation are
// per-call local state).
func (t *Tree) Prove(entityID []byte) (*proof.InclusionProof, error) {
	return proof.Generate(t.result, entityID, t.master)
}

// Serialize writes the tree envelope: shape, a binding to the master
// secret, and every retained node. The master secret itself is never
// written.
func (t *Tree) Serialize(w io.Writer) error {
	return codec.EncodeTree(w, t.result, t.master.Commitment())
}

// LoadTree decodes a tree envelope and rebuilds the tree it describes
// from entities and master, since the envelope alone (no plaintext
// values or blindings) cannot reconstruct a provable tree. It cross-
// checks the supplied master secret's commitment against the one
// stored in the envelope, and the freshly rebuilt root against the
// envelope's own root node, before returning. rangeBits and maxThreads
// are not part of the envelope and must be supplied by the caller,
// matching the build the envelope was produced from.
func LoadTree(r io.Reader, entities []builder.Entity, master secret.Master, rangeBits uint8, maxThreads int) (*Tree, error) {
	env, err := codec.DecodeTree(r)
	if err != nil {
		return nil, err
	}
	if !primitives.PointsEqual(env.MasterCommitment, master.Commitment()) {
		return nil, ErrMasterSecretMismatch
	}

	if maxThreads <= 0 {
		maxThreads = runtime.NumCPU()
	}

	result, err := builder.Build(context.Background(), entities, master, builder.Config{
		Height:     env.Height,
		StoreDepth: env.StoreDepth,
		MaxThreads: maxThreads,
		RangeBits:  rangeBits,
	})
	if err != nil {
		return nil, err
	}

	rootCoord := node.Coordinate{X: 0, Y: env.Height}
	var envRoot *codec.EnvelopeNode
	for i := range env.Nodes {
		if env.Nodes[i].Coord == rootCoord {
			envRoot = &env.Nodes[i]
			break
		}
	}
	if envRoot == nil {
		return nil, fmt.Errorf("dapol: tree envelope is missing its root node")
	}
	if envRoot.Hash != result.Root.Hash || !primitives.PointsEqual(envRoot.Commitment, result.Root.Commitment) {
		return nil, fmt.Errorf("dapol: rebuilt tree root does not match the envelope's stored root")
	}

	return &Tree{result: result, master: master}, nil
}

// Verify checks an inclusion proof against a root hash and the
// caller's own expected commitment for the entity. rangeBits must
// match the bound the tree was built with; it is not recoverable from
// the proof alone. A failed check always comes back as
// proof.ErrVerificationFailed, regardless of which underlying check
// rejected the proof; logger, if non-nil, receives the specific cause
// for operator diagnostics.
func Verify(p *proof.InclusionProof, rootHash primitives.Digest, entityCommitment primitives.Point, rangeBits uint8, logger log.Logger) error {
	return proof.Verify(p, rootHash, entityCommitment, rangeBits, logger)
}
