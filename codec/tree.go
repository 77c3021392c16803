// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package codec implements the engine's canonical binary encodings: a
// tree envelope (header plus every retained node) and a proof envelope
// (sibling path plus aggregated range proof), both fixed-width,
// big-endian, and versioned. Neither format ever writes a master
// secret or a node's plaintext value/blinding — only commitments and
// hashes cross the wire.
package codec

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/luxfi/dapol/builder"
	"github.com/luxfi/dapol/node"
	"github.com/luxfi/dapol/primitives"
)

// TreeEnvelope is the decoded form of a persisted tree: its shape, a
// binding to the master secret it was built with, and every node the
// store retained. It carries no plaintext values or blindings — a
// decoded envelope is only ever used to cross-check a freshly rebuilt
// tree, never to reconstruct one on its own.
type TreeEnvelope struct {
	Height           uint8
	StoreDepth       uint8
	N                uint64
	MasterCommitment primitives.Point
	Nodes            []EnvelopeNode
}

// EnvelopeNode is one retained node's public half: its coordinate,
// commitment, and hash.
type EnvelopeNode struct {
	Coord      node.Coordinate
	Commitment primitives.Point
	Hash       primitives.Digest
}

// EncodeTree writes result's retained nodes as
// VERSION(u16) ‖ HEIGHT(u8) ‖ STORE_DEPTH(u8) ‖ N(u64) ‖
// MASTER_COMMITMENT(32B) ‖ { COORD ‖ NODE }*.
func EncodeTree(w io.Writer, result *builder.Result, masterCommitment primitives.Point) error {
	nodes := result.Store.All()

	if err := binary.Write(w, binary.BigEndian, Version); err != nil {
		return fmt.Errorf("codec: write version: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, result.Height); err != nil {
		return fmt.Errorf("codec: write height: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, result.StoreDepth); err != nil {
		return fmt.Errorf("codec: write store depth: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, uint64(len(nodes))); err != nil {
		return fmt.Errorf("codec: write node count: %w", err)
	}
	if _, err := w.Write(primitives.MarshalPoint(masterCommitment)); err != nil {
		return fmt.Errorf("codec: write master commitment: %w", err)
	}

	for _, n := range nodes {
		if err := writeCoord(w, n.Coord); err != nil {
			return err
		}
		if err := writeNode(w, n.Commitment, n.Hash); err != nil {
			return err
		}
	}
	return nil
}

// DecodeTree reads a tree envelope previously written by EncodeTree.
func DecodeTree(r io.Reader) (*TreeEnvelope, error) {
	var version uint16
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncatedInput, err)
	}
	if version != Version {
		return nil, ErrUnsupportedVersion
	}

	env := &TreeEnvelope{}
	if err := binary.Read(r, binary.BigEndian, &env.Height); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncatedInput, err)
	}
	if err := binary.Read(r, binary.BigEndian, &env.StoreDepth); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncatedInput, err)
	}
	if err := binary.Read(r, binary.BigEndian, &env.N); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncatedInput, err)
	}

	commitmentBytes := make([]byte, primitives.PointSize)
	if _, err := io.ReadFull(r, commitmentBytes); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncatedInput, err)
	}
	commitment, err := primitives.UnmarshalPoint(commitmentBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: master commitment: %w", ErrCanonicalEncodingViolation, err)
	}
	env.MasterCommitment = commitment

	// N comes straight off the wire and is not yet validated against the
	// bytes actually present, so it is never trusted as an allocation
	// size outright: a corrupted or adversarial envelope claiming an
	// enormous N must fail via the per-node truncation check below, not
	// via an immediate attempt to reserve N node-sized slots.
	const maxNodePrealloc = 1 << 16
	prealloc := env.N
	if prealloc > maxNodePrealloc {
		prealloc = maxNodePrealloc
	}
	env.Nodes = make([]EnvelopeNode, 0, prealloc)
	for i := uint64(0); i < env.N; i++ {
		coord, err := readCoord(r)
		if err != nil {
			return nil, err
		}
		commitment, hash, err := readNode(r)
		if err != nil {
			return nil, err
		}
		env.Nodes = append(env.Nodes, EnvelopeNode{Coord: coord, Commitment: commitment, Hash: hash})
	}
	return env, nil
}

// writeCoord writes a coordinate as u64 x ‖ u8 y ‖ 3 bytes of padding,
// the fixed 12-byte COORD/LEAF_COORD encoding shared by both formats.
func writeCoord(w io.Writer, c node.Coordinate) error {
	var buf [12]byte
	binary.BigEndian.PutUint64(buf[:8], c.X)
	buf[8] = c.Y
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("codec: write coordinate: %w", err)
	}
	return nil
}

func readCoord(r io.Reader) (node.Coordinate, error) {
	var buf [12]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return node.Coordinate{}, fmt.Errorf("%w: %w", ErrTruncatedInput, err)
	}
	return node.Coordinate{X: binary.BigEndian.Uint64(buf[:8]), Y: buf[8]}, nil
}

// writeNode writes a NODE record: COMMITMENT(32B) ‖ HASH(32B).
func writeNode(w io.Writer, commitment primitives.Point, hash primitives.Digest) error {
	if _, err := w.Write(primitives.MarshalPoint(commitment)); err != nil {
		return fmt.Errorf("codec: write node commitment: %w", err)
	}
	if _, err := w.Write(hash.Bytes()); err != nil {
		return fmt.Errorf("codec: write node hash: %w", err)
	}
	return nil
}

func readNode(r io.Reader) (primitives.Point, primitives.Digest, error) {
	commitmentBytes := make([]byte, primitives.PointSize)
	if _, err := io.ReadFull(r, commitmentBytes); err != nil {
		return nil, primitives.Digest{}, fmt.Errorf("%w: %w", ErrTruncatedInput, err)
	}
	commitment, err := primitives.UnmarshalPoint(commitmentBytes)
	if err != nil {
		return nil, primitives.Digest{}, fmt.Errorf("%w: node commitment: %w", ErrCanonicalEncodingViolation, err)
	}

	var hash primitives.Digest
	if _, err := io.ReadFull(r, hash[:]); err != nil {
		return nil, primitives.Digest{}, fmt.Errorf("%w: %w", ErrTruncatedInput, err)
	}
	return commitment, hash, nil
}
