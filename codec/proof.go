// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/luxfi/dapol/node"
	"github.com/luxfi/dapol/proof"
)

// EncodeProof writes p as
// VERSION(u16) ‖ LEAF_COORD(12B) ‖ PATH_LEN(u16) ‖ { NODE }* ‖
// RANGE_PROOF_LEN(u32) ‖ RANGE_PROOF_BYTES. The wire PATH places the
// leaf's own (commitment, hash) as its first NODE, followed by each
// sibling from leaf to root — the in-memory InclusionProof keeps the
// leaf's fields separate from Path, but both shapes are identical
// (commitment, hash), so the wire format folds them into one list.
func EncodeProof(w io.Writer, p *proof.InclusionProof) error {
	rpBytes, err := encodeRangeProof(p.RangeProof)
	if err != nil {
		return err
	}

	if err := binary.Write(w, binary.BigEndian, Version); err != nil {
		return fmt.Errorf("codec: write version: %w", err)
	}
	if err := writeCoord(w, p.LeafCoord); err != nil {
		return err
	}

	pathLen := len(p.Path) + 1
	if pathLen > 0xFFFF {
		return fmt.Errorf("codec: path length %d exceeds u16 range", pathLen)
	}
	if err := binary.Write(w, binary.BigEndian, uint16(pathLen)); err != nil {
		return fmt.Errorf("codec: write path length: %w", err)
	}

	if err := writeNode(w, p.LeafCommitment, p.LeafHash); err != nil {
		return err
	}
	for _, n := range p.Path {
		if err := writeNode(w, n.Commitment, n.Hash); err != nil {
			return err
		}
	}

	if len(rpBytes) > 0xFFFFFFFF {
		return fmt.Errorf("codec: range proof length %d exceeds u32 range", len(rpBytes))
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(rpBytes))); err != nil {
		return fmt.Errorf("codec: write range proof length: %w", err)
	}
	if _, err := w.Write(rpBytes); err != nil {
		return fmt.Errorf("codec: write range proof bytes: %w", err)
	}
	return nil
}

// DecodeProof reads a proof envelope previously written by EncodeProof.
func DecodeProof(r io.Reader) (*proof.InclusionProof, error) {
	var version uint16
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncatedInput, err)
	}
	if version != Version {
		return nil, ErrUnsupportedVersion
	}

	leafCoord, err := readCoord(r)
	if err != nil {
		return nil, err
	}

	var pathLen uint16
	if err := binary.Read(r, binary.BigEndian, &pathLen); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncatedInput, err)
	}
	if pathLen == 0 {
		return nil, fmt.Errorf("%w: proof path must include at least the leaf", ErrCanonicalEncodingViolation)
	}

	leafCommitment, leafHash, err := readNode(r)
	if err != nil {
		return nil, err
	}

	path := make([]node.Node, 0, pathLen-1)
	for i := 1; i < int(pathLen); i++ {
		commitment, hash, err := readNode(r)
		if err != nil {
			return nil, err
		}
		path = append(path, node.Node{Commitment: commitment, Hash: hash})
	}

	var rpLen uint32
	if err := binary.Read(r, binary.BigEndian, &rpLen); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncatedInput, err)
	}
	rpBytes := make([]byte, rpLen)
	if _, err := io.ReadFull(r, rpBytes); err != nil {
		return nil, fmt.Errorf("%w: range proof bytes: %w", ErrTruncatedInput, err)
	}
	rp, err := decodeRangeProof(rpBytes)
	if err != nil {
		return nil, err
	}

	return &proof.InclusionProof{
		LeafCoord:      leafCoord,
		LeafCommitment: leafCommitment,
		LeafHash:       leafHash,
		Path:           path,
		RangeProof:     rp,
	}, nil
}
