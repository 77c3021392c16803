// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/luxfi/dapol/primitives"
	"github.com/luxfi/dapol/proof"
)

// encodeRangeProof serializes an aggregated range proof as
// A ‖ S ‖ T1 ‖ T2 (32B points) ‖ TAU_X ‖ MU ‖ T_HAT (32B scalars) ‖
// IPA_ROUNDS(u16 BE) ‖ { L ‖ R }*(32B points each) ‖ IPA_A ‖ IPA_B
// (32B scalars). The surrounding RANGE_PROOF_LEN ‖ RANGE_PROOF_BYTES
// envelope only bounds this section by length; this is the engine's
// own canonical encoding of the proof bytes that fill it.
func encodeRangeProof(rp *proof.RangeProof) ([]byte, error) {
	var buf bytes.Buffer
	for _, p := range []primitives.Point{rp.A, rp.S, rp.T1, rp.T2} {
		buf.Write(primitives.MarshalPoint(p))
	}
	for _, s := range []primitives.Scalar{rp.TauX, rp.Mu, rp.THat} {
		buf.Write(primitives.MarshalScalar(s))
	}

	rounds := len(rp.IPA.L)
	if rounds != len(rp.IPA.R) {
		return nil, fmt.Errorf("codec: range proof has mismatched IPA round counts (%d L, %d R)", rounds, len(rp.IPA.R))
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(rounds)); err != nil {
		return nil, fmt.Errorf("codec: write IPA round count: %w", err)
	}
	for i := 0; i < rounds; i++ {
		buf.Write(primitives.MarshalPoint(rp.IPA.L[i]))
		buf.Write(primitives.MarshalPoint(rp.IPA.R[i]))
	}
	buf.Write(primitives.MarshalScalar(rp.IPA.A))
	buf.Write(primitives.MarshalScalar(rp.IPA.B))

	return buf.Bytes(), nil
}

// decodeRangeProof is encodeRangeProof's inverse.
func decodeRangeProof(data []byte) (*proof.RangeProof, error) {
	r := bytes.NewReader(data)

	points := make([]primitives.Point, 4)
	for i := range points {
		p, err := readPoint(r)
		if err != nil {
			return nil, err
		}
		points[i] = p
	}

	scalars := make([]primitives.Scalar, 3)
	for i := range scalars {
		s, err := readScalar(r)
		if err != nil {
			return nil, err
		}
		scalars[i] = s
	}

	var rounds uint16
	if err := binary.Read(r, binary.BigEndian, &rounds); err != nil {
		return nil, fmt.Errorf("%w: IPA round count: %w", ErrTruncatedInput, err)
	}

	ls := make([]primitives.Point, rounds)
	rs := make([]primitives.Point, rounds)
	for i := 0; i < int(rounds); i++ {
		l, err := readPoint(r)
		if err != nil {
			return nil, err
		}
		rr, err := readPoint(r)
		if err != nil {
			return nil, err
		}
		ls[i] = l
		rs[i] = rr
	}

	ipaA, err := readScalar(r)
	if err != nil {
		return nil, err
	}
	ipaB, err := readScalar(r)
	if err != nil {
		return nil, err
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after range proof", ErrCanonicalEncodingViolation, r.Len())
	}

	return &proof.RangeProof{
		A: points[0], S: points[1], T1: points[2], T2: points[3],
		TauX: scalars[0], Mu: scalars[1], THat: scalars[2],
		IPA: proof.NewIPAProof(ls, rs, ipaA, ipaB),
	}, nil
}

func readPoint(r io.Reader) (primitives.Point, error) {
	buf := make([]byte, primitives.PointSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncatedInput, err)
	}
	p, err := primitives.UnmarshalPoint(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: point: %w", ErrCanonicalEncodingViolation, err)
	}
	return p, nil
}

func readScalar(r io.Reader) (primitives.Scalar, error) {
	buf := make([]byte, primitives.ScalarSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncatedInput, err)
	}
	s, err := primitives.UnmarshalScalar(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: scalar: %w", ErrCanonicalEncodingViolation, err)
	}
	return s, nil
}
