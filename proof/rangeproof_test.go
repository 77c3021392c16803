// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package proof

import (
	"testing"

	"github.com/luxfi/dapol/primitives"
	"github.com/stretchr/testify/require"
)

func sampleCommitments(values []uint64, blindings []primitives.Scalar) []primitives.Point {
	commitments := make([]primitives.Point, len(values))
	for i, v := range values {
		commitments[i] = primitives.Commit(v, blindings[i])
	}
	return commitments
}

func sampleBlindings(tag string, n int) []primitives.Scalar {
	out := make([]primitives.Scalar, n)
	for i := range out {
		var idx [8]byte
		idx[7] = byte(i)
		out[i] = primitives.HashToScalar(tag, idx[:])
	}
	return out
}

func TestProveVerifyAggregatedRangeRoundTrip(t *testing.T) {
	values := []uint64{0, 5, 255, 42}
	blindings := sampleBlindings("rp-test-blind-1", len(values))
	commitments := sampleCommitments(values, blindings)

	rp, err := ProveAggregatedRange(values, blindings, commitments, 8, []byte("test-label"), []byte("deterministic-seed-1"))
	require.NoError(t, err)

	err = VerifyAggregatedRange(commitments, 8, []byte("test-label"), rp)
	require.NoError(t, err)
}

func TestProveVerifyAggregatedRangeSingleValue(t *testing.T) {
	values := []uint64{7}
	blindings := sampleBlindings("rp-test-blind-single", 1)
	commitments := sampleCommitments(values, blindings)

	rp, err := ProveAggregatedRange(values, blindings, commitments, 4, []byte("single"), []byte("seed-single"))
	require.NoError(t, err)

	err = VerifyAggregatedRange(commitments, 4, []byte("single"), rp)
	require.NoError(t, err)
}

func TestProveAggregatedRangeDeterministic(t *testing.T) {
	values := []uint64{1, 2, 3, 4}
	blindings := sampleBlindings("rp-test-blind-2", len(values))
	commitments := sampleCommitments(values, blindings)
	seed := []byte("same-seed-every-time")

	p1, err := ProveAggregatedRange(values, blindings, commitments, 4, []byte("label"), seed)
	require.NoError(t, err)
	p2, err := ProveAggregatedRange(values, blindings, commitments, 4, []byte("label"), seed)
	require.NoError(t, err)

	require.Equal(t, primitives.MarshalPoint(p1.A), primitives.MarshalPoint(p2.A))
	require.Equal(t, primitives.MarshalPoint(p1.S), primitives.MarshalPoint(p2.S))
	require.Equal(t, primitives.MarshalScalar(p1.TauX), primitives.MarshalScalar(p2.TauX))
	require.Equal(t, primitives.MarshalScalar(p1.Mu), primitives.MarshalScalar(p2.Mu))
	require.Equal(t, primitives.MarshalScalar(p1.THat), primitives.MarshalScalar(p2.THat))
	require.Equal(t, len(p1.IPA.L), len(p2.IPA.L))
	for i := range p1.IPA.L {
		require.Equal(t, primitives.MarshalPoint(p1.IPA.L[i]), primitives.MarshalPoint(p2.IPA.L[i]))
		require.Equal(t, primitives.MarshalPoint(p1.IPA.R[i]), primitives.MarshalPoint(p2.IPA.R[i]))
	}
}

func TestProveAggregatedRangeDiffersAcrossSeeds(t *testing.T) {
	values := []uint64{9, 10}
	blindings := sampleBlindings("rp-test-blind-3", len(values))
	commitments := sampleCommitments(values, blindings)

	p1, err := ProveAggregatedRange(values, blindings, commitments, 4, []byte("label"), []byte("seed-a"))
	require.NoError(t, err)
	p2, err := ProveAggregatedRange(values, blindings, commitments, 4, []byte("label"), []byte("seed-b"))
	require.NoError(t, err)

	require.NotEqual(t, primitives.MarshalPoint(p1.A), primitives.MarshalPoint(p2.A))
}

func TestVerifyAggregatedRangeRejectsValueExceedingBitWidth(t *testing.T) {
	values := []uint64{300, 1} // 300 exceeds 2^8 - 1
	blindings := sampleBlindings("rp-test-blind-4", len(values))
	commitments := sampleCommitments(values, blindings)

	rp, err := ProveAggregatedRange(values, blindings, commitments, 8, []byte("label"), []byte("seed"))
	require.NoError(t, err)

	err = VerifyAggregatedRange(commitments, 8, []byte("label"), rp)
	require.Error(t, err)
}

func TestVerifyAggregatedRangeRejectsWrongCommitmentCount(t *testing.T) {
	values := []uint64{1, 2}
	blindings := sampleBlindings("rp-test-blind-5", len(values))
	commitments := sampleCommitments(values, blindings)

	rp, err := ProveAggregatedRange(values, blindings, commitments, 4, []byte("label"), []byte("seed"))
	require.NoError(t, err)

	err = VerifyAggregatedRange(commitments[:1], 4, []byte("label"), rp)
	require.Error(t, err)
}

func TestProveAggregatedRangeRejectsNonPowerOfTwoCount(t *testing.T) {
	values := []uint64{1, 2, 3}
	blindings := sampleBlindings("rp-test-blind-6", len(values))
	commitments := sampleCommitments(values, blindings)

	_, err := ProveAggregatedRange(values, blindings, commitments, 4, []byte("label"), []byte("seed"))
	require.Error(t, err)
}
