// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package secret

import (
	"testing"

	"github.com/luxfi/dapol/primitives"
	"github.com/stretchr/testify/require"
)

func testMaster(t *testing.T) Master {
	t.Helper()
	var m Master
	copy(m[:], []byte("test-master-secret-do-not-reuse"))
	return m
}

func TestBlindingDeterministicAndDistinct(t *testing.T) {
	m := testMaster(t)
	b1 := m.Blinding([]byte("alice"))
	b2 := m.Blinding([]byte("alice"))
	require.True(t, primitives.ScalarsEqual(b1, b2))

	b3 := m.Blinding([]byte("bob"))
	require.False(t, primitives.ScalarsEqual(b1, b3))
}

func TestBlindingDiffersAcrossMasters(t *testing.T) {
	m1 := testMaster(t)
	var m2 Master
	copy(m2[:], []byte("a-completely-different-secret!!"))

	b1 := m1.Blinding([]byte("alice"))
	b2 := m2.Blinding([]byte("alice"))
	require.False(t, primitives.ScalarsEqual(b1, b2))
}

func TestIndexSeedDeterministicAndDistinct(t *testing.T) {
	m := testMaster(t)
	s1 := m.IndexSeed([]byte("alice"))
	s2 := m.IndexSeed([]byte("alice"))
	require.Equal(t, s1, s2)

	s3 := m.IndexSeed([]byte("bob"))
	require.NotEqual(t, s1, s3)
}

func TestSaltDeterministicAndDistinctFromIndexSeed(t *testing.T) {
	m := testMaster(t)
	salt := m.Salt([]byte("alice"))
	idx := m.IndexSeed([]byte("alice"))
	require.NotEqual(t, salt, idx, "distinct domain tags must not collide")

	saltAgain := m.Salt([]byte("alice"))
	require.Equal(t, salt, saltAgain)
}

func TestPaddingBlindingVariesByCoordinate(t *testing.T) {
	m := testMaster(t)
	r1 := m.PaddingBlinding(5, 3)
	r2 := m.PaddingBlinding(5, 4)
	r3 := m.PaddingBlinding(6, 3)
	require.False(t, primitives.ScalarsEqual(r1, r2))
	require.False(t, primitives.ScalarsEqual(r1, r3))

	r1Again := m.PaddingBlinding(5, 3)
	require.True(t, primitives.ScalarsEqual(r1, r1Again))
}

func TestCommitmentDeterministicAndDistinctAcrossMasters(t *testing.T) {
	m1 := testMaster(t)
	var m2 Master
	copy(m2[:], []byte("a-completely-different-secret!!"))

	c1 := m1.Commitment()
	c1Again := m1.Commitment()
	require.True(t, primitives.PointsEqual(c1, c1Again))

	c2 := m2.Commitment()
	require.False(t, primitives.PointsEqual(c1, c2))
}
