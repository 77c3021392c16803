// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package node

import (
	"testing"

	"github.com/luxfi/dapol/primitives"
	"github.com/luxfi/dapol/secret"
	"github.com/stretchr/testify/require"
)

func testMaster() secret.Master {
	var m secret.Master
	copy(m[:], []byte("node-package-test-master-secret!"))
	return m
}

func TestCoordinateSiblingAndParent(t *testing.T) {
	c := Coordinate{X: 6, Y: 2}
	require.Equal(t, Coordinate{X: 7, Y: 2}, c.Sibling())
	require.Equal(t, Coordinate{X: 3, Y: 3}, c.Parent())
	require.True(t, c.IsLeftChild())

	odd := Coordinate{X: 7, Y: 2}
	require.Equal(t, Coordinate{X: 6, Y: 2}, odd.Sibling())
	require.False(t, odd.IsLeftChild())
}

func TestPadDeterministic(t *testing.T) {
	m := testMaster()
	coord := Coordinate{X: 12, Y: 3}
	p1 := Pad(coord, m)
	p2 := Pad(coord, m)
	require.Equal(t, p1.Hash, p2.Hash)
	require.True(t, primitives.PointsEqual(p1.Commitment, p2.Commitment))
	require.Equal(t, uint64(0), p1.Value)

	other := Pad(Coordinate{X: 13, Y: 3}, m)
	require.NotEqual(t, p1.Hash, other.Hash)
}

func TestLeafBindsEntity(t *testing.T) {
	m := testMaster()
	l1 := Leaf(0, []byte("alice"), 100, m)
	l2 := Leaf(0, []byte("alice"), 100, m)
	require.Equal(t, l1.Hash, l2.Hash)

	l3 := Leaf(0, []byte("bob"), 100, m)
	require.NotEqual(t, l1.Hash, l3.Hash)
}

func TestCombineInvariants(t *testing.T) {
	m := testMaster()
	left := Leaf(4, []byte("alice"), 10, m)
	right := Leaf(5, []byte("bob"), 20, m)
	parent := Combine(left, right)

	require.Equal(t, uint64(30), parent.Value)
	require.Equal(t, left.Coord.Parent(), parent.Coord)

	expectedCommitment := primitives.AddPoints(left.Commitment, right.Commitment)
	require.True(t, primitives.PointsEqual(expectedCommitment, parent.Commitment))

	expectedHash := primitives.HashNode(parent.Commitment, left.Hash, right.Hash)
	require.Equal(t, expectedHash, parent.Hash)
}

func TestCombineWithPaddingSibling(t *testing.T) {
	m := testMaster()
	left := Leaf(0, []byte("alice"), 5, m)
	right := Pad(Coordinate{X: 1, Y: 0}, m)
	parent := Combine(left, right)
	require.Equal(t, uint64(5), parent.Value)
}
