// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package builder

import (
	"context"
	"fmt"
	"testing"

	"github.com/luxfi/dapol/node"
	"github.com/luxfi/dapol/secret"
	"github.com/stretchr/testify/require"
)

func testMaster(tag string) secret.Master {
	var m secret.Master
	copy(m[:], []byte(tag))
	return m
}

func smokeEntities() []Entity {
	return []Entity{
		{ID: []byte("a"), Liability: 1},
		{ID: []byte("b"), Liability: 2},
		{ID: []byte("c"), Liability: 3},
	}
}

// Three entities, fixed master, height 4: build succeeds and every
// entity's leaf is discoverable via the recorded placement.
func TestBuildSmoke(t *testing.T) {
	master := testMaster("s1-smoke-master-secret-00000001")
	res, err := Build(context.Background(), smokeEntities(), master, Config{
		Height:     4,
		StoreDepth: 4,
		MaxThreads: 4,
		RangeBits:  32,
	})
	require.NoError(t, err)
	require.Equal(t, 3, res.Placement.Len())
	require.False(t, res.Root.Hash.IsZero())

	for _, id := range [][]byte{[]byte("a"), []byte("b"), []byte("c")} {
		_, ok := res.Placement.X(id)
		require.True(t, ok)
	}
	_, ok := res.Placement.X([]byte("d"))
	require.False(t, ok)
}

// A liability exceeding the configured range bound must reject the
// build before any tree work happens.
func TestBuildRangeExceeded(t *testing.T) {
	master := testMaster("s2-range-master-secret-0000000001")
	entities := []Entity{{ID: []byte("big"), Liability: uint64(1) << 32}}
	_, err := Build(context.Background(), entities, master, Config{
		Height:     16,
		StoreDepth: 8,
		MaxThreads: 4,
		RangeBits:  32,
	})
	require.Error(t, err)
	var rangeErr *RangeExceededError
	require.ErrorAs(t, err, &rangeErr)
}

// A tree too short to hold twice the entity count (2^H < 2*N) must be
// rejected up front.
func TestBuildHeightTooSmall(t *testing.T) {
	master := testMaster("s3-height-master-secret-00000001")
	_, err := Build(context.Background(), smokeEntities(), master, Config{
		Height:     2,
		StoreDepth: 2,
		MaxThreads: 4,
		RangeBits:  32,
	})
	require.ErrorIs(t, err, ErrHeightTooSmall)
}

func TestBuildDuplicateEntity(t *testing.T) {
	master := testMaster("dup-master-secret-000000000000001")
	entities := []Entity{
		{ID: []byte("a"), Liability: 1},
		{ID: []byte("a"), Liability: 2},
	}
	_, err := Build(context.Background(), entities, master, Config{
		Height:     4,
		StoreDepth: 4,
		MaxThreads: 2,
		RangeBits:  32,
	})
	var dupErr *DuplicateEntityError
	require.ErrorAs(t, err, &dupErr)
}

func TestBuildEmptyEntitySet(t *testing.T) {
	master := testMaster("empty-master-secret-0000000000001")
	_, err := Build(context.Background(), nil, master, Config{Height: 4, StoreDepth: 4, MaxThreads: 2, RangeBits: 32})
	require.ErrorIs(t, err, ErrEmptyEntitySet)
}

func TestBuildHeightOutOfRange(t *testing.T) {
	master := testMaster("range-master-secret-00000000000001")
	_, err := Build(context.Background(), smokeEntities(), master, Config{Height: 65, StoreDepth: 4, MaxThreads: 2, RangeBits: 32})
	require.ErrorIs(t, err, ErrHeightOutOfRange)
}

func randomEntities(n int) []Entity {
	entities := make([]Entity, n)
	for i := 0; i < n; i++ {
		entities[i] = Entity{ID: []byte(fmt.Sprintf("entity-%05d", i)), Liability: uint64(i % 1000)}
	}
	return entities
}

// The same inputs under different worker budgets must produce the
// same root hash.
func TestBuildDeterministicAcrossThreadCounts(t *testing.T) {
	master := testMaster("s4-determinism-master-secret-001")
	entities := randomEntities(200)

	r1, err := Build(context.Background(), entities, master, Config{Height: 16, StoreDepth: 4, MaxThreads: 1, RangeBits: 32})
	require.NoError(t, err)
	r2, err := Build(context.Background(), entities, master, Config{Height: 16, StoreDepth: 4, MaxThreads: 16, RangeBits: 32})
	require.NoError(t, err)

	require.Equal(t, r1.Root.Hash, r2.Root.Hash)
}

// Different store depths must not change the root hash.
func TestBuildStoreDepthInvariance(t *testing.T) {
	master := testMaster("s5-storedepth-master-secret-0001")
	entities := randomEntities(200)

	r1, err := Build(context.Background(), entities, master, Config{Height: 16, StoreDepth: 2, MaxThreads: 8, RangeBits: 32})
	require.NoError(t, err)
	r2, err := Build(context.Background(), entities, master, Config{Height: 16, StoreDepth: 6, MaxThreads: 8, RangeBits: 32})
	require.NoError(t, err)

	require.Equal(t, r1.Root.Hash, r2.Root.Hash)
}

// Order invariance: permuting the entity slice must not change the root.
func TestBuildOrderInvariance(t *testing.T) {
	master := testMaster("order-invariance-master-secret01")
	entities := randomEntities(64)
	permuted := make([]Entity, len(entities))
	copy(permuted, entities)
	for i, j := 0, len(permuted)-1; i < j; i, j = i+1, j-1 {
		permuted[i], permuted[j] = permuted[j], permuted[i]
	}

	r1, err := Build(context.Background(), entities, master, Config{Height: 12, StoreDepth: 4, MaxThreads: 4, RangeBits: 32})
	require.NoError(t, err)
	r2, err := Build(context.Background(), permuted, master, Config{Height: 12, StoreDepth: 4, MaxThreads: 4, RangeBits: 32})
	require.NoError(t, err)

	require.Equal(t, r1.Root.Hash, r2.Root.Hash)
}

// Parent invariant: with store depth covering the whole tree, a
// retained interior node must equal Combine of its two retained
// children.
func TestBuildParentInvariantSpotCheck(t *testing.T) {
	master := testMaster("parent-invariant-master-secret01")
	entities := randomEntities(32)

	res, err := Build(context.Background(), entities, master, Config{Height: 8, StoreDepth: 8, MaxThreads: 4, RangeBits: 32})
	require.NoError(t, err)

	checked := 0
	for y := uint8(1); y <= res.Height; y++ {
		width := uint64(1) << (res.Height - y)
		for x := uint64(0); x < width && checked < 20; x++ {
			coord := node.Coordinate{X: x, Y: y}
			parent, ok := res.Store.Get(coord)
			if !ok {
				continue
			}
			left, lok := res.Store.Get(node.Coordinate{X: x * 2, Y: y - 1})
			right, rok := res.Store.Get(node.Coordinate{X: x*2 + 1, Y: y - 1})
			if !lok || !rok {
				continue
			}
			expected := node.Combine(left, right)
			require.Equal(t, expected.Hash, parent.Hash)
			checked++
		}
	}
	require.Greater(t, checked, 0, "expected to spot-check at least one interior node")
}

func TestBuildCancellation(t *testing.T) {
	master := testMaster("cancel-master-secret-0000000001")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, randomEntities(100), master, Config{Height: 16, StoreDepth: 4, MaxThreads: 4, RangeBits: 32})
	require.ErrorIs(t, err, ErrCancelled)
}
