// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package store implements the tree's shared mutable structure during
// build: a sharded, lock-striped map of retained nodes that many workers
// can insert into concurrently, then seal into a lock-free read path.
package store

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/luxfi/dapol/node"
)

// shard is one lock-striped partition of the store.
type shard struct {
	mu    sync.RWMutex
	nodes map[node.Coordinate]node.Node
}

// Store holds every retained node of a built tree, partitioned across a
// power-of-two number of shards so concurrent inserts during build rarely
// contend on the same lock. After Seal, reads never take a lock.
type Store struct {
	shards []shard
	mask   uint64
	sealed atomic.Bool
	count  atomic.Int64
}

// New creates a Store sized for an upper bound of expectedNodes retained
// entries, sharded across runtime.NumCPU()*4 (rounded up to a power of
// two) partitions.
func New(expectedNodes int) *Store {
	shardCount := nextPowerOfTwo(runtime.NumCPU() * 4)
	perShard := (expectedNodes / shardCount) + 1

	s := &Store{
		shards: make([]shard, shardCount),
		mask:   uint64(shardCount - 1),
	}
	for i := range s.shards {
		s.shards[i].nodes = make(map[node.Coordinate]node.Node, perShard)
	}
	return s
}

func nextPowerOfTwo(n int) int {
	if n < 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func (s *Store) shardFor(c node.Coordinate) *shard {
	h := (c.X * 0x9E3779B97F4A7C15) ^ (uint64(c.Y) * 0xBF58476D1CE4E5B9)
	return &s.shards[h&s.mask]
}

// Insert records a node in the store. Safe for concurrent use by many
// build workers as long as Seal has not yet been called.
func (s *Store) Insert(n node.Node) {
	if s.sealed.Load() {
		panic("store: Insert called after Seal")
	}
	sh := s.shardFor(n.Coord)
	sh.mu.Lock()
	if _, exists := sh.nodes[n.Coord]; !exists {
		s.count.Add(1)
	}
	sh.nodes[n.Coord] = n
	sh.mu.Unlock()
}

// Get returns the node at coord and whether it was retained. A missing
// result means the coordinate falls below the retained frontier (see
// the builder's store-depth policy) and must be recomputed by the proof
// subsystem rather than treated as an error.
func (s *Store) Get(c node.Coordinate) (node.Node, bool) {
	sh := s.shardFor(c)
	if s.sealed.Load() {
		n, ok := sh.nodes[c]
		return n, ok
	}
	sh.mu.RLock()
	n, ok := sh.nodes[c]
	sh.mu.RUnlock()
	return n, ok
}

// Seal freezes the store: after Seal, Get never takes a lock and Insert
// panics. Call Seal exactly once, after all build workers have joined.
func (s *Store) Seal() {
	s.sealed.Store(true)
}

// Sealed reports whether Seal has been called.
func (s *Store) Sealed() bool {
	return s.sealed.Load()
}

// Len returns the number of retained nodes currently in the store.
func (s *Store) Len() int {
	return int(s.count.Load())
}

// All returns a snapshot of every retained node. Only valid after Seal:
// before sealing, concurrent inserts could race with the snapshot, so
// All panics if called on an unsealed store.
func (s *Store) All() []node.Node {
	if !s.sealed.Load() {
		panic("store: All called before Seal")
	}
	out := make([]node.Node, 0, s.Len())
	for i := range s.shards {
		for _, n := range s.shards[i].nodes {
			out = append(out, n)
		}
	}
	return out
}

// Root returns the tree's root node, always retained regardless of
// store-depth (the root is at y == height, which is never below the
// retained frontier for any valid store depth).
func (s *Store) Root(height uint8) (node.Node, bool) {
	return s.Get(node.Coordinate{X: 0, Y: height})
}
