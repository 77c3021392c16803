// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package placement implements the Non-Deterministic Mapping (NDM): it
// assigns each entity a distinct leaf x-coordinate, deterministic given
// the master secret but unpredictable to an observer without it.
package placement

import (
	"encoding/binary"
	"fmt"

	"github.com/luxfi/dapol/primitives"
	"github.com/luxfi/dapol/secret"
)

// MaxRehashes bounds the number of collision retries before a placement
// attempt gives up. Under the builder's height constraint (2^H >= 2N),
// the expected number of rehashes across an entire build is below N.
const MaxRehashes = 128

// ExhaustedError is returned when an entity could not be placed after
// MaxRehashes collision retries.
type ExhaustedError struct {
	EntityID []byte
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("placement: exhausted %d rehashes placing entity %x", MaxRehashes, e.EntityID)
}

// Map tracks which leaf x-coordinates have been claimed during one
// build's placement pass. It is not safe for concurrent use; the
// builder runs placement single-threaded before dispatching the
// parallel combine phase, since placement order is observable (it
// determines which entity lands on which collision retry).
type Map struct {
	height   uint8
	taken    map[uint64]struct{}
	assigned map[string]uint64
}

// NewMap creates a placement map for a tree of the given height.
func NewMap(height uint8) *Map {
	return &Map{
		height:   height,
		taken:    make(map[uint64]struct{}),
		assigned: make(map[string]uint64),
	}
}

// Place assigns entityID a free leaf x-coordinate, deriving its
// candidate index from the master secret and rehashing on collision.
func (m *Map) Place(master secret.Master, entityID []byte) (uint64, error) {
	seed := master.IndexSeed(entityID)
	if x, ok := m.tryClaim(reduceIndex(seed, m.height)); ok {
		m.assigned[string(entityID)] = x
		return x, nil
	}

	for counter := uint32(1); counter <= MaxRehashes; counter++ {
		var counterBytes [4]byte
		binary.BigEndian.PutUint32(counterBytes[:], counter)
		rehashed := primitives.Hash("dapol/idx-rehash", seed.Bytes(), counterBytes[:])
		if x, ok := m.tryClaim(reduceIndex(rehashed, m.height)); ok {
			m.assigned[string(entityID)] = x
			return x, nil
		}
	}
	return 0, &ExhaustedError{EntityID: entityID}
}

func (m *Map) tryClaim(candidate uint64) (uint64, bool) {
	if _, taken := m.taken[candidate]; taken {
		return 0, false
	}
	m.taken[candidate] = struct{}{}
	return candidate, true
}

// X returns the leaf x-coordinate previously assigned to entityID.
func (m *Map) X(entityID []byte) (uint64, bool) {
	x, ok := m.assigned[string(entityID)]
	return x, ok
}

// Len reports how many entities have been placed so far.
func (m *Map) Len() int {
	return len(m.assigned)
}

// reduceIndex reduces a 32-byte digest modulo 2^height. For height == 64
// the reduction is the identity on the low 8 bytes, since 2^64 exceeds
// uint64's range and truncation to 64 bits already implements mod 2^64.
func reduceIndex(d primitives.Digest, height uint8) uint64 {
	v := binary.BigEndian.Uint64(d[:8])
	if height >= 64 {
		return v
	}
	mask := (uint64(1) << height) - 1
	return v & mask
}
