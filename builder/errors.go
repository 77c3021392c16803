// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package builder

import (
	"errors"
	"fmt"

	"github.com/luxfi/dapol/node"
)

// ErrHeightOutOfRange is returned when Height falls outside [2, 64].
var ErrHeightOutOfRange = errors.New("builder: height out of range [2, 64]")

// ErrHeightTooSmall is returned when 2^Height < 2*len(entities).
var ErrHeightTooSmall = errors.New("builder: height too small for entity count")

// ErrInvalidStoreDepth is returned when StoreDepth falls outside [0, Height].
var ErrInvalidStoreDepth = errors.New("builder: store depth out of range")

// ErrEmptyEntitySet is returned when no entities are supplied.
var ErrEmptyEntitySet = errors.New("builder: empty entity set")

// ErrCancelled is returned when the build context is cancelled before
// completion. Partial trees are never exposed to the caller.
var ErrCancelled = errors.New("builder: build cancelled")

// DuplicateEntityError reports a repeated entity id within one build.
type DuplicateEntityError struct {
	ID []byte
}

func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("builder: duplicate entity id %x", e.ID)
}

// RangeExceededError reports a liability exceeding the configured range bound.
type RangeExceededError struct {
	ID    []byte
	Value uint64
}

func (e *RangeExceededError) Error() string {
	return fmt.Sprintf("builder: entity %x liability %d exceeds range bound", e.ID, e.Value)
}

// BuildAbortedError wraps a worker-local failure (including a recovered
// panic) with the coordinate of the subtree that was executing when it
// occurred.
type BuildAbortedError struct {
	Coord node.Coordinate
	Cause error
}

func (e *BuildAbortedError) Error() string {
	return fmt.Sprintf("builder: build aborted at %+v: %v", e.Coord, e.Cause)
}

func (e *BuildAbortedError) Unwrap() error {
	return e.Cause
}
