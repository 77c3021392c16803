// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package proof

import (
	"errors"
	"fmt"

	"github.com/luxfi/dapol/node"
)

// ErrUnknownEntity is returned when Generate is asked to prove an
// entity id that was never placed during build.
var ErrUnknownEntity = errors.New("proof: unknown entity")

// ErrVerificationFailed is the only error Verify ever returns for a
// cryptographic check that failed. It deliberately does not distinguish
// a bad root hash from a bad leaf commitment from a bad range proof: an
// external caller able to tell those apart could probe a proof's
// internal structure one field at a time. Internally, Verify logs the
// specific cause (errHashMismatch, errCommitmentSumMismatch, or
// ErrRangeProofInvalid below) when given a logger.
var ErrVerificationFailed = errors.New("proof: verification failed")

// errHashMismatch is the internal, log-only cause for a reconstructed
// root hash that does not equal the root hash the caller supplied.
// Never returned to a caller directly; see ErrVerificationFailed.
var errHashMismatch = errors.New("proof: reconstructed root hash mismatch")

// errCommitmentSumMismatch is the internal, log-only cause for a leaf
// commitment that does not match the caller's expected commitment.
// Never returned to a caller directly; see ErrVerificationFailed.
var errCommitmentSumMismatch = errors.New("proof: commitment sum mismatch")

// ErrRangeProofInvalid is returned directly by VerifyAggregatedRange, a
// lower-level building block Verify calls internally. Verify itself
// never returns it to a caller; it logs it as the cause and returns
// ErrVerificationFailed instead.
var ErrRangeProofInvalid = errors.New("proof: range proof invalid")

// ErrMalformedProof is returned when a proof's structure (path length,
// range-proof framing) is inconsistent before any cryptographic check
// runs.
var ErrMalformedProof = errors.New("proof: malformed proof")

// InternalStoreMissError indicates the builder's recomputation path was
// not wired correctly: a coordinate needed mid-proof was neither
// retained nor recomputable. This should never occur in a correctly
// wired caller.
type InternalStoreMissError struct {
	Coord node.Coordinate
}

func (e *InternalStoreMissError) Error() string {
	return fmt.Sprintf("proof: internal store miss at %+v", e.Coord)
}
