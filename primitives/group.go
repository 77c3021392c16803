// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package primitives implements the cryptographic primitives component of
// the DAPOL+ engine: Ristretto255 scalar/point arithmetic, the Pedersen
// commitment scheme, and the single fixed BLAKE3 hash used throughout the
// rest of the engine for 32-byte digests.
package primitives

import (
	"crypto/rand"
	"sync"

	"github.com/cloudflare/circl/group"
)

// Scalar is an element of the Ristretto255 scalar field.
type Scalar = group.Scalar

// Point is an element of the Ristretto255 group.
type Point = group.Element

// Group is the prime-order group every commitment in this engine is
// computed over. Commitment and hash schemes are not pluggable, so
// this is the only group the engine ever instantiates.
var Group = group.Ristretto255

// domainSeparator is appended to every HashToElement/HashToScalar call so
// this engine's derived points/scalars never collide with another
// protocol's use of the same group.
const domainSeparator = "dapol+v1"

var (
	generatorHOnce sync.Once
	generatorH     Point
)

// GeneratorG is the group's canonical base point, used for the value
// component of a Pedersen commitment.
func GeneratorG() Point {
	return Group.Generator()
}

// GeneratorH is the blinding generator. It is derived by hashing a fixed
// domain tag to a group element (nothing-up-my-sleeve), so it has no known
// discrete-log relation to GeneratorG.
func GeneratorH() Point {
	generatorHOnce.Do(func() {
		generatorH = Group.HashToElement(
			[]byte("dapol/pedersen-generator-h"),
			[]byte(domainSeparator+"-H"),
		)
	})
	return generatorH
}

// NewScalarFromUint64 lifts a plaintext value into the scalar field.
func NewScalarFromUint64(v uint64) Scalar {
	return Group.NewScalar().SetUint64(v)
}

// RandomScalar draws a uniform non-zero scalar from the system CSPRNG.
// The engine's own derivations do not use it: package secret and the
// range prover's witness stream are both deterministic.
func RandomScalar() Scalar {
	return Group.RandomNonZeroScalar(rand.Reader)
}

// AddPoints returns x+y without mutating either argument.
func AddPoints(x, y Point) Point {
	return Group.NewElement().Add(x, y)
}

// SubPoints returns x-y without mutating either argument.
func SubPoints(x, y Point) Point {
	neg := Group.NewElement().Neg(y)
	return Group.NewElement().Add(x, neg)
}

// AddScalars returns x+y without mutating either argument.
func AddScalars(x, y Scalar) Scalar {
	return Group.NewScalar().Add(x, y)
}

// SubScalars returns x-y without mutating either argument.
func SubScalars(x, y Scalar) Scalar {
	return Group.NewScalar().Sub(x, y)
}

// PointsEqual reports whether x and y encode the same group element.
func PointsEqual(x, y Point) bool {
	return x.IsEqual(y)
}

// ScalarsEqual reports whether x and y are the same field element.
func ScalarsEqual(x, y Scalar) bool {
	return x.IsEqual(y)
}

// MarshalPoint returns the canonical compressed encoding of p.
func MarshalPoint(p Point) []byte {
	b, err := p.MarshalBinary()
	if err != nil {
		// Ristretto255 elements always marshal; a failure here means the
		// element was never validly constructed.
		panic("primitives: point failed to marshal: " + err.Error())
	}
	return b
}

// UnmarshalPoint decodes a canonical compressed point encoding.
func UnmarshalPoint(data []byte) (Point, error) {
	p := Group.NewElement()
	if err := p.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return p, nil
}

// MarshalScalar returns the canonical encoding of s.
func MarshalScalar(s Scalar) []byte {
	b, err := s.MarshalBinary()
	if err != nil {
		panic("primitives: scalar failed to marshal: " + err.Error())
	}
	return b
}

// UnmarshalScalar decodes a canonical scalar encoding.
func UnmarshalScalar(data []byte) (Scalar, error) {
	s := Group.NewScalar()
	if err := s.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return s, nil
}

// ScalarSize and PointSize are the canonical encoded widths for
// Ristretto255, used by codec for fixed-width records.
const (
	ScalarSize = 32
	PointSize  = 32
)
