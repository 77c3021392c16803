// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package proof

import (
	"encoding/binary"
	"sync"

	"github.com/luxfi/dapol/primitives"
)

// scalarVec and pointVec are the plain vector operations the range
// proof's bit-decomposition and inner-product argument are built from.

func zeroScalar() primitives.Scalar { return primitives.Group.NewScalar() }

func oneScalar() primitives.Scalar { return primitives.NewScalarFromUint64(1) }

func scalarPowers(x primitives.Scalar, n int) []primitives.Scalar {
	out := make([]primitives.Scalar, n)
	cur := oneScalar()
	for i := 0; i < n; i++ {
		out[i] = cur
		cur = primitives.Group.NewScalar().Mul(cur, x)
	}
	return out
}

func bitVector(v uint64, n int) []primitives.Scalar {
	out := make([]primitives.Scalar, n)
	for i := 0; i < n; i++ {
		out[i] = primitives.NewScalarFromUint64((v >> uint(i)) & 1)
	}
	return out
}

func subScalarConst(v []primitives.Scalar, c primitives.Scalar) []primitives.Scalar {
	out := make([]primitives.Scalar, len(v))
	for i, s := range v {
		out[i] = primitives.Group.NewScalar().Sub(s, c)
	}
	return out
}

func addScalarConst(v []primitives.Scalar, c primitives.Scalar) []primitives.Scalar {
	out := make([]primitives.Scalar, len(v))
	for i, s := range v {
		out[i] = primitives.Group.NewScalar().Add(s, c)
	}
	return out
}

func addVec(a, b []primitives.Scalar) []primitives.Scalar {
	out := make([]primitives.Scalar, len(a))
	for i := range a {
		out[i] = primitives.Group.NewScalar().Add(a[i], b[i])
	}
	return out
}

func hadamard(a, b []primitives.Scalar) []primitives.Scalar {
	out := make([]primitives.Scalar, len(a))
	for i := range a {
		out[i] = primitives.Group.NewScalar().Mul(a[i], b[i])
	}
	return out
}

func scaleVec(a []primitives.Scalar, c primitives.Scalar) []primitives.Scalar {
	out := make([]primitives.Scalar, len(a))
	for i := range a {
		out[i] = primitives.Group.NewScalar().Mul(a[i], c)
	}
	return out
}

func innerProduct(a, b []primitives.Scalar) primitives.Scalar {
	acc := zeroScalar()
	for i := range a {
		term := primitives.Group.NewScalar().Mul(a[i], b[i])
		acc = primitives.Group.NewScalar().Add(acc, term)
	}
	return acc
}

func sumScalars(v []primitives.Scalar) primitives.Scalar {
	acc := zeroScalar()
	for _, s := range v {
		acc = primitives.Group.NewScalar().Add(acc, s)
	}
	return acc
}

// multiExp computes sum(scalars[i] * points[i]).
func multiExp(points []primitives.Point, scalars []primitives.Scalar) primitives.Point {
	acc := primitives.Group.Identity()
	for i := range points {
		term := primitives.Group.NewElement().Mul(points[i], scalars[i])
		acc = primitives.AddPoints(acc, term)
	}
	return acc
}

var (
	genVectorMu    sync.Mutex
	genVectorCache = map[string][]primitives.Point{}
)

// genVector derives a nothing-up-my-sleeve vector of N generators tagged
// by purpose, used as the Bulletproofs G_vec/H_vec bases. Every index's
// generator is independent of every other's and of the main G/H
// Pedersen bases, derived the same way GeneratorH is. Each (tag, index)
// always hashes to the same element, so computed generators are cached
// and extended rather than re-derived via hash-to-curve on every call.
func genVector(tag string, n int) []primitives.Point {
	genVectorMu.Lock()
	defer genVectorMu.Unlock()

	cached := genVectorCache[tag]
	for i := len(cached); i < n; i++ {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(i))
		cached = append(cached, primitives.Group.HashToElement(
			append([]byte("dapol/rp-gen-"+tag+"-"), buf[:]...),
			[]byte("dapol+v1-rpgen"),
		))
	}
	genVectorCache[tag] = cached

	out := make([]primitives.Point, n)
	copy(out, cached[:n])
	return out
}

func invertScalar(s primitives.Scalar) primitives.Scalar {
	return primitives.Group.NewScalar().Inv(s)
}

// nextPowerOfTwo rounds n up to the nearest power of two, so a range
// bound that is not itself a power of two (e.g. a 40-bit liability
// range) still yields an inner-product argument whose vector length
// can be halved at every round. The proof then establishes the padded
// bound 2^nextPowerOfTwo(bits): the verifier does not check that the
// extra high bit positions are zero.
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

