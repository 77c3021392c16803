// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package proof

import "github.com/luxfi/dapol/primitives"

// ipaFold recursively halves (l, r, gVec, hVec) until a single pair of
// scalars remains, producing one (L, R) commitment pair per round. It
// proves knowledge of l, r such that P = <l,gVec> + <r,hVec> + <l,r>*u
// without revealing l, r, in O(log n) size.
func ipaFold(gVec, hVec []primitives.Point, u primitives.Point, l, r []primitives.Scalar, tr *transcript) (ls, rs []primitives.Point, a, b primitives.Scalar) {
	n := len(l)
	if n == 1 {
		return nil, nil, l[0], r[0]
	}

	half := n / 2
	lL, lR := l[:half], l[half:]
	rL, rR := r[:half], r[half:]
	gL, gR := gVec[:half], gVec[half:]
	hL, hR := hVec[:half], hVec[half:]

	cL := innerProduct(lL, rR)
	cR := innerProduct(lR, rL)

	L := primitives.AddPoints(multiExp(gR, lL), multiExp(hL, rR))
	L = primitives.AddPoints(L, primitives.Group.NewElement().Mul(u, cL))
	R := primitives.AddPoints(multiExp(gL, lR), multiExp(hR, rL))
	R = primitives.AddPoints(R, primitives.Group.NewElement().Mul(u, cR))

	tr.appendPoint("ipa-L", L)
	tr.appendPoint("ipa-R", R)
	challenge := tr.challengeScalar("ipa-u")
	challengeInv := invertScalar(challenge)

	nextG := make([]primitives.Point, half)
	nextH := make([]primitives.Point, half)
	nextL := make([]primitives.Scalar, half)
	nextR := make([]primitives.Scalar, half)
	for i := 0; i < half; i++ {
		nextG[i] = primitives.AddPoints(
			primitives.Group.NewElement().Mul(gL[i], challengeInv),
			primitives.Group.NewElement().Mul(gR[i], challenge),
		)
		nextH[i] = primitives.AddPoints(
			primitives.Group.NewElement().Mul(hL[i], challenge),
			primitives.Group.NewElement().Mul(hR[i], challengeInv),
		)
		nextL[i] = primitives.Group.NewScalar().Add(
			primitives.Group.NewScalar().Mul(lL[i], challenge),
			primitives.Group.NewScalar().Mul(lR[i], challengeInv),
		)
		nextR[i] = primitives.Group.NewScalar().Add(
			primitives.Group.NewScalar().Mul(rL[i], challengeInv),
			primitives.Group.NewScalar().Mul(rR[i], challenge),
		)
	}

	subLs, subRs, fa, fb := ipaFold(nextG, nextH, u, nextL, nextR, tr)
	return append([]primitives.Point{L}, subLs...), append([]primitives.Point{R}, subRs...), fa, fb
}

// ipaVerify recomputes the same folding the prover performed (replaying
// the transcript to rederive each round's challenge) and checks the
// final opening equation.
func ipaVerify(gVec, hVec []primitives.Point, u primitives.Point, p primitives.Point, proof ipaProof, tr *transcript) bool {
	if len(proof.L) != len(proof.R) {
		return false
	}

	curG, curH := gVec, hVec
	curP := p
	for k := range proof.L {
		tr.appendPoint("ipa-L", proof.L[k])
		tr.appendPoint("ipa-R", proof.R[k])
		challenge := tr.challengeScalar("ipa-u")
		challengeInv := invertScalar(challenge)

		half := len(curG) / 2
		nextG := make([]primitives.Point, half)
		nextH := make([]primitives.Point, half)
		for i := 0; i < half; i++ {
			nextG[i] = primitives.AddPoints(
				primitives.Group.NewElement().Mul(curG[i], challengeInv),
				primitives.Group.NewElement().Mul(curG[half+i], challenge),
			)
			nextH[i] = primitives.AddPoints(
				primitives.Group.NewElement().Mul(curH[i], challenge),
				primitives.Group.NewElement().Mul(curH[half+i], challengeInv),
			)
		}

		uSquared := primitives.Group.NewScalar().Mul(challenge, challenge)
		uInvSquared := primitives.Group.NewScalar().Mul(challengeInv, challengeInv)
		curP = primitives.AddPoints(curP, primitives.Group.NewElement().Mul(proof.L[k], uSquared))
		curP = primitives.AddPoints(curP, primitives.Group.NewElement().Mul(proof.R[k], uInvSquared))

		curG, curH = nextG, nextH
	}

	if len(curG) != 1 {
		return false
	}

	expected := primitives.AddPoints(
		primitives.Group.NewElement().Mul(curG[0], proof.A),
		primitives.Group.NewElement().Mul(curH[0], proof.B),
	)
	expected = primitives.AddPoints(expected, primitives.Group.NewElement().Mul(u, primitives.Group.NewScalar().Mul(proof.A, proof.B)))
	return primitives.PointsEqual(curP, expected)
}
