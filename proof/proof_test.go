// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package proof

import (
	"context"
	"fmt"
	"testing"

	"github.com/luxfi/dapol/builder"
	"github.com/luxfi/dapol/primitives"
	"github.com/luxfi/dapol/secret"
	"github.com/stretchr/testify/require"
)

func testMaster(tag string) secret.Master {
	var m secret.Master
	copy(m[:], []byte(tag))
	return m
}

func buildSmallTree(t *testing.T, master secret.Master, storeDepth uint8) (*builder.Result, []builder.Entity) {
	t.Helper()
	entities := make([]builder.Entity, 12)
	for i := range entities {
		entities[i] = builder.Entity{ID: []byte(fmt.Sprintf("entity-%03d", i)), Liability: uint64(i * 7)}
	}
	res, err := builder.Build(context.Background(), entities, master, builder.Config{
		Height:     6,
		StoreDepth: storeDepth,
		MaxThreads: 4,
		RangeBits:  16,
	})
	require.NoError(t, err)
	return res, entities
}

func TestGenerateVerifyRoundTrip(t *testing.T) {
	master := testMaster("proof-roundtrip-master-secret-01")
	res, entities := buildSmallTree(t, master, 6)

	for _, e := range entities {
		p, err := Generate(res, e.ID, master)
		require.NoError(t, err)

		err = Verify(p, res.Root.Hash, p.LeafCommitment, res.RangeBits, nil)
		require.NoError(t, err, "entity %s", e.ID)
	}
}

func TestGenerateVerifyRoundTripBelowStoreDepth(t *testing.T) {
	master := testMaster("proof-belowdepth-master-secret-1")
	res, entities := buildSmallTree(t, master, 1)

	for _, e := range entities {
		p, err := Generate(res, e.ID, master)
		require.NoError(t, err)

		err = Verify(p, res.Root.Hash, p.LeafCommitment, res.RangeBits, nil)
		require.NoError(t, err, "entity %s", e.ID)
	}
}

func TestGenerateUnknownEntity(t *testing.T) {
	master := testMaster("proof-unknown-master-secret-0001")
	res, _ := buildSmallTree(t, master, 6)

	_, err := Generate(res, []byte("never-placed"), master)
	require.ErrorIs(t, err, ErrUnknownEntity)
}

func TestVerifyRejectsWrongRootHash(t *testing.T) {
	master := testMaster("proof-wronghash-master-secret-01")
	res, entities := buildSmallTree(t, master, 6)

	p, err := Generate(res, entities[0].ID, master)
	require.NoError(t, err)

	wrongRoot := res.Root.Hash
	wrongRoot[0] ^= 0xFF

	err = Verify(p, wrongRoot, p.LeafCommitment, res.RangeBits, nil)
	require.ErrorIs(t, err, ErrVerificationFailed)
}

func TestVerifyRejectsWrongLeafCommitment(t *testing.T) {
	master := testMaster("proof-wrongleaf-master-secret-01")
	res, entities := buildSmallTree(t, master, 6)

	p, err := Generate(res, entities[0].ID, master)
	require.NoError(t, err)

	wrongCommitment := primitives.AddPoints(p.LeafCommitment, primitives.GeneratorG())

	err = Verify(p, res.Root.Hash, wrongCommitment, res.RangeBits, nil)
	require.ErrorIs(t, err, ErrVerificationFailed)
}

func TestVerifyRejectsTamperedSiblingCommitment(t *testing.T) {
	master := testMaster("proof-tampercomm-master-secret01")
	res, entities := buildSmallTree(t, master, 6)

	p, err := Generate(res, entities[0].ID, master)
	require.NoError(t, err)
	require.NotEmpty(t, p.Path)

	p.Path[0].Commitment = primitives.AddPoints(p.Path[0].Commitment, primitives.GeneratorG())

	err = Verify(p, res.Root.Hash, p.LeafCommitment, res.RangeBits, nil)
	require.ErrorIs(t, err, ErrVerificationFailed)
}

func TestVerifyRejectsTamperedSiblingHash(t *testing.T) {
	master := testMaster("proof-tamperhash-master-secret01")
	res, entities := buildSmallTree(t, master, 6)

	p, err := Generate(res, entities[0].ID, master)
	require.NoError(t, err)
	require.NotEmpty(t, p.Path)

	p.Path[len(p.Path)-1].Hash[0] ^= 0xFF

	err = Verify(p, res.Root.Hash, p.LeafCommitment, res.RangeBits, nil)
	require.ErrorIs(t, err, ErrVerificationFailed)
}

func TestVerifyRejectsTamperedRangeProof(t *testing.T) {
	master := testMaster("proof-tamperrp-master-secret-01")
	res, entities := buildSmallTree(t, master, 6)

	p, err := Generate(res, entities[0].ID, master)
	require.NoError(t, err)

	p.RangeProof.THat = primitives.AddScalars(p.RangeProof.THat, primitives.NewScalarFromUint64(1))

	err = Verify(p, res.Root.Hash, p.LeafCommitment, res.RangeBits, nil)
	require.ErrorIs(t, err, ErrVerificationFailed)
}

func TestVerifyRejectsMalformedProof(t *testing.T) {
	err := Verify(&InclusionProof{}, primitives.Digest{}, primitives.GeneratorG(), 16, nil)
	require.ErrorIs(t, err, ErrMalformedProof)

	err = Verify(nil, primitives.Digest{}, primitives.GeneratorG(), 16, nil)
	require.ErrorIs(t, err, ErrMalformedProof)
}

// A bad root hash, a bad leaf commitment, and a bad range proof must
// all surface identically to the caller: distinguishing them would let
// a caller probe which part of a rejected proof is wrong.
func TestVerifyNeverDistinguishesFailureCauseToCaller(t *testing.T) {
	master := testMaster("proof-nodistinguish-master-secr1")
	res, entities := buildSmallTree(t, master, 6)

	p, err := Generate(res, entities[0].ID, master)
	require.NoError(t, err)

	wrongRoot := res.Root.Hash
	wrongRoot[0] ^= 0xFF
	errRoot := Verify(p, wrongRoot, p.LeafCommitment, res.RangeBits, nil)

	wrongCommitment := primitives.AddPoints(p.LeafCommitment, primitives.GeneratorG())
	errCommitment := Verify(p, res.Root.Hash, wrongCommitment, res.RangeBits, nil)

	tamperedRP := *p
	tamperedRPCopy := *p.RangeProof
	tamperedRPCopy.THat = primitives.AddScalars(tamperedRPCopy.THat, primitives.NewScalarFromUint64(1))
	tamperedRP.RangeProof = &tamperedRPCopy
	errRangeProof := Verify(&tamperedRP, res.Root.Hash, tamperedRP.LeafCommitment, res.RangeBits, nil)

	require.ErrorIs(t, errRoot, ErrVerificationFailed)
	require.ErrorIs(t, errCommitment, ErrVerificationFailed)
	require.ErrorIs(t, errRangeProof, ErrVerificationFailed)
	require.Equal(t, errRoot.Error(), errCommitment.Error())
	require.Equal(t, errCommitment.Error(), errRangeProof.Error())
}
