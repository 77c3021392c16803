// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package proof

import (
	"encoding/binary"

	"github.com/luxfi/dapol/primitives"
	"github.com/zeebo/blake3"
)

// transcript is a Fiat-Shamir transcript built on a BLAKE3 XOF. No
// dedicated transcript library (e.g. gtank/merlin) is present anywhere
// in this engine's retrieved dependency set, so challenges are derived
// by squeezing the running BLAKE3 state and folding the squeezed bytes
// back in before the next challenge, chaining every challenge to every
// prior transcript message.
type transcript struct {
	h *blake3.Hasher
}

func newTranscript(label string) *transcript {
	h := blake3.New()
	frame(h, []byte("dapol/rp-transcript/"+label))
	return &transcript{h: h}
}

func frame(h *blake3.Hasher, b []byte) {
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(b)))
	_, _ = h.Write(lenBuf[:])
	_, _ = h.Write(b)
}

func (t *transcript) appendPoint(label string, p primitives.Point) {
	frame(t.h, []byte(label))
	frame(t.h, primitives.MarshalPoint(p))
}

func (t *transcript) appendUint64(label string, v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	frame(t.h, []byte(label))
	frame(t.h, buf[:])
}

func (t *transcript) appendBytes(label string, b []byte) {
	frame(t.h, []byte(label))
	frame(t.h, b)
}

func (t *transcript) appendScalarPub(label string, s primitives.Scalar) {
	frame(t.h, []byte(label))
	frame(t.h, primitives.MarshalScalar(s))
}

// challengeScalar squeezes a fresh challenge scalar from the transcript
// state, then folds the squeezed bytes back into the running hash so
// the next challenge depends on every challenge drawn before it.
func (t *transcript) challengeScalar(label string) primitives.Scalar {
	frame(t.h, []byte(label))
	digest := t.h.Digest()
	out := make([]byte, 64)
	_, _ = digest.Read(out)
	frame(t.h, out)
	return primitives.Group.HashToScalar(out, []byte("dapol+v1-rpchallenge-"+label))
}
