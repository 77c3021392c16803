// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "errors"

// Version is the only envelope version this codec emits or accepts.
const Version uint16 = 1

// ErrUnsupportedVersion is returned when a decoded envelope's version
// field does not match Version.
var ErrUnsupportedVersion = errors.New("codec: unsupported envelope version")

// ErrTruncatedInput is returned when a reader runs out of bytes before
// a fixed-width field or a declared-length section has been fully read.
var ErrTruncatedInput = errors.New("codec: truncated input")

// ErrCanonicalEncodingViolation is returned when a decoded field is
// well-formed as bytes but violates a canonical-encoding constraint
// (a declared count that does not match the bytes actually present, or
// a group element/scalar that fails to unmarshal).
var ErrCanonicalEncodingViolation = errors.New("codec: canonical encoding violation")
