// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dapol

import "errors"

// ErrMasterSecretMismatch is returned by LoadTree when the master secret
// supplied at load time does not bind to the commitment stored in the
// tree envelope: the caller has the wrong secret for this tree.
var ErrMasterSecretMismatch = errors.New("dapol: supplied master secret does not match the tree's stored commitment")
