// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package hfcache

import "errors"

// ErrInvalidCacheRoot is returned when the scan root does not exist or is
// not a directory.
var ErrInvalidCacheRoot = errors.New("invalid cache root")
