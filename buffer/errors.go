// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-gameid.
//
// go-gameid is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-gameid is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-gameid.  If not, see <https://www.gnu.org/licenses/>.

package buffer

import "errors"

// Common errors for buffer and pool operations.
var (
	// ErrReadOnly indicates a write or realloc was attempted on a read-only buffer.
	ErrReadOnly = errors.New("buffer is read-only")

	// ErrNotWritable indicates make_writable was required but the caller expected
	// an in-place buffer and none was available.
	ErrNotWritable = errors.New("buffer is not writable")

	// ErrPoolRetired indicates Get was called on a pool that has already been
	// Uninit'd and has no outstanding slots left to recycle.
	ErrPoolRetired = errors.New("buffer pool retired")

	// ErrSizeMismatch indicates a pool Get requested a size other than the
	// pool's fixed slot size.
	ErrSizeMismatch = errors.New("buffer size does not match pool slot size")
)
