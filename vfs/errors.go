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

package vfs

import "errors"

var (
	// ErrBadVirtualPath indicates a virtual file path could not be parsed
	// into an area and track number.
	ErrBadVirtualPath = errors.New("vfs: path is not of the form \"<Area>/NN. Title.dsf\"")

	// ErrTrackNotFound indicates the requested track number does not exist
	// in the requested area's track table.
	ErrTrackNotFound = errors.New("vfs: track not found")

	// ErrAreaUnavailable indicates the requested area does not exist on the
	// disc.
	ErrAreaUnavailable = errors.New("vfs: area unavailable")

	// ErrNegativeSeek indicates a seek target resolved to a negative offset.
	ErrNegativeSeek = errors.New("vfs: seek target is negative")
)

// Allocation/size limits, grounded on the same DoS-guard-constant idiom the
// teacher's CHD parser uses for untrusted container data.
const (
	// MaxChannelCount is the maximum channels per area (5.1 multichannel).
	MaxChannelCount = 6

	// MaxTrackCount bounds a single area's track table.
	MaxTrackCount = 999

	// MaxID3Size bounds a single track's cached ID3 payload (16MB).
	MaxID3Size = 16 * 1024 * 1024
)
