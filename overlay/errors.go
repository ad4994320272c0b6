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

package overlay

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates Config.SourceDir is empty or not a
	// directory.
	ErrInvalidConfig = errors.New("overlay: source_dir must be a non-empty, existing directory")

	// ErrNotFound indicates a virtual path does not resolve to any real or
	// virtual entry.
	ErrNotFound = errors.New("overlay: path not found")

	// ErrNotDir indicates an operation that requires a directory was given
	// a file path.
	ErrNotDir = errors.New("overlay: not a directory")

	// ErrIsDir indicates an operation that requires a file was given a
	// directory path.
	ErrIsDir = errors.New("overlay: is a directory")

	// ErrTooManyOpen indicates Config.MaxOpenISOs has been reached and a
	// newly discovered ISO cannot be registered.
	ErrTooManyOpen = errors.New("overlay: max_open_isos reached")

	// ErrReadOnly indicates a write was attempted against a passthrough
	// file opened read-only, or against a region of a virtual file this
	// overlay never allows writing beyond the ID3 tail.
	ErrReadOnly = errors.New("overlay: handle is not writable")

	// ErrNotVirtual indicates an operation specific to virtual (in-ISO)
	// files was attempted against a passthrough handle, or vice versa.
	ErrNotVirtual = errors.New("overlay: not a virtual file handle")
)

// PathTraversalError indicates a virtual path, once translated to a host
// path, resolved outside of the configured source directory.
type PathTraversalError struct {
	VirtualPath string
	ResolvedTo  string
	Root        string
}

func (e *PathTraversalError) Error() string {
	return fmt.Sprintf("overlay: path %q resolves to %q, outside root %q", e.VirtualPath, e.ResolvedTo, e.Root)
}
