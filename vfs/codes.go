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

import "syscall"

// Code is the error-kind taxonomy shared by the VFS and overlay surfaces.
// All codes are negative by convention when rendered numerically; Code(0)
// is reserved to mean "no error" and is never returned by this package.
type Code int

const (
	CodeInvalidParameter Code = -(iota + 1)
	CodeNotFound
	CodeIO
	CodeMemory
	CodeNotOpen
	CodeSeek
	CodeRead
	CodeFormat
	CodeDSTDecode
	CodeEOF
	CodeNotDir
	CodeIsDir
	CodeTooManyOpen
	CodeAccess
	CodeCancelled
)

func (c Code) String() string {
	switch c {
	case CodeInvalidParameter:
		return "INVALID_PARAMETER"
	case CodeNotFound:
		return "NOT_FOUND"
	case CodeIO:
		return "IO"
	case CodeMemory:
		return "MEMORY"
	case CodeNotOpen:
		return "NOT_OPEN"
	case CodeSeek:
		return "SEEK"
	case CodeRead:
		return "READ"
	case CodeFormat:
		return "FORMAT"
	case CodeDSTDecode:
		return "DST_DECODE"
	case CodeEOF:
		return "EOF"
	case CodeNotDir:
		return "NOT_DIR"
	case CodeIsDir:
		return "IS_DIR"
	case CodeTooManyOpen:
		return "TOO_MANY_OPEN"
	case CodeAccess:
		return "ACCESS"
	case CodeCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// Errno maps a Code to the nearest POSIX errno, for overlay implementations
// (FUSE/winfsp front-ends) that must return an errno rather than a Go error.
func (c Code) Errno() syscall.Errno {
	switch c {
	case CodeInvalidParameter:
		return syscall.EINVAL
	case CodeNotFound:
		return syscall.ENOENT
	case CodeIO, CodeRead, CodeDSTDecode:
		return syscall.EIO
	case CodeMemory:
		return syscall.ENOMEM
	case CodeNotOpen:
		return syscall.EBADF
	case CodeSeek:
		return syscall.EINVAL
	case CodeFormat:
		return syscall.EINVAL
	case CodeEOF:
		return 0
	case CodeNotDir:
		return syscall.ENOTDIR
	case CodeIsDir:
		return syscall.EISDIR
	case CodeTooManyOpen:
		return syscall.EMFILE
	case CodeAccess:
		return syscall.EACCES
	case CodeCancelled:
		return syscall.ECANCELED
	default:
		return syscall.EIO
	}
}

// Error is a Code carrying a human-readable detail message.
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string {
	return e.Code.String() + ": " + e.Msg
}

func newError(code Code, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}
