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

// Package pathutil provides the filename sanitization, path composition,
// and filesystem probing helpers shared by the overlay filesystem and the
// vfs package's track-file naming.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// reservedChars are the filesystem-hostile characters replaced by "_" when
// sanitizing a filename component.
const reservedChars = `/\:*?"<>|`

// SanitizeFilename replaces characters that are unsafe across the common
// desktop filesystems, trims leading/trailing dots and whitespace, and
// substitutes "untitled" if nothing usable remains. Input is first
// normalized to NFC so combining-diacritic titles pulled from disc
// metadata compare and sort the same way a precomposed title would.
func SanitizeFilename(s string) string {
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case strings.ContainsRune(reservedChars, r):
			b.WriteByte('_')
		case unicode.IsControl(r):
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}

	out := strings.Trim(b.String(), ". \t\r\n")
	if out == "" {
		return "untitled"
	}
	return out
}

// MakePath composes base/subdir/filename.ext, sanitizing only the filename
// component; base and subdir are assumed to already be valid filesystem
// path segments supplied by the caller, not untrusted disc metadata.
func MakePath(base, subdir, filename, ext string) string {
	name := SanitizeFilename(filename)
	if ext != "" {
		name += "." + strings.TrimPrefix(ext, ".")
	}
	return filepath.Join(base, subdir, name)
}

// maxUniqueAttempts bounds UniquePath's probing to avoid spinning forever
// against a directory deliberately salted with every "name (N)" variant.
const maxUniqueAttempts = 64

// UniquePath returns name, or "name (1)", "name (2)", ... up to
// maxUniqueAttempts, skipping any candidate that already exists on disk
// (as dir/candidate[.ext]). If every candidate up to the limit collides,
// the last-tried candidate is returned anyway.
func UniquePath(dir, name, ext string) string {
	suffix := ""
	if ext != "" {
		suffix = "." + strings.TrimPrefix(ext, ".")
	}
	candidate := name
	for i := 0; i <= maxUniqueAttempts; i++ {
		if i > 0 {
			candidate = fmt.Sprintf("%s (%d)", name, i)
		}
		if !PathExists(filepath.Join(dir, candidate+suffix)) {
			return candidate
		}
	}
	return candidate
}

// PathExists reports whether path names any existing filesystem entry.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// DirExists reports whether path names an existing directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FileExists reports whether path names an existing, non-directory entry.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// MkdirP creates path and any missing parents, matching mkdir -p semantics.
// Go's os.MkdirAll is already UTF-8-clean on every supported platform (the
// runtime's syscall layer does its own wide-char conversion on Windows), so
// unlike the teacher's blockdevice_unix.go/blockdevice_windows.go split
// this needs no per-platform file.
func MkdirP(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir -p %s: %w", path, err)
	}
	return nil
}

// Utf8Strlcpy copies at most n bytes of s without splitting a multi-byte
// UTF-8 sequence, returning the (possibly shortened) prefix. It exists for
// parity with the C original's fixed-buffer copy helper; Go callers that
// just want a safely-truncated string should prefer this over a raw byte
// slice operation.
func Utf8Strlcpy(s string, n int) string {
	if len(s) <= n {
		return s
	}
	trunc := s[:n]
	for len(trunc) > 0 && !isUTF8Boundary(s, len(trunc)) {
		trunc = trunc[:len(trunc)-1]
	}
	return trunc
}

func isUTF8Boundary(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	// A continuation byte has the top two bits "10"; cutting before one
	// would split a multi-byte rune.
	return s[i]&0xC0 != 0x80
}

// defaultDelimiters are the delimiters ExtractFirstToken stops at when no
// explicit set is supplied: ";", "/", ",", and the literal " - " separator
// common in disc-embedded artist/title fields.
var defaultDelimiters = []string{";", "/", ",", " - "}

// ExtractFirstToken returns the right-trimmed prefix of s before the first
// occurrence of any delimiter in delims (or defaultDelimiters if delims is
// empty).
func ExtractFirstToken(s string, delims ...string) string {
	if len(delims) == 0 {
		delims = defaultDelimiters
	}
	cut := len(s)
	for _, d := range delims {
		if idx := strings.Index(s, d); idx != -1 && idx < cut {
			cut = idx
		}
	}
	return strings.TrimRight(s[:cut], " \t\r\n")
}
