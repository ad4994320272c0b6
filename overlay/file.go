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
	"fmt"
	"log"
	"os"

	"github.com/sa-tools/sacdvfs/sacdsrc"
	"github.com/sa-tools/sacdvfs/vfs"
)

// fileKind distinguishes the two variants of File, replacing the C union's
// open_flags "this is a write handle" bit with a type-level split per
// design note "Tagged union file-handle".
type fileKind int

const (
	kindPassthrough fileKind = iota
	kindVirtual
)

// File is an opened overlay path: either a passthrough handle onto a real
// host file, or a virtual handle onto one (area, track) of a mounted SACD.
type File struct {
	kind fileKind

	// passthrough
	host *os.File

	// virtual
	handle         *vfs.Handle
	mount          *mount
	area           sacdsrc.ChannelType
	track          int
	metadataOffset int64
	scratch        []byte
	scratchDirty   bool
}

// Open resolves vpath to either a passthrough host file or a virtual
// (area, track) handle and opens it. writable only affects the
// passthrough branch; a virtual File always accepts writes (subject to the
// below-metadata-offset discard rule of §4.H) regardless of this flag,
// since the overlay must not break tools that rewrite a file without
// understanding the DSF format.
func (c *Context) Open(vpath string, writable bool) (*File, error) {
	if m, rel, ok := c.resolveMountPrefix(vpath); ok {
		if rel == "" {
			return nil, ErrIsDir
		}
		if err := c.ensureMounted(m); err != nil {
			return nil, err
		}
		ct, trackNum, err := vfs.ParsePath(rel)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, vpath)
		}
		handle, err := vfs.Open(m.ctx, rel)
		if err != nil {
			return nil, fmt.Errorf("open virtual file %s: %w", vpath, err)
		}
		m.acquire()
		return &File{
			kind:           kindVirtual,
			handle:         handle,
			mount:          m,
			area:           ct,
			track:          trackNum,
			metadataOffset: handle.Info().MetadataOffset,
		}, nil
	}

	hostPath, err := c.toHostPath(vpath)
	if err != nil {
		return nil, err
	}
	flags := os.O_RDONLY
	if writable {
		flags = os.O_RDWR
	}
	f, err := os.OpenFile(hostPath, flags, 0)
	if err != nil {
		return nil, fmt.Errorf("open host file %s: %w", vpath, err)
	}
	return &File{kind: kindPassthrough, host: f}, nil
}

// ReadAt reads len(p) bytes at offset, delegating to the host file or the
// VFS handle depending on which variant f is.
func (f *File) ReadAt(p []byte, offset int64) (int, error) {
	if f.kind == kindPassthrough {
		return f.host.ReadAt(p, offset)
	}
	return f.handle.ReadAt(p, offset)
}

// WriteAt writes p at offset. For a passthrough file this is a normal host
// write. For a virtual file, per §4.H and §7: bytes entirely below the
// synthetic file's metadata_offset are silently discarded (not an error);
// bytes at or beyond it are accumulated into a per-file ID3 scratch buffer,
// zero-padded over any gap, and marked dirty for the next Flush/Close.
func (f *File) WriteAt(p []byte, offset int64) (int, error) {
	if f.kind == kindPassthrough {
		return f.host.WriteAt(p, offset)
	}

	n := len(p)
	start := offset - f.metadataOffset
	data := p
	if start < 0 {
		skip := -start
		if skip >= int64(len(data)) {
			return n, nil // entirely below metadata_offset: discarded, not an error
		}
		data = data[skip:]
		start = 0
	}

	end := start + int64(len(data))
	if int64(len(f.scratch)) < end {
		grown := make([]byte, end)
		copy(grown, f.scratch)
		f.scratch = grown
	}
	copy(f.scratch[start:end], data)
	f.scratchDirty = true
	return n, nil
}

// Flush commits any pending ID3 scratch writes to the overlay's ID3 cache
// and persists the sidecar. It is also invoked by Close.
func (f *File) Flush() error {
	if f.kind == kindPassthrough {
		return f.host.Sync()
	}
	if !f.scratchDirty {
		return nil
	}
	f.mount.ctx.ID3.Set(f.area, f.track, f.scratch)
	f.scratchDirty = false
	// Per §7, a save failure here is logged only; Close (which always calls
	// Flush) must still release resources even if persistence failed.
	if err := f.mount.ctx.ID3.Save(f.mount.isoPath); err != nil {
		log.Printf("overlay: save id3 sidecar for %s: %v", f.mount.isoPath, err)
	}
	return nil
}

// Close flushes any pending ID3 writes and releases the underlying handle.
func (f *File) Close() error {
	flushErr := f.Flush()
	if f.kind == kindPassthrough {
		if err := f.host.Close(); err != nil {
			return err
		}
		return flushErr
	}
	closeErr := f.handle.Close()
	f.mount.release()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
