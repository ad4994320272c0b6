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

// Package buffer provides a reference-counted byte buffer primitive and a
// fixed-slot-size pool built on top of it, modeled on FFmpeg's AVBuffer API.
package buffer

import "sync"

// FreeFunc releases the underlying storage of a buffer when its last
// reference is dropped. opaque is whatever value was passed to Create.
type FreeFunc func(data []byte, opaque any)

// shared is the refcounted storage backing one or more Refs. Only one shared
// exists per originally-allocated region; Refs clone the (data, size) view,
// never the storage.
type shared struct {
	mu       sync.Mutex
	data     []byte
	refCount int
	readOnly bool
	alloced  bool // true if created via Alloc/Allocz, allowing in-place Realloc
	free     FreeFunc
	opaque   any
}

// Ref is a reference to a buffer. Two Refs may share the same underlying
// shared storage while presenting different (data, size) slices of it, as
// happens when a pool hands out fewer bytes than the slot size requested, or
// when a caller narrows a view with Slice.
type Ref struct {
	s    *shared
	data []byte
}

// Create wraps caller-owned bytes in a new buffer with refcount 1. free is
// invoked exactly once, when the last reference is unreffed; it may be nil.
func Create(data []byte, free FreeFunc, opaque any, readOnly bool) *Ref {
	s := &shared{
		data:     data,
		refCount: 1,
		readOnly: readOnly,
		free:     free,
		opaque:   opaque,
	}
	return &Ref{s: s, data: data}
}

// Alloc allocates a new owning, writable buffer of the given size.
func Alloc(size int) *Ref {
	return newAlloced(make([]byte, size))
}

// Allocz allocates a new owning, writable, zeroed buffer of the given size.
// Go's make already zeroes, so Allocz is equivalent to Alloc; it exists so
// call sites can document the zero-fill requirement explicitly.
func Allocz(size int) *Ref {
	return newAlloced(make([]byte, size))
}

func newAlloced(data []byte) *Ref {
	s := &shared{
		data:     data,
		refCount: 1,
		alloced:  true,
	}
	return &Ref{s: s, data: data}
}

// Ref returns a new reference to the same underlying buffer, incrementing
// the shared refcount. The new Ref sees the same (data, size) slice as r.
func (r *Ref) Ref() *Ref {
	r.s.mu.Lock()
	r.s.refCount++
	r.s.mu.Unlock()
	return &Ref{s: r.s, data: r.data}
}

// Unref decrements the refcount; on reaching zero it invokes the free
// callback exactly once. Unref is idempotent-safe to call on a nil Ref.
func (r *Ref) Unref() {
	if r == nil {
		return
	}
	r.s.mu.Lock()
	r.s.refCount--
	n := r.s.refCount
	data := r.s.data
	free := r.s.free
	opaque := r.s.opaque
	r.s.mu.Unlock()
	if n == 0 && free != nil {
		free(data, opaque)
	}
}

// RefCount returns the current reference count of the underlying buffer.
func (r *Ref) RefCount() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.refCount
}

// Data returns this reference's byte slice view.
func (r *Ref) Data() []byte {
	return r.data
}

// Opaque returns the opaque value supplied at creation time.
func (r *Ref) Opaque() any {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.opaque
}

// IsWritable reports whether the buffer may be mutated in place: not
// read-only and exclusively referenced.
func (r *Ref) IsWritable() bool {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return !r.s.readOnly && r.s.refCount == 1
}

// MakeWritable ensures *refp is writable, cloning into a fresh owning buffer
// on contention (refcount > 1) or read-only storage. It replaces *refp with
// the writable reference and unrefs the original if a clone was made.
func MakeWritable(refp **Ref) error {
	r := *refp
	if r.IsWritable() {
		return nil
	}
	clone := Alloc(len(r.data))
	copy(clone.data, r.data)
	r.Unref()
	*refp = clone
	return nil
}

// Realloc resizes *refp to size. It resizes in place only when the buffer
// was created by Alloc/Allocz, is currently writable, and this reference's
// view still covers the entire underlying storage; otherwise it allocates a
// new buffer, copies min(old, new) bytes, and replaces *refp.
func Realloc(refp **Ref, size int) error {
	r := *refp
	r.s.mu.Lock()
	inPlace := r.s.alloced && !r.s.readOnly && r.s.refCount == 1 && len(r.data) == len(r.s.data)
	r.s.mu.Unlock()

	if inPlace {
		r.s.mu.Lock()
		old := r.s.data
		grown := make([]byte, size)
		copy(grown, old)
		r.s.data = grown
		r.s.mu.Unlock()
		r.data = grown
		return nil
	}

	fresh := Alloc(size)
	n := len(r.data)
	if size < n {
		n = size
	}
	copy(fresh.data, r.data[:n])
	r.Unref()
	*refp = fresh
	return nil
}

// Slice narrows r's view to data[off:off+n]. The returned Ref shares storage
// with r and holds one additional reference on it (the shared refcount is
// incremented), so the caller must Unref it independently of r once it is
// done with the view.
func (r *Ref) Slice(off, n int) *Ref {
	r.s.mu.Lock()
	r.s.refCount++
	r.s.mu.Unlock()
	return &Ref{s: r.s, data: r.data[off : off+n]}
}
