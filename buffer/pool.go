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

import "sync"

// Pool is a fixed-slot-size free list of buffers, protected by a mutex. It
// is itself refcounted so it may be retired (Uninit) while buffers it handed
// out are still outstanding; the pool's storage is only released once the
// caller has called Uninit and every outstanding slot has been Unref'd back
// to it.
type Pool struct {
	mu       sync.Mutex
	slotSize int
	alloc    func(size int) []byte
	idle     [][]byte
	outCount int
	retiring bool
}

// NewPool creates a pool of buffers each slotSize bytes. If alloc is nil,
// make([]byte, slotSize) is used.
func NewPool(slotSize int, alloc func(size int) []byte) *Pool {
	if alloc == nil {
		alloc = func(size int) []byte { return make([]byte, size) }
	}
	return &Pool{slotSize: slotSize, alloc: alloc}
}

// Get returns a writable buffer of the pool's slot size, popping an idle
// slot if one exists or allocating a new one otherwise. The returned Ref's
// free callback returns the slot to the pool on Unref (or, if the pool has
// been retired by then, drops the slot for real instead of recycling it).
func (p *Pool) Get() (*Ref, error) {
	p.mu.Lock()
	if p.retiring && len(p.idle) == 0 && p.outCount == 0 {
		p.mu.Unlock()
		return nil, ErrPoolRetired
	}
	var data []byte
	if n := len(p.idle); n > 0 {
		data = p.idle[n-1]
		p.idle = p.idle[:n-1]
	} else {
		data = p.alloc(p.slotSize)
	}
	p.outCount++
	p.mu.Unlock()

	return Create(data, p.release, nil, false), nil
}

func (p *Pool) release(data []byte, _ any) {
	p.mu.Lock()
	p.outCount--
	if p.retiring {
		// Retired pools do not recycle; drop the slot for real collection.
		p.mu.Unlock()
		return
	}
	p.idle = append(p.idle, data[:p.slotSize])
	p.mu.Unlock()
}

// Uninit flags the pool for retirement: no further slots are recycled, and
// any slots already idle are dropped immediately. The pool's bookkeeping
// struct itself is released for collection once every outstanding Ref has
// been Unref'd (Go's GC handles the actual reclamation; Uninit's contract is
// that no buffer belonging to this pool use-after-frees across retirement).
func (p *Pool) Uninit() {
	p.mu.Lock()
	p.retiring = true
	p.idle = nil
	p.mu.Unlock()
}

// SlotSize returns the pool's fixed slot size.
func (p *Pool) SlotSize() int {
	return p.slotSize
}

// Outstanding returns the number of slots currently checked out.
func (p *Pool) Outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outCount
}
