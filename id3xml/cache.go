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

// Package id3xml implements the per-track ID3v2 overlay cache and its
// persistence to an XML sidecar file next to the source ISO.
package id3xml

import (
	"sync"

	"github.com/sa-tools/sacdvfs/sacdsrc"
)

// entry mirrors the C sa_id3_cache_entry_t: cached bytes plus the tri-state
// bookkeeping needed to decide what belongs in the sidecar on save.
type entry struct {
	data    []byte
	valid   bool
	dirty   bool
	fromXML bool
}

type areaKey struct {
	ct    sacdsrc.ChannelType
	track int
}

// Cache holds the editable ID3 overlay for every track of both areas of one
// opened disc. It is owned by, and safe to share across goroutines through,
// a single VFS context.
type Cache struct {
	mu       sync.Mutex
	entries  map[areaKey]*entry
	renderer sacdsrc.ID3Renderer
}

// NewCache creates an empty cache. renderer may be nil if the caller never
// intends to call Get for an uncached track (e.g. a read-only sidecar
// inspection tool).
func NewCache(renderer sacdsrc.ID3Renderer) *Cache {
	return &Cache{
		entries:  make(map[areaKey]*entry),
		renderer: renderer,
	}
}

// Get returns the current ID3 bytes for (ct, track). On a cache miss it
// renders fresh bytes via the configured ID3Renderer, caches a copy, and
// returns another copy; the caller owns the returned slice.
func (c *Cache) Get(ct sacdsrc.ChannelType, track sacdsrc.TrackInfo) ([]byte, error) {
	key := areaKey{ct, track.Number}

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && e.valid {
		out := make([]byte, len(e.data))
		copy(out, e.data)
		c.mu.Unlock()
		return out, nil
	}
	c.mu.Unlock()

	if c.renderer == nil {
		return nil, ErrNoRenderer
	}
	rendered, err := c.renderer.Render(ct, track)
	if err != nil {
		return nil, err
	}

	cached := make([]byte, len(rendered))
	copy(cached, rendered)
	c.mu.Lock()
	c.entries[key] = &entry{data: cached, valid: true, dirty: false, fromXML: false}
	c.mu.Unlock()

	out := make([]byte, len(rendered))
	copy(out, rendered)
	return out, nil
}

// Set replaces the cached bytes for (ct, track) and marks the entry valid
// and dirty.
func (c *Cache) Set(ct sacdsrc.ChannelType, trackNumber int, data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[areaKey{ct, trackNumber}] = &entry{data: cp, valid: true, dirty: true}
}

// Clear removes any overlay for (ct, track), marking the entry invalid and
// dirty so a subsequent Save knows to drop it from the sidecar.
func (c *Cache) Clear(ct sacdsrc.ChannelType, trackNumber int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := areaKey{ct, trackNumber}
	if e, ok := c.entries[key]; ok {
		e.data = nil
		e.valid = false
		e.dirty = true
		e.fromXML = false
		return
	}
	c.entries[key] = &entry{valid: false, dirty: true}
}

// HasUnsavedChanges reports whether any cache entry is dirty.
func (c *Cache) HasUnsavedChanges() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.dirty {
			return true
		}
	}
	return false
}
