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
	"log"
	"time"
)

// CleanupIdle walks the mount table and, for every mount with a live VFS
// context whose refCount is zero and whose idle time exceeds
// Config.CacheTimeoutSeconds, flushes any unsaved ID3 state and closes the
// underlying VFS. The mount entry itself is retained so a later access
// re-opens it via ensureMounted, per §4.H. A non-positive
// CacheTimeoutSeconds disables cleanup entirely.
func (c *Context) CleanupIdle() {
	if c.cfg.CacheTimeoutSeconds <= 0 {
		return
	}
	timeout := time.Duration(c.cfg.CacheTimeoutSeconds) * time.Second
	now := time.Now()

	// Scan in least-recently-used order (SPEC_FULL.md §2): the LRU's key
	// order lets the scan check the most promising eviction candidates
	// first instead of walking the table in map order.
	c.tableMu.Lock()
	isoPaths := c.recent.Keys()
	candidates := make([]*mount, 0, len(isoPaths))
	for _, p := range isoPaths {
		if m, ok := c.mounts[p]; ok {
			candidates = append(candidates, m)
		}
	}
	c.tableMu.Unlock()

	for _, m := range candidates {
		m.mu.Lock()
		idle := m.ctx != nil && m.refCount == 0 && now.Sub(m.lastAccess) >= timeout
		ctx := m.ctx
		if idle {
			m.ctx = nil
		}
		m.mu.Unlock()

		if !idle {
			continue
		}
		if ctx.ID3.HasUnsavedChanges() {
			if err := ctx.ID3.Save(m.isoPath); err != nil {
				log.Printf("overlay: save id3 sidecar during idle cleanup for %s: %v", m.isoPath, err)
			}
		}
	}
}

// FlushAll walks the mount table and saves the ID3 sidecar for every mount
// with unsaved changes, regardless of idle state.
func (c *Context) FlushAll() {
	c.tableMu.Lock()
	candidates := make([]*mount, 0, len(c.mounts))
	for _, m := range c.mounts {
		candidates = append(candidates, m)
	}
	c.tableMu.Unlock()

	for _, m := range candidates {
		m.mu.Lock()
		ctx := m.ctx
		m.mu.Unlock()
		if ctx == nil || !ctx.ID3.HasUnsavedChanges() {
			continue
		}
		if err := ctx.ID3.Save(m.isoPath); err != nil {
			log.Printf("overlay: save id3 sidecar for %s: %v", m.isoPath, err)
		}
	}
}
