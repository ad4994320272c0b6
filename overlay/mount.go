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
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sa-tools/sacdvfs/sacdsrc"
	"github.com/sa-tools/sacdvfs/vfs"
)

// mount is a lazy handle onto one ISO, per §3's "ISO mount". The probed
// area table is filled at registration; the VFS context (ctx) stays nil
// until ensureMounted creates it. Readdir of an area folder and opening a
// file inside one both call ensureMounted, and it creates ctx again after
// CleanupIdle has closed it.
type mount struct {
	mu sync.Mutex

	isoPath           string
	parentVirtualPath string
	displayName       string // collision-resolved base name, fixed at registration

	validated bool // set once, at registration, by the cheap SACD probe
	areas     map[sacdsrc.ChannelType]sacdsrc.AreaInfo

	ctx        *vfs.Context // nil until first use
	refCount   int
	lastAccess time.Time
}

// virtualPrefix is the full virtual directory path this mount's contents
// are rooted at.
func (m *mount) virtualPrefix() string {
	if m.parentVirtualPath == "/" || m.parentVirtualPath == "" {
		return "/" + m.displayName
	}
	return m.parentVirtualPath + "/" + m.displayName
}

// ensureMounted lazily opens the underlying VFS context the first time this
// mount is actually used for an area readdir or a file open (area/track metadata is already
// known from the registration-time probe), per §4.H's "ensure_iso_mounted"
// and design note "Lazy allocation with NULL-check idioms": mount.ctx ==
// nil means "open now". Idempotent, and also how a mount comes back to life
// after CleanupIdle has closed it.
func (c *Context) ensureMounted(m *mount) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastAccess = time.Now()
	c.recent.Get(m.isoPath) // touch recency so the idle-cleanup scan sees this mount as freshly used
	if m.ctx != nil {
		return nil
	}
	m.ctx = vfs.NewContext(m.isoPath, c.collab.Opener, c.collab.DecoderFactory, c.collab.Renderer, c.pool)
	return nil
}

// probeAreas is the cheap, no-vfs.Context SACD validity check of
// SPEC_FULL.md §3: open a throwaway reader, ask it for both areas, close
// it. A disc with no available area is not a valid SACD for our purposes
// and the caller falls back to passthrough.
func (c *Context) probeAreas(isoPath string) (map[sacdsrc.ChannelType]sacdsrc.AreaInfo, error) {
	reader, err := c.collab.Opener.Open(isoPath)
	if err != nil {
		return nil, fmt.Errorf("open sacd reader: %w", err)
	}
	defer reader.Close()

	out := make(map[sacdsrc.ChannelType]sacdsrc.AreaInfo, 2)
	for _, ct := range []sacdsrc.ChannelType{sacdsrc.ChannelTypeStereo, sacdsrc.ChannelTypeMultichannel} {
		if info, ok := reader.Area(ct); ok && info.Available {
			out[ct] = info
		}
	}
	return out, nil
}

func (m *mount) acquire() {
	m.mu.Lock()
	m.refCount++
	m.lastAccess = time.Now()
	m.mu.Unlock()
}

func (m *mount) release() {
	m.mu.Lock()
	if m.refCount > 0 {
		m.refCount--
	}
	m.lastAccess = time.Now()
	m.mu.Unlock()
}

// baseNameNoExt strips a trailing iso extension (case-insensitively) from a
// filename, leaving the candidate display name.
func baseNameNoExt(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext)
}

// registerOrResolve finds or creates the mount for an ISO discovered at
// hostPath during a readdir of parentVPath. seenNames tracks display names
// already emitted for this one readdir call, per SPEC_FULL.md §3's
// per-directory (not global) collision scope. validated reports whether the
// disc passed the cheap SACD probe; an unvalidated disc is not registered
// and the caller should fall back to passthrough.
func (c *Context) registerOrResolve(parentVPath, hostPath string, seenNames map[string]bool) (m *mount, validated bool, err error) {
	c.tableMu.Lock()
	if existing, ok := c.mounts[hostPath]; ok {
		c.tableMu.Unlock()
		return existing, existing.validated, nil
	}
	c.tableMu.Unlock()

	areas, probeErr := c.probeAreas(hostPath)
	if probeErr != nil || len(areas) == 0 {
		return nil, false, nil
	}

	base := baseNameNoExt(filepath.Base(hostPath))
	name := base
	for i := 1; seenNames[name]; i++ {
		name = base + " (" + strconv.Itoa(i) + ")"
	}

	c.tableMu.Lock()
	defer c.tableMu.Unlock()
	if existing, ok := c.mounts[hostPath]; ok {
		return existing, existing.validated, nil
	}
	if c.cfg.MaxOpenISOs > 0 && len(c.mounts) >= c.cfg.MaxOpenISOs {
		return nil, false, ErrTooManyOpen
	}

	m = &mount{
		isoPath:           hostPath,
		parentVirtualPath: parentVPath,
		displayName:       name,
		validated:         true,
		areas:             areas,
		lastAccess:        time.Now(),
	}
	c.mounts[hostPath] = m
	c.recent.Add(hostPath, struct{}{})
	return m, true, nil
}

// resolveMountPrefix finds the registered mount whose virtual prefix is a
// path-component-wise prefix of vpath, returning the remainder (possibly
// empty) below that prefix.
func (c *Context) resolveMountPrefix(vpath string) (m *mount, rel string, ok bool) {
	clean := "/" + strings.Trim(filepath.ToSlash(vpath), "/")

	c.tableMu.Lock()
	defer c.tableMu.Unlock()
	for _, cand := range c.mounts {
		if !cand.validated {
			continue
		}
		prefix := cand.virtualPrefix()
		switch {
		case clean == prefix:
			return cand, "", true
		case strings.HasPrefix(clean, prefix+"/"):
			return cand, strings.TrimPrefix(clean, prefix+"/"), true
		}
	}
	return nil, "", false
}
