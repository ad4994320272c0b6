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
	"os"
	"path/filepath"
	"strings"

	"github.com/sa-tools/sacdvfs/sacdsrc"
	"github.com/sa-tools/sacdvfs/vfs"
)

// Readdir lists the virtual directory named by vpath, invoking cb once per
// entry. cb returning non-zero short-circuits the listing, matching the C
// readdir callback convention of §4.H.
func (c *Context) Readdir(vpath string, cb func(Entry) int) error {
	if m, rel, ok := c.resolveMountPrefix(vpath); ok {
		return c.readdirVirtual(m, rel, cb)
	}
	return c.readdirHost(vpath, cb)
}

func (c *Context) readdirHost(vpath string, cb func(Entry) int) error {
	hostDir, err := c.toHostPath(vpath)
	if err != nil {
		return err
	}
	info, err := os.Stat(hostDir)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, vpath)
	}
	if !info.IsDir() {
		return ErrNotDir
	}

	des, err := os.ReadDir(hostDir)
	if err != nil {
		return fmt.Errorf("read host directory %s: %w", hostDir, err)
	}

	seen := make(map[string]bool, len(des))
	for _, de := range des {
		name := de.Name()

		if !de.IsDir() {
			if isSidecar(name) {
				continue
			}
			if c.isCandidateISO(name) {
				hostPath := filepath.Join(hostDir, name)
				m, validated, regErr := c.registerOrResolve(vpath, hostPath, seen)
				if regErr == nil && validated {
					seen[m.displayName] = true
					if cb(Entry{Name: m.displayName, IsDir: true, Source: SourceVirtual}) != 0 {
						return nil
					}
					continue
				}
				// Invalid SACD or registration error (e.g. too-many-open):
				// fall through to passthrough so the raw .iso is still
				// visible rather than silently disappearing.
			}
		}

		fi, statErr := de.Info()
		if statErr != nil {
			continue
		}
		if cb(Entry{Name: name, IsDir: de.IsDir(), Size: fi.Size(), ModTime: fi.ModTime(), Source: SourcePassthrough}) != 0 {
			return nil
		}
	}
	return nil
}

func (c *Context) readdirVirtual(m *mount, rel string, cb func(Entry) int) error {
	if err := c.ensureMounted(m); err != nil {
		return err
	}

	rel = strings.Trim(rel, "/")
	switch rel {
	case "":
		for _, ct := range []sacdsrc.ChannelType{sacdsrc.ChannelTypeStereo, sacdsrc.ChannelTypeMultichannel} {
			if !c.areaVisible(m, ct) {
				continue
			}
			if cb(Entry{Name: vfs.AreaDirName(ct), IsDir: true, Source: SourceVirtual}) != 0 {
				return nil
			}
		}
		return nil

	case "Stereo", "Multi-channel":
		ct := sacdsrc.ChannelTypeStereo
		if rel == "Multi-channel" {
			ct = sacdsrc.ChannelTypeMultichannel
		}
		area, ok := m.areas[ct]
		if !ok {
			return ErrNotFound
		}
		for _, tr := range area.Tracks {
			name := vfs.TrackFileName(tr.Number, tr.Title)
			if cb(Entry{Name: name, IsDir: false, Source: SourceVirtual}) != 0 {
				return nil
			}
		}
		return nil

	default:
		return ErrNotFound
	}
}

// areaVisible implements §6's visibility rule: an area whose visibility
// flag is disabled is shown anyway if it is the disc's only available area
// (the single-area fallback).
func (c *Context) areaVisible(m *mount, ct sacdsrc.ChannelType) bool {
	if _, ok := m.areas[ct]; !ok {
		return false
	}
	if len(m.areas) == 1 {
		return true
	}
	if ct == sacdsrc.ChannelTypeStereo {
		return c.cfg.StereoVisible
	}
	return c.cfg.MultichannelVisible
}

// Stat returns metadata for one virtual path, using the same classification
// logic as Readdir.
func (c *Context) Stat(vpath string) (Entry, error) {
	clean := "/" + strings.Trim(filepath.ToSlash(vpath), "/")
	if clean == "/" {
		return Entry{Name: "/", IsDir: true, Source: SourcePassthrough}, nil
	}

	parent := normalizeDir(filepath.Dir(clean))
	leaf := filepath.Base(clean)

	var found *Entry
	err := c.Readdir(parent, func(e Entry) int {
		if e.Name == leaf {
			cp := e
			found = &cp
			return 1
		}
		return 0
	})
	if err != nil {
		return Entry{}, err
	}
	if found == nil {
		return Entry{}, ErrNotFound
	}
	return *found, nil
}

func normalizeDir(p string) string {
	if p == "." {
		return "/"
	}
	return p
}
