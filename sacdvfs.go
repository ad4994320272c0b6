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

// Package sacdvfs is the facade over this repository's subpackages: it
// wires the external collaborators (sacdsrc.Opener, a DST decoder factory,
// an ID3 renderer) to an overlay.Context and re-exports the handful of
// types a caller needs without reaching into overlay/vfs/sacdsrc directly.
package sacdvfs

import (
	"fmt"

	"github.com/sa-tools/sacdvfs/overlay"
	"github.com/sa-tools/sacdvfs/sacdsrc"
)

// Re-exported so callers need import only this package for the common path.
type (
	// Entry describes one directory entry as seen through the overlay.
	Entry = overlay.Entry
	// EntrySource distinguishes a passthrough mirror from a synthesized node.
	EntrySource = overlay.EntrySource
	// File is an opened overlay path, passthrough or virtual.
	File = overlay.File
	// Reader is the low-level SACD image reader a caller must supply.
	Reader = sacdsrc.Reader
	// Opener constructs a fresh Reader for one ISO path.
	Opener = sacdsrc.Opener
	// DSTDecoder decodes one DST-compressed frame.
	DSTDecoder = sacdsrc.DSTDecoder
	// DSTDecoderFactory constructs a fresh DSTDecoder per decode job.
	DSTDecoderFactory = sacdsrc.DSTDecoderFactory
	// ID3Renderer renders a fresh ID3v2 tag on an overlay cache miss.
	ID3Renderer = sacdsrc.ID3Renderer
)

const (
	// SourcePassthrough entries mirror a real host filesystem entry.
	SourcePassthrough = overlay.SourcePassthrough
	// SourceVirtual entries are synthesized by the SACD VFS.
	SourceVirtual = overlay.SourceVirtual
)

// Config bundles an overlay.Config with the collaborators it needs to open
// SACD images and render ID3 tags, matching the teacher's root-package
// facade style of flattening a subpackage's Config plus its dependencies
// into one entry point.
type Config struct {
	// SourceDir is the host directory the virtual filesystem shadows.
	SourceDir string

	// IsoExtensions is the extension bitmask recognized as candidate SACD
	// images. Zero defaults to both ".iso" and ".ISO".
	IsoExtensions overlay.ExtMask

	// MaxOpenISOs soft-caps the number of simultaneously registered
	// mounts; 0 means unlimited.
	MaxOpenISOs int

	// CacheTimeoutSeconds is the idle timeout before a mounted ISO's VFS
	// handle is lazily closed by CleanupIdle. Non-positive disables
	// cleanup.
	CacheTimeoutSeconds int

	// StereoVisible and MultichannelVisible hide an otherwise-available
	// area from directory listings when false. No default is applied: the
	// zero value false hides the area. The disc's only available area is
	// always shown regardless of these flags.
	StereoVisible       bool
	MultichannelVisible bool

	// ThreadPoolSize controls the shared MT decode pool: 0 = auto (4),
	// positive = exact worker count, negative = disable MT decoding.
	ThreadPoolSize int

	// Opener constructs a fresh SACD reader for one ISO path. Required.
	Opener Opener

	// DecoderFactory constructs a fresh DST decoder per decode job. May
	// be nil if every mounted disc's areas are raw DSD.
	DecoderFactory DSTDecoderFactory

	// Renderer renders an ID3v2 tag on a cache miss. Opening a track file
	// fetches its tag, so with a nil Renderer the open fails for any track
	// that has no cached or sidecar-loaded tag.
	Renderer ID3Renderer
}

// VFS is a mounted SACD overlay filesystem, ready to serve Readdir/Open/Stat
// calls against Config.SourceDir.
type VFS struct {
	ctx *overlay.Context
}

// Mount validates cfg and opens the overlay filesystem rooted at
// cfg.SourceDir. The returned VFS owns a shared MT thread pool (unless
// ThreadPoolSize is negative) that Close tears down.
func Mount(cfg Config) (*VFS, error) {
	ctx, err := overlay.NewContext(overlay.Config{
		SourceDir:           cfg.SourceDir,
		IsoExtensions:       cfg.IsoExtensions,
		MaxOpenISOs:         cfg.MaxOpenISOs,
		CacheTimeoutSeconds: cfg.CacheTimeoutSeconds,
		StereoVisible:       cfg.StereoVisible,
		MultichannelVisible: cfg.MultichannelVisible,
		ThreadPoolSize:      cfg.ThreadPoolSize,
	}, overlay.Collaborators{
		Opener:         cfg.Opener,
		DecoderFactory: cfg.DecoderFactory,
		Renderer:       cfg.Renderer,
	})
	if err != nil {
		return nil, fmt.Errorf("mount %s: %w", cfg.SourceDir, err)
	}
	return &VFS{ctx: ctx}, nil
}

// Readdir lists the virtual directory named by vpath, invoking cb once per
// entry; cb returning non-zero short-circuits the listing.
func (v *VFS) Readdir(vpath string, cb func(Entry) int) error {
	return v.ctx.Readdir(vpath, cb)
}

// Stat returns metadata for one virtual path.
func (v *VFS) Stat(vpath string) (Entry, error) {
	return v.ctx.Stat(vpath)
}

// Open opens vpath for reading, or for reading and writing when writable is
// true. A virtual file always accepts ID3 overlay writes regardless of
// writable; see File.WriteAt.
func (v *VFS) Open(vpath string, writable bool) (*File, error) {
	return v.ctx.Open(vpath, writable)
}

// CleanupIdle closes the VFS context of every mount that has been idle past
// Config.CacheTimeoutSeconds, flushing any unsaved ID3 changes first. A
// caller typically invokes this periodically from its own timer; it is not
// run automatically.
func (v *VFS) CleanupIdle() {
	v.ctx.CleanupIdle()
}

// Close flushes every mount's unsaved ID3 changes and shuts down the shared
// thread pool. It does not remove the host directory or any files.
func (v *VFS) Close() error {
	return v.ctx.Close()
}
