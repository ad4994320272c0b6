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

// Package overlay implements the virtual filesystem of §4.H: a single
// logical namespace rooted at a host directory that shadows every file and
// directory it finds there unchanged, except that valid SACD ".iso" images
// are hidden at their original name and replaced with an expandable virtual
// folder whose contents (area subfolders, per-track synthetic DSF files) are
// produced by the vfs package.
package overlay

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sa-tools/sacdvfs/pathutil"
	"github.com/sa-tools/sacdvfs/sacdsrc"
	"github.com/sa-tools/sacdvfs/tpool"
)

// ExtMask is a bitmask over the host ISO filename extensions the overlay
// recognizes as candidate SACD images.
type ExtMask uint8

const (
	// ExtLower matches ".iso".
	ExtLower ExtMask = 1 << iota
	// ExtUpper matches ".ISO".
	ExtUpper
)

// ExtDefault recognizes both ".iso" and ".ISO", matching spec.md §6's
// default.
const ExtDefault = ExtLower | ExtUpper

func (m ExtMask) matches(ext string) bool {
	switch ext {
	case ".iso":
		return m&ExtLower != 0
	case ".ISO":
		return m&ExtUpper != 0
	default:
		return false
	}
}

// sidecarSuffix is the suffix an .iso.xml ID3 sidecar carries; readdir
// suppresses these per §4.H.
const sidecarSuffix = ".xml"

// Config configures one overlay Context. Every field is optional except
// SourceDir.
type Config struct {
	// SourceDir is the host directory this overlay shadows. Required.
	SourceDir string

	// IsoExtensions is the extension bitmask recognized as candidate SACD
	// images. Zero defaults to ExtDefault.
	IsoExtensions ExtMask

	// MaxOpenISOs soft-caps the number of simultaneously registered
	// mounts; 0 means unlimited, per spec.md §9's open question.
	MaxOpenISOs int

	// CacheTimeoutSeconds is the idle timeout before a mounted ISO's VFS
	// handle is lazily closed by CleanupIdle. Non-positive disables
	// cleanup.
	CacheTimeoutSeconds int

	// StereoVisible and MultichannelVisible hide an otherwise-available
	// area from directory listings when false. No default is applied: the
	// zero value false hides the area. If only one of the two areas exists
	// on a disc it is shown regardless of these flags (the single-area
	// fallback of §6).
	StereoVisible       bool
	MultichannelVisible bool

	// ThreadPoolSize controls the shared MT decode pool: 0 = auto (4),
	// positive = exact worker count, negative = disable MT decoding
	// entirely (every file falls back to single-threaded inline decode).
	ThreadPoolSize int
}

func (c Config) extMask() ExtMask {
	if c.IsoExtensions == 0 {
		return ExtDefault
	}
	return c.IsoExtensions
}

// Collaborators bundles the external seams a Context needs to open SACD
// images and render ID3 tags; these mirror vfs.NewContext's parameters
// exactly, since every mount ultimately constructs a vfs.Context of its
// own.
type Collaborators struct {
	Opener         sacdsrc.Opener
	DecoderFactory sacdsrc.DSTDecoderFactory
	Renderer       sacdsrc.ID3Renderer
}

// Context owns the mount table and the thread pool shared by every mounted
// ISO, per §3's "Overlay context".
type Context struct {
	cfg       Config
	root      string
	collab    Collaborators
	pool      *tpool.Pool // nil disables MT decoding for every mount
	tableMu   sync.Mutex
	mounts    map[string]*mount // keyed by absolute iso path
	recent    *lru.Cache[string, struct{}]
}

// NewContext validates cfg and constructs a Context. SourceDir must already
// exist and be a directory. The shared thread pool (if any) is created here
// and torn down by Close.
func NewContext(cfg Config, collab Collaborators) (*Context, error) {
	if cfg.SourceDir == "" {
		return nil, ErrInvalidConfig
	}
	root, err := filepath.Abs(cfg.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("resolve source_dir: %w", err)
	}
	if !pathutil.DirExists(root) {
		return nil, ErrInvalidConfig
	}

	var pool *tpool.Pool
	if cfg.ThreadPoolSize >= 0 {
		n := cfg.ThreadPoolSize
		if n == 0 {
			n = 4
		}
		pool = tpool.New(n)
	}

	cacheSize := cfg.MaxOpenISOs
	if cacheSize <= 0 {
		cacheSize = 1 << 16
	}
	recent, err := lru.New[string, struct{}](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("init idle-eviction cache: %w", err)
	}

	return &Context{
		cfg:    cfg,
		root:   root,
		collab: collab,
		pool:   pool,
		mounts: make(map[string]*mount),
		recent: recent,
	}, nil
}

// Close shuts down the shared thread pool and, for every registered mount
// with a live VFS context, flushes unsaved ID3 changes. It does not remove
// the host directory or any files.
func (c *Context) Close() error {
	c.FlushAll()
	if c.pool != nil {
		c.pool.Shutdown()
	}
	return nil
}

// toHostPath translates a virtual path to an absolute host path, rejecting
// any result that escapes the configured root. Grounded on
// pkg/iso9660/mounted_disc.go's ReadFileByName hardening: join then Clean
// then verify the cleaned path still has root as a prefix.
func (c *Context) toHostPath(vpath string) (string, error) {
	rel := strings.TrimPrefix(filepath.ToSlash(vpath), "/")
	full := filepath.Join(c.root, rel)
	cleaned := filepath.Clean(full)
	if cleaned != c.root && !strings.HasPrefix(cleaned, c.root+string(filepath.Separator)) {
		return "", &PathTraversalError{VirtualPath: vpath, ResolvedTo: cleaned, Root: c.root}
	}
	return cleaned, nil
}

// isSidecar reports whether name is an ID3 overlay sidecar file, which
// readdir always suppresses regardless of its paired ISO's validity.
func isSidecar(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".iso"+sidecarSuffix)
}

func (c *Context) isCandidateISO(name string) bool {
	ext := filepath.Ext(name)
	return c.cfg.extMask().matches(ext)
}

// EntrySource distinguishes a directory entry that mirrors a real host
// file/directory from one synthesized by the SACD VFS.
type EntrySource int

const (
	// SourcePassthrough entries mirror a real host filesystem entry.
	SourcePassthrough EntrySource = iota
	// SourceVirtual entries are synthesized: an ISO's expanded folder, an
	// area subfolder, or a per-track synthetic DSF file.
	SourceVirtual
)

// Entry describes one directory entry as seen through the overlay,
// regardless of whether it is a passthrough mirror or a virtual
// synthesized node.
type Entry struct {
	Name    string
	IsDir   bool
	Size    int64
	ModTime time.Time
	Source  EntrySource
}
