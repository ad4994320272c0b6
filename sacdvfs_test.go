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

package sacdvfs_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sa-tools/sacdvfs"
	"github.com/sa-tools/sacdvfs/sacdsrc"
)

var errNotSACD = errors.New("fakeOpener: not a valid SACD image")

const validMagic = "VALIDSACD"

type fakeReader struct{}

func (fakeReader) Area(ct sacdsrc.ChannelType) (sacdsrc.AreaInfo, bool) {
	if ct != sacdsrc.ChannelTypeStereo {
		return sacdsrc.AreaInfo{}, false
	}
	return sacdsrc.AreaInfo{
		Available:    true,
		ChannelCount: 2,
		SampleRate:   2822400,
		FrameFormat:  sacdsrc.FrameFormatDSD,
		Tracks:       []sacdsrc.TrackInfo{{Number: 1, StartFrame: 0, EndFrame: 75, Title: "Intro"}},
	}, true
}

func (fakeReader) ReadFrame(sacdsrc.ChannelType, int64) ([]byte, error) {
	return make([]byte, 4704*2), nil
}

func (fakeReader) Close() error { return nil }

type emptyRenderer struct{}

func (emptyRenderer) Render(sacdsrc.ChannelType, sacdsrc.TrackInfo) ([]byte, error) {
	return nil, nil
}

type fakeOpener struct{}

func (fakeOpener) Open(path string) (sacdsrc.Reader, error) {
	data, err := os.ReadFile(path) //nolint:gosec // test fixture path
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(data, []byte(validMagic)) {
		return nil, errNotSACD
	}
	return fakeReader{}, nil
}

// TestMountAndReaddir exercises the facade end to end: mount a directory
// holding one valid SACD ISO and one plain file, and confirm the overlay's
// virtual expansion is visible through the top-level VFS type alone.
func TestMountAndReaddir(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "disc.iso"), []byte(validMagic), 0o644); err != nil {
		t.Fatalf("write iso: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "readme.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("write txt: %v", err)
	}

	v, err := sacdvfs.Mount(sacdvfs.Config{
		SourceDir:      root,
		ThreadPoolSize: -1,
		Opener:         fakeOpener{},
		Renderer:       emptyRenderer{},
	})
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer v.Close()

	var names []string
	if err := v.Readdir("/", func(e sacdvfs.Entry) int {
		names = append(names, e.Name)
		return 0
	}); err != nil {
		t.Fatalf("Readdir: %v", err)
	}

	want := map[string]bool{"disc": true, "readme.txt": true}
	if len(names) != len(want) {
		t.Fatalf("got %v, want entries for %v", names, want)
	}
	for _, n := range names {
		if !want[n] {
			t.Errorf("unexpected entry %q", n)
		}
	}

	f, err := v.Open("/disc/Stereo/01. Intro.dsf", false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	buf := make([]byte, 4)
	if _, err := f.ReadAt(buf, 0); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if string(buf) != "DSD " {
		t.Fatalf("got %q, want \"DSD \"", buf)
	}
}

// TestMountRejectsMissingSourceDir confirms Mount validates its Config
// before touching the filesystem further.
func TestMountRejectsMissingSourceDir(t *testing.T) {
	_, err := sacdvfs.Mount(sacdvfs.Config{
		SourceDir: filepath.Join(t.TempDir(), "does-not-exist"),
		Opener:    fakeOpener{},
	})
	if err == nil {
		t.Fatal("expected error for missing source_dir")
	}
}
