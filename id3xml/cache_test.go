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

package id3xml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sa-tools/sacdvfs/sacdsrc"
)

func TestGetRendersAndCachesOnMiss(t *testing.T) {
	t.Parallel()

	var renderCalls int
	renderer := rendererFunc(func(sacdsrc.ChannelType, sacdsrc.TrackInfo) ([]byte, error) {
		renderCalls++
		return []byte("ID3rendered"), nil
	})
	c := NewCache(renderer)

	track := sacdsrc.TrackInfo{Number: 1}
	b1, err := c.Get(sacdsrc.ChannelTypeStereo, track)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	b2, err := c.Get(sacdsrc.ChannelTypeStereo, track)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(b1) != "ID3rendered" || string(b2) != "ID3rendered" {
		t.Fatalf("got %q, %q", b1, b2)
	}
	if renderCalls != 1 {
		t.Fatalf("renderer called %d times, want 1", renderCalls)
	}
}

func TestSetThenGetRoundTrip(t *testing.T) {
	t.Parallel()

	c := NewCache(nil)
	c.Set(sacdsrc.ChannelTypeStereo, 1, []byte("ID3\x04\x00\x00overlay"))

	got, err := c.Get(sacdsrc.ChannelTypeStereo, sacdsrc.TrackInfo{Number: 1})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "ID3\x04\x00\x00overlay" {
		t.Fatalf("got %q", got)
	}
	if !c.HasUnsavedChanges() {
		t.Fatal("expected HasUnsavedChanges after Set")
	}
}

func TestSidecarRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	isoPath := filepath.Join(dir, "disc.iso")

	c := NewCache(nil)
	payload := []byte("ID3\x04\x00\x00\x00\x00\x00\x00TT2\x00testtitle")
	c.Set(sacdsrc.ChannelTypeStereo, 1, payload)

	if err := c.Save(isoPath); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if c.HasUnsavedChanges() {
		t.Fatal("Save should clear dirty on every committed entry")
	}

	fresh := NewCache(nil)
	fresh.Load(isoPath)

	got, err := fresh.Get(sacdsrc.ChannelTypeStereo, sacdsrc.TrackInfo{Number: 1})
	if err != nil {
		t.Fatalf("Get after Load: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func TestSaveRemovesSidecarWhenNothingToPersist(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	isoPath := filepath.Join(dir, "disc.iso")
	sidecar := SidecarPath(isoPath)

	if err := os.WriteFile(sidecar, []byte("<stale/>"), 0o644); err != nil {
		t.Fatalf("seed stale sidecar: %v", err)
	}

	c := NewCache(nil)
	if err := c.Save(isoPath); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(sidecar); !os.IsNotExist(err) {
		t.Fatalf("sidecar still exists after Save with no entries: err=%v", err)
	}
}

func TestLoadToleratesMissingAndCorruptSidecar(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	isoPath := filepath.Join(dir, "disc.iso")

	c := NewCache(nil)
	c.Load(isoPath) // no sidecar at all
	if c.HasUnsavedChanges() {
		t.Fatal("Load of a missing sidecar should not mark anything dirty")
	}

	if err := os.WriteFile(SidecarPath(isoPath), []byte("not xml {{{"), 0o644); err != nil {
		t.Fatalf("write corrupt sidecar: %v", err)
	}
	c2 := NewCache(nil)
	c2.Load(isoPath) // should not panic or error
}

type rendererFunc func(sacdsrc.ChannelType, sacdsrc.TrackInfo) ([]byte, error)

func (f rendererFunc) Render(ct sacdsrc.ChannelType, tr sacdsrc.TrackInfo) ([]byte, error) {
	return f(ct, tr)
}
