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

package vfs

import (
	"testing"

	"github.com/sa-tools/sacdvfs/sacdsrc"
)

func TestParsePathStereo(t *testing.T) {
	t.Parallel()

	ct, track, err := ParsePath("Stereo/01. Opening Theme.dsf")
	if err != nil {
		t.Fatalf("ParsePath: %v", err)
	}
	if ct != sacdsrc.ChannelTypeStereo {
		t.Fatalf("ct = %v, want stereo", ct)
	}
	if track != 1 {
		t.Fatalf("track = %d, want 1", track)
	}
}

func TestParsePathMultichannel(t *testing.T) {
	t.Parallel()

	ct, track, err := ParsePath("/Multi-channel/12. Finale.dsf")
	if err != nil {
		t.Fatalf("ParsePath: %v", err)
	}
	if ct != sacdsrc.ChannelTypeMultichannel {
		t.Fatalf("ct = %v, want multichannel", ct)
	}
	if track != 12 {
		t.Fatalf("track = %d, want 12", track)
	}
}

func TestParsePathRejectsBadInput(t *testing.T) {
	t.Parallel()

	cases := []string{"", "Stereo", "Bogus/01. Title.dsf", "Stereo/Title.dsf"}
	for _, c := range cases {
		if _, _, err := ParsePath(c); err != ErrBadVirtualPath {
			t.Errorf("ParsePath(%q) err = %v, want ErrBadVirtualPath", c, err)
		}
	}
}

func TestTrackFileNameFallsBackToTrackNN(t *testing.T) {
	t.Parallel()

	if got := TrackFileName(3, ""); got != "03. Track 03.dsf" {
		t.Fatalf("got %q", got)
	}
	if got := TrackFileName(3, "Overture"); got != "03. Overture.dsf" {
		t.Fatalf("got %q", got)
	}
}

func TestTrackFileNameSanitizesTitle(t *testing.T) {
	t.Parallel()

	if got := TrackFileName(7, "A/B: Side Two"); got != "07. A_B_ Side Two.dsf" {
		t.Fatalf("got %q", got)
	}
}
