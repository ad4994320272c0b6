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
	"path"
	"strconv"
	"strings"

	"github.com/sa-tools/sacdvfs/pathutil"
	"github.com/sa-tools/sacdvfs/sacdsrc"
)

// AreaDirName returns the directory name used for one channel type within
// the VFS: "Stereo" or "Multi-channel".
func AreaDirName(ct sacdsrc.ChannelType) string {
	if ct == sacdsrc.ChannelTypeMultichannel {
		return "Multi-channel"
	}
	return "Stereo"
}

// ParsePath parses a VFS-relative file path of the form
// "<Area>/NN. <Title>.dsf" into an area and track number, per §4.E open
// step 1. The title portion is ignored for routing purposes: only the
// decimal number before the first "." determines the track.
func ParsePath(vpath string) (sacdsrc.ChannelType, int, error) {
	clean := strings.Trim(path.Clean("/"+vpath), "/")
	parts := strings.SplitN(clean, "/", 2)
	if len(parts) != 2 {
		return 0, 0, ErrBadVirtualPath
	}

	var ct sacdsrc.ChannelType
	switch parts[0] {
	case "Stereo":
		ct = sacdsrc.ChannelTypeStereo
	case "Multi-channel":
		ct = sacdsrc.ChannelTypeMultichannel
	default:
		return 0, 0, ErrBadVirtualPath
	}

	name := parts[1]
	dot := strings.Index(name, ".")
	if dot < 1 {
		return 0, 0, ErrBadVirtualPath
	}
	num, err := strconv.Atoi(name[:dot])
	if err != nil || num < 0 {
		return 0, 0, ErrBadVirtualPath
	}
	return ct, num, nil
}

// TrackFileName builds the "NN. <Title>.dsf" leaf name for one track,
// falling back to "Track NN" when the title is empty. The title is routed
// through pathutil.SanitizeFilename per §4.I/§6 since it comes from
// disc-embedded metadata and may contain characters that are hostile to a
// filesystem path component (e.g. "/" or ":").
func TrackFileName(trackNumber int, title string) string {
	if title == "" {
		title = "Track " + pad2(trackNumber)
	} else {
		title = pathutil.SanitizeFilename(title)
	}
	return pad2(trackNumber) + ". " + title + ".dsf"
}

func pad2(n int) string {
	s := strconv.Itoa(n)
	if len(s) < 2 {
		return "0" + s
	}
	return s
}
