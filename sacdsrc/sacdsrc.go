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

// Package sacdsrc defines the interfaces this repository requires from its
// external collaborators: the low-level SACD reader, the DST frame decoder,
// and the ID3v2 tag renderer. None of these are implemented here; the core
// (vfs, overlay, id3xml) is built entirely against these seams so a caller
// can supply whichever concrete reader/codec/renderer it has.
package sacdsrc

// ChannelType distinguishes an SACD disc's two possible areas.
type ChannelType int

const (
	// ChannelTypeStereo is the 2-channel (or fewer) area.
	ChannelTypeStereo ChannelType = iota
	// ChannelTypeMultichannel is the up-to-6-channel area.
	ChannelTypeMultichannel
)

// FrameFormat distinguishes raw DSD frames from DST-compressed ones.
type FrameFormat int

const (
	// FrameFormatDSD indicates frames are already raw, uncompressed DSD.
	FrameFormatDSD FrameFormat = iota
	// FrameFormatDST indicates frames require decoding via a DSTDecoder.
	FrameFormatDST
)

// TrackInfo describes one track's frame range and optional metadata within
// an area's track table.
type TrackInfo struct {
	Number      int
	StartFrame  int64
	EndFrame    int64 // exclusive
	Title       string
	Artist      string
	Composer    string
	ISRC        string
	Genre       string
	DurationSec float64
}

// AreaInfo describes one SACD area: its availability, track table, and the
// raw audio parameters shared by every track in the area.
type AreaInfo struct {
	Available    bool
	ChannelCount int
	SampleRate   uint32
	FrameFormat  FrameFormat
	Tracks       []TrackInfo
}

// Reader is a per-open-file handle onto one SACD disc image. Implementations
// are not required to be safe for concurrent use by multiple goroutines;
// the VFS core opens one Reader per virtual file for exactly this reason.
type Reader interface {
	// Area returns the area descriptor for the given channel type. ok is
	// false if the disc has no such area.
	Area(ct ChannelType) (info AreaInfo, ok bool)

	// ReadFrame reads exactly one frame (raw DSD bytes, or an opaque
	// DST-compressed bytestream per AreaInfo.FrameFormat) at the given
	// absolute frame number within the given area. The returned slice is
	// owned by the caller; readers must not retain it.
	ReadFrame(ct ChannelType, frameNumber int64) ([]byte, error)

	// Close releases the reader's resources.
	Close() error
}

// Opener constructs a fresh, exclusively-owned Reader for the given ISO
// image path. The VFS core calls this once per opened virtual file so that
// concurrent opens of different files never contend on the same reader.
type Opener interface {
	Open(isoPath string) (Reader, error)
}

// DSTDecoder decodes one DST-compressed frame into its raw DSD equivalent.
// A decoder instance is not safe for concurrent use and is expected to be
// instantiated fresh per decode job in the multi-threaded pipeline, since
// the underlying codec keeps cross-frame predictor state that must not leak
// across unrelated streams.
type DSTDecoder interface {
	// Decode decodes one compressed frame of the given channel count,
	// writing the raw-DSD result (FrameSize*channelCount bytes) into dst.
	// dst must already be sized correctly by the caller.
	Decode(compressed []byte, channelCount int, dst []byte) error
}

// DSTDecoderFactory constructs a fresh DSTDecoder, one per decode job.
type DSTDecoderFactory func() DSTDecoder

// ID3Renderer renders a fresh ID3v2 tag for one (area, track) from disc
// metadata. It is consulted only on a cache miss in the ID3 overlay; once
// rendered, the bytes are cached until explicitly cleared.
type ID3Renderer interface {
	Render(ct ChannelType, track TrackInfo) ([]byte, error)
}
