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
	"github.com/sa-tools/sacdvfs/dsf"
	"github.com/sa-tools/sacdvfs/sacdsrc"
)

// fakeReader produces deterministic raw-DSD frame bytes for one stereo
// track, so byte-exactness of the synthesized DSF output can be verified
// without a real SACD image.
type fakeReader struct {
	channelCount int
	frameCount   int64
	format       sacdsrc.FrameFormat
}

func (r *fakeReader) Area(ct sacdsrc.ChannelType) (sacdsrc.AreaInfo, bool) {
	if ct != sacdsrc.ChannelTypeStereo {
		return sacdsrc.AreaInfo{}, false
	}
	return sacdsrc.AreaInfo{
		Available:    true,
		ChannelCount: r.channelCount,
		SampleRate:   2822400,
		FrameFormat:  r.format,
		Tracks: []sacdsrc.TrackInfo{
			{Number: 1, StartFrame: 0, EndFrame: r.frameCount, Title: "Test Track"},
		},
	}, true
}

func (r *fakeReader) ReadFrame(ct sacdsrc.ChannelType, frameNumber int64) ([]byte, error) {
	buf := make([]byte, dsf.FrameSize*r.channelCount)
	for i := range buf {
		buf[i] = byte(int64(i) + frameNumber)
	}
	return buf, nil
}

func (r *fakeReader) Close() error { return nil }

type fakeOpener struct {
	reader *fakeReader
}

func (o *fakeOpener) Open(string) (sacdsrc.Reader, error) {
	return o.reader, nil
}

type emptyRenderer struct{}

func (emptyRenderer) Render(sacdsrc.ChannelType, sacdsrc.TrackInfo) ([]byte, error) {
	return nil, nil
}

// fakeDecoder treats DST "compressed" bytes as already-raw for simplicity,
// since only the pipeline plumbing is under test, not a real DST algorithm.
type fakeDecoder struct{}

func (fakeDecoder) Decode(compressed []byte, channelCount int, dst []byte) error {
	copy(dst, compressed)
	return nil
}

func fakeDecoderFactory() sacdsrc.DSTDecoder { return fakeDecoder{} }
