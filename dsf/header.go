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

// Package dsf builds synthetic Sony DSD Stream File headers and transforms
// raw byte-interleaved SACD frames into DSF's per-channel block-interleaved
// layout.
package dsf

import "encoding/binary"

// HeaderSize is the fixed size in bytes of the DSD+fmt+data prologue.
const HeaderSize = 92

// FrameSize is the per-channel byte size of one raw SACD frame
// (588 * 64 one-bit samples / 8 bits per byte).
const FrameSize = 4704

// BlockSize is the per-channel byte size of one DSF block.
const BlockSize = 4096

// channelTypeByCount maps a channel count to the DSF "channel type" field. Values
// outside the table (0 or >6) fall back to stereo (2), matching the
// "other -> 2" rule.
var channelTypeByCount = map[int]uint32{
	1: 1, // mono
	2: 2, // stereo
	3: 3,
	4: 4,
	5: 6,
	6: 7,
}

// AudioDataSize returns the total block-interleaved audio region size for N
// frames across C channels: ceil(N*FrameSize/BlockSize) * BlockSize * C.
func AudioDataSize(frameCount, channelCount int) int64 {
	n := int64(frameCount) * FrameSize
	blocks := (n + BlockSize - 1) / BlockSize
	return blocks * BlockSize * int64(channelCount)
}

// MetadataOffset returns HeaderSize + the audio region size.
func MetadataOffset(audioDataSize int64) int64 {
	return HeaderSize + audioDataSize
}

// BuildHeader emits the 92-byte DSD+fmt+data prologue for a synthetic DSF
// file with the given channel count, sample rate, frame count, and total
// file size (header + audio + ID3, with ID3 possibly absent). The metadata
// offset field is always populated, even when the ID3 region is empty, so a
// later ID3 write has a known destination.
func BuildHeader(channelCount int, sampleRate uint32, frameCount int, totalSize, metadataOffset int64) ([]byte, error) {
	if channelCount < 1 || channelCount > 6 {
		return nil, ErrInvalidChannelCount
	}
	audioSize := AudioDataSize(frameCount, channelCount)

	buf := make([]byte, HeaderSize)

	// DSD chunk.
	copy(buf[0:4], "DSD ")
	binary.LittleEndian.PutUint64(buf[4:12], 28)
	binary.LittleEndian.PutUint64(buf[12:20], uint64(totalSize))
	binary.LittleEndian.PutUint64(buf[20:28], uint64(metadataOffset))

	// fmt chunk.
	copy(buf[28:32], "fmt ")
	binary.LittleEndian.PutUint64(buf[32:40], 52)
	binary.LittleEndian.PutUint32(buf[40:44], 1) // format version
	binary.LittleEndian.PutUint32(buf[44:48], 0) // format id
	chanType := channelTypeByCount[channelCount]
	if chanType == 0 {
		chanType = 2
	}
	binary.LittleEndian.PutUint32(buf[48:52], chanType)
	binary.LittleEndian.PutUint32(buf[52:56], uint32(channelCount))
	binary.LittleEndian.PutUint32(buf[56:60], sampleRate)
	binary.LittleEndian.PutUint32(buf[60:64], 1) // bits per sample
	sampleCount := uint64(frameCount) * 588 * 8
	binary.LittleEndian.PutUint64(buf[64:72], sampleCount)
	binary.LittleEndian.PutUint32(buf[72:76], BlockSize)
	binary.LittleEndian.PutUint32(buf[76:80], 0) // reserved

	// data chunk header.
	copy(buf[80:84], "data")
	binary.LittleEndian.PutUint64(buf[84:92], uint64(12+audioSize))

	return buf, nil
}
