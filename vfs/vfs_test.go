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
	"bytes"
	"testing"

	"github.com/sa-tools/sacdvfs/dsf"
	"github.com/sa-tools/sacdvfs/sacdsrc"
	"github.com/sa-tools/sacdvfs/tpool"
)

func readAll(t *testing.T, h *Handle) []byte {
	t.Helper()
	total := h.Info().TotalSize
	out := make([]byte, 0, total)
	var pos int64
	buf := make([]byte, 4097) // deliberately not block-aligned
	for pos < total {
		n, err := h.ReadAt(buf, pos)
		out = append(out, buf[:n]...)
		pos += int64(n)
		if n == 0 || err != nil {
			break
		}
	}
	return out
}

func openStereoDSD(t *testing.T, frameCount int64, pool *tpool.Pool) *Handle {
	t.Helper()
	reader := &fakeReader{channelCount: 2, frameCount: frameCount, format: sacdsrc.FrameFormatDSD}
	ctx := NewContext("fake.iso", &fakeOpener{reader: reader}, nil, emptyRenderer{}, pool)
	h, err := Open(ctx, "Stereo/01. Track.dsf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return h
}

// TestHeaderByteExactness mirrors the S1 scenario (2 channels, 75 frames):
// a 92-byte header whose DSD-chunk total-size and metadata-offset fields
// match the hand-computed audio region size.
func TestHeaderByteExactness(t *testing.T) {
	t.Parallel()

	h := openStereoDSD(t, 75, nil)
	defer h.Close()

	info := h.Info()
	const wantAudioSize = 712704
	const wantMetaOffset = dsf.HeaderSize + wantAudioSize

	if info.AudioDataSize != wantAudioSize {
		t.Fatalf("AudioDataSize = %d, want %d", info.AudioDataSize, wantAudioSize)
	}
	if info.MetadataOffset != wantMetaOffset {
		t.Fatalf("MetadataOffset = %d, want %d", info.MetadataOffset, wantMetaOffset)
	}
	if info.TotalSize != wantMetaOffset {
		t.Fatalf("TotalSize = %d, want %d (no ID3 tag)", info.TotalSize, wantMetaOffset)
	}

	wantHeader, err := dsf.BuildHeader(2, 2822400, 75, wantMetaOffset, wantMetaOffset)
	if err != nil {
		t.Fatalf("BuildHeader: %v", err)
	}

	got := make([]byte, dsf.HeaderSize)
	n, err := h.ReadAt(got, 0)
	if err != nil {
		t.Fatalf("ReadAt(header): %v", err)
	}
	if n != dsf.HeaderSize {
		t.Fatalf("ReadAt returned %d bytes, want %d", n, dsf.HeaderSize)
	}
	if !bytes.Equal(got, wantHeader) {
		t.Fatalf("header mismatch:\ngot  % x\nwant % x", got, wantHeader)
	}
}

// TestSeekThenReadMatchesSlice verifies the §8 equivalence property: reading
// a byte range via Seek+ReadAt yields the same bytes as reading the whole
// file and slicing it, across the header/audio region boundary and multiple
// alignment groups.
func TestSeekThenReadMatchesSlice(t *testing.T) {
	t.Parallel()

	const frameCount = 300 // spans more than two 128-frame alignment groups

	full := readAll(t, openStereoDSD(t, frameCount, nil))

	cases := []struct {
		name        string
		offset, len int64
	}{
		{"within header", 10, 20},
		{"header tail into audio", 80, 64},
		{"mid audio", 500000, 8192},
		{"near alignment boundary", dsf.HeaderSize + dsf.OutputPerAlignmentGroup*2 - 50, 200},
		{"tail", int64(len(full)) - 100, 100},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			h := openStereoDSD(t, frameCount, nil)
			defer h.Close()

			got := make([]byte, c.len)
			n, err := h.ReadAt(got, c.offset)
			if err != nil {
				t.Fatalf("ReadAt: %v", err)
			}
			want := full[c.offset : c.offset+int64(n)]
			if !bytes.Equal(got[:n], want) {
				t.Fatalf("seek+read at %d len %d mismatch:\ngot  % x\nwant % x", c.offset, c.len, got[:n], want)
			}
		})
	}
}

// TestShortSeekNearEndReturnsPartial is the S4 boundary scenario: seeking to
// 10 bytes before EOF and requesting 100 bytes returns exactly 10.
func TestShortSeekNearEndReturnsPartial(t *testing.T) {
	t.Parallel()

	h := openStereoDSD(t, 75, nil)
	defer h.Close()

	total := h.Info().TotalSize
	buf := make([]byte, 100)
	n, err := h.ReadAt(buf, total-10)
	if err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if n != 10 {
		t.Fatalf("n = %d, want 10", n)
	}
}

// TestMultiThreadedDecodeMatchesSingleThreaded is the S3 property: decoding
// the same DST-compressed source through the multi-threaded pipeline and
// through the inline single-threaded decoder must produce byte-identical
// output.
func TestMultiThreadedDecodeMatchesSingleThreaded(t *testing.T) {
	t.Parallel()

	const frameCount = 400 // several alignment groups plus a partial tail

	openDST := func(pool *tpool.Pool) *Handle {
		reader := &fakeReader{channelCount: 1, frameCount: frameCount, format: sacdsrc.FrameFormatDST}
		ctx := NewContext("fake.iso", &fakeOpener{reader: reader}, fakeDecoderFactory, emptyRenderer{}, pool)
		h, err := Open(ctx, "Stereo/01. Track.dsf")
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		return h
	}

	single := openDST(nil)
	singleOut := readAll(t, single)
	single.Close()

	pool := tpool.New(4)
	mt := openDST(pool)
	mtOut := readAll(t, mt)
	mt.Close()
	pool.Shutdown()

	if len(singleOut) != len(mtOut) {
		t.Fatalf("length mismatch: single=%d mt=%d", len(singleOut), len(mtOut))
	}
	if !bytes.Equal(singleOut, mtOut) {
		t.Fatalf("multi-threaded decode diverged from single-threaded decode")
	}
}

func TestSeekBackwardAcrossAlignmentGroupRereadsConsistently(t *testing.T) {
	t.Parallel()

	const frameCount = 260
	full := readAll(t, openStereoDSD(t, frameCount, nil))

	h := openStereoDSD(t, frameCount, nil)
	defer h.Close()

	tail := make([]byte, 1000)
	if _, err := h.ReadAt(tail, int64(len(full))-1000); err != nil {
		t.Fatalf("ReadAt tail: %v", err)
	}

	front := make([]byte, 1000)
	n, err := h.ReadAt(front, dsf.HeaderSize)
	if err != nil {
		t.Fatalf("ReadAt after seek back: %v", err)
	}
	if !bytes.Equal(front[:n], full[dsf.HeaderSize:dsf.HeaderSize+int64(n)]) {
		t.Fatalf("re-read after backward seek mismatch")
	}
}
