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

package dsf

import (
	"encoding/binary"
	"testing"
)

func TestAudioDataSizeStereo1Second(t *testing.T) {
	t.Parallel()

	// S1: C=2, N=75 -> 87*4096*2 = 712704.
	got := AudioDataSize(75, 2)
	want := int64(712704)
	if got != want {
		t.Fatalf("AudioDataSize(75,2) = %d, want %d", got, want)
	}
	if mo := MetadataOffset(got); mo != 712796 {
		t.Fatalf("MetadataOffset = %d, want 712796", mo)
	}
}

func TestAudioDataSizeMultichannel2Seconds(t *testing.T) {
	t.Parallel()

	// S2: C=6, N=150 -> 173*4096*6 = 4251648.
	got := AudioDataSize(150, 6)
	want := int64(4251648)
	if got != want {
		t.Fatalf("AudioDataSize(150,6) = %d, want %d", got, want)
	}
	if mo := MetadataOffset(got); mo != 4251740 {
		t.Fatalf("MetadataOffset = %d, want 4251740", mo)
	}
}

func TestBuildHeaderS1Layout(t *testing.T) {
	t.Parallel()

	audioSize := AudioDataSize(75, 2)
	metaOffset := MetadataOffset(audioSize)
	totalSize := metaOffset // no ID3

	hdr, err := BuildHeader(2, 2822400, 75, totalSize, metaOffset)
	if err != nil {
		t.Fatalf("BuildHeader: %v", err)
	}
	if len(hdr) != HeaderSize {
		t.Fatalf("len(hdr) = %d, want %d", len(hdr), HeaderSize)
	}
	if string(hdr[0:4]) != "DSD " {
		t.Fatalf("magic = %q, want %q", hdr[0:4], "DSD ")
	}
	gotTotal := binary.LittleEndian.Uint64(hdr[12:20])
	if gotTotal != 712796 {
		t.Fatalf("total size field = %d, want 712796", gotTotal)
	}
	gotMeta := binary.LittleEndian.Uint64(hdr[20:28])
	if gotMeta != 712796 {
		t.Fatalf("metadata offset field = %d, want 712796", gotMeta)
	}
	if string(hdr[28:32]) != "fmt " {
		t.Fatalf("fmt magic = %q", hdr[28:32])
	}
	if string(hdr[80:84]) != "data" {
		t.Fatalf("data magic = %q", hdr[80:84])
	}
	gotDataChunkSize := binary.LittleEndian.Uint64(hdr[84:92])
	if gotDataChunkSize != uint64(12+audioSize) {
		t.Fatalf("data chunk size = %d, want %d", gotDataChunkSize, 12+audioSize)
	}
}

func TestBuildHeaderRejectsInvalidChannelCount(t *testing.T) {
	t.Parallel()

	if _, err := BuildHeader(0, 2822400, 1, 100, 92); err != ErrInvalidChannelCount {
		t.Fatalf("err = %v, want ErrInvalidChannelCount", err)
	}
	if _, err := BuildHeader(7, 2822400, 1, 100, 92); err != ErrInvalidChannelCount {
		t.Fatalf("err = %v, want ErrInvalidChannelCount", err)
	}
}

func TestChannelTypeTableForValidCounts(t *testing.T) {
	t.Parallel()

	// Channel counts 1-6 are all valid per spec; verify the type code table
	// directly rather than through BuildHeader's validation.
	cases := map[int]uint32{1: 1, 2: 2, 3: 3, 4: 4, 5: 6, 6: 7}
	for count, want := range cases {
		if got := channelTypeByCount[count]; got != want {
			t.Errorf("channelTypeByCount[%d] = %d, want %d", count, got, want)
		}
	}
}
