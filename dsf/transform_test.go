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

import "testing"

func TestBitReverseTableIsInvolution(t *testing.T) {
	t.Parallel()

	for i := range 256 {
		r := bitReverseTable[i]
		if bitReverseTable[r] != byte(i) {
			t.Fatalf("bitReverseTable is not self-inverse at %d", i)
		}
	}
	if bitReverseTable[0x80] != 0x01 {
		t.Fatalf("bitReverseTable[0x80] = %#x, want 0x01", bitReverseTable[0x80])
	}
}

func TestTransformerRealignsEveryAlignmentGroup(t *testing.T) {
	t.Parallel()

	const channels = 2
	tr := NewTransformer(channels)

	frame := make([]byte, FrameSize*channels)
	for i := range frame {
		frame[i] = byte(i)
	}

	var total []byte
	for range AlignmentGroupFrames {
		total = append(total, tr.PushFrame(frame)...)
	}

	if tr.BytesBuffered() != 0 {
		t.Fatalf("bytesBuffered after one alignment group = %d, want 0", tr.BytesBuffered())
	}
	if len(total) != OutputPerAlignmentGroup*channels {
		t.Fatalf("output len = %d, want %d", len(total), OutputPerAlignmentGroup*channels)
	}
}

func TestTransformerFlushPadsPartialBlock(t *testing.T) {
	t.Parallel()

	tr := NewTransformer(1)
	frame := make([]byte, FrameSize)
	tr.PushFrame(frame)

	if tr.BytesBuffered() == 0 {
		t.Fatal("expected partial buffering after a single frame")
	}

	out := tr.Flush()
	if len(out) != BlockSize {
		t.Fatalf("len(Flush()) = %d, want %d", len(out), BlockSize)
	}
	if tr.BytesBuffered() != 0 {
		t.Fatal("Flush should reset bytesBuffered")
	}

	// Tail beyond what was written should be zero-padded.
	for i := FrameSize - BlockSize; i < BlockSize; i++ {
		if out[i] != 0 {
			t.Fatalf("out[%d] = %d, want 0 (padding)", i, out[i])
		}
	}
}

func TestTransformerFlushNoopWhenEmpty(t *testing.T) {
	t.Parallel()

	tr := NewTransformer(2)
	if out := tr.Flush(); out != nil {
		t.Fatalf("Flush() on empty transformer = %v, want nil", out)
	}
}

func TestTransformerBitReversesEachByte(t *testing.T) {
	t.Parallel()

	tr := NewTransformer(1)
	frame := make([]byte, FrameSize)
	frame[0] = 0x80
	frame[1] = 0x01
	out := tr.Flush() // nothing buffered yet
	if out != nil {
		t.Fatal("unexpected output before pushing a frame")
	}
	out = tr.PushFrame(frame)
	if out[0] != 0x01 {
		t.Fatalf("out[0] = %#x, want 0x01", out[0])
	}
	if out[1] != 0x80 {
		t.Fatalf("out[1] = %#x, want 0x80", out[1])
	}
}
