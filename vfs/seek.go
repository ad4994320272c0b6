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
	"io"

	"github.com/sa-tools/sacdvfs/dsf"
)

// outputPerAlignmentGroup is the total audio-region byte span (across every
// channel) produced by one full 128-frame alignment group, the point at
// which frame and DSF-block boundaries guarantee bytesBuffered == 0.
func outputPerAlignmentGroup(channelCount int) int64 {
	return int64(dsf.OutputPerAlignmentGroup) * int64(channelCount)
}

// Seek computes the absolute target from offset/whence and repositions the
// handle. Per §4.E this is a fast no-op if the target equals the current
// position, since FUSE/winfsp-style front ends call Seek before every read.
func (h *Handle) Seek(offset int64, whence ...int) error {
	w := io.SeekStart
	if len(whence) > 0 {
		w = whence[0]
	}

	var target int64
	switch w {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = h.position + offset
	case io.SeekEnd:
		target = h.info.TotalSize + offset
	default:
		return newError(CodeInvalidParameter, "unknown whence")
	}
	if target < 0 {
		return ErrNegativeSeek
	}

	if target == h.position {
		return nil
	}

	h.transformOut = nil
	h.transformPos = 0
	h.pendingErr = nil

	switch h.classify(target) {
	case regionHeader:
		h.currentFrame = h.startFrame
		h.transform.Reset()
		h.seekSkipBytes = 0

	case regionAudio:
		audioOffset := target - h.info.HeaderSize
		perGroup := outputPerAlignmentGroup(h.info.ChannelCount)
		group := audioOffset / perGroup
		newFrame := h.startFrame + group*dsf.AlignmentGroupFrames
		if newFrame > h.endFrame {
			newFrame = h.endFrame
		}
		h.currentFrame = newFrame
		h.transform.Reset()
		h.seekSkipBytes = audioOffset - group*perGroup

	case regionMetadata:
		h.currentFrame = h.endFrame
		h.transform.Reset()
		h.seekSkipBytes = 0
	}

	h.position = target

	if h.mt != nil {
		if err := h.mt.seek(h.currentFrame); err != nil {
			return newError(CodeSeek, err.Error())
		}
	}

	return nil
}
