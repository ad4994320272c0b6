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

// Package vfs implements the SACD virtual-file engine: it presents one
// (area, track) pair of an opened SACD image as a synthetic DSF byte
// stream, manufacturing the header, transforming raw or DST-decoded frames
// into DSF's block-interleaved layout, and overlaying an editable ID3 tail.
package vfs

import (
	"fmt"

	"github.com/sa-tools/sacdvfs/dsf"
	"github.com/sa-tools/sacdvfs/id3xml"
	"github.com/sa-tools/sacdvfs/sacdsrc"
	"github.com/sa-tools/sacdvfs/tpool"
)

// Context owns everything shared across files opened from one SACD image:
// the collaborators needed to open fresh per-file readers, the shared MT
// thread pool (nil disables multi-threaded decode), and the ID3 overlay
// cache, which spans both areas and is loaded from the XML sidecar once at
// construction time.
type Context struct {
	IsoPath        string
	Opener         sacdsrc.Opener
	DecoderFactory sacdsrc.DSTDecoderFactory
	Pool           *tpool.Pool // nil disables MT decoding for every file opened from this context
	ID3            *id3xml.Cache
}

// NewContext opens the ID3 overlay sidecar (tolerating its absence or
// corruption) and returns a ready-to-use Context. It does not itself open
// the underlying SACD image; that happens lazily, once per file, in Open.
func NewContext(isoPath string, opener sacdsrc.Opener, decoderFactory sacdsrc.DSTDecoderFactory, renderer sacdsrc.ID3Renderer, pool *tpool.Pool) *Context {
	cache := id3xml.NewCache(renderer)
	cache.Load(isoPath)
	return &Context{
		IsoPath:        isoPath,
		Opener:         opener,
		DecoderFactory: decoderFactory,
		Pool:           pool,
		ID3:            cache,
	}
}

// FileInfo mirrors the C sa_file_info_t cached at Open time.
type FileInfo struct {
	HeaderSize      int64
	AudioDataSize   int64
	MetadataSize    int64
	MetadataOffset  int64
	TotalSize       int64
	ChannelCount    int
	SampleRate      uint32
	FrameFormat     sacdsrc.FrameFormat
	SampleCount     int64
	DurationSeconds float64
}

type region int

const (
	regionHeader region = iota
	regionAudio
	regionMetadata
)

// Handle is one opened synthetic DSF file. A Handle owns an exclusive
// sacdsrc.Reader so that concurrent opens of different files never contend
// on the underlying SACD reader; per §4.E, a Handle's Read/Seek methods are
// not safe for concurrent use by multiple goroutines (the VFS read path is
// single-threaded by design — concurrency lives one level up, in the
// multi-threaded DST pipeline a Handle may drive internally).
type Handle struct {
	ctx   *Context
	area  sacdsrc.ChannelType
	track sacdsrc.TrackInfo

	info   FileInfo
	header []byte

	startFrame, endFrame, currentFrame int64

	reader sacdsrc.Reader

	transform      *dsf.Transformer
	transformOut   []byte
	transformPos   int
	seekSkipBytes  int64
	position       int64
	pendingErr     error // deferred per the partial-read-then-defer-error rule

	singleDecoder sacdsrc.DSTDecoder
	mt            *mtPipeline
}

// Open parses vpath into an (area, track), instantiates a fresh reader for
// this file, builds the cached FileInfo and 92-byte header, and — when the
// area is DST-compressed and ctx.Pool is non-nil — starts the multi-threaded
// decode pipeline of §4.F. Otherwise DST frames (if any) are decoded inline
// by a single per-file decoder instance.
func Open(ctx *Context, vpath string) (*Handle, error) {
	ct, trackNum, err := ParsePath(vpath)
	if err != nil {
		return nil, err
	}

	reader, err := ctx.Opener.Open(ctx.IsoPath)
	if err != nil {
		return nil, fmt.Errorf("open sacd reader: %w", err)
	}

	area, ok := reader.Area(ct)
	if !ok {
		reader.Close()
		return nil, ErrAreaUnavailable
	}

	var track sacdsrc.TrackInfo
	found := false
	for _, tr := range area.Tracks {
		if tr.Number == trackNum {
			track = tr
			found = true
			break
		}
	}
	if !found {
		reader.Close()
		return nil, ErrTrackNotFound
	}

	frameCount := track.EndFrame - track.StartFrame
	audioSize := dsf.AudioDataSize(int(frameCount), area.ChannelCount)
	metaOffset := dsf.MetadataOffset(audioSize)

	id3Bytes, err := ctx.ID3.Get(ct, track)
	if err != nil {
		reader.Close()
		return nil, fmt.Errorf("render id3 tag: %w", err)
	}
	metaSize := int64(len(id3Bytes))
	totalSize := metaOffset + metaSize

	header, err := dsf.BuildHeader(area.ChannelCount, area.SampleRate, int(frameCount), totalSize, metaOffset)
	if err != nil {
		reader.Close()
		return nil, fmt.Errorf("build dsf header: %w", err)
	}

	h := &Handle{
		ctx:   ctx,
		area:  ct,
		track: track,
		info: FileInfo{
			HeaderSize:      dsf.HeaderSize,
			AudioDataSize:   audioSize,
			MetadataSize:    metaSize,
			MetadataOffset:  metaOffset,
			TotalSize:       totalSize,
			ChannelCount:    area.ChannelCount,
			SampleRate:      area.SampleRate,
			FrameFormat:     area.FrameFormat,
			SampleCount:     frameCount * 588 * 8,
			DurationSeconds: float64(frameCount) / 75.0,
		},
		header:       header,
		startFrame:   track.StartFrame,
		endFrame:     track.EndFrame,
		currentFrame: track.StartFrame,
		reader:       reader,
		transform:    dsf.NewTransformer(area.ChannelCount),
	}

	if area.FrameFormat == sacdsrc.FrameFormatDST {
		if ctx.Pool != nil {
			h.mt = newMTPipeline(ctx.Pool, reader, ct, area.ChannelCount, h.startFrame, h.endFrame, ctx.DecoderFactory)
		} else if ctx.DecoderFactory != nil {
			h.singleDecoder = ctx.DecoderFactory()
		}
	}

	return h, nil
}

// Info returns the handle's cached file-layout metadata.
func (h *Handle) Info() FileInfo {
	return h.info
}

func (h *Handle) classify(pos int64) region {
	switch {
	case pos < h.info.HeaderSize:
		return regionHeader
	case pos < h.info.MetadataOffset:
		return regionAudio
	default:
		return regionMetadata
	}
}

// ReadAt reads len(p) bytes starting at offset, returning a short count at
// end-of-file. Errors encountered after some bytes have already been
// produced in this call are deferred to the next call, per the error
// propagation policy of §7.
func (h *Handle) ReadAt(p []byte, offset int64) (int, error) {
	if offset != h.position {
		if err := h.Seek(offset); err != nil {
			return 0, err
		}
	}

	if h.pendingErr != nil {
		err := h.pendingErr
		h.pendingErr = nil
		return 0, err
	}

	n := 0
	for n < len(p) {
		switch h.classify(h.position) {
		case regionHeader:
			avail := copy(p[n:], h.header[h.position:])
			if avail == 0 {
				return n, nil
			}
			n += avail
			h.position += int64(avail)

		case regionAudio:
			got, err := h.readAudio(p[n:])
			n += got
			h.position += int64(got)
			if err != nil {
				if n > 0 {
					h.pendingErr = err
					return n, nil
				}
				return n, err
			}
			if got == 0 {
				// Audio region exhausted before its nominal size (should not
				// happen given the deterministic block-count formula, but
				// guard against an inconsistent reader rather than spin).
				return n, nil
			}

		case regionMetadata:
			id3, err := h.ctx.ID3.Get(h.area, h.track)
			if err != nil {
				if n > 0 {
					h.pendingErr = err
					return n, nil
				}
				return n, err
			}
			relOff := h.position - h.info.MetadataOffset
			if relOff >= int64(len(id3)) {
				return n, nil
			}
			avail := copy(p[n:], id3[relOff:])
			n += avail
			h.position += int64(avail)
		}
	}
	return n, nil
}

// readAudio drains any buffered transform output into dst, pulling and
// transforming additional frames as needed, and honoring seekSkipBytes on
// the first post-seek output.
func (h *Handle) readAudio(dst []byte) (int, error) {
	for h.transformPos >= len(h.transformOut) {
		if err := h.produceMore(); err != nil {
			return 0, err
		}
		if len(h.transformOut) == 0 {
			return 0, nil
		}
	}
	avail := h.transformOut[h.transformPos:]
	n := copy(dst, avail)
	h.transformPos += n
	return n, nil
}

// produceMore pulls one more frame (directly, via the single-threaded
// decoder, or via the MT pipeline) and feeds it through the DSF transform,
// discarding seekSkipBytes worth of prefix from the very first block group
// produced after a seek.
func (h *Handle) produceMore() error {
	h.transformOut = nil
	h.transformPos = 0

	var raw []byte
	switch {
	case h.mt != nil:
		frame, eof, err := h.mt.next()
		if err != nil {
			return newError(CodeDSTDecode, err.Error())
		}
		if eof {
			if out := h.transform.Flush(); out != nil {
				h.transformOut = out
			} else {
				return newError(CodeEOF, "end of audio region")
			}
			return h.applySeekSkip()
		}
		raw = frame

	case h.currentFrame < h.endFrame:
		frameBytes, err := h.reader.ReadFrame(h.area, h.currentFrame)
		if err != nil {
			return newError(CodeRead, err.Error())
		}
		if h.info.FrameFormat == sacdsrc.FrameFormatDST {
			decoded := make([]byte, dsf.FrameSize*h.info.ChannelCount)
			if h.singleDecoder == nil {
				return newError(CodeDSTDecode, "no DST decoder configured")
			}
			if err := h.singleDecoder.Decode(frameBytes, h.info.ChannelCount, decoded); err != nil {
				return newError(CodeDSTDecode, err.Error())
			}
			raw = decoded
		} else {
			raw = frameBytes
		}
		h.currentFrame++

	default:
		if out := h.transform.Flush(); out != nil {
			h.transformOut = out
			return h.applySeekSkip()
		}
		return newError(CodeEOF, "end of audio region")
	}

	h.transformOut = h.transform.PushFrame(raw)
	return h.applySeekSkip()
}

func (h *Handle) applySeekSkip() error {
	if h.seekSkipBytes > 0 && len(h.transformOut) > 0 {
		skip := h.seekSkipBytes
		if skip > int64(len(h.transformOut)) {
			skip = int64(len(h.transformOut))
		}
		h.transformPos = int(skip)
		h.seekSkipBytes -= skip
	}
	return nil
}

// Close releases the handle's reader and, for MT files, joins the reader
// goroutine and tears down the process-queue.
func (h *Handle) Close() error {
	if h.mt != nil {
		h.mt.close()
	}
	return h.reader.Close()
}
