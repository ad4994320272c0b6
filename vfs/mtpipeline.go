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
	"fmt"
	"sync"
	"time"

	"github.com/sa-tools/sacdvfs/buffer"
	"github.com/sa-tools/sacdvfs/dsf"
	"github.com/sa-tools/sacdvfs/sacdsrc"
	"github.com/sa-tools/sacdvfs/tpool"
)

type mtCommand int

const (
	mtCmdNone mtCommand = iota
	mtCmdSeek
	mtCmdSeekDone
	mtCmdClose
)

// decodeJob is the argument packaged for one dispatch: either a compressed
// frame awaiting decode, or the EOF sentinel.
type decodeJob struct {
	compressed   *buffer.Ref
	channelCount int
	frameNumber  int64
	isEOF        bool
	decoderFn    sacdsrc.DSTDecoderFactory
	decompPool   *buffer.Pool
}

type decodeResult struct {
	decompressed *buffer.Ref
	isEOF        bool
}

// mtPipeline is the multi-threaded DST decode pipeline of §4.F: a dedicated
// reader goroutine feeds a process-queue over the shared thread pool, and
// the VFS consumer pulls results strictly in serial (= disc) order.
type mtPipeline struct {
	q            *tpool.Queue
	compressed   *buffer.Pool
	decompressed *buffer.Pool

	reader       sacdsrc.Reader
	ct           sacdsrc.ChannelType
	channelCount int
	decoderFn    sacdsrc.DSTDecoderFactory

	endFrame int64

	cmdMu   sync.Mutex
	cmdCond *sync.Cond
	command mtCommand
	seekTo  int64

	done chan struct{}
}

func newMTPipeline(pool *tpool.Pool, reader sacdsrc.Reader, ct sacdsrc.ChannelType, channelCount int, startFrame, endFrame int64, decoderFn sacdsrc.DSTDecoderFactory) *mtPipeline {
	depth := 2 * pool.Size()
	if depth < 16 {
		depth = 16
	}
	p := &mtPipeline{
		q:            tpool.NewQueue(pool, depth),
		compressed:   buffer.NewPool(dsf.FrameSize, nil),
		decompressed: buffer.NewPool(dsf.FrameSize*channelCount, nil),
		reader:       reader,
		ct:           ct,
		channelCount: channelCount,
		decoderFn:    decoderFn,
		endFrame:     endFrame,
		done:         make(chan struct{}),
	}
	p.cmdCond = sync.NewCond(&p.cmdMu)
	go p.readerLoop(startFrame)
	return p
}

func (p *mtPipeline) readerLoop(startFrame int64) {
	defer close(p.done)
	currentFrame := startFrame

	for {
		p.cmdMu.Lock()
		switch p.command {
		case mtCmdClose:
			p.cmdMu.Unlock()
			return
		case mtCmdSeek:
			p.cmdMu.Unlock()
			p.q.Reset(true)
			currentFrame = p.seekTo
			p.cmdMu.Lock()
			p.command = mtCmdSeekDone
			p.cmdCond.Broadcast()
			p.cmdMu.Unlock()
			continue
		}
		p.cmdMu.Unlock()

		if currentFrame >= p.endFrame {
			p.dispatchEOF()
			p.waitForCommand()
			continue
		}

		frame, err := p.reader.ReadFrame(p.ct, currentFrame)
		if err != nil {
			// Surface the read failure through the pipeline itself so the
			// consumer sees it in serial order rather than losing it.
			p.dispatchReadError(currentFrame, err)
			currentFrame++
			continue
		}

		slot, err := p.compressed.Get()
		if err == nil {
			n := copy(slot.Data(), frame)
			job := decodeJob{
				compressed:   slot.Slice(0, n),
				channelCount: p.channelCount,
				frameNumber:  currentFrame,
				decoderFn:    p.decoderFn,
				decompPool:   p.decompressed,
			}
			slot.Unref()
			if interrupted := p.dispatchInterruptible(job); interrupted {
				job.compressed.Unref()
				continue
			}
		}
		currentFrame++
	}
}

// dispatchInterruptible dispatches job, retrying on a full queue until
// either room opens up or a SEEK/CLOSE command arrives, in which case it
// returns true without having enqueued the job so the caller can recheck
// the command at the top of its loop — mirroring the C reader thread's
// "if dispatch returns because a command arrived, recheck step 1".
func (p *mtPipeline) dispatchInterruptible(job decodeJob) (interrupted bool) {
	for {
		_, err := p.q.Dispatch(execDecodeJob, job, cleanupJob, cleanupResult, tpool.ModeNonblock)
		if err == nil {
			return false
		}
		p.cmdMu.Lock()
		pending := p.command == mtCmdSeek || p.command == mtCmdClose
		p.cmdMu.Unlock()
		if pending {
			return true
		}
		time.Sleep(time.Millisecond)
	}
}

func (p *mtPipeline) waitForCommand() {
	p.cmdMu.Lock()
	for p.command != mtCmdSeek && p.command != mtCmdClose {
		p.cmdCond.Wait()
	}
	p.cmdMu.Unlock()
}

func (p *mtPipeline) dispatchEOF() {
	_, _ = p.q.Dispatch(func(any) (any, error) {
		return decodeResult{isEOF: true}, nil
	}, nil, nil, nil, tpool.ModeBlock)
}

func (p *mtPipeline) dispatchReadError(frameNumber int64, readErr error) {
	_, _ = p.q.Dispatch(func(any) (any, error) {
		return nil, fmt.Errorf("read frame %d: %w", frameNumber, readErr)
	}, nil, nil, nil, tpool.ModeBlock)
}

func execDecodeJob(arg any) (any, error) {
	job := arg.(decodeJob)
	if job.isEOF {
		return decodeResult{isEOF: true}, nil
	}
	// The compressed slot is only needed for the duration of Decode; release
	// it here on every exit path so a job that runs to completion never
	// leaks its pool reference (cleanupJob only covers jobs discarded before
	// execution, during a Reset).
	defer job.compressed.Unref()

	decoded, err := job.decompPool.Get()
	if err != nil {
		return nil, err
	}
	decoder := job.decoderFn()
	if err := decoder.Decode(job.compressed.Data(), job.channelCount, decoded.Data()); err != nil {
		decoded.Unref()
		return nil, err
	}
	return decodeResult{decompressed: decoded}, nil
}

func cleanupJob(arg any) {
	if job, ok := arg.(decodeJob); ok && job.compressed != nil {
		job.compressed.Unref()
	}
}

func cleanupResult(data any) {
	if res, ok := data.(decodeResult); ok && res.decompressed != nil {
		res.decompressed.Unref()
	}
}

// next returns the next decoded frame in serial order, or eof=true once the
// EOF sentinel is reached.
func (p *mtPipeline) next() (frame []byte, eof bool, err error) {
	res, err := p.q.NextResultWait()
	if err != nil {
		return nil, false, err
	}
	if res.Err != nil {
		return nil, false, res.Err
	}
	dr := res.Data.(decodeResult)
	if dr.isEOF {
		return nil, true, nil
	}
	out := make([]byte, len(dr.decompressed.Data()))
	copy(out, dr.decompressed.Data())
	dr.decompressed.Unref()
	return out, false, nil
}

// seek publishes a SEEK command to the reader goroutine, wakes it in case it
// is blocked dispatching into a full queue, and waits for acknowledgement.
func (p *mtPipeline) seek(frameNumber int64) error {
	p.cmdMu.Lock()
	p.seekTo = frameNumber
	p.command = mtCmdSeek
	p.cmdCond.Broadcast()
	p.cmdMu.Unlock()

	p.q.WakeDispatch()

	p.cmdMu.Lock()
	for p.command != mtCmdSeekDone {
		p.cmdCond.Wait()
	}
	p.command = mtCmdNone
	p.cmdMu.Unlock()
	return nil
}

// close publishes CLOSE and joins the reader goroutine.
func (p *mtPipeline) close() {
	p.cmdMu.Lock()
	p.command = mtCmdClose
	p.cmdCond.Broadcast()
	p.cmdMu.Unlock()
	p.q.WakeDispatch()
	<-p.done
	p.q.Shutdown()
	p.compressed.Uninit()
	p.decompressed.Uninit()
}
