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

package tpool

import "sync"

// Queue is one process-queue: an independent input FIFO, output list, and
// pair of monotonic serial counters attached to a shared Pool. Results are
// always consumed in ascending serial order regardless of which worker
// finishes which job first.
type Queue struct {
	pool *Pool

	mu          sync.Mutex
	cond        *sync.Cond
	qsize       int
	input       []Job
	output      []Result
	currSerial  int64
	nextSerial  int64
	nProcessing int
	shut        bool
}

// NewQueue attaches a new process-queue of the given depth to pool.
func NewQueue(pool *Pool, qsize int) *Queue {
	q := &Queue{pool: pool, qsize: qsize}
	q.cond = sync.NewCond(&q.mu)
	pool.attach(q)
	return q
}

// QSize returns the queue's configured maximum input depth.
func (q *Queue) QSize() int {
	return q.qsize
}

// Sz returns the number of jobs currently queued for input.
func (q *Queue) Sz() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.input)
}

// Empty reports whether both the input and output FIFOs are empty.
func (q *Queue) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.input) == 0 && len(q.output) == 0
}

// Dispatch assigns the job the next ascending serial, enqueues it, and wakes
// a worker. In ModeBlock it waits for room if the input FIFO is at qsize; in
// ModeNonblock it returns ErrQueueFull instead; ModeForce always enqueues.
func (q *Queue) Dispatch(exec func(arg any) (any, error), arg any, jobCleanup func(any), resultCleanup func(any), mode Mode) (int64, error) {
	q.mu.Lock()
	for {
		if q.shut {
			q.mu.Unlock()
			return 0, ErrShutdown
		}
		if q.qsize <= 0 || len(q.input) < q.qsize || mode == ModeForce {
			break
		}
		if mode == ModeNonblock {
			q.mu.Unlock()
			return 0, ErrQueueFull
		}
		q.cond.Wait()
	}

	serial := q.currSerial
	q.currSerial++
	job := Job{Serial: serial, Exec: exec, Arg: arg, Cleanup: jobCleanup, ResultCleanup: resultCleanup}
	q.input = append(q.input, job)
	q.mu.Unlock()

	q.pool.notify()
	return serial, nil
}

// tryClaimLocked is called by the pool (holding the pool mutex) to see if
// this queue has a job ready to run under its admission rule: input
// non-empty AND not shut down AND (qsize <= 0 OR n_output < qsize OR
// n_processing == 0). A job is claimed whenever nothing of this queue is
// processing, so the output FIFO can grow past qsize.
func (q *Queue) tryClaimLocked() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.shut || len(q.input) == 0 {
		return Job{}, false
	}
	if q.qsize > 0 && len(q.output) >= q.qsize && q.nProcessing > 0 {
		return Job{}, false
	}
	job := q.input[0]
	q.input = q.input[1:]
	// A slot in the input FIFO opened; wake any dispatcher waiting for room.
	q.cond.Broadcast()
	q.nProcessing++
	return job, true
}

func (q *Queue) deliver(serial int64, data any, err error, resultCleanup func(any)) {
	q.mu.Lock()
	q.nProcessing--
	q.output = append(q.output, Result{Serial: serial, Data: data, Err: err, cleanup: resultCleanup})
	q.cond.Broadcast()
	q.mu.Unlock()
}

// NextResult returns the result whose serial equals the queue's next
// expected serial, if it has already arrived, without blocking.
func (q *Queue) NextResult() (Result, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popNextLocked()
}

// NextResultWait blocks until the result with the expected next serial is
// available or the queue is shut down.
func (q *Queue) NextResultWait() (Result, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if res, ok := q.popNextLocked(); ok {
			return res, nil
		}
		if q.shut {
			return Result{}, ErrShutdown
		}
		q.cond.Wait()
	}
}

func (q *Queue) popNextLocked() (Result, bool) {
	for i, res := range q.output {
		if res.Serial == q.nextSerial {
			q.output = append(q.output[:i], q.output[i+1:]...)
			q.nextSerial++
			q.cond.Broadcast()
			return res, true
		}
	}
	return Result{}, false
}

// Reset is the seek primitive: it drains the input FIFO (invoking each
// discarded job's Cleanup), waits for in-flight jobs to finish and drains
// whatever they produced (invoking each result's Cleanup if freeResults),
// then resets both serial counters to zero.
func (q *Queue) Reset(freeResults bool) {
	q.mu.Lock()
	q.nextSerial = 1<<63 - 1 // block consumers during the reset
	for _, job := range q.input {
		if job.Cleanup != nil {
			job.Cleanup(job.Arg)
		}
	}
	q.input = nil
	for _, res := range q.output {
		if freeResults {
			res.Cleanup()
		}
	}
	q.output = nil
	for q.nProcessing > 0 {
		q.cond.Wait()
	}
	for _, res := range q.output {
		if freeResults {
			res.Cleanup()
		}
	}
	q.output = nil
	q.currSerial = 0
	q.nextSerial = 0
	q.cond.Broadcast()
	q.mu.Unlock()
}

// Flush blocks until the input FIFO is empty and no job is processing.
func (q *Queue) Flush() {
	q.mu.Lock()
	for len(q.input) > 0 || q.nProcessing > 0 {
		q.cond.Wait()
	}
	q.mu.Unlock()
}

// Shutdown marks the queue shut down and wakes every waiter (dispatchers and
// result consumers alike).
func (q *Queue) Shutdown() {
	q.mu.Lock()
	q.shutdownLocked()
	q.mu.Unlock()
	q.pool.detach(q)
}

func (q *Queue) shutdownLocked() {
	q.shut = true
	q.cond.Broadcast()
}

// WakeDispatch wakes every goroutine waiting on the queue (Dispatch,
// NextResultWait, Reset, Flush). Each rechecks only its own wait condition
// and goes back to waiting if that condition still does not hold.
func (q *Queue) WakeDispatch() {
	q.mu.Lock()
	q.cond.Broadcast()
	q.mu.Unlock()
}

// IsShutdown reports whether the queue has been shut down.
func (q *Queue) IsShutdown() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.shut
}
