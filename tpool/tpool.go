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

// Package tpool implements a thread pool of N worker goroutines shared
// across independent process-queues, each of which delivers results to its
// consumer in strict dispatch order regardless of completion order. It is
// the Go re-architecture of a C thread pool built on an intrusive circular
// list of queues and a condvar per queue event; here each queue is a keyed
// entry in the pool under one mutex, and waits use sync.Cond.
package tpool

import "sync"

// Job is one unit of work dispatched to a process queue.
type Job struct {
	Serial        int64
	Exec          func(arg any) (result any, err error)
	Arg           any
	Cleanup       func(arg any) // invoked if the job is discarded before execution
	ResultCleanup func(data any)
}

// Result is the outcome of one executed Job.
type Result struct {
	Serial  int64
	Data    any
	Err     error
	cleanup func(data any) // invoked if the result is discarded after execution, before consumption
}

// Cleanup invokes the result's cleanup routine, if any, on its own Data.
// Consumers that choose not to use a result (e.g. during Reset) must call
// this exactly once.
func (res Result) Cleanup() {
	if res.cleanup != nil {
		res.cleanup(res.Data)
	}
}

// Mode controls Dispatch's blocking behavior when the queue's input FIFO is
// full.
type Mode int

const (
	// ModeBlock waits until room is available.
	ModeBlock Mode = iota
	// ModeNonblock returns ErrQueueFull immediately if the queue is full.
	ModeNonblock
	// ModeForce enqueues unconditionally, ignoring qsize.
	ModeForce
)

// Pool owns N worker goroutines shared across any number of process queues.
// A single pool mutex (paired with a condvar) guards the queue set and
// stands in for the C pool's "worker-wait stack": idle workers simply park
// on the condvar instead of being tracked in an explicit array.
type Pool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	workers int
	queues  map[*Queue]struct{}
	shut    bool
}

// New starts a pool of n worker goroutines. n must be >= 1.
func New(n int) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{
		workers: n,
		queues:  make(map[*Queue]struct{}),
	}
	p.cond = sync.NewCond(&p.mu)
	for range n {
		go p.workerLoop()
	}
	return p
}

// Size returns the number of worker goroutines in the pool.
func (p *Pool) Size() int {
	return p.workers
}

// Shutdown stops accepting new work across every attached queue and wakes
// all workers; in-flight jobs run to completion.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.shut {
		p.mu.Unlock()
		return
	}
	p.shut = true
	for q := range p.queues {
		q.shutdownLocked()
	}
	p.cond.Broadcast()
	p.mu.Unlock()
}

func (p *Pool) workerLoop() {
	for {
		q, job, ok := p.claimWork()
		if !ok {
			return
		}
		result, err := job.Exec(job.Arg)
		q.deliver(job.Serial, result, err, job.ResultCleanup)
	}
}

// claimWork scans attached queues for one with available work, parking on
// the pool condvar when none is found. It returns ok=false only once the
// pool has been shut down.
func (p *Pool) claimWork() (*Queue, Job, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		for q := range p.queues {
			if job, ok := q.tryClaimLocked(); ok {
				return q, job, true
			}
		}
		if p.shut {
			return nil, Job{}, false
		}
		p.cond.Wait()
	}
}

func (p *Pool) attach(q *Queue) {
	p.mu.Lock()
	p.queues[q] = struct{}{}
	p.mu.Unlock()
}

func (p *Pool) detach(q *Queue) {
	p.mu.Lock()
	delete(p.queues, q)
	p.mu.Unlock()
}

// notify wakes every parked worker so they rescan queues for new work.
func (p *Pool) notify() {
	p.mu.Lock()
	p.cond.Broadcast()
	p.mu.Unlock()
}
